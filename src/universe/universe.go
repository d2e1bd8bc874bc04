package universe

import (
	"math/rand/v2"

	"bitlife/src/bitgrid"
)

//ErrInvalidDimension is returned by New when width or height is not positive
var ErrInvalidDimension = bitgrid.ErrInvalidDimension

//Universe is the toroidal Game of Life engine
//the state is kept in two bit-packed buffers: cur is authoritative, next is the scratch for Step
type Universe struct {
	width      int
	height     int
	generation int
	cur        *bitgrid.BitGrid
	next       *bitgrid.BitGrid
	src        rand.Source
}

//Option configures the Universe on construction
type Option func(u *Universe)

//WithSource sets the random source used for seeding
func WithSource(src rand.Source) Option {
	return func(u *Universe) {
		if src != nil {
			u.src = src
		}
	}
}

//WithSeed seeds the universe from a PCG source, the same seed gives the same population
func WithSeed(seed uint64) Option {
	return WithSource(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

//New creates the universe of width x height cells
//with randomize every cell is alive with probability 1/2, otherwise all cells are dead
func New(width int, height int, randomize bool, opts ...Option) (*Universe, error) {
	cur, err := bitgrid.New(width, height)
	if err != nil {
		return nil, err
	}
	next, err := bitgrid.New(width, height)
	if err != nil {
		return nil, err
	}
	u := &Universe{
		width:  width,
		height: height,
		cur:    cur,
		next:   next,
	}
	for _, o := range opts {
		o(u)
	}
	if u.src == nil {
		u.src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	if randomize {
		u.Randomize()
	}
	return u, nil
}

func (u *Universe) Width() int  { return u.width }
func (u *Universe) Height() int { return u.height }

//Generation returns the number of completed steps
func (u *Universe) Generation() int { return u.generation }

//StateView returns the packed bits of the current generation, row-major, bit idx at byte idx/8 mask 1<<(idx%8).
//The slice is owned by the universe: it must not be modified and is reused by the next Step.
func (u *Universe) StateView() []byte { return u.cur.Bytes() }

//LiveCells counts the live cells of the current generation
func (u *Universe) LiveCells() int { return u.cur.Count() }

//Alive reports the state of the cell at row, col
func (u *Universe) Alive(row int, col int) bool {
	return u.cur.Get(u.index(row, col))
}

//Set sets the state of the cell at row, col
func (u *Universe) Set(row int, col int, alive bool) {
	u.cur.Set(u.index(row, col), alive)
}

//Toggle inverses the cell at row, col
func (u *Universe) Toggle(row int, col int) {
	idx := u.index(row, col)
	u.cur.Set(idx, !u.cur.Get(idx))
}

//Clear kills all cells, the generation counter is kept
func (u *Universe) Clear() {
	u.cur.Clear()
}

//Randomize replaces the current population with fresh Bernoulli(1/2) draws from the random source
func (u *Universe) Randomize() {
	n := u.cur.Len()
	for i := 0; i < n; i += 64 {
		r := u.src.Uint64()
		for j := i; j < i+64 && j < n; j++ {
			u.cur.Set(j, r&1 == 1)
			r >>= 1
		}
	}
}

//Step calculates the next generation into the scratch buffer and swaps the buffers
func (u *Universe) Step() {
	w, h := u.width, u.height
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			idx := row*w + col
			n := u.liveNeighbors(row, col)
			alive := u.cur.Get(idx)
			u.next.Set(idx, n == 3 || (alive && n == 2))
		}
	}
	u.cur, u.next = u.next, u.cur
	u.generation++
}

//liveNeighbors counts the live cells among the 8 wrapped positions around row, col
//on 1-wide or 1-high grids several positions resolve to the same cell and each of them is counted
func (u *Universe) liveNeighbors(row int, col int) int {
	north := row - 1
	if row == 0 {
		north = u.height - 1
	}
	south := row + 1
	if south == u.height {
		south = 0
	}
	west := col - 1
	if col == 0 {
		west = u.width - 1
	}
	east := col + 1
	if east == u.width {
		east = 0
	}

	count := 0
	for i, r := range [3]int{north, row, south} {
		base := r * u.width
		if u.cur.Get(base + west) {
			count++
		}
		if i != 1 && u.cur.Get(base+col) {
			count++
		}
		if u.cur.Get(base + east) {
			count++
		}
	}
	return count
}

func (u *Universe) index(row int, col int) int {
	return row*u.width + col
}
