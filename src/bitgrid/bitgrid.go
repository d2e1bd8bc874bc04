package bitgrid

import (
	"errors"
	"fmt"
	"math/bits"
)

//ErrInvalidDimension is returned when a grid is requested with a zero or negative side
var ErrInvalidDimension = errors.New("invalid dimension")

//BitGrid is a fixed-size boolean matrix packed one cell per bit
//bit idx lives in byte idx/8 under the mask 1<<(idx%8), idx = row*width + column
type BitGrid struct {
	width  int
	height int
	data   []byte
}

//New allocates a zeroed grid able to hold width*height cells
func New(width int, height int) (*BitGrid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %d x %d", ErrInvalidDimension, width, height)
	}
	size := width * height
	return &BitGrid{
		width:  width,
		height: height,
		data:   make([]byte, (size+7)/8),
	}, nil
}

//Len returns the number of cells
func (g *BitGrid) Len() int { return g.width * g.height }

//Get reports whether bit idx is set
func (g *BitGrid) Get(idx int) bool {
	return g.data[idx>>3]&(1<<uint(idx&7)) != 0
}

//Set sets or clears bit idx
func (g *BitGrid) Set(idx int, value bool) {
	if value {
		g.data[idx>>3] |= 1 << uint(idx&7)
	} else {
		g.data[idx>>3] &^= 1 << uint(idx&7)
	}
}

//Bytes exposes the packed buffer without copying.
//The slice must not be modified by the caller and is only valid until the next mutation.
func (g *BitGrid) Bytes() []byte { return g.data }

//Clear resets every cell
func (g *BitGrid) Clear() {
	for i := range g.data {
		g.data[i] = 0
	}
}

//Count returns the number of set cells
func (g *BitGrid) Count() int {
	n := 0
	for _, b := range g.data {
		n += bits.OnesCount8(b)
	}
	return n
}
