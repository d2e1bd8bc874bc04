package sim

import (
	"bytes"
	"sync"
	"time"

	"bitlife/src/universe"
)

//Options represents the Simulator's configurable options
type Options struct {
	Width    int
	Height   int
	Interval time.Duration
	MaxSteps int
	Random   bool
	Seed     uint64                 //seed of the random source, 0 picks a random one
	Advanced map[string]interface{} //advanced options (engine specific)
}

//Status represents the status of the Simulator at concrete moment
type Status struct {
	Generation    int
	RunningMode   RunningState
	LiveCells     int
	IterationTime time.Duration
}

//Viewer is the interface to any Viewer - the object who can display simulation data or control the engine
type Viewer interface {
	Refresh()
	Register(c Controller)
	Start()
}

//The simulator running status at the concrete moment
type RunningState int

//default options
const (
	DefSimulationInterval = time.Millisecond * 100
	DefMaxSteps           = 1000
	DefWidth              = 40
	DefHeight             = 15
)

const (
	RunningStateManual   RunningState = 0x0
	RunningStateRun      RunningState = 0x1
	RunningStateFinished RunningState = 0x2
)

var DefaultOptions = Options{
	Width:    DefWidth,
	Height:   DefHeight,
	Interval: DefSimulationInterval,
	MaxSteps: DefMaxSteps,
}

//Simulator drives a Universe: it serializes all the commands on one goroutine,
//runs the stepping loop, tracks the status and refreshes the viewers
type Simulator struct {
	options Options
	state   struct {
		Status
		sync.Mutex
	}
	area struct {
		u    *universe.Universe
		prev []byte //the state before the last step, to detect a settled universe
		sync.Mutex
	}
	stateCh chan Status
	views   struct {
		list []Viewer
		sync.Mutex
	}
	templates map[string]Template
	controlCh chan func()
	closeCh   chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
}

//New creates the Simulator and starts its control loop
//stateCh is optional, when set every status change is written to it and it must be drained
func New(o *Options, stateCh chan Status) (*Simulator, error) {
	if o == nil {
		o = &DefaultOptions
	}
	var uo []universe.Option
	if o.Seed != 0 {
		uo = append(uo, universe.WithSeed(o.Seed))
	}
	u, err := universe.New(o.Width, o.Height, o.Random, uo...)
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		options:   *o,
		controlCh: make(chan func(), 1),
		closeCh:   make(chan struct{}),
		doneCh:    make(chan struct{}),
		stateCh:   stateCh,
		templates: map[string]Template{},
	}
	s.options.Advanced = map[string]interface{}{
		"engine":       "bitpacked",
		"buffer bytes": len(u.StateView()),
	}
	for k, v := range o.Advanced {
		s.options.Advanced[k] = v
	}
	s.area.u = u
	s.area.prev = make([]byte, len(u.StateView()))
	s.state.LiveCells = u.LiveCells()
	for _, tmpl := range BuiltinTemplates(o.Width, o.Height) {
		s.AddTemplate(tmpl)
	}
	go s.mainLoop()
	return s, nil
}

//AddTemplate adds the seeding template to the internal storage
//the universe can be populated with this template by call SettleTemplate
func (s *Simulator) AddTemplate(tmpl Template) {
	s.area.Lock()
	s.templates[tmpl.Name] = tmpl
	s.area.Unlock()
}

//HasTemplate reports whether the template is known
func (s *Simulator) HasTemplate(name string) bool {
	s.area.Lock()
	defer s.area.Unlock()
	_, ok := s.templates[name]
	return ok
}

//Settle settles the universe with data, returns immediately
//vc - array of x,y coordinates
func (s *Simulator) Settle(vc [][]int) {
	s.do(func() {
		s.area.Lock()
		s.settle(vc)
		s.area.Unlock()
		s.refreshLiveCells()
		s.refreshView()
	})
}

//SettleTemplate populates the universe with the seeding template, returns immediately
func (s *Simulator) SettleTemplate(name string) {
	s.do(func() {
		s.area.Lock()
		tmpl, ok := s.templates[name]
		if ok {
			s.settle(tmpl.Coordinates)
		}
		s.area.Unlock()
		if ok {
			s.refreshLiveCells()
			s.refreshView()
		}
	})
}

//SettleWithRandomData replaces the population with random data, returns immediately
//ignored while the simulation is running
func (s *Simulator) SettleWithRandomData() {
	s.do(func() {
		if mode := s.mode(); mode != RunningStateManual && mode != RunningStateFinished {
			return
		}
		s.area.Lock()
		s.area.u.Randomize()
		s.area.Unlock()
		s.refreshLiveCells()
		s.switchRunningState(RunningStateManual)
		s.refreshView()
	})
}

//InverseCell inverses the cell state at point x, y, returns immediately
func (s *Simulator) InverseCell(x int, y int) {
	s.do(func() {
		s.area.Lock()
		u := s.area.u
		inside := x >= 0 && y >= 0 && x < u.Width() && y < u.Height()
		if inside {
			u.Toggle(y, x)
		}
		s.area.Unlock()
		if inside {
			s.refreshLiveCells()
			s.refreshView()
		}
	})
}

//RegisterViewer registers the viewer - the simulator will call the viewer when the state is changed
//the viewer is registered before it is published, the main loop never refreshes a half registered viewer
func (s *Simulator) RegisterViewer(v Viewer) {
	v.Register(s)
	s.views.Lock()
	s.views.list = append(s.views.list, v)
	s.views.Unlock()
}

//StateCh returns the channel with the simulator's status updates
func (s *Simulator) StateCh() chan Status {
	return s.stateCh
}

//Status returns current simulator status represented by Status struct
func (s *Simulator) Status() Status {
	s.state.Lock()
	defer s.state.Unlock()
	return s.state.Status
}

//Options returns the simulator configuration represented by Options struct
//Advanced is a copy, changing it does not affect the simulator
func (s *Simulator) Options() Options {
	o := s.options
	o.Advanced = make(map[string]interface{}, len(s.options.Advanced))
	for k, v := range s.options.Advanced {
		o.Advanced[k] = v
	}
	return o
}

//Snapshot calls fn with the packed state of the current generation
//the bits are only valid inside fn
func (s *Simulator) Snapshot(fn func(bits []byte, width int, height int)) {
	s.area.Lock()
	defer s.area.Unlock()
	u := s.area.u
	fn(u.StateView(), u.Width(), u.Height())
}

//Run starts the simulation, returns immediately
func (s *Simulator) Run() {
	s.do(s.run)
}

//Stop stops the simulation, returns immediately
//the Status struct will be written the stateCh on finish
func (s *Simulator) Stop() {
	s.do(s.stop)
}

//Step do one simulation step, returns immediately
//the Status struct will be written to the stateCh on finish
func (s *Simulator) Step() {
	s.do(s.step)
}

//Clear kills all cells, returns immediately
//the Status struct will be written to the stateCh on finish
func (s *Simulator) Clear() {
	s.do(s.clear)
}

//Close stops the main loop, the commands sent after Close are dropped
func (s *Simulator) Close() {
	s.closeOnce.Do(func() {
		close(s.closeCh)
	})
	<-s.doneCh
}

//do sends the command to the main loop
func (s *Simulator) do(cmd func()) {
	select {
	case s.controlCh <- cmd:
	case <-s.doneCh:
	}
}

//mainLoop - the main cycle, should start as a goroutine
//waits for command and executes
func (s *Simulator) mainLoop() {
	defer close(s.doneCh)
	for {
		select {
		case cmd := <-s.controlCh:
			cmd()
		case <-s.closeCh:
			return
		}
	}
}

//settle places live cells at the x,y positions, the ones outside the area are skipped
func (s *Simulator) settle(vc [][]int) {
	u := s.area.u
	for _, v := range vc {
		if len(v) < 2 || v[0] < 0 || v[1] < 0 || v[0] >= u.Width() || v[1] >= u.Height() {
			continue
		}
		u.Set(v[1], v[0], true)
	}
}

func (s *Simulator) refreshLiveCells() {
	s.area.Lock()
	live, gen := s.area.u.LiveCells(), s.area.u.Generation()
	s.area.Unlock()
	s.state.Lock()
	s.state.LiveCells = live
	s.state.Generation = gen
	s.state.Unlock()
}

func (s *Simulator) mode() RunningState {
	s.state.Lock()
	defer s.state.Unlock()
	return s.state.RunningMode
}

//switchRunningState switch the state of the simulator to RunningState
//also writes the new state to the stateCh to signal upper control software
func (s *Simulator) switchRunningState(to RunningState) {
	s.state.Lock()
	s.state.RunningMode = to
	st := s.state.Status
	s.state.Unlock()
	if s.stateCh != nil {
		select {
		case s.stateCh <- st:
		case <-s.closeCh:
		}
	}
}

//run starts the stepping loop
//simulation will stop on Stop() calling or when the boundary conditions are reached
func (s *Simulator) run() {
	if s.mode() == RunningStateRun {
		return
	}
	s.switchRunningState(RunningStateRun)
	go func() {
		for s.mode() == RunningStateRun {
			done := make(chan struct{})
			s.do(func() {
				s.step()
				close(done)
			})
			select {
			case <-done:
			case <-s.doneCh:
				return
			}
			if s.options.Interval > 0 {
				select {
				case <-time.After(s.options.Interval):
				case <-s.doneCh:
					return
				}
			}
		}
	}()
}

//stop stops the running cycle
func (s *Simulator) stop() {
	if s.mode() == RunningStateRun {
		s.switchRunningState(RunningStateManual)
	}
}

//step does the one generation step
//the simulation is finished when MaxSteps is reached, when all cells are dead or nothing changed
func (s *Simulator) step() {
	rm := s.mode()
	if rm == RunningStateFinished {
		rm = RunningStateManual
	}
	finished := false
	defer func() {
		if finished {
			s.switchRunningState(RunningStateFinished)
		} else {
			s.switchRunningState(rm)
		}
		s.refreshView()
	}()

	s.area.Lock()
	u := s.area.u
	if s.options.MaxSteps != 0 && u.Generation() >= s.options.MaxSteps {
		s.area.Unlock()
		finished = true
		return
	}
	start := time.Now()
	copy(s.area.prev, u.StateView())
	u.Step()
	elapsed := time.Since(start)
	live := u.LiveCells()
	changed := !bytes.Equal(s.area.prev, u.StateView())
	gen := u.Generation()
	s.area.Unlock()

	s.state.Lock()
	s.state.Generation = gen
	s.state.LiveCells = live
	s.state.IterationTime = elapsed
	s.state.Unlock()

	if live == 0 || !changed {
		finished = true
	}
}

//clear kills all cells
func (s *Simulator) clear() {
	s.area.Lock()
	s.area.u.Clear()
	s.area.Unlock()
	s.refreshLiveCells()
	s.switchRunningState(RunningStateManual)
	s.refreshView()
}

//refreshView calls Refresh event for all registered views
func (s *Simulator) refreshView() {
	s.views.Lock()
	views := append([]Viewer(nil), s.views.list...)
	s.views.Unlock()
	for _, v := range views {
		v.Refresh()
	}
}
