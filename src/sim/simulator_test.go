package sim

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"bitlife/src/universe"
)

type testViewer struct {
	c         Controller
	refreshed chan Status
	started   bool
}

func newTestViewer() *testViewer {
	return &testViewer{refreshed: make(chan Status, 100)}
}

func (v *testViewer) Refresh()              { v.refreshed <- v.c.Status() }
func (v *testViewer) Register(c Controller) { v.c = c }
func (v *testViewer) Start()                { v.started = true }

func newTestOptions(width int, height int) *Options {
	o := DefaultOptions
	o.Width = width
	o.Height = height
	o.Interval = 0
	return &o
}

func newTestSimulator(t *testing.T, o *Options) *Simulator {
	t.Helper()
	s, err := New(o, make(chan Status, 10))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

//waitFor reads the status updates until the expected running mode shows up
func waitFor(t *testing.T, s *Simulator, mode RunningState) Status {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case st := <-s.StateCh():
			if st.RunningMode == mode {
				return st
			}
		case <-timeout:
			t.Fatalf("timeout waiting for running mode %v", mode)
		}
	}
}

func waitRefresh(t *testing.T, v *testViewer) Status {
	t.Helper()
	select {
	case st := <-v.refreshed:
		return st
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for the view refresh")
	}
	return Status{}
}

func TestNewInvalidDimension(t *testing.T) {
	_, err := New(newTestOptions(0, 10), nil)
	if !errors.Is(err, universe.ErrInvalidDimension) {
		t.Errorf("error = %v, expected ErrInvalidDimension", err)
	}
}

func TestStep(t *testing.T) {
	s := newTestSimulator(t, newTestOptions(10, 10))
	s.SettleTemplate("blinker")
	s.Step()
	st := waitFor(t, s, RunningStateManual)
	if st.Generation != 1 {
		t.Errorf("Generation = %d, expected 1", st.Generation)
	}
	if st.LiveCells != 3 {
		t.Errorf("LiveCells = %d, expected 3", st.LiveCells)
	}
	s.Snapshot(func(bits []byte, width int, height int) {
		if width != 10 || height != 10 || len(bits) != 13 {
			t.Fatalf("snapshot %dx%d with %d bytes", width, height, len(bits))
		}
		//the vertical phase of the blinker: x=2, y=1..3
		for _, idx := range []int{12, 22, 32} {
			if bits[idx/8]&(1<<(idx%8)) == 0 {
				t.Errorf("cell %d is dead", idx)
			}
		}
	})
}

func TestRunMaxSteps(t *testing.T) {
	o := newTestOptions(10, 10)
	o.MaxSteps = 5
	s := newTestSimulator(t, o)
	s.SettleTemplate("blinker")
	s.Run()
	st := waitFor(t, s, RunningStateFinished)
	if st.Generation != 5 {
		t.Errorf("finished at generation %d, expected 5", st.Generation)
	}
	if st.LiveCells != 3 {
		t.Errorf("LiveCells = %d, expected 3", st.LiveCells)
	}
}

func TestRunFinishesOnStillLife(t *testing.T) {
	s := newTestSimulator(t, newTestOptions(8, 8))
	s.SettleTemplate("block")
	s.Run()
	st := waitFor(t, s, RunningStateFinished)
	if st.Generation != 1 || st.LiveCells != 4 {
		t.Errorf("finished with %+v, expected generation 1 and 4 cells", st)
	}
}

func TestRunFinishesWhenExtinct(t *testing.T) {
	s := newTestSimulator(t, newTestOptions(8, 8))
	s.Settle([][]int{{3, 3}, {100, 100}})
	s.Run()
	st := waitFor(t, s, RunningStateFinished)
	if st.Generation != 1 || st.LiveCells != 0 {
		t.Errorf("finished with %+v, expected generation 1 and no cells", st)
	}
}

func TestStop(t *testing.T) {
	o := newTestOptions(20, 20)
	o.MaxSteps = 0
	o.Interval = time.Millisecond
	s := newTestSimulator(t, o)
	s.SettleTemplate("glider")
	s.Run()
	waitFor(t, s, RunningStateRun)
	s.Stop()
	waitFor(t, s, RunningStateManual)

	//one step may still be queued behind the stop
	time.Sleep(50 * time.Millisecond)
	gen := s.Status().Generation
	time.Sleep(50 * time.Millisecond)
	if s.Status().Generation != gen {
		t.Errorf("generation moved from %d to %d after Stop", gen, s.Status().Generation)
	}
	if s.Status().RunningMode != RunningStateManual {
		t.Errorf("RunningMode = %v after Stop", s.Status().RunningMode)
	}
}

func TestSettleWithRandomDataSeeded(t *testing.T) {
	o := newTestOptions(30, 20)
	o.Seed = 99
	a := newTestSimulator(t, o)
	b := newTestSimulator(t, o)
	a.SettleWithRandomData()
	b.SettleWithRandomData()
	sa := waitFor(t, a, RunningStateManual)
	waitFor(t, b, RunningStateManual)

	if sa.LiveCells == 0 {
		t.Fatal("no live cells after random seeding")
	}
	var first []byte
	a.Snapshot(func(bits []byte, _ int, _ int) { first = append(first, bits...) })
	b.Snapshot(func(bits []byte, _ int, _ int) {
		if !bytes.Equal(first, bits) {
			t.Error("the same seed produced different populations")
		}
	})
}

func TestClear(t *testing.T) {
	o := newTestOptions(10, 10)
	o.Random = true
	o.Seed = 5
	s := newTestSimulator(t, o)
	if s.Status().LiveCells == 0 {
		t.Fatal("random universe has no live cells")
	}
	s.Clear()
	st := waitFor(t, s, RunningStateManual)
	if st.LiveCells != 0 {
		t.Errorf("LiveCells = %d after Clear", st.LiveCells)
	}
}

func TestViewerRefresh(t *testing.T) {
	s := newTestSimulator(t, newTestOptions(6, 6))
	v := newTestViewer()
	s.RegisterViewer(v)
	if v.c != s {
		t.Fatal("viewer was not registered")
	}

	s.InverseCell(2, 3)
	if st := waitRefresh(t, v); st.LiveCells != 1 {
		t.Errorf("LiveCells = %d after InverseCell, expected 1", st.LiveCells)
	}
	s.Snapshot(func(bits []byte, width int, _ int) {
		idx := 3*width + 2
		if bits[idx/8]&(1<<(idx%8)) == 0 {
			t.Error("cell x=2 y=3 is not alive")
		}
	})

	s.InverseCell(2, 3)
	if st := waitRefresh(t, v); st.LiveCells != 0 {
		t.Errorf("LiveCells = %d after the second InverseCell, expected 0", st.LiveCells)
	}

	//outside the area, ignored
	s.InverseCell(6, 0)
	s.Step()
	if st := waitRefresh(t, v); st.Generation != 1 {
		t.Errorf("unexpected refresh %+v", st)
	}
}

func TestCloseDropsCommands(t *testing.T) {
	s, err := New(newTestOptions(5, 5), nil)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()
	done := make(chan struct{})
	go func() {
		s.Step()
		s.Run()
		s.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("commands block after Close")
	}
	if s.Status().Generation != 0 {
		t.Errorf("Generation = %d after Close", s.Status().Generation)
	}
}

func TestTemplates(t *testing.T) {
	s := newTestSimulator(t, newTestOptions(7, 2))
	for _, name := range []string{"sample", "block", "blinker", "glider", "diehard", "stripes"} {
		if !s.HasTemplate(name) {
			t.Errorf("template %q is missing", name)
		}
	}

	stripes := StripesTemplate(7, 2)
	//indices 0 2 4 6 7 8 10 12
	if len(stripes.Coordinates) != 8 {
		t.Fatalf("stripes has %d cells, expected 8", len(stripes.Coordinates))
	}
	if c := stripes.Coordinates[4]; c[0] != 0 || c[1] != 1 {
		t.Errorf("5th stripes cell = %v, expected [0 1]", c)
	}

	s.AddTemplate(Template{"dot", "", [][]int{{6, 1}}})
	s.SettleTemplate("dot")
	s.SettleTemplate("unknown")
	s.Clear()
	waitFor(t, s, RunningStateManual)
}

func TestRegisterViewerAfterCommands(t *testing.T) {
	//main settles the template before the viewer is registered
	for i := 0; i < 200; i++ {
		s, err := New(newTestOptions(8, 8), nil)
		if err != nil {
			t.Fatal(err)
		}
		s.SettleTemplate("block")
		v := newTestViewer()
		s.RegisterViewer(v)
		s.Step()
		s.Close()
		if v.c != s {
			t.Fatal("viewer was not registered")
		}
	}
}

func TestOptionsAdvancedIsCopy(t *testing.T) {
	s := newTestSimulator(t, newTestOptions(8, 8))
	o := s.Options()
	o.Advanced["engine"] = "changed"
	o.Advanced["extra"] = 1
	o = s.Options()
	if o.Advanced["engine"] != "bitpacked" {
		t.Errorf("engine = %v, expected bitpacked", o.Advanced["engine"])
	}
	if _, ok := o.Advanced["extra"]; ok {
		t.Error("a key added to the copy leaked into the simulator")
	}
	if o.Advanced["buffer bytes"] != 8 {
		t.Errorf("buffer bytes = %v, expected 8", o.Advanced["buffer bytes"])
	}
}
