package view

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/logrusorgru/aurora"

	"bitlife/src/sim"
)

//ConsoleOut is the non-interactive viewer: prints the configuration, the progress and the final report
type ConsoleOut struct {
	c          sim.Controller
	w          io.Writer
	printField bool
	startTime  time.Time
}

//NewConsoleOut creates the viewer writing to w, with printField the final generation is printed too
func NewConsoleOut(w io.Writer, printField bool) *ConsoleOut {
	return &ConsoleOut{w: w, printField: printField}
}

func (c *ConsoleOut) Refresh() {
	st := c.c.Status()
	if st.RunningMode == sim.RunningStateFinished {
		totalTime := time.Since(c.startTime).Round(time.Millisecond)
		resultData := map[string]interface{}{
			"Last generation": st.Generation,
			"Total time":      totalTime,
			"Live cells":      st.LiveCells,
		}
		_, _ = fmt.Fprintln(c.w, aurora.Red("\nFinished:"))
		c.printHashData(resultData)
		if c.printField {
			c.printGeneration()
		}
	} else if st.RunningMode == sim.RunningStateRun {
		if st.Generation%10 == 0 {
			_, _ = fmt.Fprintf(c.w, "  Generations done: %v\n", st.Generation)
		}
	}
}

func (c *ConsoleOut) Register(ctrl sim.Controller) {
	c.c = ctrl
	o := c.c.Options()
	_, _ = fmt.Fprintln(c.w, aurora.Green("Running configuration:"))
	_, _ = fmt.Fprintf(c.w, "  Dimension: %v x %v\n", o.Width, o.Height)
	_, _ = fmt.Fprintf(c.w, "  Interval: %v\n", o.Interval)
	_, _ = fmt.Fprintf(c.w, "  Max generations: %v steps\n", o.MaxSteps)
	c.printHashData(o.Advanced)
}

func (c *ConsoleOut) Start() {
	c.startTime = time.Now()
	_, _ = fmt.Fprintln(c.w, "\nSimulation started...")
}

func (c *ConsoleOut) printGeneration() {
	f := Field{Live: "#", Dead: "."}
	c.c.Snapshot(func(bits []byte, width int, height int) {
		rows, _ := f.Rows(bits, width, height, 0, 0)
		for _, r := range rows {
			_, _ = fmt.Fprintln(c.w, r)
		}
	})
}

func (c *ConsoleOut) printHashData(d map[string]interface{}) {
	propNames := make([]string, 0, len(d))
	for k := range d {
		propNames = append(propNames, k)
	}
	sort.Strings(propNames)
	for _, propName := range propNames {
		_, _ = fmt.Fprintf(c.w, "  %s: %v\n", propName, d[propName])
	}
}
