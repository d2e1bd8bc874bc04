package view

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jroimartin/gocui"
	"github.com/logrusorgru/aurora"

	"bitlife/src/sim"
)

//pane names
const (
	paneTitle    = "title"
	paneSettings = "settings"
	paneCounters = "counters"
	paneUniverse = "universe"
	paneKeys     = "keys"
)

const (
	sideWidth    = 30
	titleHeight  = 3
	keysHeight   = 2
	minUIHeight  = 16
	titleText    = "bitlife: toroidal Life on a bit-packed universe"
	tooSmallText = "enlarge the terminal"
)

//binding maps a key to a simulator command
type binding struct {
	key    interface{}
	label  string
	descr  string
	pane   string //"" binds globally
	action func(c sim.Controller, v *gocui.View) error
}

//rect is a gocui view frame
type rect struct {
	x0, y0, x1, y1 int
}

var (
	modeLabels = map[sim.RunningState]string{
		sim.RunningStateManual:   aurora.Colorize("paused", aurora.BlueFg).String(),
		sim.RunningStateRun:      aurora.Colorize("evolving", aurora.CyanFg).String(),
		sim.RunningStateFinished: aurora.Colorize("settled", aurora.RedFg).String(),
	}

	bindings = []binding{
		{gocui.KeyCtrlC, "^C", "quit", "", func(sim.Controller, *gocui.View) error { return gocui.ErrQuit }},
		{gocui.KeySpace, "SPACE", "one generation", "", func(c sim.Controller, _ *gocui.View) error { c.Step(); return nil }},
		{'r', "R", "evolve", "", func(c sim.Controller, _ *gocui.View) error { c.Run(); return nil }},
		{'p', "P", "pause", "", func(c sim.Controller, _ *gocui.View) error { c.Stop(); return nil }},
		{'k', "K", "kill all", "", func(c sim.Controller, _ *gocui.View) error { c.Clear(); return nil }},
		{'x', "X", "coin flip fill", "", func(c sim.Controller, _ *gocui.View) error { c.SettleWithRandomData(); return nil }},
		{'g', "G", "drop a glider", "", func(c sim.Controller, _ *gocui.View) error { c.SettleTemplate(sim.GliderTemplate.Name); return nil }},
		{gocui.MouseLeft, "CLICK", "flip a cell", paneUniverse, func(c sim.Controller, v *gocui.View) error {
			x, y := v.Cursor()
			ox, oy := v.Origin()
			c.InverseCell(ox+x, oy+y)
			return nil
		}},
	}
)

//ConsoleUI is the interactive terminal viewer
type ConsoleUI struct {
	c     sim.Controller
	g     *gocui.Gui
	field Field
}

//NewConsoleUI creates the terminal UI, it takes over the terminal until Start returns
func NewConsoleUI() *ConsoleUI {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		log.Panicln(err)
	}
	g.Mouse = true

	t := &ConsoleUI{
		g: g,
		field: Field{
			Live: aurora.Green("█").BgBrightGreen().String(),
			Dead: "·",
		},
	}
	g.SetManagerFunc(t.layout)
	for _, b := range bindings {
		action := b.action
		err := g.SetKeybinding(b.pane, b.key, gocui.ModNone, func(_ *gocui.Gui, v *gocui.View) error {
			return action(t.c, v)
		})
		if err != nil {
			log.Panicln(err)
		}
	}
	return t
}

func (t *ConsoleUI) Register(c sim.Controller) {
	t.c = c
}

func (t *ConsoleUI) Start() {
	if err := t.g.MainLoop(); err != nil && err != gocui.ErrQuit {
		log.Panicln(err)
	}
	t.g.Close()
}

//Refresh is called from the simulator goroutine, drawing goes through gocui.Update
func (t *ConsoleUI) Refresh() {
	t.g.Update(func(g *gocui.Gui) error {
		t.drawAll(g)
		return nil
	})
}

func (t *ConsoleUI) drawAll(g *gocui.Gui) {
	if v, err := g.View(paneUniverse); err == nil {
		t.drawUniverse(v)
	}
	if v, err := g.View(paneSettings); err == nil {
		t.drawSettings(v)
	}
	if v, err := g.View(paneCounters); err == nil {
		t.drawCounters(v)
	}
}

func (t *ConsoleUI) drawUniverse(v *gocui.View) {
	v.Clear()
	maxW, maxH := v.Size()
	var rows []string
	var crop bool
	t.c.Snapshot(func(bits []byte, width int, height int) {
		rows, crop = t.field.Rows(bits, width, height, maxW, maxH)
	})
	if crop && len(rows) == maxH && maxH > 0 {
		rows[maxH-1] = aurora.Red("only a part of the universe fits").BgBlack().String()
	}
	_, _ = fmt.Fprint(v, strings.Join(rows, "\n"))
}

func (t *ConsoleUI) drawSettings(v *gocui.View) {
	o := t.c.Options()
	v.Clear()
	_, _ = fmt.Fprintln(v, prop("Size", "%v x %v", o.Width, o.Height))
	_, _ = fmt.Fprintln(v, prop("Tick", "%v", o.Interval))
	_, _ = fmt.Fprintln(v, prop("Limit", "%v generations", o.MaxSteps))
	_, _ = fmt.Fprintln(v, prop("Packed", "%v bytes", o.Advanced["buffer bytes"]))
	if o.Seed != 0 {
		_, _ = fmt.Fprintln(v, prop("Seed", "%v", o.Seed))
	}
}

func (t *ConsoleUI) drawCounters(v *gocui.View) {
	st := t.c.Status()
	v.Clear()
	_, _ = fmt.Fprintln(v, prop("Generation", "%v", st.Generation))
	_, _ = fmt.Fprintln(v, prop("Population", "%v", st.LiveCells))
	_, _ = fmt.Fprintln(v, prop("Step time", "%v", st.IterationTime.Round(time.Microsecond)))
	_, _ = fmt.Fprintln(v, prop("State", "%v", modeLabels[st.RunningMode]))
}

func prop(name string, format string, values ...interface{}) string {
	return " " + aurora.Colorize(name, aurora.GreenFg).String() + ": " + fmt.Sprintf(format, values...)
}

//keysLine renders the key help shown under the universe
func keysLine(bs []binding) string {
	parts := make([]string, 0, len(bs))
	for _, b := range bs {
		parts = append(parts, aurora.Green(b.label).String()+" "+b.descr)
	}
	return " " + strings.Join(parts, "  ")
}

//panes splits a maxX x maxY terminal: title on top, settings and counters on the left,
//the universe on the right and the keys at the bottom
//nil when the terminal is too low
func panes(maxX int, maxY int) map[string]rect {
	if maxY < minUIHeight {
		return nil
	}
	bottom := maxY - keysHeight - 1
	split := titleHeight + (bottom-titleHeight)/2
	return map[string]rect{
		paneTitle:    {-1, -1, maxX, titleHeight - 1},
		paneSettings: {0, titleHeight, sideWidth, split},
		paneCounters: {0, split + 1, sideWidth, bottom},
		paneUniverse: {sideWidth + 1, titleHeight, maxX - 1, bottom},
		paneKeys:     {-1, bottom, maxX, maxY},
	}
}

var paneTitles = map[string]string{
	paneSettings: "Settings",
	paneCounters: "Counters",
	paneUniverse: "Universe",
}

func (t *ConsoleUI) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	frames := panes(maxX, maxY)
	if frames == nil {
		for _, name := range []string{paneSettings, paneCounters, paneUniverse, paneKeys} {
			_ = g.DeleteView(name)
		}
		return t.title(g, rect{-1, -1, maxX, maxY}, tooSmallText)
	}
	if err := t.title(g, frames[paneTitle], titleText); err != nil {
		return err
	}

	for _, name := range []string{paneSettings, paneCounters, paneUniverse, paneKeys} {
		r := frames[name]
		v, err := g.SetView(name, r.x0, r.y0, r.x1, r.y1)
		if err == nil {
			continue
		}
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = paneTitles[name]
		v.Frame = name != paneKeys
		if name == paneKeys {
			_, _ = fmt.Fprintln(v, keysLine(bindings))
		}
	}
	t.drawAll(g)
	return nil
}

//title draws the text centered in the frame r
func (t *ConsoleUI) title(g *gocui.Gui, r rect, text string) error {
	v, err := g.SetView(paneTitle, r.x0, r.y0, r.x1, r.y1)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	v.Frame = false
	v.BgColor = gocui.ColorCyan
	v.FgColor = gocui.ColorBlack
	v.Clear()
	w, h := r.x1-r.x0, r.y1-r.y0
	pad := 0
	if w > len(text) {
		pad = (w - len(text)) / 2
	}
	_, _ = fmt.Fprint(v, strings.Repeat("\n", h/2)+strings.Repeat(" ", pad)+text)
	return nil
}
