package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/integrii/flaggy"
	"github.com/logrusorgru/aurora"
	"golang.org/x/sync/errgroup"

	"bitlife/src/sim"
	"bitlife/src/universe"
	"bitlife/src/view"
)

type EnvOptions struct {
	interactive bool
	template    string
	printField  bool
}

func main() {
	eo, so := initOptions()

	var stateCh chan sim.Status

	if !eo.interactive {
		stateCh = make(chan sim.Status, 10) //the buffered channel to getting the simulation status
	}

	s, err := sim.New(so, stateCh)
	if err != nil {
		fmt.Fprintln(os.Stderr, aurora.Red(fmt.Sprintf("can't create the universe: %v", err)))
		os.Exit(1)
	}

	if !s.HasTemplate(eo.template) {
		s.Close()
		flaggy.ShowHelpAndExit("unknown template " + eo.template + ", known: " + strings.Join(templateNames(so), ", "))
	}
	if !so.Random {
		s.SettleTemplate(eo.template)
	}

	if eo.interactive {
		v := view.NewConsoleUI()
		s.RegisterViewer(v)
		v.Start()
		s.Close()
		return
	}

	v := view.NewConsoleOut(os.Stdout, eo.printField)
	s.RegisterViewer(v)
	v.Start()
	interrupted := runBatch(s)
	s.Close()
	if interrupted {
		st := s.Status()
		fmt.Printf("Interrupted at generation %v, live cells: %v\n", st.Generation, st.LiveCells)
	}
}

//runBatch runs the simulation until it is finished or the process gets SIGINT/SIGTERM
//the status channel is drained all the time, the simulator blocks on a full channel
func runBatch(s *sim.Simulator) (interrupted bool) {
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(sigCtx)
	finished := make(chan struct{})

	g.Go(func() error {
		defer close(finished)
		for st := range s.StateCh() {
			//Manual comes only from the Stop below
			if st.RunningMode != sim.RunningStateRun {
				return nil
			}
		}
		return nil
	})
	g.Go(func() error {
		select {
		case <-finished:
		case <-ctx.Done():
			interrupted = true
			s.Stop()
		}
		return nil
	})

	s.Run()
	_ = g.Wait()
	return
}

func templateNames(o *sim.Options) []string {
	names := make([]string, 0)
	for _, t := range sim.BuiltinTemplates(o.Width, o.Height) {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

func initOptions() (eo *EnvOptions, so *sim.Options) {

	o := sim.DefaultOptions
	so = &o
	eo = &EnvOptions{template: sim.SampleTemplate.Name}
	flaggy.SetName("bitlife")
	flaggy.SetDescription("Conway's \"Life\" on a toroidal bit-packed universe")
	flaggy.DefaultParser.ShowHelpOnUnexpected = true
	flaggy.Int(&so.Width, "x", "width", "Width of a simulation field")
	flaggy.Int(&so.Height, "y", "height", "Height of a simulation field")
	flaggy.Duration(&so.Interval, "i", "interval", "Simulation speed (interval between the steps) in format the number with 'ms' suffix, for example 150ms")
	flaggy.Int(&so.MaxSteps, "s", "maxSteps", "Limit the simulation to maxSteps generations, 0 is unlimited")
	flaggy.Bool(&so.Random, "r", "random", "Settle with random data")
	flaggy.UInt64(&so.Seed, "", "seed", "Seed of the random data, 0 picks a random seed")
	flaggy.Bool(&eo.interactive, "n", "interactive", "Start interactive mode")
	flaggy.String(&eo.template, "t", "template", "Template to settle when not random [sample|block|blinker|glider|diehard|stripes]")
	flaggy.Bool(&eo.printField, "p", "print", "Print the last generation when finished")

	flaggy.Parse()

	if err := checkDimension(so); err != nil {
		fmt.Fprintln(os.Stderr, aurora.Red(err.Error()))
		os.Exit(1)
	}

	return
}

//checkDimension rejects the field sizes the universe can't be built with
func checkDimension(o *sim.Options) error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("%w: %v x %v, width and height must be positive", universe.ErrInvalidDimension, o.Width, o.Height)
	}
	return nil
}
