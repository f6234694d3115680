package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	ts "nickandperla.net/tapesoup"
	bf "nickandperla.net/tapesoup/brainfuck"
)

type runOptions struct {
	epochs      int
	seed        string
	width       int
	height      int
	length      int
	mode        string
	reach       int
	speed       float64
	noise       string
	pctNoise    float64
	randomPivot bool
	programs    []string
	metricsAddr string
	persist     bool
	db          string
	print       bool
}

func newRunCmd(a *app) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evolve a fresh grid for a number of epochs",
		Long: `Evolve a fresh grid. Flags override the matching config values.
With persistence enabled the initial state, every snapshot the history
keeps and the final state are recorded under a new run id.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.epochs, "epochs", "n", 100, "Epochs to run; zero runs until interrupted")
	f.StringVar(&opts.seed, "seed", "", "Integer seed, text to hash, or empty for a random seed")
	f.IntVar(&opts.width, "width", ts.DEFAULT_WIDTH, "Grid width")
	f.IntVar(&opts.height, "height", ts.DEFAULT_HEIGHT, "Grid height")
	f.IntVar(&opts.length, "length", ts.DEFAULT_PROGRAM_LENGTH, "Program length")
	f.StringVar(&opts.mode, "mode", string(ts.InitInstructions), "Initial fill: instructions or data")
	f.IntVar(&opts.reach, "range", ts.DEFAULT_RANGE, "Maximum partner offset per axis")
	f.Float64Var(&opts.speed, "speed", ts.DEFAULT_SPEED, "Epochs per second; inf runs unpaced")
	f.StringVar(&opts.noise, "noise", string(ts.NoiseNone), "Noise: none, killCells or killInstructions")
	f.Float64Var(&opts.pctNoise, "pct-noise", 0, "Noise intensity in percent")
	f.BoolVar(&opts.randomPivot, "random-pivot", false, "Rotate every pair around a random pivot before running it")
	f.StringArrayVarP(&opts.programs, "program", "p", nil, "Program placed at a random cell; repeatable")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")
	f.BoolVar(&opts.persist, "persist", false, "Record the run and its snapshots")
	f.StringVar(&opts.db, "db", "", "sqlite file to record to; overrides the persistence config")
	f.BoolVar(&opts.print, "print", false, "Print the final grid")
	return cmd
}

// apply copies the flags the user set over the loaded config.
func (o *runOptions) apply(cmd *cobra.Command, config *ts.Config) error {
	changed := cmd.Flags().Changed
	if changed("seed") {
		config.Init.Seed = o.seed
	}
	if changed("width") {
		config.Init.Width = o.width
	}
	if changed("height") {
		config.Init.Height = o.height
	}
	if changed("length") {
		config.Init.ProgramLength = o.length
	}
	if changed("mode") {
		mode, err := ts.ParseInitMode(o.mode)
		if err != nil {
			return err
		}
		config.Init.Mode = mode
	}
	if changed("range") {
		config.Run.Range = o.reach
	}
	if changed("speed") {
		config.Run.Speed = o.speed
	}
	if changed("noise") {
		action, err := ts.ParseNoiseAction(o.noise)
		if err != nil {
			return err
		}
		config.Run.NoiseAction = action
	}
	if changed("pct-noise") {
		config.Run.PctNoise = o.pctNoise
	}
	if changed("random-pivot") {
		config.Run.RandomPivot = o.randomPivot
	}
	if o.persist || o.db != "" {
		config.Persistence.Enabled = true
	}
	if o.db != "" {
		useDatabase(&config.Persistence, o.db)
	}
	return config.Validate()
}

func useDatabase(config *ts.PersistenceConfig, path string) {
	config.Path = filepath.Dir(path)
	config.Name = filepath.Base(path)
}

func (a *app) run(cmd *cobra.Command, opts *runOptions) error {
	config := a.config
	if err := opts.apply(cmd, config); err != nil {
		return err
	}
	machine, err := a.machine()
	if err != nil {
		return err
	}

	spec := config.InitSpec()
	state := ts.NewRunState(spec)
	if len(opts.programs) > 0 {
		programs := make([]bf.Program, 0, len(opts.programs))
		for _, text := range opts.programs {
			p, err := machine.Conversions.ParseGenericInput(text)
			if err != nil {
				return fmt.Errorf("Failed to parse program [%s]: %w", text, err)
			}
			programs = append(programs, p)
		}
		coords, err := state.PlacePrograms(programs)
		if err != nil {
			return err
		}
		a.logger.Info("programs placed", "cells", coords)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	driver := ts.NewDriver(config, state, machine, a.logger)

	addr := opts.metricsAddr
	if addr == "" && config.Telemetry.Enabled {
		addr = config.Telemetry.Listen
	}
	if addr != "" {
		driver.Telemetry = ts.NewTelemetry()
		shutdown := a.serveMetrics(addr, driver.Telemetry)
		defer shutdown()
	}

	var runID string
	if config.Persistence.Enabled {
		p, err := a.persistence()
		if err != nil {
			return err
		}
		defer p.Shutdown()

		record, err := p.CreateRun(spec, config.Run, machine, config.History.Fidelity)
		if err != nil {
			return err
		}
		recorder := &ts.Recorder{Persistence: p, RunID: record.ID}
		if err := recorder.SaveSnapshot(ctx, state); err != nil {
			return err
		}
		driver.Sink = recorder
		runID = record.ID
		a.logger.Info("recording run", "run", runID, "db", config.Persistence.DSN())
	}

	if err := driver.Run(ctx, opts.epochs); err != nil {
		return err
	}
	if driver.Sink != nil && driver.State.Epoch != driver.History.LastEpoch() {
		if err := driver.Save(context.Background()); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if runID != "" {
		fmt.Fprintf(out, "run %s\n", runID)
	}
	fmt.Fprintf(out, "epoch %d unique_cells %d\n", driver.State.Epoch, driver.State.UniqueCells)
	if opts.print {
		printGrid(out, driver.State.Grid, machine.Conversions)
	}
	return nil
}

// serveMetrics exposes telemetry on addr until the returned func is called.
func (a *app) serveMetrics(addr string, telemetry *ts.Telemetry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "addr", addr, "err", err)
		}
	}()
	a.logger.Info("serving metrics", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}
