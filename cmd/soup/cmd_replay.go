package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	ts "nickandperla.net/tapesoup"
	bf "nickandperla.net/tapesoup/brainfuck"
)

// replayOptions selects a recorded run and an epoch inside it.
type replayOptions struct {
	db    string
	epoch int
}

func (o *replayOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.db, "db", "", "sqlite file the run was recorded to; overrides the persistence config")
	cmd.Flags().IntVar(&o.epoch, "epoch", -1, "Epoch to rewind to; negative means the last recorded epoch")
}

// rewind rebuilds the run's history and replays it to the requested epoch.
func (a *app) rewind(ctx context.Context, runID string, opts *replayOptions) (*ts.RunState, *bf.Machine, error) {
	if opts.db != "" {
		useDatabase(&a.config.Persistence, opts.db)
	}
	p, err := a.persistence()
	if err != nil {
		return nil, nil, err
	}
	defer p.Shutdown()

	run, err := p.LoadRun(runID)
	if err != nil {
		return nil, nil, err
	}
	machine, err := run.Machine()
	if err != nil {
		return nil, nil, err
	}
	history, err := p.LoadHistory(ctx, run)
	if err != nil {
		return nil, nil, err
	}

	epoch := opts.epoch
	if epoch < 0 {
		epoch = history.LastEpoch()
	}
	a.logger.Debug("rewinding", "run", run.ID, "epoch", epoch, "snapshots", history.Epochs())

	reactor := ts.NewReactor(machine, 0)
	return history.Rewind(epoch, reactor.Advance(run.RunSpec())), machine, nil
}

func newReplayCmd(a *app) *cobra.Command {
	opts := &replayOptions{}
	cmd := &cobra.Command{
		Use:   "replay RUN_ID",
		Short: "Rebuild a recorded run at any epoch and print its grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, machine, err := a.rewind(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "epoch %d unique_cells %d\n", state.Epoch, state.UniqueCells)
			printGrid(out, state.Grid, machine.Conversions)
			return nil
		},
	}
	opts.register(cmd)
	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	opts := &replayOptions{}
	cmd := &cobra.Command{
		Use:   "stats RUN_ID",
		Short: "Summarise a recorded run at any epoch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, machine, err := a.rewind(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			m := ts.ComputeGridMetrics(state, machine.Conversions)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "epoch\t%d\n", m.Epoch)
			fmt.Fprintf(w, "cells\t%d\n", m.Cells)
			fmt.Fprintf(w, "unique_cells\t%d\n", m.UniqueCells)
			fmt.Fprintf(w, "dominant\t%s\n", machine.Conversions.Encode(m.Dominant))
			fmt.Fprintf(w, "dominant_count\t%d\n", m.DominantCount)
			fmt.Fprintf(w, "mean_distance\t%.3f\n", m.MeanDistance)
			fmt.Fprintf(w, "data\t%d\n", m.DataCount)
			for op, count := range m.Histogram {
				fmt.Fprintf(w, "%s\t%d\n", bf.OP(op), count)
			}
			return w.Flush()
		},
	}
	opts.register(cmd)
	return cmd
}

func newRunsCmd(a *app) *cobra.Command {
	var db string
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if db != "" {
				useDatabase(&a.config.Persistence, db)
			}
			p, err := a.persistence()
			if err != nil {
				return err
			}
			defer p.Shutdown()

			runs, err := p.ListRuns()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCREATED\tSIZE\tLENGTH\tSEED\tNOISE")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%dx%d\t%d\t%d\t%s\n",
					run.ID, run.CreatedAt.Format(time.RFC3339), run.Height, run.Width,
					run.ProgramLength, run.Seed, run.NoiseAction)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&db, "db", "", "sqlite file to list; overrides the persistence config")
	return cmd
}
