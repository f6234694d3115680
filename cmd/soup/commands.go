package main

import (
	"fmt"
	"io"
	"log/slog"
	str "strings"

	"github.com/spf13/cobra"
	ts "nickandperla.net/tapesoup"
	bf "nickandperla.net/tapesoup/brainfuck"
)

// app carries what PersistentPreRunE loads for every subcommand.
type app struct {
	configPath string

	config *ts.Config
	logger *slog.Logger
	closer io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "soup",
		Short: "Evolve and inspect a grid of self-modifying tape programs",
		Long: `soup runs a primordial soup of tape programs on a toroidal grid.
Programs are paired with a neighbour every epoch, concatenated, executed
and split back, so code that copies itself tends to take over.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.load,
		PersistentPostRunE: a.close,
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "TOML or YAML config file; defaults are used when empty")

	root.AddCommand(
		newRunCmd(a),
		newExecCmd(a),
		newCrossCmd(a),
		newReplayCmd(a),
		newStatsCmd(a),
		newRunsCmd(a),
	)
	return root
}

func (a *app) load(cmd *cobra.Command, args []string) error {
	config := ts.DefaultConfig()
	if a.configPath != "" {
		var err error
		if config, err = ts.LoadConfig(a.configPath); err != nil {
			return err
		}
	}

	logger, closer, err := ts.NewLogger(config.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.config = config
	a.logger = logger
	a.closer = closer
	return nil
}

func (a *app) close(cmd *cobra.Command, args []string) error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func (a *app) machine() (*bf.Machine, error) {
	m, err := bf.NewMachineFromConfig(&a.config.Machine)
	if err != nil {
		return nil, fmt.Errorf("Failed to build machine: %w", err)
	}
	return m, nil
}

func (a *app) persistence() (*ts.Persistence, error) {
	return ts.NewPersistence(&a.config.Persistence)
}

// printGrid writes one row per line, cells in their readable encoding.
func printGrid(w io.Writer, grid ts.Grid, conversions bf.Conversions) {
	cells := make([]string, 0, grid.Width())
	for _, row := range grid {
		cells = cells[:0]
		for _, cell := range row {
			cells = append(cells, conversions.Encode(cell))
		}
		fmt.Fprintln(w, str.Join(cells, " "))
	}
}
