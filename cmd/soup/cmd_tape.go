package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	ts "nickandperla.net/tapesoup"
	bf "nickandperla.net/tapesoup/brainfuck"
)

func newExecCmd(a *app) *cobra.Command {
	var maxReads int
	cmd := &cobra.Command{
		Use:   "exec PROGRAM",
		Short: "Run one program and print the tape it leaves behind",
		Long: `Run one program. PROGRAM is either a comma separated list of
integers or the readable encoding, for example "[<-]".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("max-reads") {
				a.config.Machine.MaxReads = maxReads
			}
			machine, err := a.machine()
			if err != nil {
				return err
			}
			program, err := machine.Conversions.ParseGenericInput(args[0])
			if err != nil {
				return fmt.Errorf("Failed to parse program [%s]: %w", args[0], err)
			}

			tape := bf.NewTape(program.Clone())
			machine.Run(tape)

			out := cmd.OutOrStdout()
			printProgram(out, "in", program, machine.Conversions)
			printProgram(out, "out", tape.Cells, machine.Conversions)
			fmt.Fprintf(out, "reads %d\n", tape.NumReads)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxReads, "max-reads", bf.DEFAULT_MAX_READS, "Read budget for the run")
	return cmd
}

func newCrossCmd(a *app) *cobra.Command {
	var pivot int
	var seed string
	cmd := &cobra.Command{
		Use:   "cross A B",
		Short: "Cross two programs and print both halves",
		Long: `Concatenate A and B, run the result and split it back at len(A).
With --pivot the concatenation is rotated before it runs. With --seed a
pivot is drawn the way random pivot pairing draws one.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			machine, err := a.machine()
			if err != nil {
				return err
			}
			programs := make([]bf.Program, len(args))
			for i, text := range args {
				if programs[i], err = machine.Conversions.ParseGenericInput(text); err != nil {
					return fmt.Errorf("Failed to parse program [%s]: %w", text, err)
				}
			}

			if cmd.Flags().Changed("seed") {
				rng := ts.NewMulberry32(ts.ParseSeed(seed))
				pivot = bf.DrawPivot(len(programs[0])+len(programs[1]), rng)
			}
			a.logger.Debug("crossing", "pivot", pivot)
			outA, outB := machine.CrossAt(programs[0], programs[1], pivot)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pivot %d\n", pivot)
			printProgram(out, "a", outA, machine.Conversions)
			printProgram(out, "b", outB, machine.Conversions)
			return nil
		},
	}
	cmd.Flags().IntVar(&pivot, "pivot", 0, "Rotation applied before running")
	cmd.Flags().StringVar(&seed, "seed", "", "Draw the pivot from a generator with this seed")
	return cmd
}

func printProgram(w io.Writer, label string, p bf.Program, conversions bf.Conversions) {
	fmt.Fprintf(w, "%s %s\n", label, conversions.Encode(p))
	fmt.Fprintf(w, "%s %s\n", label, bf.FormatIntegers(p))
}
