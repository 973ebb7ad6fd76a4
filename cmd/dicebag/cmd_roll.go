package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chosenoffset/dicebag/pkg/dicebag/dice"
)

func newRollCmd(a *app) *cobra.Command {
	var (
		times int
		rolls []int
	)

	cmd := &cobra.Command{
		Use:   "roll NOTATION...",
		Short: "Roll notations and print every die",
		Long: `Roll each notation and print its canonical form, the individual dice and
the total, for example:

  3d6+2: [4, 1, 6] + 2 = 13

--rolls replays fixed die faces instead of rolling randomly.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if times < 1 {
				return fmt.Errorf("--times must be at least 1, got %d", times)
			}

			var gen dice.Generator
			if len(rolls) > 0 {
				gen = dice.NewSequenceGenerator(rolls...)
			}
			engine, err := a.newEngine(gen)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, notation := range args {
				for i := 0; i < times; i++ {
					record, err := engine.Roll(notation)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%s: %s = %d\n", record.Notation, record.Text, record.Total)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&times, "times", "n", 1, "Roll each notation this many times")
	cmd.Flags().IntSliceVar(&rolls, "rolls", nil, "Replay these die faces in order (e.g. 3,5,1)")
	return cmd
}

func newEvalCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "eval NOTATION",
		Short: "Roll a notation and print only its total",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.newEngine(nil)
			if err != nil {
				return err
			}
			total, err := engine.Evaluate(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), total)
			return nil
		},
	}
}
