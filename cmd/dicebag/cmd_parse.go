package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newParseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse NOTATION",
		Short: "Print the canonical form and range of a notation without rolling",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.newEngine(nil)
			if err != nil {
				return err
			}
			expr, err := engine.Parse(args[0])
			if err != nil {
				return err
			}
			minimum, maximum, err := engine.Bounds(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "notation: %s\n", expr.String())
			fmt.Fprintf(out, "nodes:    %d\n", expr.CountNodes())
			fmt.Fprintf(out, "min:      %d\n", minimum)
			fmt.Fprintf(out, "max:      %d\n", maximum)
			return nil
		},
	}
}
