package main

import (
	"fmt"
	"io"

	"github.com/dhamidi/classkit/classfile"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	var flags readFlags

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Report attributes the decoder had to drop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, diags, err := flags.readClass(args[0])
			printDiagnostics(cmd.OutOrStdout(), diags)
			if err != nil {
				return err
			}
			if len(diags) > 0 {
				return fmt.Errorf("%d attribute(s) dropped", len(diags))
			}
			return nil
		},
	}

	flags.register(cmd.Flags())

	return cmd
}

func printDiagnostics(w io.Writer, diags []classfile.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d)
	}
}
