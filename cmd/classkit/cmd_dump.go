package main

import (
	"fmt"

	"github.com/dhamidi/classkit/format"
	"github.com/spf13/cobra"
)

func newDumpCmd() *cobra.Command {
	var flags readFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Dump the header, members and attributes of a .class file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cf, _, err := flags.readClass(args[0])
			if err != nil {
				return err
			}

			var encoder format.Encoder
			if asJSON {
				encoder = format.NewJSONEncoder(cmd.OutOrStdout())
			} else {
				encoder = format.NewLineEncoder(cmd.OutOrStdout())
			}
			if err := encoder.Encode(cf); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			if asJSON {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of tab-separated lines")

	return cmd
}
