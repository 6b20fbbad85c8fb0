package main

import (
	"fmt"

	"github.com/dhamidi/classkit/format"
	"github.com/spf13/cobra"
)

func newPoolCmd() *cobra.Command {
	var flags readFlags

	cmd := &cobra.Command{
		Use:   "pool <file>",
		Short: "List the constant pool with logical indices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cf, _, err := flags.readClass(args[0])
			if err != nil {
				return err
			}
			if err := format.NewPoolEncoder(cmd.OutOrStdout()).Encode(cf); err != nil {
				return fmt.Errorf("encode pool: %w", err)
			}
			return nil
		},
	}

	flags.register(cmd.Flags())

	return cmd
}
