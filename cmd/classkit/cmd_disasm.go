package main

import (
	"fmt"

	"github.com/dhamidi/classkit/format"
	"github.com/spf13/cobra"
)

func newDisasmCmd() *cobra.Command {
	var flags readFlags
	var method string

	cmd := &cobra.Command{
		Use:   "disasm <file>",
		Short: "Disassemble method bodies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cf, _, err := flags.readClass(args[0])
			if err != nil {
				return err
			}
			enc := format.NewDisasmEncoder(cmd.OutOrStdout()).Method(method)
			if err := enc.Encode(cf); err != nil {
				return fmt.Errorf("disassemble: %w", err)
			}
			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&method, "method", "", "only disassemble methods with this name")

	return cmd
}
