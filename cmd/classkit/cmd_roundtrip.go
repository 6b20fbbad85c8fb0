package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dhamidi/classkit/classfile"
	"github.com/spf13/cobra"
)

var errNotIdentical = errors.New("re-encoded class differs from input")

func newRoundtripCmd() *cobra.Command {
	var flags readFlags
	var output string

	cmd := &cobra.Command{
		Use:   "roundtrip <file>",
		Short: "Decode and re-encode a class file, reporting whether the bytes survive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, cf, diags, err := flags.readClass(args[0])
			if err != nil {
				return err
			}
			out, err := classfile.Write(cf)
			if err != nil {
				return fmt.Errorf("write class file: %w", err)
			}
			if output != "" {
				if err := os.WriteFile(output, out, 0o644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
			}

			w := cmd.OutOrStdout()
			printDiagnostics(w, diags)
			if at := firstDifference(data, out); at >= 0 {
				fmt.Fprintf(w, "differs at offset %d (input %d bytes, output %d bytes)\n", at, len(data), len(out))
				return errNotIdentical
			}
			fmt.Fprintf(w, "identical (%d bytes)\n", len(out))
			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the re-encoded class to `path`")

	return cmd
}

// firstDifference returns the first offset at which a and b differ, or -1
// if they are equal.
func firstDifference(a, b []byte) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return n
	}
	return -1
}
