package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose int
	var logFile string

	rootCmd := &cobra.Command{
		Use:          "classkit",
		Short:        "Inspect and rewrite JVM class files",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Initialize(verbose, logFile)
		},
	}

	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase log verbosity (repeatable)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "", "write logs to `path` instead of stderr")

	rootCmd.AddCommand(newDumpCmd())
	rootCmd.AddCommand(newPoolCmd())
	rootCmd.AddCommand(newDisasmCmd())
	rootCmd.AddCommand(newRoundtripCmd())
	rootCmd.AddCommand(newCheckCmd())

	return rootCmd
}
