// Package cmd wires the client together and exposes it as a CLI.
// Everything here is presentation and glue; the interesting state
// lives in the session and booking packages.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "tablebook",
	Short:         "Discover restaurants and reserve tables",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}
