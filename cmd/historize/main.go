// Command historize is a CLI harness around pkg/scd2: it loads a history
// and feed table from typed CSV files, runs historize, and writes the
// result back out. Loading/persisting CSV is a convenience for exercising
// the engine end-to-end from a shell; it carries none of the engine's
// contract and is never imported by pkg/scd2 itself.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "historize",
		Short: "SCD Type-2 historization engine CLI",
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	root.PersistentFlags().String("metrics-addr", "", "address to serve Prometheus metrics on (empty disables)")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return err
		}
		if err := overrideBoolFromEnv("SCD2_VERBOSE", &verbose); err != nil {
			return fmt.Errorf("SCD2_VERBOSE: %w", err)
		}
		return cmd.Flags().Set("verbose", fmt.Sprintf("%t", verbose))
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newValidateCmd())

	return root
}
