package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lakeforge/scd2historize/internal/logger"
	"github.com/lakeforge/scd2historize/internal/metrics"
	"github.com/lakeforge/scd2historize/pkg/scd2"
)

func newValidateCmd() *cobra.Command {
	var (
		historyPath string
		pkFlag      string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a historized table against I1-I4 without modifying it",
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, err := cmd.Root().PersistentFlags().GetBool("verbose")
			if err != nil {
				return fmt.Errorf("failed to get verbose flag: %w", err)
			}
			log := logger.New(cmd.OutOrStdout(), verbose)

			if pkFlag == "" {
				return fmt.Errorf("--pk is required")
			}
			pk := strings.Split(pkFlag, ",")

			history, err := loadTypedCSV(historyPath)
			if err != nil {
				return fmt.Errorf("loading history: %w", err)
			}

			violations, err := scd2.ValidateHistory(history, pk)
			if err != nil {
				return fmt.Errorf("validate: %w", err)
			}

			invariants := make([]string, len(violations))
			for i, v := range violations {
				invariants[i] = v.Invariant
				fmt.Fprintln(cmd.OutOrStdout(), v.String())
			}
			metrics.RecordViolations(invariants)

			if len(violations) > 0 {
				log.Warn("history validation found violations", "count", len(violations))
				return fmt.Errorf("%d invariant violation(s) found", len(violations))
			}
			log.Info("history validation passed", "rows", history.NumRows())
			return nil
		},
	}

	cmd.Flags().StringVar(&historyPath, "history", "", "path to the history CSV file to validate")
	cmd.Flags().StringVar(&pkFlag, "pk", "", "comma-separated primary key column names")
	_ = cmd.MarkFlagRequired("history")
	_ = cmd.MarkFlagRequired("pk")

	return cmd
}
