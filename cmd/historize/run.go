package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/lakeforge/scd2historize/internal/clockutil"
	"github.com/lakeforge/scd2historize/internal/logger"
	"github.com/lakeforge/scd2historize/internal/metrics"
	"github.com/lakeforge/scd2historize/pkg/scd2"
)

func newRunCmd() *cobra.Command {
	var (
		historyPath string
		feedPath    string
		outputPath  string
		pkFlag      string
		offset      = scd2.DefaultOffset
		doomsday    = scd2.Doomsday
		runID       string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Historize a feed snapshot against an existing history table",
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, err := cmd.Root().PersistentFlags().GetBool("verbose")
			if err != nil {
				return fmt.Errorf("failed to get verbose flag: %w", err)
			}
			metricsAddr, err := cmd.Root().PersistentFlags().GetString("metrics-addr")
			if err != nil {
				return fmt.Errorf("failed to get metrics-addr flag: %w", err)
			}

			if err := overrideDurationFromEnv("SCD2_OFFSET", &offset); err != nil {
				return fmt.Errorf("SCD2_OFFSET: %w", err)
			}
			if err := overrideTimeFromEnv("SCD2_DOOMSDAY", &doomsday); err != nil {
				return fmt.Errorf("SCD2_DOOMSDAY: %w", err)
			}
			overrideStringFromEnv("SCD2_RUN_ID", &runID)

			log := logger.New(cmd.OutOrStdout(), verbose)

			if metricsAddr != "" {
				go func() {
					mux := http.NewServeMux()
					mux.Handle("/metrics", promhttp.Handler())
					log.Error("metrics server exited", "error", http.ListenAndServe(metricsAddr, mux))
				}()
			}

			pk := strings.Split(pkFlag, ",")
			if pkFlag == "" {
				return fmt.Errorf("--pk is required")
			}

			history, err := loadTypedCSV(historyPath)
			if err != nil {
				return fmt.Errorf("loading history: %w", err)
			}
			feed, err := loadTypedCSV(feedPath)
			if err != nil {
				return fmt.Errorf("loading feed: %w", err)
			}

			clock := clockutil.Resolve(clockwork.NewRealClock())
			reference := clock.Now().UTC()

			start := clock.Now()
			result, err := scd2.Historize(context.Background(), history, feed, pk, reference, scd2.Options{
				Offset:   offset,
				Doomsday: doomsday,
				RunID:    runID,
				Logger:   log,
			})
			metrics.RecordRun(clock.Since(start), err)
			if err != nil {
				return fmt.Errorf("historize: %w", err)
			}
			metrics.RecordRowCounts(result.UnchangedOpen, result.Closed, result.Opened, result.CarriedClosed)

			log.Info("historize run completed",
				"run_id", result.RunID,
				"unchanged_open", result.UnchangedOpen,
				"closed", result.Closed,
				"opened", result.Opened,
				"carried_closed", result.CarriedClosed,
			)

			if err := writeTypedCSV(outputPath, result.History); err != nil {
				return fmt.Errorf("writing result: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&historyPath, "history", "", "path to the history CSV file")
	cmd.Flags().StringVar(&feedPath, "feed", "", "path to the feed CSV file")
	cmd.Flags().StringVar(&outputPath, "output", "", "path to write the new history CSV file")
	cmd.Flags().StringVar(&pkFlag, "pk", "", "comma-separated primary key column names")
	cmd.Flags().DurationVar(&offset, "offset", offset, "minimum gap between a closed interval and the next open one (or set SCD2_OFFSET)")
	cmd.Flags().StringVar(&runID, "run-id", "", "identifier for this run, used only for observability (or set SCD2_RUN_ID)")
	_ = cmd.MarkFlagRequired("history")
	_ = cmd.MarkFlagRequired("feed")
	_ = cmd.MarkFlagRequired("output")
	_ = cmd.MarkFlagRequired("pk")

	return cmd
}
