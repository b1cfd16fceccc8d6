package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tribocli/internal/dataprocessing"
	"tribocli/internal/infrastructure"
	"tribocli/pkg/contracts"
)

// telemetryShutdownTimeout bounds the span flush at the end of a run
const telemetryShutdownTimeout = 5 * time.Second

func newRunCmd(opts *globalOptions) *cobra.Command {
	flags := &pipelineFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Aggregate all experiments into the minutes and seconds tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, paths, err := loadConfig(cmd, opts, flags)
			if err != nil {
				return err
			}

			logger, closeLog, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx := infrastructure.WithRunID(cmd.Context(), infrastructure.GenerateRunID())
			paths.LogPathResolution(logger)

			telemetry, err := infrastructure.InitializeTelemetry(cfg.Telemetry, contracts.Version, logger)
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
				defer cancel()
				if err := telemetry.Shutdown(shutdownCtx); err != nil {
					infrastructure.WithError(logger, err).Warn("Telemetry shutdown failed")
				}
			}()

			metrics, err := infrastructure.NewPipelineMetrics(telemetry.Meter)
			if err != nil {
				return fmt.Errorf("failed to create metrics: %w", err)
			}

			processor, err := dataprocessing.NewProcessor(cfg, paths, logger,
				dataprocessing.WithTracer(telemetry.Tracer),
				dataprocessing.WithMetrics(metrics))
			if err != nil {
				return err
			}

			report, err := processor.Run(ctx)
			if err != nil {
				return err
			}

			printRunReport(cmd, report)
			return nil
		},
	}

	flags.register(cmd, true)
	return cmd
}

// printRunReport prints the artifacts and per-resolution counts of a run
func printRunReport(cmd *cobra.Command, report *dataprocessing.RunReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s: %d experiments, %d files (%d ignored) in %s\n",
		report.RunID, report.Experiments, report.Files, report.Ignored, report.Duration.Round(time.Millisecond))
	for _, r := range report.Results {
		fmt.Fprintf(out, "  %-8s %d rows, %d columns, %d sources, %d conflicts\n",
			r.Resolution, r.Table.Len(), len(r.Table.Columns), len(r.Sources), len(r.Conflicts))
	}
	for _, a := range report.Artifacts {
		fmt.Fprintf(out, "  wrote %s\n", a)
	}
}
