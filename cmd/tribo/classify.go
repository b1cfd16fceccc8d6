package main

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tribocli/internal/dataprocessing"
)

func newClassifyCmd(opts *globalOptions) *cobra.Command {
	flags := &pipelineFlags{}

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Show how the input files are classified without processing them",
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

			processor, err := dataprocessing.NewProcessor(cfg, paths, logger)
			if err != nil {
				return err
			}

			report, err := processor.Classify(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "EXPERIMENT\tSERIES\tRESOLUTION\tPART\tFILE")
			for _, f := range report.Files {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
					f.ExperimentID, f.Series, f.Resolution, f.PartIndex, filepath.Base(f.Path))
			}
			for _, f := range report.Ignored {
				fmt.Fprintf(tw, "%s\t-\tignored (%s)\t-\t%s\n",
					filepath.Base(filepath.Dir(f.Path)), f.Reason, filepath.Base(f.Path))
			}
			return tw.Flush()
		},
	}

	flags.register(cmd, false)
	return cmd
}
