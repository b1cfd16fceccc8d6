package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"tribocli/internal/config"
	"tribocli/internal/infrastructure"
)

// pipelineFlags are the flags that override the pipeline configuration
type pipelineFlags struct {
	inputDir   string
	outputDir  string
	format     string
	workers    int
	summary    bool
	metadata   bool
	nestedDirs string
}

func (f *pipelineFlags) register(cmd *cobra.Command, withOutput bool) {
	cmd.Flags().StringVarP(&f.inputDir, "in", "i", "", "Input root with one subdirectory per experiment")
	cmd.Flags().StringVar(&f.nestedDirs, "nested-dirs", "", "Handling of directories inside an experiment (error, ignore)")
	if !withOutput {
		return
	}
	cmd.Flags().StringVarP(&f.outputDir, "out", "o", "", "Output root (default: sibling of the input root named out)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "Output format (csv, xlsx)")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "Concurrent file parsers (default: number of CPUs)")
	cmd.Flags().BoolVar(&f.summary, "summary", false, "Also write summary statistics of the seconds table")
	cmd.Flags().BoolVar(&f.metadata, "metadata", false, "Also write experiment metadata from the file preambles")
}

// loadConfig builds the configuration: defaults, YAML file, environment, then flags
func loadConfig(cmd *cobra.Command, opts *globalOptions, flags *pipelineFlags) (*config.Config, *config.Paths, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, nil, err
	}

	changed := cmd.Flags().Changed
	if changed("in") {
		cfg.Pipeline.InputDir = flags.inputDir
	}
	if changed("out") {
		cfg.Pipeline.OutputDir = flags.outputDir
	}
	if changed("format") {
		cfg.Output.Format = flags.format
	}
	if changed("workers") {
		cfg.Pipeline.Workers = flags.workers
	}
	if changed("summary") {
		cfg.Output.Summary = flags.summary
	}
	if changed("metadata") {
		cfg.Output.Metadata = flags.metadata
	}
	if changed("nested-dirs") {
		cfg.Pipeline.NestedDirs = flags.nestedDirs
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Logging.Format = opts.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	paths, err := config.ResolvePaths(cfg)
	if err != nil {
		return nil, nil, err
	}
	if paths.LogFile != "" {
		cfg.Logging.FilePath = paths.LogFile
	}
	return cfg, paths, nil
}

// newLogger creates the command logger; the returned func closes the log file
func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, func(), error) {
	logger, file, err := infrastructure.NewLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	closeFn := func() {}
	if file != nil {
		closeFn = func() {
			if err := file.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
			}
		}
	}
	return logger, closeFn, nil
}
