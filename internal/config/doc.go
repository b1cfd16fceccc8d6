// Package config provides configuration management for the tribo pipeline.
// It loads configuration from multiple sources, validates it, and resolves the
// file system paths of a run.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Command line flags (highest priority, applied by the CLI)
//	2. Environment variables
//	3. YAML configuration file
//	4. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern TRIBO_<SECTION>_<FIELD>:
//
//	TRIBO_PIPELINE_INPUT_DIR=/data/raw
//	TRIBO_PIPELINE_WORKERS=4
//	TRIBO_OUTPUT_FORMAT=xlsx
//	TRIBO_PARSER_TIMEZONE=Europe/Berlin
//	TRIBO_LOGGING_LEVEL=debug
//
// List values such as TRIBO_NAMING_PART_MARKERS are comma separated.
//
// # Path Management
//
// ResolvePaths turns the configured directories into absolute paths once at
// startup. The output root defaults to a directory named "out" next to the
// input root and may not lie inside it:
//
//	paths, err := config.ResolvePaths(cfg)
//	if err != nil {
//	    return err
//	}
//	paths.LogPathResolution(logger)
package config
