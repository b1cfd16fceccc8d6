package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains the resolved locations used by one pipeline run.
// This is the single source of truth for file system paths; nothing reads the
// working directory after ResolvePaths returns.
type Paths struct {
	InputDir  string
	OutputDir string
	LogFile   string
}

// ResolvePaths turns the configured directories into absolute paths.
// The output root defaults to a directory named "out" next to the input root.
func ResolvePaths(cfg *Config) (*Paths, error) {
	if cfg.Pipeline.InputDir == "" {
		return nil, NewPathError("input directory is not configured", "")
	}

	inputDir, err := filepath.Abs(cfg.Pipeline.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve input directory %s: %w", cfg.Pipeline.InputDir, err)
	}

	info, err := os.Stat(inputDir)
	if err != nil {
		return nil, fmt.Errorf("input directory %s: %w", inputDir, err)
	}
	if !info.IsDir() {
		return nil, NewPathError("input path is not a directory", inputDir)
	}

	outputDir := cfg.Pipeline.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join(filepath.Dir(inputDir), DefaultOutputDirName)
	}
	outputDir, err = filepath.Abs(outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory %s: %w", cfg.Pipeline.OutputDir, err)
	}

	if isWithin(outputDir, inputDir) {
		return nil, NewPathError("output directory must not be inside the input directory", outputDir)
	}

	paths := &Paths{
		InputDir:  inputDir,
		OutputDir: outputDir,
	}
	if cfg.Logging.FilePath != "" {
		if paths.LogFile, err = filepath.Abs(cfg.Logging.FilePath); err != nil {
			return nil, fmt.Errorf("failed to resolve log file %s: %w", cfg.Logging.FilePath, err)
		}
	}

	return paths, nil
}

// EnsureOutputDir creates the output root if it doesn't exist
func (p *Paths) EnsureOutputDir() error {
	if err := os.MkdirAll(p.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", p.OutputDir, err)
	}
	slog.Debug("Ensured directory exists", slog.String("directory", p.OutputDir))
	return nil
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Resolved paths",
		slog.String("input_dir", p.InputDir),
		slog.String("output_dir", p.OutputDir),
		slog.String("log_file", p.LogFile))
}

// PathError reports an unusable configured path
type PathError struct {
	Message string
	Path    string
}

// Error implements the error interface
func (e *PathError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Path)
}

// NewPathError creates a new path error
func NewPathError(message, path string) *PathError {
	return &PathError{Message: message, Path: path}
}

// isWithin reports whether path equals dir or lies below it
func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
