package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"tribocli/internal/config"
	apperrors "tribocli/internal/errors"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// Discovery lists experiment directories below one input root. It descends
// exactly one level: the experiment directories themselves.
type Discovery struct {
	basePath   string
	nestedDirs string
	logger     *slog.Logger
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath, nestedDirs string, logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	if nestedDirs == "" {
		nestedDirs = config.NestedDirsError
	}
	return &Discovery{
		basePath:   basePath,
		nestedDirs: nestedDirs,
		logger:     logger.With(slog.String("component", "discovery")),
	}
}

// ListExperiments returns the experiment subdirectories of the input root, sorted by name.
// Plain files in the root do not belong to any experiment and are skipped.
func (d *Discovery) ListExperiments() ([]FileInfo, error) {
	entries, err := os.ReadDir(d.basePath)
	if err != nil {
		return nil, apperrors.NewStorageError(d.basePath, "failed to read input directory", err)
	}

	var dirs []FileInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			d.logger.Warn("File outside experiment directory will be ignored",
				slog.String("file", entry.Name()))
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, apperrors.NewStorageError(filepath.Join(d.basePath, entry.Name()), "failed to stat directory", err)
		}

		dirs = append(dirs, FileInfo{
			Path:    filepath.Join(d.basePath, entry.Name()),
			Name:    entry.Name(),
			ModTime: info.ModTime(),
			IsDir:   true,
		})
	}

	sort.Slice(dirs, func(i, j int) bool {
		return dirs[i].Name < dirs[j].Name
	})

	return dirs, nil
}

// ListExperimentFiles returns the plain files of one experiment directory, sorted by name.
// Subdirectories are either a configuration error or skipped, depending on the nested
// directory policy.
func (d *Discovery) ListExperimentFiles(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperrors.NewStorageError(dir, "failed to read experiment directory", err)
	}

	var files []FileInfo
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			if d.nestedDirs == config.NestedDirsIgnore {
				d.logger.Warn("Nested directory will be ignored",
					slog.String("directory", path))
				continue
			}
			return nil, apperrors.NewConfigError(
				fmt.Sprintf("experiment directory contains nested directory %q; set nested_dirs=ignore to skip it", entry.Name()), nil).
				WithContext("path", path)
		}

		info, err := entry.Info()
		if err != nil {
			return nil, apperrors.NewStorageError(path, "failed to stat file", err)
		}

		files = append(files, FileInfo{
			Path:    path,
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}
