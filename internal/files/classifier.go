package files

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"tribocli/internal/config"
	apperrors "tribocli/internal/errors"
	"tribocli/pkg/contracts/domain"
)

// Reasons reported for files that are not classified
const (
	ReasonExtension = "extension"
	ReasonLocked    = "locked"
	ReasonPattern   = "pattern"
)

// lockPrefixes mark editor lock files and temporary copies
var lockPrefixes = []string{".~lock.", "~$"}

// IgnoredFile is a file skipped by the classifier
type IgnoredFile struct {
	Path   string
	Reason string
}

// Classification is the result of classifying one experiment directory
type Classification struct {
	Files   []domain.RawFile
	Ignored []IgnoredFile
}

// Classifier maps raw file names to (series, resolution, part index)
type Classifier struct {
	extension     string
	secondsMarker string
	partMarkers   []string
	ignoreTokens  []string
	logger        *slog.Logger
}

// NewClassifier creates a classifier from the naming vocabulary
func NewClassifier(naming config.NamingConfig, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}

	markers := make([]string, len(naming.PartMarkers))
	for i, m := range naming.PartMarkers {
		markers[i] = strings.ToLower(m)
	}
	tokens := make([]string, len(naming.IgnoreTokens))
	for i, t := range naming.IgnoreTokens {
		tokens[i] = strings.ToLower(t)
	}

	return &Classifier{
		extension:     strings.ToLower(naming.Extension),
		secondsMarker: strings.ToLower(naming.SecondsMarker),
		partMarkers:   markers,
		ignoreTokens:  tokens,
		logger:        logger.With(slog.String("component", "classifier")),
	}
}

// ClassifyName classifies a single file. ok is false when the file is ignored,
// in which case reason says why.
func (c *Classifier) ClassifyName(experimentID, path string) (file domain.RawFile, ok bool, reason string, err error) {
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	if !strings.EqualFold(ext, c.extension) {
		return domain.RawFile{}, false, ReasonExtension, nil
	}

	for _, prefix := range lockPrefixes {
		if strings.HasPrefix(name, prefix) {
			return domain.RawFile{}, false, ReasonLocked, nil
		}
	}

	stem := strings.ToLower(strings.TrimSuffix(name, ext))
	for _, token := range c.ignoreTokens {
		if strings.Contains(stem, token) {
			return domain.RawFile{}, false, ReasonPattern, nil
		}
	}

	resolution := domain.ResolutionMinutes
	if strings.Contains(stem, c.secondsMarker) {
		resolution = domain.ResolutionSeconds
		stem = strings.ReplaceAll(stem, c.secondsMarker, "")
	}

	partIndex := 0
	for i, marker := range c.partMarkers {
		if !strings.Contains(stem, marker) {
			continue
		}
		if partIndex != 0 {
			return domain.RawFile{}, false, "", apperrors.NewClassificationError(path,
				fmt.Sprintf("file name carries continuation markers %q and %q", c.partMarkers[partIndex-1], marker))
		}
		partIndex = i + 1
	}
	if partIndex > 0 {
		stem = strings.ReplaceAll(stem, c.partMarkers[partIndex-1], "")
	}

	return domain.RawFile{
		ExperimentID: experimentID,
		Series:       strings.Trim(stem, "_- ."),
		Resolution:   resolution,
		PartIndex:    partIndex,
		Path:         path,
	}, true, "", nil
}

// Classify classifies the files of one experiment directory. Two files that
// resolve to the same (series, resolution, part) identity are a conflict.
func (c *Classifier) Classify(experimentID string, files []FileInfo) (Classification, error) {
	var result Classification
	seen := make(map[string]string, len(files))

	for _, f := range files {
		raw, ok, reason, err := c.ClassifyName(experimentID, f.Path)
		if err != nil {
			return Classification{}, err
		}
		if !ok {
			level := slog.LevelDebug
			if reason != ReasonExtension {
				level = slog.LevelWarn
			}
			c.logger.Log(context.Background(), level, "File will be ignored",
				slog.String("experiment", experimentID),
				slog.String("file", f.Name),
				slog.String("reason", reason))
			result.Ignored = append(result.Ignored, IgnoredFile{Path: f.Path, Reason: reason})
			continue
		}

		if first, dup := seen[raw.Key()]; dup {
			identity := fmt.Sprintf("%s/%s part %d", raw.Label(), raw.Resolution, raw.PartIndex)
			return Classification{}, apperrors.NewClassificationConflict(identity, first, raw.Path)
		}
		seen[raw.Key()] = raw.Path

		c.logger.Debug("Classified file",
			slog.String("experiment", experimentID),
			slog.String("file", f.Name),
			slog.String("series", raw.Series),
			slog.String("resolution", raw.Resolution.String()),
			slog.Int("part", raw.PartIndex))
		result.Files = append(result.Files, raw)
	}

	return result, nil
}
