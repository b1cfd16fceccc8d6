package exporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"

	"tribocli/internal/config"
	apperrors "tribocli/internal/errors"
	"tribocli/pkg/contracts/domain"
)

// Output formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// WriteOptions configures how tables are written
type WriteOptions struct {
	Format          string
	Delimiter       rune
	TimestampLabel  string
	TimestampLayout string
	FloatPrecision  int
}

// WriteOptionsFromConfig derives the write options from the configuration
func WriteOptionsFromConfig(cfg *config.Config) WriteOptions {
	return WriteOptions{
		Format:          cfg.Output.Format,
		Delimiter:       cfg.OutputDelimiter(),
		TimestampLabel:  cfg.Output.TimestampLabel,
		TimestampLayout: cfg.Output.TimestampLayout,
		FloatPrecision:  cfg.Output.FloatPrecision,
	}
}

// TableWriter writes the run artifacts into one output directory
type TableWriter struct {
	outputDir string
	opts      WriteOptions
	logger    *slog.Logger
}

// NewTableWriter creates a new table writer instance
func NewTableWriter(outputDir string, opts WriteOptions, logger *slog.Logger) *TableWriter {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Format == "" {
		opts.Format = FormatCSV
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ';'
	}
	if opts.TimestampLabel == "" {
		opts.TimestampLabel = config.DefaultDateTimeColumn
	}
	if opts.TimestampLayout == "" {
		opts.TimestampLayout = config.DefaultTimestampLayout
	}
	return &TableWriter{
		outputDir: outputDir,
		opts:      opts,
		logger:    logger.With(slog.String("component", "exporter")),
	}
}

// ArtifactName returns the file name of the table artifact of a resolution
func (w *TableWriter) ArtifactName(res domain.Resolution) string {
	base := config.MinutesArtifactName
	if res == domain.ResolutionSeconds {
		base = config.SecondsArtifactName
	}
	return base + "." + w.opts.Format
}

// WriteTable writes the aggregate table of one resolution, replacing any
// previous artifact. An empty table still produces a header-only artifact.
// Rows keep the table order, which need not be monotonic.
func (w *TableWriter) WriteTable(res domain.Resolution, table domain.Table) (string, error) {
	path := filepath.Join(w.outputDir, w.ArtifactName(res))
	if err := table.Validate(); err != nil {
		return "", apperrors.NewAppValidationError(err.Error()).WithContext("path", path)
	}

	var err error
	switch w.opts.Format {
	case FormatCSV:
		err = writeAtomic(path, func(out io.Writer) error {
			return w.writeCSVTable(out, table)
		})
	case FormatXLSX:
		err = writeAtomic(path, func(out io.Writer) error {
			return w.writeXLSXTable(out, res.String(), table)
		})
	default:
		return "", apperrors.NewConfigError(fmt.Sprintf("unsupported output format %q", w.opts.Format), nil)
	}
	if err != nil {
		return "", apperrors.NewStorageError(path, "failed to write table", err)
	}

	w.logger.Info("Wrote table",
		slog.String("resolution", res.String()),
		slog.String("path", path),
		slog.Int("rows", table.Len()),
		slog.Int("columns", len(table.Columns)))

	return path, nil
}

// header returns the header row of a table
func (w *TableWriter) header(table domain.Table) []string {
	return append([]string{w.opts.TimestampLabel}, table.ColumnNames()...)
}

// writeCSVTable writes the table as delimited text
func (w *TableWriter) writeCSVTable(out io.Writer, table domain.Table) error {
	writer := csv.NewWriter(out)
	writer.Comma = w.opts.Delimiter

	if err := writer.Write(w.header(table)); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	record := make([]string, len(table.Columns)+1)
	for r, ts := range table.Index {
		record[0] = formatTimestamp(ts, w.opts.TimestampLayout)
		for c, col := range table.Columns {
			record[c+1] = formatValue(col.Values[r], w.opts.FloatPrecision)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", r, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteSummary writes per-column statistics with one row per statistic
func (w *TableWriter) WriteSummary(summaries []domain.ColumnSummary) (string, error) {
	path := filepath.Join(w.outputDir, config.SummaryArtifactName)

	err := writeAtomic(path, func(out io.Writer) error {
		writer := csv.NewWriter(out)
		writer.Comma = w.opts.Delimiter

		header := make([]string, 0, len(summaries)+1)
		header = append(header, "")
		for _, s := range summaries {
			header = append(header, s.Column)
		}
		if err := writer.Write(header); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}

		for i, stat := range domain.SummaryStatistics() {
			record := make([]string, 0, len(summaries)+1)
			record = append(record, stat)
			for _, s := range summaries {
				if i == 0 {
					record = append(record, formatInt(s.Count))
					continue
				}
				record = append(record, formatFloat(s.Values()[i], w.opts.FloatPrecision))
			}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write %s row: %w", stat, err)
			}
		}

		writer.Flush()
		return writer.Error()
	})
	if err != nil {
		return "", apperrors.NewStorageError(path, "failed to write summary", err)
	}

	w.logger.Info("Wrote summary", slog.String("path", path), slog.Int("columns", len(summaries)))
	return path, nil
}

// WriteMetadata writes the experiment metadata as a JSON array ordered by experiment
func (w *TableWriter) WriteMetadata(metadata []domain.ExperimentMetadata) (string, error) {
	path := filepath.Join(w.outputDir, config.MetadataArtifactName)

	ordered := make([]domain.ExperimentMetadata, len(metadata))
	copy(ordered, metadata)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ExperimentID < ordered[j].ExperimentID
	})

	err := writeAtomic(path, func(out io.Writer) error {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(ordered)
	})
	if err != nil {
		return "", apperrors.NewStorageError(path, "failed to write metadata", err)
	}

	w.logger.Info("Wrote metadata", slog.String("path", path), slog.Int("experiments", len(ordered)))
	return path, nil
}
