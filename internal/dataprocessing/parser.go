package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"tribocli/internal/config"
	apperrors "tribocli/internal/errors"
	"tribocli/pkg/contracts/domain"
)

// ParserOptions describes the raw table format
type ParserOptions struct {
	Delimiter       rune
	DateColumn      string
	TimeColumn      string
	DateTimeColumn  string
	DateLayouts     []string
	TimeLayouts     []string
	DateTimeLayouts []string
	Location        *time.Location
	// AllowUnordered accepts repeated or decreasing timestamps, as found in
	// emitted aggregates. Raw exports must increase strictly.
	AllowUnordered bool
}

// ParserOptionsFromConfig converts the parser configuration
func ParserOptionsFromConfig(cfg config.ParserConfig) (ParserOptions, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return ParserOptions{}, apperrors.NewConfigError(fmt.Sprintf("unknown timezone %q", cfg.Timezone), err)
	}
	delim, _ := utf8.DecodeRuneInString(cfg.Delimiter)

	return ParserOptions{
		Delimiter:       delim,
		DateColumn:      cfg.DateColumn,
		TimeColumn:      cfg.TimeColumn,
		DateTimeColumn:  cfg.DateTimeColumn,
		DateLayouts:     cfg.DateLayouts,
		TimeLayouts:     cfg.TimeLayouts,
		DateTimeLayouts: cfg.DateTimeLayouts,
		Location:        loc,
	}, nil
}

// ParsedFile is one raw file read into a measurement table
type ParsedFile struct {
	Path          string
	Table         domain.Table
	Preamble      []string
	HeaderLine    int
	MissingValues int
}

// Parser reads delimited DASYLab exports into measurement tables
type Parser struct {
	opts            ParserOptions
	combinedLayouts []string
	logger          *slog.Logger
}

// NewParser creates a parser for the given format
func NewParser(opts ParserOptions, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ';'
	}

	combined := make([]string, 0, len(opts.DateLayouts)*len(opts.TimeLayouts))
	for _, dl := range opts.DateLayouts {
		for _, tl := range opts.TimeLayouts {
			combined = append(combined, dl+" "+tl)
		}
	}

	return &Parser{
		opts:            opts,
		combinedLayouts: combined,
		logger:          logger.With(slog.String("component", "parser")),
	}
}

// ParseFile reads one raw measurement file
func (p *Parser) ParseFile(path string) (*ParsedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError(path, "failed to open file", err)
	}
	defer f.Close()

	parsed, err := p.Parse(f, path)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("Parsed file",
		slog.String("path", path),
		slog.Int("header_line", parsed.HeaderLine),
		slog.Int("rows", parsed.Table.Len()),
		slog.Int("columns", len(parsed.Table.Columns)),
		slog.Int("missing_values", parsed.MissingValues))

	return parsed, nil
}

// timestampMode selects how the row timestamp is assembled
type timestampMode int

const (
	timestampDateAndTime timestampMode = iota
	timestampCombined
)

// headerLayout is the resolved column mapping of a header row
type headerLayout struct {
	mode      timestampMode
	dateIdx   int
	timeIdx   int
	valueIdx  []int
	valueName []string
}

// Parse reads a raw table from r. path is only used to qualify errors.
func (p *Parser) Parse(r io.Reader, path string) (*ParsedFile, error) {
	reader := csv.NewReader(r)
	reader.Comma = p.opts.Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	parsed := &ParsedFile{Path: path}

	var header []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil, apperrors.NewParsingError(path,
				fmt.Sprintf("no header row containing %q or %q", p.opts.DateColumn, p.opts.DateTimeColumn), nil)
		}
		if err != nil {
			return nil, apperrors.NewParsingError(path, "failed to read preamble", err)
		}

		if p.isHeader(record) {
			header = record
			parsed.HeaderLine, _ = reader.FieldPos(0)
			break
		}
		parsed.Preamble = append(parsed.Preamble, strings.TrimRight(strings.Join(record, string(p.opts.Delimiter)), string(p.opts.Delimiter)+" "))
	}

	layout, err := p.mapHeader(header)
	if err != nil {
		return nil, apperrors.NewParsingError(path, err.Error(), nil).WithContext("line", parsed.HeaderLine)
	}

	values := make([][]domain.Value, len(layout.valueIdx))
	seenData := make([]bool, len(layout.valueIdx))
	var index []time.Time
	unordered := 0

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError(path, "failed to read row", err)
		}
		if isBlank(record) {
			continue
		}
		line, _ := reader.FieldPos(0)

		ts, err := p.rowTimestamp(record, layout)
		if err != nil {
			return nil, apperrors.NewParsingError(path, fmt.Sprintf("line %d: %v", line, err), nil).WithContext("line", line)
		}
		var prev time.Time
		if n := len(index); n > 0 {
			prev = index[n-1]
		}
		ts = resolveRepeatedWallClock(ts, prev)
		if len(index) > 0 && !ts.After(prev) {
			if !p.opts.AllowUnordered {
				return nil, apperrors.NewParsingError(path,
					fmt.Sprintf("line %d: timestamp %s does not increase (previous %s)", line,
						ts.Format(time.RFC3339), prev.Format(time.RFC3339)), nil).WithContext("line", line)
			}
			unordered++
		}
		index = append(index, ts)

		for i, idx := range layout.valueIdx {
			cell := ""
			if idx < len(record) {
				cell = record[idx]
			}
			if strings.TrimSpace(cell) != "" {
				seenData[i] = true
			}
			if f, ok := ParseNumeric(cell); ok {
				values[i] = append(values[i], domain.Float(f))
			} else {
				values[i] = append(values[i], domain.Missing())
				parsed.MissingValues++
			}
		}
	}

	table := domain.Table{Index: index}
	for i, name := range layout.valueName {
		if name == "" {
			if seenData[i] {
				return nil, apperrors.NewParsingError(path,
					fmt.Sprintf("column %d carries data but has no name", layout.valueIdx[i]+1), nil)
			}
			// rows ending on the delimiter produce one trailing unnamed, empty column
			parsed.MissingValues -= len(index)
			continue
		}
		table.Columns = append(table.Columns, domain.Column{Name: name, Values: values[i]})
	}
	if table.Columns == nil {
		table.Columns = []domain.Column{}
	}
	if len(table.Index) > 0 && len(table.Columns) == 0 {
		p.logger.Warn("File has timestamps but no value columns", slog.String("path", path))
	}

	if unordered > 0 {
		p.logger.Debug("Timestamps do not increase", slog.String("path", path), slog.Int("rows", unordered))
	}

	parsed.Table = table
	return parsed, nil
}

// isHeader reports whether the record is the column header row
func (p *Parser) isHeader(record []string) bool {
	fields := 0
	found := false
	for _, field := range record {
		name := strings.TrimSpace(field)
		if name == "" {
			continue
		}
		fields++
		if strings.EqualFold(name, p.opts.DateColumn) || strings.EqualFold(name, p.opts.DateTimeColumn) {
			found = true
		}
	}
	return found && fields >= 2
}

// mapHeader locates the timestamp columns and the value columns
func (p *Parser) mapHeader(header []string) (headerLayout, error) {
	layout := headerLayout{dateIdx: -1, timeIdx: -1}
	combinedIdx := -1

	for i, field := range header {
		name := strings.TrimSpace(field)
		switch {
		case strings.EqualFold(name, p.opts.DateColumn) && layout.dateIdx < 0:
			layout.dateIdx = i
		case strings.EqualFold(name, p.opts.TimeColumn) && layout.timeIdx < 0:
			layout.timeIdx = i
		case strings.EqualFold(name, p.opts.DateTimeColumn) && combinedIdx < 0:
			combinedIdx = i
		}
	}

	switch {
	case layout.dateIdx >= 0 && layout.timeIdx >= 0:
		layout.mode = timestampDateAndTime
	case layout.dateIdx >= 0:
		return headerLayout{}, fmt.Errorf("header has date column %q but no time column %q", p.opts.DateColumn, p.opts.TimeColumn)
	case combinedIdx >= 0:
		layout.mode = timestampCombined
		layout.dateIdx = combinedIdx
	default:
		return headerLayout{}, fmt.Errorf("header has no datetime column")
	}

	seen := make(map[string]int)
	for i, field := range header {
		if i == layout.dateIdx || (layout.mode == timestampDateAndTime && i == layout.timeIdx) {
			continue
		}
		name := strings.TrimSpace(field)
		if name != "" {
			if prev, dup := seen[name]; dup {
				return headerLayout{}, fmt.Errorf("duplicate column %q at positions %d and %d", name, prev+1, i+1)
			}
			seen[name] = i
		}
		layout.valueIdx = append(layout.valueIdx, i)
		layout.valueName = append(layout.valueName, name)
	}

	return layout, nil
}

// rowTimestamp assembles the timestamp of one data row
func (p *Parser) rowTimestamp(record []string, layout headerLayout) (time.Time, error) {
	field := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	if layout.mode == timestampCombined {
		raw := field(layout.dateIdx)
		if raw == "" {
			return time.Time{}, fmt.Errorf("empty %s field", p.opts.DateTimeColumn)
		}
		return p.parseTime(raw, p.opts.DateTimeLayouts)
	}

	date, clock := field(layout.dateIdx), field(layout.timeIdx)
	if date == "" || clock == "" {
		return time.Time{}, fmt.Errorf("empty %s/%s field", p.opts.DateColumn, p.opts.TimeColumn)
	}
	return p.parseTime(date+" "+clock, p.combinedLayouts)
}

// parseTime tries each layout in order in the configured location
func (p *Parser) parseTime(raw string, layouts []string) (time.Time, error) {
	for _, layout := range layouts {
		if ts, err := time.ParseInLocation(layout, raw, p.opts.Location); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", raw)
}

const wallClockLayout = "2006-01-02 15:04:05.999999999"

// resolveRepeatedWallClock picks, for a wall clock that occurs twice when
// daylight saving ends, the earliest reading after prev. A zero prev selects
// the earlier reading.
func resolveRepeatedWallClock(ts, prev time.Time) time.Time {
	candidates := []time.Time{ts}
	for _, shift := range []time.Duration{-time.Hour, time.Hour} {
		if alt := ts.Add(shift); alt.Format(wallClockLayout) == ts.Format(wallClockLayout) {
			candidates = append(candidates, alt)
		}
	}
	if len(candidates) == 1 {
		return ts
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Before(candidates[j]) })
	for _, c := range candidates {
		if c.After(prev) {
			return c
		}
	}
	return candidates[0]
}

// ParseNumeric normalises a decimal-comma cell such as "1,5" or ",233 kg".
// Trailing non-numeric text is cut off; ok is false when no number remains.
func ParseNumeric(raw string) (float64, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	end := 0
	for end < len(s) && strings.IndexByte("-+0123456789.eE", s[end]) >= 0 {
		end++
	}
	if end == 0 {
		return 0, false
	}

	// an exponent marker is only numeric when digits follow it
	num := s[:end]
	for {
		f, err := strconv.ParseFloat(num, 64)
		if err == nil {
			return f, true
		}
		cut := strings.LastIndexAny(num, "eE")
		if cut <= 0 {
			return 0, false
		}
		num = num[:cut]
	}
}

// isBlank reports whether every field of the record is empty
func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
