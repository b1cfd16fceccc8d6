package dataprocessing

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tribocli/internal/config"
	"tribocli/pkg/contracts/domain"
)

var testBase = time.Date(2021, 3, 15, 10, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// at returns the test base time shifted by the given minutes
func at(minutes int) time.Time {
	return testBase.Add(time.Duration(minutes) * time.Minute)
}

// f is shorthand for a present value
func f(v float64) domain.Value {
	return domain.Float(v)
}

// na is shorthand for the missing-value marker
var na = domain.Missing()

// testColumn pairs a column name with its values
type testColumn struct {
	name   string
	values []domain.Value
}

// makeTable builds a table from minute offsets and columns
func makeTable(minutes []int, cols ...testColumn) domain.Table {
	table := domain.Table{Index: make([]time.Time, len(minutes)), Columns: []domain.Column{}}
	for i, m := range minutes {
		table.Index[i] = at(m)
	}
	for _, c := range cols {
		table.Columns = append(table.Columns, domain.Column{Name: c.name, Values: c.values})
	}
	return table
}

func col(name string, values ...domain.Value) testColumn {
	return testColumn{name: name, values: values}
}

// newTestParser builds a parser with the default format in Europe/Berlin
func newTestParser(t *testing.T) *Parser {
	t.Helper()
	opts, err := ParserOptionsFromConfig(config.Default().Parser)
	require.NoError(t, err)
	return NewParser(opts, discardLogger())
}

// newAggregateParser builds a parser that reads emitted aggregates
func newAggregateParser(t *testing.T) *Parser {
	t.Helper()
	opts, err := ParserOptionsFromConfig(config.Default().Parser)
	require.NoError(t, err)
	opts.AllowUnordered = true
	return NewParser(opts, discardLogger())
}

// berlin returns a wall clock time in the default timezone
func berlin(t *testing.T, year int, month time.Month, day, hour, minute, sec int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation(config.DefaultTimezone)
	require.NoError(t, err)
	return time.Date(year, month, day, hour, minute, sec, 0, loc)
}
