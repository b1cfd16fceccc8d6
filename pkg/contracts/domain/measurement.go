package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Resolution is the sampling granularity of a measurement file
type Resolution string

const (
	ResolutionMinutes Resolution = "minutes"
	ResolutionSeconds Resolution = "seconds"
)

// AllResolutions returns the resolutions in the order they are processed and emitted
func AllResolutions() []Resolution {
	return []Resolution{ResolutionMinutes, ResolutionSeconds}
}

// String returns the resolution name
func (r Resolution) String() string {
	return string(r)
}

// Valid reports whether r is a known resolution
func (r Resolution) Valid() bool {
	return r == ResolutionMinutes || r == ResolutionSeconds
}

// Value is a single numeric cell. Valid is false for the missing-value marker,
// which is distinct from a recorded zero.
type Value struct {
	Float float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// Float returns a present value
func Float(f float64) Value {
	return Value{Float: f, Valid: true}
}

// Missing returns the missing-value marker
func Missing() Value {
	return Value{}
}

// IsMissing reports whether v is the missing-value marker
func (v Value) IsMissing() bool {
	return !v.Valid
}

// Column is a named sequence of values aligned to a table index
type Column struct {
	Name   string  `json:"name"`
	Values []Value `json:"values"`
}

// Table is a time-indexed measurement table.
// Every column holds exactly len(Index) values.
type Table struct {
	Index   []time.Time `json:"index"`
	Columns []Column    `json:"columns"`
}

// NewTable creates an empty table with the given column names
func NewTable(names ...string) Table {
	cols := make([]Column, len(names))
	for i, name := range names {
		cols[i] = Column{Name: name}
	}
	return Table{Columns: cols}
}

// Len returns the number of rows
func (t Table) Len() int {
	return len(t.Index)
}

// ColumnNames returns the column names in table order
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the column with the given name
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnSetKey returns an order-insensitive key identifying the column set
func (t Table) ColumnSetKey() string {
	names := t.ColumnNames()
	sort.Strings(names)
	return strings.Join(names, "\x00")
}

// MissingCount returns the number of missing-value markers in the table
func (t Table) MissingCount() int {
	n := 0
	for _, c := range t.Columns {
		for _, v := range c.Values {
			if v.IsMissing() {
				n++
			}
		}
	}
	return n
}

// Validate checks that every column is aligned to the index and names are unique
func (t Table) Validate() error {
	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if seen[c.Name] {
			return fmt.Errorf("duplicate column %q", c.Name)
		}
		seen[c.Name] = true
		if len(c.Values) != len(t.Index) {
			return fmt.Errorf("column %q has %d values, index has %d", c.Name, len(c.Values), len(t.Index))
		}
	}
	return nil
}

// Clone returns a deep copy of the table
func (t Table) Clone() Table {
	out := Table{
		Index:   append([]time.Time(nil), t.Index...),
		Columns: make([]Column, len(t.Columns)),
	}
	for i, c := range t.Columns {
		out.Columns[i] = Column{Name: c.Name, Values: append([]Value(nil), c.Values...)}
	}
	return out
}

// Row returns the values of row i keyed by column name
func (t Table) Row(i int) map[string]Value {
	row := make(map[string]Value, len(t.Columns))
	for _, c := range t.Columns {
		row[c.Name] = c.Values[i]
	}
	return row
}

// ExperimentTable is the combination of all parts of one experiment series
// at one resolution
type ExperimentTable struct {
	ExperimentID string     `json:"experiment_id"`
	Series       string     `json:"series"`
	Resolution   Resolution `json:"resolution"`
	Table        Table      `json:"table"`
}

// Label identifies the experiment table in logs and conflicts
func (e ExperimentTable) Label() string {
	if e.Series == "" {
		return e.ExperimentID
	}
	return e.ExperimentID + "/" + e.Series
}

// JoinConflict records two sources disagreeing on one (timestamp, column) cell
type JoinConflict struct {
	Timestamp   time.Time `json:"timestamp"`
	Column      string    `json:"column"`
	Kept        float64   `json:"kept"`
	KeptFrom    string    `json:"kept_from"`
	Dropped     float64   `json:"dropped"`
	DroppedFrom string    `json:"dropped_from"`
}

// String formats the conflict for log output
func (c JoinConflict) String() string {
	return fmt.Sprintf("%s %s: kept %g (%s), dropped %g (%s)",
		c.Timestamp.Format(time.RFC3339Nano), c.Column, c.Kept, c.KeptFrom, c.Dropped, c.DroppedFrom)
}

// AggregateResult is the aggregate table of one resolution
type AggregateResult struct {
	Resolution Resolution     `json:"resolution"`
	Table      Table          `json:"table"`
	Sources    []string       `json:"sources"`
	Conflicts  []JoinConflict `json:"conflicts,omitempty"`
}
