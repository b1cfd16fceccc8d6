package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2021, 3, 15, 10, 0, 0, 0, time.UTC)

func sample() Table {
	return Table{
		Index: []time.Time{t0, t0.Add(time.Minute)},
		Columns: []Column{
			{Name: "T", Values: []Value{Float(20), Missing()}},
			{Name: "P", Values: []Value{Float(0), Float(1.5)}},
		},
	}
}

func TestValue(t *testing.T) {
	assert.True(t, Missing().IsMissing())
	assert.False(t, Float(0).IsMissing())
	assert.NotEqual(t, Missing(), Float(0))
}

func TestResolution(t *testing.T) {
	assert.Equal(t, []Resolution{ResolutionMinutes, ResolutionSeconds}, AllResolutions())
	assert.True(t, ResolutionSeconds.Valid())
	assert.False(t, Resolution("hours").Valid())
	assert.Equal(t, "minutes", ResolutionMinutes.String())
}

func TestTable_Accessors(t *testing.T) {
	table := sample()

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"T", "P"}, table.ColumnNames())
	assert.Equal(t, 1, table.MissingCount())

	c, ok := table.Column("P")
	require.True(t, ok)
	assert.Equal(t, Float(1.5), c.Values[1])
	_, ok = table.Column("Q")
	assert.False(t, ok)

	assert.Equal(t, map[string]Value{"T": Missing(), "P": Float(1.5)}, table.Row(1))
}

func TestTable_ColumnSetKey(t *testing.T) {
	a := NewTable("T", "P")
	b := NewTable("P", "T")
	c := NewTable("T", "Q")

	assert.Equal(t, a.ColumnSetKey(), b.ColumnSetKey())
	assert.NotEqual(t, a.ColumnSetKey(), c.ColumnSetKey())
	assert.NotEqual(t, NewTable("a", "bc").ColumnSetKey(), NewTable("ab", "c").ColumnSetKey())
}

func TestTable_Validate(t *testing.T) {
	assert.NoError(t, sample().Validate())
	assert.NoError(t, NewTable("T").Validate())

	dup := sample()
	dup.Columns[1].Name = "T"
	assert.ErrorContains(t, dup.Validate(), `duplicate column "T"`)

	short := sample()
	short.Columns[0].Values = short.Columns[0].Values[:1]
	assert.ErrorContains(t, short.Validate(), "has 1 values, index has 2")
}

func TestTable_Clone(t *testing.T) {
	orig := sample()
	clone := orig.Clone()
	assert.Equal(t, orig, clone)

	clone.Index[0] = t0.Add(time.Hour)
	clone.Columns[0].Values[0] = Float(99)
	clone.Columns[1].Name = "X"

	assert.Equal(t, t0, orig.Index[0])
	assert.Equal(t, Float(20), orig.Columns[0].Values[0])
	assert.Equal(t, "P", orig.Columns[1].Name)
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "E1/a", ExperimentTable{ExperimentID: "E1", Series: "a"}.Label())
	assert.Equal(t, "E1", ExperimentTable{ExperimentID: "E1"}.Label())

	f := RawFile{ExperimentID: "E1", Series: "a", Resolution: ResolutionSeconds, PartIndex: 2}
	assert.Equal(t, "E1/a", f.Label())
	assert.Equal(t, "E1|a|seconds|2", f.Key())
	assert.Equal(t, "E1|a|seconds", f.GroupKey())
}

func TestJoinConflict_String(t *testing.T) {
	c := JoinConflict{Timestamp: t0, Column: "T", Kept: 20, KeptFrom: "E1/a", Dropped: 25, DroppedFrom: "E2/b"}
	assert.Equal(t, "2021-03-15T10:00:00Z T: kept 20 (E1/a), dropped 25 (E2/b)", c.String())
}

func TestColumnSummary_Values(t *testing.T) {
	s := ColumnSummary{Column: "P", Count: 3, Mean: 2, Std: 1, Min: 1, Q25: 1.5, Median: 2, Q75: 2.5, Max: 3}

	assert.Len(t, SummaryStatistics(), len(s.Values()))
	assert.Equal(t, []float64{3, 2, 1, 1, 1.5, 2, 2.5, 3}, s.Values())
}
