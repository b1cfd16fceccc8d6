package dataprocessing

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tribocli/internal/errors"
	"tribocli/pkg/contracts/domain"
)

func part(index int, table domain.Table) PartTable {
	name := "/in/E1/a.asc"
	if index > 0 {
		name = "/in/E1/a_part.asc"
	}
	return PartTable{
		File: domain.RawFile{
			ExperimentID: "E1",
			Series:       "a",
			Resolution:   domain.ResolutionMinutes,
			PartIndex:    index,
			Path:         name,
		},
		Table: table,
	}
}

func TestCombineParts_SinglePart(t *testing.T) {
	base := makeTable([]int{0, 1}, col("T", f(20), f(21)))

	got, err := CombineParts([]PartTable{part(0, base)})
	require.NoError(t, err)
	if diff := cmp.Diff(base, got); diff != "" {
		t.Errorf("single part changed (-want +got):\n%s", diff)
	}

	// the result does not alias the input
	got.Columns[0].Values[0] = f(99)
	assert.Equal(t, f(20), base.Columns[0].Values[0])
}

func TestCombineParts_ConcatenatesInPartOrder(t *testing.T) {
	base := makeTable([]int{0, 1}, col("T", f(1), f(2)), col("P", f(10), f(20)))
	second := makeTable([]int{1, 2}, col("T", f(3), f(4)), col("P", f(30), f(40)))
	third := makeTable([]int{5}, col("T", f(5)), col("P", f(50)))

	// given out of order
	got, err := CombineParts([]PartTable{part(2, third), part(0, base), part(1, second)})
	require.NoError(t, err)

	want := makeTable([]int{0, 1, 1, 2, 5},
		col("T", f(1), f(2), f(3), f(4), f(5)),
		col("P", f(10), f(20), f(30), f(40), f(50)))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("combined table mismatch (-want +got):\n%s", diff)
	}
}

func TestCombineParts_UnionOfColumns(t *testing.T) {
	base := makeTable([]int{0}, col("T", f(1)), col("P", f(10)))
	second := makeTable([]int{1}, col("Q", f(7)), col("T", f(2)))

	got, err := CombineParts([]PartTable{part(0, base), part(1, second)})
	require.NoError(t, err)

	want := makeTable([]int{0, 1},
		col("T", f(1), f(2)),
		col("P", f(10), na),
		col("Q", na, f(7)))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("union mismatch (-want +got):\n%s", diff)
	}
}

func TestCombineParts_Errors(t *testing.T) {
	valid := makeTable([]int{0}, col("T", f(1)))
	misaligned := domain.Table{Index: []time.Time{at(0), at(1)}, Columns: []domain.Column{{Name: "T", Values: []domain.Value{f(1)}}}}

	otherSeries := part(1, valid)
	otherSeries.File.Series = "b"

	tests := []struct {
		name    string
		parts   []PartTable
		errType apperrors.ErrorType
	}{
		{name: "missing base part", parts: []PartTable{part(1, valid), part(2, valid)}, errType: apperrors.ErrTypeMissingBase},
		{name: "duplicate part index", parts: []PartTable{part(0, valid), part(1, valid), part(1, valid)}, errType: apperrors.ErrTypeClassification},
		{name: "part of another series", parts: []PartTable{part(0, valid), otherSeries}, errType: apperrors.ErrTypeValidation},
		{name: "misaligned table", parts: []PartTable{part(0, misaligned)}, errType: apperrors.ErrTypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CombineParts(tt.parts)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.errType), "got %v", err)
		})
	}
}

func TestCombineParts_Empty(t *testing.T) {
	got, err := CombineParts(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
	assert.Empty(t, got.Columns)
}
