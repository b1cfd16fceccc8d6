package dataprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	table := makeTable([]int{0, 1, 2, 3, 4},
		col("P", f(4), na, f(1), f(3), f(2)),
		col("Q", na, na, na, na, na),
		col("R", f(7), na, na, na, na))

	summaries, err := Summarize(table)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	p := summaries[0]
	assert.Equal(t, "P", p.Column)
	assert.Equal(t, 4, p.Count)
	assert.InDelta(t, 2.5, p.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(5.0/3.0), p.Std, 1e-12)
	assert.Equal(t, 1.0, p.Min)
	assert.InDelta(t, 1.75, p.Q25, 1e-12)
	assert.InDelta(t, 2.5, p.Median, 1e-12)
	assert.InDelta(t, 3.25, p.Q75, 1e-12)
	assert.Equal(t, 4.0, p.Max)

	q := summaries[1]
	assert.Equal(t, 0, q.Count)
	for _, v := range q.Values()[1:] {
		assert.True(t, math.IsNaN(v))
	}

	r := summaries[2]
	assert.Equal(t, 1, r.Count)
	assert.Equal(t, 7.0, r.Mean)
	assert.True(t, math.IsNaN(r.Std))
	assert.Equal(t, 7.0, r.Q25)
	assert.Equal(t, 7.0, r.Q75)
}

func TestSummarize_ColumnOrder(t *testing.T) {
	table := makeTable([]int{0}, col("Z", f(1)), col("A", f(2)))

	summaries, err := Summarize(table)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "Z", summaries[0].Column)
	assert.Equal(t, "A", summaries[1].Column)
}

func TestQuantile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		q      float64
		want   float64
	}{
		{name: "single value", sorted: []float64{5}, q: 0.25, want: 5},
		{name: "exact rank", sorted: []float64{1, 2, 3, 4, 5}, q: 0.25, want: 2},
		{name: "interpolated", sorted: []float64{10, 20}, q: 0.75, want: 17.5},
		{name: "minimum", sorted: []float64{1, 9}, q: 0, want: 1},
		{name: "maximum", sorted: []float64{1, 9}, q: 1, want: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, quantile(tt.sorted, tt.q), 1e-12)
		})
	}
}
