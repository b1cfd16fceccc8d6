package dataprocessing

import (
	"errors"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"tribocli/pkg/contracts/domain"
)

// Summarize computes descriptive statistics for every column of the table,
// ignoring missing values. The standard deviation is the sample deviation and
// quartiles interpolate linearly between the closest ranks.
func Summarize(table domain.Table) ([]domain.ColumnSummary, error) {
	summaries := make([]domain.ColumnSummary, 0, len(table.Columns))
	for _, col := range table.Columns {
		s, err := summarizeColumn(col)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// summarizeColumn computes the statistics of one column
func summarizeColumn(col domain.Column) (domain.ColumnSummary, error) {
	data := make(stats.Float64Data, 0, len(col.Values))
	for _, v := range col.Values {
		if !v.IsMissing() {
			data = append(data, v.Float)
		}
	}

	nan := math.NaN()
	s := domain.ColumnSummary{
		Column: col.Name,
		Count:  len(data),
		Mean:   nan, Std: nan, Min: nan, Q25: nan, Median: nan, Q75: nan, Max: nan,
	}
	if len(data) == 0 {
		return s, nil
	}

	var err error
	if s.Mean, err = stats.Mean(data); err != nil {
		return s, err
	}
	if s.Min, err = stats.Min(data); err != nil {
		return s, err
	}
	if s.Max, err = stats.Max(data); err != nil {
		return s, err
	}
	if s.Median, err = stats.Median(data); err != nil {
		return s, err
	}
	if len(data) > 1 {
		if s.Std, err = stats.StandardDeviationSample(data); err != nil && !errors.Is(err, stats.EmptyInputErr) {
			return s, err
		}
	}

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	s.Q25 = quantile(sorted, 0.25)
	s.Q75 = quantile(sorted, 0.75)

	return s, nil
}

// quantile returns the q-quantile of sorted data by linear interpolation
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}
