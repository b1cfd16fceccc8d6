package domain

// ColumnSummary holds descriptive statistics of one column.
// Statistics that are undefined for the sample size are NaN.
type ColumnSummary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// SummaryStatistics lists the statistic names in output order
func SummaryStatistics() []string {
	return []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}
}

// Values returns the statistics in SummaryStatistics order
func (s ColumnSummary) Values() []float64 {
	return []float64{float64(s.Count), s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max}
}
