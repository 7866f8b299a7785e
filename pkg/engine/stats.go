package engine

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ValueStats summarizes the distribution of every value stored in a Q-table.
type ValueStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}

// Stats computes summary statistics over all stored values. An empty table
// yields the zero ValueStats.
func (t *QTable) Stats() ValueStats {
	values := t.Values()
	if len(values) == 0 {
		return ValueStats{}
	}
	sort.Float64s(values)

	mean, std := stat.MeanStdDev(values, nil)
	if len(values) < 2 {
		std = 0
	}

	return ValueStats{
		Count:  len(values),
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(values),
		Max:    floats.Max(values),
		Median: stat.Quantile(0.5, stat.Empirical, values, nil),
	}
}
