package describe

import (
	"math"
	"strconv"

	"cbctsurvey/domain/core"
	domstats "cbctsurvey/domain/stats"
	"cbctsurvey/domain/table"

	"github.com/montanaflynn/stats"
)

// Profile summarizes one column: missingness, cardinality, mode and
// entropy, plus numeric summary statistics when every non-missing value
// parses as a number (e.g. the derived 0/1 ownership flag).
func Profile(tbl *table.Table, col core.ColumnKey) (domstats.ColumnProfile, error) {
	values, err := tbl.Column(col)
	if err != nil {
		return domstats.ColumnProfile{}, err
	}

	p := domstats.ColumnProfile{Column: col, SampleSize: len(values)}

	frequency := make(map[string]int)
	var numeric []float64
	allNumeric := true

	for _, v := range values {
		if table.IsBlank(v) {
			p.MissingCount++
			continue
		}
		frequency[v]++
		if f, perr := strconv.ParseFloat(v, 64); perr == nil {
			numeric = append(numeric, f)
		} else {
			allNumeric = false
		}
	}

	included := len(values) - p.MissingCount
	if len(values) > 0 {
		p.MissingRatio = float64(p.MissingCount) / float64(len(values))
	}
	p.Cardinality = len(frequency)

	for label, count := range frequency {
		if count > p.ModeCount || (count == p.ModeCount && label < p.Mode) {
			p.Mode = label
			p.ModeCount = count
		}
	}

	if included > 0 {
		entropy := 0.0
		for _, count := range frequency {
			prob := float64(count) / float64(included)
			entropy -= prob * math.Log2(prob)
		}
		p.Entropy = entropy
	}

	if allNumeric && len(numeric) > 0 {
		mean, _ := stats.Mean(numeric)
		stdDev, _ := stats.StandardDeviation(numeric)
		median, _ := stats.Median(numeric)
		min, _ := stats.Min(numeric)
		max, _ := stats.Max(numeric)
		p.Numeric = &domstats.NumericSummary{
			Mean:   mean,
			StdDev: stdDev,
			Median: median,
			Min:    min,
			Max:    max,
		}
	}

	return p, nil
}
