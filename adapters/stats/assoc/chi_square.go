// Package assoc runs independence tests between the outcome column and
// candidate predictors: Pearson's chi-square with an exact-test fallback
// when the approximation is invalid.
package assoc

import (
	"fmt"
	"math"
	"sort"

	"cbctsurvey/domain/core"
	"cbctsurvey/domain/stats"
	"cbctsurvey/domain/table"

	"gonum.org/v1/gonum/stat/distuv"
)

// expectedCountThreshold is the conventional validity floor for the
// chi-square approximation.
const expectedCountThreshold = 5.0

// Tester runs chi-square independence tests over contingency tables.
type Tester struct {
	// Exact enumeration guards: beyond these the chi-square
	// approximation stands alone and the result carries a warning.
	MaxExactCells int
	MaxExactN     int
}

// NewTester creates a tester with default exact-test guards sized for
// survey-scale tables.
func NewTester() *Tester {
	return &Tester{MaxExactCells: 12, MaxExactN: 500}
}

// Test builds the outcome x predictor contingency table and runs the
// chi-square test of independence. Blank cells and excluded labels
// (typically "Not Applicable") contribute to neither margin.
//
// A degenerate table (outcome or predictor with fewer than two observed
// levels) yields a defined result with PValue 1 and the Degenerate flag
// rather than an error.
func (t *Tester) Test(tbl *table.Table, outcome, predictor core.ColumnKey, exclude ...string) (stats.AssociationResult, error) {
	obs, rowLevels, colLevels, err := Contingency(tbl, outcome, predictor, exclude...)
	if err != nil {
		return stats.AssociationResult{}, err
	}

	result := stats.AssociationResult{Outcome: outcome, Predictor: predictor}
	for _, row := range obs {
		for _, cell := range row {
			result.SampleSize += cell
		}
	}

	if len(rowLevels) < 2 || len(colLevels) < 2 || result.SampleSize == 0 {
		result.PValue = 1
		result.Degenerate = true
		result.Warnings = append(result.Warnings, stats.NewWarning(
			stats.WarningDegenerateTable, predictor,
			fmt.Sprintf("contingency table %dx%d has a zero-variance margin; p-value set to 1", len(rowLevels), len(colLevels))))
		return result, nil
	}

	chiSq, df, minExpected := pearsonChiSquare(obs)
	result.Statistic = chiSq
	result.DF = df
	result.PValue = distuv.ChiSquared{K: float64(df)}.Survival(chiSq)
	result.CramersV = cramersV(chiSq, result.SampleSize, len(rowLevels), len(colLevels))

	if minExpected < expectedCountThreshold {
		result.Approximate = true
		result.Warnings = append(result.Warnings, stats.NewWarning(
			stats.WarningStatValidity, predictor,
			fmt.Sprintf("minimum expected cell count %.2f below %.0f; chi-square approximation is unreliable", minExpected, expectedCountThreshold)))

		if exact, ok := t.fisherExact(obs); ok {
			result.ExactPValue = &exact
		} else {
			result.Warnings = append(result.Warnings, stats.NewWarning(
				stats.WarningExactSkipped, predictor,
				fmt.Sprintf("table too large for exact enumeration (%dx%d, n=%d)", len(rowLevels), len(colLevels), result.SampleSize)))
		}
	}

	return result, nil
}

// Contingency builds the observed count matrix for two categorical
// columns. Levels are sorted lexicographically so the table layout is
// reproducible.
func Contingency(tbl *table.Table, rowCol, colCol core.ColumnKey, exclude ...string) ([][]int, []string, []string, error) {
	rows, err := tbl.Column(rowCol)
	if err != nil {
		return nil, nil, nil, err
	}
	cols, err := tbl.Column(colCol)
	if err != nil {
		return nil, nil, nil, err
	}

	excluded := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		excluded[e] = true
	}

	counts := make(map[string]map[string]int)
	colSeen := make(map[string]bool)
	for i := range rows {
		r, c := rows[i], cols[i]
		if table.IsBlank(r) || table.IsBlank(c) || excluded[r] || excluded[c] {
			continue
		}
		if counts[r] == nil {
			counts[r] = make(map[string]int)
		}
		counts[r][c]++
		colSeen[c] = true
	}

	rowLevels := make([]string, 0, len(counts))
	for r := range counts {
		rowLevels = append(rowLevels, r)
	}
	sort.Strings(rowLevels)

	colLevels := make([]string, 0, len(colSeen))
	for c := range colSeen {
		colLevels = append(colLevels, c)
	}
	sort.Strings(colLevels)

	obs := make([][]int, len(rowLevels))
	for i, r := range rowLevels {
		obs[i] = make([]int, len(colLevels))
		for j, c := range colLevels {
			obs[i][j] = counts[r][c]
		}
	}
	return obs, rowLevels, colLevels, nil
}

// pearsonChiSquare computes the statistic, degrees of freedom and the
// minimum expected cell count of an observed table.
func pearsonChiSquare(obs [][]int) (chiSq float64, df int, minExpected float64) {
	nRows := len(obs)
	nCols := len(obs[0])

	rowTotals := make([]float64, nRows)
	colTotals := make([]float64, nCols)
	total := 0.0
	for i := 0; i < nRows; i++ {
		for j := 0; j < nCols; j++ {
			v := float64(obs[i][j])
			rowTotals[i] += v
			colTotals[j] += v
			total += v
		}
	}

	minExpected = total
	for i := 0; i < nRows; i++ {
		for j := 0; j < nCols; j++ {
			expected := rowTotals[i] * colTotals[j] / total
			if expected < minExpected {
				minExpected = expected
			}
			if expected > 0 {
				observed := float64(obs[i][j])
				diff := observed - expected
				chiSq += diff * diff / expected
			}
		}
	}

	df = (nRows - 1) * (nCols - 1)
	return chiSq, df, minExpected
}

// cramersV is the standardized effect size sqrt(chi2 / (n * min(r-1,c-1))).
func cramersV(chiSq float64, n, nRows, nCols int) float64 {
	minDim := nRows - 1
	if nCols-1 < minDim {
		minDim = nCols - 1
	}
	if n == 0 || minDim == 0 {
		return 0
	}
	v := chiSq / (float64(n) * float64(minDim))
	if v < 0 {
		return 0
	}
	return math.Sqrt(v)
}
