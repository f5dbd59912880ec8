package assoc

import (
	"math"
)

// fisherExact computes the two-sided exact p-value for an r x c table by
// conditional enumeration over all tables with the observed margins,
// summing the probability of every table no more likely than the observed
// one (the minimum-likelihood criterion). Probabilities come from the
// multivariate hypergeometric distribution in log space.
//
// Returns ok=false when the table exceeds the enumeration guards.
func (t *Tester) fisherExact(obs [][]int) (float64, bool) {
	nRows := len(obs)
	if nRows == 0 {
		return 0, false
	}
	nCols := len(obs[0])

	rowTotals := make([]int, nRows)
	colTotals := make([]int, nCols)
	n := 0
	for i := 0; i < nRows; i++ {
		for j := 0; j < nCols; j++ {
			rowTotals[i] += obs[i][j]
			colTotals[j] += obs[i][j]
			n += obs[i][j]
		}
	}
	if n == 0 {
		return 0, false
	}
	if nRows*nCols > t.MaxExactCells || n > t.MaxExactN {
		return 0, false
	}

	lf := logFactorials(n)

	// log P(table) = sum log(Ri!) + sum log(Cj!) - log(N!) - sum log(nij!)
	logConst := -lf[n]
	for _, r := range rowTotals {
		logConst += lf[r]
	}
	for _, c := range colTotals {
		logConst += lf[c]
	}

	observedLogP := logConst
	for i := 0; i < nRows; i++ {
		for j := 0; j < nCols; j++ {
			observedLogP -= lf[obs[i][j]]
		}
	}

	// Tolerance absorbs floating-point noise when comparing equal-probability
	// tables, matching the usual exact-test convention.
	cutoff := observedLogP + 1e-7

	pSum := 0.0
	colRem := make([]int, nCols)
	copy(colRem, colTotals)

	// Enumerate row by row; the final row is forced by the column remainders.
	var fillRow func(row int, logAcc float64)
	var fillCell func(row, col, rowRem int, logAcc float64)

	fillRow = func(row int, logAcc float64) {
		if row == nRows-1 {
			logP := logAcc
			for _, rem := range colRem {
				logP -= lf[rem]
			}
			if logP <= cutoff {
				pSum += math.Exp(logP)
			}
			return
		}
		fillCell(row, 0, rowTotals[row], logAcc)
	}

	fillCell = func(row, col, rowRem int, logAcc float64) {
		if col == nCols-1 {
			// Last cell of the row is forced.
			if rowRem > colRem[col] {
				return
			}
			colRem[col] -= rowRem
			fillRow(row+1, logAcc-lf[rowRem])
			colRem[col] += rowRem
			return
		}

		// Remaining capacity of the columns to the right bounds the
		// feasible range for this cell.
		rightCap := 0
		for j := col + 1; j < nCols; j++ {
			rightCap += colRem[j]
		}
		lo := rowRem - rightCap
		if lo < 0 {
			lo = 0
		}
		hi := rowRem
		if colRem[col] < hi {
			hi = colRem[col]
		}
		for x := lo; x <= hi; x++ {
			colRem[col] -= x
			fillCell(row, col+1, rowRem-x, logAcc-lf[x])
			colRem[col] += x
		}
	}

	fillRow(0, logConst)

	if pSum > 1 {
		pSum = 1
	}
	return pSum, true
}

// logFactorials precomputes log(k!) for k in [0, n].
func logFactorials(n int) []float64 {
	lf := make([]float64, n+1)
	for k := 2; k <= n; k++ {
		lf[k] = lf[k-1] + math.Log(float64(k))
	}
	return lf
}
