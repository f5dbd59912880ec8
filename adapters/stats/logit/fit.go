// Package logit fits binomial (logistic) regressions of the binary CBCT
// ownership outcome on categorical predictors with reference-level dummy
// coding, and reports effects as odds ratios.
package logit

import (
	"fmt"
	"log"
	"math"
	"sort"

	"cbctsurvey/domain/core"
	"cbctsurvey/domain/stats"
	"cbctsurvey/domain/table"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	maxIterations  = 50
	convergenceTol = 1e-8
	// separationEps bounds the fitted probabilities considered pinned at
	// 0 or 1, the symptom of (quasi-)complete separation.
	separationEps = 1e-6
	// weightFloor keeps the IRLS working weights invertible.
	weightFloor = 1e-10
)

// Predictor names one categorical regressor and its reference level. An
// empty Baseline falls back to the first observed level in sort order.
type Predictor struct {
	Column   core.ColumnKey
	Baseline string
}

// Spec describes one model: the binary outcome, the level coded 1, and
// the categorical predictors entering with dummy coding.
type Spec struct {
	Name       string
	Outcome    core.ColumnKey
	Positive   string
	Predictors []Predictor
}

// Fit runs iteratively reweighted least squares to the maximum-likelihood
// estimates. Rows with a blank outcome or a blank/excluded predictor cell
// are dropped. A rank-deficient design is fatal for the fit
// (ErrInsufficientData); non-convergence and suspected separation are
// flagged on the returned fit, never raised as errors.
func Fit(tbl *table.Table, spec Spec) (*stats.ModelFit, error) {
	y, X, predictors, terms, err := buildDesign(tbl, spec)
	if err != nil {
		return nil, err
	}
	n := len(y)
	p := len(terms)
	if n == 0 {
		return nil, fmt.Errorf("%w: no usable rows for model %q", core.ErrInsufficientData, spec.Name)
	}
	if n <= p {
		return nil, fmt.Errorf("%w: %d rows for %d parameters", core.ErrInsufficientData, n, p)
	}

	fit := &stats.ModelFit{
		Name:          spec.Name,
		Outcome:       spec.Outcome,
		PositiveLevel: spec.Positive,
		Predictors:    predictors,
		SampleSize:    n,
	}

	beta := make([]float64, p)
	mu := make([]float64, n)
	eta := make([]float64, n)
	var chol mat.Cholesky
	haveChol := false

	for iter := 0; iter < maxIterations; iter++ {
		fit.Iterations = iter + 1

		for i := 0; i < n; i++ {
			eta[i] = dot(X[i], beta)
			mu[i] = sigmoid(eta[i])
		}

		xtwx := mat.NewSymDense(p, nil)
		xtwz := mat.NewVecDense(p, nil)
		for i := 0; i < n; i++ {
			w := mu[i] * (1 - mu[i])
			if w < weightFloor {
				w = weightFloor
			}
			z := eta[i] + (y[i]-mu[i])/w
			for j := 0; j < p; j++ {
				xj := X[i][j]
				if xj == 0 {
					continue
				}
				xtwz.SetVec(j, xtwz.AtVec(j)+w*xj*z)
				for k := j; k < p; k++ {
					xtwx.SetSym(j, k, xtwx.At(j, k)+w*xj*X[i][k])
				}
			}
		}

		var step mat.Cholesky
		if ok := step.Factorize(xtwx); !ok {
			if !haveChol {
				return nil, core.NewRankDeficientError(fmt.Sprintf("model %q, %d parameters", spec.Name, p))
			}
			// The information matrix collapsed mid-iteration (separation
			// drives the weights to zero). Keep the last estimates.
			fit.Warnings = append(fit.Warnings, stats.NewWarning(
				stats.WarningConvergence, spec.Outcome,
				fmt.Sprintf("information matrix became singular at iteration %d; estimates are unreliable", iter+1)))
			break
		}
		chol = step
		haveChol = true

		next := mat.NewVecDense(p, nil)
		if err := chol.SolveVecTo(next, xtwz); err != nil {
			return nil, core.NewRankDeficientError(err.Error())
		}

		delta := 0.0
		for j := 0; j < p; j++ {
			d := math.Abs(next.AtVec(j) - beta[j])
			if d > delta {
				delta = d
			}
			beta[j] = next.AtVec(j)
		}
		if delta < convergenceTol {
			fit.Converged = true
			break
		}
	}

	if !fit.Converged {
		fit.Warnings = append(fit.Warnings, stats.NewWarning(
			stats.WarningConvergence, spec.Outcome,
			fmt.Sprintf("IRLS did not converge in %d iterations; estimates returned as-is", fit.Iterations)))
		log.Printf("[Logit] Model %q did not converge after %d iterations", spec.Name, fit.Iterations)
	}

	// Final linear predictor, likelihood and separation scan.
	separated := make([]bool, p)
	anySeparated := false
	logLik := 0.0
	for i := 0; i < n; i++ {
		eta[i] = dot(X[i], beta)
		mu[i] = sigmoid(eta[i])
		m := clamp(mu[i], 1e-12, 1-1e-12)
		logLik += y[i]*math.Log(m) + (1-y[i])*math.Log(1-m)
		if mu[i] <= separationEps || mu[i] >= 1-separationEps {
			anySeparated = true
			for j := 0; j < p; j++ {
				if X[i][j] != 0 {
					separated[j] = true
				}
			}
		}
	}
	fit.LogLikelihood = logLik
	fit.SeparationSuspected = anySeparated
	if anySeparated {
		fit.Warnings = append(fit.Warnings, stats.NewWarning(
			stats.WarningSeparation, spec.Outcome,
			"fitted probabilities pinned at 0 or 1; affected coefficients are unreliable"))
	}

	// Standard errors from the inverse Fisher information at the final
	// weights.
	se := make([]float64, p)
	var cov mat.SymDense
	if haveChol && chol.InverseTo(&cov) == nil {
		for j := 0; j < p; j++ {
			v := cov.At(j, j)
			if v > 0 {
				se[j] = math.Sqrt(v)
			} else {
				se[j] = math.Inf(1)
			}
		}
	} else {
		for j := 0; j < p; j++ {
			se[j] = math.Inf(1)
		}
	}

	for j, term := range terms {
		coef := stats.Coefficient{
			Term:                term.name,
			Predictor:           term.predictor,
			Level:               term.level,
			Intercept:           term.intercept,
			Estimate:            beta[j],
			StdErr:              se[j],
			SeparationSuspected: separated[j],
		}
		if se[j] > 0 && !math.IsInf(se[j], 0) {
			coef.Z = beta[j] / se[j]
			coef.PValue = 2 * distuv.UnitNormal.Survival(math.Abs(coef.Z))
		} else {
			coef.PValue = 1
		}
		fit.Coefficients = append(fit.Coefficients, coef)
	}

	return fit, nil
}

// term is one design-matrix column.
type term struct {
	name      string
	predictor core.ColumnKey
	level     string
	intercept bool
}

// buildDesign encodes the outcome and predictors into the 0/1 response
// and the dummy-coded design matrix with intercept.
func buildDesign(tbl *table.Table, spec Spec) ([]float64, [][]float64, []stats.PredictorSpec, []term, error) {
	outcome, err := tbl.Column(spec.Outcome)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	cols := make([][]string, len(spec.Predictors))
	for i, pred := range spec.Predictors {
		c, err := tbl.Column(pred.Column)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		cols[i] = c
	}

	// Complete cases only.
	var include []int
	for row := range outcome {
		if table.IsBlank(outcome[row]) {
			continue
		}
		ok := true
		for _, c := range cols {
			if table.IsBlank(c[row]) {
				ok = false
				break
			}
		}
		if ok {
			include = append(include, row)
		}
	}

	// Observed levels per predictor, baseline first.
	specs := make([]stats.PredictorSpec, len(spec.Predictors))
	for i, pred := range spec.Predictors {
		seen := make(map[string]bool)
		for _, row := range include {
			seen[cols[i][row]] = true
		}
		levels := make([]string, 0, len(seen))
		for l := range seen {
			levels = append(levels, l)
		}
		sort.Strings(levels)
		if len(levels) < 2 {
			return nil, nil, nil, nil, fmt.Errorf("%w: predictor %q has %d observed level(s)",
				core.ErrInsufficientData, pred.Column, len(levels))
		}

		baseline := pred.Baseline
		if baseline == "" || !seen[baseline] {
			baseline = levels[0]
		}
		ordered := []string{baseline}
		for _, l := range levels {
			if l != baseline {
				ordered = append(ordered, l)
			}
		}
		specs[i] = stats.PredictorSpec{Column: pred.Column, Baseline: baseline, Levels: ordered}
	}

	terms := []term{{name: "(Intercept)", intercept: true}}
	for _, ps := range specs {
		for _, level := range ps.Levels[1:] {
			terms = append(terms, term{
				name:      fmt.Sprintf("%s=%s", ps.Column, level),
				predictor: ps.Column,
				level:     level,
			})
		}
	}

	y := make([]float64, len(include))
	X := make([][]float64, len(include))
	for r, row := range include {
		if outcome[row] == spec.Positive {
			y[r] = 1
		}
		x := make([]float64, len(terms))
		x[0] = 1
		j := 1
		for i, ps := range specs {
			v := cols[i][row]
			for _, level := range ps.Levels[1:] {
				if v == level {
					x[j] = 1
				}
				j++
			}
		}
		X[r] = x
	}

	return y, X, specs, terms, nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func dot(x, beta []float64) float64 {
	s := 0.0
	for i := range x {
		s += x[i] * beta[i]
	}
	return s
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
