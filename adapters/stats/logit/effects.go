package logit

import (
	"math"

	"cbctsurvey/domain/stats"

	"gonum.org/v1/gonum/stat/distuv"
)

// OddsRatios exponentiates a fitted model's coefficients into odds ratios
// with two-sided Wald confidence intervals: exp(b +/- z*SE). The intercept
// row is flagged as a baseline odds (its exponential is not an odds
// ratio), and each predictor's reference level appears with ratio 1 by
// construction.
func OddsRatios(fit *stats.ModelFit, confidence float64) stats.OddsRatioTable {
	if confidence <= 0 || confidence >= 1 {
		confidence = 0.95
	}
	z := distuv.UnitNormal.Quantile(1 - (1-confidence)/2)

	out := stats.OddsRatioTable{Model: fit.Name, Confidence: confidence}

	byTerm := make(map[string]stats.Coefficient, len(fit.Coefficients))
	for _, c := range fit.Coefficients {
		byTerm[c.Term] = c
		if c.Intercept {
			out.Rows = append(out.Rows, stats.OddsRatio{
				Term:         c.Term,
				Ratio:        math.Exp(c.Estimate),
				Lower:        math.Exp(c.Estimate - z*c.StdErr),
				Upper:        math.Exp(c.Estimate + z*c.StdErr),
				PValue:       c.PValue,
				BaselineOdds: true,
			})
		}
	}

	for _, ps := range fit.Predictors {
		out.Rows = append(out.Rows, stats.OddsRatio{
			Term:      string(ps.Column) + "=" + ps.Baseline,
			Predictor: ps.Column,
			Level:     ps.Baseline,
			Ratio:     1,
			Lower:     1,
			Upper:     1,
			Baseline:  true,
		})
		for _, level := range ps.Levels[1:] {
			c, ok := byTerm[string(ps.Column)+"="+level]
			if !ok {
				continue
			}
			out.Rows = append(out.Rows, stats.OddsRatio{
				Term:      c.Term,
				Predictor: c.Predictor,
				Level:     c.Level,
				Ratio:     math.Exp(c.Estimate),
				Lower:     math.Exp(c.Estimate - z*c.StdErr),
				Upper:     math.Exp(c.Estimate + z*c.StdErr),
				PValue:    c.PValue,
			})
		}
	}

	return out
}
