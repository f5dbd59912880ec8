package report

import (
	"strings"
	"testing"

	"cbctsurvey/domain/stats"

	"github.com/stretchr/testify/assert"
)

func sampleReport() *stats.AnalysisReport {
	r := stats.NewAnalysisReport("responses.csv", 51)
	r.Frequencies = []stats.FrequencyTable{{
		Column: "cbct_abundance",
		N:      51,
		Rows: []stats.FrequencyRow{
			{Label: "Yes", Count: 36, Percent: 70.58823529},
			{Label: "No", Count: 15, Percent: 29.41176471},
		},
	}}
	exact := 0.0312
	r.Associations = []stats.AssociationResult{
		{Predictor: "practice_location", Statistic: 6.667, DF: 2, PValue: 0.0357},
		{Predictor: "practice_size", Statistic: 4.1, DF: 3, PValue: 0.25, Approximate: true, ExactPValue: &exact},
	}
	r.OddsRatios = []stats.OddsRatioTable{{
		Model:      "ownership~location",
		Confidence: 0.95,
		Rows: []stats.OddsRatio{
			{Term: "(Intercept)", Ratio: 0.6, Lower: 0.3, Upper: 1.2, PValue: 0.2, BaselineOdds: true},
			{Term: "practice_location=Rural", Ratio: 1, Lower: 1, Upper: 1, Baseline: true},
			{Term: "practice_location=Urban", Ratio: 2.5, Lower: 1.1, Upper: 5.7, PValue: 0.03},
		},
	}}
	r.Warnings = []stats.Warning{
		stats.NewWarning(stats.WarningStatValidity, "practice_size", "minimum expected cell count 2.00 below 5"),
	}
	return r
}

func TestMarkdown_RoundsPercentagesToOneDecimal(t *testing.T) {
	md := Markdown(sampleReport())

	assert.Contains(t, md, "| Yes | 36 | 70.6% |")
	assert.Contains(t, md, "| No | 15 | 29.4% |")
	assert.NotContains(t, md, "70.58", "full precision belongs to the structured report")
}

func TestMarkdown_AssociationValidityColumn(t *testing.T) {
	md := Markdown(sampleReport())

	assert.Contains(t, md, "| practice_location | 6.667 | 2 | 0.0357 | - | ok |")
	assert.Contains(t, md, "| practice_size | 4.100 | 3 | 0.2500 | 0.0312 | approximate |")
}

func TestMarkdown_ReferenceAndInterceptRows(t *testing.T) {
	md := Markdown(sampleReport())

	assert.Contains(t, md, "| practice_location=Rural (reference) | 1 | - | - | - |")
	assert.Contains(t, md, "(Intercept) (baseline odds)")
	assert.Contains(t, md, "## Odds ratios: ownership~location (95% CI)")
}

func TestMarkdown_WarningsSection(t *testing.T) {
	md := Markdown(sampleReport())

	assert.Contains(t, md, "## Warnings")
	assert.Contains(t, md, "**STAT_VALIDITY**")
}

func TestMarkdown_HeaderMetadata(t *testing.T) {
	r := sampleReport()
	md := Markdown(r)

	assert.True(t, strings.HasPrefix(md, "# CBCT Survey Analysis"))
	assert.Contains(t, md, r.RunID.String())
	assert.Contains(t, md, "- Records: 51")
	assert.Contains(t, md, "`responses.csv`")
}
