// Package stats defines the structured results produced by the analysis
// pipeline: frequency tables, association test records, fitted models,
// odds-ratio tables and the run-level report. Any downstream renderer
// consumes these types; the core never rounds for display.
package stats

import (
	"cbctsurvey/domain/core"
)

// ============================================================================
// WARNINGS
// ============================================================================

// WarningCode represents structured warning types
type WarningCode string

const (
	WarningDataQuality     WarningCode = "DATA_QUALITY"         // blank outside governing condition, unexpected label
	WarningStatValidity    WarningCode = "STAT_VALIDITY"        // chi-square approximation invalid (low expected counts)
	WarningDegenerateTable WarningCode = "DEGENERATE_TABLE"     // zero-variance predictor level
	WarningExactSkipped    WarningCode = "EXACT_TEST_SKIPPED"   // table too large for exact enumeration
	WarningConvergence     WarningCode = "CONVERGENCE"          // optimizer did not converge
	WarningSeparation      WarningCode = "SEPARATION_SUSPECTED" // fitted probability pinned at 0 or 1
	WarningModelSkipped    WarningCode = "MODEL_SKIPPED"        // a fit aborted (e.g. rank-deficient design); rest of the run continues
)

// Warning is a non-fatal finding collected alongside results, never
// silently swallowed.
type Warning struct {
	Code    WarningCode    `json:"code"`
	Column  core.ColumnKey `json:"column,omitempty"`
	Row     int            `json:"row,omitempty"` // 0-based data row, -1 when not row-scoped
	Message string         `json:"message"`
}

// NewWarning creates a warning that is not tied to a specific row.
func NewWarning(code WarningCode, column core.ColumnKey, message string) Warning {
	return Warning{Code: code, Column: column, Row: -1, Message: message}
}

// ============================================================================
// DESCRIPTIVE RESULTS
// ============================================================================

// FrequencyRow is one label of a frequency table. Percent is full
// precision; rounding is a renderer concern.
type FrequencyRow struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// FrequencyTable is a single-column breakdown over included rows
// (non-missing, non-excluded). Percentages sum to 100 within tolerance.
type FrequencyTable struct {
	Column core.ColumnKey `json:"column"`
	N      int            `json:"n"` // included rows
	Rows   []FrequencyRow `json:"rows"`
}

// CrossGroup holds the within-group breakdown for one level of the
// grouping column; percentages are proportions within that level.
type CrossGroup struct {
	Level string         `json:"level"`
	N     int            `json:"n"`
	Rows  []FrequencyRow `json:"rows"`
}

// CrossTab is a two-column tabulation grouped by the first column.
type CrossTab struct {
	GroupColumn core.ColumnKey `json:"group_column"`
	Column      core.ColumnKey `json:"column"`
	Groups      []CrossGroup   `json:"groups"`
}

// ColumnProfile summarizes a single column's data quality and, for
// numeric-coded columns, its summary statistics.
type ColumnProfile struct {
	Column       core.ColumnKey  `json:"column"`
	SampleSize   int             `json:"sample_size"`
	MissingCount int             `json:"missing_count"`
	MissingRatio float64         `json:"missing_ratio"`
	Cardinality  int             `json:"cardinality"`
	Mode         string          `json:"mode,omitempty"`
	ModeCount    int             `json:"mode_count,omitempty"`
	Entropy      float64         `json:"entropy"`
	Numeric      *NumericSummary `json:"numeric,omitempty"`
}

// NumericSummary holds summary statistics for numeric-coded columns such
// as the derived 0/1 ownership flag.
type NumericSummary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// ============================================================================
// ASSOCIATION TESTS
// ============================================================================

// AssociationResult records one chi-square independence test between the
// outcome and a predictor, with the exact-test fallback when the
// chi-square approximation is invalid.
type AssociationResult struct {
	Outcome    core.ColumnKey `json:"outcome"`
	Predictor  core.ColumnKey `json:"predictor"`
	Statistic  float64        `json:"statistic"`
	PValue     float64        `json:"p_value"`
	DF         int            `json:"degrees_freedom"`
	SampleSize int            `json:"sample_size"`

	// Approximate is set when any expected cell count falls below 5; the
	// exact p-value is present if and only if this flag is set and the
	// table was small enough to enumerate.
	Approximate bool     `json:"approximate"`
	ExactPValue *float64 `json:"exact_p_value,omitempty"`

	// Degenerate marks a table with a zero-variance level; the p-value is
	// 1 by decision rather than undefined.
	Degenerate bool `json:"degenerate"`

	CramersV float64   `json:"cramers_v"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// ============================================================================
// MODEL FITS
// ============================================================================

// PredictorSpec describes one categorical predictor entering a model:
// its levels in fitting order with the baseline first.
type PredictorSpec struct {
	Column   core.ColumnKey `json:"column"`
	Baseline string         `json:"baseline"`
	Levels   []string       `json:"levels"` // baseline first
}

// Coefficient is one fitted regression term.
type Coefficient struct {
	Term      string         `json:"term"` // e.g. "practice_location=Urban" or "(Intercept)"
	Predictor core.ColumnKey `json:"predictor,omitempty"`
	Level     string         `json:"level,omitempty"`
	Intercept bool           `json:"intercept,omitempty"`

	Estimate float64 `json:"estimate"`
	StdErr   float64 `json:"std_err"`
	Z        float64 `json:"z"`
	PValue   float64 `json:"p_value"`

	// SeparationSuspected marks a coefficient whose dummy appears on an
	// observation with a fitted probability pinned at 0 or 1.
	SeparationSuspected bool `json:"separation_suspected,omitempty"`
}

// ModelFit is a fitted binomial regression of the binary outcome on
// categorical predictors with reference-level coding.
type ModelFit struct {
	Name          string          `json:"name"`
	Outcome       core.ColumnKey  `json:"outcome"`
	PositiveLevel string          `json:"positive_level"` // outcome level coded 1
	Predictors    []PredictorSpec `json:"predictors"`
	Coefficients  []Coefficient   `json:"coefficients"`

	SampleSize          int     `json:"sample_size"`
	Converged           bool    `json:"converged"`
	Iterations          int     `json:"iterations"`
	LogLikelihood       float64 `json:"log_likelihood"`
	SeparationSuspected bool    `json:"separation_suspected"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// ============================================================================
// EFFECTS
// ============================================================================

// OddsRatio is one exponentiated coefficient with its Wald interval.
// Baseline levels appear with Ratio 1 by construction; the intercept row
// is a baseline odds, not an odds ratio.
type OddsRatio struct {
	Term      string         `json:"term"`
	Predictor core.ColumnKey `json:"predictor,omitempty"`
	Level     string         `json:"level,omitempty"`

	Ratio  float64 `json:"ratio"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
	PValue float64 `json:"p_value,omitempty"`

	Baseline     bool `json:"baseline,omitempty"`      // reference level, ratio fixed at 1
	BaselineOdds bool `json:"baseline_odds,omitempty"` // intercept term
}

// OddsRatioTable presents a fitted model as odds ratios.
type OddsRatioTable struct {
	Model      string      `json:"model"`
	Confidence float64     `json:"confidence"` // e.g. 0.95
	Rows       []OddsRatio `json:"rows"`
}

// ============================================================================
// RUN REPORT
// ============================================================================

// AnalysisReport is the structured boundary of the pipeline: everything a
// renderer, API or store consumes.
type AnalysisReport struct {
	RunID      core.RunID     `json:"run_id"`
	SourceFile string         `json:"source_file,omitempty"`
	CreatedAt  core.Timestamp `json:"created_at"`
	SampleSize int            `json:"sample_size"`

	Frequencies  []FrequencyTable    `json:"frequencies"`
	CrossTabs    []CrossTab          `json:"cross_tabs"`
	Profiles     []ColumnProfile     `json:"profiles,omitempty"`
	Associations []AssociationResult `json:"associations"`
	Models       []ModelFit          `json:"models"`
	OddsRatios   []OddsRatioTable    `json:"odds_ratios"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// NewAnalysisReport creates a report shell for one run.
func NewAnalysisReport(sourceFile string, sampleSize int) *AnalysisReport {
	return &AnalysisReport{
		RunID:      core.NewRunID(),
		SourceFile: sourceFile,
		CreatedAt:  core.Now(),
		SampleSize: sampleSize,
	}
}

// AddWarnings appends warnings to the run-level collection.
func (r *AnalysisReport) AddWarnings(ws ...Warning) {
	r.Warnings = append(r.Warnings, ws...)
}
