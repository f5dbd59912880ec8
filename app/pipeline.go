// Package app drives the analysis: load -> normalize -> describe -> test
// -> fit -> report, strictly sequential over one shared table. The table
// is owned by the pipeline and read-only after normalization; a failed
// model fit never suppresses the descriptive results.
package app

import (
	"fmt"
	"log"

	"cbctsurvey/adapters/ingest"
	"cbctsurvey/adapters/stats/assoc"
	"cbctsurvey/adapters/stats/logit"
	"cbctsurvey/domain/core"
	"cbctsurvey/domain/stats"
	"cbctsurvey/domain/survey"
	"cbctsurvey/domain/table"
	"cbctsurvey/internal/describe"
	"cbctsurvey/internal/normalize"
)

// Config holds the statistical settings of a run.
type Config struct {
	Positive   string  // outcome level coded 1
	Confidence float64 // Wald CI level for odds ratios
}

// DefaultConfig returns the conventional settings.
func DefaultConfig() Config {
	return Config{
		Positive:   survey.AnswerYes,
		Confidence: 0.95,
	}
}

// Pipeline orchestrates one analysis run.
type Pipeline struct {
	cfg    Config
	tester *assoc.Tester
}

// NewPipeline creates a pipeline with the given config.
func NewPipeline(cfg Config) *Pipeline {
	if cfg.Positive == "" {
		cfg.Positive = survey.AnswerYes
	}
	if cfg.Confidence <= 0 || cfg.Confidence >= 1 {
		cfg.Confidence = 0.95
	}
	return &Pipeline{cfg: cfg, tester: assoc.NewTester()}
}

// Load reads a survey file and drops the leading response timestamp.
func Load(path string) (*table.Table, error) {
	tbl, err := ingest.NewDataReader(path).Read()
	if err != nil {
		return nil, err
	}
	return ingest.DropLeadingTimestamp(tbl), nil
}

// Run executes the full pipeline over a loaded table and returns the
// structured report. Fatal schema errors abort the run; everything
// non-fatal lands in the report's warning collection.
func (p *Pipeline) Run(raw *table.Table, sourceFile string) (*stats.AnalysisReport, error) {
	if !raw.Has(survey.ColCBCTAbundance) {
		return nil, core.NewMissingColumnError(survey.ColCBCTAbundance)
	}

	report := stats.NewAnalysisReport(sourceFile, raw.Len())
	log.Printf("[Pipeline] Run %s: %d records", report.RunID, raw.Len())

	// Every record must carry an outcome; violations are surfaced and the
	// rows drop out of downstream denominators naturally.
	outcome, err := raw.Column(survey.ColCBCTAbundance)
	if err != nil {
		return nil, err
	}
	for row, v := range outcome {
		if table.IsBlank(v) {
			report.AddWarnings(stats.Warning{
				Code:    stats.WarningDataQuality,
				Column:  survey.ColCBCTAbundance,
				Row:     row,
				Message: "record has no outcome value",
			})
		}
	}

	// Stage: structural-missingness normalization (pure transform).
	tbl, warns, err := normalize.New(survey.StructuralRules()).Apply(raw)
	if err != nil {
		return nil, err
	}
	report.AddWarnings(warns...)

	labelWarns, err := normalize.ValidateLabels(tbl, survey.Enumerations())
	if err != nil {
		return nil, err
	}
	report.AddWarnings(labelWarns...)

	// Derived columns layered onto the table; originals stay intact.
	if err := tbl.Derive(survey.ColOwnerFlag, survey.ColCBCTAbundance, func(v string) string {
		switch {
		case table.IsBlank(v):
			return v
		case v == p.cfg.Positive:
			return "1"
		default:
			return "0"
		}
	}); err != nil {
		return nil, err
	}
	if err := logit.Collapse(tbl, survey.ColPracticeSize, survey.ColSizeGroup, survey.CollapseSize); err != nil {
		return nil, err
	}

	if err := p.describeStage(tbl, report); err != nil {
		return nil, err
	}
	if err := p.associationStage(tbl, report); err != nil {
		return nil, err
	}
	p.modelStage(tbl, report)

	log.Printf("[Pipeline] Run %s complete: %d frequency tables, %d tests, %d models, %d warnings",
		report.RunID, len(report.Frequencies), len(report.Associations), len(report.Models), len(report.Warnings))
	return report, nil
}

// describeStage produces frequency tables, cross tabulations and column
// profiles. Conditional columns are tabulated within their applicable
// subgroup only (the sentinel is excluded from the denominator).
func (p *Pipeline) describeStage(tbl *table.Table, report *stats.AnalysisReport) error {
	unconditional := []core.ColumnKey{
		survey.ColCBCTAbundance,
		survey.ColPracticeLocation,
		survey.ColPracticeSize,
		survey.ColDigitalSensors,
	}
	conditional := []core.ColumnKey{
		survey.ColCBCTInterpretation,
		survey.ColScansForOthers,
		survey.ColLimitedFieldCBCT,
		survey.ColReferForCBCT,
		survey.ColReferralLocation,
	}

	for _, col := range unconditional {
		ft, err := describe.Frequency(tbl, col)
		if err != nil {
			return err
		}
		report.Frequencies = append(report.Frequencies, ft)
	}
	for _, col := range conditional {
		ft, err := describe.Frequency(tbl, col, survey.NotApplicable)
		if err != nil {
			return err
		}
		report.Frequencies = append(report.Frequencies, ft)
	}

	for _, group := range []core.ColumnKey{
		survey.ColPracticeLocation,
		survey.ColPracticeSize,
		survey.ColDigitalSensors,
	} {
		ct, err := describe.CrossTab(tbl, group, survey.ColCBCTAbundance)
		if err != nil {
			return err
		}
		report.CrossTabs = append(report.CrossTabs, ct)
	}

	for _, col := range append([]core.ColumnKey{survey.ColOwnerFlag}, unconditional...) {
		profile, err := describe.Profile(tbl, col)
		if err != nil {
			return err
		}
		report.Profiles = append(report.Profiles, profile)
	}
	return nil
}

// associationStage tests the outcome against each candidate predictor.
func (p *Pipeline) associationStage(tbl *table.Table, report *stats.AnalysisReport) error {
	for _, predictor := range []core.ColumnKey{
		survey.ColPracticeLocation,
		survey.ColPracticeSize,
		survey.ColDigitalSensors,
	} {
		result, err := p.tester.Test(tbl, survey.ColCBCTAbundance, predictor)
		if err != nil {
			return err
		}
		report.Associations = append(report.Associations, result)
	}
	return nil
}

// modelStage fits the full model and the collapsed-size refit. A fit that
// fails (rank-deficient design) is reported and skipped; the run goes on.
func (p *Pipeline) modelStage(tbl *table.Table, report *stats.AnalysisReport) {
	specs := []logit.Spec{
		{
			Name:     "ownership~location+size",
			Outcome:  survey.ColCBCTAbundance,
			Positive: p.cfg.Positive,
			Predictors: []logit.Predictor{
				{Column: survey.ColPracticeLocation, Baseline: baselineOf(survey.ColPracticeLocation)},
				{Column: survey.ColPracticeSize, Baseline: baselineOf(survey.ColPracticeSize)},
			},
		},
		{
			Name:     "ownership~location+size_group",
			Outcome:  survey.ColCBCTAbundance,
			Positive: p.cfg.Positive,
			Predictors: []logit.Predictor{
				{Column: survey.ColPracticeLocation, Baseline: baselineOf(survey.ColPracticeLocation)},
				{Column: survey.ColSizeGroup, Baseline: baselineOf(survey.ColSizeGroup)},
			},
		},
	}

	for _, spec := range specs {
		fit, err := logit.Fit(tbl, spec)
		if err != nil {
			log.Printf("[Pipeline] Model %q failed: %v", spec.Name, err)
			report.AddWarnings(stats.NewWarning(
				stats.WarningModelSkipped, spec.Outcome,
				fmt.Sprintf("model %q skipped: %v", spec.Name, err)))
			continue
		}
		report.Models = append(report.Models, *fit)
		report.OddsRatios = append(report.OddsRatios, logit.OddsRatios(fit, p.cfg.Confidence))
	}
}

func baselineOf(col core.ColumnKey) string {
	if b, ok := survey.Baseline(col); ok {
		return b
	}
	return ""
}
