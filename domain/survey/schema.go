// Package survey declares the dental-practice survey layout: column keys,
// categorical enumerations, baseline levels, and the structural-missingness
// rules that govern conditionally-applicable questions.
package survey

import (
	"cbctsurvey/domain/core"
)

// Survey column keys. The input file carries a leading response timestamp
// that is dropped before analysis.
const (
	ColTimestamp          core.ColumnKey = "timestamp"
	ColCBCTAbundance      core.ColumnKey = "cbct_abundance"
	ColPracticeLocation   core.ColumnKey = "practice_location"
	ColPracticeSize       core.ColumnKey = "practice_size"
	ColDigitalSensors     core.ColumnKey = "digital_radiograph_sensors"
	ColCBCTInterpretation core.ColumnKey = "cbct_interpretation"
	ColScansForOthers     core.ColumnKey = "scans_for_others"
	ColLimitedFieldCBCT   core.ColumnKey = "limited_field_cbct"
	ColReferForCBCT       core.ColumnKey = "refer_for_cbct"
	ColReferralLocation   core.ColumnKey = "referral_location"
)

// Derived columns layered onto the table by the pipeline.
const (
	ColOwnerFlag core.ColumnKey = "cbct_owner_flag"     // "1" if the practice owns a CBCT unit
	ColSizeGroup core.ColumnKey = "practice_size_group" // collapsed size: solo vs group
)

// NotApplicable is the sentinel written over structurally-missing blanks.
const NotApplicable = "Not Applicable"

// Outcome coding.
const (
	AnswerYes = "Yes"
	AnswerNo  = "No"
)

// Practice size bucket labels, lowest first.
const (
	SizeOne          = "one"
	SizeTwoToThree   = "two-to-three"
	SizeFourToFive   = "four-to-five"
	SizeMoreThanFive = "more-than-five"
)

// Collapsed size buckets used to escape quasi-complete separation.
const (
	SizeSolo  = "solo"
	SizeGroup = "group"
)

// Rule ties a conditionally-applicable target column to the governing
// column value under which it is defined. Blanks in the target are
// structural (recoded to NotApplicable) only on rows where the governing
// column equals the governing value.
type Rule struct {
	Governing core.ColumnKey `json:"governing"`
	Value     string         `json:"value"`
	Target    core.ColumnKey `json:"target"`
}

// StructuralRules returns the declarative rule list for this survey:
// owner-only questions are defined when cbct_abundance is "Yes",
// referral questions when it is "No".
func StructuralRules() []Rule {
	return []Rule{
		{Governing: ColCBCTAbundance, Value: AnswerNo, Target: ColCBCTInterpretation},
		{Governing: ColCBCTAbundance, Value: AnswerNo, Target: ColScansForOthers},
		{Governing: ColCBCTAbundance, Value: AnswerNo, Target: ColLimitedFieldCBCT},
		{Governing: ColCBCTAbundance, Value: AnswerYes, Target: ColReferForCBCT},
		{Governing: ColCBCTAbundance, Value: AnswerYes, Target: ColReferralLocation},
	}
}

// Enumerations maps each categorical column to its fixed label set.
// Free-form columns (referral_location) are absent. NotApplicable is
// implicitly allowed on conditionally-applicable columns.
func Enumerations() map[core.ColumnKey][]string {
	yesNo := []string{AnswerNo, AnswerYes}
	return map[core.ColumnKey][]string{
		ColCBCTAbundance:      yesNo,
		ColPracticeLocation:   {"Rural", "Suburban", "Urban"},
		ColPracticeSize:       {SizeOne, SizeTwoToThree, SizeFourToFive, SizeMoreThanFive},
		ColDigitalSensors:     yesNo,
		ColCBCTInterpretation: yesNo,
		ColScansForOthers:     yesNo,
		ColLimitedFieldCBCT:   yesNo,
		ColReferForCBCT:       yesNo,
	}
}

// Baseline returns the reference level absorbed into the regression
// intercept for a predictor, if one is declared.
func Baseline(col core.ColumnKey) (string, bool) {
	switch col {
	case ColPracticeLocation:
		return "Rural", true
	case ColPracticeSize:
		return SizeOne, true
	case ColSizeGroup:
		return SizeSolo, true
	case ColDigitalSensors:
		return AnswerNo, true
	}
	return "", false
}

// CollapseSize maps the four-bucket practice size onto the two-bucket
// solo/group partition. Blanks pass through untouched.
func CollapseSize(level string) string {
	switch level {
	case SizeOne:
		return SizeSolo
	case SizeTwoToThree, SizeFourToFive, SizeMoreThanFive:
		return SizeGroup
	}
	return level
}

// IsConditional reports whether the column is a structural-rule target.
func IsConditional(col core.ColumnKey) bool {
	for _, r := range StructuralRules() {
		if r.Target == col {
			return true
		}
	}
	return false
}
