package normalize

import (
	"testing"

	"cbctsurvey/domain/core"
	"cbctsurvey/domain/stats"
	"cbctsurvey/domain/survey"
	"cbctsurvey/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSurveyTable(t *testing.T, rows [][]string) *table.Table {
	t.Helper()
	header := []string{
		string(survey.ColCBCTAbundance),
		string(survey.ColCBCTInterpretation),
		string(survey.ColScansForOthers),
		string(survey.ColLimitedFieldCBCT),
		string(survey.ColReferForCBCT),
		string(survey.ColReferralLocation),
	}
	tbl, err := table.New(header, rows)
	require.NoError(t, err)
	return tbl
}

func TestApply_BlankUnderGoverningConditionBecomesNotApplicable(t *testing.T) {
	tbl := newSurveyTable(t, [][]string{
		// No CBCT: the owner-only questions are moot.
		{"No", "", "", "", "Yes", "Dental imaging center"},
	})

	out, warnings, err := New(survey.StructuralRules()).Apply(tbl)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	for _, col := range []core.ColumnKey{survey.ColCBCTInterpretation, survey.ColScansForOthers, survey.ColLimitedFieldCBCT} {
		v, err := out.Cell(col, 0)
		require.NoError(t, err)
		assert.Equal(t, survey.NotApplicable, v, "column %s", col)
	}
}

func TestApply_LeavesAnsweredAndUnconditionalCellsUntouched(t *testing.T) {
	tbl := newSurveyTable(t, [][]string{
		{"Yes", "Myself", "No", "Yes", "", ""},
	})

	out, warnings, err := New(survey.StructuralRules()).Apply(tbl)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	v, err := out.Cell(survey.ColCBCTInterpretation, 0)
	require.NoError(t, err)
	assert.Equal(t, "Myself", v)

	// Referral questions are moot for owners and get the sentinel.
	v, err = out.Cell(survey.ColReferForCBCT, 0)
	require.NoError(t, err)
	assert.Equal(t, survey.NotApplicable, v)
}

func TestApply_BlankOutsideGoverningConditionIsWarnedAndRetained(t *testing.T) {
	tbl := newSurveyTable(t, [][]string{
		// Owns a CBCT but skipped the interpretation question: true missing.
		{"Yes", "", "No", "No", "", ""},
	})

	out, warnings, err := New(survey.StructuralRules()).Apply(tbl)
	require.NoError(t, err)

	v, err := out.Cell(survey.ColCBCTInterpretation, 0)
	require.NoError(t, err)
	assert.Equal(t, "", v, "true missing stays blank")

	require.NotEmpty(t, warnings)
	found := false
	for _, w := range warnings {
		if w.Column == survey.ColCBCTInterpretation {
			found = true
			assert.Equal(t, stats.WarningDataQuality, w.Code)
			assert.Equal(t, 0, w.Row)
		}
	}
	assert.True(t, found, "expected a data-quality warning for the blank interpretation answer")
}

func TestApply_IsIdempotent(t *testing.T) {
	tbl := newSurveyTable(t, [][]string{
		{"No", "", "", "", "Yes", "Another dental office"},
		{"Yes", "Radiologist", "Yes", "No", "", ""},
	})

	n := New(survey.StructuralRules())
	once, _, err := n.Apply(tbl)
	require.NoError(t, err)

	twice, warnings, err := n.Apply(once)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	for _, col := range once.Columns() {
		want, err := once.Column(col)
		require.NoError(t, err)
		got, err := twice.Column(col)
		require.NoError(t, err)
		assert.Equal(t, want, got, "column %s changed on second pass", col)
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	tbl := newSurveyTable(t, [][]string{
		{"No", "", "", "", "Yes", "Dental imaging center"},
	})

	_, _, err := New(survey.StructuralRules()).Apply(tbl)
	require.NoError(t, err)

	v, err := tbl.Cell(survey.ColCBCTInterpretation, 0)
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestApply_MissingRuleColumnIsSchemaError(t *testing.T) {
	tbl, err := table.New([]string{string(survey.ColCBCTAbundance)}, [][]string{{"No"}})
	require.NoError(t, err)

	_, _, err = New(survey.StructuralRules()).Apply(tbl)
	assert.True(t, core.IsSchemaError(err))
}

func TestValidateLabels_FlagsUnexpectedLabels(t *testing.T) {
	tbl, err := table.New(
		[]string{string(survey.ColCBCTAbundance)},
		[][]string{{"Yes"}, {"Maybe"}, {""}, {survey.NotApplicable}},
	)
	require.NoError(t, err)

	warnings, err := ValidateLabels(tbl, map[core.ColumnKey][]string{
		survey.ColCBCTAbundance: {"Yes", "No"},
	})
	require.NoError(t, err)

	require.Len(t, warnings, 1, "blank and sentinel are never label violations")
	assert.Equal(t, stats.WarningDataQuality, warnings[0].Code)
	assert.Equal(t, 1, warnings[0].Row)
	assert.Contains(t, warnings[0].Message, "Maybe")
}
