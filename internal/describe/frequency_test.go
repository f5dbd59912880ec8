package describe

import (
	"math"
	"testing"

	"cbctsurvey/domain/core"
	"cbctsurvey/domain/survey"
	"cbctsurvey/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoColumn builds a table with an outcome column and a grouping column
// from parallel value slices.
func twoColumn(t *testing.T, outcome, group []string) *table.Table {
	t.Helper()
	require.Equal(t, len(outcome), len(group))
	rows := make([][]string, len(outcome))
	for i := range outcome {
		rows[i] = []string{outcome[i], group[i]}
	}
	tbl, err := table.New([]string{"outcome", "group"}, rows)
	require.NoError(t, err)
	return tbl
}

func repeat(v string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestFrequency_PercentagesMatchKnownSplit(t *testing.T) {
	// 51 respondents, 36 Yes / 15 No: 70.6% / 29.4% at one decimal.
	values := append(repeat("Yes", 36), repeat("No", 15)...)
	tbl := twoColumn(t, values, repeat("g", 51))

	ft, err := Frequency(tbl, "outcome")
	require.NoError(t, err)

	assert.Equal(t, 51, ft.N)
	require.Len(t, ft.Rows, 2)
	assert.Equal(t, "Yes", ft.Rows[0].Label)
	assert.Equal(t, 36, ft.Rows[0].Count)
	assert.InDelta(t, 70.588235, ft.Rows[0].Percent, 1e-4)
	assert.Equal(t, "No", ft.Rows[1].Label)
	assert.InDelta(t, 29.411765, ft.Rows[1].Percent, 1e-4)
}

func TestFrequency_PercentagesSumToHundred(t *testing.T) {
	values := []string{"a", "a", "a", "b", "b", "c", "c"}
	tbl := twoColumn(t, values, repeat("g", len(values)))

	ft, err := Frequency(tbl, "outcome")
	require.NoError(t, err)

	sum := 0.0
	for _, r := range ft.Rows {
		sum += r.Percent
	}
	assert.InDelta(t, 100.0, sum, 0.05)
}

func TestFrequency_ExcludesBlanksAndRequestedLabels(t *testing.T) {
	values := []string{"Yes", "No", "", survey.NotApplicable, "Yes"}
	tbl := twoColumn(t, values, repeat("g", len(values)))

	ft, err := Frequency(tbl, "outcome", survey.NotApplicable)
	require.NoError(t, err)

	assert.Equal(t, 3, ft.N, "blank and sentinel are out of the denominator")
	require.Len(t, ft.Rows, 2)
	assert.InDelta(t, 100.0*2/3, ft.Rows[0].Percent, 1e-9)
}

func TestFrequency_TiesBreakLexicographically(t *testing.T) {
	values := []string{"b", "a", "c", "a", "c", "b"}
	tbl := twoColumn(t, values, repeat("g", len(values)))

	ft, err := Frequency(tbl, "outcome")
	require.NoError(t, err)

	labels := []string{ft.Rows[0].Label, ft.Rows[1].Label, ft.Rows[2].Label}
	assert.Equal(t, []string{"a", "b", "c"}, labels)
}

func TestFrequency_MissingColumnIsSchemaError(t *testing.T) {
	tbl := twoColumn(t, []string{"x"}, []string{"g"})
	_, err := Frequency(tbl, core.ColumnKey("nope"))
	assert.True(t, core.IsSchemaError(err))
}

func TestCrossTab_WithinGroupPercentagesSumToHundred(t *testing.T) {
	outcome := []string{"Yes", "Yes", "No", "Yes", "No", "No", "No"}
	group := []string{"Urban", "Urban", "Urban", "Rural", "Rural", "Rural", "Rural"}
	tbl := twoColumn(t, outcome, group)

	ct, err := CrossTab(tbl, "group", "outcome")
	require.NoError(t, err)

	require.Len(t, ct.Groups, 2)
	for _, g := range ct.Groups {
		sum := 0.0
		for _, r := range g.Rows {
			sum += r.Percent
		}
		assert.InDelta(t, 100.0, sum, 0.05, "group %s", g.Level)
	}

	// Larger group first, ties lexicographic.
	assert.Equal(t, "Rural", ct.Groups[0].Level)
	assert.Equal(t, 4, ct.Groups[0].N)
}

func TestCrossTab_RowWithBlankOnEitherSideIsDropped(t *testing.T) {
	outcome := []string{"Yes", "", "No"}
	group := []string{"Urban", "Urban", ""}
	tbl := twoColumn(t, outcome, group)

	ct, err := CrossTab(tbl, "group", "outcome")
	require.NoError(t, err)

	require.Len(t, ct.Groups, 1)
	assert.Equal(t, 1, ct.Groups[0].N)
}

func TestProfile_NumericColumnGetsSummary(t *testing.T) {
	values := []string{"1", "0", "1", "1", ""}
	tbl := twoColumn(t, values, repeat("g", len(values)))

	p, err := Profile(tbl, "outcome")
	require.NoError(t, err)

	assert.Equal(t, 1, p.MissingCount)
	assert.InDelta(t, 0.2, p.MissingRatio, 1e-9)
	assert.Equal(t, 2, p.Cardinality)
	assert.Equal(t, "1", p.Mode)
	require.NotNil(t, p.Numeric)
	assert.InDelta(t, 0.75, p.Numeric.Mean, 1e-9)
	assert.InDelta(t, 0.0, p.Numeric.Min, 1e-9)
	assert.InDelta(t, 1.0, p.Numeric.Max, 1e-9)
}

func TestProfile_CategoricalColumnHasNoNumericSummary(t *testing.T) {
	values := []string{"Urban", "Rural", "Urban"}
	tbl := twoColumn(t, values, repeat("g", len(values)))

	p, err := Profile(tbl, "outcome")
	require.NoError(t, err)

	assert.Nil(t, p.Numeric)
	assert.Equal(t, "Urban", p.Mode)
	assert.True(t, p.Entropy > 0 && !math.IsNaN(p.Entropy))
}
