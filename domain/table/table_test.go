package table

import (
	"testing"

	"cbctsurvey/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RaggedRowsArePadded(t *testing.T) {
	tbl, err := New([]string{"a", "b", "c"}, [][]string{
		{"1", "2", "3"},
		{"4"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())

	col, err := tbl.Column("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"2", ""}, col)
}

func TestNew_RejectsDuplicateAndBlankHeaders(t *testing.T) {
	_, err := New([]string{"a", "a"}, nil)
	assert.True(t, core.IsSchemaError(err))

	_, err = New([]string{"a", "  "}, nil)
	assert.True(t, core.IsSchemaError(err))
}

func TestColumn_MissingColumnIsSchemaError(t *testing.T) {
	tbl, err := New([]string{"a"}, [][]string{{"1"}})
	require.NoError(t, err)

	_, err = tbl.Column("nope")
	assert.True(t, core.IsSchemaError(err))
	assert.ErrorContains(t, err, "nope")
}

func TestColumn_ReturnsCopy(t *testing.T) {
	tbl, err := New([]string{"a"}, [][]string{{"1"}, {"2"}})
	require.NoError(t, err)

	col, err := tbl.Column("a")
	require.NoError(t, err)
	col[0] = "mutated"

	again, err := tbl.Column("a")
	require.NoError(t, err)
	assert.Equal(t, "1", again[0])
}

func TestDerive_LayersColumnWithoutReplacingOriginal(t *testing.T) {
	tbl, err := New([]string{"owner"}, [][]string{{"Yes"}, {"No"}})
	require.NoError(t, err)

	err = tbl.Derive("flag", "owner", func(v string) string {
		if v == "Yes" {
			return "1"
		}
		return "0"
	})
	require.NoError(t, err)

	flag, err := tbl.Column("flag")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "0"}, flag)

	orig, err := tbl.Column("owner")
	require.NoError(t, err)
	assert.Equal(t, []string{"Yes", "No"}, orig)
}

func TestAddColumn_LengthMismatchFails(t *testing.T) {
	tbl, err := New([]string{"a"}, [][]string{{"1"}, {"2"}})
	require.NoError(t, err)

	err = tbl.AddColumn("b", []string{"only one"})
	assert.True(t, core.IsSchemaError(err))
}

func TestDropColumn_ReindexesRemaining(t *testing.T) {
	tbl, err := New([]string{"ts", "a", "b"}, [][]string{{"x", "1", "2"}})
	require.NoError(t, err)

	require.NoError(t, tbl.DropColumn("ts"))
	assert.Equal(t, []core.ColumnKey{"a", "b"}, tbl.Columns())

	b, err := tbl.Column("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, b)
}

func TestClone_IsDeep(t *testing.T) {
	tbl, err := New([]string{"a"}, [][]string{{"1"}})
	require.NoError(t, err)

	c := tbl.Clone()
	require.NoError(t, c.SetCell("a", 0, "changed"))

	orig, err := tbl.Column("a")
	require.NoError(t, err)
	assert.Equal(t, "1", orig[0])
}
