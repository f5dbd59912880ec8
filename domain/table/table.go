// Package table provides the in-memory columnar table the analysis pipeline
// operates on. A table is loaded once, normalized once, then read-only;
// derived columns are layered on top and never replace originals.
package table

import (
	"fmt"
	"strings"

	"cbctsurvey/domain/core"
)

// Table is a column-major table of string-valued cells. All columns have
// the same length.
type Table struct {
	keys  []core.ColumnKey
	index map[core.ColumnKey]int
	cols  [][]string
	nrows int
}

// New builds a table from a header row and row-major records. Header names
// are trimmed. Ragged rows are padded with empty cells so that every column
// has the same length.
func New(header []string, rows [][]string) (*Table, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("%w: empty header", core.ErrSchema)
	}

	t := &Table{
		keys:  make([]core.ColumnKey, 0, len(header)),
		index: make(map[core.ColumnKey]int, len(header)),
		cols:  make([][]string, len(header)),
		nrows: len(rows),
	}

	for i, name := range header {
		key := core.ColumnKey(strings.TrimSpace(name))
		if key == "" {
			return nil, fmt.Errorf("%w: blank column name at position %d", core.ErrSchema, i)
		}
		if _, dup := t.index[key]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", core.ErrSchema, key)
		}
		t.keys = append(t.keys, key)
		t.index[key] = i
		t.cols[i] = make([]string, len(rows))
	}

	for r, row := range rows {
		for c := range header {
			if c < len(row) {
				t.cols[c][r] = row[c]
			}
		}
	}

	return t, nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return t.nrows
}

// Columns returns the ordered column keys.
func (t *Table) Columns() []core.ColumnKey {
	out := make([]core.ColumnKey, len(t.keys))
	copy(out, t.keys)
	return out
}

// Has reports whether the column exists.
func (t *Table) Has(key core.ColumnKey) bool {
	_, ok := t.index[key]
	return ok
}

// Column returns the values of a column. The returned slice is a copy; the
// table itself stays immutable to callers.
func (t *Table) Column(key core.ColumnKey) ([]string, error) {
	idx, ok := t.index[key]
	if !ok {
		return nil, core.NewMissingColumnError(key)
	}
	out := make([]string, t.nrows)
	copy(out, t.cols[idx])
	return out, nil
}

// Cell returns a single value.
func (t *Table) Cell(key core.ColumnKey, row int) (string, error) {
	idx, ok := t.index[key]
	if !ok {
		return "", core.NewMissingColumnError(key)
	}
	if row < 0 || row >= t.nrows {
		return "", fmt.Errorf("row %d out of range [0,%d)", row, t.nrows)
	}
	return t.cols[idx][row], nil
}

// SetCell rewrites a single value in place. Used only by the normalizer,
// which operates on its own clone.
func (t *Table) SetCell(key core.ColumnKey, row int, value string) error {
	idx, ok := t.index[key]
	if !ok {
		return core.NewMissingColumnError(key)
	}
	if row < 0 || row >= t.nrows {
		return fmt.Errorf("row %d out of range [0,%d)", row, t.nrows)
	}
	t.cols[idx][row] = value
	return nil
}

// AddColumn appends a derived column. The source columns are untouched.
func (t *Table) AddColumn(key core.ColumnKey, values []string) error {
	if _, dup := t.index[key]; dup {
		return fmt.Errorf("%w: column %q already exists", core.ErrSchema, key)
	}
	if len(values) != t.nrows {
		return core.NewColumnLengthError(key, t.nrows, len(values))
	}
	col := make([]string, t.nrows)
	copy(col, values)
	t.index[key] = len(t.cols)
	t.keys = append(t.keys, key)
	t.cols = append(t.cols, col)
	return nil
}

// Derive adds a column computed cell-by-cell from an existing one.
func (t *Table) Derive(key, from core.ColumnKey, fn func(string) string) error {
	src, err := t.Column(from)
	if err != nil {
		return err
	}
	out := make([]string, len(src))
	for i, v := range src {
		out[i] = fn(v)
	}
	return t.AddColumn(key, out)
}

// DropColumn removes a column, e.g. the leading response timestamp.
func (t *Table) DropColumn(key core.ColumnKey) error {
	idx, ok := t.index[key]
	if !ok {
		return core.NewMissingColumnError(key)
	}
	t.keys = append(t.keys[:idx], t.keys[idx+1:]...)
	t.cols = append(t.cols[:idx], t.cols[idx+1:]...)
	delete(t.index, key)
	for i, k := range t.keys {
		t.index[k] = i
	}
	return nil
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	c := &Table{
		keys:  make([]core.ColumnKey, len(t.keys)),
		index: make(map[core.ColumnKey]int, len(t.index)),
		cols:  make([][]string, len(t.cols)),
		nrows: t.nrows,
	}
	copy(c.keys, t.keys)
	for k, v := range t.index {
		c.index[k] = v
	}
	for i, col := range t.cols {
		c.cols[i] = make([]string, len(col))
		copy(c.cols[i], col)
	}
	return c
}

// IsBlank reports whether a cell value is empty or whitespace-only.
func IsBlank(v string) bool {
	return strings.TrimSpace(v) == ""
}
