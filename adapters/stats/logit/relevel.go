package logit

import (
	"fmt"

	"cbctsurvey/domain/core"
	"cbctsurvey/domain/table"
)

// Collapse derives a two-bucket column from a multi-level predictor via a
// caller-supplied partition, the escape hatch for quasi-complete
// separation. Blanks pass through so missingness is preserved. The
// partition must produce at most two buckets over the observed levels.
func Collapse(tbl *table.Table, from, to core.ColumnKey, partition func(level string) string) error {
	src, err := tbl.Column(from)
	if err != nil {
		return err
	}

	out := make([]string, len(src))
	buckets := make(map[string]bool)
	for i, v := range src {
		if table.IsBlank(v) {
			out[i] = v
			continue
		}
		b := partition(v)
		buckets[b] = true
		out[i] = b
	}
	if len(buckets) > 2 {
		return fmt.Errorf("partition of %q produced %d buckets, want at most 2", from, len(buckets))
	}

	return tbl.AddColumn(to, out)
}
