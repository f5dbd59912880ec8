// Package describe computes descriptive summaries: single-column frequency
// tables, grouped cross tabulations and per-column profiles. Percentages
// are kept at full precision; display rounding belongs to the renderer.
package describe

import (
	"sort"

	"cbctsurvey/domain/core"
	"cbctsurvey/domain/stats"
	"cbctsurvey/domain/table"
)

// Frequency tabulates a single column over included rows. Blank cells are
// always excluded; additional labels (typically the "Not Applicable"
// sentinel on conditionally-applicable columns) can be excluded so the
// denominator is the applicable subgroup only.
func Frequency(tbl *table.Table, col core.ColumnKey, exclude ...string) (stats.FrequencyTable, error) {
	values, err := tbl.Column(col)
	if err != nil {
		return stats.FrequencyTable{}, err
	}

	excluded := excludeSet(exclude)
	counts := make(map[string]int)
	n := 0
	for _, v := range values {
		if table.IsBlank(v) || excluded[v] {
			continue
		}
		counts[v]++
		n++
	}

	return stats.FrequencyTable{
		Column: col,
		N:      n,
		Rows:   sortedRows(counts, n),
	}, nil
}

// CrossTab tabulates col within each level of groupCol. Percentages are
// proportions within each group level, matching a stacked-proportion view.
// Groups are ordered by descending size, ties lexicographic.
func CrossTab(tbl *table.Table, groupCol, col core.ColumnKey, exclude ...string) (stats.CrossTab, error) {
	groups, err := tbl.Column(groupCol)
	if err != nil {
		return stats.CrossTab{}, err
	}
	values, err := tbl.Column(col)
	if err != nil {
		return stats.CrossTab{}, err
	}

	excluded := excludeSet(exclude)
	byGroup := make(map[string]map[string]int)
	groupN := make(map[string]int)
	for i := range groups {
		g, v := groups[i], values[i]
		if table.IsBlank(g) || excluded[g] || table.IsBlank(v) || excluded[v] {
			continue
		}
		if byGroup[g] == nil {
			byGroup[g] = make(map[string]int)
		}
		byGroup[g][v]++
		groupN[g]++
	}

	levels := make([]string, 0, len(byGroup))
	for g := range byGroup {
		levels = append(levels, g)
	}
	sort.Slice(levels, func(i, j int) bool {
		if groupN[levels[i]] != groupN[levels[j]] {
			return groupN[levels[i]] > groupN[levels[j]]
		}
		return levels[i] < levels[j]
	})

	out := stats.CrossTab{GroupColumn: groupCol, Column: col}
	for _, g := range levels {
		out.Groups = append(out.Groups, stats.CrossGroup{
			Level: g,
			N:     groupN[g],
			Rows:  sortedRows(byGroup[g], groupN[g]),
		})
	}
	return out, nil
}

// sortedRows converts a count map to rows ordered by descending count,
// ties broken by lexicographic label, for reproducible output.
func sortedRows(counts map[string]int, n int) []stats.FrequencyRow {
	rows := make([]stats.FrequencyRow, 0, len(counts))
	for label, count := range counts {
		pct := 0.0
		if n > 0 {
			pct = 100 * float64(count) / float64(n)
		}
		rows = append(rows, stats.FrequencyRow{Label: label, Count: count, Percent: pct})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Label < rows[j].Label
	})
	return rows
}

func excludeSet(exclude []string) map[string]bool {
	if len(exclude) == 0 {
		return nil
	}
	set := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		set[e] = true
	}
	return set
}
