// Package normalize rewrites structurally-missing survey answers. A blank
// in a conditionally-applicable column is only "Not Applicable" when the
// governing column says the question was moot; other blanks are true
// missing data and are left alone.
package normalize

import (
	"fmt"
	"log"
	"sort"

	"cbctsurvey/domain/core"
	"cbctsurvey/domain/stats"
	"cbctsurvey/domain/survey"
	"cbctsurvey/domain/table"
)

// Normalizer applies a declarative rule list in a single pass.
type Normalizer struct {
	rules    []survey.Rule
	sentinel string
}

// New creates a normalizer for the given rules with the standard sentinel.
func New(rules []survey.Rule) *Normalizer {
	return &Normalizer{rules: rules, sentinel: survey.NotApplicable}
}

// Apply returns a normalized copy of the table plus the data-quality
// warnings gathered along the way. The input table is never mutated.
// Applying the result again yields an identical table (idempotent: the
// sentinel is non-blank, so a second pass finds nothing to rewrite).
func (n *Normalizer) Apply(tbl *table.Table) (*table.Table, []stats.Warning, error) {
	// Validate the rule columns up front so a broken schema fails the
	// stage instead of half-rewriting the table.
	for _, rule := range n.rules {
		if !tbl.Has(rule.Governing) {
			return nil, nil, core.NewMissingColumnError(rule.Governing)
		}
		if !tbl.Has(rule.Target) {
			return nil, nil, core.NewMissingColumnError(rule.Target)
		}
	}

	out := tbl.Clone()
	var warnings []stats.Warning
	rewritten := 0

	for _, rule := range n.rules {
		governing, err := out.Column(rule.Governing)
		if err != nil {
			return nil, nil, err
		}
		target, err := out.Column(rule.Target)
		if err != nil {
			return nil, nil, err
		}

		for row := range governing {
			if !table.IsBlank(target[row]) {
				continue
			}
			if governing[row] == rule.Value {
				if err := out.SetCell(rule.Target, row, n.sentinel); err != nil {
					return nil, nil, err
				}
				rewritten++
				continue
			}
			// Blank where the question applied: true missing, retained.
			warnings = append(warnings, stats.Warning{
				Code:    stats.WarningDataQuality,
				Column:  rule.Target,
				Row:     row,
				Message: fmt.Sprintf("blank %q outside governing condition %s=%q", rule.Target, rule.Governing, rule.Value),
			})
		}
	}

	if rewritten > 0 {
		log.Printf("[Normalizer] Rewrote %d structurally-missing cells to %q", rewritten, n.sentinel)
	}
	return out, warnings, nil
}

// ValidateLabels checks every enumerated column against its fixed label
// set. Unexpected labels are surfaced as warnings, never dropped. Blanks
// and the sentinel are not label violations.
func ValidateLabels(tbl *table.Table, enums map[core.ColumnKey][]string) ([]stats.Warning, error) {
	cols := make([]core.ColumnKey, 0, len(enums))
	for col := range enums {
		cols = append(cols, col)
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i] < cols[j] })

	var warnings []stats.Warning
	for _, col := range cols {
		levels := enums[col]
		if !tbl.Has(col) {
			return nil, core.NewMissingColumnError(col)
		}
		allowed := make(map[string]bool, len(levels))
		for _, l := range levels {
			allowed[l] = true
		}
		values, err := tbl.Column(col)
		if err != nil {
			return nil, err
		}
		for row, v := range values {
			if table.IsBlank(v) || v == survey.NotApplicable || allowed[v] {
				continue
			}
			warnings = append(warnings, stats.Warning{
				Code:    stats.WarningDataQuality,
				Column:  col,
				Row:     row,
				Message: fmt.Sprintf("unexpected label %q in column %q", v, col),
			})
		}
	}
	return warnings, nil
}
