// Package report renders an AnalysisReport to Markdown. Display rounding
// (one decimal for percentages) happens here and only here; the report
// itself stays full precision.
package report

import (
	"fmt"
	"strings"
	"time"

	"cbctsurvey/domain/stats"
)

// Markdown renders the full report as a Markdown document.
func Markdown(r *stats.AnalysisReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# CBCT Survey Analysis\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", r.RunID)
	if r.SourceFile != "" {
		fmt.Fprintf(&b, "- Source: `%s`\n", r.SourceFile)
	}
	fmt.Fprintf(&b, "- Generated: %s\n", r.CreatedAt.Time().Format(time.RFC3339))
	fmt.Fprintf(&b, "- Records: %d\n\n", r.SampleSize)

	if len(r.Frequencies) > 0 {
		b.WriteString("## Frequency tables\n\n")
		for _, ft := range r.Frequencies {
			writeFrequency(&b, ft)
		}
	}

	if len(r.CrossTabs) > 0 {
		b.WriteString("## Cross tabulations\n\n")
		for _, ct := range r.CrossTabs {
			writeCrossTab(&b, ct)
		}
	}

	if len(r.Associations) > 0 {
		b.WriteString("## Association tests\n\n")
		b.WriteString("| Predictor | Chi-square | df | p-value | Exact p | Validity |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		for _, a := range r.Associations {
			validity := "ok"
			if a.Degenerate {
				validity = "degenerate"
			} else if a.Approximate {
				validity = "approximate"
			}
			exact := "-"
			if a.ExactPValue != nil {
				exact = fmt.Sprintf("%.4f", *a.ExactPValue)
			}
			fmt.Fprintf(&b, "| %s | %.3f | %d | %.4f | %s | %s |\n",
				a.Predictor, a.Statistic, a.DF, a.PValue, exact, validity)
		}
		b.WriteString("\n")
	}

	for _, or := range r.OddsRatios {
		writeOddsRatios(&b, or)
	}

	if len(r.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- **%s** %s\n", w.Code, w.Message)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func writeFrequency(b *strings.Builder, ft stats.FrequencyTable) {
	fmt.Fprintf(b, "### %s (n=%d)\n\n", ft.Column, ft.N)
	b.WriteString("| Label | Count | Percent |\n|---|---|---|\n")
	for _, row := range ft.Rows {
		fmt.Fprintf(b, "| %s | %d | %.1f%% |\n", row.Label, row.Count, row.Percent)
	}
	b.WriteString("\n")
}

func writeCrossTab(b *strings.Builder, ct stats.CrossTab) {
	fmt.Fprintf(b, "### %s by %s\n\n", ct.Column, ct.GroupColumn)
	b.WriteString("| Group | Label | Count | Percent of group |\n|---|---|---|---|\n")
	for _, g := range ct.Groups {
		for _, row := range g.Rows {
			fmt.Fprintf(b, "| %s | %s | %d | %.1f%% |\n", g.Level, row.Label, row.Count, row.Percent)
		}
	}
	b.WriteString("\n")
}

func writeOddsRatios(b *strings.Builder, or stats.OddsRatioTable) {
	fmt.Fprintf(b, "## Odds ratios: %s (%.0f%% CI)\n\n", or.Model, or.Confidence*100)
	b.WriteString("| Term | OR | Lower | Upper | p-value |\n|---|---|---|---|---|\n")
	for _, row := range or.Rows {
		switch {
		case row.BaselineOdds:
			fmt.Fprintf(b, "| %s (baseline odds) | %.3f | %.3f | %.3f | %.4f |\n",
				row.Term, row.Ratio, row.Lower, row.Upper, row.PValue)
		case row.Baseline:
			fmt.Fprintf(b, "| %s (reference) | 1 | - | - | - |\n", row.Term)
		default:
			fmt.Fprintf(b, "| %s | %.3f | %.3f | %.3f | %.4f |\n",
				row.Term, row.Ratio, row.Lower, row.Upper, row.PValue)
		}
	}
	b.WriteString("\n")
}
