// Package report renders an aggregated run into a Markdown document.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/augurhq/augur/internal/engine"
	"github.com/augurhq/augur/pkg/models"
)

// Section headings are stable strings: downstream tooling greps for
// them, so changing one is a breaking change.
const (
	headingSummary    = "## Summary"
	headingByPriority = "## Findings by Priority"
	headingByCategory = "## Findings by Category"
	headingDetails    = "## Details"
)

// Render writes the full Markdown report. Output is a pure function of
// the result: identical input renders byte-identical documents, so
// report diffs in version control reflect real changes only.
func Render(w io.Writer, result *engine.Result) error {
	var b strings.Builder

	b.WriteString("# Code Quality Report\n\n")
	writeSummary(&b, result)
	writeByPriority(&b, result.Findings)
	writeByCategory(&b, result.Findings)
	writeDetails(&b, result.Findings)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeSummary(b *strings.Builder, result *engine.Result) {
	b.WriteString(headingSummary + "\n\n")

	fmt.Fprintf(b, "- Files analyzed: %d\n", result.FilesAnalyzed)
	if result.FilesSkipped > 0 {
		fmt.Fprintf(b, "- Files skipped: %d (see Diagnostics)\n", result.FilesSkipped)
	}
	fmt.Fprintf(b, "- Total findings: %d\n\n", len(result.Findings))

	m := result.Metrics
	b.WriteString("| Priority | Count |\n|---|---|\n")
	for _, p := range []models.Priority{models.PriorityCritical, models.PriorityHigh, models.PriorityMedium, models.PriorityLow} {
		fmt.Fprintf(b, "| %s | %d |\n", p, m.ByPriority[p])
	}
	b.WriteString("\n| Category | Count |\n|---|---|\n")
	for _, c := range models.Categories {
		if m.ByCategory[c] == 0 {
			continue
		}
		fmt.Fprintf(b, "| %s | %d |\n", c, m.ByCategory[c])
	}

	fmt.Fprintf(b, "\n| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(b, "| Average complexity | %.2f |\n", m.AvgComplexity)
	fmt.Fprintf(b, "| Average function length | %.1f |\n", m.AvgFunctionLength)
	fmt.Fprintf(b, "| Average type length | %.1f |\n", m.AvgTypeLength)
	b.WriteString("\n")

	if result.Comparison != nil {
		writeComparison(b, result.Comparison)
	}

	if len(result.Diagnostics) > 0 {
		b.WriteString("### Diagnostics\n\n")
		for _, d := range result.Diagnostics {
			fmt.Fprintf(b, "- %s\n", d)
		}
		b.WriteString("\n")
	}
}

func writeComparison(b *strings.Builder, cmp *models.Comparison) {
	b.WriteString("### Baseline Comparison\n\n")
	fmt.Fprintf(b, "- New findings: %d\n", len(cmp.NewIDs))
	fmt.Fprintf(b, "- Resolved findings: %d\n\n", len(cmp.ResolvedIDs))

	names := make([]string, 0, len(cmp.Deltas))
	for name := range cmp.Deltas {
		names = append(names, name)
	}
	sort.Strings(names)

	b.WriteString("| Metric | Baseline | Current | Change |\n|---|---|---|---|\n")
	for _, name := range names {
		d := cmp.Deltas[name]
		change := "n/a"
		if d.Defined {
			change = fmt.Sprintf("%+.1f%%", d.Ratio*100)
		}
		fmt.Fprintf(b, "| %s | %.2f | %.2f | %s |\n", name, d.Baseline, d.Current, change)
	}
	b.WriteString("\n")
}

func writeByPriority(b *strings.Builder, findings []models.Finding) {
	b.WriteString(headingByPriority + "\n\n")

	for _, p := range []models.Priority{models.PriorityCritical, models.PriorityHigh, models.PriorityMedium, models.PriorityLow} {
		group := filter(findings, func(f models.Finding) bool { return f.Priority == p })
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(b, "### %s (%d)\n\n", strings.ToUpper(string(p)[:1])+string(p)[1:], len(group))
		for _, f := range group {
			fmt.Fprintf(b, "- %s — %s:%d\n", f.Title, f.File, f.Line)
		}
		b.WriteString("\n")
	}
}

func writeByCategory(b *strings.Builder, findings []models.Finding) {
	b.WriteString(headingByCategory + "\n\n")

	for _, c := range models.Categories {
		group := filter(findings, func(f models.Finding) bool { return f.Category == c })
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(b, "### %s (%d)\n\n", c, len(group))
		for _, f := range group {
			fmt.Fprintf(b, "- [%s] %s — %s:%d\n", f.Priority, f.Title, f.File, f.Line)
		}
		b.WriteString("\n")
	}
}

func writeDetails(b *strings.Builder, findings []models.Finding) {
	b.WriteString(headingDetails + "\n\n")

	for _, f := range findings {
		fmt.Fprintf(b, "### %s\n\n", f.Title)
		fmt.Fprintf(b, "- ID: `%s`\n", f.ID)
		fmt.Fprintf(b, "- Analyzer: %s\n", f.AnalyzerID)
		fmt.Fprintf(b, "- Category: %s\n", f.Category)
		fmt.Fprintf(b, "- Priority: %s\n", f.Priority)
		fmt.Fprintf(b, "- Location: %s:%d\n", f.File, f.Line)
		fmt.Fprintf(b, "- Effort: %s\n", f.Effort)
		if f.AutoFixable {
			b.WriteString("- Auto-fixable: yes\n")
		}
		b.WriteString("\n")
		if f.Description != "" {
			b.WriteString(f.Description + "\n\n")
		}
		if f.Snippet != "" {
			fmt.Fprintf(b, "```\n%s\n```\n\n", f.Snippet)
		}
		if f.Recommendation != "" {
			fmt.Fprintf(b, "**Recommendation:** %s\n\n", f.Recommendation)
		}
		if f.Before != "" && f.After != "" {
			fmt.Fprintf(b, "Before:\n\n```\n%s\n```\n\nAfter:\n\n```\n%s\n```\n\n", f.Before, f.After)
		}
	}
}

func filter(findings []models.Finding, keep func(models.Finding) bool) []models.Finding {
	var out []models.Finding
	for _, f := range findings {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}
