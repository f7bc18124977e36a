// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/jonathan/role-recommender/internal/stats"
	"github.com/jonathan/role-recommender/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// barWidth is the width of a full-scale bar
	barWidth = 20
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// bar renders value relative to maxValue as a run of '='.
func bar(value, maxValue float64) string {
	if maxValue <= 0 || value <= 0 {
		return ""
	}
	n := int(math.Round(value / maxValue * barWidth))
	return strings.Repeat("=", max(n, 1))
}

// PrintLabelSets outputs the label sets and the state of their artifacts.
func (p *Printer) PrintLabelSets(summaries []types.LabelSetSummary) {
	var sb strings.Builder
	for i, s := range summaries {
		status := "ready"
		switch {
		case !s.Available:
			status = "unavailable"
		case !s.CanScore:
			status = "factors only"
		}
		sb.WriteString(fmt.Sprintf("%s (%s): %s\n", s.LabelSet, s.Title, status))
		for _, c := range s.Classes {
			sb.WriteString(fmt.Sprintf("  %s = %s\n", c.ID, c.Name))
		}
		if s.Error != "" {
			sb.WriteString(fmt.Sprintf("  error: %s\n", s.Error))
		}
		for _, w := range s.Warnings {
			sb.WriteString(fmt.Sprintf("  warning: %s\n", w))
		}
		if i < len(summaries)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox("LABEL SETS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintFactors outputs the ranked success factors of a class.
func (p *Printer) PrintFactors(result *types.RankedFeatures) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Label set: %s\n", result.LabelSet))
	sb.WriteString(fmt.Sprintf("Role:      %s\n\n", result.Class))

	if len(result.Factors) == 0 {
		sb.WriteString("No rankable features.")
		p.printBox("TOP SUCCESS FACTORS", sb.String())
		return
	}

	top := result.Factors[0].Magnitude
	for i, f := range result.Factors {
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, f.Feature))
		sb.WriteString(fmt.Sprintf("    %.4f %s\n", f.Magnitude, bar(f.Magnitude, top)))
	}
	if rest := len(result.FeatureOrder) - len(result.Factors); rest > 0 {
		sb.WriteString(fmt.Sprintf("\n... %d more features not shown", rest))
	}

	p.printBox("TOP SUCCESS FACTORS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintOptions outputs the ordered values of each feature, marking the default.
func (p *Printer) PrintOptions(options []types.FeatureOptions) {
	if len(options) == 0 {
		return
	}

	var sb strings.Builder
	for i, o := range options {
		sb.WriteString(o.Feature + "\n")
		for _, v := range o.Values {
			marker := " "
			if v == o.Default {
				marker = "*"
			}
			sb.WriteString(fmt.Sprintf("  %s %s\n", marker, v))
		}
		if i < len(options)-1 {
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n(* = benchmark default)")

	p.printBox("FEATURE OPTIONS", sb.String())
}

// PrintComparison outputs the benchmark and user role scores side by side.
func (p *Printer) PrintComparison(cmp *types.Comparison) {
	if cmp == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Role: %s (%s)\n\n", cmp.Class, cmp.LabelSet))
	sb.WriteString(fmt.Sprintf("Benchmark  %6.2f%% %s\n", cmp.Benchmark.Percent, bar(cmp.Benchmark.Percent, 100)))
	sb.WriteString(fmt.Sprintf("You        %6.2f%% %s\n", cmp.User.Percent, bar(cmp.User.Percent, 100)))
	sb.WriteString(fmt.Sprintf("Change     %+6.2f pts\n", cmp.Delta))

	if len(cmp.Changed) > 0 {
		sb.WriteString("\nChanged answers:\n")
		for _, f := range cmp.Changed {
			sb.WriteString(fmt.Sprintf("  • %s: %s -> %s\n", f, cmp.Vectors.Benchmark[f], cmp.Vectors.User[f]))
		}
	}

	if len(cmp.Notes) > 0 {
		sb.WriteString("\nIgnored answers:\n")
		for _, n := range cmp.Notes {
			if n.Applied != "" {
				sb.WriteString(fmt.Sprintf("  • %s: %q not allowed, kept %s\n", n.Feature, n.Rejected, n.Applied))
			} else {
				sb.WriteString(fmt.Sprintf("  • %s: unknown feature\n", n.Feature))
			}
		}
	}
	sb.WriteString("\nAll other answers use the benchmark values.")

	p.printBox("ROLE SCORE", sb.String())
}

// PrintAssociation outputs a chi-square association test.
func (p *Printer) PrintAssociation(a *stats.Association) {
	if a == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s by %s\n\n", a.Y, a.X))
	sb.WriteString(fmt.Sprintf("Chi2 Statistic:     %.4f\n", a.Statistic))
	sb.WriteString(fmt.Sprintf("p-value:            %.4g\n", a.PValue))
	sb.WriteString(fmt.Sprintf("Degrees of Freedom: %d\n", a.DoF))
	sb.WriteString(fmt.Sprintf("Cramér's V:         %.4f\n", a.CramersV))
	sb.WriteString(fmt.Sprintf("Observations:       %d", a.Table.Total))
	if a.Corrected {
		sb.WriteString("\n(Yates' continuity correction applied)")
	}

	p.printBox("ASSOCIATION TEST", sb.String())
}

// PrintPerformance outputs the classification report and confusion matrix of a model.
func (p *Printer) PrintPerformance(perf *types.ModelPerformance) {
	if perf == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Label set: %s\n", perf.LabelSet))

	if perf.Report != nil {
		sb.WriteString(fmt.Sprintf("Accuracy:  %.4f\n\n", perf.Report.Accuracy))
		sb.WriteString(fmt.Sprintf("%-10s %9s %9s %9s %8s\n", "class", "precision", "recall", "f1", "support"))
		labels := perf.Report.ClassLabels()
		count := min(len(labels), maxItemsToShow)
		for _, l := range labels[:count] {
			m := perf.Report.Classes[l]
			sb.WriteString(fmt.Sprintf("%-10s %9.4f %9.4f %9.4f %8.0f\n", l, m.Precision, m.Recall, m.F1Score, m.Support))
		}
		if len(labels) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("... and %d more classes\n", len(labels)-maxItemsToShow))
		}
	}

	if perf.Confusion != nil {
		sb.WriteString("\nConfusion matrix (row %):\n")
		for i, row := range perf.Confusion.Matrix {
			cells := make([]string, len(row))
			for j, c := range row {
				cells[j] = fmt.Sprintf("%d (%.1f%%)", c, perf.RowPercentages[i][j])
			}
			sb.WriteString(fmt.Sprintf("  %-4s %s\n", perf.Confusion.Labels[i], strings.Join(cells, "  ")))
		}
	}

	if perf.UnavailableNote != "" {
		sb.WriteString("\nUnavailable: " + perf.UnavailableNote)
	}

	p.printBox("MODEL PERFORMANCE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintHistoryEntry outputs one stored comparison with its overrides.
func (p *Printer) PrintHistoryEntry(e *types.HistoryEntry) {
	if e == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID:        %s\n", e.ID))
	sb.WriteString(fmt.Sprintf("Created:   %s\n", e.CreatedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Role:      %s (%s)\n\n", e.Class, e.LabelSet))
	sb.WriteString(fmt.Sprintf("Benchmark  %6.2f%%\n", e.BenchmarkPercent))
	sb.WriteString(fmt.Sprintf("You        %6.2f%%\n", e.UserPercent))

	if len(e.Overrides) > 0 {
		sb.WriteString("\nOverrides:\n")
		for _, f := range types.FeatureVector(e.Overrides).Keys() {
			sb.WriteString(fmt.Sprintf("  • %s = %s\n", f, e.Overrides[f]))
		}
	}

	p.printBox("STORED COMPARISON", strings.TrimSuffix(sb.String(), "\n"))
}
