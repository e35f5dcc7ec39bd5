package output

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jacobarthurs/a11yscan/internal/analyzer"
	"github.com/jacobarthurs/a11yscan/internal/comparator"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"

	maxSnippetWidth = 120
)

type textWriter struct {
	w   io.Writer
	err error
}

func (tw *textWriter) printf(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, format, args...)
}

func RenderReportText(w io.Writer, report analyzer.Report) error {
	tw := &textWriter{w: w}

	tw.printf("%s%sAccessibility Summary%s\n\n", colorBold, colorCyan, colorReset)
	tw.printf("  Compliance Score: %s%d/100%s\n", scoreColor(report.ComplianceScore), report.ComplianceScore, colorReset)
	tw.printf("  Issues:           %d\n", len(report.Issues))
	tw.printf("\n")

	if len(report.Issues) == 0 {
		tw.printf("%s%sNo issues found.%s\n", colorBold, colorGreen, colorReset)
		return tw.err
	}

	tw.printf("%s%sIssues (%d)%s\n\n", colorBold, colorCyan, len(report.Issues), colorReset)

	for i, issue := range report.Issues {
		tw.renderIssue(i+1, issue, colorYellow)
		if i < len(report.Issues)-1 {
			tw.printf("\n")
		}
	}

	return tw.err
}

func (tw *textWriter) renderIssue(n int, issue analyzer.Issue, color string) {
	tw.printf("  %s%3d. %s%s", color, n, issue.Category, colorReset)
	if issue.Detail != "" {
		tw.printf(" (%s)", issue.Detail)
	}
	tw.printf("\n")
	tw.printf("       %s\n", truncate(oneLine(issue.Element), maxSnippetWidth))
	if issue.Highlight != "" {
		tw.printf("       %sat %s%s\n", colorDim, issue.Highlight, colorReset)
	}
	tw.printf("       %s→ %s%s\n", colorDim, issue.Suggestion, colorReset)
}

func RenderComparisonText(w io.Writer, result comparator.ComparisonResult) error {
	tw := &textWriter{w: w}
	s := result.Summary

	tw.printf("%s%sSummary%s\n\n", colorBold, colorCyan, colorReset)
	tw.printf("  Score:  %d → %s%d %s (%+d)%s\n", s.OldScore, dirColor(s.Direction), s.NewScore, dirArrow(s.Direction), s.ScoreDelta, colorReset)
	tw.printf("  Issues: %d → %d (%d resolved, %d introduced, %d unchanged)\n",
		s.OldIssues, s.NewIssues, s.Resolved, s.Introduced, s.Unchanged)
	tw.printf("\n")

	if s.Resolved == 0 && s.Introduced == 0 {
		tw.printf("%s%sNo differences in issues.%s\n", colorBold, colorGreen, colorReset)
		return tw.err
	}

	if len(s.Categories) > 0 {
		tw.printf("%s%sBy Category%s\n\n", colorBold, colorCyan, colorReset)
		for _, c := range s.Categories {
			color, arrow := deltaIndicator(c.Old, c.New)
			tw.printf("  %-28s %d → %s%d %s%s\n", c.Category, c.Old, color, c.New, arrow, colorReset)
		}
		tw.printf("\n")
	}

	if len(result.Resolved) > 0 {
		tw.printf("%s%sResolved (%d)%s\n\n", colorBold, colorGreen, len(result.Resolved), colorReset)
		for i, issue := range result.Resolved {
			tw.renderIssue(i+1, issue, colorGreen)
		}
		tw.printf("\n")
	}

	if len(result.Introduced) > 0 {
		tw.printf("%s%sIntroduced (%d)%s\n\n", colorBold, colorRed, len(result.Introduced), colorReset)
		for i, issue := range result.Introduced {
			tw.renderIssue(i+1, issue, colorRed)
		}
		tw.printf("\n")
	}

	tw.renderVerdict(s)

	return tw.err
}

func (tw *textWriter) renderVerdict(s comparator.Summary) {
	switch s.Direction {
	case comparator.Improved:
		tw.printf("%sVerdict: accessibility improved by %d points%s\n", colorGreen, s.ScoreDelta, colorReset)
	case comparator.Regressed:
		tw.printf("%sVerdict: accessibility regressed by %d points%s\n", colorRed, -s.ScoreDelta, colorReset)
	default:
		tw.printf("Verdict: no significant change in score\n")
	}
}

func scoreColor(score int) string {
	switch {
	case score >= 90:
		return colorGreen
	case score >= 50:
		return colorYellow
	default:
		return colorRed
	}
}

// Fewer issues is better, so a drop is green.
func deltaIndicator(oldVal, newVal int) (string, string) {
	switch {
	case newVal > oldVal:
		return colorRed, "↑"
	case newVal < oldVal:
		return colorGreen, "↓"
	default:
		return "", ""
	}
}

func dirColor(d comparator.Direction) string {
	switch d {
	case comparator.Improved:
		return colorGreen
	case comparator.Regressed:
		return colorRed
	default:
		return ""
	}
}

func dirArrow(d comparator.Direction) string {
	switch d {
	case comparator.Improved:
		return "↑"
	case comparator.Regressed:
		return "↓"
	default:
		return ""
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-1]) + "…"
}
