package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jacobarthurs/a11yscan/internal/analyzer"
)

func RenderMarkdown(w io.Writer, report analyzer.Report) error {
	tw := &textWriter{w: w}

	tw.printf("# Accessibility Report\n\n")
	tw.printf("**Compliance score:** %d/100\n\n", report.ComplianceScore)

	if len(report.Issues) == 0 {
		tw.printf("No issues found.\n")
		return tw.err
	}

	counts := report.CountByCategory()
	tw.printf("| Issue type | Count |\n")
	tw.printf("| --- | ---: |\n")
	for _, rule := range analyzer.DefaultRules() {
		if n := counts[rule.Category]; n > 0 {
			tw.printf("| %s | %d |\n", rule.Category, n)
		}
	}
	tw.printf("\n## Issues (%d)\n", len(report.Issues))

	for i, issue := range report.Issues {
		tw.printf("\n### %d. %s\n\n", i+1, issue.Category)
		if issue.Detail != "" {
			tw.printf("%s\n\n", escapeMarkdown(issue.Detail))
		}
		if issue.Highlight != "" {
			tw.printf("Location: `%s`\n\n", issue.Highlight)
		}
		fence := codeFence(issue.Element)
		tw.printf("%shtml\n%s\n%s\n\n", fence, issue.Element, fence)
		tw.printf("> %s\n", escapeMarkdown(issue.Suggestion))
	}

	return tw.err
}

// codeFence returns a backtick fence longer than any backtick run in s.
func codeFence(s string) string {
	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return strings.Repeat("`", max(3, longest+1))
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"<", `\<`,
	">", `\>`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"|", `\|`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// Markdown renders report to a string.
func Markdown(report analyzer.Report) (string, error) {
	var b strings.Builder
	if err := RenderMarkdown(&b, report); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return b.String(), nil
}
