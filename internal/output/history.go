package output

import (
	"io"

	"github.com/jacobarthurs/a11yscan/internal/store"
)

func RenderHistoryText(w io.Writer, records []store.Record) error {
	tw := &textWriter{w: w}

	if len(records) == 0 {
		tw.printf("No saved reports.\n")
		return tw.err
	}

	tw.printf("%s%s%-6s  %-16s  %5s  %6s  %s%s\n", colorBold, colorCyan, "ID", "Saved", "Score", "Issues", "Source", colorReset)
	for _, r := range records {
		tw.printf("%-6d  %-16s  %s%5d%s  %6d  %s\n",
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			scoreColor(r.ComplianceScore), r.ComplianceScore, colorReset,
			r.IssueCount,
			truncate(r.Source, 60),
		)
	}
	return tw.err
}
