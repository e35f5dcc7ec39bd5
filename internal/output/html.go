package output

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/jacobarthurs/a11yscan/internal/analyzer"
)

var (
	markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.GFM))
	htmlPolicy       = bluemonday.UGCPolicy()
)

const pageHeader = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 60rem; margin: 2rem auto; padding: 0 1rem; color: #1a1a1a; }
pre { background: #f4f4f4; padding: 0.75rem; overflow-x: auto; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.25rem 0.75rem; }
blockquote { border-left: 4px solid #0b5fff; margin-left: 0; padding-left: 1rem; }
</style>
</head>
<body>
<main>
`

const pageFooter = `</main>
</body>
</html>
`

// RenderHTML writes report as a standalone page. Markup quoted from the
// analyzed document is sanitized and never rendered live.
func RenderHTML(w io.Writer, report analyzer.Report) error {
	md, err := Markdown(report)
	if err != nil {
		return err
	}

	var body bytes.Buffer
	if err := markdownRenderer.Convert([]byte(md), &body); err != nil {
		return fmt.Errorf("converting markdown: %w", err)
	}

	tw := &textWriter{w: w}
	tw.printf(pageHeader, html.EscapeString("Accessibility Report"))
	if tw.err == nil {
		_, tw.err = w.Write(htmlPolicy.SanitizeBytes(body.Bytes()))
	}
	tw.printf("%s", pageFooter)
	return tw.err
}
