package output

import (
	"encoding/json"
	"io"
)

// RenderJSON writes v as indented JSON. Markup in issue snippets is left
// unescaped so it stays readable on a terminal.
func RenderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
