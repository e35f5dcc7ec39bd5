package locator

import (
	"strconv"
	"strings"

	"github.com/jacobarthurs/a11yscan/internal/dom"
)

// Path returns an absolute, 1-indexed positional path such as
// /html[1]/body[1]/div[2]/p[3]. Each step counts only preceding siblings
// with the same tag name, so the path ignores attributes and survives
// attribute edits but not structural ones.
func Path(n *dom.Node) string {
	if n == nil {
		return ""
	}

	var steps []string
	for cur := n; cur != nil; cur = cur.Parent() {
		steps = append(steps, cur.Tag()+"["+strconv.Itoa(ordinal(cur))+"]")
	}

	var b strings.Builder
	for i := len(steps) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(steps[i])
	}
	return b.String()
}

func ordinal(n *dom.Node) int {
	pos := 1
	for s := n.PrevSibling(); s != nil; s = s.PrevSibling() {
		if s.Tag() == n.Tag() {
			pos++
		}
	}
	return pos
}
