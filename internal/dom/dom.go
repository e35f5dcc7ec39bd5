package dom

import (
	"fmt"
	"iter"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Document is a parsed HTML tree. It is never nil after Parse and is not
// modified by any of its accessors.
type Document struct {
	root *html.Node
}

// Node is an element in a Document.
type Node struct {
	n *html.Node
}

// Selector is a compiled CSS selector group.
type Selector struct {
	text string
	sel  cascadia.SelectorGroup
}

// Parse builds a Document from markup, recovering from malformed input the
// way browsers do. It never fails: if the tokenizer gives up, the result is
// an empty document.
func Parse(markup string) *Document {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		root = &html.Node{Type: html.DocumentNode}
	}
	return &Document{root: root}
}

func Compile(selector string) (Selector, error) {
	sel, err := cascadia.ParseGroup(selector)
	if err != nil {
		return Selector{}, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	return Selector{text: selector, sel: sel}, nil
}

// MustCompile is Compile for selectors known at init time.
func MustCompile(selector string) Selector {
	s, err := Compile(selector)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Selector) String() string {
	return s.text
}

// Query yields matching elements in document order. The sequence is lazy and
// may be ranged over more than once.
func (d *Document) Query(s Selector) iter.Seq[*Node] {
	return queryFrom(d.root, s)
}

// First returns the first element matching s, or nil.
func (d *Document) First(s Selector) *Node {
	for n := range d.Query(s) {
		return n
	}
	return nil
}

// Query yields matching descendants of n, excluding n itself.
func (n *Node) Query(s Selector) iter.Seq[*Node] {
	return queryFrom(n.n, s)
}

func queryFrom(root *html.Node, s Selector) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		if s.sel == nil {
			return
		}
		var walk func(*html.Node) bool
		walk = func(p *html.Node) bool {
			for c := p.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && s.sel.Match(c) {
					if !yield(&Node{n: c}) {
						return false
					}
				}
				if !walk(c) {
					return false
				}
			}
			return true
		}
		walk(root)
	}
}

func (n *Node) Tag() string {
	return n.n.Data
}

// Attr returns the attribute value and whether the attribute is present.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func (n *Node) HasAttr(key string) bool {
	_, ok := n.Attr(key)
	return ok
}

// Text returns the concatenated text of the subtree, trimmed.
func (n *Node) Text() string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(p *html.Node) {
		if p.Type == html.TextNode {
			b.WriteString(p.Data)
		}
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n.n)
	return strings.TrimSpace(b.String())
}

// Render serializes the element and its subtree back to markup.
func (n *Node) Render() string {
	var b strings.Builder
	if err := html.Render(&b, n.n); err != nil {
		return "<" + n.n.Data + ">"
	}
	return b.String()
}

// Parent returns the parent element, or nil at the top of the tree.
func (n *Node) Parent() *Node {
	if p := n.n.Parent; p != nil && p.Type == html.ElementNode {
		return &Node{n: p}
	}
	return nil
}

// PrevSibling returns the closest preceding sibling element, skipping text
// and comment nodes.
func (n *Node) PrevSibling() *Node {
	for s := n.n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			return &Node{n: s}
		}
	}
	return nil
}

// Ancestors yields parent elements from the closest outward.
func (n *Node) Ancestors() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for p := n.Parent(); p != nil; p = p.Parent() {
			if !yield(p) {
				return
			}
		}
	}
}
