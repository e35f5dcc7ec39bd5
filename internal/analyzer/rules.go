package analyzer

import (
	"fmt"
	"strings"

	"github.com/jacobarthurs/a11yscan/internal/contrast"
	"github.com/jacobarthurs/a11yscan/internal/dom"
	"github.com/jacobarthurs/a11yscan/internal/locator"
)

// Rule is one independent check. Check must not modify the document and
// must return issues in document order.
type Rule struct {
	ID       string
	Category Category
	Check    func(doc *dom.Document) []Issue
}

var suggestions = map[Category]string{
	MissingAlt:          "Add a descriptive alt attribute to the image.",
	SkippedHeading:      "Ensure heading levels follow a logical order.",
	MissingLang:         "Add a lang attribute to the <html> tag for language identification.",
	EmptyLinkOrButton:   "Provide content or aria-label for meaningful interaction.",
	DuplicateID:         "Ensure IDs are unique within the document.",
	MissingFormLabel:    "Add a <label> element with a matching for attribute.",
	MissingAriaRole:     "Add a role attribute to the landmark element.",
	InconsistentAriaRef: "Use aria-labelledby and aria-describedby together so assistive technology gets both the name and the description.",
	LowContrast:         "Increase the contrast between text and background colors to at least 4.5:1.",
}

var defaultRules = []Rule{
	{ID: "missing-alt", Category: MissingAlt, Check: checkMissingAlt},
	{ID: "skipped-heading", Category: SkippedHeading, Check: checkSkippedHeadings},
	{ID: "missing-lang", Category: MissingLang, Check: checkMissingLang},
	{ID: "empty-link-button", Category: EmptyLinkOrButton, Check: checkEmptyLinksOrButtons},
	{ID: "duplicate-id", Category: DuplicateID, Check: checkDuplicateIDs},
	{ID: "missing-form-label", Category: MissingFormLabel, Check: checkFormLabels},
	{ID: "missing-aria-role", Category: MissingAriaRole, Check: checkLandmarkRoles},
	{ID: "inconsistent-aria", Category: InconsistentAriaRef, Check: checkAriaReferences},
	{ID: "low-contrast", Category: LowContrast, Check: checkLowContrast},
}

// DefaultRules returns the canonical rule set in execution order.
func DefaultRules() []Rule {
	rules := make([]Rule, len(defaultRules))
	copy(rules, defaultRules)
	return rules
}

func RuleIDs() []string {
	ids := make([]string, len(defaultRules))
	for i, r := range defaultRules {
		ids[i] = r.ID
	}
	return ids
}

var (
	imgWithoutAlt   = dom.MustCompile("img:not([alt])")
	headings        = dom.MustCompile("h1, h2, h3, h4, h5, h6")
	htmlRoot        = dom.MustCompile("html")
	linksAndButtons = dom.MustCompile("a, button")
	withID          = dom.MustCompile("[id]")
	formControls    = dom.MustCompile("input, textarea, select")
	labelsWithFor   = dom.MustCompile("label[for]")
	landmarksNoRole = dom.MustCompile("header:not([role]), footer:not([role]), main:not([role]), nav:not([role]), aside:not([role])")
	halfAriaPair    = dom.MustCompile("[aria-labelledby]:not([aria-describedby]), [aria-describedby]:not([aria-labelledby])")
	withInlineStyle = dom.MustCompile("[style]")
)

func newIssue(n *dom.Node, category Category, detail string) Issue {
	return Issue{
		Category:   category,
		Element:    n.Render(),
		Suggestion: suggestions[category],
		Detail:     detail,
		Highlight:  locator.Path(n),
	}
}

// An empty alt marks a decorative image and is allowed.
func checkMissingAlt(doc *dom.Document) []Issue {
	var issues []Issue
	for img := range doc.Query(imgWithoutAlt) {
		issues = append(issues, newIssue(img, MissingAlt, ""))
	}
	return issues
}

func checkSkippedHeadings(doc *dom.Document) []Issue {
	var issues []Issue
	lastLevel := 0
	for h := range doc.Query(headings) {
		level := int(h.Tag()[1] - '0')
		if lastLevel > 0 && level > lastLevel+1 {
			detail := fmt.Sprintf("Skipped from h%d to h%d", lastLevel, level)
			issues = append(issues, newIssue(h, SkippedHeading, detail))
		}
		lastLevel = level
	}
	return issues
}

func checkMissingLang(doc *dom.Document) []Issue {
	root := doc.First(htmlRoot)
	if root == nil {
		return nil
	}
	if lang, ok := root.Attr("lang"); ok && strings.TrimSpace(lang) != "" {
		return nil
	}

	// The whole document would be the snippet; report the bare tag instead.
	return []Issue{{
		Category:   MissingLang,
		Element:    "<html>",
		Suggestion: suggestions[MissingLang],
		Highlight:  locator.Path(root),
	}}
}

func checkEmptyLinksOrButtons(doc *dom.Document) []Issue {
	var issues []Issue
	for n := range doc.Query(linksAndButtons) {
		if n.Text() != "" {
			continue
		}
		if label, _ := n.Attr("aria-label"); strings.TrimSpace(label) != "" {
			continue
		}
		issues = append(issues, newIssue(n, EmptyLinkOrButton, ""))
	}
	return issues
}

func checkDuplicateIDs(doc *dom.Document) []Issue {
	var issues []Issue
	seen := make(map[string]bool)
	for n := range doc.Query(withID) {
		id, _ := n.Attr("id")
		if seen[id] {
			issues = append(issues, newIssue(n, DuplicateID, fmt.Sprintf("id %q is already used", id)))
			continue
		}
		seen[id] = true
	}
	return issues
}

// Labels may sit anywhere in the document, not only around the control.
func checkFormLabels(doc *dom.Document) []Issue {
	labelled := make(map[string]bool)
	for label := range doc.Query(labelsWithFor) {
		forID, _ := label.Attr("for")
		labelled[forID] = true
	}

	var issues []Issue
	for n := range doc.Query(formControls) {
		if n.Tag() == "input" {
			if typ, _ := n.Attr("type"); strings.EqualFold(strings.TrimSpace(typ), "hidden") {
				continue
			}
		}
		id, _ := n.Attr("id")
		if id == "" || !labelled[id] {
			issues = append(issues, newIssue(n, MissingFormLabel, ""))
		}
	}
	return issues
}

func checkLandmarkRoles(doc *dom.Document) []Issue {
	var issues []Issue
	for n := range doc.Query(landmarksNoRole) {
		issues = append(issues, newIssue(n, MissingAriaRole, ""))
	}
	return issues
}

func checkAriaReferences(doc *dom.Document) []Issue {
	var issues []Issue
	for n := range doc.Query(halfAriaPair) {
		missing := "aria-describedby"
		if n.HasAttr("aria-describedby") {
			missing = "aria-labelledby"
		}
		issues = append(issues, newIssue(n, InconsistentAriaRef, "Missing "+missing))
	}
	return issues
}

// Only the element's own inline style is considered; there is no cascade.
func checkLowContrast(doc *dom.Document) []Issue {
	var issues []Issue
	for n := range doc.Query(withInlineStyle) {
		style, _ := n.Attr("style")
		text, background, ok := contrast.InlineColors(style)
		if !ok || !contrast.IsLowContrast(text, background) {
			continue
		}
		detail := fmt.Sprintf("Contrast ratio %.2f:1 between %s and %s (minimum %.1f:1)",
			contrast.Ratio(text, background), text, background, contrast.MinimumRatio)
		issues = append(issues, newIssue(n, LowContrast, detail))
	}
	return issues
}
