package analyzer

type Category string

const (
	MissingAlt          Category = "Missing Alt Attribute"
	SkippedHeading      Category = "Skipped Heading Level"
	MissingLang         Category = "Missing Lang Attribute"
	EmptyLinkOrButton   Category = "Empty Link or Button"
	DuplicateID         Category = "Duplicate ID"
	MissingFormLabel    Category = "Missing Form Label"
	MissingAriaRole     Category = "Missing ARIA Role"
	InconsistentAriaRef Category = "Inconsistent ARIA Reference"
	LowContrast         Category = "Low Contrast"
)

func (c Category) String() string {
	return string(c)
}

// Issue is one finding. Category, Element and Suggestion are always set.
type Issue struct {
	Category   Category `json:"type"`
	Element    string   `json:"element"`
	Suggestion string   `json:"suggestion"`
	Detail     string   `json:"details,omitempty"`
	Highlight  string   `json:"highlight,omitempty"`
}

// Report issues are ordered by rule, then by document position.
type Report struct {
	ComplianceScore int     `json:"compliance_score"`
	Issues          []Issue `json:"issues"`
}

// CountByCategory returns issue counts keyed by category.
func (r Report) CountByCategory() map[Category]int {
	counts := make(map[Category]int)
	for _, issue := range r.Issues {
		counts[issue.Category]++
	}
	return counts
}
