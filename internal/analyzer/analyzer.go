package analyzer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jacobarthurs/a11yscan/internal/dom"
)

// DefaultPenaltyPerIssue is the number of points each issue deducts from a
// perfect score of 100.
const DefaultPenaltyPerIssue = 2

const maxScore = 100

type Analyzer struct {
	PenaltyPerIssue int
	Rules           []Rule
}

// New builds an analyzer running every default rule except the disabled
// ones, keeping execution order.
func New(penaltyPerIssue int, disabled []string) (*Analyzer, error) {
	if penaltyPerIssue < 0 {
		return nil, fmt.Errorf("penalty per issue must not be negative, got %d", penaltyPerIssue)
	}

	skip := make(map[string]bool, len(disabled))
	for _, id := range disabled {
		if !isRuleID(id) {
			return nil, fmt.Errorf("unknown rule %q: must be one of %s", id, strings.Join(RuleIDs(), ", "))
		}
		skip[id] = true
	}

	var rules []Rule
	for _, r := range defaultRules {
		if !skip[r.ID] {
			rules = append(rules, r)
		}
	}

	return &Analyzer{PenaltyPerIssue: penaltyPerIssue, Rules: rules}, nil
}

// Analyze runs the default rule set with the default penalty.
func Analyze(markup string) Report {
	a := &Analyzer{PenaltyPerIssue: DefaultPenaltyPerIssue, Rules: defaultRules}
	return a.Analyze(markup)
}

func (a *Analyzer) Analyze(markup string) Report {
	doc := dom.Parse(markup)

	issues := []Issue{}
	for _, rule := range a.Rules {
		issues = append(issues, rule.Check(doc)...)
	}

	return Report{
		ComplianceScore: Score(len(issues), a.PenaltyPerIssue),
		Issues:          issues,
	}
}

// Fingerprint identifies the analyzer's configuration. Two analyzers with
// equal fingerprints produce equal reports for equal markup.
func (a *Analyzer) Fingerprint() string {
	ids := make([]string, len(a.Rules))
	for i, r := range a.Rules {
		ids[i] = r.ID
	}
	return "p" + strconv.Itoa(a.PenaltyPerIssue) + ":" + strings.Join(ids, ",")
}

// Score clamps 100 - issueCount*penalty to [0, 100].
func Score(issueCount, penaltyPerIssue int) int {
	if penaltyPerIssue > 0 && issueCount > maxScore/penaltyPerIssue {
		return 0
	}
	score := maxScore - issueCount*penaltyPerIssue
	return max(0, min(maxScore, score))
}

func isRuleID(id string) bool {
	for _, r := range defaultRules {
		if r.ID == id {
			return true
		}
	}
	return false
}
