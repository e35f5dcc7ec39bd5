package comparator

import (
	"github.com/jacobarthurs/a11yscan/internal/analyzer"
)

// Comparator diffs two reports of the same page. Score changes of at most
// Threshold points count as unchanged.
type Comparator struct {
	Threshold int
}

// issueKey ignores the locator so issues survive unrelated structural edits.
type issueKey struct {
	category analyzer.Category
	element  string
}

func keyOf(issue analyzer.Issue) issueKey {
	return issueKey{category: issue.Category, element: issue.Element}
}

func (c *Comparator) Compare(old, new analyzer.Report) ComparisonResult {
	remaining := make(map[issueKey]int)
	for _, issue := range old.Issues {
		remaining[keyOf(issue)]++
	}

	result := ComparisonResult{
		Resolved:   []analyzer.Issue{},
		Introduced: []analyzer.Issue{},
	}

	unchanged := 0
	for _, issue := range new.Issues {
		k := keyOf(issue)
		if remaining[k] > 0 {
			remaining[k]--
			unchanged++
			continue
		}
		result.Introduced = append(result.Introduced, issue)
	}

	// Walk old issues in order so Resolved keeps rule and document order.
	for _, issue := range old.Issues {
		k := keyOf(issue)
		if remaining[k] > 0 {
			remaining[k]--
			result.Resolved = append(result.Resolved, issue)
		}
	}

	result.Summary = Summary{
		OldScore:   old.ComplianceScore,
		NewScore:   new.ComplianceScore,
		ScoreDelta: new.ComplianceScore - old.ComplianceScore,
		Direction:  c.direction(old.ComplianceScore, new.ComplianceScore),
		OldIssues:  len(old.Issues),
		NewIssues:  len(new.Issues),
		Resolved:   len(result.Resolved),
		Introduced: len(result.Introduced),
		Unchanged:  unchanged,
		Categories: categoryDeltas(old, new),
	}

	return result
}

func (c *Comparator) direction(oldScore, newScore int) Direction {
	delta := newScore - oldScore
	switch {
	case delta > c.Threshold:
		return Improved
	case -delta > c.Threshold:
		return Regressed
	default:
		return Unchanged
	}
}

func categoryDeltas(old, new analyzer.Report) []CategoryDelta {
	oldCounts := old.CountByCategory()
	newCounts := new.CountByCategory()

	deltas := []CategoryDelta{}
	for _, rule := range analyzer.DefaultRules() {
		o, n := oldCounts[rule.Category], newCounts[rule.Category]
		if o == 0 && n == 0 {
			continue
		}
		deltas = append(deltas, CategoryDelta{Category: rule.Category, Old: o, New: n})
	}
	return deltas
}
