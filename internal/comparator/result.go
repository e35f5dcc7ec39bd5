package comparator

import "github.com/jacobarthurs/a11yscan/internal/analyzer"

type Direction int

const (
	Unchanged Direction = 0
	Improved  Direction = 1
	Regressed Direction = 2
)

func (d Direction) String() string {
	switch d {
	case Improved:
		return "improved"
	case Regressed:
		return "regressed"
	default:
		return "unchanged"
	}
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type CategoryDelta struct {
	Category analyzer.Category `json:"type"`
	Old      int               `json:"old"`
	New      int               `json:"new"`
}

type Summary struct {
	OldScore   int       `json:"old_score"`
	NewScore   int       `json:"new_score"`
	ScoreDelta int       `json:"score_delta"`
	Direction  Direction `json:"direction"`

	OldIssues  int `json:"old_issues"`
	NewIssues  int `json:"new_issues"`
	Resolved   int `json:"resolved"`
	Introduced int `json:"introduced"`
	Unchanged  int `json:"unchanged"`

	Categories []CategoryDelta `json:"categories"`
}

type ComparisonResult struct {
	Summary    Summary          `json:"summary"`
	Resolved   []analyzer.Issue `json:"resolved"`
	Introduced []analyzer.Issue `json:"introduced"`
}
