package team

import "context"

// Directory resolves teams by either identifier form.
type Directory interface {
	List(ctx context.Context) ([]Team, error)
	GetByID(ctx context.Context, teamID int64) (Team, bool, error)
	GetByAbbreviation(ctx context.Context, abbr string) (Team, bool, error)
}

// Selection is the team reports were last produced for.
type Selection struct {
	Abbreviation string
	FullName     string
}

// SelectionStore remembers the last selection across runs.
type SelectionStore interface {
	LastSelection(ctx context.Context) (Selection, error)
	Remember(ctx context.Context, sel Selection) error
}
