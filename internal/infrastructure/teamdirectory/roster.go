// Package teamdirectory serves the team roster from YAML, either embedded or from a file.
package teamdirectory

import (
	"context"
	_ "embed"
	"os"
	"sort"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/team-gamelog/internal/domain/team"
	"gopkg.in/yaml.v3"
)

//go:embed teams.yaml
var embeddedRoster []byte

type rosterFile struct {
	Teams []team.Team `yaml:"teams"`
}

// ParseRoster decodes and validates a roster document. Teams come back sorted by full name.
func ParseRoster(raw []byte) ([]team.Team, error) {
	var doc rosterFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, crerr.Wrap(err, "decode roster yaml")
	}
	if len(doc.Teams) == 0 {
		return nil, crerr.New("roster has no teams")
	}

	seenID := make(map[int64]struct{}, len(doc.Teams))
	seenAbbr := make(map[string]struct{}, len(doc.Teams))
	out := make([]team.Team, 0, len(doc.Teams))
	for _, item := range doc.Teams {
		item.Abbreviation = strings.ToUpper(strings.TrimSpace(item.Abbreviation))
		item.FullName = strings.TrimSpace(item.FullName)
		if err := item.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seenID[item.ID]; dup {
			return nil, crerr.Newf("duplicate team id %d", item.ID)
		}
		if _, dup := seenAbbr[item.Abbreviation]; dup {
			return nil, crerr.Newf("duplicate team abbreviation %s", item.Abbreviation)
		}
		seenID[item.ID] = struct{}{}
		seenAbbr[item.Abbreviation] = struct{}{}
		out = append(out, item)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

// Roster is a team.Directory over a fixed or file-backed list. Files are re-read on
// every call; wrap it in a CachedDirectory to memoize.
type Roster struct {
	path string
}

// NewRoster reads path when set and falls back to the embedded league roster otherwise.
func NewRoster(path string) *Roster {
	return &Roster{path: strings.TrimSpace(path)}
}

func (r *Roster) List(_ context.Context) ([]team.Team, error) {
	if r.path == "" {
		return ParseRoster(embeddedRoster)
	}

	raw, err := os.ReadFile(r.path)
	if err != nil {
		return nil, crerr.Wrapf(err, "read roster %s", r.path)
	}
	return ParseRoster(raw)
}

func (r *Roster) GetByID(ctx context.Context, teamID int64) (team.Team, bool, error) {
	items, err := r.List(ctx)
	if err != nil {
		return team.Team{}, false, err
	}
	return findByID(items, teamID)
}

func (r *Roster) GetByAbbreviation(ctx context.Context, abbr string) (team.Team, bool, error) {
	items, err := r.List(ctx)
	if err != nil {
		return team.Team{}, false, err
	}
	return findByAbbreviation(items, abbr)
}

func findByID(items []team.Team, teamID int64) (team.Team, bool, error) {
	for _, item := range items {
		if item.ID == teamID {
			return item, true, nil
		}
	}
	return team.Team{}, false, nil
}

func findByAbbreviation(items []team.Team, abbr string) (team.Team, bool, error) {
	abbr = strings.ToUpper(strings.TrimSpace(abbr))
	for _, item := range items {
		if item.Abbreviation == abbr {
			return item, true, nil
		}
	}
	return team.Team{}, false, nil
}
