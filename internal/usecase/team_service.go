package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/team-gamelog/internal/domain/team"
	"github.com/riskibarqy/team-gamelog/internal/platform/logging"
)

type TeamService struct {
	directory team.Directory
	selection team.SelectionStore
	logger    *logging.Logger
}

func NewTeamService(directory team.Directory, selection team.SelectionStore, logger *logging.Logger) *TeamService {
	if logger == nil {
		logger = logging.Default()
	}
	return &TeamService{directory: directory, selection: selection, logger: logger}
}

// List returns every team sorted by full name.
func (s *TeamService) List(ctx context.Context) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.List")
	defer span.End()

	items, err := s.directory.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list teams: %v", ErrDependencyUnavailable, err)
	}
	return items, nil
}

// Resolve finds a team by abbreviation, case-insensitively. An empty abbreviation
// resolves the last remembered selection.
func (s *TeamService) Resolve(ctx context.Context, abbr string) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.Resolve")
	defer span.End()

	abbr = strings.ToUpper(strings.TrimSpace(abbr))
	if abbr == "" {
		sel, err := s.LastSelection(ctx)
		if err != nil {
			return team.Team{}, err
		}
		abbr = sel.Abbreviation
	}
	if abbr == "" {
		return team.Team{}, fmt.Errorf("%w: team abbreviation is required", ErrInvalidInput)
	}

	item, ok, err := s.directory.GetByAbbreviation(ctx, abbr)
	if err != nil {
		return team.Team{}, fmt.Errorf("%w: lookup team %s: %v", ErrDependencyUnavailable, abbr, err)
	}
	if !ok {
		return team.Team{}, fmt.Errorf("%w: team=%s", ErrTeamNotFound, abbr)
	}
	return item, nil
}

// LastSelection reads the remembered team. Store errors fall back to the configured default.
func (s *TeamService) LastSelection(ctx context.Context) (team.Selection, error) {
	if s.selection == nil {
		return team.Selection{}, nil
	}
	sel, err := s.selection.LastSelection(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "read last team selection failed", "error", err)
	}
	return sel, nil
}

// Remember persists the selection. Failures are logged, never returned.
func (s *TeamService) Remember(ctx context.Context, item team.Team) {
	if s.selection == nil {
		return
	}
	sel := team.Selection{Abbreviation: item.Abbreviation, FullName: item.FullName}
	if err := s.selection.Remember(ctx, sel); err != nil {
		s.logger.WarnContext(ctx, "remember team selection failed", "team", item.Abbreviation, "error", err)
	}
}
