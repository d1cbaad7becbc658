package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/riskibarqy/team-gamelog/internal/domain/gamelog"
	"github.com/riskibarqy/team-gamelog/internal/domain/team"
	"github.com/riskibarqy/team-gamelog/internal/platform/id"
	"github.com/riskibarqy/team-gamelog/internal/platform/logging"
	"github.com/riskibarqy/team-gamelog/internal/platform/tabular"
	"go.opentelemetry.io/otel/attribute"
)

const defaultRollingWindow = 5

// Report is the outcome of one report run.
type Report struct {
	RunID       string
	Team        team.Team
	Summary     gamelog.Summary
	Games       int
	FirstGame   time.Time
	LastGame    time.Time
	SummaryPath string
	GamesPath   string
	GeneratedAt time.Time
}

type ReportServiceConfig struct {
	Teams    *TeamService
	Fetcher  *GameLogFetcher
	Options  FetchOptions
	DataDir  string
	IDs      id.Generator
	Logger   *logging.Logger
	Now      func() time.Time
	Remember bool
}

// ReportService fetches a team's log, summarizes it and writes the summary and game files.
type ReportService struct {
	teams    *TeamService
	fetcher  *GameLogFetcher
	opts     FetchOptions
	dataDir  string
	ids      id.Generator
	logger   *logging.Logger
	now      func() time.Time
	remember bool
}

func NewReportService(cfg ReportServiceConfig) *ReportService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	ids := cfg.IDs
	if ids == nil {
		ids = id.NewRunIDGenerator("run")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &ReportService{
		teams:    cfg.Teams,
		fetcher:  cfg.Fetcher,
		opts:     cfg.Options,
		dataDir:  strings.TrimSpace(cfg.DataDir),
		ids:      ids,
		logger:   logger,
		now:      now,
		remember: cfg.Remember,
	}
}

// Options returns the fetch options used by report runs.
func (s *ReportService) Options() FetchOptions {
	return s.opts
}

// GameLog resolves the team and fetches its log without writing outputs.
func (s *ReportService) GameLog(ctx context.Context, abbr string) (team.Team, gamelog.GameLog, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReportService.GameLog")
	defer span.End()

	item, err := s.teams.Resolve(ctx, abbr)
	if err != nil {
		return team.Team{}, gamelog.GameLog{}, err
	}
	log, err := s.fetcher.Fetch(ctx, item.ID, s.opts)
	if err != nil {
		return item, gamelog.GameLog{}, fmt.Errorf("%w: fetch game log team=%s: %w", ErrDependencyUnavailable, item.Abbreviation, err)
	}
	return item, log, nil
}

// Summary computes summary metrics for the team without writing outputs.
func (s *ReportService) Summary(ctx context.Context, abbr string) (team.Team, gamelog.Summary, error) {
	item, log, err := s.GameLog(ctx, abbr)
	if err != nil {
		return item, gamelog.Summary{}, err
	}
	return item, gamelog.Summarize(log), nil
}

// Rolling returns the trailing points average for the team.
func (s *ReportService) Rolling(ctx context.Context, abbr string, window int) ([]gamelog.RollingPoint, error) {
	if window <= 0 {
		window = defaultRollingWindow
	}
	_, log, err := s.GameLog(ctx, abbr)
	if err != nil {
		return nil, err
	}
	return gamelog.RollingPoints(log, window), nil
}

// Run produces the summary and game files for a team.
func (s *ReportService) Run(ctx context.Context, abbr string) (Report, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReportService.Run")
	defer span.End()

	runID, err := s.ids.NewID()
	if err != nil {
		return Report{}, fmt.Errorf("generate run id: %w", err)
	}
	span.SetAttributes(attribute.String("report.run_id", runID))

	item, log, err := s.GameLog(ctx, abbr)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		RunID:       runID,
		Team:        item,
		Summary:     gamelog.Summarize(log),
		Games:       log.Len(),
		GeneratedAt: s.now().UTC(),
	}
	if log.Len() > 0 {
		report.FirstGame = log.Record(0).GameDate
		report.LastGame = log.Record(log.Len() - 1).GameDate
	}

	if s.dataDir != "" {
		if err := s.writeOutputs(item, log, &report); err != nil {
			return Report{}, err
		}
	}

	if s.remember {
		s.teams.Remember(ctx, item)
	}

	s.logger.InfoContext(ctx, "report run completed",
		"run_id", runID,
		"team", item.Abbreviation,
		"games", report.Games,
		"wins", report.Summary.Wins,
		"losses", report.Summary.Losses,
	)
	return report, nil
}

func (s *ReportService) writeOutputs(item team.Team, log gamelog.GameLog, report *Report) error {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	summaryRaw, err := tabular.EncodeSummary(report.Summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	gamesRaw, err := tabular.EncodeGameLog(log)
	if err != nil {
		return fmt.Errorf("encode games: %w", err)
	}

	report.SummaryPath = filepath.Join(s.dataDir, item.Abbreviation+"_summary.csv")
	report.GamesPath = filepath.Join(s.dataDir, item.Abbreviation+"_games.csv")
	if err := writeFileAtomic(report.SummaryPath, summaryRaw); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	if err := writeFileAtomic(report.GamesPath, gamesRaw); err != nil {
		return fmt.Errorf("write games: %w", err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
