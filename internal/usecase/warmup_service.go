package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/team-gamelog/internal/domain/team"
	"github.com/riskibarqy/team-gamelog/internal/platform/logging"
)

// WarmupAllTeams in the team list warms every team in the directory.
const WarmupAllTeams = "ALL"

type WarmupServiceConfig struct {
	Teams   *TeamService
	Fetcher *GameLogFetcher
	Options FetchOptions
	// Abbreviations to warm. Empty warms the last selected team.
	Abbreviations []string
	Workers       int
	Logger        *logging.Logger
}

type WarmupResult struct {
	Teams     int   `json:"teams"`
	Succeeded int   `json:"succeeded"`
	Failed    int   `json:"failed"`
	Duration  int64 `json:"duration_ms"`
}

// WarmupService pre-fetches game logs so the file cache is populated before requests
// arrive. It is advisory: failures are logged and never surfaced to callers, and it only
// shares the file cache with foreground fetches.
type WarmupService struct {
	teams   *TeamService
	fetcher *GameLogFetcher
	opts    FetchOptions
	abbrs   []string
	workers int
	logger  *logging.Logger

	once sync.Once
	done chan struct{}
}

func NewWarmupService(cfg WarmupServiceConfig) *WarmupService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	abbrs := make([]string, 0, len(cfg.Abbreviations))
	for _, abbr := range cfg.Abbreviations {
		if abbr = strings.ToUpper(strings.TrimSpace(abbr)); abbr != "" {
			abbrs = append(abbrs, abbr)
		}
	}

	return &WarmupService{
		teams:   cfg.Teams,
		fetcher: cfg.Fetcher,
		opts:    cfg.Options,
		abbrs:   abbrs,
		workers: workers,
		logger:  logger.Named("warmup"),
		done:    make(chan struct{}),
	}
}

// Start runs the warm-up once in a background goroutine. Later calls are no-ops.
func (s *WarmupService) Start(ctx context.Context) {
	s.once.Do(func() {
		go func() {
			defer close(s.done)
			result, err := s.Run(ctx)
			if err != nil {
				s.logger.WarnContext(ctx, "cache warm-up aborted", "error", err)
				return
			}
			s.logger.InfoContext(ctx, "cache warm-up finished",
				"teams", result.Teams,
				"succeeded", result.Succeeded,
				"failed", result.Failed,
				"duration_ms", result.Duration,
			)
		}()
	})
}

// Done is closed once a started warm-up returns.
func (s *WarmupService) Done() <-chan struct{} {
	return s.done
}

// Run fetches every configured team through a bounded worker pool.
func (s *WarmupService) Run(ctx context.Context) (WarmupResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WarmupService.Run")
	defer span.End()

	start := time.Now()
	targets, err := s.targets(ctx)
	if err != nil {
		return WarmupResult{}, err
	}
	result := WarmupResult{Teams: len(targets)}
	if len(targets) == 0 {
		return result, nil
	}

	pool, err := ants.NewPool(minInt(s.workers, len(targets)))
	if err != nil {
		return WarmupResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var succeeded atomic.Int32
	var failed atomic.Int32
	var workers sync.WaitGroup
	for _, item := range targets {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			if _, err := s.fetcher.Fetch(ctx, item.ID, s.opts); err != nil {
				failed.Add(1)
				s.logger.WarnContext(ctx, "warm-up fetch failed", "team", item.Abbreviation, "error", err)
				return
			}
			succeeded.Add(1)
		}); err != nil {
			workers.Done()
			failed.Add(1)
			s.logger.WarnContext(ctx, "submit warm-up task failed", "team", item.Abbreviation, "error", err)
		}
	}
	workers.Wait()

	result.Succeeded = int(succeeded.Load())
	result.Failed = int(failed.Load())
	result.Duration = time.Since(start).Milliseconds()
	return result, nil
}

func (s *WarmupService) targets(ctx context.Context) ([]team.Team, error) {
	abbrs := s.abbrs
	if len(abbrs) == 1 && abbrs[0] == WarmupAllTeams {
		return s.teams.List(ctx)
	}
	if len(abbrs) == 0 {
		sel, _ := s.teams.LastSelection(ctx)
		if sel.Abbreviation == "" {
			return nil, nil
		}
		abbrs = []string{sel.Abbreviation}
	}

	out := make([]team.Team, 0, len(abbrs))
	for _, abbr := range abbrs {
		item, err := s.teams.Resolve(ctx, abbr)
		if err != nil {
			s.logger.WarnContext(ctx, "skip unknown warm-up team", "team", abbr, "error", err)
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
