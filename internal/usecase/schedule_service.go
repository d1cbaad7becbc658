package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/team-gamelog/internal/platform/logging"
	"github.com/robfig/cron/v3"
	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"
)

const defaultScheduledRunTimeout = 10 * time.Minute

// RosterInvalidator drops a memoized roster so the next lookup re-reads it.
type RosterInvalidator interface {
	Invalidate(ctx context.Context)
}

type ScheduleServiceConfig struct {
	Reports *ReportService
	Teams   *TeamService
	// Roster, when set, is invalidated before every scheduled run.
	Roster RosterInvalidator
	// Spec is a standard five-field cron expression.
	Spec          string
	Abbreviations []string
	Workers       int
	RunTimeout    time.Duration
	Location      *time.Location
	Logger        *logging.Logger
}

type ScheduledRun struct {
	Team   string `json:"team"`
	RunID  string `json:"run_id,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ScheduleService produces reports on a cron schedule.
type ScheduleService struct {
	reports *ReportService
	teams   *TeamService
	roster  RosterInvalidator
	spec    string
	abbrs   []string
	workers int
	timeout time.Duration
	logger  *logging.Logger
	cron    *cron.Cron

	mu      sync.Mutex
	started bool
}

func NewScheduleService(cfg ScheduleServiceConfig) (*ScheduleService, error) {
	spec := strings.TrimSpace(cfg.Spec)
	if spec == "" {
		return nil, fmt.Errorf("%w: schedule cron expression is required", ErrInvalidInput)
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("%w: parse schedule %q: %v", ErrInvalidInput, spec, err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 2
	}
	timeout := cfg.RunTimeout
	if timeout <= 0 {
		timeout = defaultScheduledRunTimeout
	}
	location := cfg.Location
	if location == nil {
		location = time.UTC
	}
	abbrs := make([]string, 0, len(cfg.Abbreviations))
	for _, abbr := range cfg.Abbreviations {
		if abbr = strings.ToUpper(strings.TrimSpace(abbr)); abbr != "" {
			abbrs = append(abbrs, abbr)
		}
	}

	return &ScheduleService{
		reports: cfg.Reports,
		teams:   cfg.Teams,
		roster:  cfg.Roster,
		spec:    spec,
		abbrs:   abbrs,
		workers: workers,
		timeout: timeout,
		logger:  logger.Named("schedule"),
		cron:    cron.New(cron.WithLocation(location)),
	}, nil
}

// Start registers the job and starts the scheduler. Scheduled runs derive from ctx
// values but not its cancellation; call Stop to end them.
func (s *ScheduleService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}

	base := context.WithoutCancel(ctx)
	if _, err := s.cron.AddFunc(s.spec, func() {
		runCtx, cancel := context.WithTimeout(base, s.timeout)
		defer cancel()
		s.RunOnce(runCtx)
	}); err != nil {
		return fmt.Errorf("register schedule: %w", err)
	}
	s.cron.Start()
	s.started = true
	s.logger.InfoContext(ctx, "report scheduler started", "spec", s.spec, "teams", strings.Join(s.abbrs, ","))
	return nil
}

// Stop halts the scheduler. The returned context is done once running jobs finish.
func (s *ScheduleService) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce runs a report for every scheduled team. A panicking run is reported as failed.
func (s *ScheduleService) RunOnce(ctx context.Context) []ScheduledRun {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.RunOnce")
	defer span.End()

	if s.roster != nil {
		s.roster.Invalidate(ctx)
	}

	abbrs := s.abbrs
	if len(abbrs) == 0 {
		sel, _ := s.teams.LastSelection(ctx)
		if sel.Abbreviation == "" {
			s.logger.WarnContext(ctx, "scheduled run skipped: no team configured")
			return nil
		}
		abbrs = []string{sel.Abbreviation}
	}

	results := make([]ScheduledRun, len(abbrs))
	p := pool.New().WithMaxGoroutines(s.workers)
	for i, abbr := range abbrs {
		i, abbr := i, abbr
		p.Go(func() {
			results[i] = s.runTeam(ctx, abbr)
		})
	}
	p.Wait()

	return results
}

func (s *ScheduleService) runTeam(ctx context.Context, abbr string) ScheduledRun {
	row := ScheduledRun{Team: abbr, Status: "failed"}

	var catcher panics.Catcher
	var report Report
	var err error
	catcher.Try(func() {
		report, err = s.reports.Run(ctx, abbr)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		err = recovered.AsError()
	}

	if err != nil {
		row.Error = err.Error()
		s.logger.ErrorContext(ctx, "scheduled report failed", "team", abbr, "error", err)
		return row
	}
	row.RunID = report.RunID
	row.Status = "success"
	return row
}
