package app

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/team-gamelog/external/nbastats"
	"github.com/riskibarqy/team-gamelog/external/remotecache"
	"github.com/riskibarqy/team-gamelog/internal/config"
	"github.com/riskibarqy/team-gamelog/internal/domain/team"
	"github.com/riskibarqy/team-gamelog/internal/infrastructure/envstate"
	"github.com/riskibarqy/team-gamelog/internal/infrastructure/teamdirectory"
	"github.com/riskibarqy/team-gamelog/internal/interfaces/httpapi"
	"github.com/riskibarqy/team-gamelog/internal/observability"
	basecache "github.com/riskibarqy/team-gamelog/internal/platform/cache"
	idgen "github.com/riskibarqy/team-gamelog/internal/platform/id"
	"github.com/riskibarqy/team-gamelog/internal/platform/logging"
	"github.com/riskibarqy/team-gamelog/internal/platform/resilience"
	"github.com/riskibarqy/team-gamelog/internal/usecase"
)

const nbaStatsBreakerName = "nba_stats"

// Container holds the services shared by the API server and the report CLI.
type Container struct {
	Config  config.Config
	Logger  *logging.Logger
	Metrics *observability.Metrics
	Teams   *usecase.TeamService
	Fetcher *usecase.GameLogFetcher
	Reports *usecase.ReportService

	directory *teamdirectory.CachedDirectory
}

// FetchOptions maps the fetch settings of cfg onto the fetcher's options.
func FetchOptions(cfg config.Config) usecase.FetchOptions {
	return usecase.FetchOptions{
		Retries:            cfg.FetchRetries,
		BackoffBase:        cfg.FetchBackoffBase,
		Timeout:            cfg.FetchTimeout,
		CacheDir:           cfg.CacheDir,
		UseCacheOnFailure:  cfg.UseCacheOnFailure,
		RemoteCacheBaseURL: cfg.RemoteCacheBaseURL,
	}
}

func NewContainer(cfg config.Config, logger *logging.Logger) (*Container, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.RemoteCacheBaseURL != "" {
		if _, err := remotecache.ValidateBaseURL(cfg.RemoteCacheBaseURL); err != nil {
			return nil, fmt.Errorf("remote cache: %w", err)
		}
	}
	metrics := observability.NewMetrics()

	statsClient := nbastats.NewClient(nbastats.ClientConfig{
		BaseURL: cfg.NBAStatsBaseURL,
		Timeout: cfg.FetchTimeout,
		Logger:  logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.NBAStatsCircuitEnabled,
			FailureThreshold: cfg.NBAStatsCircuitFailureCount,
			OpenTimeout:      cfg.NBAStatsCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.NBAStatsCircuitHalfOpenMaxReq,
			OnStateChange: func(from, to resilience.CircuitState) {
				metrics.SetBreakerOpen(nbaStatsBreakerName, to == resilience.CircuitStateOpen)
				logger.Warn("nba stats circuit breaker state changed", "from", from, "to", to)
			},
		},
	})

	directory := teamdirectory.NewCachedDirectory(
		teamdirectory.NewRoster(cfg.TeamDirectoryFile),
		basecache.NewStore[[]team.Team](cfg.TeamDirectoryTTL),
	)
	selection := envstate.NewStore(cfg.DotenvPath, team.Selection{
		Abbreviation: cfg.LastTeamAbbr,
		FullName:     cfg.LastTeamName,
	})

	teams := usecase.NewTeamService(directory, selection, logger)
	fetcher := usecase.NewGameLogFetcher(usecase.GameLogFetcherConfig{
		Source:    statsClient,
		Directory: directory,
		Remote:    remotecache.NewClient(remotecache.Config{UserAgent: cfg.ServiceName}),
		Recorder:  metrics,
		Logger:    logger,
	})
	reports := usecase.NewReportService(usecase.ReportServiceConfig{
		Teams:    teams,
		Fetcher:  fetcher,
		Options:  FetchOptions(cfg),
		DataDir:  cfg.DataDir,
		IDs:      idgen.NewRunIDGenerator("run"),
		Logger:   logger,
		Remember: true,
	})

	return &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics,
		Teams:   teams,
		Fetcher: fetcher,
		Reports: reports,

		directory: directory,
	}, nil
}

func NewHTTPServer(c *Container) (*http.Server, error) {
	handler := httpapi.NewHandler(c.Teams, c.Reports, c.Logger)
	router := httpapi.NewRouter(handler, c.Logger, c.Config.CORSAllowedOrigins, c.Metrics, c.Metrics.Handler())

	server := &http.Server{
		Addr:         c.Config.HTTPAddr,
		Handler:      router,
		ReadTimeout:  c.Config.ReadTimeout,
		WriteTimeout: c.Config.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

// NewWarmupService builds the warm-up for the given abbreviations, falling back to
// WARMUP_TEAMS when none are passed.
func (c *Container) NewWarmupService(abbreviations []string) *usecase.WarmupService {
	if len(abbreviations) == 0 {
		abbreviations = c.Config.WarmupTeams
	}
	return usecase.NewWarmupService(usecase.WarmupServiceConfig{
		Teams:         c.Teams,
		Fetcher:       c.Fetcher,
		Options:       FetchOptions(c.Config),
		Abbreviations: abbreviations,
		Workers:       c.Config.WarmupWorkers,
		Logger:        c.Logger,
	})
}

func (c *Container) NewScheduleService() (*usecase.ScheduleService, error) {
	return usecase.NewScheduleService(usecase.ScheduleServiceConfig{
		Reports:       c.Reports,
		Teams:         c.Teams,
		Roster:        c.directory,
		Spec:          c.Config.ScheduleCron,
		Abbreviations: c.Config.ScheduleTeams,
		Workers:       c.Config.WarmupWorkers,
		Logger:        c.Logger,
	})
}
