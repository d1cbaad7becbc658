package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/team-gamelog/internal/domain/gamelog"
	"github.com/riskibarqy/team-gamelog/internal/domain/team"
	"github.com/riskibarqy/team-gamelog/internal/platform/cache"
	"github.com/riskibarqy/team-gamelog/internal/platform/logging"
	"github.com/riskibarqy/team-gamelog/internal/platform/resilience"
	"github.com/riskibarqy/team-gamelog/internal/platform/tabular"
	"go.opentelemetry.io/otel/attribute"
)

// Fetch tiers, as reported to the FetchRecorder.
const (
	TierLive        = "live"
	TierLocalCache  = "local_cache"
	TierRemoteCache = "remote_cache"
	TierExhausted   = "exhausted"
)

// GameLogSource is the live upstream. It returns the raw, unsorted table.
type GameLogSource interface {
	FetchGameLog(ctx context.Context, teamID int64) (gamelog.Table, error)
}

// RemoteGameLogCache reads a published cache file below baseURL.
type RemoteGameLogCache interface {
	Fetch(ctx context.Context, baseURL string, key cache.Key) (gamelog.GameLog, error)
}

// FetchRecorder observes fetch outcomes. Implementations must be safe for concurrent use.
type FetchRecorder interface {
	ObserveAttempt(outcome string)
	ObserveTier(tier string)
	ObserveCacheError(op string)
}

type noopFetchRecorder struct{}

func (noopFetchRecorder) ObserveAttempt(string)    {}
func (noopFetchRecorder) ObserveTier(string)       {}
func (noopFetchRecorder) ObserveCacheError(string) {}

type FetchOptions struct {
	Retries            int           `validate:"min=1"`
	BackoffBase        float64       `validate:"gt=0"`
	Timeout            time.Duration `validate:"gt=0"`
	CacheDir           string
	UseCacheOnFailure  bool
	RemoteCacheBaseURL string `validate:"omitempty,url,startswith=http"`
}

func DefaultFetchOptions() FetchOptions {
	return FetchOptions{
		Retries:           3,
		BackoffBase:       2,
		Timeout:           30 * time.Second,
		CacheDir:          "data/cache",
		UseCacheOnFailure: true,
	}
}

type GameLogFetcherConfig struct {
	Source    GameLogSource
	Directory team.Directory
	Remote    RemoteGameLogCache
	Sleeper   resilience.Sleeper
	Recorder  FetchRecorder
	Logger    *logging.Logger
}

// GameLogFetcher loads a team's game log from the upstream with retries and falls back
// to the local then the remote cache. Concurrent fetches are not deduplicated.
type GameLogFetcher struct {
	source    GameLogSource
	directory team.Directory
	remote    RemoteGameLogCache
	sleeper   resilience.Sleeper
	recorder  FetchRecorder
	logger    *logging.Logger
	validator *validator.Validate
}

func NewGameLogFetcher(cfg GameLogFetcherConfig) *GameLogFetcher {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	var sleeper resilience.Sleeper = resilience.TimerSleeper{}
	if cfg.Sleeper != nil {
		sleeper = cfg.Sleeper
	}
	var recorder FetchRecorder = noopFetchRecorder{}
	if cfg.Recorder != nil {
		recorder = cfg.Recorder
	}

	return &GameLogFetcher{
		source:    cfg.Source,
		directory: cfg.Directory,
		remote:    cfg.Remote,
		sleeper:   sleeper,
		recorder:  recorder,
		logger:    logger,
		validator: validator.New(),
	}
}

// fetchTarget carries the identifiers a fetch can be cached under.
type fetchTarget struct {
	teamID       int64
	abbreviation string
}

// keys lists cache keys in lookup order: abbreviation first when known, then id.
func (t fetchTarget) keys() []cache.Key {
	keys := make([]cache.Key, 0, 2)
	if t.abbreviation != "" {
		if key := cache.AbbreviationKey(t.abbreviation); key.Valid() {
			keys = append(keys, key)
		}
	}
	return append(keys, cache.IDKey(t.teamID))
}

// fallbackStrategy returns a log and true when it can serve the target.
type fallbackStrategy struct {
	tier string
	run  func(ctx context.Context, target fetchTarget, rootErr error) (gamelog.GameLog, bool)
}

// Fetch returns the team's games ascending by date. It fails only when the upstream and
// every enabled cache tier fail, and then returns the last upstream error unchanged.
func (f *GameLogFetcher) Fetch(ctx context.Context, teamID int64, opts FetchOptions) (gamelog.GameLog, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameLogFetcher.Fetch")
	defer span.End()
	span.SetAttributes(attribute.Int64("team.id", teamID))

	if teamID <= 0 {
		return gamelog.GameLog{}, fmt.Errorf("%w: team id must be greater than zero", ErrInvalidInput)
	}
	if err := f.validator.StructCtx(ctx, opts); err != nil {
		return gamelog.GameLog{}, fmt.Errorf("%w: fetch options: %v", ErrInvalidInput, err)
	}
	if f.source == nil {
		return gamelog.GameLog{}, fmt.Errorf("%w: game log source is not configured", ErrDependencyUnavailable)
	}

	target := f.resolveTarget(ctx, teamID)

	log, liveErr := f.fetchLive(ctx, target, opts)
	if liveErr == nil {
		f.recorder.ObserveTier(TierLive)
		span.SetAttributes(attribute.String("gamelog.tier", TierLive))
		return log, nil
	}

	fallbackCtx := ctx
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		fallbackCtx, cancel = context.WithTimeout(context.WithoutCancel(ctx), resilience.FallbackBudget)
		defer cancel()
	}

	for _, strategy := range f.fallbacks(opts) {
		f.logger.WarnContext(fallbackCtx, "falling back for game log", "team_id", teamID, "tier", strategy.tier, "error", liveErr)
		if log, ok := strategy.run(fallbackCtx, target, liveErr); ok {
			f.recorder.ObserveTier(strategy.tier)
			span.SetAttributes(attribute.String("gamelog.tier", strategy.tier))
			return log, nil
		}
		f.logger.ErrorContext(fallbackCtx, "game log fallback tier exhausted", "team_id", teamID, "tier", strategy.tier)
	}

	f.recorder.ObserveTier(TierExhausted)
	span.SetAttributes(attribute.String("gamelog.tier", TierExhausted))
	f.logger.ErrorContext(fallbackCtx, "all game log sources failed", "team_id", teamID, "error", liveErr)
	return gamelog.GameLog{}, liveErr
}

// resolveTarget looks up the abbreviation. Lookup failures only drop the abbreviation key.
func (f *GameLogFetcher) resolveTarget(ctx context.Context, teamID int64) fetchTarget {
	target := fetchTarget{teamID: teamID}
	if f.directory == nil {
		return target
	}

	item, ok, err := f.directory.GetByID(ctx, teamID)
	if err != nil {
		f.logger.DebugContext(ctx, "team lookup failed, using id cache key only", "team_id", teamID, "error", err)
		return target
	}
	if ok {
		target.abbreviation = item.Abbreviation
	}
	return target
}

func (f *GameLogFetcher) fetchLive(ctx context.Context, target fetchTarget, opts FetchOptions) (gamelog.GameLog, error) {
	backoff := resilience.ExponentialBackoff(opts.BackoffBase)

	var lastErr error
	for attempt := 1; attempt <= opts.Retries; attempt++ {
		if attempt > 1 {
			delay := backoff(attempt)
			f.logger.WarnContext(ctx, "retrying game log fetch",
				"team_id", target.teamID,
				"attempt", attempt,
				"retries", opts.Retries,
				"delay", delay.String(),
				"error", lastErr,
			)
			if err := f.sleeper.Sleep(ctx, delay); err != nil {
				f.logger.WarnContext(ctx, "game log retries interrupted", "team_id", target.teamID, "error", err)
				break
			}
		}

		log, err := f.attempt(ctx, target.teamID, opts.Timeout)
		if err == nil {
			f.recorder.ObserveAttempt("success")
			f.storeLocal(ctx, opts.CacheDir, target, log)
			return log, nil
		}

		lastErr = err
		f.recorder.ObserveAttempt(attemptOutcome(err))
		if ctx.Err() != nil {
			break
		}
	}

	if lastErr == nil {
		lastErr = ctx.Err()
	}
	f.logger.ErrorContext(ctx, "live game log fetch failed", "team_id", target.teamID, "retries", opts.Retries, "error", lastErr)
	return gamelog.GameLog{}, lastErr
}

func (f *GameLogFetcher) attempt(ctx context.Context, teamID int64, timeout time.Duration) (gamelog.GameLog, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	table, err := f.source.FetchGameLog(attemptCtx, teamID)
	if err != nil {
		return gamelog.GameLog{}, err
	}
	return gamelog.FromTable(table)
}

func attemptOutcome(err error) string {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case stderrors.Is(err, context.Canceled):
		return "canceled"
	case stderrors.Is(err, ErrDependencyUnavailable):
		return "circuit_open"
	default:
		return "error"
	}
}

func (f *GameLogFetcher) fallbacks(opts FetchOptions) []fallbackStrategy {
	strategies := make([]fallbackStrategy, 0, 2)
	if opts.UseCacheOnFailure && opts.CacheDir != "" {
		store := cache.NewFileStore(opts.CacheDir)
		strategies = append(strategies, fallbackStrategy{
			tier: TierLocalCache,
			run: func(ctx context.Context, target fetchTarget, _ error) (gamelog.GameLog, bool) {
				return f.readLocal(ctx, store, target)
			},
		})
	}
	if opts.RemoteCacheBaseURL != "" && f.remote != nil {
		baseURL := opts.RemoteCacheBaseURL
		cacheDir := opts.CacheDir
		strategies = append(strategies, fallbackStrategy{
			tier: TierRemoteCache,
			run: func(ctx context.Context, target fetchTarget, _ error) (gamelog.GameLog, bool) {
				return f.readRemote(ctx, baseURL, cacheDir, target)
			},
		})
	}
	return strategies
}

func (f *GameLogFetcher) readLocal(ctx context.Context, store *cache.FileStore, target fetchTarget) (gamelog.GameLog, bool) {
	for _, key := range target.keys() {
		raw, err := store.Read(ctx, key)
		if err != nil {
			if !stderrors.Is(err, cache.ErrMiss) {
				f.recorder.ObserveCacheError("read")
			}
			f.logger.DebugContext(ctx, "local game log cache unavailable", "key", key.String(), "error", err)
			continue
		}

		log, err := tabular.DecodeGameLog(raw)
		if err != nil {
			f.recorder.ObserveCacheError("parse")
			f.logger.DebugContext(ctx, "local game log cache unreadable", "key", key.String(), "error", err)
			continue
		}

		f.logger.WarnContext(ctx, "served game log from local cache", "team_id", target.teamID, "key", key.String(), "games", log.Len())
		return log, true
	}
	return gamelog.GameLog{}, false
}

func (f *GameLogFetcher) readRemote(ctx context.Context, baseURL, cacheDir string, target fetchTarget) (gamelog.GameLog, bool) {
	for _, key := range target.keys() {
		log, err := f.remote.Fetch(ctx, baseURL, key)
		if err != nil {
			f.logger.WarnContext(ctx, "remote game log cache candidate failed", "key", key.String(), "error", err)
			continue
		}

		f.logger.WarnContext(ctx, "served game log from remote cache", "team_id", target.teamID, "key", key.String(), "games", log.Len())
		f.storeLocal(ctx, cacheDir, target, log)
		return log, true
	}
	return gamelog.GameLog{}, false
}

// storeLocal writes log under every key of target. Failures are logged and ignored.
func (f *GameLogFetcher) storeLocal(ctx context.Context, cacheDir string, target fetchTarget, log gamelog.GameLog) {
	if cacheDir == "" {
		return
	}

	raw, err := tabular.EncodeGameLog(log)
	if err != nil {
		f.recorder.ObserveCacheError("encode")
		f.logger.DebugContext(ctx, "encode game log cache failed", "team_id", target.teamID, "error", err)
		return
	}

	store := cache.NewFileStore(cacheDir)
	for _, key := range target.keys() {
		if err := store.Write(ctx, key, raw); err != nil {
			f.recorder.ObserveCacheError("write")
			f.logger.DebugContext(ctx, "write game log cache failed", "key", key.String(), "error", err)
		}
	}
}
