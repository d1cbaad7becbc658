package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/team-gamelog/internal/domain/gamelog"
	"github.com/riskibarqy/team-gamelog/internal/domain/team"
	teammock "github.com/riskibarqy/team-gamelog/internal/mocks/domain/team"
	usecasemock "github.com/riskibarqy/team-gamelog/internal/mocks/usecase"
	"github.com/riskibarqy/team-gamelog/internal/platform/cache"
	"github.com/riskibarqy/team-gamelog/internal/platform/logging"
	"github.com/riskibarqy/team-gamelog/internal/platform/tabular"
	"github.com/stretchr/testify/mock"
)

const warriorsID = int64(1610612744)

var warriors = team.Team{ID: warriorsID, Abbreviation: "GSW", FullName: "Golden State Warriors"}

func sampleTable() gamelog.Table {
	return gamelog.Table{
		Header: []string{"TEAM_ID", "GAME_DATE", "MATCHUP", "WL", "PTS"},
		Rows: [][]string{
			{"1610612744", "2024-03-09", "GSW vs. MIL", "W", "125"},
			{"1610612744", "2023-10-24T00:00:00", "GSW @ PHX", "L", "104"},
			{"1610612744", "2024-01-15", "GSW vs. MEM", "W", "116"},
		},
	}
}

func sampleLog(t *testing.T) gamelog.GameLog {
	t.Helper()
	log, err := gamelog.FromTable(sampleTable())
	if err != nil {
		t.Fatalf("build sample log: %v", err)
	}
	return log
}

type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
	hook   func()
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	hook := s.hook
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return ctx.Err()
}

func (s *recordingSleeper) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

type recordingRecorder struct {
	mu          sync.Mutex
	tiers       []string
	attempts    []string
	cacheErrors []string
}

func (r *recordingRecorder) ObserveAttempt(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, outcome)
}

func (r *recordingRecorder) ObserveCacheError(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cacheErrors = append(r.cacheErrors, op)
}

func (r *recordingRecorder) ObserveTier(tier string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tiers = append(r.tiers, tier)
}

func (r *recordingRecorder) Attempts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.attempts...)
}

func (r *recordingRecorder) CacheErrors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.cacheErrors...)
}

func (r *recordingRecorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.tiers) == 0 {
		return ""
	}
	return r.tiers[len(r.tiers)-1]
}

type fetcherFixture struct {
	source    *usecasemock.GameLogSource
	directory *teammock.Directory
	remote    *usecasemock.RemoteGameLogCache
	sleeper   *recordingSleeper
	recorder  *recordingRecorder
	fetcher   *GameLogFetcher
	opts      FetchOptions
}

func newFetcherFixture(t *testing.T) *fetcherFixture {
	t.Helper()

	f := &fetcherFixture{
		source:    usecasemock.NewGameLogSource(t),
		directory: teammock.NewDirectory(t),
		remote:    usecasemock.NewRemoteGameLogCache(t),
		sleeper:   &recordingSleeper{},
		recorder:  &recordingRecorder{},
	}
	f.fetcher = NewGameLogFetcher(GameLogFetcherConfig{
		Source:    f.source,
		Directory: f.directory,
		Remote:    f.remote,
		Sleeper:   f.sleeper,
		Recorder:  f.recorder,
		Logger:    logging.NewNop(),
	})
	f.opts = FetchOptions{
		Retries:           3,
		BackoffBase:       2,
		Timeout:           time.Second,
		CacheDir:          t.TempDir(),
		UseCacheOnFailure: true,
	}
	return f
}

func (f *fetcherFixture) knowsWarriors() {
	f.directory.On("GetByID", mock.Anything, warriorsID).Return(warriors, true, nil)
}

func (f *fetcherFixture) liveFails(times int, err error) {
	f.source.On("FetchGameLog", mock.Anything, warriorsID).Return(gamelog.Table{}, err).Times(times)
}

func cacheFileExists(dir string, key cache.Key) bool {
	info, err := os.Stat(filepath.Join(dir, key.FileName()))
	return err == nil && !info.IsDir()
}

// blockedCacheDir returns a path under which no cache file can be created.
func blockedCacheDir(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(path, []byte("occupied"), 0o644); err != nil {
		t.Fatalf("create blocking file: %v", err)
	}
	return path
}

func assertSortedValidDates(t *testing.T, log gamelog.GameLog) {
	t.Helper()
	records := log.Records()
	for i, rec := range records {
		if rec.GameDate.IsZero() {
			t.Fatalf("record %d has zero date", i)
		}
		raw, _ := log.Value(i, gamelog.ColumnGameDate)
		if _, err := time.Parse(gamelog.DateLayout, raw); err != nil {
			t.Fatalf("record %d date %q does not parse: %v", i, raw, err)
		}
		if i > 0 && rec.GameDate.Before(records[i-1].GameDate) {
			t.Fatalf("records not ascending at %d", i)
		}
	}
}

func TestGameLogFetcher_LiveSuccessIsSortedAndCached(t *testing.T) {
	t.Parallel()

	f := newFetcherFixture(t)
	f.knowsWarriors()
	f.source.On("FetchGameLog", mock.Anything, warriorsID).Return(sampleTable(), nil).Once()

	got, err := f.fetcher.Fetch(context.Background(), warriorsID, f.opts)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got.Len() != 3 {
		t.Fatalf("expected 3 games, got %d", got.Len())
	}
	assertSortedValidDates(t, got)
	if len(f.sleeper.Delays()) != 0 {
		t.Fatalf("first attempt must not sleep, got %v", f.sleeper.Delays())
	}

	if !cacheFileExists(f.opts.CacheDir, cache.AbbreviationKey("GSW")) || !cacheFileExists(f.opts.CacheDir, cache.IDKey(warriorsID)) {
		t.Fatalf("expected both cache keys written")
	}
	if f.recorder.Last() != TierLive {
		t.Fatalf("expected live tier, got %q", f.recorder.Last())
	}
}

func TestGameLogFetcher_RetriesWithExponentialBackoffThenCaches(t *testing.T) {
	t.Parallel()

	f := newFetcherFixture(t)
	f.knowsWarriors()
	f.opts.BackoffBase = 3
	f.liveFails(2, fmt.Errorf("send request: %w", context.DeadlineExceeded))
	f.source.On("FetchGameLog", mock.Anything, warriorsID).Return(sampleTable(), nil).Once()

	got, err := f.fetcher.Fetch(context.Background(), warriorsID, f.opts)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got.Len() != 3 {
		t.Fatalf("expected 3 games, got %d", got.Len())
	}

	want := []time.Duration{time.Second, 3 * time.Second}
	if delays := f.sleeper.Delays(); !reflect.DeepEqual(delays, want) {
		t.Fatalf("unexpected delays: got=%v want=%v", delays, want)
	}

	raw, err := cache.NewFileStore(f.opts.CacheDir).Read(context.Background(), cache.IDKey(warriorsID))
	if err != nil {
		t.Fatalf("expected cached file before return: %v", err)
	}
	cached, err := tabular.DecodeGameLog(raw)
	if err != nil || cached.Len() != 3 {
		t.Fatalf("unexpected cached log len=%d err=%v", cached.Len(), err)
	}
}

func TestGameLogFetcher_FallsBackToLocalCache(t *testing.T) {
	t.Parallel()

	f := newFetcherFixture(t)
	f.knowsWarriors()
	seed, err := tabular.EncodeGameLog(sampleLog(t))
	if err != nil {
		t.Fatalf("encode seed: %v", err)
	}
	if err := cache.NewFileStore(f.opts.CacheDir).Write(context.Background(), cache.IDKey(warriorsID), seed); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	f.liveFails(3, errors.New("provider status=503"))

	got, err := f.fetcher.Fetch(context.Background(), warriorsID, f.opts)
	if err != nil {
		t.Fatalf("expected cached log, got error %v", err)
	}
	if got.Len() != 3 {
		t.Fatalf("expected cached games, got %d", got.Len())
	}
	if len(f.sleeper.Delays()) != 2 {
		t.Fatalf("expected two sleeps for three attempts, got %v", f.sleeper.Delays())
	}
	if f.recorder.Last() != TierLocalCache {
		t.Fatalf("expected local cache tier, got %q", f.recorder.Last())
	}
}

func TestGameLogFetcher_RemoteFallbackPopulatesLocalCache(t *testing.T) {
	t.Parallel()

	f := newFetcherFixture(t)
	f.knowsWarriors()
	f.opts.RemoteCacheBaseURL = "https://cache.example.com/nba"
	f.liveFails(6, errors.New("connection refused"))
	f.remote.
		On("Fetch", mock.Anything, "https://cache.example.com/nba", cache.AbbreviationKey("GSW")).
		Return(sampleLog(t), nil).
		Once()

	got, err := f.fetcher.Fetch(context.Background(), warriorsID, f.opts)
	if err != nil {
		t.Fatalf("expected remote log, got %v", err)
	}
	if got.Len() != 3 {
		t.Fatalf("expected remote games, got %d", got.Len())
	}
	if f.recorder.Last() != TierRemoteCache {
		t.Fatalf("expected remote tier, got %q", f.recorder.Last())
	}

	offline := f.opts
	offline.RemoteCacheBaseURL = ""
	again, err := f.fetcher.Fetch(context.Background(), warriorsID, offline)
	if err != nil {
		t.Fatalf("expected local cache after remote fill, got %v", err)
	}
	if !reflect.DeepEqual(again.Table(), got.Table()) {
		t.Fatalf("local copy differs from remote data")
	}
	if f.recorder.Last() != TierLocalCache {
		t.Fatalf("expected local cache tier on second call, got %q", f.recorder.Last())
	}
}

func TestGameLogFetcher_ExhaustionReturnsLastLiveError(t *testing.T) {
	t.Parallel()

	f := newFetcherFixture(t)
	f.knowsWarriors()
	f.opts.RemoteCacheBaseURL = "https://cache.example.com"

	lastErr := errors.New("attempt 3: provider status=502")
	f.source.On("FetchGameLog", mock.Anything, warriorsID).Return(gamelog.Table{}, errors.New("attempt 1")).Once()
	f.source.On("FetchGameLog", mock.Anything, warriorsID).Return(gamelog.Table{}, errors.New("attempt 2")).Once()
	f.source.On("FetchGameLog", mock.Anything, warriorsID).Return(gamelog.Table{}, lastErr).Once()
	f.remote.On("Fetch", mock.Anything, "https://cache.example.com", mock.Anything).
		Return(gamelog.GameLog{}, errors.New("remote cache returned non-200 status")).
		Twice()

	_, err := f.fetcher.Fetch(context.Background(), warriorsID, f.opts)
	if err != lastErr {
		t.Fatalf("expected the last live error itself, got %v", err)
	}
	if err.Error() != "attempt 3: provider status=502" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if f.recorder.Last() != TierExhausted {
		t.Fatalf("expected exhausted tier, got %q", f.recorder.Last())
	}
}

func TestGameLogFetcher_IdempotentOnHealthyUpstream(t *testing.T) {
	t.Parallel()

	f := newFetcherFixture(t)
	f.knowsWarriors()
	f.source.On("FetchGameLog", mock.Anything, warriorsID).Return(sampleTable(), nil).Twice()

	first, err := f.fetcher.Fetch(context.Background(), warriorsID, f.opts)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	second, err := f.fetcher.Fetch(context.Background(), warriorsID, f.opts)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if !reflect.DeepEqual(first.Table(), second.Table()) {
		t.Fatalf("expected identical content across calls")
	}

	raw, err := cache.NewFileStore(f.opts.CacheDir).Read(context.Background(), cache.AbbreviationKey("GSW"))
	if err != nil {
		t.Fatalf("read cache: %v", err)
	}
	want, _ := tabular.EncodeGameLog(second)
	if string(raw) != string(want) {
		t.Fatalf("cache does not hold the latest write")
	}
}

func TestGameLogFetcher_DirectoryFailureUsesIDKeyOnly(t *testing.T) {
	t.Parallel()

	f := newFetcherFixture(t)
	f.directory.On("GetByID", mock.Anything, warriorsID).Return(team.Team{}, false, errors.New("roster unavailable"))
	f.source.On("FetchGameLog", mock.Anything, warriorsID).Return(sampleTable(), nil).Once()

	if _, err := f.fetcher.Fetch(context.Background(), warriorsID, f.opts); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if !cacheFileExists(f.opts.CacheDir, cache.IDKey(warriorsID)) {
		t.Fatalf("expected id-keyed cache file")
	}
	if cacheFileExists(f.opts.CacheDir, cache.AbbreviationKey("GSW")) {
		t.Fatalf("abbreviation-keyed cache file must not be created")
	}
}

func TestGameLogFetcher_UnknownTeamSkipsAbbreviationKey(t *testing.T) {
	t.Parallel()

	const otherID = int64(99)
	f := newFetcherFixture(t)
	f.directory.On("GetByID", mock.Anything, otherID).Return(team.Team{}, false, nil)
	f.source.On("FetchGameLog", mock.Anything, otherID).Return(sampleTable(), nil).Once()

	if _, err := f.fetcher.Fetch(context.Background(), otherID, f.opts); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !cacheFileExists(f.opts.CacheDir, cache.IDKey(otherID)) {
		t.Fatalf("expected id-keyed cache file")
	}
}

func TestGameLogFetcher_LocalCacheDisabled(t *testing.T) {
	t.Parallel()

	f := newFetcherFixture(t)
	f.knowsWarriors()
	f.opts.UseCacheOnFailure = false
	seed, _ := tabular.EncodeGameLog(sampleLog(t))
	if err := cache.NewFileStore(f.opts.CacheDir).Write(context.Background(), cache.IDKey(warriorsID), seed); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	liveErr := errors.New("provider status=500")
	f.liveFails(3, liveErr)

	if _, err := f.fetcher.Fetch(context.Background(), warriorsID, f.opts); !errors.Is(err, liveErr) {
		t.Fatalf("expected live error with local cache disabled, got %v", err)
	}
}

func TestGameLogFetcher_CorruptCacheIsIgnored(t *testing.T) {
	t.Parallel()

	f := newFetcherFixture(t)
	f.knowsWarriors()
	store := cache.NewFileStore(f.opts.CacheDir)
	if err := store.Write(context.Background(), cache.AbbreviationKey("GSW"), []byte("MATCHUP\nGSW @ LAL\n")); err != nil {
		t.Fatalf("seed corrupt cache: %v", err)
	}
	seed, _ := tabular.EncodeGameLog(sampleLog(t))
	if err := store.Write(context.Background(), cache.IDKey(warriorsID), seed); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	f.liveFails(3, errors.New("boom"))

	got, err := f.fetcher.Fetch(context.Background(), warriorsID, f.opts)
	if err != nil {
		t.Fatalf("expected id-keyed cache after corrupt abbreviation file, got %v", err)
	}
	if got.Len() != 3 {
		t.Fatalf("unexpected games %d", got.Len())
	}
}

func TestGameLogFetcher_CanceledContextStillServesCache(t *testing.T) {
	t.Parallel()

	f := newFetcherFixture(t)
	f.knowsWarriors()
	seed, _ := tabular.EncodeGameLog(sampleLog(t))
	if err := cache.NewFileStore(f.opts.CacheDir).Write(context.Background(), cache.IDKey(warriorsID), seed); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.sleeper.hook = cancel
	f.liveFails(1, errors.New("first attempt failed"))

	got, err := f.fetcher.Fetch(ctx, warriorsID, f.opts)
	if err != nil {
		t.Fatalf("expected cache fallback after cancel, got %v", err)
	}
	if got.Len() != 3 {
		t.Fatalf("unexpected games %d", got.Len())
	}
	if len(f.sleeper.Delays()) != 1 {
		t.Fatalf("expected retries to stop after cancel, got %v", f.sleeper.Delays())
	}
}

func TestGameLogFetcher_RejectsInvalidOptions(t *testing.T) {
	t.Parallel()

	f := newFetcherFixture(t)
	cases := map[string]func(*FetchOptions){
		"zero retries":   func(o *FetchOptions) { o.Retries = 0 },
		"zero backoff":   func(o *FetchOptions) { o.BackoffBase = 0 },
		"zero timeout":   func(o *FetchOptions) { o.Timeout = 0 },
		"bad remote url": func(o *FetchOptions) { o.RemoteCacheBaseURL = "ftp://cache.example.com" },
	}
	for name, mutate := range cases {
		opts := f.opts
		mutate(&opts)
		if _, err := f.fetcher.Fetch(context.Background(), warriorsID, opts); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
	if _, err := f.fetcher.Fetch(context.Background(), 0, f.opts); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero team id, got %v", err)
	}
}

func TestGameLogFetcher_CacheWriteFailureDoesNotFailLiveFetch(t *testing.T) {
	t.Parallel()

	f := newFetcherFixture(t)
	f.opts.CacheDir = blockedCacheDir(t)
	f.knowsWarriors()
	f.source.On("FetchGameLog", mock.Anything, warriorsID).Return(sampleTable(), nil).Once()

	got, err := f.fetcher.Fetch(context.Background(), warriorsID, f.opts)
	if err != nil {
		t.Fatalf("expected live result despite unwritable cache, got %v", err)
	}
	if got.Len() != 3 {
		t.Fatalf("expected 3 games, got %d", got.Len())
	}
	if f.recorder.Last() != TierLive {
		t.Fatalf("expected live tier, got %q", f.recorder.Last())
	}
	if errs := f.recorder.CacheErrors(); !reflect.DeepEqual(errs, []string{"write", "write"}) {
		t.Fatalf("expected a write error per cache key, got %v", errs)
	}
}

func TestGameLogFetcher_CacheWriteFailureDoesNotFailRemoteFill(t *testing.T) {
	t.Parallel()

	f := newFetcherFixture(t)
	f.opts.CacheDir = blockedCacheDir(t)
	f.opts.RemoteCacheBaseURL = "https://cache.example.com/nba"
	f.knowsWarriors()
	f.liveFails(3, errors.New("upstream down"))
	f.remote.On("Fetch", mock.Anything, "https://cache.example.com/nba", cache.AbbreviationKey("GSW")).
		Return(sampleLog(t), nil).Once()

	got, err := f.fetcher.Fetch(context.Background(), warriorsID, f.opts)
	if err != nil {
		t.Fatalf("expected remote result despite unwritable cache, got %v", err)
	}
	if got.Len() != 3 {
		t.Fatalf("expected 3 games, got %d", got.Len())
	}
	if f.recorder.Last() != TierRemoteCache {
		t.Fatalf("expected remote tier, got %q", f.recorder.Last())
	}
	writes := 0
	for _, op := range f.recorder.CacheErrors() {
		if op == "write" {
			writes++
		}
	}
	if writes != 2 {
		t.Fatalf("expected a write error per cache key, got %v", f.recorder.CacheErrors())
	}
}

func TestGameLogFetcher_AttemptTimeoutsAreClassified(t *testing.T) {
	t.Parallel()

	f := newFetcherFixture(t)
	f.opts.Retries = 2
	f.knowsWarriors()
	f.source.On("FetchGameLog", mock.Anything, warriorsID).
		Return(gamelog.Table{}, fmt.Errorf("send request: %w", context.DeadlineExceeded)).Once()
	f.source.On("FetchGameLog", mock.Anything, warriorsID).
		Return(gamelog.Table{}, fmt.Errorf("%w: circuit open", ErrDependencyUnavailable)).Once()

	if _, err := f.fetcher.Fetch(context.Background(), warriorsID, f.opts); err == nil {
		t.Fatalf("expected failure with empty cache")
	}
	if got := f.recorder.Attempts(); !reflect.DeepEqual(got, []string{"timeout", "circuit_open"}) {
		t.Fatalf("unexpected attempt outcomes %v", got)
	}
}
