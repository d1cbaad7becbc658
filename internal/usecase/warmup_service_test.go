package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/team-gamelog/internal/domain/gamelog"
	"github.com/riskibarqy/team-gamelog/internal/domain/team"
	teammock "github.com/riskibarqy/team-gamelog/internal/mocks/domain/team"
	"github.com/riskibarqy/team-gamelog/internal/platform/cache"
	"github.com/riskibarqy/team-gamelog/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func TestWarmupService_RunWarmsConfiguredTeams(t *testing.T) {
	t.Parallel()

	celtics := team.Team{ID: 1610612738, Abbreviation: "BOS", FullName: "Boston Celtics"}
	f := newFetcherFixture(t)
	f.knowsWarriors()
	f.directory.On("GetByID", mock.Anything, celtics.ID).Return(celtics, true, nil)
	f.directory.On("GetByAbbreviation", mock.Anything, "GSW").Return(warriors, true, nil)
	f.directory.On("GetByAbbreviation", mock.Anything, "BOS").Return(celtics, true, nil)
	f.directory.On("GetByAbbreviation", mock.Anything, "NOPE").Return(team.Team{}, false, nil)
	f.source.On("FetchGameLog", mock.Anything, warriorsID).Return(sampleTable(), nil).Once()
	f.source.On("FetchGameLog", mock.Anything, celtics.ID).Return(gamelog.Table{}, errors.New("upstream down")).Times(3)

	service := NewWarmupService(WarmupServiceConfig{
		Teams:         NewTeamService(f.directory, nil, logging.NewNop()),
		Fetcher:       f.fetcher,
		Options:       f.opts,
		Abbreviations: []string{"gsw", "BOS", "nope"},
		Workers:       2,
		Logger:        logging.NewNop(),
	})

	result, err := service.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Teams != 2 || result.Succeeded != 1 || result.Failed != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if !cacheFileExists(f.opts.CacheDir, cache.AbbreviationKey("GSW")) {
		t.Fatalf("expected warmed cache file")
	}
}

func TestWarmupService_StartRunsInBackground(t *testing.T) {
	t.Parallel()

	f := newFetcherFixture(t)
	f.knowsWarriors()
	f.directory.On("GetByAbbreviation", mock.Anything, "GSW").Return(warriors, true, nil)
	f.source.On("FetchGameLog", mock.Anything, warriorsID).Return(sampleTable(), nil).Once()
	selection := teammock.NewSelectionStore(t)
	selection.On("LastSelection", mock.Anything).Return(team.Selection{Abbreviation: "GSW"}, nil).Once()

	service := NewWarmupService(WarmupServiceConfig{
		Teams:   NewTeamService(f.directory, selection, logging.NewNop()),
		Fetcher: f.fetcher,
		Options: f.opts,
		Logger:  logging.NewNop(),
	})
	service.Start(context.Background())
	service.Start(context.Background())

	select {
	case <-service.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("warm-up did not finish")
	}
	if !cacheFileExists(f.opts.CacheDir, cache.IDKey(warriorsID)) {
		t.Fatalf("expected warmed cache file")
	}
}
