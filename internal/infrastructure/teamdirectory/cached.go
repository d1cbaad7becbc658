package teamdirectory

import (
	"context"

	"github.com/riskibarqy/team-gamelog/internal/domain/team"
	basecache "github.com/riskibarqy/team-gamelog/internal/platform/cache"
)

const listKey = "team:list"

// CachedDirectory memoizes the roster list and answers lookups from it.
type CachedDirectory struct {
	next  team.Directory
	cache *basecache.Store[[]team.Team]
}

func NewCachedDirectory(next team.Directory, cache *basecache.Store[[]team.Team]) *CachedDirectory {
	return &CachedDirectory{next: next, cache: cache}
}

func (d *CachedDirectory) List(ctx context.Context) ([]team.Team, error) {
	items, err := d.cache.GetOrLoad(ctx, listKey, func(ctx context.Context) ([]team.Team, error) {
		items, err := d.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]team.Team(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]team.Team(nil), items...), nil
}

func (d *CachedDirectory) GetByID(ctx context.Context, teamID int64) (team.Team, bool, error) {
	items, err := d.List(ctx)
	if err != nil {
		return team.Team{}, false, err
	}
	return findByID(items, teamID)
}

func (d *CachedDirectory) GetByAbbreviation(ctx context.Context, abbr string) (team.Team, bool, error) {
	items, err := d.List(ctx)
	if err != nil {
		return team.Team{}, false, err
	}
	return findByAbbreviation(items, abbr)
}

// Invalidate drops the memoized list so the next call re-reads the roster.
func (d *CachedDirectory) Invalidate(ctx context.Context) {
	d.cache.Delete(ctx, listKey)
}
