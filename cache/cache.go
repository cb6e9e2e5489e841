package cache

import (
	"errors"
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"

	"github.com/xeptore/panpup/youtube/types"
)

var errNotCacheable = errors.New("outcome is not cacheable")

type Cache struct {
	ParseOutcomes ParseOutcomesCache
}

func New(maxSize int) *Cache {
	parseOutcomesCache := ccache.New(
		ccache.Configure[types.ParseOutcome]().
			MaxSize(int64(maxSize)).
			GetsPerPromote(3).
			ItemsToPrune(1),
	)

	return &Cache{
		ParseOutcomes: ParseOutcomesCache{
			c:   parseOutcomesCache,
			mux: sync.Mutex{},
		},
	}
}

type ParseOutcomesCache struct {
	c   *ccache.Cache[types.ParseOutcome]
	mux sync.Mutex
}

// Fetch returns the cached outcome for k, or calls fetch. Only successful
// outcomes are stored.
func (c *ParseOutcomesCache) Fetch(
	k string,
	ttl time.Duration,
	fetch func() types.ParseOutcome,
) (outcome types.ParseOutcome, hit bool) {
	c.mux.Lock()
	defer c.mux.Unlock()

	hit = true
	item, err := c.c.Fetch(k, ttl, func() (types.ParseOutcome, error) {
		hit = false
		outcome = fetch()
		if !outcome.Success {
			return outcome, errNotCacheable
		}

		return outcome, nil
	})
	if nil != err {
		return outcome, false
	}

	return item.Value(), hit
}

func (c *ParseOutcomesCache) Delete(k string) bool {
	return c.c.Delete(k)
}

func (c *ParseOutcomesCache) Stop() {
	c.c.Stop()
}
