package rest

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/Uvrat/Quiz-Battle-Royale-sub001/internal/domain"
)

// ArenaFetcher loads arena definitions; implemented by Client.
type ArenaFetcher interface {
	GetArena(ctx context.Context, arenaID string) (domain.Arena, error)
}

// ArenaCache caches arenas with a TTL, coalescing concurrent misses for
// the same arena through singleflight. The host preflight and repeated
// lobby renders hit this instead of the API.
type ArenaCache struct {
	fetcher ArenaFetcher
	ttl     time.Duration
	clock   clockwork.Clock
	sf      singleflight.Group
	rnd     *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedArena
}

type cachedArena struct {
	arena     domain.Arena
	expiresAt time.Time
}

func NewArenaCache(fetcher ArenaFetcher, ttl time.Duration, clock clockwork.Clock) *ArenaCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ArenaCache{
		fetcher: fetcher,
		ttl:     ttl,
		clock:   clock,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:   make(map[string]cachedArena),
	}
}

func (c *ArenaCache) GetArena(ctx context.Context, arenaID string) (domain.Arena, error) {
	now := c.clock.Now()

	c.mu.RLock()
	if entry, ok := c.cache[arenaID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.arena, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(arenaID, func() (interface{}, error) {
		now := c.clock.Now()
		c.mu.RLock()
		if entry, ok := c.cache[arenaID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.arena, nil
		}
		c.mu.RUnlock()

		arena, err := c.fetcher.GetArena(ctx, arenaID)
		if err != nil {
			return domain.Arena{}, err
		}

		c.mu.Lock()
		c.cache[arenaID] = cachedArena{
			arena:     arena,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return arena, nil
	})
	if err != nil {
		return domain.Arena{}, err
	}
	return result.(domain.Arena), nil
}

// Invalidate drops one arena, forcing the next read to hit the API.
func (c *ArenaCache) Invalidate(arenaID string) {
	c.mu.Lock()
	delete(c.cache, arenaID)
	c.mu.Unlock()
}

func (c *ArenaCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
