package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/singleflight"

	"github.com/ogmaths/clientpulse/internal/domain"
	"github.com/ogmaths/clientpulse/internal/metrics"
)

const orgCacheTTL = 1 * time.Hour

// OrgCache is a read-through organization cache in front of the Postgres
// repository. Lookups go L1 in-memory, L2 Redis, then Postgres. Redis
// operations run behind a circuit breaker so a Redis outage degrades to
// direct Postgres reads instead of failing tenant resolution.
//
// Implements domain.OrganizationRepository; GetByID and List bypass the
// cache since they only serve admin surfaces.
type OrgCache struct {
	rdb     goredis.Cmdable
	source  domain.OrganizationRepository
	mem     *memoryCache
	breaker *gobreaker.CircuitBreaker
	group   singleflight.Group
}

func NewOrgCache(rdb goredis.Cmdable, source domain.OrganizationRepository, memTTL time.Duration, clock clockwork.Clock) *OrgCache {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-org-cache",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && counts.TotalFailures*10 >= counts.Requests*6
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, goredis.Nil)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed",
				"component", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.CircuitBreakerStateChanges.WithLabelValues(name, to.String()).Inc()
		},
	})

	return &OrgCache{
		rdb:     rdb,
		source:  source,
		mem:     newMemoryCache(memTTL, clock),
		breaker: breaker,
	}
}

// StartEvictionTimer runs a periodic goroutine that evicts expired in-memory
// entries. Returns a stop function that should be deferred.
func (c *OrgCache) StartEvictionTimer(interval time.Duration) func() {
	ticker := c.mem.clock.NewTicker(interval)
	done := make(chan bool)

	go func() {
		for {
			select {
			case <-ticker.Chan():
				evicted := c.mem.evictExpired()
				if evicted > 0 {
					slog.Debug("Evicted expired org cache entries", "count", evicted, "remaining", c.mem.size())
				}

			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		close(done)
	}
}

func (c *OrgCache) GetBySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	if org, ok := c.mem.get(slug); ok {
		metrics.OrgCacheHitsTotal.WithLabelValues("memory").Inc()
		return org, nil
	}

	// Collapse concurrent misses for the same slug into one lookup.
	v, err, _ := c.group.Do(slug, func() (any, error) {
		if org, ok := c.getCached(ctx, slug); ok {
			metrics.OrgCacheHitsTotal.WithLabelValues("redis").Inc()
			c.mem.set(slug, org)
			return org, nil
		}

		metrics.OrgCacheMissesTotal.Inc()
		org, err := c.source.GetBySlug(ctx, slug)
		if err != nil {
			return nil, fmt.Errorf("organization lookup by slug failed: %w", err)
		}

		c.mem.set(slug, org)
		c.writeCache(ctx, slug, org)
		return org, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Organization), nil
}

func (c *OrgCache) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	return c.source.GetByID(ctx, id)
}

func (c *OrgCache) List(ctx context.Context) ([]domain.Organization, error) {
	return c.source.List(ctx)
}

// Invalidate evicts the organization from both cache layers.
func (c *OrgCache) Invalidate(ctx context.Context, slug string) error {
	c.mem.invalidate(slug)

	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.rdb.Del(ctx, orgCacheKey(slug)).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate org cache: %w", err)
	}
	return nil
}

func (c *OrgCache) writeCache(ctx context.Context, slug string, org *domain.Organization) {
	encoded, err := json.Marshal(org)
	if err != nil {
		slog.Warn("Failed to marshal organization for Redis cache", "slug", slug, "error", err)
		return
	}

	_, err = c.breaker.Execute(func() (any, error) {
		return nil, c.rdb.Set(ctx, orgCacheKey(slug), encoded, orgCacheTTL).Err()
	})
	if err != nil {
		slog.Warn("Failed to populate Redis org cache", "slug", slug, "error", err)
	}
}

func (c *OrgCache) getCached(ctx context.Context, slug string) (*domain.Organization, bool) {
	v, err := c.breaker.Execute(func() (any, error) {
		return c.rdb.Get(ctx, orgCacheKey(slug)).Bytes()
	})
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			slog.Warn("Redis org cache GET failed", "slug", slug, "error", err)
		}
		return nil, false
	}

	var org domain.Organization
	if err := json.Unmarshal(v.([]byte), &org); err != nil {
		slog.Warn("Failed to unmarshal cached organization", "slug", slug, "error", err)
		return nil, false
	}
	return &org, true
}

func orgCacheKey(slug string) string {
	return "org_cache:" + slug
}

// memoryCache is an in-memory L1 cache with TTL-based expiry.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]*memoryCacheEntry
	ttl     time.Duration
	clock   clockwork.Clock
}

type memoryCacheEntry struct {
	org       *domain.Organization
	expiresAt time.Time
}

func newMemoryCache(ttl time.Duration, clock clockwork.Clock) *memoryCache {
	return &memoryCache{
		entries: make(map[string]*memoryCacheEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

func (c *memoryCache) get(slug string) (*domain.Organization, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[slug]
	if !ok {
		return nil, false
	}

	if c.clock.Now().After(entry.expiresAt) {
		return nil, false
	}

	return entry.org, true
}

func (c *memoryCache) set(slug string, org *domain.Organization) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[slug] = &memoryCacheEntry{
		org:       org,
		expiresAt: c.clock.Now().Add(c.ttl),
	}
}

func (c *memoryCache) invalidate(slug string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, slug)
}

func (c *memoryCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *memoryCache) evictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	evicted := 0

	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
			evicted++
		}
	}

	return evicted
}
