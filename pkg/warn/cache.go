package warn

import (
	"context"
	"sync"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/models"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CachedStore keeps per-subject snapshots of ListActive in an expiring LRU.
// Snapshots are re-filtered by the caller's now, so expiry never needs an
// invalidation. Writes made through another process are only seen after ttl.
type CachedStore struct {
	Store

	cache *expirable.LRU[string, activeSnapshot]

	mu  sync.Mutex
	gen uint64
}

type activeSnapshot struct {
	at    time.Time
	warns []models.Warn
}

// NewCachedStore wraps inner. size is the number of subjects kept.
func NewCachedStore(inner Store, size int, ttl time.Duration) *CachedStore {
	return &CachedStore{
		Store: inner,
		cache: expirable.NewLRU[string, activeSnapshot](size, nil, ttl),
	}
}

func (c *CachedStore) ListActive(ctx context.Context, subjectID string, now time.Time) ([]models.Warn, error) {
	if warns, ok := c.lookup(subjectID, now); ok {
		return warns, nil
	}

	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	warns, err := c.Store.ListActive(ctx, subjectID, now)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if gen == c.gen {
		c.cache.Add(subjectID, activeSnapshot{at: now, warns: append([]models.Warn(nil), warns...)})
	}
	c.mu.Unlock()
	return warns, nil
}

func (c *CachedStore) CountActive(ctx context.Context, subjectID string, now time.Time) (int, error) {
	warns, err := c.ListActive(ctx, subjectID, now)
	if err != nil {
		return 0, err
	}
	return len(warns), nil
}

func (c *CachedStore) Insert(ctx context.Context, w models.Warn) (int64, error) {
	defer c.invalidate(w.SubjectID)
	return c.Store.Insert(ctx, w)
}

func (c *CachedStore) DeleteByID(ctx context.Context, id int64) (int, error) {
	defer c.invalidateAll()
	return c.Store.DeleteByID(ctx, id)
}

func (c *CachedStore) DeleteBySubject(ctx context.Context, subjectID string) (int, error) {
	defer c.invalidate(subjectID)
	return c.Store.DeleteBySubject(ctx, subjectID)
}

// Flush drops every snapshot. Call it after changing the store behind the cache's back.
func (c *CachedStore) Flush() {
	c.invalidateAll()
}

// Len returns the number of cached subjects.
func (c *CachedStore) Len() int {
	return c.cache.Len()
}

// lookup serves a snapshot only when it was taken at or before now.
func (c *CachedStore) lookup(subjectID string, now time.Time) ([]models.Warn, bool) {
	snap, ok := c.cache.Get(subjectID)
	if !ok || now.Before(snap.at) {
		cacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	cacheLookups.WithLabelValues("hit").Inc()

	warns := make([]models.Warn, 0, len(snap.warns))
	for _, w := range snap.warns {
		if w.IsActive(now) {
			warns = append(warns, w)
		}
	}
	return warns, true
}

func (c *CachedStore) invalidate(subjectID string) {
	c.mu.Lock()
	c.gen++
	c.cache.Remove(subjectID)
	c.mu.Unlock()
}

func (c *CachedStore) invalidateAll() {
	c.mu.Lock()
	c.gen++
	c.cache.Purge()
	c.mu.Unlock()
}
