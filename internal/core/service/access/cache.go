package access

import (
	"context"
	"file-service/internal/core/domain"
	"file-service/internal/core/port"
	"file-service/internal/metrics"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// GrantCache keeps the active grants of recently checked files.
// Entries are per process, share and revoke invalidate them locally.
type GrantCache struct {
	cache   *expirable.LRU[uuid.UUID, []domain.ShareGrant]
	metrics *metrics.Metrics
}

// NewGrantCache creates a cache of size entries living ttl
func NewGrantCache(size int, ttl time.Duration, m *metrics.Metrics) *GrantCache {
	return &GrantCache{
		cache:   expirable.NewLRU[uuid.UUID, []domain.ShareGrant](size, nil, ttl),
		metrics: m,
	}
}

// Grants returns the active grants of fileID, loading them from repo on a miss
func (c *GrantCache) Grants(ctx context.Context, fileID uuid.UUID, repo port.ShareRepository) ([]domain.ShareGrant, error) {
	if grants, ok := c.cache.Get(fileID); ok {
		c.metrics.GrantCacheHits.Inc()
		return grants, nil
	}
	c.metrics.GrantCacheMisses.Inc()

	grants, err := repo.ListByFileID(ctx, fileID, true)
	if err != nil {
		return nil, err
	}
	c.cache.Add(fileID, grants)
	return grants, nil
}

// Invalidate drops the cached grants of fileID
func (c *GrantCache) Invalidate(fileID uuid.UUID) {
	c.cache.Remove(fileID)
}
