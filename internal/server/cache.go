package server

import (
	"time"

	"github.com/maypok86/otter/v2"

	"github.com/fluxdiary/fluxdiary/internal/engine"
)

// trendsKey identifies one trends computation. Any write to the store bumps
// the revision, so stale results are never served for new data.
type trendsKey struct {
	revision int64
	window   engine.Window
	target   float64
	timezone string
}

type trendsCache struct {
	cache *otter.Cache[trendsKey, engine.TrendsAnalysis]
}

func newTrendsCache(size int, ttl time.Duration) *trendsCache {
	if size <= 0 {
		size = 1024
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &trendsCache{
		cache: otter.Must(&otter.Options[trendsKey, engine.TrendsAnalysis]{
			MaximumSize:      size,
			InitialCapacity:  min(size, 64),
			ExpiryCalculator: otter.ExpiryWriting[trendsKey, engine.TrendsAnalysis](ttl),
		}),
	}
}

func (c *trendsCache) get(k trendsKey) (engine.TrendsAnalysis, bool) {
	return c.cache.GetIfPresent(k)
}

func (c *trendsCache) set(k trendsKey, t engine.TrendsAnalysis) {
	c.cache.Set(k, t)
}

func (c *trendsCache) size() int {
	return c.cache.EstimatedSize()
}
