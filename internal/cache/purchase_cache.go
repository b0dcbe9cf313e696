package cache

import (
	"time"

	"github.com/fitforge/fitforge-web/internal/models"
	"github.com/fitforge/fitforge-web/pkg/logger"
	"github.com/fitforge/fitforge-web/pkg/metrics"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	purchaseCacheName       = "purchase_outcomes"
	purchaseCleanupInterval = time.Minute
)

// PurchaseCache remembers completed purchases by idempotency key so a
// resubmitted form returns the original outcome instead of buying twice.
// Only successful outcomes are stored; a failed attempt may be retried.
type PurchaseCache struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// NewPurchaseCache creates a cache whose entries live for ttlSeconds
func NewPurchaseCache(ttlSeconds int) *PurchaseCache {
	ttl := time.Duration(ttlSeconds) * time.Second
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	return &PurchaseCache{
		cache: gocache.New(ttl, purchaseCleanupInterval),
		ttl:   ttl,
	}
}

// Get returns the stored outcome for key
func (pc *PurchaseCache) Get(key string) (*models.PurchaseOutcome, bool) {
	data, found := pc.cache.Get(key)
	if !found {
		metrics.CacheMisses.WithLabelValues(purchaseCacheName).Inc()
		return nil, false
	}

	outcome, ok := data.(*models.PurchaseOutcome)
	if !ok {
		logger.Error("Invalid purchase cache data type", zap.String("key", key))
		pc.cache.Delete(key)
		metrics.CacheMisses.WithLabelValues(purchaseCacheName).Inc()
		return nil, false
	}

	metrics.CacheHits.WithLabelValues(purchaseCacheName).Inc()
	return outcome, true
}

// Put stores a successful outcome
func (pc *PurchaseCache) Put(key string, outcome *models.PurchaseOutcome) {
	pc.cache.Set(key, outcome, pc.ttl)
}

// Len returns the number of live entries
func (pc *PurchaseCache) Len() int {
	return pc.cache.ItemCount()
}
