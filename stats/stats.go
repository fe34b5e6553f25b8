// Package stats computes aggregate sales metrics behind a short-lived cache.
package stats

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"time"

	"app/cache"
	"app/database"
	"app/models"
	"app/query"
)

// TTL is the absolute lifetime of a cached stats value.
const TTL = 30 * time.Second

// Aggregator answers stats queries, consulting the cache before storage.
type Aggregator struct {
	store   database.Store
	cache   *cache.Cache
	ttl     time.Duration
	timeout time.Duration
}

func NewAggregator(store database.Store, c *cache.Cache) *Aggregator {
	return &Aggregator{store: store, cache: c, ttl: TTL, timeout: query.DefaultTimeout}
}

// Stats returns total units, total gross amount, and total discount
// (gross minus net) over all records matching the filters. Results are
// cached for the TTL; a storage timeout degrades to zeros without caching.
func (a *Aggregator) Stats(ctx context.Context, filters models.FilterSpec) (models.Stats, error) {
	key := CacheKey("stats", filters)
	if v, ok := a.cache.Get(key); ok {
		return v.(models.Stats), nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	pred := query.BuildPredicate(filters)
	result, err := a.store.AggregateTransactions(ctx, pred)
	if err != nil {
		if database.IsTimeout(err) {
			log.Printf("⏱️ [STATS] aggregate timed out, returning degraded zero stats: %v", err)
			return models.Stats{}, nil
		}
		return models.Stats{}, err
	}

	a.cache.Set(key, result, a.ttl)
	return result, nil
}

// CacheKey derives a deterministic key from an operation name and a filter
// specification. Every multi-select is sorted before serialization so
// logically identical filters produce identical keys regardless of input
// order.
func CacheKey(op string, f models.FilterSpec) string {
	f.Regions = sortedCopy(f.Regions)
	f.Genders = sortedCopy(f.Genders)
	f.Categories = sortedCopy(f.Categories)
	f.PaymentMethods = sortedCopy(f.PaymentMethods)
	f.Tags = sortedCopy(f.Tags)

	b, err := json.Marshal(f)
	if err != nil {
		// FilterSpec contains only marshalable fields.
		return op + ":unserializable"
	}
	return op + ":" + string(b)
}

func sortedCopy(values []string) []string {
	if len(values) == 0 {
		return values
	}
	out := append([]string(nil), values...)
	sort.Strings(out)
	return out
}
