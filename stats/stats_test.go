package stats

import (
	"context"
	"fmt"
	"testing"
	"time"

	"app/cache"
	"app/database"
	"app/models"

	"github.com/stretchr/testify/assert"
)

type fakeStore struct {
	aggregateFn    func(ctx context.Context, pred database.Predicate) (models.Stats, error)
	aggregateCalls int
}

func (f *fakeStore) AggregateTransactions(ctx context.Context, pred database.Predicate) (models.Stats, error) {
	f.aggregateCalls++
	return f.aggregateFn(ctx, pred)
}

func (f *fakeStore) SelectTransactions(ctx context.Context, pred database.Predicate, s models.SortSpec, limit, offset int) ([]models.Transaction, error) {
	return nil, nil
}
func (f *fakeStore) CountTransactions(ctx context.Context, pred database.Predicate) (int, error) {
	return 0, nil
}
func (f *fakeStore) FacetValues(ctx context.Context) (database.FacetValues, error) {
	return database.FacetValues{}, nil
}
func (f *fakeStore) InsertTransactions(ctx context.Context, recs []models.Transaction) (int64, error) {
	return 0, nil
}
func (f *fakeStore) CreateUpload(ctx context.Context, u *models.UploadRecord) error { return nil }
func (f *fakeStore) UpdateUpload(ctx context.Context, u *models.UploadRecord) error { return nil }
func (f *fakeStore) ListUploads(ctx context.Context, limit int) ([]models.UploadRecord, error) {
	return nil, nil
}
func (f *fakeStore) Ping(ctx context.Context) error { return nil }

func TestCacheKeyIsOrderIndependent(t *testing.T) {
	ageMin := 18
	a := models.FilterSpec{
		Regions: []string{"North", "South"},
		Tags:    []string{"VIP", "new"},
		AgeMin:  &ageMin,
	}
	b := models.FilterSpec{
		Regions: []string{"South", "North"},
		Tags:    []string{"new", "VIP"},
		AgeMin:  &ageMin,
	}

	assert.Equal(t, CacheKey("stats", a), CacheKey("stats", b))
}

func TestCacheKeyDistinguishesFilters(t *testing.T) {
	a := models.FilterSpec{Regions: []string{"North"}}
	b := models.FilterSpec{Regions: []string{"South"}}
	assert.NotEqual(t, CacheKey("stats", a), CacheKey("stats", b))
	assert.NotEqual(t, CacheKey("stats", a), CacheKey("options", a))
}

func TestCacheKeyDoesNotMutateInput(t *testing.T) {
	f := models.FilterSpec{Regions: []string{"South", "North"}}
	CacheKey("stats", f)
	assert.Equal(t, []string{"South", "North"}, f.Regions)
}

func TestStatsCachesOnMiss(t *testing.T) {
	c := cache.New(0)
	store := &fakeStore{
		aggregateFn: func(ctx context.Context, pred database.Predicate) (models.Stats, error) {
			return models.Stats{TotalUnits: 7, TotalAmount: 120.5, TotalDiscount: 9.5}, nil
		},
	}
	agg := NewAggregator(store, c)

	first, err := agg.Stats(context.Background(), models.FilterSpec{})
	assert.NoError(t, err)
	assert.Equal(t, int64(7), first.TotalUnits)

	second, err := agg.Stats(context.Background(), models.FilterSpec{})
	assert.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.aggregateCalls, "cache hit must not touch storage")
}

func TestStatsRecomputesAfterClear(t *testing.T) {
	c := cache.New(0)
	store := &fakeStore{
		aggregateFn: func(ctx context.Context, pred database.Predicate) (models.Stats, error) {
			return models.Stats{TotalUnits: 1}, nil
		},
	}
	agg := NewAggregator(store, c)

	_, _ = agg.Stats(context.Background(), models.FilterSpec{})
	c.Clear()
	_, _ = agg.Stats(context.Background(), models.FilterSpec{})

	assert.Equal(t, 2, store.aggregateCalls)
}

func TestStatsRecomputesAfterTTL(t *testing.T) {
	c := cache.New(0)
	store := &fakeStore{
		aggregateFn: func(ctx context.Context, pred database.Predicate) (models.Stats, error) {
			return models.Stats{TotalUnits: 1}, nil
		},
	}
	agg := NewAggregator(store, c)
	agg.ttl = 30 * time.Millisecond

	_, _ = agg.Stats(context.Background(), models.FilterSpec{})
	_, _ = agg.Stats(context.Background(), models.FilterSpec{})
	assert.Equal(t, 1, store.aggregateCalls, "still cached inside the TTL")

	time.Sleep(40 * time.Millisecond)

	_, _ = agg.Stats(context.Background(), models.FilterSpec{})
	assert.Equal(t, 2, store.aggregateCalls, "recomputed after the TTL elapsed")
}

func TestStatsDegradesOnTimeoutWithoutCaching(t *testing.T) {
	c := cache.New(0)
	store := &fakeStore{
		aggregateFn: func(ctx context.Context, pred database.Predicate) (models.Stats, error) {
			return models.Stats{}, fmt.Errorf("aggregating: %w", context.DeadlineExceeded)
		},
	}
	agg := NewAggregator(store, c)

	result, err := agg.Stats(context.Background(), models.FilterSpec{})
	assert.NoError(t, err, "timeout must not surface as an error")
	assert.Equal(t, models.Stats{}, result)
	assert.Equal(t, 0, c.Len(), "degraded result must not be cached")
}

func TestStatsPropagatesFatalErrors(t *testing.T) {
	c := cache.New(0)
	store := &fakeStore{
		aggregateFn: func(ctx context.Context, pred database.Predicate) (models.Stats, error) {
			return models.Stats{}, fmt.Errorf("relation does not exist")
		},
	}
	agg := NewAggregator(store, c)

	_, err := agg.Stats(context.Background(), models.FilterSpec{})
	assert.Error(t, err)
}
