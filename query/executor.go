package query

import (
	"context"
	"log"
	"time"

	"app/database"
	"app/models"
)

// DefaultTimeout bounds every storage operation on the read path.
const DefaultTimeout = 15 * time.Second

// Executor runs predicates against storage with a deadline, degrading to an
// empty page instead of surfacing timeout errors.
type Executor struct {
	store   database.Store
	timeout time.Duration
}

func NewExecutor(store database.Store) *Executor {
	return &Executor{store: store, timeout: DefaultTimeout}
}

// NewExecutorWithTimeout exists for tests that need a short deadline.
func NewExecutorWithTimeout(store database.Store, timeout time.Duration) *Executor {
	return &Executor{store: store, timeout: timeout}
}

// Run executes (filters, sort, page) and returns one page of records plus
// the total match count. When the first page comes back shorter than
// pageSize the total is inferred from the rows, skipping the count query.
func (e *Executor) Run(ctx context.Context, filters models.FilterSpec, sort models.SortSpec, page, pageSize int) ([]models.Transaction, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	pred := BuildPredicate(filters)
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	records, err := e.store.SelectTransactions(ctx, pred, sort, pageSize, (page-1)*pageSize)
	if err != nil {
		if database.IsTimeout(err) {
			log.Printf("⏱️ [QUERY] fetch timed out, returning degraded empty page: %v", err)
			return []models.Transaction{}, 0, nil
		}
		return nil, 0, err
	}

	// The page is provably complete: the row count is the total count.
	if page == 1 && len(records) < pageSize {
		return records, len(records), nil
	}

	total, err := e.store.CountTransactions(ctx, pred)
	if err != nil {
		if database.IsTimeout(err) {
			log.Printf("⏱️ [QUERY] count timed out, returning degraded empty page: %v", err)
			return []models.Transaction{}, 0, nil
		}
		return nil, 0, err
	}
	return records, total, nil
}
