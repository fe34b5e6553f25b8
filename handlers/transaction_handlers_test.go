package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"app/cache"
	"app/database"
	"app/ingestion"
	"app/models"
	"app/query"
	"app/stats"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

type fakeStore struct {
	records []models.Transaction
	stats   models.Stats
}

func (f *fakeStore) SelectTransactions(ctx context.Context, pred database.Predicate, s models.SortSpec, limit, offset int) ([]models.Transaction, error) {
	return f.records, nil
}
func (f *fakeStore) CountTransactions(ctx context.Context, pred database.Predicate) (int, error) {
	return len(f.records), nil
}
func (f *fakeStore) AggregateTransactions(ctx context.Context, pred database.Predicate) (models.Stats, error) {
	return f.stats, nil
}
func (f *fakeStore) FacetValues(ctx context.Context) (database.FacetValues, error) {
	return database.FacetValues{RawTags: []string{"VIP,new"}}, nil
}
func (f *fakeStore) InsertTransactions(ctx context.Context, recs []models.Transaction) (int64, error) {
	return int64(len(recs)), nil
}
func (f *fakeStore) CreateUpload(ctx context.Context, u *models.UploadRecord) error { return nil }
func (f *fakeStore) UpdateUpload(ctx context.Context, u *models.UploadRecord) error { return nil }
func (f *fakeStore) ListUploads(ctx context.Context, limit int) ([]models.UploadRecord, error) {
	return nil, nil
}
func (f *fakeStore) Ping(ctx context.Context) error { return nil }

func testApp(store database.Store) *fiber.App {
	c := cache.New(0)
	h := NewTransactionHandler(query.NewExecutor(store), stats.NewAggregator(store, c), store)
	u := NewUploadHandler(ingestion.NewPipeline(store, c), store)

	app := fiber.New()
	app.Get("/api/v1/transactions", h.HandleListTransactions)
	app.Get("/api/v1/transactions/filter-options", h.HandleFilterOptions)
	app.Get("/api/v1/transactions/stats", h.HandleStats)
	app.Post("/api/v1/transactions/upload", u.HandleUploadTransactions)
	return app
}

func TestListTransactionsReturnsPageWithPagination(t *testing.T) {
	store := &fakeStore{records: []models.Transaction{
		{TransactionID: "TXN001", CustomerName: "Aung"},
		{TransactionID: "TXN002", CustomerName: "Thiri"},
	}}
	app := testApp(store)

	req := httptest.NewRequest("GET", "/api/v1/transactions?page=1&pageSize=10", nil)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body struct {
		Status string `json:"status"`
		Data   struct {
			Records    []models.Transaction `json:"records"`
			Pagination struct {
				TotalItems int `json:"totalItems"`
				TotalPages int `json:"totalPages"`
			} `json:"pagination"`
		} `json:"data"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "success", body.Status)
	assert.Len(t, body.Data.Records, 2)
	assert.Equal(t, 2, body.Data.Pagination.TotalItems)
	assert.Equal(t, 1, body.Data.Pagination.TotalPages)
}

func TestStatsEndpoint(t *testing.T) {
	store := &fakeStore{stats: models.Stats{TotalUnits: 5, TotalAmount: 100, TotalDiscount: 10}}
	app := testApp(store)

	req := httptest.NewRequest("GET", "/api/v1/transactions/stats?regions=North", nil)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body struct {
		Data models.Stats `json:"data"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, int64(5), body.Data.TotalUnits)
}

func TestFilterOptionsEndpointSplitsTags(t *testing.T) {
	app := testApp(&fakeStore{})

	req := httptest.NewRequest("GET", "/api/v1/transactions/filter-options", nil)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body struct {
		Data models.FilterOptions `json:"data"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"VIP", "new"}, body.Data.Tags)
}

func TestUploadWithoutFileIsRejected(t *testing.T) {
	app := testApp(&fakeStore{})

	req := httptest.NewRequest("POST", "/api/v1/transactions/upload", nil)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestSplitCSV(t *testing.T) {
	assert.Nil(t, splitCSV(""))
	assert.Equal(t, []string{"North", "South"}, splitCSV("North, South"))
	assert.Equal(t, []string{"North"}, splitCSV("North,,"))
}

func TestIntParam(t *testing.T) {
	assert.Nil(t, intParam(""))
	assert.Nil(t, intParam("abc"))
	if assert.NotNil(t, intParam("25")) {
		assert.Equal(t, 25, *intParam("25"))
	}
}

func TestDateParam(t *testing.T) {
	assert.Nil(t, dateParam(""))
	assert.Nil(t, dateParam("not-a-date"))
	got := dateParam("2024-03-05")
	if assert.NotNil(t, got) {
		assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), *got)
	}
}
