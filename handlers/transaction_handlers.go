package handlers

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"app/database"
	"app/models"
	"app/query"
	"app/stats"
	"app/utils"

	"github.com/gofiber/fiber/v2"
)

// TransactionHandler serves the read side: list, filter options, stats.
type TransactionHandler struct {
	Executor   *query.Executor
	Aggregator *stats.Aggregator
	Store      database.Store
}

func NewTransactionHandler(executor *query.Executor, aggregator *stats.Aggregator, store database.Store) *TransactionHandler {
	return &TransactionHandler{Executor: executor, Aggregator: aggregator, Store: store}
}

// HandleListTransactions returns one filtered, sorted page of transactions.
func (h *TransactionHandler) HandleListTransactions(c *fiber.Ctx) error {
	ctx := context.Background()

	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", 10)
	filters := parseFilters(c)
	sortSpec := models.SortSpec{
		Field: c.Query("sortBy", models.SortByCustomerName),
		Order: c.Query("sortOrder", models.SortAsc),
	}

	records, total, err := h.Executor.Run(ctx, filters, sortSpec, page, pageSize)
	if err != nil {
		log.Printf("❌ [TRANSACTIONS] query failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to retrieve transactions"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": fiber.Map{
		"records":    records,
		"pagination": utils.CreatePagination(total, page, pageSize),
	}})
}

// HandleFilterOptions returns the distinct values usable as filters.
func (h *TransactionHandler) HandleFilterOptions(c *fiber.Ctx) error {
	ctx := context.Background()

	options, err := query.FilterOptions(ctx, h.Store)
	if err != nil {
		log.Printf("❌ [TRANSACTIONS] filter options failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to retrieve filter options"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": options})
}

// HandleStats returns the aggregate metrics for the given filters.
func (h *TransactionHandler) HandleStats(c *fiber.Ctx) error {
	ctx := context.Background()

	result, err := h.Aggregator.Stats(ctx, parseFilters(c))
	if err != nil {
		log.Printf("❌ [STATS] aggregate failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to compute stats"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": result})
}

// parseFilters builds a FilterSpec from the request query string.
// Multi-value filters arrive comma-separated.
func parseFilters(c *fiber.Ctx) models.FilterSpec {
	return models.FilterSpec{
		Regions:        splitCSV(c.Query("regions")),
		Genders:        splitCSV(c.Query("genders")),
		Categories:     splitCSV(c.Query("categories")),
		PaymentMethods: splitCSV(c.Query("paymentMethods")),
		Tags:           splitCSV(c.Query("tags")),
		AgeMin:         intParam(c.Query("ageMin")),
		AgeMax:         intParam(c.Query("ageMax")),
		DateFrom:       dateParam(c.Query("dateFrom")),
		DateTo:         dateParam(c.Query("dateTo")),
		Search:         c.Query("search"),
	}
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	var values []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

func intParam(raw string) *int {
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

func dateParam(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, format := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(format, raw); err == nil {
			return &t
		}
	}
	return nil
}
