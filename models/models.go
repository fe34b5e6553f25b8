package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// --- Core Models ---

// Transaction represents a single retail sale record. Rows are immutable once
// ingested; transaction_id is the unique business key.
type Transaction struct {
	TransactionID   string    `json:"transactionId"`
	Date            string    `json:"date"` // calendar date, YYYY-MM-DD
	CustomerID      string    `json:"customerId"`
	CustomerName    string    `json:"customerName"`
	Phone           string    `json:"phone"`
	Region          string    `json:"region"`
	Gender          string    `json:"gender"`
	Age             int       `json:"age"`
	ProductID       string    `json:"productId"`
	ProductName     string    `json:"productName"`
	Category        string    `json:"category"`
	Brand           string    `json:"brand"`
	Tags            string    `json:"tags"` // comma-delimited
	Quantity        int       `json:"quantity"`
	UnitPrice       float64   `json:"unitPrice"`
	DiscountPct     float64   `json:"discountPercent"`
	GrossAmount     float64   `json:"grossAmount"`
	NetAmount       float64   `json:"netAmount"`
	PaymentMethod   string    `json:"paymentMethod"`
	OrderStatus     string    `json:"orderStatus"`
	DeliveryType    string    `json:"deliveryType"`
	SalespersonName string    `json:"salespersonName"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// FilterSpec describes a conjunctive query over transactions. A nil slice or
// nil pointer means the sub-filter is absent; values inside one slice combine
// with OR.
type FilterSpec struct {
	Regions        []string   `json:"regions,omitempty"`
	Genders        []string   `json:"genders,omitempty"`
	Categories     []string   `json:"categories,omitempty"`
	PaymentMethods []string   `json:"paymentMethods,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	AgeMin         *int       `json:"ageMin,omitempty"`
	AgeMax         *int       `json:"ageMax,omitempty"`
	DateFrom       *time.Time `json:"dateFrom,omitempty"`
	DateTo         *time.Time `json:"dateTo,omitempty"`
	Search         string     `json:"search,omitempty"`
}

// Sortable fields and directions. Anything else falls back to customer name
// ascending.
const (
	SortByDate         = "date"
	SortByQuantity     = "quantity"
	SortByCustomerName = "customerName"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// SortSpec pairs a sortable field with a direction.
type SortSpec struct {
	Field string `json:"sortBy"`
	Order string `json:"sortOrder"`
}

// Normalize maps unrecognized fields and directions to the documented
// fallback of customer name ascending.
func (s SortSpec) Normalize() SortSpec {
	switch s.Field {
	case SortByDate, SortByQuantity, SortByCustomerName:
	default:
		return SortSpec{Field: SortByCustomerName, Order: SortAsc}
	}
	if s.Order != SortAsc && s.Order != SortDesc {
		s.Order = SortAsc
	}
	return s
}

// Stats holds the aggregate metrics for a filtered set of transactions.
type Stats struct {
	TotalUnits    int64   `json:"totalUnits"`
	TotalAmount   float64 `json:"totalAmount"`
	TotalDiscount float64 `json:"totalDiscount"`
}

// FilterOptions lists the distinct values currently present in the table,
// used to populate filter controls.
type FilterOptions struct {
	Regions        []string `json:"regions"`
	Genders        []string `json:"genders"`
	Categories     []string `json:"categories"`
	PaymentMethods []string `json:"paymentMethods"`
	AgeMin         int      `json:"ageMin"`
	AgeMax         int      `json:"ageMax"`
	Tags           []string `json:"tags"`
}

// --- Ingestion ---

// Upload statuses.
const (
	UploadStatusProcessing = "processing"
	UploadStatusCompleted  = "completed"
	UploadStatusFailed     = "failed"
)

// UploadRecord tracks one bulk ingestion from start to finish.
type UploadRecord struct {
	ID           string    `json:"id"`
	FileName     string    `json:"fileName"`
	FileSize     int64     `json:"fileSize"`
	TotalRecords int       `json:"totalRecords"`
	Imported     int       `json:"imported"`
	Failed       int       `json:"failed"`
	Status       string    `json:"status"`
	ErrorMessage *string   `json:"errorMessage,omitempty"`
	UploadedBy   string    `json:"uploadedBy"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ImportSummary is the caller-facing result of a bulk ingestion.
type ImportSummary struct {
	Success      bool `json:"success"`
	TotalRecords int  `json:"totalRecords"`
	Imported     int  `json:"imported"`
	Errors       int  `json:"errors"`
}

// --- JWT & Auth ---

type JwtClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
