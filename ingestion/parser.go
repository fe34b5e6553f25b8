package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"app/models"

	"github.com/shopspring/decimal"
)

// columnAliases maps each logical field to the header spellings seen across
// historical export formats. Matching is case-insensitive and ignores
// spaces, underscores, and hyphens, so "Transaction ID", "transaction_id",
// and "TransactionID" all resolve to the same column.
var columnAliases = map[string][]string{
	"transactionId": {"Transaction ID", "TransactionID", "txn_id"},
	"date":          {"Date", "Transaction Date", "Sale Date"},
	"customerId":    {"Customer ID", "CustomerID", "cust_id"},
	"customerName":  {"Customer Name", "CustomerName", "Name"},
	"phone":         {"Phone", "Phone Number", "Mobile"},
	"region":        {"Region", "Customer Region", "Zone"},
	"gender":        {"Gender", "Sex"},
	"age":           {"Age", "Customer Age"},
	"productId":     {"Product ID", "ProductID", "prod_id"},
	"productName":   {"Product Name", "ProductName", "Item Name"},
	"category":      {"Category", "Product Category"},
	"brand":         {"Brand", "Product Brand"},
	"tags":          {"Tags", "Product Tags", "Labels"},
	"quantity":      {"Quantity", "Qty", "Units"},
	"unitPrice":     {"Unit Price", "UnitPrice", "Price Per Unit"},
	"discountPct":   {"Discount Percent", "Discount %", "Discount Pct", "discount_percent"},
	"grossAmount":   {"Gross Amount", "GrossAmount", "Total Amount"},
	"netAmount":     {"Net Amount", "NetAmount", "Final Amount"},
	"paymentMethod": {"Payment Method", "PaymentMethod", "Payment Type"},
	"orderStatus":   {"Order Status", "OrderStatus", "Status"},
	"deliveryType":  {"Delivery Type", "DeliveryType", "Shipping Type"},
	"salesperson":   {"Salesperson", "Sales Person", "Employee Name", "Sales Rep"},
}

// dateFormats accepted for the transaction date column. Unparseable dates
// default to the current date; completeness wins over strict validation.
var dateFormats = []string{
	"02-01-2006",
	"2-1-2006",
	"02/01/2006",
	"2006-01-02",
}

var errMissingBusinessKey = errors.New("row has no transaction id")

// resolveColumns matches the parsed header row against the alias table once
// per import, returning logical field -> column index.
func resolveColumns(header []string) map[string]int {
	byNorm := make(map[string]int, len(header))
	for i, cell := range header {
		byNorm[normalizeHeader(cell)] = i
	}

	cols := make(map[string]int, len(columnAliases))
	for field, aliases := range columnAliases {
		for _, alias := range aliases {
			if idx, ok := byNorm[normalizeHeader(alias)]; ok {
				cols[field] = idx
				break
			}
		}
	}
	return cols
}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-':
			return -1
		}
		return r
	}, s)
}

// Parse reads delimited tabular data with a header row and returns the
// normalized records plus the total number of data rows seen, including
// rows that were dropped during mapping. A missing or unreadable header is
// fatal; individual bad rows are not.
func Parse(r io.Reader) ([]models.Transaction, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("reading header row: %w", err)
	}
	cols := resolveColumns(header)
	if _, ok := cols["transactionId"]; !ok {
		return nil, 0, fmt.Errorf("header has no recognizable transaction id column")
	}

	var records []models.Transaction
	total := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				total++
				continue
			}
			return nil, total, fmt.Errorf("reading row: %w", err)
		}
		total++

		txn, err := mapRow(cols, row)
		if err != nil {
			continue
		}
		records = append(records, txn)
	}
	return records, total, nil
}

// mapRow coerces one raw row into a Transaction. Numeric fields default to
// zero and dates default to today; only a missing business key drops the
// row.
func mapRow(cols map[string]int, row []string) (models.Transaction, error) {
	get := func(field string) string {
		idx, ok := cols[field]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	id := get("transactionId")
	if id == "" {
		return models.Transaction{}, errMissingBusinessKey
	}

	return models.Transaction{
		TransactionID:   id,
		Date:            coerceDate(get("date")),
		CustomerID:      get("customerId"),
		CustomerName:    get("customerName"),
		Phone:           get("phone"),
		Region:          get("region"),
		Gender:          get("gender"),
		Age:             coerceInt(get("age")),
		ProductID:       get("productId"),
		ProductName:     get("productName"),
		Category:        get("category"),
		Brand:           get("brand"),
		Tags:            get("tags"),
		Quantity:        coerceInt(get("quantity")),
		UnitPrice:       coerceMoney(get("unitPrice")),
		DiscountPct:     coerceMoney(get("discountPct")),
		GrossAmount:     coerceMoney(get("grossAmount")),
		NetAmount:       coerceMoney(get("netAmount")),
		PaymentMethod:   get("paymentMethod"),
		OrderStatus:     get("orderStatus"),
		DeliveryType:    get("deliveryType"),
		SalespersonName: get("salesperson"),
	}, nil
}

func coerceInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func coerceMoney(s string) float64 {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

func coerceDate(s string) string {
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return time.Now().Format("2006-01-02")
}
