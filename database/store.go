package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"app/models"
	"app/utils"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"
)

// Predicate is a composable condition over transactions: a WHERE fragment
// with positional args numbered from $1. An empty Where matches everything.
type Predicate struct {
	Where string
	Args  []interface{}
}

// Empty reports whether the predicate matches every row.
func (p Predicate) Empty() bool {
	return p.Where == ""
}

func (p Predicate) whereClause() string {
	if p.Where == "" {
		return ""
	}
	return " WHERE " + p.Where
}

// FacetValues carries the raw distinct values for the filter-options query.
// Tags come back as the stored delimited strings; splitting and deduplication
// happen in the query layer.
type FacetValues struct {
	Regions        []string
	Genders        []string
	Categories     []string
	PaymentMethods []string
	AgeMin         int
	AgeMax         int
	RawTags        []string
}

// Store is the storage collaborator for transactions and upload records.
// It is constructed once in main and injected everywhere it is needed.
type Store interface {
	SelectTransactions(ctx context.Context, pred Predicate, sort models.SortSpec, limit, offset int) ([]models.Transaction, error)
	CountTransactions(ctx context.Context, pred Predicate) (int, error)
	AggregateTransactions(ctx context.Context, pred Predicate) (models.Stats, error)
	FacetValues(ctx context.Context) (FacetValues, error)
	InsertTransactions(ctx context.Context, recs []models.Transaction) (int64, error)
	CreateUpload(ctx context.Context, u *models.UploadRecord) error
	UpdateUpload(ctx context.Context, u *models.UploadRecord) error
	ListUploads(ctx context.Context, limit int) ([]models.UploadRecord, error)
	Ping(ctx context.Context) error
}

// PgStore implements Store on a pgx connection pool.
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

const transactionColumns = `transaction_id, date, customer_id, customer_name, phone, region, gender, age,
		product_id, product_name, category, brand, tags, quantity, unit_price, discount_pct,
		gross_amount, net_amount, payment_method, order_status, delivery_type, salesperson_name,
		created_at, updated_at`

// sortColumns whitelists ORDER BY targets; anything else never reaches SQL
// because SortSpec.Normalize runs first.
var sortColumns = map[string]string{
	models.SortByDate:         "date",
	models.SortByQuantity:     "quantity",
	models.SortByCustomerName: "customer_name",
}

func (s *PgStore) SelectTransactions(ctx context.Context, pred Predicate, sort models.SortSpec, limit, offset int) ([]models.Transaction, error) {
	sort = sort.Normalize()
	col := sortColumns[sort.Field]
	dir := "ASC"
	if sort.Order == models.SortDesc {
		dir = "DESC"
	}

	n := len(pred.Args)
	query := fmt.Sprintf(`
		SELECT %s
		FROM transactions%s
		ORDER BY %s %s, transaction_id ASC
		LIMIT $%d OFFSET $%d
	`, transactionColumns, pred.whereClause(), col, dir, n+1, n+2)

	args := append(append([]interface{}{}, pred.Args...), limit, offset)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("selecting transactions: %w", err)
	}
	defer rows.Close()

	records := make([]models.Transaction, 0, limit)
	for rows.Next() {
		var txn models.Transaction
		var date time.Time
		if err := rows.Scan(
			&txn.TransactionID, &date, &txn.CustomerID, &txn.CustomerName, &txn.Phone,
			&txn.Region, &txn.Gender, &txn.Age, &txn.ProductID, &txn.ProductName,
			&txn.Category, &txn.Brand, &txn.Tags, &txn.Quantity, &txn.UnitPrice,
			&txn.DiscountPct, &txn.GrossAmount, &txn.NetAmount, &txn.PaymentMethod,
			&txn.OrderStatus, &txn.DeliveryType, &txn.SalespersonName,
			&txn.CreatedAt, &txn.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		txn.Date = date.Format("2006-01-02")
		records = append(records, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading transactions: %w", err)
	}
	return records, nil
}

func (s *PgStore) CountTransactions(ctx context.Context, pred Predicate) (int, error) {
	query := "SELECT COUNT(*) FROM transactions" + pred.whereClause()
	var total int
	if err := s.pool.QueryRow(ctx, query, pred.Args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("counting transactions: %w", err)
	}
	return total, nil
}

// AggregateTransactions computes the three stats totals in a single pass.
// The money sums come back as text so the NUMERIC values survive the trip
// intact before the final float conversion.
func (s *PgStore) AggregateTransactions(ctx context.Context, pred Predicate) (models.Stats, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0),
		       COALESCE(SUM(gross_amount), 0)::text,
		       COALESCE(SUM(gross_amount - net_amount), 0)::text
		FROM transactions` + pred.whereClause()

	var stats models.Stats
	var amount, discount string
	if err := s.pool.QueryRow(ctx, query, pred.Args...).Scan(&stats.TotalUnits, &amount, &discount); err != nil {
		return models.Stats{}, fmt.Errorf("aggregating transactions: %w", err)
	}

	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return models.Stats{}, fmt.Errorf("parsing total amount %q: %w", amount, err)
	}
	disc, err := decimal.NewFromString(discount)
	if err != nil {
		return models.Stats{}, fmt.Errorf("parsing total discount %q: %w", discount, err)
	}
	stats.TotalAmount = amt.InexactFloat64()
	stats.TotalDiscount = disc.InexactFloat64()
	return stats, nil
}

func (s *PgStore) FacetValues(ctx context.Context) (FacetValues, error) {
	var fv FacetValues

	distinct := func(column string, dest *[]string) error {
		query := fmt.Sprintf("SELECT DISTINCT %s FROM transactions WHERE %s <> '' ORDER BY %s", column, column, column)
		rows, err := s.pool.Query(ctx, query)
		if err != nil {
			return fmt.Errorf("distinct %s: %w", column, err)
		}
		defer rows.Close()
		for rows.Next() {
			var v string
			if err := rows.Scan(&v); err != nil {
				return fmt.Errorf("scanning %s: %w", column, err)
			}
			*dest = append(*dest, v)
		}
		return rows.Err()
	}

	if err := distinct("region", &fv.Regions); err != nil {
		return fv, err
	}
	if err := distinct("gender", &fv.Genders); err != nil {
		return fv, err
	}
	if err := distinct("category", &fv.Categories); err != nil {
		return fv, err
	}
	if err := distinct("payment_method", &fv.PaymentMethods); err != nil {
		return fv, err
	}
	if err := distinct("tags", &fv.RawTags); err != nil {
		return fv, err
	}

	ageQuery := "SELECT COALESCE(MIN(age), 0), COALESCE(MAX(age), 0) FROM transactions"
	if err := s.pool.QueryRow(ctx, ageQuery).Scan(&fv.AgeMin, &fv.AgeMax); err != nil {
		return fv, fmt.Errorf("age bounds: %w", err)
	}
	return fv, nil
}

// InsertTransactions bulk-inserts one batch, silently skipping rows whose
// transaction_id already exists. Returns the number of rows actually
// inserted.
func (s *PgStore) InsertTransactions(ctx context.Context, recs []models.Transaction) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	const cols = 22
	var sb strings.Builder
	sb.WriteString(`
		INSERT INTO transactions (transaction_id, date, customer_id, customer_name, phone, region, gender, age,
			product_id, product_name, category, brand, tags, quantity, unit_price, discount_pct,
			gross_amount, net_amount, payment_method, order_status, delivery_type, salesperson_name)
		VALUES `)

	args := make([]interface{}, 0, len(recs)*cols)
	for i, r := range recs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j := 0; j < cols; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", i*cols+j+1)
		}
		sb.WriteString(")")
		args = append(args,
			r.TransactionID, r.Date, r.CustomerID, r.CustomerName, r.Phone, r.Region, r.Gender, r.Age,
			r.ProductID, r.ProductName, r.Category, r.Brand, r.Tags, r.Quantity, r.UnitPrice, r.DiscountPct,
			r.GrossAmount, r.NetAmount, r.PaymentMethod, r.OrderStatus, r.DeliveryType, r.SalespersonName,
		)
	}
	sb.WriteString(" ON CONFLICT (transaction_id) DO NOTHING")

	tag, err := s.pool.Exec(ctx, sb.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("inserting transaction batch: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PgStore) CreateUpload(ctx context.Context, u *models.UploadRecord) error {
	query := `
		INSERT INTO upload_records (id, file_name, file_size, total_records, imported, failed, status, error_message, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	if err := s.pool.QueryRow(ctx, query,
		u.ID, u.FileName, u.FileSize, u.TotalRecords, u.Imported, u.Failed, u.Status, u.ErrorMessage, u.UploadedBy,
	).Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		return fmt.Errorf("creating upload record: %w", err)
	}
	return nil
}

func (s *PgStore) UpdateUpload(ctx context.Context, u *models.UploadRecord) error {
	query := `
		UPDATE upload_records
		SET total_records = $2, imported = $3, failed = $4, status = $5, error_message = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := s.pool.QueryRow(ctx, query,
		u.ID, u.TotalRecords, u.Imported, u.Failed, u.Status, u.ErrorMessage,
	).Scan(&u.UpdatedAt); err != nil {
		return fmt.Errorf("updating upload record: %w", err)
	}
	return nil
}

func (s *PgStore) ListUploads(ctx context.Context, limit int) ([]models.UploadRecord, error) {
	query := `
		SELECT id, file_name, file_size, total_records, imported, failed, status, error_message, uploaded_by, created_at, updated_at
		FROM upload_records
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing upload records: %w", err)
	}
	defer rows.Close()

	var uploads []models.UploadRecord
	for rows.Next() {
		var u models.UploadRecord
		var errMsg sql.NullString
		if err := rows.Scan(
			&u.ID, &u.FileName, &u.FileSize, &u.TotalRecords, &u.Imported, &u.Failed,
			&u.Status, &errMsg, &u.UploadedBy, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning upload record: %w", err)
		}
		u.ErrorMessage = utils.NullStringToStringPtr(errMsg)
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}

func (s *PgStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
