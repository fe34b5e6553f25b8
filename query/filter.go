package query

import (
	"fmt"
	"strings"

	"app/database"
	"app/models"
)

// BuildPredicate turns a filter specification into a store-level predicate.
// All sub-filters combine with AND; values inside one multi-select combine
// with OR. With no filters set the predicate matches everything.
func BuildPredicate(f models.FilterSpec) database.Predicate {
	whereClauses := []string{}
	args := []interface{}{}
	argCount := 0

	next := func(v interface{}) int {
		args = append(args, v)
		argCount++
		return argCount
	}

	if clause, ok := searchClause(f.Search, next); ok {
		whereClauses = append(whereClauses, clause)
	}

	if len(f.Tags) > 0 {
		orParts := make([]string, 0, len(f.Tags))
		for _, tag := range f.Tags {
			orParts = append(orParts, fmt.Sprintf("tags ILIKE $%d", next("%"+tag+"%")))
		}
		whereClauses = append(whereClauses, "("+strings.Join(orParts, " OR ")+")")
	}

	if len(f.Regions) > 0 {
		whereClauses = append(whereClauses, fmt.Sprintf("region = ANY($%d)", next(f.Regions)))
	}
	if len(f.Genders) > 0 {
		whereClauses = append(whereClauses, fmt.Sprintf("gender = ANY($%d)", next(f.Genders)))
	}
	if len(f.Categories) > 0 {
		whereClauses = append(whereClauses, fmt.Sprintf("category = ANY($%d)", next(f.Categories)))
	}
	if len(f.PaymentMethods) > 0 {
		whereClauses = append(whereClauses, fmt.Sprintf("payment_method = ANY($%d)", next(f.PaymentMethods)))
	}

	if f.AgeMin != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("age >= $%d", next(*f.AgeMin)))
	}
	if f.AgeMax != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("age <= $%d", next(*f.AgeMax)))
	}
	if f.DateFrom != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("date >= $%d", next(f.DateFrom.Format("2006-01-02"))))
	}
	if f.DateTo != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("date <= $%d", next(f.DateTo.Format("2006-01-02"))))
	}

	return database.Predicate{
		Where: strings.Join(whereClauses, " AND "),
		Args:  args,
	}
}

// searchClause routes a free-text term to an index-friendly prefix match.
// A 1-character term only tries the phone prefix. Terms of 2+ characters
// that are all digits match the phone prefix; anything else uses the first
// whitespace token as a case-insensitive customer-name prefix. Multi-word
// names therefore match on their first word only, trading correctness for
// an indexable lookup.
func searchClause(term string, next func(interface{}) int) (string, bool) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", false
	}

	runes := []rune(term)
	if len(runes) == 1 {
		return fmt.Sprintf("phone LIKE $%d", next(term+"%")), true
	}
	if isDigits(term) {
		return fmt.Sprintf("phone LIKE $%d", next(term+"%")), true
	}

	token := strings.Fields(term)[0]
	return fmt.Sprintf("customer_name ILIKE $%d", next(token+"%")), true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
