// Package querybuilder turns transaction list/stats query strings into
// parameterized MySQL statements.
package querybuilder

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// TransactionFilter is the parsed form of the list and stats query string.
// Zero values mean "not filtered".
type TransactionFilter struct {
	StartDate        string
	EndDate          string
	Month            int
	Year             int
	Purpose          string
	SortOrder        SortOrder
	IncludeWithdrawn bool
}

// FilterError reports a malformed query parameter.
type FilterError struct {
	Param string
	Value string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Param, e.Value)
}

func ParseTransactionFilter(q url.Values) (TransactionFilter, error) {
	f := TransactionFilter{
		Purpose:          q.Get("purpose"),
		SortOrder:        SortDesc,
		IncludeWithdrawn: q.Get("includeWithdrawn") == "true",
	}

	if q.Get("sortOrder") == "asc" {
		f.SortOrder = SortAsc
	}

	for _, p := range []struct {
		name string
		dst  *string
	}{{"startDate", &f.StartDate}, {"endDate", &f.EndDate}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, v); err != nil {
			return TransactionFilter{}, &FilterError{Param: p.name, Value: v}
		}
		*p.dst = v
	}

	if v := q.Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return TransactionFilter{}, &FilterError{Param: "month", Value: v}
		}
		f.Month = m
	}

	if v := q.Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 || y > 9999 {
			return TransactionFilter{}, &FilterError{Param: "year", Value: v}
		}
		f.Year = y
	}

	return f, nil
}

// Where renders the shared predicate. Withdrawn rows are excluded unless
// includeWithdrawn is set.
func (f TransactionFilter) Where(includeWithdrawn bool) (string, []interface{}) {
	var sb strings.Builder
	args := []interface{}{}

	sb.WriteString(" WHERE 1=1")

	if !includeWithdrawn {
		sb.WriteString(" AND (withdrawn IS NULL OR withdrawn = 0)")
	}

	switch {
	case f.StartDate != "" && f.EndDate != "":
		sb.WriteString(" AND transaction_date BETWEEN ? AND ?")
		args = append(args, f.StartDate, f.EndDate)
	case f.StartDate != "":
		sb.WriteString(" AND transaction_date >= ?")
		args = append(args, f.StartDate)
	case f.EndDate != "":
		sb.WriteString(" AND transaction_date <= ?")
		args = append(args, f.EndDate)
	}

	if f.Month != 0 {
		sb.WriteString(" AND MONTH(transaction_date) = ?")
		args = append(args, f.Month)
	}
	if f.Year != 0 {
		sb.WriteString(" AND YEAR(transaction_date) = ?")
		args = append(args, f.Year)
	}

	if f.Purpose != "" {
		sb.WriteString(" AND purpose = ?")
		args = append(args, f.Purpose)
	}

	return sb.String(), args
}

const transactionColumns = "id, type, amount, transaction_date, purpose, description, payment_type, withdrawn, created_at, updated_at"

func ListTransactions(f TransactionFilter) (string, []interface{}) {
	where, args := f.Where(f.IncludeWithdrawn)

	order := f.SortOrder
	if order != SortAsc {
		order = SortDesc
	}

	query := "SELECT " + transactionColumns + " FROM transactions" + where +
		fmt.Sprintf(" ORDER BY transaction_date %s, created_at %s", order, order)
	return query, args
}

// SumByType sums amount for one transaction type. Withdrawn rows never count.
func SumByType(f TransactionFilter, txType string) (string, []interface{}) {
	where, args := f.Where(false)
	query := "SELECT COALESCE(SUM(amount), 0) AS total FROM transactions" + where + " AND type = ?"
	return query, append(args, txType)
}
