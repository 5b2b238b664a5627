package transactions

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"moneymigo/internal/repositories/sqlconnect"
	"moneymigo/pkg/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "type", "amount", "transaction_date", "purpose", "description", "payment_type", "withdrawn", "created_at", "updated_at"}

func setupDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	utils.Logger.Out = io.Discard

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlconnect.DB = db
	t.Cleanup(func() {
		sqlconnect.DB = nil
		db.Close()
	})
	return mock
}

func withID(r *http.Request, id string) *http.Request {
	r.SetPathValue("id", id)
	return r
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body["error"]
}

func TestGetAllTransactionsDefaultFilter(t *testing.T) {
	mock := setupDB(t)

	rows := sqlmock.NewRows(columns).
		AddRow(2, "expense", "120.50", "2024-03-07", "groceries", nil, "upi", 0, "2024-03-07 10:00:00", "2024-03-07 10:00:00").
		AddRow(1, "income", "500.00", "2024-03-05", "salary", "march pay", "cash", 0, "2024-03-05 09:00:00", "2024-03-05 09:00:00")
	mock.ExpectQuery(regexp.QuoteMeta("FROM transactions WHERE 1=1 AND (withdrawn IS NULL OR withdrawn = 0) ORDER BY transaction_date DESC, created_at DESC")).
		WithoutArgs().
		WillReturnRows(rows)

	rr := httptest.NewRecorder()
	GetAllTransactions(rr, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[
		{"id":2,"type":"expense","amount":120.5,"transaction_date":"2024-03-07","purpose":"groceries","description":null,"payment_type":"upi","withdrawn":false,"created_at":"2024-03-07 10:00:00","updated_at":"2024-03-07 10:00:00"},
		{"id":1,"type":"income","amount":500,"transaction_date":"2024-03-05","purpose":"salary","description":"march pay","payment_type":"cash","withdrawn":false,"created_at":"2024-03-05 09:00:00","updated_at":"2024-03-05 09:00:00"}
	]`, rr.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllTransactionsWithFilters(t *testing.T) {
	mock := setupDB(t)

	rows := sqlmock.NewRows(columns).
		AddRow(9, "expense", "1000.00", "2024-03-01", "investment", nil, "card", 1, "2024-03-01 08:00:00", "2024-03-02 08:00:00")
	mock.ExpectQuery(regexp.QuoteMeta("FROM transactions WHERE 1=1 AND transaction_date BETWEEN ? AND ? AND MONTH(transaction_date) = ? AND YEAR(transaction_date) = ? AND purpose = ? ORDER BY transaction_date ASC, created_at ASC")).
		WithArgs("2024-03-01", "2024-03-31", 3, 2024, "investment").
		WillReturnRows(rows)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/transactions?startDate=2024-03-01&endDate=2024-03-31&month=3&year=2024&purpose=investment&sortOrder=asc&includeWithdrawn=true", nil)
	GetAllTransactions(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, true, got[0]["withdrawn"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllTransactionsEmptyIsArray(t *testing.T) {
	mock := setupDB(t)
	mock.ExpectQuery("SELECT (.+) FROM transactions").WillReturnRows(sqlmock.NewRows(columns))

	rr := httptest.NewRecorder()
	GetAllTransactions(rr, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))
}

func TestGetAllTransactionsBadFilter(t *testing.T) {
	mock := setupDB(t)

	rr := httptest.NewRecorder()
	GetAllTransactions(rr, httptest.NewRequest(http.MethodGet, "/api/transactions?month=13", nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, `invalid month: "13"`, decodeError(t, rr))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllTransactionsDBError(t *testing.T) {
	mock := setupDB(t)
	mock.ExpectQuery("SELECT (.+) FROM transactions").WillReturnError(errors.New("connection refused"))

	rr := httptest.NewRecorder()
	GetAllTransactions(rr, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Failed to fetch transactions", decodeError(t, rr))
}

func TestHandlersWithoutDB(t *testing.T) {
	sqlconnect.DB = nil
	utils.Logger.Out = io.Discard

	rr := httptest.NewRecorder()
	GetAllTransactions(rr, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	rr = httptest.NewRecorder()
	GetTransactionStats(rr, httptest.NewRequest(http.MethodGet, "/api/transactions/stats", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

const createBody = `{"type":"income","amount":500,"transaction_date":"2024-03-05","purpose":"salary","payment_type":"cash"}`

func TestCreateTransaction(t *testing.T) {
	mock := setupDB(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO transactions (type, amount, transaction_date, purpose, description, payment_type) VALUES (?, ?, ?, ?, ?, ?)")).
		WithArgs("income", "500", "2024-03-05", "salary", nil, "cash").
		WillReturnResult(sqlmock.NewResult(42, 1))

	rr := httptest.NewRecorder()
	CreateTransaction(rr, httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(createBody)))

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"id":42,"type":"income","amount":500,"transaction_date":"2024-03-05","purpose":"salary","description":null,"payment_type":"cash","withdrawn":false}`, rr.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTransactionValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty body", ``, "request body is required"},
		{"malformed", `{"type":`, "invalid request body"},
		{"unknown field", `{"type":"income","amount":1,"transaction_date":"2024-03-05","payment_type":"cash","withdrawn":true}`, "unknown field"},
		{"bad type", `{"type":"transfer","amount":1,"transaction_date":"2024-03-05","payment_type":"cash"}`, "type must be one of: income, expense"},
		{"missing amount", `{"type":"income","transaction_date":"2024-03-05","payment_type":"cash"}`, "amount is required"},
		{"negative amount", `{"type":"expense","amount":-3,"transaction_date":"2024-03-05","payment_type":"cash"}`, "amount must be at least 0"},
		{"bad date", `{"type":"income","amount":1,"transaction_date":"05-03-2024","payment_type":"cash"}`, "transaction_date must be a date in YYYY-MM-DD format"},
		{"missing payment type", `{"type":"income","amount":1,"transaction_date":"2024-03-05"}`, "payment_type is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := setupDB(t)

			rr := httptest.NewRecorder()
			CreateTransaction(rr, httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(tt.body)))

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, decodeError(t, rr), tt.want)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreateTransactionDBError(t *testing.T) {
	mock := setupDB(t)
	mock.ExpectExec("INSERT INTO transactions").WillReturnError(errors.New("lost connection"))

	rr := httptest.NewRecorder()
	CreateTransaction(rr, httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(createBody)))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Failed to create transaction", decodeError(t, rr))
}

func TestUpdateTransaction(t *testing.T) {
	mock := setupDB(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE transactions SET type = ?, amount = ?, transaction_date = ?, purpose = ?, description = ?, payment_type = ? WHERE id = ?")).
		WithArgs("expense", "75.25", "2024-03-06", nil, "bus pass", "upi", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	body := `{"type":"expense","amount":"75.25","transaction_date":"2024-03-06","description":"bus pass","payment_type":"upi"}`
	rr := httptest.NewRecorder()
	UpdateTransaction(rr, withID(httptest.NewRequest(http.MethodPut, "/api/transactions/7", strings.NewReader(body)), "7"))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id":7,"type":"expense","amount":75.25,"transaction_date":"2024-03-06","purpose":null,"description":"bus pass","payment_type":"upi","withdrawn":false}`, rr.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTransactionNotFound(t *testing.T) {
	mock := setupDB(t)
	mock.ExpectExec("UPDATE transactions SET").WillReturnResult(sqlmock.NewResult(0, 0))

	rr := httptest.NewRecorder()
	UpdateTransaction(rr, withID(httptest.NewRequest(http.MethodPut, "/api/transactions/99", strings.NewReader(createBody)), "99"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Transaction not found", decodeError(t, rr))
}

func TestUpdateTransactionBadID(t *testing.T) {
	setupDB(t)

	for _, id := range []string{"abc", "0", "-4"} {
		rr := httptest.NewRecorder()
		UpdateTransaction(rr, withID(httptest.NewRequest(http.MethodPut, "/api/transactions/"+id, strings.NewReader(createBody)), id))
		assert.Equal(t, http.StatusBadRequest, rr.Code, id)
		assert.Equal(t, "invalid transaction ID", decodeError(t, rr))
	}
}

func TestDeleteTransaction(t *testing.T) {
	mock := setupDB(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM transactions WHERE id = ?")).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM transactions WHERE id = ?")).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rr := httptest.NewRecorder()
	DeleteTransaction(rr, withID(httptest.NewRequest(http.MethodDelete, "/api/transactions/3", nil), "3"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Transaction deleted successfully"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	DeleteTransaction(rr, withID(httptest.NewRequest(http.MethodDelete, "/api/transactions/3", nil), "3"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTransactionDBError(t *testing.T) {
	mock := setupDB(t)
	mock.ExpectExec("DELETE FROM transactions").WillReturnError(sql.ErrConnDone)

	rr := httptest.NewRecorder()
	DeleteTransaction(rr, withID(httptest.NewRequest(http.MethodDelete, "/api/transactions/3", nil), "3"))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Failed to delete transaction", decodeError(t, rr))
}

func TestWithdrawThenReopenIsIdempotent(t *testing.T) {
	mock := setupDB(t)
	update := regexp.QuoteMeta("UPDATE transactions SET withdrawn = ? WHERE id = ?")

	// Found rows, not changed rows: repeats still match.
	mock.ExpectExec(update).WithArgs(1, 5).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(update).WithArgs(1, 5).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(update).WithArgs(0, 5).WillReturnResult(sqlmock.NewResult(0, 1))

	for _, step := range []struct {
		handler http.HandlerFunc
		message string
	}{
		{WithdrawInvestment, "Investment withdrawn successfully"},
		{WithdrawInvestment, "Investment withdrawn successfully"},
		{ReopenInvestment, "Investment reopened successfully"},
	} {
		rr := httptest.NewRecorder()
		step.handler(rr, withID(httptest.NewRequest(http.MethodPatch, "/api/transactions/5/withdraw", nil), "5"))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"message":"`+step.message+`"}`, rr.Body.String())
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithdrawUnknownAndFailure(t *testing.T) {
	mock := setupDB(t)
	mock.ExpectExec("UPDATE transactions SET withdrawn").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE transactions SET withdrawn").WillReturnError(errors.New("deadlock"))

	rr := httptest.NewRecorder()
	WithdrawInvestment(rr, withID(httptest.NewRequest(http.MethodPatch, "/api/transactions/404/withdraw", nil), "404"))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	ReopenInvestment(rr, withID(httptest.NewRequest(http.MethodPatch, "/api/transactions/5/reopen", nil), "5"))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Failed to reopen investment", decodeError(t, rr))

	rr = httptest.NewRecorder()
	WithdrawInvestment(rr, withID(httptest.NewRequest(http.MethodPatch, "/api/transactions/x/withdraw", nil), "x"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetTransactionStats(t *testing.T) {
	mock := setupDB(t)
	mock.MatchExpectationsInOrder(false)

	sum := regexp.QuoteMeta("SELECT COALESCE(SUM(amount), 0) AS total FROM transactions WHERE 1=1 AND (withdrawn IS NULL OR withdrawn = 0) AND MONTH(transaction_date) = ? AND YEAR(transaction_date) = ? AND type = ?")
	mock.ExpectQuery(sum).WithArgs(3, 2024, "income").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("500.00"))
	mock.ExpectQuery(sum).WithArgs(3, 2024, "expense").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("0"))

	rr := httptest.NewRecorder()
	GetTransactionStats(rr, httptest.NewRequest(http.MethodGet, "/api/transactions/stats?month=3&year=2024&includeWithdrawn=true&sortOrder=asc", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"totalIncome":500,"totalExpense":0,"balance":500}`, rr.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTransactionStatsNonNumericIsZero(t *testing.T) {
	mock := setupDB(t)
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery("SELECT COALESCE").WithArgs("income").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("n/a"))
	mock.ExpectQuery("SELECT COALESCE").WithArgs("expense").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("80.25"))

	rr := httptest.NewRecorder()
	GetTransactionStats(rr, httptest.NewRequest(http.MethodGet, "/api/transactions/stats", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"totalIncome":0,"totalExpense":80.25,"balance":-80.25}`, rr.Body.String())
}

func TestGetTransactionStatsDBError(t *testing.T) {
	mock := setupDB(t)
	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery("SELECT COALESCE").WithArgs("income").WillReturnError(errors.New("timeout"))
	mock.ExpectQuery("SELECT COALESCE").WithArgs("expense").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("1"))

	rr := httptest.NewRecorder()
	GetTransactionStats(rr, httptest.NewRequest(http.MethodGet, "/api/transactions/stats", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Failed to fetch statistics", decodeError(t, rr))
}

func TestParseTotal(t *testing.T) {
	assert.True(t, parseTotal(sql.NullString{}).IsZero())
	assert.True(t, parseTotal(sql.NullString{String: "abc", Valid: true}).IsZero())
	assert.True(t, parseTotal(sql.NullString{String: "12.30", Valid: true}).Equal(decimal.RequireFromString("12.3")))
}
