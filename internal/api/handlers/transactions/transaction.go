package transactions

import (
	"database/sql"
	"net/http"

	"moneymigo/internal/api/handlers"
	"moneymigo/internal/models"
	"moneymigo/internal/repositories/querybuilder"
	"moneymigo/internal/repositories/sqlconnect"
	"moneymigo/pkg/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// GetAllTransactions lists transactions matching the query string filters.
func GetAllTransactions(w http.ResponseWriter, r *http.Request) {
	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	filter, err := querybuilder.ParseTransactionFilter(r.URL.Query())
	if err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := handlers.QueryContext(r)
	defer cancel()

	query, args := querybuilder.ListTransactions(filter)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		utils.ErrorHandler(err, "Error fetching transactions")
		utils.WriteError(w, "Failed to fetch transactions", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		var t models.Transaction
		err = rows.Scan(&t.ID, &t.Type, &t.Amount, &t.TransactionDate, &t.Purpose, &t.Description, &t.PaymentType, &t.Withdrawn, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			utils.ErrorHandler(err, "Error scanning transaction")
			utils.WriteError(w, "Failed to fetch transactions", http.StatusInternalServerError)
			return
		}
		transactions = append(transactions, t)
	}
	if err = rows.Err(); err != nil {
		utils.ErrorHandler(err, "Error iterating transactions")
		utils.WriteError(w, "Failed to fetch transactions", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, transactions)
}

func CreateTransaction(w http.ResponseWriter, r *http.Request) {
	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var in models.TransactionInput
	if err := handlers.DecodeAndValidate(r, &in); err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := handlers.QueryContext(r)
	defer cancel()

	res, err := db.ExecContext(ctx,
		`INSERT INTO transactions (type, amount, transaction_date, purpose, description, payment_type) VALUES (?, ?, ?, ?, ?, ?)`,
		in.Type, *in.Amount, in.TransactionDate, in.Purpose, in.Description, in.PaymentType)
	if err != nil {
		utils.ErrorHandler(err, "Error creating transaction")
		utils.WriteError(w, "Failed to create transaction", http.StatusInternalServerError)
		return
	}

	id, err := res.LastInsertId()
	if err != nil {
		utils.ErrorHandler(err, "Error reading inserted transaction id")
		utils.WriteError(w, "Failed to create transaction", http.StatusInternalServerError)
		return
	}

	utils.Logger.WithFields(logrus.Fields{"id": id, "type": in.Type}).Info("transaction created")
	utils.WriteJSONStatus(w, http.StatusCreated, in.Echo(id))
}

// UpdateTransaction replaces every mutable field of one transaction.
func UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r)
	if err != nil {
		utils.WriteError(w, "invalid transaction ID", http.StatusBadRequest)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var in models.TransactionInput
	if err := handlers.DecodeAndValidate(r, &in); err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := handlers.QueryContext(r)
	defer cancel()

	res, err := db.ExecContext(ctx,
		`UPDATE transactions SET type = ?, amount = ?, transaction_date = ?, purpose = ?, description = ?, payment_type = ? WHERE id = ?`,
		in.Type, *in.Amount, in.TransactionDate, in.Purpose, in.Description, in.PaymentType, id)
	if err != nil {
		utils.ErrorHandler(err, "Error updating transaction", logrus.Fields{"id": id})
		utils.WriteError(w, "Failed to update transaction", http.StatusInternalServerError)
		return
	}

	if !matchedRow(w, res, "Failed to update transaction") {
		return
	}

	utils.WriteJSON(w, in.Echo(id))
}

func DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r)
	if err != nil {
		utils.WriteError(w, "invalid transaction ID", http.StatusBadRequest)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := handlers.QueryContext(r)
	defer cancel()

	res, err := db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		utils.ErrorHandler(err, "Error deleting transaction", logrus.Fields{"id": id})
		utils.WriteError(w, "Failed to delete transaction", http.StatusInternalServerError)
		return
	}

	if !matchedRow(w, res, "Failed to delete transaction") {
		return
	}

	utils.Logger.WithField("id", id).Info("transaction deleted")
	utils.WriteMessage(w, "Transaction deleted successfully")
}

func WithdrawInvestment(w http.ResponseWriter, r *http.Request) {
	setWithdrawn(w, r, true)
}

func ReopenInvestment(w http.ResponseWriter, r *http.Request) {
	setWithdrawn(w, r, false)
}

func setWithdrawn(w http.ResponseWriter, r *http.Request, withdrawn bool) {
	action, done := "reopen", "Investment reopened successfully"
	if withdrawn {
		action, done = "withdraw", "Investment withdrawn successfully"
	}

	id, err := handlers.PathID(r)
	if err != nil {
		utils.WriteError(w, "invalid transaction ID", http.StatusBadRequest)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := handlers.QueryContext(r)
	defer cancel()

	flag := 0
	if withdrawn {
		flag = 1
	}

	res, err := db.ExecContext(ctx, "UPDATE transactions SET withdrawn = ? WHERE id = ?", flag, id)
	if err != nil {
		utils.ErrorHandler(err, "Error updating withdrawn flag", logrus.Fields{"id": id, "action": action})
		utils.WriteError(w, "Failed to "+action+" investment", http.StatusInternalServerError)
		return
	}

	if !matchedRow(w, res, "Failed to "+action+" investment") {
		return
	}

	utils.WriteMessage(w, done)
}

// matchedRow writes a 404 when the statement touched no row. The DSN sets
// clientFoundRows, so a no-op update of an existing row still counts.
func matchedRow(w http.ResponseWriter, res sql.Result, failure string) bool {
	n, err := res.RowsAffected()
	if err != nil {
		utils.ErrorHandler(err, "Error reading affected rows")
		utils.WriteError(w, failure, http.StatusInternalServerError)
		return false
	}
	if n == 0 {
		utils.WriteError(w, "Transaction not found", http.StatusNotFound)
		return false
	}
	return true
}

// GetTransactionStats sums income and expense under the list filters,
// always leaving out withdrawn rows.
func GetTransactionStats(w http.ResponseWriter, r *http.Request) {
	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	filter, err := querybuilder.ParseTransactionFilter(r.URL.Query())
	if err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := handlers.QueryContext(r)
	defer cancel()

	var income, expense decimal.Decimal
	g, gctx := errgroup.WithContext(ctx)
	for _, target := range []struct {
		txType string
		total  *decimal.Decimal
	}{{models.TypeIncome, &income}, {models.TypeExpense, &expense}} {
		g.Go(func() error {
			query, args := querybuilder.SumByType(filter, target.txType)
			var raw sql.NullString
			if err := db.QueryRowContext(gctx, query, args...).Scan(&raw); err != nil {
				return err
			}
			*target.total = parseTotal(raw)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		utils.ErrorHandler(err, "Error fetching stats")
		utils.WriteError(w, "Failed to fetch statistics", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, models.NewTransactionStats(income, expense))
}

// parseTotal treats NULL or non-numeric driver output as zero.
func parseTotal(raw sql.NullString) decimal.Decimal {
	if !raw.Valid {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw.String)
	if err != nil {
		return decimal.Zero
	}
	return d
}
