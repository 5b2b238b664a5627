package paymenttypes

import (
	"database/sql"
	"errors"
	"net/http"

	"moneymigo/internal/api/handlers"
	"moneymigo/internal/models"
	"moneymigo/internal/repositories/sqlconnect"
	"moneymigo/pkg/utils"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
)

// erDupEntry is the MySQL server error for a unique key violation.
const erDupEntry = 1062

func GetPaymentTypes(w http.ResponseWriter, r *http.Request) {
	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := handlers.QueryContext(r)
	defer cancel()

	rows, err := db.QueryContext(ctx, "SELECT id, name, is_default, created_at FROM payment_types ORDER BY is_default DESC, name ASC")
	if err != nil {
		utils.ErrorHandler(err, "Error fetching payment types")
		utils.WriteError(w, "Failed to fetch payment types", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	paymentTypes := []models.PaymentType{}
	for rows.Next() {
		var pt models.PaymentType
		if err := rows.Scan(&pt.ID, &pt.Name, &pt.IsDefault, &pt.CreatedAt); err != nil {
			utils.ErrorHandler(err, "Error scanning payment type")
			utils.WriteError(w, "Failed to fetch payment types", http.StatusInternalServerError)
			return
		}
		paymentTypes = append(paymentTypes, pt)
	}
	if err := rows.Err(); err != nil {
		utils.ErrorHandler(err, "Error iterating payment types")
		utils.WriteError(w, "Failed to fetch payment types", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, paymentTypes)
}

// AddPaymentType stores a custom, never default, payment type.
func AddPaymentType(w http.ResponseWriter, r *http.Request) {
	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var in models.PaymentTypeInput
	if err := handlers.DecodeAndValidate(r, &in); err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	name := models.NormalizePaymentTypeName(in.Name)
	if name == "" {
		utils.WriteError(w, "Payment type name is required", http.StatusBadRequest)
		return
	}
	if len(name) > 100 {
		utils.WriteError(w, "Payment type name is too long", http.StatusBadRequest)
		return
	}

	ctx, cancel := handlers.QueryContext(r)
	defer cancel()

	res, err := db.ExecContext(ctx, "INSERT INTO payment_types (name, is_default) VALUES (?, FALSE)", name)
	if err != nil {
		if isDuplicateEntry(err) {
			utils.WriteError(w, "Payment type already exists", http.StatusBadRequest)
			return
		}
		utils.ErrorHandler(err, "Error adding payment type", logrus.Fields{"name": name})
		utils.WriteError(w, "Failed to add payment type", http.StatusInternalServerError)
		return
	}

	id, err := res.LastInsertId()
	if err != nil {
		utils.ErrorHandler(err, "Error reading inserted payment type id")
		utils.WriteError(w, "Failed to add payment type", http.StatusInternalServerError)
		return
	}

	utils.Logger.WithFields(logrus.Fields{"id": id, "name": name}).Info("payment type added")
	utils.WriteJSONStatus(w, http.StatusCreated, models.PaymentType{ID: id, Name: name, IsDefault: false})
}

// DeletePaymentType removes a custom payment type. Transactions that still
// name it keep the string.
func DeletePaymentType(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r)
	if err != nil {
		utils.WriteError(w, "invalid payment type ID", http.StatusBadRequest)
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

	var isDefault bool
	err = db.QueryRowContext(ctx, "SELECT is_default FROM payment_types WHERE id = ?", id).Scan(&isDefault)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.WriteError(w, "Payment type not found", http.StatusNotFound)
			return
		}
		utils.ErrorHandler(err, "Error looking up payment type", logrus.Fields{"id": id})
		utils.WriteError(w, "Failed to delete payment type", http.StatusInternalServerError)
		return
	}

	if isDefault {
		utils.WriteError(w, "Cannot delete default payment types", http.StatusBadRequest)
		return
	}

	if _, err := db.ExecContext(ctx, "DELETE FROM payment_types WHERE id = ?", id); err != nil {
		utils.ErrorHandler(err, "Error deleting payment type", logrus.Fields{"id": id})
		utils.WriteError(w, "Failed to delete payment type", http.StatusInternalServerError)
		return
	}

	utils.Logger.WithField("id", id).Info("payment type deleted")
	utils.WriteMessage(w, "Payment type deleted successfully")
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == erDupEntry
}
