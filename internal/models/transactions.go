package models

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts and totals go out as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

const (
	TypeIncome  = "income"
	TypeExpense = "expense"

	PurposeInvestment = "investment"
)

type Transaction struct {
	ID              int64           `json:"id"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate string          `json:"transaction_date"`
	Purpose         *string         `json:"purpose"`
	Description     *string         `json:"description"`
	PaymentType     string          `json:"payment_type"`
	Withdrawn       bool            `json:"withdrawn"`
	CreatedAt       *string         `json:"created_at,omitempty"`
	UpdatedAt       *string         `json:"updated_at,omitempty"`
}

// TransactionInput is the body accepted by create and update. It has no
// withdrawn field: that flag only changes through withdraw/reopen.
type TransactionInput struct {
	Type            string           `json:"type" validate:"required,oneof=income expense"`
	Amount          *decimal.Decimal `json:"amount" validate:"required,gte=0"`
	TransactionDate string           `json:"transaction_date" validate:"required,datetime=2006-01-02"`
	Purpose         *string          `json:"purpose" validate:"omitempty,max=100"`
	Description     *string          `json:"description"`
	PaymentType     string           `json:"payment_type" validate:"required,max=100"`
}

// Echo is the response body for create and update: the submitted fields plus id.
func (in TransactionInput) Echo(id int64) Transaction {
	var amount decimal.Decimal
	if in.Amount != nil {
		amount = *in.Amount
	}
	return Transaction{
		ID:              id,
		Type:            in.Type,
		Amount:          amount,
		TransactionDate: in.TransactionDate,
		Purpose:         in.Purpose,
		Description:     in.Description,
		PaymentType:     in.PaymentType,
	}
}

type TransactionStats struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Balance      decimal.Decimal `json:"balance"`
}

func NewTransactionStats(income, expense decimal.Decimal) TransactionStats {
	return TransactionStats{
		TotalIncome:  income,
		TotalExpense: expense,
		Balance:      income.Sub(expense),
	}
}
