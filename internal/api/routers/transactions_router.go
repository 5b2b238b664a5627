package routers

import (
	"net/http"

	"moneymigo/internal/api/handlers/transactions"
)

func transactionsRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/transactions", transactions.GetAllTransactions)
	mux.HandleFunc("POST /api/transactions", transactions.CreateTransaction)

	mux.HandleFunc("GET /api/transactions/stats", transactions.GetTransactionStats)

	mux.HandleFunc("PUT /api/transactions/{id}", transactions.UpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", transactions.DeleteTransaction)

	mux.HandleFunc("PATCH /api/transactions/{id}/withdraw", transactions.WithdrawInvestment)
	mux.HandleFunc("PATCH /api/transactions/{id}/reopen", transactions.ReopenInvestment)

	return mux
}
