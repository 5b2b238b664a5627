package routers

import (
	"net/http"

	"moneymigo/internal/api/handlers"
	"moneymigo/pkg/utils"
)

func MainRouter() *http.ServeMux {

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", handlers.HealthHandler)

	tRouter := jsonErrors(transactionsRouter())
	mux.Handle("/api/transactions", tRouter)
	mux.Handle("/api/transactions/", tRouter)

	pRouter := jsonErrors(paymentTypesRouter())
	mux.Handle("/api/payment-types", pRouter)
	mux.Handle("/api/payment-types/", pRouter)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, "route not found", http.StatusNotFound)
	})

	return mux
}
