package routers

import (
	"net/http"

	"moneymigo/internal/api/handlers/paymenttypes"
)

func paymentTypesRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/payment-types", paymenttypes.GetPaymentTypes)
	mux.HandleFunc("POST /api/payment-types", paymenttypes.AddPaymentType)
	mux.HandleFunc("DELETE /api/payment-types/{id}", paymenttypes.DeletePaymentType)

	return mux
}
