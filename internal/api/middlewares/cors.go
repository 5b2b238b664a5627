package middlewares

import (
	"net/http"

	"github.com/rs/cors"
)

func Cors(allowedOrigins []string) Middleware {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{RequestIDHeader},
	})
	return c.Handler
}
