package middlewares

import (
	"net/http"
	"runtime/debug"

	"moneymigo/pkg/utils"

	"github.com/sirupsen/logrus"
)

func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				utils.Logger.WithFields(logrus.Fields{
					"panic": rec,
					"path":  r.URL.Path,
					"stack": string(debug.Stack()),
				}).Error("recovered from handler panic")
				utils.WriteError(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
