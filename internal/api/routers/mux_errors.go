package routers

import (
	"net/http"

	"moneymigo/pkg/utils"
)

// jsonErrors serves mux through its own handlers, but answers requests the mux
// rejects itself (no route, wrong method) with a JSON error body.
func jsonErrors(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, pattern := mux.Handler(r)
		if pattern != "" {
			mux.ServeHTTP(w, r)
			return
		}

		rejected := &muxRejection{header: http.Header{}, status: http.StatusNotFound}
		h.ServeHTTP(rejected, r)

		if allow := rejected.header.Get("Allow"); allow != "" {
			w.Header().Set("Allow", allow)
		}
		if rejected.status == http.StatusMethodNotAllowed {
			utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		utils.WriteError(w, "route not found", http.StatusNotFound)
	})
}

// muxRejection records the status and headers of the mux's plain text error
// and drops its body.
type muxRejection struct {
	header http.Header
	status int
}

func (m *muxRejection) Header() http.Header { return m.header }

func (m *muxRejection) Write(b []byte) (int, error) { return len(b), nil }

func (m *muxRejection) WriteHeader(status int) { m.status = status }
