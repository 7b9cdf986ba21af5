package v1

import (
	"crypto/subtle"
	"net/http"

	"github.com/gorilla/mux"
)

// apiKeyMiddleware guards the API with a shared key when one is configured.
// An empty key leaves the API open, which is the expected deployment on a
// trusted home network.
func apiKeyMiddleware(key string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(key) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get("X-API-Key")
			if len(provided) == 0 {
				provided = r.URL.Query().Get("key")
			}

			if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) == 1 {
				next.ServeHTTP(w, r)
				return
			}

			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		})
	}
}
