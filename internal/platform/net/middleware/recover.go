package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	perr "warwatch/internal/platform/errors"
	"warwatch/internal/platform/logger"
)

// RecoverJSON converts handler panics into a JSON 500 and logs the stack
func RecoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger.Named("status").Error().
					Interface("panic", v).
					Msgf("panic recovered\n%s", debug.Stack())

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(perr.WireFrom(perr.PanicErrf("internal error")))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
