package middleware

import (
	"crypto/subtle"
	"net/http"
)

// ControlTokenHeader carries the shared secret of host control requests
const ControlTokenHeader = "X-Control-Token"

// ControlToken admits only requests presenting the configured control token
func ControlToken(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(ControlTokenHeader)
			if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				respondError(w, "Invalid control token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
