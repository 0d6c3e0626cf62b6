// ABOUTME: API key middleware checking the X-API-Key header
// ABOUTME: An empty configured key disables the check entirely

package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
)

// RequireAPIKey returns middleware that rejects requests whose X-API-Key
// header does not match key. When key is empty the API is open and the
// middleware passes everything through.
func RequireAPIKey(key string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				next(w, r)
				return
			}

			provided := r.Header.Get("X-API-Key")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				slog.Warn("Rejected request with bad API key", "path", r.URL.Path)
				writeJSONError(w, "Invalid or missing API key", http.StatusUnauthorized)
				return
			}

			next(w, r)
		}
	}
}
