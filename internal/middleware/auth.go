package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/config"
)

// APIKeyHeader carries the admin API key.
const APIKeyHeader = "api_key"

// APIKeyAuth guards operator endpoints (coupon stats, resource stats) with a
// static API key passed in the "api_key" header.
func APIKeyAuth(cfg config.AuthConfig, log *slog.Logger) func(next http.Handler) http.Handler {
	keys := make([][]byte, 0, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		keys = append(keys, []byte(k))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get(APIKeyHeader)

			if apiKey == "" {
				http.Error(w, "Unauthorized: API key required", http.StatusUnauthorized)
				return
			}

			valid := false
			for _, k := range keys {
				if subtle.ConstantTimeCompare([]byte(apiKey), k) == 1 {
					valid = true
					break
				}
			}

			if !valid {
				log.Warn("rejected invalid API key", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				http.Error(w, "Forbidden: Invalid API key", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
