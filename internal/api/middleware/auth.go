package middleware

import (
	"net/http"
	"strings"

	"github.com/novalxp/novalxp-bot/internal/api"
	"github.com/novalxp/novalxp-bot/internal/domain"
)

type contextKey string

// StaticAPIKeyAuth enforces a Bearer token from a fixed key set. When
// disabled the middleware passes everything through, which is the default
// for deployments fronted by an authenticating gateway.
func StaticAPIKeyAuth(enabled bool, keys []string) func(http.Handler) http.Handler {
	keySet := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if key != "" {
			keySet[key] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}

			token := parseBearerToken(r.Header.Get("Authorization"))
			if token == "" {
				unauthorized(w, r, "Missing or invalid Bearer token.")
				return
			}
			if len(keySet) == 0 {
				unauthorized(w, r, "API auth is enabled but no API keys are configured.")
				return
			}
			if _, ok := keySet[token]; !ok {
				unauthorized(w, r, "Invalid API token.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func parseBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	api.WriteError(w, GetRequestID(r.Context()),
		domain.NewBotError(domain.ErrCodeUnauthorized, message, false))
}
