package middleware

import (
	"net/http"

	"github.com/novalxp/novalxp-bot/internal/api"
	"github.com/novalxp/novalxp-bot/internal/domain"
)

// MaxBodyBytes limits request body size.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit <= 0 || r.Body == nil {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > limit && r.ContentLength != -1 {
				api.WriteError(w, GetRequestID(r.Context()),
					domain.NewBotError(domain.ErrCodeInvalidRequest, "Request body too large.", false))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
