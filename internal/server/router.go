package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/novalxp/novalxp-bot/internal/api"
	"github.com/novalxp/novalxp-bot/internal/api/handlers"
	"github.com/novalxp/novalxp-bot/internal/api/middleware"
)

type RouterConfig struct {
	ChatHandler    *handlers.ChatHandler
	APIAuthEnabled bool
	APIKeys        []string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		api.JSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.StaticAPIKeyAuth(cfg.APIAuthEnabled, cfg.APIKeys))

		r.Post("/v1/chat", cfg.ChatHandler.Chat)
	})

	return r
}
