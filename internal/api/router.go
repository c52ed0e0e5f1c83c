package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/devarchitect/internal/architectservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *architectservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Generation.
	r.Post("/generate", h.Generate)
	r.Get("/state", h.State)
	r.Post("/state/ack", h.Acknowledge)
	r.Get("/tree", h.Tree)

	// History.
	r.Get("/history", h.ListHistory)
	r.Delete("/history", h.ClearHistory)
	r.Get("/history/{id}", h.GetEntry)
	r.Post("/history/{id}/load", h.LoadEntry)

	// Export.
	r.Get("/export", h.Export)
	r.Get("/clipboard/{section}", h.Clipboard)

	// Preferences.
	r.Get("/preferences/theme", h.GetTheme)
	r.Put("/preferences/theme", h.PutTheme)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
