package api

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the dispatch endpoints. GET and POST /send share
// one handler.
func RegisterRoutes(r chi.Router, handler *Handler) {
	r.Get("/ping", handler.Ping)
	r.Get("/send", handler.Send)
	r.Post("/send", handler.Send)
}
