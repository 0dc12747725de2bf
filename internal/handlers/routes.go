package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the API routes onto a ServeMux and wraps it with request
// ids, real client IPs, panic recovery and access logging
func NewRouter(h *GameHandler, m *Middleware) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /api/games", h.ListGames)
	mux.HandleFunc("POST /api/sessions", m.RateLimit(h.StartSession))

	mux.HandleFunc("GET /api/session", m.RequireSession(h.GetSession))
	mux.HandleFunc("DELETE /api/session", m.RequireSession(h.EndSession))
	mux.HandleFunc("POST /api/session/answer", m.RequireSession(h.SubmitAnswer))
	mux.HandleFunc("POST /api/session/skip", m.RequireSession(h.Skip))
	mux.HandleFunc("POST /api/session/record", m.RequireSession(h.Record))
	mux.HandleFunc("POST /api/session/reset", m.RequireSession(h.Reset))
	mux.HandleFunc("GET /api/session/events", m.RequireSession(h.SessionEvents))

	var handler http.Handler = mux
	handler = Logging(handler)
	handler = middleware.Recoverer(handler)
	handler = middleware.RealIP(handler)
	handler = middleware.RequestID(handler)
	return handler
}
