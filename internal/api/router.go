package api

import (
	"net/http"

	"notepad/internal/auth"
	"notepad/internal/metrics"
	"notepad/internal/middleware"
	"notepad/internal/session"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

type RouterConfig struct {
	Handlers       *Handlers
	Verifier       *auth.Verifier
	Sessions       session.Store
	SessionOptions middleware.SessionOptions
	Metrics        *metrics.Metrics
	// MCP is mounted at /mcp when set.
	MCP http.Handler
	Log logrus.FieldLogger
}

func NewRouter(cfg RouterConfig) http.Handler {
	h := cfg.Handlers

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cfg.Metrics.Middleware)
	r.Use(middleware.Identify(cfg.Verifier, cfg.Log))
	r.Use(middleware.Logging(cfg.Log))

	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	if cfg.MCP != nil {
		r.Handle("/mcp", cfg.MCP)
	}

	r.Get("/logout", h.Logout)
	r.Post("/api/logout", h.APILogout)

	// Everything below may read or write guest notes.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Sessions(cfg.Sessions, cfg.SessionOptions, cfg.Log))

		r.Post("/register", h.FormRegister)
		r.Post("/login", h.FormLogin)

		r.Route("/api", func(r chi.Router) {
			r.Get("/user-status", h.UserStatus)
			r.Post("/register", h.APIRegister)
			r.Post("/login", h.APILogin)

			r.Get("/notes", h.ListNotes)
			r.Post("/notes", h.CreateNote)
			r.Put("/notes/{id}", h.UpdateNote)
			r.Delete("/notes/{id}", h.DeleteNote)
		})
	})

	return r
}
