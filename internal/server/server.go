// Package server exposes the registry and the recovery pipeline over
// HTTP: a small JSON API plus the public redirect route printed codes
// point at.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/usnaveen/paperlink/internal/links"
	"github.com/usnaveen/paperlink/internal/logger"
)

// Config holds runtime options for the HTTP server.
type Config struct {
	// Address is the listen address, e.g. ":8080".
	Address string

	// BaseURL is the public base used to render short URLs in responses.
	BaseURL string
}

type server struct {
	cfg Config
	svc *links.Service
	log zerolog.Logger
}

// New constructs the HTTP server with the middleware stack and routes.
func New(cfg Config, svc *links.Service) *http.Server {
	return &http.Server{
		Addr:         cfg.Address,
		Handler:      NewRouter(cfg, svc),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewRouter builds the route tree without the listener, which is what
// tests exercise directly.
func NewRouter(cfg Config, svc *links.Service) http.Handler {
	s := &server{cfg: cfg, svc: svc, log: logger.WithComponent("server")}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(s.requestLogger)
	router.Use(chimw.Recoverer)
	router.Use(chimw.Timeout(30 * time.Second))

	router.Get("/healthz", s.handleHealth)
	router.Route("/api", func(r chi.Router) {
		r.Post("/links", s.handleCreateLink)
		r.Get("/links/{code}", s.handleGetLink)
		r.Post("/recover", s.handleRecover)
		r.Post("/recover/live", s.handleRecoverLive)
	})
	// The public route printed on paper: short URL in, 302 out.
	router.Get("/{code}", s.handleRedirect)

	return router
}

// requestLogger replaces chi's text logger with the structured one the
// rest of the application uses.
func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", chimw.GetReqID(r.Context())).
			Msg("Request handled")
	})
}
