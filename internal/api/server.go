// Package api serves the chapter dashboards over HTTP.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/singleflight"

	"github.com/blackwell-systems/chapterdesk/internal/config"
	"github.com/blackwell-systems/chapterdesk/internal/session"
	"github.com/blackwell-systems/chapterdesk/internal/store"
	"github.com/blackwell-systems/chapterdesk/internal/suggest"
)

// Server holds the dependencies shared by every handler.
type Server struct {
	db      *store.DB
	cfg     *config.Config
	seeds   session.SeedStore
	log     *slog.Logger
	metrics *Metrics
	engine  *suggest.Engine

	// candidates collapses concurrent spotlight member loads per chapter.
	candidates singleflight.Group

	now func() time.Time
}

// Option customises a Server.
type Option func(*Server)

// WithClock overrides the server's notion of now.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithRegistry registers metrics on reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.metrics = NewMetrics(reg) }
}

// New creates a Server. A nil seed store falls back to an in-memory one.
func New(db *store.DB, cfg *config.Config, seeds session.SeedStore, log *slog.Logger, opts ...Option) *Server {
	if seeds == nil {
		seeds = session.NewMemoryStore(cfg.Session.TTL)
	}
	s := &Server{
		db:     db,
		cfg:    cfg,
		seeds:  seeds,
		log:    log,
		engine: suggest.NewEngine(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(prometheus.NewRegistry())
	}
	return s
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(s.metrics.instrument)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	r.Get("/healthz", s.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/alumni", s.ListAlumni)

		r.Route("/chapter/{chapterID}", func(r chi.Router) {
			r.Get("/members", s.ListMembers)
			r.Get("/spotlight", s.Spotlight)
			r.Get("/dashboard/{role}", s.Dashboard)
			r.Get("/feed", s.ListFeed)
			r.Post("/feed", s.CreatePost)
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", s.ListEvents)
			r.Post("/", s.CreateEvent)
			r.Get("/budget", s.Budget)
			r.Get("/vendors", s.ListVendors)
			r.Put("/{eventID}/spent", s.UpdateSpent)
		})

		r.Route("/dues", func(r chi.Router) {
			r.Get("/cycles", s.ListCycles)
			r.Get("/cycles/{cycleID}/summary", s.CycleSummary)
			r.Post("/cycles/{cycleID}/assignments", s.AssignDues)
			r.Post("/assignments/{assignmentID}/payments", s.RecordPayment)
			r.Get("/members/{memberID}", s.MemberDues)
		})

		r.Get("/announcements", s.ListAnnouncements)
	})

	return r
}

// Health reports whether the database is reachable.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Conn().PingContext(r.Context()); err != nil {
		s.log.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
