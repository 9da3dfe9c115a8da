// Package api serves the collector HTTP surface: session record ingest,
// listing, aggregate stats and the leaderboard page.
package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	i18ncatalog "github.com/louisbranch/aurora-runner/internal/platform/i18n/catalog"
	"github.com/louisbranch/aurora-runner/internal/platform/id"
	"github.com/louisbranch/aurora-runner/internal/services/collector/storage"
	"github.com/louisbranch/aurora-runner/internal/services/shared/i18nhttp"
)

const tracerName = "github.com/louisbranch/aurora-runner/internal/services/collector/api"

// Options configures the router. Store is required.
type Options struct {
	Store    storage.SessionRecordStore
	Verifier *Verifier
	Bundle   *i18ncatalog.Bundle
	// Ping reports storage health for /health. Nil means always healthy.
	Ping  func(context.Context) error
	Logf  func(string, ...any)
	Now   func() time.Time
	NewID func() (string, error)
}

type handler struct {
	store    storage.SessionRecordStore
	verifier *Verifier
	bundle   *i18ncatalog.Bundle
	resolver *i18nhttp.Resolver
	ping     func(context.Context) error
	logf     func(string, ...any)
	now      func() time.Time
	newID    func() (string, error)
	tracer   trace.Tracer
}

// NewRouter builds the chi router with all collector routes and middleware.
func NewRouter(opts Options) http.Handler {
	h := &handler{
		store:    opts.Store,
		verifier: opts.Verifier,
		bundle:   opts.Bundle,
		ping:     opts.Ping,
		logf:     opts.Logf,
		now:      opts.Now,
		newID:    opts.NewID,
		tracer:   otel.Tracer(tracerName),
	}
	if h.bundle == nil {
		h.bundle = i18ncatalog.Default()
	}
	if h.logf == nil {
		h.logf = log.Printf
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.newID == nil {
		h.newID = id.NewID
	}
	h.resolver = i18nhttp.NewResolver(h.bundle)

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(h.logf))
	r.Use(Recovery(h.logf))

	r.Get("/health", h.health)
	r.Get("/leaderboard", h.leaderboard)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/session-records", h.ingest)
		r.Get("/session-records", h.list)
		r.Get("/session-records/{id}", h.get)
		r.Get("/stats", h.stats)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.fail(w, r, errNotFound)
	})
	return r
}
