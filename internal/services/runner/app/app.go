// Package app assembles the runner runtime: one session wired to the
// telemetry emitter and the localized labels.
package app

import (
	"fmt"
	"log"
	"sync"

	"github.com/louisbranch/aurora-runner/internal/services/runner/domain/difficulty"
	"github.com/louisbranch/aurora-runner/internal/services/runner/domain/labels"
	"github.com/louisbranch/aurora-runner/internal/services/runner/domain/session"
	"github.com/louisbranch/aurora-runner/internal/services/runner/telemetry"
)

// Config describes one runner runtime.
type Config struct {
	Difficulty string
	Locale     string
	Telemetry  telemetry.Config
}

// Runtime owns the session and its collaborators for one process.
type Runtime struct {
	Session *session.Session
	Labels  labels.Resolver
	emitter *telemetry.Emitter

	mu   sync.Mutex
	last *telemetry.Result
}

// Option adjusts how New builds the runtime.
type Option func(*options)

type options struct {
	sessionOpts   []session.Option
	telemetryOpts []telemetry.Option
	logf          func(string, ...any)
}

// WithSessionOptions appends session options.
func WithSessionOptions(opts ...session.Option) Option {
	return func(o *options) {
		o.sessionOpts = append(o.sessionOpts, opts...)
	}
}

// WithTelemetryOptions appends emitter options.
func WithTelemetryOptions(opts ...telemetry.Option) Option {
	return func(o *options) {
		o.telemetryOpts = append(o.telemetryOpts, opts...)
	}
}

// WithLogger routes session and telemetry diagnostics to logf.
func WithLogger(logf func(string, ...any)) Option {
	return func(o *options) {
		o.logf = logf
	}
}

// New validates cfg and builds a runtime in MENU.
func New(cfg Config, opts ...Option) (*Runtime, error) {
	o := options{logf: log.Printf}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	difficultyID := difficulty.Standard
	if cfg.Difficulty != "" {
		parsed, err := difficulty.Parse(cfg.Difficulty)
		if err != nil {
			return nil, fmt.Errorf("runner config: %w", err)
		}
		difficultyID = parsed
	}

	rt := &Runtime{Labels: labels.New(cfg.Locale)}
	telemetryOpts := append([]telemetry.Option{
		telemetry.WithLogger(o.logf),
		telemetry.WithObserver(rt.observe),
	}, o.telemetryOpts...)
	rt.emitter = telemetry.NewEmitter(cfg.Telemetry, telemetryOpts...)

	sessionOpts := append([]session.Option{
		session.WithDifficulty(difficultyID),
		session.WithReporter(rt.emitter),
		session.WithLogger(o.logf),
	}, o.sessionOpts...)
	rt.Session = session.New(sessionOpts...)

	if !rt.emitter.Enabled() {
		o.logf("telemetry endpoint not configured; run records will not be sent")
	}
	return rt, nil
}

// LastDelivery returns the most recent telemetry result, if any.
func (r *Runtime) LastDelivery() (telemetry.Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return telemetry.Result{}, false
	}
	return *r.last, true
}

// Close cancels pending timers and waits for in-flight deliveries.
func (r *Runtime) Close() {
	r.Session.Close()
	r.emitter.Wait()
}

func (r *Runtime) observe(result telemetry.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = &result
}
