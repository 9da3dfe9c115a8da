// Package scenario runs Lua-scripted command sequences against a runner
// session on a virtual clock and checks the resulting snapshots.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/louisbranch/aurora-runner/internal/services/runner/domain/session"
	"github.com/louisbranch/aurora-runner/internal/services/shared/sessionrecord"
)

// Config controls scenario execution.
type Config struct {
	Assertions AssertionMode
	Verbose    bool
	Logger     *log.Logger
	// Start is the virtual clock origin.
	Start time.Time
}

// DefaultConfig returns default runner configuration.
func DefaultConfig() Config {
	return Config{Assertions: AssertionStrict}
}

// Runner executes scenarios against fresh sessions.
type Runner struct {
	assertions Assertions
	logger     *log.Logger
	verbose    bool
	start      time.Time
}

// NewRunner applies config defaults.
func NewRunner(cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}
	start := cfg.Start
	if start.IsZero() {
		start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &Runner{
		assertions: Assertions{Mode: cfg.Assertions, Logger: logger},
		logger:     logger,
		verbose:    cfg.Verbose,
		start:      start,
	}
}

// RunFile loads and executes a scenario file.
func RunFile(ctx context.Context, cfg Config, path string) error {
	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		return err
	}
	_, err = NewRunner(cfg).RunScenario(ctx, scenario)
	return err
}

// Result is the outcome of one scenario run.
type Result struct {
	Final   session.State
	Records []sessionrecord.Record
}

type scenarioState struct {
	session *session.Session
	clock   *manualClock
	// accepted is the result of the last command that can be rejected.
	accepted bool

	mu      sync.Mutex
	records []sessionrecord.Record
}

func (st *scenarioState) report(_ string, record sessionrecord.Record) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.records = append(st.records, record)
}

func (st *scenarioState) reports() []sessionrecord.Record {
	st.mu.Lock()
	defer st.mu.Unlock()
	return append([]sessionrecord.Record(nil), st.records...)
}

// RunScenario executes the steps in order against a new session with
// telemetry replaced by an in-memory recorder.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) (Result, error) {
	if scenario == nil {
		return Result{}, errors.New("scenario is required")
	}
	r.logf("scenario start: %s (%d steps)", scenario.Name, len(scenario.Steps))

	state := &scenarioState{clock: newManualClock(r.start)}
	runs := 0
	state.session = session.New(
		session.WithScheduler(state.clock),
		session.WithClock(state.clock.Now),
		session.WithReporter(session.ReporterFunc(state.report)),
		session.WithLogger(r.logf),
		session.WithIDGenerator(func() (string, error) {
			runs++
			return fmt.Sprintf("%s-run-%d", scenario.Name, runs), nil
		}),
	)
	defer state.session.Close()

	for index, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		r.logf("step %d/%d: %s %v", index+1, len(scenario.Steps), step.Kind, step.Args)
		if err := r.runStep(state, step); err != nil {
			return Result{}, fmt.Errorf("step %d (%s): %w", index+1, step.Kind, err)
		}
	}
	r.logf("scenario done: %s", scenario.Name)
	return Result{Final: state.session.Snapshot(), Records: state.reports()}, nil
}

func (r *Runner) logf(format string, args ...any) {
	if !r.verbose || r.logger == nil {
		return
	}
	r.logger.Printf(format, args...)
}
