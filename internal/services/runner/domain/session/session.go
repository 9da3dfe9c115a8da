package session

import (
	"log"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/louisbranch/aurora-runner/internal/platform/id"
	"github.com/louisbranch/aurora-runner/internal/services/runner/domain/difficulty"
	"github.com/louisbranch/aurora-runner/internal/services/shared/sessionrecord"
)

// Status is the authoritative lifecycle state of a session.
type Status string

const (
	StatusMenu     Status = "MENU"
	StatusPlaying  Status = "PLAYING"
	StatusShop     Status = "SHOP"
	StatusGameOver Status = "GAME_OVER"
	StatusVictory  Status = "VICTORY"
)

// Terminal reports whether s ends a run.
func (s Status) Terminal() bool {
	return s == StatusGameOver || s == StatusVictory
}

const (
	BaseSpeed       = 22.5
	BaseLives       = 3
	BaseLanes       = 3
	MaxLanes        = 9
	MaxLevel        = 3
	LetterSpeedStep = BaseSpeed * 0.1
	LevelSpeedStep  = BaseSpeed * 0.4
	VictoryBonus    = 5000

	ImmortalityDuration = 5 * time.Second
)

// TargetWord is the letter sequence collected to clear a level.
const TargetWord = "AURORA"

// TargetLength is the number of slots in TargetWord.
const TargetLength = len(TargetWord)

// State is a point-in-time copy of a session.
type State struct {
	Status   Status
	RunID    string
	Score    int64
	Distance float64
	Speed    float64

	Lives    int
	MaxLives int

	CollectedLetters []int
	Level            int
	LaneCount        int
	CurrentLane      int
	JumpSignal       int64
	GemsCollected    int

	HasDoubleJump       bool
	HasImmortality      bool
	IsImmortalityActive bool

	DifficultyID difficulty.ID

	BestScore      int64
	SessionsPlayed int
	TotalDistance  int64

	SessionFinalized bool
}

// HasLetter reports whether slot index has been collected this level.
func (s State) HasLetter(index int) bool {
	return slices.Contains(s.CollectedLetters, index)
}

// Reporter receives the record of each finished run. Report is called
// outside the session lock and must not block.
type Reporter interface {
	Report(runID string, record sessionrecord.Record)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(runID string, record sessionrecord.Record)

// Report implements Reporter.
func (fn ReporterFunc) Report(runID string, record sessionrecord.Record) {
	fn(runID, record)
}

// Session is the single owner of one player's run state.
type Session struct {
	mu    sync.Mutex
	state State

	preset     difficulty.Preset
	scheduler  Scheduler
	timer      Timer
	generation uint64

	reporter Reporter
	now      func() time.Time
	newID    func() (string, error)
	logf     func(string, ...any)
}

// Option configures a Session.
type Option func(*Session)

// WithDifficulty sets the initial difficulty. Unknown ids are ignored.
func WithDifficulty(id difficulty.ID) Option {
	return func(s *Session) {
		if _, ok := difficulty.Lookup(id); ok {
			s.state.DifficultyID = id
		}
	}
}

// WithReporter sets the destination for finished-run records.
func WithReporter(r Reporter) Option {
	return func(s *Session) {
		s.reporter = r
	}
}

// WithScheduler replaces the timer source used by the immortality window.
func WithScheduler(scheduler Scheduler) Option {
	return func(s *Session) {
		s.scheduler = scheduler
	}
}

// WithClock replaces the wall clock used for jump signals and record times.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// WithIDGenerator replaces the run id generator.
func WithIDGenerator(newID func() (string, error)) Option {
	return func(s *Session) {
		s.newID = newID
	}
}

// WithLogger routes diagnostics to logf.
func WithLogger(logf func(string, ...any)) Option {
	return func(s *Session) {
		s.logf = logf
	}
}

// New returns a session in MENU with base lives and lanes.
func New(opts ...Option) *Session {
	s := &Session{
		state: State{
			Status:       StatusMenu,
			Lives:        BaseLives,
			MaxLives:     BaseLives,
			Level:        1,
			LaneCount:    BaseLanes,
			DifficultyID: difficulty.Standard,
		},
		scheduler: timeScheduler{},
		now:       time.Now,
		newID:     id.NewID,
		logf:      log.Printf,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.scheduler == nil {
		s.scheduler = timeScheduler{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logf == nil {
		s.logf = func(string, ...any) {}
	}
	s.preset = difficulty.Resolve(s.state.DifficultyID)
	return s
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state
	out.CollectedLetters = slices.Clone(s.state.CollectedLetters)
	return out
}

// Close cancels the pending immortality timer, if any.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelAbilityLocked()
}

// pendingReport is a finished run waiting to be handed to the Reporter.
type pendingReport struct {
	runID  string
	record sessionrecord.Record
}

// mutate runs fn under the session lock and dispatches any finished run it
// produced once the lock is released.
func (s *Session) mutate(fn func() *pendingReport) {
	s.mu.Lock()
	pending := fn()
	s.mu.Unlock()

	if pending != nil && s.reporter != nil {
		s.reporter.Report(pending.runID, pending.record)
	}
}

func (s *Session) inRun() bool {
	return s.state.Status == StatusPlaying || s.state.Status == StatusShop
}

// finite replaces NaN and infinities with 0 and clamps negatives to 0.
func finite(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0
	}
	return value
}

func addSaturating(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}
