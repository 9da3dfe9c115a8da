package session

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/louisbranch/aurora-runner/internal/services/runner/domain/difficulty"
	"github.com/louisbranch/aurora-runner/internal/services/runner/domain/shop"
	"github.com/louisbranch/aurora-runner/internal/services/shared/sessionrecord"
)

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	wasPending := !t.stopped
	t.stopped = true
	return wasPending
}

type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	timer := &fakeTimer{delay: d, fn: f}
	s.timers = append(s.timers, timer)
	return timer
}

// fire runs the callback of timer i, even if it was stopped, the way a
// runtime timer can fire concurrently with Stop.
func (s *fakeScheduler) fire(t *testing.T, i int) {
	t.Helper()
	s.mu.Lock()
	if i >= len(s.timers) {
		s.mu.Unlock()
		t.Fatalf("timer %d not scheduled (have %d)", i, len(s.timers))
	}
	timer := s.timers[i]
	s.mu.Unlock()
	timer.fn()
}

func (s *fakeScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

type capturedReport struct {
	runID  string
	record sessionrecord.Record
}

type recordingReporter struct {
	mu      sync.Mutex
	reports []capturedReport
}

func (r *recordingReporter) Report(runID string, record sessionrecord.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, capturedReport{runID: runID, record: record})
}

func (r *recordingReporter) all() []capturedReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]capturedReport(nil), r.reports...)
}

var fixedNow = time.Date(2026, 10, 18, 12, 30, 0, 0, time.UTC)

type harness struct {
	session   *Session
	scheduler *fakeScheduler
	reporter  *recordingReporter
}

func newHarness(t *testing.T, opts ...Option) harness {
	t.Helper()
	scheduler := &fakeScheduler{}
	reporter := &recordingReporter{}
	runs := 0
	base := []Option{
		WithScheduler(scheduler),
		WithReporter(reporter),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() (string, error) {
			runs++
			return "run-" + string(rune('0'+runs)), nil
		}),
		WithLogger(t.Logf),
	}
	s := New(append(base, opts...)...)
	return harness{session: s, scheduler: scheduler, reporter: reporter}
}

func startedHarness(t *testing.T, opts ...Option) harness {
	t.Helper()
	h := newHarness(t, opts...)
	if !h.session.StartGame() {
		t.Fatal("expected StartGame to succeed from MENU")
	}
	return h
}

func collectWord(s *Session) {
	for i := 0; i < TargetLength; i++ {
		s.CollectLetter(i)
	}
}

func TestNewSessionStartsInMenu(t *testing.T) {
	state := New().Snapshot()
	if state.Status != StatusMenu {
		t.Fatalf("status = %s, want %s", state.Status, StatusMenu)
	}
	if state.Lives != BaseLives || state.MaxLives != BaseLives {
		t.Fatalf("lives = %d/%d, want %d/%d", state.Lives, state.MaxLives, BaseLives, BaseLives)
	}
	if state.LaneCount != BaseLanes || state.Level != 1 {
		t.Fatalf("lanes/level = %d/%d, want %d/1", state.LaneCount, state.Level, BaseLanes)
	}
	if state.Speed != 0 {
		t.Fatalf("speed = %v, want 0", state.Speed)
	}
	if state.DifficultyID != difficulty.Standard {
		t.Fatalf("difficulty = %s, want %s", state.DifficultyID, difficulty.Standard)
	}
}

func TestStartGameAppliesDifficultySpeed(t *testing.T) {
	for _, preset := range difficulty.Presets() {
		h := startedHarness(t, WithDifficulty(preset.ID))
		state := h.session.Snapshot()
		if want := BaseSpeed * preset.SpeedMultiplier; state.Speed != want {
			t.Fatalf("%s: speed = %v, want %v", preset.ID, state.Speed, want)
		}
		if state.Status != StatusPlaying {
			t.Fatalf("%s: status = %s, want %s", preset.ID, state.Status, StatusPlaying)
		}
		if state.RunID == "" {
			t.Fatalf("%s: expected run id", preset.ID)
		}
	}
}

func TestStartGameOnlyFromMenu(t *testing.T) {
	h := startedHarness(t)
	h.session.AddScore(10)
	if h.session.StartGame() {
		t.Fatal("expected StartGame to be rejected while PLAYING")
	}
	if got := h.session.Snapshot().Score; got != 10 {
		t.Fatalf("score = %d, want 10 (run must not reset)", got)
	}
	if h.session.RestartGame() {
		t.Fatal("expected RestartGame to be rejected while PLAYING")
	}
}

func TestSetDifficultyOnlyInMenu(t *testing.T) {
	h := newHarness(t)
	if !h.session.SetDifficulty(difficulty.Expert) {
		t.Fatal("expected SetDifficulty to succeed in MENU")
	}
	if h.session.SetDifficulty("nightmare") {
		t.Fatal("expected unknown difficulty to be rejected")
	}
	h.session.StartGame()
	if h.session.SetDifficulty(difficulty.Relaxed) {
		t.Fatal("expected SetDifficulty to be rejected while PLAYING")
	}
	if got := h.session.Snapshot().DifficultyID; got != difficulty.Expert {
		t.Fatalf("difficulty = %s, want %s", got, difficulty.Expert)
	}
}

func TestExpertScenario(t *testing.T) {
	h := startedHarness(t, WithDifficulty(difficulty.Expert))
	state := h.session.Snapshot()
	if math.Abs(state.Speed-26.55) > 1e-9 {
		t.Fatalf("speed = %v, want ~26.55", state.Speed)
	}
	h.session.AddScore(100)
	if got := h.session.Snapshot().Score; got != 125 {
		t.Fatalf("score = %d, want 125", got)
	}
}

func TestAddScoreClampsMalformedInput(t *testing.T) {
	h := startedHarness(t)
	for _, amount := range []float64{-50, math.NaN(), math.Inf(1), math.Inf(-1)} {
		h.session.AddScore(amount)
	}
	if got := h.session.Snapshot().Score; got != 0 {
		t.Fatalf("score = %d, want 0", got)
	}
	h.session.AddScore(10.5)
	if got := h.session.Snapshot().Score; got != 11 {
		t.Fatalf("score = %d, want 11 (rounded)", got)
	}
}

func TestAddScoreIgnoredOutsidePlaying(t *testing.T) {
	h := newHarness(t)
	h.session.AddScore(100)
	if got := h.session.Snapshot().Score; got != 0 {
		t.Fatalf("score in MENU = %d, want 0", got)
	}
}

func TestCollectGemUsesScaledScore(t *testing.T) {
	h := startedHarness(t, WithDifficulty(difficulty.Relaxed))
	h.session.CollectGem(100)
	h.session.CollectGem(100)
	state := h.session.Snapshot()
	if state.Score != 170 {
		t.Fatalf("score = %d, want 170", state.Score)
	}
	if state.GemsCollected != 2 {
		t.Fatalf("gems = %d, want 2", state.GemsCollected)
	}
}

func TestCollectLetterIsIdempotent(t *testing.T) {
	h := startedHarness(t)
	h.session.CollectLetter(2)
	first := h.session.Snapshot()
	h.session.CollectLetter(2)
	second := h.session.Snapshot()

	if len(second.CollectedLetters) != 1 || second.CollectedLetters[0] != 2 {
		t.Fatalf("letters = %v, want [2]", second.CollectedLetters)
	}
	if second.Speed != first.Speed || second.Score != first.Score {
		t.Fatalf("repeat collect changed state: speed %v->%v score %d->%d", first.Speed, second.Speed, first.Score, second.Score)
	}
	if want := BaseSpeed + LetterSpeedStep; first.Speed != want {
		t.Fatalf("speed = %v, want %v", first.Speed, want)
	}
}

func TestCollectLetterIgnoresOutOfRange(t *testing.T) {
	h := startedHarness(t)
	h.session.CollectLetter(-1)
	h.session.CollectLetter(TargetLength)
	state := h.session.Snapshot()
	if len(state.CollectedLetters) != 0 {
		t.Fatalf("letters = %v, want none", state.CollectedLetters)
	}
	if state.Speed != BaseSpeed {
		t.Fatalf("speed = %v, want %v", state.Speed, BaseSpeed)
	}
}

func TestCompletingWordAdvancesLevel(t *testing.T) {
	h := startedHarness(t)
	h.session.SetTargetLane(1)
	collectWord(h.session)

	state := h.session.Snapshot()
	if state.Level != 2 {
		t.Fatalf("level = %d, want 2", state.Level)
	}
	if len(state.CollectedLetters) != 0 {
		t.Fatalf("letters = %v, want empty", state.CollectedLetters)
	}
	if state.LaneCount != BaseLanes+2 {
		t.Fatalf("lanes = %d, want %d", state.LaneCount, BaseLanes+2)
	}
	if state.Status != StatusPlaying {
		t.Fatalf("status = %s, want %s", state.Status, StatusPlaying)
	}
	if state.CurrentLane != 0 {
		t.Fatalf("lane = %d, want 0", state.CurrentLane)
	}
	want := BaseSpeed + float64(TargetLength)*LetterSpeedStep + LevelSpeedStep
	if math.Abs(state.Speed-want) > 1e-9 {
		t.Fatalf("speed = %v, want %v", state.Speed, want)
	}
	if state.SessionFinalized || state.SessionsPlayed != 0 {
		t.Fatal("level advance must not finalize")
	}
}

func TestAdvanceLevelStopsAtMaxLevel(t *testing.T) {
	h := startedHarness(t)
	if !h.session.AdvanceLevel() || !h.session.AdvanceLevel() {
		t.Fatal("expected two level advances to succeed")
	}
	if h.session.AdvanceLevel() {
		t.Fatal("expected advance past MaxLevel to be rejected")
	}
	state := h.session.Snapshot()
	if state.Level != MaxLevel {
		t.Fatalf("level = %d, want %d", state.Level, MaxLevel)
	}
	if state.LaneCount != 7 || state.LaneCount > MaxLanes {
		t.Fatalf("lanes = %d, want 7", state.LaneCount)
	}
}

func TestVictoryAtMaxLevelFinalizesOnce(t *testing.T) {
	h := startedHarness(t)
	h.session.AdvanceLevel()
	h.session.AdvanceLevel()
	h.session.AddScore(300)
	h.session.SetDistance(1234.9)
	collectWord(h.session)

	state := h.session.Snapshot()
	if state.Status != StatusVictory {
		t.Fatalf("status = %s, want %s", state.Status, StatusVictory)
	}
	if state.Score != 300+VictoryBonus {
		t.Fatalf("score = %d, want %d", state.Score, 300+VictoryBonus)
	}
	if state.Speed != 0 {
		t.Fatalf("speed = %v, want 0", state.Speed)
	}
	if state.SessionsPlayed != 1 || !state.SessionFinalized {
		t.Fatalf("sessions = %d finalized = %v, want 1 true", state.SessionsPlayed, state.SessionFinalized)
	}
	if state.BestScore != 5300 || state.TotalDistance != 1234 {
		t.Fatalf("best/total = %d/%d, want 5300/1234", state.BestScore, state.TotalDistance)
	}

	if h.session.SetStatus(StatusVictory) || h.session.SetStatus(StatusGameOver) {
		t.Fatal("expected terminal SetStatus after the run ended to be rejected")
	}
	h.session.CollectLetter(0)
	if got := h.session.Snapshot().SessionsPlayed; got != 1 {
		t.Fatalf("sessions = %d, want 1", got)
	}

	reports := h.reporter.all()
	if len(reports) != 1 {
		t.Fatalf("reports = %d, want 1", len(reports))
	}
	record := reports[0].record
	if record.Status != sessionrecord.StatusVictory || record.Level != MaxLevel || record.Score != 5300 || record.Distance != 1234 {
		t.Fatalf("record = %+v", record)
	}
	if reports[0].runID != state.RunID {
		t.Fatalf("report run id = %q, want %q", reports[0].runID, state.RunID)
	}
}

func TestTakeDamageDecrementsLives(t *testing.T) {
	h := startedHarness(t)
	h.session.TakeDamage()
	state := h.session.Snapshot()
	if state.Lives != BaseLives-1 || state.Status != StatusPlaying {
		t.Fatalf("lives/status = %d/%s, want %d/%s", state.Lives, state.Status, BaseLives-1, StatusPlaying)
	}
}

func TestFloorDistanceGameOverScenario(t *testing.T) {
	h := startedHarness(t, WithDifficulty(difficulty.Expert))
	h.session.AddScore(80)
	h.session.mu.Lock()
	h.session.state.Lives = 1
	h.session.mu.Unlock()
	h.session.SetDistance(98.8)
	h.session.TakeDamage()

	state := h.session.Snapshot()
	if state.Status != StatusGameOver {
		t.Fatalf("status = %s, want %s", state.Status, StatusGameOver)
	}
	if state.Lives != 0 || state.Speed != 0 {
		t.Fatalf("lives/speed = %d/%v, want 0/0", state.Lives, state.Speed)
	}
	if state.TotalDistance != 98 {
		t.Fatalf("total distance = %d, want 98", state.TotalDistance)
	}
	if state.SessionsPlayed != 1 {
		t.Fatalf("sessions = %d, want 1", state.SessionsPlayed)
	}
	if state.BestScore != 100 {
		t.Fatalf("best score = %d, want 100", state.BestScore)
	}

	reports := h.reporter.all()
	if len(reports) != 1 {
		t.Fatalf("reports = %d, want 1", len(reports))
	}
	want := sessionrecord.Record{
		Score:        100,
		Distance:     98,
		Level:        1,
		Status:       sessionrecord.StatusGameOver,
		DifficultyID: "expert",
		EndedAt:      fixedNow,
	}
	if reports[0].record != want {
		t.Fatalf("record = %+v, want %+v", reports[0].record, want)
	}

	h.session.TakeDamage()
	if got := h.session.Snapshot().SessionsPlayed; got != 1 {
		t.Fatalf("sessions after extra damage = %d, want 1", got)
	}
}

func TestShopPurchaseScenario(t *testing.T) {
	h := startedHarness(t)
	h.session.AddScore(2500)

	if !h.session.BuyItem(shop.MaxLife, 1500) {
		t.Fatal("expected MAX_LIFE purchase to succeed")
	}
	state := h.session.Snapshot()
	if state.MaxLives != BaseLives+1 || state.Lives != BaseLives+1 || state.Score != 1000 {
		t.Fatalf("after MAX_LIFE lives=%d/%d score=%d", state.Lives, state.MaxLives, state.Score)
	}

	if h.session.BuyItem(shop.Immortal, 9999) {
		t.Fatal("expected unaffordable purchase to fail")
	}
	after := h.session.Snapshot()
	if after.Score != 1000 || after.HasImmortality {
		t.Fatalf("failed purchase mutated state: score=%d immortality=%v", after.Score, after.HasImmortality)
	}
}

func TestBuyItemUnknownIDNeverDeducts(t *testing.T) {
	h := startedHarness(t)
	h.session.AddScore(5000)
	if h.session.BuyItem("JETPACK", 100) {
		t.Fatal("expected unknown item to fail")
	}
	if got := h.session.Snapshot().Score; got != 5000 {
		t.Fatalf("score = %d, want 5000", got)
	}
}

func TestBuyItemEffects(t *testing.T) {
	h := startedHarness(t)
	h.session.AddScore(10000)
	h.session.OpenShop()

	if !h.session.BuyItem(shop.DoubleJump, 1000) {
		t.Fatal("expected DOUBLE_JUMP purchase to succeed")
	}
	if !h.session.BuyItem(shop.Heal, 1000) {
		t.Fatal("expected HEAL purchase to succeed")
	}
	if !h.session.BuyItem(shop.Immortal, 3000) {
		t.Fatal("expected IMMORTAL purchase to succeed")
	}

	state := h.session.Snapshot()
	if !state.HasDoubleJump || !state.HasImmortality {
		t.Fatalf("flags = %v/%v, want true/true", state.HasDoubleJump, state.HasImmortality)
	}
	if state.IsImmortalityActive {
		t.Fatal("buying IMMORTAL must not open the window")
	}
	if state.Lives != BaseLives {
		t.Fatalf("lives = %d, want %d (heal capped at max)", state.Lives, BaseLives)
	}
	if state.Score != 5000 {
		t.Fatalf("score = %d, want 5000", state.Score)
	}
	if owned := state.Owned(); !owned.DoubleJump || !owned.Immortality {
		t.Fatalf("owned = %+v", owned)
	}
}

func TestBuyItemNegativeCostTreatedAsZero(t *testing.T) {
	h := startedHarness(t)
	if !h.session.BuyItem(shop.Heal, -500) {
		t.Fatal("expected zero-cost purchase to succeed")
	}
	if got := h.session.Snapshot().Score; got != 0 {
		t.Fatalf("score = %d, want 0", got)
	}
}

func TestShopTransitions(t *testing.T) {
	h := newHarness(t)
	if h.session.OpenShop() {
		t.Fatal("expected OpenShop to be rejected in MENU")
	}
	h.session.StartGame()
	if h.session.CloseShop() {
		t.Fatal("expected CloseShop to be rejected while PLAYING")
	}
	if !h.session.OpenShop() {
		t.Fatal("expected OpenShop to succeed while PLAYING")
	}
	h.session.TakeDamage()
	h.session.CollectLetter(0)
	state := h.session.Snapshot()
	if state.Lives != BaseLives || len(state.CollectedLetters) != 0 {
		t.Fatal("world events must be ignored while in SHOP")
	}
	if !h.session.CloseShop() {
		t.Fatal("expected CloseShop to succeed in SHOP")
	}
	if got := h.session.Snapshot().Status; got != StatusPlaying {
		t.Fatalf("status = %s, want %s", got, StatusPlaying)
	}
}

func TestActivateImmortalityRequiresCapability(t *testing.T) {
	h := startedHarness(t)
	if h.session.ActivateImmortality() {
		t.Fatal("expected activation without capability to fail")
	}
	if h.session.Snapshot().IsImmortalityActive || h.scheduler.count() != 0 {
		t.Fatal("activation without capability must not schedule a timer")
	}
}

func TestImmortalityWindowExpires(t *testing.T) {
	h := startedHarness(t)
	h.session.AddScore(3000)
	h.session.BuyItem(shop.Immortal, 3000)

	if !h.session.ActivateImmortality() {
		t.Fatal("expected activation to succeed")
	}
	if !h.session.Snapshot().IsImmortalityActive {
		t.Fatal("expected window to be open")
	}
	if got := h.scheduler.timers[0].delay; got != ImmortalityDuration {
		t.Fatalf("delay = %v, want %v", got, ImmortalityDuration)
	}

	h.session.TakeDamage()
	if got := h.session.Snapshot().Lives; got != BaseLives {
		t.Fatalf("lives = %d, want %d while immortal", got, BaseLives)
	}

	h.scheduler.fire(t, 0)
	if h.session.Snapshot().IsImmortalityActive {
		t.Fatal("expected window to close after the timer fires")
	}
	h.session.TakeDamage()
	if got := h.session.Snapshot().Lives; got != BaseLives-1 {
		t.Fatalf("lives = %d, want %d after window", got, BaseLives-1)
	}
}

func TestActivateWhileActiveIsNoop(t *testing.T) {
	h := startedHarness(t)
	h.session.AddScore(3000)
	h.session.BuyItem(shop.Immortal, 3000)
	h.session.ActivateImmortality()

	if h.session.ActivateImmortality() {
		t.Fatal("expected activation while active to be a no-op")
	}
	if got := h.scheduler.count(); got != 1 {
		t.Fatalf("timers = %d, want 1", got)
	}
	if h.scheduler.timers[0].stopped {
		t.Fatal("original window must not be cancelled")
	}
}

func TestRestartCancelsPendingTimer(t *testing.T) {
	h := startedHarness(t)
	h.session.AddScore(3000)
	h.session.BuyItem(shop.Immortal, 3000)
	h.session.ActivateImmortality()
	if !h.session.SetStatus(StatusGameOver) {
		t.Fatal("expected SetStatus(GAME_OVER) to succeed during a run")
	}
	if !h.scheduler.timers[0].stopped {
		t.Fatal("terminal transition must stop the pending timer")
	}

	h.session.RestartGame()
	h.session.AddScore(3000)
	h.session.BuyItem(shop.Immortal, 3000)
	h.session.ActivateImmortality()

	// The first run's callback fires late; it must not close the new window.
	h.scheduler.fire(t, 0)
	if !h.session.Snapshot().IsImmortalityActive {
		t.Fatal("stale timer closed a window from a later run")
	}
	h.scheduler.fire(t, 1)
	if h.session.Snapshot().IsImmortalityActive {
		t.Fatal("expected current timer to close the window")
	}
}

func TestSetStatusRoutesThroughFinalization(t *testing.T) {
	h := startedHarness(t)
	h.session.SetDistance(10.7)
	if !h.session.SetStatus(StatusGameOver) {
		t.Fatal("expected SetStatus(GAME_OVER) to succeed")
	}
	state := h.session.Snapshot()
	if state.Speed != 0 || !state.SessionFinalized || state.SessionsPlayed != 1 || state.TotalDistance != 10 {
		t.Fatalf("state after SetStatus = %+v", state)
	}
	if h.session.SetStatus(StatusPlaying) || h.session.SetStatus(StatusShop) {
		t.Fatal("expected PLAYING/SHOP via SetStatus to be rejected")
	}
	if len(h.reporter.all()) != 1 {
		t.Fatal("expected exactly one report")
	}
}

func TestSetStatusTerminalRejectedInMenu(t *testing.T) {
	h := newHarness(t)
	if h.session.SetStatus(StatusGameOver) {
		t.Fatal("expected terminal SetStatus to be rejected in MENU")
	}
	if got := h.session.Snapshot().SessionsPlayed; got != 0 {
		t.Fatalf("sessions = %d, want 0", got)
	}
}

func TestRestartPreservesStatsAndDifficulty(t *testing.T) {
	h := startedHarness(t, WithDifficulty(difficulty.Relaxed))
	h.session.AddScore(1000)
	h.session.SetDistance(50)
	h.session.SetStatus(StatusGameOver)
	firstRun := h.session.Snapshot().RunID

	if !h.session.RestartGame() {
		t.Fatal("expected RestartGame from GAME_OVER to succeed")
	}
	state := h.session.Snapshot()
	if state.Score != 0 || state.Distance != 0 || state.Lives != BaseLives || state.SessionFinalized {
		t.Fatalf("run fields not reset: %+v", state)
	}
	if state.BestScore != 850 || state.SessionsPlayed != 1 || state.TotalDistance != 50 {
		t.Fatalf("stats = %d/%d/%d, want 850/1/50", state.BestScore, state.SessionsPlayed, state.TotalDistance)
	}
	if state.DifficultyID != difficulty.Relaxed {
		t.Fatalf("difficulty = %s, want relaxed", state.DifficultyID)
	}
	if state.RunID == firstRun {
		t.Fatal("expected a new run id")
	}
}

func TestReturnToMenuAllowsNewDifficulty(t *testing.T) {
	h := startedHarness(t)
	if h.session.ReturnToMenu() {
		t.Fatal("expected ReturnToMenu to be rejected during a run")
	}
	h.session.SetStatus(StatusGameOver)
	if !h.session.ReturnToMenu() {
		t.Fatal("expected ReturnToMenu from GAME_OVER to succeed")
	}
	if !h.session.SetDifficulty(difficulty.Expert) {
		t.Fatal("expected SetDifficulty after returning to MENU")
	}
	if !h.session.StartGame() {
		t.Fatal("expected StartGame from MENU")
	}
	if got := h.session.Snapshot().SessionsPlayed; got != 1 {
		t.Fatalf("sessions = %d, want 1", got)
	}
}

func TestSetTargetLaneClamps(t *testing.T) {
	h := startedHarness(t)
	h.session.SetTargetLane(5)
	if got := h.session.Snapshot().CurrentLane; got != 1 {
		t.Fatalf("lane = %d, want 1", got)
	}
	h.session.SetTargetLane(-5)
	if got := h.session.Snapshot().CurrentLane; got != -1 {
		t.Fatalf("lane = %d, want -1", got)
	}
	h.session.AdvanceLevel()
	h.session.SetTargetLane(-5)
	if got := h.session.Snapshot().CurrentLane; got != -2 {
		t.Fatalf("lane = %d, want -2 with 5 lanes", got)
	}
}

func TestTriggerJumpIsEdgeTriggered(t *testing.T) {
	h := startedHarness(t)
	if !h.session.TriggerJumpAt(100) {
		t.Fatal("expected first jump to register")
	}
	if h.session.TriggerJumpAt(100) {
		t.Fatal("expected repeated timestamp to be ignored")
	}
	if !h.session.TriggerJump() {
		t.Fatal("expected clock-stamped jump to register")
	}
	if got := h.session.Snapshot().JumpSignal; got != fixedNow.UnixMilli() {
		t.Fatalf("jump signal = %d, want %d", got, fixedNow.UnixMilli())
	}
}

func TestSetDistanceClamps(t *testing.T) {
	h := startedHarness(t)
	for _, distance := range []float64{-3, math.NaN(), math.Inf(1)} {
		h.session.SetDistance(distance)
		if got := h.session.Snapshot().Distance; got != 0 {
			t.Fatalf("SetDistance(%v) = %v, want 0", distance, got)
		}
	}
	h.session.SetDistance(42.5)
	if got := h.session.Snapshot().Distance; got != 42.5 {
		t.Fatalf("distance = %v, want 42.5", got)
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	h := startedHarness(t)
	h.session.CollectLetter(0)
	snap := h.session.Snapshot()
	snap.CollectedLetters[0] = 5
	if got := h.session.Snapshot().CollectedLetters[0]; got != 0 {
		t.Fatalf("letter = %d, want 0", got)
	}
}

func TestIsolatedSessions(t *testing.T) {
	a := startedHarness(t)
	b := startedHarness(t)
	a.session.AddScore(50)
	if got := b.session.Snapshot().Score; got != 0 {
		t.Fatalf("other session score = %d, want 0", got)
	}
}

func TestConcurrentCommandsAndTimer(t *testing.T) {
	h := startedHarness(t)
	h.session.AddScore(3000)
	h.session.BuyItem(shop.Immortal, 3000)
	h.session.ActivateImmortality()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h.session.SetTargetLane(i%3 - 1)
			h.session.CollectGem(1)
			h.session.TriggerJumpAt(int64(i))
			_ = h.session.Snapshot()
		}(i)
	}
	h.scheduler.fire(t, 0)
	wg.Wait()

	state := h.session.Snapshot()
	if state.GemsCollected != 8 {
		t.Fatalf("gems = %d, want 8", state.GemsCollected)
	}
	if state.IsImmortalityActive {
		t.Fatal("expected window to be closed")
	}
}

func TestCloseStopsTimer(t *testing.T) {
	h := startedHarness(t)
	h.session.AddScore(3000)
	h.session.BuyItem(shop.Immortal, 3000)
	h.session.ActivateImmortality()
	h.session.Close()
	if !h.scheduler.timers[0].stopped {
		t.Fatal("expected Close to stop the timer")
	}
}
