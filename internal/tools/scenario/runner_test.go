package scenario

import (
	"bytes"
	"context"
	"log"
	"path/filepath"
	"strings"
	"testing"
)

func TestScenarioFixtures(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.lua"))
	if err != nil {
		t.Fatalf("glob fixtures: %v", err)
	}
	if len(paths) == 0 {
		t.Fatal("no scenario fixtures found")
	}
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Verbose = true
			cfg.Logger = log.New(testWriter{t}, "", 0)
			if err := RunFile(context.Background(), cfg, path); err != nil {
				t.Fatalf("run scenario: %v", err)
			}
		})
	}
}

func TestStrictExpectationFails(t *testing.T) {
	scenario := mustLoad(t, `
local scene = Scenario.new("strict")
scene:start():score(10)
scene:expect({score = 11})
return scene
`)
	_, err := NewRunner(DefaultConfig()).RunScenario(context.Background(), scenario)
	if err == nil {
		t.Fatal("expected expectation failure")
	}
	if !strings.Contains(err.Error(), "step 3 (expect): score = 10, want 11") {
		t.Fatalf("error = %v", err)
	}
}

func TestLogOnlyExpectationContinues(t *testing.T) {
	scenario := mustLoad(t, `
local scene = Scenario.new("lenient")
scene:start()
scene:expect({status = "MENU"})
scene:score(10)
return scene
`)
	var buf bytes.Buffer
	runner := NewRunner(Config{Assertions: AssertionLogOnly, Logger: log.New(&buf, "", 0)})

	result, err := runner.RunScenario(context.Background(), scenario)
	if err != nil {
		t.Fatalf("run scenario: %v", err)
	}
	if result.Final.Score != 10 {
		t.Fatalf("score = %d, want 10", result.Final.Score)
	}
	if !strings.Contains(buf.String(), "expectation failed: status = PLAYING, want MENU") {
		t.Fatalf("log = %q", buf.String())
	}
}

func TestRunScenarioReturnsRecords(t *testing.T) {
	scenario := mustLoad(t, `
local scene = Scenario.new("records")
scene:start():distance(41.9):status("GAME_OVER")
return scene
`)
	result, err := NewRunner(DefaultConfig()).RunScenario(context.Background(), scenario)
	if err != nil {
		t.Fatalf("run scenario: %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(result.Records))
	}
	if got := result.Records[0].Distance; got != 41 {
		t.Fatalf("record distance = %d, want 41", got)
	}
	if result.Final.RunID != "records-run-1" {
		t.Fatalf("run id = %q, want records-run-1", result.Final.RunID)
	}
}

func TestRunScenarioErrors(t *testing.T) {
	tests := map[string]*Scenario{
		"unknown step":        {Name: "x", Steps: []Step{{Kind: "teleport", Args: map[string]any{}}}},
		"unknown difficulty":  {Name: "x", Steps: []Step{{Kind: "difficulty", Args: map[string]any{"id": "brutal"}}}},
		"unknown expectation": {Name: "x", Steps: []Step{{Kind: "expect", Args: map[string]any{"mana": 3}}}},
		"fractional letter":   {Name: "x", Steps: []Step{{Kind: "letter", Args: map[string]any{"index": 1.5}}}},
		"negative wait":       {Name: "x", Steps: []Step{{Kind: "wait", Args: map[string]any{"seconds": -1}}}},
	}
	for name, scenario := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := NewRunner(DefaultConfig()).RunScenario(context.Background(), scenario); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRunScenarioHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	scenario := &Scenario{Name: "cancelled", Steps: []Step{{Kind: "start", Args: map[string]any{}}}}
	if _, err := NewRunner(DefaultConfig()).RunScenario(ctx, scenario); err == nil {
		t.Fatal("expected context error")
	}
}

func TestRunScenarioRequiresScenario(t *testing.T) {
	if _, err := NewRunner(DefaultConfig()).RunScenario(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil scenario")
	}
}

func mustLoad(t *testing.T, source string) *Scenario {
	t.Helper()
	scenario, err := LoadScenario(t.Name(), source)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	return scenario
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
