package runner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig()
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Difficulty != "standard" {
		t.Fatalf("difficulty = %q, want standard", cfg.Difficulty)
	}
	if cfg.Locale != "en-US" {
		t.Fatalf("locale = %q, want en-US", cfg.Locale)
	}
	if !cfg.Assertions {
		t.Fatal("expected assertions enabled by default")
	}
	if cfg.Telemetry.Endpoint != "" {
		t.Fatalf("telemetry endpoint = %q, want empty", cfg.Telemetry.Endpoint)
	}
}

func TestParseConfigFromEnv(t *testing.T) {
	t.Setenv("AURORA_RUNNER_DIFFICULTY", "expert")
	t.Setenv("AURORA_RUNNER_LOCALE", "pt-BR")
	t.Setenv("AURORA_RUNNER_TELEMETRY_ENDPOINT", "http://collector.local/v1/session-records")
	t.Setenv("AURORA_RUNNER_TELEMETRY_SIGNING_KEY", "secret")
	t.Setenv("AURORA_RUNNER_TELEMETRY_TIMEOUT", "1s")

	cfg, err := ParseConfig()
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Difficulty != "expert" || cfg.Locale != "pt-BR" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Telemetry.Endpoint != "http://collector.local/v1/session-records" {
		t.Fatalf("telemetry endpoint = %q", cfg.Telemetry.Endpoint)
	}
	if cfg.Telemetry.SigningKey != "secret" || cfg.Telemetry.Timeout != time.Second {
		t.Fatalf("telemetry = %+v", cfg.Telemetry)
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	cfg := Config{Difficulty: "standard", Locale: "en-US"}
	root := NewRootCommand(&cfg)
	if err := root.PersistentFlags().Parse([]string{"--difficulty", "relaxed", "--locale", "pt-BR"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if cfg.Difficulty != "relaxed" || cfg.Locale != "pt-BR" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestDifficultiesCommandIsLocalized(t *testing.T) {
	var out bytes.Buffer
	err := Execute(context.Background(), Config{Locale: "en-US"}, []string{"difficulties", "--locale", "pt-BR"}, &out, &out)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("output = %q, want 3 presets", out.String())
	}
	if !strings.HasPrefix(lines[2], "expert") || !strings.Contains(lines[2], "x1.18") {
		t.Fatalf("expert line = %q", lines[2])
	}
}

func TestScriptCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smoke.lua")
	script := `
local scene = Scenario.new("smoke")
scene:start():score(40):status("GAME_OVER")
scene:expect({status = "GAME_OVER", reports = 1})
return scene
`
	if err := os.WriteFile(path, []byte(script), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}

	var out, errOut bytes.Buffer
	err := Execute(context.Background(), Config{Assertions: true}, []string{"script", path}, &out, &errOut)
	if err != nil {
		t.Fatalf("execute: %v (stderr %q)", err, errOut.String())
	}
	want := "scenario smoke passed: 4 steps, status=GAME_OVER score=40 records=1"
	if got := strings.TrimSpace(out.String()); got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestScriptCommandReportsFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failing.lua")
	script := `return Scenario.new("failing"):expect({status = "PLAYING"})`
	if err := os.WriteFile(path, []byte(script), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}

	var out bytes.Buffer
	err := Execute(context.Background(), Config{Assertions: true}, []string{"script", path}, &out, &out)
	if err == nil || !strings.Contains(err.Error(), "scenario failing") {
		t.Fatalf("err = %v, want scenario failure", err)
	}
}

func TestPlayStopsWithContext(t *testing.T) {
	previous := newScreen
	t.Cleanup(func() { newScreen = previous })
	newScreen = func() (tcell.Screen, error) {
		return tcell.NewSimulationScreen("UTF-8"), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	cfg := Config{Difficulty: "standard", LogFile: filepath.Join(t.TempDir(), "runner.log")}
	if err := Execute(ctx, cfg, []string{"play"}, &out, &out); err != nil {
		t.Fatalf("execute play: %v", err)
	}
	if _, err := os.Stat(cfg.LogFile); err != nil {
		t.Fatalf("expected log file: %v", err)
	}
}

func TestPlayRejectsUnknownDifficulty(t *testing.T) {
	var out bytes.Buffer
	err := Execute(context.Background(), Config{}, []string{"play", "--difficulty", "brutal"}, &out, &out)
	if err == nil {
		t.Fatal("expected error for unknown difficulty")
	}
}
