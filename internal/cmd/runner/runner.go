// Package runner wires the aurora-runner command line: the terminal game,
// scripted scenarios and the MCP bridge.
package runner

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	entrypoint "github.com/louisbranch/aurora-runner/internal/platform/cmd"
	"github.com/louisbranch/aurora-runner/internal/services/runner/app"
	"github.com/louisbranch/aurora-runner/internal/services/runner/domain/difficulty"
	"github.com/louisbranch/aurora-runner/internal/services/runner/domain/labels"
	"github.com/louisbranch/aurora-runner/internal/services/runner/mcpserver"
	"github.com/louisbranch/aurora-runner/internal/services/runner/telemetry"
	"github.com/louisbranch/aurora-runner/internal/services/runner/tui"
	"github.com/louisbranch/aurora-runner/internal/tools/scenario"
)

// Config holds runner command configuration.
type Config struct {
	Difficulty string           `env:"AURORA_RUNNER_DIFFICULTY" envDefault:"standard"`
	Locale     string           `env:"AURORA_RUNNER_LOCALE"     envDefault:"en-US"`
	LogFile    string           `env:"AURORA_RUNNER_LOG_FILE"`
	Telemetry  telemetry.Config `envPrefix:"AURORA_RUNNER_"`

	Assertions bool `env:"AURORA_RUNNER_SCENARIO_ASSERT"  envDefault:"true"`
	Verbose    bool `env:"AURORA_RUNNER_SCENARIO_VERBOSE"`
}

// ParseConfig loads the environment defaults.
func ParseConfig() (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// newScreen is replaced in tests with a simulation screen.
var newScreen = tcell.NewScreen

// NewRootCommand builds the command tree. Flags override the values already
// loaded into cfg.
func NewRootCommand(cfg *Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "runner",
		Short:         "Aurora endless runner",
		Long:          `Plays the Aurora endless runner in the terminal, replays scripted scenarios, or serves the session over MCP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&cfg.Difficulty, "difficulty", cfg.Difficulty, "difficulty preset (relaxed, standard, expert)")
	flags.StringVar(&cfg.Locale, "locale", cfg.Locale, "display locale (en-US, pt-BR)")
	flags.StringVar(&cfg.Telemetry.Endpoint, "telemetry-endpoint", cfg.Telemetry.Endpoint, "session record collector URL")

	root.AddCommand(newPlayCommand(cfg), newScriptCommand(cfg), newMCPCommand(cfg), newDifficultiesCommand(cfg))
	return root
}

// Execute runs the command tree with args under the shared telemetry setup.
func Execute(ctx context.Context, cfg Config, args []string, out, errOut io.Writer) error {
	root := NewRootCommand(&cfg)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceRunner, func(ctx context.Context) error {
		return root.ExecuteContext(ctx)
	})
}

func newRuntime(cfg *Config) (*app.Runtime, error) {
	return app.New(app.Config{
		Difficulty: cfg.Difficulty,
		Locale:     cfg.Locale,
		Telemetry:  cfg.Telemetry,
	})
}

func newPlayCommand(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			restore, err := redirectLog(cfg.LogFile)
			if err != nil {
				return err
			}
			defer restore()

			rt, err := newRuntime(cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			screen, err := newScreen()
			if err != nil {
				return fmt.Errorf("create screen: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("init screen: %w", err)
			}
			defer screen.Fini()

			return tui.NewGame(rt, nil).Run(cmd.Context(), screen)
		},
	}
	cmd.Flags().StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "write diagnostics to this file instead of discarding them")
	return cmd
}

// redirectLog keeps diagnostics off the game screen.
func redirectLog(path string) (func(), error) {
	previous := log.Writer()
	if path == "" {
		log.SetOutput(io.Discard)
		return func() { log.SetOutput(previous) }, nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(file)
	return func() {
		log.SetOutput(previous)
		_ = file.Close()
	}, nil
}

func newScriptCommand(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "script <file.lua>",
		Short: "Run a Lua scenario against a fresh session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scene, err := scenario.LoadScenarioFromFile(args[0])
			if err != nil {
				return err
			}
			mode := scenario.AssertionStrict
			if !cfg.Assertions {
				mode = scenario.AssertionLogOnly
			}
			runner := scenario.NewRunner(scenario.Config{
				Assertions: mode,
				Verbose:    cfg.Verbose,
				Logger:     log.New(cmd.ErrOrStderr(), "", 0),
			})
			result, err := runner.RunScenario(cmd.Context(), scene)
			if err != nil {
				return fmt.Errorf("scenario %s: %w", scene.Name, err)
			}
			final := result.Final
			fmt.Fprintf(cmd.OutOrStdout(), "scenario %s passed: %d steps, status=%s score=%d records=%d\n",
				scene.Name, len(scene.Steps), final.Status, final.Score, len(result.Records))
			return nil
		},
	}
	cmd.Flags().BoolVar(&cfg.Assertions, "assert", cfg.Assertions, "fail on the first expectation mismatch (disable to log mismatches)")
	cmd.Flags().BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "log every step")
	return cmd
}

func newMCPCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the session as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime(cfg)
			if err != nil {
				return err
			}
			defer rt.Close()
			return mcpserver.Run(cmd.Context(), rt)
		},
	}
}

func newDifficultiesCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "difficulties",
		Short: "List difficulty presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l := labels.New(cfg.Locale)
			for _, preset := range difficulty.Presets() {
				text := l.Difficulty(preset)
				fmt.Fprintf(cmd.OutOrStdout(), "%-9s %-10s speed x%.2f score x%.2f  %s\n",
					preset.ID, text.Label, preset.SpeedMultiplier, preset.ScoreMultiplier, text.Description)
			}
			return nil
		},
	}
}
