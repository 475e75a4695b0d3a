package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/smileynet/adforge/internal/api"
	"github.com/smileynet/adforge/internal/brief"
	"github.com/smileynet/adforge/internal/config"
	"github.com/smileynet/adforge/internal/display"
	"github.com/smileynet/adforge/internal/log"
	"github.com/smileynet/adforge/internal/orchestrator"
	"github.com/smileynet/adforge/internal/pipeline"
	"github.com/smileynet/adforge/internal/refine"
	"github.com/smileynet/adforge/internal/studio"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// CLI is the top-level command structure for adforge.
type CLI struct {
	Version  kong.VersionFlag `help:"Show version." short:"V"`
	Generate GenerateCmd      `cmd:"" help:"Generate ad creatives from a campaign brief."`
	Health   HealthCmd        `cmd:"" help:"Check backend availability."`
}

// GenerateCmd runs a generation session: the interactive studio on a TTY,
// or a single headless run with --no-tui.
type GenerateCmd struct {
	Product     string   `help:"Product or service name (headless mode)."`
	Description string   `help:"Product description (headless mode)."`
	Audience    string   `help:"Target audience (headless mode)."`
	Tone        string   `help:"Brand tone." default:"professional"`
	Platforms   []string `help:"Target platforms (headless mode)." sep:","`
	Server      string   `help:"Backend base URL (overrides config)."`
	Timeout     int      `help:"Request timeout in seconds." default:"0"`
	NoTUI       bool     `help:"Force headless output even if stdout is a TTY." default:"false"`
}

// HealthCmd checks backend availability.
type HealthCmd struct {
	Server string `help:"Backend base URL (overrides config)."`
}

// generationFailure marks errors from the generation flow so exitCode can
// distinguish them from setup errors.
type generationFailure struct {
	err error
}

func (e *generationFailure) Error() string { return e.err.Error() }
func (e *generationFailure) Unwrap() error { return e.err }

// loadConfig loads layered config from user and project paths with env
// overrides, after picking up a local .env file.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.LoadLayered(
		os.ExpandEnv("$HOME/.config/adforge/config.yaml"),
		".adforge/config.yaml",
	)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Run executes the generate command.
func (g *GenerateCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	// Apply CLI flag overrides.
	if g.Server != "" {
		cfg.Server.URL = g.Server
	}
	if g.Timeout > 0 {
		cfg.Server.Timeout = time.Duration(g.Timeout) * time.Second
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	sessionID := uuid.NewString()
	logger, err := log.New(cfg.Log.File, cfg.Log.Level, sessionID)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	defer func() { _ = logger.Close() }()
	logger.Infof("session started: server=%s", cfg.Server.URL)

	client := api.NewClient(cfg.Server.URL,
		api.WithTimeout(cfg.Server.Timeout),
		api.WithLogger(logger),
	)

	if g.NoTUI || !display.IsTTY(os.Stdout) {
		return g.runHeadless(os.Stdout, client, cfg, logger)
	}
	return g.runStudio(client, cfg, logger)
}

// runHeadless performs one generation with plain text output. The brief
// comes from flags; validation errors surface on stderr instead of being
// swallowed the way the form does it.
func (g *GenerateCmd) runHeadless(w io.Writer, client *api.Client, cfg *config.Config, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	bridge := display.NewBridge()
	animator := pipeline.New(
		pipeline.WithDwell(cfg.Pipeline.StageDwell),
		pipeline.WithStatusCallback(bridge.Stage),
	)
	orch := orchestrator.New(client, animator, orchestrator.WithLogger(logger))

	plain := display.NewPlain(w)
	displayDone := make(chan error, 1)
	go func() {
		displayDone <- plain.Run(ctx, bridge.Events())
	}()

	fields := brief.Fields{
		ProductName: g.Product,
		Description: g.Description,
		Audience:    g.Audience,
		Tone:        g.Tone,
		Platforms:   g.Platforms,
	}

	result, err := orch.Submit(ctx, fields)
	if err != nil {
		bridge.Error(err)
		<-displayDone
		return &generationFailure{err: err}
	}

	bridge.Done(result)
	if err := <-displayDone; err != nil {
		return &generationFailure{err: err}
	}
	return nil
}

// runStudio launches the interactive TUI.
func (g *GenerateCmd) runStudio(client *api.Client, cfg *config.Config, logger *log.Logger) error {
	stageCh := make(chan pipeline.StageUpdate, 16)
	animator := pipeline.New(
		pipeline.WithDwell(cfg.Pipeline.StageDwell),
		pipeline.WithStatusCallback(func(u pipeline.StageUpdate) { stageCh <- u }),
	)
	orch := orchestrator.New(client, animator, orchestrator.WithLogger(logger))
	loop := refine.NewLoop(client, orch, refine.WithLogger(logger))

	m := studio.NewModel(studio.Deps{
		Runner:   orch,
		Sender:   loop,
		Stages:   stageCh,
		Download: client.DownloadURL,
	})

	prog := tea.NewProgram(m, tea.WithAltScreen())
	return g.run(prog)
}

// teaRunner abstracts Bubble Tea program execution for testing.
type teaRunner interface {
	Run() (tea.Model, error)
}

// run executes the tea program, enabling testable wiring.
func (g *GenerateCmd) run(prog teaRunner) error {
	_, err := prog.Run()
	return err
}

// Run executes the health command.
func (h *HealthCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	if h.Server != "" {
		cfg.Server.URL = h.Server
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("health: %w", err)
	}

	client := api.NewClient(cfg.Server.URL, api.WithTimeout(cfg.Server.Timeout))
	return h.run(os.Stdout, client)
}

// healthChecker abstracts the api client for testing.
type healthChecker interface {
	Health(ctx context.Context) (*api.HealthStatus, error)
}

// run checks backend health, enabling testable wiring.
func (h *HealthCmd) run(w io.Writer, client healthChecker) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := client.Health(ctx)
	if err != nil {
		return &generationFailure{err: fmt.Errorf("backend unreachable: %w", err)}
	}

	_, _ = fmt.Fprintf(w, "%s (%s)\n", status.Status, strings.Join(status.Agents, ", "))
	return nil
}

// Exit codes.
const (
	exitSuccess    = 0
	exitGeneration = 1
	exitSetup      = 2
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var gf *generationFailure
	if errors.As(err, &gf) {
		return exitGeneration
	}
	return exitSetup
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("adforge"),
		kong.Description("AI ad creative studio client."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
