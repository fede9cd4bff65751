package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/orbarena/arena/internal/config"
	"github.com/orbarena/arena/internal/data"
	"github.com/orbarena/arena/internal/observer"
	"github.com/orbarena/arena/internal/scripting"
	"github.com/orbarena/arena/internal/session"
	"github.com/orbarena/arena/internal/sim"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(seed int64) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              ORB ARENA  v0.1.0            \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        grow by absorption, stay big       \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mseed:\033[0m %d\n\n", seed)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, value any) {
	numStr := fmt.Sprint(value)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main game logic ───────────────────────────────────────────────

func run() error {
	scenarioPath := flag.String("scenario", "", "YAML scenario to play instead of a random arena")
	flag.Parse()

	// 1. Load config
	cfgPath := "config/orbarena.toml"
	if p := os.Getenv("ORBARENA_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if errors.Is(err, os.ErrNotExist) && os.Getenv("ORBARENA_CONFIG") == "" {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// The terminal owns stdout once the game starts.
	if cfg.Logging.File == "" {
		cfg.Logging.File = "orbarena.log"
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 3. Rules
	rules, err := scripting.NewEngine(cfg.Tuning, cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer rules.Close()

	engine := sim.New(cfg, rules, log)
	printBanner(engine.Seed())

	printSection("arena")
	var scenario *data.Scenario
	if *scenarioPath != "" {
		scenario, err = data.LoadScenario(*scenarioPath)
		if err != nil {
			return fmt.Errorf("load scenario: %w", err)
		}
		printOK("scenario " + scenario.Name)
	} else {
		printStat("world size", cfg.Sim.WorldSize)
		printStat("ai orbs", cfg.Sim.NumAI)
		printStat("fuel pickups", cfg.Sim.NumFuel)
	}
	printOK("rules loaded")
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. Optional observer
	renderers := []session.Renderer{}
	if cfg.Observer.Enabled {
		printSection("observer")
		hub := observer.NewHub(cfg.Observer, log)
		ln, err := net.Listen("tcp", cfg.Observer.BindAddress)
		if err != nil {
			return fmt.Errorf("observer listen: %w", err)
		}
		srv := &http.Server{Handler: hub.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("observer server", zap.Error(err))
			}
		}()
		defer func() {
			shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutCtx)
		}()
		renderers = append(renderers, hub)
		printOK("listening on " + ln.Addr().String())
		fmt.Println()
	}

	printReady("starting, logs go to " + cfg.Logging.File)
	time.Sleep(700 * time.Millisecond)

	// 5. Terminal
	term, err := newTerminal(cfg.Sim.MaxFuel)
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	defer term.Close()
	renderers = append(renderers, term)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-term.Quit():
			cancel()
		case <-ctx.Done():
		}
	}()

	opts := session.Options{TickRate: cfg.Sim.TickRate}
	for match := 1; ; match++ {
		if scenario != nil {
			if err := engine.LoadScenario(scenario); err != nil {
				return fmt.Errorf("start scenario: %w", err)
			}
		} else {
			engine.Reset()
		}

		ctrl := session.NewController(engine, term, opts, log, renderers...)
		outcome, err := ctrl.Run(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("shutting down")
				return nil
			}
			return err
		}

		stats := engine.Stats()
		log.Info("match summary",
			zap.Int("match", match),
			zap.Stringer("outcome", outcome),
			zap.Int("score", engine.State().Score),
			zap.Int("level", engine.State().Level),
			zap.Int("absorptions", stats.PlayerAbsorptions),
			zap.Float64("peak_radius", stats.PeakRadius),
			zap.Uint64("ticks", stats.EndTick))

		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return nil
		case <-term.Restart():
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	if cfg.File != "" {
		zapCfg.OutputPaths = []string{cfg.File}
		zapCfg.ErrorOutputPaths = []string{cfg.File}
	}

	return zapCfg.Build()
}
