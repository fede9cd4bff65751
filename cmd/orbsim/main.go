// orbsim plays headless matches with the autopilot and reports the results.
//
// Usage:
//
//	go run ./cmd/orbsim -matches 20 -max-ticks 20000
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/orbarena/arena/internal/config"
	"github.com/orbarena/arena/internal/data"
	"github.com/orbarena/arena/internal/scripting"
	"github.com/orbarena/arena/internal/session"
	"github.com/orbarena/arena/internal/sim"
	"github.com/orbarena/arena/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

type summary struct {
	matches, won, lost, unfinished int
	bestScore                      int
	bestLevel                      int
	totalTicks                     uint64
}

func run() error {
	matches := flag.Int("matches", 10, "number of matches to play")
	maxTicks := flag.Uint64("max-ticks", 20000, "stop a match after this many ticks (0 = no limit)")
	seed := flag.Int64("seed", 0, "override the configured seed (0 keeps it)")
	scenarioPath := flag.String("scenario", "", "YAML scenario to replay every match")
	flag.Parse()

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
	if *seed != 0 {
		cfg.Sim.Seed = *seed
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	rules, err := scripting.NewEngine(cfg.Tuning, cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer rules.Close()

	var scenario *data.Scenario
	if *scenarioPath != "" {
		if scenario, err = data.LoadScenario(*scenarioPath); err != nil {
			return fmt.Errorf("load scenario: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine := sim.New(cfg, rules, log)
	log.Info("batch started",
		zap.Int64("seed", engine.Seed()),
		zap.Int("matches", *matches),
		zap.Uint64("max_ticks", *maxTicks))

	var sum summary
	for i := 1; i <= *matches; i++ {
		if scenario != nil {
			if err := engine.LoadScenario(scenario); err != nil {
				return err
			}
		} else {
			engine.Reset()
		}

		pilot := session.NewAutopilot(cfg.Tuning.VisionRange, cfg.Tuning.BoostCost)
		ctrl := session.NewController(engine, pilot, session.Options{MaxTicks: *maxTicks}, log, pilot)
		outcome, err := ctrl.Run(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Warn("batch interrupted", zap.Int("completed", sum.matches))
				break
			}
			return err
		}

		ws := engine.State()
		stats := engine.Stats()
		sum.matches++
		sum.totalTicks += ws.Tick
		sum.bestScore = max(sum.bestScore, ws.Score)
		sum.bestLevel = max(sum.bestLevel, ws.Level)
		switch outcome {
		case world.OutcomeWon:
			sum.won++
		case world.OutcomeLost:
			sum.lost++
		default:
			sum.unfinished++
		}
		log.Info("match finished",
			zap.Int("match", i),
			zap.Stringer("outcome", outcome),
			zap.Uint64("ticks", ws.Tick),
			zap.Int("score", ws.Score),
			zap.Int("level", ws.Level),
			zap.Int("absorptions", stats.Absorptions),
			zap.Int("player_absorptions", stats.PlayerAbsorptions),
			zap.Int("pickups", stats.PickupsCollected),
			zap.Float64("peak_radius", stats.PeakRadius))
	}

	avg := 0.0
	if sum.matches > 0 {
		avg = float64(sum.totalTicks) / float64(sum.matches)
	}
	log.Info("batch finished",
		zap.Int("matches", sum.matches),
		zap.Int("won", sum.won),
		zap.Int("lost", sum.lost),
		zap.Int("unfinished", sum.unfinished),
		zap.Int("best_score", sum.bestScore),
		zap.Int("best_level", sum.bestLevel),
		zap.Float64("avg_ticks", avg))
	return nil
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
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	if cfg.File != "" {
		zapCfg.OutputPaths = []string{cfg.File}
	}

	return zapCfg.Build()
}
