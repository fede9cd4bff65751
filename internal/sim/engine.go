package sim

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/orbarena/arena/internal/config"
	"github.com/orbarena/arena/internal/core/event"
	coresys "github.com/orbarena/arena/internal/core/system"
	"github.com/orbarena/arena/internal/data"
	"github.com/orbarena/arena/internal/system"
	"github.com/orbarena/arena/internal/world"
)

// Engine owns one World State and the systems that advance it. It is not
// safe for concurrent use; the session controller drives it from a single
// goroutine.
type Engine struct {
	cfg  *config.Config
	log  *zap.Logger
	seed int64

	ws      *world.State
	factory *world.Factory
	spawner *system.Spawner
	bus     *event.Bus
	runner  *coresys.Runner
	ranking *system.RankingSystem
	stats   *system.StatsCollector
}

// New wires the systems. cfg must already be validated. The world is empty
// and not running until Reset or LoadScenario.
func New(cfg *config.Config, rules system.Rules, log *zap.Logger) *Engine {
	seed := cfg.Sim.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	e := &Engine{
		cfg:  cfg,
		log:  log,
		seed: seed,
		ws:   world.NewState(cfg.Sim.WorldSize, cfg.Sim.MaxFuel, cfg.Tuning.VisionRange),
		bus:  event.NewBus(),
	}
	e.factory = world.NewFactory(cfg, rng)
	e.spawner = system.NewSpawner(e.ws, e.factory, log)
	e.ranking = system.NewRankingSystem(e.ws, cfg)
	e.stats = system.NewStatsCollector(e.bus)

	e.runner = coresys.NewRunner()
	e.runner.Register(system.NewEventDispatchSystem(e.bus))
	e.runner.Register(system.NewParticleSystem(e.ws))
	e.runner.Register(system.NewSteeringSystem(e.ws, cfg))
	e.runner.Register(system.NewFuelSpawnSystem(e.ws, e.spawner, cfg))
	e.runner.Register(system.NewCollisionSystem(e.ws, e.factory, e.spawner, rules, e.bus, cfg, log))
	e.runner.Register(system.NewOutcomeSystem(e.ws, e.bus, log))
	e.runner.Register(e.ranking)
	e.runner.Register(system.NewCleanupSystem(e.ws))
	e.runner.SetHalt(func() bool { return e.ws.Outcome == world.OutcomeLost })
	return e
}

// Reset starts a fresh match: the player at the centre, the configured AI
// orbs and pickups at random, score zero, fuel empty and the starting level.
func (e *Engine) Reset() {
	e.clear(e.cfg.Sim.WorldSize)
	e.spawner.Populate(e.cfg.Sim.PlayerRadius, e.cfg.Sim.NumAI, e.cfg.Sim.NumFuel)
	e.start(e.cfg.Sim.StartingLevel)
	e.log.Info("match reset",
		zap.Int64("seed", e.seed),
		zap.Int("ai", e.ws.AICount()),
		zap.Int("fuel_pickups", e.ws.PickupCount()))
}

// LoadScenario replaces the world with a hand-placed one. The current
// match is left untouched when the scenario does not fit.
func (e *Engine) LoadScenario(sc *data.Scenario) error {
	size := e.cfg.Sim.WorldSize
	if sc.WorldSize > 0 {
		size = sc.WorldSize
	}
	if err := sc.Validate(size, e.cfg.Sim.MaxFuel); err != nil {
		return fmt.Errorf("load scenario %s: %w", sc.Name, err)
	}
	if 2*e.cfg.Sim.AIMaxRadius >= size {
		return fmt.Errorf("load scenario %s: %w: world_size %g cannot fit replacement orbs of radius %g",
			sc.Name, data.ErrScenario, size, e.cfg.Sim.AIMaxRadius)
	}

	e.clear(size)
	e.ws.AddOrb(e.factory.NewOrb(sc.Player.X, sc.Player.Y, sc.Player.Radius, world.RolePlayer))
	for _, def := range sc.Orbs {
		o := e.factory.NewOrb(def.X, def.Y, def.Radius, world.RoleAI)
		o.DX, o.DY = def.VX, def.VY
		if def.Kind != "" {
			k, _ := world.ParseKind(def.Kind) // checked by Validate
			o.AI.Kind = k
		}
		e.ws.AddOrb(o)
	}
	for _, f := range sc.Fuel {
		e.ws.AddPickup(e.factory.NewFuelPickup(f.X, f.Y))
	}
	e.ws.Fuel = sc.FuelReserve
	e.ws.Score = sc.Score
	level := e.cfg.Sim.StartingLevel
	if sc.Level > 0 {
		level = sc.Level
	}
	e.start(level)
	e.log.Info("scenario loaded",
		zap.String("name", sc.Name),
		zap.Int("ai", e.ws.AICount()),
		zap.Int("fuel_pickups", e.ws.PickupCount()))
	return nil
}

func (e *Engine) clear(worldSize float64) {
	e.bus.Drop()
	e.ws.Reset()
	e.ws.WorldSize = worldSize
	e.ranking.Reset()
}

func (e *Engine) start(level int) {
	e.ws.Level = level
	e.ws.Running = true
	e.ranking.Recalculate()
	e.stats.Reset(e.ws.Level, e.ws.Player().Radius)
}

// Tick advances the match by one step using the given key snapshot and
// reports the outcome. It does nothing once the match is not running.
// A terminal outcome stops the match and delivers its pending events.
func (e *Engine) Tick(in world.Input) world.Outcome {
	if !e.ws.Running {
		return e.ws.Outcome
	}
	e.ws.Input = in
	e.ws.Tick++
	e.runner.Tick(e.cfg.Sim.TickRate)

	if e.ws.Outcome.Terminal() {
		e.ws.Running = false
		e.Flush()
		e.log.Info("match over",
			zap.Stringer("outcome", e.ws.Outcome),
			zap.Uint64("tick", e.ws.Tick),
			zap.Int("score", e.ws.Score),
			zap.Int("level", e.ws.Level))
	}
	return e.ws.Outcome
}

// Stop clears the running flag; later ticks are no-ops.
func (e *Engine) Stop() {
	e.ws.Running = false
}

// Flush delivers events that would otherwise wait for the next tick.
func (e *Engine) Flush() {
	e.bus.Flush()
}

func (e *Engine) Running() bool             { return e.ws.Running }
func (e *Engine) Seed() int64               { return e.seed }
func (e *Engine) Snapshot() *world.Snapshot { return e.ws.Snapshot() }
func (e *Engine) Stats() system.MatchStats  { return e.stats.Stats() }

// State exposes the live world for in-process readers on the tick goroutine.
func (e *Engine) State() *world.State { return e.ws }

// Bus lets callers subscribe to match events.
func (e *Engine) Bus() *event.Bus { return e.bus }
