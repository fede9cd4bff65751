package system

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/orbarena/arena/internal/config"
	"github.com/orbarena/arena/internal/core/event"
	coresys "github.com/orbarena/arena/internal/core/system"
	"github.com/orbarena/arena/internal/world"
)

// Rules decides how much an absorbing orb grows and when the player
// levels up. Implemented by the Lua bridge and by scripting.Fallback.
type Rules interface {
	AbsorbGrowth(biggerRadius, smallerRadius float64, byPlayer bool) float64
	NextLevel(score, level int) int
}

// CollisionSystem resolves orb-orb overlaps into absorptions or the
// player's loss, then player-pickup overlaps into fuel. Phase 2 (Collide).
//
// Pairs are visited over the slot range as it stood when the pass began:
// i from last to first, j from i-1 down to 0. A removed orb leaves a
// tombstone, so it is never paired again, and replacements land past the
// range and wait for the next tick.
type CollisionSystem struct {
	world   *world.State
	factory *world.Factory
	spawner *Spawner
	rules   Rules
	bus     *event.Bus
	tuning  config.TuningConfig
	log     *zap.Logger
}

func NewCollisionSystem(ws *world.State, factory *world.Factory, spawner *Spawner, rules Rules, bus *event.Bus, cfg *config.Config, log *zap.Logger) *CollisionSystem {
	return &CollisionSystem{
		world:   ws,
		factory: factory,
		spawner: spawner,
		rules:   rules,
		bus:     bus,
		tuning:  cfg.Tuning,
		log:     log,
	}
}

func (s *CollisionSystem) Phase() coresys.Phase { return coresys.PhaseCollide }

func (s *CollisionSystem) Update(_ time.Duration) {
	if s.world.Outcome != world.OutcomeRunning {
		return
	}
	n := s.world.OrbSlots()
	for i := n - 1; i >= 0; i-- {
		for j := i - 1; j >= 0; j-- {
			a := s.world.OrbAt(i)
			if a == nil {
				break
			}
			b := s.world.OrbAt(j)
			if b == nil || !overlaps(a.X, a.Y, a.Radius, b.X, b.Y, b.Radius) {
				continue
			}
			if a.Radius == b.Radius {
				continue
			}
			bigger, smaller := a, b
			if b.Radius > a.Radius {
				bigger, smaller = b, a
			}
			if smaller.IsPlayer() {
				s.playerLost(bigger, smaller)
				return
			}
			s.absorb(bigger, smaller)
		}
	}
	s.collectFuel()
}

func overlaps(ax, ay, ar, bx, by, br float64) bool {
	return math.Hypot(ax-bx, ay-by) < ar+br
}

// playerLost ends the match. Nothing else in the world changes this tick.
func (s *CollisionSystem) playerLost(bigger, player *world.Orb) {
	s.world.Outcome = world.OutcomeLost
	event.Emit(s.bus, event.MatchEnded{
		Tick:     s.world.Tick,
		Won:      false,
		Score:    s.world.Score,
		Level:    s.world.Level,
		Radius:   player.Radius,
		Absorber: bigger.ID,
	})
	s.log.Info("player absorbed",
		zap.Uint64("tick", s.world.Tick),
		zap.Float64("player_radius", player.Radius),
		zap.Float64("absorber_radius", bigger.Radius))
}

func (s *CollisionSystem) absorb(bigger, smaller *world.Orb) {
	for k := 0; k < s.tuning.ParticleCount; k++ {
		s.world.Particles = append(s.world.Particles, s.factory.NewParticle(smaller.X, smaller.Y, smaller.Color))
	}

	byPlayer := bigger.IsPlayer()
	bigger.Grow(s.rules.AbsorbGrowth(bigger.Radius, smaller.Radius, byPlayer), s.factory.TailCapacity)

	if byPlayer {
		s.world.Score++
		if next := s.rules.NextLevel(s.world.Score, s.world.Level); next > s.world.Level {
			s.world.Level = next
			event.Emit(s.bus, event.LevelReached{Tick: s.world.Tick, Level: next, Score: s.world.Score})
		}
	}

	event.Emit(s.bus, event.OrbAbsorbed{
		Tick:          s.world.Tick,
		Bigger:        bigger.ID,
		Smaller:       smaller.ID,
		ByPlayer:      byPlayer,
		SmallerRadius: smaller.Radius,
		NewRadius:     bigger.Radius,
		X:             smaller.X,
		Y:             smaller.Y,
	})
	if ce := s.log.Check(zap.DebugLevel, "orb absorbed"); ce != nil {
		ce.Write(
			zap.Uint64("tick", s.world.Tick),
			zap.Bool("by_player", byPlayer),
			zap.Float64("smaller_radius", smaller.Radius),
			zap.Float64("new_radius", bigger.Radius))
	}

	s.world.RemoveOrb(smaller.ID)
	s.spawner.SpawnAI()
}

// collectFuel gives the player every pickup it overlaps. Like orbs, only
// pickups present when the pass began are checked.
func (s *CollisionSystem) collectFuel() {
	p := s.world.Player()
	if p == nil {
		return
	}
	for i := s.world.PickupSlots() - 1; i >= 0; i-- {
		f := s.world.PickupAt(i)
		if f == nil || !overlaps(p.X, p.Y, p.Radius, f.X, f.Y, f.Radius) {
			continue
		}
		gained := s.world.AddFuel(s.tuning.FuelValue)
		s.world.RemovePickup(f.ID)
		s.spawner.SpawnFuel()
		event.Emit(s.bus, event.FuelCollected{
			Tick:    s.world.Tick,
			Pickup:  f.ID,
			Gained:  gained,
			Reserve: s.world.Fuel,
		})
	}
}
