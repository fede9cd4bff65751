package system

import (
	"math"
	"math/rand"
	"testing"

	"go.uber.org/zap"

	"github.com/orbarena/arena/internal/config"
	"github.com/orbarena/arena/internal/core/event"
	coresys "github.com/orbarena/arena/internal/core/system"
	"github.com/orbarena/arena/internal/scripting"
	"github.com/orbarena/arena/internal/world"
)

const eps = 1e-9

type harness struct {
	cfg       *config.Config
	ws        *world.State
	factory   *world.Factory
	spawner   *Spawner
	bus       *event.Bus
	runner    *coresys.Runner
	steering  *SteeringSystem
	collision *CollisionSystem
	stats     *StatsCollector
	ranking   *RankingSystem
}

func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()
	cfg := config.Default()
	cfg.Sim.WorldSize = 1000
	if mutate != nil {
		mutate(cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	log := zap.NewNop()
	h := &harness{
		cfg: cfg,
		ws:  world.NewState(cfg.Sim.WorldSize, cfg.Sim.MaxFuel, cfg.Tuning.VisionRange),
		bus: event.NewBus(),
	}
	h.ws.Level = cfg.Sim.StartingLevel
	h.ws.Running = true
	h.factory = world.NewFactory(cfg, rand.New(rand.NewSource(7)))
	h.spawner = NewSpawner(h.ws, h.factory, log)
	rules := scripting.Fallback{GrowthFactor: cfg.Tuning.GrowthFactor, LevelEvery: cfg.Tuning.LevelEvery}

	h.steering = NewSteeringSystem(h.ws, cfg)
	h.collision = NewCollisionSystem(h.ws, h.factory, h.spawner, rules, h.bus, cfg, log)
	h.ranking = NewRankingSystem(h.ws, cfg)
	h.stats = NewStatsCollector(h.bus)

	h.runner = coresys.NewRunner()
	h.runner.Register(NewEventDispatchSystem(h.bus))
	h.runner.Register(NewParticleSystem(h.ws))
	h.runner.Register(h.steering)
	h.runner.Register(NewFuelSpawnSystem(h.ws, h.spawner, cfg))
	h.runner.Register(h.collision)
	h.runner.Register(NewOutcomeSystem(h.ws, h.bus, log))
	h.runner.Register(h.ranking)
	h.runner.Register(NewCleanupSystem(h.ws))
	h.runner.SetHalt(func() bool { return h.ws.Outcome == world.OutcomeLost })
	return h
}

// orb adds an orb at rest.
func (h *harness) orb(x, y, r float64, role world.Role) *world.Orb {
	o := h.factory.NewOrb(x, y, r, role)
	o.DX, o.DY = 0, 0
	h.ws.AddOrb(o)
	return o
}

func (h *harness) tick() {
	h.ws.Tick++
	h.runner.Tick(h.cfg.Sim.TickRate)
}

func TestPlayerAbsorbsSmallerOrb(t *testing.T) {
	h := newHarness(t, nil)
	p := h.orb(500, 500, 12, world.RolePlayer)
	h.orb(505, 500, 8, world.RoleAI)

	h.collision.Update(0)

	if math.Abs(p.Radius-12.8) > eps || p.BaseRadius != p.Radius {
		t.Fatalf("player radius = %g base %g, want 12.8", p.Radius, p.BaseRadius)
	}
	if h.ws.Score != 1 || h.ws.Level != 1 {
		t.Fatalf("score=%d level=%d, want 1/1", h.ws.Score, h.ws.Level)
	}
	if h.ws.AICount() != 1 {
		t.Fatalf("ai count = %d, want 1 (replacement spawned)", h.ws.AICount())
	}
	if len(h.ws.Particles) != h.cfg.Tuning.ParticleCount {
		t.Fatalf("particles = %d, want %d", len(h.ws.Particles), h.cfg.Tuning.ParticleCount)
	}
	if p.Tail.Cap() != h.factory.TailCapacity(12.8, world.RolePlayer) {
		t.Fatalf("tail capacity not recomputed: %d", p.Tail.Cap())
	}
	for _, pt := range h.ws.Particles {
		if pt.X != 505 || pt.Y != 500 {
			t.Fatalf("particle spawned at (%g,%g), want the absorbed orb's position", pt.X, pt.Y)
		}
	}
}

func TestLevelEveryFiveAbsorptions(t *testing.T) {
	h := newHarness(t, nil)
	h.orb(500, 500, 20, world.RolePlayer)
	for i := 0; i < 5; i++ {
		h.orb(500+float64(i), 505, 4, world.RoleAI)
	}
	// replacements are not visited in the same pass
	h.collision.Update(0)
	if h.ws.Score != 5 || h.ws.Level != 2 {
		t.Fatalf("score=%d level=%d, want 5/2", h.ws.Score, h.ws.Level)
	}
	if h.ws.AICount() != 5 {
		t.Fatalf("ai count = %d, want 5", h.ws.AICount())
	}
}

func TestRemovedOrbIsNotPairedAgain(t *testing.T) {
	h := newHarness(t, nil)
	p := h.orb(500, 500, 12, world.RolePlayer)
	h.orb(510, 500, 8, world.RoleAI)
	h.orb(515, 500, 9, world.RoleAI)

	h.collision.Update(0)

	// the 9 absorbs the 8, then the player absorbs the grown 9.8
	if math.Abs(p.Radius-12.98) > eps {
		t.Fatalf("player radius = %g, want 12.98", p.Radius)
	}
	if h.ws.Score != 1 {
		t.Fatalf("score = %d, want 1", h.ws.Score)
	}
	if h.ws.AICount() != 2 {
		t.Fatalf("ai count = %d, want 2", h.ws.AICount())
	}
}

func TestEqualRadiusCollisionIsNoop(t *testing.T) {
	h := newHarness(t, nil)
	p := h.orb(500, 500, 12, world.RolePlayer)
	h.orb(505, 500, 12, world.RoleAI)
	h.orb(800, 800, 6, world.RoleAI)
	h.orb(803, 800, 6, world.RoleAI)

	h.collision.Update(0)

	if h.ws.OrbCount() != 4 || h.ws.PendingRemovals() != 0 {
		t.Fatalf("equal radii must not resolve: orbs=%d pending=%d", h.ws.OrbCount(), h.ws.PendingRemovals())
	}
	if h.ws.Score != 0 || p.Radius != 12 || len(h.ws.Particles) != 0 {
		t.Fatalf("state changed: score=%d radius=%g particles=%d", h.ws.Score, p.Radius, len(h.ws.Particles))
	}
}

func TestLossHaltsTick(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Tuning.RankingInterval = 1 })
	// Pair order is (2,1), (2,0), (1,0): big meets the player before the
	// small orb it also overlaps.
	h.orb(520, 500, 4, world.RoleAI)
	p := h.orb(500, 500, 12, world.RolePlayer)
	big := h.orb(510, 500, 20, world.RoleAI)
	h.ws.AddPickup(h.factory.NewFuelPickup(500, 500))

	h.tick()

	if h.ws.Outcome != world.OutcomeLost {
		t.Fatalf("outcome = %s, want lost", h.ws.Outcome)
	}
	if h.ws.Player() != p || h.ws.OrbCount() != 3 {
		t.Fatal("loss must not remove anything")
	}
	if big.Radius != 20 || len(h.ws.Particles) != 0 || h.ws.Fuel != 0 {
		t.Fatalf("loss tick mutated state: radius=%g particles=%d fuel=%g", big.Radius, len(h.ws.Particles), h.ws.Fuel)
	}
	if h.ws.PlayerRank != 0 {
		t.Fatal("post-update systems must be skipped after a loss")
	}

	h.bus.Flush()
	st := h.stats.Stats()
	if !st.Ended || st.Won {
		t.Fatalf("stats after loss = %+v", st)
	}
}

func TestWinWhenPlayerIsLargest(t *testing.T) {
	h := newHarness(t, nil)
	h.orb(500, 500, 30, world.RolePlayer)
	h.orb(520, 500, 10, world.RoleAI)
	h.orb(100, 100, 5, world.RoleAI)

	h.tick()

	if h.ws.Outcome != world.OutcomeWon {
		t.Fatalf("outcome = %s, want won", h.ws.Outcome)
	}
	if h.ws.Score != 1 {
		t.Fatalf("score = %d, want 1", h.ws.Score)
	}
}

func TestNoWinWhileLargerOrbRemains(t *testing.T) {
	h := newHarness(t, nil)
	h.orb(500, 500, 12, world.RolePlayer)
	h.orb(100, 100, 13, world.RoleAI)
	h.tick()
	if h.ws.Outcome != world.OutcomeRunning {
		t.Fatalf("outcome = %s, want running", h.ws.Outcome)
	}
}

func TestTieWithLargestCountsAsWin(t *testing.T) {
	h := newHarness(t, nil)
	h.orb(500, 500, 12, world.RolePlayer)
	h.orb(100, 100, 12, world.RoleAI)
	h.tick()
	if h.ws.Outcome != world.OutcomeWon {
		t.Fatalf("outcome = %s, want won", h.ws.Outcome)
	}
}

func TestBoostNeedsFuel(t *testing.T) {
	tests := []struct {
		name     string
		fuel     float64
		wantDX   float64
		wantFuel float64
	}{
		{"insufficient", 1, 0.3 * 0.85, 1},
		{"exact", 2, 0.6 * 0.85, 0},
		{"plenty", 50, 0.6 * 0.85, 48},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			p := h.orb(500, 500, 12, world.RolePlayer)
			h.ws.Fuel = tt.fuel
			h.ws.Input = world.Input{Right: true, Boost: true}

			h.steering.Update(0)

			if math.Abs(p.DX-tt.wantDX) > eps || p.DY != 0 {
				t.Fatalf("velocity = (%g,%g), want (%g,0)", p.DX, p.DY, tt.wantDX)
			}
			if math.Abs(p.X-(500+tt.wantDX)) > eps {
				t.Fatalf("x = %g", p.X)
			}
			if h.ws.Fuel != tt.wantFuel {
				t.Fatalf("fuel = %g, want %g", h.ws.Fuel, tt.wantFuel)
			}
		})
	}
}

func TestDiagonalInputCompounds(t *testing.T) {
	h := newHarness(t, nil)
	p := h.orb(500, 500, 12, world.RolePlayer)
	h.ws.Input = world.Input{Up: true, Left: true}
	h.steering.Update(0)
	want := -0.3 * 0.85
	if math.Abs(p.DX-want) > eps || math.Abs(p.DY-want) > eps {
		t.Fatalf("velocity = (%g,%g), want both %g", p.DX, p.DY, want)
	}
}

func TestPlayerClampedNotReflected(t *testing.T) {
	h := newHarness(t, nil)
	p := h.orb(12.1, 500, 12, world.RolePlayer)
	h.ws.Input = world.Input{Left: true}
	h.steering.Update(0)
	if p.X != 12 {
		t.Fatalf("x = %g, want clamped to radius", p.X)
	}
	if p.DX >= 0 {
		t.Fatalf("player velocity must not be reflected, dx = %g", p.DX)
	}
}

func TestAIReflectsAtWall(t *testing.T) {
	h := newHarness(t, nil)
	a := h.orb(10.5, 500, 10, world.RoleAI)
	a.DX = -1
	h.steering.Update(0)
	if math.Abs(a.X-9.5) > eps {
		t.Fatalf("x = %g, want 9.5 (position is not clamped)", a.X)
	}
	if a.DX != 1 {
		t.Fatalf("dx = %g, want reflected to 1", a.DX)
	}
}

func TestAIChaseDominatesFlee(t *testing.T) {
	h := newHarness(t, nil)
	a := h.orb(500, 500, 10, world.RoleAI)
	h.orb(600, 500, 5, world.RoleAI)  // prey to the right, far
	h.orb(480, 500, 20, world.RoleAI) // threat to the left, close

	h.steering.Update(0)

	if math.Abs(a.DX-h.cfg.Tuning.ChaseSpeed) > eps || math.Abs(a.DY) > eps {
		t.Fatalf("velocity = (%g,%g), want a chase step to the right", a.DX, a.DY)
	}
}

func TestAIFleesWithoutPrey(t *testing.T) {
	h := newHarness(t, nil)
	a := h.orb(500, 500, 10, world.RoleAI)
	h.orb(500, 450, 20, world.RoleAI) // threat above

	h.steering.Update(0)

	if math.Abs(a.DY-h.cfg.Tuning.ChaseSpeed) > eps || math.Abs(a.DX) > eps {
		t.Fatalf("velocity = (%g,%g), want a flee step downward", a.DX, a.DY)
	}
}

func TestAIIgnoresOrbsOutOfSight(t *testing.T) {
	h := newHarness(t, nil)
	a := h.orb(500, 500, 10, world.RoleAI)
	h.orb(500+h.cfg.Tuning.VisionRange, 500, 5, world.RoleAI)
	h.steering.Update(0)
	if a.DX != 0 || a.DY != 0 {
		t.Fatalf("velocity = (%g,%g), want unchanged", a.DX, a.DY)
	}
}

func TestAICoincidentTargetIsNoop(t *testing.T) {
	h := newHarness(t, nil)
	a := h.orb(500, 500, 10, world.RoleAI)
	h.orb(500, 500, 5, world.RoleAI)
	h.steering.Update(0)
	if a.DX != 0 || a.DY != 0 || math.IsNaN(a.X) {
		t.Fatalf("coincident prey must add nothing: (%g,%g)", a.DX, a.DY)
	}
}

func TestAISpeedCapped(t *testing.T) {
	h := newHarness(t, nil)
	a := h.orb(500, 500, 10, world.RoleAI)
	a.DX, a.DY = 3, 4
	h.steering.Update(0)
	if s := math.Hypot(a.DX, a.DY); math.Abs(s-h.cfg.Sim.AIMaxSpeed) > eps {
		t.Fatalf("speed = %g, want %g", s, h.cfg.Sim.AIMaxSpeed)
	}
}

func TestFuelPickupConsumed(t *testing.T) {
	h := newHarness(t, nil)
	h.orb(500, 500, 12, world.RolePlayer)
	h.ws.AddPickup(h.factory.NewFuelPickup(505, 500))
	h.ws.AddPickup(h.factory.NewFuelPickup(900, 900))
	h.ws.Fuel = 95

	h.collision.Update(0)

	if h.ws.Fuel != 100 {
		t.Fatalf("fuel = %g, want capped at 100", h.ws.Fuel)
	}
	if h.ws.PickupCount() != 2 {
		t.Fatalf("pickups = %d, want 2 after respawn", h.ws.PickupCount())
	}
	h.bus.Flush()
	if st := h.stats.Stats(); st.PickupsCollected != 1 || st.FuelCollected != 5 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestFuelSpawnCap(t *testing.T) {
	h := newHarness(t, func(c *config.Config) {
		c.Tuning.FuelSpawnChance = 1
		c.Sim.MaxFuelPickups = 2
	})
	s := NewFuelSpawnSystem(h.ws, h.spawner, h.cfg)
	s.Update(0)
	s.Update(0)
	s.Update(0)
	if h.ws.PickupCount() != 2 {
		t.Fatalf("pickups = %d, want capped at 2", h.ws.PickupCount())
	}
}

func TestFuelSpawnChance(t *testing.T) {
	tests := []struct {
		name   string
		chance float64
		ticks  int
		want   int
	}{
		{"never", 0, 500, 0},
		{"always", 1, 50, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, func(c *config.Config) { c.Tuning.FuelSpawnChance = tt.chance })
			s := NewFuelSpawnSystem(h.ws, h.spawner, h.cfg)
			for i := 0; i < tt.ticks; i++ {
				s.Update(0)
			}
			if h.ws.PickupCount() != tt.want {
				t.Fatalf("pickups = %d, want %d", h.ws.PickupCount(), tt.want)
			}
		})
	}
}

func TestFuelSpawnInsideWorld(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Tuning.FuelSpawnChance = 1 })
	s := NewFuelSpawnSystem(h.ws, h.spawner, h.cfg)
	for i := 0; i < 200; i++ {
		s.Update(0)
	}
	size := h.cfg.Sim.WorldSize
	h.ws.EachPickup(func(p *world.FuelPickup) {
		if p.X < 0 || p.X > size || p.Y < 0 || p.Y > size {
			t.Fatalf("pickup at (%g,%g) outside [0,%g]", p.X, p.Y, size)
		}
	})
}

func TestParticlesDecayAndExpire(t *testing.T) {
	h := newHarness(t, nil)
	h.ws.Particles = []world.Particle{
		{X: 0, DX: 1, Life: 1},
		{X: 0, DX: 2, Life: 3},
		{X: 0, DX: 3, Life: 0.5},
		{X: 0, DX: 4, Life: 2},
	}
	ps := NewParticleSystem(h.ws)
	ps.Update(0)
	if len(h.ws.Particles) != 2 {
		t.Fatalf("particles = %d, want 2", len(h.ws.Particles))
	}
	if h.ws.Particles[0].X != 2 || h.ws.Particles[1].X != 4 || h.ws.Particles[0].Life != 2 {
		t.Fatalf("survivors = %+v", h.ws.Particles)
	}
	ps.Update(0)
	ps.Update(0)
	if len(h.ws.Particles) != 0 {
		t.Fatalf("particles = %d, want none", len(h.ws.Particles))
	}
}

func TestRanking(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Tuning.RankingSize = 2 })
	h.orb(500, 500, 12, world.RolePlayer)
	h.orb(100, 100, 20, world.RoleAI)
	h.orb(900, 900, 15, world.RoleAI)
	h.orb(900, 100, 5, world.RoleAI)

	h.ranking.Recalculate()

	if h.ws.PlayerRank != 3 {
		t.Fatalf("player rank = %d, want 3", h.ws.PlayerRank)
	}
	lb := h.ws.Leaderboard
	if len(lb) != 2 || lb[0].Radius != 20 || lb[1].Radius != 15 {
		t.Fatalf("leaderboard = %+v", lb)
	}
}

func TestInvariantsHoldOverManyTicks(t *testing.T) {
	h := newHarness(t, func(c *config.Config) {
		c.Sim.NumAI = 30
		c.Sim.NumFuel = 10
		c.Tuning.FuelSpawnChance = 0.2
	})
	h.spawner.Populate(h.cfg.Sim.PlayerRadius, h.cfg.Sim.NumAI, h.cfg.Sim.NumFuel)
	h.ws.Fuel = 50
	rng := rand.New(rand.NewSource(99))

	radii := map[uint64]float64{}
	for i := 0; i < 600 && h.ws.Outcome == world.OutcomeRunning; i++ {
		h.ws.Input = world.Input{
			Up:    rng.Intn(2) == 0,
			Down:  rng.Intn(2) == 0,
			Left:  rng.Intn(2) == 0,
			Right: rng.Intn(2) == 0,
			Boost: rng.Intn(3) == 0,
		}
		h.tick()

		if h.ws.Fuel < 0 || h.ws.Fuel > h.cfg.Sim.MaxFuel {
			t.Fatalf("tick %d: fuel %g out of range", i, h.ws.Fuel)
		}
		if h.ws.Outcome == world.OutcomeRunning && h.ws.AICount() != h.cfg.Sim.NumAI {
			t.Fatalf("tick %d: ai count %d", i, h.ws.AICount())
		}
		if h.ws.PickupCount() < h.cfg.Sim.NumFuel {
			t.Fatalf("tick %d: pickups %d below target", i, h.ws.PickupCount())
		}
		players := 0
		h.ws.EachOrb(func(o *world.Orb) {
			if o.IsPlayer() {
				players++
			}
			if o.Tail.Len() > o.Tail.Cap() {
				t.Fatalf("tick %d: tail %d exceeds cap %d", i, o.Tail.Len(), o.Tail.Cap())
			}
			if o.Radius <= 0 {
				t.Fatalf("tick %d: non-positive radius", i)
			}
			if prev, ok := radii[uint64(o.ID)]; ok && o.Radius < prev {
				t.Fatalf("tick %d: radius shrank from %g to %g", i, prev, o.Radius)
			}
			radii[uint64(o.ID)] = o.Radius
		})
		if players != 1 {
			t.Fatalf("tick %d: %d players", i, players)
		}
	}
}
