package world

import (
	"math"
	"math/rand"

	"github.com/orbarena/arena/internal/config"
)

// Factory builds orbs, particles and pickups with randomized attributes.
// All randomness is uniform over the configured ranges and comes from one
// *rand.Rand so a seeded run is reproducible.
type Factory struct {
	sim    config.SimConfig
	tuning config.TuningConfig
	rng    *rand.Rand
}

func NewFactory(cfg *config.Config, rng *rand.Rand) *Factory {
	return &Factory{sim: cfg.Sim, tuning: cfg.Tuning, rng: rng}
}

// Uniform returns a value in [lo, hi).
func (f *Factory) Uniform(lo, hi float64) float64 {
	return lo + f.rng.Float64()*(hi-lo)
}

// Chance reports true with probability p.
func (f *Factory) Chance(p float64) bool {
	return f.rng.Float64() < p
}

// TailCapacity is the tail point count an orb of the given radius and role keeps.
func (f *Factory) TailCapacity(radius float64, role Role) int {
	pct := f.tuning.TailLengthPercentAI
	if role == RolePlayer {
		pct = f.tuning.TailLengthPercentPlayer
	}
	n := math.Floor(radius * pct / 100 * f.tuning.TailPointsPerPercent)
	if n < 0 {
		return 0
	}
	return int(n)
}

// NewOrb builds an orb at (x, y). The player starts at rest; AI orbs start
// with a random velocity, a random hue and a random body kind. The ID and
// Seq are assigned when the orb is added to a State.
func (f *Factory) NewOrb(x, y, radius float64, role Role) *Orb {
	o := &Orb{
		Role:       role,
		X:          x,
		Y:          y,
		Radius:     radius,
		BaseRadius: radius,
		Pulse:      f.Uniform(0, 2*math.Pi),
		Jitter:     f.Uniform(0, 2*math.Pi),
		Tail:       NewTailBuffer(f.TailCapacity(radius, role)),
	}
	if role == RolePlayer {
		o.Color = playerColor
		o.TailWidth = 2 * f.tuning.TailWidth
		return o
	}
	s := f.sim.AIInitialSpeed
	o.DX = f.Uniform(-s, s)
	o.DY = f.Uniform(-s, s)
	o.Color = Color{H: f.Uniform(200, 360), S: 80, L: 60}
	o.TailWidth = 1.5 * f.tuning.TailWidth
	o.AI = &AITraits{Kind: aiKinds[f.rng.Intn(len(aiKinds))]}
	return o
}

// NewParticle builds one piece of absorption debris. Life and MaxLife are
// drawn independently within 20% of the configured base.
func (f *Factory) NewParticle(x, y float64, source Color) Particle {
	base := f.tuning.ParticleLife
	return Particle{
		X:       x,
		Y:       y,
		DX:      f.Uniform(-4, 4),
		DY:      f.Uniform(-4, 4),
		Radius:  f.Uniform(3, 8),
		Life:    base * f.Uniform(0.8, 1.2),
		MaxLife: base * f.Uniform(0.8, 1.2),
		Color:   source.WithLightness(80),
	}
}

func (f *Factory) NewFuelPickup(x, y float64) *FuelPickup {
	return &FuelPickup{X: x, Y: y, Radius: f.tuning.FuelRadius, Color: fuelColor}
}

// RandomAIOrb places a fresh AI orb fully inside a world of the given size.
func (f *Factory) RandomAIOrb(worldSize float64) *Orb {
	r := f.Uniform(f.sim.AIMinRadius, f.sim.AIMaxRadius)
	x := f.Uniform(r, worldSize-r)
	y := f.Uniform(r, worldSize-r)
	return f.NewOrb(x, y, r, RoleAI)
}

func (f *Factory) RandomFuelPickup(worldSize float64) *FuelPickup {
	return f.NewFuelPickup(f.Uniform(0, worldSize), f.Uniform(0, worldSize))
}
