package system

import (
	"time"

	"github.com/orbarena/arena/internal/config"
	coresys "github.com/orbarena/arena/internal/core/system"
	"github.com/orbarena/arena/internal/world"
)

// FuelSpawnSystem drops an extra pickup at a random position with a fixed
// chance per tick, on top of respawn-on-consumption. A positive
// MaxFuelPickups caps the population. Phase 1 (Steer), after steering.
type FuelSpawnSystem struct {
	world   *world.State
	spawner *Spawner
	chance  float64
	max     int
}

func NewFuelSpawnSystem(ws *world.State, spawner *Spawner, cfg *config.Config) *FuelSpawnSystem {
	return &FuelSpawnSystem{
		world:   ws,
		spawner: spawner,
		chance:  cfg.Tuning.FuelSpawnChance,
		max:     cfg.Sim.MaxFuelPickups,
	}
}

func (s *FuelSpawnSystem) Phase() coresys.Phase { return coresys.PhaseSteer }

func (s *FuelSpawnSystem) Update(_ time.Duration) {
	if !s.spawner.factory.Chance(s.chance) {
		return
	}
	if s.max > 0 && s.world.PickupCount() >= s.max {
		return
	}
	s.spawner.SpawnFuel()
}
