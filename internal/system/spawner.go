package system

import (
	"github.com/orbarena/arena/internal/world"
	"go.uber.org/zap"
)

// Spawner places new orbs and pickups. Replacements are synchronous: the
// collision pass calls it in the same step that removes an entity, so the
// populations never stay short past that step.
type Spawner struct {
	world   *world.State
	factory *world.Factory
	log     *zap.Logger
}

func NewSpawner(ws *world.State, factory *world.Factory, log *zap.Logger) *Spawner {
	return &Spawner{world: ws, factory: factory, log: log}
}

// SpawnAI appends one AI orb at a random position fully inside the world.
func (s *Spawner) SpawnAI() *world.Orb {
	o := s.factory.RandomAIOrb(s.world.WorldSize)
	s.world.AddOrb(o)
	return o
}

// SpawnFuel appends one pickup at a uniformly random world position.
func (s *Spawner) SpawnFuel() *world.FuelPickup {
	p := s.factory.RandomFuelPickup(s.world.WorldSize)
	s.world.AddPickup(p)
	return p
}

// Populate fills an empty world: the player at the centre, then numAI orbs
// and numFuel pickups.
func (s *Spawner) Populate(playerRadius float64, numAI, numFuel int) {
	c := s.world.WorldSize / 2
	s.world.AddOrb(s.factory.NewOrb(c, c, playerRadius, world.RolePlayer))
	for i := 0; i < numAI; i++ {
		s.SpawnAI()
	}
	for i := 0; i < numFuel; i++ {
		s.SpawnFuel()
	}
	s.log.Debug("world populated",
		zap.Int("ai", s.world.AICount()),
		zap.Int("fuel", s.world.PickupCount()))
}
