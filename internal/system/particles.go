package system

import (
	"time"

	coresys "github.com/orbarena/arena/internal/core/system"
	"github.com/orbarena/arena/internal/world"
)

// ParticleSystem advances debris and drops spent particles. It rebuilds the
// slice from survivors in one pass so no particle is skipped. Runs at the
// start of the tick, so particles spawned by an absorption are first aged
// on the following tick. Phase 0 (PreUpdate).
type ParticleSystem struct {
	world *world.State
}

func NewParticleSystem(ws *world.State) *ParticleSystem {
	return &ParticleSystem{world: ws}
}

func (s *ParticleSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *ParticleSystem) Update(_ time.Duration) {
	ps := s.world.Particles
	live := ps[:0]
	for i := range ps {
		p := ps[i]
		p.X += p.DX
		p.Y += p.DY
		p.Life--
		if p.Alive() {
			live = append(live, p)
		}
	}
	clear(ps[len(live):])
	s.world.Particles = live
}
