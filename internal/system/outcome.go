package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/orbarena/arena/internal/core/event"
	coresys "github.com/orbarena/arena/internal/core/system"
	"github.com/orbarena/arena/internal/world"
)

// OutcomeSystem declares a win once no orb is larger than the player.
// Ties count for the player. The runner halt keeps it from running after
// a loss. Phase 3 (Evaluate).
type OutcomeSystem struct {
	world *world.State
	bus   *event.Bus
	log   *zap.Logger
}

func NewOutcomeSystem(ws *world.State, bus *event.Bus, log *zap.Logger) *OutcomeSystem {
	return &OutcomeSystem{world: ws, bus: bus, log: log}
}

func (s *OutcomeSystem) Phase() coresys.Phase { return coresys.PhaseEvaluate }

func (s *OutcomeSystem) Update(_ time.Duration) {
	if s.world.Outcome != world.OutcomeRunning {
		return
	}
	p := s.world.Player()
	if p == nil {
		return
	}
	won := true
	s.world.EachOrb(func(o *world.Orb) {
		if o != p && o.Radius > p.Radius {
			won = false
		}
	})
	if !won {
		return
	}
	s.world.Outcome = world.OutcomeWon
	event.Emit(s.bus, event.MatchEnded{
		Tick:   s.world.Tick,
		Won:    true,
		Score:  s.world.Score,
		Level:  s.world.Level,
		Radius: p.Radius,
	})
	s.log.Info("player is the largest orb",
		zap.Uint64("tick", s.world.Tick),
		zap.Int("score", s.world.Score),
		zap.Float64("radius", p.Radius))
}
