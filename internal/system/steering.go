package system

import (
	"math"
	"time"

	"github.com/orbarena/arena/internal/config"
	coresys "github.com/orbarena/arena/internal/core/system"
	"github.com/orbarena/arena/internal/world"
)

// SteeringSystem moves every orb once per tick in collection order: the
// player from the latched input, AI orbs by chasing the nearest smaller orb
// or, with no prey in sight, fleeing the nearest larger one. Both roles then
// record their tail. Phase 1 (Steer).
type SteeringSystem struct {
	world    *world.State
	tuning   config.TuningConfig
	maxSpeed float64
	near     []*world.Orb // scratch for vision queries
}

func NewSteeringSystem(ws *world.State, cfg *config.Config) *SteeringSystem {
	return &SteeringSystem{
		world:    ws,
		tuning:   cfg.Tuning,
		maxSpeed: cfg.Sim.AIMaxSpeed,
		near:     make([]*world.Orb, 0, 32),
	}
}

func (s *SteeringSystem) Phase() coresys.Phase { return coresys.PhaseSteer }

func (s *SteeringSystem) Update(_ time.Duration) {
	for i := 0; i < s.world.OrbSlots(); i++ {
		o := s.world.OrbAt(i)
		if o == nil {
			continue
		}
		if o.IsPlayer() {
			s.steerPlayer(o)
		} else {
			s.steerAI(o)
		}
		o.RecordTail(s.tuning.TailUpdateInterval)
	}
}

func (s *SteeringSystem) steerPlayer(o *world.Orb) {
	in := s.world.Input
	boosting := in.Boost && s.world.CanSpend(s.tuning.BoostCost)
	acc := s.tuning.PlayerAcceleration
	if boosting {
		acc = s.tuning.BoostAcceleration
	}

	// Diagonals compound; input is not normalized.
	if in.Left {
		o.DX -= acc
	}
	if in.Right {
		o.DX += acc
	}
	if in.Up {
		o.DY -= acc
	}
	if in.Down {
		o.DY += acc
	}
	o.DX *= s.tuning.Friction
	o.DY *= s.tuning.Friction

	size := s.world.WorldSize
	x := clamp(o.X+o.DX, o.Radius, size-o.Radius)
	y := clamp(o.Y+o.DY, o.Radius, size-o.Radius)
	s.world.MoveOrb(o, x, y)

	if boosting {
		s.world.SpendFuel(s.tuning.BoostCost)
	}
}

func (s *SteeringSystem) steerAI(o *world.Orb) {
	vision := s.tuning.VisionRange
	s.near = s.world.OrbsNear(o.ID, o.X, o.Y, vision, s.near[:0])

	var prey, threat *world.Orb
	minChase, minFlee := vision, vision
	for _, other := range s.near {
		d := math.Hypot(other.X-o.X, other.Y-o.Y)
		if other.Radius < o.Radius && d < minChase {
			minChase = d
			prey = other
		}
		if other.Radius > o.Radius && d < minFlee {
			minFlee = d
			threat = other
		}
	}
	clear(s.near)

	// Prey wins over threats, even a closer threat.
	switch {
	case prey != nil:
		s.push(o, prey.X-o.X, prey.Y-o.Y)
	case threat != nil:
		s.push(o, o.X-threat.X, o.Y-threat.Y)
	}

	if speed := math.Hypot(o.DX, o.DY); speed > s.maxSpeed {
		o.DX = o.DX / speed * s.maxSpeed
		o.DY = o.DY / speed * s.maxSpeed
	}

	x, y := o.X+o.DX, o.Y+o.DY
	size := s.world.WorldSize
	if x < o.Radius || x > size-o.Radius {
		o.DX = -o.DX
	}
	if y < o.Radius || y > size-o.Radius {
		o.DY = -o.DY
	}
	s.world.MoveOrb(o, x, y)
}

// push adds a ChaseSpeed-long step along (dx, dy). Coincident centres give
// no direction and add nothing.
func (s *SteeringSystem) push(o *world.Orb, dx, dy float64) {
	d := math.Hypot(dx, dy)
	if d == 0 {
		return
	}
	o.DX += dx / d * s.tuning.ChaseSpeed
	o.DY += dy / d * s.tuning.ChaseSpeed
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
