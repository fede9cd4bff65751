package session

import (
	"math"

	"github.com/orbarena/arena/internal/world"
)

// Autopilot plays the player orb from the latest snapshot: chase the
// nearest smaller orb in sight, else flee the nearest larger one, else
// head for the nearest pickup. It boosts while fleeing. Register it as a
// Renderer on the same controller so it sees every tick.
type Autopilot struct {
	vision    float64
	boostCost float64
	snap      *world.Snapshot
}

func NewAutopilot(visionRange, boostCost float64) *Autopilot {
	return &Autopilot{vision: visionRange, boostCost: boostCost}
}

func (a *Autopilot) Render(snap *world.Snapshot) { a.snap = snap }

func (a *Autopilot) Input() world.Input {
	if a.snap == nil {
		return world.Input{}
	}
	p, ok := a.snap.PlayerView()
	if !ok {
		return world.Input{}
	}

	var prey, threat *world.OrbView
	minChase, minFlee := a.vision, a.vision
	for i := range a.snap.Orbs {
		o := &a.snap.Orbs[i]
		if i == a.snap.Player {
			continue
		}
		d := math.Hypot(o.X-p.X, o.Y-p.Y)
		if o.Radius < p.Radius && d < minChase {
			minChase, prey = d, o
		}
		if o.Radius > p.Radius && d < minFlee {
			minFlee, threat = d, o
		}
	}

	switch {
	case threat != nil && (prey == nil || minFlee < minChase):
		in := steer(p.X-threat.X, p.Y-threat.Y)
		in.Boost = a.snap.Fuel >= a.boostCost
		return in
	case prey != nil:
		return steer(prey.X-p.X, prey.Y-p.Y)
	}

	best := math.Inf(1)
	var target *world.PickupView
	for i := range a.snap.Pickups {
		f := &a.snap.Pickups[i]
		if d := math.Hypot(f.X-p.X, f.Y-p.Y); d < best {
			best, target = d, f
		}
	}
	if target == nil {
		return world.Input{}
	}
	return steer(target.X-p.X, target.Y-p.Y)
}

// steer turns a direction into held keys. Components under a fifth of the
// dominant one are dropped so the orb does not zigzag.
func steer(dx, dy float64) world.Input {
	m := math.Max(math.Abs(dx), math.Abs(dy))
	if m == 0 {
		return world.Input{}
	}
	dead := m / 5
	return world.Input{
		Left:  dx < -dead,
		Right: dx > dead,
		Up:    dy < -dead,
		Down:  dy > dead,
	}
}
