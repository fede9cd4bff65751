package world

import "github.com/orbarena/arena/internal/core/ecs"

var fuelColor = Color{H: 60, S: 100, L: 70}

// FuelPickup is a static point that grants fuel to the player on contact.
type FuelPickup struct {
	ID     ecs.EntityID
	X, Y   float64
	Radius float64
	Color  Color
}

// Particle is decorative debris from an absorption. It never collides and
// is removed once Life reaches zero.
type Particle struct {
	X, Y    float64
	DX, DY  float64
	Radius  float64
	Life    float64
	MaxLife float64
	Color   Color
}

// Alive reports whether the particle still has life left.
func (p *Particle) Alive() bool { return p.Life > 0 }
