package world

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/orbarena/arena/internal/core/ecs"
)

// Role tags an orb as the player or an autonomous orb.
type Role uint8

const (
	RoleAI Role = iota
	RolePlayer
)

func (r Role) String() string {
	if r == RolePlayer {
		return "player"
	}
	return "ai"
}

// Kind is the body shape an AI orb is drawn with.
type Kind uint8

const (
	KindCluster Kind = iota
	KindCorona
	KindAmoeba
)

var aiKinds = [...]Kind{KindCluster, KindCorona, KindAmoeba}

func (k Kind) String() string {
	switch k {
	case KindCluster:
		return "cluster"
	case KindCorona:
		return "corona"
	case KindAmoeba:
		return "amoeba"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind maps a kind name back to its value.
func ParseKind(s string) (Kind, error) {
	for _, k := range aiKinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown orb kind %q", s)
}

// Color is an HSL colour; S and L are percentages.
type Color struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

// WithLightness returns c with its lightness replaced.
func (c Color) WithLightness(l float64) Color {
	c.L = l
	return c
}

// Colorful converts c for RGB output.
func (c Color) Colorful() colorful.Color {
	return colorful.Hsl(c.H, c.S/100, c.L/100).Clamped()
}

// Hex returns c as a CSS #rrggbb string.
func (c Color) Hex() string { return c.Colorful().Hex() }

var playerColor = Color{H: 120, S: 100, L: 89}

// AITraits holds the fields only autonomous orbs carry.
type AITraits struct {
	Kind Kind
}

// Orb is a circular entity. Radius is authoritative for collision and
// vision; BaseRadius tracks it (renderers derive the pulsing display size
// from BaseRadius and Pulse). AI is nil for the player.
// Accessed only from the tick goroutine, no locks.
type Orb struct {
	ID  ecs.EntityID
	Seq uint64 // creation order; equals collection order

	Role Role
	AI   *AITraits

	X, Y   float64
	DX, DY float64

	Radius     float64
	BaseRadius float64

	Color     Color
	Pulse     float64 // animation phase, radians
	Jitter    float64 // animation phase, radians
	TailWidth float64

	Tail             TailBuffer
	TailFrameCounter int
}

func (o *Orb) IsPlayer() bool { return o.Role == RolePlayer }

// Grow adds delta to the orb's radius and resizes its tail buffer.
func (o *Orb) Grow(delta float64, tailCapacity func(radius float64, role Role) int) {
	o.Radius += delta
	o.BaseRadius = o.Radius
	o.Tail.SetCapacity(tailCapacity(o.Radius, o.Role))
}

// RecordTail advances the tail frame counter and appends the current
// position once every interval ticks.
func (o *Orb) RecordTail(interval int) {
	o.TailFrameCounter++
	if o.TailFrameCounter >= interval {
		o.Tail.Push(Point{X: o.X, Y: o.Y})
		o.TailFrameCounter = 0
	}
}
