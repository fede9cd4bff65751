package observer

import "github.com/orbarena/arena/internal/world"

// Frame is the wire form of a snapshot. Colours are resolved to #rrggbb so
// clients need no HSL math.
type Frame struct {
	Type        string            `json:"type"`
	Tick        uint64            `json:"tick"`
	Outcome     world.Outcome     `json:"outcome"`
	WorldSize   float64           `json:"world_size"`
	Score       int               `json:"score"`
	Level       int               `json:"level"`
	Fuel        float64           `json:"fuel"`
	MaxFuel     float64           `json:"max_fuel"`
	PlayerRank  int               `json:"player_rank"`
	Orbs        []FrameOrb        `json:"orbs"`
	Pickups     []FramePoint      `json:"pickups"`
	Particles   []FramePoint      `json:"particles"`
	Leaderboard []world.RankEntry `json:"leaderboard"`
}

type FrameOrb struct {
	ID        uint64        `json:"id"`
	Player    bool          `json:"player"`
	Kind      string        `json:"kind,omitempty"`
	X         float64       `json:"x"`
	Y         float64       `json:"y"`
	Radius    float64       `json:"r"`
	Fill      string        `json:"fill"`
	Pulse     float64       `json:"pulse"`
	TailWidth float64       `json:"tail_width"`
	Tail      []world.Point `json:"tail"`
}

type FramePoint struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"r"`
	Fill   string  `json:"fill"`
	Alpha  float64 `json:"alpha,omitempty"`
}

func NewFrame(s *world.Snapshot) Frame {
	f := Frame{
		Type:        frameType,
		Tick:        s.Tick,
		Outcome:     s.Outcome,
		WorldSize:   s.WorldSize,
		Score:       s.Score,
		Level:       s.Level,
		Fuel:        s.Fuel,
		MaxFuel:     s.MaxFuel,
		PlayerRank:  s.PlayerRank,
		Orbs:        make([]FrameOrb, 0, len(s.Orbs)),
		Pickups:     make([]FramePoint, 0, len(s.Pickups)),
		Particles:   make([]FramePoint, 0, len(s.Particles)),
		Leaderboard: s.Leaderboard,
	}
	for i, o := range s.Orbs {
		f.Orbs = append(f.Orbs, FrameOrb{
			ID:        o.ID,
			Player:    i == s.Player,
			Kind:      o.Kind,
			X:         o.X,
			Y:         o.Y,
			Radius:    o.Radius,
			Fill:      o.Color.Hex(),
			Pulse:     o.Pulse,
			TailWidth: o.TailWidth,
			Tail:      o.Tail,
		})
	}
	for _, p := range s.Pickups {
		f.Pickups = append(f.Pickups, FramePoint{X: p.X, Y: p.Y, Radius: p.Radius, Fill: p.Color.Hex()})
	}
	for _, p := range s.Particles {
		alpha := 0.0
		if p.MaxLife > 0 {
			alpha = p.Life / p.MaxLife
		}
		f.Particles = append(f.Particles, FramePoint{X: p.X, Y: p.Y, Radius: p.Radius, Fill: p.Color.Hex(), Alpha: alpha})
	}
	return f
}
