package world

// RankEntry is one row of the size leaderboard.
type RankEntry struct {
	ID     uint64  `json:"id"`
	Player bool    `json:"player"`
	Radius float64 `json:"radius"`
}

type OrbView struct {
	ID         uint64  `json:"id"`
	Role       string  `json:"role"`
	Kind       string  `json:"kind,omitempty"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	DX         float64 `json:"dx"`
	DY         float64 `json:"dy"`
	Radius     float64 `json:"radius"`
	BaseRadius float64 `json:"base_radius"`
	Color      Color   `json:"color"`
	Pulse      float64 `json:"pulse"`
	Jitter     float64 `json:"jitter"`
	TailWidth  float64 `json:"tail_width"`
	Tail       []Point `json:"tail"`
}

type ParticleView struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Radius  float64 `json:"radius"`
	Life    float64 `json:"life"`
	MaxLife float64 `json:"max_life"`
	Color   Color   `json:"color"`
}

type PickupView struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	Color  Color   `json:"color"`
}

// Snapshot is a deep, read-only copy of the world handed to renderers.
// Player indexes Orbs and is -1 once the player has been absorbed.
type Snapshot struct {
	Tick       uint64  `json:"tick"`
	WorldSize  float64 `json:"world_size"`
	Outcome    Outcome `json:"outcome"`
	Running    bool    `json:"running"`
	Score      int     `json:"score"`
	Level      int     `json:"level"`
	Fuel       float64 `json:"fuel"`
	MaxFuel    float64 `json:"max_fuel"`
	PlayerRank int     `json:"player_rank"`

	Player      int            `json:"player"`
	Orbs        []OrbView      `json:"orbs"`
	Particles   []ParticleView `json:"particles"`
	Pickups     []PickupView   `json:"pickups"`
	Leaderboard []RankEntry    `json:"leaderboard"`
}

// PlayerView returns the player's orb, if it is still in play.
func (s *Snapshot) PlayerView() (OrbView, bool) {
	if s.Player < 0 || s.Player >= len(s.Orbs) {
		return OrbView{}, false
	}
	return s.Orbs[s.Player], true
}

func viewOf(o *Orb) OrbView {
	v := OrbView{
		ID:         uint64(o.ID),
		Role:       o.Role.String(),
		X:          o.X,
		Y:          o.Y,
		DX:         o.DX,
		DY:         o.DY,
		Radius:     o.Radius,
		BaseRadius: o.BaseRadius,
		Color:      o.Color,
		Pulse:      o.Pulse,
		Jitter:     o.Jitter,
		TailWidth:  o.TailWidth,
		Tail:       o.Tail.Points(),
	}
	if o.AI != nil {
		v.Kind = o.AI.Kind.String()
	}
	return v
}

// Snapshot copies the live world in collection order.
func (s *State) Snapshot() *Snapshot {
	snap := &Snapshot{
		Tick:        s.Tick,
		WorldSize:   s.WorldSize,
		Outcome:     s.Outcome,
		Running:     s.Running,
		Score:       s.Score,
		Level:       s.Level,
		Fuel:        s.Fuel,
		MaxFuel:     s.MaxFuel,
		PlayerRank:  s.PlayerRank,
		Player:      -1,
		Orbs:        make([]OrbView, 0, s.OrbCount()),
		Particles:   make([]ParticleView, 0, len(s.Particles)),
		Pickups:     make([]PickupView, 0, s.PickupCount()),
		Leaderboard: append([]RankEntry(nil), s.Leaderboard...),
	}
	s.EachOrb(func(o *Orb) {
		if o.IsPlayer() {
			snap.Player = len(snap.Orbs)
		}
		snap.Orbs = append(snap.Orbs, viewOf(o))
	})
	for i := range s.Particles {
		p := &s.Particles[i]
		snap.Particles = append(snap.Particles, ParticleView{
			X: p.X, Y: p.Y, Radius: p.Radius, Life: p.Life, MaxLife: p.MaxLife, Color: p.Color,
		})
	}
	s.EachPickup(func(p *FuelPickup) {
		snap.Pickups = append(snap.Pickups, PickupView{X: p.X, Y: p.Y, Radius: p.Radius, Color: p.Color})
	})
	return snap
}
