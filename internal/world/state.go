package world

import (
	"math"
	"sort"

	"github.com/orbarena/arena/internal/core/ecs"
)

// State is the single mutable root of a match: the ordered orb collection,
// pickups, particles and scalar progress.
// Accessed only from the tick goroutine, no locks.
type State struct {
	ecs     *ecs.World
	orbs    *ecs.Store[Orb]
	pickups *ecs.Store[FuelPickup]
	grid    *VisionGrid
	seq     uint64

	Particles []Particle
	PlayerID  ecs.EntityID

	Score   int
	Level   int
	Fuel    float64
	MaxFuel float64

	WorldSize float64
	Running   bool
	Outcome   Outcome
	Tick      uint64

	// Input is the key snapshot latched for the current tick.
	Input Input

	Leaderboard []RankEntry
	PlayerRank  int // 1-based; 0 until the first ranking pass
}

func NewState(worldSize, maxFuel, visionRange float64) *State {
	s := &State{
		ecs:       ecs.NewWorld(),
		orbs:      ecs.NewStore[Orb](),
		pickups:   ecs.NewStore[FuelPickup](),
		grid:      NewVisionGrid(visionRange),
		WorldSize: worldSize,
		MaxFuel:   maxFuel,
	}
	s.ecs.Registry().Register(s.orbs)
	s.ecs.Registry().Register(s.pickups)
	return s
}

// --- orbs ---

// AddOrb appends o to the end of the collection and assigns its ID and Seq.
// Adding a player replaces the current one.
func (s *State) AddOrb(o *Orb) ecs.EntityID {
	if o.IsPlayer() && !s.PlayerID.IsZero() {
		s.RemoveOrb(s.PlayerID)
	}
	id := s.ecs.CreateEntity()
	s.seq++
	o.ID = id
	o.Seq = s.seq
	s.orbs.Add(id, o)
	s.grid.Add(id, o.X, o.Y)
	if o.IsPlayer() {
		s.PlayerID = id
	}
	return id
}

// RemoveOrb takes the orb out of the collection at once. Its slot stays a
// tombstone until Flush.
func (s *State) RemoveOrb(id ecs.EntityID) *Orb {
	o, ok := s.orbs.Get(id)
	if !ok {
		return nil
	}
	s.grid.Remove(id, o.X, o.Y)
	s.ecs.Destroy(id)
	if id == s.PlayerID {
		s.PlayerID = 0
	}
	return o
}

func (s *State) Orb(id ecs.EntityID) (*Orb, bool) {
	return s.orbs.Get(id)
}

// Player returns the player orb, or nil after it was absorbed.
func (s *State) Player() *Orb {
	if s.PlayerID.IsZero() {
		return nil
	}
	o, _ := s.orbs.Get(s.PlayerID)
	return o
}

// OrbSlots is the slot count of the orb collection, tombstones included.
func (s *State) OrbSlots() int { return s.orbs.Slots() }

// OrbAt returns the orb in slot i, or nil for a removed orb.
func (s *State) OrbAt(i int) *Orb {
	_, o := s.orbs.At(i)
	return o
}

// EachOrb visits live orbs in collection order.
func (s *State) EachOrb(fn func(*Orb)) {
	s.orbs.Each(func(_ ecs.EntityID, o *Orb) { fn(o) })
}

func (s *State) OrbCount() int { return s.orbs.Len() }

func (s *State) AICount() int {
	n := s.orbs.Len()
	if s.Player() != nil {
		n--
	}
	return n
}

// MoveOrb sets the orb's position and keeps the vision grid in sync.
// All orb position changes go through here.
func (s *State) MoveOrb(o *Orb, x, y float64) {
	s.grid.Move(o.ID, o.X, o.Y, x, y)
	o.X, o.Y = x, y
}

// OrbsNear returns live orbs other than self whose centres are within rng
// of (x, y), in collection order. rng must not exceed the grid cell size.
func (s *State) OrbsNear(self ecs.EntityID, x, y, rng float64, dst []*Orb) []*Orb {
	var ids [32]ecs.EntityID
	cand := s.grid.Nearby(x, y, ids[:0])
	start := len(dst)
	for _, id := range cand {
		if id == self {
			continue
		}
		o, ok := s.orbs.Get(id)
		if !ok {
			continue
		}
		if math.Hypot(o.X-x, o.Y-y) < rng {
			dst = append(dst, o)
		}
	}
	found := dst[start:]
	sort.Slice(found, func(i, j int) bool { return found[i].Seq < found[j].Seq })
	return dst
}

// --- pickups ---

func (s *State) AddPickup(p *FuelPickup) ecs.EntityID {
	id := s.ecs.CreateEntity()
	p.ID = id
	s.pickups.Add(id, p)
	return id
}

func (s *State) RemovePickup(id ecs.EntityID) {
	if s.pickups.Has(id) {
		s.ecs.Destroy(id)
	}
}

func (s *State) PickupSlots() int { return s.pickups.Slots() }

func (s *State) PickupAt(i int) *FuelPickup {
	_, p := s.pickups.At(i)
	return p
}

func (s *State) EachPickup(fn func(*FuelPickup)) {
	s.pickups.Each(func(_ ecs.EntityID, p *FuelPickup) { fn(p) })
}

func (s *State) PickupCount() int { return s.pickups.Len() }

// --- fuel ---

// AddFuel raises the reserve, capped at MaxFuel, and returns the amount gained.
func (s *State) AddFuel(v float64) float64 {
	before := s.Fuel
	s.Fuel = math.Min(s.MaxFuel, s.Fuel+v)
	return s.Fuel - before
}

// CanSpend reports whether the reserve covers cost.
func (s *State) CanSpend(cost float64) bool { return s.Fuel >= cost }

// SpendFuel lowers the reserve by cost, floored at zero.
func (s *State) SpendFuel(cost float64) {
	s.Fuel = math.Max(0, s.Fuel-cost)
}

// --- lifecycle ---

// PendingRemovals is the number of removed entities awaiting Flush.
func (s *State) PendingRemovals() int { return s.ecs.Pending() }

// Flush recycles removed IDs and compacts the collections, keeping order.
func (s *State) Flush() {
	s.ecs.FlushDestroyQueue()
}

// Reset empties the world and zeroes progress. Running stays false until
// the caller repopulates the world.
func (s *State) Reset() {
	s.ecs.Reset()
	s.grid.Clear()
	s.seq = 0
	s.Particles = s.Particles[:0]
	s.PlayerID = 0
	s.Score = 0
	s.Level = 0
	s.Fuel = 0
	s.Running = false
	s.Outcome = OutcomeRunning
	s.Tick = 0
	s.Input = Input{}
	s.Leaderboard = nil
	s.PlayerRank = 0
}
