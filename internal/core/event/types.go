package event

import "github.com/orbarena/arena/internal/core/ecs"

// OrbAbsorbed is emitted for every orb-orb absorption.
type OrbAbsorbed struct {
	Tick          uint64
	Bigger        ecs.EntityID
	Smaller       ecs.EntityID
	ByPlayer      bool
	SmallerRadius float64
	NewRadius     float64
	X, Y          float64
}

// FuelCollected is emitted when the player consumes a pickup.
type FuelCollected struct {
	Tick    uint64
	Pickup  ecs.EntityID
	Gained  float64
	Reserve float64
}

// LevelReached is emitted when the player's score crosses a level boundary.
type LevelReached struct {
	Tick  uint64
	Level int
	Score int
}

// MatchEnded is emitted once when a tick ends in a terminal outcome.
type MatchEnded struct {
	Tick     uint64
	Won      bool
	Score    int
	Level    int
	Radius   float64
	Absorber ecs.EntityID // orb that absorbed the player on a loss
}
