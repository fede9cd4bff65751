package system

import (
	"github.com/orbarena/arena/internal/core/event"
)

// MatchStats accumulates per-match counters from bus events. Counters lag
// the world by one tick because events are delivered at the start of the
// next tick (or on an explicit Flush).
type MatchStats struct {
	Absorptions       int     `json:"absorptions"`
	PlayerAbsorptions int     `json:"player_absorptions"`
	FuelCollected     float64 `json:"fuel_collected"`
	PickupsCollected  int     `json:"pickups_collected"`
	PeakLevel         int     `json:"peak_level"`
	PeakRadius        float64 `json:"peak_radius"`
	EndTick           uint64  `json:"end_tick"`
	Won               bool    `json:"won"`
	Ended             bool    `json:"ended"`
}

// StatsCollector subscribes a MatchStats to the bus.
type StatsCollector struct {
	stats MatchStats
}

func NewStatsCollector(bus *event.Bus) *StatsCollector {
	c := &StatsCollector{}
	event.Subscribe(bus, c.onAbsorbed)
	event.Subscribe(bus, c.onFuel)
	event.Subscribe(bus, c.onLevel)
	event.Subscribe(bus, c.onEnded)
	return c
}

func (c *StatsCollector) onAbsorbed(e event.OrbAbsorbed) {
	c.stats.Absorptions++
	if e.ByPlayer {
		c.stats.PlayerAbsorptions++
		if e.NewRadius > c.stats.PeakRadius {
			c.stats.PeakRadius = e.NewRadius
		}
	}
}

func (c *StatsCollector) onFuel(e event.FuelCollected) {
	c.stats.PickupsCollected++
	c.stats.FuelCollected += e.Gained
}

func (c *StatsCollector) onLevel(e event.LevelReached) {
	if e.Level > c.stats.PeakLevel {
		c.stats.PeakLevel = e.Level
	}
}

func (c *StatsCollector) onEnded(e event.MatchEnded) {
	c.stats.Ended = true
	c.stats.Won = e.Won
	c.stats.EndTick = e.Tick
	if e.Radius > c.stats.PeakRadius {
		c.stats.PeakRadius = e.Radius
	}
}

// Stats returns a copy of the counters.
func (c *StatsCollector) Stats() MatchStats { return c.stats }

// Reset zeroes the counters, seeding the peaks from the new match.
func (c *StatsCollector) Reset(level int, radius float64) {
	c.stats = MatchStats{PeakLevel: level, PeakRadius: radius}
}
