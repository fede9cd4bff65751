package system

import (
	"sort"
	"time"

	"github.com/orbarena/arena/internal/config"
	coresys "github.com/orbarena/arena/internal/core/system"
	"github.com/orbarena/arena/internal/world"
)

// RankingSystem sorts orbs by radius every RankingInterval ticks and keeps
// the top RankingSize rows plus the player's rank in World State.
// Phase 4 (PostUpdate).
type RankingSystem struct {
	world    *world.State
	interval int
	size     int
	elapsed  int
	scratch  []*world.Orb
}

func NewRankingSystem(ws *world.State, cfg *config.Config) *RankingSystem {
	return &RankingSystem{
		world:    ws,
		interval: cfg.Tuning.RankingInterval,
		size:     cfg.Tuning.RankingSize,
	}
}

func (s *RankingSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *RankingSystem) Update(_ time.Duration) {
	s.elapsed++
	if s.elapsed < s.interval {
		return
	}
	s.elapsed = 0
	s.Recalculate()
}

// Recalculate rebuilds the leaderboard now. Equal radii keep collection order.
func (s *RankingSystem) Recalculate() {
	orbs := s.scratch[:0]
	s.world.EachOrb(func(o *world.Orb) { orbs = append(orbs, o) })

	// descending by radius
	sort.SliceStable(orbs, func(i, j int) bool {
		return orbs[i].Radius > orbs[j].Radius
	})

	board := s.world.Leaderboard[:0]
	rank := 0
	for i, o := range orbs {
		if o.IsPlayer() {
			rank = i + 1
		}
		if i < s.size {
			board = append(board, world.RankEntry{ID: uint64(o.ID), Player: o.IsPlayer(), Radius: o.Radius})
		}
	}
	s.world.Leaderboard = board
	s.world.PlayerRank = rank

	clear(orbs)
	s.scratch = orbs[:0]
}

// Reset restarts the interval count for a new match.
func (s *RankingSystem) Reset() {
	s.elapsed = 0
}
