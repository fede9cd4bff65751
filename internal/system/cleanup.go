package system

import (
	"time"

	coresys "github.com/orbarena/arena/internal/core/system"
	"github.com/orbarena/arena/internal/world"
)

// CleanupSystem recycles the IDs of removed orbs and pickups and compacts
// the collections at tick end. Runs even after a loss. Phase 5 (Cleanup).
type CleanupSystem struct {
	world *world.State
}

func NewCleanupSystem(ws *world.State) *CleanupSystem {
	return &CleanupSystem{world: ws}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.world.Flush()
}
