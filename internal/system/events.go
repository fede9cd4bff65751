package system

import (
	"time"

	"github.com/orbarena/arena/internal/core/event"
	coresys "github.com/orbarena/arena/internal/core/system"
)

// EventDispatchSystem delivers the previous tick's events to subscribers.
// Registered first so handlers see them before anything moves.
// Phase 0 (PreUpdate).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
