package system

import (
	"time"

	"github.com/directus/engine/internal/core/event"
	coresys "github.com/directus/engine/internal/core/system"
)

// EventDispatchSystem swaps the event buffers and delivers last tick's events.
// Phase 0 (Input).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.Flush()
}
