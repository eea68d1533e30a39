package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput     Phase = iota // 0: dispatch last tick's events
	PhasePreUpdate              // 1: resolve derived scene caches
	PhaseUpdate                 // 2: entity and component update
	PhaseOutput                 // 3: hand the resolved frame to the renderer
	PhasePersist                // 4: autosave

	phaseCount
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "Input"
	case PhasePreUpdate:
		return "PreUpdate"
	case PhaseUpdate:
		return "Update"
	case PhaseOutput:
		return "Output"
	case PhasePersist:
		return "Persist"
	default:
		return "Unknown"
	}
}

// System is the interface every engine system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
