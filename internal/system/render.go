package system

import (
	"time"

	coresys "github.com/directus/engine/internal/core/system"
	"github.com/directus/engine/internal/scene"
)

// FrameSink receives the resolved frame each tick.
type FrameSink interface {
	Submit(f scene.Frame)
}

// RenderSystem hands the scene's frame snapshot to the renderer.
// Phase 3 (Output).
type RenderSystem struct {
	scene *scene.Scene
	sink  FrameSink
}

func NewRenderSystem(s *scene.Scene, sink FrameSink) *RenderSystem {
	return &RenderSystem{scene: s, sink: sink}
}

func (s *RenderSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *RenderSystem) Update(_ time.Duration) {
	if s.scene.Busy() {
		return
	}
	s.sink.Submit(s.scene.Frame())
}
