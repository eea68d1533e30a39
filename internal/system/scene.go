package system

import (
	"time"

	coresys "github.com/directus/engine/internal/core/system"
	"github.com/directus/engine/internal/scene"
)

// ResolveSystem rebuilds the scene's derived caches once per tick.
// Phase 1 (PreUpdate). Skipped while an async save/load owns the scene.
type ResolveSystem struct {
	scene *scene.Scene
}

func NewResolveSystem(s *scene.Scene) *ResolveSystem {
	return &ResolveSystem{scene: s}
}

func (s *ResolveSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *ResolveSystem) Update(_ time.Duration) {
	if s.scene.Busy() {
		return
	}
	s.scene.Resolve()
}

// SceneUpdateSystem ticks every entity. Phase 2 (Update).
type SceneUpdateSystem struct {
	scene *scene.Scene
}

func NewSceneUpdateSystem(s *scene.Scene) *SceneUpdateSystem {
	return &SceneUpdateSystem{scene: s}
}

func (s *SceneUpdateSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *SceneUpdateSystem) Update(dt time.Duration) {
	if s.scene.Busy() {
		return
	}
	s.scene.Update(dt)
}
