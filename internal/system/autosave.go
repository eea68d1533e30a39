package system

import (
	"time"

	coresys "github.com/directus/engine/internal/core/system"
	"github.com/directus/engine/internal/scene"
	"go.uber.org/zap"
)

// AutoSaveSystem periodically saves the scene on a worker. Phase 4 (Persist).
type AutoSaveSystem struct {
	scene     *scene.Scene
	path      string
	log       *zap.Logger
	tickCount int
	interval  int // auto-save every N ticks
}

func NewAutoSaveSystem(s *scene.Scene, path string, log *zap.Logger, intervalTicks int) *AutoSaveSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &AutoSaveSystem{
		scene:    s,
		path:     path,
		log:      log,
		interval: intervalTicks,
	}
}

func (s *AutoSaveSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *AutoSaveSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	if s.scene.Busy() {
		return // retry next tick
	}
	s.tickCount = 0
	if err := s.scene.SaveToFileAsync(s.path); err != nil {
		s.log.Warn("autosave not queued", zap.String("path", s.path), zap.Error(err))
	}
}

// SaveNow saves synchronously, for graceful shutdown.
func (s *AutoSaveSystem) SaveNow() error {
	return s.scene.SaveToFile(s.path)
}
