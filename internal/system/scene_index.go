package system

import (
	"context"
	"time"

	"github.com/directus/engine/internal/core/event"
	"github.com/directus/engine/internal/persist"
	"go.uber.org/zap"
)

// SceneRecorder stores scene file activity. *persist.SceneIndexRepo
// implements it.
type SceneRecorder interface {
	Record(ctx context.Context, ev persist.SceneEvent) error
}

// RegisterSceneIndex records every scene save and load in the index.
// Handlers run on the tick goroutine during event dispatch.
func RegisterSceneIndex(bus *event.Bus, rec SceneRecorder, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	record := func(ev persist.SceneEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rec.Record(ctx, ev); err != nil {
			log.Error("scene index write failed",
				zap.String("path", ev.Path),
				zap.String("op", string(ev.Op)),
				zap.Error(err),
			)
		}
	}
	event.Subscribe(bus, func(ev event.SceneSaved) {
		record(persist.SceneEvent{
			Path: ev.Path, Op: persist.OpSave,
			Roots: ev.Roots, Entities: ev.Entities, Resources: ev.Resources,
			Err: errText(ev.Err),
		})
	})
	event.Subscribe(bus, func(ev event.SceneLoaded) {
		record(persist.SceneEvent{
			Path: ev.Path, Op: persist.OpLoad,
			Roots: ev.Roots, Entities: ev.Entities, Resources: ev.Resources,
			Err: errText(ev.Err),
		})
	})
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
