package system

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/directus/engine/internal/core/event"
	coresys "github.com/directus/engine/internal/core/system"
	"github.com/directus/engine/internal/persist"
	"github.com/directus/engine/internal/scene"
	"github.com/directus/engine/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frameSink struct {
	frames []scene.Frame
}

func (f *frameSink) Submit(fr scene.Frame) { f.frames = append(f.frames, fr) }

type fakeRecorder struct {
	events []persist.SceneEvent
	err    error
}

func (f *fakeRecorder) Record(ctx context.Context, ev persist.SceneEvent) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("no deadline")
	}
	f.events = append(f.events, ev)
	return f.err
}

func TestPhases(t *testing.T) {
	s := scene.New(scene.Deps{})
	assert.Equal(t, coresys.PhaseInput, NewEventDispatchSystem(event.NewBus()).Phase())
	assert.Equal(t, coresys.PhasePreUpdate, NewResolveSystem(s).Phase())
	assert.Equal(t, coresys.PhaseUpdate, NewSceneUpdateSystem(s).Phase())
	assert.Equal(t, coresys.PhaseOutput, NewRenderSystem(s, &frameSink{}).Phase())
	assert.Equal(t, coresys.PhasePersist, NewAutoSaveSystem(s, "x", nil, 1).Phase())
}

func TestEventDispatchDeliversPreviousTick(t *testing.T) {
	bus := event.NewBus()
	var got []string
	event.Subscribe(bus, func(ev event.EntityCreated) { got = append(got, ev.Name) })

	s := scene.New(scene.Deps{Events: bus})
	s.CreateGameObject()

	sys := NewEventDispatchSystem(bus)
	sys.Update(0)
	assert.Equal(t, []string{"Entity"}, got)

	sys.Update(0)
	assert.Len(t, got, 1)
}

func TestRenderSubmitsResolvedFrame(t *testing.T) {
	s := scene.New(scene.Deps{})
	s.Initialize()
	sink := &frameSink{}

	r := coresys.NewRunner()
	r.Register(NewRenderSystem(s, sink))
	r.Register(NewSceneUpdateSystem(s))
	r.Register(NewResolveSystem(s))
	r.Tick(16 * time.Millisecond)

	require.Len(t, sink.frames, 1)
	assert.Same(t, s.MainCamera(), sink.frames[0].Camera)
	assert.Same(t, s.Skybox(), sink.frames[0].Skybox)
	assert.Len(t, sink.frames[0].DirectionalLights, 1)
}

func TestAutoSaveEveryInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auto"+scene.FileExtension)
	pool := worker.NewPool(1, 4, nil)
	defer pool.Close()

	s := scene.New(scene.Deps{Tasks: pool})
	s.CreateGameObject()
	sys := NewAutoSaveSystem(s, path, nil, 3)

	sys.Update(0)
	sys.Update(0)
	pool.Wait()
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	sys.Update(0)
	pool.Wait()
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestAutoSaveNow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exit")
	s := scene.New(scene.Deps{})
	s.CreateGameObject()

	require.NoError(t, NewAutoSaveSystem(s, path, nil, 100).SaveNow())
	_, err := os.Stat(path + scene.FileExtension)
	assert.NoError(t, err)
}

func TestSceneIndexRecordsSavesAndLoads(t *testing.T) {
	dir := t.TempDir()
	bus := event.NewBus()
	rec := &fakeRecorder{}
	RegisterSceneIndex(bus, rec, nil)

	s := scene.New(scene.Deps{Events: bus})
	s.CreateGameObject()
	path := filepath.Join(dir, "indexed"+scene.FileExtension)
	require.NoError(t, s.SaveToFile(path))
	require.NoError(t, s.LoadFromFile(path))
	assert.ErrorIs(t, s.LoadFromFile(filepath.Join(dir, "gone"+scene.FileExtension)), scene.ErrNotFound)

	NewEventDispatchSystem(bus).Update(0)

	require.Len(t, rec.events, 3)
	ops := []persist.Op{rec.events[0].Op, rec.events[1].Op, rec.events[2].Op}
	assert.Equal(t, []persist.Op{persist.OpSave, persist.OpLoad, persist.OpLoad}, ops)
	assert.NotEmpty(t, rec.events[2].Err)
	var failed int
	for _, ev := range rec.events {
		if ev.Err != "" {
			failed++
			continue
		}
		assert.Equal(t, path, ev.Path)
		assert.Equal(t, 1, ev.Entities)
	}
	assert.Equal(t, 1, failed)
}

func TestSceneIndexKeepsGoingOnRecordError(t *testing.T) {
	bus := event.NewBus()
	rec := &fakeRecorder{err: errors.New("db down")}
	RegisterSceneIndex(bus, rec, nil)

	event.Emit(bus, event.SceneSaved{Path: "a", Err: errors.New("disk full")})
	event.Emit(bus, event.SceneSaved{Path: "b"})
	NewEventDispatchSystem(bus).Update(0)

	require.Len(t, rec.events, 2)
	assert.Equal(t, "disk full", rec.events[0].Err)
	assert.Equal(t, "b", rec.events[1].Path)
}
