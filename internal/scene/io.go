package scene

import (
	"errors"
	"fmt"

	"github.com/directus/engine/internal/core/event"
	"github.com/directus/engine/internal/fsutil"
	"github.com/directus/engine/internal/stream"
	"go.uber.org/zap"
)

// FileExtension is appended to scene paths that lack it.
const FileExtension = ".directus"

var (
	ErrNotFound = errors.New("scene file not found")
	ErrNoCamera = errors.New("scene has no camera")
)

// SaveToFile writes the loaded resource paths and every root entity, with
// its descendants, to path. FileExtension is appended when missing.
func (s *Scene) SaveToFile(path string) error {
	s.io.Lock()
	defer s.io.Unlock()

	path = fsutil.EnsureExtension(path, FileExtension)
	ev := event.SceneSaved{Path: path}
	err := s.save(path, &ev)
	ev.Err = err
	event.Emit(s.deps.Events, ev)
	if err != nil {
		s.log.Error("scene save failed", zap.String("path", path), zap.Error(err))
		return err
	}
	s.log.Info("scene saved",
		zap.String("path", path),
		zap.Int("roots", ev.Roots),
		zap.Int("entities", ev.Entities),
		zap.Int("resources", ev.Resources),
	)
	return nil
}

func (s *Scene) save(path string, ev *event.SceneSaved) error {
	var resources []string
	if s.deps.Resources != nil {
		if err := s.deps.Resources.SaveMetadata(); err != nil {
			s.log.Warn("resource metadata not saved", zap.Error(err))
		}
		resources = s.deps.Resources.FilePaths()
	}

	w, err := stream.Create(path)
	if err != nil {
		return fmt.Errorf("open scene %s: %w", path, err)
	}

	w.WriteStrings(resources)

	roots := s.RootGameObjects()
	w.WriteInt(int32(len(roots)))
	for _, root := range roots {
		w.WriteString(root.id)
	}
	for _, root := range roots {
		root.serialize(w)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("write scene %s: %w", path, err)
	}
	ev.Roots = len(roots)
	ev.Entities = len(s.entities)
	ev.Resources = len(resources)
	return nil
}

// LoadFromFile replaces the scene's contents with the scene stored at path.
// A failure after the existing scene has been cleared leaves it empty.
func (s *Scene) LoadFromFile(path string) error {
	s.io.Lock()
	defer s.io.Unlock()

	ev := event.SceneLoaded{Path: path}
	err := s.load(path, &ev)
	ev.Err = err
	event.Emit(s.deps.Events, ev)
	if err != nil {
		s.log.Error("scene load failed", zap.String("path", path), zap.Error(err))
		return err
	}
	s.log.Info("scene loaded",
		zap.String("path", path),
		zap.Int("roots", ev.Roots),
		zap.Int("entities", ev.Entities),
		zap.Int("resources", ev.Resources),
	)
	return nil
}

func (s *Scene) load(path string, ev *event.SceneLoaded) error {
	if !fsutil.FileExists(path) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	s.Clear()

	// First pass: resource paths only.
	r, err := stream.Open(path)
	if err != nil {
		return fmt.Errorf("open scene %s: %w", path, err)
	}
	resources := r.ReadStrings()
	if err := r.Err(); err != nil {
		return fmt.Errorf("read resources %s: %w", path, err)
	}
	s.loadResources(resources)
	ev.Resources = len(resources)

	// Second pass: structure. The file is read again from the start.
	r, err = stream.Open(path)
	if err != nil {
		return fmt.Errorf("open scene %s: %w", path, err)
	}
	r.ReadStrings()

	s.beginBatch()
	defer s.endBatch()

	// The registry grows while roots deserialize their descendants, so the
	// root count is fixed before the loop.
	rootCount := r.ReadCount(4)
	for i := 0; i < rootCount && r.Err() == nil; i++ {
		e := s.newEntity()
		e.id = r.ReadString()
	}
	for i := 0; i < rootCount && r.Err() == nil; i++ {
		if err := s.entities[i].deserialize(r, nil); err != nil {
			s.clearEntities()
			return fmt.Errorf("read scene %s: %w", path, err)
		}
	}
	if err := r.Err(); err != nil {
		s.clearEntities()
		return fmt.Errorf("read scene %s: %w", path, err)
	}

	s.dirty = true
	ev.Roots = rootCount
	ev.Entities = len(s.entities)
	return nil
}

// loadResources loads each path with the loader its extension selects.
// Failures are logged and skipped.
func (s *Scene) loadResources(paths []string) {
	res := s.deps.Resources
	if res == nil {
		return
	}
	for _, p := range paths {
		var err error
		switch {
		case fsutil.IsSupportedMeshFile(p):
			err = res.LoadMesh(p)
		case fsutil.IsSupportedMaterialFile(p):
			err = res.LoadMaterial(p)
		case fsutil.IsSupportedImageFile(p):
			err = res.LoadTexture(p)
		default:
			continue
		}
		if err != nil {
			s.log.Warn("scene resource not loaded", zap.String("path", p), zap.Error(err))
		}
	}
}

// clearEntities drops a partially loaded registry.
func (s *Scene) clearEntities() {
	for _, e := range s.entities {
		e.destroy()
	}
	s.entities = nil
	s.table.Clear()
	s.handles.Reset()
	s.dirty = true
}

// SaveToFileAsync queues SaveToFile on the task dispatcher and returns
// immediately. Errors are reported through the log and the SceneSaved event.
func (s *Scene) SaveToFileAsync(path string) error {
	return s.dispatch(func() { _ = s.SaveToFile(path) })
}

// LoadFromFileAsync queues LoadFromFile on the task dispatcher. The scene
// must not be mutated until Busy reports false again.
func (s *Scene) LoadFromFileAsync(path string) error {
	return s.dispatch(func() { _ = s.LoadFromFile(path) })
}

func (s *Scene) dispatch(fn func()) error {
	if s.deps.Tasks == nil {
		return errors.New("scene: no task dispatcher")
	}
	s.busy.Add(1)
	err := s.deps.Tasks.AddTask(func() {
		defer s.busy.Add(-1)
		fn()
	})
	if err != nil {
		s.busy.Add(-1)
		return fmt.Errorf("dispatch scene task: %w", err)
	}
	return nil
}
