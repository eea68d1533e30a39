// Package scene owns the entities of a running world, classifies them into the
// subsets the renderer consumes each frame and persists them to disk.
//
// A Scene is driven from a single goroutine. The async save/load wrappers hand
// the whole operation to a worker; callers check Busy and hold off mutations
// while one is in flight.
package scene

import (
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/directus/engine/internal/core/ecs"
	"github.com/directus/engine/internal/core/event"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultEntityName = "Entity"

type Scene struct {
	deps Deps
	log  *zap.Logger

	handles  *ecs.HandlePool
	table    *ecs.Table[Entity]
	entities []*Entity // creation order

	// Derived caches, rebuilt by Resolve.
	camera      *Entity
	skybox      *Entity
	renderables []*Entity
	directional []*Entity
	point       []*Entity
	spot        []*Entity

	// batch > 0 defers resolution until the outermost endBatch.
	batch int
	dirty bool

	ambient mgl32.Vec3

	fps        float32
	fpsFrames  int
	fpsElapsed time.Duration

	busy atomic.Int32
	io   sync.Mutex // one save/load at a time
}

// New creates an empty scene. Call Initialize for the default camera, skybox
// and light.
func New(deps Deps) *Scene {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Scene{
		deps:    deps,
		log:     log,
		handles: ecs.NewHandlePool(),
		table:   ecs.NewTable[Entity](),
		ambient: mgl32.Vec3{0.2, 0.2, 0.2},
	}
}

// ── Lifecycle ──

// Initialize populates the scene with a camera, a skybox and a directional
// light.
func (s *Scene) Initialize() {
	s.beginBatch()
	s.createCamera()
	s.createSkybox()
	s.createDirectionalLight()
	s.endBatch()
}

func (s *Scene) createCamera() *Entity {
	e := s.CreateGameObject()
	e.name = "Camera"
	Add[Camera](e)
	e.transform.SetLocalPosition(mgl32.Vec3{0, 1, 5})
	if s.deps.ScriptDirectory != "" {
		path := filepath.Join(s.deps.ScriptDirectory, "MouseLook.lua")
		if err := Add[Script](e).SetScript(path); err != nil {
			s.log.Warn("camera script not attached", zap.String("path", path), zap.Error(err))
		}
	}
	return e
}

func (s *Scene) createSkybox() *Entity {
	e := s.CreateGameObject()
	e.name = "Skybox"
	Add[LineRenderer](e)
	Add[Skybox](e)
	e.hierarchyVisible = false
	return e
}

func (s *Scene) createDirectionalLight() *Entity {
	e := s.CreateGameObject()
	e.name = "DirectionalLight"
	e.transform.SetLocalRotation(mgl32.QuatRotate(mgl32.DegToRad(30), mgl32.Vec3{1, 0, 0}))
	l := Add[Light](e)
	l.SetLightType(Directional)
	l.SetIntensity(4)
	return e
}

func (s *Scene) Start() {
	for _, e := range s.entities {
		e.Start()
	}
}

func (s *Scene) OnDisable() {
	for _, e := range s.entities {
		e.OnDisable()
	}
}

// Update ticks every entity and the FPS counter.
func (s *Scene) Update(dt time.Duration) {
	for _, e := range slices.Clone(s.entities) {
		e.Update(dt)
	}
	s.fpsFrames++
	s.fpsElapsed += dt
	if s.fpsElapsed >= time.Second {
		s.fps = float32(s.fpsFrames) / float32(s.fpsElapsed.Seconds())
		s.fpsFrames = 0
		s.fpsElapsed = 0
	}
}

// FPS returns the frame rate measured over the last full second of updates.
func (s *Scene) FPS() float32 { return s.fps }

// Clear destroys every entity, resets the physics, scripting and renderer
// collaborators and releases the resource cache.
func (s *Scene) Clear() {
	s.clearEntities()

	if s.deps.Resources != nil {
		s.deps.Resources.Unload()
	}
	if s.deps.Scripting != nil {
		s.deps.Scripting.Reset()
	}
	if s.deps.Physics != nil {
		s.deps.Physics.Reset()
	}
	if s.deps.Renderer != nil {
		s.deps.Renderer.Clear()
	}

	s.Resolve()
	event.Emit(s.deps.Events, event.SceneCleared{})
}

// ── Entities ──

// newEntity allocates an entity with its Transform and appends it to the
// registry without resolving.
func (s *Scene) newEntity() *Entity {
	e := &Entity{
		id:               uuid.NewString(),
		name:             defaultEntityName,
		active:           true,
		hierarchyVisible: true,
		handle:           s.handles.Create(),
		scene:            s,
	}
	e.transform = newTransform()
	e.transform.attach(e)
	e.components = append(e.components, e.transform)
	s.table.Set(e.handle, e)
	s.entities = append(s.entities, e)
	return e
}

// CreateGameObject adds a new entity with a default Transform.
func (s *Scene) CreateGameObject() *Entity {
	e := s.newEntity()
	event.Emit(s.deps.Events, event.EntityCreated{ID: e.id, Name: e.name})
	s.invalidate()
	return e
}

// RemoveGameObject removes e together with all of its descendants.
func (s *Scene) RemoveGameObject(e *Entity) {
	if !s.GameObjectExists(e) {
		return
	}
	s.beginBatch()
	defer s.endBatch()

	for _, d := range e.transform.Descendants() {
		s.removeByID(d.entity.id)
	}
	parent := e.transform.Parent()
	s.removeByID(e.id)
	if parent != nil {
		parent.ResolveChildrenRecursively()
	}
}

// RemoveSingleGameObject removes only e. Its children move to e's former
// parent, or become roots when e had none.
func (s *Scene) RemoveSingleGameObject(e *Entity) {
	if !s.GameObjectExists(e) {
		return
	}
	s.beginBatch()
	defer s.endBatch()

	parent := e.transform.Parent()
	for _, child := range e.transform.Children() {
		child.SetParent(parent)
	}
	s.removeByID(e.id)
	if parent != nil {
		parent.ResolveChildrenRecursively()
	}
}

func (s *Scene) removeByID(id string) {
	i := slices.IndexFunc(s.entities, func(e *Entity) bool { return e.id == id })
	if i < 0 {
		return
	}
	e := s.entities[i]
	e.destroy()
	s.entities = slices.Delete(s.entities, i, i+1)
	s.table.Remove(e.handle)
	s.handles.Destroy(e.handle)
	event.Emit(s.deps.Events, event.EntityRemoved{ID: e.id, Name: e.name})
	s.invalidate()
}

// lookup resolves a handle to a live entity.
func (s *Scene) lookup(h ecs.Handle) *Entity {
	if !s.handles.Alive(h) {
		return nil
	}
	e, _ := s.table.Get(h)
	return e
}

// GameObjectByID returns the entity with the given ID, or nil.
func (s *Scene) GameObjectByID(id string) *Entity {
	for _, e := range s.entities {
		if e.id == id {
			return e
		}
	}
	return nil
}

// GameObjectByName returns the first entity with the given name, or nil.
func (s *Scene) GameObjectByName(name string) *Entity {
	for _, e := range s.entities {
		if e.name == name {
			return e
		}
	}
	return nil
}

func (s *Scene) GameObjectExists(e *Entity) bool {
	if e == nil {
		return false
	}
	return s.GameObjectByID(e.id) != nil
}

// GameObjects returns every entity in creation order.
func (s *Scene) GameObjects() []*Entity { return slices.Clone(s.entities) }

func (s *Scene) Count() int { return len(s.entities) }

// RootGameObjects returns the entities without a parent, in creation order.
func (s *Scene) RootGameObjects() []*Entity {
	var roots []*Entity
	for _, e := range s.entities {
		if e.transform.IsRoot() {
			roots = append(roots, e)
		}
	}
	return roots
}

// GameObjectRoot returns the root of e's hierarchy.
func (s *Scene) GameObjectRoot(e *Entity) *Entity {
	if e == nil {
		return nil
	}
	return e.transform.Root().entity
}

// ── Resolution ──

func (s *Scene) beginBatch() { s.batch++ }

func (s *Scene) endBatch() {
	s.batch--
	if s.batch == 0 && s.dirty {
		s.Resolve()
	}
}

// invalidate marks the caches stale and rebuilds them unless a batch is open.
func (s *Scene) invalidate() {
	if s.batch > 0 {
		s.dirty = true
		return
	}
	s.Resolve()
}

// Resolve rebuilds the derived caches with one pass over all entities. It is
// O(entities). When several entities carry a camera or skybox, the last one
// wins.
func (s *Scene) Resolve() {
	s.camera = nil
	s.skybox = nil
	s.renderables = s.renderables[:0]
	s.directional = s.directional[:0]
	s.point = s.point[:0]
	s.spot = s.spot[:0]

	for _, e := range s.entities {
		if Has[Camera](e) {
			s.camera = e
		}
		if Has[Skybox](e) {
			s.skybox = e
		}
		if Has[MeshFilter](e) && Has[MeshRenderer](e) {
			s.renderables = append(s.renderables, e)
		}
		if l := Get[Light](e); l != nil {
			switch l.lightType {
			case Directional:
				s.directional = append(s.directional, e)
			case Point:
				s.point = append(s.point, e)
			case Spot:
				s.spot = append(s.spot, e)
			}
		}
	}
	s.dirty = false
}

// MainCamera returns the active camera entity, or nil.
func (s *Scene) MainCamera() *Entity { return s.camera }

// Skybox returns the active skybox entity, or nil.
func (s *Scene) Skybox() *Entity { return s.skybox }

func (s *Scene) Renderables() []*Entity       { return slices.Clone(s.renderables) }
func (s *Scene) DirectionalLights() []*Entity { return slices.Clone(s.directional) }
func (s *Scene) PointLights() []*Entity       { return slices.Clone(s.point) }
func (s *Scene) SpotLights() []*Entity        { return slices.Clone(s.spot) }

func (s *Scene) SetAmbientLight(v mgl32.Vec3) { s.ambient = v }
func (s *Scene) AmbientLight() mgl32.Vec3     { return s.ambient }

// Frame is a snapshot of what the renderer draws this tick.
type Frame struct {
	Camera            *Entity
	Skybox            *Entity
	Renderables       []*Entity
	DirectionalLights []*Entity
	PointLights       []*Entity
	SpotLights        []*Entity
	Ambient           mgl32.Vec3
}

func (s *Scene) Frame() Frame {
	return Frame{
		Camera:            s.camera,
		Skybox:            s.skybox,
		Renderables:       s.Renderables(),
		DirectionalLights: s.DirectionalLights(),
		PointLights:       s.PointLights(),
		SpotLights:        s.SpotLights(),
		Ambient:           s.ambient,
	}
}

// Busy reports whether an async save or load is in flight.
func (s *Scene) Busy() bool { return s.busy.Load() > 0 }
