package scene

import (
	"testing"
	"time"

	"github.com/directus/engine/internal/core/event"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	width, height int
	clears        int
}

func (r *fakeRenderer) Resolution() (int, int) { return r.width, r.height }
func (r *fakeRenderer) Clear()                 { r.clears++ }

type fakeResetter struct{ resets int }

func (r *fakeResetter) Reset() { r.resets++ }

type fakeScript struct {
	starts, updates int
	closed          bool
}

func (f *fakeScript) Start() error {
	f.starts++
	return nil
}

func (f *fakeScript) Update(_ time.Duration) error {
	f.updates++
	return nil
}

func (f *fakeScript) Close() { f.closed = true }

type fakeRuntime struct {
	instances []*fakeScript
	resets    int
}

func (f *fakeRuntime) Instantiate(_ string, _ *Entity) (ScriptInstance, error) {
	inst := &fakeScript{}
	f.instances = append(f.instances, inst)
	return inst, nil
}

func (f *fakeRuntime) Reset() { f.resets++ }

// caches captures the derived caches for comparison.
type caches struct {
	camera, skybox                              *Entity
	renderables, directional, point, spotlights []*Entity
}

func snapshot(s *Scene) caches {
	return caches{
		camera:      s.MainCamera(),
		skybox:      s.Skybox(),
		renderables: s.Renderables(),
		directional: s.DirectionalLights(),
		point:       s.PointLights(),
		spotlights:  s.SpotLights(),
	}
}

// recompute classifies the entities from scratch without going through Resolve.
func recompute(s *Scene) caches {
	var c caches
	for _, e := range s.GameObjects() {
		if Has[Camera](e) {
			c.camera = e
		}
		if Has[Skybox](e) {
			c.skybox = e
		}
		if Has[MeshFilter](e) && Has[MeshRenderer](e) {
			c.renderables = append(c.renderables, e)
		}
		if l := Get[Light](e); l != nil {
			switch l.LightType() {
			case Directional:
				c.directional = append(c.directional, e)
			case Point:
				c.point = append(c.point, e)
			case Spot:
				c.spotlights = append(c.spotlights, e)
			}
		}
	}
	return c
}

func assertCachesFresh(t *testing.T, s *Scene) {
	t.Helper()
	got, want := snapshot(s), recompute(s)
	assert.Same(t, want.camera, got.camera, "camera")
	assert.Same(t, want.skybox, got.skybox, "skybox")
	assert.ElementsMatch(t, want.renderables, got.renderables, "renderables")
	assert.ElementsMatch(t, want.directional, got.directional, "directional")
	assert.ElementsMatch(t, want.point, got.point, "point")
	assert.ElementsMatch(t, want.spotlights, got.spotlights, "spot")
}

func renderable(s *Scene, name string) *Entity {
	e := s.CreateGameObject()
	e.SetName(name)
	Add[MeshFilter](e).SetExtent(mgl32.Vec3{1, 1, 1})
	Add[MeshRenderer](e)
	return e
}

func TestCachesFollowEveryMutation(t *testing.T) {
	s := New(Deps{})
	assertCachesFresh(t, s)

	cam := s.CreateGameObject()
	Add[Camera](cam)
	assertCachesFresh(t, s)
	assert.Same(t, cam, s.MainCamera())

	mesh := renderable(s, "mesh")
	assertCachesFresh(t, s)

	half := s.CreateGameObject()
	Add[MeshFilter](half)
	assertCachesFresh(t, s)
	assert.Equal(t, []*Entity{mesh}, s.Renderables())

	lamp := s.CreateGameObject()
	l := Add[Light](lamp)
	assertCachesFresh(t, s)
	assert.Equal(t, []*Entity{lamp}, s.PointLights())

	l.SetLightType(Directional)
	assertCachesFresh(t, s)
	assert.Equal(t, []*Entity{lamp}, s.DirectionalLights())
	assert.Empty(t, s.PointLights())

	require.True(t, RemoveComponent[MeshRenderer](mesh))
	assertCachesFresh(t, s)
	assert.Empty(t, s.Renderables())

	s.RemoveGameObject(cam)
	assertCachesFresh(t, s)
	assert.Nil(t, s.MainCamera())

	s.RemoveGameObject(lamp)
	assertCachesFresh(t, s)
	assert.Empty(t, s.DirectionalLights())
}

func TestLastCameraAndSkyboxWin(t *testing.T) {
	s := New(Deps{})
	first := s.CreateGameObject()
	Add[Camera](first)
	Add[Skybox](first)
	second := s.CreateGameObject()
	Add[Camera](second)
	Add[Skybox](second)

	assert.Same(t, second, s.MainCamera())
	assert.Same(t, second, s.Skybox())

	s.RemoveGameObject(second)
	assert.Same(t, first, s.MainCamera())
}

func TestResolveIsIdempotent(t *testing.T) {
	s := New(Deps{})
	s.Initialize()
	renderable(s, "a")
	renderable(s, "b")

	s.Resolve()
	first := snapshot(s)
	s.Resolve()
	assert.Equal(t, first, snapshot(s))
}

func TestRemoveCascadesToDescendants(t *testing.T) {
	s := New(Deps{})
	top := s.CreateGameObject()
	a := s.CreateGameObject()
	b := s.CreateGameObject()
	c := s.CreateGameObject()
	d := s.CreateGameObject()
	sibling := s.CreateGameObject()

	require.True(t, a.Transform().SetParent(top.Transform()))
	require.True(t, sibling.Transform().SetParent(top.Transform()))
	require.True(t, b.Transform().SetParent(a.Transform()))
	require.True(t, c.Transform().SetParent(b.Transform()))
	require.True(t, d.Transform().SetParent(a.Transform()))

	before := s.Count()
	s.RemoveGameObject(a) // a has 3 descendants
	assert.Equal(t, before-4, s.Count())

	for _, e := range []*Entity{a, b, c, d} {
		assert.False(t, s.GameObjectExists(e), e.Name())
	}
	assert.True(t, s.GameObjectExists(top))
	assert.Equal(t, []*Transform{sibling.Transform()}, top.Transform().Children())
	assertCachesFresh(t, s)
}

func TestRemoveSingleReparentsChildren(t *testing.T) {
	s := New(Deps{})
	grand := s.CreateGameObject()
	mid := s.CreateGameObject()
	leaf1 := s.CreateGameObject()
	leaf2 := s.CreateGameObject()
	require.True(t, mid.Transform().SetParent(grand.Transform()))
	require.True(t, leaf1.Transform().SetParent(mid.Transform()))
	require.True(t, leaf2.Transform().SetParent(mid.Transform()))

	s.RemoveSingleGameObject(mid)

	assert.Equal(t, 3, s.Count())
	assert.Same(t, grand.Transform(), leaf1.Transform().Parent())
	assert.Same(t, grand.Transform(), leaf2.Transform().Parent())
	assert.ElementsMatch(t, []*Transform{leaf1.Transform(), leaf2.Transform()}, grand.Transform().Children())

	// Without a parent the children become roots.
	s.RemoveSingleGameObject(grand)
	assert.True(t, leaf1.Transform().IsRoot())
	assert.True(t, leaf2.Transform().IsRoot())
	assert.Len(t, s.RootGameObjects(), 2)
}

func TestLookups(t *testing.T) {
	s := New(Deps{})
	e := s.CreateGameObject()
	e.SetName("Crate")

	assert.Same(t, e, s.GameObjectByID(e.ID()))
	assert.Same(t, e, s.GameObjectByName("Crate"))
	assert.Nil(t, s.GameObjectByID("no-such-id"))
	assert.Nil(t, s.GameObjectByName("Barrel"))
	assert.True(t, s.GameObjectExists(e))
	assert.False(t, s.GameObjectExists(nil))

	s.RemoveGameObject(e)
	assert.False(t, s.GameObjectExists(e))
	assert.Nil(t, s.GameObjectByID(e.ID()))
}

func TestInitializeBuildsDefaultScene(t *testing.T) {
	runtime := &fakeRuntime{}
	s := New(Deps{Scripting: runtime, ScriptDirectory: "scripts"})
	s.Initialize()

	require.Equal(t, 3, s.Count())
	cam := s.GameObjectByName("Camera")
	require.NotNil(t, cam)
	assert.Same(t, cam, s.MainCamera())
	assert.True(t, Has[Script](cam))
	assert.Len(t, runtime.instances, 1)

	sky := s.GameObjectByName("Skybox")
	require.NotNil(t, sky)
	assert.Same(t, sky, s.Skybox())
	assert.False(t, sky.HierarchyVisible())
	assert.True(t, Has[LineRenderer](sky))

	light := s.GameObjectByName("DirectionalLight")
	require.NotNil(t, light)
	assert.Equal(t, []*Entity{light}, s.DirectionalLights())
	assert.Equal(t, float32(4), Get[Light](light).Intensity())
}

func TestClearResetsCollaborators(t *testing.T) {
	renderer := &fakeRenderer{width: 800, height: 600}
	physics := &fakeResetter{}
	runtime := &fakeRuntime{}
	s := New(Deps{Renderer: renderer, Physics: physics, Scripting: runtime, ScriptDirectory: "scripts"})
	s.Initialize()

	s.Clear()

	assert.Zero(t, s.Count())
	assert.Nil(t, s.MainCamera())
	assert.Nil(t, s.Skybox())
	assert.Empty(t, s.DirectionalLights())
	assert.Equal(t, 1, renderer.clears)
	assert.Equal(t, 1, physics.resets)
	assert.Equal(t, 1, runtime.resets)
	require.Len(t, runtime.instances, 1)
	assert.True(t, runtime.instances[0].closed)
}

func TestUpdateTicksActiveEntities(t *testing.T) {
	runtime := &fakeRuntime{}
	s := New(Deps{Scripting: runtime})
	on := s.CreateGameObject()
	require.NoError(t, Add[Script](on).SetScript("on.lua"))
	off := s.CreateGameObject()
	require.NoError(t, Add[Script](off).SetScript("off.lua"))
	off.SetActive(false)

	s.Start()
	for i := 0; i < 4; i++ {
		s.Update(250 * time.Millisecond)
	}

	require.Len(t, runtime.instances, 2)
	assert.Equal(t, 1, runtime.instances[0].starts)
	assert.Equal(t, 4, runtime.instances[0].updates)
	assert.Zero(t, runtime.instances[1].updates)
	assert.InDelta(t, 4.0, s.FPS(), 1e-4)
}

func TestAddReturnsExistingComponent(t *testing.T) {
	s := New(Deps{})
	e := s.CreateGameObject()
	first := Add[Camera](e)
	assert.Same(t, first, Add[Camera](e))
	assert.Same(t, e.Transform(), Get[Transform](e))
	assert.False(t, RemoveComponent[Transform](e))
	assert.False(t, RemoveComponent[Light](e))
	assert.Len(t, e.Components(), 2)
}

func TestEventsAreEmitted(t *testing.T) {
	bus := event.NewBus()
	var created, removed []string
	event.Subscribe(bus, func(ev event.EntityCreated) { created = append(created, ev.ID) })
	event.Subscribe(bus, func(ev event.EntityRemoved) { removed = append(removed, ev.ID) })

	s := New(Deps{Events: bus})
	e := s.CreateGameObject()
	s.RemoveGameObject(e)

	bus.SwapBuffers()
	bus.DispatchAll()
	assert.Equal(t, []string{e.ID()}, created)
	assert.Equal(t, []string{e.ID()}, removed)
}

func TestFrameSnapshot(t *testing.T) {
	s := New(Deps{})
	s.Initialize()
	mesh := renderable(s, "mesh")
	s.SetAmbientLight(mgl32.Vec3{0.1, 0.2, 0.3})

	f := s.Frame()
	assert.Same(t, s.MainCamera(), f.Camera)
	assert.Equal(t, []*Entity{mesh}, f.Renderables)
	assert.Len(t, f.DirectionalLights, 1)
	assert.Equal(t, mgl32.Vec3{0.1, 0.2, 0.3}, f.Ambient)
}
