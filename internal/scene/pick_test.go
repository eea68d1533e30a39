package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pickScene(t *testing.T) (*Scene, *Entity) {
	t.Helper()
	s := New(Deps{Renderer: &fakeRenderer{width: 800, height: 600}})
	cam := s.CreateGameObject()
	Add[Camera](cam)
	cam.Transform().SetLocalPosition(mgl32.Vec3{0, 0, 5})
	return s, cam
}

func TestPickCenterHitsRenderable(t *testing.T) {
	s, _ := pickScene(t)
	target := renderable(s, "sphere")

	assert.Same(t, target, s.Pick(mgl32.Vec2{400, 300}))
	assert.Nil(t, s.Pick(mgl32.Vec2{0, 0}))
	assert.Nil(t, s.Pick(mgl32.Vec2{800, 600}))
}

func TestPickPrefersClosest(t *testing.T) {
	s, _ := pickScene(t)
	far := renderable(s, "far")
	far.Transform().SetLocalPosition(mgl32.Vec3{0, 0, -10})
	near := renderable(s, "near")

	assert.Same(t, near, s.Pick(mgl32.Vec2{400, 300}))
}

func TestPickTieGoesToFirst(t *testing.T) {
	s, _ := pickScene(t)
	first := renderable(s, "first")
	renderable(s, "second")

	assert.Same(t, first, s.Pick(mgl32.Vec2{400, 300}))
}

func TestPickIgnoresSkyboxAndObjectsBehind(t *testing.T) {
	s, _ := pickScene(t)
	sky := renderable(s, "sky")
	Add[Skybox](sky)
	behind := renderable(s, "behind")
	behind.Transform().SetLocalPosition(mgl32.Vec3{0, 0, 20})

	assert.Nil(t, s.Pick(mgl32.Vec2{400, 300}))
}

func TestPickRequiresCameraForwardHit(t *testing.T) {
	s, _ := pickScene(t)
	// Visible in the lower left of the view, but off the camera's axis.
	off := renderable(s, "off-axis")
	off.Transform().SetLocalPosition(mgl32.Vec3{-1.5, -1, 0})

	origin, dir, err := s.ScreenRay(mgl32.Vec2{200, 450})
	require.NoError(t, err)
	require.True(t, raySphereIntersect(origin, dir, off.Transform().Position(), 1))
	assert.Nil(t, s.Pick(mgl32.Vec2{200, 450}))
}

func TestPickWithoutCamera(t *testing.T) {
	s := New(Deps{Renderer: &fakeRenderer{width: 800, height: 600}})
	renderable(s, "lonely")

	assert.Nil(t, s.Pick(mgl32.Vec2{400, 300}))
	_, _, err := s.ScreenRay(mgl32.Vec2{400, 300})
	assert.ErrorIs(t, err, ErrNoCamera)
}

func TestPickUsesScaledRadius(t *testing.T) {
	s, _ := pickScene(t)
	e := renderable(s, "scaled")
	e.Transform().SetLocalPosition(mgl32.Vec3{0, 1.5, 0})

	// The camera axis passes 1.5 below the center: a unit sphere misses it.
	assert.Nil(t, s.Pick(mgl32.Vec2{400, 300}))

	e.Transform().SetLocalScale(mgl32.Vec3{2, 2, 2})
	assert.Equal(t, float32(2), Get[MeshFilter](e).BoundingRadius())
	assert.Same(t, e, s.Pick(mgl32.Vec2{400, 300}))
}

func TestRaySphereIntersect(t *testing.T) {
	center := mgl32.Vec3{0, 0, 0}
	assert.True(t, raySphereIntersect(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, -1}, center, 1))
	assert.False(t, raySphereIntersect(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 1}, center, 1))
	assert.False(t, raySphereIntersect(mgl32.Vec3{0, 2, 5}, mgl32.Vec3{0, 0, -1}, center, 1))
	assert.True(t, raySphereIntersect(mgl32.Vec3{0, 0.5, 0}, mgl32.Vec3{1, 0, 0}, center, 1))
	assert.False(t, raySphereIntersect(center, mgl32.Vec3{}, center, 1))
}
