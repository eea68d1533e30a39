package render

import (
	"testing"

	"github.com/directus/engine/internal/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolutionIsClamped(t *testing.T) {
	h := NewHeadless(1920, 1080, 1024, nil)
	w, ht := h.Resolution()
	assert.Equal(t, 1024, w)
	assert.Equal(t, 1024, ht)

	h.SetResolution(0, 600)
	w, ht = h.Resolution()
	assert.Equal(t, 1, w)
	assert.Equal(t, 600, ht)
	assert.Equal(t, Viewport{Width: 1, Height: 600}, h.Settings().Viewport)
}

func TestSubmitAndClear(t *testing.T) {
	h := NewHeadless(800, 600, 0, nil)
	s := scene.New(scene.Deps{Renderer: h})
	s.Initialize()

	h.Submit(s.Frame())
	h.Submit(s.Frame())
	f, n := h.LastFrame()
	assert.Equal(t, uint64(2), n)
	require.NotNil(t, f.Camera)
	assert.Equal(t, "Camera", f.Camera.Name())

	s.Clear()
	f, _ = h.LastFrame()
	assert.Nil(t, f.Camera)
}

func TestPickThroughHeadless(t *testing.T) {
	h := NewHeadless(800, 600, 0, nil)
	s := scene.New(scene.Deps{Renderer: h})
	s.Initialize()
	cam := s.MainCamera()
	require.NotNil(t, cam)

	target := s.CreateGameObject()
	scene.Add[scene.MeshFilter](target).SetExtent(mgl32.Vec3{1, 1, 1})
	scene.Add[scene.MeshRenderer](target)
	target.Transform().SetPosition(cam.Transform().Position().Add(cam.Transform().Forward().Mul(5)))

	assert.Same(t, target, s.Pick(mgl32.Vec2{400, 300}))
}
