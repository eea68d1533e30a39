package scene

import (
	"github.com/directus/engine/internal/stream"
	"github.com/go-gl/mathgl/mgl32"
)

type Projection int32

const (
	Perspective Projection = iota
	Orthographic
)

// Camera renders the scene from its entity's transform, looking down -Z.
type Camera struct {
	base
	fov        float32 // degrees, vertical
	near       float32
	far        float32
	projection Projection
	clearColor mgl32.Vec4
}

func (c *Camera) Kind() Kind { return KindCamera }

func (c *Camera) Initialize() {
	c.fov = 45
	c.near = 0.3
	c.far = 1000
	c.projection = Perspective
	c.clearColor = mgl32.Vec4{0, 0, 0, 1}
}

func (c *Camera) FOV() float32               { return c.fov }
func (c *Camera) SetFOV(deg float32)         { c.fov = deg }
func (c *Camera) NearPlane() float32         { return c.near }
func (c *Camera) SetNearPlane(v float32)     { c.near = v }
func (c *Camera) FarPlane() float32          { return c.far }
func (c *Camera) SetFarPlane(v float32)      { c.far = v }
func (c *Camera) Projection() Projection     { return c.projection }
func (c *Camera) SetProjection(p Projection) { c.projection = p }
func (c *Camera) ClearColor() mgl32.Vec4     { return c.clearColor }
func (c *Camera) SetClearColor(v mgl32.Vec4) { c.clearColor = v }

// ViewMatrix returns the world-to-view matrix.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	t := c.entity.transform
	eye := t.Position()
	return mgl32.LookAtV(eye, eye.Add(t.Forward()), t.Up())
}

// ProjectionMatrix returns the view-to-clip matrix for a width x height target.
func (c *Camera) ProjectionMatrix(width, height int) mgl32.Mat4 {
	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}
	if c.projection == Orthographic {
		halfH := float32(height) / 2
		halfW := float32(width) / 2
		if halfH == 0 || halfW == 0 {
			halfH, halfW = 1, aspect
		}
		return mgl32.Ortho(-halfW, halfW, -halfH, halfH, c.near, c.far)
	}
	return mgl32.Perspective(mgl32.DegToRad(c.fov), aspect, c.near, c.far)
}

// ScreenRay unprojects the viewport point (x, y), origin top-left, into a
// world-space ray starting on the near plane.
func (c *Camera) ScreenRay(x, y float32, width, height int) (origin, dir mgl32.Vec3) {
	ndcX := 2*x/float32(width) - 1
	ndcY := 1 - 2*y/float32(height)

	inv := c.ProjectionMatrix(width, height).Mul4(c.ViewMatrix()).Inv()
	near := mgl32.TransformCoordinate(mgl32.Vec3{ndcX, ndcY, -1}, inv)
	far := mgl32.TransformCoordinate(mgl32.Vec3{ndcX, ndcY, 1}, inv)
	return near, far.Sub(near).Normalize()
}

func (c *Camera) Serialize(w *stream.Writer) {
	w.WriteFloat(c.fov)
	w.WriteFloat(c.near)
	w.WriteFloat(c.far)
	w.WriteInt(int32(c.projection))
	w.WriteVec4(c.clearColor)
}

func (c *Camera) Deserialize(r *stream.Reader) error {
	c.fov = r.ReadFloat()
	c.near = r.ReadFloat()
	c.far = r.ReadFloat()
	c.projection = Projection(r.ReadInt())
	c.clearColor = r.ReadVec4()
	return r.Err()
}
