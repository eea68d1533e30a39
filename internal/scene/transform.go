package scene

import (
	"slices"

	"github.com/directus/engine/internal/core/ecs"
	"github.com/directus/engine/internal/stream"
	"github.com/go-gl/mathgl/mgl32"
)

// Transform carries an entity's local position, rotation and scale and its
// place in the hierarchy. Parent and child links are handles into the scene's
// entity table, so a link to a removed entity resolves to nothing instead of
// dangling.
type Transform struct {
	base
	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3

	parent   ecs.Handle
	children []ecs.Handle
}

func newTransform() *Transform {
	return &Transform{
		rotation: mgl32.QuatIdent(),
		scale:    mgl32.Vec3{1, 1, 1},
	}
}

func (t *Transform) Kind() Kind { return KindTransform }

func (t *Transform) resolve(h ecs.Handle) *Transform {
	if h.IsZero() {
		return nil
	}
	s := t.scene()
	if s == nil {
		return nil
	}
	e := s.lookup(h)
	if e == nil {
		return nil
	}
	return e.transform
}

// ── Local space ──

func (t *Transform) LocalPosition() mgl32.Vec3     { return t.position }
func (t *Transform) SetLocalPosition(p mgl32.Vec3) { t.position = p }
func (t *Transform) LocalRotation() mgl32.Quat     { return t.rotation }
func (t *Transform) SetLocalRotation(q mgl32.Quat) { t.rotation = q.Normalize() }
func (t *Transform) LocalScale() mgl32.Vec3        { return t.scale }
func (t *Transform) SetLocalScale(s mgl32.Vec3)    { t.scale = s }

// Translate moves the transform by delta in its parent's space.
func (t *Transform) Translate(delta mgl32.Vec3) {
	t.position = t.position.Add(delta)
}

// Rotate applies q on top of the current local rotation.
func (t *Transform) Rotate(q mgl32.Quat) {
	t.rotation = q.Mul(t.rotation).Normalize()
}

// LocalMatrix returns translation * rotation * scale.
func (t *Transform) LocalMatrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.position.X(), t.position.Y(), t.position.Z()).
		Mul4(t.rotation.Mat4()).
		Mul4(mgl32.Scale3D(t.scale.X(), t.scale.Y(), t.scale.Z()))
}

// ── World space ──

// Matrix returns the local-to-world matrix.
func (t *Transform) Matrix() mgl32.Mat4 {
	if p := t.Parent(); p != nil {
		return p.Matrix().Mul4(t.LocalMatrix())
	}
	return t.LocalMatrix()
}

func (t *Transform) Position() mgl32.Vec3 {
	return t.Matrix().Col(3).Vec3()
}

// SetPosition places the transform at world position p.
func (t *Transform) SetPosition(p mgl32.Vec3) {
	if parent := t.Parent(); parent != nil {
		t.position = mgl32.TransformCoordinate(p, parent.Matrix().Inv())
		return
	}
	t.position = p
}

func (t *Transform) Rotation() mgl32.Quat {
	if p := t.Parent(); p != nil {
		return p.Rotation().Mul(t.rotation).Normalize()
	}
	return t.rotation
}

// SetRotation sets the world rotation.
func (t *Transform) SetRotation(q mgl32.Quat) {
	if p := t.Parent(); p != nil {
		t.rotation = p.Rotation().Inverse().Mul(q).Normalize()
		return
	}
	t.rotation = q.Normalize()
}

// Scale returns the accumulated per-axis scale, ignoring shear.
func (t *Transform) Scale() mgl32.Vec3 {
	if p := t.Parent(); p != nil {
		ps := p.Scale()
		return mgl32.Vec3{ps[0] * t.scale[0], ps[1] * t.scale[1], ps[2] * t.scale[2]}
	}
	return t.scale
}

// Forward is -Z in world space.
func (t *Transform) Forward() mgl32.Vec3 { return t.Rotation().Rotate(mgl32.Vec3{0, 0, -1}) }
func (t *Transform) Up() mgl32.Vec3      { return t.Rotation().Rotate(mgl32.Vec3{0, 1, 0}) }
func (t *Transform) Right() mgl32.Vec3   { return t.Rotation().Rotate(mgl32.Vec3{1, 0, 0}) }

// ── Hierarchy ──

// Parent returns the parent transform, or nil for a root.
func (t *Transform) Parent() *Transform {
	return t.resolve(t.parent)
}

func (t *Transform) IsRoot() bool {
	return t.Parent() == nil
}

// Root walks up the hierarchy until a transform without a parent.
func (t *Transform) Root() *Transform {
	root := t
	for p := root.Parent(); p != nil; p = root.Parent() {
		root = p
	}
	return root
}

// IsDescendantOf reports whether t sits anywhere below ancestor.
func (t *Transform) IsDescendantOf(ancestor *Transform) bool {
	for p := t.Parent(); p != nil; p = p.Parent() {
		if p == ancestor {
			return true
		}
	}
	return false
}

// SetParent moves t under parent, or makes it a root when parent is nil.
// Local values are kept. Parenting to t itself or to one of its descendants is
// refused and reported as false.
func (t *Transform) SetParent(parent *Transform) bool {
	if parent != nil {
		if parent == t || parent.IsDescendantOf(t) || parent.scene() != t.scene() {
			return false
		}
	}
	if old := t.Parent(); old != nil {
		old.removeChild(t.entity.handle)
	}
	if parent == nil {
		t.parent = 0
		return true
	}
	t.parent = parent.entity.handle
	if !slices.Contains(parent.children, t.entity.handle) {
		parent.children = append(parent.children, t.entity.handle)
	}
	return true
}

func (t *Transform) removeChild(h ecs.Handle) {
	t.children = slices.DeleteFunc(t.children, func(c ecs.Handle) bool { return c == h })
}

// Children returns the live direct children.
func (t *Transform) Children() []*Transform {
	out := make([]*Transform, 0, len(t.children))
	for _, h := range t.children {
		if c := t.resolve(h); c != nil {
			out = append(out, c)
		}
	}
	return out
}

func (t *Transform) ChildCount() int {
	return len(t.Children())
}

// Descendants returns every transform below t in pre-order.
func (t *Transform) Descendants() []*Transform {
	var out []*Transform
	t.collectDescendants(&out)
	return out
}

func (t *Transform) collectDescendants(out *[]*Transform) {
	for _, c := range t.Children() {
		*out = append(*out, c)
		c.collectDescendants(out)
	}
}

// ResolveChildrenRecursively rebuilds the child lists of t's subtree from the
// parent links of the entities currently in the scene.
func (t *Transform) ResolveChildrenRecursively() {
	s := t.scene()
	if s == nil {
		return
	}
	t.children = t.children[:0]
	for _, e := range s.entities {
		if e.transform.parent == t.entity.handle {
			t.children = append(t.children, e.handle)
		}
	}
	for _, c := range t.Children() {
		c.ResolveChildrenRecursively()
	}
}

// ── Persistence ──

func (t *Transform) Serialize(w *stream.Writer) {
	w.WriteVec3(t.position)
	w.WriteQuat(t.rotation)
	w.WriteVec3(t.scale)
}

func (t *Transform) Deserialize(r *stream.Reader) error {
	t.position = r.ReadVec3()
	t.rotation = r.ReadQuat()
	t.scale = r.ReadVec3()
	return r.Err()
}
