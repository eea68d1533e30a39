package scene

import (
	"fmt"

	"github.com/directus/engine/internal/stream"
	"github.com/go-gl/mathgl/mgl32"
)

// MeshFilter references the mesh an entity draws and keeps its bounding
// extent (half-size per axis) for picking and culling.
type MeshFilter struct {
	base
	meshPath string
	extent   mgl32.Vec3
}

func (m *MeshFilter) Kind() Kind { return KindMeshFilter }

func (m *MeshFilter) MeshPath() string       { return m.meshPath }
func (m *MeshFilter) Extent() mgl32.Vec3     { return m.extent }
func (m *MeshFilter) SetExtent(e mgl32.Vec3) { m.extent = e }

// SetMesh loads path through the scene's resource cache and adopts the
// mesh's extent.
func (m *MeshFilter) SetMesh(path string) error {
	m.meshPath = path
	res := m.resources()
	if res == nil {
		return nil
	}
	if err := res.LoadMesh(path); err != nil {
		return fmt.Errorf("mesh filter: %w", err)
	}
	if ext, ok := res.MeshExtent(path); ok {
		m.extent = ext
	}
	return nil
}

func (m *MeshFilter) resources() Resources {
	if s := m.scene(); s != nil {
		return s.deps.Resources
	}
	return nil
}

// BoundingRadius is the largest absolute extent component scaled by the
// largest absolute world scale component.
func (m *MeshFilter) BoundingRadius() float32 {
	scale := mgl32.Vec3{1, 1, 1}
	if m.entity != nil {
		scale = m.entity.transform.Scale()
	}
	return maxAbs(m.extent) * maxAbs(scale)
}

func maxAbs(v mgl32.Vec3) float32 {
	out := mgl32.Abs(v[0])
	for _, c := range v[1:] {
		if a := mgl32.Abs(c); a > out {
			out = a
		}
	}
	return out
}

func (m *MeshFilter) Serialize(w *stream.Writer) {
	w.WriteString(m.meshPath)
	w.WriteVec3(m.extent)
}

// Deserialize restores the saved extent; the mesh itself is expected to be
// loaded already from the scene's resource list.
func (m *MeshFilter) Deserialize(r *stream.Reader) error {
	m.meshPath = r.ReadString()
	m.extent = r.ReadVec3()
	return r.Err()
}

// MeshRenderer draws the entity's MeshFilter mesh with a material.
type MeshRenderer struct {
	base
	materialPath   string
	castShadows    bool
	receiveShadows bool
}

func (m *MeshRenderer) Kind() Kind { return KindMeshRenderer }

func (m *MeshRenderer) Initialize() {
	m.castShadows = true
	m.receiveShadows = true
}

func (m *MeshRenderer) MaterialPath() string { return m.materialPath }

func (m *MeshRenderer) SetMaterial(path string) error {
	m.materialPath = path
	s := m.scene()
	if s == nil || s.deps.Resources == nil {
		return nil
	}
	if err := s.deps.Resources.LoadMaterial(path); err != nil {
		return fmt.Errorf("mesh renderer: %w", err)
	}
	return nil
}

func (m *MeshRenderer) CastShadows() bool        { return m.castShadows }
func (m *MeshRenderer) SetCastShadows(v bool)    { m.castShadows = v }
func (m *MeshRenderer) ReceiveShadows() bool     { return m.receiveShadows }
func (m *MeshRenderer) SetReceiveShadows(v bool) { m.receiveShadows = v }

func (m *MeshRenderer) Serialize(w *stream.Writer) {
	w.WriteString(m.materialPath)
	w.WriteBool(m.castShadows)
	w.WriteBool(m.receiveShadows)
}

func (m *MeshRenderer) Deserialize(r *stream.Reader) error {
	m.materialPath = r.ReadString()
	m.castShadows = r.ReadBool()
	m.receiveShadows = r.ReadBool()
	return r.Err()
}
