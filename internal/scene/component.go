package scene

import (
	"fmt"
	"time"

	"github.com/directus/engine/internal/stream"
)

// Kind identifies a component type. The set is closed; the numeric values
// are part of the scene file format.
type Kind byte

const (
	KindTransform Kind = iota + 1
	KindCamera
	KindLight
	KindMeshFilter
	KindMeshRenderer
	KindLineRenderer
	KindSkybox
	KindScript
)

func (k Kind) String() string {
	switch k {
	case KindTransform:
		return "Transform"
	case KindCamera:
		return "Camera"
	case KindLight:
		return "Light"
	case KindMeshFilter:
		return "MeshFilter"
	case KindMeshRenderer:
		return "MeshRenderer"
	case KindLineRenderer:
		return "LineRenderer"
	case KindSkybox:
		return "Skybox"
	case KindScript:
		return "Script"
	default:
		return fmt.Sprintf("Kind(%d)", byte(k))
	}
}

// classifying reports whether attaching or detaching this kind can change
// the output of Scene.Resolve.
func (k Kind) classifying() bool {
	switch k {
	case KindCamera, KindLight, KindMeshFilter, KindMeshRenderer, KindSkybox:
		return true
	}
	return false
}

// Component is a capability attached to an Entity. The scene and the entity
// drive every component through this lifecycle without knowing its concrete type.
type Component interface {
	Kind() Kind
	Initialize()
	Start()
	OnDisable()
	Remove()
	Update(dt time.Duration)
	Serialize(w *stream.Writer)
	Deserialize(r *stream.Reader) error

	attach(e *Entity)
}

// base supplies the owner reference and no-op lifecycle hooks.
type base struct {
	entity *Entity
}

func (b *base) attach(e *Entity) { b.entity = e }

// Entity returns the owning entity.
func (b *base) Entity() *Entity { return b.entity }

func (b *base) Initialize()            {}
func (b *base) Start()                 {}
func (b *base) OnDisable()             {}
func (b *base) Remove()                {}
func (b *base) Update(_ time.Duration) {}

func (b *base) scene() *Scene {
	if b.entity == nil {
		return nil
	}
	return b.entity.scene
}

func newComponent(k Kind) Component {
	switch k {
	case KindCamera:
		return &Camera{}
	case KindLight:
		return &Light{}
	case KindMeshFilter:
		return &MeshFilter{}
	case KindMeshRenderer:
		return &MeshRenderer{}
	case KindLineRenderer:
		return &LineRenderer{}
	case KindSkybox:
		return &Skybox{}
	case KindScript:
		return &Script{}
	}
	return nil
}

type componentPtr[T any] interface {
	*T
	Component
}

// Add attaches a new component of type T to e and returns it. If e already
// has one, the existing instance is returned.
func Add[T any, P componentPtr[T]](e *Entity) P {
	c := P(new(T))
	if existing, ok := e.component(c.Kind()).(P); ok {
		return existing
	}
	e.addComponent(c)
	return c
}

// Get returns e's component of type T, or nil.
func Get[T any, P componentPtr[T]](e *Entity) P {
	if e == nil {
		return nil
	}
	for _, c := range e.components {
		if p, ok := c.(P); ok {
			return p
		}
	}
	return nil
}

// Has reports whether e carries a component of type T.
func Has[T any, P componentPtr[T]](e *Entity) bool {
	return Get[T, P](e) != nil
}

// RemoveComponent detaches e's component of type T. The Transform cannot be
// removed. It reports whether a component was detached.
func RemoveComponent[T any, P componentPtr[T]](e *Entity) bool {
	c := Get[T, P](e)
	if c == nil || c.Kind() == KindTransform {
		return false
	}
	e.removeComponent(c.Kind())
	return true
}
