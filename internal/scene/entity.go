package scene

import (
	"fmt"
	"slices"
	"time"

	"github.com/directus/engine/internal/core/ecs"
	"github.com/directus/engine/internal/stream"
	"go.uber.org/zap"
)

// Entity is a node of the scene: an identifier, a name and a set of
// components, one of which is always a Transform. Entities are created and
// destroyed by their Scene.
type Entity struct {
	id               string
	name             string
	active           bool
	hierarchyVisible bool

	handle     ecs.Handle
	transform  *Transform
	components []Component // attach order, at most one per Kind
	scene      *Scene
}

func (e *Entity) ID() string            { return e.id }
func (e *Entity) Name() string          { return e.name }
func (e *Entity) SetName(name string)   { e.name = name }
func (e *Entity) IsActive() bool        { return e.active }
func (e *Entity) SetActive(active bool) { e.active = active }
func (e *Entity) Handle() ecs.Handle    { return e.handle }
func (e *Entity) Transform() *Transform { return e.transform }
func (e *Entity) Scene() *Scene         { return e.scene }

// HierarchyVisible reports whether editors should list the entity.
func (e *Entity) HierarchyVisible() bool { return e.hierarchyVisible }

func (e *Entity) SetHierarchyVisible(visible bool) { e.hierarchyVisible = visible }

// Components returns the attached components in attach order.
func (e *Entity) Components() []Component {
	return slices.Clone(e.components)
}

func (e *Entity) component(k Kind) Component {
	for _, c := range e.components {
		if c.Kind() == k {
			return c
		}
	}
	return nil
}

func (e *Entity) addComponent(c Component) {
	c.attach(e)
	e.components = append(e.components, c)
	c.Initialize()
	if c.Kind().classifying() && e.scene != nil {
		e.scene.invalidate()
	}
}

func (e *Entity) removeComponent(k Kind) {
	i := slices.IndexFunc(e.components, func(c Component) bool { return c.Kind() == k })
	if i < 0 {
		return
	}
	c := e.components[i]
	e.components = slices.Delete(e.components, i, i+1)
	c.Remove()
	if k.classifying() && e.scene != nil {
		e.scene.invalidate()
	}
}

func (e *Entity) Start() {
	for _, c := range e.components {
		c.Start()
	}
}

func (e *Entity) OnDisable() {
	for _, c := range e.components {
		c.OnDisable()
	}
}

// Update ticks every component of an active entity.
func (e *Entity) Update(dt time.Duration) {
	if !e.active {
		return
	}
	for _, c := range e.components {
		c.Update(dt)
	}
}

// destroy releases every owned component.
func (e *Entity) destroy() {
	for _, c := range e.components {
		c.Remove()
	}
	e.components = nil
}

// serialize writes the entity, its components and, recursively, its children.
func (e *Entity) serialize(w *stream.Writer) {
	w.WriteString(e.id)
	w.WriteString(e.name)
	w.WriteBool(e.active)
	w.WriteBool(e.hierarchyVisible)

	w.WriteInt(int32(len(e.components)))
	for _, c := range e.components {
		payload := stream.NewWriter()
		c.Serialize(payload)
		w.WriteRecord(byte(c.Kind()), payload.Bytes())
	}

	children := e.transform.Children()
	w.WriteInt(int32(len(children)))
	for _, child := range children {
		w.WriteString(child.entity.id)
	}
	for _, child := range children {
		child.entity.serialize(w)
	}
}

// deserialize reads what serialize wrote. Children are appended to the
// scene as they are read and attached to e.
func (e *Entity) deserialize(r *stream.Reader, parent *Transform) error {
	e.id = r.ReadString()
	e.name = r.ReadString()
	e.active = r.ReadBool()
	e.hierarchyVisible = r.ReadBool()

	n := r.ReadCount(5) // kind + length
	for i := 0; i < n && r.Err() == nil; i++ {
		raw, payload := r.ReadRecord()
		kind := Kind(raw)
		var c Component
		if kind == KindTransform {
			c = e.transform
		} else if c = e.component(kind); c == nil {
			if c = newComponent(kind); c == nil {
				e.scene.log.Warn("skipping unknown component",
					zap.String("entity", e.id),
					zap.Stringer("kind", kind),
				)
				continue
			}
			e.addComponent(c)
		}
		if err := c.Deserialize(payload); err != nil {
			return fmt.Errorf("entity %s: %s: %w", e.id, kind, err)
		}
	}

	if parent != nil {
		e.transform.SetParent(parent)
	}

	childCount := r.ReadCount(4)
	children := make([]*Entity, 0, childCount)
	for i := 0; i < childCount && r.Err() == nil; i++ {
		child := e.scene.newEntity()
		child.id = r.ReadString()
		children = append(children, child)
	}
	for _, child := range children {
		if err := child.deserialize(r, e.transform); err != nil {
			return err
		}
	}
	if err := r.Err(); err != nil {
		return fmt.Errorf("entity %s: %w", e.id, err)
	}
	return nil
}
