package scene

import (
	"slices"

	"github.com/directus/engine/internal/stream"
	"github.com/go-gl/mathgl/mgl32"
)

type LineVertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec4
}

// LineRenderer holds a line list: every two vertices form one segment.
type LineRenderer struct {
	base
	vertices []LineVertex
}

func (l *LineRenderer) Kind() Kind { return KindLineRenderer }

func (l *LineRenderer) Vertices() []LineVertex { return slices.Clone(l.vertices) }

func (l *LineRenderer) AddLine(from, to mgl32.Vec3, color mgl32.Vec4) {
	l.vertices = append(l.vertices, LineVertex{from, color}, LineVertex{to, color})
}

// AddBoundingBox adds the twelve edges of the box [lo, hi].
func (l *LineRenderer) AddBoundingBox(lo, hi mgl32.Vec3, color mgl32.Vec4) {
	corner := func(i int) mgl32.Vec3 {
		c := lo
		if i&1 != 0 {
			c[0] = hi[0]
		}
		if i&2 != 0 {
			c[1] = hi[1]
		}
		if i&4 != 0 {
			c[2] = hi[2]
		}
		return c
	}
	for i := 0; i < 8; i++ {
		for bit := 1; bit < 8; bit <<= 1 {
			if i&bit == 0 {
				l.AddLine(corner(i), corner(i|bit), color)
			}
		}
	}
}

func (l *LineRenderer) ClearVertices() { l.vertices = l.vertices[:0] }

func (l *LineRenderer) Serialize(w *stream.Writer) {
	w.WriteInt(int32(len(l.vertices)))
	for _, v := range l.vertices {
		w.WriteVec3(v.Position)
		w.WriteVec4(v.Color)
	}
}

func (l *LineRenderer) Deserialize(r *stream.Reader) error {
	n := r.ReadCount(28)
	l.vertices = make([]LineVertex, 0, n)
	for i := 0; i < n; i++ {
		l.vertices = append(l.vertices, LineVertex{r.ReadVec3(), r.ReadVec4()})
	}
	return r.Err()
}
