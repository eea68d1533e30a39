package scene

import (
	"fmt"

	"github.com/directus/engine/internal/stream"
	"github.com/go-gl/mathgl/mgl32"
)

type LightType int32

const (
	Directional LightType = iota
	Point
	Spot
)

func (t LightType) String() string {
	switch t {
	case Directional:
		return "Directional"
	case Point:
		return "Point"
	case Spot:
		return "Spot"
	}
	return fmt.Sprintf("LightType(%d)", int32(t))
}

type Light struct {
	base
	lightType   LightType
	color       mgl32.Vec4
	intensity   float32
	rangeUnits  float32
	castShadows bool
}

func (l *Light) Kind() Kind { return KindLight }

func (l *Light) Initialize() {
	l.lightType = Point
	l.color = mgl32.Vec4{1, 1, 1, 1}
	l.intensity = 2
	l.rangeUnits = 10
	l.castShadows = true
}

func (l *Light) LightType() LightType { return l.lightType }

// SetLightType changes the type; the scene re-sorts its light lists.
func (l *Light) SetLightType(t LightType) {
	if l.lightType == t {
		return
	}
	l.lightType = t
	if s := l.scene(); s != nil {
		s.invalidate()
	}
}

func (l *Light) Color() mgl32.Vec4        { return l.color }
func (l *Light) SetColor(c mgl32.Vec4)    { l.color = c }
func (l *Light) Intensity() float32       { return l.intensity }
func (l *Light) SetIntensity(v float32)   { l.intensity = v }
func (l *Light) Range() float32           { return l.rangeUnits }
func (l *Light) SetRange(v float32)       { l.rangeUnits = v }
func (l *Light) CastShadows() bool        { return l.castShadows }
func (l *Light) SetCastShadows(cast bool) { l.castShadows = cast }
func (l *Light) Direction() mgl32.Vec3    { return l.entity.transform.Forward() }

func (l *Light) Serialize(w *stream.Writer) {
	w.WriteInt(int32(l.lightType))
	w.WriteVec4(l.color)
	w.WriteFloat(l.intensity)
	w.WriteFloat(l.rangeUnits)
	w.WriteBool(l.castShadows)
}

func (l *Light) Deserialize(r *stream.Reader) error {
	l.SetLightType(LightType(r.ReadInt()))
	l.color = r.ReadVec4()
	l.intensity = r.ReadFloat()
	l.rangeUnits = r.ReadFloat()
	l.castShadows = r.ReadBool()
	return r.Err()
}
