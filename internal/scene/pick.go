package scene

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Pick returns the renderable under the viewport point p (pixels, origin
// top-left), or nil. Each renderable is approximated by a sphere around its
// world position. A candidate must be hit by both the picking ray and the
// camera's forward ray; among those the one closest to the camera wins, and
// ties go to the first in resolve order.
func (s *Scene) Pick(p mgl32.Vec2) *Entity {
	origin, dir, err := s.ScreenRay(p)
	if err != nil {
		return nil
	}
	camPos := s.camera.transform.Position()
	camForward := s.camera.transform.Forward()

	var closest *Entity
	best := float32(math.MaxFloat32)
	for _, e := range s.renderables {
		if Has[Skybox](e) {
			continue
		}
		center := e.transform.Position()
		radius := Get[MeshFilter](e).BoundingRadius()

		if !raySphereIntersect(origin, dir, center, radius) {
			continue
		}
		if !raySphereIntersect(camPos, camForward, center, radius) {
			continue
		}
		if d := center.Sub(camPos).Len(); d < best {
			best = d
			closest = e
		}
	}
	return closest
}

// ScreenRay unprojects the viewport point p through the active camera.
func (s *Scene) ScreenRay(p mgl32.Vec2) (origin, dir mgl32.Vec3, err error) {
	cam := Get[Camera](s.camera)
	if cam == nil {
		return origin, dir, ErrNoCamera
	}
	width, height := s.resolution()
	if width <= 0 || height <= 0 {
		return origin, dir, fmt.Errorf("scene: invalid resolution %dx%d", width, height)
	}
	origin, dir = cam.ScreenRay(p.X(), p.Y(), width, height)
	return origin, dir, nil
}

func (s *Scene) resolution() (int, int) {
	if s.deps.Renderer == nil {
		return 0, 0
	}
	return s.deps.Renderer.Resolution()
}

// raySphereIntersect reports whether the ray origin + t*dir, t >= 0, meets
// the sphere. An origin inside the sphere counts as a hit.
func raySphereIntersect(origin, dir, center mgl32.Vec3, radius float32) bool {
	oc := origin.Sub(center)
	a := dir.Dot(dir)
	if a == 0 {
		return false
	}
	b := 2 * oc.Dot(dir)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - 4*a*c
	if disc < 0 {
		return false
	}
	// Both roots behind the origin means the sphere is behind the ray.
	sq := float32(math.Sqrt(float64(disc)))
	return (-b+sq)/(2*a) >= 0
}
