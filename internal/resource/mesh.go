package resource

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Mesh keeps the bounds of a mesh file. Vertex data itself is owned by the renderer.
type Mesh struct {
	Path     string
	Min      mgl32.Vec3
	Max      mgl32.Vec3
	Vertices int
}

// Extent returns the half-size of the bounding box.
func (m *Mesh) Extent() mgl32.Vec3 {
	return m.Max.Sub(m.Min).Mul(0.5)
}

// maxOBJLine bounds a single OBJ line. Exporters emit long face and
// comment lines.
const maxOBJLine = 16 * 1024 * 1024

// loadOBJ reads the geometric vertices ("v x y z") of a Wavefront OBJ file.
func loadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mesh: %w", err)
	}
	defer f.Close()

	mesh := &Mesh{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxOBJLine)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 || fields[0] != "v" {
			continue
		}
		var v mgl32.Vec3
		for i := 0; i < 3; i++ {
			n, err := strconv.ParseFloat(fields[i+1], 32)
			if err != nil {
				return nil, fmt.Errorf("parse mesh line %d: %w", line, err)
			}
			v[i] = float32(n)
		}
		if mesh.Vertices == 0 {
			mesh.Min, mesh.Max = v, v
		} else {
			for i := 0; i < 3; i++ {
				mesh.Min[i] = min(mesh.Min[i], v[i])
				mesh.Max[i] = max(mesh.Max[i], v[i])
			}
		}
		mesh.Vertices++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read mesh: %w", err)
	}
	if mesh.Vertices == 0 {
		return nil, fmt.Errorf("mesh %s has no vertices", path)
	}
	return mesh, nil
}
