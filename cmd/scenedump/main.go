// scenedump converts a binary .directus scene file to YAML.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/directus/engine/internal/scene"
	"github.com/directus/engine/internal/stream"
	"gopkg.in/yaml.v3"
)

type Dump struct {
	Path      string      `yaml:"path"`
	Resources []string    `yaml:"resources"`
	Entities  int         `yaml:"entities"`
	Roots     []EntityDoc `yaml:"roots"`
}

type EntityDoc struct {
	ID         string      `yaml:"id"`
	Name       string      `yaml:"name"`
	Active     bool        `yaml:"active"`
	Hidden     bool        `yaml:"hidden,omitempty"`
	Position   [3]float32  `yaml:"position,flow"`
	Rotation   [4]float32  `yaml:"rotation,flow"` // w, x, y, z
	Scale      [3]float32  `yaml:"scale,flow"`
	Components []string    `yaml:"components"`
	Children   []EntityDoc `yaml:"children,omitempty"`
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: scenedump <scene.directus> [output.yaml]")
		os.Exit(1)
	}

	d, err := dumpFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	out := io.Writer(os.Stdout)
	if len(os.Args) > 2 {
		f, err := os.Create(os.Args[2])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	if err := writeYAML(out, d); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(os.Args) > 2 {
		fmt.Printf("Wrote %d entities to %s\n", d.Entities, os.Args[2])
	}
}

// dumpFile loads path into a scene without any collaborators, so referenced
// resources are listed but never opened.
func dumpFile(path string) (*Dump, error) {
	r, err := stream.Open(path)
	if err != nil {
		return nil, err
	}
	resources := r.ReadStrings()
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("read resources %s: %w", path, err)
	}

	s := scene.New(scene.Deps{})
	if err := s.LoadFromFile(path); err != nil {
		return nil, err
	}

	d := &Dump{
		Path:      path,
		Resources: resources,
		Entities:  s.Count(),
	}
	for _, root := range s.RootGameObjects() {
		d.Roots = append(d.Roots, entityDoc(root))
	}
	return d, nil
}

func entityDoc(e *scene.Entity) EntityDoc {
	t := e.Transform()
	pos, rot, scale := t.LocalPosition(), t.LocalRotation(), t.LocalScale()
	doc := EntityDoc{
		ID:       e.ID(),
		Name:     e.Name(),
		Active:   e.IsActive(),
		Hidden:   !e.HierarchyVisible(),
		Position: [3]float32{pos.X(), pos.Y(), pos.Z()},
		Rotation: [4]float32{rot.W, rot.V.X(), rot.V.Y(), rot.V.Z()},
		Scale:    [3]float32{scale.X(), scale.Y(), scale.Z()},
	}
	for _, c := range e.Components() {
		doc.Components = append(doc.Components, c.Kind().String())
	}
	for _, child := range t.Children() {
		doc.Children = append(doc.Children, entityDoc(child.Entity()))
	}
	return doc
}

func writeYAML(w io.Writer, d *Dump) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if _, err := fmt.Fprintf(w, "# Scene dump of %s (%d entities)\n", d.Path, d.Entities); err != nil {
		return err
	}
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}
