package resource

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Material is the editable description stored in a .mat file.
type Material struct {
	Name      string            `yaml:"name"`
	Shader    string            `yaml:"shader"`
	Albedo    [4]float32        `yaml:"albedo"`
	Roughness float32           `yaml:"roughness"`
	Metallic  float32           `yaml:"metallic"`
	Tiling    [2]float32        `yaml:"tiling"`
	Textures  map[string]string `yaml:"textures,omitempty"` // slot → image path

	Path  string `yaml:"-"`
	dirty bool
}

func defaultMaterial() *Material {
	return &Material{
		Shader:    "standard",
		Albedo:    [4]float32{1, 1, 1, 1},
		Roughness: 1,
		Tiling:    [2]float32{1, 1},
	}
}

// loadMaterial parses a YAML material file over the defaults.
func loadMaterial(path string) (*Material, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read material: %w", err)
	}
	mat := defaultMaterial()
	if err := yaml.Unmarshal(raw, mat); err != nil {
		return nil, fmt.Errorf("parse material: %w", err)
	}
	return mat, nil
}

func saveMaterial(path string, mat *Material) error {
	raw, err := yaml.Marshal(mat)
	if err != nil {
		return fmt.Errorf("encode material: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write material: %w", err)
	}
	return nil
}
