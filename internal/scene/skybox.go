package scene

import (
	"fmt"

	"github.com/directus/engine/internal/stream"
)

// Skybox draws a cubemap texture behind everything else.
type Skybox struct {
	base
	texturePath string
}

func (s *Skybox) Kind() Kind { return KindSkybox }

func (s *Skybox) TexturePath() string { return s.texturePath }

func (s *Skybox) SetTexture(path string) error {
	s.texturePath = path
	sc := s.scene()
	if sc == nil || sc.deps.Resources == nil || path == "" {
		return nil
	}
	if err := sc.deps.Resources.LoadTexture(path); err != nil {
		return fmt.Errorf("skybox: %w", err)
	}
	return nil
}

func (s *Skybox) Serialize(w *stream.Writer) {
	w.WriteString(s.texturePath)
}

func (s *Skybox) Deserialize(r *stream.Reader) error {
	s.texturePath = r.ReadString()
	return r.Err()
}
