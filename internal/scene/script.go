package scene

import (
	"time"

	"github.com/directus/engine/internal/stream"
	"go.uber.org/zap"
)

// Script binds a script file to the entity. The scene's script runtime
// instantiates it; without a runtime the component only records the path.
type Script struct {
	base
	path     string
	instance ScriptInstance
}

func (s *Script) Kind() Kind { return KindScript }

func (s *Script) Path() string { return s.path }

// SetScript replaces the bound script.
func (s *Script) SetScript(path string) error {
	s.release()
	s.path = path
	sc := s.scene()
	if sc == nil || sc.deps.Scripting == nil || path == "" {
		return nil
	}
	inst, err := sc.deps.Scripting.Instantiate(path, s.entity)
	if err != nil {
		return err
	}
	s.instance = inst
	return nil
}

func (s *Script) Start() {
	if s.instance == nil {
		return
	}
	if err := s.instance.Start(); err != nil {
		s.scene().log.Error("script start failed", zap.String("script", s.path), zap.Error(err))
	}
}

func (s *Script) Update(dt time.Duration) {
	if s.instance == nil {
		return
	}
	if err := s.instance.Update(dt); err != nil {
		s.scene().log.Error("script update failed", zap.String("script", s.path), zap.Error(err))
		// Stop calling a broken script every frame.
		s.release()
	}
}

func (s *Script) Remove() { s.release() }

func (s *Script) release() {
	if s.instance != nil {
		s.instance.Close()
		s.instance = nil
	}
}

func (s *Script) Serialize(w *stream.Writer) {
	w.WriteString(s.path)
}

func (s *Script) Deserialize(r *stream.Reader) error {
	path := r.ReadString()
	if err := r.Err(); err != nil {
		return err
	}
	if err := s.SetScript(path); err != nil {
		s.scene().log.Warn("script not instantiated", zap.String("script", path), zap.Error(err))
	}
	return nil
}
