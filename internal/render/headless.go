// Package render provides the renderer service the scene talks to. Headless
// keeps the output geometry and the last submitted frame without touching a
// graphics API; it backs tools, tests and the dedicated runtime.
package render

import (
	"sync"

	"github.com/directus/engine/internal/scene"
	"go.uber.org/zap"
)

// Viewport is the region of the output target the scene is drawn into.
type Viewport struct {
	X, Y          float32
	Width, Height float32
}

// Settings reports the renderer's output geometry.
type Settings struct {
	Width, Height int
	MaxResolution int
	Viewport      Viewport
}

// Headless is safe for concurrent use: Clear is called from async scene loads.
type Headless struct {
	mu       sync.RWMutex
	settings Settings
	frame    scene.Frame
	frames   uint64
	log      *zap.Logger
}

func NewHeadless(width, height, maxResolution int, log *zap.Logger) *Headless {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Headless{log: log}
	h.settings.MaxResolution = maxResolution
	h.SetResolution(width, height)
	return h
}

func (h *Headless) Resolution() (int, int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.settings.Width, h.settings.Height
}

// SetResolution resizes the output, clamping each side to [1, MaxResolution].
// The viewport follows the full output.
func (h *Headless) SetResolution(width, height int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	width = clamp(width, h.settings.MaxResolution)
	height = clamp(height, h.settings.MaxResolution)
	h.settings.Width = width
	h.settings.Height = height
	h.settings.Viewport = Viewport{Width: float32(width), Height: float32(height)}
	h.log.Debug("resolution set", zap.Int("width", width), zap.Int("height", height))
}

func clamp(v, max int) int {
	if v < 1 {
		return 1
	}
	if max > 0 && v > max {
		return max
	}
	return v
}

func (h *Headless) Settings() Settings {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.settings
}

// Clear drops the retained frame.
func (h *Headless) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frame = scene.Frame{}
}

// Submit takes the frame to draw.
func (h *Headless) Submit(f scene.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frame = f
	h.frames++
}

// LastFrame returns the most recent frame and the number submitted so far.
func (h *Headless) LastFrame() (scene.Frame, uint64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.frame, h.frames
}
