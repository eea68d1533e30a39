package scene

import (
	"time"

	"github.com/directus/engine/internal/core/event"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Resources is the resource cache the scene loads referenced assets through.
type Resources interface {
	LoadMesh(path string) error
	LoadMaterial(path string) error
	LoadTexture(path string) error
	// FilePaths returns every loaded resource path.
	FilePaths() []string
	// SaveMetadata flushes in-memory edits made to resources.
	SaveMetadata() error
	MeshExtent(path string) (mgl32.Vec3, bool)
	Unload()
}

// TaskDispatcher runs deferred work off the calling goroutine.
type TaskDispatcher interface {
	AddTask(fn func()) error
}

// Renderer is the part of the renderer service the scene needs.
type Renderer interface {
	Resolution() (width, height int)
	Clear()
}

// Resetter is implemented by subsystems that drop their state when the scene is cleared.
type Resetter interface {
	Reset()
}

// ScriptInstance is one script bound to one entity.
type ScriptInstance interface {
	Start() error
	Update(dt time.Duration) error
	Close()
}

// ScriptRuntime creates script instances and resets the scripting VM.
type ScriptRuntime interface {
	Instantiate(path string, e *Entity) (ScriptInstance, error)
	Reset()
}

// Deps holds the collaborators a Scene works with. Every field may be left
// nil; the corresponding behavior is then skipped.
type Deps struct {
	Resources Resources
	Tasks     TaskDispatcher
	Renderer  Renderer
	Physics   Resetter
	Scripting ScriptRuntime
	Events    *event.Bus
	Log       *zap.Logger

	// ScriptDirectory is where Initialize looks for the default camera script.
	ScriptDirectory string
}
