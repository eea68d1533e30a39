// Package resource caches the external assets a scene refers to: meshes,
// materials and images. The scene only ever sees them through their paths.
package resource

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/directus/engine/internal/fsutil"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// ID identifies a resource by the hash of its normalized path.
type ID uint64

func IDOf(path string) ID {
	return ID(xxhash.Sum64String(fsutil.NormalizePath(path)))
}

// Manager is safe for concurrent use; async scene loads populate it from a worker.
type Manager struct {
	mu        sync.RWMutex
	dir       string
	meshes    map[ID]*Mesh
	materials map[ID]*Material
	textures  map[ID]*Texture
	paths     []string // load order, normalized
	log       *zap.Logger
}

// NewManager creates a cache resolving relative paths against dir.
// An empty dir resolves against the working directory.
func NewManager(dir string, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		dir:       dir,
		meshes:    make(map[ID]*Mesh),
		materials: make(map[ID]*Material),
		textures:  make(map[ID]*Texture),
		log:       log,
	}
}

func (m *Manager) resolve(path string) string {
	if m.dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.dir, path)
}

// record appends path to the load order. Caller holds m.mu.
func (m *Manager) record(path string) {
	m.paths = append(m.paths, fsutil.NormalizePath(path))
}

// LoadMesh loads a mesh unless it is already cached.
func (m *Manager) LoadMesh(path string) error {
	id := IDOf(path)
	m.mu.RLock()
	_, ok := m.meshes[id]
	m.mu.RUnlock()
	if ok {
		return nil
	}

	mesh, err := loadOBJ(m.resolve(path))
	if err != nil {
		m.log.Error("load mesh failed", zap.String("path", path), zap.Error(err))
		return err
	}
	mesh.Path = path

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.meshes[id]; !ok {
		m.meshes[id] = mesh
		m.record(path)
	}
	m.log.Debug("mesh loaded", zap.String("path", path), zap.Int("vertices", mesh.Vertices))
	return nil
}

// LoadMaterial loads a material unless it is already cached.
func (m *Manager) LoadMaterial(path string) error {
	id := IDOf(path)
	m.mu.RLock()
	_, ok := m.materials[id]
	m.mu.RUnlock()
	if ok {
		return nil
	}

	mat, err := loadMaterial(m.resolve(path))
	if err != nil {
		m.log.Error("load material failed", zap.String("path", path), zap.Error(err))
		return err
	}
	mat.Path = path

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.materials[id]; !ok {
		m.materials[id] = mat
		m.record(path)
	}
	m.log.Debug("material loaded", zap.String("path", path), zap.String("name", mat.Name))
	return nil
}

// LoadTexture loads an image unless it is already cached.
func (m *Manager) LoadTexture(path string) error {
	id := IDOf(path)
	m.mu.RLock()
	_, ok := m.textures[id]
	m.mu.RUnlock()
	if ok {
		return nil
	}

	tex, err := loadTexture(m.resolve(path))
	if err != nil {
		m.log.Error("load texture failed", zap.String("path", path), zap.Error(err))
		return err
	}
	tex.Path = path

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.textures[id]; !ok {
		m.textures[id] = tex
		m.record(path)
	}
	m.log.Debug("texture loaded", zap.String("path", path), zap.String("format", tex.Format))
	return nil
}

func (m *Manager) Mesh(path string) (*Mesh, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mesh, ok := m.meshes[IDOf(path)]
	return mesh, ok
}

func (m *Manager) Material(path string) (*Material, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mat, ok := m.materials[IDOf(path)]
	return mat, ok
}

func (m *Manager) Texture(path string) (*Texture, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tex, ok := m.textures[IDOf(path)]
	return tex, ok
}

// MeshExtent returns the half-size of a cached mesh's bounding box.
func (m *Manager) MeshExtent(path string) (mgl32.Vec3, bool) {
	mesh, ok := m.Mesh(path)
	if !ok {
		return mgl32.Vec3{}, false
	}
	return mesh.Extent(), true
}

// UpdateMaterial applies fn to a cached material and marks it for the next
// SaveMetadata. It reports whether the material was cached.
func (m *Manager) UpdateMaterial(path string, fn func(*Material)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	mat, ok := m.materials[IDOf(path)]
	if !ok {
		return false
	}
	fn(mat)
	mat.dirty = true
	return true
}

// SaveMetadata writes every edited material back to its file.
func (m *Manager) SaveMetadata() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var errs []error
	saved := 0
	for _, mat := range m.materials {
		if !mat.dirty {
			continue
		}
		if err := saveMaterial(m.resolve(mat.Path), mat); err != nil {
			errs = append(errs, fmt.Errorf("material %s: %w", mat.Path, err))
			continue
		}
		mat.dirty = false
		saved++
	}
	if saved > 0 {
		m.log.Info("resource metadata saved", zap.Int("materials", saved))
	}
	return errors.Join(errs...)
}

// FilePaths returns every cached resource path in load order.
func (m *Manager) FilePaths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.paths))
	copy(out, m.paths)
	return out
}

// Count returns the number of cached resources.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.paths)
}

// Unload drops every cached resource.
func (m *Manager) Unload() {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.paths)
	clear(m.meshes)
	clear(m.materials)
	clear(m.textures)
	m.paths = m.paths[:0]
	if n > 0 {
		m.log.Debug("resource cache released", zap.Int("count", n))
	}
}
