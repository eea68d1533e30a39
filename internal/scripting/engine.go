package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/directus/engine/internal/fsutil"
	"github.com/directus/engine/internal/scene"
	"github.com/go-gl/mathgl/mgl32"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM shared by every Script component.
// Calls are serialized by mu: scripts are instantiated from async scene loads
// while the tick goroutine runs updates.
type Engine struct {
	mu  sync.Mutex
	vm  *lua.LState
	dir string
	log *zap.Logger
}

// NewEngine creates a Lua engine. Relative script paths resolve against
// scriptsDir; any .lua files in scriptsDir/lib are loaded up front as shared
// helpers.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{dir: scriptsDir, log: log}
	if err := e.reset(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) reset() error {
	if e.vm != nil {
		e.vm.Close()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	vm.SetGlobal("log", vm.NewFunction(e.luaLog))
	e.vm = vm

	if e.dir == "" {
		return nil
	}
	if err := e.loadDir(filepath.Join(e.dir, "lib")); err != nil {
		vm.Close()
		e.vm = nil
		return fmt.Errorf("load lib scripts: %w", err)
	}
	return nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !fsutil.IsSupportedScriptFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info("lua", zap.String("msg", L.CheckString(1)))
	return 0
}

// Reset closes the VM and starts a fresh one. Instances created before the
// reset become inert.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.reset(); err != nil {
		e.log.Error("lua reset failed", zap.Error(err))
	}
}

// Close releases the VM.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.vm != nil {
		e.vm.Close()
		e.vm = nil
	}
}

func (e *Engine) resolve(path string) string {
	if e.dir == "" || filepath.IsAbs(path) || fsutil.FileExists(path) {
		return path
	}
	return filepath.Join(e.dir, path)
}

// Instantiate runs the script file, which must return a table with optional
// start(self) and update(self, dt) functions, and binds it to ent.
func (e *Engine) Instantiate(path string, ent *scene.Entity) (scene.ScriptInstance, error) {
	if !fsutil.IsSupportedScriptFile(path) {
		return nil, fmt.Errorf("script %s: unsupported file type", path)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.vm == nil {
		return nil, errors.New("scripting: engine closed")
	}

	full := e.resolve(path)
	fn, err := e.vm.LoadFile(full)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", full, err)
	}
	e.vm.Push(fn)
	if err := e.vm.PCall(0, 1, nil); err != nil {
		return nil, fmt.Errorf("run %s: %w", full, err)
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)

	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("script %s returned %s, want table", full, ret.Type())
	}
	return &instance{
		eng:    e,
		vm:     e.vm,
		path:   full,
		script: tbl,
		self:   e.newSelf(ent),
	}, nil
}

// newSelf builds the table handed to script callbacks. Methods use colon
// syntax: self:translate(0, 1, 0).
func (e *Engine) newSelf(ent *scene.Entity) *lua.LTable {
	vm := e.vm
	self := vm.NewTable()
	tr := ent.Transform()

	vec := func(L *lua.LState) mgl32.Vec3 {
		return mgl32.Vec3{
			float32(L.CheckNumber(2)),
			float32(L.CheckNumber(3)),
			float32(L.CheckNumber(4)),
		}
	}

	self.RawSetString("name", vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(ent.Name()))
		return 1
	}))
	self.RawSetString("position", vm.NewFunction(func(L *lua.LState) int {
		p := tr.Position()
		L.Push(lua.LNumber(p.X()))
		L.Push(lua.LNumber(p.Y()))
		L.Push(lua.LNumber(p.Z()))
		return 3
	}))
	self.RawSetString("set_position", vm.NewFunction(func(L *lua.LState) int {
		tr.SetPosition(vec(L))
		return 0
	}))
	self.RawSetString("translate", vm.NewFunction(func(L *lua.LState) int {
		tr.Translate(vec(L))
		return 0
	}))
	self.RawSetString("rotate", vm.NewFunction(func(L *lua.LState) int {
		deg := vec(L)
		q := mgl32.AnglesToQuat(
			mgl32.DegToRad(deg.X()),
			mgl32.DegToRad(deg.Y()),
			mgl32.DegToRad(deg.Z()),
			mgl32.XYZ,
		)
		tr.Rotate(q)
		return 0
	}))
	return self
}

// instance is one script table bound to one entity.
type instance struct {
	eng    *Engine
	vm     *lua.LState // VM the script was loaded into
	path   string
	script *lua.LTable
	self   *lua.LTable
	closed bool
}

func (i *instance) Start() error {
	return i.call("start")
}

func (i *instance) Update(dt time.Duration) error {
	return i.call("update", lua.LNumber(dt.Seconds()))
}

func (i *instance) call(name string, args ...lua.LValue) error {
	i.eng.mu.Lock()
	defer i.eng.mu.Unlock()
	if i.closed || i.vm != i.eng.vm {
		return nil
	}
	fn, ok := i.script.RawGetString(name).(*lua.LFunction)
	if !ok {
		return nil
	}
	if err := i.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, append([]lua.LValue{i.self}, args...)...); err != nil {
		return fmt.Errorf("%s %s: %w", i.path, name, err)
	}
	return nil
}

func (i *instance) Close() {
	i.eng.mu.Lock()
	i.closed = true
	i.eng.mu.Unlock()
}
