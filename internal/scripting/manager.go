package scripting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/taberneiros/internal/game/character"
	"github.com/cory-johannsen/taberneiros/internal/game/check"
	"github.com/cory-johannsen/taberneiros/internal/game/dice"
)

// Hook names looked up as Lua globals.
const (
	HookCriticalSuccess = "on_critical_success"
	HookCriticalFailure = "on_critical_failure"
)

// Manager owns one sandboxed LState and exposes hook dispatch.
//
// The LState is single-threaded; every call into it holds mu.
type Manager struct {
	mu        sync.Mutex
	L         *lua.LState
	instLimit int
	roller    *dice.Roller
	logger    *zap.Logger

	// Injected after construction. nil = no-op in engine.* functions.
	Notify func(ctx context.Context, text string)
	// Restore adds amount to the actor's pool ("pv" or "pm"), capped at max.
	Restore func(ctx context.Context, actorID, pool string, amount int) error

	// ctx of the call in progress, for engine.* functions.
	callCtx context.Context
}

// NewManager creates a Manager with an empty VM.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a non-nil Manager; call Close when done.
func NewManager(roller *dice.Roller, instLimit int, logger *zap.Logger) *Manager {
	m := &Manager{
		L:         NewSandboxedState(),
		instLimit: instLimit,
		roller:    roller,
		logger:    logger,
		callCtx:   context.Background(),
	}
	m.RegisterModules(m.L)
	return m
}

// LoadDir executes every *.lua file in dir in lexicographic order.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns the first load error; files before it stay loaded.
func (m *Manager) LoadDir(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, path := range luaFiles {
		release := Arm(ctx, m.L, m.instLimit)
		err := m.L.DoFile(path)
		release()
		if err != nil {
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
		m.logger.Debug("script loaded", zap.String("path", path))
	}
	return nil
}

// LoadString executes src, for scripts that do not live on disk.
func (m *Manager) LoadString(ctx context.Context, src string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	release := Arm(ctx, m.L, m.instLimit)
	defer release()
	if err := m.L.DoString(src); err != nil {
		return fmt.Errorf("scripting: loading string: %w", err)
	}
	return nil
}

// HasHook reports whether a global function named hook is defined.
func (m *Manager) HasHook(hook string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.L.GetGlobal(hook).(*lua.LFunction)
	return ok
}

// CallHook calls the named Lua global function. Returns (LNil, nil) if the
// hook is not defined.
//
// Postcondition: Returns the first return value of the hook, or a non-nil
// error when the script raised or exceeded its budget.
func (m *Manager) CallHook(ctx context.Context, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fn := m.L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	release := Arm(ctx, m.L, m.instLimit)
	m.callCtx = ctx
	defer func() {
		release()
		m.callCtx = context.Background()
	}()

	if err := m.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		return lua.LNil, fmt.Errorf("scripting: %s: %w", hook, err)
	}
	ret := m.L.Get(-1)
	m.L.Pop(1)
	return ret, nil
}

// Callback returns a check.Callback that invokes hook with the actor and
// result snapshots, or nil when no such hook is loaded.
func (m *Manager) Callback(hook string) check.Callback {
	if !m.HasHook(hook) {
		return nil
	}
	return func(ctx context.Context, actor *character.Character, res check.Result) error {
		m.mu.Lock()
		actorTbl := actorTable(m.L, actor)
		resTbl := resultTable(m.L, res)
		m.mu.Unlock()
		_, err := m.CallHook(ctx, hook, actorTbl, resTbl)
		return err
	}
}

// Close releases the VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.L.Close()
}

func actorTable(L *lua.LState, c *character.Character) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LString(c.ID))
	t.RawSetString("name", lua.LString(c.Name))
	t.RawSetString("classe", lua.LString(c.Classe))
	for _, name := range character.AllAttributes {
		if a := c.Attribute(name); a != nil {
			t.RawSetString(string(name), lua.LNumber(a.Value))
		}
	}
	if c.PV != nil {
		t.RawSetString("pv", lua.LNumber(c.PV.Value))
		t.RawSetString("pv_max", lua.LNumber(c.PV.Max))
	}
	if c.PM != nil {
		t.RawSetString("pm", lua.LNumber(c.PM.Value))
		t.RawSetString("pm_max", lua.LNumber(c.PM.Max))
	}
	return t
}

func resultTable(L *lua.LState, r check.Result) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("total", lua.LNumber(r.Total))
	t.RawSetString("natural", lua.LNumber(r.NaturalRoll))
	t.RawSetString("difficulty", lua.LNumber(r.Difficulty))
	t.RawSetString("outcome", lua.LString(r.Outcome.String()))
	t.RawSetString("attribute_value", lua.LNumber(r.AttributeValue))
	t.RawSetString("skill_bonus", lua.LNumber(r.SkillBonus))
	return t
}
