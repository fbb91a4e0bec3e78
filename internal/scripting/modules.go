package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers the engine table into L:
//
//	engine.roll(formula)              -> total (number) or nil, err
//	engine.notify(text)
//	engine.restore(actor_id, pool, n) -> true or false, err
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetFuncs(engine, map[string]lua.LGFunction{
		"roll":    m.luaRoll,
		"notify":  m.luaNotify,
		"restore": m.luaRestore,
	})
	L.SetGlobal("engine", engine)
}

func (m *Manager) luaRoll(L *lua.LState) int {
	formula := L.CheckString(1)
	res, err := m.roller.Evaluate(formula, nil)
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LNumber(res.Total))
	return 1
}

func (m *Manager) luaNotify(L *lua.LState) int {
	text := L.CheckString(1)
	if m.Notify == nil {
		m.logger.Info("script notice", zap.String("text", text))
		return 0
	}
	m.Notify(m.callCtx, text)
	return 0
}

func (m *Manager) luaRestore(L *lua.LState) int {
	actorID := L.CheckString(1)
	pool := L.CheckString(2)
	amount := L.CheckInt(3)
	if pool != "pv" && pool != "pm" {
		L.ArgError(2, "pool must be \"pv\" or \"pm\"")
		return 0
	}
	if m.Restore == nil {
		L.Push(lua.LFalse)
		L.Push(lua.LString("restore unavailable"))
		return 2
	}
	if err := m.Restore(m.callCtx, actorID, pool, amount); err != nil {
		L.Push(lua.LFalse)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}
