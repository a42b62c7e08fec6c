// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"fmt"

	"github.com/charmbracelet/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/confrun/confrun/pkg/module"
	"github.com/confrun/confrun/pkg/status"
)

// luaHandler runs a Lua plugin. The state is confined to the dispatcher's
// single thread of execution, so the call fields below need no locking.
type luaHandler struct {
	module string
	path   string
	L      *lua.LState
	fn     *lua.LFunction

	// bindings of the innermost active Handle call
	ec     *module.ExecutionContext
	esc    module.Escalator
	logger *log.Logger
}

func (d *Discoverer) loadLua(moduleName, path string) (module.Handler, error) {
	h := &luaHandler{module: moduleName, path: path}
	h.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(h.L)
	h.installAPI()

	if err := h.L.DoFile(path); err != nil {
		h.L.Close()
		return nil, &LoadError{Module: moduleName, Path: path, Err: err}
	}

	fn, ok := h.L.GetGlobal(HandlerSymbol).(*lua.LFunction)
	if !ok {
		got := h.L.GetGlobal(HandlerSymbol).Type()
		h.L.Close()
		return nil, &ShapeError{Module: moduleName, Path: path, Reason: "must be a function, got " + got.String()}
	}
	h.fn = fn
	d.loaded = append(d.loaded, h)
	return h, nil
}

// openSafeLibraries opens the Lua standard libraries that cannot reach the
// host. Plugins use the confrun API for environment and module access.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
}

func (h *luaHandler) installAPI() {
	L := h.L
	L.SetGlobal("escalate", L.NewFunction(h.luaEscalate))
	L.SetGlobal("log", L.NewFunction(h.luaLog))
	L.SetGlobal("getenv", L.NewFunction(h.luaGetenv))
	L.SetGlobal("setenv", L.NewFunction(h.luaSetenv))
	L.SetGlobal("workdir", L.NewFunction(h.luaWorkdir))

	codes := L.NewTable()
	for name, code := range map[string]status.Code{
		"Success":          status.Success,
		"Failure":          status.Failure,
		"CommandNotFound":  status.CommandNotFound,
		"InvalidArguments": status.InvalidCommandArguments,
	} {
		L.SetField(codes, name, lua.LNumber(code.Uint32()))
	}
	L.SetGlobal("status", codes)
}

func (h *luaHandler) Handle(ec *module.ExecutionContext, command, args string, esc module.Escalator, logger *log.Logger) status.Code {
	// A nested section run can re-enter this handler through escalate; the
	// outer call gets its bindings back when the inner one returns.
	prevEC, prevEsc, prevLogger := h.ec, h.esc, h.logger
	h.ec, h.esc, h.logger = ec, esc, logger
	defer func() { h.ec, h.esc, h.logger = prevEC, prevEsc, prevLogger }()

	L := h.L
	top := L.GetTop()
	L.Push(h.fn)
	L.Push(lua.LString(command))
	L.Push(lua.LString(args))
	if err := L.PCall(2, 1, nil); err != nil {
		L.SetTop(top)
		logger.Error("lua plugin raised an error", "module", h.module, "command", command, "err", err)
		return status.Failure
	}
	ret := L.Get(-1)
	L.SetTop(top)

	code, err := luaStatus(ret)
	if err != nil {
		logger.Error("lua plugin returned an invalid result", "module", h.module, "command", command, "err", err)
		return status.Failure
	}
	return code
}

// luaStatus maps a CommandHandler return value to a status code: nothing, true
// and 0 mean success, false means a generic failure and any other number is a
// packed status code.
func luaStatus(v lua.LValue) (status.Code, error) {
	switch v := v.(type) {
	case *lua.LNilType:
		return status.Success, nil
	case lua.LBool:
		if v {
			return status.Success, nil
		}
		return status.Failure, nil
	case lua.LNumber:
		n := float64(v)
		if n < 0 || n > float64(^uint32(0)) || n != float64(uint32(n)) {
			return status.Failure, fmt.Errorf("status %v is not a 32-bit code", n)
		}
		return status.FromUint32(uint32(n)), nil
	default:
		return status.Failure, fmt.Errorf("unexpected %s return value", v.Type())
	}
}

func (h *luaHandler) luaEscalate(L *lua.LState) int {
	if h.esc == nil {
		L.RaiseError("escalate called outside CommandHandler")
		return 0
	}
	code := h.esc.Invoke(L.CheckString(1), L.CheckString(2), L.OptString(3, ""))
	L.Push(lua.LNumber(code.Uint32()))
	return 1
}

func (h *luaHandler) luaLog(L *lua.LState) int {
	if h.logger != nil {
		h.logger.Info(L.CheckString(1), "module", h.module)
	}
	return 0
}

func (h *luaHandler) luaGetenv(L *lua.LState) int {
	if h.ec == nil {
		L.Push(lua.LNil)
		return 1
	}
	if v, ok := h.ec.LookupEnv(L.CheckString(1)); ok {
		L.Push(lua.LString(v))
	} else {
		L.Push(lua.LNil)
	}
	return 1
}

func (h *luaHandler) luaSetenv(L *lua.LState) int {
	if h.ec == nil {
		L.RaiseError("setenv called outside CommandHandler")
		return 0
	}
	if err := h.ec.Setenv(L.CheckString(1), L.OptString(2, "")); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func (h *luaHandler) luaWorkdir(L *lua.LState) int {
	if h.ec == nil {
		L.Push(lua.LString(""))
		return 1
	}
	L.Push(lua.LString(h.ec.WorkDir()))
	return 1
}

func (h *luaHandler) close() {
	if !h.L.IsClosed() {
		h.L.Close()
	}
}
