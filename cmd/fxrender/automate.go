package main

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// automation yields parameter targets by name for a block starting at t
// seconds. A nil result leaves the parameters unchanged.
type automation interface {
	At(t float64) (map[string]float64, error)
	Close()
}

// luaAutomation runs a script defining
//
//	function automate(t) return { ["Mix"] = 0.5 } end
//
// An LState is not safe for concurrent use; each render owns one.
type luaAutomation struct {
	state *lua.LState
	fn    lua.LValue
	out   map[string]float64
}

func newLuaAutomation(source string, isFile bool) (*luaAutomation, error) {
	L := lua.NewState()

	var err error
	if isFile {
		err = L.DoFile(source)
	} else {
		err = L.DoString(source)
	}

	if err != nil {
		L.Close()
		return nil, fmt.Errorf("lua: %w", err)
	}

	fn := L.GetGlobal("automate")
	if fn.Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("lua: script does not define function automate(t)")
	}

	return &luaAutomation{state: L, fn: fn, out: make(map[string]float64)}, nil
}

// At calls automate(t). Non-numeric values and non-string keys are errors.
// The returned map is reused by the next call.
func (a *luaAutomation) At(t float64) (map[string]float64, error) {
	L := a.state

	err := L.CallByParam(lua.P{Fn: a.fn, NRet: 1, Protect: true}, lua.LNumber(t))
	if err != nil {
		return nil, fmt.Errorf("lua: automate(%g): %w", t, err)
	}

	ret := L.Get(-1)
	L.Pop(1)

	if ret == lua.LNil {
		return nil, nil
	}

	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("lua: automate(%g) returned %s, want table", t, ret.Type())
	}

	clear(a.out)

	var bad error

	tbl.ForEach(func(k, v lua.LValue) {
		if bad != nil {
			return
		}

		name, ok := k.(lua.LString)
		if !ok {
			bad = fmt.Errorf("lua: automate(%g): key %v is not a parameter name", t, k)
			return
		}

		num, ok := v.(lua.LNumber)
		if !ok {
			bad = fmt.Errorf("lua: automate(%g): %s is %s, want number", t, name, v.Type())
			return
		}

		a.out[string(name)] = float64(num)
	})

	if bad != nil {
		return nil, bad
	}

	return a.out, nil
}

func (a *luaAutomation) Close() { a.state.Close() }
