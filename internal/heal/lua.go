package heal

import (
	"fmt"
	"os"

	lua "github.com/yuin/gopher-lua"

	"github.com/flowdeck/flowdeck/internal/models"
)

// LuaDetector runs a user-supplied script in a sandboxed Lua state. The
// script must define inspect(stdout, stderr, exit_code) and return a
// string indicator when it finds a failure, or nil/false when clean.
type LuaDetector struct {
	script string
}

// LoadLuaDetector reads and syntax-checks a detector script.
func LoadLuaDetector(path string) (*LuaDetector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read detector script: %w", err)
	}

	d := &LuaDetector{script: string(data)}

	// Compile once up front so configuration errors surface at startup,
	// not on the first inspected result.
	L := d.newState()
	defer L.Close()
	if err := L.DoString(d.script); err != nil {
		return nil, fmt.Errorf("failed to load detector script: %w", err)
	}
	if L.GetGlobal("inspect") == lua.LNil {
		return nil, fmt.Errorf("detector script must define an 'inspect' function")
	}

	return d, nil
}

func (d *LuaDetector) Inspect(result models.ExecutionResult) (string, bool) {
	// Lua states are not goroutine safe; a fresh state per call keeps
	// concurrent sessions independent.
	L := d.newState()
	defer L.Close()

	if err := L.DoString(d.script); err != nil {
		return "", false
	}

	inspect := L.GetGlobal("inspect")
	if inspect == lua.LNil {
		return "", false
	}

	L.Push(inspect)
	L.Push(lua.LString(result.Stdout))
	L.Push(lua.LString(result.Stderr))
	L.Push(lua.LNumber(result.ExitCode))
	if err := L.PCall(3, 1, nil); err != nil {
		return "", false
	}

	ret := L.Get(-1)
	L.Pop(1)

	switch v := ret.(type) {
	case lua.LString:
		return string(v), true
	case lua.LBool:
		if bool(v) {
			return "detector", true
		}
	}
	return "", false
}

// newState builds a Lua state with only safe libraries loaded, following
// the same sandbox shape as scriptable workflow runtimes: no file or
// process access, no dynamic code loading.
func (d *LuaDetector) newState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	L.SetGlobal("loadfile", lua.LNil)
	L.SetGlobal("dofile", lua.LNil)
	L.SetGlobal("load", lua.LNil)
	L.SetGlobal("loadstring", lua.LNil)
	L.SetGlobal("print", lua.LNil)

	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	return L
}
