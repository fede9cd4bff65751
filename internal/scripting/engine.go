package scripting

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/orbarena/arena/internal/config"
)

//go:embed scripts/rules.lua
var defaultRules string

// Engine wraps a single gopher-lua VM holding the progression rules.
// Single-goroutine access only (tick loop). Every call falls back to the
// built-in Go rule when the script is missing, fails or returns nonsense.
type Engine struct {
	vm       *lua.LState
	log      *zap.Logger
	fallback Fallback
}

// NewEngine loads the embedded rules, then every .lua file in dir (if dir
// is not empty) so operators can override individual functions.
func NewEngine(tuning config.TuningConfig, dir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	vm.SetGlobal("GROWTH_FACTOR", lua.LNumber(tuning.GrowthFactor))
	vm.SetGlobal("LEVEL_EVERY", lua.LNumber(tuning.LevelEvery))

	e := &Engine{
		vm:       vm,
		log:      log,
		fallback: Fallback{GrowthFactor: tuning.GrowthFactor, LevelEvery: tuning.LevelEvery},
	}

	if err := vm.DoString(defaultRules); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load embedded rules: %w", err)
	}
	if dir != "" {
		if err := e.loadDir(dir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			e.log.Warn("scripting dir missing, using embedded rules", zap.String("dir", dir))
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
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

// AbsorbGrowth calls Lua absorb_growth(ctx). A non-positive result would
// break radius monotonicity, so it is replaced by the Go rule.
func (e *Engine) AbsorbGrowth(biggerRadius, smallerRadius float64, byPlayer bool) float64 {
	fn := e.vm.GetGlobal("absorb_growth")
	if fn == lua.LNil {
		return e.fallback.AbsorbGrowth(biggerRadius, smallerRadius, byPlayer)
	}

	t := e.vm.NewTable()
	t.RawSetString("bigger_radius", lua.LNumber(biggerRadius))
	t.RawSetString("smaller_radius", lua.LNumber(smallerRadius))
	t.RawSetString("by_player", lua.LBool(byPlayer))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua absorb_growth error", zap.Error(err))
		return e.fallback.AbsorbGrowth(biggerRadius, smallerRadius, byPlayer)
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	n, ok := result.(lua.LNumber)
	g := float64(n)
	if !ok || g <= 0 || math.IsNaN(g) || math.IsInf(g, 0) {
		e.log.Error("lua absorb_growth returned invalid growth", zap.String("value", result.String()))
		return e.fallback.AbsorbGrowth(biggerRadius, smallerRadius, byPlayer)
	}
	return g
}

// NextLevel calls Lua level_for_score(score, level). Levels never go down.
func (e *Engine) NextLevel(score, level int) int {
	next, ok := e.callIntFunc("level_for_score", score, level)
	if !ok || next < level {
		return e.fallback.NextLevel(score, level)
	}
	return next
}

// callIntFunc calls a Lua function with int args and returns an int result.
func (e *Engine) callIntFunc(name string, args ...int) (int, bool) {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		e.log.Error("lua function not found", zap.String("name", name))
		return 0, false
	}

	lArgs := make([]lua.LValue, len(args))
	for i, a := range args {
		lArgs[i] = lua.LNumber(a)
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lArgs...); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return 0, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	n, ok := result.(lua.LNumber)
	if !ok {
		e.log.Error("lua function returned non-number", zap.String("func", name))
		return 0, false
	}
	return int(n), true
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
