package scenario

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

const scenarioTypeName = "scenario"

// Scenario is an ordered list of session commands and expectations.
type Scenario struct {
	Name  string
	Steps []Step
}

// Step is one scripted command with its arguments.
type Step struct {
	Kind string
	Args map[string]any
}

// LoadScenarioFromFile runs a Lua script and returns the Scenario it builds.
func LoadScenarioFromFile(path string) (*Scenario, error) {
	state := newLuaState()
	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	scenario, err := runChunk(state)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return scenario, nil
}

// LoadScenario runs Lua source held in memory.
func LoadScenario(name, source string) (*Scenario, error) {
	state := newLuaState()
	if err := lua.LoadString(state, source); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	scenario, err := runChunk(state)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = name
	}
	return scenario, nil
}

func newLuaState() *lua.State {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerScenarioType(state)
	registerScenarioConstructor(state)
	return state
}

func runChunk(state *lua.State) (*Scenario, error) {
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}
	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("scenario script must return Scenario")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		return nil, fmt.Errorf("scenario script returned invalid Scenario")
	}
	return scenario, nil
}

func registerScenarioType(state *lua.State) {
	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

func registerScenarioConstructor(state *lua.State) {
	state.NewTable()
	lua.SetFunctions(state, []lua.RegistryFunction{{Name: "new", Function: scenarioNew}}, 0)
	state.SetGlobal("Scenario")
}

func scenarioNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	state.PushUserData(&Scenario{Name: name})
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

var scenarioMethods = []lua.RegistryFunction{
	{Name: "start", Function: noArgStep("start")},
	{Name: "restart", Function: noArgStep("restart")},
	{Name: "menu", Function: noArgStep("menu")},
	{Name: "shop_open", Function: noArgStep("shop_open")},
	{Name: "shop_close", Function: noArgStep("shop_close")},
	{Name: "immortal", Function: noArgStep("immortal")},
	{Name: "level", Function: noArgStep("level")},
	{Name: "difficulty", Function: stringStep("difficulty", "id")},
	{Name: "status", Function: stringStep("status", "status")},
	{Name: "letter", Function: numberStep("letter", "index")},
	{Name: "gem", Function: numberStep("gem", "value")},
	{Name: "score", Function: numberStep("score", "amount")},
	{Name: "distance", Function: numberStep("distance", "value")},
	{Name: "lane", Function: numberStep("lane", "lane")},
	{Name: "wait", Function: numberStep("wait", "seconds")},
	{Name: "letters", Function: scenarioLetters},
	{Name: "damage", Function: scenarioDamage},
	{Name: "jump", Function: scenarioJump},
	{Name: "buy", Function: scenarioBuy},
	{Name: "expect", Function: scenarioExpect},
}

func noArgStep(kind string) lua.Function {
	return func(state *lua.State) int {
		appendStep(checkScenario(state), kind, nil)
		state.PushValue(1)
		return 1
	}
}

func stringStep(kind, key string) lua.Function {
	return func(state *lua.State) int {
		scenario := checkScenario(state)
		appendStep(scenario, kind, map[string]any{key: lua.CheckString(state, 2)})
		state.PushValue(1)
		return 1
	}
}

func numberStep(kind, key string) lua.Function {
	return func(state *lua.State) int {
		scenario := checkScenario(state)
		appendStep(scenario, kind, map[string]any{key: normalizeNumber(lua.CheckNumber(state, 2))})
		state.PushValue(1)
		return 1
	}
}

// scenarioLetters collects the first n slots, or the whole word when n is
// omitted.
func scenarioLetters(state *lua.State) int {
	scenario := checkScenario(state)
	args := map[string]any{}
	if !state.IsNoneOrNil(2) {
		args["count"] = normalizeNumber(lua.CheckNumber(state, 2))
	}
	appendStep(scenario, "letters", args)
	state.PushValue(1)
	return 1
}

func scenarioDamage(state *lua.State) int {
	scenario := checkScenario(state)
	times := lua.OptInteger(state, 2, 1)
	appendStep(scenario, "damage", map[string]any{"times": times})
	state.PushValue(1)
	return 1
}

func scenarioJump(state *lua.State) int {
	scenario := checkScenario(state)
	args := map[string]any{}
	if !state.IsNoneOrNil(2) {
		args["at"] = normalizeNumber(lua.CheckNumber(state, 2))
	}
	appendStep(scenario, "jump", args)
	state.PushValue(1)
	return 1
}

// scenarioBuy records a purchase. The cost defaults to the catalog price.
func scenarioBuy(state *lua.State) int {
	scenario := checkScenario(state)
	args := map[string]any{"id": lua.CheckString(state, 2)}
	if !state.IsNoneOrNil(3) {
		args["cost"] = normalizeNumber(lua.CheckNumber(state, 3))
	}
	appendStep(scenario, "buy", args)
	state.PushValue(1)
	return 1
}

func scenarioExpect(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	appendStep(scenario, "expect", tableToMap(state, 2))
	state.PushValue(1)
	return 1
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if scenario, ok := ud.(*Scenario); ok && scenario != nil {
		return scenario
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

func appendStep(scenario *Scenario, kind string, data map[string]any) {
	if scenario == nil {
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	scenario.Steps = append(scenario.Steps, Step{Kind: kind, Args: data})
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToMap(state, index)
	default:
		return nil
	}
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 && math.Abs(value) < 1<<53 {
		return int(value)
	}
	return value
}
