package script

import (
	"errors"
	"fmt"
	"log"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/slotengine/levels"
)

// Scripts register entry points on two maps the host declares for them:
//
//	handlers.on_jump = func(engine, state, name, key) { ... }
//	types.Crate = func(engine, state, object) { ... }
//
// Top level code runs on every call, so it should only define functions.
// handlers.init runs once after the first load, handlers.reload after
// every later one.
const scriptPrelude = `
handlers := {}
types := {}
`

const scriptDispatch = `
if __call != "" {
	__fn := handlers[__call]
	if is_callable(__fn) {
		__found = true
		__result = __fn(engine, state, __args...)
	}
} else if __spawn != "" {
	__ctor := types[__spawn]
	if is_callable(__ctor) {
		__found = true
		__result = __ctor(engine, state, __object)
	}
}
`

// TengoHost runs one tengo script. Handlers share a persistent state map.
// Requests made while the script is running are queued and run after it.
type TengoHost struct {
	engine   *tengo.ImmutableMap
	name     string
	source   []byte
	compiled *tengo.Compiled
	state    *tengo.Map
	loads    int

	running  bool
	deferred []func() error
}

func NewTengoHost(engine Engine) *TengoHost {
	h := &TengoHost{state: &tengo.Map{Value: map[string]tengo.Object{}}}
	if engine != nil {
		h.engine = buildEngineModule(engine)
	} else {
		h.engine = &tengo.ImmutableMap{Value: map[string]tengo.Object{}}
	}
	return h
}

// Name returns the name of the loaded script.
func (h *TengoHost) Name() string {
	return h.name
}

// State returns the map shared by every handler.
func (h *TengoHost) State() *tengo.Map {
	return h.state
}

// Load compiles src and makes it the active script. The previous script
// stays active when compilation fails.
func (h *TengoHost) Load(name string, src []byte) error {
	compiled, err := h.compile(src, scriptDispatch)
	if err != nil {
		return fmt.Errorf("script: load %s: %w", name, err)
	}
	h.name = name
	h.source = append([]byte(nil), src...)
	h.compiled = compiled
	h.loads++

	hook := "init"
	if h.loads > 1 {
		hook = "reload"
	}
	if _, err := h.Call(hook); err != nil && !errors.Is(err, ErrUnknownHandler) {
		return fmt.Errorf("script: %s %s: %w", hook, name, err)
	}
	return nil
}

func (h *TengoHost) compile(src []byte, tail string) (*tengo.Compiled, error) {
	full := make([]byte, 0, len(scriptPrelude)+len(src)+len(tail)+2)
	full = append(full, scriptPrelude...)
	full = append(full, src...)
	full = append(full, '\n')
	full = append(full, tail...)

	s := tengo.NewScript(full)
	_ = s.Add("engine", h.engine)
	_ = s.Add("state", h.state)
	_ = s.Add("__call", "")
	_ = s.Add("__args", []any{})
	_ = s.Add("__spawn", "")
	_ = s.Add("__object", map[string]any{})
	_ = s.Add("__found", false)
	_ = s.Add("__result", nil)
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	return s.Compile()
}

// Call runs handlers[name] with (engine, state, args...). It returns
// ErrUnknownHandler when the script does not define it.
func (h *TengoHost) Call(name string, args ...any) (any, error) {
	if h.compiled == nil {
		return nil, ErrNotLoaded
	}
	if h.running {
		h.deferred = append(h.deferred, func() error {
			_, err := h.Call(name, args...)
			return err
		})
		return nil, nil
	}

	converted := make([]tengo.Object, 0, len(args))
	for _, a := range args {
		obj, err := tengo.FromInterface(a)
		if err != nil {
			return nil, fmt.Errorf("script: call %s: %w", name, err)
		}
		converted = append(converted, obj)
	}

	result, found, err := h.dispatch(h.compiled, map[string]any{
		"__call":   name,
		"__args":   &tengo.Array{Value: converted},
		"__spawn":  "",
		"__object": map[string]any{},
	})
	if err != nil {
		return nil, fmt.Errorf("script: call %s: %w", name, err)
	}
	if !found {
		return nil, ErrUnknownHandler
	}
	return result, nil
}

// Instantiate runs types[obj.Type] with (engine, state, object) where
// object carries the map object's name, type, box and properties.
func (h *TengoHost) Instantiate(obj levels.Object) error {
	if h.compiled == nil {
		return ErrNotLoaded
	}
	if h.running {
		h.deferred = append(h.deferred, func() error { return h.Instantiate(obj) })
		return nil
	}

	props := make(map[string]any, len(obj.Properties))
	for k, v := range obj.Properties {
		props[k] = v
	}
	_, found, err := h.dispatch(h.compiled, map[string]any{
		"__call":  "",
		"__args":  []any{},
		"__spawn": obj.Type,
		"__object": map[string]any{
			"name":       obj.Name,
			"type":       obj.Type,
			"x":          obj.X,
			"y":          obj.Y,
			"w":          obj.Width,
			"h":          obj.Height,
			"properties": props,
		},
	})
	if err != nil {
		return fmt.Errorf("script: instantiate %s %q: %w", obj.Type, obj.Name, err)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrUnknownType, obj.Type)
	}
	return nil
}

// Eval compiles src after the loaded script and runs it once. The snippet
// sees engine, state, handlers and types.
func (h *TengoHost) Eval(src string) error {
	if h.compiled == nil {
		return ErrNotLoaded
	}
	if h.running {
		h.deferred = append(h.deferred, func() error { return h.Eval(src) })
		return nil
	}
	compiled, err := h.compile(h.source, src)
	if err != nil {
		return fmt.Errorf("script: eval: %w", err)
	}
	if _, _, err := h.dispatch(compiled, nil); err != nil {
		return fmt.Errorf("script: eval: %w", err)
	}
	return nil
}

func (h *TengoHost) dispatch(c *tengo.Compiled, globals map[string]any) (any, bool, error) {
	for name, value := range globals {
		if err := c.Set(name, value); err != nil {
			return nil, false, err
		}
	}
	if err := c.Set("__found", false); err != nil {
		return nil, false, err
	}
	if err := c.Set("__result", nil); err != nil {
		return nil, false, err
	}

	h.running = true
	err := c.Run()
	h.running = false

	var result any
	found := false
	if err == nil {
		found = c.Get("__found").Bool()
		result = objectToAny(c.Get("__result").Object())
	}
	h.flush()
	return result, found, err
}

// flush runs the requests queued while the script was running.
func (h *TengoHost) flush() {
	for len(h.deferred) > 0 {
		next := h.deferred[0]
		h.deferred = h.deferred[1:]
		if err := next(); err != nil {
			log.Printf("script: deferred call in %s: %v", h.name, err)
		}
	}
}
