package system

import (
	"log"

	"github.com/milk9111/slotengine/ecs"
	"github.com/milk9111/slotengine/ecs/component"
)

// Built-in event names. The parameter is the key code.
const (
	EventKeyDown = "keydown"
	EventKeyUp   = "keyup"
)

// InputSystem queues input events and dispatches them to callbacks bound by
// event name during Update.
type InputSystem struct {
	inputs  *ecs.Arena[component.Input]
	aliases []component.InputAlias
	queue   []component.InputEvent
}

func NewInputSystem() *InputSystem {
	return &InputSystem{inputs: ecs.NewArena[component.Input](16)}
}

// Create binds fn to events called name.
func (is *InputSystem) Create(name string, fn component.InputFunc) ecs.Handle {
	return is.inputs.Insert(component.Input{Name: name, Callback: fn})
}

func (is *InputSystem) Get(h ecs.Handle) (*component.Input, bool) {
	return is.inputs.Get(h)
}

func (is *InputSystem) Remove(h ecs.Handle) bool {
	return is.inputs.Remove(h)
}

func (is *InputSystem) Len() int {
	return is.inputs.Len()
}

// Bind adds an alias: whenever alias.Event arrives with alias.Param, the
// event is dispatched under alias.Name as well.
func (is *InputSystem) Bind(alias component.InputAlias) {
	is.aliases = append(is.aliases, alias)
}

// Aliases returns the bound aliases.
func (is *InputSystem) Aliases() []component.InputAlias {
	return is.aliases
}

// Push queues an event for the next Update.
func (is *InputSystem) Push(ev component.InputEvent) {
	is.queue = append(is.queue, ev)
}

// Pending returns the number of queued events.
func (is *InputSystem) Pending() int {
	return len(is.queue)
}

// Update dispatches the events queued so far. Events pushed by callbacks
// wait for the next Update.
func (is *InputSystem) Update(dt float64) {
	_ = dt
	events := is.queue
	is.queue = nil
	for _, ev := range events {
		is.dispatch(ev.Name, ev)
		for _, alias := range is.aliases {
			if alias.Event == ev.Name && alias.Param == ev.Param {
				is.dispatch(alias.Name, ev)
			}
		}
	}
}

func (is *InputSystem) dispatch(name string, ev component.InputEvent) {
	for _, h := range is.inputs.Handles() {
		in, ok := is.inputs.Get(h)
		if !ok || in.Name != name || in.Callback == nil {
			continue
		}
		call := in.Callback
		if err := Guard(func() error { return call(name, ev.Param) }); err != nil {
			log.Printf("input: event=%s param=%d handler=%s: %v", name, ev.Param, h, err)
		}
	}
}

// Close drops every binding, alias and queued event.
func (is *InputSystem) Close() {
	is.inputs.Clear()
	is.aliases = nil
	is.queue = nil
}
