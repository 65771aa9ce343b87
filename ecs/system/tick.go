package system

import (
	"log"

	"github.com/milk9111/slotengine/ecs"
	"github.com/milk9111/slotengine/ecs/component"
)

// TickSystem calls registered functions once per update.
type TickSystem struct {
	ticks *ecs.Arena[component.TickFunc]
}

func NewTickSystem() *TickSystem {
	return &TickSystem{ticks: ecs.NewArena[component.TickFunc](16)}
}

func (ts *TickSystem) Create(fn component.TickFunc) ecs.Handle {
	return ts.ticks.Insert(fn)
}

func (ts *TickSystem) Remove(h ecs.Handle) bool {
	return ts.ticks.Remove(h)
}

func (ts *TickSystem) Len() int {
	return ts.ticks.Len()
}

// Update runs every tick function. A failing function is logged and the
// others still run. Functions added during Update first run on the next one.
func (ts *TickSystem) Update(dt float64) {
	for _, h := range ts.ticks.Handles() {
		fn, ok := ts.ticks.Get(h)
		if !ok || *fn == nil {
			continue
		}
		call := *fn
		if err := Guard(func() error { return call(dt) }); err != nil {
			log.Printf("tick: handler=%s: %v", h, err)
		}
	}
}

// Close drops every tick function.
func (ts *TickSystem) Close() {
	ts.ticks.Clear()
}
