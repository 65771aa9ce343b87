package system

import (
	"log"
	"slices"

	"github.com/milk9111/slotengine/ecs"
	"github.com/milk9111/slotengine/ecs/component"
)

// EntitySystem tracks script objects and the records they own in other
// systems. Destroy is deferred to the next Update so callbacks can destroy
// their own entity safely.
type EntitySystem struct {
	entities *ecs.Arena[component.Entity]
	pending  []ecs.Handle
}

func NewEntitySystem() *EntitySystem {
	return &EntitySystem{entities: ecs.NewArena[component.Entity](32)}
}

func (es *EntitySystem) Create(typ, name string) ecs.Handle {
	return es.entities.Insert(component.Entity{Type: typ, Name: name})
}

func (es *EntitySystem) Get(h ecs.Handle) (*component.Entity, bool) {
	return es.entities.Get(h)
}

// Own registers release to run when h is destroyed. It reports false for
// stale handles, in which case release is not kept.
func (es *EntitySystem) Own(h ecs.Handle, release func()) bool {
	e, ok := es.entities.Get(h)
	if !ok || release == nil {
		return false
	}
	e.Release = append(e.Release, release)
	return true
}

// Destroy schedules h for removal on the next Update.
func (es *EntitySystem) Destroy(h ecs.Handle) bool {
	if !es.entities.Contains(h) {
		return false
	}
	if !slices.Contains(es.pending, h) {
		es.pending = append(es.pending, h)
	}
	return true
}

// Find returns the first entity called name.
func (es *EntitySystem) Find(name string) (ecs.Handle, bool) {
	found := ecs.Invalid
	es.entities.Each(func(h ecs.Handle, e *component.Entity) {
		if !found.Valid() && e.Name == name {
			found = h
		}
	})
	return found, found.Valid()
}

func (es *EntitySystem) Len() int {
	return es.entities.Len()
}

// Pending returns the number of entities waiting to be destroyed.
func (es *EntitySystem) Pending() int {
	return len(es.pending)
}

// Update destroys every entity scheduled so far.
func (es *EntitySystem) Update(dt float64) {
	_ = dt
	pending := es.pending
	es.pending = nil
	for _, h := range pending {
		es.destroy(h)
	}
}

// destroy runs the releases of h newest first and removes it.
func (es *EntitySystem) destroy(h ecs.Handle) {
	e, ok := es.entities.Get(h)
	if !ok {
		return
	}
	releases := e.Release
	e.Release = nil
	es.entities.Remove(h)
	for i := len(releases) - 1; i >= 0; i-- {
		release := releases[i]
		if err := Guard(func() error { release(); return nil }); err != nil {
			log.Printf("entity: destroy %s: %v", h, err)
		}
	}
}

// Close destroys every entity immediately.
func (es *EntitySystem) Close() {
	es.pending = nil
	for _, h := range es.entities.Handles() {
		es.destroy(h)
	}
}
