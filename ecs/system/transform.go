package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/slotengine/ecs"
	"github.com/milk9111/slotengine/ecs/component"
)

// TransformSystem stores world poses. Every other system refers to
// transforms by handle.
type TransformSystem struct {
	transforms *ecs.Arena[component.Transform]
	fallback   component.Transform
}

func NewTransformSystem() *TransformSystem {
	return &TransformSystem{transforms: ecs.NewArena[component.Transform](64)}
}

func (ts *TransformSystem) Create(t component.Transform) ecs.Handle {
	return ts.transforms.Insert(t)
}

// Get returns the transform for h. Stale handles get a freshly reset default
// transform so callers racing a removal never see another record's data.
func (ts *TransformSystem) Get(h ecs.Handle) *component.Transform {
	if t, ok := ts.transforms.Get(h); ok {
		return t
	}
	ts.fallback = component.NewTransform(cp.Vector{})
	return &ts.fallback
}

// Lookup returns the transform for h and whether it is live.
func (ts *TransformSystem) Lookup(h ecs.Handle) (*component.Transform, bool) {
	return ts.transforms.Get(h)
}

func (ts *TransformSystem) Remove(h ecs.Handle) bool {
	return ts.transforms.Remove(h)
}

func (ts *TransformSystem) Len() int {
	return ts.transforms.Len()
}

// Close drops every transform.
func (ts *TransformSystem) Close() {
	ts.transforms.Clear()
}
