package system

import (
	"github.com/milk9111/slotengine/common"
	"github.com/milk9111/slotengine/ecs"
	"github.com/milk9111/slotengine/ecs/component"
)

// CollisionSystem stores colliders and answers overlap queries through a
// CollisionGrid that is rebuilt on every Update.
type CollisionSystem struct {
	transforms *TransformSystem
	colliders  *ecs.Arena[component.Collider]
	grid       *CollisionGrid

	cells      []int64
	candidates []ecs.Handle
}

func NewCollisionSystem(transforms *TransformSystem, cellSize float64) *CollisionSystem {
	return &CollisionSystem{
		transforms: transforms,
		colliders:  ecs.NewArena[component.Collider](64),
		grid:       NewCollisionGrid(cellSize),
	}
}

// Create adds a collider. It is filed in the grid right away so queries made
// before the next rebuild already see it.
func (cs *CollisionSystem) Create(transform ecs.Handle, aabb common.Rect, mask uint64) ecs.Handle {
	h := cs.colliders.Insert(component.Collider{Transform: transform, AABB: aabb, Mask: mask})
	if r, ok := cs.WorldRect(h); ok {
		cs.grid.Insert(h, r)
	}
	return h
}

func (cs *CollisionSystem) Get(h ecs.Handle) (*component.Collider, bool) {
	return cs.colliders.Get(h)
}

// Remove deletes the collider and purges it from the grid.
func (cs *CollisionSystem) Remove(h ecs.Handle) bool {
	if !cs.colliders.Remove(h) {
		return false
	}
	cs.grid.Remove(h)
	return true
}

// Update rebuilds the grid from the current transforms.
func (cs *CollisionSystem) Update(dt float64) {
	_ = dt
	cs.grid.Clear()
	cs.colliders.Each(func(h ecs.Handle, c *component.Collider) {
		t, ok := cs.transforms.Lookup(c.Transform)
		if !ok {
			return
		}
		cs.grid.Insert(h, c.AABB.Translate(t.Position))
	})
}

// WorldRect returns the collider's box moved to its transform's position.
// Scale and rotation do not apply to colliders. Colliders whose transform is
// gone report false and never collide.
func (cs *CollisionSystem) WorldRect(h ecs.Handle) (common.Rect, bool) {
	c, ok := cs.colliders.Get(h)
	if !ok {
		return common.Rect{}, false
	}
	t, ok := cs.transforms.Lookup(c.Transform)
	if !ok {
		return common.Rect{}, false
	}
	return c.AABB.Translate(t.Position), true
}

// CheckCollision reports whether h overlaps any other collider with a
// matching mask. Stale handles never collide.
func (cs *CollisionSystem) CheckCollision(h ecs.Handle) bool {
	hit := false
	cs.visit(h, func(ecs.Handle) bool {
		hit = true
		return false
	})
	return hit
}

// Overlapping returns every collider h currently overlaps.
func (cs *CollisionSystem) Overlapping(h ecs.Handle) []ecs.Handle {
	var out []ecs.Handle
	cs.visit(h, func(other ecs.Handle) bool {
		out = append(out, other)
		return true
	})
	return out
}

func (cs *CollisionSystem) visit(h ecs.Handle, fn func(other ecs.Handle) bool) {
	c, ok := cs.colliders.Get(h)
	if !ok {
		return
	}
	r, ok := cs.WorldRect(h)
	if !ok {
		return
	}
	cs.scan(r, c.Mask, h, fn)
}

// Query returns the colliders overlapping rect whose mask matches mask.
func (cs *CollisionSystem) Query(rect common.Rect, mask uint64) []ecs.Handle {
	var out []ecs.Handle
	cs.scan(rect, mask, ecs.Invalid, func(other ecs.Handle) bool {
		out = append(out, other)
		return true
	})
	return out
}

func (cs *CollisionSystem) scan(r common.Rect, mask uint64, self ecs.Handle, fn func(ecs.Handle) bool) {
	cs.cells = cs.grid.CornerCells(r, cs.cells[:0])
	cs.candidates = cs.grid.Candidates(cs.cells, self, cs.candidates[:0])
	// fn may re-enter the system, so work on a private copy.
	candidates := append([]ecs.Handle(nil), cs.candidates...)
	for _, other := range candidates {
		oc, ok := cs.colliders.Get(other)
		if !ok || !component.MasksMatch(mask, oc.Mask) {
			continue
		}
		or, ok := cs.WorldRect(other)
		if !ok || !r.Overlaps(or) {
			continue
		}
		if !fn(other) {
			return
		}
	}
}

// Each visits every collider.
func (cs *CollisionSystem) Each(fn func(ecs.Handle, *component.Collider)) {
	cs.colliders.Each(fn)
}

func (cs *CollisionSystem) Grid() *CollisionGrid {
	return cs.grid
}

func (cs *CollisionSystem) Len() int {
	return cs.colliders.Len()
}

// Close drops every collider and empties the grid.
func (cs *CollisionSystem) Close() {
	cs.colliders.Clear()
	cs.grid.Clear()
}
