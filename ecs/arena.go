package ecs

// slotEntry maps a slot to its position in the dense arrays. dense is -1 while
// the slot is free.
type slotEntry struct {
	dense int
	gen   generation
}

// Arena is a dense, generation-checked store. Values live contiguously in
// insertion order until a removal swaps the last value into the hole.
//
// Pointers returned by Get and passed to Each stay valid until the next Insert
// or Remove on the same arena.
type Arena[T any] struct {
	values []T
	owners []slotIndex
	slots  []slotEntry
	free   []slotIndex
}

// NewArena creates an arena with room for capacity values.
func NewArena[T any](capacity int) *Arena[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Arena[T]{
		values: make([]T, 0, capacity),
		owners: make([]slotIndex, 0, capacity),
		slots:  make([]slotEntry, 0, capacity),
	}
}

// Insert stores v and returns its handle.
func (a *Arena[T]) Insert(v T) Handle {
	var slot slotIndex
	if n := len(a.free); n > 0 {
		slot = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		slot = slotIndex(len(a.slots))
		a.slots = append(a.slots, slotEntry{dense: -1})
	}

	a.values = append(a.values, v)
	a.owners = append(a.owners, slot)
	a.slots[slot].dense = len(a.values) - 1
	return makeHandle(slot, a.slots[slot].gen)
}

func (a *Arena[T]) index(h Handle) (int, bool) {
	if a == nil || !h.Valid() {
		return -1, false
	}
	s := h.slot()
	if int(s) >= len(a.slots) {
		return -1, false
	}
	entry := a.slots[s]
	if entry.dense < 0 || entry.gen != h.generation() {
		return -1, false
	}
	return entry.dense, true
}

// Contains reports whether h refers to a live value.
func (a *Arena[T]) Contains(h Handle) bool {
	_, ok := a.index(h)
	return ok
}

// Get returns a pointer to the value for h, or nil and false when the handle
// is stale or unknown.
func (a *Arena[T]) Get(h Handle) (*T, bool) {
	idx, ok := a.index(h)
	if !ok {
		return nil, false
	}
	return &a.values[idx], true
}

// Remove deletes the value for h and bumps the slot generation so h and every
// copy of it fail lookup from now on. It returns false for stale handles.
func (a *Arena[T]) Remove(h Handle) bool {
	idx, ok := a.index(h)
	if !ok {
		return false
	}
	slot := h.slot()
	last := len(a.values) - 1
	lastSlot := a.owners[last]

	a.values[idx] = a.values[last]
	a.owners[idx] = lastSlot
	a.slots[lastSlot].dense = idx

	var zero T
	a.values[last] = zero
	a.values = a.values[:last]
	a.owners = a.owners[:last]

	a.slots[slot].dense = -1
	a.slots[slot].gen++
	// A wrapped generation would make ancient handles valid again; retire the slot.
	if a.slots[slot].gen != 0 {
		a.free = append(a.free, slot)
	}
	return true
}

// Len returns the number of live values.
func (a *Arena[T]) Len() int {
	if a == nil {
		return 0
	}
	return len(a.values)
}

// Each calls fn for every live value in dense order. Removing the visited
// value from inside fn is safe; the value swapped into its place is skipped.
func (a *Arena[T]) Each(fn func(h Handle, v *T)) {
	if a == nil || fn == nil {
		return
	}
	for i := 0; i < len(a.values); i++ {
		slot := a.owners[i]
		fn(makeHandle(slot, a.slots[slot].gen), &a.values[i])
	}
}

// Handles returns a snapshot of every live handle. Callers that run foreign
// callbacks while iterating use it and re-check each handle with Get.
func (a *Arena[T]) Handles() []Handle {
	if a == nil || len(a.values) == 0 {
		return nil
	}
	out := make([]Handle, len(a.owners))
	for i, slot := range a.owners {
		out[i] = makeHandle(slot, a.slots[slot].gen)
	}
	return out
}

// Clear removes every value. All outstanding handles become stale.
func (a *Arena[T]) Clear() {
	if a == nil {
		return
	}
	for _, h := range a.Handles() {
		a.Remove(h)
	}
}
