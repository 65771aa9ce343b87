package ecs

import "strconv"

// Handle addresses a record in an Arena. The low 32 bits hold the slot index
// plus one, the high 32 bits hold the slot generation. The zero Handle is
// never issued.
type Handle uint64

type slotIndex uint32
type generation uint32

const slotBits = 32

// Invalid is the zero handle. Lookups with it always fail.
const Invalid Handle = 0

func makeHandle(slot slotIndex, gen generation) Handle {
	return Handle(uint64(gen)<<slotBits | uint64(slot+1))
}

func (h Handle) slot() slotIndex {
	return slotIndex(uint32(h) - 1)
}

func (h Handle) generation() generation {
	return generation(uint32(uint64(h) >> slotBits))
}

// Slot returns the slot index the handle points at.
func (h Handle) Slot() uint32 {
	return uint32(h.slot())
}

// Generation returns the generation the handle was issued with.
func (h Handle) Generation() uint32 {
	return uint32(h.generation())
}

// Valid reports whether the handle could have been issued by an arena. It says
// nothing about whether the record is still alive.
func (h Handle) Valid() bool {
	return uint32(h) != 0
}

func (h Handle) String() string {
	if !h.Valid() {
		return "invalid"
	}
	return strconv.FormatUint(uint64(h.Slot()), 10) + "@" + strconv.FormatUint(uint64(h.Generation()), 10)
}

// HandleFromInt converts an integer that crossed the scripting boundary back
// into a handle.
func HandleFromInt(v int64) Handle {
	return Handle(uint64(v))
}

// Int returns the handle as an integer suitable for the scripting boundary.
func (h Handle) Int() int64 {
	return int64(h)
}
