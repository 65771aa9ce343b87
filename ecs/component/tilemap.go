package component

import "github.com/milk9111/slotengine/ecs"

// Tilemap remembers every record created for a map so it can be torn down.
type Tilemap struct {
	Transform ecs.Handle
	Batches   []ecs.Handle
	Colliders []ecs.Handle
	// Release runs after the map's records are removed.
	Release func()
}
