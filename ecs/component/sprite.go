package component

import (
	"image"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/slotengine/ecs"
)

// LayerCount is the number of ordered draw layers.
const LayerCount = 256

type Sprite struct {
	Transform ecs.Handle
	Offset    cp.Vector
	Source    image.Rectangle
}

// BatchSprite is one element of a Batch, positioned relative to the batch
// transform.
type BatchSprite struct {
	Source image.Rectangle
	Offset cp.Vector
	FlipH  bool
	FlipV  bool
}

// Batch draws many sprites sharing a transform and texture. A non-empty
// Boundary, relative to the transform, enables camera culling.
type Batch struct {
	Transform ecs.Handle
	Boundary  image.Rectangle
	Sprites   []BatchSprite
}
