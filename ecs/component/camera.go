package component

import (
	"image"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/slotengine/ecs"
)

type Camera struct {
	Transform ecs.Handle
	Offset    cp.Vector
	Viewport  image.Rectangle
	// Centered makes the transform position the center of the view.
	Centered bool
	// FillTarget ignores Viewport and uses the whole output.
	FillTarget bool
}
