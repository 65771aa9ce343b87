package render

import (
	"image"

	"github.com/milk9111/slotengine/common"
)

// Texture is an uploaded image. *ebiten.Image satisfies it.
type Texture interface {
	Bounds() image.Rectangle
}

// deallocator is implemented by textures holding GPU memory.
type deallocator interface {
	Deallocate()
}

// ImageTexture keeps a decoded image on the CPU. It is the upload result when
// no GPU is attached.
type ImageTexture struct {
	image.Image
}

// Presenter is the drawing surface the sprite system renders into.
type Presenter interface {
	// DrawTexture draws src of tex into dst, rotated by rotation degrees
	// around the center of dst.
	DrawTexture(tex Texture, src image.Rectangle, dst common.Rect, rotation float64, flipH, flipV bool)
	// Bounds is the full output rectangle.
	Bounds() image.Rectangle
	// SetViewport restricts drawing to r. Destination coordinates are relative
	// to r.Min.
	SetViewport(r image.Rectangle)
}
