package system

import (
	"image"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/slotengine/common"
	"github.com/milk9111/slotengine/ecs"
	"github.com/milk9111/slotengine/ecs/component"
)

// View is what a camera sees for one frame.
type View struct {
	// Viewport is the output rectangle the camera draws into.
	Viewport image.Rectangle
	// Offset is subtracted from world positions to get viewport positions.
	Offset cp.Vector
	// World is the visible world rectangle, used for culling.
	World common.Rect
}

type CameraSystem struct {
	transforms *TransformSystem
	cameras    *ecs.Arena[component.Camera]
}

func NewCameraSystem(transforms *TransformSystem) *CameraSystem {
	return &CameraSystem{
		transforms: transforms,
		cameras:    ecs.NewArena[component.Camera](4),
	}
}

func (cs *CameraSystem) Create(transform ecs.Handle, centered, fillTarget bool, viewport image.Rectangle) ecs.Handle {
	return cs.cameras.Insert(component.Camera{
		Transform:  transform,
		Viewport:   viewport,
		Centered:   centered,
		FillTarget: fillTarget,
	})
}

func (cs *CameraSystem) Get(h ecs.Handle) (*component.Camera, bool) {
	return cs.cameras.Get(h)
}

func (cs *CameraSystem) Remove(h ecs.Handle) bool {
	return cs.cameras.Remove(h)
}

// Handles returns the cameras in draw order.
func (cs *CameraSystem) Handles() []ecs.Handle {
	return cs.cameras.Handles()
}

func (cs *CameraSystem) Len() int {
	return cs.cameras.Len()
}

// View computes the view of camera h when drawing into target. Cameras with
// FillTarget set, or without a viewport, use all of target. A stale
// transform reads as the origin.
func (cs *CameraSystem) View(h ecs.Handle, target image.Rectangle) (View, bool) {
	c, ok := cs.cameras.Get(h)
	if !ok {
		return View{}, false
	}
	viewport := c.Viewport
	if c.FillTarget || viewport.Empty() {
		viewport = target
	}

	offset := cs.transforms.Get(c.Transform).Position.Add(c.Offset)
	size := common.Vec(float64(viewport.Dx()), float64(viewport.Dy()))
	world := common.Rect{X: offset.X, Y: offset.Y, W: size.X, H: size.Y}
	if c.Centered {
		half := size.Mult(0.5)
		offset = offset.Sub(half)
		world = world.Translate(half.Neg())
	}
	return View{Viewport: viewport, Offset: offset, World: world}, true
}

// Close drops every camera.
func (cs *CameraSystem) Close() {
	cs.cameras.Clear()
}
