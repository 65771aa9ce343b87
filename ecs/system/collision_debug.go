package system

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/slotengine/common"
	"github.com/milk9111/slotengine/ecs"
	"github.com/milk9111/slotengine/ecs/component"
	"golang.org/x/image/colornames"
)

const debugVelocityScale = 0.1

// DrawCollisionDebug outlines grid cells, colliders and velocities for every
// camera. Overlapping colliders are drawn in red.
func DrawCollisionDebug(screen *ebiten.Image, collisions *CollisionSystem, physics *PhysicsSystem, cameras *CameraSystem) {
	if screen == nil || collisions == nil || cameras == nil {
		return
	}

	for _, cam := range cameras.Handles() {
		view, ok := cameras.View(cam, screen.Bounds())
		if !ok || view.Viewport.Empty() {
			continue
		}
		target, ok := screen.SubImage(view.Viewport).(*ebiten.Image)
		if !ok {
			continue
		}
		d := &collisionDebugDrawer{
			screen: target,
			origin: common.Vec(float64(view.Viewport.Min.X), float64(view.Viewport.Min.Y)),
			offset: view.Offset,
		}
		d.drawCells(collisions.Grid(), view.World)
		collisions.Each(func(h ecs.Handle, _ *component.Collider) {
			r, ok := collisions.WorldRect(h)
			if !ok || !r.Touches(view.World) {
				return
			}
			clr := colornames.Lime
			if collisions.CheckCollision(h) {
				clr = colornames.Red
			}
			d.drawRect(r, clr)
		})
		if physics != nil {
			physics.Each(func(_ ecs.Handle, obj *component.PhysicsObject) {
				t, ok := collisions.transforms.Lookup(obj.Transform)
				if !ok {
					return
				}
				d.drawLine(t.Position, t.Position.Add(obj.Velocity.Mult(debugVelocityScale)), colornames.Yellow)
			})
		}
	}

	text := fmt.Sprintf("colliders: %d\ncells: %d\nfps: %.0f", collisions.Len(), collisions.Grid().Occupied(), ebiten.ActualFPS())
	ebitenutil.DebugPrintAt(screen, text, 10, 10)
}

type collisionDebugDrawer struct {
	screen *ebiten.Image
	origin cp.Vector
	offset cp.Vector
}

func (d *collisionDebugDrawer) drawCells(grid *CollisionGrid, world common.Rect) {
	size := grid.CellSize()
	for id, bucket := range grid.cells {
		if len(bucket) == 0 {
			continue
		}
		o := grid.CellOrigin(id)
		r := common.R(o.X, o.Y, size, size)
		if !r.Touches(world) {
			continue
		}
		d.drawRect(r, colornames.Darkslategray)
	}
}

func (d *collisionDebugDrawer) drawRect(r common.Rect, clr color.Color) {
	p := d.toScreen(r.TopLeft())
	vector.StrokeRect(d.screen, float32(p.X), float32(p.Y), float32(r.W), float32(r.H), 1, clr, false)
}

func (d *collisionDebugDrawer) drawLine(a, b cp.Vector, clr color.Color) {
	pa := d.toScreen(a)
	pb := d.toScreen(b)
	vector.StrokeLine(d.screen, float32(pa.X), float32(pa.Y), float32(pb.X), float32(pb.Y), 1, clr, false)
}

// toScreen maps a world position into the camera's sub-image, which shares
// the screen's coordinate space.
func (d *collisionDebugDrawer) toScreen(v cp.Vector) cp.Vector {
	return v.Sub(d.offset).Add(d.origin)
}
