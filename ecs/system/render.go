package system

import (
	"image"
	"log"
	"math"
	"slices"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/slotengine/common"
	"github.com/milk9111/slotengine/ecs"
	"github.com/milk9111/slotengine/ecs/component"
	"github.com/milk9111/slotengine/ecs/render"
)

// drawRef locates a sprite or batch inside its layer bucket.
type drawRef struct {
	texture ecs.Handle
	entry   ecs.Handle
	layer   uint8
}

// textureBucket holds everything one layer draws with one texture.
type textureBucket struct {
	texture ecs.Handle
	sprites *ecs.Arena[component.Sprite]
	batches *ecs.Arena[component.Batch]
}

func (b *textureBucket) empty() bool {
	return b.sprites.Len() == 0 && b.batches.Len() == 0
}

// drawLayer keeps its buckets in the order their textures were first used.
type drawLayer struct {
	buckets []*textureBucket
}

func (l *drawLayer) bucket(texture ecs.Handle) *textureBucket {
	for _, b := range l.buckets {
		if b.texture == texture {
			return b
		}
	}
	return nil
}

func (l *drawLayer) ensure(texture ecs.Handle) *textureBucket {
	if b := l.bucket(texture); b != nil {
		return b
	}
	b := &textureBucket{
		texture: texture,
		sprites: ecs.NewArena[component.Sprite](8),
		batches: ecs.NewArena[component.Batch](2),
	}
	l.buckets = append(l.buckets, b)
	return b
}

func (l *drawLayer) prune(b *textureBucket) {
	if !b.empty() {
		return
	}
	l.buckets = slices.DeleteFunc(l.buckets, func(other *textureBucket) bool { return other == b })
}

// SpriteSystem draws sprites and batches in 256 ordered layers. Textures are
// shared through a render.TextureCache and released with their last user.
type SpriteSystem struct {
	transforms *TransformSystem
	cameras    *CameraSystem
	textures   *render.TextureCache

	layers  [component.LayerCount]drawLayer
	sprites *ecs.Arena[drawRef]
	batches *ecs.Arena[drawRef]
}

func NewSpriteSystem(transforms *TransformSystem, cameras *CameraSystem, textures *render.TextureCache) *SpriteSystem {
	return &SpriteSystem{
		transforms: transforms,
		cameras:    cameras,
		textures:   textures,
		sprites:    ecs.NewArena[drawRef](64),
		batches:    ecs.NewArena[drawRef](16),
	}
}

func (ss *SpriteSystem) Textures() *render.TextureCache {
	return ss.textures
}

// CreateSprite draws the whole of file at transform on layer. When the
// texture cannot be loaded it returns render.Unavailable and the error.
func (ss *SpriteSystem) CreateSprite(transform ecs.Handle, file string, layer uint8) (ecs.Handle, error) {
	tex, err := ss.textures.Acquire(file)
	if err != nil {
		return render.Unavailable, err
	}
	var source image.Rectangle
	if t := ss.textures.Get(tex); t != nil {
		source = t.Bounds()
	}
	b := ss.layers[layer].ensure(tex)
	entry := b.sprites.Insert(component.Sprite{Transform: transform, Source: source})
	return ss.sprites.Insert(drawRef{texture: tex, entry: entry, layer: layer}), nil
}

func (ss *SpriteSystem) Sprite(h ecs.Handle) (*component.Sprite, bool) {
	ref, ok := ss.sprites.Get(h)
	if !ok {
		return nil, false
	}
	b := ss.layers[ref.layer].bucket(ref.texture)
	if b == nil {
		return nil, false
	}
	return b.sprites.Get(ref.entry)
}

// RemoveSprite erases the sprite and releases its texture.
func (ss *SpriteSystem) RemoveSprite(h ecs.Handle) bool {
	ref, ok := ss.sprites.Get(h)
	if !ok {
		return false
	}
	r := *ref
	ss.sprites.Remove(h)

	ss.textures.Release(r.texture)
	layer := &ss.layers[r.layer]
	b := layer.bucket(r.texture)
	if b == nil || !b.sprites.Remove(r.entry) {
		log.Printf("sprite: %s missing from layer %d", h, r.layer)
		return true
	}
	layer.prune(b)
	return true
}

// CreateBatch draws sprites relative to transform with one texture. boundary
// is relative to the transform; leave it empty to disable culling.
func (ss *SpriteSystem) CreateBatch(transform ecs.Handle, file string, layer uint8, sprites []component.BatchSprite, boundary image.Rectangle) (ecs.Handle, error) {
	tex, err := ss.textures.Acquire(file)
	if err != nil {
		return render.Unavailable, err
	}
	b := ss.layers[layer].ensure(tex)
	entry := b.batches.Insert(component.Batch{
		Transform: transform,
		Boundary:  boundary,
		Sprites:   slices.Clone(sprites),
	})
	return ss.batches.Insert(drawRef{texture: tex, entry: entry, layer: layer}), nil
}

func (ss *SpriteSystem) Batch(h ecs.Handle) (*component.Batch, bool) {
	ref, ok := ss.batches.Get(h)
	if !ok {
		return nil, false
	}
	b := ss.layers[ref.layer].bucket(ref.texture)
	if b == nil {
		return nil, false
	}
	return b.batches.Get(ref.entry)
}

// RemoveBatch erases the batch and releases its texture.
func (ss *SpriteSystem) RemoveBatch(h ecs.Handle) bool {
	ref, ok := ss.batches.Get(h)
	if !ok {
		return false
	}
	r := *ref
	ss.batches.Remove(h)

	ss.textures.Release(r.texture)
	layer := &ss.layers[r.layer]
	b := layer.bucket(r.texture)
	if b == nil || !b.batches.Remove(r.entry) {
		log.Printf("sprite: %s missing from layer %d", h, r.layer)
		return true
	}
	layer.prune(b)
	return true
}

// SpriteTexture returns the texture a sprite draws with, or nil.
func (ss *SpriteSystem) SpriteTexture(h ecs.Handle) render.Texture {
	ref, ok := ss.sprites.Get(h)
	if !ok {
		return nil
	}
	return ss.textures.Get(ref.texture)
}

// BatchTexture returns the texture a batch draws with, or nil.
func (ss *SpriteSystem) BatchTexture(h ecs.Handle) render.Texture {
	ref, ok := ss.batches.Get(h)
	if !ok {
		return nil
	}
	return ss.textures.Get(ref.texture)
}

// SpriteCount returns the number of live sprites.
func (ss *SpriteSystem) SpriteCount() int {
	return ss.sprites.Len()
}

// BatchCount returns the number of live batches.
func (ss *SpriteSystem) BatchCount() int {
	return ss.batches.Len()
}

// Buckets returns the number of texture buckets on layer.
func (ss *SpriteSystem) Buckets(layer uint8) int {
	return len(ss.layers[layer].buckets)
}

// Draw renders every layer once per camera. The presenter's viewport is
// restored to its full bounds afterwards.
func (ss *SpriteSystem) Draw(p render.Presenter) {
	if p == nil {
		return
	}
	full := p.Bounds()
	for _, cam := range ss.cameras.Handles() {
		view, ok := ss.cameras.View(cam, full)
		if !ok {
			continue
		}
		p.SetViewport(view.Viewport)
		ss.drawView(p, view)
	}
	p.SetViewport(full)
}

func (ss *SpriteSystem) drawView(p render.Presenter, view View) {
	for i := range ss.layers {
		for _, b := range ss.layers[i].buckets {
			tex := ss.textures.Get(b.texture)
			if tex == nil {
				continue
			}
			b.sprites.Each(func(_ ecs.Handle, s *component.Sprite) {
				t, ok := ss.transforms.Lookup(s.Transform)
				if !ok {
					return
				}
				drawOne(p, tex, view, t, s.Offset, s.Source, t.FlipH, t.FlipV)
			})
			b.batches.Each(func(_ ecs.Handle, batch *component.Batch) {
				t, ok := ss.transforms.Lookup(batch.Transform)
				if !ok {
					return
				}
				if !batch.Boundary.Empty() {
					bounds := common.RectFromImage(batch.Boundary).Translate(t.Position)
					if !view.World.Touches(bounds) {
						return
					}
				}
				for _, single := range batch.Sprites {
					drawOne(p, tex, view, t, single.Offset, single.Source, single.FlipH, single.FlipV)
				}
			})
		}
	}
}

func drawOne(p render.Presenter, tex render.Texture, view View, t *component.Transform, offset cp.Vector, src image.Rectangle, flipH, flipV bool) {
	dst := common.Rect{
		X: math.Round(t.Position.X + offset.X - view.Offset.X),
		Y: math.Round(t.Position.Y + offset.Y - view.Offset.Y),
		W: math.Round(t.Scale.X * float64(src.Dx())),
		H: math.Round(t.Scale.Y * float64(src.Dy())),
	}
	p.DrawTexture(tex, src, dst, t.Rotation, flipH, flipV)
}

// Close removes every sprite and batch, releasing their textures.
func (ss *SpriteSystem) Close() {
	for _, h := range ss.sprites.Handles() {
		ss.RemoveSprite(h)
	}
	for _, h := range ss.batches.Handles() {
		ss.RemoveBatch(h)
	}
}
