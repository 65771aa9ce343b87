package system

import (
	"errors"
	"image"

	"github.com/milk9111/slotengine/common"
	"github.com/milk9111/slotengine/ecs/render"
	"github.com/milk9111/slotengine/levels"
)

type fakeTexture struct {
	name        string
	bounds      image.Rectangle
	deallocated int
}

func (t *fakeTexture) Bounds() image.Rectangle { return t.bounds }
func (t *fakeTexture) Deallocate()             { t.deallocated++ }

type fakeLoader struct {
	loads   map[string]int
	created []*fakeTexture
	size    image.Point
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{loads: map[string]int{}, size: image.Pt(16, 8)}
}

func (l *fakeLoader) Load(name string) (render.Texture, error) {
	l.loads[name]++
	if name == "missing.png" {
		return nil, errors.New("missing")
	}
	tex := &fakeTexture{name: name, bounds: image.Rectangle{Max: l.size}}
	l.created = append(l.created, tex)
	return tex, nil
}

type drawCall struct {
	texture  string
	src      image.Rectangle
	dst      common.Rect
	rotation float64
	flipH    bool
	flipV    bool
	viewport image.Rectangle
}

type fakePresenter struct {
	bounds   image.Rectangle
	viewport image.Rectangle
	calls    []drawCall
}

func newFakePresenter(w, h int) *fakePresenter {
	r := image.Rect(0, 0, w, h)
	return &fakePresenter{bounds: r, viewport: r}
}

func (p *fakePresenter) Bounds() image.Rectangle       { return p.bounds }
func (p *fakePresenter) SetViewport(r image.Rectangle) { p.viewport = r }

func (p *fakePresenter) DrawTexture(tex render.Texture, src image.Rectangle, dst common.Rect, rotation float64, flipH, flipV bool) {
	name := ""
	if ft, ok := tex.(*fakeTexture); ok {
		name = ft.name
	}
	p.calls = append(p.calls, drawCall{
		texture:  name,
		src:      src,
		dst:      dst,
		rotation: rotation,
		flipH:    flipH,
		flipV:    flipV,
		viewport: p.viewport,
	})
}

type fakeHost struct {
	objects []levels.Object
	evals   []string
	calls   []string
	// panics on objects of this type and on every Eval when set
	panicOn string
}

func (h *fakeHost) Call(name string, args ...any) (any, error) {
	h.calls = append(h.calls, name)
	return nil, nil
}

func (h *fakeHost) Instantiate(obj levels.Object) error {
	h.objects = append(h.objects, obj)
	if h.panicOn != "" && obj.Type == h.panicOn {
		panic("script blew up")
	}
	if obj.Type == "Broken" {
		return errors.New("broken")
	}
	return nil
}

func (h *fakeHost) Eval(src string) error {
	h.evals = append(h.evals, src)
	if h.panicOn != "" {
		panic("eval blew up")
	}
	return nil
}

// rig wires the drawing systems the way the engine does.
type rig struct {
	loader     *fakeLoader
	transforms *TransformSystem
	collisions *CollisionSystem
	cameras    *CameraSystem
	sprites    *SpriteSystem
}

func newRig() *rig {
	r := &rig{loader: newFakeLoader()}
	r.transforms = NewTransformSystem()
	r.collisions = NewCollisionSystem(r.transforms, 100)
	r.cameras = NewCameraSystem(r.transforms)
	r.sprites = NewSpriteSystem(r.transforms, r.cameras, render.NewTextureCache(r.loader))
	return r
}
