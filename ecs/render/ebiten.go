package render

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/slotengine/common"
)

// EbitenUpload uploads a decoded image to the GPU.
func EbitenUpload(img image.Image) Texture {
	return ebiten.NewImageFromImage(img)
}

// ScreenPresenter draws textures onto an ebiten screen image.
type ScreenPresenter struct {
	screen   *ebiten.Image
	viewport image.Rectangle
	target   *ebiten.Image
}

// NewScreenPresenter wraps screen. The viewport starts as the whole screen.
func NewScreenPresenter(screen *ebiten.Image) *ScreenPresenter {
	p := &ScreenPresenter{}
	p.Reset(screen)
	return p
}

// Reset points the presenter at a new frame's screen.
func (p *ScreenPresenter) Reset(screen *ebiten.Image) {
	if p == nil {
		return
	}
	p.screen = screen
	p.target = screen
	if screen != nil {
		p.viewport = screen.Bounds()
	}
}

func (p *ScreenPresenter) Bounds() image.Rectangle {
	if p == nil || p.screen == nil {
		return image.Rectangle{}
	}
	return p.screen.Bounds()
}

func (p *ScreenPresenter) SetViewport(r image.Rectangle) {
	if p == nil || p.screen == nil {
		return
	}
	r = r.Intersect(p.screen.Bounds())
	p.viewport = r
	if r == p.screen.Bounds() {
		p.target = p.screen
		return
	}
	if sub, ok := p.screen.SubImage(r).(*ebiten.Image); ok {
		p.target = sub
	}
}

func (p *ScreenPresenter) DrawTexture(tex Texture, src image.Rectangle, dst common.Rect, rotation float64, flipH, flipV bool) {
	if p == nil || p.target == nil || p.viewport.Empty() {
		return
	}
	img, ok := tex.(*ebiten.Image)
	if !ok || img == nil || src.Empty() {
		return
	}
	sub, ok := img.SubImage(src).(*ebiten.Image)
	if !ok {
		return
	}

	w := float64(src.Dx())
	h := float64(src.Dy())
	sx := dst.W / w
	sy := dst.H / h
	if flipH {
		sx = -sx
	}
	if flipV {
		sy = -sy
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-w/2, -h/2)
	op.GeoM.Scale(sx, sy)
	op.GeoM.Rotate(rotation * math.Pi / 180)
	// Sub-images share the parent's coordinate space.
	op.GeoM.Translate(
		float64(p.viewport.Min.X)+dst.X+dst.W/2,
		float64(p.viewport.Min.Y)+dst.Y+dst.H/2,
	)
	p.target.DrawImage(sub, op)
}
