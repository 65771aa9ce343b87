// Command animview plays the clips of an animation spec on a sprite sheet.
// Tab cycles clips, space pauses.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/milk9111/slotengine/assets"
	"github.com/milk9111/slotengine/common"
	"github.com/milk9111/slotengine/ecs"
	"github.com/milk9111/slotengine/ecs/component"
	"github.com/milk9111/slotengine/ecs/render"
	"github.com/milk9111/slotengine/engine"
	"github.com/milk9111/slotengine/prefabs"
)

const viewSize = 256

type viewer struct {
	world     *engine.World
	presenter *render.ScreenPresenter
	animation ecs.Handle
	clips     []string
	current   int
	paused    bool
}

func (v *viewer) Update() error {
	if len(v.clips) > 0 && inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		v.current = (v.current + 1) % len(v.clips)
		v.world.Animations.Get(v.animation).Play(v.clips[v.current])
		v.paused = false
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		a := v.world.Animations.Get(v.animation)
		if v.paused {
			a.Resume()
		} else {
			a.Pause()
		}
		v.paused = !v.paused
	}
	v.world.Update(1 / float64(ebiten.TPS()))
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{0x00, 0x00, 0x00, 0xff})
	v.presenter.Reset(screen)
	v.world.Draw(v.presenter)

	a := v.world.Animations.Get(v.animation)
	if a.Current >= 0 && a.Current < len(a.Animations) {
		cur := a.Animations[a.Current]
		ebitenutil.DebugPrint(screen, fmt.Sprintf("%s frame %d/%d", cur.Name, cur.CurrentFrame+1, len(cur.Frames)))
	}
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return viewSize, viewSize
}

func main() {
	sheet := flag.String("image", "hero.png", "sprite sheet in assets/")
	file := flag.String("anim", "hero_anim.yaml", "animation spec in prefabs/")
	scale := flag.Float64("scale", 8, "sprite scale")
	flag.Parse()

	spec, err := prefabs.LoadAnimation(prefabs.Default, *file)
	if err != nil {
		log.Fatal(err)
	}

	world := engine.NewWorld(engine.Options{
		Loader: render.NewLoader(assets.Overlay{Dir: assets.Dir}, render.EbitenUpload),
	})
	defer world.Close()

	t := component.NewTransform(common.Vec(viewSize/2, viewSize/2))
	t.Scale = common.Vec(*scale, *scale)
	transform := world.Transforms.Create(t)
	world.Cameras.Create(world.Transforms.Create(component.NewTransform(common.Vec(0, 0))), false, true, image.Rectangle{})

	sprite, err := world.Sprites.CreateSprite(transform, *sheet, 0)
	if err != nil {
		log.Fatal(err)
	}
	v := &viewer{
		world:     world,
		presenter: render.NewScreenPresenter(nil),
		animation: world.Animations.Create(sprite, spec.AnimatedSprite()),
	}
	for _, clip := range spec.Clips {
		v.clips = append(v.clips, clip.Name)
	}
	if len(v.clips) > 0 {
		first := spec.Default
		if first == "" {
			first = v.clips[0]
		}
		for i, name := range v.clips {
			if name == first {
				v.current = i
			}
		}
		world.Animations.Get(v.animation).Play(first)
	}

	// Center the first frame on the transform.
	if s, ok := world.Sprites.Sprite(sprite); ok {
		s.Offset = common.Vec(-float64(s.Source.Dx())**scale/2, -float64(s.Source.Dy())**scale/2)
	}

	ebiten.SetWindowSize(viewSize*2, viewSize*2)
	ebiten.SetWindowTitle("animview " + *file)
	if err := ebiten.RunGame(v); err != nil {
		log.Printf("run: %v", err)
	}
}
