package component

import (
	"image"

	"github.com/milk9111/slotengine/ecs"
)

// Frame shows Source for Duration seconds.
type Frame struct {
	Duration float64
	Source   image.Rectangle
}

type Animation struct {
	Name         string
	Frames       []Frame
	CurrentFrame int
	FrameTime    float64
	Loop         bool
	Playing      bool
}

// AnimatedSprite drives the source rectangle of a sprite.
type AnimatedSprite struct {
	Sprite     ecs.Handle
	Animations []Animation
	Current    int
	Default    string
}

// Play rewinds every animation and starts the one called name. Unknown names
// leave everything stopped.
func (a *AnimatedSprite) Play(name string) {
	a.Stop()
	for i := range a.Animations {
		if a.Animations[i].Name == name {
			a.Animations[i].Playing = true
			a.Current = i
			return
		}
	}
}

func (a *AnimatedSprite) Pause() {
	if a.Current < 0 || a.Current >= len(a.Animations) {
		return
	}
	a.Animations[a.Current].Playing = false
}

func (a *AnimatedSprite) Resume() {
	if a.Current < 0 || a.Current >= len(a.Animations) {
		return
	}
	a.Animations[a.Current].Playing = true
}

func (a *AnimatedSprite) Stop() {
	for i := range a.Animations {
		a.Animations[i].CurrentFrame = 0
		a.Animations[i].FrameTime = 0
		a.Animations[i].Playing = false
	}
}

// Index returns the position of the animation called name, or -1.
func (a *AnimatedSprite) Index(name string) int {
	for i := range a.Animations {
		if a.Animations[i].Name == name {
			return i
		}
	}
	return -1
}
