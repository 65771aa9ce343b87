package system

import (
	"slices"

	"github.com/milk9111/slotengine/ecs"
	"github.com/milk9111/slotengine/ecs/component"
)

// AnimationSystem steps frame animations and writes the current frame's
// source rectangle into the animated sprite.
type AnimationSystem struct {
	sprites    *SpriteSystem
	animations *ecs.Arena[component.AnimatedSprite]
	fallback   component.AnimatedSprite
}

func NewAnimationSystem(sprites *SpriteSystem) *AnimationSystem {
	return &AnimationSystem{
		sprites:    sprites,
		animations: ecs.NewArena[component.AnimatedSprite](16),
	}
}

// Create animates sprite with the clips in anim. The default clip, or the
// first one when Default is unset or unknown, becomes current and its first
// frame is shown right away. Nothing plays until Play or Resume is called.
func (as *AnimationSystem) Create(sprite ecs.Handle, anim component.AnimatedSprite) ecs.Handle {
	anim.Sprite = sprite
	anim.Animations = slices.Clone(anim.Animations)
	anim.Current = 0
	if anim.Default != "" {
		if i := anim.Index(anim.Default); i >= 0 {
			anim.Current = i
		}
	}
	if anim.Current < len(anim.Animations) {
		if frames := anim.Animations[anim.Current].Frames; len(frames) > 0 {
			if s, ok := as.sprites.Sprite(sprite); ok {
				s.Source = frames[0].Source
			}
		}
	}
	return as.animations.Insert(anim)
}

// Get returns the animation for h. Stale handles get an empty animation so
// Play and friends stay harmless.
func (as *AnimationSystem) Get(h ecs.Handle) *component.AnimatedSprite {
	if a, ok := as.animations.Get(h); ok {
		return a
	}
	as.fallback = component.AnimatedSprite{}
	return &as.fallback
}

func (as *AnimationSystem) Lookup(h ecs.Handle) (*component.AnimatedSprite, bool) {
	return as.animations.Get(h)
}

func (as *AnimationSystem) Remove(h ecs.Handle) bool {
	return as.animations.Remove(h)
}

func (as *AnimationSystem) Len() int {
	return as.animations.Len()
}

func (as *AnimationSystem) Update(dt float64) {
	as.animations.Each(func(_ ecs.Handle, a *component.AnimatedSprite) {
		if a.Current < 0 || a.Current >= len(a.Animations) {
			return
		}
		cur := &a.Animations[a.Current]
		if !cur.Playing || cur.CurrentFrame >= len(cur.Frames) {
			return
		}

		cur.FrameTime += dt
		if cur.Frames[cur.CurrentFrame].Duration <= cur.FrameTime {
			cur.FrameTime = 0
			cur.CurrentFrame++
			if cur.CurrentFrame >= len(cur.Frames) {
				if !cur.Loop {
					// One-shot clips keep showing their last frame.
					cur.CurrentFrame = len(cur.Frames) - 1
					cur.Playing = false
					return
				}
				cur.CurrentFrame = 0
			}
		}

		if s, ok := as.sprites.Sprite(a.Sprite); ok {
			s.Source = cur.Frames[cur.CurrentFrame].Source
		}
	})
}

// Close drops every animation.
func (as *AnimationSystem) Close() {
	as.animations.Clear()
}
