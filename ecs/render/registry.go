package render

import (
	"errors"
	"fmt"
	"log"

	"github.com/milk9111/slotengine/ecs"
)

// Unavailable is returned in place of a texture handle when loading failed.
// Call sites skip the resource.
const Unavailable = ecs.Invalid

var ErrNoLoader = errors.New("render: no texture loader")

type textureEntry struct {
	name string
	tex  Texture
	refs int
}

// TextureCache owns every loaded texture. Each distinct name is loaded once
// and kept until its last reference is released.
type TextureCache struct {
	loader   Loader
	textures *ecs.Arena[textureEntry]
	byName   map[string]ecs.Handle
}

func NewTextureCache(loader Loader) *TextureCache {
	return &TextureCache{
		loader:   loader,
		textures: ecs.NewArena[textureEntry](16),
		byName:   make(map[string]ecs.Handle),
	}
}

// Acquire resolves name to a texture handle, loading it on first use, and
// takes one reference. Names are cleaned the way loaders clean them, so
// "./a.png" and "a.png" share one texture. On failure it logs and returns
// Unavailable.
func (c *TextureCache) Acquire(name string) (ecs.Handle, error) {
	if c == nil {
		return Unavailable, ErrNoLoader
	}
	name = cleanTexturePath(name)
	if h, ok := c.byName[name]; ok {
		if entry, ok := c.textures.Get(h); ok {
			entry.refs++
			return h, nil
		}
		delete(c.byName, name)
	}
	if c.loader == nil {
		log.Printf("render: load texture %q: %v", name, ErrNoLoader)
		return Unavailable, ErrNoLoader
	}

	tex, err := c.loader.Load(name)
	if err != nil {
		log.Printf("render: load texture %q: %v", name, err)
		return Unavailable, fmt.Errorf("render: acquire %s: %w", name, err)
	}
	h := c.textures.Insert(textureEntry{name: name, tex: tex, refs: 1})
	c.byName[name] = h
	return h, nil
}

// Release drops one reference and evicts the texture when none are left. It
// reports whether the texture was evicted.
func (c *TextureCache) Release(h ecs.Handle) bool {
	if c == nil {
		return false
	}
	entry, ok := c.textures.Get(h)
	if !ok {
		return false
	}
	entry.refs--
	if entry.refs > 0 {
		return false
	}
	c.evict(h, entry)
	return true
}

func (c *TextureCache) evict(h ecs.Handle, entry *textureEntry) {
	name, tex := entry.name, entry.tex
	if cur, ok := c.byName[name]; ok && cur == h {
		delete(c.byName, name)
	}
	c.textures.Remove(h)
	if d, ok := tex.(deallocator); ok {
		d.Deallocate()
	}
}

// Reload decodes name again and swaps the texture in place, keeping handles
// and reference counts. Names that are not cached are ignored.
func (c *TextureCache) Reload(name string) error {
	if c == nil || c.loader == nil {
		return ErrNoLoader
	}
	h, ok := c.byName[name]
	if !ok {
		return nil
	}
	entry, ok := c.textures.Get(h)
	if !ok {
		return nil
	}
	tex, err := c.loader.Load(name)
	if err != nil {
		return fmt.Errorf("render: reload %s: %w", name, err)
	}
	old := entry.tex
	entry.tex = tex
	if d, ok := old.(deallocator); ok {
		d.Deallocate()
	}
	return nil
}

// Get returns the texture for h, or nil for stale handles.
func (c *TextureCache) Get(h ecs.Handle) Texture {
	if c == nil {
		return nil
	}
	entry, ok := c.textures.Get(h)
	if !ok {
		return nil
	}
	return entry.tex
}

// Lookup returns the handle of an already loaded texture without taking a
// reference.
func (c *TextureCache) Lookup(name string) (ecs.Handle, bool) {
	if c == nil {
		return Unavailable, false
	}
	h, ok := c.byName[cleanTexturePath(name)]
	if !ok || !c.textures.Contains(h) {
		return Unavailable, false
	}
	return h, true
}

// Refs returns the current reference count of h.
func (c *TextureCache) Refs(h ecs.Handle) int {
	if c == nil {
		return 0
	}
	entry, ok := c.textures.Get(h)
	if !ok {
		return 0
	}
	return entry.refs
}

// Name returns the file name h was loaded from.
func (c *TextureCache) Name(h ecs.Handle) string {
	if c == nil {
		return ""
	}
	entry, ok := c.textures.Get(h)
	if !ok {
		return ""
	}
	return entry.name
}

// Len returns the number of resident textures.
func (c *TextureCache) Len() int {
	if c == nil {
		return 0
	}
	return c.textures.Len()
}

// Close evicts every texture regardless of reference counts.
func (c *TextureCache) Close() {
	if c == nil {
		return
	}
	for _, h := range c.textures.Handles() {
		if entry, ok := c.textures.Get(h); ok {
			c.evict(h, entry)
		}
	}
}
