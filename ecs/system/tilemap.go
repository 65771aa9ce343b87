package system

import (
	"image"
	"log"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/slotengine/common"
	"github.com/milk9111/slotengine/ecs"
	"github.com/milk9111/slotengine/ecs/component"
	"github.com/milk9111/slotengine/levels"
	"github.com/milk9111/slotengine/script"
)

// TilemapSystem turns parsed maps into batches and colliders and asks the
// script host to create the map's typed objects.
type TilemapSystem struct {
	sprites    *SpriteSystem
	collisions *CollisionSystem
	host       script.Host
	maps       *ecs.Arena[component.Tilemap]
}

func NewTilemapSystem(sprites *SpriteSystem, collisions *CollisionSystem) *TilemapSystem {
	return &TilemapSystem{
		sprites:    sprites,
		collisions: collisions,
		host:       script.NopHost{},
		maps:       ecs.NewArena[component.Tilemap](2),
	}
}

// SetHost sets the host objects are instantiated with. nil restores the
// no-op host.
func (ts *TilemapSystem) SetHost(h script.Host) {
	if h == nil {
		h = script.NopHost{}
	}
	ts.host = h
}

// Create builds m at transform. Every chunk becomes one batch on the layer's
// z layer; per-tile collision boxes become colliders with the layer's mask.
// Chunks whose texture fails to load are skipped.
func (ts *TilemapSystem) Create(transform ecs.Handle, m *levels.Map) ecs.Handle {
	tm := component.Tilemap{Transform: transform}
	if m == nil {
		return ts.maps.Insert(tm)
	}

	for li, layer := range m.Layers {
		z := layer.Z(li)
		mask := layer.Mask()
		for ti, chunks := range layer.Chunks {
			if ti >= len(m.Tilesets) {
				break
			}
			tileset := m.Tilesets[ti]
			if tileset.Columns <= 0 || tileset.TileW <= 0 || tileset.TileH <= 0 {
				log.Printf("tilemap: layer=%d tileset=%q has no usable geometry", li, tileset.Name)
				continue
			}
			for _, chunk := range chunks {
				ts.buildChunk(&tm, transform, tileset, chunk, z, mask)
			}
		}
	}

	for _, objLayer := range m.ObjectLayers {
		for _, obj := range objLayer.Objects {
			if obj.Type == "" {
				continue
			}
			obj.X += objLayer.OffsetX
			obj.Y += objLayer.OffsetY
			if err := Guard(func() error { return ts.host.Instantiate(obj) }); err != nil {
				log.Printf("tilemap: object=%q type=%s: %v", obj.Name, obj.Type, err)
			}
		}
	}

	for _, key := range []string{"instance", "eval"} {
		src := m.Properties[key]
		if src == "" {
			continue
		}
		if err := Guard(func() error { return ts.host.Eval(src) }); err != nil {
			log.Printf("tilemap: property=%s: %v", key, err)
		}
	}

	return ts.maps.Insert(tm)
}

func (ts *TilemapSystem) buildChunk(tm *component.Tilemap, transform ecs.Handle, tileset levels.Tileset, chunk levels.Chunk, z uint8, mask uint64) {
	tw, th := tileset.TileW, tileset.TileH
	origin := common.Vec(float64(chunk.X*tw), float64(chunk.Y*th))

	sprites := make([]component.BatchSprite, 0, len(chunk.Tiles))
	for i, tile := range chunk.Tiles {
		if tile.Empty || chunk.Width <= 0 {
			continue
		}
		sx := tileset.Margin + (tile.ID%tileset.Columns)*(tw+2*tileset.Margin+tileset.Spacing)
		sy := tileset.Margin + (tile.ID/tileset.Columns)*(th+2*tileset.Margin+tileset.Spacing)
		pos := origin.Add(cp.Vector{X: float64((i % chunk.Width) * tw), Y: float64((i / chunk.Width) * th)})

		for _, r := range tileset.Colliders[tile.ID] {
			tm.Colliders = append(tm.Colliders, ts.collisions.Create(transform, r.Translate(pos), mask))
		}
		sprites = append(sprites, component.BatchSprite{
			Source: image.Rect(sx, sy, sx+tw, sy+th),
			Offset: pos,
			FlipH:  tile.FlipH,
			FlipV:  tile.FlipV,
		})
	}
	if len(sprites) == 0 {
		return
	}

	corner := image.Pt(chunk.X*tw, chunk.Y*th)
	boundary := image.Rectangle{Min: corner, Max: corner.Add(image.Pt(chunk.Width*tw, chunk.Height*th))}
	batch, err := ts.sprites.CreateBatch(transform, tileset.Image, z, sprites, boundary)
	if err != nil {
		return
	}
	tm.Batches = append(tm.Batches, batch)
}

func (ts *TilemapSystem) Get(h ecs.Handle) (*component.Tilemap, bool) {
	return ts.maps.Get(h)
}

// Remove deletes the map together with every batch and collider it created,
// then runs the map's Release hook.
func (ts *TilemapSystem) Remove(h ecs.Handle) bool {
	tm, ok := ts.maps.Get(h)
	if !ok {
		return false
	}
	for _, b := range tm.Batches {
		ts.sprites.RemoveBatch(b)
	}
	for _, c := range tm.Colliders {
		ts.collisions.Remove(c)
	}
	if release := tm.Release; release != nil {
		if err := Guard(func() error { release(); return nil }); err != nil {
			log.Printf("tilemap: release map=%s: %v", h, err)
		}
	}
	return ts.maps.Remove(h)
}

func (ts *TilemapSystem) Len() int {
	return ts.maps.Len()
}

// Update does nothing; maps are static once built.
func (ts *TilemapSystem) Update(dt float64) {
	_ = dt
}

// Close removes every map.
func (ts *TilemapSystem) Close() {
	for _, h := range ts.maps.Handles() {
		ts.Remove(h)
	}
}
