package system

import (
	"image"
	"testing"

	"github.com/milk9111/slotengine/common"
	"github.com/milk9111/slotengine/ecs/component"
	"github.com/milk9111/slotengine/levels"
)

func testMap() *levels.Map {
	return &levels.Map{
		Tilesets: []levels.Tileset{{
			Name: "tiles", Image: "tiles.png",
			TileW: 16, TileH: 16, Margin: 1, Spacing: 2, Columns: 4,
			Colliders: map[int][]common.Rect{5: {common.R(0, 8, 16, 8)}},
		}},
		Layers: []levels.Layer{
			{
				Name:       "ground",
				Properties: map[string]string{"z": "7", "mask": "0x3"},
				Chunks: [][]levels.Chunk{{{
					X: 1, Y: 2, Width: 2, Height: 1,
					Tiles: []levels.Tile{{ID: 5, FlipH: true}, {Empty: true}},
				}}},
			},
			{Name: "blank", Chunks: [][]levels.Chunk{{{Width: 1, Height: 1, Tiles: []levels.Tile{{Empty: true}}}}}},
		},
		ObjectLayers: []levels.ObjectLayer{{
			Name: "objects", OffsetX: 10, OffsetY: 20,
			Objects: []levels.Object{
				{Name: "c1", Type: "Crate", X: 1, Y: 2},
				{Name: "marker"},
				{Name: "b", Type: "Broken"},
			},
		}},
		Properties: map[string]string{"eval": "x := 1"},
	}
}

func TestTilemapCreate(t *testing.T) {
	r := newRig()
	host := &fakeHost{}
	tiles := NewTilemapSystem(r.sprites, r.collisions)
	tiles.SetHost(host)

	tr := r.transforms.Create(component.NewTransform(common.Vec(0, 0)))
	h := tiles.Create(tr, testMap())

	tm, ok := tiles.Get(h)
	if !ok {
		t.Fatalf("map not created")
	}
	if len(tm.Batches) != 1 || len(tm.Colliders) != 1 {
		t.Fatalf("expected 1 batch and 1 collider, got %d and %d", len(tm.Batches), len(tm.Colliders))
	}
	if r.sprites.Buckets(7) != 1 {
		t.Fatalf("batch should be on the layer's z")
	}

	if r.sprites.BatchTexture(tm.Batches[0]) == nil {
		t.Fatalf("batch should draw with the tileset texture")
	}
	batch, _ := r.sprites.Batch(tm.Batches[0])
	if len(batch.Sprites) != 1 {
		t.Fatalf("empty tiles should be skipped, got %d sprites", len(batch.Sprites))
	}
	got := batch.Sprites[0]
	if got.Source != image.Rect(21, 21, 37, 37) {
		t.Fatalf("source = %v, want (21,21)-(37,37)", got.Source)
	}
	if got.Offset != common.Vec(16, 32) || !got.FlipH {
		t.Fatalf("tile sprite = %+v", got)
	}
	if batch.Boundary != image.Rect(16, 32, 48, 48) {
		t.Fatalf("boundary = %v", batch.Boundary)
	}

	col, _ := r.collisions.Get(tm.Colliders[0])
	if col.AABB != common.R(16, 40, 16, 8) || col.Mask != 3 {
		t.Fatalf("collider = %+v", col)
	}

	if len(host.objects) != 2 {
		t.Fatalf("only typed objects should be instantiated, got %d", len(host.objects))
	}
	if o := host.objects[0]; o.X != 11 || o.Y != 22 {
		t.Fatalf("object layer offset not applied: %+v", o)
	}
	if len(host.evals) != 1 || host.evals[0] != "x := 1" {
		t.Fatalf("evals = %v", host.evals)
	}
}

func TestTilemapCreateSurvivesPanickingHost(t *testing.T) {
	r := newRig()
	host := &fakeHost{panicOn: "Crate"}
	tiles := NewTilemapSystem(r.sprites, r.collisions)
	tiles.SetHost(host)

	tr := r.transforms.Create(component.NewTransform(common.Vec(0, 0)))
	h := tiles.Create(tr, testMap())

	if tiles.Len() != 1 {
		t.Fatalf("map should be recorded, have %d", tiles.Len())
	}
	tm, _ := tiles.Get(h)
	if len(tm.Batches) != 1 || len(tm.Colliders) != 1 {
		t.Fatalf("built records should belong to the map, got %d batches and %d colliders", len(tm.Batches), len(tm.Colliders))
	}
	if len(host.objects) != 2 || host.objects[1].Name != "b" {
		t.Fatalf("objects after a panic should still be instantiated, got %+v", host.objects)
	}
	if len(host.evals) != 1 {
		t.Fatalf("eval should still run, got %v", host.evals)
	}

	if !tiles.Remove(h) || r.sprites.BatchCount() != 0 || r.collisions.Len() != 0 {
		t.Fatalf("map should remove cleanly")
	}
}

func TestTilemapRemove(t *testing.T) {
	r := newRig()
	tiles := NewTilemapSystem(r.sprites, r.collisions)
	tiles.SetHost(nil)
	tr := r.transforms.Create(component.NewTransform(common.Vec(0, 0)))
	h := tiles.Create(tr, testMap())
	released := 0
	tm, _ := tiles.Get(h)
	tm.Release = func() { released++ }

	if !tiles.Remove(h) {
		t.Fatalf("remove failed")
	}
	if released != 1 {
		t.Fatalf("release hook ran %d times, want 1", released)
	}
	if r.sprites.BatchCount() != 0 || r.collisions.Len() != 0 || r.sprites.Textures().Len() != 0 {
		t.Fatalf("map records should be removed with the map")
	}
	if tiles.Remove(h) {
		t.Fatalf("second remove should fail")
	}

	empty := tiles.Create(tr, nil)
	if _, ok := tiles.Get(empty); !ok {
		t.Fatalf("nil map should still get a record")
	}
	tiles.Close()
	if tiles.Len() != 0 {
		t.Fatalf("close should remove every map")
	}
}

func TestTilemapMissingTexture(t *testing.T) {
	r := newRig()
	tiles := NewTilemapSystem(r.sprites, r.collisions)
	m := testMap()
	m.Tilesets[0].Image = "missing.png"

	h := tiles.Create(r.transforms.Create(component.NewTransform(common.Vec(0, 0))), m)
	tm, _ := tiles.Get(h)
	if len(tm.Batches) != 0 {
		t.Fatalf("chunks without a texture should be skipped")
	}
	if len(tm.Colliders) != 1 {
		t.Fatalf("colliders should still be built")
	}
}
