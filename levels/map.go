// Package levels holds the parsed form of a tile map: tile layers split into
// per-tileset chunks, tileset geometry, object layers and map properties.
package levels

import (
	"strconv"

	"github.com/milk9111/slotengine/common"
)

// Map is a fully parsed tile map.
type Map struct {
	Tilesets     []Tileset         `json:"tilesets"`
	Layers       []Layer           `json:"layers"`
	ObjectLayers []ObjectLayer     `json:"object_layers,omitempty"`
	Properties   map[string]string `json:"properties,omitempty"`
}

// Tileset describes how tile ids map onto an image.
type Tileset struct {
	Name    string `json:"name"`
	Image   string `json:"image"`
	TileW   int    `json:"tile_w"`
	TileH   int    `json:"tile_h"`
	Margin  int    `json:"margin,omitempty"`
	Spacing int    `json:"spacing,omitempty"`
	Columns int    `json:"columns"`
	// Colliders lists collision boxes per tile id, relative to the tile.
	Colliders map[int][]common.Rect `json:"colliders,omitempty"`
}

// Layer is one tile layer. Chunks[i] holds the chunks drawn with Tilesets[i].
type Layer struct {
	Name       string            `json:"name"`
	Properties map[string]string `json:"properties,omitempty"`
	Chunks     [][]Chunk         `json:"chunks"`
}

// Chunk is a rectangle of tiles. X and Y are in tiles.
type Chunk struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Tiles  []Tile `json:"tiles"`
}

type ObjectLayer struct {
	Name    string   `json:"name"`
	OffsetX float64  `json:"offset_x,omitempty"`
	OffsetY float64  `json:"offset_y,omitempty"`
	Objects []Object `json:"objects"`
}

// Object is a typed map object. Objects with a Type are handed to the
// script host for instantiation.
type Object struct {
	Name       string            `json:"name"`
	Type       string            `json:"type,omitempty"`
	X          float64           `json:"x"`
	Y          float64           `json:"y"`
	Width      float64           `json:"width"`
	Height     float64           `json:"height"`
	Properties map[string]string `json:"properties,omitempty"`
}

// Rect returns the object's box.
func (o Object) Rect() common.Rect {
	return common.R(o.X, o.Y, o.Width, o.Height)
}

// Z returns the draw layer of the layer at index: its "z" property when set
// and valid, otherwise index. The result is clamped to [0, 255].
func (l Layer) Z(index int) uint8 {
	z := index
	if v, ok := l.Properties["z"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			z = n
		}
	}
	return uint8(min(max(z, 0), 255))
}

// Mask returns the collider mask of the layer's "mask" property, or 0.
func (l Layer) Mask() uint64 {
	v, ok := l.Properties["mask"]
	if !ok {
		return 0
	}
	n, err := strconv.ParseUint(v, 0, 64)
	if err != nil {
		return 0
	}
	return n
}
