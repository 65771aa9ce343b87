package levels

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
)

//go:embed *.json
var LevelsFS embed.FS

var ErrInvalidMap = errors.New("levels: invalid map")

// Load reads the JSON encoded map name from fsys and validates it.
func Load(fsys fs.FS, name string) (*Map, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("levels: read %s: %w", name, err)
	}
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("levels: unmarshal %s: %w", name, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("levels: %s: %w", name, err)
	}
	return &m, nil
}

// LoadEmbedded loads one of the maps shipped with the binary.
func LoadEmbedded(name string) (*Map, error) {
	return Load(LevelsFS, name)
}

// Validate checks the geometry the tilemap system relies on.
func (m *Map) Validate() error {
	for i, ts := range m.Tilesets {
		if ts.Columns <= 0 || ts.TileW <= 0 || ts.TileH <= 0 {
			return fmt.Errorf("%w: tileset %d (%s) needs positive columns and tile size", ErrInvalidMap, i, ts.Name)
		}
		if ts.Image == "" {
			return fmt.Errorf("%w: tileset %d (%s) has no image", ErrInvalidMap, i, ts.Name)
		}
	}
	for li, layer := range m.Layers {
		if len(layer.Chunks) > len(m.Tilesets) {
			return fmt.Errorf("%w: layer %d has chunks for %d tilesets, map has %d", ErrInvalidMap, li, len(layer.Chunks), len(m.Tilesets))
		}
		for ti, chunks := range layer.Chunks {
			for ci, c := range chunks {
				if c.Width < 0 || c.Height < 0 || len(c.Tiles) > c.Width*c.Height {
					return fmt.Errorf("%w: layer %d tileset %d chunk %d holds %d tiles for %dx%d", ErrInvalidMap, li, ti, ci, len(c.Tiles), c.Width, c.Height)
				}
			}
		}
	}
	return nil
}
