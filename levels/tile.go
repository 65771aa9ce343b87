package levels

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Tile flip bits as stored in Tiled global ids.
const (
	flipHorizontalBit = 0x80000000
	flipVerticalBit   = 0x40000000
	flipDiagonalBit   = 0x20000000
	gidMask           = ^uint32(flipHorizontalBit | flipVerticalBit | flipDiagonalBit)
)

// Tile is one chunk cell. ID is local to the chunk's tileset.
type Tile struct {
	ID    int  `json:"id"`
	Empty bool `json:"empty,omitempty"`
	FlipH bool `json:"flip_h,omitempty"`
	FlipV bool `json:"flip_v,omitempty"`
}

// TileFromGID decodes a Tiled style gid: 0 is empty, ids start at 1 and the
// top bits carry the flip flags.
func TileFromGID(gid uint32) Tile {
	id := gid & gidMask
	if id == 0 {
		return Tile{Empty: true}
	}
	return Tile{
		ID:    int(id - 1),
		FlipH: gid&flipHorizontalBit != 0,
		FlipV: gid&flipVerticalBit != 0,
	}
}

// GID is the inverse of TileFromGID.
func (t Tile) GID() uint32 {
	if t.Empty {
		return 0
	}
	gid := uint32(t.ID+1) & gidMask
	if t.FlipH {
		gid |= flipHorizontalBit
	}
	if t.FlipV {
		gid |= flipVerticalBit
	}
	return gid
}

// UnmarshalJSON accepts either a gid number or an object.
func (t *Tile) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		var gid uint32
		if err := json.Unmarshal(data, &gid); err != nil {
			return fmt.Errorf("levels: tile gid: %w", err)
		}
		*t = TileFromGID(gid)
		return nil
	}
	type plain Tile
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*t = Tile(p)
	return nil
}
