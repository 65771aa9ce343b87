package system

import (
	"slices"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/slotengine/common"
	"github.com/milk9111/slotengine/ecs"
)

// GridExtent bounds cell coordinates to [-GridExtent, GridExtent] per axis.
// Positions beyond it fold into the border cells, which only adds broad-phase
// candidates and never overflows the cell id.
const GridExtent int64 = 100_000_000

const gridSpan = 2*GridExtent + 1

// DefaultCellSize is used when the configured cell size is not positive.
const DefaultCellSize = 100.0

// CollisionGrid is a spatial hash over fixed size cells. A box is filed
// under the cells of its four corners, so cells should be at least as large
// as the largest collider.
type CollisionGrid struct {
	cellSize float64
	cells    map[int64][]ecs.Handle
	members  map[ecs.Handle][]int64
	seen     map[ecs.Handle]struct{}
}

func NewCollisionGrid(cellSize float64) *CollisionGrid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &CollisionGrid{
		cellSize: cellSize,
		cells:    make(map[int64][]ecs.Handle),
		members:  make(map[ecs.Handle][]int64),
		seen:     make(map[ecs.Handle]struct{}),
	}
}

func (g *CollisionGrid) CellSize() float64 {
	return g.cellSize
}

// Cell returns the id of the cell containing pos.
func (g *CollisionGrid) Cell(pos cp.Vector) int64 {
	x := common.FloorDiv(pos.X, g.cellSize, GridExtent)
	y := common.FloorDiv(pos.Y, g.cellSize, GridExtent)
	return (y+GridExtent)*gridSpan + (x + GridExtent)
}

// CellOrigin returns the world position of the top-left corner of cell id.
func (g *CollisionGrid) CellOrigin(id int64) cp.Vector {
	x := id%gridSpan - GridExtent
	y := id/gridSpan - GridExtent
	return cp.Vector{X: float64(x) * g.cellSize, Y: float64(y) * g.cellSize}
}

// CornerCells appends the distinct cells of the corners of r to dst in the
// order top-left, top-right, bottom-left, bottom-right.
func (g *CollisionGrid) CornerCells(r common.Rect, dst []int64) []int64 {
	corners := [4]cp.Vector{r.TopLeft(), r.TopRight(), r.BottomLeft(), r.BottomRight()}
	start := len(dst)
	for _, c := range corners {
		id := g.Cell(c)
		if slices.Contains(dst[start:], id) {
			continue
		}
		dst = append(dst, id)
	}
	return dst
}

// Insert files h under every distinct corner cell of r.
func (g *CollisionGrid) Insert(h ecs.Handle, r common.Rect) {
	if _, ok := g.members[h]; ok {
		g.Remove(h)
	}
	cells := g.CornerCells(r, make([]int64, 0, 4))
	for _, id := range cells {
		g.cells[id] = append(g.cells[id], h)
	}
	g.members[h] = cells
}

// Remove purges h from every cell it was filed under.
func (g *CollisionGrid) Remove(h ecs.Handle) {
	cells, ok := g.members[h]
	if !ok {
		return
	}
	for _, id := range cells {
		bucket := g.cells[id]
		for i, other := range bucket {
			if other != h {
				continue
			}
			last := len(bucket) - 1
			bucket[i] = bucket[last]
			bucket[last] = ecs.Invalid
			g.cells[id] = bucket[:last]
			break
		}
	}
	delete(g.members, h)
}

// Members returns the cells h is filed under.
func (g *CollisionGrid) Members(h ecs.Handle) []int64 {
	return g.members[h]
}

// At returns the handles filed under cell id.
func (g *CollisionGrid) At(id int64) []ecs.Handle {
	return g.cells[id]
}

// Candidates appends the union of the handles in cells to dst, without
// duplicates and without self.
func (g *CollisionGrid) Candidates(cells []int64, self ecs.Handle, dst []ecs.Handle) []ecs.Handle {
	clear(g.seen)
	for _, id := range cells {
		for _, h := range g.cells[id] {
			if h == self {
				continue
			}
			if _, dup := g.seen[h]; dup {
				continue
			}
			g.seen[h] = struct{}{}
			dst = append(dst, h)
		}
	}
	return dst
}

// Clear empties every bucket. Buckets that were already empty, meaning
// nothing touched them since the last clear, are dropped.
func (g *CollisionGrid) Clear() {
	for id, bucket := range g.cells {
		if len(bucket) == 0 {
			delete(g.cells, id)
			continue
		}
		clear(bucket)
		g.cells[id] = bucket[:0]
	}
	clear(g.members)
}

// Occupied returns the number of non-empty cells.
func (g *CollisionGrid) Occupied() int {
	n := 0
	for _, bucket := range g.cells {
		if len(bucket) > 0 {
			n++
		}
	}
	return n
}
