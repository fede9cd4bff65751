package world

import (
	"math"

	"github.com/orbarena/arena/internal/core/ecs"
)

// VisionGrid is a uniform cell index over orb centres. The cell size is the
// vision range, so a 3x3 neighbourhood of cells covers every point closer
// than the range. Callers do the exact distance filtering.
// Accessed only from the tick goroutine, no locks.
type VisionGrid struct {
	cellSize float64
	cells    map[cellKey]map[ecs.EntityID]struct{}
}

type cellKey struct {
	cx int32
	cy int32
}

func NewVisionGrid(cellSize float64) *VisionGrid {
	return &VisionGrid{
		cellSize: cellSize,
		cells:    make(map[cellKey]map[ecs.EntityID]struct{}),
	}
}

func (g *VisionGrid) key(x, y float64) cellKey {
	return cellKey{
		cx: int32(math.Floor(x / g.cellSize)),
		cy: int32(math.Floor(y / g.cellSize)),
	}
}

func (g *VisionGrid) Add(id ecs.EntityID, x, y float64) {
	k := g.key(x, y)
	cell := g.cells[k]
	if cell == nil {
		cell = make(map[ecs.EntityID]struct{}, 4)
		g.cells[k] = cell
	}
	cell[id] = struct{}{}
}

func (g *VisionGrid) Remove(id ecs.EntityID, x, y float64) {
	k := g.key(x, y)
	cell := g.cells[k]
	if cell != nil {
		delete(cell, id)
		if len(cell) == 0 {
			delete(g.cells, k)
		}
	}
}

// Move updates the entry's cell when its position changes.
func (g *VisionGrid) Move(id ecs.EntityID, oldX, oldY, newX, newY float64) {
	oldK := g.key(oldX, oldY)
	newK := g.key(newX, newY)
	if oldK == newK {
		return
	}
	g.Remove(id, oldX, oldY)
	g.Add(id, newX, newY)
}

// Nearby appends to dst every ID in the 3x3 neighbourhood around (x, y).
func (g *VisionGrid) Nearby(x, y float64, dst []ecs.EntityID) []ecs.EntityID {
	c := g.key(x, y)
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for id := range g.cells[cellKey{cx: c.cx + dx, cy: c.cy + dy}] {
				dst = append(dst, id)
			}
		}
	}
	return dst
}

func (g *VisionGrid) Clear() {
	clear(g.cells)
}
