package navigation

import (
	"github.com/lixenwraith/sdf-pathfinding/parameter"
)

// Cell is an integer grid coordinate
type Cell struct {
	X, Y int
}

// GridView is the read-only surface handed to renderers and input layers
type GridView interface {
	Dimensions() (width, height int)
	InBounds(x, y int) bool
	Blocked(x, y int) bool
	SDF(x, y int) int
	MaxDistance() int
	Generation() uint64
}

// Grid is a fixed-size occupancy grid with its capped distance-to-wall field
// Both buffers are flat, indexed y*Width+x
type Grid struct {
	Width, Height int

	blocked []bool
	sdf     []int
	maxDist int

	// generation increments on every SDF build
	generation uint64
	// dirty latches true on any effective edit, cleared by BuildSDF
	dirty bool
}

// NewGrid creates an empty grid, every cell free and at the distance cap
// maxDistance < 1 falls back to parameter.SDFMaxDistance
func NewGrid(width, height, maxDistance int) *Grid {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if maxDistance < 1 {
		maxDistance = parameter.SDFMaxDistance
	}
	size := width * height
	g := &Grid{
		Width:   width,
		Height:  height,
		blocked: make([]bool, size),
		sdf:     make([]int, size),
		maxDist: maxDistance,
	}
	for i := range g.sdf {
		g.sdf[i] = maxDistance
	}
	return g
}

// Dimensions returns grid width and height in cells
func (g *Grid) Dimensions() (width, height int) {
	return g.Width, g.Height
}

// InBounds reports whether (x, y) addresses a cell
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// Size returns the cell count
func (g *Grid) Size() int {
	return g.Width * g.Height
}

func (g *Grid) index(x, y int) int {
	return y*g.Width + x
}

// Blocked returns true for walls; out-of-bounds cells count as walls
func (g *Grid) Blocked(x, y int) bool {
	if !g.InBounds(x, y) {
		return true
	}
	return g.blocked[g.index(x, y)]
}

// SetBlocked edits one cell, returns true if the cell changed
// Out-of-bounds edits are ignored
func (g *Grid) SetBlocked(x, y int, blocked bool) bool {
	if !g.InBounds(x, y) {
		return false
	}
	idx := g.index(x, y)
	if g.blocked[idx] == blocked {
		return false
	}
	g.blocked[idx] = blocked
	g.dirty = true
	return true
}

// Clear frees every cell
func (g *Grid) Clear() {
	for i, b := range g.blocked {
		if b {
			g.blocked[i] = false
			g.dirty = true
		}
	}
}

// BlockedCount returns the number of wall cells
func (g *Grid) BlockedCount() int {
	n := 0
	for _, b := range g.blocked {
		if b {
			n++
		}
	}
	return n
}

// SDF returns the capped distance to the nearest wall, 0 for walls and out-of-bounds
func (g *Grid) SDF(x, y int) int {
	if !g.InBounds(x, y) {
		return 0
	}
	return g.sdf[g.index(x, y)]
}

// MaxDistance returns the distance cap (D_MAX)
func (g *Grid) MaxDistance() int {
	return g.maxDist
}

// Generation returns the number of SDF builds performed on this grid
func (g *Grid) Generation() uint64 {
	return g.generation
}

// Dirty reports edits not yet reflected in the SDF
func (g *Grid) Dirty() bool {
	return g.dirty
}

// MarkDirty forces the next rebuild, e.g. after a metric change
func (g *Grid) MarkDirty() {
	g.dirty = true
}
