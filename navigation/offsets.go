package navigation

import (
	"github.com/lixenwraith/sdf-pathfinding/parameter"
	"github.com/lixenwraith/sdf-pathfinding/vmath"
)

// NeighborOffset is a candidate jump from the current cell
type NeighborOffset struct {
	DX, DY   int
	Distance int // ceil of the Euclidean length, always >= 1
}

// neighborOffsets is built once and shared by every search, never mutated
var neighborOffsets = buildNeighborOffsets(parameter.NeighborRadius)

// buildNeighborOffsets enumerates every offset with 0 < distance <= radius
// Order is dx ascending, then dy ascending; search tie-breaks depend on it
func buildNeighborOffsets(radius int) []NeighborOffset {
	offsets := make([]NeighborOffset, 0, (2*radius+1)*(2*radius+1))
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			d := vmath.CeilDistance(dx, dy)
			if d > 0 && d <= radius {
				offsets = append(offsets, NeighborOffset{DX: dx, DY: dy, Distance: d})
			}
		}
	}
	return offsets
}

// NeighborOffsets returns the shared offset table; callers must not modify it
func NeighborOffsets() []NeighborOffset {
	return neighborOffsets
}
