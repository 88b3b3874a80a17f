package navigation

import (
	"fmt"

	"github.com/lixenwraith/sdf-pathfinding/vmath"
)

// ViolationKind classifies a path defect found by VerifyPath
type ViolationKind uint8

const (
	ViolationClearance ViolationKind = iota // Waypoint SDF below unit size
	ViolationJump                           // Step longer than the clearance at its origin allows
	ViolationStep                           // Step longer than one cell with jumping disabled
	ViolationBounds                         // Waypoint outside the grid
)

func (k ViolationKind) String() string {
	switch k {
	case ViolationClearance:
		return "clearance"
	case ViolationJump:
		return "jump"
	case ViolationStep:
		return "step"
	case ViolationBounds:
		return "bounds"
	}
	return fmt.Sprintf("violation(%d)", uint8(k))
}

// Violation locates one defect; Index is the waypoint (or step end) it concerns
type Violation struct {
	Kind  ViolationKind
	Index int
	X, Y  int
	Got   int // Measured SDF or step distance
	Limit int // Allowed bound
}

func (v Violation) String() string {
	return fmt.Sprintf("%s at #%d (%d,%d): %d vs limit %d", v.Kind, v.Index, v.X, v.Y, v.Got, v.Limit)
}

// VerifyPath checks a path against the grid it was computed on
//
// Every waypoint except the target must have SDF >= unitSize (the target seeds
// the search and is not clearance-checked). Each step is bounded by the
// clearance of the cell the search expanded it from, which is the later
// waypoint since the search runs target to start
func VerifyPath(g GridView, path []PathNode, unitSize int, jumping bool) []Violation {
	var violations []Violation
	last := len(path) - 1

	for i, n := range path {
		if !g.InBounds(n.X, n.Y) {
			violations = append(violations, Violation{Kind: ViolationBounds, Index: i, X: n.X, Y: n.Y})
			continue
		}
		if i != last {
			if sdf := g.SDF(n.X, n.Y); sdf < unitSize {
				violations = append(violations, Violation{
					Kind: ViolationClearance, Index: i, X: n.X, Y: n.Y, Got: sdf, Limit: unitSize,
				})
			}
		}
		if i == 0 {
			continue
		}

		prev := path[i-1]
		step := vmath.CeilDistance(n.X-prev.X, n.Y-prev.Y)
		if !jumping {
			if step > 1 {
				violations = append(violations, Violation{
					Kind: ViolationStep, Index: i, X: n.X, Y: n.Y, Got: step, Limit: 1,
				})
			}
			continue
		}
		limit := max(1, g.SDF(n.X, n.Y)-unitSize)
		if step > limit {
			violations = append(violations, Violation{
				Kind: ViolationJump, Index: i, X: n.X, Y: n.Y, Got: step, Limit: limit,
			})
		}
	}
	return violations
}
