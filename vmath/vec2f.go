package vmath

import (
	"math"
)

// Vec2F is a float64 2D vector for continuous positions on the cell grid
type Vec2F struct {
	X, Y float64
}

// V2FLerp interpolates from a to b, t is not clamped
func V2FLerp(a, b Vec2F, t float64) Vec2F {
	return Vec2F{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}

// CellCenter returns the continuous position of the center of cell (x, y)
func CellCenter(x, y int) Vec2F {
	return Vec2F{float64(x) + 0.5, float64(y) + 0.5}
}

// CellDistance is the Euclidean distance between two cell centers
func CellDistance(x1, y1, x2, y2 int) float64 {
	dx := float64(x2 - x1)
	dy := float64(y2 - y1)
	return math.Sqrt(dx*dx + dy*dy)
}
