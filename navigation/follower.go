package navigation

import (
	"github.com/lixenwraith/sdf-pathfinding/vmath"
)

// PathLength sums the Euclidean lengths of consecutive waypoint segments
func PathLength(path []PathNode) float64 {
	length := 0.0
	for i := 1; i < len(path); i++ {
		length += vmath.CellDistance(path[i-1].X, path[i-1].Y, path[i].X, path[i].Y)
	}
	return length
}

// PositionAt interpolates the cell-center position at distance walked along path
// Returns false for paths with fewer than two waypoints or distance beyond the end
func PositionAt(path []PathNode, distance float64) (vmath.Vec2F, bool) {
	if len(path) < 2 || distance < 0 {
		return vmath.Vec2F{}, false
	}

	walked := 0.0
	for i := 1; i < len(path); i++ {
		p1, p2 := path[i-1], path[i]
		d := vmath.CellDistance(p1.X, p1.Y, p2.X, p2.Y)
		if d == 0 {
			continue // Duplicate waypoint
		}
		if walked+d >= distance {
			t := (distance - walked) / d
			return vmath.V2FLerp(vmath.CellCenter(p1.X, p1.Y), vmath.CellCenter(p2.X, p2.Y), t), true
		}
		walked += d
	}
	return vmath.Vec2F{}, false
}

// Follower walks an agent along its path at constant speed, looping at the end
// Distance survives path replacement; a shorter new path wraps it on the next read
type Follower struct {
	Distance float64 // Distance walked along the current path (cells)
}

// Reset restarts at the first waypoint
func (f *Follower) Reset() {
	f.Distance = 0
}

// Position returns the position at the current distance without advancing
// A distance past the end of path wraps to the first waypoint
func (f *Follower) Position(path []PathNode) (pos vmath.Vec2F, ok bool) {
	pos, ok, _ = f.resolve(path)
	return pos, ok
}

// Advance walks speed*dt further and returns the new position
// wrapped reports that the end was passed and the walk restarted
// Paths with fewer than two waypoints are a no-op
func (f *Follower) Advance(path []PathNode, speed, dt float64) (pos vmath.Vec2F, ok, wrapped bool) {
	if len(path) < 2 {
		return vmath.Vec2F{}, false, false
	}
	f.Distance += speed * dt
	return f.resolve(path)
}

func (f *Follower) resolve(path []PathNode) (vmath.Vec2F, bool, bool) {
	if len(path) < 2 {
		return vmath.Vec2F{}, false, false
	}
	if f.Distance < 0 {
		f.Distance = 0
	}
	if pos, ok := PositionAt(path, f.Distance); ok {
		return pos, true, false
	}

	// Past the end, or a path made only of duplicate waypoints
	f.Distance = 0
	return vmath.CellCenter(path[0].X, path[0].Y), true, true
}
