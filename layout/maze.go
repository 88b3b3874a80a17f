package layout

import (
	"fmt"
	"math/rand"

	"github.com/lixenwraith/sdf-pathfinding/navigation"
)

// Logical maze cell values
const (
	wall    = true
	passage = false
)

type point struct {
	X, Y int
}

var (
	orthoDirs = []point{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}
	jumpDirs  = []point{{0, -2}, {0, 2}, {-2, 0}, {2, 0}}
)

// MazeOptions controls the braided maze
type MazeOptions struct {
	// Corridor is the minimum corridor and wall width in grid cells
	// A corridor of width 2u-1 leaves SDF u along its center line
	Corridor int `yaml:"corridor"`

	// Braiding: 0.0 (perfect maze, a tree) to 1.0 (no dead ends)
	// Plaza and pillar constraints take precedence
	Braiding float64 `yaml:"braiding"`
}

func DefaultMaze() MazeOptions {
	return MazeOptions{Corridor: 3, Braiding: 0.3}
}

func (o MazeOptions) validate() error {
	if o.Corridor < 1 {
		return fmt.Errorf("maze corridor %d: must be at least 1", o.Corridor)
	}
	if o.Braiding < 0 || o.Braiding > 1 {
		return fmt.Errorf("maze braiding %v: must be in [0, 1]", o.Braiding)
	}
	return nil
}

// CorridorFor returns the corridor width an agent of unitSize needs
func CorridorFor(unitSize int) int {
	return max(1, 2*unitSize-1)
}

// Maze carves a recursive-backtracker maze on a logical grid and scales it up
//
// Each logical cell covers at least Corridor grid cells per axis; the scale is
// fractional so the maze spans the whole grid. Keep cells are joined to the
// nearest room so agents placed there are not walled in
func Maze(t Target, rng *rand.Rand, o MazeOptions, keep ...navigation.Cell) {
	w, h := t.Dimensions()
	scale := max(1, o.Corridor)
	cols := ensureOdd(w / scale)
	rows := ensureOdd(h / scale)

	grid := make([][]bool, rows)
	for i := range grid {
		grid[i] = make([]bool, cols)
		for j := range grid[i] {
			grid[i][j] = wall
		}
	}

	recursiveBacktracker(grid, point{1, 1}, rng)
	if o.Braiding > 0 {
		applySmartBraiding(grid, o.Braiding, rng)
	}

	for _, c := range keep {
		if c.X < 0 || c.Y < 0 || c.X >= w || c.Y >= h {
			continue
		}
		forceOpen(grid, point{c.X * cols / w, c.Y * rows / h})
	}

	for y := 0; y < h; y++ {
		ly := y * rows / h
		for x := 0; x < w; x++ {
			t.SetBlocked(x, y, grid[ly][x*cols/w])
		}
	}
}

// --- Core Algorithms ---

func recursiveBacktracker(grid [][]bool, start point, rng *rand.Rand) {
	rows, cols := len(grid), len(grid[0])

	stack := []point{start}
	grid[start.Y][start.X] = passage

	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		candidates := make([]point, 0, 4)

		for _, d := range jumpDirs {
			nx, ny := curr.X+d.X, curr.Y+d.Y
			// Leave a one cell border of walls
			if nx > 0 && nx < cols-1 && ny > 0 && ny < rows-1 && grid[ny][nx] == wall {
				candidates = append(candidates, d)
			}
		}

		if len(candidates) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		d := candidates[rng.Intn(len(candidates))]
		grid[curr.Y+d.Y/2][curr.X+d.X/2] = passage
		next := point{curr.X + d.X, curr.Y + d.Y}
		grid[next.Y][next.X] = passage
		stack = append(stack, next)
	}
}

// applySmartBraiding opens walls next to dead ends with the given probability
func applySmartBraiding(grid [][]bool, probability float64, rng *rand.Rand) {
	rows, cols := len(grid), len(grid[0])

	for y := 1; y < rows-1; y += 2 {
		for x := 1; x < cols-1; x += 2 {
			if grid[y][x] == wall {
				continue
			}

			exits := 0
			for _, d := range orthoDirs {
				if grid[y+d.Y][x+d.X] == passage {
					exits++
				}
			}
			if exits != 1 || rng.Float64() >= probability {
				continue
			}

			candidates := make([]point, 0, 4)
			for _, jd := range jumpDirs {
				nx, ny := x+jd.X, y+jd.Y
				wx, wy := x+jd.X/2, y+jd.Y/2
				if nx < 0 || nx >= cols || ny < 0 || ny >= rows {
					continue
				}
				if grid[ny][nx] == passage && grid[wy][wx] == wall && canSafelyRemoveWall(grid, wx, wy) {
					candidates = append(candidates, point{wx, wy})
				}
			}

			if len(candidates) > 0 {
				c := candidates[rng.Intn(len(candidates))]
				grid[c.Y][c.X] = passage
			}
		}
	}
}

// canSafelyRemoveWall reports whether opening (x, y) avoids 2x2 plazas and isolated pillars
func canSafelyRemoveWall(grid [][]bool, x, y int) bool {
	rows, cols := len(grid), len(grid[0])

	// Out of bounds reads as wall
	isP := func(tx, ty int) bool {
		if tx < 0 || tx >= cols || ty < 0 || ty >= rows {
			return false
		}
		return grid[ty][tx] == passage
	}

	// Plazas: any of the four 2x2 quadrants containing (x, y) fully open
	if isP(x-1, y-1) && isP(x, y-1) && isP(x-1, y) {
		return false
	}
	if isP(x, y-1) && isP(x+1, y-1) && isP(x+1, y) {
		return false
	}
	if isP(x-1, y) && isP(x-1, y+1) && isP(x, y+1) {
		return false
	}
	if isP(x+1, y) && isP(x, y+1) && isP(x+1, y+1) {
		return false
	}

	// Pillars: an adjacent wall left without any other wall neighbor
	for _, d := range orthoDirs {
		nx, ny := x+d.X, y+d.Y
		if nx < 0 || nx >= cols || ny < 0 || ny >= rows || grid[ny][nx] != wall {
			continue
		}

		connections := 0
		for _, d2 := range orthoDirs {
			nnx, nny := nx+d2.X, ny+d2.Y
			if nnx == x && nny == y {
				continue // About to become a passage
			}
			if nnx >= 0 && nnx < cols && nny >= 0 && nny < rows && grid[nny][nnx] == wall {
				connections++
			}
		}
		if connections == 0 {
			return false
		}
	}

	return true
}

// --- Helpers ---

// ensureOdd rounds down to an odd size, at least 3
func ensureOdd(n int) int {
	if n < 3 {
		return 3
	}
	if n%2 == 0 {
		return n - 1
	}
	return n
}

// forceOpen opens p and, if that leaves it isolated, one interior neighbor
func forceOpen(grid [][]bool, p point) {
	rows, cols := len(grid), len(grid[0])
	if p.X < 0 || p.Y < 0 || p.Y >= rows || p.X >= cols {
		return
	}
	grid[p.Y][p.X] = passage

	for _, d := range orthoDirs {
		nx, ny := p.X+d.X, p.Y+d.Y
		if nx >= 0 && nx < cols && ny >= 0 && ny < rows && grid[ny][nx] == passage {
			return
		}
	}

	for _, d := range orthoDirs {
		nx, ny := p.X+d.X, p.Y+d.Y
		if nx > 0 && nx < cols-1 && ny > 0 && ny < rows-1 {
			grid[ny][nx] = passage
			return
		}
	}
}
