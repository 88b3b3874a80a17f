package navigation

import (
	"bytes"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/sdf-pathfinding/parameter"
	"github.com/lixenwraith/sdf-pathfinding/vmath"
)

func findPath(t *testing.T, g *Grid, req SearchRequest) SearchResult {
	t.Helper()
	res, err := FindPath(g, req, nil)
	require.NoError(t, err)
	return res
}

func requireEndpoints(t *testing.T, res SearchResult, start, target Cell) {
	t.Helper()
	require.True(t, res.Found(), "expected a path, got %s", res.State)
	first, last := res.Path[0], res.Path[len(res.Path)-1]
	assert.Equal(t, start, Cell{first.X, first.Y}, "path must begin at start")
	assert.Equal(t, target, Cell{last.X, last.Y}, "path must end at target")
}

// blockRect walls off [x0,x1] × [y0,y1], clipped to the grid
func blockRect(g *Grid, x0, y0, x1, y1 int) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			g.SetBlocked(x, y, true)
		}
	}
}

func TestFindPathOpenGridScenario(t *testing.T) {
	g := NewGrid(parameter.GridWidth, parameter.GridHeight, parameter.SDFMaxDistance)
	BuildSDF(g, MetricEuclidean)

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			require.Equal(t, 10, g.SDF(x, y))
		}
	}

	start, target := Cell{5, 25}, Cell{75, 25}
	for _, affinity := range []int{0, 2} {
		for _, unit := range []int{1, 2} {
			res := findPath(t, g, SearchRequest{
				Start: start, Target: target,
				UnitSize: unit, WallAffinity: affinity, Jumping: true,
			})
			requireEndpoints(t, res, start, target)

			length := PathLength(res.Path)
			assert.GreaterOrEqual(t, length, 70.0, "unit %d affinity %d", unit, affinity)
			assert.LessOrEqual(t, length, 71.0, "unit %d affinity %d", unit, affinity)

			// Long jumps keep the waypoint count well below the cell count
			assert.Less(t, len(res.Path), 20)
			assert.Empty(t, VerifyPath(g, res.Path, unit, true))
		}
	}
}

func TestFindPathReachabilityOpenGrid(t *testing.T) {
	g := NewGrid(30, 20, parameter.SDFMaxDistance)
	BuildSDF(g, MetricEuclidean)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 25; i++ {
		start := Cell{rng.Intn(g.Width), rng.Intn(g.Height)}
		target := Cell{rng.Intn(g.Width), rng.Intn(g.Height)}
		for _, jumping := range []bool{true, false} {
			res := findPath(t, g, SearchRequest{
				Start: start, Target: target, UnitSize: 1, Jumping: jumping,
			})
			requireEndpoints(t, res, start, target)
		}
	}
}

func TestFindPathWithoutJumpingUsesUnitSteps(t *testing.T) {
	g := NewGrid(40, 20, parameter.SDFMaxDistance)
	blockRect(g, 15, 0, 16, 12)
	BuildSDF(g, MetricEuclidean)

	start, target := Cell{2, 3}, Cell{37, 3}
	res := findPath(t, g, SearchRequest{Start: start, Target: target, UnitSize: 1, Jumping: false})
	requireEndpoints(t, res, start, target)

	for i := 1; i < len(res.Path); i++ {
		a, b := res.Path[i-1], res.Path[i]
		require.Equal(t, 1, vmath.CeilDistance(b.X-a.X, b.Y-a.Y), "step %d", i)
	}
	assert.Empty(t, VerifyPath(g, res.Path, 1, false))
}

// Horizontal corridor of the given width, every other row walled off
func corridorGrid(width int) (*Grid, Cell, Cell) {
	g := NewGrid(40, 21, parameter.SDFMaxDistance)
	top := 10 - width/2
	for y := 0; y < g.Height; y++ {
		if y >= top && y < top+width {
			continue
		}
		blockRect(g, 0, y, g.Width-1, y)
	}
	BuildSDF(g, MetricEuclidean)
	mid := top + (width-1)/2
	return g, Cell{2, mid}, Cell{37, mid}
}

func TestFindPathNarrowCorridor(t *testing.T) {
	tests := []struct {
		unit, width int
		found       bool
	}{
		{unit: 1, width: 1, found: true},
		{unit: 2, width: 2, found: false},
		{unit: 2, width: 3, found: true},
		{unit: 3, width: 4, found: false},
		{unit: 3, width: 5, found: true},
		{unit: 4, width: 6, found: false},
	}
	for _, tt := range tests {
		g, start, target := corridorGrid(tt.width)
		for _, jumping := range []bool{true, false} {
			res := findPath(t, g, SearchRequest{
				Start: start, Target: target, UnitSize: tt.unit, Jumping: jumping,
			})
			if !tt.found {
				assert.Equal(t, StateNoPath, res.State, "unit %d width %d", tt.unit, tt.width)
				assert.Empty(t, res.Path)
				continue
			}
			requireEndpoints(t, res, start, target)
			for _, n := range res.Path[:len(res.Path)-1] {
				assert.GreaterOrEqual(t, g.SDF(n.X, n.Y), tt.unit)
			}
		}
	}
}

func clutteredGrid() *Grid {
	g := NewGrid(60, 30, parameter.SDFMaxDistance)
	blockRect(g, 20, 0, 20, 17)
	blockRect(g, 40, 12, 40, 29)
	blockRect(g, 8, 20, 10, 22)
	blockRect(g, 30, 4, 31, 6)
	blockRect(g, 50, 3, 52, 4)
	BuildSDF(g, MetricEuclidean)
	return g
}

func TestFindPathJumpBound(t *testing.T) {
	g := clutteredGrid()
	start, target := Cell{5, 5}, Cell{55, 25}

	for _, unit := range []int{1, 2} {
		for _, jumping := range []bool{true, false} {
			res := findPath(t, g, SearchRequest{
				Start: start, Target: target, UnitSize: unit, WallAffinity: 2, Jumping: jumping,
			})
			requireEndpoints(t, res, start, target)
			assert.Empty(t, VerifyPath(g, res.Path, unit, jumping), "unit %d jumping %v", unit, jumping)
		}
	}
}

func gapWallGrid(gap bool) *Grid {
	g := NewGrid(parameter.GridWidth, parameter.GridHeight, parameter.SDFMaxDistance)
	blockRect(g, 39, 0, 41, g.Height-1)
	if gap {
		for y := 20; y <= 24; y++ {
			for x := 39; x <= 41; x++ {
				g.SetBlocked(x, y, false)
			}
		}
	}
	BuildSDF(g, MetricEuclidean)
	return g
}

func TestFindPathWallWithGap(t *testing.T) {
	g := gapWallGrid(true)
	start, target := Cell{5, 25}, Cell{75, 25}

	for _, unit := range []int{1, 2, 3} {
		res := findPath(t, g, SearchRequest{Start: start, Target: target, UnitSize: unit, Jumping: true})
		requireEndpoints(t, res, start, target)
		assert.Greater(t, PathLength(res.Path), 70.0, "detour expected for unit %d", unit)
		for _, n := range res.Path {
			assert.False(t, g.Blocked(n.X, n.Y))
		}
		assert.Empty(t, VerifyPath(g, res.Path, unit, true))
	}

	res := findPath(t, g, SearchRequest{Start: start, Target: target, UnitSize: 4, Jumping: true})
	assert.Equal(t, StateNoPath, res.State)
	assert.Empty(t, res.Path)
}

func TestFindPathFullWall(t *testing.T) {
	g := gapWallGrid(false)
	for _, jumping := range []bool{true, false} {
		res := findPath(t, g, SearchRequest{
			Start: Cell{5, 25}, Target: Cell{75, 25}, UnitSize: 1, Jumping: jumping,
		})
		assert.Equal(t, StateNoPath, res.State)
		assert.False(t, res.Found())
		assert.Greater(t, res.Visited, 0)
	}
}

func TestFindPathWallAffinityHugsWalls(t *testing.T) {
	g := NewGrid(40, 21, parameter.SDFMaxDistance)
	blockRect(g, 0, 5, g.Width-1, 5)
	BuildSDF(g, MetricEuclidean)

	start, target := Cell{2, 12}, Cell{37, 12}
	meanSDF := func(path []PathNode) float64 {
		total := 0
		for _, n := range path {
			total += g.SDF(n.X, n.Y)
		}
		return float64(total) / float64(len(path))
	}

	neutral := findPath(t, g, SearchRequest{Start: start, Target: target, UnitSize: 1, WallAffinity: 0, Jumping: true})
	hugging := findPath(t, g, SearchRequest{Start: start, Target: target, UnitSize: 1, WallAffinity: 6, Jumping: true})
	requireEndpoints(t, neutral, start, target)
	requireEndpoints(t, hugging, start, target)

	assert.Less(t, meanSDF(hugging.Path), meanSDF(neutral.Path))
	assert.Greater(t, PathLength(hugging.Path), PathLength(neutral.Path))
}

func TestFindPathNegativeAffinityActsAsZero(t *testing.T) {
	g := clutteredGrid()
	req := SearchRequest{Start: Cell{5, 5}, Target: Cell{55, 25}, UnitSize: 1, Jumping: true}

	neutral := findPath(t, g, req)
	req.WallAffinity = -3
	negative := findPath(t, g, req)

	assert.Equal(t, neutral.Path, negative.Path)
}

func TestFindPathInvalidRequests(t *testing.T) {
	g := NewGrid(10, 10, 5)
	BuildSDF(g, MetricEuclidean)

	res, err := FindPath(g, SearchRequest{Start: Cell{1, 1}, Target: Cell{8, 8}, UnitSize: 0}, nil)
	assert.ErrorIs(t, err, ErrInvalidUnitSize)
	assert.Equal(t, StateNoPath, res.State)

	_, err = FindPath(g, SearchRequest{Start: Cell{-1, 1}, Target: Cell{8, 8}, UnitSize: 1}, nil)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = FindPath(g, SearchRequest{Start: Cell{1, 1}, Target: Cell{8, 10}, UnitSize: 1}, nil)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestFindPathSameCell(t *testing.T) {
	g := NewGrid(10, 10, 5)
	BuildSDF(g, MetricEuclidean)

	res := findPath(t, g, SearchRequest{Start: Cell{4, 4}, Target: Cell{4, 4}, UnitSize: 1, Jumping: true})
	requireEndpoints(t, res, Cell{4, 4}, Cell{4, 4})
	assert.Len(t, res.Path, 1)
	assert.Equal(t, parameter.SearchSeedScore, res.Path[0].Score)
	assert.Zero(t, PathLength(res.Path))
}

func TestFindPathScoresIncreaseTowardStart(t *testing.T) {
	g := clutteredGrid()
	res := findPath(t, g, SearchRequest{Start: Cell{5, 5}, Target: Cell{55, 25}, UnitSize: 1, WallAffinity: 3, Jumping: true})
	require.True(t, res.Found())

	for i := 1; i < len(res.Path); i++ {
		assert.Greater(t, res.Path[i-1].Score, res.Path[i].Score)
		assert.Equal(t, res.Path[i].X, res.Path[i-1].FromX)
		assert.Equal(t, res.Path[i].Y, res.Path[i-1].FromY)
	}
	last := res.Path[len(res.Path)-1]
	assert.Equal(t, -1, last.FromX)
	assert.Equal(t, parameter.SearchSeedScore, last.Score)
}

// linearScanSearch is the unoptimized form: unsorted queue, minimum found by
// scan with first-inserted winning ties, duplicates and stale entries expanded
func linearScanSearch(g *Grid, req SearchRequest) []PathNode {
	w := g.Width
	nodes := make([]PathNode, g.Size())
	origin := PathNode{X: req.Target.X, Y: req.Target.Y, FromX: -1, FromY: -1, Score: 1}
	nodes[req.Target.Y*w+req.Target.X] = origin
	queue := []PathNode{origin}

	for len(queue) > 0 {
		lowest := 0
		for i := 1; i < len(queue); i++ {
			if queue[i].Score < queue[lowest].Score {
				lowest = i
			}
		}
		node := queue[lowest]
		queue = append(queue[:lowest], queue[lowest+1:]...)

		cellSdf := g.SDF(node.X, node.Y)
		maxDistance := max(1, cellSdf-req.UnitSize)
		for _, off := range NeighborOffsets() {
			step := off.Distance
			if step > maxDistance || (!req.Jumping && step > 1) {
				continue
			}
			x, y := node.X+off.DX, node.Y+off.DY
			if !g.InBounds(x, y) {
				continue
			}
			nextSdf := g.SDF(x, y)
			if nextSdf < req.UnitSize {
				continue
			}
			score := node.Score + step + (nextSdf+cellSdf)*(step+1)/2*req.WallAffinity/6
			idx := y*w + x
			if nodes[idx].Score == 0 || score < nodes[idx].Score {
				nodes[idx] = PathNode{X: x, Y: y, FromX: node.X, FromY: node.Y, Score: score}
				queue = append(queue, nodes[idx])
			}
		}
	}
	return nodes
}

func TestFindPathMatchesLinearScan(t *testing.T) {
	g := NewGrid(40, 25, parameter.SDFMaxDistance)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 15; i++ {
		x, y := 3+rng.Intn(34), rng.Intn(25)
		blockRect(g, x-1, y-1, x+1, y+1)
	}
	start, target := Cell{1, 12}, Cell{38, 12}
	g.SetBlocked(start.X, start.Y, false)
	g.SetBlocked(target.X, target.Y, false)

	for _, metric := range allMetrics {
		BuildSDF(g, metric)
		for _, affinity := range []int{0, 2, 5} {
			for _, jumping := range []bool{true, false} {
				req := SearchRequest{Start: start, Target: target, UnitSize: 1, WallAffinity: affinity, Jumping: jumping}
				cache := NewSearchCache(g.Width, g.Height)
				res, err := FindPath(g, req, cache)
				require.NoError(t, err)

				want := linearScanSearch(g, req)
				require.Equal(t, want, cache.Nodes, "%s affinity %d jumping %v", metric, affinity, jumping)

				if res.Found() {
					path, ok := reconstructPath(want, g.Width, start, target, g.Size())
					require.True(t, ok)
					assert.Equal(t, path, res.Path)
				}
			}
		}
	}
}

// A tiny open set bound drops pushes but still ends the search cleanly
func TestFindPathOpenSetOverflow(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	g := NewGrid(20, 20, parameter.SDFMaxDistance)
	BuildSDF(g, MetricEuclidean)
	req := SearchRequest{Start: Cell{1, 10}, Target: Cell{18, 10}, UnitSize: 1, Jumping: true}

	cache := NewSearchCache(g.Width, g.Height)
	cache.openSetLimit = 4

	var res SearchResult
	require.NotPanics(t, func() {
		var err error
		res, err = FindPath(g, req, cache)
		require.NoError(t, err)
	})
	assert.Greater(t, res.Dropped, 0)
	assert.LessOrEqual(t, res.MaxOpen, 4)
	assert.Contains(t, []SearchState{StatePathFound, StateNoPath}, res.State)
	assert.Equal(t, res.State, cache.State)
	if res.Found() {
		assert.Empty(t, VerifyPath(g, res.Path, req.UnitSize, req.Jumping))
	}

	out := logs.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "search open set overflow")
	assert.Contains(t, out, "limit=4")

	// Same grid under the default bound
	full, err := FindPath(g, req, nil)
	require.NoError(t, err)
	requireEndpoints(t, full, req.Start, req.Target)
	assert.Greater(t, full.MaxOpen, 4)
	assert.LessOrEqual(t, full.MaxOpen, g.Size())
}

func TestReconstructPathRejectsBrokenChains(t *testing.T) {
	const w = 4
	nodes := make([]PathNode, w*w)

	// Two cells pointing at each other never reach the target
	nodes[0] = PathNode{X: 0, Y: 0, FromX: 1, FromY: 0, Score: 5}
	nodes[1] = PathNode{X: 1, Y: 0, FromX: 0, FromY: 0, Score: 4}
	_, ok := reconstructPath(nodes, w, Cell{0, 0}, Cell{3, 3}, w*w)
	assert.False(t, ok)

	// Unvisited link
	nodes[1] = PathNode{X: 1, Y: 0, FromX: 2, FromY: 0, Score: 4}
	_, ok = reconstructPath(nodes, w, Cell{0, 0}, Cell{3, 3}, w*w)
	assert.False(t, ok)

	// Pointer leaving the grid
	nodes[1] = PathNode{X: 1, Y: 0, FromX: -1, FromY: -1, Score: 4}
	_, ok = reconstructPath(nodes, w, Cell{0, 0}, Cell{3, 3}, w*w)
	assert.False(t, ok)

	// Intact chain
	nodes[1] = PathNode{X: 1, Y: 0, FromX: 3, FromY: 3, Score: 3}
	nodes[15] = PathNode{X: 3, Y: 3, FromX: -1, FromY: -1, Score: 1}
	path, ok := reconstructPath(nodes, w, Cell{0, 0}, Cell{3, 3}, w*w)
	require.True(t, ok)
	assert.Len(t, path, 3)
}

func TestScoreHeapOrder(t *testing.T) {
	var h scoreHeap
	entries := []heapEntry{
		{idx: 1, score: 5, seq: 0},
		{idx: 2, score: 3, seq: 1},
		{idx: 3, score: 5, seq: 2},
		{idx: 4, score: 3, seq: 3},
		{idx: 5, score: 1, seq: 4},
		{idx: 6, score: 5, seq: 5},
	}
	for _, e := range entries {
		h.push(e)
	}

	var order []int
	for len(h) > 0 {
		order = append(order, h.pop().idx)
	}
	// Lowest score first, equal scores in insertion order
	assert.Equal(t, []int{5, 2, 4, 1, 3, 6}, order)
}

func TestSearchStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "searching", StateSearching.String())
	assert.Equal(t, "path-found", StatePathFound.String())
	assert.Equal(t, "no-path", StateNoPath.String())
	assert.Equal(t, "state(9)", SearchState(9).String())
}
