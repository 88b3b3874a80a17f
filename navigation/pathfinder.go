package navigation

import (
	"fmt"
	"log/slog"

	"github.com/lixenwraith/sdf-pathfinding/parameter"
)

// SearchState tracks a search run: Idle -> Searching -> PathFound | NoPath
type SearchState uint8

const (
	StateIdle SearchState = iota
	StateSearching
	StatePathFound
	StateNoPath
)

func (s SearchState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSearching:
		return "searching"
	case StatePathFound:
		return "path-found"
	case StateNoPath:
		return "no-path"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// PathNode is a search map entry; Score 0 means unvisited
type PathNode struct {
	X, Y         int
	FromX, FromY int // Parent toward the search origin, -1 for the origin itself
	Score        int
}

// SearchRequest describes one agent's query against the current SDF
type SearchRequest struct {
	Start, Target Cell
	UnitSize      int  // Minimum SDF a cell needs for the agent to stand on it
	WallAffinity  int  // Weight of the integrated SDF term; negative values are treated as 0
	Jumping       bool // Allow steps longer than one cell where clearance permits
}

// SearchResult is the outcome of FindPath
type SearchResult struct {
	State   SearchState
	Path    []PathNode // Start first, target last; empty unless PathFound
	Visited int        // Open set entries expanded
	Dropped int        // Pushes rejected by the open set bound
	MaxOpen int        // Largest open set size reached
}

// Found reports whether a usable path exists
func (r SearchResult) Found() bool {
	return r.State == StatePathFound && len(r.Path) > 0
}

// --- Min-heap for the open set ---

type heapEntry struct {
	idx   int    // Flat grid index (y*width + x)
	score int    // Score at push time, stale once the node improves
	seq   uint64 // Insertion order, breaks score ties first-in first-out
}

func (e heapEntry) less(o heapEntry) bool {
	if e.score != o.score {
		return e.score < o.score
	}
	return e.seq < o.seq
}

type scoreHeap []heapEntry

func (h *scoreHeap) push(e heapEntry) {
	*h = append(*h, e)
	// Sift up
	i := len(*h) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if !(*h)[i].less((*h)[parent]) {
			break
		}
		(*h)[parent], (*h)[i] = (*h)[i], (*h)[parent]
		i = parent
	}
}

func (h *scoreHeap) pop() heapEntry {
	old := *h
	n := len(old)
	e := old[0]
	old[0] = old[n-1]
	*h = old[:n-1]

	// Sift down
	i := 0
	for {
		left := 2*i + 1
		if left >= len(*h) {
			break
		}
		smallest := left
		if right := left + 1; right < len(*h) && (*h)[right].less((*h)[left]) {
			smallest = right
		}
		if !(*h)[smallest].less((*h)[i]) {
			break
		}
		(*h)[i], (*h)[smallest] = (*h)[smallest], (*h)[i]
		i = smallest
	}
	return e
}

// FindPath runs a uniform-cost search over the SDF for one agent
//
// The search starts at the target and ends at the start, so following parent
// pointers from the start yields the path already in walking order. Each
// expansion may jump up to max(1, sdf-UnitSize) cells, and cells whose SDF is
// below UnitSize are never entered. Step cost is the jump length plus the
// trapezoid-integrated SDF along the jump scaled by WallAffinity/6.
//
// cache may be nil; when provided its buffers are reused and it keeps the
// score map for inspection. Unreachable start is reported as StateNoPath with
// a nil error; errors are returned only for malformed requests
func FindPath(g *Grid, req SearchRequest, cache *SearchCache) (SearchResult, error) {
	if req.UnitSize < 1 {
		return SearchResult{State: StateNoPath}, fmt.Errorf("find path unit size %d: %w", req.UnitSize, ErrInvalidUnitSize)
	}
	if !g.InBounds(req.Start.X, req.Start.Y) {
		return SearchResult{State: StateNoPath}, fmt.Errorf("find path start %v: %w", req.Start, ErrOutOfBounds)
	}
	if !g.InBounds(req.Target.X, req.Target.Y) {
		return SearchResult{State: StateNoPath}, fmt.Errorf("find path target %v: %w", req.Target, ErrOutOfBounds)
	}

	if cache == nil {
		cache = NewSearchCache(g.Width, g.Height)
	} else if cache.Width != g.Width || cache.Height != g.Height {
		cache.Resize(g.Width, g.Height)
	}
	cache.State = StateSearching

	nodes := cache.Nodes
	for i := range nodes {
		nodes[i] = PathNode{}
	}

	w := g.Width
	limit := g.Size()
	openLimit := limit
	if cache.openSetLimit > 0 {
		openLimit = cache.openSetLimit
	}
	unitSize := req.UnitSize
	affinity := max(0, req.WallAffinity)

	// Roles swapped: the search origin is the agent's target
	originX, originY := req.Target.X, req.Target.Y
	originIdx := originY*w + originX
	nodes[originIdx] = PathNode{
		X: originX, Y: originY,
		FromX: -1, FromY: -1,
		Score: parameter.SearchSeedScore,
	}

	var result SearchResult
	h := cache.heap[:0]
	var seq uint64
	h.push(heapEntry{idx: originIdx, score: parameter.SearchSeedScore, seq: seq})
	seq++
	result.MaxOpen = 1

	for len(h) > 0 {
		entry := h.pop()
		cur := nodes[entry.idx]
		if entry.score > cur.Score {
			continue // Stale entry, a cheaper relaxation was already expanded
		}
		result.Visited++

		// Clearance at the current cell bounds how far the agent may jump
		// without the chance of clipping a wall on the way
		cellSdf := g.sdf[entry.idx]
		maxDistance := max(1, cellSdf-unitSize)

		for _, off := range neighborOffsets {
			step := off.Distance
			if step > maxDistance || (!req.Jumping && step > 1) {
				continue
			}

			nx := cur.X + off.DX
			ny := cur.Y + off.DY
			if nx < 0 || ny < 0 || nx >= w || ny >= g.Height {
				continue
			}

			nIdx := ny*w + nx
			nextSdf := g.sdf[nIdx]
			if nextSdf < unitSize {
				continue
			}

			// Linear SDF between both cells, integrated over the jump; integer
			// truncation slightly favors longer jumps
			integrated := (nextSdf + cellSdf) * (step + 1) / 2
			score := cur.Score + step + integrated*affinity/parameter.WallAffinityDivisor

			if prev := nodes[nIdx].Score; prev != 0 && score >= prev {
				continue
			}
			nodes[nIdx] = PathNode{
				X: nx, Y: ny,
				FromX: cur.X, FromY: cur.Y,
				Score: score,
			}

			if len(h) >= openLimit {
				result.Dropped++
				continue
			}
			h.push(heapEntry{idx: nIdx, score: score, seq: seq})
			seq++
			result.MaxOpen = max(result.MaxOpen, len(h))
		}
	}
	cache.heap = h

	if result.Dropped > 0 {
		slog.Warn("search open set overflow",
			"dropped", result.Dropped,
			"limit", openLimit,
			"start", req.Start,
			"target", req.Target,
		)
	}

	startIdx := req.Start.Y*w + req.Start.X
	if nodes[startIdx].Score == 0 {
		result.State = StateNoPath
		cache.finish(g, result.State)
		return result, nil
	}

	path, ok := reconstructPath(nodes, w, req.Start, req.Target, limit)
	if !ok {
		slog.Error("path reconstruction aborted",
			"start", req.Start,
			"target", req.Target,
			"limit", limit,
		)
		result.State = StateNoPath
		cache.finish(g, result.State)
		return result, nil
	}

	result.State = StatePathFound
	result.Path = path
	cache.finish(g, result.State)
	return result, nil
}

// reconstructPath follows parent pointers from start to target
// Returns false if the chain breaks or exceeds limit links
func reconstructPath(nodes []PathNode, width int, start, target Cell, limit int) ([]PathNode, bool) {
	path := make([]PathNode, 0, 64)
	x, y := start.X, start.Y

	for x != target.X || y != target.Y {
		if len(path) >= limit {
			return nil, false
		}
		if x < 0 || y < 0 || x >= width {
			return nil, false
		}
		idx := y*width + x
		if idx >= len(nodes) {
			return nil, false
		}
		node := nodes[idx]
		if node.Score == 0 {
			return nil, false
		}
		path = append(path, node)
		x, y = node.FromX, node.FromY
	}

	path = append(path, nodes[target.Y*width+target.X])
	return path, true
}
