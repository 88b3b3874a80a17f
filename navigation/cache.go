package navigation

// SearchCache holds one agent's search map between recomputations
// Buffers are reused across runs; the score map stays readable for visualization
type SearchCache struct {
	Width, Height int
	Nodes         []PathNode // Per-cell search state of the last run

	// Cache state
	State      SearchState // Outcome of the last run, StateIdle before the first
	Generation uint64      // Grid SDF generation the map was computed against
	Valid      bool        // False if the map needs recomputation

	// Reusable heap buffer to reduce allocations across recomputes
	heap scoreHeap

	// openSetLimit overrides the Width*Height open set bound when positive
	openSetLimit int
}

// NewSearchCache creates an empty cache for the given dimensions
func NewSearchCache(width, height int) *SearchCache {
	size := width * height
	return &SearchCache{
		Width:  width,
		Height: height,
		Nodes:  make([]PathNode, size),
		State:  StateIdle,
		heap:   make(scoreHeap, 0, size/4),
	}
}

// Resize adjusts cache dimensions, invalidates cache
func (c *SearchCache) Resize(width, height int) {
	size := width * height
	if cap(c.Nodes) < size {
		c.Nodes = make([]PathNode, size)
	} else {
		c.Nodes = c.Nodes[:size]
	}
	c.Width = width
	c.Height = height
	c.Valid = false
	c.State = StateIdle
}

// Invalidate marks the map for recomputation
func (c *SearchCache) Invalidate() {
	c.Valid = false
}

// Stale reports whether the map predates the grid's current SDF
func (c *SearchCache) Stale(g GridView) bool {
	return !c.Valid || c.Generation != g.Generation()
}

func (c *SearchCache) finish(g GridView, state SearchState) {
	c.State = state
	c.Generation = g.Generation()
	c.Valid = true
}

// Score returns the search score at a cell, 0 if unvisited/invalid
func (c *SearchCache) Score(x, y int) int {
	if !c.Valid || x < 0 || y < 0 || x >= c.Width || y >= c.Height {
		return 0
	}
	return c.Nodes[y*c.Width+x].Score
}

// MaxScore returns the highest score in the map, 0 if invalid
func (c *SearchCache) MaxScore() int {
	if !c.Valid {
		return 0
	}
	best := 0
	for i := range c.Nodes {
		if c.Nodes[i].Score > best {
			best = c.Nodes[i].Score
		}
	}
	return best
}

// VisitedCount returns the number of cells that received a score
func (c *SearchCache) VisitedCount() int {
	if !c.Valid {
		return 0
	}
	n := 0
	for i := range c.Nodes {
		if c.Nodes[i].Score != 0 {
			n++
		}
	}
	return n
}
