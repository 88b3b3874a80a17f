package parameter

// Grid
const (
	// GridWidth and GridHeight are the default sandbox dimensions in cells
	GridWidth  = 80
	GridHeight = 45

	// SDFMaxDistance caps the distance field (D_MAX); cells farther from any wall report this value
	SDFMaxDistance = 10

	// SDFMaxDistanceLimit is the largest cap a scenario may request
	SDFMaxDistanceLimit = 15
)

// Pathfinding
const (
	// NeighborRadius bounds the jump offsets precomputed for the search (cells)
	NeighborRadius = 10

	// WallAffinityDivisor scales the integrated SDF term of the step cost
	WallAffinityDivisor = 6

	// WallAffinityCycle is the exclusive upper bound when cycling an agent's affinity
	WallAffinityCycle = 8

	// SearchSeedScore is the score of the search origin; 0 marks unvisited cells
	SearchSeedScore = 1
)

// Movement
const (
	// MovementSpeed is the default follower speed in cells per second
	MovementSpeed = 3.0
)

// Scatter layout: 40 squares of half-size 1-2 inside a 15-cell margin
const (
	ScatterBlockCount  = 40
	ScatterMargin      = 15
	ScatterMinHalfSize = 1
	ScatterMaxHalfSize = 2
)
