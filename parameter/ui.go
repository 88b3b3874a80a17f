package parameter

import "time"

// Frame pacing
const (
	// FrameInterval is the sandbox tick (~60 FPS)
	FrameInterval = 16 * time.Millisecond

	// MaxFrameDelta clamps dt after stalls so followers don't skip whole paths
	MaxFrameDelta = 100 * time.Millisecond
)

// Layout & Margins
const (
	// StatusLines reserved under the grid for help and read-outs
	StatusLines = 6
)
