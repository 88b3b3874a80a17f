package simulation

import (
	"github.com/lixenwraith/sdf-pathfinding/config"
	"github.com/lixenwraith/sdf-pathfinding/navigation"
	"github.com/lixenwraith/sdf-pathfinding/vmath"
)

// Agent is one pathfinding entity sharing the grid with the others
// Fields are written by the owning Simulation only; renderers read them between ticks
type Agent struct {
	Name          string
	Start, Target navigation.Cell
	UnitSize      int
	WallAffinity  int
	Speed         float64 // cells/s

	Glyph string
	Color string

	// Search output
	Path   []navigation.PathNode
	Result navigation.SearchResult
	Cache  *navigation.SearchCache // Score map of the last search

	// Movement
	Follower navigation.Follower
	Position vmath.Vec2F
	Moving   bool // Position is valid
}

func newAgent(cfg config.Agent, speed float64, width, height int) *Agent {
	return &Agent{
		Name:         cfg.Name,
		Start:        cfg.Start,
		Target:       cfg.Target,
		UnitSize:     cfg.UnitSize,
		WallAffinity: cfg.WallAffinity,
		Speed:        speed,
		Glyph:        cfg.Glyph,
		Color:        cfg.Color,
		Cache:        navigation.NewSearchCache(width, height),
	}
}

// HasPath reports whether the last search produced a walkable path
func (a *Agent) HasPath() bool {
	return a.Result.Found()
}

// PathLength is the Euclidean length of the current path
func (a *Agent) PathLength() float64 {
	return navigation.PathLength(a.Path)
}

func (a *Agent) request(jumping bool) navigation.SearchRequest {
	return navigation.SearchRequest{
		Start:        a.Start,
		Target:       a.Target,
		UnitSize:     a.UnitSize,
		WallAffinity: a.WallAffinity,
		Jumping:      jumping,
	}
}
