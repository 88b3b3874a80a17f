// Package simulation owns the shared grid and its agents and advances them frame by frame
package simulation

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/sdf-pathfinding/config"
	"github.com/lixenwraith/sdf-pathfinding/layout"
	"github.com/lixenwraith/sdf-pathfinding/navigation"
	"github.com/lixenwraith/sdf-pathfinding/parameter"
	"github.com/lixenwraith/sdf-pathfinding/vmath"
)

var ErrNoAgent = errors.New("no such agent")

// Stats summarizes rebuild activity for status read-outs
type Stats struct {
	Rebuilds    uint64
	LastRebuild time.Duration
	Blocked     int
	LayoutSeed  int64
}

// Simulation is the single-owner context for one grid and its agents
// Not safe for concurrent use; Rebuild parallelizes internally and returns
// only after every agent search finished
type Simulation struct {
	cfg    config.Scenario
	grid   *navigation.Grid
	agents []*Agent

	// Settings
	metric  navigation.Metric
	jumping bool
	pending bool // Settings changed since the last rebuild

	workers int
	stats   Stats
}

// New validates cfg, applies its layout and runs the first rebuild
func New(cfg config.Scenario) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Simulation{
		cfg:     cfg,
		grid:    navigation.NewGrid(cfg.Width, cfg.Height, cfg.MaxDistance),
		agents:  make([]*Agent, 0, len(cfg.Agents)),
		metric:  cfg.Metric,
		jumping: cfg.Jumping,
		workers: runtime.GOMAXPROCS(0),
	}
	for i, a := range cfg.Agents {
		s.agents = append(s.agents, newAgent(a, cfg.AgentSpeed(i), cfg.Width, cfg.Height))
	}

	if _, err := s.ApplyLayout(cfg.Layout); err != nil {
		return nil, fmt.Errorf("applying layout: %w", err)
	}
	if _, err := s.Rebuild(); err != nil {
		return nil, fmt.Errorf("initial rebuild: %w", err)
	}

	slog.Info("simulation ready",
		"width", cfg.Width,
		"height", cfg.Height,
		"metric", s.metric,
		"agents", len(s.agents),
		"layout", cfg.Layout.Kind,
		"seed", s.stats.LayoutSeed,
	)
	return s, nil
}

// --- Grid edits ---

// SetBlocked edits one cell, reports whether it changed
// The next Tick rebuilds; several edits in one frame cost one rebuild
func (s *Simulation) SetBlocked(x, y int, blocked bool) bool {
	return s.grid.SetBlocked(x, y, blocked)
}

// Toggle flips a cell and returns its new state
// A mouse press uses the result as the paint mode for the rest of the drag
func (s *Simulation) Toggle(x, y int) (blocked, ok bool) {
	if !s.grid.InBounds(x, y) {
		return false, false
	}
	blocked = !s.grid.Blocked(x, y)
	s.grid.SetBlocked(x, y, blocked)
	return blocked, true
}

// Paint sets a cell to the drag's paint mode
func (s *Simulation) Paint(x, y int, blocked bool) bool {
	return s.grid.SetBlocked(x, y, blocked)
}

// ClearWalls removes every wall
func (s *Simulation) ClearWalls() {
	s.grid.Clear()
}

// ApplyLayout regenerates the grid from spec, returns the seed used
// Maze corridors are widened to fit the largest agent; agent endpoints stay open
func (s *Simulation) ApplyLayout(spec layout.Spec) (int64, error) {
	if spec.Kind == layout.KindMaze {
		spec.Maze.Corridor = max(spec.Maze.Corridor, layout.CorridorFor(s.cfg.MaxUnitSize()))
	}

	keep := make([]navigation.Cell, 0, 2*len(s.agents))
	for _, a := range s.agents {
		keep = append(keep, a.Start, a.Target)
	}

	seed, err := layout.Apply(s.grid, spec, keep...)
	if err != nil {
		return 0, err
	}
	// Clearing an already empty grid is not an edit, rebuild regardless
	s.grid.MarkDirty()
	s.stats.LayoutSeed = seed

	slog.Debug("layout applied",
		"kind", spec.Kind,
		"seed", seed,
		"blocked", s.grid.BlockedCount(),
	)
	return seed, nil
}

// Randomize scatters the configured random blocks; seed 0 picks a fresh one
func (s *Simulation) Randomize(seed int64) (int64, error) {
	spec := s.cfg.Layout
	spec.Kind = layout.KindScatter
	spec.Seed = seed
	return s.ApplyLayout(spec)
}

// --- Rebuild ---

// RebuildSDF recomputes the distance field with metric
func (s *Simulation) RebuildSDF(metric navigation.Metric) {
	s.metric = metric
	navigation.BuildSDF(s.grid, metric)
}

// FindPath searches for agent i against the current SDF and replaces its path
// The follower keeps its distance; a shorter path wraps it on the next advance
func (s *Simulation) FindPath(i int, jumping bool) (navigation.SearchResult, error) {
	a, err := s.Agent(i)
	if err != nil {
		return navigation.SearchResult{}, err
	}
	if err := s.search(a, jumping); err != nil {
		return a.Result, err
	}
	return a.Result, nil
}

func (s *Simulation) search(a *Agent, jumping bool) error {
	res, err := navigation.FindPath(s.grid, a.request(jumping), a.Cache)
	if err != nil {
		return fmt.Errorf("agent %s: %w", a.Name, err)
	}
	a.Result = res
	a.Path = res.Path
	return nil
}

// Rebuild recomputes the SDF, then every agent's path in parallel
// Returns path found/lost transitions
func (s *Simulation) Rebuild() ([]AgentEvent, error) {
	start := time.Now()
	s.RebuildSDF(s.metric)

	had := make([]bool, len(s.agents))
	for i, a := range s.agents {
		had[i] = a.HasPath()
	}

	// Agents read the grid and write only their own state
	var g errgroup.Group
	g.SetLimit(s.workers)
	for _, a := range s.agents {
		g.Go(func() error {
			return s.search(a, s.jumping)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.pending = false

	var events []AgentEvent
	for i, a := range s.agents {
		has := a.HasPath()
		switch {
		case has && !had[i]:
			events = append(events, AgentEvent{Agent: i, Name: a.Name, Kind: EventPathFound})
		case !has && had[i]:
			// A route that reappears is walked from its first waypoint
			a.Follower.Reset()
			events = append(events, AgentEvent{Agent: i, Name: a.Name, Kind: EventPathLost})
		}
	}

	s.stats.Rebuilds++
	s.stats.LastRebuild = time.Since(start)
	s.stats.Blocked = s.grid.BlockedCount()

	slog.Debug("rebuild",
		"generation", s.grid.Generation(),
		"metric", s.metric,
		"jumping", s.jumping,
		"duration", s.stats.LastRebuild,
	)
	return events, nil
}

// --- Frame ---

// AdvanceFollower moves agent i along its path by dt at the agent's speed
func (s *Simulation) AdvanceFollower(i int, dt time.Duration) (vmath.Vec2F, bool) {
	a, err := s.Agent(i)
	if err != nil {
		return vmath.Vec2F{}, false
	}
	s.advance(a, dt)
	return a.Position, a.Moving
}

func (s *Simulation) advance(a *Agent, dt time.Duration) (wrapped bool) {
	a.Position, a.Moving, wrapped = a.Follower.Advance(a.Path, a.Speed, dt.Seconds())
	return wrapped
}

// Tick rebuilds if the grid or settings changed, then advances every follower
// dt is clamped to [0, parameter.MaxFrameDelta]
func (s *Simulation) Tick(dt time.Duration) ([]AgentEvent, error) {
	dt = min(max(dt, 0), parameter.MaxFrameDelta)

	var events []AgentEvent
	if s.grid.Dirty() || s.pending {
		rebuilt, err := s.Rebuild()
		if err != nil {
			return nil, err
		}
		events = rebuilt
	}

	for i, a := range s.agents {
		if s.advance(a, dt) {
			events = append(events, AgentEvent{Agent: i, Name: a.Name, Kind: EventLooped})
		}
	}
	return events, nil
}

// --- Settings ---

func (s *Simulation) Metric() navigation.Metric {
	return s.metric
}

// SetMetric schedules a rebuild with metric
func (s *Simulation) SetMetric(metric navigation.Metric) {
	if metric != s.metric {
		s.metric = metric
		s.invalidate()
	}
}

// CycleMetric advances euclidean -> chebyshev -> manhattan -> euclidean
func (s *Simulation) CycleMetric() navigation.Metric {
	s.SetMetric(s.metric.Next())
	return s.metric
}

func (s *Simulation) Jumping() bool {
	return s.jumping
}

func (s *Simulation) SetJumping(enabled bool) {
	if enabled != s.jumping {
		s.jumping = enabled
		s.invalidate()
	}
}

func (s *Simulation) ToggleJumping() bool {
	s.SetJumping(!s.jumping)
	return s.jumping
}

// CycleWallAffinity steps agent i's affinity through 0..WallAffinityCycle-1
func (s *Simulation) CycleWallAffinity(i int) (int, error) {
	a, err := s.Agent(i)
	if err != nil {
		return 0, err
	}
	a.WallAffinity = (a.WallAffinity + 1) % parameter.WallAffinityCycle
	a.Cache.Invalidate()
	s.pending = true
	return a.WallAffinity, nil
}

// invalidate drops every score map and schedules a rebuild
func (s *Simulation) invalidate() {
	for _, a := range s.agents {
		a.Cache.Invalidate()
	}
	s.pending = true
}

// --- Queries ---

// Grid exposes the grid read-only
func (s *Simulation) Grid() navigation.GridView {
	return s.grid
}

// Agents returns the agents in configuration order
func (s *Simulation) Agents() []*Agent {
	out := make([]*Agent, len(s.agents))
	copy(out, s.agents)
	return out
}

func (s *Simulation) Agent(i int) (*Agent, error) {
	if i < 0 || i >= len(s.agents) {
		return nil, fmt.Errorf("agent %d of %d: %w", i, len(s.agents), ErrNoAgent)
	}
	return s.agents[i], nil
}

// Scenario returns the configuration the simulation was built from
func (s *Simulation) Scenario() config.Scenario {
	return s.cfg
}

func (s *Simulation) Stats() Stats {
	return s.stats
}
