// Package layout fills an occupancy grid with obstacle patterns
package layout

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/lixenwraith/sdf-pathfinding/navigation"
	"github.com/lixenwraith/sdf-pathfinding/parameter"
)

// Kind names a generator
type Kind string

const (
	KindClear   Kind = "clear"
	KindScatter Kind = "scatter"
	KindWall    Kind = "wall"
	KindMaze    Kind = "maze"
)

var ErrUnknownKind = errors.New("unknown layout kind")

// ParseKind resolves a case-insensitive generator name
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindClear, KindScatter, KindWall, KindMaze:
		return k, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownKind)
}

// Target is the writable side of a grid; *navigation.Grid satisfies it
type Target interface {
	Dimensions() (width, height int)
	SetBlocked(x, y int, blocked bool) bool
	Clear()
}

// Spec selects a generator and carries the options of every kind
type Spec struct {
	Kind Kind  `yaml:"kind"`
	Seed int64 `yaml:"seed"` // 0 = time based

	Scatter ScatterOptions `yaml:"scatter"`
	Wall    WallOptions    `yaml:"wall"`
	Maze    MazeOptions    `yaml:"maze"`
}

// DefaultSpec is the random block field the sandbox starts with
func DefaultSpec() Spec {
	return Spec{
		Kind:    KindScatter,
		Scatter: DefaultScatter(),
		Wall:    DefaultWall(),
		Maze:    DefaultMaze(),
	}
}

// Validate checks the selected kind and its options
func (s Spec) Validate() error {
	switch s.Kind {
	case KindClear:
		return nil
	case KindScatter:
		return s.Scatter.validate()
	case KindWall:
		return s.Wall.validate()
	case KindMaze:
		return s.Maze.validate()
	}
	return fmt.Errorf("layout %q: %w", s.Kind, ErrUnknownKind)
}

// Apply clears t, runs the selected generator and reopens keep cells
// Returns the seed actually used so a run can be reproduced
func Apply(t Target, s Spec, keep ...navigation.Cell) (int64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}

	seed := s.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	switch s.Kind {
	case KindClear:
		t.Clear()
	case KindScatter:
		Scatter(t, rng, s.Scatter)
	case KindWall:
		VerticalWall(t, s.Wall)
	case KindMaze:
		Maze(t, rng, s.Maze, keep...)
	}

	for _, c := range keep {
		t.SetBlocked(c.X, c.Y, false)
	}
	return seed, nil
}

// --- Scatter ---

// ScatterOptions places Count squares with random centers inside the margin
type ScatterOptions struct {
	Count       int `yaml:"count"`
	Margin      int `yaml:"margin"`
	MinHalfSize int `yaml:"min_half_size"`
	MaxHalfSize int `yaml:"max_half_size"`
}

func DefaultScatter() ScatterOptions {
	return ScatterOptions{
		Count:       parameter.ScatterBlockCount,
		Margin:      parameter.ScatterMargin,
		MinHalfSize: parameter.ScatterMinHalfSize,
		MaxHalfSize: parameter.ScatterMaxHalfSize,
	}
}

func (o ScatterOptions) validate() error {
	if o.Count < 0 || o.Margin < 0 {
		return fmt.Errorf("scatter count %d margin %d: must not be negative", o.Count, o.Margin)
	}
	if o.MinHalfSize < 0 || o.MaxHalfSize < o.MinHalfSize {
		return fmt.Errorf("scatter half size [%d, %d]: invalid range", o.MinHalfSize, o.MaxHalfSize)
	}
	return nil
}

// Scatter clears t and stamps squares that either block or clear their area
// Later squares overwrite earlier ones, so clearing squares carve into blocks
func Scatter(t Target, rng *rand.Rand, o ScatterOptions) {
	t.Clear()
	w, h := t.Dimensions()

	for i := 0; i < o.Count; i++ {
		cx := randRange(rng, o.Margin, w-o.Margin)
		cy := randRange(rng, o.Margin, h-o.Margin)
		half := randRange(rng, o.MinHalfSize, o.MaxHalfSize)
		blocked := rng.Intn(2) == 1

		for dy := -half; dy <= half; dy++ {
			for dx := -half; dx <= half; dx++ {
				t.SetBlocked(cx+dx, cy+dy, blocked)
			}
		}
	}
}

// randRange returns a value in [lo, hi], collapsing to the midpoint when the range is empty
func randRange(rng *rand.Rand, lo, hi int) int {
	if hi < lo {
		return (lo + hi) / 2
	}
	return lo + rng.Intn(hi-lo+1)
}

// --- Vertical wall ---

// WallOptions describes a full-height wall with an optional gap
type WallOptions struct {
	X         int `yaml:"x"`
	Thickness int `yaml:"thickness"`
	GapY      int `yaml:"gap_y"`
	GapHeight int `yaml:"gap_height"` // 0 = no gap
}

func DefaultWall() WallOptions {
	return WallOptions{X: 39, Thickness: 3, GapY: 20, GapHeight: 5}
}

func (o WallOptions) validate() error {
	if o.Thickness < 1 {
		return fmt.Errorf("wall thickness %d: must be at least 1", o.Thickness)
	}
	if o.GapHeight < 0 {
		return fmt.Errorf("wall gap height %d: must not be negative", o.GapHeight)
	}
	return nil
}

// VerticalWall clears t and blocks columns [X, X+Thickness) except the gap rows
func VerticalWall(t Target, o WallOptions) {
	t.Clear()
	_, h := t.Dimensions()

	for y := 0; y < h; y++ {
		if o.GapHeight > 0 && y >= o.GapY && y < o.GapY+o.GapHeight {
			continue
		}
		for x := o.X; x < o.X+o.Thickness; x++ {
			t.SetBlocked(x, y, true)
		}
	}
}
