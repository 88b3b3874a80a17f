package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/sdf-pathfinding/layout"
	"github.com/lixenwraith/sdf-pathfinding/navigation"
	"github.com/lixenwraith/sdf-pathfinding/parameter"
)

// ErrInvalid is wrapped by every Validate failure
var ErrInvalid = errors.New("invalid scenario")

// Scenario holds everything needed to set up a simulation run.
type Scenario struct {
	// Grid
	Width       int               `yaml:"width"`
	Height      int               `yaml:"height"`
	MaxDistance int               `yaml:"max_distance"` // SDF cap (D_MAX)
	Metric      navigation.Metric `yaml:"metric"`
	Jumping     bool              `yaml:"jumping"`

	// Speed is the follower speed for agents that do not set their own (cells/s)
	Speed float64 `yaml:"speed"`

	Layout layout.Spec `yaml:"layout"`
	Agents []Agent     `yaml:"agents"`
}

// Agent describes one pathfinding agent.
type Agent struct {
	Name         string          `yaml:"name"`
	Start        navigation.Cell `yaml:"start"`
	Target       navigation.Cell `yaml:"target"`
	UnitSize     int             `yaml:"unit_size"`
	WallAffinity int             `yaml:"wall_affinity"`
	Speed        float64         `yaml:"speed"` // 0 = scenario speed

	// Presentation, read by the sandbox only
	Glyph string `yaml:"glyph"`
	Color string `yaml:"color"`
}

// DefaultScenario returns the rat and cat demo on a random block field.
func DefaultScenario() Scenario {
	return Scenario{
		Width:       parameter.GridWidth,
		Height:      parameter.GridHeight,
		MaxDistance: parameter.SDFMaxDistance,
		Metric:      navigation.MetricEuclidean,
		Jumping:     true,
		Speed:       parameter.MovementSpeed,
		Layout:      layout.DefaultSpec(),
		Agents: []Agent{
			{
				Name:         "rat",
				Start:        navigation.Cell{X: 5, Y: 25},
				Target:       navigation.Cell{X: 75, Y: 25},
				UnitSize:     1,
				WallAffinity: 2,
				Glyph:        "r",
				Color:        "red",
			},
			{
				Name:         "cat",
				Start:        navigation.Cell{X: 5, Y: 25},
				Target:       navigation.Cell{X: 75, Y: 25},
				UnitSize:     2,
				WallAffinity: 0,
				Glyph:        "c",
				Color:        "blue",
			},
		},
	}
}

// Load loads a scenario from a YAML file.
// If the file doesn't exist, returns defaults.
func Load(path string) (Scenario, error) {
	cfg := DefaultScenario()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// Marshal renders the scenario as YAML, the format Load reads.
func (s Scenario) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding scenario: %w", err)
	}
	return data, nil
}

// AgentSpeed resolves the follower speed of agent i.
func (s Scenario) AgentSpeed(i int) float64 {
	if i >= 0 && i < len(s.Agents) && s.Agents[i].Speed > 0 {
		return s.Agents[i].Speed
	}
	return s.Speed
}

// MaxUnitSize returns the largest agent footprint, 0 without agents.
func (s Scenario) MaxUnitSize() int {
	largest := 0
	for _, a := range s.Agents {
		largest = max(largest, a.UnitSize)
	}
	return largest
}

// Validate reports the first inconsistency in the scenario.
func (s Scenario) Validate() error {
	if s.Width < 1 || s.Height < 1 {
		return fmt.Errorf("%w: grid %dx%d", ErrInvalid, s.Width, s.Height)
	}
	if s.MaxDistance < 1 || s.MaxDistance > parameter.SDFMaxDistanceLimit {
		return fmt.Errorf("%w: max_distance %d outside [1, %d]", ErrInvalid, s.MaxDistance, parameter.SDFMaxDistanceLimit)
	}
	if _, err := s.Metric.MarshalText(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if s.Speed < 0 {
		return fmt.Errorf("%w: speed %v", ErrInvalid, s.Speed)
	}
	if err := s.Layout.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if len(s.Agents) == 0 {
		return fmt.Errorf("%w: no agents", ErrInvalid)
	}

	names := make(map[string]bool, len(s.Agents))
	for i, a := range s.Agents {
		label := a.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		if names[a.Name] {
			return fmt.Errorf("%w: agent %s: duplicate name", ErrInvalid, label)
		}
		names[a.Name] = true

		if !s.inside(a.Start) || !s.inside(a.Target) {
			return fmt.Errorf("%w: agent %s: endpoints %v -> %v outside %dx%d grid",
				ErrInvalid, label, a.Start, a.Target, s.Width, s.Height)
		}
		if a.UnitSize < 1 {
			return fmt.Errorf("%w: agent %s: unit_size %d below 1", ErrInvalid, label, a.UnitSize)
		}
		if a.WallAffinity < 0 {
			return fmt.Errorf("%w: agent %s: wall_affinity %d is negative", ErrInvalid, label, a.WallAffinity)
		}
		if a.Speed < 0 {
			return fmt.Errorf("%w: agent %s: speed %v", ErrInvalid, label, a.Speed)
		}
	}
	return nil
}

func (s Scenario) inside(c navigation.Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < s.Width && c.Y < s.Height
}
