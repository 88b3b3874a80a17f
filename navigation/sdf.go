package navigation

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/sdf-pathfinding/vmath"
)

// Metric selects the distance function used by the SDF builder
type Metric uint8

const (
	MetricEuclidean Metric = iota // ceil(sqrt(dx²+dy²)) via lookup table
	MetricChebyshev               // max(|dx|, |dy|)
	MetricManhattan               // |dx| + |dy|
	metricCount
)

var metricNames = [metricCount]string{
	MetricEuclidean: "euclidean",
	MetricChebyshev: "chebyshev",
	MetricManhattan: "manhattan",
}

func (m Metric) String() string {
	if m >= metricCount {
		return fmt.Sprintf("metric(%d)", uint8(m))
	}
	return metricNames[m]
}

// Next cycles euclidean -> chebyshev -> manhattan -> euclidean
func (m Metric) Next() Metric {
	return (m + 1) % metricCount
}

// Distance evaluates the metric for an offset
func (m Metric) Distance(dx, dy int) int {
	switch m {
	case MetricChebyshev:
		return max(vmath.AbsInt(dx), vmath.AbsInt(dy))
	case MetricManhattan:
		return vmath.AbsInt(dx) + vmath.AbsInt(dy)
	default:
		return vmath.CeilDistance(dx, dy)
	}
}

// ParseMetric accepts the names produced by String, case-insensitive
func ParseMetric(s string) (Metric, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, n := range metricNames {
		if n == name {
			return Metric(m), nil
		}
	}
	return MetricEuclidean, fmt.Errorf("%w: %q", ErrUnknownMetric, s)
}

// MarshalText implements encoding.TextMarshaler for config files
func (m Metric) MarshalText() ([]byte, error) {
	if m >= metricCount {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMetric, uint8(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for config files
func (m *Metric) UnmarshalText(text []byte) error {
	parsed, err := ParseMetric(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// BuildSDF recomputes the distance field from the occupancy buffer in place
//
// Every cell starts at the cap; each wall stamps its distances into the
// clipped window [x-D, x+D] × [y-D, y+D]. O(walls × D²), fine for sandbox
// sized maps, not meant for large ones
func BuildSDF(g *Grid, metric Metric) {
	maxDist := g.maxDist
	for i := range g.sdf {
		g.sdf[i] = maxDist
	}

	w := g.Width
	for y := 0; y < g.Height; y++ {
		for x := 0; x < w; x++ {
			if !g.blocked[y*w+x] {
				continue
			}
			g.sdf[y*w+x] = 0

			minX := max(0, x-maxDist)
			minY := max(0, y-maxDist)
			maxX := min(w-1, x+maxDist)
			maxY := min(g.Height-1, y+maxDist)

			for j := minY; j <= maxY; j++ {
				row := j * w
				for i := minX; i <= maxX; i++ {
					d := metric.Distance(x-i, y-j)
					if d < maxDist && d < g.sdf[row+i] {
						g.sdf[row+i] = d
					}
				}
			}
		}
	}

	g.generation++
	g.dirty = false
}
