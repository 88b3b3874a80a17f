// Headless scenario run: builds the grid, finds every agent's path and prints an ASCII map with a summary
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/lixenwraith/sdf-pathfinding/config"
	"github.com/lixenwraith/sdf-pathfinding/layout"
	"github.com/lixenwraith/sdf-pathfinding/navigation"
	"github.com/lixenwraith/sdf-pathfinding/simulation"
)

var (
	configPath  string
	seed        int64
	layoutKind  string
	metricName  string
	printConfig bool
	noMap       bool
	debug       bool
)

func init() {
	flag.StringVar(&configPath, "config", "scenario.yaml", "scenario file (defaults apply when absent)")
	flag.Int64Var(&seed, "seed", 0, "layout seed override (0 = from config)")
	flag.StringVar(&layoutKind, "layout", "", "layout override: clear, scatter, wall, maze")
	flag.StringVar(&metricName, "metric", "", "metric override: euclidean, chebyshev, manhattan")
	flag.BoolVar(&printConfig, "print-config", false, "print the effective scenario as YAML and exit")
	flag.BoolVar(&noMap, "no-map", false, "skip the ASCII map")
	flag.BoolVar(&debug, "debug", false, "debug logging")
}

func main() {
	flag.Parse()

	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	violations, err := run(os.Stdout)
	if err != nil {
		slog.Error("report failed", "err", err)
		os.Exit(1)
	}
	if violations > 0 {
		os.Exit(1)
	}
}

func loadScenario() (config.Scenario, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if seed != 0 {
		cfg.Layout.Seed = seed
	}
	if layoutKind != "" {
		kind, err := layout.ParseKind(layoutKind)
		if err != nil {
			return cfg, err
		}
		cfg.Layout.Kind = kind
	}
	if metricName != "" {
		metric, err := navigation.ParseMetric(metricName)
		if err != nil {
			return cfg, err
		}
		cfg.Metric = metric
	}
	return cfg, nil
}

// run prints the report and returns the number of path violations found
func run(out io.Writer) (int, error) {
	cfg, err := loadScenario()
	if err != nil {
		return 0, err
	}

	if printConfig {
		data, err := cfg.Marshal()
		if err != nil {
			return 0, err
		}
		_, err = out.Write(data)
		return 0, err
	}

	sim, err := simulation.New(cfg)
	if err != nil {
		return 0, err
	}

	if !noMap {
		draw(out, sim)
	}
	return summarize(out, sim)
}

// draw renders walls and every agent's waypoints, later agents drawn over earlier ones
func draw(out io.Writer, sim *simulation.Simulation) {
	grid := sim.Grid()
	w, h := grid.Dimensions()

	canvas := make([][]rune, h)
	for y := range canvas {
		canvas[y] = make([]rune, w)
		for x := range canvas[y] {
			if grid.Blocked(x, y) {
				canvas[y][x] = '█'
			} else {
				canvas[y][x] = ' '
			}
		}
	}

	for _, a := range sim.Agents() {
		glyph := []rune(a.Glyph + "*")[0]
		for _, n := range a.Path {
			canvas[n.Y][n.X] = glyph
		}
		canvas[a.Start.Y][a.Start.X] = 'S'
		canvas[a.Target.Y][a.Target.X] = 'E'
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteByte('\n')
	}
	fmt.Fprint(out, sb.String())
}

func summarize(out io.Writer, sim *simulation.Simulation) (int, error) {
	stats := sim.Stats()
	cfg := sim.Scenario()
	fmt.Fprintf(out, "\nlayout %s (seed %d) | metric %s | jumping %v | walls %d | rebuild %v\n\n",
		cfg.Layout.Kind, stats.LayoutSeed, sim.Metric(), sim.Jumping(), stats.Blocked, stats.LastRebuild)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "agent\tunit\taffinity\tstate\twaypoints\tlength\tvisited\tpeak open\tdropped\tviolations")

	total := 0
	var details []string
	for _, a := range sim.Agents() {
		violations := navigation.VerifyPath(sim.Grid(), a.Path, a.UnitSize, sim.Jumping())
		total += len(violations)
		for _, v := range violations {
			details = append(details, a.Name+": "+v.String())
		}

		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%d\t%.2f\t%d\t%d\t%d\t%d\n",
			a.Name, a.UnitSize, a.WallAffinity, a.Result.State,
			len(a.Path), a.PathLength(), a.Result.Visited, a.Result.MaxOpen, a.Result.Dropped, len(violations))
	}
	if err := tw.Flush(); err != nil {
		return total, fmt.Errorf("writing summary: %w", err)
	}

	for _, d := range details {
		fmt.Fprintln(out, d)
	}
	return total, nil
}
