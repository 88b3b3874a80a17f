package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/sdf-pathfinding/audio"
	"github.com/lixenwraith/sdf-pathfinding/layout"
	"github.com/lixenwraith/sdf-pathfinding/navigation"
	"github.com/lixenwraith/sdf-pathfinding/parameter"
	"github.com/lixenwraith/sdf-pathfinding/simulation"
)

// viewMode selects the background shading
type viewMode int

const (
	viewPlain viewMode = iota
	viewSDF
	viewScores // Score map of agent scoreAgent
)

type sandbox struct {
	screen tcell.Screen
	sim    *simulation.Simulation
	sound  *audio.SoundManager

	view       viewMode
	scoreAgent int

	// Mouse drag state: the press decides paint or erase for the whole drag
	dragging  bool
	paintMode bool

	paused  bool
	message string
}

func newSandbox(screen tcell.Screen, sim *simulation.Simulation, sound *audio.SoundManager) *sandbox {
	return &sandbox{
		screen: screen,
		sim:    sim,
		sound:  sound,
	}
}

// --- Input ---

func (s *sandbox) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyRune {
			s.handleRune(ev.Rune())
		}

	case *tcell.EventMouse:
		s.handleMouse(ev)

	case *tcell.EventResize:
		s.screen.Sync()
	}
	return true
}

func (s *sandbox) handleRune(r rune) {
	switch r {
	case 'c', 'C':
		s.sim.ClearWalls()
		s.message = "walls cleared"

	case 'r', 'R':
		seed, err := s.sim.Randomize(0)
		s.report(err, fmt.Sprintf("random blocks, seed %d", seed))

	case 'm', 'M':
		spec := s.sim.Scenario().Layout
		spec.Kind = layout.KindMaze
		spec.Seed = 0
		seed, err := s.sim.ApplyLayout(spec)
		s.report(err, fmt.Sprintf("maze, seed %d", seed))

	case 'w', 'W':
		spec := s.sim.Scenario().Layout
		spec.Kind = layout.KindWall
		_, err := s.sim.ApplyLayout(spec)
		s.report(err, "wall with gap")

	case 's', 'S':
		s.message = "metric " + s.sim.CycleMetric().String()

	case 'j', 'J':
		if s.sim.ToggleJumping() {
			s.message = "jumping on"
		} else {
			s.message = "jumping off"
		}

	case 'q', 'Q':
		affinity, err := s.sim.CycleWallAffinity(0)
		s.report(err, fmt.Sprintf("wall affinity %d", affinity))

	case 'v', 'V':
		s.cycleView()

	case 'a', 'A':
		if s.sound.ToggleMuted() {
			s.message = "audio muted"
		} else {
			s.message = "audio on"
		}

	case ' ':
		s.paused = !s.paused
	}
}

func (s *sandbox) report(err error, ok string) {
	if err != nil {
		slog.Error("command failed", "err", err)
		s.message = err.Error()
		return
	}
	s.message = ok
}

// cycleView steps plain -> sdf -> scores of each agent -> plain
func (s *sandbox) cycleView() {
	agents := len(s.sim.Agents())
	switch {
	case s.view == viewPlain:
		s.view = viewSDF
	case s.view == viewSDF && agents > 0:
		s.view, s.scoreAgent = viewScores, 0
	case s.view == viewScores && s.scoreAgent+1 < agents:
		s.scoreAgent++
	default:
		s.view = viewPlain
	}
}

func (s *sandbox) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	if ev.Buttons()&tcell.Button1 == 0 {
		s.dragging = false
		return
	}
	// Cells hidden under the status lines are not editable
	if w, h := s.visibleGrid(); x >= w || y >= h {
		return
	}

	if !s.dragging {
		blocked, ok := s.sim.Toggle(x, y)
		if !ok {
			return
		}
		s.dragging = true
		s.paintMode = blocked
		return
	}
	s.sim.Paint(x, y, s.paintMode)
}

// --- Rendering ---

var (
	styleWall   = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleHelp   = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// visibleGrid is the part of the grid the screen shows above the status lines
func (s *sandbox) visibleGrid() (w, h int) {
	gw, gh := s.sim.Grid().Dimensions()
	sw, sh := s.screen.Size()
	return min(gw, sw), max(0, min(gh, sh-parameter.StatusLines))
}

func (s *sandbox) draw() {
	s.screen.Clear()
	grid := s.sim.Grid()
	gw, gh := grid.Dimensions()
	sw, sh := s.screen.Size()
	w, h := s.visibleGrid()

	var cache *navigation.SearchCache
	if s.view == viewScores {
		if a, err := s.sim.Agent(s.scoreAgent); err == nil {
			cache = a.Cache
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if grid.Blocked(x, y) {
				s.screen.SetContent(x, y, '█', nil, styleWall)
				continue
			}
			style := tcell.StyleDefault
			switch s.view {
			case viewSDF:
				level := int32(grid.SDF(x, y) * 200 / max(1, grid.MaxDistance()))
				style = style.Background(tcell.NewRGBColor(0, 0, level))
			case viewScores:
				if cache != nil {
					if score := cache.Score(x, y); score > 0 {
						level := int32(score % 64 * 4)
						style = style.Background(tcell.NewRGBColor(level, level, level))
					}
				}
			}
			s.screen.SetContent(x, y, ' ', nil, style)
		}
	}

	for _, a := range s.sim.Agents() {
		color := tcell.GetColor(a.Color)
		pathStyle := tcell.StyleDefault.Foreground(color)
		for _, n := range a.Path {
			if n.X < w && n.Y < h {
				_, _, cur, _ := s.screen.GetContent(n.X, n.Y)
				_, bg, _ := cur.Decompose()
				s.screen.SetContent(n.X, n.Y, '·', nil, pathStyle.Background(bg))
			}
		}
	}
	for _, a := range s.sim.Agents() {
		if !a.Moving {
			continue
		}
		x, y := int(a.Position.X), int(a.Position.Y)
		if x < w && y < h {
			glyph := []rune(a.Glyph + "@")[0]
			s.screen.SetContent(x, y, glyph, nil, tcell.StyleDefault.Foreground(tcell.GetColor(a.Color)).Bold(true))
		}
	}

	s.drawStatus(h, sw, gw > sw || gh > sh-parameter.StatusLines)
	s.screen.Show()
}

func (s *sandbox) drawStatus(top, width int, clipped bool) {
	stats := s.sim.Stats()
	jump := "off"
	if s.sim.Jumping() {
		jump = "on"
	}
	view := "plain"
	switch s.view {
	case viewSDF:
		view = "sdf"
	case viewScores:
		if a, err := s.sim.Agent(s.scoreAgent); err == nil {
			view = fmt.Sprintf("scores:%s visited %d max %d", a.Name, a.Cache.VisitedCount(), a.Cache.MaxScore())
			if a.Cache.Stale(s.sim.Grid()) {
				view += " stale"
			}
		}
	}
	sound := "on"
	if s.sound.Muted() {
		sound = "muted"
	}

	line := fmt.Sprintf("metric %s | jumping %s | walls %d | rebuild %v",
		s.sim.Metric(), jump, stats.Blocked, stats.LastRebuild.Round(time.Microsecond))
	if s.paused {
		line += " | paused"
	}
	s.print(0, top, width, line, styleStatus)
	s.print(0, top+1, width, fmt.Sprintf("view %s | audio %s", view, sound), styleStatus)

	var agents []string
	for _, a := range s.sim.Agents() {
		state := "no path"
		if a.HasPath() {
			state = fmt.Sprintf("%.1f", a.PathLength())
		}
		agents = append(agents, fmt.Sprintf("%s[u%d a%d] %s", a.Name, a.UnitSize, a.WallAffinity, state))
	}
	s.print(0, top+2, width, strings.Join(agents, "  "), styleStatus)

	s.print(0, top+3, width, "mouse paint | C clear R random M maze W wall | S metric J jump Q affinity V view", styleHelp)
	s.print(0, top+4, width, "A audio | space pause | Esc quit", styleHelp)

	msg := s.message
	if clipped {
		msg = "terminal smaller than grid, view clipped  " + msg
	}
	s.print(0, top+5, width, msg, styleStatus)
}

func (s *sandbox) print(x, y, width int, text string, style tcell.Style) {
	for _, r := range text {
		if x >= width {
			return
		}
		s.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
