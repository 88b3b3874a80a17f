// Interactive SDF pathfinding sandbox: paint walls with the mouse, watch agents re-route
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/sdf-pathfinding/audio"
	"github.com/lixenwraith/sdf-pathfinding/config"
	"github.com/lixenwraith/sdf-pathfinding/parameter"
	"github.com/lixenwraith/sdf-pathfinding/simulation"
)

var (
	configPath string
	logPath    string
	debug      bool
	noAudio    bool
	seed       int64
)

func init() {
	flag.StringVar(&configPath, "config", "scenario.yaml", "scenario file (defaults apply when absent)")
	flag.StringVar(&logPath, "log", "sdf-pathfinding.log", "log file, stdout belongs to the terminal")
	flag.BoolVar(&debug, "debug", false, "log every rebuild")
	flag.BoolVar(&noAudio, "no-audio", false, "disable sound cues")
	flag.Int64Var(&seed, "seed", 0, "layout seed override (0 = from config)")
}

func main() {
	flag.Parse()

	closeLog, err := setupLogging(logPath, debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "log setup:", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(); err != nil {
		slog.Error("sandbox failed", "err", err)
		fmt.Fprintln(os.Stderr, err)
		closeLog()
		os.Exit(1)
	}
}

func setupLogging(path string, debug bool) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log %s: %w", path, err)
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})))
	return func() { _ = f.Close() }, nil
}

func run() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if seed != 0 {
		cfg.Layout.Seed = seed
	}
	slog.Info("config loaded", "path", configPath, "layout", cfg.Layout.Kind, "agents", len(cfg.Agents))

	sim, err := simulation.New(cfg)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("screen init: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse(tcell.MouseDragEvents)
	screen.HideCursor()

	sound := audio.NewSoundManager()
	if !noAudio {
		// Non-fatal, the sandbox runs without sound
		if err := sound.Initialize(); err != nil {
			slog.Warn("audio unavailable", "err", err)
		}
	}
	defer sound.Cleanup()

	app := newSandbox(screen, sim, sound)
	app.loop()
	slog.Info("sandbox closed", "rebuilds", sim.Stats().Rebuilds)
	return nil
}

// loop drives input and frames until the user quits
func (s *sandbox) loop() {
	ticker := time.NewTicker(parameter.FrameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := s.screen.PollEvent()
			if ev == nil {
				// Screen finalized
				close(eventChan)
				return
			}
			eventChan <- ev
		}
	}()

	last := time.Now()
	s.draw()

	for {
		select {
		case ev, ok := <-eventChan:
			if !ok || !s.handleInput(ev) {
				return
			}

		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			if s.paused {
				dt = 0
			}

			events, err := s.sim.Tick(dt)
			if err != nil {
				slog.Error("tick failed", "err", err)
				s.message = err.Error()
			}
			s.cue(events)
			s.draw()
		}
	}
}

// cue maps agent events to sounds
func (s *sandbox) cue(events []simulation.AgentEvent) {
	for _, e := range events {
		switch e.Kind {
		case simulation.EventPathFound:
			s.sound.Play(audio.CueFound)
		case simulation.EventPathLost:
			s.sound.Play(audio.CueLost)
			slog.Info("path lost", "agent", e.Name)
		case simulation.EventLooped:
			s.sound.Play(audio.CueLoop)
		}
	}
}
