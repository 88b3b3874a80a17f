package audio

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/sdf-pathfinding/parameter"
)

const (
	sampleRate = beep.SampleRate(parameter.AudioSampleRate)

	// cueVolume is the linear gain applied to every cue
	cueVolume = 0.2
)

// Cue identifies a short sound tied to an agent event
type Cue uint8

const (
	CueFound Cue = iota // Rising ping
	CueLost             // Low buzz
	CueLoop             // Short tick
)

func (c Cue) String() string {
	switch c {
	case CueFound:
		return "found"
	case CueLost:
		return "lost"
	case CueLoop:
		return "loop"
	}
	return fmt.Sprintf("cue(%d)", uint8(c))
}

// SoundManager plays cues through a single mixer on the default speaker
// Every method is a no-op until Initialize succeeds, so the sandbox runs without audio
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	muted       bool

	lastCue time.Time
	now     func() time.Time
}

// NewSoundManager creates a new sound manager
func NewSoundManager() *SoundManager {
	return &SoundManager{
		mixer: &beep.Mixer{},
		now:   time.Now,
	}
}

// Initialize sets up the audio system
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(parameter.AudioBufferDuration)); err != nil {
		return fmt.Errorf("speaker init: %w", err)
	}

	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Cleanup silences pending cues; the speaker itself stays open
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	sm.initialized = false
}

// ToggleMuted flips muting and returns the new state
func (sm *SoundManager) ToggleMuted() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.muted = !sm.muted
	return sm.muted
}

func (sm *SoundManager) Muted() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.muted
}

// Play queues cue, reports whether it was played
// Cues closer than parameter.MinCueGap to the previous one are dropped
func (sm *SoundManager) Play(cue Cue) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized || sm.muted {
		return false
	}
	if !sm.admit(sm.now()) {
		return false
	}

	streamer := cueStreamer(cue)
	if streamer == nil {
		return false
	}

	speaker.Lock()
	sm.mixer.Add(streamer)
	speaker.Unlock()
	return true
}

// admit applies the minimum gap between cues, caller holds mu
func (sm *SoundManager) admit(now time.Time) bool {
	if !sm.lastCue.IsZero() && now.Sub(sm.lastCue) < parameter.MinCueGap {
		return false
	}
	sm.lastCue = now
	return true
}

// cueStreamer builds a finite streamer for cue, nil for unknown cues
func cueStreamer(cue Cue) beep.Streamer {
	var (
		source   beep.Streamer
		duration time.Duration
	)

	switch cue {
	case CueFound:
		sine, err := generators.SineTone(sampleRate, parameter.CueFoundFreq)
		if err != nil {
			return nil
		}
		source, duration = sine, parameter.CueFoundDuration
	case CueLost:
		source, duration = NewBuzzGenerator(sampleRate, parameter.CueLostFreq), parameter.CueLostDuration
	case CueLoop:
		sine, err := generators.SineTone(sampleRate, parameter.CueLoopFreq)
		if err != nil {
			return nil
		}
		source, duration = sine, parameter.CueLoopDuration
	default:
		return nil
	}

	return newVolume(beep.Take(sampleRate.N(duration), source), cueVolume)
}

// newVolume wraps s with a linear gain
// math.Log2(0) is -Inf, so 0 volume is made silent instead
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// BuzzGenerator generates a low-pitch buzz sound
type BuzzGenerator struct {
	sr   beep.SampleRate
	freq float64
	pos  int
}

// NewBuzzGenerator creates a buzz sound generator
func NewBuzzGenerator(sr beep.SampleRate, freq float64) *BuzzGenerator {
	return &BuzzGenerator{
		sr:   sr,
		freq: freq,
	}
}

func (g *BuzzGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		// Fundamental plus two harmonics for a harsh edge
		sample := 0.6 * math.Sin(2*math.Pi*g.freq*t)
		sample += 0.3 * math.Sin(2*math.Pi*g.freq*2*t)
		sample += 0.1 * math.Sin(2*math.Pi*g.freq*3*t)

		// 20ms fade in against clicks
		sample *= math.Min(t/0.02, 1.0)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *BuzzGenerator) Err() error {
	return nil
}
