package parameter

import "time"

// Audio Hardware Settings
const (
	AudioSampleRate = 44100

	// AudioBufferDuration determines speaker latency
	AudioBufferDuration = 100 * time.Millisecond
)

// Cue timing
const (
	CueFoundDuration = 60 * time.Millisecond
	CueLostDuration  = 150 * time.Millisecond
	CueLoopDuration  = 25 * time.Millisecond

	// MinCueGap suppresses bursts when several agents report in the same tick
	MinCueGap = 50 * time.Millisecond
)

// Cue pitch (Hz)
const (
	CueFoundFreq = 880
	CueLostFreq  = 120
	CueLoopFreq  = 1320
)
