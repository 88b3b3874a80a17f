package simulation

import "fmt"

// EventKind classifies per-agent changes reported by Tick
type EventKind uint8

const (
	EventPathFound EventKind = iota // Agent had no path and now has one
	EventPathLost                   // Agent had a path and the last rebuild removed it
	EventLooped                     // Follower passed the target and restarted
)

func (k EventKind) String() string {
	switch k {
	case EventPathFound:
		return "path-found"
	case EventPathLost:
		return "path-lost"
	case EventLooped:
		return "looped"
	}
	return fmt.Sprintf("event(%d)", uint8(k))
}

// AgentEvent is delivered to the rendering collaborator, e.g. for sound cues
type AgentEvent struct {
	Agent int // Index into Agents()
	Name  string
	Kind  EventKind
}
