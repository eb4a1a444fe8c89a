package states

import "fmt"

// EpisodePhase is where a match currently is within one episode.
type EpisodePhase int

const (
	// PhaseEpisodeStart - board cleared, cycles on their spawn cells
	PhaseEpisodeStart EpisodePhase = iota

	// PhaseAgent1Turn - agent 1 is choosing and applying its move
	PhaseAgent1Turn

	// PhaseAgent2Turn - agent 2 is choosing and applying its move
	PhaseAgent2Turn

	// PhaseTerminal - a collision ended the episode
	PhaseTerminal
)

// String returns the string representation of an EpisodePhase
func (p EpisodePhase) String() string {
	switch p {
	case PhaseEpisodeStart:
		return "EpisodeStart"
	case PhaseAgent1Turn:
		return "Agent1Turn"
	case PhaseAgent2Turn:
		return "Agent2Turn"
	case PhaseTerminal:
		return "Terminal"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// IsTerminal returns true if the episode is over
func (p EpisodePhase) IsTerminal() bool {
	return p == PhaseTerminal
}

// AllowedTransitions returns the valid phases this phase can transition to
func (p EpisodePhase) AllowedTransitions() []EpisodePhase {
	switch p {
	case PhaseEpisodeStart:
		return []EpisodePhase{PhaseAgent1Turn}
	case PhaseAgent1Turn:
		return []EpisodePhase{PhaseAgent2Turn}
	case PhaseAgent2Turn:
		return []EpisodePhase{PhaseAgent1Turn, PhaseTerminal}
	case PhaseTerminal:
		return []EpisodePhase{PhaseEpisodeStart}
	default:
		return []EpisodePhase{}
	}
}

// CanTransitionTo checks if a transition from this phase to the target phase is allowed
func (p EpisodePhase) CanTransitionTo(target EpisodePhase) bool {
	for _, phase := range p.AllowedTransitions() {
		if phase == target {
			return true
		}
	}
	return false
}

