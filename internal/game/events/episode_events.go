package events

import (
	"time"

	"github.com/mitchelldurbincs/LightTrailRL/internal/game/core"
)

// Event type constants
const (
	TypeEpisodeStarted  = "episode.started"
	TypeAgentCrashed    = "agent.crashed"
	TypeEpisodeEnded    = "episode.ended"
	TypeCheckpointSaved = "checkpoint.saved"
)

// EpisodeStartedEvent is published when a match is reset for a new episode
type EpisodeStartedEvent struct {
	BaseEvent
	Episode     int
	BoardWidth  int
	BoardHeight int
}

// NewEpisodeStartedEvent creates a new EpisodeStartedEvent
func NewEpisodeStartedEvent(runID string, episode, width, height int) *EpisodeStartedEvent {
	return &EpisodeStartedEvent{
		BaseEvent:   newBase(TypeEpisodeStarted, runID),
		Episode:     episode,
		BoardWidth:  width,
		BoardHeight: height,
	}
}

// AgentCrashedEvent is published when a cycle hits a wall or a trail
type AgentCrashedEvent struct {
	BaseEvent
	Episode  int
	Turn     int
	Agent    core.Owner
	Position core.Coordinate
	Cause    core.Collision
}

// NewAgentCrashedEvent creates a new AgentCrashedEvent
func NewAgentCrashedEvent(runID string, episode, turn int, agent core.Owner, pos core.Coordinate, cause core.Collision) *AgentCrashedEvent {
	return &AgentCrashedEvent{
		BaseEvent: newBase(TypeAgentCrashed, runID),
		Episode:   episode,
		Turn:      turn,
		Agent:     agent,
		Position:  pos,
		Cause:     cause,
	}
}

// EpisodeEndedEvent is published once an episode reaches its terminal step
type EpisodeEndedEvent struct {
	BaseEvent
	Episode  int
	Winner   core.Owner
	Steps    int
	Reward1  float64
	Reward2  float64
	Duration time.Duration
}

// NewEpisodeEndedEvent creates a new EpisodeEndedEvent
func NewEpisodeEndedEvent(runID string, episode int, winner core.Owner, steps int, reward1, reward2 float64, duration time.Duration) *EpisodeEndedEvent {
	return &EpisodeEndedEvent{
		BaseEvent: newBase(TypeEpisodeEnded, runID),
		Episode:   episode,
		Winner:    winner,
		Steps:     steps,
		Reward1:   reward1,
		Reward2:   reward2,
		Duration:  duration,
	}
}

// CheckpointSavedEvent is published after both agents' parameters are on disk
type CheckpointSavedEvent struct {
	BaseEvent
	Episode int
	Files   []string
}

// NewCheckpointSavedEvent creates a new CheckpointSavedEvent
func NewCheckpointSavedEvent(runID string, episode int, files []string) *CheckpointSavedEvent {
	return &CheckpointSavedEvent{
		BaseEvent: newBase(TypeCheckpointSaved, runID),
		Episode:   episode,
		Files:     files,
	}
}
