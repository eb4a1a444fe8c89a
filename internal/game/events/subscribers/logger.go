package subscribers

import (
	"encoding/json"

	"github.com/mitchelldurbincs/LightTrailRL/internal/game/events"
	"github.com/rs/zerolog"
)

// LoggerSubscriber logs events to structured logs
type LoggerSubscriber struct {
	id              string
	logger          zerolog.Logger
	logLevel        zerolog.Level
	eventTypeFilter map[string]bool // If non-nil, only log these event types
	devMode         bool            // If true, log full event details
}

// NewLoggerSubscriber creates a new logger subscriber
func NewLoggerSubscriber(id string, logger zerolog.Logger, logLevel zerolog.Level) *LoggerSubscriber {
	return &LoggerSubscriber{
		id:       id,
		logger:   logger.With().Str("subscriber", "event_logger").Logger(),
		logLevel: logLevel,
	}
}

// ID returns the subscriber's unique identifier
func (ls *LoggerSubscriber) ID() string {
	return ls.id
}

// SetEventFilter sets which event types to log (nil means log all)
func (ls *LoggerSubscriber) SetEventFilter(eventTypes []string) {
	if len(eventTypes) == 0 {
		ls.eventTypeFilter = nil
		return
	}

	ls.eventTypeFilter = make(map[string]bool)
	for _, eventType := range eventTypes {
		ls.eventTypeFilter[eventType] = true
	}
}

// SetDevMode enables or disables development mode logging
func (ls *LoggerSubscriber) SetDevMode(enabled bool) {
	ls.devMode = enabled
}

// InterestedIn returns true if the subscriber wants to receive this event type
func (ls *LoggerSubscriber) InterestedIn(eventType string) bool {
	if ls.eventTypeFilter == nil {
		return true
	}
	return ls.eventTypeFilter[eventType]
}

// HandleEvent processes an event by logging it
func (ls *LoggerSubscriber) HandleEvent(event events.Event) {
	// Disabled levels return nil; skip building anything for them.
	logEvent := ls.logger.WithLevel(ls.logLevel)
	if logEvent == nil {
		return
	}
	logEvent.
		Str("event_type", event.Type()).
		Str("event_id", event.ID()).
		Str("run_id", event.RunID()).
		Time("timestamp", event.Timestamp())

	// Add event-specific fields based on type
	switch e := event.(type) {
	case *events.EpisodeStartedEvent:
		logEvent.
			Int("episode", e.Episode).
			Int("board_width", e.BoardWidth).
			Int("board_height", e.BoardHeight)

	case *events.AgentCrashedEvent:
		logEvent.
			Int("episode", e.Episode).
			Int("turn", e.Turn).
			Uint8("agent", uint8(e.Agent)).
			Int("x", e.Position.X).
			Int("y", e.Position.Y).
			Str("cause", e.Cause.String())

	case *events.EpisodeEndedEvent:
		logEvent.
			Int("episode", e.Episode).
			Uint8("winner", uint8(e.Winner)).
			Int("steps", e.Steps).
			Float64("reward1", e.Reward1).
			Float64("reward2", e.Reward2).
			Dur("duration", e.Duration)

	case *events.CheckpointSavedEvent:
		logEvent.
			Int("episode", e.Episode).
			Strs("files", e.Files)
	}

	// In dev mode, also log the full event as JSON
	if ls.devMode {
		if jsonData, err := json.Marshal(event); err == nil {
			logEvent.RawJSON("event_data", jsonData)
		}
	}

	logEvent.Msg("Training event")
}
