package events

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type funcHandler struct {
	id      string
	handler EventHandler
}

// EventBus delivers events synchronously to subscribers and typed func
// handlers.
type EventBus struct {
	subscribers  map[string]Subscriber
	funcHandlers map[string][]funcHandler
	published    map[string]int
	mu           sync.RWMutex
	logger       zerolog.Logger
}

var _ Bus = (*EventBus)(nil)

// NewEventBus creates a new event bus instance
func NewEventBus(logger zerolog.Logger) *EventBus {
	return &EventBus{
		subscribers:  make(map[string]Subscriber),
		funcHandlers: make(map[string][]funcHandler),
		published:    make(map[string]int),
		logger:       logger.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe adds a new subscriber to the event bus
func (eb *EventBus) Subscribe(subscriber Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.subscribers[subscriber.ID()] = subscriber
	eb.logger.Debug().
		Str("subscriber_id", subscriber.ID()).
		Msg("Subscriber added to event bus")
}

// Unsubscribe removes a subscriber, or a function handler by the id
// SubscribeFunc returned.
func (eb *EventBus) Unsubscribe(id string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	delete(eb.subscribers, id)
	for eventType, handlers := range eb.funcHandlers {
		for i, h := range handlers {
			if h.id == id {
				eb.funcHandlers[eventType] = append(handlers[:i:i], handlers[i+1:]...)
				break
			}
		}
	}
	eb.logger.Debug().
		Str("subscriber_id", id).
		Msg("Subscriber removed from event bus")
}

// SubscribeFunc adds a function handler for specific event types and
// returns an id usable with Unsubscribe.
func (eb *EventBus) SubscribeFunc(eventType string, handler EventHandler) string {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	handlerID := eventType + "_func_" + uuid.NewString()
	eb.funcHandlers[eventType] = append(eb.funcHandlers[eventType], funcHandler{id: handlerID, handler: handler})
	eb.logger.Debug().
		Str("event_type", eventType).
		Str("handler_id", handlerID).
		Msg("Function handler added to event bus")

	return handlerID
}

// Publish sends an event to all interested subscribers and handlers. It
// runs them on the caller's goroutine, outside the bus lock, so handlers
// may subscribe or unsubscribe. A panicking handler is logged and skipped.
func (eb *EventBus) Publish(event Event) {
	eventType := event.Type()

	eb.mu.Lock()
	eb.published[eventType]++
	targets := make([]target, 0, len(eb.subscribers)+len(eb.funcHandlers[eventType]))
	for id, subscriber := range eb.subscribers {
		if subscriber.InterestedIn(eventType) {
			targets = append(targets, target{id: id, handle: subscriber.HandleEvent})
		}
	}
	for _, h := range eb.funcHandlers[eventType] {
		targets = append(targets, target{id: h.id, handle: h.handler})
	}
	eb.mu.Unlock()

	eb.logger.Trace().
		Str("event_type", eventType).
		Str("event_id", event.ID()).
		Str("run_id", event.RunID()).
		Int("targets", len(targets)).
		Msg("Publishing event")

	for _, t := range targets {
		eb.deliver(t, event)
	}
}

type target struct {
	id     string
	handle EventHandler
}

func (eb *EventBus) deliver(t target, event Event) {
	defer func() {
		if r := recover(); r != nil {
			eb.logger.Error().
				Str("subscriber_id", t.id).
				Str("event_type", event.Type()).
				Interface("panic", r).
				Msg("Event handler panicked")
		}
	}()
	t.handle(event)
}

// Published returns how many events of eventType went through the bus.
func (eb *EventBus) Published(eventType string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return eb.published[eventType]
}

// GetSubscriberCount returns the number of subscribers for debugging
func (eb *EventBus) GetSubscriberCount() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.subscribers)
}

// GetFuncHandlerCount returns the number of function handlers for a specific event type
func (eb *EventBus) GetFuncHandlerCount(eventType string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.funcHandlers[eventType])
}
