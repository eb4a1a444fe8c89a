package states

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrInvalidTransition is returned for a phase change the episode cycle
// does not allow.
var ErrInvalidTransition = errors.New("invalid phase transition")

// DefaultHistorySize is how many transitions a machine remembers.
const DefaultHistorySize = 256

// Transition is one recorded phase change. Seq counts transitions since the
// machine was created or last reset.
type Transition struct {
	Seq    int
	From   EpisodePhase
	To     EpisodePhase
	Reason string
}

// StateMachine tracks the phase of a match and rejects out-of-order steps.
// A match is driven from a single goroutine, so it does no locking.
type StateMachine struct {
	currentPhase EpisodePhase
	seq          int

	// ring of the most recent transitions
	history []Transition
	next    int
	full    bool

	logger zerolog.Logger
}

// NewStateMachine creates a machine sitting in PhaseEpisodeStart.
func NewStateMachine(logger zerolog.Logger) *StateMachine {
	return newStateMachine(DefaultHistorySize, logger)
}

func newStateMachine(historySize int, logger zerolog.Logger) *StateMachine {
	return &StateMachine{
		currentPhase: PhaseEpisodeStart,
		history:      make([]Transition, historySize),
		logger:       logger.With().Str("component", "state_machine").Logger(),
	}
}

// CurrentPhase returns the current episode phase
func (sm *StateMachine) CurrentPhase() EpisodePhase { return sm.currentPhase }

// Transitions returns how many transitions happened since the last reset.
func (sm *StateMachine) Transitions() int { return sm.seq }

// TransitionTo moves to targetPhase, or returns ErrInvalidTransition and
// leaves the machine untouched.
func (sm *StateMachine) TransitionTo(targetPhase EpisodePhase, reason string) error {
	if !sm.currentPhase.CanTransitionTo(targetPhase) {
		return fmt.Errorf("%s -> %s (%s): %w", sm.currentPhase, targetPhase, reason, ErrInvalidTransition)
	}

	previousPhase := sm.currentPhase
	sm.seq++
	sm.record(Transition{Seq: sm.seq, From: previousPhase, To: targetPhase, Reason: reason})
	sm.currentPhase = targetPhase

	// Turn phases flip twice per step, so keep this at trace.
	sm.logger.Trace().
		Int("seq", sm.seq).
		Str("from_phase", previousPhase.String()).
		Str("to_phase", targetPhase.String()).
		Str("reason", reason).
		Msg("Phase changed")

	return nil
}

// Abort ends the episode from any running phase, outside the normal
// transition table. It is a no-op once the episode is terminal.
func (sm *StateMachine) Abort(reason string) {
	if sm.currentPhase.IsTerminal() {
		return
	}

	previousPhase := sm.currentPhase
	sm.seq++
	sm.record(Transition{Seq: sm.seq, From: previousPhase, To: PhaseTerminal, Reason: reason})
	sm.currentPhase = PhaseTerminal

	sm.logger.Warn().
		Int("seq", sm.seq).
		Str("from_phase", previousPhase.String()).
		Str("reason", reason).
		Msg("Episode aborted")
}

func (sm *StateMachine) record(t Transition) {
	if len(sm.history) == 0 {
		return
	}
	sm.history[sm.next] = t
	sm.next = (sm.next + 1) % len(sm.history)
	if sm.next == 0 {
		sm.full = true
	}
}

// GetHistory returns the remembered transitions, oldest first.
func (sm *StateMachine) GetHistory() []Transition {
	if !sm.full {
		out := make([]Transition, sm.next)
		copy(out, sm.history[:sm.next])
		return out
	}
	out := make([]Transition, 0, len(sm.history))
	out = append(out, sm.history[sm.next:]...)
	return append(out, sm.history[:sm.next]...)
}

// CanTransitionTo checks if a transition to the target phase is allowed
func (sm *StateMachine) CanTransitionTo(targetPhase EpisodePhase) bool {
	return sm.currentPhase.CanTransitionTo(targetPhase)
}

// Reset puts the machine back at the start of an episode and clears history.
// It is valid from any phase, which lets a viewer abandon a running match.
func (sm *StateMachine) Reset() {
	sm.currentPhase = PhaseEpisodeStart
	sm.seq = 0
	sm.next = 0
	sm.full = false
}
