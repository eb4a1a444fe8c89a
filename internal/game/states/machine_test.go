package states

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allPhases = []EpisodePhase{PhaseEpisodeStart, PhaseAgent1Turn, PhaseAgent2Turn, PhaseTerminal}

func TestEpisodePhase_String(t *testing.T) {
	tests := []struct {
		phase    EpisodePhase
		expected string
	}{
		{PhaseEpisodeStart, "EpisodeStart"},
		{PhaseAgent1Turn, "Agent1Turn"},
		{PhaseAgent2Turn, "Agent2Turn"},
		{PhaseTerminal, "Terminal"},
		{EpisodePhase(999), "Unknown(999)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.phase.String())
		})
	}
}

func TestEpisodePhase_Transitions(t *testing.T) {
	tests := []struct {
		from    EpisodePhase
		allowed []EpisodePhase
	}{
		{PhaseEpisodeStart, []EpisodePhase{PhaseAgent1Turn}},
		{PhaseAgent1Turn, []EpisodePhase{PhaseAgent2Turn}},
		{PhaseAgent2Turn, []EpisodePhase{PhaseAgent1Turn, PhaseTerminal}},
		{PhaseTerminal, []EpisodePhase{PhaseEpisodeStart}},
	}

	for _, tt := range tests {
		t.Run(tt.from.String(), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.AllowedTransitions())

			for _, target := range allPhases {
				shouldAllow := false
				for _, allowed := range tt.allowed {
					if target == allowed {
						shouldAllow = true
						break
					}
				}
				assert.Equal(t, shouldAllow, tt.from.CanTransitionTo(target),
					"%s -> %s", tt.from, target)
			}
		})
	}

	assert.True(t, PhaseTerminal.IsTerminal())
	assert.False(t, PhaseAgent2Turn.IsTerminal())
}

func TestStateMachine_EpisodeCycle(t *testing.T) {
	sm := NewStateMachine(zerolog.Nop())
	assert.Equal(t, PhaseEpisodeStart, sm.CurrentPhase())

	require.NoError(t, sm.TransitionTo(PhaseAgent1Turn, "step 1"))
	require.NoError(t, sm.TransitionTo(PhaseAgent2Turn, "step 1"))
	require.NoError(t, sm.TransitionTo(PhaseAgent1Turn, "step 2"))
	require.NoError(t, sm.TransitionTo(PhaseAgent2Turn, "step 2"))
	require.NoError(t, sm.TransitionTo(PhaseTerminal, "agent 1 crashed"))
	assert.True(t, sm.CurrentPhase().IsTerminal())

	history := sm.GetHistory()
	require.Len(t, history, 5)
	assert.Equal(t, PhaseEpisodeStart, history[0].From)
	assert.Equal(t, PhaseTerminal, history[4].To)
	assert.Equal(t, "agent 1 crashed", history[4].Reason)
	for i, tr := range history {
		assert.Equal(t, i+1, tr.Seq)
	}
	assert.Equal(t, 5, sm.Transitions())

	require.NoError(t, sm.TransitionTo(PhaseEpisodeStart, "next episode"))
	assert.Equal(t, PhaseEpisodeStart, sm.CurrentPhase())
}

func TestStateMachine_RejectsInvalidTransition(t *testing.T) {
	sm := NewStateMachine(zerolog.Nop())

	err := sm.TransitionTo(PhaseAgent2Turn, "skip agent 1")
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, PhaseEpisodeStart, sm.CurrentPhase())
	assert.Empty(t, sm.GetHistory())

	assert.False(t, sm.CanTransitionTo(PhaseTerminal))
	assert.True(t, sm.CanTransitionTo(PhaseAgent1Turn))
}

func TestStateMachine_HistoryIsBounded(t *testing.T) {
	sm := newStateMachine(4, zerolog.Nop())

	require.NoError(t, sm.TransitionTo(PhaseAgent1Turn, "a"))
	for i := 0; i < 10; i++ {
		require.NoError(t, sm.TransitionTo(PhaseAgent2Turn, "b"))
		require.NoError(t, sm.TransitionTo(PhaseAgent1Turn, "c"))
	}

	history := sm.GetHistory()
	require.Len(t, history, 4)
	// Oldest first, ending with the 21st transition.
	assert.Equal(t, []int{18, 19, 20, 21}, []int{history[0].Seq, history[1].Seq, history[2].Seq, history[3].Seq})
	assert.Equal(t, PhaseAgent1Turn, history[3].To)
}

func TestStateMachine_Reset(t *testing.T) {
	sm := NewStateMachine(zerolog.Nop())
	require.NoError(t, sm.TransitionTo(PhaseAgent1Turn, "go"))

	sm.Reset()
	assert.Equal(t, PhaseEpisodeStart, sm.CurrentPhase())
	assert.Empty(t, sm.GetHistory())
	assert.Zero(t, sm.Transitions())

	require.NoError(t, sm.TransitionTo(PhaseAgent1Turn, "again"))
	assert.Equal(t, 1, sm.GetHistory()[0].Seq)
}

func TestStateMachine_Abort(t *testing.T) {
	tests := []struct {
		name  string
		setup []EpisodePhase
	}{
		{"from episode start", nil},
		{"from agent 1 turn", []EpisodePhase{PhaseAgent1Turn}},
		{"from agent 2 turn", []EpisodePhase{PhaseAgent1Turn, PhaseAgent2Turn}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := NewStateMachine(zerolog.Nop())
			for _, p := range tt.setup {
				require.NoError(t, sm.TransitionTo(p, "setup"))
			}
			from := sm.CurrentPhase()

			sm.Abort("controller gone")
			assert.Equal(t, PhaseTerminal, sm.CurrentPhase())

			history := sm.GetHistory()
			require.Len(t, history, len(tt.setup)+1)
			last := history[len(history)-1]
			assert.Equal(t, from, last.From)
			assert.Equal(t, PhaseTerminal, last.To)
			assert.Equal(t, "controller gone", last.Reason)

			// Terminal is left the usual way.
			require.NoError(t, sm.TransitionTo(PhaseEpisodeStart, "reset"))
		})
	}

	t.Run("terminal stays put", func(t *testing.T) {
		sm := NewStateMachine(zerolog.Nop())
		sm.Abort("first")
		sm.Abort("second")
		assert.Equal(t, 1, sm.Transitions())
	})
}
