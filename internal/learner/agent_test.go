package learner

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/mitchelldurbincs/LightTrailRL/internal/encoding"
	"github.com/mitchelldurbincs/LightTrailRL/internal/experience"
	"github.com/mitchelldurbincs/LightTrailRL/internal/game"
	"github.com/mitchelldurbincs/LightTrailRL/internal/game/core"
	"github.com/mitchelldurbincs/LightTrailRL/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAgent(t *testing.T, id core.Owner, mutate func(*Config)) *Agent {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Network.Hidden = []int{16, 8}
	cfg.BufferCapacity = 64
	if mutate != nil {
		mutate(&cfg)
	}
	a, err := NewAgent(id, cfg, zerolog.Nop())
	require.NoError(t, err)
	return a
}

func newTestMatch(t *testing.T) *game.Match {
	t.Helper()
	return testutil.NewTestMatch(t, 40, 30, game.Straight, game.Straight)
}

func fakeTransition(i int, done bool) experience.Transition {
	state := make([]float64, encoding.ObservationSize)
	next := make([]float64, encoding.ObservationSize)
	state[i%encoding.ObservationSize] = 1
	next[(i+1)%encoding.ObservationSize] = 1
	return experience.Transition{
		State:     state,
		Action:    core.Directions[i%core.NumDirections],
		Reward:    5,
		NextState: next,
		Done:      done,
	}
}

func TestNewAgent_Validation(t *testing.T) {
	_, err := NewAgent(core.Empty, DefaultConfig(), zerolog.Nop())
	assert.True(t, errors.Is(err, core.ErrInvalidAgent))

	cfg := DefaultConfig()
	cfg.Gamma = 1
	_, err = NewAgent(core.Agent1, cfg, zerolog.Nop())
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.Network.Inputs = 10
	_, err = NewAgent(core.Agent1, cfg, zerolog.Nop())
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.BufferCapacity = 0
	_, err = NewAgent(core.Agent1, cfg, zerolog.Nop())
	assert.True(t, errors.Is(err, experience.ErrInvalidCapacity))
}

func TestAgent_NeverReverses(t *testing.T) {
	m := newTestMatch(t)

	for _, rate := range []float64{1, 0} {
		a := newTestAgent(t, core.Agent1, func(c *Config) {
			c.Exploration = Exploration{Rate: rate, Min: 0, Decay: 1}
		})
		for i := 0; i < 500; i++ {
			d := a.Direction(m.Board(), m.Agent1(), m.Agent2())
			assert.NotEqual(t, core.Left, d, "epsilon %v", rate)
		}
	}
}

func TestAgent_RandomCoversLegalMoves(t *testing.T) {
	m := newTestMatch(t)
	a := newTestAgent(t, core.Agent2, nil)

	seen := map[core.Direction]int{}
	for i := 0; i < 600; i++ {
		seen[a.Direction(m.Board(), m.Agent2(), m.Agent1())]++
	}
	assert.Len(t, seen, 3)
	assert.Zero(t, seen[core.Right])
}

func TestAgent_GreedyIsDeterministic(t *testing.T) {
	m := newTestMatch(t)
	greedy := func(c *Config) { c.Exploration = Exploration{Rate: 0, Min: 0, Decay: 1} }

	a := newTestAgent(t, core.Agent1, greedy)
	b := newTestAgent(t, core.Agent1, func(c *Config) {
		greedy(c)
		c.Seed = 99
	})
	require.NoError(t, b.Network().SetParameters(a.Network().Parameters()))

	first := a.Direction(m.Board(), m.Agent1(), m.Agent2())
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, a.Direction(m.Board(), m.Agent1(), m.Agent2()))
		assert.Equal(t, first, b.Direction(m.Board(), m.Agent1(), m.Agent2()))
	}

	values, err := a.Network().Predict(encoding.Encode(m.Board(), m.Agent1(), m.Agent2()))
	require.NoError(t, err)
	assert.Equal(t, Greedy(values, LegalDirections(core.Right)), first)
}

func TestAgent_ReplayWaitsForBatch(t *testing.T) {
	a := newTestAgent(t, core.Agent1, nil)
	for i := 0; i < 31; i++ {
		a.Remember(fakeTransition(i, false))
	}

	before := a.Network().Parameters()
	ok, err := a.Replay(32)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, before, a.Network().Parameters())
	assert.Equal(t, 1.0, a.Epsilon())
	assert.Zero(t, a.Network().Steps())
	assert.Zero(t, a.Replays())
}

func TestAgent_ReplayUpdatesAndDecays(t *testing.T) {
	a := newTestAgent(t, core.Agent1, nil)
	for i := 0; i < 32; i++ {
		a.Remember(fakeTransition(i, i%5 == 0))
	}

	before := a.Network().Parameters()
	ok, err := a.Replay(32)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEqual(t, before, a.Network().Parameters())
	assert.InDelta(t, 0.995, a.Epsilon(), 1e-12)
	assert.Equal(t, int64(32), a.Network().Steps())
	assert.Equal(t, int64(1), a.Replays())
	assert.Greater(t, a.LastLoss(), 0.0)

	ok, err = a.Replay(32)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 0.995*0.995, a.Epsilon(), 1e-12)
}

func TestAgent_TerminalTargetIgnoresFuture(t *testing.T) {
	a := newTestAgent(t, core.Agent1, func(c *Config) {
		c.Network.LearningRate = 5e-2
	})
	tr := fakeTransition(3, true)
	tr.Reward = -5
	tr.Action = core.Up
	a.Remember(tr)

	for i := 0; i < 300; i++ {
		ok, err := a.Replay(1)
		require.NoError(t, err)
		require.True(t, ok)
	}

	values, err := a.Network().Predict(tr.State)
	require.NoError(t, err)
	assert.InDelta(t, -5, values[core.Up.Index()], 1)
}

func TestAgent_Checkpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent1.gob")

	src := newTestAgent(t, core.Agent1, nil)
	require.NoError(t, src.Save(path))

	restored := newTestAgent(t, core.Agent1, func(c *Config) {
		c.Seed = 7
		c.Checkpoint = path
	})
	assert.Equal(t, src.Network().Parameters(), restored.Network().Parameters())
	assert.Equal(t, 0.01, restored.Epsilon())

	cfg := DefaultConfig()
	cfg.Checkpoint = filepath.Join(t.TempDir(), "missing.gob")
	_, err := NewAgent(core.Agent1, cfg, zerolog.Nop())
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.True(t, errors.Is(err, ErrCheckpointMissing))
}
