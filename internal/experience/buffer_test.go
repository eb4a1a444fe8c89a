package experience

import (
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/LightTrailRL/internal/game/core"
	"github.com/mitchelldurbincs/LightTrailRL/internal/testutil"
)

func createTestTransition(reward float64) Transition {
	return Transition{
		State:     make([]float64, 147),
		Action:    core.Right,
		Reward:    reward,
		NextState: make([]float64, 147),
	}
}

func newTestBuffer(t *testing.T, capacity int) *Buffer {
	t.Helper()
	buffer, err := NewBuffer(capacity, zerolog.Nop())
	require.NoError(t, err)
	return buffer
}

func rewardsOf(ts []Transition) []float64 {
	out := make([]float64, len(ts))
	for i, tr := range ts {
		out[i] = tr.Reward
	}
	return out
}

func TestBuffer_Creation(t *testing.T) {
	buffer := newTestBuffer(t, 100)

	assert.Equal(t, 100, buffer.Capacity())
	assert.Equal(t, 0, buffer.Len())

	_, err := NewBuffer(0, zerolog.Nop())
	assert.True(t, errors.Is(err, ErrInvalidCapacity))
}

func TestBuffer_CircularBehavior(t *testing.T) {
	buffer := newTestBuffer(t, 3)

	for i := 0; i < 5; i++ {
		buffer.Add(createTestTransition(float64(i)))
	}

	assert.Equal(t, 3, buffer.Len())
	assert.Equal(t, buffer.Capacity(), buffer.Len())
	assert.Equal(t, []float64{2, 3, 4}, rewardsOf(buffer.All()))

	stats := buffer.Stats()
	assert.Equal(t, int64(5), stats.TotalAdded)
	assert.Equal(t, int64(2), stats.TotalDropped)
	assert.Equal(t, 100.0, stats.UtilizationPct)
}

func TestBuffer_CapacityPlusOneEvictsOldest(t *testing.T) {
	const capacity = DefaultCapacity
	buffer := newTestBuffer(t, capacity)

	for i := 0; i <= capacity; i++ {
		buffer.Add(createTestTransition(float64(i)))
	}

	all := buffer.All()
	require.Len(t, all, capacity)
	assert.Equal(t, 1.0, all[0].Reward, "the first transition is gone")
	for i, tr := range all {
		assert.Equal(t, float64(i+1), tr.Reward)
	}
}

func TestBuffer_Sample(t *testing.T) {
	buffer := newTestBuffer(t, 50)
	for i := 0; i < 40; i++ {
		buffer.Add(createTestTransition(float64(i)))
	}
	rng := testutil.NewTestRNG(7)

	for round := 0; round < 20; round++ {
		batch, err := buffer.Sample(32, rng)
		require.NoError(t, err)
		require.Len(t, batch, 32)

		seen := make(map[float64]bool)
		for _, tr := range batch {
			assert.False(t, seen[tr.Reward], "transition %v sampled twice in one batch", tr.Reward)
			seen[tr.Reward] = true
			assert.GreaterOrEqual(t, tr.Reward, 0.0)
			assert.Less(t, tr.Reward, 40.0)
		}
	}

	// The whole buffer can be drawn at once.
	batch, err := buffer.Sample(40, rng)
	require.NoError(t, err)
	assert.ElementsMatch(t, rewardsOf(buffer.All()), rewardsOf(batch))
	assert.Equal(t, int64(20*32+40), buffer.Stats().TotalSampled)
}

func TestBuffer_SampleCoversWrappedContents(t *testing.T) {
	buffer := newTestBuffer(t, 5)
	for i := 0; i < 12; i++ {
		buffer.Add(createTestTransition(float64(i)))
	}

	batch, err := buffer.Sample(5, testutil.NewTestRNG(1))
	require.NoError(t, err)
	assert.ElementsMatch(t, []float64{7, 8, 9, 10, 11}, rewardsOf(batch))
}

func TestBuffer_SampleInsufficientData(t *testing.T) {
	buffer := newTestBuffer(t, 100)
	for i := 0; i < 10; i++ {
		buffer.Add(createTestTransition(float64(i)))
	}

	batch, err := buffer.Sample(32, testutil.NewTestRNG(1))
	assert.Nil(t, batch)
	assert.True(t, errors.Is(err, ErrInsufficientData))
	assert.Equal(t, int64(0), buffer.Stats().TotalSampled)
}

func TestBuffer_SampleIsUniform(t *testing.T) {
	buffer := newTestBuffer(t, 10)
	for i := 0; i < 10; i++ {
		buffer.Add(createTestTransition(float64(i)))
	}
	rng := testutil.NewTestRNG(42)

	counts := make([]int, 10)
	const rounds = 5000
	for i := 0; i < rounds; i++ {
		batch, err := buffer.Sample(3, rng)
		require.NoError(t, err)
		for _, tr := range batch {
			counts[int(tr.Reward)]++
		}
	}

	expected := float64(rounds*3) / 10
	for i, c := range counts {
		assert.InDelta(t, expected, float64(c), expected*0.1, "slot %d", i)
	}
}

func TestBuffer_ConcurrentAccess(t *testing.T) {
	buffer := newTestBuffer(t, 1000)

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				buffer.Add(createTestTransition(float64(g*100 + i)))
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 1000, buffer.Len())
	assert.Equal(t, int64(1000), buffer.Stats().TotalAdded)
}
