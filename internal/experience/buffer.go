package experience

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
)

// DefaultCapacity is the replay memory size used when none is configured.
const DefaultCapacity = 10000

var (
	// ErrInsufficientData is returned when more transitions are requested than stored
	ErrInsufficientData = errors.New("not enough transitions in buffer")
	// ErrInvalidCapacity is returned for a non-positive buffer capacity
	ErrInvalidCapacity = errors.New("buffer capacity must be positive")
)

// Buffer is a bounded circular replay memory. Once full, every Add evicts
// the oldest transition.
type Buffer struct {
	mu       sync.RWMutex
	buffer   []Transition
	capacity int
	size     int
	head     int // Write position
	tail     int // Oldest entry

	// Statistics
	totalAdded   int64
	totalDropped int64
	totalSampled int64

	logger zerolog.Logger
}

// NewBuffer creates a replay buffer with the specified capacity
func NewBuffer(capacity int, logger zerolog.Logger) (*Buffer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("capacity %d: %w", capacity, ErrInvalidCapacity)
	}

	return &Buffer{
		buffer:   make([]Transition, capacity),
		capacity: capacity,
		logger:   logger.With().Str("component", "replay_buffer").Logger(),
	}, nil
}

// Add stores a transition, dropping the oldest one when the buffer is full
func (b *Buffer) Add(t Transition) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.size >= b.capacity {
		b.tail = (b.tail + 1) % b.capacity
		b.totalDropped++
		if b.totalDropped == 1 {
			b.logger.Debug().
				Int("capacity", b.capacity).
				Msg("Buffer full, dropping oldest transitions from now on")
		}
	} else {
		b.size++
	}

	b.buffer[b.head] = t
	b.head = (b.head + 1) % b.capacity
	b.totalAdded++
}

// Sample draws n distinct transitions uniformly at random. Separate calls
// are independent and may return the same transition again.
func (b *Buffer) Sample(n int, rng *rand.Rand) ([]Transition, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n > b.size {
		return nil, fmt.Errorf("sample %d of %d: %w", n, b.size, ErrInsufficientData)
	}

	result := make([]Transition, 0, n)
	for _, offset := range sampleIndices(b.size, n, rng) {
		result = append(result, b.buffer[(b.tail+offset)%b.capacity])
	}
	b.totalSampled += int64(n)
	return result, nil
}

// sampleIndices picks k distinct integers from [0, n) with Floyd's
// algorithm, so the cost depends on k rather than on n.
func sampleIndices(n, k int, rng *rand.Rand) []int {
	chosen := make(map[int]struct{}, k)
	out := make([]int, 0, k)
	for j := n - k; j < n; j++ {
		t := rng.Intn(j + 1)
		if _, ok := chosen[t]; ok {
			t = j
		}
		chosen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// All returns a copy of the stored transitions, oldest first
func (b *Buffer) All() []Transition {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]Transition, b.size)
	for i := 0; i < b.size; i++ {
		result[i] = b.buffer[(b.tail+i)%b.capacity]
	}
	return result
}

// Len returns the current number of transitions in the buffer
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Capacity returns the maximum capacity of the buffer
func (b *Buffer) Capacity() int {
	return b.capacity
}

// Stats returns buffer statistics
func (b *Buffer) Stats() BufferStats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return BufferStats{
		CurrentSize:    b.size,
		Capacity:       b.capacity,
		TotalAdded:     b.totalAdded,
		TotalDropped:   b.totalDropped,
		TotalSampled:   b.totalSampled,
		UtilizationPct: float64(b.size) / float64(b.capacity) * 100,
	}
}

// BufferStats contains buffer statistics
type BufferStats struct {
	CurrentSize    int
	Capacity       int
	TotalAdded     int64
	TotalDropped   int64
	TotalSampled   int64
	UtilizationPct float64
}
