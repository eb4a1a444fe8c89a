// Package diagnostics keeps per-episode training statistics and turns them
// into moving averages, a reward chart and a JSON-lines history.
package diagnostics

import (
	"sync"
	"time"

	"github.com/mitchelldurbincs/LightTrailRL/internal/game/core"
	"gonum.org/v1/gonum/stat"
)

// EpisodeRecord summarises one finished self-play episode.
type EpisodeRecord struct {
	Episode   int        `json:"episode"`
	Reward1   float64    `json:"reward1"`
	Reward2   float64    `json:"reward2"`
	Steps     int        `json:"steps"`
	Winner    core.Owner `json:"winner"`
	Epsilon1  float64    `json:"epsilon1"`
	Epsilon2  float64    `json:"epsilon2"`
	Timestamp time.Time  `json:"timestamp"`
}

// Reward returns the episode total of one agent.
func (r EpisodeRecord) Reward(id core.Owner) float64 {
	if id == core.Agent2 {
		return r.Reward2
	}
	return r.Reward1
}

// Summary aggregates the most recent episodes.
type Summary struct {
	Episodes   int
	AvgReward1 float64
	AvgReward2 float64
	AvgSteps   float64
	Wins1      int
	Wins2      int
}

// Tracker accumulates episode records in order.
type Tracker struct {
	mu      sync.RWMutex
	records []EpisodeRecord
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Record appends a finished episode.
func (t *Tracker) Record(rec EpisodeRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = append(t.records, rec)
}

func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records)
}

// Records returns a copy of every record, oldest first.
func (t *Tracker) Records() []EpisodeRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]EpisodeRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Rewards returns the per-episode totals of one agent.
func (t *Tracker) Rewards(id core.Owner) []float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]float64, len(t.records))
	for i, r := range t.records {
		out[i] = r.Reward(id)
	}
	return out
}

// MovingAverage is the mean episode reward of id over the last window
// episodes, or over all of them when fewer exist. It is 0 with no data.
func (t *Tracker) MovingAverage(id core.Owner, window int) float64 {
	rewards := tail(t.Rewards(id), window)
	if len(rewards) == 0 {
		return 0
	}
	return stat.Mean(rewards, nil)
}

// Summarize aggregates the last window episodes.
func (t *Tracker) Summarize(window int) Summary {
	t.mu.RLock()
	recent := t.records
	if window > 0 && len(recent) > window {
		recent = recent[len(recent)-window:]
	}
	r1 := make([]float64, len(recent))
	r2 := make([]float64, len(recent))
	steps := make([]float64, len(recent))
	s := Summary{Episodes: len(recent)}
	for i, r := range recent {
		r1[i], r2[i], steps[i] = r.Reward1, r.Reward2, float64(r.Steps)
		switch r.Winner {
		case core.Agent1:
			s.Wins1++
		case core.Agent2:
			s.Wins2++
		}
	}
	t.mu.RUnlock()

	if s.Episodes > 0 {
		s.AvgReward1 = stat.Mean(r1, nil)
		s.AvgReward2 = stat.Mean(r2, nil)
		s.AvgSteps = stat.Mean(steps, nil)
	}
	return s
}

// Reset forgets every record.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = nil
}

func tail(xs []float64, n int) []float64 {
	if n <= 0 || len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}
