package learner

import "fmt"

// Exploration is the ε schedule of an ε-greedy policy.
type Exploration struct {
	Rate  float64 // current ε
	Min   float64 // floor ε never decays below
	Decay float64 // multiplier applied after every replay
}

// DefaultExploration starts fully random and decays by 0.5% per replay
// down to 1%.
func DefaultExploration() Exploration {
	return Exploration{Rate: 1.0, Min: 0.01, Decay: 0.995}
}

// Validate checks 0 <= Min <= Rate <= 1 and 0 < Decay <= 1
func (e Exploration) Validate() error {
	if e.Min < 0 || e.Min > e.Rate || e.Rate > 1 {
		return fmt.Errorf("exploration rate %v with floor %v out of range", e.Rate, e.Min)
	}
	if e.Decay <= 0 || e.Decay > 1 {
		return fmt.Errorf("exploration decay %v must be in (0, 1]", e.Decay)
	}
	return nil
}

// Step multiplies ε by the decay factor while it is above the floor,
// never going below it.
func (e *Exploration) Step() {
	if e.Rate <= e.Min {
		return
	}
	e.Rate *= e.Decay
	if e.Rate < e.Min {
		e.Rate = e.Min
	}
}

// Exhausted puts ε on the floor. Agents restored from a checkpoint start
// here.
func (e *Exploration) Exhausted() {
	e.Rate = e.Min
}
