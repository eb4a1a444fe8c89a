package learner

import (
	"github.com/mitchelldurbincs/LightTrailRL/internal/game/core"
	"gonum.org/v1/gonum/floats"
)

// LegalDirections returns the headings a cycle moving in current may
// choose, in canonical order. Only the reverse is excluded.
func LegalDirections(current core.Direction) []core.Direction {
	legal := make([]core.Direction, 0, core.NumDirections)
	for _, d := range core.Directions {
		if current.Valid() && d == current.Opposite() {
			continue
		}
		legal = append(legal, d)
	}
	return legal
}

// Greedy picks the legal heading with the highest value. Ties go to the
// first legal heading in canonical order.
func Greedy(values []float64, legal []core.Direction) core.Direction {
	scores := make([]float64, len(legal))
	for i, d := range legal {
		scores[i] = values[d.Index()]
	}
	return legal[floats.MaxIdx(scores)]
}
