package learner

import (
	"testing"

	"github.com/mitchelldurbincs/LightTrailRL/internal/game/core"
	"github.com/stretchr/testify/assert"
)

func TestLegalDirections(t *testing.T) {
	tests := []struct {
		current  core.Direction
		expected []core.Direction
	}{
		{core.Up, []core.Direction{core.Up, core.Left, core.Right}},
		{core.Down, []core.Direction{core.Down, core.Left, core.Right}},
		{core.Left, []core.Direction{core.Up, core.Down, core.Left}},
		{core.Right, []core.Direction{core.Up, core.Down, core.Right}},
	}

	for _, tt := range tests {
		t.Run(tt.current.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, LegalDirections(tt.current))
		})
	}
}

func TestGreedy(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		heading  core.Direction
		expected core.Direction
	}{
		{"highest legal", []float64{1, 2, 0, 3}, core.Right, core.Right},
		{"reverse is ignored", []float64{1, 2, 9, 3}, core.Right, core.Right},
		{"ties go to canonical order", []float64{0, 0, 0, 0}, core.Right, core.Up},
		{"tie after skipped reverse", []float64{-1, 4, 4, 4}, core.Down, core.Down},
		{"negative values", []float64{-3, -1, -2, -5}, core.Left, core.Down},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Greedy(tt.values, LegalDirections(tt.heading)))
		})
	}
}
