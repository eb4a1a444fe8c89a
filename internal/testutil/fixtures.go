package testutil

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/LightTrailRL/internal/game"
	"github.com/mitchelldurbincs/LightTrailRL/internal/game/core"
)

// CreateTestBoard creates a test board with the given cells already owned
func CreateTestBoard(width, height int, cells map[core.Coordinate]core.Owner) *core.Board {
	board := core.NewBoard(width, height)
	for c, owner := range cells {
		board.Occupy(c.X, c.Y, owner)
	}
	return board
}

// NewTestMatch builds a match on an empty width x height board. Spawns are
// placed a quarter of the way in from each side on the middle row.
func NewTestMatch(t *testing.T, width, height int, c1, c2 game.Controller) *game.Match {
	t.Helper()
	cfg := game.MatchConfig{
		Spawn1: core.NewCoordinate(width/4, height/2),
		Spawn2: core.NewCoordinate(width-1-width/4, height/2),
	}
	m, err := game.NewMatch(core.NewBoard(width, height), cfg, c1, c2, zerolog.Nop())
	require.NoError(t, err)
	return m
}

// ScriptedController plays a fixed list of headings, one per call, then keeps
// going straight.
type ScriptedController struct {
	Moves []core.Direction
	Calls int
}

func NewScriptedController(moves ...core.Direction) *ScriptedController {
	return &ScriptedController{Moves: moves}
}

func (s *ScriptedController) Direction(_ *core.Board, self, _ *game.Cycle) core.Direction {
	defer func() { s.Calls++ }()
	if s.Calls < len(s.Moves) {
		return s.Moves[s.Calls]
	}
	return self.Heading()
}
