package game

import "github.com/mitchelldurbincs/LightTrailRL/internal/game/core"

// Controller decides the heading a cycle wants to take this step. The
// board and both cycles are read-only from the controller's point of view.
// Returning the reverse of the current heading is allowed; the cycle
// ignores it.
type Controller interface {
	Direction(board *core.Board, self, opponent *Cycle) core.Direction
}

// ControllerFunc adapts a plain function to the Controller interface.
type ControllerFunc func(board *core.Board, self, opponent *Cycle) core.Direction

func (f ControllerFunc) Direction(board *core.Board, self, opponent *Cycle) core.Direction {
	return f(board, self, opponent)
}

// Straight keeps whatever heading the cycle already has.
var Straight Controller = ControllerFunc(func(_ *core.Board, self, _ *Cycle) core.Direction {
	return self.Heading()
})
