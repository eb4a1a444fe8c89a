package game

import (
	"fmt"

	"github.com/mitchelldurbincs/LightTrailRL/internal/game/core"
)

// Cycle is one agent's light-cycle: where it is, where it is heading and
// every cell it has left behind. Cycles only exist inside a Match, which is
// what links each one to its opponent.
type Cycle struct {
	id      core.Owner
	pos     core.Coordinate
	heading core.Direction
	trail   []core.Coordinate
	ctrl    Controller
	match   *Match
}

// StartHeading is the heading a cycle has after Reset: agent 1 faces +x,
// agent 2 faces -x.
func StartHeading(id core.Owner) core.Direction {
	if id == core.Agent2 {
		return core.Left
	}
	return core.Right
}

func (c *Cycle) ID() core.Owner                { return c.id }
func (c *Cycle) Position() core.Coordinate     { return c.pos }
func (c *Cycle) Heading() core.Direction       { return c.heading }
func (c *Cycle) Controller() Controller        { return c.ctrl }
func (c *Cycle) TrailLen() int                 { return len(c.trail) }
func (c *Cycle) TrailAt(i int) core.Coordinate { return c.trail[i] }

// Trail returns a copy of the visited cells, oldest first.
func (c *Cycle) Trail() []core.Coordinate {
	out := make([]core.Coordinate, len(c.trail))
	copy(out, c.trail)
	return out
}

// Opponent returns the other cycle of the match, or nil for a cycle that
// was never linked.
func (c *Cycle) Opponent() *Cycle {
	if c.match == nil {
		return nil
	}
	if c.id == core.Agent1 {
		return c.match.cycles[1]
	}
	return c.match.cycles[0]
}

// Steer applies the no-reversal rule: an invalid heading or the exact
// reverse of the current one is dropped. It returns the heading in effect.
func (c *Cycle) Steer(d core.Direction) core.Direction {
	if d.Valid() && d != c.heading.Opposite() {
		c.heading = d
	}
	return c.heading
}

// Move asks the controller for a heading and advances one cell. It returns
// true when the next cell lies off the board, in which case the cycle stays
// where it is. Trails are not checked here; that is the match's job.
func (c *Cycle) Move() (bool, error) {
	opponent := c.Opponent()
	if opponent == nil {
		return false, fmt.Errorf("agent %d: %w", c.id, core.ErrOpponentNotLinked)
	}
	if c.ctrl == nil {
		return false, fmt.Errorf("agent %d: %w", c.id, core.ErrNoController)
	}

	board := c.match.board
	c.Steer(c.ctrl.Direction(board, c, opponent))

	next := c.pos.Move(c.heading)
	if !board.InBounds(next.X, next.Y) {
		return true, nil
	}
	c.pos = next
	c.trail = append(c.trail, next)
	return false, nil
}

// Reset puts the cycle on (x, y) with its starting heading and a one-cell
// trail.
func (c *Cycle) Reset(x, y int) {
	c.pos = core.NewCoordinate(x, y)
	c.heading = StartHeading(c.id)
	c.trail = append(c.trail[:0], c.pos)
}
