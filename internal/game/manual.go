package game

import "github.com/mitchelldurbincs/LightTrailRL/internal/game/core"

// ManualController steers from headings requested by an outside source,
// such as a keyboard. A request only takes effect if it is perpendicular
// to the heading the cycle has when it next moves; anything else keeps
// the cycle going straight.
type ManualController struct {
	pending    core.Direction
	hasPending bool
}

func NewManualController() *ManualController {
	return &ManualController{}
}

// Request queues d for the next move, replacing any earlier request.
func (m *ManualController) Request(d core.Direction) {
	if !d.Valid() {
		return
	}
	m.pending = d
	m.hasPending = true
}

// Pending returns the queued heading, if any.
func (m *ManualController) Pending() (core.Direction, bool) {
	return m.pending, m.hasPending
}

// Clear drops a queued request.
func (m *ManualController) Clear() {
	m.hasPending = false
}

// Direction implements Controller. The request is consumed either way.
func (m *ManualController) Direction(_ *core.Board, self, _ *Cycle) core.Direction {
	current := self.Heading()
	if !m.hasPending {
		return current
	}
	m.hasPending = false
	if m.pending.IsOrthogonal(current) {
		return m.pending
	}
	return current
}
