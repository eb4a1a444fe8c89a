package experience

import "github.com/mitchelldurbincs/LightTrailRL/internal/game/core"

// Transition is one step of experience as seen by a single agent. States
// are encoded observations; Action is the heading actually applied.
type Transition struct {
	State     []float64
	Action    core.Direction
	Reward    float64
	NextState []float64
	Done      bool
}
