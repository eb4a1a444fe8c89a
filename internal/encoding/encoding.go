// Package encoding turns the area around a cycle into the fixed-size
// observation vector consumed by the value network.
package encoding

import (
	"github.com/mitchelldurbincs/LightTrailRL/internal/game"
	"github.com/mitchelldurbincs/LightTrailRL/internal/game/core"
)

const (
	// Radius of the square window around the agent.
	Radius = 3
	// Window is the side length of the window.
	Window = 2*Radius + 1
	// Channels per cell: empty, own trail, obstacle.
	Channels = 3
	// ObservationSize is the length of every encoded observation.
	ObservationSize = Window * Window * Channels
)

// Channel indices.
const (
	ChannelEmpty = iota
	ChannelSelf
	ChannelObstacle
)

// Index returns the position of (dx, dy, channel) in an observation. The
// layout is x-major: all of column dx=-3 first, then dx=-2, and so on.
func Index(dx, dy, channel int) int {
	return ((dx+Radius)*Window+(dy+Radius))*Channels + channel
}

// Encode builds a fresh observation for self.
func Encode(board *core.Board, self, opponent *game.Cycle) []float64 {
	return EncodeInto(make([]float64, ObservationSize), board, self, opponent)
}

// EncodeInto writes the observation for self into dst and returns it. dst
// is grown if it is too short. Cells off the board count as obstacles,
// exactly like the opponent's trail. The opponent is only seen through the
// cells it owns.
func EncodeInto(dst []float64, board *core.Board, self, _ *game.Cycle) []float64 {
	if cap(dst) < ObservationSize {
		dst = make([]float64, ObservationSize)
	}
	dst = dst[:ObservationSize]
	for i := range dst {
		dst[i] = 0
	}

	pos := self.Position()
	for dx := -Radius; dx <= Radius; dx++ {
		for dy := -Radius; dy <= Radius; dy++ {
			x, y := pos.X+dx, pos.Y+dy
			dst[Index(dx, dy, cellChannel(board, x, y, self.ID()))] = 1
		}
	}
	return dst
}

func cellChannel(board *core.Board, x, y int, self core.Owner) int {
	if !board.InBounds(x, y) {
		return ChannelObstacle
	}
	switch board.Owner(x, y) {
	case core.Empty:
		return ChannelEmpty
	case self:
		return ChannelSelf
	default:
		return ChannelObstacle
	}
}
