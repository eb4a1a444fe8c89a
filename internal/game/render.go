package game

import (
	"fmt"
	"strings"

	"github.com/mitchelldurbincs/LightTrailRL/internal/game/core"
)

// ANSI color codes for terminal rendering
const (
	ColorReset = "\033[0m"
	ColorRed   = "\033[31m"
	ColorBlue  = "\033[34m"
	ColorGray  = "\033[90m"
)

var agentColors = map[core.Owner]string{
	core.Agent1: ColorRed,
	core.Agent2: ColorBlue,
}

// Render draws the match for a terminal. Trails are shown as the agent's
// number and the current heads as A and B. With color set, ANSI codes are
// added around every cell.
func (m *Match) Render(color bool) string {
	const (
		EmptySymbol = "·"
		HeadSymbols = "AB"
	)

	width, height := m.board.W, m.board.H

	var sb strings.Builder
	sb.Grow((width*12+8)*(height+3) + 64)

	// Header row, last digit of the column index
	sb.WriteString("   ")
	for x := 0; x < width; x++ {
		sb.WriteByte('0' + byte(x%10))
	}
	sb.WriteString("\n")

	heads := map[core.Coordinate]core.Owner{
		m.cycles[0].pos: core.Agent1,
		m.cycles[1].pos: core.Agent2,
	}

	for y := 0; y < height; y++ {
		fmt.Fprintf(&sb, "%2d ", y)
		for x := 0; x < width; x++ {
			owner := m.board.T[m.board.Idx(x, y)]
			head, isHead := heads[core.Coordinate{X: x, Y: y}]

			var symbol string
			switch {
			case isHead:
				owner = head
				symbol = string(HeadSymbols[head-1])
			case owner == core.Empty:
				symbol = EmptySymbol
			default:
				symbol = string('0' + byte(owner))
			}

			if !color {
				sb.WriteString(symbol)
				continue
			}
			if c, ok := agentColors[owner]; ok {
				sb.WriteString(c)
			} else {
				sb.WriteString(ColorGray)
			}
			sb.WriteString(symbol)
			sb.WriteString(ColorReset)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "\nturn %d  phase %s  A=agent 1 %s  B=agent 2 %s\n",
		m.turn, m.Phase(), m.cycles[0].heading, m.cycles[1].heading)
	return sb.String()
}
