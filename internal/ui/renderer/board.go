package renderer

import (
	"image/color"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"

	"github.com/mitchelldurbincs/LightTrailRL/internal/common"
	"github.com/mitchelldurbincs/LightTrailRL/internal/game"
	"github.com/mitchelldurbincs/LightTrailRL/internal/game/core"
)

// Smallest tile that still gets an agent number drawn on its head.
const minLabelTile = 12

var HeadTextColor = color.RGBA{20, 20, 28, 255}

type BoardRenderer struct {
	tileSize    int
	defaultFont font.Face
}

// NewBoardRenderer returns a renderer ready to use.
func NewBoardRenderer(tileSize int, f font.Face) *BoardRenderer {
	return &BoardRenderer{tileSize: tileSize, defaultFont: f}
}

func (br *BoardRenderer) TileSize() int { return br.tileSize }

// Draw renders the arena with its trails and both cycle heads at (offsetX,
// offsetY) on the screen.
func (br *BoardRenderer) Draw(screen *ebiten.Image, m *game.Match, offsetX, offsetY int) {
	if m == nil {
		return
	}
	board := m.Board()
	ts := float32(br.tileSize)
	ox, oy := float32(offsetX), float32(offsetY)

	// Grid lines show through the 1px gap around every cell
	vector.DrawFilledRect(screen, ox, oy, ts*float32(board.W), ts*float32(board.H), common.GridLineColor, false)

	for i, owner := range board.T {
		x, y := board.XY(i)
		br.fillCell(screen, ox, oy, x, y, common.AgentColor(owner))
	}

	for _, c := range []*game.Cycle{m.Agent1(), m.Agent2()} {
		pos := c.Position()
		br.fillCell(screen, ox, oy, pos.X, pos.Y, common.HeadColor(c.ID()))
		br.drawLabel(screen, ox, oy, pos, c.ID())
	}
}

func (br *BoardRenderer) fillCell(screen *ebiten.Image, ox, oy float32, x, y int, clr color.Color) {
	ts := float32(br.tileSize)
	vector.DrawFilledRect(screen, ox+float32(x)*ts+1, oy+float32(y)*ts+1, ts-2, ts-2, clr, false)
}

func (br *BoardRenderer) drawLabel(screen *ebiten.Image, ox, oy float32, pos core.Coordinate, id core.Owner) {
	if br.defaultFont == nil || br.tileSize < minLabelTile {
		return
	}
	label := strconv.Itoa(int(id))

	b := text.BoundString(br.defaultFont, label)
	textW := b.Max.X - b.Min.X
	textH := b.Max.Y - b.Min.Y

	x := int(ox) + pos.X*br.tileSize + (br.tileSize-textW)/2
	y := int(oy) + pos.Y*br.tileSize + (br.tileSize+textH)/2
	text.Draw(screen, label, br.defaultFont, x, y, HeadTextColor)
}
