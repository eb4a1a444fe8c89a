package ui

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/rs/zerolog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/mitchelldurbincs/LightTrailRL/internal/common"
	"github.com/mitchelldurbincs/LightTrailRL/internal/config"
	"github.com/mitchelldurbincs/LightTrailRL/internal/game"
	"github.com/mitchelldurbincs/LightTrailRL/internal/game/core"
	"github.com/mitchelldurbincs/LightTrailRL/internal/ui/input"
	"github.com/mitchelldurbincs/LightTrailRL/internal/ui/renderer"
)

// Height of the status line drawn above the arena.
const StatusBarHeight = 24

// Options control how a match is shown.
type Options struct {
	Title        string
	TileSize     int
	TurnInterval int        // ticks between match steps
	HumanPlayer  core.Owner // core.Empty when both cycles are agents
}

// OptionsFromConfig reads the ui section of the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Title:        cfg.UI.Window.Title,
		TileSize:     cfg.UI.Game.TileSize,
		TurnInterval: cfg.UI.Game.TurnInterval,
		HumanPlayer:  core.Owner(cfg.UI.Defaults.HumanPlayer),
	}
}

// PlayGame runs a match in an Ebitengine window.
type PlayGame struct {
	match         *game.Match
	opts          Options
	boardRenderer *renderer.BoardRenderer
	input         *input.Handler
	defaultFont   font.Face

	turnTimer int
	last      game.StepResult
	wins      map[core.Owner]int
	logger    zerolog.Logger
}

// NewPlayGame wraps a match. If opts.HumanPlayer names an agent, its cycle is
// handed to a keyboard controller.
func NewPlayGame(m *game.Match, opts Options, logger zerolog.Logger) (*PlayGame, error) {
	if m == nil {
		return nil, errors.New("ui: nil match")
	}
	if opts.TileSize <= 0 || opts.TurnInterval <= 0 {
		return nil, fmt.Errorf("ui: tile size %d and turn interval %d must be positive", opts.TileSize, opts.TurnInterval)
	}

	var human *game.ManualController
	if opts.HumanPlayer != core.Empty {
		human = game.NewManualController()
		if err := m.SetController(opts.HumanPlayer, human); err != nil {
			return nil, fmt.Errorf("ui: human player: %w", err)
		}
	}

	g := &PlayGame{
		match:       m,
		opts:        opts,
		input:       input.NewHandler(human),
		defaultFont: basicfont.Face7x13,
		wins:        make(map[core.Owner]int),
		logger:      logger.With().Str("component", "play_ui").Logger(),
	}
	g.boardRenderer = renderer.NewBoardRenderer(opts.TileSize, g.defaultFont)
	return g, nil
}

// WindowSize is the unscaled size of the playing area plus status bar.
func (g *PlayGame) WindowSize() (int, int) {
	b := g.match.Board()
	return b.W * g.opts.TileSize, b.H*g.opts.TileSize + StatusBarHeight
}

// Update proceeds the game state.
func (g *PlayGame) Update() error {
	g.input.Update()
	if g.input.QuitRequested() {
		return ebiten.Termination
	}
	if g.input.RestartRequested() {
		g.restart()
		return nil
	}
	if g.input.Paused() || g.match.Done() {
		return nil
	}

	g.turnTimer++
	if g.turnTimer < g.opts.TurnInterval {
		return nil
	}
	g.turnTimer = 0

	res, err := g.match.Step()
	if err != nil {
		return fmt.Errorf("step match: %w", err)
	}
	g.last = res
	if res.Done {
		winner := res.Winner()
		g.wins[winner]++
		g.logger.Info().
			Int("turn", res.Turn).
			Uint8("winner", uint8(winner)).
			Str("cause", res.Cause.String()).
			Msg("Match finished")
	}
	return nil
}

func (g *PlayGame) restart() {
	g.match.Reset()
	g.input.ClearSteering()
	g.turnTimer = 0
	g.last = game.StepResult{}
}

// Draw renders the game screen.
func (g *PlayGame) Draw(screen *ebiten.Image) {
	screen.Fill(common.BackgroundColor)
	g.boardRenderer.Draw(screen, g.match, 0, StatusBarHeight)
	ebitenutil.DebugPrintAt(screen, g.status(), 5, 4)
}

func (g *PlayGame) status() string {
	score := fmt.Sprintf("red %d  blue %d", g.wins[core.Agent1], g.wins[core.Agent2])
	switch {
	case g.match.Done():
		return fmt.Sprintf("Agent %d wins after %d turns (%s)  %s  R: again",
			g.last.Winner(), g.last.Turn, g.last.Cause, score)
	case g.input.Paused():
		return fmt.Sprintf("Paused at turn %d  %s", g.match.Turn(), score)
	case g.input.HasHuman():
		return fmt.Sprintf("Turn %d  you are agent %d  %s", g.match.Turn(), g.opts.HumanPlayer, score)
	}
	return fmt.Sprintf("Turn %d  %s", g.match.Turn(), score)
}

// Layout defines the Ebitengine screen size.
func (g *PlayGame) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return g.WindowSize()
}
