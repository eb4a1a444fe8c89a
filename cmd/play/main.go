package main

import (
	"errors"
	"flag"
	"io/fs"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/LightTrailRL/internal/common"
	"github.com/mitchelldurbincs/LightTrailRL/internal/config"
	"github.com/mitchelldurbincs/LightTrailRL/internal/game"
	"github.com/mitchelldurbincs/LightTrailRL/internal/game/core"
	"github.com/mitchelldurbincs/LightTrailRL/internal/learner"
	"github.com/mitchelldurbincs/LightTrailRL/internal/ui"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	human := flag.Int("human", -1, "Agent steered from the keyboard: 0 none, 1 or 2 (-1 to use config default)")
	model1 := flag.String("model1", "", "Checkpoint for agent 1 (empty to use the training output)")
	model2 := flag.String("model2", "", "Checkpoint for agent 2 (empty to use the training output)")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("Failed to read .env file")
	}
	if err := config.Load(*configPath, os.Getenv("APP_ENV")); err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if *human != -1 {
		if err := config.Set("ui.defaults.human_player", *human); err != nil {
			log.Fatal().Err(err).Msg("Invalid -human flag")
		}
	}

	cfg := config.Get()
	common.SetupLogging(cfg.Logging.Level)

	paths, err := modelPaths(cfg.TrainingConfig().ModelPaths(), [2]string{*model1, *model2})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to locate checkpoints")
	}

	var controllers [2]game.Controller
	for i, id := range []core.Owner{core.Agent1, core.Agent2} {
		agent, err := learner.NewPlayer(id, cfg.AgentConfig(id), paths[i], log.Logger)
		if err != nil {
			log.Fatal().Err(err).Uint8("agent", uint8(id)).Msg("Failed to load agent")
		}
		log.Info().Uint8("agent", uint8(id)).Str("checkpoint", paths[i]).Bool("trained", paths[i] != "").Msg("Agent ready")
		controllers[i] = agent
	}

	board := core.NewBoard(cfg.Game.Board.Width, cfg.Game.Board.Height)
	board.SetLogger(log.Logger)
	match, err := game.NewMatch(board, cfg.MatchConfig(), controllers[0], controllers[1], log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create match")
	}

	playGame, err := ui.NewPlayGame(match, ui.OptionsFromConfig(cfg), log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create UI")
	}

	ebiten.SetWindowSize(playGame.WindowSize())
	ebiten.SetWindowTitle(cfg.UI.Window.Title)

	if err := ebiten.RunGame(playGame); err != nil {
		log.Fatal().Err(err).Msg("Game loop failed")
	}
}

// modelPaths picks each agent's checkpoint. A path given on the command
// line must exist; the training output location is only used if a file was
// written there.
func modelPaths(defaults, explicit [2]string) ([2]string, error) {
	var paths [2]string
	for i := range paths {
		if explicit[i] != "" {
			paths[i] = explicit[i]
			continue
		}
		p, err := learner.FallbackCheckpoint(defaults[i], log.Logger)
		if err != nil {
			return paths, err
		}
		paths[i] = p
	}
	return paths, nil
}
