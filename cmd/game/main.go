package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/LightTrailRL/internal/common"
	"github.com/mitchelldurbincs/LightTrailRL/internal/config"
	"github.com/mitchelldurbincs/LightTrailRL/internal/game"
	"github.com/mitchelldurbincs/LightTrailRL/internal/game/core"
	"github.com/mitchelldurbincs/LightTrailRL/internal/learner"
)

// Quick demo: two agents play one match in the terminal
func main() {
	configPath := flag.String("config", "", "Path to config file")
	model1 := flag.String("model1", "", "Checkpoint for agent 1 (empty to use the training output)")
	model2 := flag.String("model2", "", "Checkpoint for agent 2 (empty to use the training output)")
	watch := flag.Duration("watch", 0, "Redraw the board every step with this delay (0 prints only the end)")
	noColor := flag.Bool("no-color", false, "Disable ANSI colors")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("Failed to read .env file")
	}
	if err := config.Load(*configPath, os.Getenv("APP_ENV")); err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
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
		controllers[i] = agent
	}

	m, err := game.NewMatch(core.NewBoard(cfg.Game.Board.Width, cfg.Game.Board.Height),
		cfg.MatchConfig(), controllers[0], controllers[1], log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create match")
	}

	var res game.StepResult
	for !m.Done() {
		if res, err = m.Step(); err != nil {
			log.Fatal().Err(err).Msg("Step failed")
		}
		if *watch > 0 {
			fmt.Print("\033[H\033[2J")
			fmt.Print(m.Render(!*noColor))
			time.Sleep(*watch)
		}
	}

	if *watch == 0 {
		fmt.Print(m.Render(!*noColor))
	}
	fmt.Printf("Agent %d wins after %d steps: agent %d crashed (%s)\n",
		res.Winner(), res.Turn, res.Crashed, res.Cause)
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
