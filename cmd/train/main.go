package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/LightTrailRL/internal/common"
	"github.com/mitchelldurbincs/LightTrailRL/internal/config"
	"github.com/mitchelldurbincs/LightTrailRL/internal/game/events"
	"github.com/mitchelldurbincs/LightTrailRL/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/LightTrailRL/internal/training"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to config file")
	episodes := flag.Int("episodes", -1, "Episodes to train (-1 to use config default)")
	outputDir := flag.String("output", "", "Directory for checkpoints and reports (empty to use config default)")
	resume1 := flag.String("resume1", "", "Checkpoint to resume agent 1 from")
	resume2 := flag.String("resume2", "", "Checkpoint to resume agent 2 from")
	logLevel := flag.String("log-level", "", "Log level (trace, debug, info, warn, error) (empty to use config default)")
	logEvents := flag.Bool("log-events", false, "Log every training event")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("Failed to read .env file")
	}

	if err := config.Load(*configPath, os.Getenv("APP_ENV")); err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	// Flags win over the config file
	overrides := map[string]interface{}{}
	if *episodes != -1 {
		overrides["training.episodes"] = *episodes
	}
	if *outputDir != "" {
		overrides["training.output_dir"] = *outputDir
	}
	if *resume1 != "" || *resume2 != "" {
		resume := make([]string, 2)
		copy(resume, config.Get().Training.ResumeFiles)
		if *resume1 != "" {
			resume[0] = *resume1
		}
		if *resume2 != "" {
			resume[1] = *resume2
		}
		overrides["training.resume_files"] = resume
	}
	if *logLevel != "" {
		overrides["logging.level"] = *logLevel
	}
	for key, value := range overrides {
		if err := config.Set(key, value); err != nil {
			log.Fatal().Err(err).Msg("Invalid flag")
		}
	}

	cfg := config.Get()
	common.SetupLogging(cfg.Logging.Level)

	config.WatchConfig(func() {
		level := config.Get().Logging.Level
		zerolog.SetGlobalLevel(common.ParseLevel(level))
		log.Info().
			Str("file", config.ConfigFilePath()).
			Str("level", level).
			Msg("Config reloaded")
	})

	bus := events.NewEventBus(log.Logger)
	eventLevel := zerolog.DebugLevel
	if *logEvents {
		eventLevel = zerolog.InfoLevel
	}
	eventLogger := subscribers.NewLoggerSubscriber("training-log", log.Logger, eventLevel)
	eventLogger.SetDevMode(os.Getenv("APP_ENV") != "production")
	bus.Subscribe(eventLogger)

	trainer, err := training.New(cfg.TrainingConfig(), bus, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create trainer")
	}
	defer func() {
		if err := trainer.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close trainer")
		}
	}()

	// Stop after the current episode on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := trainer.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Training failed")
		return
	}

	summary := trainer.Tracker().Summarize(0)
	log.Info().
		Str("run_id", trainer.RunID()).
		Int("episodes", trainer.Episode()).
		Int64("steps", trainer.Steps()).
		Int("wins_agent1", summary.Wins1).
		Int("wins_agent2", summary.Wins2).
		Msg("Training complete")
}
