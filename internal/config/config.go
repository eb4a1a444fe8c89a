package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/mitchelldurbincs/LightTrailRL/internal/common"
	"github.com/mitchelldurbincs/LightTrailRL/internal/experience"
	"github.com/mitchelldurbincs/LightTrailRL/internal/game"
	"github.com/mitchelldurbincs/LightTrailRL/internal/game/core"
	"github.com/mitchelldurbincs/LightTrailRL/internal/learner"
	"github.com/mitchelldurbincs/LightTrailRL/internal/network"
	"github.com/mitchelldurbincs/LightTrailRL/internal/training"
)

// Config holds all configuration for the application
type Config struct {
	Game     GameConfig     `mapstructure:"game"`
	Learning LearningConfig `mapstructure:"learning"`
	Rewards  RewardsConfig  `mapstructure:"rewards"`
	Training TrainingConfig `mapstructure:"training"`
	UI       UIConfig       `mapstructure:"ui"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// GameConfig holds the arena layout
type GameConfig struct {
	Board BoardConfig `mapstructure:"board"`
	Spawn SpawnConfig `mapstructure:"spawn"`
}

// BoardConfig holds the grid dimensions
type BoardConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// SpawnConfig holds each agent's [x, y] start cell
type SpawnConfig struct {
	Agent1 []int `mapstructure:"agent1"`
	Agent2 []int `mapstructure:"agent2"`
}

// LearningConfig holds the value-learning hyperparameters shared by both agents
type LearningConfig struct {
	Gamma          float64       `mapstructure:"gamma"`
	LearningRate   float64       `mapstructure:"learning_rate"`
	BatchSize      int           `mapstructure:"batch_size"`
	ReplayInterval int           `mapstructure:"replay_interval"`
	BufferCapacity int           `mapstructure:"buffer_capacity"`
	Epsilon        EpsilonConfig `mapstructure:"epsilon"`
	HiddenSizes    []int         `mapstructure:"hidden_sizes"`
	Seed           uint64        `mapstructure:"seed"`
}

// EpsilonConfig holds the exploration schedule
type EpsilonConfig struct {
	Start float64 `mapstructure:"start"`
	Min   float64 `mapstructure:"min"`
	Decay float64 `mapstructure:"decay"`
}

// Reward schedules
const (
	ScheduleSelfPlay = "selfplay"
	ScheduleSolo     = "solo"
)

// RewardsConfig holds the per-step reward schedule. Survive, Lose and Win
// apply to the selfplay schedule; solo uses its own fixed values.
type RewardsConfig struct {
	Schedule string  `mapstructure:"schedule"`
	Survive  float64 `mapstructure:"survive"`
	Lose     float64 `mapstructure:"lose"`
	Win      float64 `mapstructure:"win"`
}

// TrainingConfig holds run length, cadence and output files
type TrainingConfig struct {
	Episodes           int      `mapstructure:"episodes"`
	CheckpointInterval int      `mapstructure:"checkpoint_interval"`
	LogInterval        int      `mapstructure:"log_interval"`
	OutputDir          string   `mapstructure:"output_dir"`
	ModelFiles         []string `mapstructure:"model_files"`
	ResumeFiles        []string `mapstructure:"resume_files"`
	ChartFile          string   `mapstructure:"chart_file"`
	ManifestFile       string   `mapstructure:"manifest_file"`
	HistoryFile        string   `mapstructure:"history_file"`
}

// UIConfig holds UI/client configuration
type UIConfig struct {
	Window   WindowConfig     `mapstructure:"window"`
	Game     UIGameConfig     `mapstructure:"game"`
	Defaults UIDefaultsConfig `mapstructure:"defaults"`
}

// WindowConfig holds window settings
type WindowConfig struct {
	Title string `mapstructure:"title"`
}

// UIGameConfig holds UI game settings
type UIGameConfig struct {
	TileSize     int `mapstructure:"tile_size"`
	TurnInterval int `mapstructure:"turn_interval"` // ticks between match steps
}

// UIDefaultsConfig holds default play settings for the UI
type UIDefaultsConfig struct {
	HumanPlayer int `mapstructure:"human_player"` // 0 = agents only, 1 or 2 = keyboard
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	// Arena defaults
	v.SetDefault("game.board.width", 40)
	v.SetDefault("game.board.height", 30)
	v.SetDefault("game.spawn.agent1", []int{10, 15})
	v.SetDefault("game.spawn.agent2", []int{30, 15})

	// Learning defaults
	v.SetDefault("learning.gamma", 0.935)
	v.SetDefault("learning.learning_rate", 1e-4)
	v.SetDefault("learning.batch_size", 32)
	v.SetDefault("learning.replay_interval", 1)
	v.SetDefault("learning.buffer_capacity", experience.DefaultCapacity)
	v.SetDefault("learning.epsilon.start", 1.0)
	v.SetDefault("learning.epsilon.min", 0.01)
	v.SetDefault("learning.epsilon.decay", 0.995)
	v.SetDefault("learning.hidden_sizes", []int{64, 32})
	v.SetDefault("learning.seed", 1)

	// Reward defaults
	v.SetDefault("rewards.schedule", ScheduleSelfPlay)
	v.SetDefault("rewards.survive", 5.0)
	v.SetDefault("rewards.lose", -50.0)
	v.SetDefault("rewards.win", 20.0)

	// Training defaults
	v.SetDefault("training.episodes", 10000)
	v.SetDefault("training.checkpoint_interval", 100)
	v.SetDefault("training.log_interval", 100)
	v.SetDefault("training.output_dir", ".")
	v.SetDefault("training.model_files", []string{"tron_model_player1.gob", "tron_model_player2.gob"})
	v.SetDefault("training.resume_files", []string{"", ""})
	v.SetDefault("training.chart_file", "rewards_plot.png")
	v.SetDefault("training.manifest_file", "training_manifest.yaml")
	v.SetDefault("training.history_file", "episode_history.jsonl")

	// UI defaults
	v.SetDefault("ui.window.title", "Light Trail")
	v.SetDefault("ui.game.tile_size", 20)
	v.SetDefault("ui.game.turn_interval", 6)
	v.SetDefault("ui.defaults.human_player", 0)

	v.SetDefault("logging.level", "info")
}

// Init initializes the configuration
func Init(configPath string) error {
	v = viper.New()

	// Set defaults before loading any config
	setViperDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/lighttrail")
	}

	// Set environment variable prefix
	v.SetEnvPrefix("LTR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case configPath != "" && errors.Is(err, fs.ErrNotExist):
			// Specific file requested but not found - use defaults
		case errors.As(err, &notFound):
			// No config file in the default locations
		default:
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal into config struct
	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	// Validate configuration
	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		// Initialize with defaults if not already initialized
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
	}
	return cfg
}

// LoadEnvironmentConfig merges config.<env>.yaml over the loaded config.
// A missing overlay is not an error.
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}

	envFile := fmt.Sprintf("config.%s.yaml", env)
	if _, err := os.Stat(envFile); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	v.SetConfigFile(envFile)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("error merging environment config %s: %w", envFile, err)
	}

	// Re-unmarshal with merged config
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode merged config into struct: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed after %s: %w", envFile, err)
	}

	return nil
}

// Load initializes the configuration from configPath and merges the
// overlay for env on top.
func Load(configPath, env string) error {
	if err := Init(configPath); err != nil {
		return err
	}
	return LoadEnvironmentConfig(env)
}

// Set allows runtime config updates. An update that fails to decode or
// validate is returned and the loaded config keeps its previous values.
func Set(key string, value interface{}) error {
	prev := v.Get(key)
	v.Set(key, value)
	if err := reload(); err != nil {
		v.Set(key, prev)
		return fmt.Errorf("config set %s: %w", key, err)
	}
	return nil
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of config file. onChange only runs
// for edits that decode and validate.
func WatchConfig(onChange func()) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if err := reload(); err != nil {
			log.Error().Err(err).Str("file", e.Name).Msg("Ignoring config reload")
			return
		}
		if onChange != nil {
			onChange()
		}
	})
	v.WatchConfig()
}

// reload decodes the viper state into a fresh struct and swaps it in
// once it validates.
func reload() error {
	next := &Config{}
	if err := v.Unmarshal(next); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(next); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	cfg = next
	return nil
}

// Validate validates the configuration values
func Validate(c *Config) error {
	// Arena
	if c.Game.Board.Width <= 0 || c.Game.Board.Height <= 0 {
		return fmt.Errorf("game.board dimensions must be positive")
	}
	spawns := [][]int{c.Game.Spawn.Agent1, c.Game.Spawn.Agent2}
	for i, s := range spawns {
		if len(s) != 2 {
			return fmt.Errorf("game.spawn.agent%d must be [x, y]", i+1)
		}
		if !common.IsValidCoordinate(s[0], s[1], c.Game.Board.Width, c.Game.Board.Height) {
			return fmt.Errorf("game.spawn.agent%d must lie on the board", i+1)
		}
	}
	if spawns[0][0] == spawns[1][0] && spawns[0][1] == spawns[1][1] {
		return fmt.Errorf("game.spawn.agent1 and game.spawn.agent2 must differ")
	}

	// Learning
	l := c.Learning
	if !common.InOpenUnit(l.Gamma) {
		return fmt.Errorf("learning.gamma must be between 0 and 1 (exclusive)")
	}
	if l.LearningRate <= 0 {
		return fmt.Errorf("learning.learning_rate must be positive")
	}
	if l.BatchSize < 1 {
		return fmt.Errorf("learning.batch_size must be at least 1")
	}
	if l.ReplayInterval < 1 {
		return fmt.Errorf("learning.replay_interval must be at least 1")
	}
	if l.BufferCapacity < l.BatchSize {
		return fmt.Errorf("learning.buffer_capacity must be at least learning.batch_size")
	}
	if !common.InUnit(l.Epsilon.Start) || !common.InUnit(l.Epsilon.Min) || l.Epsilon.Min > l.Epsilon.Start {
		return fmt.Errorf("learning.epsilon must satisfy 0 <= min <= start <= 1")
	}
	if l.Epsilon.Decay <= 0 || l.Epsilon.Decay > 1 {
		return fmt.Errorf("learning.epsilon.decay must be in (0, 1]")
	}
	if len(l.HiddenSizes) == 0 {
		return fmt.Errorf("learning.hidden_sizes must name at least one layer")
	}
	for _, h := range l.HiddenSizes {
		if h <= 0 {
			return fmt.Errorf("learning.hidden_sizes must all be positive")
		}
	}

	// Rewards
	switch c.Rewards.Schedule {
	case ScheduleSelfPlay, ScheduleSolo:
	default:
		return fmt.Errorf("rewards.schedule must be %q or %q", ScheduleSelfPlay, ScheduleSolo)
	}

	// Training
	tr := c.Training
	if tr.Episodes < 1 {
		return fmt.Errorf("training.episodes must be at least 1")
	}
	if tr.CheckpointInterval < 1 || tr.LogInterval < 1 {
		return fmt.Errorf("training intervals must be at least 1")
	}
	if len(tr.ModelFiles) != 2 || tr.ModelFiles[0] == "" || tr.ModelFiles[1] == "" {
		return fmt.Errorf("training.model_files must name one file per agent")
	}
	if len(tr.ResumeFiles) > 2 {
		return fmt.Errorf("training.resume_files takes at most one file per agent")
	}

	// UI
	if c.UI.Game.TileSize <= 0 {
		return fmt.Errorf("ui.game.tile_size must be positive")
	}
	if c.UI.Game.TurnInterval <= 0 {
		return fmt.Errorf("ui.game.turn_interval must be positive")
	}
	if c.UI.Defaults.HumanPlayer < 0 || c.UI.Defaults.HumanPlayer > 2 {
		return fmt.Errorf("ui.defaults.human_player must be 0, 1 or 2")
	}

	return nil
}

// MatchConfig returns the spawns as a match layout
func (c *Config) MatchConfig() game.MatchConfig {
	return game.MatchConfig{
		Spawn1: core.NewCoordinate(c.Game.Spawn.Agent1[0], c.Game.Spawn.Agent1[1]),
		Spawn2: core.NewCoordinate(c.Game.Spawn.Agent2[0], c.Game.Spawn.Agent2[1]),
	}
}

// AgentConfig returns the learner setup of agent 1 or 2. Each agent gets
// its own seed so the two never share random streams.
func (c *Config) AgentConfig(id core.Owner) learner.Config {
	l := c.Learning
	offset := uint64(0)
	if id == core.Agent2 {
		offset = 1
	}

	net := network.DefaultConfig()
	net.Hidden = append([]int(nil), l.HiddenSizes...)
	net.LearningRate = l.LearningRate
	net.Seed = l.Seed + offset

	a := learner.Config{
		Network: net,
		Exploration: learner.Exploration{
			Rate:  l.Epsilon.Start,
			Min:   l.Epsilon.Min,
			Decay: l.Epsilon.Decay,
		},
		Gamma:          l.Gamma,
		BufferCapacity: l.BufferCapacity,
		Seed:           l.Seed + offset,
	}
	if i := int(id) - 1; i >= 0 && i < len(c.Training.ResumeFiles) {
		a.Checkpoint = c.Training.ResumeFiles[i]
	}
	return a
}

// RewardConfig returns the reward schedule
func (c *Config) RewardConfig() experience.RewardConfig {
	if c.Rewards.Schedule == ScheduleSolo {
		return experience.SoloRewardConfig()
	}
	return experience.RewardConfig{
		Survive: c.Rewards.Survive,
		Lose:    c.Rewards.Lose,
		Win:     c.Rewards.Win,
	}
}

// TrainingConfig assembles a full self-play run
func (c *Config) TrainingConfig() training.Config {
	return training.Config{
		BoardWidth:         c.Game.Board.Width,
		BoardHeight:        c.Game.Board.Height,
		Match:              c.MatchConfig(),
		Agents:             [2]learner.Config{c.AgentConfig(core.Agent1), c.AgentConfig(core.Agent2)},
		Rewards:            c.RewardConfig(),
		BatchSize:          c.Learning.BatchSize,
		ReplayInterval:     c.Learning.ReplayInterval,
		Episodes:           c.Training.Episodes,
		CheckpointInterval: c.Training.CheckpointInterval,
		LogInterval:        c.Training.LogInterval,
		OutputDir:          c.Training.OutputDir,
		ModelFiles:         [2]string{c.Training.ModelFiles[0], c.Training.ModelFiles[1]},
		ChartFile:          c.Training.ChartFile,
		ManifestFile:       c.Training.ManifestFile,
		HistoryFile:        c.Training.HistoryFile,
	}
}
