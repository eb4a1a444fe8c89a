package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/LightTrailRL/internal/experience"
	"github.com/mitchelldurbincs/LightTrailRL/internal/game/core"
)

func resetGlobals() {
	cfg = nil
	v = nil
}

func TestInit(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")

	configContent := `
game:
  board:
    width: 20
    height: 12
  spawn:
    agent1: [4, 6]
    agent2: [15, 6]
learning:
  gamma: 0.9
  batch_size: 16
  epsilon:
    decay: 0.99
training:
  episodes: 500
  resume_files: ["p1.gob", ""]
ui:
  defaults:
    human_player: 2
`

	err := os.WriteFile(configFile, []byte(configContent), 0644)
	require.NoError(t, err)

	resetGlobals()
	require.NoError(t, Init(configFile))

	// Test loaded values
	c := Get()
	assert.Equal(t, 20, c.Game.Board.Width)
	assert.Equal(t, 12, c.Game.Board.Height)
	assert.Equal(t, []int{4, 6}, c.Game.Spawn.Agent1)
	assert.Equal(t, 0.9, c.Learning.Gamma)
	assert.Equal(t, 16, c.Learning.BatchSize)
	assert.Equal(t, 0.99, c.Learning.Epsilon.Decay)
	assert.Equal(t, 500, c.Training.Episodes)
	assert.Equal(t, 2, c.UI.Defaults.HumanPlayer)

	// Untouched keys keep their defaults
	assert.Equal(t, 0.01, c.Learning.Epsilon.Min)
	assert.Equal(t, -50.0, c.Rewards.Lose)
	assert.Equal(t, configFile, ConfigFilePath())
}

func TestInitWithDefaults(t *testing.T) {
	resetGlobals()

	// Initialize with non-existent config (should use defaults)
	err := Init("/non/existent/path/config.yaml")
	require.NoError(t, err)

	c := Get()
	assert.Equal(t, 40, c.Game.Board.Width)
	assert.Equal(t, 30, c.Game.Board.Height)
	assert.Equal(t, []int{10, 15}, c.Game.Spawn.Agent1)
	assert.Equal(t, []int{30, 15}, c.Game.Spawn.Agent2)
	assert.Equal(t, 0.935, c.Learning.Gamma)
	assert.Equal(t, 1e-4, c.Learning.LearningRate)
	assert.Equal(t, 32, c.Learning.BatchSize)
	assert.Equal(t, 10000, c.Learning.BufferCapacity)
	assert.Equal(t, 1.0, c.Learning.Epsilon.Start)
	assert.Equal(t, 0.995, c.Learning.Epsilon.Decay)
	assert.Equal(t, []int{64, 32}, c.Learning.HiddenSizes)
	assert.Equal(t, 5.0, c.Rewards.Survive)
	assert.Equal(t, 20.0, c.Rewards.Win)
	assert.Equal(t, 10000, c.Training.Episodes)
	assert.Equal(t, 100, c.Training.CheckpointInterval)
	assert.Equal(t, []string{"tron_model_player1.gob", "tron_model_player2.gob"}, c.Training.ModelFiles)
	assert.Equal(t, "rewards_plot.png", c.Training.ChartFile)
	assert.Equal(t, 6, c.UI.Game.TurnInterval)
	assert.Equal(t, "info", c.Logging.Level)
}

func TestInitRejectsInvalidFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("learning:\n  gamma: 1.5\n"), 0644))

	resetGlobals()
	assert.Error(t, Init(configFile))
}

func TestEnvironmentVariables(t *testing.T) {
	resetGlobals()

	t.Setenv("LTR_TRAINING_EPISODES", "250")
	t.Setenv("LTR_LEARNING_GAMMA", "0.8")
	t.Setenv("LTR_LOGGING_LEVEL", "debug")

	require.NoError(t, Init(""))

	// Environment variables should override
	c := Get()
	assert.Equal(t, 250, c.Training.Episodes)
	assert.Equal(t, 0.8, c.Learning.Gamma)
	assert.Equal(t, "debug", c.Logging.Level)
}

func TestSet(t *testing.T) {
	resetGlobals()
	require.NoError(t, Init(""))

	require.NoError(t, Set("training.episodes", 42))
	require.NoError(t, Set("ui.game.tile_size", 10))

	c := Get()
	assert.Equal(t, 42, c.Training.Episodes)
	assert.Equal(t, 10, c.UI.Game.TileSize)

	t.Run("invalid value is rejected", func(t *testing.T) {
		err := Set("learning.gamma", 1.5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "learning.gamma")
		assert.Equal(t, 0.935, Get().Learning.Gamma)
		assert.Equal(t, 42, Get().Training.Episodes)

		// The rejected value does not block later updates
		require.NoError(t, Set("ui.game.tile_size", 12))
		assert.Equal(t, 12, Get().UI.Game.TileSize)
	})

	t.Run("undecodable value is rejected", func(t *testing.T) {
		err := Set("training.episodes", "many")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode")
		assert.Equal(t, 42, Get().Training.Episodes)
	})
}

func TestReload(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("training:\n  episodes: 100\n"), 0644))

	resetGlobals()
	require.NoError(t, Init(configFile))
	before := Get()

	// An edit that fails validation leaves the loaded config in place
	require.NoError(t, os.WriteFile(configFile, []byte("training:\n  episodes: 0\n"), 0644))
	require.NoError(t, v.ReadInConfig())
	require.Error(t, reload())
	assert.Same(t, before, Get())
	assert.Equal(t, 100, Get().Training.Episodes)

	require.NoError(t, os.WriteFile(configFile, []byte("training:\n  episodes: 300\n"), 0644))
	require.NoError(t, v.ReadInConfig())
	require.NoError(t, reload())
	assert.Equal(t, 300, Get().Training.Episodes)
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	baseConfig := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(baseConfig, []byte("training:\n  episodes: 100\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.demo.yaml"), []byte("ui:\n  defaults:\n    human_player: 1\n"), 0644))

	oldWd, _ := os.Getwd()
	_ = os.Chdir(tmpDir)
	defer func() { _ = os.Chdir(oldWd) }()

	resetGlobals()
	require.NoError(t, Load(baseConfig, "demo"))
	assert.Equal(t, 100, Get().Training.Episodes)
	assert.Equal(t, 1, Get().UI.Defaults.HumanPlayer)

	resetGlobals()
	require.NoError(t, Load(baseConfig, ""))
	assert.Equal(t, 0, Get().UI.Defaults.HumanPlayer)

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.broken.yaml"), []byte("ui:\n  defaults:\n    human_player: 5\n"), 0644))
	resetGlobals()
	assert.Error(t, Load(baseConfig, "broken"))
}

func TestRewardSchedule(t *testing.T) {
	resetGlobals()
	require.NoError(t, Init(""))
	assert.Equal(t, ScheduleSelfPlay, Get().Rewards.Schedule)
	assert.Equal(t, experience.DefaultRewardConfig(), Get().RewardConfig())

	require.NoError(t, Set("rewards.win", 30.0))
	assert.Equal(t, 30.0, Get().RewardConfig().Win)

	require.NoError(t, Set("rewards.schedule", ScheduleSolo))
	assert.Equal(t, experience.SoloRewardConfig(), Get().RewardConfig())
	assert.Equal(t, experience.SoloRewardConfig(), Get().TrainingConfig().Rewards)

	assert.Error(t, Set("rewards.schedule", "league"))
}

func TestLoadEnvironmentConfig(t *testing.T) {
	tmpDir := t.TempDir()

	baseConfig := filepath.Join(tmpDir, "config.yaml")
	baseContent := `
training:
  episodes: 100
logging:
  level: info
`
	require.NoError(t, os.WriteFile(baseConfig, []byte(baseContent), 0644))

	envConfig := filepath.Join(tmpDir, "config.prod.yaml")
	envContent := `
training:
  episodes: 20000
  output_dir: /var/lib/lighttrail
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(envConfig, []byte(envContent), 0644))

	// Change to temp directory
	oldWd, _ := os.Getwd()
	_ = os.Chdir(tmpDir)
	defer func() { _ = os.Chdir(oldWd) }()

	resetGlobals()
	require.NoError(t, Init(baseConfig))
	require.NoError(t, LoadEnvironmentConfig("prod"))

	// Check merged values
	c := Get()
	assert.Equal(t, 20000, c.Training.Episodes)
	assert.Equal(t, "/var/lib/lighttrail", c.Training.OutputDir)
	assert.Equal(t, "warn", c.Logging.Level)

	// A missing overlay is ignored
	assert.NoError(t, LoadEnvironmentConfig("staging"))
	assert.NoError(t, LoadEnvironmentConfig(""))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Game.Board.Width = 0 }},
		{"spawn off board", func(c *Config) { c.Game.Spawn.Agent2 = []int{40, 15} }},
		{"spawn missing y", func(c *Config) { c.Game.Spawn.Agent1 = []int{10} }},
		{"same spawn", func(c *Config) { c.Game.Spawn.Agent2 = []int{10, 15} }},
		{"gamma zero", func(c *Config) { c.Learning.Gamma = 0 }},
		{"gamma one", func(c *Config) { c.Learning.Gamma = 1 }},
		{"negative learning rate", func(c *Config) { c.Learning.LearningRate = -1 }},
		{"zero batch", func(c *Config) { c.Learning.BatchSize = 0 }},
		{"capacity below batch", func(c *Config) { c.Learning.BufferCapacity = 8 }},
		{"min above start", func(c *Config) { c.Learning.Epsilon.Min = 0.5; c.Learning.Epsilon.Start = 0.1 }},
		{"start above one", func(c *Config) { c.Learning.Epsilon.Start = 1.5 }},
		{"zero decay", func(c *Config) { c.Learning.Epsilon.Decay = 0 }},
		{"no hidden layers", func(c *Config) { c.Learning.HiddenSizes = nil }},
		{"zero episodes", func(c *Config) { c.Training.Episodes = 0 }},
		{"zero log interval", func(c *Config) { c.Training.LogInterval = 0 }},
		{"one model file", func(c *Config) { c.Training.ModelFiles = []string{"a.gob"} }},
		{"zero turn interval", func(c *Config) { c.UI.Game.TurnInterval = 0 }},
		{"human player three", func(c *Config) { c.UI.Defaults.HumanPlayer = 3 }},
		{"unknown reward schedule", func(c *Config) { c.Rewards.Schedule = "league" }},
	}

	resetGlobals()
	require.NoError(t, Init(""))
	require.NoError(t, Validate(Get()))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *Get()
			c.Game.Spawn.Agent1 = append([]int(nil), c.Game.Spawn.Agent1...)
			c.Game.Spawn.Agent2 = append([]int(nil), c.Game.Spawn.Agent2...)
			tt.mutate(&c)
			assert.Error(t, Validate(&c))
		})
	}
}

func TestTrainingConfig(t *testing.T) {
	resetGlobals()
	require.NoError(t, Init(""))
	require.NoError(t, Set("training.resume_files", []string{"", "agent2.gob"}))

	tc := Get().TrainingConfig()
	require.NoError(t, tc.Validate())

	assert.Equal(t, 40, tc.BoardWidth)
	assert.Equal(t, core.NewCoordinate(10, 15), tc.Match.Spawn1)
	assert.Equal(t, core.NewCoordinate(30, 15), tc.Match.Spawn2)
	assert.Equal(t, 32, tc.BatchSize)
	assert.Equal(t, [2]string{"tron_model_player1.gob", "tron_model_player2.gob"}, tc.ModelFiles)

	a1, a2 := tc.Agents[0], tc.Agents[1]
	assert.Equal(t, "", a1.Checkpoint)
	assert.Equal(t, "agent2.gob", a2.Checkpoint)
	assert.NotEqual(t, a1.Seed, a2.Seed)
	assert.NotEqual(t, a1.Network.Seed, a2.Network.Seed)
	assert.Equal(t, []int{64, 32}, a1.Network.Hidden)
	assert.Equal(t, 147, a1.Network.Inputs)
	assert.Equal(t, 0.935, a1.Gamma)
	assert.Equal(t, 1.0, a1.Exploration.Rate)
	assert.Equal(t, -50.0, tc.Rewards.Lose)
}
