package training

import (
	"fmt"
	"path/filepath"

	"github.com/mitchelldurbincs/LightTrailRL/internal/experience"
	"github.com/mitchelldurbincs/LightTrailRL/internal/game"
	"github.com/mitchelldurbincs/LightTrailRL/internal/game/core"
	"github.com/mitchelldurbincs/LightTrailRL/internal/learner"
)

// Config holds everything a self-play run needs.
type Config struct {
	BoardWidth  int
	BoardHeight int
	Match       game.MatchConfig

	// Agents[0] drives agent 1, Agents[1] agent 2. A non-empty
	// Checkpoint resumes that agent from disk.
	Agents  [2]learner.Config
	Rewards experience.RewardConfig

	BatchSize      int
	ReplayInterval int // replay once every this many steps

	Episodes           int
	CheckpointInterval int
	LogInterval        int

	OutputDir    string
	ModelFiles   [2]string
	ChartFile    string
	ManifestFile string
	HistoryFile  string // empty disables the episode history
}

// DefaultConfig returns the standard 40x30 self-play setup.
func DefaultConfig() Config {
	a1, a2 := learner.DefaultConfig(), learner.DefaultConfig()
	a2.Seed = a1.Seed + 1
	a2.Network.Seed = a1.Network.Seed + 1
	return Config{
		BoardWidth:         40,
		BoardHeight:        30,
		Match:              game.DefaultMatchConfig(),
		Agents:             [2]learner.Config{a1, a2},
		Rewards:            experience.DefaultRewardConfig(),
		BatchSize:          32,
		ReplayInterval:     1,
		Episodes:           10000,
		CheckpointInterval: 100,
		LogInterval:        100,
		OutputDir:          ".",
		ModelFiles:         [2]string{"tron_model_player1.gob", "tron_model_player2.gob"},
		ChartFile:          "rewards_plot.png",
		ManifestFile:       "training_manifest.yaml",
		HistoryFile:        "episode_history.jsonl",
	}
}

// Validate checks the run can start
func (c Config) Validate() error {
	if c.BoardWidth <= 0 || c.BoardHeight <= 0 {
		return fmt.Errorf("board %dx%d: dimensions must be positive", c.BoardWidth, c.BoardHeight)
	}
	for i, s := range []core.Coordinate{c.Match.Spawn1, c.Match.Spawn2} {
		if !s.IsValid(c.BoardWidth, c.BoardHeight) {
			return fmt.Errorf("agent %d spawns off the %dx%d board at %s", i+1, c.BoardWidth, c.BoardHeight, s)
		}
	}
	if c.Match.Spawn1 == c.Match.Spawn2 {
		return fmt.Errorf("both agents spawn at %s", c.Match.Spawn1)
	}
	for i, a := range c.Agents {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("agent %d: %w", i+1, err)
		}
		if a.BufferCapacity < c.BatchSize {
			return fmt.Errorf("agent %d buffer capacity %d is smaller than batch size %d", i+1, a.BufferCapacity, c.BatchSize)
		}
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be at least 1, got %d", c.BatchSize)
	}
	if c.ReplayInterval < 1 || c.CheckpointInterval < 1 || c.LogInterval < 1 {
		return fmt.Errorf("intervals must be at least 1")
	}
	if c.Episodes < 1 {
		return fmt.Errorf("episodes must be at least 1, got %d", c.Episodes)
	}
	for i, f := range c.ModelFiles {
		if f == "" {
			return fmt.Errorf("agent %d has no model file", i+1)
		}
	}
	if c.ChartFile == "" || c.ManifestFile == "" {
		return fmt.Errorf("chart and manifest files must be named")
	}
	return nil
}

// path resolves name against the output directory
func (c Config) path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.OutputDir, name)
}

// ModelPaths returns where each agent's checkpoint is written.
func (c Config) ModelPaths() [2]string {
	return [2]string{c.path(c.ModelFiles[0]), c.path(c.ModelFiles[1])}
}
