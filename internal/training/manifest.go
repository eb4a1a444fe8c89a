package training

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mitchelldurbincs/LightTrailRL/internal/common"
	"gopkg.in/yaml.v3"
)

// Manifest describes the latest checkpoint of a run. It is written next to
// the model files every time they are saved.
type Manifest struct {
	RunID     string          `yaml:"run_id"`
	WrittenAt time.Time       `yaml:"written_at"`
	Episode   int             `yaml:"episode"`
	Episodes  int             `yaml:"episodes"`
	Steps     int64           `yaml:"steps"`
	Board     BoardManifest   `yaml:"board"`
	Rewards   RewardManifest  `yaml:"rewards"`
	Agents    []AgentManifest `yaml:"agents"`
	Chart     string          `yaml:"chart"`
	History   string          `yaml:"history,omitempty"`
}

type BoardManifest struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type RewardManifest struct {
	Survive float64 `yaml:"survive"`
	Lose    float64 `yaml:"lose"`
	Win     float64 `yaml:"win"`
}

type AgentManifest struct {
	ID          int     `yaml:"id"`
	Checkpoint  string  `yaml:"checkpoint"`
	Epsilon     float64 `yaml:"epsilon"`
	Replays     int64   `yaml:"replays"`
	Transitions int     `yaml:"transitions"`
	AvgReward   float64 `yaml:"avg_reward"`
}

// WriteManifest stores m as YAML at path, atomically.
func WriteManifest(path string, m Manifest) error {
	err := common.WriteFileAtomic(path, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return err
		}
		return enc.Close()
	})
	if err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("read manifest: %w", err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return m, nil
}
