package experience

import (
	"github.com/mitchelldurbincs/LightTrailRL/internal/game"
	"github.com/mitchelldurbincs/LightTrailRL/internal/game/core"
)

// RewardConfig holds the per-step reward schedule
type RewardConfig struct {
	Survive float64 // both cycles still alive after the step
	Lose    float64 // this agent crashed
	Win     float64 // the opponent crashed
}

// DefaultRewardConfig returns the schedule used for self-play training
func DefaultRewardConfig() RewardConfig {
	return RewardConfig{
		Survive: 5,
		Lose:    -50,
		Win:     20,
	}
}

// SoloRewardConfig returns the smaller-scale schedule used when a single
// agent trains on its own.
func SoloRewardConfig() RewardConfig {
	return RewardConfig{
		Survive: 1,
		Lose:    -10,
		Win:     10,
	}
}

// Rewards maps a step outcome to (agent 1, agent 2) rewards.
func (c RewardConfig) Rewards(res game.StepResult) (float64, float64) {
	switch res.Crashed {
	case core.Agent1:
		return c.Lose, c.Win
	case core.Agent2:
		return c.Win, c.Lose
	}
	return c.Survive, c.Survive
}

