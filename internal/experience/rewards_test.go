package experience

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mitchelldurbincs/LightTrailRL/internal/game"
	"github.com/mitchelldurbincs/LightTrailRL/internal/game/core"
)

func TestRewardConfig_Rewards(t *testing.T) {
	cfg := DefaultRewardConfig()

	tests := []struct {
		name   string
		result game.StepResult
		r1, r2 float64
	}{
		{"both survive", game.StepResult{}, 5, 5},
		{"agent 1 crashed", game.StepResult{Done: true, Crashed: core.Agent1}, -50, 20},
		{"agent 2 crashed", game.StepResult{Done: true, Crashed: core.Agent2}, 20, -50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r1, r2 := cfg.Rewards(tt.result)
			assert.Equal(t, tt.r1, r1)
			assert.Equal(t, tt.r2, r2)
		})
	}
}

func TestRewardConfig_Schedules(t *testing.T) {
	assert.Equal(t, RewardConfig{Survive: 5, Lose: -50, Win: 20}, DefaultRewardConfig())
	assert.Equal(t, RewardConfig{Survive: 1, Lose: -10, Win: 10}, SoloRewardConfig())
}
