package learner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/LightTrailRL/internal/game/core"
)

// Greedy exploration for evaluation: the network always picks.
var noExploration = Exploration{Rate: 0, Min: 0, Decay: 1}

// NewPlayer builds an agent for playing rather than training. A non-empty
// path must name an existing checkpoint, otherwise ErrCheckpointMissing is
// returned. An empty path plays with freshly initialised weights. Either
// way the agent never explores.
func NewPlayer(id core.Owner, cfg Config, path string, logger zerolog.Logger) (*Agent, error) {
	cfg.Checkpoint = path
	a, err := NewAgent(id, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.SetExploration(noExploration)
	return a, nil
}

// FallbackCheckpoint returns path when a file exists there and "" when it
// does not, so a default location that was never trained into leaves the
// agent untrained. Paths the user named explicitly should go straight to
// NewPlayer instead.
func FallbackCheckpoint(path string, logger zerolog.Logger) (string, error) {
	if path == "" {
		return "", nil
	}
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return path, nil
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn().
			Str("checkpoint", path).
			Msg("No checkpoint at default location, playing untrained")
		return "", nil
	}
	return "", fmt.Errorf("checkpoint %s: %w", path, err)
}
