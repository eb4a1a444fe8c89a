// Package learner holds the self-play agents: an ε-greedy controller over
// a QNetwork, its replay memory and the temporal-difference update.
package learner

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/mitchelldurbincs/LightTrailRL/internal/encoding"
	"github.com/mitchelldurbincs/LightTrailRL/internal/experience"
	"github.com/mitchelldurbincs/LightTrailRL/internal/game"
	"github.com/mitchelldurbincs/LightTrailRL/internal/game/core"
	"github.com/mitchelldurbincs/LightTrailRL/internal/network"
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

// ErrCheckpointMissing is returned when a checkpoint path was given but no
// file exists there.
var ErrCheckpointMissing = errors.New("checkpoint file not found")

// Config describes one learning agent.
type Config struct {
	Network        network.Config
	Exploration    Exploration
	Gamma          float64
	BufferCapacity int
	// Seed drives the agent's exploration draws and replay sampling.
	Seed uint64
	// Checkpoint, when set, is loaded into the network and ε starts at
	// its floor.
	Checkpoint string
}

// DefaultConfig returns γ = 0.935 with a 10,000 transition memory.
func DefaultConfig() Config {
	return Config{
		Network:        network.DefaultConfig(),
		Exploration:    DefaultExploration(),
		Gamma:          0.935,
		BufferCapacity: experience.DefaultCapacity,
		Seed:           1,
	}
}

// Validate checks the hyperparameters
func (c Config) Validate() error {
	if c.Gamma <= 0 || c.Gamma >= 1 {
		return fmt.Errorf("gamma %v must be in (0, 1)", c.Gamma)
	}
	if c.Network.Inputs != encoding.ObservationSize || c.Network.Outputs != core.NumDirections {
		return fmt.Errorf("network must map %d inputs to %d outputs, got %d -> %d",
			encoding.ObservationSize, core.NumDirections, c.Network.Inputs, c.Network.Outputs)
	}
	if err := c.Network.Validate(); err != nil {
		return err
	}
	return c.Exploration.Validate()
}

// Agent is an ε-greedy controller backed by a value network. Each agent
// owns its network, memory and random source; nothing is shared between
// the two sides of a match.
type Agent struct {
	id          core.Owner
	net         *network.QNetwork
	memory      *experience.Buffer
	exploration Exploration
	gamma       float64
	rng         *rand.Rand

	obs      []float64
	lastLoss float64
	replays  int64

	logger zerolog.Logger
}

// NewAgent builds an agent for the given side. A configured checkpoint
// that cannot be loaded is an error.
func NewAgent(id core.Owner, cfg Config, logger zerolog.Logger) (*Agent, error) {
	if id != core.Agent1 && id != core.Agent2 {
		return nil, fmt.Errorf("new agent %d: %w", id, core.ErrInvalidAgent)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new agent %d: %w", id, err)
	}

	logger = logger.With().Str("component", "agent").Uint8("agent", uint8(id)).Logger()

	net, err := network.New(cfg.Network, logger)
	if err != nil {
		return nil, err
	}
	memory, err := experience.NewBuffer(cfg.BufferCapacity, logger)
	if err != nil {
		return nil, err
	}

	a := &Agent{
		id:          id,
		net:         net,
		memory:      memory,
		exploration: cfg.Exploration,
		gamma:       cfg.Gamma,
		rng:         rand.New(rand.NewSource(cfg.Seed)),
		obs:         make([]float64, encoding.ObservationSize),
		logger:      logger,
	}

	if cfg.Checkpoint != "" {
		if err := net.Load(cfg.Checkpoint); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("agent %d: %w: %w", id, ErrCheckpointMissing, err)
			}
			return nil, fmt.Errorf("agent %d: %w", id, err)
		}
		a.exploration.Exhausted()
		a.logger.Info().
			Str("checkpoint", cfg.Checkpoint).
			Float64("epsilon", a.exploration.Rate).
			Msg("Restored agent from checkpoint")
	}
	return a, nil
}

func (a *Agent) ID() core.Owner               { return a.id }
func (a *Agent) Network() *network.QNetwork   { return a.net }
func (a *Agent) Memory() *experience.Buffer   { return a.memory }
func (a *Agent) Epsilon() float64             { return a.exploration.Rate }
func (a *Agent) Exploration() Exploration     { return a.exploration }
func (a *Agent) LastLoss() float64            { return a.lastLoss }
func (a *Agent) Replays() int64               { return a.replays }
func (a *Agent) SetExploration(e Exploration) { a.exploration = e }

// Direction implements game.Controller.
func (a *Agent) Direction(board *core.Board, self, opponent *game.Cycle) core.Direction {
	legal := LegalDirections(self.Heading())

	if a.rng.Float64() < a.exploration.Rate {
		return legal[a.rng.Intn(len(legal))]
	}

	a.obs = encoding.EncodeInto(a.obs, board, self, opponent)
	values, err := a.net.Predict(a.obs)
	if err != nil {
		// Only a broken network gets here; hold the current heading.
		a.logger.Error().Err(err).Msg("Prediction failed")
		return self.Heading()
	}
	return Greedy(values, legal)
}

// Remember stores one transition in the agent's memory.
func (a *Agent) Remember(t experience.Transition) {
	a.memory.Add(t)
}

// Replay trains on a uniformly drawn batch. It returns false without
// touching anything while memory holds fewer than batchSize transitions.
// After a completed replay ε decays one step.
func (a *Agent) Replay(batchSize int) (bool, error) {
	if batchSize <= 0 || a.memory.Len() < batchSize {
		return false, nil
	}

	batch, err := a.memory.Sample(batchSize, a.rng)
	if err != nil {
		return false, fmt.Errorf("agent %d replay: %w", a.id, err)
	}

	var total float64
	for i, t := range batch {
		target := t.Reward
		if !t.Done {
			next, err := a.net.Predict(t.NextState)
			if err != nil {
				return false, fmt.Errorf("agent %d replay sample %d: %w", a.id, i, err)
			}
			target += a.gamma * floats.Max(next)
		}

		values, err := a.net.Predict(t.State)
		if err != nil {
			return false, fmt.Errorf("agent %d replay sample %d: %w", a.id, i, err)
		}
		values[t.Action.Index()] = target

		loss, err := a.net.Fit(t.State, values)
		if err != nil {
			return false, fmt.Errorf("agent %d replay sample %d: %w", a.id, i, err)
		}
		total += loss
	}

	a.lastLoss = total / float64(len(batch))
	a.replays++
	a.exploration.Step()

	a.logger.Trace().
		Float64("loss", a.lastLoss).
		Float64("epsilon", a.exploration.Rate).
		Msg("Replay complete")
	return true, nil
}

// Save writes the agent's network to path.
func (a *Agent) Save(path string) error {
	return a.net.Save(path)
}
