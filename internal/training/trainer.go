// Package training runs self-play: two learning agents share one arena,
// each learning from its own side of every step.
package training

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mitchelldurbincs/LightTrailRL/internal/diagnostics"
	"github.com/mitchelldurbincs/LightTrailRL/internal/encoding"
	"github.com/mitchelldurbincs/LightTrailRL/internal/experience"
	"github.com/mitchelldurbincs/LightTrailRL/internal/game"
	"github.com/mitchelldurbincs/LightTrailRL/internal/game/core"
	"github.com/mitchelldurbincs/LightTrailRL/internal/game/events"
	"github.com/mitchelldurbincs/LightTrailRL/internal/learner"
)

// ErrCheckpointMissing is returned when a configured resume checkpoint
// does not exist.
var ErrCheckpointMissing = learner.ErrCheckpointMissing

// Trainer owns the match, both agents and the run's diagnostics.
type Trainer struct {
	cfg    Config
	runID  string
	match  *game.Match
	agents [2]*learner.Agent

	tracker *diagnostics.Tracker
	history *diagnostics.History
	bus     events.Publisher

	episode        int
	steps          int64
	lastCheckpoint int

	logger zerolog.Logger
}

// New builds both agents, loading any resume checkpoints, and the match
// they play in. bus may be nil.
func New(cfg Config, bus events.Publisher, logger zerolog.Logger) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid training config: %w", err)
	}

	runID := uuid.NewString()
	t := &Trainer{
		cfg:     cfg,
		runID:   runID,
		tracker: diagnostics.NewTracker(),
		bus:     bus,
		logger:  logger.With().Str("component", "trainer").Str("run_id", runID).Logger(),
	}

	for i, id := range []core.Owner{core.Agent1, core.Agent2} {
		a, err := learner.NewAgent(id, cfg.Agents[i], logger)
		if err != nil {
			return nil, err
		}
		t.agents[i] = a
	}

	board := core.NewBoard(cfg.BoardWidth, cfg.BoardHeight)
	board.SetLogger(logger)
	match, err := game.NewMatch(board, cfg.Match, t.agents[0], t.agents[1], logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	t.match = match

	if cfg.HistoryFile != "" {
		h, err := diagnostics.OpenHistory(cfg.path(cfg.HistoryFile), logger)
		if err != nil {
			return nil, err
		}
		t.history = h
	}

	return t, nil
}

func (t *Trainer) RunID() string                 { return t.runID }
func (t *Trainer) Episode() int                  { return t.episode }
func (t *Trainer) Steps() int64                  { return t.steps }
func (t *Trainer) Match() *game.Match            { return t.match }
func (t *Trainer) Tracker() *diagnostics.Tracker { return t.tracker }
func (t *Trainer) Agent(i int) *learner.Agent    { return t.agents[i] }
func (t *Trainer) Agents() [2]*learner.Agent     { return t.agents }
func (t *Trainer) Config() Config                { return t.cfg }

// Run plays episodes until the configured count is reached or ctx is done.
// ctx is only checked between episodes. A checkpoint is written every
// CheckpointInterval episodes and once more before returning.
func (t *Trainer) Run(ctx context.Context) error {
	t.logger.Info().
		Int("episodes", t.cfg.Episodes).
		Int("board_width", t.cfg.BoardWidth).
		Int("board_height", t.cfg.BoardHeight).
		Int("batch_size", t.cfg.BatchSize).
		Msg("Starting self-play training")

	for t.episode < t.cfg.Episodes {
		if ctx.Err() != nil {
			t.logger.Info().Int("episode", t.episode).Msg("Training interrupted, stopping after current episode")
			break
		}
		if _, err := t.RunEpisode(); err != nil {
			return err
		}
		if t.episode%t.cfg.CheckpointInterval == 0 {
			if err := t.Checkpoint(ctx); err != nil {
				return err
			}
		}
	}

	if t.lastCheckpoint != t.episode || t.episode == 0 {
		if err := t.Checkpoint(ctx); err != nil {
			return err
		}
	}

	t.logger.Info().
		Int("episodes", t.episode).
		Int64("steps", t.steps).
		Msg("Training finished")
	return nil
}

// RunEpisode resets the match and plays it to the end, storing and
// replaying every step for both agents.
func (t *Trainer) RunEpisode() (diagnostics.EpisodeRecord, error) {
	t.episode++
	start := time.Now()

	t.match.Reset()
	t.publish(events.NewEpisodeStartedEvent(t.runID, t.episode, t.cfg.BoardWidth, t.cfg.BoardHeight))

	board := t.match.Board()
	a1, a2 := t.match.Agent1(), t.match.Agent2()

	var totals [2]float64
	var last game.StepResult
	for !t.match.Done() {
		before := [2][]float64{
			encoding.Encode(board, a1, a2),
			encoding.Encode(board, a2, a1),
		}

		res, err := t.match.Step()
		if err != nil {
			return diagnostics.EpisodeRecord{}, fmt.Errorf("episode %d turn %d: %w", t.episode, t.match.Turn(), err)
		}
		last = res

		r1, r2 := t.cfg.Rewards.Rewards(res)
		after := [2][]float64{
			encoding.Encode(board, a1, a2),
			encoding.Encode(board, a2, a1),
		}
		for i, r := range [2]float64{r1, r2} {
			t.agents[i].Remember(experience.Transition{
				State:     before[i],
				Action:    res.Headings[i],
				Reward:    r,
				NextState: after[i],
				Done:      res.Done,
			})
			totals[i] += r
		}

		t.steps++
		if t.steps%int64(t.cfg.ReplayInterval) == 0 {
			for _, a := range t.agents {
				if _, err := a.Replay(t.cfg.BatchSize); err != nil {
					return diagnostics.EpisodeRecord{}, fmt.Errorf("episode %d: %w", t.episode, err)
				}
			}
		}

		if res.Done {
			crashed, _ := t.match.Cycle(res.Crashed)
			t.publish(events.NewAgentCrashedEvent(t.runID, t.episode, res.Turn, res.Crashed, crashed.Position(), res.Cause))
		}
	}

	rec := diagnostics.EpisodeRecord{
		Episode:   t.episode,
		Reward1:   totals[0],
		Reward2:   totals[1],
		Steps:     t.match.Turn(),
		Winner:    last.Winner(),
		Epsilon1:  t.agents[0].Epsilon(),
		Epsilon2:  t.agents[1].Epsilon(),
		Timestamp: time.Now(),
	}
	t.tracker.Record(rec)
	if t.history != nil {
		if err := t.history.Write(rec); err != nil {
			t.logger.Warn().Err(err).Int("episode", t.episode).Msg("Failed to record episode history")
		}
	}
	t.publish(events.NewEpisodeEndedEvent(t.runID, t.episode, rec.Winner, rec.Steps, rec.Reward1, rec.Reward2, time.Since(start)))

	if t.episode%t.cfg.LogInterval == 0 {
		t.logProgress()
	}
	return rec, nil
}

func (t *Trainer) logProgress() {
	s := t.tracker.Summarize(t.cfg.LogInterval)
	t.logger.Info().
		Int("episode", t.episode).
		Float64("avg_reward1", s.AvgReward1).
		Float64("avg_reward2", s.AvgReward2).
		Float64("avg_steps", s.AvgSteps).
		Int("wins1", s.Wins1).
		Int("wins2", s.Wins2).
		Float64("epsilon1", t.agents[0].Epsilon()).
		Float64("epsilon2", t.agents[1].Epsilon()).
		Float64("loss1", t.agents[0].LastLoss()).
		Float64("loss2", t.agents[1].LastLoss()).
		Msg("Training progress")
}

// Checkpoint writes both agents' parameters, the reward chart and the
// manifest. The writes run concurrently and all finish before it returns.
func (t *Trainer) Checkpoint(ctx context.Context) error {
	paths := t.cfg.ModelPaths()
	chart := t.cfg.path(t.cfg.ChartFile)
	rewards1 := t.tracker.Rewards(core.Agent1)
	rewards2 := t.tracker.Rewards(core.Agent2)
	manifest := t.manifest()

	g, _ := errgroup.WithContext(ctx)
	for i, a := range t.agents {
		i, a := i, a
		g.Go(func() error {
			if err := a.Save(paths[i]); err != nil {
				return fmt.Errorf("agent %d: %w", i+1, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		return diagnostics.PlotRewards(chart, rewards1, rewards2)
	})
	g.Go(func() error {
		return WriteManifest(t.cfg.path(t.cfg.ManifestFile), manifest)
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("checkpoint at episode %d: %w", t.episode, err)
	}

	t.lastCheckpoint = t.episode
	t.publish(events.NewCheckpointSavedEvent(t.runID, t.episode, []string{paths[0], paths[1]}))
	t.logger.Info().
		Int("episode", t.episode).
		Strs("models", []string{paths[0], paths[1]}).
		Str("chart", chart).
		Msg("Checkpoint saved")
	return nil
}

func (t *Trainer) manifest() Manifest {
	paths := t.cfg.ModelPaths()
	m := Manifest{
		RunID:     t.runID,
		WrittenAt: time.Now().UTC(),
		Episode:   t.episode,
		Episodes:  t.cfg.Episodes,
		Steps:     t.steps,
		Board:     BoardManifest{Width: t.cfg.BoardWidth, Height: t.cfg.BoardHeight},
		Rewards: RewardManifest{
			Survive: t.cfg.Rewards.Survive,
			Lose:    t.cfg.Rewards.Lose,
			Win:     t.cfg.Rewards.Win,
		},
		Chart:   t.cfg.ChartFile,
		History: t.cfg.HistoryFile,
	}
	for i, a := range t.agents {
		m.Agents = append(m.Agents, AgentManifest{
			ID:          int(a.ID()),
			Checkpoint:  paths[i],
			Epsilon:     a.Epsilon(),
			Replays:     a.Replays(),
			Transitions: a.Memory().Len(),
			AvgReward:   t.tracker.MovingAverage(a.ID(), t.cfg.LogInterval),
		})
	}
	return m
}

// Close releases the episode history file.
func (t *Trainer) Close() error {
	if t.history == nil {
		return nil
	}
	return t.history.Close()
}

func (t *Trainer) publish(e events.Event) {
	if t.bus != nil {
		t.bus.Publish(e)
	}
}
