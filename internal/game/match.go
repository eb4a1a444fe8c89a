package game

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/LightTrailRL/internal/game/core"
	"github.com/mitchelldurbincs/LightTrailRL/internal/game/states"
)

// MatchConfig places the two cycles at the start of every episode.
type MatchConfig struct {
	Spawn1 core.Coordinate
	Spawn2 core.Coordinate
}

// DefaultMatchConfig returns the spawns used on the standard 40x30 arena.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		Spawn1: core.NewCoordinate(10, 15),
		Spawn2: core.NewCoordinate(30, 15),
	}
}

// StepResult describes what happened during one step of a match.
type StepResult struct {
	Turn     int
	Done     bool
	Crashed  core.Owner // core.Empty when both cycles survived
	Cause    core.Collision
	Headings [2]core.Direction
}

// Winner returns the surviving agent of a finished step, or core.Empty.
func (r StepResult) Winner() core.Owner {
	switch r.Crashed {
	case core.Agent1:
		return core.Agent2
	case core.Agent2:
		return core.Agent1
	}
	return core.Empty
}

// Match owns the board and both cycles. Building the cycles through a
// Match is the only way to link them to each other.
type Match struct {
	board  *core.Board
	cycles [2]*Cycle
	config MatchConfig
	turn   int
	sm     *states.StateMachine
	logger zerolog.Logger
}

// NewMatch builds both cycles, links them and resets the board for the
// first episode.
func NewMatch(board *core.Board, cfg MatchConfig, ctrl1, ctrl2 Controller, logger zerolog.Logger) (*Match, error) {
	if board == nil || board.W <= 0 || board.H <= 0 {
		return nil, core.ErrInvalidBoardSize
	}
	if ctrl1 == nil || ctrl2 == nil {
		return nil, core.ErrNoController
	}
	if !cfg.Spawn1.IsValid(board.W, board.H) || !cfg.Spawn2.IsValid(board.W, board.H) {
		return nil, fmt.Errorf("spawns %s and %s must lie on a %dx%d board", cfg.Spawn1, cfg.Spawn2, board.W, board.H)
	}
	if cfg.Spawn1 == cfg.Spawn2 {
		return nil, fmt.Errorf("spawns must differ, both are %s", cfg.Spawn1)
	}

	m := &Match{
		board:  board,
		config: cfg,
		sm:     states.NewStateMachine(logger),
		logger: logger.With().Str("component", "match").Logger(),
	}
	m.cycles[0] = &Cycle{id: core.Agent1, ctrl: ctrl1, match: m}
	m.cycles[1] = &Cycle{id: core.Agent2, ctrl: ctrl2, match: m}
	m.Reset()
	return m, nil
}

func (m *Match) Board() *core.Board           { return m.board }
func (m *Match) Agent1() *Cycle               { return m.cycles[0] }
func (m *Match) Agent2() *Cycle               { return m.cycles[1] }
func (m *Match) Turn() int                    { return m.turn }
func (m *Match) Config() MatchConfig          { return m.config }
func (m *Match) Phase() states.EpisodePhase   { return m.sm.CurrentPhase() }
func (m *Match) Done() bool                   { return m.sm.CurrentPhase().IsTerminal() }
func (m *Match) History() []states.Transition { return m.sm.GetHistory() }

// Cycle returns the cycle for an agent id.
func (m *Match) Cycle(id core.Owner) (*Cycle, error) {
	switch id {
	case core.Agent1:
		return m.cycles[0], nil
	case core.Agent2:
		return m.cycles[1], nil
	}
	return nil, fmt.Errorf("agent %d: %w", id, core.ErrInvalidAgent)
}

// SetController swaps the controller of one agent, e.g. to hand a cycle to
// a human player between episodes.
func (m *Match) SetController(id core.Owner, ctrl Controller) error {
	if ctrl == nil {
		return core.ErrNoController
	}
	c, err := m.Cycle(id)
	if err != nil {
		return err
	}
	c.ctrl = ctrl
	return nil
}

// Reset clears the board and puts both cycles back on their spawn cells,
// which become the first cells of their trails.
func (m *Match) Reset() {
	m.board.Reset()
	m.cycles[0].Reset(m.config.Spawn1.X, m.config.Spawn1.Y)
	m.cycles[1].Reset(m.config.Spawn2.X, m.config.Spawn2.Y)
	for _, c := range m.cycles {
		m.board.Occupy(c.pos.X, c.pos.Y, c.id)
	}
	m.turn = 0

	if m.sm.CurrentPhase().IsTerminal() {
		// Terminal -> EpisodeStart is always allowed.
		_ = m.sm.TransitionTo(states.PhaseEpisodeStart, "reset")
	} else {
		m.sm.Reset()
	}
}

// Step moves agent 1 and then agent 2, then resolves collisions in that
// same order: when both crash on the same step, agent 1 is the one that
// loses, including when both enter the same cell. Surviving cycles claim
// their new cells. A failed move aborts the episode.
func (m *Match) Step() (StepResult, error) {
	if m.Done() {
		return StepResult{}, core.ErrEpisodeOver
	}

	a1, a2 := m.cycles[0], m.cycles[1]

	if err := m.sm.TransitionTo(states.PhaseAgent1Turn, "agent 1 to move"); err != nil {
		return StepResult{}, err
	}
	offBoard1, err := a1.Move()
	if err != nil {
		m.sm.Abort(fmt.Sprintf("agent 1 failed to move: %v", err))
		return StepResult{}, err
	}

	if err := m.sm.TransitionTo(states.PhaseAgent2Turn, "agent 2 to move"); err != nil {
		return StepResult{}, err
	}
	offBoard2, err := a2.Move()
	if err != nil {
		m.sm.Abort(fmt.Sprintf("agent 2 failed to move: %v", err))
		return StepResult{}, err
	}

	m.turn++
	res := StepResult{
		Turn:     m.turn,
		Headings: [2]core.Direction{a1.heading, a2.heading},
	}

	switch {
	case offBoard1 || m.board.IsCollision(a1.pos.X, a1.pos.Y):
		res.Crashed = core.Agent1
		res.Cause = crashCause(offBoard1, m.board, a1)
	case !offBoard2 && a1.pos == a2.pos:
		// Head-on into the same empty cell. Agent 1 is resolved first and
		// finds the cell taken.
		res.Crashed = core.Agent1
		res.Cause = core.Occupied
	case offBoard2 || m.board.IsCollision(a2.pos.X, a2.pos.Y):
		res.Crashed = core.Agent2
		res.Cause = crashCause(offBoard2, m.board, a2)
	default:
		m.board.Occupy(a1.pos.X, a1.pos.Y, a1.id)
		m.board.Occupy(a2.pos.X, a2.pos.Y, a2.id)
		return res, nil
	}

	res.Done = true
	m.logger.Debug().
		Int("turn", m.turn).
		Uint8("agent", uint8(res.Crashed)).
		Str("cause", res.Cause.String()).
		Str("position", m.cycles[res.Crashed-1].pos.String()).
		Msg("Agent crashed")

	reason := fmt.Sprintf("agent %d crashed (%s)", res.Crashed, res.Cause)
	if err := m.sm.TransitionTo(states.PhaseTerminal, reason); err != nil {
		return res, err
	}
	return res, nil
}

func crashCause(offBoard bool, board *core.Board, c *Cycle) core.Collision {
	if offBoard {
		return core.OutOfBounds
	}
	return board.CollisionAt(c.pos.X, c.pos.Y)
}
