package core

import "errors"

var (
	ErrInvalidBoardSize  = errors.New("board dimensions must be positive")
	ErrInvalidDirection  = errors.New("invalid direction")
	ErrInvalidAgent      = errors.New("invalid agent ID")
	ErrOpponentNotLinked = errors.New("unconfigured opponent: agent must be linked before moving")
	ErrNoController      = errors.New("agent has no controller")
	ErrEpisodeOver       = errors.New("episode is over")
)
