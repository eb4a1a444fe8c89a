package core

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Owner identifies who holds a cell. Empty cells have no owner.
type Owner uint8

const (
	Empty Owner = iota
	Agent1
	Agent2
)

// Collision describes why a cell cannot be entered.
type Collision int

const (
	NoCollision Collision = iota
	OutOfBounds
	Occupied
)

func (c Collision) String() string {
	switch c {
	case OutOfBounds:
		return "out_of_bounds"
	case Occupied:
		return "occupied"
	default:
		return "none"
	}
}

// Board is the arena grid. Cells are stored row-major and, once owned,
// stay owned until Reset.
type Board struct {
	W, H int
	T    []Owner // length = W*H (row-major)

	logger zerolog.Logger
}

func NewBoard(w, h int) *Board {
	return &Board{
		W:      w,
		H:      h,
		T:      make([]Owner, w*h),
		logger: log.With().Str("component", "board").Logger(),
	}
}

// SetLogger replaces the logger used for collision diagnostics.
func (b *Board) SetLogger(logger zerolog.Logger) {
	b.logger = logger.With().Str("component", "board").Logger()
}

func (b *Board) Idx(x, y int) int      { return y*b.W + x }
func (b *Board) XY(idx int) (int, int) { return idx % b.W, idx / b.W }
func (b *Board) Width() int            { return b.W }
func (b *Board) Height() int           { return b.H }

// InBounds checks if coordinates are within board boundaries
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.W && y >= 0 && y < b.H
}

// Owner returns the owner of a cell. Cells outside the board report Empty;
// use InBounds to tell them apart.
func (b *Board) Owner(x, y int) Owner {
	if !b.InBounds(x, y) {
		return Empty
	}
	return b.T[b.Idx(x, y)]
}

// Occupy marks a cell as part of owner's trail.
func (b *Board) Occupy(x, y int, owner Owner) {
	if owner == Empty {
		return
	}
	if !b.InBounds(x, y) {
		b.logger.Debug().Int("x", x).Int("y", y).Uint8("owner", uint8(owner)).Msg("Ignoring occupy outside board")
		return
	}
	b.T[b.Idx(x, y)] = owner
}

// CollisionAt reports what, if anything, blocks the cell.
func (b *Board) CollisionAt(x, y int) Collision {
	if !b.InBounds(x, y) {
		return OutOfBounds
	}
	if b.T[b.Idx(x, y)] != Empty {
		return Occupied
	}
	return NoCollision
}

// IsCollision is true when (x, y) is off the board or already owned.
func (b *Board) IsCollision(x, y int) bool {
	cause := b.CollisionAt(x, y)
	if cause == NoCollision {
		return false
	}
	b.logger.Debug().
		Int("x", x).
		Int("y", y).
		Str("cause", cause.String()).
		Msg("Collision detected")
	return true
}

// Reset clears every cell.
func (b *Board) Reset() {
	for i := range b.T {
		b.T[i] = Empty
	}
}

// Filled returns how many cells are owned.
func (b *Board) Filled() int {
	n := 0
	for _, o := range b.T {
		if o != Empty {
			n++
		}
	}
	return n
}

// String renders the grid as text, one row per line: '.' for empty cells
// and the owner id otherwise.
func (b *Board) String() string {
	var sb strings.Builder
	sb.Grow((b.W + 1) * b.H)
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			switch o := b.T[b.Idx(x, y)]; o {
			case Empty:
				sb.WriteByte('.')
			default:
				sb.WriteByte('0' + byte(o))
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
