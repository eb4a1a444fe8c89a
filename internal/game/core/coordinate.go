package core

import "fmt"

// Coordinate represents a position on the game board
type Coordinate struct {
	X, Y int
}

// NewCoordinate creates a new coordinate with the given x and y values
func NewCoordinate(x, y int) Coordinate {
	return Coordinate{X: x, Y: y}
}

// IsValid checks if the coordinate is within the given bounds
func (c Coordinate) IsValid(width, height int) bool {
	return c.X >= 0 && c.X < width && c.Y >= 0 && c.Y < height
}

// Add returns a new coordinate that is the sum of this coordinate and another
func (c Coordinate) Add(other Coordinate) Coordinate {
	return Coordinate{
		X: c.X + other.X,
		Y: c.Y + other.Y,
	}
}

// String returns a string representation of the coordinate
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Direction is one of the four headings a cycle can take. The numeric
// value doubles as the action index used by the value network.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// NumDirections is the size of the action space.
const NumDirections = 4

// Directions lists every heading in canonical action order.
var Directions = [NumDirections]Direction{Up, Down, Left, Right}

var directionVectors = [NumDirections]Coordinate{
	Up:    {X: 0, Y: -1},
	Down:  {X: 0, Y: 1},
	Left:  {X: -1, Y: 0},
	Right: {X: 1, Y: 0},
}

// Index returns the position of d in Directions.
func (d Direction) Index() int { return int(d) }

// Valid reports whether d is one of the four headings.
func (d Direction) Valid() bool { return d >= Up && d <= Right }

// Vector returns the unit offset for d.
func (d Direction) Vector() Coordinate {
	if !d.Valid() {
		return Coordinate{}
	}
	return directionVectors[d]
}

// Opposite returns the heading pointing the other way.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	return d
}

// IsOrthogonal reports whether d and other are perpendicular.
func (d Direction) IsOrthogonal(other Direction) bool {
	a, b := d.Vector(), other.Vector()
	return d.Valid() && other.Valid() && a.X*b.X+a.Y*b.Y == 0
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// DirectionFromIndex maps an action index back to its heading.
func DirectionFromIndex(i int) (Direction, error) {
	if i < 0 || i >= NumDirections {
		return 0, fmt.Errorf("action index %d: %w", i, ErrInvalidDirection)
	}
	return Directions[i], nil
}

// Move returns a new coordinate moved one step in the given direction
func (c Coordinate) Move(direction Direction) Coordinate {
	return c.Add(direction.Vector())
}
