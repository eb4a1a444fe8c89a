package common

// IsValidCoordinate checks if the given coordinates are within the bounds of the board
func IsValidCoordinate(x, y, width, height int) bool {
	return x >= 0 && x < width && y >= 0 && y < height
}

// InOpenUnit reports whether 0 < v < 1
func InOpenUnit(v float64) bool {
	return v > 0 && v < 1
}

// InUnit reports whether 0 <= v <= 1
func InUnit(v float64) bool {
	return v >= 0 && v <= 1
}
