package common

import "github.com/mitchelldurbincs/fogofwar/internal/game/core"

// Abs returns the absolute value of an integer
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ManhattanDistance returns the grid distance between two map cells
func ManhattanDistance(from, to core.Coordinate) int {
	return Abs(from.X-to.X) + Abs(from.Y-to.Y)
}
