package core

import "fmt"

// Coordinate represents a map cell. Rows run along Y, columns along X.
type Coordinate struct {
	X, Y int
}

// NewCoordinate creates a new coordinate with the given x and y values
func NewCoordinate(x, y int) Coordinate {
	return Coordinate{X: x, Y: y}
}

// FromIndex creates a coordinate from a grid array index using row-major ordering
func FromIndex(idx, width int) Coordinate {
	return Coordinate{
		X: idx % width,
		Y: idx / width,
	}
}

// IsValid checks if the coordinate is within the given bounds
func (c Coordinate) IsValid(width, height int) bool {
	return c.X >= 0 && c.X < width && c.Y >= 0 && c.Y < height
}

// ToIndex converts the coordinate to a grid array index using row-major ordering
func (c Coordinate) ToIndex(width int) int {
	return c.Y*width + c.X
}

// Add returns a new coordinate that is the sum of this coordinate and another
func (c Coordinate) Add(other Coordinate) Coordinate {
	return Coordinate{
		X: c.X + other.X,
		Y: c.Y + other.Y,
	}
}

// Sub returns a new coordinate that is the difference between this coordinate and another
func (c Coordinate) Sub(other Coordinate) Coordinate {
	return Coordinate{
		X: c.X - other.X,
		Y: c.Y - other.Y,
	}
}

// String returns a string representation of the coordinate
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// PPos is a cell in the projected (height-normalised) plane used by the shroud.
// A single map cell on a cliff can cover several projected cells.
type PPos struct {
	U, V int
}

// NewPPos creates a projected cell position
func NewPPos(u, v int) PPos {
	return PPos{U: u, V: v}
}

// PPosFromIndex is the inverse of PPos.ToIndex
func PPosFromIndex(idx, width int) PPos {
	return PPos{U: idx % width, V: idx / width}
}

// ToIndex converts the projected cell to a row-major array index
func (p PPos) ToIndex(width int) int {
	return p.V*width + p.U
}

// IsValid checks if the projected cell lies inside a width x height grid
func (p PPos) IsValid(width, height int) bool {
	return p.U >= 0 && p.U < width && p.V >= 0 && p.V < height
}

// Less orders projected cells row-major, the traversal order used everywhere
// determinism matters.
func (p PPos) Less(other PPos) bool {
	if p.V != other.V {
		return p.V < other.V
	}
	return p.U < other.U
}

func (p PPos) String() string {
	return fmt.Sprintf("[%d,%d]", p.U, p.V)
}
