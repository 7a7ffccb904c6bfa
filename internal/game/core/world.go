package core

import "fmt"

const (
	// CellSize is the number of world units along one cell edge.
	CellSize = 1024
	// HeightStep is the number of world Z units per terrain height level.
	// One level shifts the projection by exactly one row.
	HeightStep = 1024
)

// WDist is a distance in world units.
type WDist int

// Cells returns a distance spanning n whole cells
func Cells(n int) WDist {
	return WDist(n * CellSize)
}

// LengthSquared returns the squared distance as int64 to avoid overflow on large ranges
func (d WDist) LengthSquared() int64 {
	return int64(d) * int64(d)
}

// WVec is an offset in world units.
type WVec struct {
	X, Y, Z int
}

// HorizontalLengthSquared ignores the Z component
func (v WVec) HorizontalLengthSquared() int64 {
	return int64(v.X)*int64(v.X) + int64(v.Y)*int64(v.Y)
}

// WPos is an absolute position in world units.
type WPos struct {
	X, Y, Z int
}

// NewWPos creates a world position
func NewWPos(x, y, z int) WPos {
	return WPos{X: x, Y: y, Z: z}
}

// Add offsets the position by a vector
func (p WPos) Add(v WVec) WPos {
	return WPos{X: p.X + v.X, Y: p.Y + v.Y, Z: p.Z + v.Z}
}

// Sub returns the vector from other to p
func (p WPos) Sub(other WPos) WVec {
	return WVec{X: p.X - other.X, Y: p.Y - other.Y, Z: p.Z - other.Z}
}

// Projected flattens the position into the shroud plane: elevated positions
// move north by their height.
func (p WPos) Projected() WPos {
	return WPos{X: p.X, Y: p.Y - p.Z, Z: 0}
}

func (p WPos) String() string {
	return fmt.Sprintf("%d,%d,%d", p.X, p.Y, p.Z)
}

// floorDiv divides rounding towards negative infinity so positions just
// outside the map map to negative cells instead of cell zero.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
