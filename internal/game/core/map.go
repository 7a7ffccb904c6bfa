package core

import (
	"fmt"
	"iter"
)

// Rect is an axis aligned rectangle of cells.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether (x, y) lies inside the rectangle
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Map is the immutable terrain grid shared by every player's shroud.
// Map cells and projected cells share the same W x H index space; Bounds
// restricts both to the playable area.
type Map struct {
	W, H      int
	MaxHeight int
	Bounds    Rect

	heights         []int
	projectedHeight []int
	unprojected     [][]Coordinate
}

// MapOption customises map construction
type MapOption func(*Map) error

// WithHeights sets per-cell terrain heights in row-major order
func WithHeights(heights []int, maxHeight int) MapOption {
	return func(m *Map) error {
		if len(heights) != m.W*m.H {
			return fmt.Errorf("got %d heights for a %dx%d map: %w", len(heights), m.W, m.H, ErrInvalidHeight)
		}
		if maxHeight < 0 {
			return fmt.Errorf("max height %d: %w", maxHeight, ErrInvalidHeight)
		}
		for i, h := range heights {
			if h < 0 || h > maxHeight {
				return fmt.Errorf("cell %s height %d outside 0..%d: %w", FromIndex(i, m.W), h, maxHeight, ErrInvalidHeight)
			}
		}
		m.heights = append(m.heights[:0], heights...)
		m.MaxHeight = maxHeight
		return nil
	}
}

// WithBounds restricts the playable area
func WithBounds(bounds Rect) MapOption {
	return func(m *Map) error {
		if bounds.W <= 0 || bounds.H <= 0 || bounds.X < 0 || bounds.Y < 0 ||
			bounds.X+bounds.W > m.W || bounds.Y+bounds.H > m.H {
			return fmt.Errorf("bounds %+v outside %dx%d map: %w", bounds, m.W, m.H, ErrInvalidCoordinates)
		}
		m.Bounds = bounds
		return nil
	}
}

// NewMap creates a map of the given size. Without options the map is flat
// and fully playable.
func NewMap(w, h int, opts ...MapOption) (*Map, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("map size %dx%d: %w", w, h, ErrInvalidCoordinates)
	}

	m := &Map{
		W:       w,
		H:       h,
		Bounds:  Rect{X: 0, Y: 0, W: w, H: h},
		heights: make([]int, w*h),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	m.buildProjection()
	return m, nil
}

// NewFlatMap creates a flat, fully playable map. It panics on invalid sizes.
func NewFlatMap(w, h int) *Map {
	m, err := NewMap(w, h)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Map) buildProjection() {
	m.projectedHeight = make([]int, m.W*m.H)
	m.unprojected = make([][]Coordinate, m.W*m.H)

	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			c := Coordinate{X: x, Y: y}
			h := m.heights[c.ToIndex(m.W)]
			for _, p := range m.ProjectedCellsCovering(c) {
				if !p.IsValid(m.W, m.H) {
					continue
				}
				idx := p.ToIndex(m.W)
				m.unprojected[idx] = append(m.unprojected[idx], c)
				if h > m.projectedHeight[idx] {
					m.projectedHeight[idx] = h
				}
			}
		}
	}
}

// InGrid reports whether the map cell exists at all, ignoring bounds
func (m *Map) InGrid(c Coordinate) bool {
	return c.IsValid(m.W, m.H)
}

// Height returns the terrain height of a map cell, 0 outside the grid
func (m *Map) Height(c Coordinate) int {
	if !m.InGrid(c) {
		return 0
	}
	return m.heights[c.ToIndex(m.W)]
}

// Contains reports whether the projected cell lies inside the playable bounds
func (m *Map) Contains(p PPos) bool {
	return m.Bounds.Contains(p.U, p.V)
}

// ContainsCell reports whether a map cell is in the grid and every projected
// cell it covers is playable.
func (m *Map) ContainsCell(c Coordinate) bool {
	if !m.InGrid(c) {
		return false
	}
	for _, p := range m.ProjectedCellsCovering(c) {
		if !m.Contains(p) {
			return false
		}
	}
	return true
}

// SameBounds reports whether two maps describe the same projected space
func (m *Map) SameBounds(other *Map) bool {
	return m.W == other.W && m.H == other.H && m.Bounds == other.Bounds
}

// ProjectedCellsCovering returns the projected cells a map cell occupies,
// north to south. A cell standing above a cliff also covers the cliff face
// down to its southern neighbour. Cells above row zero are included and
// simply fall outside the bounds.
func (m *Map) ProjectedCellsCovering(c Coordinate) []PPos {
	if !m.InGrid(c) {
		return nil
	}

	h := m.Height(c)
	drop := 0
	if below := (Coordinate{X: c.X, Y: c.Y + 1}); m.InGrid(below) {
		if d := h - m.Height(below) - 1; d > 0 {
			drop = d
		}
	}

	cells := make([]PPos, 0, drop+1)
	for i := 0; i <= drop; i++ {
		cells = append(cells, PPos{U: c.X, V: c.Y - h + i})
	}
	return cells
}

// Unproject returns the map cells covering a projected cell in row-major order
func (m *Map) Unproject(p PPos) []Coordinate {
	if !p.IsValid(m.W, m.H) {
		return nil
	}
	return m.unprojected[p.ToIndex(m.W)]
}

// ProjectedHeight returns the highest terrain covering a projected cell
func (m *Map) ProjectedHeight(p PPos) int {
	if !p.IsValid(m.W, m.H) {
		return 0
	}
	return m.projectedHeight[p.ToIndex(m.W)]
}

// CenterOfCell returns the world position at the middle of a map cell, on
// its terrain surface
func (m *Map) CenterOfCell(c Coordinate) WPos {
	return WPos{
		X: c.X*CellSize + CellSize/2,
		Y: c.Y*CellSize + CellSize/2,
		Z: m.Height(c) * HeightStep,
	}
}

// CellContaining returns the map cell under a world position, ignoring Z
func (m *Map) CellContaining(pos WPos) Coordinate {
	return Coordinate{X: floorDiv(pos.X, CellSize), Y: floorDiv(pos.Y, CellSize)}
}

// ProjectedCellCovering returns the projected cell a world position is drawn in
func (m *Map) ProjectedCellCovering(pos WPos) PPos {
	c := m.CellContaining(pos.Projected())
	return PPos{U: c.X, V: c.Y}
}

// ProjectedCells iterates the playable projected cells in row-major order
func (m *Map) ProjectedCells() iter.Seq[PPos] {
	return func(yield func(PPos) bool) {
		for v := m.Bounds.Y; v < m.Bounds.Y+m.Bounds.H; v++ {
			for u := m.Bounds.X; u < m.Bounds.X+m.Bounds.W; u++ {
				if !yield(PPos{U: u, V: v}) {
					return
				}
			}
		}
	}
}
