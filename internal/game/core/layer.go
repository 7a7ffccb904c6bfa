package core

// CellLayer is dense per-cell storage over a fixed projected grid.
// Reads and writes outside the grid panic; callers guard with Contains.
type CellLayer[T any] struct {
	width, height int
	entries       []T
}

// NewCellLayer allocates a layer covering the full projected grid of m
func NewCellLayer[T any](m *Map) *CellLayer[T] {
	return newCellLayerSize[T](m.W, m.H)
}

// newCellLayerSize allocates a layer of the given dimensions
func newCellLayerSize[T any](width, height int) *CellLayer[T] {
	return &CellLayer[T]{
		width:   width,
		height:  height,
		entries: make([]T, width*height),
	}
}

func (l *CellLayer[T]) Width() int  { return l.width }
func (l *CellLayer[T]) Height() int { return l.height }
func (l *CellLayer[T]) Size() int   { return len(l.entries) }

// Contains reports whether p addresses a cell of this layer
func (l *CellLayer[T]) Contains(p PPos) bool {
	return p.IsValid(l.width, l.height)
}

// Index returns the row-major index of p. p must be inside the layer.
func (l *CellLayer[T]) Index(p PPos) int {
	if !l.Contains(p) {
		panic("cell layer: position " + p.String() + " out of range")
	}
	return p.ToIndex(l.width)
}

func (l *CellLayer[T]) Get(p PPos) T {
	return l.entries[l.Index(p)]
}

func (l *CellLayer[T]) Set(p PPos, value T) {
	l.entries[l.Index(p)] = value
}

func (l *CellLayer[T]) GetIndex(i int) T {
	return l.entries[i]
}

func (l *CellLayer[T]) SetIndex(i int, value T) {
	l.entries[i] = value
}

// Clear resets every cell to the zero value
func (l *CellLayer[T]) Clear() {
	clear(l.entries)
}
