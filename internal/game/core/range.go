package core

import "iter"

// ProjectedCellsInRange yields the projected cells whose centres lie within
// (minRange, maxRange] of origin once origin is flattened into the shroud
// plane. The cell directly under origin is always included. When
// maxHeightDelta is non-negative, cells whose projected terrain is not below
// the origin's height plus maxHeightDelta are skipped; this caps how far
// sight carries downhill without limiting it uphill.
//
// The sequence is restartable and walks the search square row-major. Cells
// outside the playable bounds are yielded; callers clip them.
func ProjectedCellsInRange(m *Map, origin WPos, minRange, maxRange WDist, maxHeightDelta int) iter.Seq[PPos] {
	return func(yield func(PPos) bool) {
		// Extra half cell accounts for the origin sitting anywhere inside its cell.
		r := (int(maxRange) + CellSize - 1 + CellSize/2) / CellSize
		if r < 0 {
			return
		}

		minLimit := minRange.LengthSquared()
		maxLimit := maxRange.LengthSquared()

		projectedPos := origin.Projected()
		center := m.CellContaining(projectedPos)
		projectedHeight := origin.Z / HeightStep

		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				c := Coordinate{X: center.X + dx, Y: center.Y + dy}
				if !m.InGrid(c) {
					continue
				}

				cellCenter := WPos{X: c.X*CellSize + CellSize/2, Y: c.Y*CellSize + CellSize/2}
				dist := cellCenter.Sub(projectedPos).HorizontalLengthSquared()
				if dist > maxLimit || (dist != 0 && dist <= minLimit) {
					continue
				}

				p := PPos{U: c.X, V: c.Y}
				if maxHeightDelta >= 0 && m.ProjectedHeight(p) >= projectedHeight+maxHeightDelta {
					continue
				}

				if !yield(p) {
					return
				}
			}
		}
	}
}

// ProjectedCellsInCellRange is ProjectedCellsInRange centred on a map cell
// with no minimum range and no height cutoff
func ProjectedCellsInCellRange(m *Map, cell Coordinate, r WDist) iter.Seq[PPos] {
	return ProjectedCellsInRange(m, m.CenterOfCell(cell), 0, r, -1)
}
