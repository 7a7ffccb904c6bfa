package shroud

import "github.com/mitchelldurbincs/fogofwar/internal/game/core"

// Contains reports whether the projected cell is inside the playable bounds
func (s *Shroud) Contains(p core.PPos) bool {
	return s.m.Contains(p)
}

// GetVisibility returns the cached class of a projected cell. Cells outside
// the bounds are always Shrouded.
func (s *Shroud) GetVisibility(p core.PPos) CellVisibility {
	if !s.m.Contains(p) {
		return Shrouded
	}
	return s.resolved.Get(p)
}

// IsExplored reports whether the projected cell has ever been seen
func (s *Shroud) IsExplored(p core.PPos) bool {
	if !s.m.Contains(p) {
		return false
	}
	if s.disabled {
		return true
	}
	return s.resolved.Get(p) != Shrouded
}

// IsExploredCell is true when any projected cell covering c is explored
func (s *Shroud) IsExploredCell(c core.Coordinate) bool {
	for _, p := range s.m.ProjectedCellsCovering(c) {
		if s.IsExplored(p) {
			return true
		}
	}
	return false
}

// IsExploredAt checks the projected cell a world position is drawn in
func (s *Shroud) IsExploredAt(pos core.WPos) bool {
	return s.IsExplored(s.m.ProjectedCellCovering(pos))
}

// IsVisible reports whether the projected cell is currently seen. Without
// fog every in-bounds cell is visible.
func (s *Shroud) IsVisible(p core.PPos) bool {
	if !s.m.Contains(p) {
		return false
	}
	if !s.FogEnabled() {
		return true
	}
	return s.resolved.Get(p) == Visible
}

// IsVisibleCell is true when any projected cell covering c is visible
func (s *Shroud) IsVisibleCell(c core.Coordinate) bool {
	for _, p := range s.m.ProjectedCellsCovering(c) {
		if s.IsVisible(p) {
			return true
		}
	}
	return false
}

// IsVisibleAt checks the projected cell a world position is drawn in
func (s *Shroud) IsVisibleAt(pos core.WPos) bool {
	return s.IsVisible(s.m.ProjectedCellCovering(pos))
}

// AnyExplored reports whether any of the map cells is explored
func (s *Shroud) AnyExplored(cells []core.Coordinate) bool {
	for _, c := range cells {
		if s.IsExploredCell(c) {
			return true
		}
	}
	return false
}

// AnyVisible reports whether any of the map cells is visible
func (s *Shroud) AnyVisible(cells []core.Coordinate) bool {
	for _, c := range cells {
		if s.IsVisibleCell(c) {
			return true
		}
	}
	return false
}

// ShroudObscures is true when the position has never been explored
func (s *Shroud) ShroudObscures(pos core.WPos) bool {
	return !s.IsExploredAt(pos)
}

// FogObscures is true when the position is not currently visible
func (s *Shroud) FogObscures(pos core.WPos) bool {
	return !s.IsVisibleAt(pos)
}

// Counters returns the raw source counts of an in-bounds projected cell
func (s *Shroud) Counters(p core.PPos) (visible, passive, generated int) {
	if !s.m.Contains(p) {
		return 0, 0, 0
	}
	idx := s.resolved.Index(p)
	return int(s.visibleCount.GetIndex(idx)),
		int(s.passiveVisibleCount.GetIndex(idx)),
		int(s.generatedShroudCount.GetIndex(idx))
}

// Snapshot copies the cached classification of the full grid, row-major.
// Out of bounds cells are reported as Shrouded.
func (s *Shroud) Snapshot() []CellVisibility {
	out := make([]CellVisibility, s.resolved.Size())
	for i := range out {
		out[i] = s.resolved.GetIndex(i)
	}
	return out
}
