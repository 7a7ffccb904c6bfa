package shroud

import (
	"fmt"

	"github.com/mitchelldurbincs/fogofwar/internal/game/core"
)

// ExploreProjectedCells marks the given cells explored. Out of bounds cells
// are ignored.
func (s *Shroud) ExploreProjectedCells(cells []core.PPos) {
	for _, p := range cells {
		if !s.m.Contains(p) {
			continue
		}
		s.explore(p)
	}
}

// Explore merges another shroud's exploration into this one, used for
// shared allied vision. Both shrouds must cover the same map bounds.
func (s *Shroud) Explore(other *Shroud) error {
	if !s.m.SameBounds(other.m) {
		return fmt.Errorf("player %d merging player %d: %w", s.playerID, other.playerID, core.ErrBoundsMismatch)
	}

	for p := range s.m.ProjectedCells() {
		if other.explored.Get(p) {
			s.explore(p)
		}
	}
	return nil
}

// ExploreAll marks every playable cell explored
func (s *Shroud) ExploreAll() {
	for p := range s.m.ProjectedCells() {
		s.explore(p)
	}
}

// ResetExploration forgets every cell that is not actively seen right now
func (s *Shroud) ResetExploration() {
	for p := range s.m.ProjectedCells() {
		idx := s.touched.Index(p)
		s.markTouched(p, idx)
		seen := s.visibleCount.GetIndex(idx)+s.passiveVisibleCount.GetIndex(idx) > 0
		s.explored.SetIndex(idx, seen)
	}
}

func (s *Shroud) explore(p core.PPos) {
	idx := s.explored.Index(p)
	if s.explored.GetIndex(idx) {
		return
	}
	s.explored.SetIndex(idx, true)
	s.markTouched(p, idx)
}
