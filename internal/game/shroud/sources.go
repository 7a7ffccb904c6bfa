package shroud

import (
	"fmt"
	"slices"

	"github.com/mitchelldurbincs/fogofwar/internal/game/core"
)

// AddSource registers a source covering cells. Cells outside the playable
// bounds are ignored. Registering an id that is already present is a caller
// bug: the call fails with ErrDuplicateSource and nothing changes.
func (s *Shroud) AddSource(id SourceID, kind SourceType, cells []core.PPos) error {
	if _, exists := s.sources[id]; exists {
		return fmt.Errorf("player %d source %d: %w", s.playerID, id, core.ErrDuplicateSource)
	}

	switch kind {
	case SourcePassiveVisibility:
		s.passiveVisibilityEnabled = true
	case SourceShroud:
		s.shroudGenerationEnabled = true
	}

	for _, p := range cells {
		if !s.m.Contains(p) {
			continue
		}

		idx := s.touched.Index(p)
		s.markTouched(p, idx)
		switch kind {
		case SourcePassiveVisibility:
			s.passiveVisibleCount.SetIndex(idx, s.passiveVisibleCount.GetIndex(idx)+1)
			s.explored.SetIndex(idx, true)
		case SourceVisibility:
			s.visibleCount.SetIndex(idx, s.visibleCount.GetIndex(idx)+1)
			s.explored.SetIndex(idx, true)
		case SourceShroud:
			s.generatedShroudCount.SetIndex(idx, s.generatedShroudCount.GetIndex(idx)+1)
		}
	}

	s.sources[id] = source{kind: kind, cells: slices.Clone(cells)}
	return nil
}

// RemoveSource unregisters a source. Unknown ids are ignored. Exploration
// is never reverted.
func (s *Shroud) RemoveSource(id SourceID) {
	src, ok := s.sources[id]
	if !ok {
		return
	}

	for _, p := range src.cells {
		if !s.m.Contains(p) {
			continue
		}

		idx := s.touched.Index(p)
		s.markTouched(p, idx)
		switch src.kind {
		case SourcePassiveVisibility:
			s.passiveVisibleCount.SetIndex(idx, s.passiveVisibleCount.GetIndex(idx)-1)
		case SourceVisibility:
			s.visibleCount.SetIndex(idx, s.visibleCount.GetIndex(idx)-1)
		case SourceShroud:
			s.generatedShroudCount.SetIndex(idx, s.generatedShroudCount.GetIndex(idx)-1)
		}
	}

	delete(s.sources, id)
}

// HasSource reports whether id is currently registered
func (s *Shroud) HasSource(id SourceID) bool {
	_, ok := s.sources[id]
	return ok
}

// SourceCount returns the number of registered sources
func (s *Shroud) SourceCount() int {
	return len(s.sources)
}

func (s *Shroud) markTouched(p core.PPos, idx int) {
	if s.touched.GetIndex(idx) {
		return
	}
	s.touched.SetIndex(idx, true)
	s.dirty = append(s.dirty, p)
}
