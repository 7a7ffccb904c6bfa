package shroud

import (
	"slices"

	"github.com/mitchelldurbincs/fogofwar/internal/game/core"
)

// Tick refreshes the cached classification of every cell touched since the
// previous step, then updates the sync hash. Cells are resolved and reported
// in row-major order so every peer emits the same notification sequence.
//
// The cache is refreshed whether or not anyone is listening; queries depend
// on it. Cells touched by a listener after they were resolved wait for the
// next Tick.
func (s *Shroud) Tick(step int) {
	if len(s.dirty) > 0 {
		batch := s.dirty
		s.dirty = s.spare[:0]

		slices.SortFunc(batch, func(a, b core.PPos) int {
			switch {
			case a.Less(b):
				return -1
			case b.Less(a):
				return 1
			default:
				return 0
			}
		})

		changed := 0
		for _, p := range batch {
			idx := s.touched.Index(p)
			s.touched.SetIndex(idx, false)

			next := s.classify(idx)
			prev := s.resolved.GetIndex(idx)
			if next == prev {
				continue
			}

			s.resolved.SetIndex(idx, next)
			changed++
			s.notify(CellChange{Cell: p, Previous: prev, Current: next})
		}

		if changed > 0 {
			s.logger.Debug().
				Int("step", step).
				Int("dirty", len(batch)).
				Int("changed", changed).
				Msg("Resolved shroud cells")
		}
		s.spare = batch[:0]
	}

	s.hash = playerHash(s.playerID) + step
}

// classify derives a cell's class from its counters. Generated shroud hides
// an explored cell unless a full visibility source is looking at it.
func (s *Shroud) classify(idx int) CellVisibility {
	if !s.explored.GetIndex(idx) {
		return Shrouded
	}

	visible := int(s.visibleCount.GetIndex(idx))
	if s.shroudGenerationEnabled && s.generatedShroudCount.GetIndex(idx) > 0 && visible == 0 {
		return Shrouded
	}

	total := visible
	if s.passiveVisibilityEnabled {
		total += int(s.passiveVisibleCount.GetIndex(idx))
	}
	if total > 0 {
		return Visible
	}
	return Fogged
}

// playerHash mixes the player identity into the upper bits of the sync hash
func playerHash(playerID int) int {
	return (playerID + 1) << 16
}
