package testutil

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/fogofwar/internal/game/core"
)

// NewTestRNG creates a deterministic random number generator for tests
func NewTestRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// NopLogger returns a no-op logger for tests
func NopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// FlatMap creates a fully playable map with no terrain height
func FlatMap(t *testing.T, w, h int) *core.Map {
	t.Helper()
	m, err := core.NewMap(w, h)
	require.NoError(t, err)
	return m
}

// PlateauMap creates a w x h map whose cells inside plateau are raised to
// height; everything else is ground level
func PlateauMap(t *testing.T, w, h int, plateau core.Rect, height int) *core.Map {
	t.Helper()
	heights := make([]int, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if plateau.Contains(x, y) {
				heights[y*w+x] = height
			}
		}
	}
	m, err := core.NewMap(w, h, core.WithHeights(heights, height))
	require.NoError(t, err)
	return m
}
