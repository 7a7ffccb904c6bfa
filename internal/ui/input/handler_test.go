package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextView(t *testing.T) {
	tests := []struct {
		current, players, expected int
	}{
		{0, 2, 1},
		{1, 2, -1},
		{-1, 2, 0},
		{0, 1, -1},
		{-1, 1, 0},
		{3, 0, -1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NextView(tt.current, tt.players), "from %d with %d players", tt.current, tt.players)
	}
}

func TestHandler_StartsEmpty(t *testing.T) {
	h := NewHandler()
	assert.Empty(t, h.Commands())
	x, y := h.Cursor()
	assert.Zero(t, x)
	assert.Zero(t, y)
}
