package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/fogofwar/internal/game/core"
	"github.com/mitchelldurbincs/fogofwar/internal/game/shroud"
	"github.com/mitchelldurbincs/fogofwar/internal/testutil"
)

func boardRows(board string) []string {
	return strings.Split(strings.TrimRight(board, "\n"), "\n")
}

func TestPlainBoard(t *testing.T) {
	e := newTestEngine(t, testutil.FlatMap(t, 4, 3), shroud.LobbyOptions{FogEnabled: true, ExploredMap: true}, 0, 0)
	m := e.Map()

	_, err := e.AddUnit(0, m.CenterOfCell(core.NewCoordinate(1, 1)), scout(core.Cells(1)))
	require.NoError(t, err)
	_, err = e.AddUnit(1, m.CenterOfCell(core.NewCoordinate(3, 0)))
	require.NoError(t, err)
	step(t, e, 1)

	t.Run("PlayerView", func(t *testing.T) {
		rows := boardRows(e.PlainBoard(0))
		require.Len(t, rows, 6)
		assert.Equal(t, "    0 1 2 3", rows[0])
		assert.Equal(t, " 0  ~ · ~ ~", rows[1])
		assert.Equal(t, " 1  · A · ~", rows[2])
		assert.Equal(t, " 2  ~ · ~ ~", rows[3])
		assert.Empty(t, rows[4])
		assert.Contains(t, rows[5], "=fog")
	})

	t.Run("ObserverView", func(t *testing.T) {
		rows := boardRows(e.PlainBoard(-1))
		assert.Equal(t, " 0  · · · B", rows[1])
		assert.Equal(t, " 1  · A · ·", rows[2])
		assert.Equal(t, " 2  · · · ·", rows[3])
	})

	t.Run("UnexploredIsBlank", func(t *testing.T) {
		other := newTestEngine(t, testutil.FlatMap(t, 4, 3), fogOn, 0)
		_, err := other.AddUnit(0, other.Map().CenterOfCell(core.NewCoordinate(1, 1)), scout(core.Cells(1)))
		require.NoError(t, err)
		step(t, other, 1)

		rows := boardRows(other.PlainBoard(0))
		assert.Equal(t, " 0    ·    ", rows[1])
		assert.Equal(t, " 1  · A ·  ", rows[2])
	})
}

func TestBoard_Colored(t *testing.T) {
	e := newTestEngine(t, testutil.FlatMap(t, 3, 3), fogOn, 0)
	_, err := e.AddUnit(0, e.Map().CenterOfCell(core.NewCoordinate(1, 1)), scout(core.Cells(1)))
	require.NoError(t, err)
	step(t, e, 1)

	board := e.Board(0)
	assert.Contains(t, board, ColorRed+"A"+ColorReset)
	assert.Contains(t, board, ColorGray+ShroudSymbol+ColorReset)
	assert.NotContains(t, e.PlainBoard(0), "\033[")
}

func TestBoard_HeightDigits(t *testing.T) {
	m := testutil.PlateauMap(t, 3, 5, core.Rect{X: 0, Y: 4, W: 3, H: 1}, 1)
	e := newTestEngine(t, m, shroud.LobbyOptions{}, 0)

	rows := boardRows(e.PlainBoard(-1))
	assert.Equal(t, " 3  1 1 1", rows[4])
	assert.Equal(t, " 0  · · ·", rows[1])
}

func TestGetPlayerColor(t *testing.T) {
	assert.Equal(t, ColorRed, getPlayerColor(0))
	assert.Equal(t, ColorBlue, getPlayerColor(1))
	assert.Equal(t, ColorWhite, getPlayerColor(-1))
	assert.Equal(t, ColorWhite, getPlayerColor(len(playerColors)))
}
