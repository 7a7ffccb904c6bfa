package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/fogofwar/internal/config"
	"github.com/mitchelldurbincs/fogofwar/internal/game/core"
	"github.com/mitchelldurbincs/fogofwar/internal/game/events"
	"github.com/mitchelldurbincs/fogofwar/internal/game/shroud"
	"github.com/mitchelldurbincs/fogofwar/internal/game/states"
	"github.com/mitchelldurbincs/fogofwar/internal/testutil"
)

func testSimulationConfig() SimulationConfig {
	return SimulationConfig{
		Width:          24,
		Height:         18,
		MaxHeight:      0,
		BoundsInset:    1,
		Players:        2,
		UnitsPerPlayer: 3,
		VisionRange:    3,
		MaxHeightDelta: -1,
		Lobby:          shroud.LobbyOptions{FogEnabled: true},
		Rng:            testutil.NewTestRNG(12345),
		Logger:         testutil.NopLogger(),
	}
}

func TestEngineInitializer_Initialize(t *testing.T) {
	e, err := NewEngineInitializer(testSimulationConfig()).Initialize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, states.PhaseRunning, e.Phase())
	require.Len(t, e.Players(), 2)
	require.Len(t, e.Units(), 6)

	for pid, p := range e.Players() {
		assert.Equal(t, 0, p.Team)
		owned := e.Units()[pid*3 : pid*3+3]

		first := owned[0].Components[1].(*AffectsShroud)
		assert.Equal(t, shroud.SourceVisibility, first.Kind())
		assert.IsType(t, &Wander{}, owned[1].Components[0])

		last := owned[2].Components[0].(*AffectsShroud)
		assert.Equal(t, shroud.SourceShroud, last.Kind())

		for _, u := range owned {
			assert.Equal(t, p, u.Owner)
			assert.True(t, e.Map().ContainsCell(e.Map().CellContaining(u.Pos)))
		}
	}

	step(t, e, 1)
	for pid, p := range e.Players() {
		scoutUnit := e.Units()[pid*3]
		assert.True(t, p.Shroud.IsVisibleAt(scoutUnit.Pos))
	}
}

func TestEngineInitializer_ShareAllied(t *testing.T) {
	cfg := testSimulationConfig()
	cfg.Players = 4
	cfg.Width = 30
	cfg.Height = 24
	cfg.ShareAllied = true
	cfg.EventBus = events.NewEventBus()

	var shared [][2]int
	cfg.EventBus.SubscribeFunc(events.TypeExplorationShared, func(ev events.Event) {
		s := ev.(*events.ExplorationSharedEvent)
		shared = append(shared, [2]int{s.FromPlayer, s.ToPlayer})
	})

	e, err := NewEngineInitializer(cfg).Initialize(context.Background())
	require.NoError(t, err)

	teams := make([]int, 0, 4)
	for _, p := range e.Players() {
		teams = append(teams, p.Team)
	}
	assert.Equal(t, []int{1, 2, 1, 2}, teams)
	assert.Equal(t, [][2]int{{0, 2}, {1, 3}, {2, 0}, {3, 1}}, shared)
}

func TestEngineInitializer_Disabled(t *testing.T) {
	cfg := testSimulationConfig()
	cfg.Disabled = true

	e, err := NewEngineInitializer(cfg).Initialize(context.Background())
	require.NoError(t, err)
	step(t, e, 1)

	for _, p := range e.Players() {
		assert.True(t, p.Shroud.Disabled())
		for cell := range e.Map().ProjectedCells() {
			assert.True(t, p.Shroud.IsVisible(cell))
		}
	}
}

func TestEngineInitializer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e, err := NewEngineInitializer(testSimulationConfig()).Initialize(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, e)
}

func TestEngineInitializer_MapTooSmall(t *testing.T) {
	cfg := testSimulationConfig()
	cfg.Width = 2
	cfg.Height = 2

	_, err := NewEngineInitializer(cfg).Initialize(context.Background())
	assert.ErrorIs(t, err, core.ErrInvalidCoordinates)
}

func TestSimulationConfigFromSettings(t *testing.T) {
	c := &config.Config{}
	c.Game.Map.Width = 40
	c.Game.Map.Height = 30
	c.Game.Shroud.VisionRange = 5
	c.Game.Shroud.MaxHeightDelta = 2
	c.Game.Shroud.FogEnabled = true
	c.Game.Shroud.ExploreMap = true
	c.Simulation.Players = 3

	sc := SimulationConfigFromSettings(c)
	assert.Equal(t, 40, sc.Width)
	assert.Equal(t, 30, sc.Height)
	assert.Equal(t, 5, sc.VisionRange)
	assert.Equal(t, 2, sc.MaxHeightDelta)
	assert.Equal(t, 3, sc.Players)
	assert.Equal(t, shroud.LobbyOptions{FogEnabled: true, ExploredMap: true}, sc.Lobby)
	assert.Nil(t, sc.Rng)

	c.Simulation.Seed = 7
	a := SimulationConfigFromSettings(c).Rng
	b := SimulationConfigFromSettings(c).Rng
	require.NotNil(t, a)
	assert.Equal(t, a.Int63(), b.Int63())
}

func TestConfigDefaults(t *testing.T) {
	assert.Equal(t, 4, VisionRange())
	assert.Equal(t, -1, MaxHeightDelta())
	assert.Equal(t, shroud.LobbyOptions{FogEnabled: true}, LobbyOptions())
}
