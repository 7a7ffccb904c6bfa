package game

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/fogofwar/internal/game/core"
	"github.com/mitchelldurbincs/fogofwar/internal/game/events"
	"github.com/mitchelldurbincs/fogofwar/internal/game/shroud"
	"github.com/mitchelldurbincs/fogofwar/internal/game/states"
	"github.com/mitchelldurbincs/fogofwar/internal/testutil"
)

var fogOn = shroud.LobbyOptions{FogEnabled: true}

// newTestEngine creates a started engine with one player per team entry
func newTestEngine(t *testing.T, m *core.Map, lobby shroud.LobbyOptions, teams ...int) *Engine {
	t.Helper()
	e, err := NewEngine(GameConfig{
		Map:    m,
		Lobby:  lobby,
		Rng:    testutil.NewTestRNG(12345),
		Logger: testutil.NopLogger(),
		GameID: "test-game",
	})
	require.NoError(t, err)
	for _, team := range teams {
		_, err := e.AddPlayer(PlayerConfig{Team: team})
		require.NoError(t, err)
	}
	require.NoError(t, e.Start())
	return e
}

func scout(r core.WDist) *AffectsShroud {
	return NewRevealsShroud(RevealsShroudConfig{Range: r, MaxHeightDelta: -1})
}

func step(t *testing.T, e *Engine, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, e.Step(context.Background()))
	}
}

func TestNewEngine(t *testing.T) {
	t.Run("RequiresMap", func(t *testing.T) {
		_, err := NewEngine(GameConfig{Logger: testutil.NopLogger()})
		assert.ErrorIs(t, err, core.ErrInvalidCoordinates)
	})

	t.Run("WarnsWithoutSeed", func(t *testing.T) {
		var buf bytes.Buffer
		_, err := NewEngine(GameConfig{Map: testutil.FlatMap(t, 4, 4), Logger: zerolog.New(&buf)})
		require.NoError(t, err)
		assert.Contains(t, buf.String(), `"level":"warn"`)
		assert.Contains(t, buf.String(), `"seed":`)

		buf.Reset()
		_, err = NewEngine(GameConfig{Map: testutil.FlatMap(t, 4, 4), Rng: testutil.NewTestRNG(1), Logger: zerolog.New(&buf)})
		require.NoError(t, err)
		assert.NotContains(t, buf.String(), `"seed":`)
	})

	t.Run("Defaults", func(t *testing.T) {
		e, err := NewEngine(GameConfig{Map: testutil.FlatMap(t, 4, 4), Logger: testutil.NopLogger()})
		require.NoError(t, err)
		assert.NotEmpty(t, e.GameID())
		assert.NotNil(t, e.EventBus())
		assert.Equal(t, states.PhaseLobby, e.Phase())
		assert.Equal(t, 0, e.CurrentStep())
		assert.Empty(t, e.Players())
	})
}

func TestEngine_Lifecycle(t *testing.T) {
	e, err := NewEngine(GameConfig{Map: testutil.FlatMap(t, 4, 4), Logger: testutil.NopLogger()})
	require.NoError(t, err)
	_, err = e.AddPlayer(PlayerConfig{})
	require.NoError(t, err)

	err = e.Step(context.Background())
	assert.ErrorIs(t, err, core.ErrMatchNotRunning)

	require.NoError(t, e.Start())
	assert.Equal(t, states.PhaseRunning, e.Phase())
	assert.ErrorIs(t, e.Start(), core.ErrMatchStarted)

	_, err = e.AddPlayer(PlayerConfig{})
	assert.ErrorIs(t, err, core.ErrMatchStarted)

	step(t, e, 1)
	assert.ErrorIs(t, e.Resume("not paused"), core.ErrMatchNotRunning)

	require.NoError(t, e.Pause("operator"))
	assert.ErrorIs(t, e.Step(context.Background()), core.ErrMatchNotRunning)
	assert.Equal(t, 1, e.CurrentStep())

	require.NoError(t, e.Resume("operator"))
	step(t, e, 1)
	assert.Equal(t, 2, e.CurrentStep())

	var ended *events.MatchEndedEvent
	e.EventBus().SubscribeFunc(events.TypeMatchEnded, func(ev events.Event) {
		ended = ev.(*events.MatchEndedEvent)
	})
	require.NoError(t, e.End("finished"))
	assert.Equal(t, states.PhaseEnded, e.Phase())
	require.NotNil(t, ended)
	assert.Equal(t, 2, ended.FinalStep)

	assert.Error(t, e.End("again"))
	assert.ErrorIs(t, e.Step(context.Background()), core.ErrMatchNotRunning)
	assert.Len(t, e.Lifecycle().GetHistory(), 4)
}

func TestEngine_StepCancelled(t *testing.T) {
	e := newTestEngine(t, testutil.FlatMap(t, 4, 4), fogOn, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := e.Step(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, e.CurrentStep())
}

func TestEngine_UnitVision(t *testing.T) {
	e := newTestEngine(t, testutil.FlatMap(t, 10, 10), fogOn, 0, 0)
	me, _ := e.Player(0)
	enemy, _ := e.Player(1)
	m := e.Map()

	u, err := e.AddUnit(0, m.CenterOfCell(core.NewCoordinate(5, 5)), scout(core.Cells(2)))
	require.NoError(t, err)
	step(t, e, 1)

	t.Run("OwnerSees", func(t *testing.T) {
		assert.True(t, me.Shroud.IsVisible(core.NewPPos(5, 5)))
		assert.True(t, me.Shroud.IsVisible(core.NewPPos(7, 5)))
		assert.False(t, me.Shroud.IsExplored(core.NewPPos(7, 6)))
	})

	t.Run("EnemyDoesNot", func(t *testing.T) {
		assert.False(t, enemy.Shroud.IsExplored(core.NewPPos(5, 5)))
		assert.Equal(t, 0, enemy.Shroud.SourceCount())
	})

	t.Run("MoveLeavesFog", func(t *testing.T) {
		require.NoError(t, e.MoveUnit(u.ID, m.CenterOfCell(core.NewCoordinate(1, 1))))
		step(t, e, 1)

		assert.Equal(t, shroud.Fogged, me.Shroud.GetVisibility(core.NewPPos(5, 5)))
		assert.Equal(t, shroud.Visible, me.Shroud.GetVisibility(core.NewPPos(1, 1)))
		assert.Equal(t, 1, me.Shroud.SourceCount())
	})

	t.Run("RemoveReleasesSources", func(t *testing.T) {
		require.NoError(t, e.RemoveUnit(u.ID))
		step(t, e, 1)

		assert.Equal(t, 0, me.Shroud.SourceCount())
		assert.Equal(t, shroud.Fogged, me.Shroud.GetVisibility(core.NewPPos(1, 1)))
		assert.False(t, u.InWorld())
		_, ok := e.Unit(u.ID)
		assert.False(t, ok)
		assert.Empty(t, e.Units())
	})
}

func TestEngine_UnknownIDs(t *testing.T) {
	e := newTestEngine(t, testutil.FlatMap(t, 4, 4), fogOn, 0)

	assert.ErrorIs(t, e.MoveUnit(99, core.WPos{}), core.ErrUnknownUnit)
	assert.ErrorIs(t, e.RemoveUnit(99), core.ErrUnknownUnit)

	_, err := e.AddUnit(3, core.WPos{})
	assert.ErrorIs(t, err, core.ErrInvalidPlayer)
	_, err = e.Player(-1)
	assert.ErrorIs(t, err, core.ErrInvalidPlayer)
	assert.ErrorIs(t, e.ShareExploration(0, 5), core.ErrInvalidPlayer)
}

func TestEngine_RangeAndDisableReregister(t *testing.T) {
	e := newTestEngine(t, testutil.FlatMap(t, 10, 10), fogOn, 0)
	me, _ := e.Player(0)

	vision := scout(core.Cells(2))
	_, err := e.AddUnit(0, e.Map().CenterOfCell(core.NewCoordinate(5, 5)), vision)
	require.NoError(t, err)
	step(t, e, 1)
	require.True(t, me.Shroud.IsVisible(core.NewPPos(7, 5)))

	vision.SetRange(core.Cells(1))
	step(t, e, 1)
	assert.Equal(t, shroud.Fogged, me.Shroud.GetVisibility(core.NewPPos(7, 5)))
	assert.True(t, me.Shroud.IsVisible(core.NewPPos(6, 5)))

	vision.SetDisabled(true)
	step(t, e, 1)
	assert.Equal(t, shroud.Fogged, me.Shroud.GetVisibility(core.NewPPos(5, 5)))

	vision.SetDisabled(false)
	step(t, e, 1)
	assert.True(t, me.Shroud.IsVisible(core.NewPPos(5, 5)))
}

func TestEngine_AlliedVision(t *testing.T) {
	e := newTestEngine(t, testutil.FlatMap(t, 8, 8), fogOn, 1, 1, 2)
	a, _ := e.Player(0)
	ally, _ := e.Player(1)
	enemy, _ := e.Player(2)

	u, err := e.AddUnit(0, e.Map().CenterOfCell(core.NewCoordinate(3, 3)), scout(core.Cells(1)))
	require.NoError(t, err)
	step(t, e, 1)

	source := u.Components[0].(*AffectsShroud).SourceID()
	assert.True(t, a.Shroud.HasSource(source))
	assert.True(t, ally.Shroud.HasSource(source))
	assert.False(t, enemy.Shroud.HasSource(source))

	assert.True(t, ally.Shroud.IsVisible(core.NewPPos(3, 3)))
	assert.False(t, enemy.Shroud.IsExplored(core.NewPPos(3, 3)))
}

func TestEngine_CreatesShroud(t *testing.T) {
	e := newTestEngine(t, testutil.FlatMap(t, 10, 10), fogOn, 0, 0)
	me, _ := e.Player(0)
	enemy, _ := e.Player(1)
	m := e.Map()
	center := m.CenterOfCell(core.NewCoordinate(5, 5))

	_, err := e.AddUnit(0, center, scout(core.Cells(2)))
	require.NoError(t, err)
	gap, err := e.AddUnit(1, center, NewCreatesShroud(CreatesShroudConfig{Range: core.Cells(3), MaxHeightDelta: -1}))
	require.NoError(t, err)
	step(t, e, 1)

	gapSource := gap.Components[0].(*AffectsShroud)
	assert.Equal(t, shroud.SourceShroud, gapSource.Kind())
	assert.True(t, me.Shroud.HasSource(gapSource.SourceID()))
	assert.False(t, enemy.Shroud.HasSource(gapSource.SourceID()))

	// Passive vision cannot see through the generated shroud
	assert.Equal(t, shroud.Shrouded, me.Shroud.GetVisibility(core.NewPPos(5, 5)))
	assert.False(t, me.Shroud.IsExplored(core.NewPPos(5, 5)))

	_, err = e.AddUnit(0, center, NewRevealsShroud(RevealsShroudConfig{
		Range:                 core.Cells(1),
		MaxHeightDelta:        -1,
		RevealGeneratedShroud: true,
	}))
	require.NoError(t, err)
	step(t, e, 1)

	assert.True(t, me.Shroud.IsVisible(core.NewPPos(5, 5)))
	assert.Equal(t, shroud.Shrouded, me.Shroud.GetVisibility(core.NewPPos(7, 5)))

	require.NoError(t, e.RemoveUnit(gap.ID))
	step(t, e, 1)
	assert.True(t, me.Shroud.IsVisible(core.NewPPos(7, 5)))
}

func TestEngine_PlayerJoinsAfterUnitPlaced(t *testing.T) {
	e, err := NewEngine(GameConfig{
		Map:    testutil.FlatMap(t, 10, 10),
		Lobby:  fogOn,
		Rng:    testutil.NewTestRNG(12345),
		Logger: testutil.NopLogger(),
	})
	require.NoError(t, err)
	_, err = e.AddPlayer(PlayerConfig{})
	require.NoError(t, err)

	center := e.Map().CenterOfCell(core.NewCoordinate(5, 5))
	gen, err := e.AddUnit(0, center, NewCreatesShroud(CreatesShroudConfig{Range: core.Cells(2), MaxHeightDelta: -1}))
	require.NoError(t, err)
	eye, err := e.AddUnit(0, center, scout(core.Cells(1)))
	require.NoError(t, err)

	enemy, err := e.AddPlayer(PlayerConfig{})
	require.NoError(t, err)

	require.NoError(t, e.Start())
	step(t, e, 2)

	genSource := gen.Components[0].(*AffectsShroud)
	eyeSource := eye.Components[0].(*AffectsShroud)
	assert.True(t, enemy.Shroud.HasSource(genSource.SourceID()))
	assert.False(t, enemy.Shroud.HasSource(eyeSource.SourceID()), "vision only reaches allies")
	_, _, generated := enemy.Shroud.Counters(core.NewPPos(5, 5))
	assert.Equal(t, 1, generated)

	require.NoError(t, e.RemoveUnit(gen.ID))
	step(t, e, 1)
	assert.False(t, enemy.Shroud.HasSource(genSource.SourceID()))
	_, _, generated = enemy.Shroud.Counters(core.NewPPos(5, 5))
	assert.Zero(t, generated)
}

func TestEngine_ShareExploration(t *testing.T) {
	e := newTestEngine(t, testutil.FlatMap(t, 8, 8), fogOn, 0, 0)
	from, _ := e.Player(0)
	to, _ := e.Player(1)

	_, err := e.AddUnit(0, e.Map().CenterOfCell(core.NewCoordinate(2, 2)), scout(core.Cells(1)))
	require.NoError(t, err)
	step(t, e, 1)

	var shared *events.ExplorationSharedEvent
	e.EventBus().SubscribeFunc(events.TypeExplorationShared, func(ev events.Event) {
		shared = ev.(*events.ExplorationSharedEvent)
	})

	require.NoError(t, e.ShareExploration(0, 1))
	step(t, e, 1)

	require.NotNil(t, shared)
	assert.Equal(t, 0, shared.FromPlayer)
	assert.Equal(t, 1, shared.ToPlayer)
	assert.True(t, from.Shroud.IsVisible(core.NewPPos(2, 2)))
	assert.Equal(t, shroud.Fogged, to.Shroud.GetVisibility(core.NewPPos(2, 2)))
	assert.Equal(t, shroud.Shrouded, to.Shroud.GetVisibility(core.NewPPos(6, 6)))
}

func TestEngine_FrameEndTasks(t *testing.T) {
	e := newTestEngine(t, testutil.FlatMap(t, 6, 6), fogOn, 0)
	me, _ := e.Player(0)

	u, err := e.AddUnit(0, e.Map().CenterOfCell(core.NewCoordinate(2, 2)), scout(core.Cells(1)))
	require.NoError(t, err)

	var order []string
	e.AddFrameEndTask(func(e *Engine) {
		// Shrouds are already resolved when frame-end tasks run
		order = append(order, "first")
		assert.True(t, me.Shroud.IsVisible(core.NewPPos(2, 2)))
		e.AddFrameEndTask(func(e *Engine) {
			order = append(order, "nested")
			require.NoError(t, e.RemoveUnit(u.ID))
		})
	})
	step(t, e, 1)
	assert.Equal(t, []string{"first", "nested"}, order)
	assert.True(t, me.Shroud.IsVisible(core.NewPPos(2, 2)))

	step(t, e, 1)
	assert.Equal(t, []string{"first", "nested"}, order)
	assert.Equal(t, shroud.Fogged, me.Shroud.GetVisibility(core.NewPPos(2, 2)))
}

func TestEngine_Events(t *testing.T) {
	e := newTestEngine(t, testutil.FlatMap(t, 10, 10), fogOn, 0, 0)

	var changes []*events.CellVisibilityChangedEvent
	var ended []*events.StepEndedEvent
	var added int
	bus := e.EventBus()
	bus.SubscribeFunc(events.TypeCellVisibilityChanged, func(ev events.Event) {
		changes = append(changes, ev.(*events.CellVisibilityChangedEvent))
	})
	bus.SubscribeFunc(events.TypeStepEnded, func(ev events.Event) {
		ended = append(ended, ev.(*events.StepEndedEvent))
	})
	bus.SubscribeFunc(events.TypeUnitAdded, func(events.Event) { added++ })

	_, err := e.AddUnit(0, e.Map().CenterOfCell(core.NewCoordinate(5, 5)), scout(core.Cells(2)))
	require.NoError(t, err)
	step(t, e, 2)

	assert.Equal(t, 1, added)
	// Cells within two cells of the centre: 1 + 4 + 4 + 4
	require.Len(t, changes, 13)
	for i, c := range changes {
		assert.Equal(t, 0, c.PlayerID)
		assert.Equal(t, "shroud", c.Previous)
		assert.Equal(t, "visible", c.Current)
		assert.Equal(t, 1, c.Metadata.Step)
		if i > 0 {
			assert.True(t, changes[i-1].Cell.Less(c.Cell), "notifications must be row-major")
		}
	}

	require.Len(t, ended, 2)
	assert.Equal(t, 13, ended[0].ChangedCells)
	assert.Equal(t, 0, ended[1].ChangedCells)
}

func TestEngine_RepaintNoticesStayOffTheBus(t *testing.T) {
	e := newTestEngine(t, testutil.FlatMap(t, 4, 4), fogOn, 0)
	me, _ := e.Player(0)

	published := 0
	e.EventBus().SubscribeFunc(events.TypeCellVisibilityChanged, func(events.Event) { published++ })
	repaints := 0
	me.Shroud.Subscribe(func(c shroud.CellChange) {
		if c.Previous == c.Current {
			repaints++
		}
	})

	me.Shroud.SetDisabled(true)
	assert.Equal(t, 16, repaints)
	assert.Zero(t, published)

	_, err := e.AddUnit(0, e.Map().CenterOfCell(core.NewCoordinate(0, 0)), scout(1))
	require.NoError(t, err)
	step(t, e, 1)
	assert.Equal(t, 1, published, "real transitions are still published")
}

func TestEngine_SyncHash(t *testing.T) {
	e := newTestEngine(t, testutil.FlatMap(t, 4, 4), fogOn, 0, 0)
	step(t, e, 3)

	// (0+1)<<16 + 3 plus (1+1)<<16 + 3
	assert.Equal(t, 3<<16+6, e.SyncHash())
}

func TestEngine_DeterministicReplay(t *testing.T) {
	run := func() (*Engine, []int) {
		e, err := NewEngineInitializer(SimulationConfig{
			Width:          20,
			Height:         16,
			MaxHeight:      2,
			BoundsInset:    1,
			Players:        2,
			UnitsPerPlayer: 3,
			VisionRange:    3,
			MaxHeightDelta: -1,
			Lobby:          fogOn,
			Rng:            testutil.NewTestRNG(42),
			GameID:         "replay",
			Logger:         testutil.NopLogger(),
		}).Initialize(context.Background())
		require.NoError(t, err)

		var hashes []int
		for i := 0; i < 25; i++ {
			step(t, e, 1)
			hashes = append(hashes, e.SyncHash())
		}
		return e, hashes
	}

	a, hashesA := run()
	b, hashesB := run()

	assert.Equal(t, hashesA, hashesB)
	for pid := range a.Players() {
		assert.Equal(t, a.PlainBoard(pid), b.PlainBoard(pid))
		pa, _ := a.Player(pid)
		pb, _ := b.Player(pid)
		assert.Equal(t, pa.Shroud.Snapshot(), pb.Shroud.Snapshot())
	}
	for i, u := range a.Units() {
		assert.Equal(t, u.Pos, b.Units()[i].Pos)
	}
}
