package monitoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/fogofwar/internal/game"
	"github.com/mitchelldurbincs/fogofwar/internal/game/core"
	"github.com/mitchelldurbincs/fogofwar/internal/game/events"
	"github.com/mitchelldurbincs/fogofwar/internal/testutil"
)

func TestConfig_Defaults(t *testing.T) {
	c := Config{}.withDefaults()
	assert.Equal(t, 30*time.Second, c.CheckInterval)
	assert.Equal(t, 1000, c.GoroutineLimit)
	assert.Equal(t, 50*time.Millisecond, c.SlowStep)
	assert.Equal(t, 5*time.Minute, c.AlertCooldown)

	c = Config{GoroutineLimit: 7}.withDefaults()
	assert.Equal(t, 7, c.GoroutineLimit)
}

func TestMonitor_InterestedIn(t *testing.T) {
	mon := NewMonitor(Config{}, testutil.NopLogger())
	assert.True(t, mon.InterestedIn(events.TypeStepEnded))
	assert.False(t, mon.InterestedIn(events.TypeStepStarted))
	assert.False(t, mon.InterestedIn(events.TypeCellVisibilityChanged))
}

func TestMonitor_HandleEvent(t *testing.T) {
	mon := NewMonitor(Config{}, testutil.NopLogger())

	mon.HandleEvent(events.NewStepEndedEvent("g", 1, 9, 2*time.Millisecond))
	mon.HandleEvent(events.NewStepEndedEvent("g", 2, 3, 5*time.Millisecond))
	mon.HandleEvent(events.NewStepStartedEvent("g", 3))

	m := mon.Metrics()
	assert.Equal(t, 2, m.Steps)
	assert.Equal(t, 2, m.LastStep)
	assert.Equal(t, 12, m.ChangedCells)
	assert.Equal(t, 5*time.Millisecond, m.LastStepDuration)
	assert.Equal(t, 5*time.Millisecond, m.SlowestStep)
}

func TestMonitor_SampleResetsWindow(t *testing.T) {
	mon := NewMonitor(Config{}, testutil.NopLogger())
	mon.HandleEvent(events.NewStepEndedEvent("g", 1, 0, time.Millisecond))
	mon.HandleEvent(events.NewStepEndedEvent("g", 2, 0, time.Millisecond))

	m := mon.Sample()
	assert.Equal(t, 2, m.StepsSinceLastTick)
	assert.Positive(t, m.Goroutines)
	assert.GreaterOrEqual(t, m.GoroutinePeak, m.GoroutineBaseline)

	m = mon.Sample()
	assert.Equal(t, 0, m.StepsSinceLastTick)
	assert.Equal(t, 2, m.Steps)
}

func TestMonitor_FollowsEngine(t *testing.T) {
	bus := events.NewEventBus()
	e, err := game.NewEngine(game.GameConfig{
		Map:      testutil.FlatMap(t, 8, 8),
		Rng:      testutil.NewTestRNG(1),
		Logger:   testutil.NopLogger(),
		EventBus: bus,
	})
	require.NoError(t, err)
	_, err = e.AddPlayer(game.PlayerConfig{})
	require.NoError(t, err)
	require.NoError(t, e.Start())

	mon := NewMonitor(Config{}, testutil.NopLogger())
	bus.Subscribe(mon)

	_, err = e.AddUnit(0, e.Map().CenterOfCell(core.NewCoordinate(3, 3)),
		game.NewRevealsShroud(game.RevealsShroudConfig{Range: core.Cells(1), MaxHeightDelta: -1}))
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		require.NoError(t, e.Step(context.Background()))
	}

	m := mon.Metrics()
	assert.Equal(t, 4, m.Steps)
	assert.Equal(t, 4, m.LastStep)
	assert.Positive(t, m.ChangedCells)
}

func TestMonitor_StartStop(t *testing.T) {
	mon := NewMonitor(Config{CheckInterval: time.Millisecond}, testutil.NopLogger())
	mon.Start()
	mon.HandleEvent(events.NewStepEndedEvent("g", 1, 0, time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	mon.Stop()
	mon.Stop()

	assert.Equal(t, 1, mon.Metrics().Steps)
}
