package states

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/fogofwar/internal/game/events"
)

func TestMatchPhase_String(t *testing.T) {
	tests := []struct {
		phase    MatchPhase
		expected string
	}{
		{PhaseLobby, "Lobby"},
		{PhaseRunning, "Running"},
		{PhasePaused, "Paused"},
		{PhaseEnded, "Ended"},
		{MatchPhase(999), "Unknown(999)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.phase.String())
		})
	}
}

func TestMatchPhase_Properties(t *testing.T) {
	t.Run("IsTerminal", func(t *testing.T) {
		assert.True(t, PhaseEnded.IsTerminal())
		assert.False(t, PhaseRunning.IsTerminal())
		assert.False(t, PhaseLobby.IsTerminal())
	})

	t.Run("CanStep", func(t *testing.T) {
		assert.True(t, PhaseRunning.CanStep())
		assert.False(t, PhaseLobby.CanStep())
		assert.False(t, PhasePaused.CanStep())
		assert.False(t, PhaseEnded.CanStep())
	})

	t.Run("CanAddPlayers", func(t *testing.T) {
		assert.True(t, PhaseLobby.CanAddPlayers())
		assert.False(t, PhaseRunning.CanAddPlayers())
		assert.False(t, PhasePaused.CanAddPlayers())
	})
}

func TestMatchPhase_Transitions(t *testing.T) {
	tests := []struct {
		from    MatchPhase
		allowed []MatchPhase
	}{
		{PhaseLobby, []MatchPhase{PhaseRunning, PhaseEnded}},
		{PhaseRunning, []MatchPhase{PhasePaused, PhaseEnded}},
		{PhasePaused, []MatchPhase{PhaseRunning, PhaseEnded}},
		{PhaseEnded, []MatchPhase{}},
	}

	for _, tt := range tests {
		t.Run(tt.from.String(), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.AllowedTransitions())
			for _, target := range tt.allowed {
				assert.True(t, tt.from.CanTransitionTo(target))
			}
			assert.False(t, tt.from.CanTransitionTo(tt.from))
		})
	}
}

func TestParsePhase(t *testing.T) {
	for _, phase := range []MatchPhase{PhaseLobby, PhaseRunning, PhasePaused, PhaseEnded} {
		parsed, err := ParsePhase(phase.String())
		require.NoError(t, err)
		assert.Equal(t, phase, parsed)
	}

	_, err := ParsePhase("Starting")
	assert.Error(t, err)
}

func TestLifecycle_TransitionTo(t *testing.T) {
	bus := events.NewEventBus()
	var published []*events.MatchPhaseChangedEvent
	bus.SubscribeFunc(events.TypeMatchPhaseChanged, func(e events.Event) {
		published = append(published, e.(*events.MatchPhaseChangedEvent))
	})

	l := NewLifecycle("game-1", bus, zerolog.Nop())
	assert.Equal(t, PhaseLobby, l.CurrentPhase())

	require.NoError(t, l.TransitionTo(PhaseRunning, "started"))
	require.NoError(t, l.TransitionTo(PhasePaused, "operator"))
	require.NoError(t, l.TransitionTo(PhaseRunning, "operator"))
	require.NoError(t, l.TransitionTo(PhaseEnded, "done"))
	assert.Equal(t, PhaseEnded, l.CurrentPhase())

	history := l.GetHistory()
	require.Len(t, history, 4)
	assert.Equal(t, PhaseLobby, history[0].From)
	assert.Equal(t, PhaseRunning, history[0].To)
	assert.Equal(t, "operator", history[1].Reason)
	assert.Equal(t, PhaseEnded, history[3].To)

	require.Len(t, published, 4)
	assert.Equal(t, "game-1", published[0].GameID())
	assert.Equal(t, "Lobby", published[0].FromPhase)
	assert.Equal(t, "Running", published[0].ToPhase)
	assert.Equal(t, "done", published[3].Reason)
}

func TestLifecycle_InvalidTransition(t *testing.T) {
	l := NewLifecycle("game-1", nil, zerolog.Nop())

	err := l.TransitionTo(PhasePaused, "too early")
	assert.Error(t, err)
	assert.Equal(t, PhaseLobby, l.CurrentPhase())
	assert.Empty(t, l.GetHistory())

	require.NoError(t, l.TransitionTo(PhaseEnded, "abandoned"))
	assert.Error(t, l.TransitionTo(PhaseRunning, "restart"))
}

func TestLifecycle_HistoryIsCopied(t *testing.T) {
	l := NewLifecycle("game-1", nil, zerolog.Nop())
	require.NoError(t, l.TransitionTo(PhaseRunning, "started"))

	history := l.GetHistory()
	history[0].Reason = "changed"
	assert.Equal(t, "started", l.GetHistory()[0].Reason)
}

func TestLifecycle_HistoryBounded(t *testing.T) {
	l := NewLifecycle("game-1", nil, zerolog.Nop())
	l.maxHistorySize = 3
	require.NoError(t, l.TransitionTo(PhaseRunning, "started"))
	for i := 0; i < 4; i++ {
		require.NoError(t, l.TransitionTo(PhasePaused, "pause"))
		require.NoError(t, l.TransitionTo(PhaseRunning, "resume"))
	}

	history := l.GetHistory()
	require.Len(t, history, 3)
	assert.Equal(t, PhaseRunning, history[2].To)
}

func TestLifecycle_ElapsedTimeExcludesPauses(t *testing.T) {
	l := NewLifecycle("game-1", nil, zerolog.Nop())
	assert.Zero(t, l.ElapsedTime())

	require.NoError(t, l.TransitionTo(PhaseRunning, "started"))
	require.NoError(t, l.TransitionTo(PhasePaused, "pause"))
	time.Sleep(30 * time.Millisecond)

	// While paused the clock is frozen
	assert.Less(t, l.ElapsedTime(), 30*time.Millisecond)

	require.NoError(t, l.TransitionTo(PhaseRunning, "resume"))
	assert.Less(t, l.ElapsedTime(), 30*time.Millisecond)
}

func TestLifecycle_ConcurrentReads(t *testing.T) {
	l := NewLifecycle("game-1", nil, zerolog.Nop())
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			_ = l.CurrentPhase()
			_ = l.GetHistory()
		}
	}()

	require.NoError(t, l.TransitionTo(PhaseRunning, "started"))
	require.NoError(t, l.TransitionTo(PhasePaused, "pause"))
	<-done
}
