package states

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/fogofwar/internal/game/events"
)

// Transition represents a phase change in the history
type Transition struct {
	From      MatchPhase
	To        MatchPhase
	Timestamp time.Time
	Reason    string
}

// Lifecycle tracks the phase of one match. The simulation goroutine drives
// transitions; inspection goroutines may read the phase concurrently.
type Lifecycle struct {
	mu             sync.RWMutex
	gameID         string
	currentPhase   MatchPhase
	history        []Transition
	maxHistorySize int
	eventBus       *events.EventBus
	logger         zerolog.Logger

	startTime          time.Time
	pauseTime          time.Time
	totalPauseDuration time.Duration
}

// NewLifecycle creates a lifecycle in the lobby phase. eventBus may be nil.
func NewLifecycle(gameID string, eventBus *events.EventBus, logger zerolog.Logger) *Lifecycle {
	return &Lifecycle{
		gameID:         gameID,
		currentPhase:   PhaseLobby,
		history:        make([]Transition, 0, 8),
		maxHistorySize: 100,
		eventBus:       eventBus,
		logger:         logger.With().Str("component", "lifecycle").Logger(),
	}
}

// CurrentPhase returns the current match phase
func (l *Lifecycle) CurrentPhase() MatchPhase {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.currentPhase
}

// TransitionTo attempts to move to the target phase
func (l *Lifecycle) TransitionTo(target MatchPhase, reason string) error {
	l.mu.Lock()
	previous := l.currentPhase
	if !previous.CanTransitionTo(target) {
		l.mu.Unlock()
		return fmt.Errorf("invalid transition from %s to %s", previous, target)
	}

	now := time.Now()
	switch {
	case target == PhaseRunning && previous == PhaseLobby:
		l.startTime = now
	case target == PhasePaused:
		l.pauseTime = now
	case previous == PhasePaused:
		l.totalPauseDuration += now.Sub(l.pauseTime)
		l.pauseTime = time.Time{}
	}

	l.addToHistory(Transition{From: previous, To: target, Timestamp: now, Reason: reason})
	l.currentPhase = target
	l.mu.Unlock()

	// Published outside the lock so subscribers can query the lifecycle
	if l.eventBus != nil {
		l.eventBus.Publish(events.NewMatchPhaseChangedEvent(l.gameID, previous.String(), target.String(), reason))
	}

	l.logger.Info().
		Str("from_phase", previous.String()).
		Str("to_phase", target.String()).
		Str("reason", reason).
		Msg("Phase transition completed")

	return nil
}

// addToHistory adds a transition to the history, maintaining max size
func (l *Lifecycle) addToHistory(transition Transition) {
	l.history = append(l.history, transition)
	if len(l.history) > l.maxHistorySize {
		l.history = l.history[len(l.history)-l.maxHistorySize:]
	}
}

// GetHistory returns a copy of the transition history
func (l *Lifecycle) GetHistory() []Transition {
	l.mu.RLock()
	defer l.mu.RUnlock()

	history := make([]Transition, len(l.history))
	copy(history, l.history)
	return history
}

// ElapsedTime returns the time spent running, excluding pauses
func (l *Lifecycle) ElapsedTime() time.Duration {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.startTime.IsZero() {
		return 0
	}
	paused := l.totalPauseDuration
	if !l.pauseTime.IsZero() {
		paused += time.Since(l.pauseTime)
	}
	return time.Since(l.startTime) - paused
}
