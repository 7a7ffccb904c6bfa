package events

import (
	"time"

	"github.com/mitchelldurbincs/fogofwar/internal/game/core"
)

// Event type constants
const (
	TypeMatchStarted          = "match.started"
	TypeMatchEnded            = "match.ended"
	TypeStepStarted           = "step.started"
	TypeStepEnded             = "step.ended"
	TypePlayerJoined          = "player.joined"
	TypeUnitAdded             = "unit.added"
	TypeUnitRemoved           = "unit.removed"
	TypeCellVisibilityChanged = "cell.visibility_changed"
	TypeExplorationShared     = "exploration.shared"
	TypeMatchPhaseChanged     = "match.phase_changed"
)

func newBase(eventType, gameID string) BaseEvent {
	return BaseEvent{
		EventType: eventType,
		Time:      time.Now(),
		Game:      gameID,
	}
}

// MatchStartedEvent is published once every player shroud has been created
type MatchStartedEvent struct {
	BaseEvent
	NumPlayers int
	MapWidth   int
	MapHeight  int
}

// NewMatchStartedEvent creates a new MatchStartedEvent
func NewMatchStartedEvent(gameID string, numPlayers, width, height int) *MatchStartedEvent {
	return &MatchStartedEvent{
		BaseEvent:  newBase(TypeMatchStarted, gameID),
		NumPlayers: numPlayers,
		MapWidth:   width,
		MapHeight:  height,
	}
}

// MatchEndedEvent is published when the simulation is torn down
type MatchEndedEvent struct {
	BaseEvent
	Duration  time.Duration
	FinalStep int
}

// NewMatchEndedEvent creates a new MatchEndedEvent
func NewMatchEndedEvent(gameID string, duration time.Duration, finalStep int) *MatchEndedEvent {
	return &MatchEndedEvent{
		BaseEvent: newBase(TypeMatchEnded, gameID),
		Duration:  duration,
		FinalStep: finalStep,
	}
}

// StepStartedEvent is published at the beginning of each simulation step
type StepStartedEvent struct {
	BaseEvent
	Step int
}

// NewStepStartedEvent creates a new StepStartedEvent
func NewStepStartedEvent(gameID string, step int) *StepStartedEvent {
	return &StepStartedEvent{
		BaseEvent: newBase(TypeStepStarted, gameID),
		Step:      step,
	}
}

// StepEndedEvent is published after shroud resolution and frame-end tasks
type StepEndedEvent struct {
	BaseEvent
	Step          int
	ChangedCells  int
	ProcessedTime time.Duration
}

// NewStepEndedEvent creates a new StepEndedEvent
func NewStepEndedEvent(gameID string, step, changedCells int, processed time.Duration) *StepEndedEvent {
	return &StepEndedEvent{
		BaseEvent:     newBase(TypeStepEnded, gameID),
		Step:          step,
		ChangedCells:  changedCells,
		ProcessedTime: processed,
	}
}

// PlayerJoinedEvent is published when a player and its shroud are added
type PlayerJoinedEvent struct {
	BaseEvent
	Metadata EventMetadata
	PlayerID int
	Team     int
}

// NewPlayerJoinedEvent creates a new PlayerJoinedEvent
func NewPlayerJoinedEvent(gameID string, playerID, team int) *PlayerJoinedEvent {
	return &PlayerJoinedEvent{
		BaseEvent: newBase(TypePlayerJoined, gameID),
		Metadata:  EventMetadata{PlayerID: playerID},
		PlayerID:  playerID,
		Team:      team,
	}
}

// UnitAddedEvent is published when a unit enters the world
type UnitAddedEvent struct {
	BaseEvent
	Metadata EventMetadata
	UnitID   int
	Owner    int
	Position core.WPos
}

// NewUnitAddedEvent creates a new UnitAddedEvent
func NewUnitAddedEvent(gameID string, unitID, owner int, pos core.WPos, step int) *UnitAddedEvent {
	return &UnitAddedEvent{
		BaseEvent: newBase(TypeUnitAdded, gameID),
		Metadata:  EventMetadata{PlayerID: owner, Step: step},
		UnitID:    unitID,
		Owner:     owner,
		Position:  pos,
	}
}

// UnitRemovedEvent is published when a unit leaves the world
type UnitRemovedEvent struct {
	BaseEvent
	Metadata EventMetadata
	UnitID   int
	Owner    int
}

// NewUnitRemovedEvent creates a new UnitRemovedEvent
func NewUnitRemovedEvent(gameID string, unitID, owner int, step int) *UnitRemovedEvent {
	return &UnitRemovedEvent{
		BaseEvent: newBase(TypeUnitRemoved, gameID),
		Metadata:  EventMetadata{PlayerID: owner, Step: step},
		UnitID:    unitID,
		Owner:     owner,
	}
}

// CellVisibilityChangedEvent carries one cached classification transition
// of one player's shroud
type CellVisibilityChangedEvent struct {
	BaseEvent
	Metadata EventMetadata
	PlayerID int
	Cell     core.PPos
	Previous string
	Current  string
}

// NewCellVisibilityChangedEvent creates a new CellVisibilityChangedEvent
func NewCellVisibilityChangedEvent(gameID string, playerID int, cell core.PPos, previous, current string, step int) *CellVisibilityChangedEvent {
	return &CellVisibilityChangedEvent{
		BaseEvent: newBase(TypeCellVisibilityChanged, gameID),
		Metadata:  EventMetadata{PlayerID: playerID, Step: step},
		PlayerID:  playerID,
		Cell:      cell,
		Previous:  previous,
		Current:   current,
	}
}

// ExplorationSharedEvent is published when one player's exploration is merged
// into another's
type ExplorationSharedEvent struct {
	BaseEvent
	FromPlayer int
	ToPlayer   int
}

// NewExplorationSharedEvent creates a new ExplorationSharedEvent
func NewExplorationSharedEvent(gameID string, from, to int) *ExplorationSharedEvent {
	return &ExplorationSharedEvent{
		BaseEvent:  newBase(TypeExplorationShared, gameID),
		FromPlayer: from,
		ToPlayer:   to,
	}
}

// MatchPhaseChangedEvent is published on every lifecycle transition
type MatchPhaseChangedEvent struct {
	BaseEvent
	FromPhase string
	ToPhase   string
	Reason    string
}

// NewMatchPhaseChangedEvent creates a new MatchPhaseChangedEvent
func NewMatchPhaseChangedEvent(gameID, from, to, reason string) *MatchPhaseChangedEvent {
	return &MatchPhaseChangedEvent{
		BaseEvent: newBase(TypeMatchPhaseChanged, gameID),
		FromPhase: from,
		ToPhase:   to,
		Reason:    reason,
	}
}
