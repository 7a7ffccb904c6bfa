// Package inspect exposes read-only views of the per-player shrouds to
// goroutines outside the simulation, including a gRPC inspection service.
package inspect

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/fogofwar/internal/game"
	"github.com/mitchelldurbincs/fogofwar/internal/game/core"
	"github.com/mitchelldurbincs/fogofwar/internal/game/events"
	"github.com/mitchelldurbincs/fogofwar/internal/game/shroud"
)

// PlayerSnapshot is an immutable copy of one player's shroud taken at the
// end of a step.
type PlayerSnapshot struct {
	PlayerID   int
	Step       int
	Hash       int
	Width      int
	Height     int
	Bounds     core.Rect
	Disabled   bool
	FogEnabled bool
	// Cells holds the cached classification of the full grid, row-major
	Cells      []shroud.CellVisibility
	CapturedAt time.Time
}

// At returns the classification of a projected cell. Cells outside the
// playable bounds are Shrouded.
func (s PlayerSnapshot) At(p core.PPos) shroud.CellVisibility {
	if !s.Bounds.Contains(p.U, p.V) {
		return shroud.Shrouded
	}
	return s.Cells[p.ToIndex(s.Width)]
}

// Explored applies the same disabled-mode rules as the live shroud
func (s PlayerSnapshot) Explored(p core.PPos) bool {
	if !s.Bounds.Contains(p.U, p.V) {
		return false
	}
	return s.Disabled || s.At(p) != shroud.Shrouded
}

// Visible applies the same fog rules as the live shroud
func (s PlayerSnapshot) Visible(p core.PPos) bool {
	if !s.Bounds.Contains(p.U, p.V) {
		return false
	}
	return !s.FogEnabled || s.At(p) == shroud.Visible
}

// Rows renders the playable area as one string per row using S, F and V
func (s PlayerSnapshot) Rows() []string {
	rows := make([]string, 0, s.Bounds.H)
	for v := s.Bounds.Y; v < s.Bounds.Y+s.Bounds.H; v++ {
		row := make([]byte, 0, s.Bounds.W)
		for u := s.Bounds.X; u < s.Bounds.X+s.Bounds.W; u++ {
			row = append(row, visibilityLetter(s.At(core.NewPPos(u, v))))
		}
		rows = append(rows, string(row))
	}
	return rows
}

func visibilityLetter(v shroud.CellVisibility) byte {
	switch v {
	case shroud.Visible:
		return 'V'
	case shroud.Fogged:
		return 'F'
	default:
		return 'S'
	}
}

// SnapshotStore holds the latest snapshot of every player. Capture runs on
// the simulation goroutine; readers may be anywhere.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[int]PlayerSnapshot
	step      int
}

// NewSnapshotStore creates an empty store
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		snapshots: make(map[int]PlayerSnapshot),
	}
}

// Capture copies every player's shroud out of the engine
func (s *SnapshotStore) Capture(e *game.Engine) {
	now := time.Now()
	m := e.Map()

	captured := make(map[int]PlayerSnapshot, len(e.Players()))
	for _, p := range e.Players() {
		captured[p.ID] = PlayerSnapshot{
			PlayerID:   p.ID,
			Step:       e.CurrentStep(),
			Hash:       p.Shroud.Hash(),
			Width:      m.W,
			Height:     m.H,
			Bounds:     m.Bounds,
			Disabled:   p.Shroud.Disabled(),
			FogEnabled: p.Shroud.FogEnabled(),
			Cells:      p.Shroud.Snapshot(),
			CapturedAt: now,
		}
	}

	s.mu.Lock()
	s.snapshots = captured
	s.step = e.CurrentStep()
	s.mu.Unlock()
}

// Get returns the latest snapshot of a player
func (s *SnapshotStore) Get(playerID int) (PlayerSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[playerID]
	return snap, ok
}

// Step returns the step of the latest capture
func (s *SnapshotStore) Step() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.step
}

// CaptureSubscriber refreshes a store every time the engine finishes a step.
// The bus delivers synchronously, so the engine is read inside its own step.
type CaptureSubscriber struct {
	id     string
	engine *game.Engine
	store  *SnapshotStore
	logger zerolog.Logger
}

// NewCaptureSubscriber creates a subscriber feeding store from engine
func NewCaptureSubscriber(engine *game.Engine, store *SnapshotStore, logger zerolog.Logger) *CaptureSubscriber {
	return &CaptureSubscriber{
		id:     "inspect_capture_" + uuid.NewString(),
		engine: engine,
		store:  store,
		logger: logger.With().Str("subscriber", "inspect_capture").Logger(),
	}
}

func (c *CaptureSubscriber) ID() string { return c.id }

func (c *CaptureSubscriber) InterestedIn(eventType string) bool {
	return eventType == events.TypeStepEnded || eventType == events.TypeMatchStarted
}

func (c *CaptureSubscriber) HandleEvent(event events.Event) {
	c.store.Capture(c.engine)
	c.logger.Trace().
		Str("event_type", event.Type()).
		Int("step", c.engine.CurrentStep()).
		Msg("Captured shroud snapshots")
}

// Attach captures the current state and subscribes to future steps
func Attach(e *game.Engine, store *SnapshotStore, logger zerolog.Logger) *CaptureSubscriber {
	sub := NewCaptureSubscriber(e, store, logger)
	store.Capture(e)
	e.EventBus().Subscribe(sub)
	return sub
}
