package game

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/fogofwar/internal/game/core"
	"github.com/mitchelldurbincs/fogofwar/internal/game/events"
	"github.com/mitchelldurbincs/fogofwar/internal/game/shroud"
	"github.com/mitchelldurbincs/fogofwar/internal/game/states"
)

// GameConfig holds configuration for creating an engine
type GameConfig struct {
	Map      *core.Map
	Lobby    shroud.LobbyOptions
	Rng      *rand.Rand
	Logger   zerolog.Logger
	GameID   string
	EventBus *events.EventBus
}

// Engine owns the map, the players with their shrouds and the units, and
// advances them one deterministic step at a time. It is not safe for
// concurrent use.
type Engine struct {
	gameID   string
	m        *core.Map
	lobby    shroud.LobbyOptions
	rng      *rand.Rand
	logger   zerolog.Logger
	eventBus *events.EventBus
	runner   *Runner
	phase    *states.Lifecycle

	players []*Player
	// units is kept in ID order; removal preserves it
	units     []*Unit
	unitIndex map[UnitID]*Unit

	step int

	frameEndTasks []func(*Engine)

	nextUnit   UnitID
	nextSource shroud.SourceID

	changedThisStep int
}

// NewEngine creates an engine over cfg.Map with no players
func NewEngine(cfg GameConfig) (*Engine, error) {
	if cfg.Map == nil {
		return nil, fmt.Errorf("engine requires a map: %w", core.ErrInvalidCoordinates)
	}
	if cfg.GameID == "" {
		cfg.GameID = uuid.NewString()
	}
	var seed int64
	if cfg.Rng == nil {
		seed = time.Now().UnixNano()
		cfg.Rng = rand.New(rand.NewSource(seed))
	}
	if cfg.EventBus == nil {
		cfg.EventBus = events.NewEventBus()
	}

	e := &Engine{
		gameID:    cfg.GameID,
		m:         cfg.Map,
		lobby:     cfg.Lobby,
		rng:       cfg.Rng,
		logger:    cfg.Logger.With().Str("component", "GameEngine").Str("game_id", cfg.GameID).Logger(),
		eventBus:  cfg.EventBus,
		runner:    NewRunner(),
		unitIndex: make(map[UnitID]*Unit),
	}
	if seed != 0 {
		// Peers only replay identically when they share the seed
		e.logger.Warn().Int64("seed", seed).Msg("No RNG configured, seeded from the clock")
	}
	e.phase = states.NewLifecycle(cfg.GameID, cfg.EventBus, e.logger)
	e.runner.Register(&unitSystem{e: e})
	e.runner.Register(&shroudSystem{e: e})
	return e, nil
}

// AddPlayer creates a player and its shroud. Players can only join before
// the match starts.
func (e *Engine) AddPlayer(cfg PlayerConfig) (*Player, error) {
	if !e.phase.CurrentPhase().CanAddPlayers() {
		return nil, fmt.Errorf("adding player: %w", core.ErrMatchStarted)
	}

	p := &Player{
		ID:           len(e.players),
		Team:         cfg.Team,
		NonCombatant: cfg.NonCombatant,
	}
	p.Shroud = shroud.New(e.m, shroud.Config{PlayerID: p.ID, Logger: e.logger})
	p.Shroud.Subscribe(e.bridgeCellChanges(p.ID))
	e.players = append(e.players, p)

	for _, u := range e.units {
		for _, c := range u.Components {
			if pc, ok := c.(PlayerAwareComponent); ok && u.inWorld {
				pc.PlayerAdded(e, u, p)
			}
		}
	}

	e.eventBus.Publish(events.NewPlayerJoinedEvent(e.gameID, p.ID, p.Team))
	e.logger.Debug().Int("player_id", p.ID).Int("team", p.Team).Msg("Player added")
	return p, nil
}

// bridgeCellChanges republishes a shroud's transitions on the event bus.
// Repaint notices carry no transition and stay with direct shroud listeners.
func (e *Engine) bridgeCellChanges(playerID int) shroud.ChangeListener {
	return func(c shroud.CellChange) {
		if c.Previous == c.Current {
			return
		}
		e.changedThisStep++
		e.eventBus.Publish(events.NewCellVisibilityChangedEvent(
			e.gameID, playerID, c.Cell, c.Previous.String(), c.Current.String(), e.step))
	}
}

// Start applies the lobby options to every shroud and opens the match
func (e *Engine) Start() error {
	if e.phase.CurrentPhase() != states.PhaseLobby {
		return core.ErrMatchStarted
	}
	for _, p := range e.players {
		p.Shroud.OnCreated(e.lobby)
	}
	if err := e.phase.TransitionTo(states.PhaseRunning, "match started"); err != nil {
		return err
	}

	e.eventBus.Publish(events.NewMatchStartedEvent(e.gameID, len(e.players), e.m.W, e.m.H))
	e.logger.Info().
		Int("players", len(e.players)).
		Int("width", e.m.W).
		Int("height", e.m.H).
		Bool("fog_enabled", e.lobby.FogEnabled).
		Bool("explored_map", e.lobby.ExploredMap).
		Msg("Match started")
	return nil
}

// Step advances the simulation by one step: components update, shrouds
// resolve, then deferred frame-end tasks run.
func (e *Engine) Step(ctx context.Context) error {
	select {
	case <-ctx.Done():
		e.logger.Warn().Err(ctx.Err()).Int("step", e.step).Msg("Simulation step cancelled")
		return ctx.Err()
	default:
	}
	if phase := e.phase.CurrentPhase(); !phase.CanStep() {
		return fmt.Errorf("step %d in phase %s: %w", e.step+1, phase, core.ErrMatchNotRunning)
	}

	start := time.Now()
	e.step++
	e.changedThisStep = 0
	e.eventBus.Publish(events.NewStepStartedEvent(e.gameID, e.step))

	e.runner.Tick(e.step)
	e.runFrameEndTasks()

	e.eventBus.Publish(events.NewStepEndedEvent(e.gameID, e.step, e.changedThisStep, time.Since(start)))
	e.logger.Debug().
		Int("step", e.step).
		Int("changed_cells", e.changedThisStep).
		Msg("Simulation step finished")
	return nil
}

// AddFrameEndTask defers f until the end of the current step. Tasks queued
// while tasks are running execute in the same drain.
func (e *Engine) AddFrameEndTask(f func(*Engine)) {
	e.frameEndTasks = append(e.frameEndTasks, f)
}

func (e *Engine) runFrameEndTasks() {
	for i := 0; i < len(e.frameEndTasks); i++ {
		e.frameEndTasks[i](e)
	}
	clear(e.frameEndTasks)
	e.frameEndTasks = e.frameEndTasks[:0]
}

// Pause suspends stepping. Shroud queries keep answering.
func (e *Engine) Pause(reason string) error {
	return e.phase.TransitionTo(states.PhasePaused, reason)
}

// Resume continues a paused match
func (e *Engine) Resume(reason string) error {
	if e.phase.CurrentPhase() != states.PhasePaused {
		return fmt.Errorf("resuming from %s: %w", e.phase.CurrentPhase(), core.ErrMatchNotRunning)
	}
	return e.phase.TransitionTo(states.PhaseRunning, reason)
}

// End closes the match and publishes its summary
func (e *Engine) End(reason string) error {
	if err := e.phase.TransitionTo(states.PhaseEnded, reason); err != nil {
		return err
	}
	e.eventBus.Publish(events.NewMatchEndedEvent(e.gameID, e.phase.ElapsedTime(), e.step))
	e.logger.Info().Int("final_step", e.step).Str("reason", reason).Msg("Match ended")
	return nil
}

// AddUnit places a unit owned by ownerID at pos and attaches its components
func (e *Engine) AddUnit(ownerID int, pos core.WPos, components ...Component) (*Unit, error) {
	owner, err := e.Player(ownerID)
	if err != nil {
		return nil, err
	}

	e.nextUnit++
	u := &Unit{
		ID:         e.nextUnit,
		Owner:      owner,
		Pos:        pos,
		Components: components,
		inWorld:    true,
	}
	e.units = append(e.units, u)
	e.unitIndex[u.ID] = u

	for _, c := range u.Components {
		c.AddedToWorld(e, u)
	}

	e.eventBus.Publish(events.NewUnitAddedEvent(e.gameID, int(u.ID), owner.ID, pos, e.step))
	return u, nil
}

// MoveUnit teleports a unit. Components react during the next update phase.
func (e *Engine) MoveUnit(id UnitID, pos core.WPos) error {
	u, ok := e.unitIndex[id]
	if !ok {
		return fmt.Errorf("moving unit %d: %w", id, core.ErrUnknownUnit)
	}
	u.Pos = pos
	return nil
}

// RemoveUnit takes a unit out of the world, releasing its shroud sources
func (e *Engine) RemoveUnit(id UnitID) error {
	u, ok := e.unitIndex[id]
	if !ok {
		return fmt.Errorf("removing unit %d: %w", id, core.ErrUnknownUnit)
	}

	u.inWorld = false
	for _, c := range u.Components {
		c.RemovedFromWorld(e, u)
	}

	delete(e.unitIndex, id)
	for i, other := range e.units {
		if other.ID == id {
			e.units = append(e.units[:i], e.units[i+1:]...)
			break
		}
	}

	e.eventBus.Publish(events.NewUnitRemovedEvent(e.gameID, int(id), u.Owner.ID, e.step))
	return nil
}

// ShareExploration merges everything fromID has explored into toID's shroud
func (e *Engine) ShareExploration(fromID, toID int) error {
	from, err := e.Player(fromID)
	if err != nil {
		return err
	}
	to, err := e.Player(toID)
	if err != nil {
		return err
	}
	if err := to.Shroud.Explore(from.Shroud); err != nil {
		return err
	}

	e.eventBus.Publish(events.NewExplorationSharedEvent(e.gameID, fromID, toID))
	return nil
}

func (e *Engine) nextSourceID() shroud.SourceID {
	e.nextSource++
	return e.nextSource
}

// Player returns the player with the given ID
func (e *Engine) Player(id int) (*Player, error) {
	if id < 0 || id >= len(e.players) {
		return nil, fmt.Errorf("player %d: %w", id, core.ErrInvalidPlayer)
	}
	return e.players[id], nil
}

// Unit returns a unit in the world by ID
func (e *Engine) Unit(id UnitID) (*Unit, bool) {
	u, ok := e.unitIndex[id]
	return u, ok
}

// Units returns the units in ID order. The slice must not be modified.
func (e *Engine) Units() []*Unit { return e.units }

// Players returns the players in ID order. The slice must not be modified.
func (e *Engine) Players() []*Player { return e.players }

func (e *Engine) Map() *core.Map               { return e.m }
func (e *Engine) CurrentStep() int             { return e.step }
func (e *Engine) GameID() string               { return e.gameID }
func (e *Engine) EventBus() *events.EventBus   { return e.eventBus }
func (e *Engine) Phase() states.MatchPhase     { return e.phase.CurrentPhase() }
func (e *Engine) Lifecycle() *states.Lifecycle { return e.phase }
func (e *Engine) Runner() *Runner              { return e.runner }
func (e *Engine) Lobby() shroud.LobbyOptions   { return e.lobby }
func (e *Engine) Logger() zerolog.Logger       { return e.logger }

// SyncHash combines every player's shroud hash for desync checks
func (e *Engine) SyncHash() int {
	hash := 0
	for _, p := range e.players {
		hash += p.Shroud.Hash()
	}
	return hash
}
