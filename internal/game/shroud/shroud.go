// Package shroud maintains one player's fog of war.
//
// Gameplay code registers visibility and shroud-generating sources; once per
// simulation step Tick folds the cells they touched into a cached
// Shrouded/Fogged/Visible classification. Queries only read that cache.
// A Shroud is not safe for concurrent use: every call happens inside the
// deterministic simulation step.
package shroud

import (
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/fogofwar/internal/game/core"
)

// SourceType selects how a source affects the cells it covers.
type SourceType uint8

const (
	// SourcePassiveVisibility reveals cells but cannot see through generated shroud.
	SourcePassiveVisibility SourceType = iota
	// SourceVisibility reveals cells and overrides generated shroud.
	SourceVisibility
	// SourceShroud hides explored cells that nothing is actively viewing.
	SourceShroud
)

func (t SourceType) String() string {
	switch t {
	case SourcePassiveVisibility:
		return "passive_visibility"
	case SourceVisibility:
		return "visibility"
	case SourceShroud:
		return "shroud"
	default:
		return "unknown"
	}
}

// CellVisibility is the cached classification of a projected cell.
type CellVisibility uint8

const (
	Shrouded CellVisibility = iota
	Fogged
	Visible
)

func (v CellVisibility) String() string {
	switch v {
	case Shrouded:
		return "shroud"
	case Fogged:
		return "fog"
	case Visible:
		return "visible"
	default:
		return "unknown"
	}
}

// SourceID is a caller-issued handle. Two sources registered on the same
// Shroud at the same time must never share an ID.
type SourceID uint64

type source struct {
	kind  SourceType
	cells []core.PPos
}

// CellChange describes one cell whose cached classification was refreshed.
// Previous equals Current only for repaint notices sent when the disabled
// mode flips.
type CellChange struct {
	Cell     core.PPos
	Previous CellVisibility
	Current  CellVisibility
}

// ChangeListener observes classification changes in row-major cell order.
type ChangeListener func(CellChange)

// LobbyOptions are the match options applied when the owning player is created.
type LobbyOptions struct {
	FogEnabled  bool
	ExploredMap bool
}

// Config holds construction parameters
type Config struct {
	PlayerID int
	Logger   zerolog.Logger
}

// Shroud is the per-player visibility state bound to one map for a match.
type Shroud struct {
	m        *core.Map
	playerID int
	logger   zerolog.Logger

	sources map[SourceID]source

	visibleCount         *core.CellLayer[int16]
	passiveVisibleCount  *core.CellLayer[int16]
	generatedShroudCount *core.CellLayer[int16]
	explored             *core.CellLayer[bool]
	touched              *core.CellLayer[bool]
	resolved             *core.CellLayer[CellVisibility]

	// dirty lists every cell whose touched bit is set. spare is the
	// previous batch, reused so listeners that touch cells mid-Tick queue
	// them for the next pass.
	dirty []core.PPos
	spare []core.PPos

	listeners []ChangeListener

	// Sticky: flip on the first source of their kind and never revert.
	shroudGenerationEnabled  bool
	passiveVisibilityEnabled bool

	disabled          bool
	fogEnabled        bool
	exploreMapEnabled bool

	hash int
}

// New creates an empty shroud over m. Every cell starts unexplored.
func New(m *core.Map, cfg Config) *Shroud {
	return &Shroud{
		m:                    m,
		playerID:             cfg.PlayerID,
		logger:               cfg.Logger.With().Str("component", "shroud").Int("player_id", cfg.PlayerID).Logger(),
		sources:              make(map[SourceID]source),
		visibleCount:         core.NewCellLayer[int16](m),
		passiveVisibleCount:  core.NewCellLayer[int16](m),
		generatedShroudCount: core.NewCellLayer[int16](m),
		explored:             core.NewCellLayer[bool](m),
		touched:              core.NewCellLayer[bool](m),
		resolved:             core.NewCellLayer[CellVisibility](m),
	}
}

// OnCreated applies the lobby options once the owning player exists
func (s *Shroud) OnCreated(opts LobbyOptions) {
	s.fogEnabled = opts.FogEnabled
	s.exploreMapEnabled = opts.ExploredMap
	if s.exploreMapEnabled {
		s.ExploreAll()
	}

	s.logger.Debug().
		Bool("fog_enabled", s.fogEnabled).
		Bool("explored_map", s.exploreMapEnabled).
		Msg("Shroud created")
}

// Subscribe registers a listener. Listeners run in registration order.
func (s *Shroud) Subscribe(l ChangeListener) {
	s.listeners = append(s.listeners, l)
}

func (s *Shroud) notify(change CellChange) {
	for _, l := range s.listeners {
		l(change)
	}
}

// SetDisabled toggles observer mode, where every in-bounds cell counts as
// explored and visible. Listeners receive a repaint notice for every cell.
func (s *Shroud) SetDisabled(disabled bool) {
	if s.disabled == disabled {
		return
	}
	s.disabled = disabled

	for p := range s.m.ProjectedCells() {
		v := s.resolved.Get(p)
		s.notify(CellChange{Cell: p, Previous: v, Current: v})
	}
}

func (s *Shroud) Disabled() bool { return s.disabled }

// FogEnabled reports whether unseen explored cells are hidden right now
func (s *Shroud) FogEnabled() bool { return !s.disabled && s.fogEnabled }

// ExploreMapEnabled reports whether the map started fully explored
func (s *Shroud) ExploreMapEnabled() bool { return s.exploreMapEnabled }

func (s *Shroud) PlayerID() int  { return s.playerID }
func (s *Shroud) Map() *core.Map { return s.m }

// Hash is the sync value checked by replays and peers after every step
func (s *Shroud) Hash() int { return s.hash }
