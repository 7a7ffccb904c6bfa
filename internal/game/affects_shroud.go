package game

import (
	"github.com/mitchelldurbincs/fogofwar/internal/game/core"
	"github.com/mitchelldurbincs/fogofwar/internal/game/shroud"
)

// RevealsShroudConfig configures a vision source carried by a unit
type RevealsShroudConfig struct {
	Range    core.WDist
	MinRange core.WDist
	// MaxHeightDelta caps downhill sight in height levels; negative disables the cap.
	MaxHeightDelta int
	// RevealGeneratedShroud makes the source see through generated shroud.
	// Without it the source only contributes passive visibility.
	RevealGeneratedShroud bool
	// ValidRelationships selects the players whose shroud is revealed.
	// Zero defaults to allies.
	ValidRelationships Relationship
}

// CreatesShroudConfig configures an area denial source carried by a unit
type CreatesShroudConfig struct {
	Range          core.WDist
	MinRange       core.WDist
	MaxHeightDelta int
	// ValidRelationships selects the players whose shroud is covered.
	// Zero defaults to enemies and neutrals.
	ValidRelationships Relationship
}

// AffectsShroud registers one shroud source per matching player and keeps it
// in sync with the unit's projected location.
type AffectsShroud struct {
	kind               shroud.SourceType
	minRange           core.WDist
	rangeValue         core.WDist
	maxHeightDelta     int
	validRelationships Relationship
	disabled           bool

	id             shroud.SourceID
	registered     bool
	cells          []core.PPos
	cachedLocation core.PPos
	cachedRange    core.WDist
	cachedDisabled bool
}

// NewRevealsShroud creates a vision component
func NewRevealsShroud(cfg RevealsShroudConfig) *AffectsShroud {
	kind := shroud.SourcePassiveVisibility
	if cfg.RevealGeneratedShroud {
		kind = shroud.SourceVisibility
	}
	valid := cfg.ValidRelationships
	if valid == RelationshipNone {
		valid = RelationshipAlly
	}
	return &AffectsShroud{
		kind:               kind,
		minRange:           cfg.MinRange,
		rangeValue:         cfg.Range,
		maxHeightDelta:     cfg.MaxHeightDelta,
		validRelationships: valid,
	}
}

// NewCreatesShroud creates a shroud generating component
func NewCreatesShroud(cfg CreatesShroudConfig) *AffectsShroud {
	valid := cfg.ValidRelationships
	if valid == RelationshipNone {
		valid = RelationshipEnemy | RelationshipNeutral
	}
	return &AffectsShroud{
		kind:               shroud.SourceShroud,
		minRange:           cfg.MinRange,
		rangeValue:         cfg.Range,
		maxHeightDelta:     cfg.MaxHeightDelta,
		validRelationships: valid,
	}
}

// Kind returns the source type registered on matching shrouds
func (a *AffectsShroud) Kind() shroud.SourceType { return a.kind }

// SourceID returns the handle used on every shroud, zero until added to the world
func (a *AffectsShroud) SourceID() shroud.SourceID { return a.id }

// Range returns the configured range
func (a *AffectsShroud) Range() core.WDist { return a.rangeValue }

// SetRange changes the range. The cells are re-registered on the next step.
func (a *AffectsShroud) SetRange(r core.WDist) { a.rangeValue = r }

// SetDisabled toggles the source. A disabled source covers no cells.
func (a *AffectsShroud) SetDisabled(disabled bool) { a.disabled = disabled }

func (a *AffectsShroud) effectiveRange() core.WDist {
	if a.disabled {
		return 0
	}
	return a.rangeValue
}

func (a *AffectsShroud) AddedToWorld(e *Engine, u *Unit) {
	if a.id == 0 {
		a.id = e.nextSourceID()
	}
	a.update(e, u)
}

func (a *AffectsShroud) RemovedFromWorld(e *Engine, u *Unit) {
	a.removeCells(e)
}

func (a *AffectsShroud) Tick(e *Engine, u *Unit) {
	location := e.m.ProjectedCellCovering(u.Pos)
	if a.registered && location == a.cachedLocation &&
		a.rangeValue == a.cachedRange && a.disabled == a.cachedDisabled {
		return
	}
	a.update(e, u)
}

func (a *AffectsShroud) update(e *Engine, u *Unit) {
	a.cachedLocation = e.m.ProjectedCellCovering(u.Pos)
	a.cachedRange = a.rangeValue
	a.cachedDisabled = a.disabled

	a.removeCells(e)

	var cells []core.PPos
	if r := a.effectiveRange(); r > 0 {
		for p := range core.ProjectedCellsInRange(e.m, u.Pos, a.minRange, r, a.maxHeightDelta) {
			if e.m.Contains(p) {
				cells = append(cells, p)
			}
		}
	}
	a.addCells(e, u, cells)
}

// PlayerAdded registers the current cells on a player that joined after the
// unit entered the world
func (a *AffectsShroud) PlayerAdded(e *Engine, u *Unit, p *Player) {
	if !a.registered {
		return
	}
	a.register(e, u, p)
}

func (a *AffectsShroud) addCells(e *Engine, u *Unit, cells []core.PPos) {
	a.cells = cells
	for _, p := range e.players {
		a.register(e, u, p)
	}
	a.registered = true
}

func (a *AffectsShroud) register(e *Engine, u *Unit, p *Player) {
	if !a.validRelationships.HasRelationship(p.RelationshipWith(u.Owner)) {
		return
	}
	if err := p.Shroud.AddSource(a.id, a.kind, a.cells); err != nil {
		e.logger.Error().
			Err(err).
			Uint32("unit_id", uint32(u.ID)).
			Int("player_id", p.ID).
			Msg("Failed to register shroud source")
	}
}

func (a *AffectsShroud) removeCells(e *Engine) {
	if !a.registered {
		return
	}
	for _, p := range e.players {
		p.Shroud.RemoveSource(a.id)
	}
	a.cells = nil
	a.registered = false
}
