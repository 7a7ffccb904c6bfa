package game

import (
	"github.com/mitchelldurbincs/fogofwar/internal/game/core"
)

// UnitID identifies a unit for the lifetime of the match. IDs are issued in
// increasing order and never reused.
type UnitID uint32

// Component is per-unit behaviour driven by the engine.
type Component interface {
	AddedToWorld(e *Engine, u *Unit)
	RemovedFromWorld(e *Engine, u *Unit)
	// Tick runs once per step during PhaseUpdate, in unit ID order.
	Tick(e *Engine, u *Unit)
}

// PlayerAwareComponent is implemented by components that must react to a
// player joining after the unit was placed.
type PlayerAwareComponent interface {
	PlayerAdded(e *Engine, u *Unit, p *Player)
}

// Unit is anything placed in the world that can carry components.
type Unit struct {
	ID         UnitID
	Owner      *Player
	Pos        core.WPos
	Components []Component

	inWorld bool
}

// InWorld reports whether the unit is currently placed in the world
func (u *Unit) InWorld() bool { return u.inWorld }

// unitSystem ticks every unit component
type unitSystem struct {
	e *Engine
}

func (s *unitSystem) Phase() Phase { return PhaseUpdate }

func (s *unitSystem) Update(step int) {
	for _, u := range s.e.units {
		if !u.inWorld {
			continue
		}
		for _, c := range u.Components {
			c.Tick(s.e, u)
		}
	}
}

// shroudSystem resolves every player's shroud after the components moved
// their sources
type shroudSystem struct {
	e *Engine
}

func (s *shroudSystem) Phase() Phase { return PhasePostUpdate }

func (s *shroudSystem) Update(step int) {
	for _, p := range s.e.players {
		p.Shroud.Tick(step)
	}
}
