package game

import (
	"strings"

	"github.com/mitchelldurbincs/fogofwar/internal/game/shroud"
)

// Relationship is a set of player stances. A player is always its own ally.
type Relationship uint8

const (
	RelationshipNone Relationship = 0
	RelationshipAlly Relationship = 1 << iota
	RelationshipEnemy
	RelationshipNeutral
)

// HasRelationship reports whether r includes every stance in other
func (r Relationship) HasRelationship(other Relationship) bool {
	return other != RelationshipNone && r&other == other
}

func (r Relationship) String() string {
	if r == RelationshipNone {
		return "none"
	}
	var parts []string
	if r&RelationshipAlly != 0 {
		parts = append(parts, "ally")
	}
	if r&RelationshipEnemy != 0 {
		parts = append(parts, "enemy")
	}
	if r&RelationshipNeutral != 0 {
		parts = append(parts, "neutral")
	}
	return strings.Join(parts, "|")
}

// PlayerConfig describes a player joining the match
type PlayerConfig struct {
	// Team groups allied players. Zero means no team.
	Team int
	// NonCombatant players, such as the map-owned creeps, are neutral to everyone.
	NonCombatant bool
}

// Player owns one shroud for the lifetime of the match.
type Player struct {
	ID           int
	Team         int
	NonCombatant bool
	Shroud       *shroud.Shroud
}

// RelationshipWith returns how p regards other
func (p *Player) RelationshipWith(other *Player) Relationship {
	switch {
	case p == other || p.ID == other.ID:
		return RelationshipAlly
	case p.NonCombatant || other.NonCombatant:
		return RelationshipNeutral
	case p.Team != 0 && p.Team == other.Team:
		return RelationshipAlly
	default:
		return RelationshipEnemy
	}
}
