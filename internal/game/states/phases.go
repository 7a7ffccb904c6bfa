package states

import "fmt"

// MatchPhase represents the current phase of a match
type MatchPhase int

const (
	// PhaseLobby - Players joining, shrouds not yet created
	PhaseLobby MatchPhase = iota

	// PhaseRunning - Steps are being simulated
	PhaseRunning

	// PhasePaused - Temporary suspension, queries still answered
	PhasePaused

	// PhaseEnded - Final state
	PhaseEnded
)

// String returns the string representation of a MatchPhase
func (p MatchPhase) String() string {
	switch p {
	case PhaseLobby:
		return "Lobby"
	case PhaseRunning:
		return "Running"
	case PhasePaused:
		return "Paused"
	case PhaseEnded:
		return "Ended"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// IsTerminal returns true if the phase represents a terminal state
func (p MatchPhase) IsTerminal() bool {
	return p == PhaseEnded
}

// CanStep returns true if the simulation may advance in this phase
func (p MatchPhase) CanStep() bool {
	return p == PhaseRunning
}

// CanAddPlayers returns true if players can join in this phase
func (p MatchPhase) CanAddPlayers() bool {
	return p == PhaseLobby
}

// AllowedTransitions returns the valid phases this phase can transition to
func (p MatchPhase) AllowedTransitions() []MatchPhase {
	switch p {
	case PhaseLobby:
		return []MatchPhase{PhaseRunning, PhaseEnded}
	case PhaseRunning:
		return []MatchPhase{PhasePaused, PhaseEnded}
	case PhasePaused:
		return []MatchPhase{PhaseRunning, PhaseEnded}
	default:
		return []MatchPhase{}
	}
}

// CanTransitionTo checks if a transition from this phase to the target phase is allowed
func (p MatchPhase) CanTransitionTo(target MatchPhase) bool {
	for _, phase := range p.AllowedTransitions() {
		if phase == target {
			return true
		}
	}
	return false
}

// ParsePhase converts a string to a MatchPhase
func ParsePhase(s string) (MatchPhase, error) {
	switch s {
	case "Lobby":
		return PhaseLobby, nil
	case "Running":
		return PhaseRunning, nil
	case "Paused":
		return PhasePaused, nil
	case "Ended":
		return PhaseEnded, nil
	default:
		return PhaseLobby, fmt.Errorf("unknown match phase %q", s)
	}
}
