package entity

// Role is a connection's capacity within a game: one of the two player
// slots, or a passive spectator.
type Role string

const (
	RolePlayerX   Role = "X"
	RolePlayerO   Role = "O"
	RoleSpectator Role = "spectator"
)

// ParseRole maps untrusted input to a Role. Anything that is not exactly
// "X" or "O" becomes a spectator by contract.
func ParseRole(raw string) Role {
	switch raw {
	case "X":
		return RolePlayerX
	case "O":
		return RolePlayerO
	default:
		return RoleSpectator
	}
}

func (that Role) IsPlayer() bool {
	return that == RolePlayerX || that == RolePlayerO
}

// Mark returns the cell mark a role plays with, empty for spectators.
func (that Role) Mark() string {
	switch that {
	case RolePlayerX:
		return MarkX
	case RolePlayerO:
		return MarkO
	default:
		return EmptyCell
	}
}
