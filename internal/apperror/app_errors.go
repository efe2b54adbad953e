package apperror

import "errors"

var (
	ErrGameFinished        = errors.New("game is already finished")
	ErrGameNotFound        = errors.New("game not found")
	ErrNotYourTurn         = errors.New("it's not your turn")
	ErrNotAPlayer          = errors.New("connection is not a player in this game")
	ErrCellOccupied        = errors.New("cell is already occupied")
	ErrRoleUnavailable     = errors.New("player slot is already taken")
	ErrOutOfRange          = errors.New("cell is out of range")
	ErrMalformedDimensions = errors.New("board dimensions must be positive")
	ErrGameIDRequired      = errors.New("game id is required")
)
