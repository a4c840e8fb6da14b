package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrGameOver          = errors.New("game is already over")
	ErrGameNotStarted    = errors.New("game is not started")
	ErrRobotMovePending  = errors.New("robot move is pending")
	ErrNoAvailableMoves  = errors.New("no available moves")
	ErrTileTaken         = errors.New("tile is already taken")
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	ErrInvalidConfiguration = errors.New("invalid configuration")

	ErrSessionNotFound = errors.New("session not found")
	ErrResultNotFound  = errors.New("result not found")

	ErrIllegalMove          = errors.New("illegal move")
	ErrDisconnected         = fmt.Errorf("%w: tiles are not connected", ErrIllegalMove)
	ErrInsufficientMajority = fmt.Errorf("%w: not enough own tiles", ErrIllegalMove)
)
