package entity

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownController = errors.New("unknown controller")

// Controller tells who plays a side.
type Controller uint8

const (
	Human Controller = iota
	Robot
)

func (that Controller) String() string {
	if that == Robot {
		return "robot"
	}
	return "human"
}

func ParseController(value string) (Controller, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "human", "":
		return Human, nil
	case "robot":
		return Robot, nil
	default:
		return Human, fmt.Errorf("%w: %q", ErrUnknownController, value)
	}
}

func (that Controller) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Controller) UnmarshalText(text []byte) error {
	controller, err := ParseController(string(text))
	if err != nil {
		return err
	}

	*that = controller

	return nil
}

// PlayerControl maps each side to a controller, fixed for the length of a game.
type PlayerControl struct {
	O Controller `json:"o"`
	X Controller `json:"x"`
}

func (that PlayerControl) For(player Symbol) Controller {
	switch player {
	case PlayerO:
		return that.O
	case PlayerX:
		return that.X
	default:
		return Human
	}
}

func (that PlayerControl) IsRobot(player Symbol) bool {
	return that.For(player) == Robot
}

// ParsePlayerControl - names the robot side: "neither", "O", "X" or "both".
func ParsePlayerControl(robot string) (PlayerControl, error) {
	switch strings.ToLower(strings.TrimSpace(robot)) {
	case "neither", "none", "":
		return PlayerControl{}, nil
	case "o":
		return PlayerControl{O: Robot}, nil
	case "x":
		return PlayerControl{X: Robot}, nil
	case "both":
		return PlayerControl{O: Robot, X: Robot}, nil
	default:
		return PlayerControl{}, fmt.Errorf("%w: robot side %q", ErrUnknownController, robot)
	}
}
