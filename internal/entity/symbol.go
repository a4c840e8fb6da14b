package entity

import (
	"errors"
	"fmt"
)

// Symbol is the content of a board cell.
type Symbol uint8

const (
	Empty Symbol = iota
	PlayerO
	PlayerX
)

const (
	MarkEmpty = " "
	MarkO     = "O"
	MarkX     = "X"
)

var ErrUnknownSymbol = errors.New("unknown symbol")

func (that Symbol) String() string {
	switch that {
	case PlayerO:
		return MarkO
	case PlayerX:
		return MarkX
	default:
		return MarkEmpty
	}
}

// Opponent - returns the other player, Empty has no opponent.
func (that Symbol) Opponent() Symbol {
	switch that {
	case PlayerO:
		return PlayerX
	case PlayerX:
		return PlayerO
	default:
		return Empty
	}
}

func (that Symbol) IsPlayer() bool {
	return that == PlayerO || that == PlayerX
}

// ParseSymbol - accepts "O", "X" and " " (or "" and "." for an empty cell).
func ParseSymbol(mark string) (Symbol, error) {
	switch mark {
	case MarkO:
		return PlayerO, nil
	case MarkX:
		return PlayerX, nil
	case MarkEmpty, "", ".":
		return Empty, nil
	default:
		return Empty, fmt.Errorf("%w: %q", ErrUnknownSymbol, mark)
	}
}

func (that Symbol) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Symbol) UnmarshalText(text []byte) error {
	symbol, err := ParseSymbol(string(text))
	if err != nil {
		return err
	}

	*that = symbol

	return nil
}
