// Package rules holds the move rules: connectivity of a triple, majority
// ownership, enumeration of legal triples and capture.
package rules

import (
	"github.com/rocketscienceinc/trio-backend/internal/apperror"
	"github.com/rocketscienceinc/trio-backend/internal/entity"
)

// Verdict classifies a candidate triple.
type Verdict uint8

const (
	Legal Verdict = iota
	IllegalDisconnected
	IllegalMajority
	IllegalTaken
)

func (that Verdict) String() string {
	switch that {
	case Legal:
		return "legal"
	case IllegalDisconnected:
		return "disconnected"
	case IllegalMajority:
		return "insufficient majority"
	case IllegalTaken:
		return "taken"
	default:
		return "unknown"
	}
}

// Err - the error for an illegal verdict, nil for Legal.
func (that Verdict) Err() error {
	switch that {
	case Legal:
		return nil
	case IllegalDisconnected:
		return apperror.ErrDisconnected
	case IllegalMajority:
		return apperror.ErrInsufficientMajority
	default:
		return apperror.ErrTileTaken
	}
}

// IsConnected - every coordinate of the triple has an edge neighbor inside the triple.
func IsConnected(triple entity.Triple) bool {
	if !triple.Distinct() {
		return false
	}

	for i := range triple {
		connected := false
		for j := range triple {
			if i != j && triple[i].Adjacent(triple[j]) {
				connected = true
				break
			}
		}

		if !connected {
			return false
		}
	}

	return true
}

// Evaluate - checks connectivity first, then that every cell is still on the
// board and that player owns at least two of the three.
func Evaluate(board entity.Board, triple entity.Triple, player entity.Symbol) Verdict {
	if !IsConnected(triple) {
		return IllegalDisconnected
	}

	for _, c := range triple {
		if !board.Contains(c) || board.At(c) == entity.Empty {
			return IllegalTaken
		}
	}

	if Owned(board, triple, player) < 2 {
		return IllegalMajority
	}

	return Legal
}

// Owned - how many cells of the triple hold player.
func Owned(board entity.Board, triple entity.Triple, player entity.Symbol) int {
	owned := 0
	for _, c := range triple {
		if board.Contains(c) && board.At(c) == player {
			owned++
		}
	}

	return owned
}

// LegalMoves - for every occupied cell, pairs of its occupied neighbors form a
// triple around it; triples where player owns two or more are kept. The same
// three cells can show up more than once through different centers.
func LegalMoves(board entity.Board, player entity.Symbol) []entity.Triple {
	var moves []entity.Triple

	for row := range board {
		for col := range board[row] {
			moves = appendGroups(moves, board, entity.Coordinate{Row: row, Col: col}, player)
		}
	}

	return moves
}

// HasLegalMove - LegalMoves(board, player) is not empty.
func HasLegalMove(board entity.Board, player entity.Symbol) bool {
	for row := range board {
		for col := range board[row] {
			if len(appendGroups(nil, board, entity.Coordinate{Row: row, Col: col}, player)) > 0 {
				return true
			}
		}
	}

	return false
}

func appendGroups(moves []entity.Triple, board entity.Board, center entity.Coordinate, player entity.Symbol) []entity.Triple {
	if board.At(center) == entity.Empty {
		return moves
	}

	adjacent := make([]entity.Coordinate, 0, 4)
	for _, n := range board.Neighbors(center) {
		if board.At(n) != entity.Empty {
			adjacent = append(adjacent, n)
		}
	}

	centerOwned := board.At(center) == player
	for i := 0; i < len(adjacent); i++ {
		for j := i + 1; j < len(adjacent); j++ {
			owned := 0
			for _, own := range []bool{centerOwned, board.At(adjacent[i]) == player, board.At(adjacent[j]) == player} {
				if own {
					owned++
				}
			}

			if owned >= 2 {
				moves = append(moves, entity.Triple{adjacent[i], center, adjacent[j]})
			}
		}
	}

	return moves
}

// Capture - clears the triple and returns how many of the cleared cells were player's.
func Capture(board entity.Board, triple entity.Triple, player entity.Symbol) int {
	owned := Owned(board, triple, player)
	for _, c := range triple {
		board.Set(c, entity.Empty)
	}

	return owned
}
