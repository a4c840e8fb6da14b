package entity

import "golang.org/x/exp/rand"

// NewRandomBoard - fills every cell with O or X at even odds and re-rolls the
// whole board until the two counts differ by at most one.
func NewRandomBoard(size int, rng *rand.Rand) Board {
	for {
		board := NewBoard(size)
		for row := range board {
			for col := range board[row] {
				if rng.Intn(2) == 0 {
					board[row][col] = PlayerO
				} else {
					board[row][col] = PlayerX
				}
			}
		}

		if board.IsFair() {
			return board
		}
	}
}
