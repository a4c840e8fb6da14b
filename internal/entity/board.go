package entity

import (
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedBoard = errors.New("malformed board")

// directions in the order neighbors are visited: right, left, down, up.
var directions = [4][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}

// Coordinate addresses a cell, both indices are 0-based.
type Coordinate struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Adjacent - reports whether two coordinates share an edge.
func (that Coordinate) Adjacent(other Coordinate) bool {
	dr, dc := abs(that.Row-other.Row), abs(that.Col-other.Col)
	return dr+dc == 1
}

func (that Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", that.Row, that.Col)
}

// Triple is the three coordinates of one move.
type Triple [3]Coordinate

// Distinct - reports whether no coordinate repeats.
func (that Triple) Distinct() bool {
	return that[0] != that[1] && that[0] != that[2] && that[1] != that[2]
}

// Board is a square grid indexed as board[row][col].
type Board [][]Symbol

// NewBoard - returns a size x size board of empty cells.
func NewBoard(size int) Board {
	board := make(Board, size)
	for row := range board {
		board[row] = make([]Symbol, size)
	}

	return board
}

// ParseBoard - builds a board from rows of marks, "." or " " is an empty cell.
func ParseBoard(rows ...string) (Board, error) {
	board := NewBoard(len(rows))
	for row, line := range rows {
		if len(line) != len(rows) {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrMalformedBoard, row, len(line), len(rows))
		}

		for col, mark := range line {
			symbol, err := ParseSymbol(string(mark))
			if err != nil {
				return nil, fmt.Errorf("%w: row %d col %d: %w", ErrMalformedBoard, row, col, err)
			}
			board[row][col] = symbol
		}
	}

	return board, nil
}

// MustParseBoard - like ParseBoard but panics, for fixtures.
func MustParseBoard(rows ...string) Board {
	board, err := ParseBoard(rows...)
	if err != nil {
		panic(err)
	}

	return board
}

func (that Board) Size() int {
	return len(that)
}

func (that Board) Contains(c Coordinate) bool {
	return c.Row >= 0 && c.Col >= 0 && c.Row < len(that) && c.Col < len(that)
}

// At - returns the symbol at c, the caller checks bounds.
func (that Board) At(c Coordinate) Symbol {
	return that[c.Row][c.Col]
}

func (that Board) Set(c Coordinate, symbol Symbol) {
	that[c.Row][c.Col] = symbol
}

func (that Board) Count(symbol Symbol) int {
	count := 0
	for _, row := range that {
		for _, cell := range row {
			if cell == symbol {
				count++
			}
		}
	}

	return count
}

// Occupied - number of cells not yet captured.
func (that Board) Occupied() int {
	return that.Count(PlayerO) + that.Count(PlayerX)
}

// IsFair - the O and X counts differ by at most one.
func (that Board) IsFair() bool {
	return abs(that.Count(PlayerO)-that.Count(PlayerX)) <= 1
}

// Neighbors - in-bounds 4-neighbors of c.
func (that Board) Neighbors(c Coordinate) []Coordinate {
	neighbors := make([]Coordinate, 0, len(directions))
	for _, d := range directions {
		next := Coordinate{Row: c.Row + d[0], Col: c.Col + d[1]}
		if that.Contains(next) {
			neighbors = append(neighbors, next)
		}
	}

	return neighbors
}

func (that Board) Clone() Board {
	board := make(Board, len(that))
	for row := range that {
		board[row] = make([]Symbol, len(that[row]))
		copy(board[row], that[row])
	}

	return board
}

// String - one line per row, empty cells shown as ".".
func (that Board) String() string {
	var sb strings.Builder
	for row, cells := range that {
		if row > 0 {
			sb.WriteByte('\n')
		}

		for _, cell := range cells {
			if cell == Empty {
				sb.WriteByte('.')
				continue
			}
			sb.WriteString(cell.String())
		}
	}

	return sb.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
