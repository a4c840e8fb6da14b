package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestNewRandomBoard(t *testing.T) {
	t.Run("Generated boards are always fair", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))

		for size := 1; size <= 10; size++ {
			for i := 0; i < 50; i++ {
				// When: a board is generated
				board := NewRandomBoard(size, rng)

				// Then: it is square, full and balanced
				require.Equal(t, size, board.Size())
				assert.Equal(t, size*size, board.Occupied())
				assert.Zero(t, board.Count(Empty))
				assert.True(t, board.IsFair(), "board %d is unfair:\n%s", size, board)
			}
		}
	})

	t.Run("Same seed gives the same board", func(t *testing.T) {
		// Given: two generators with the same seed
		first := NewRandomBoard(7, rand.New(rand.NewSource(7)))
		second := NewRandomBoard(7, rand.New(rand.NewSource(7)))

		// Then: the boards are equal
		assert.Equal(t, first, second)
	})
}

func TestBoard_IsFair(t *testing.T) {
	t.Run("Difference of one is fair", func(t *testing.T) {
		board := MustParseBoard("OOX", "XOX", "OXO")
		assert.True(t, board.IsFair())
	})

	t.Run("Difference of three is not fair", func(t *testing.T) {
		board := MustParseBoard("OOO", "OOX", "OXX")
		assert.False(t, board.IsFair())
	})
}

func TestParseBoard(t *testing.T) {
	t.Run("Parses marks and empty cells", func(t *testing.T) {
		// When: parsing a board with captured cells
		board, err := ParseBoard("..X", "X.X", "OXO")

		// Then: empty cells are Empty
		require.NoError(t, err)
		assert.Equal(t, Empty, board.At(Coordinate{0, 0}))
		assert.Equal(t, PlayerX, board.At(Coordinate{0, 2}))
		assert.Equal(t, PlayerO, board.At(Coordinate{2, 0}))
		assert.Equal(t, 6, board.Occupied())
		assert.Equal(t, "..X\nX.X\nOXO", board.String())
	})

	t.Run("Rejects ragged rows", func(t *testing.T) {
		_, err := ParseBoard("OX", "O")
		assert.ErrorIs(t, err, ErrMalformedBoard)
	})

	t.Run("Rejects unknown marks", func(t *testing.T) {
		_, err := ParseBoard("OZ", "XO")
		assert.ErrorIs(t, err, ErrUnknownSymbol)
	})
}

func TestBoard_Neighbors(t *testing.T) {
	board := NewBoard(3)

	t.Run("Corner has two neighbors", func(t *testing.T) {
		assert.Equal(t, []Coordinate{{0, 1}, {1, 0}}, board.Neighbors(Coordinate{0, 0}))
	})

	t.Run("Center has four neighbors", func(t *testing.T) {
		assert.Equal(t, []Coordinate{{1, 2}, {1, 0}, {2, 1}, {0, 1}}, board.Neighbors(Coordinate{1, 1}))
	})
}

func TestBoard_Clone(t *testing.T) {
	// Given: a board and its clone
	board := MustParseBoard("OX", "XO")
	clone := board.Clone()

	// When: the clone is changed
	clone.Set(Coordinate{0, 0}, Empty)

	// Then: the original keeps its cell
	assert.Equal(t, PlayerO, board.At(Coordinate{0, 0}))
}

func TestCoordinate_Adjacent(t *testing.T) {
	tests := []struct {
		name string
		a, b Coordinate
		want bool
	}{
		{"same row", Coordinate{1, 1}, Coordinate{1, 2}, true},
		{"same column", Coordinate{1, 1}, Coordinate{0, 1}, true},
		{"diagonal", Coordinate{1, 1}, Coordinate{2, 2}, false},
		{"two apart", Coordinate{0, 0}, Coordinate{0, 2}, false},
		{"itself", Coordinate{0, 0}, Coordinate{0, 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Adjacent(tt.b))
			assert.Equal(t, tt.want, tt.b.Adjacent(tt.a))
		})
	}
}
