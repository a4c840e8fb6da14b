package engine

import (
	"github.com/rocketscienceinc/trio-backend/internal/apperror"
	"github.com/rocketscienceinc/trio-backend/internal/entity"
	"github.com/rocketscienceinc/trio-backend/internal/rules"
	"golang.org/x/exp/rand"
)

// RobotPolicy plays a side by picking one of its legal moves at random.
type RobotPolicy struct {
	rng *rand.Rand
}

func NewRobotPolicy(rng *rand.Rand) *RobotPolicy {
	return &RobotPolicy{rng: rng}
}

// Choose - uniform pick over rules.LegalMoves. Repeated triples are not
// removed first, so a triple listed twice is twice as likely.
func (that *RobotPolicy) Choose(board entity.Board, player entity.Symbol) (entity.Triple, error) {
	moves := rules.LegalMoves(board, player)
	if len(moves) == 0 {
		return entity.Triple{}, apperror.ErrNoAvailableMoves
	}

	return moves[that.rng.Intn(len(moves))], nil
}
