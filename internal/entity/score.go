package entity

import (
	"fmt"
	"time"
)

// Score counts the own tiles each player has captured.
type Score struct {
	O int `json:"o"`
	X int `json:"x"`
}

func (that Score) Of(player Symbol) int {
	switch player {
	case PlayerO:
		return that.O
	case PlayerX:
		return that.X
	default:
		return 0
	}
}

func (that *Score) Add(player Symbol, points int) {
	switch player {
	case PlayerO:
		that.O += points
	case PlayerX:
		that.X += points
	}
}

// Leader - the player with the higher score, Empty on a tie.
func (that Score) Leader() Symbol {
	switch {
	case that.O > that.X:
		return PlayerO
	case that.X > that.O:
		return PlayerX
	default:
		return Empty
	}
}

// Result describes a finished game.
type Result struct {
	ID         string        `json:"id,omitempty"`
	Winner     Symbol        `json:"winner"`
	Tie        bool          `json:"tie"`
	Score      Score         `json:"score"`
	BoardSize  int           `json:"board_size,omitempty"`
	Control    PlayerControl `json:"control"`
	FinishedAt time.Time     `json:"finished_at"`
}

func NewResult(score Score) Result {
	winner := score.Leader()

	return Result{
		Winner: winner,
		Tie:    winner == Empty,
		Score:  score,
	}
}

func (that Result) Announcement() string {
	if that.Tie {
		return "It's a tie!"
	}

	return that.Winner.String() + " wins!"
}

func (that Result) String() string {
	return fmt.Sprintf("%s Final Scores: O: %d X: %d", that.Announcement(), that.Score.O, that.Score.X)
}
