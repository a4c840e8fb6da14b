package engine

import (
	"fmt"

	"github.com/rocketscienceinc/trio-backend/internal/entity"
)

// Severity grades a message for the presentation layer.
type Severity uint8

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (that Severity) String() string {
	switch that {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

func (that Severity) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "info":
		*that = SeverityInfo
	case "warning":
		*that = SeverityWarning
	case "error":
		*that = SeverityError
	default:
		return fmt.Errorf("unknown severity %q", text)
	}

	return nil
}

// Observer is notified of every state change the presentation layer renders.
// Calls are made with the engine locked: an observer must not call back into
// the engine from inside a notification.
type Observer interface {
	BoardChanged(board entity.Board)
	ScoreChanged(score entity.Score)
	SelectionChanged(selection []entity.Coordinate)
	TurnChanged(player entity.Symbol)
	Message(text string, severity Severity)
	GameOver(result entity.Result)
}

// NopObserver ignores everything, embed it to implement part of Observer.
type NopObserver struct{}

func (NopObserver) BoardChanged(entity.Board)            {}
func (NopObserver) ScoreChanged(entity.Score)            {}
func (NopObserver) SelectionChanged([]entity.Coordinate) {}
func (NopObserver) TurnChanged(entity.Symbol)            {}
func (NopObserver) Message(string, Severity)             {}
func (NopObserver) GameOver(entity.Result)               {}

// Observers fans every notification out in order.
type Observers []Observer

func (that Observers) BoardChanged(board entity.Board) {
	for _, o := range that {
		o.BoardChanged(board)
	}
}

func (that Observers) ScoreChanged(score entity.Score) {
	for _, o := range that {
		o.ScoreChanged(score)
	}
}

func (that Observers) SelectionChanged(selection []entity.Coordinate) {
	for _, o := range that {
		o.SelectionChanged(selection)
	}
}

func (that Observers) TurnChanged(player entity.Symbol) {
	for _, o := range that {
		o.TurnChanged(player)
	}
}

func (that Observers) Message(text string, severity Severity) {
	for _, o := range that {
		o.Message(text, severity)
	}
}

func (that Observers) GameOver(result entity.Result) {
	for _, o := range that {
		o.GameOver(result)
	}
}
