package usecase

import (
	"slices"
	"sync"

	"github.com/rocketscienceinc/trio-backend/internal/engine"
	"github.com/rocketscienceinc/trio-backend/internal/entity"
)

const maxEvents = 1024

type EventKind string

const (
	EventBoard     EventKind = "board"
	EventScore     EventKind = "score"
	EventSelection EventKind = "selection"
	EventTurn      EventKind = "turn"
	EventMessage   EventKind = "message"
	EventGameOver  EventKind = "game_over"
)

// Event is one engine notification, numbered in the order it happened.
type Event struct {
	Seq       int64               `json:"seq"`
	Kind      EventKind           `json:"kind"`
	Board     entity.Board        `json:"board,omitempty"`
	Score     *entity.Score       `json:"score,omitempty"`
	Selection []entity.Coordinate `json:"selection,omitempty"`
	Player    *entity.Symbol      `json:"player,omitempty"`
	Text      string              `json:"text,omitempty"`
	Severity  *engine.Severity    `json:"severity,omitempty"`
	Result    *entity.Result      `json:"result,omitempty"`
}

// eventLog records engine notifications for clients that poll or watch. It
// keeps the newest maxEvents entries.
type eventLog struct {
	mu     sync.Mutex
	seq    int64
	events []Event

	// changed is closed and replaced on every append.
	changed chan struct{}
}

func newEventLog() *eventLog {
	return &eventLog{changed: make(chan struct{})}
}

func (that *eventLog) append(event Event) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.seq++
	event.Seq = that.seq

	if len(that.events) == maxEvents {
		that.events = slices.Delete(that.events, 0, 1)
	}
	that.events = append(that.events, event)

	close(that.changed)
	that.changed = make(chan struct{})
}

// after - events with a sequence number above seq.
func (that *eventLog) after(seq int64) []Event {
	events, _ := that.watch(seq)
	return events
}

// watch - events above seq and a channel closed once newer ones arrive.
func (that *eventLog) watch(seq int64) ([]Event, <-chan struct{}) {
	that.mu.Lock()
	defer that.mu.Unlock()

	idx, _ := slices.BinarySearchFunc(that.events, seq+1, func(event Event, target int64) int {
		switch {
		case event.Seq < target:
			return -1
		case event.Seq > target:
			return 1
		default:
			return 0
		}
	})

	return slices.Clone(that.events[idx:]), that.changed
}

func (that *eventLog) BoardChanged(board entity.Board) {
	that.append(Event{Kind: EventBoard, Board: board})
}

func (that *eventLog) ScoreChanged(score entity.Score) {
	that.append(Event{Kind: EventScore, Score: &score})
}

func (that *eventLog) SelectionChanged(selection []entity.Coordinate) {
	that.append(Event{Kind: EventSelection, Selection: selection})
}

func (that *eventLog) TurnChanged(player entity.Symbol) {
	that.append(Event{Kind: EventTurn, Player: &player})
}

func (that *eventLog) Message(text string, severity engine.Severity) {
	that.append(Event{Kind: EventMessage, Text: text, Severity: &severity})
}

func (that *eventLog) GameOver(result entity.Result) {
	that.append(Event{Kind: EventGameOver, Result: &result})
}
