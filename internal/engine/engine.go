// Package engine runs one game: it owns the board, scores, turn and pending
// selection, applies moves, hands turns over and schedules robot moves.
package engine

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/rocketscienceinc/trio-backend/internal/apperror"
	"github.com/rocketscienceinc/trio-backend/internal/entity"
	"github.com/rocketscienceinc/trio-backend/internal/rules"
	"golang.org/x/exp/rand"
)

const (
	MinBoardSize     = 3
	MaxBoardSize     = 10
	DefaultBoardSize = 7

	DefaultRobotDelay       = 800 * time.Millisecond
	DefaultManualRobotDelay = 300 * time.Millisecond
)

const Instructions = "On your turn, take a set of three connected tiles. At least two must have your symbol. " +
	"If you can't (or don't want to) take a set, you can skip your turn. When both players pass, the game ends, " +
	"and the player with more of their own tiles taken is the winner."

// Status is the phase of the game.
type Status uint8

const (
	StatusConfigured Status = iota
	StatusSelecting
	StatusGameOver
)

func (that Status) String() string {
	switch that {
	case StatusSelecting:
		return "selecting"
	case StatusGameOver:
		return "game_over"
	default:
		return "configured"
	}
}

func (that Status) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

// Snapshot is a copy of the engine state.
type Snapshot struct {
	Board         entity.Board         `json:"board"`
	Score         entity.Score         `json:"score"`
	Selection     []entity.Coordinate  `json:"selection"`
	CurrentPlayer entity.Symbol        `json:"current_player"`
	Passes        int                  `json:"passes"`
	Status        Status               `json:"status"`
	RobotPending  bool                 `json:"robot_pending"`
	Control       entity.PlayerControl `json:"control"`
	Result        *entity.Result       `json:"result,omitempty"`
}

type Engine struct {
	mu sync.Mutex

	logger    *slog.Logger
	rng       *rand.Rand
	robot     *RobotPolicy
	scheduler Scheduler
	observers Observers

	robotDelay       time.Duration
	manualRobotDelay time.Duration

	control   entity.PlayerControl
	board     entity.Board
	score     entity.Score
	current   entity.Symbol
	passes    int
	selection []entity.Coordinate
	status    Status
	result    *entity.Result

	// pending is the scheduled robot commit; generation invalidates commits
	// that were scheduled before a reset.
	pending    Timer
	generation uint64
}

// New - creates an engine with a fresh default-size board, both sides human.
func New(logger *slog.Logger, options ...Option) *Engine {
	e := &Engine{
		logger:           logger.With("component", "engine"),
		scheduler:        clockScheduler{},
		robotDelay:       DefaultRobotDelay,
		manualRobotDelay: DefaultManualRobotDelay,
	}

	for _, option := range options {
		option(e)
	}

	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}

	e.robot = NewRobotPolicy(e.rng)
	e.reset(DefaultBoardSize, entity.PlayerControl{})

	return e
}

// Configure - regenerates the board and resets the game. An invalid size keeps the previous board.
func (that *Engine) Configure(size int, control entity.PlayerControl) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if size < MinBoardSize || size > MaxBoardSize {
		return fmt.Errorf("%w: board size %d outside %d..%d", apperror.ErrInvalidConfiguration, size, MinBoardSize, MaxBoardSize)
	}

	that.reset(size, control)
	that.logger.Info("game configured", "size", size, "o", control.O.String(), "x", control.X.String())

	that.observers.BoardChanged(that.board.Clone())
	that.observers.ScoreChanged(that.score)
	that.observers.SelectionChanged(nil)
	that.observers.TurnChanged(that.current)

	return nil
}

// Start - begins play with O to move. A robot-controlled starting side moves right away.
func (that *Engine) Start() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	switch that.status {
	case StatusGameOver:
		return apperror.ErrGameOver
	case StatusSelecting:
		return nil
	}

	that.status = StatusSelecting
	that.logger.Info("game started", "size", that.board.Size())

	that.observers.BoardChanged(that.board.Clone())
	that.observers.ScoreChanged(that.score)
	that.observers.TurnChanged(that.current)

	that.advance(false)

	return nil
}

// SelectTile - toggles c in the pending selection, the third tile resolves the move.
func (that *Engine) SelectTile(c entity.Coordinate) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.confirmSelecting(); err != nil {
		return err
	}

	if !that.board.Contains(c) {
		return fmt.Errorf("%w: %s on a %dx%d board", apperror.ErrInvalidCoordinate, c, that.board.Size(), that.board.Size())
	}

	if idx := slices.Index(that.selection, c); idx >= 0 {
		that.selection = slices.Delete(that.selection, idx, idx+1)
		that.observers.SelectionChanged(slices.Clone(that.selection))
		return nil
	}

	if that.board.At(c) == entity.Empty {
		return fmt.Errorf("%w: %s", apperror.ErrTileTaken, c)
	}

	that.selection = append(that.selection, c)
	that.observers.SelectionChanged(slices.Clone(that.selection))

	if len(that.selection) < len(entity.Triple{}) {
		return nil
	}

	return that.resolve(entity.Triple(that.selection))
}

// SkipTurn - voluntary pass, allowed even when the player still has moves.
func (that *Engine) SkipTurn() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.confirmSelecting(); err != nil {
		return err
	}

	that.logger.Debug("turn skipped", "player", that.current.String())
	that.observers.Message(fmt.Sprintf("%s has skipped their turn.", that.current), SeverityInfo)
	that.resetSelection()
	that.switchPlayer()

	return nil
}

// RequestRobotMove - lets the robot policy play the current player's turn.
func (that *Engine) RequestRobotMove() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.confirmSelecting(); err != nil {
		return err
	}

	return that.playRobot(that.manualRobotDelay)
}

// Close - drops a pending robot move so no timer outlives the engine.
func (that *Engine) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.cancelRobot()
}

func (that *Engine) State() Snapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	snapshot := Snapshot{
		Board:         that.board.Clone(),
		Score:         that.score,
		Selection:     slices.Clone(that.selection),
		CurrentPlayer: that.current,
		Passes:        that.passes,
		Status:        that.status,
		RobotPending:  that.pending != nil,
		Control:       that.control,
	}

	if that.result != nil {
		result := *that.result
		snapshot.Result = &result
	}

	return snapshot
}

func (that *Engine) reset(size int, control entity.PlayerControl) {
	that.cancelRobot()

	that.control = control
	that.board = entity.NewRandomBoard(size, that.rng)
	that.score = entity.Score{}
	that.current = entity.PlayerO
	that.passes = 0
	that.selection = nil
	that.status = StatusConfigured
	that.result = nil
}

// confirmSelecting - input is accepted only while selecting and no robot move is pending.
func (that *Engine) confirmSelecting() error {
	switch {
	case that.status == StatusConfigured:
		return apperror.ErrGameNotStarted
	case that.status == StatusGameOver:
		return apperror.ErrGameOver
	case that.pending != nil:
		return apperror.ErrRobotMovePending
	default:
		return nil
	}
}

func (that *Engine) resolve(triple entity.Triple) error {
	verdict := rules.Evaluate(that.board, triple, that.current)
	if verdict != rules.Legal {
		that.logger.Debug("move rejected", "player", that.current.String(), "verdict", verdict.String())
		that.observers.Message(that.rejection(verdict), SeverityError)
		that.resetSelection()

		return verdict.Err()
	}

	that.apply(triple)

	return nil
}

func (that *Engine) rejection(verdict rules.Verdict) string {
	switch verdict {
	case rules.IllegalMajority:
		return fmt.Sprintf("Invalid move! Pick at least two %ss.", that.current)
	case rules.IllegalDisconnected:
		return "Invalid move! All three tiles must be connected."
	default:
		return "Invalid move! Those tiles are already taken."
	}
}

func (that *Engine) apply(triple entity.Triple) {
	points := rules.Capture(that.board, triple, that.current)
	that.score.Add(that.current, points)

	that.logger.Debug("move applied", "player", that.current.String(), "points", points, "o", that.score.O, "x", that.score.X)

	that.observers.BoardChanged(that.board.Clone())
	that.observers.ScoreChanged(that.score)
	that.resetSelection()

	that.switchPlayer()
}

func (that *Engine) resetSelection() {
	that.selection = nil
	that.observers.SelectionChanged(nil)
}

func (that *Engine) switchPlayer() {
	that.advance(true)
}

// advance - hands the turn on (or, with flip unset, checks the current
// player) and skips players without a legal move. Two forced passes in a row
// end the game, so at most both players are visited.
func (that *Engine) advance(flip bool) {
	for range 2 {
		if flip {
			that.current = that.current.Opponent()
			that.observers.TurnChanged(that.current)
		}
		flip = true

		if rules.HasLegalMove(that.board, that.current) {
			that.passes = 0
			that.scheduleRobot()
			return
		}

		that.logger.Debug("forced pass", "player", that.current.String())
		that.observers.Message(fmt.Sprintf("%s has no valid moves!", that.current), SeverityWarning)

		if that.passes == 1 {
			break
		}
		that.passes = 1
	}

	that.finish()
}

func (that *Engine) scheduleRobot() {
	if !that.control.IsRobot(that.current) {
		return
	}

	if err := that.playRobot(that.robotDelay); err != nil {
		that.logger.Warn("robot could not move", "player", that.current.String(), "error", err)
	}
}

// playRobot - shows the robot's pick as the selection and commits it after delay.
func (that *Engine) playRobot(delay time.Duration) error {
	if that.pending != nil {
		return apperror.ErrRobotMovePending
	}

	triple, err := that.robot.Choose(that.board, that.current)
	if err != nil {
		return fmt.Errorf("robot %s: %w", that.current, err)
	}

	that.selection = slices.Clone(triple[:])
	that.observers.SelectionChanged(slices.Clone(that.selection))

	that.generation++
	generation := that.generation
	that.pending = that.scheduler.AfterFunc(delay, func() {
		that.commitRobot(generation, triple)
	})

	return nil
}

func (that *Engine) commitRobot(generation uint64, triple entity.Triple) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if generation != that.generation || that.pending == nil || that.status != StatusSelecting {
		return
	}
	that.pending = nil

	if err := that.resolve(triple); err != nil {
		that.logger.Warn("robot move rejected", "player", that.current.String(), "error", err)
	}
}

func (that *Engine) cancelRobot() {
	if that.pending != nil {
		that.pending.Stop()
		that.pending = nil
	}
	that.generation++
}

func (that *Engine) finish() {
	that.cancelRobot()

	result := entity.NewResult(that.score)
	result.BoardSize = that.board.Size()
	result.Control = that.control
	result.FinishedAt = time.Now().UTC()

	that.result = &result
	that.status = StatusGameOver
	that.selection = nil

	that.logger.Info("game over", "winner", result.Winner.String(), "tie", result.Tie, "o", result.Score.O, "x", result.Score.X)

	that.observers.Message(result.String(), SeverityInfo)
	that.observers.GameOver(result)
}
