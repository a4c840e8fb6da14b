package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/trio-backend/internal/apperror"
	"github.com/rocketscienceinc/trio-backend/internal/engine"
	"github.com/rocketscienceinc/trio-backend/internal/entity"
)

const saveResultTimeout = 5 * time.Second

type resultRepo interface {
	Save(ctx context.Context, result *entity.Result) error
	ListRecent(ctx context.Context, limit int64) ([]entity.Result, error)
}

// Session is one game with its own engine and event log.
type Session struct {
	ID        string
	CreatedAt time.Time

	engine *engine.Engine
	events *eventLog
}

func (that *Session) State() engine.Snapshot {
	return that.engine.State()
}

// SessionManager - keeps independent games in memory and records finished ones.
type SessionManager struct {
	logger  *slog.Logger
	results resultRepo
	options []engine.Option

	mu       sync.RWMutex
	sessions map[string]*Session

	// recording tracks results being saved in the background.
	recording sync.WaitGroup
}

// NewSessionManager - options are applied to the engine of every session.
func NewSessionManager(logger *slog.Logger, results resultRepo, options ...engine.Option) *SessionManager {
	return &SessionManager{
		logger:   logger.With("component", "session_manager"),
		results:  results,
		options:  options,
		sessions: make(map[string]*Session),
	}
}

// Create - configures and starts a new game.
func (that *SessionManager) Create(ctx context.Context, size int, control entity.PlayerControl) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	session := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		events:    newEventLog(),
	}

	options := append([]engine.Option{}, that.options...)
	options = append(options,
		engine.WithObserver(session.events),
		engine.WithObserver(&resultRecorder{manager: that, sessionID: session.ID}),
	)
	session.engine = engine.New(that.logger.With("session", session.ID), options...)

	if err := session.engine.Configure(size, control); err != nil {
		return nil, fmt.Errorf("failed to configure game: %w", err)
	}

	that.mu.Lock()
	that.sessions[session.ID] = session
	that.mu.Unlock()

	if err := session.engine.Start(); err != nil {
		that.Delete(session.ID)
		return nil, fmt.Errorf("failed to start game: %w", err)
	}

	that.logger.Info("session created", "session", session.ID, "size", size)

	return session, nil
}

func (that *SessionManager) Get(id string) (*Session, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	session, ok := that.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	return session, nil
}

func (that *SessionManager) Delete(id string) error {
	that.mu.Lock()
	session, ok := that.sessions[id]
	delete(that.sessions, id)
	that.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	session.engine.Close()
	that.logger.Info("session deleted", "session", id)

	return nil
}

func (that *SessionManager) SelectTile(id string, c entity.Coordinate) (engine.Snapshot, error) {
	return that.play(id, func(e *engine.Engine) error {
		return e.SelectTile(c)
	})
}

func (that *SessionManager) SkipTurn(id string) (engine.Snapshot, error) {
	return that.play(id, (*engine.Engine).SkipTurn)
}

func (that *SessionManager) RequestRobotMove(id string) (engine.Snapshot, error) {
	return that.play(id, (*engine.Engine).RequestRobotMove)
}

// Configure - starts a new game in the same session.
func (that *SessionManager) Configure(id string, size int, control entity.PlayerControl) (engine.Snapshot, error) {
	return that.play(id, func(e *engine.Engine) error {
		if err := e.Configure(size, control); err != nil {
			return err
		}

		return e.Start()
	})
}

// Events - events of the session numbered above after.
func (that *SessionManager) Events(id string, after int64) ([]Event, error) {
	session, err := that.Get(id)
	if err != nil {
		return nil, err
	}

	return session.events.after(after), nil
}

// Watch - like Events, the channel is closed when the session records a newer event.
func (that *SessionManager) Watch(id string, after int64) ([]Event, <-chan struct{}, error) {
	session, err := that.Get(id)
	if err != nil {
		return nil, nil, err
	}

	events, changed := session.events.watch(after)

	return events, changed, nil
}

func (that *SessionManager) Results(ctx context.Context, limit int64) ([]entity.Result, error) {
	results, err := that.results.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	return results, nil
}

// Close - drops every session and waits for results still being saved.
func (that *SessionManager) Close() {
	that.mu.Lock()
	sessions := that.sessions
	that.sessions = make(map[string]*Session)
	that.mu.Unlock()

	for _, session := range sessions {
		session.engine.Close()
	}

	that.recording.Wait()
}

// play - runs action on the session's engine and returns the state after it,
// also when action failed.
func (that *SessionManager) play(id string, action func(e *engine.Engine) error) (engine.Snapshot, error) {
	session, err := that.Get(id)
	if err != nil {
		return engine.Snapshot{}, err
	}

	err = action(session.engine)

	return session.engine.State(), err
}

func (that *SessionManager) record(sessionID string, result entity.Result) {
	defer that.recording.Done()

	log := that.logger.With("method", "record", "session", sessionID, "result", result.ID)

	ctx, cancel := context.WithTimeout(context.Background(), saveResultTimeout)
	defer cancel()

	if err := that.results.Save(ctx, &result); err != nil {
		log.Error("failed to save result", "error", err)
		return
	}

	log.Info("result saved", "winner", result.Winner.String(), "tie", result.Tie)
}

// resultRecorder saves the result of every game played in a session. GameOver
// runs with the engine locked, so the save happens on its own goroutine.
type resultRecorder struct {
	engine.NopObserver

	manager   *SessionManager
	sessionID string
}

func (that *resultRecorder) GameOver(result entity.Result) {
	result.ID = uuid.NewString()

	that.manager.recording.Add(1)
	go that.manager.record(that.sessionID, result)
}
