package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/trio-backend/internal/apperror"
	"github.com/rocketscienceinc/trio-backend/internal/engine"
	"github.com/rocketscienceinc/trio-backend/internal/entity"
)

var errRedisDown = errors.New("redis down")

type mockResultRepo struct {
	mock.Mock
}

func (that *mockResultRepo) Save(ctx context.Context, result *entity.Result) error {
	args := that.Called(ctx, result)
	return args.Error(0)
}

func (that *mockResultRepo) ListRecent(ctx context.Context, limit int64) ([]entity.Result, error) {
	args := that.Called(ctx, limit)

	results, _ := args.Get(0).([]entity.Result)

	return results, args.Error(1)
}

func newTestManager(t *testing.T, options ...engine.Option) (*SessionManager, *mockResultRepo) {
	t.Helper()

	repo := &mockResultRepo{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := NewSessionManager(logger, repo, options...)

	t.Cleanup(func() {
		manager.Close()
		repo.AssertExpectations(t)
	})

	return manager, repo
}

func messages(events []Event) []string {
	var texts []string
	for _, event := range events {
		if event.Kind == EventMessage {
			texts = append(texts, event.Text)
		}
	}

	return texts
}

func TestSessionManager_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Starts a game", func(t *testing.T) {
		manager, _ := newTestManager(t)

		// When: a 5x5 human game is created
		session, err := manager.Create(ctx, 5, entity.PlayerControl{})

		// Then: it is selecting with O to move on a full fair board
		require.NoError(t, err)
		assert.NotEmpty(t, session.ID)

		state := session.State()
		assert.Equal(t, engine.StatusSelecting, state.Status)
		assert.Equal(t, entity.PlayerO, state.CurrentPlayer)
		assert.Equal(t, 5, state.Board.Size())
		assert.True(t, state.Board.IsFair())

		found, err := manager.Get(session.ID)
		require.NoError(t, err)
		assert.Same(t, session, found)
	})

	t.Run("Records the initial notifications", func(t *testing.T) {
		manager, _ := newTestManager(t)

		session, err := manager.Create(ctx, 4, entity.PlayerControl{})
		require.NoError(t, err)

		events, err := manager.Events(session.ID, 0)

		require.NoError(t, err)
		require.NotEmpty(t, events)
		assert.Equal(t, int64(1), events[0].Seq)
		assert.Equal(t, EventBoard, events[0].Kind)
		for i := 1; i < len(events); i++ {
			assert.Equal(t, events[i-1].Seq+1, events[i].Seq)
		}
	})

	t.Run("Invalid size", func(t *testing.T) {
		manager, _ := newTestManager(t)

		session, err := manager.Create(ctx, 11, entity.PlayerControl{})

		require.ErrorIs(t, err, apperror.ErrInvalidConfiguration)
		assert.Nil(t, session)
		assert.Empty(t, manager.sessions)
	})

	t.Run("Canceled context", func(t *testing.T) {
		manager, _ := newTestManager(t)

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := manager.Create(canceled, 5, entity.PlayerControl{})

		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestSessionManager_GetAndDelete(t *testing.T) {
	manager, _ := newTestManager(t)

	_, err := manager.Get("missing")
	require.ErrorIs(t, err, apperror.ErrSessionNotFound)

	session, err := manager.Create(context.Background(), 5, entity.PlayerControl{})
	require.NoError(t, err)

	require.NoError(t, manager.Delete(session.ID))

	_, err = manager.Get(session.ID)
	require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	require.ErrorIs(t, manager.Delete(session.ID), apperror.ErrSessionNotFound)

	_, err = manager.Events(session.ID, 0)
	require.ErrorIs(t, err, apperror.ErrSessionNotFound)
}

func TestSessionManager_Play(t *testing.T) {
	ctx := context.Background()

	t.Run("Out of range tile", func(t *testing.T) {
		manager, _ := newTestManager(t)
		session, err := manager.Create(ctx, 5, entity.PlayerControl{})
		require.NoError(t, err)

		// When: a tile outside the board is selected
		state, err := manager.SelectTile(session.ID, entity.Coordinate{Row: 5, Col: 0})

		// Then: it is rejected and the state is still returned
		require.ErrorIs(t, err, apperror.ErrInvalidCoordinate)
		assert.Equal(t, engine.StatusSelecting, state.Status)
		assert.Empty(t, state.Selection)
	})

	t.Run("Selection is kept between calls", func(t *testing.T) {
		manager, _ := newTestManager(t)
		session, err := manager.Create(ctx, 5, entity.PlayerControl{})
		require.NoError(t, err)

		state, err := manager.SelectTile(session.ID, entity.Coordinate{Row: 0, Col: 0})

		require.NoError(t, err)
		assert.Equal(t, []entity.Coordinate{{Row: 0, Col: 0}}, state.Selection)
	})

	t.Run("Skip is announced", func(t *testing.T) {
		manager, _ := newTestManager(t)
		session, err := manager.Create(ctx, 7, entity.PlayerControl{})
		require.NoError(t, err)

		before, err := manager.Events(session.ID, 0)
		require.NoError(t, err)
		last := before[len(before)-1].Seq

		_, err = manager.SkipTurn(session.ID)
		require.NoError(t, err)

		events, err := manager.Events(session.ID, last)
		require.NoError(t, err)
		require.NotEmpty(t, events)
		assert.Greater(t, events[0].Seq, last)
		assert.Equal(t, "O has skipped their turn.", messages(events)[0])
	})

	t.Run("Unknown session", func(t *testing.T) {
		manager, _ := newTestManager(t)

		_, err := manager.SkipTurn("missing")

		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("Manual robot move", func(t *testing.T) {
		manager, _ := newTestManager(t, engine.WithManualRobotDelay(0))
		session, err := manager.Create(ctx, 6, entity.PlayerControl{})
		require.NoError(t, err)

		_, err = manager.RequestRobotMove(session.ID)
		require.NoError(t, err)

		assert.Eventually(t, func() bool {
			score := session.State().Score
			return score.O+score.X >= 2
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("Configure restarts the game", func(t *testing.T) {
		manager, _ := newTestManager(t)
		session, err := manager.Create(ctx, 7, entity.PlayerControl{})
		require.NoError(t, err)

		state, err := manager.Configure(session.ID, 4, entity.PlayerControl{})

		require.NoError(t, err)
		assert.Equal(t, 4, state.Board.Size())
		assert.Equal(t, engine.StatusSelecting, state.Status)
		assert.Equal(t, entity.Score{}, state.Score)

		state, err = manager.Configure(session.ID, 2, entity.PlayerControl{})

		require.ErrorIs(t, err, apperror.ErrInvalidConfiguration)
		assert.Equal(t, 4, state.Board.Size())
	})
}

func TestSessionManager_RecordsResults(t *testing.T) {
	t.Run("Robot game is saved", func(t *testing.T) {
		manager, repo := newTestManager(t, engine.WithRobotDelay(0))

		saved := make(chan entity.Result, 1)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*entity.Result")).
			Run(func(args mock.Arguments) {
				saved <- *args.Get(1).(*entity.Result)
			}).
			Return(nil).
			Once()

		// Given: a robot-vs-robot game without delays
		session, err := manager.Create(context.Background(), 3, entity.PlayerControl{O: entity.Robot, X: entity.Robot})
		require.NoError(t, err)

		// When: it runs to the end
		require.Eventually(t, func() bool {
			return session.State().Status == engine.StatusGameOver
		}, 5*time.Second, 5*time.Millisecond)

		// Then: its result is saved with a fresh id
		select {
		case result := <-saved:
			assert.NotEmpty(t, result.ID)
			assert.Equal(t, 3, result.BoardSize)
			assert.Equal(t, session.State().Result.Score, result.Score)
		case <-time.After(5 * time.Second):
			t.Fatal("result was not saved")
		}
	})

	t.Run("Save failure is only logged", func(t *testing.T) {
		manager, repo := newTestManager(t, engine.WithRobotDelay(0))

		repo.On("Save", mock.Anything, mock.Anything).Return(errRedisDown).Once()

		session, err := manager.Create(context.Background(), 3, entity.PlayerControl{O: entity.Robot, X: entity.Robot})
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			return session.State().Status == engine.StatusGameOver
		}, 5*time.Second, 5*time.Millisecond)

		manager.Close()
		assert.Equal(t, engine.StatusGameOver, session.State().Status)
	})
}

func TestSessionManager_Results(t *testing.T) {
	manager, repo := newTestManager(t)

	expected := []entity.Result{entity.NewResult(entity.Score{O: 3, X: 1})}
	repo.On("ListRecent", mock.Anything, int64(5)).Return(expected, nil).Once()
	repo.On("ListRecent", mock.Anything, int64(1)).Return(nil, errRedisDown).Once()

	results, err := manager.Results(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, expected, results)

	_, err = manager.Results(context.Background(), 1)
	require.ErrorIs(t, err, errRedisDown)
}

func TestSessionManager_Watch(t *testing.T) {
	manager, _ := newTestManager(t)

	session, err := manager.Create(context.Background(), 5, entity.PlayerControl{})
	require.NoError(t, err)

	// Given: a watcher that has seen every event
	events, changed, err := manager.Watch(session.ID, 0)
	require.NoError(t, err)
	last := events[len(events)-1].Seq

	select {
	case <-changed:
		t.Fatal("nothing happened yet")
	default:
	}

	// When: the player skips
	_, err = manager.SkipTurn(session.ID)
	require.NoError(t, err)

	// Then: the watcher is woken up and sees the new events
	select {
	case <-changed:
	case <-time.After(time.Second):
		t.Fatal("watcher was not notified")
	}

	events, _, err = manager.Watch(session.ID, last)
	require.NoError(t, err)
	assert.Equal(t, "O has skipped their turn.", messages(events)[0])

	_, _, err = manager.Watch("missing", 0)
	require.ErrorIs(t, err, apperror.ErrSessionNotFound)
}

func TestEventLog_KeepsNewest(t *testing.T) {
	log := newEventLog()

	for range maxEvents + 10 {
		log.Message("tick", engine.SeverityInfo)
	}

	events := log.after(0)
	require.Len(t, events, maxEvents)
	assert.Equal(t, int64(11), events[0].Seq)
	assert.Equal(t, int64(maxEvents+10), events[len(events)-1].Seq)
	assert.Empty(t, log.after(int64(maxEvents+10)))
}
