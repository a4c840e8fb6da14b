package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/trio-backend/internal/apperror"
	"github.com/rocketscienceinc/trio-backend/internal/engine"
	"github.com/rocketscienceinc/trio-backend/internal/entity"
	"github.com/rocketscienceinc/trio-backend/internal/usecase"
)

var errBadRequest = errors.New("bad request")

type GameHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	SelectTile(w http.ResponseWriter, r *http.Request)
	SkipTurn(w http.ResponseWriter, r *http.Request)
	RobotMove(w http.ResponseWriter, r *http.Request)
	Configure(w http.ResponseWriter, r *http.Request)
	Events(w http.ResponseWriter, r *http.Request)
	Results(w http.ResponseWriter, r *http.Request)
}

type sessionUseCase interface {
	Create(ctx context.Context, size int, control entity.PlayerControl) (*usecase.Session, error)
	Get(id string) (*usecase.Session, error)
	Delete(id string) error
	SelectTile(id string, c entity.Coordinate) (engine.Snapshot, error)
	SkipTurn(id string) (engine.Snapshot, error)
	RequestRobotMove(id string) (engine.Snapshot, error)
	Configure(id string, size int, control entity.PlayerControl) (engine.Snapshot, error)
	Events(id string, after int64) ([]usecase.Event, error)
	Results(ctx context.Context, limit int64) ([]entity.Result, error)
}

// GameDefaults fill in what a create or configure request leaves out.
type GameDefaults struct {
	BoardSize    int
	Control      entity.PlayerControl
	ResultsLimit int64
}

type gameHandler struct {
	logger   *slog.Logger
	sessions sessionUseCase
	defaults GameDefaults
}

func NewGameHandler(logger *slog.Logger, sessions sessionUseCase, defaults GameDefaults) GameHandler {
	return &gameHandler{
		logger:   logger.With("component", "rest"),
		sessions: sessions,
		defaults: defaults,
	}
}

// gameRequest - control names each side, robot is the "neither|O|X|both" shorthand.
type gameRequest struct {
	Size    int                   `json:"size"`
	Control *entity.PlayerControl `json:"control"`
	Robot   *string               `json:"robot"`
}

type gameResponse struct {
	ID           string `json:"id"`
	Instructions string `json:"instructions,omitempty"`
	engine.Snapshot
}

type errorResponse struct {
	Error string        `json:"error"`
	Game  *gameResponse `json:"game,omitempty"`
}

type eventsResponse struct {
	Events []usecase.Event `json:"events"`
}

type resultsResponse struct {
	Results []entity.Result `json:"results"`
}

func (that *gameHandler) Create(w http.ResponseWriter, r *http.Request) {
	size, control, err := that.decodeGameRequest(r)
	if err != nil {
		that.writeError(w, err, nil)
		return
	}

	session, err := that.sessions.Create(r.Context(), size, control)
	if err != nil {
		that.writeError(w, err, nil)
		return
	}

	writeJSON(w, http.StatusCreated, gameResponse{
		ID:           session.ID,
		Instructions: engine.Instructions,
		Snapshot:     session.State(),
	})
}

func (that *gameHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	session, err := that.sessions.Get(id)
	if err != nil {
		that.writeError(w, err, nil)
		return
	}

	writeJSON(w, http.StatusOK, gameResponse{ID: id, Snapshot: session.State()})
}

func (that *gameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := that.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		that.writeError(w, err, nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *gameHandler) SelectTile(w http.ResponseWriter, r *http.Request) {
	var c entity.Coordinate
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		that.writeError(w, fmt.Errorf("%w: %w", errBadRequest, err), nil)
		return
	}

	id := chi.URLParam(r, "id")
	state, err := that.sessions.SelectTile(id, c)
	that.writeState(w, id, state, err)
}

func (that *gameHandler) SkipTurn(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, err := that.sessions.SkipTurn(id)
	that.writeState(w, id, state, err)
}

func (that *gameHandler) RobotMove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, err := that.sessions.RequestRobotMove(id)
	that.writeState(w, id, state, err)
}

func (that *gameHandler) Configure(w http.ResponseWriter, r *http.Request) {
	size, control, err := that.decodeGameRequest(r)
	if err != nil {
		that.writeError(w, err, nil)
		return
	}

	id := chi.URLParam(r, "id")
	state, err := that.sessions.Configure(id, size, control)
	that.writeState(w, id, state, err)
}

func (that *gameHandler) Events(w http.ResponseWriter, r *http.Request) {
	after, err := queryInt(r, "after", 0)
	if err != nil {
		that.writeError(w, err, nil)
		return
	}

	events, err := that.sessions.Events(chi.URLParam(r, "id"), after)
	if err != nil {
		that.writeError(w, err, nil)
		return
	}

	if events == nil {
		events = []usecase.Event{}
	}

	writeJSON(w, http.StatusOK, eventsResponse{Events: events})
}

func (that *gameHandler) Results(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", that.defaults.ResultsLimit)
	if err != nil {
		that.writeError(w, err, nil)
		return
	}

	results, err := that.sessions.Results(r.Context(), limit)
	if err != nil {
		that.writeError(w, err, nil)
		return
	}

	if results == nil {
		results = []entity.Result{}
	}

	writeJSON(w, http.StatusOK, resultsResponse{Results: results})
}

func (that *gameHandler) decodeGameRequest(r *http.Request) (int, entity.PlayerControl, error) {
	request := gameRequest{}

	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			return 0, entity.PlayerControl{}, fmt.Errorf("%w: %w", errBadRequest, err)
		}
	}

	size := request.Size
	if size == 0 {
		size = that.defaults.BoardSize
	}

	switch {
	case request.Robot != nil:
		control, err := entity.ParsePlayerControl(*request.Robot)
		if err != nil {
			return 0, entity.PlayerControl{}, fmt.Errorf("%w: %w", apperror.ErrInvalidConfiguration, err)
		}
		return size, control, nil
	case request.Control != nil:
		return size, *request.Control, nil
	default:
		return size, that.defaults.Control, nil
	}
}

// writeState - the game state, or the error together with the state it left behind.
func (that *gameHandler) writeState(w http.ResponseWriter, id string, state engine.Snapshot, err error) {
	if err != nil {
		if errors.Is(err, apperror.ErrSessionNotFound) {
			that.writeError(w, err, nil)
			return
		}

		that.writeError(w, err, &gameResponse{ID: id, Snapshot: state})
		return
	}

	writeJSON(w, http.StatusOK, gameResponse{ID: id, Snapshot: state})
}

func (that *gameHandler) writeError(w http.ResponseWriter, err error, game *gameResponse) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "error", err)
	}

	writeJSON(w, status, errorResponse{Error: err.Error(), Game: game})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrSessionNotFound),
		errors.Is(err, apperror.ErrResultNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, apperror.ErrInvalidCoordinate),
		errors.Is(err, apperror.ErrInvalidConfiguration),
		errors.Is(err, entity.ErrUnknownController),
		errors.Is(err, entity.ErrUnknownSymbol):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrIllegalMove):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperror.ErrGameOver),
		errors.Is(err, apperror.ErrGameNotStarted),
		errors.Is(err, apperror.ErrRobotMovePending),
		errors.Is(err, apperror.ErrNoAvailableMoves),
		errors.Is(err, apperror.ErrTileTaken):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func queryInt(r *http.Request, name string, fallback int64) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", errBadRequest, name)
	}

	return value, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
