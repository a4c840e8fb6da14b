package websocket

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/trio-backend/internal/engine"
	"github.com/rocketscienceinc/trio-backend/internal/entity"
	"github.com/rocketscienceinc/trio-backend/internal/usecase"
)

const pingInterval = 30 * time.Second

type sessionUseCase interface {
	Watch(id string, after int64) ([]usecase.Event, <-chan struct{}, error)
	SelectTile(id string, c entity.Coordinate) (engine.Snapshot, error)
	SkipTurn(id string) (engine.Snapshot, error)
	RequestRobotMove(id string) (engine.Snapshot, error)
	Configure(id string, size int, control entity.PlayerControl) (engine.Snapshot, error)
}

// Server streams the events of one game over a WebSocket and takes moves back.
type Server struct {
	logger   *slog.Logger
	sessions sessionUseCase

	handlers map[string]func(sessionID string, message *Message) error
}

func New(logger *slog.Logger, sessions sessionUseCase) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		sessions: sessions,
	}

	server.handlers = map[string]func(string, *Message) error{
		actionTile:   server.handleTile,
		actionSkip:   server.handleSkip,
		actionRobot:  server.handleRobot,
		actionConfig: server.handleConfig,
	}

	return server
}

// connection serializes writes coming from the event loop and the reader.
type connection struct {
	mu    sync.Mutex
	conn  net.Conn
	bufrw *bufio.ReadWriter
}

func (that *connection) write(f frame) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := writeFrame(that.bufrw, f); err != nil {
		return err
	}

	if err := that.bufrw.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}

	return nil
}

func (that *connection) send(action string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message, err := json.Marshal(Message{Action: action, Payload: raw})
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	return that.write(frame{isFin: true, opCode: opText, payload: message})
}

// Stream - upgrades GET /games/{id}/ws, replays events after ?after=N and
// follows the game until either side closes.
func (that *Server) Stream(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	log := that.logger.With("method", "Stream", "session", id)

	after := int64(0)
	if raw := r.URL.Query().Get("after"); raw != "" {
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || value < 0 {
			http.Error(w, "after must be a non-negative integer", http.StatusBadRequest)
			return
		}
		after = value
	}

	events, changed, err := that.sessions.Watch(id, after)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	conn, bufrw, err := upgrade(w, r)
	if errors.Is(err, ErrNotWebSocket) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	log.Info("WebSocket connection established")

	c := &connection{conn: conn, bufrw: bufrw}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go that.handleMessages(ctx, cancel, c, id)

	if err = that.follow(ctx, c, id, events, changed); err != nil {
		log.Debug("stream ended", "error", err)
	}

	_ = c.write(frame{isFin: true, opCode: opClose})

	log.Info("WebSocket connection closed")
}

// follow - pushes events until ctx is done or the session goes away.
func (that *Server) follow(ctx context.Context, c *connection, id string, events []usecase.Event, changed <-chan struct{}) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	var last int64
	for {
		for _, event := range events {
			if err := c.send(actionEvent, event); err != nil {
				return err
			}
			last = event.Seq
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		case <-ticker.C:
			if err := c.write(frame{isFin: true, opCode: opPing}); err != nil {
				return err
			}
		}

		var err error
		events, changed, err = that.sessions.Watch(id, last)
		if err != nil {
			_ = c.send(actionError, errorPayload{Error: err.Error()})
			return err
		}
	}
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, cancel context.CancelFunc, c *connection, id string) {
	defer cancel()

	log := that.logger.With("method", "handleMessages", "session", id)

	for ctx.Err() == nil {
		f, err := readFrame(c.bufrw)
		if err != nil {
			log.Debug("error reading frame", "error", err)
			return
		}

		switch f.opCode {
		case opClose:
			return
		case opPing:
			if err = c.write(frame{isFin: true, opCode: opPong, payload: f.payload}); err != nil {
				return
			}
			continue
		case opText:
		default:
			continue
		}

		if !f.isFin {
			_ = c.send(actionError, errorPayload{Error: "fragmented messages are not supported"})
			return
		}

		var message Message
		if err = json.Unmarshal(f.payload, &message); err != nil {
			log.Debug("failed to unmarshal message", "error", err)
			_ = c.send(actionError, errorPayload{Error: "malformed message"})
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			_ = c.send(actionError, errorPayload{Action: message.Action, Error: "unknown action"})
			continue
		}

		if err = handler(id, &message); err != nil {
			log.Debug("action failed", "action", message.Action, "error", err)
			_ = c.send(actionError, errorPayload{Action: message.Action, Error: err.Error()})
		}
	}
}
