package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/trio-backend/internal/apperror"
	"github.com/rocketscienceinc/trio-backend/internal/engine"
	"github.com/rocketscienceinc/trio-backend/internal/entity"
)

const (
	actionTile   = "game:tile"
	actionSkip   = "game:skip"
	actionRobot  = "game:robot"
	actionConfig = "game:config"

	actionEvent = "event"
	actionError = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type errorPayload struct {
	Action string `json:"action,omitempty"`
	Error  string `json:"error"`
}

type configPayload struct {
	Size    int                   `json:"size"`
	Control *entity.PlayerControl `json:"control"`
	Robot   *string               `json:"robot"`
}

// State changes come back as events, so handlers only report failures.

func (that *Server) handleTile(id string, message *Message) error {
	var c entity.Coordinate
	if err := json.Unmarshal(message.Payload, &c); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	_, err := that.sessions.SelectTile(id, c)

	return err
}

func (that *Server) handleSkip(id string, _ *Message) error {
	_, err := that.sessions.SkipTurn(id)
	return err
}

func (that *Server) handleRobot(id string, _ *Message) error {
	_, err := that.sessions.RequestRobotMove(id)
	return err
}

func (that *Server) handleConfig(id string, message *Message) error {
	payload := configPayload{}
	if len(message.Payload) > 0 {
		if err := json.Unmarshal(message.Payload, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}
	}

	size := payload.Size
	if size == 0 {
		size = engine.DefaultBoardSize
	}

	control := entity.PlayerControl{}
	switch {
	case payload.Robot != nil:
		parsed, err := entity.ParsePlayerControl(*payload.Robot)
		if err != nil {
			return fmt.Errorf("%w: %w", apperror.ErrInvalidConfiguration, err)
		}
		control = parsed
	case payload.Control != nil:
		control = *payload.Control
	}

	_, err := that.sessions.Configure(id, size, control)

	return err
}
