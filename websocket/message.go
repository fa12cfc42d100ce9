package websocket

import (
	"encoding/json"

	"github.com/egor/vicai/models"
	"github.com/egor/vicai/service"
)

// Frame types.
const (
	TypeResult = "result"
	TypeError  = "error"
	TypeEvent  = "event"
)

// WebSocketMessage is the envelope of every outgoing frame.
type WebSocketMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewMessage wraps payload in an envelope of the given type.
func NewMessage(messageType string, payload interface{}) ([]byte, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(WebSocketMessage{
		Type:    messageType,
		Payload: payloadJSON,
	})
}

func NewResultMessage(res models.ChatResponse) ([]byte, error) {
	return NewMessage(TypeResult, res)
}

// NewErrorMessage carries the same body as the HTTP error plus its status.
func NewErrorMessage(status int, body models.ErrorResponse) ([]byte, error) {
	payload := struct {
		Status int `json:"status"`
		models.ErrorResponse
	}{status, body}
	return NewMessage(TypeError, payload)
}

func NewEventMessage(ev service.Event) ([]byte, error) {
	return NewMessage(TypeEvent, ev)
}
