package events

import (
	"encoding/json"
	"fmt"
)

// Envelope is the wire frame for both directions: an event name plus its
// typed payload. Ack carries a client-chosen id echoed back on success.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	Ack   int64           `json:"ack,omitempty"`
}

// ErrUnknownEvent is returned for event names outside the closed inbound set.
type ErrUnknownEvent struct {
	Event string
}

func (e ErrUnknownEvent) Error() string {
	return fmt.Sprintf("unknown event %q", e.Event)
}

// ParseInbound decodes a raw client frame into the envelope and one of the
// closed inbound payload variants. Callers dispatch with a type switch; the
// variant set here and the switch in the websocket handler must stay in sync.
func ParseInbound(raw []byte) (Envelope, any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, nil, fmt.Errorf("decode envelope: %w", err)
	}

	var payload any
	switch env.Event {
	case InboundJoinHome:
		payload = &JoinHome{}
	case InboundJoinRoom:
		payload = &JoinRoom{}
	case InboundLeaveRoom:
		payload = &LeaveRoom{}
	case InboundRoomMessage:
		payload = &RoomMessage{}
	case InboundDeleteChat:
		payload = &DeleteChat{}
	case InboundUpdateChatData:
		payload = &UpdateChatData{}
	case InboundJoinPrivateRoom:
		payload = &JoinPrivateRoom{}
	case InboundLeavePrivateRoom:
		payload = &LeavePrivateRoom{}
	case InboundPrivateMessage:
		payload = &PrivateMessage{}
	default:
		return env, nil, ErrUnknownEvent{Event: env.Event}
	}

	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, payload); err != nil {
			return env, nil, fmt.Errorf("decode %s payload: %w", env.Event, err)
		}
	}
	return env, payload, nil
}

// Encode wraps an outbound payload in the wire envelope.
func Encode(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}
