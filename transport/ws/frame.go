package ws

import (
	"encoding/json"
	"fmt"

	"trimchat/domain"
	"trimchat/domain/event"
)

// Frame is the wire envelope of every websocket message, inbound and
// outbound: a named event plus its JSON payload.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type joinRoomPayload struct {
	Username     string `json:"username"`
	Room         string `json:"room"`
	CustomAvatar string `json:"customAvatar,omitempty"`
}

type editMessagePayload struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// DecodeCommand maps an inbound frame onto the closed command set.
// Unknown event names and malformed payloads are errors; the read loop
// logs and drops them without closing the connection.
func DecodeCommand(f Frame) (domain.Command, error) {
	switch f.Event {
	case "joinRoom":
		var p joinRoomPayload
		if err := json.Unmarshal(f.Data, &p); err != nil {
			return nil, fmt.Errorf("decode joinRoom: %w", err)
		}
		return domain.JoinRoom{Username: p.Username, Room: p.Room, CustomAvatar: p.CustomAvatar}, nil
	case "chatMessage":
		var body string
		if err := json.Unmarshal(f.Data, &body); err != nil {
			return nil, fmt.Errorf("decode chatMessage: %w", err)
		}
		return domain.PostMessage{Body: body}, nil
	case "editMessage":
		var p editMessagePayload
		if err := json.Unmarshal(f.Data, &p); err != nil {
			return nil, fmt.Errorf("decode editMessage: %w", err)
		}
		return domain.EditMessage{ID: p.ID, Text: p.Text}, nil
	case "deleteMessage":
		var id string
		if err := json.Unmarshal(f.Data, &id); err != nil {
			return nil, fmt.Errorf("decode deleteMessage: %w", err)
		}
		return domain.DeleteMessage{ID: id}, nil
	case "readMessage":
		var id string
		if err := json.Unmarshal(f.Data, &id); err != nil {
			return nil, fmt.Errorf("decode readMessage: %w", err)
		}
		return domain.ReadMessage{ID: id}, nil
	case "typing":
		return domain.StartTyping{}, nil
	case "stopTyping":
		return domain.StopTyping{}, nil
	default:
		return nil, fmt.Errorf("unknown event %q", f.Event)
	}
}

// EncodeEvent wraps an outbound event into its wire frame.
func EncodeEvent(e event.Event) (Frame, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return Frame{}, fmt.Errorf("encode %s: %w", e.Name(), err)
	}
	return Frame{Event: e.Name(), Data: data}, nil
}
