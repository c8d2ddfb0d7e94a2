package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"trimchat/domain"
	"trimchat/domain/event"
)

func TestDecodeCommand(t *testing.T) {
	req := require.New(t)

	tests := []struct {
		name     string
		frame    Frame
		expected domain.Command
	}{
		{
			"joinRoom",
			Frame{Event: "joinRoom", Data: json.RawMessage(`{"username":"alice","room":"general","customAvatar":"https://example.com/a.png"}`)},
			domain.JoinRoom{Username: "alice", Room: "general", CustomAvatar: "https://example.com/a.png"},
		},
		{
			"chatMessage carries a bare JSON string",
			Frame{Event: "chatMessage", Data: json.RawMessage(`"hello room"`)},
			domain.PostMessage{Body: "hello room"},
		},
		{
			"editMessage",
			Frame{Event: "editMessage", Data: json.RawMessage(`{"id":"42","text":"fixed"}`)},
			domain.EditMessage{ID: "42", Text: "fixed"},
		},
		{
			"deleteMessage",
			Frame{Event: "deleteMessage", Data: json.RawMessage(`"42"`)},
			domain.DeleteMessage{ID: "42"},
		},
		{
			"readMessage",
			Frame{Event: "readMessage", Data: json.RawMessage(`"42"`)},
			domain.ReadMessage{ID: "42"},
		},
		{
			"typing carries no payload",
			Frame{Event: "typing"},
			domain.StartTyping{},
		},
		{
			"stopTyping carries no payload",
			Frame{Event: "stopTyping"},
			domain.StopTyping{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := DecodeCommand(tt.frame)
			req.NoError(err)
			req.Equal(tt.expected, cmd)
		})
	}
}

func TestDecodeCommand_Rejects_Garbage(t *testing.T) {
	req := require.New(t)

	// Unknown event names are errors, not panics
	_, err := DecodeCommand(Frame{Event: "selfDestruct"})
	req.Error(err)

	// Payload of the wrong shape
	_, err = DecodeCommand(Frame{Event: "chatMessage", Data: json.RawMessage(`{"nested":"object"}`)})
	req.Error(err)

	_, err = DecodeCommand(Frame{Event: "joinRoom", Data: json.RawMessage(`"not an object"`)})
	req.Error(err)
}

func TestEncodeEvent(t *testing.T) {
	req := require.New(t)

	env := domain.NewEnvelope("alice", "hello", "")
	frame, err := EncodeEvent(event.Message{Envelope: env})
	req.NoError(err)
	req.Equal("message", frame.Event)

	var decoded domain.Envelope
	req.NoError(json.Unmarshal(frame.Data, &decoded))
	req.Equal(env, decoded)
}

func TestEncodeEvent_Correction_Wire_Shape(t *testing.T) {
	req := require.New(t)

	frame, err := EncodeEvent(event.MessageIDChanged{ProvisionalID: "prov-1", ID: 7})
	req.NoError(err)
	req.Equal("messageIdChanged", frame.Event)
	req.JSONEq(`{"provisionalId":"prov-1","id":7}`, string(frame.Data))
}
