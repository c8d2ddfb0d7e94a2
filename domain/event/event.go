// Package event defines the closed set of outbound events pushed to
// connected clients. One variant exists per wire event; the websocket
// layer maps Name() to the frame's event field.
package event

import "trimchat/domain"

type Event interface {
	// Name is the wire-level event name seen by clients.
	Name() string
}

// Message delivers a chat or system envelope. The envelope still carries
// its provisional id; MessageIDChanged follows once persistence lands.
type Message struct {
	domain.Envelope
}

// MessageIDChanged supersedes a provisional identifier with the durable
// one assigned by the store. Clients patch the rendered message in place.
type MessageIDChanged struct {
	ProvisionalID string `json:"provisionalId"`
	ID            uint64 `json:"id"`
}

// MessageDeleted removes a message from every client's view.
type MessageDeleted struct {
	ID string `json:"id"`
}

// MessageUpdated rewrites a message body in every client's view.
type MessageUpdated struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// MessageStatusUpdated carries an advisory delivery status change.
type MessageStatusUpdated struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// RosterEntry is one participant in a room snapshot.
type RosterEntry struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// RoomUsers is the full roster snapshot of a room, insertion-ordered.
type RoomUsers struct {
	Room  string        `json:"room"`
	Users []RosterEntry `json:"users"`
}

// Typing and TypingStopped relay another member's typing state.
type Typing struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

type TypingStopped struct {
	Username string `json:"username"`
}

func (Message) Name() string              { return "message" }
func (MessageIDChanged) Name() string     { return "messageIdChanged" }
func (MessageDeleted) Name() string       { return "messageDeleted" }
func (MessageUpdated) Name() string       { return "messageUpdated" }
func (MessageStatusUpdated) Name() string { return "messageStatusUpdated" }
func (RoomUsers) Name() string            { return "roomUsers" }
func (Typing) Name() string               { return "typing" }
func (TypingStopped) Name() string        { return "stopTyping" }
