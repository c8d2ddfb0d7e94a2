package domain

// Command is the closed set of inbound connection events. Each websocket
// frame decodes to exactly one variant; the router matches them
// exhaustively, so the protocol surface stays statically checkable.
type Command interface {
	isCommand()
}

// JoinRoom places the connection into a room under a display name.
type JoinRoom struct {
	Username     string
	Room         string
	CustomAvatar string
}

// PostMessage carries a chat body from a joined sender.
type PostMessage struct {
	Body string
}

// EditMessage rewrites the body of a previously sent message.
// Any room member may issue it; authorship is not checked.
type EditMessage struct {
	ID   string
	Text string
}

// DeleteMessage removes a previously sent message, again without an
// ownership check.
type DeleteMessage struct {
	ID string
}

// ReadMessage marks a message as seen by the issuing connection.
type ReadMessage struct {
	ID string
}

// StartTyping and StopTyping relay the sender's typing state.
type StartTyping struct{}
type StopTyping struct{}

// Disconnect is the transport-level close of the connection.
type Disconnect struct{}

func (JoinRoom) isCommand()      {}
func (PostMessage) isCommand()   {}
func (EditMessage) isCommand()   {}
func (DeleteMessage) isCommand() {}
func (ReadMessage) isCommand()   {}
func (StartTyping) isCommand()   {}
func (StopTyping) isCommand()    {}
func (Disconnect) isCommand()    {}
