// Package runtime owns the live room state: the presence registry, the
// broadcast router, and the persistence reconciler. It contains no
// transport or storage logic of its own.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/samber/lo"

	"trimchat/contract"
	"trimchat/domain"
	"trimchat/domain/event"
	"trimchat/moderation"
	"trimchat/observability"
)

// Persistence receives durable-state requests without blocking.
type Persistence interface {
	Enqueue(req StoreRequest) bool
}

// Router is the connection-event state machine. Each connection moves
// through unjoined -> joined -> disconnected; every inbound command is
// matched exhaustively and fans out to one of three audiences: the
// sender alone, the room minus the sender, or the whole room.
//
// Edits and deletes deliberately carry no authorship check: any room
// member may target any message. That mirrors the system this protocol
// is compatible with and is a known limitation, not an oversight.
type Router struct {
	log         *slog.Logger
	registry    *Registry
	persistence Persistence
	moderator   *moderation.Moderator // nil disables censoring
	stats       *observability.Stats

	botName   string
	botPrefix string
	botAvatar string
	prompts   chan<- contract.BotPrompt // nil disables the bot
}

func NewRouter(log *slog.Logger, registry *Registry, persistence Persistence,
	moderator *moderation.Moderator, stats *observability.Stats,
	botName, botPrefix string, prompts chan<- contract.BotPrompt) *Router {
	return &Router{
		log:         log,
		registry:    registry,
		persistence: persistence,
		moderator:   moderator,
		stats:       stats,
		botName:     botName,
		botPrefix:   botPrefix,
		botAvatar:   domain.BotAvatar(botName),
		prompts:     prompts,
	}
}

// Dispatch processes one inbound command for a connection. Malformed
// commands and commands from unknown senders are dropped silently; no
// user-visible error channel exists for in-room operations.
func (r *Router) Dispatch(ctx context.Context, connID string, cmd domain.Command) {
	switch c := cmd.(type) {
	case domain.JoinRoom:
		r.handleJoin(ctx, connID, c)
	case domain.PostMessage:
		r.handleChat(ctx, connID, c)
	case domain.EditMessage:
		r.handleEdit(ctx, connID, c)
	case domain.DeleteMessage:
		r.handleDelete(ctx, connID, c)
	case domain.ReadMessage:
		r.handleRead(ctx, connID, c)
	case domain.StartTyping:
		r.handleTyping(ctx, connID)
	case domain.StopTyping:
		r.handleStopTyping(ctx, connID)
	case domain.Disconnect:
		r.handleDisconnect(ctx, connID)
	}
}

func (r *Router) handleJoin(ctx context.Context, connID string, c domain.JoinRoom) {
	if strings.TrimSpace(c.Username) == "" || strings.TrimSpace(c.Room) == "" {
		return
	}
	p, ok := r.registry.Join(connID, c.Username, c.Room, c.CustomAvatar)
	if !ok {
		return
	}

	welcome := domain.NewEnvelope(r.botName, "Welcome to TrimChat!", r.botAvatar)
	if sink, ok := r.registry.Sink(connID); ok {
		r.emit(ctx, sink, event.Message{Envelope: welcome})
	}

	joined := domain.NewEnvelope(r.botName, fmt.Sprintf("%s has joined the chat", p.Username), r.botAvatar)
	r.broadcast(ctx, p.Room, connID, event.Message{Envelope: joined})

	r.broadcast(ctx, p.Room, "", r.rosterSnapshot(p.Room))

	r.log.Info("Participant joined", "username", p.Username, "room", p.Room)
}

func (r *Router) handleChat(ctx context.Context, connID string, c domain.PostMessage) {
	if strings.TrimSpace(c.Body) == "" {
		return
	}
	p, ok := r.registry.Lookup(connID)
	if !ok {
		return
	}

	r.postChat(ctx, p.Username, p.Avatar, p.Room, c.Body)

	if r.prompts != nil && r.isBotTrigger(c.Body) {
		select {
		case r.prompts <- contract.BotPrompt{Room: p.Room, Prompt: c.Body}:
		default:
			r.log.Warn("Bot prompt buffer full, dropping prompt", "room", p.Room)
		}
	}
}

// PostChat routes a message through the regular chat path on behalf of
// any identity: censor, broadcast to the whole room with the provisional
// id, then dispatch persistence without awaiting it. The bot worker uses
// it for replies so they persist like any member message.
func (r *Router) PostChat(author, avatar, room, text string) domain.Envelope {
	return r.postChat(context.Background(), author, avatar, room, text)
}

func (r *Router) postChat(ctx context.Context, author, avatar, room, text string) domain.Envelope {
	env := domain.NewEnvelope(author, r.censor(author, text), avatar)
	r.broadcast(ctx, room, "", event.Message{Envelope: env})
	r.persistence.Enqueue(InsertRequest{Envelope: env, Room: room})
	return env
}

func (r *Router) handleEdit(ctx context.Context, connID string, c domain.EditMessage) {
	if c.ID == "" || strings.TrimSpace(c.Text) == "" {
		return
	}
	p, ok := r.registry.Lookup(connID)
	if !ok {
		return
	}
	text := r.censor(p.Username, c.Text)
	r.broadcast(ctx, p.Room, "", event.MessageUpdated{ID: c.ID, Text: text})
	r.persistence.Enqueue(UpdateRequest{ID: c.ID, Text: text})
}

func (r *Router) handleDelete(ctx context.Context, connID string, c domain.DeleteMessage) {
	if c.ID == "" {
		return
	}
	p, ok := r.registry.Lookup(connID)
	if !ok {
		return
	}
	r.broadcast(ctx, p.Room, "", event.MessageDeleted{ID: c.ID})
	r.persistence.Enqueue(DeleteRequest{ID: c.ID})
}

func (r *Router) handleRead(ctx context.Context, connID string, c domain.ReadMessage) {
	if c.ID == "" {
		return
	}
	p, ok := r.registry.Lookup(connID)
	if !ok {
		return
	}
	// The reader is included on purpose: status fan-out is not scoped.
	r.broadcast(ctx, p.Room, "", event.MessageStatusUpdated{ID: c.ID, Status: domain.StatusSeen})
}

// Typing state is relayed verbatim: the server performs no debouncing,
// deduplication, or rate limiting. Clients own the quiet-interval timer.
func (r *Router) handleTyping(ctx context.Context, connID string) {
	p, ok := r.registry.Lookup(connID)
	if !ok {
		return
	}
	r.broadcast(ctx, p.Room, connID, event.Typing{Username: p.Username, Avatar: p.Avatar})
}

func (r *Router) handleStopTyping(ctx context.Context, connID string) {
	p, ok := r.registry.Lookup(connID)
	if !ok {
		return
	}
	r.broadcast(ctx, p.Room, connID, event.TypingStopped{Username: p.Username})
}

func (r *Router) handleDisconnect(ctx context.Context, connID string) {
	p, ok := r.registry.Leave(connID)
	if !ok {
		// Never joined, or already left: nothing to announce.
		return
	}

	left := domain.NewEnvelope(r.botName, fmt.Sprintf("%s has left the chat", p.Username), r.botAvatar)
	r.broadcast(ctx, p.Room, "", event.Message{Envelope: left})
	r.broadcast(ctx, p.Room, "", r.rosterSnapshot(p.Room))

	r.log.Info("Participant left", "username", p.Username, "room", p.Room)
}

// BroadcastRoom implements Broadcaster for the reconciler's corrections.
func (r *Router) BroadcastRoom(room string, e event.Event) {
	r.broadcast(context.Background(), room, "", e)
}

func (r *Router) broadcast(ctx context.Context, room, exceptConnID string, e event.Event) {
	for _, sink := range r.registry.RoomSinks(room, exceptConnID) {
		r.emit(ctx, sink, e)
	}
}

func (r *Router) emit(ctx context.Context, sink contract.EventSink, e event.Event) {
	if err := sink.Consume(ctx, e); err != nil {
		r.stats.IncrEventsDropped()
		r.log.Debug("Event dropped", "event", e.Name(), "error", err)
		return
	}
	r.stats.IncrEventsBroadcast()
}

func (r *Router) rosterSnapshot(room string) event.RoomUsers {
	members := r.registry.RoomMembers(room)
	return event.RoomUsers{
		Room: room,
		Users: lo.Map(members, func(p domain.Participant, _ int) event.RosterEntry {
			return event.RosterEntry{Username: p.Username, Avatar: p.Avatar}
		}),
	}
}

func (r *Router) censor(author, text string) string {
	if r.moderator == nil {
		return text
	}
	censored, found := r.moderator.Censor(text)
	if len(found) > 0 {
		info := whatlanggo.Detect(text)
		r.log.Warn("Censored message body",
			"author", author,
			"words", len(found),
			"lang", info.Lang.Iso6391())
	}
	return censored
}

func (r *Router) isBotTrigger(body string) bool {
	lower := strings.ToLower(body)
	if r.botPrefix != "" && strings.HasPrefix(lower, strings.ToLower(r.botPrefix)) {
		return true
	}
	return strings.Contains(lower, strings.ToLower(r.botName))
}
