package workers

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"trimchat/contract"
	"trimchat/domain"
	"trimchat/domain/event"
	"trimchat/observability"
)

// RoomPoster is the slice of the router the bot needs: broadcasting its
// typing state and posting replies through the regular chat path.
type RoomPoster interface {
	PostChat(author, avatar, room, text string) domain.Envelope
	BroadcastRoom(room string, e event.Event)
}

// ResponderWorker serves queued bot prompts one at a time. Each reply is
// bracketed with a typing start/stop broadcast under the bot's fixed
// identity, then dispatched through the chat path so it persists like
// any member message. A failed or empty reply degrades to no reply; the
// room is never told.
type ResponderWorker struct {
	log          *slog.Logger
	responder    contract.Responder
	prompts      <-chan contract.BotPrompt
	poster       RoomPoster
	stats        *observability.Stats
	botName      string
	botAvatar    string
	replyTimeout time.Duration
}

func NewResponderWorker(log *slog.Logger, responder contract.Responder,
	prompts <-chan contract.BotPrompt, poster RoomPoster,
	stats *observability.Stats, botName string, replyTimeout time.Duration) *ResponderWorker {
	return &ResponderWorker{
		log:          log,
		responder:    responder,
		prompts:      prompts,
		poster:       poster,
		stats:        stats,
		botName:      botName,
		botAvatar:    domain.BotAvatar(botName),
		replyTimeout: replyTimeout,
	}
}

func (w *ResponderWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping responder worker")
			return ctx.Err()
		case prompt, ok := <-w.prompts:
			if !ok {
				return nil
			}
			w.reply(ctx, prompt)
		}
	}
}

func (w *ResponderWorker) reply(ctx context.Context, prompt contract.BotPrompt) {
	w.poster.BroadcastRoom(prompt.Room, event.Typing{Username: w.botName, Avatar: w.botAvatar})

	replyCtx, cancel := context.WithTimeout(ctx, w.replyTimeout)
	reply, err := w.responder.GenerateReply(replyCtx, prompt.Prompt)
	cancel()

	w.poster.BroadcastRoom(prompt.Room, event.TypingStopped{Username: w.botName})

	if err != nil {
		w.log.Warn("Responder failed, skipping reply", "room", prompt.Room, "error", err)
		return
	}
	if strings.TrimSpace(reply) == "" {
		w.log.Warn("Responder returned empty reply", "room", prompt.Room)
		return
	}

	w.poster.PostChat(w.botName, w.botAvatar, prompt.Room, reply)
	w.stats.IncrBotReplies()
}
