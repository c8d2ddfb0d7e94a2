//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"trimchat/domain/event"
	"trimchat/repositories"
)

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is one client's outbound channel. Sinks must never block the
// caller: delivery is best effort to currently-connected members.
type EventSink interface {
	Consume(ctx context.Context, e event.Event) error
}

// MessageStore is the durable counterpart of broadcast envelopes.
// All failures are logged by callers, never surfaced to rooms.
type MessageStore interface {
	InsertMessage(rec repositories.StoredMessage) (uint64, error)
	UpdateMessage(id uint64, text string) error
	DeleteMessage(id uint64) error
	RoomMessages(room string) ([]repositories.StoredMessage, error)
}

// Responder is the optional reply collaborator behind the room bot.
// Implementations may be slow; callers bound them with a context.
type Responder interface {
	GenerateReply(ctx context.Context, prompt string) (string, error)
}

// BotPrompt is a chat body that triggered the room bot, queued for the
// responder worker.
type BotPrompt struct {
	Room   string
	Prompt string
}
