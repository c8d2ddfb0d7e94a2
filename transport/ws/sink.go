package ws

import (
	"context"
	"fmt"

	"trimchat/domain/event"
)

var errSinkFull = fmt.Errorf("sink buffer full")

// Sink is one connection's outbound channel. The write pump drains it;
// Consume never blocks the router.
type Sink struct {
	Events chan event.Event
}

func NewSink(bufferSize int) *Sink {
	return &Sink{Events: make(chan event.Event, bufferSize)}
}

// Consume redirects the event to the owning connection's write pump.
// A full buffer rejects the event: delivery is best effort to
// currently-connected members, and a slow client must not stall a room.
func (s *Sink) Consume(ctx context.Context, e event.Event) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errSinkFull
	}
}
