package ws

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"trimchat/domain"
	"trimchat/domain/event"
)

func TestSink_Consume_Buffers(t *testing.T) {
	req := require.New(t)
	sink := NewSink(2)

	e := event.Message{Envelope: domain.NewEnvelope("alice", "hello", "")}
	req.NoError(sink.Consume(context.Background(), e))
	req.Len(sink.Events, 1)
}

func TestSink_Consume_Full_Buffer_Drops(t *testing.T) {
	req := require.New(t)
	sink := NewSink(1)

	e := event.TypingStopped{Username: "alice"}
	req.NoError(sink.Consume(context.Background(), e))

	// A full buffer rejects instead of blocking the router
	req.ErrorIs(sink.Consume(context.Background(), e), errSinkFull)
}

func TestSink_Consume_Canceled_Context(t *testing.T) {
	req := require.New(t)
	sink := NewSink(1)
	req.NoError(sink.Consume(context.Background(), event.TypingStopped{Username: "alice"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// With the buffer full, a canceled context can surface instead of the
	// drop; either way the call returns immediately with an error.
	req.Error(sink.Consume(ctx, event.TypingStopped{Username: "alice"}))
}
