// Package ws carries the websocket transport: the upgrade route, one
// read loop and one write pump per connection, and the frame codec that
// maps wire events onto domain commands.
package ws

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"trimchat/domain"
	"trimchat/observability"
	"trimchat/runtime"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

type Handler struct {
	log        *slog.Logger
	router     *runtime.Router
	registry   *runtime.Registry
	stats      *observability.Stats
	bufferSize int
}

func NewHandler(log *slog.Logger, router *runtime.Router, registry *runtime.Registry,
	stats *observability.Stats, bufferSize int) *Handler {
	return &Handler{
		log:        log,
		router:     router,
		registry:   registry,
		stats:      stats,
		bufferSize: bufferSize,
	}
}

// Upgrade gates the websocket route on an actual upgrade request.
func (h *Handler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Serve owns one connection for its whole lifetime. The read loop runs
// on the handler goroutine; the write pump drains the connection's sink
// concurrently. Whatever ends the read loop triggers the synthesized
// disconnect, exactly once.
func (h *Handler) Serve() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		connID := uuid.NewString()
		sink := NewSink(h.bufferSize)
		h.registry.Connect(connID, sink)
		h.stats.IncrConnectionsOpened()
		h.log.Debug("Connection opened", "conn_id", connID)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go h.writePump(c, sink, done)

		h.readLoop(ctx, c, connID)

		h.router.Dispatch(ctx, connID, domain.Disconnect{})
		cancel()
		close(done)
		h.stats.IncrConnectionsClosed()
		h.log.Debug("Connection closed", "conn_id", connID)
	})
}

func (h *Handler) readLoop(ctx context.Context, c *websocket.Conn, connID string) {
	c.SetReadLimit(maxMessageSize)
	c.SetReadDeadline(time.Now().Add(pongWait))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame Frame
		if err := c.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("Read failed", "conn_id", connID, "error", err)
			}
			return
		}

		cmd, err := DecodeCommand(frame)
		if err != nil {
			// Malformed traffic is dropped, the connection stays up.
			h.log.Debug("Dropping frame", "conn_id", connID, "error", err)
			continue
		}
		h.router.Dispatch(ctx, connID, cmd)
	}
}

func (h *Handler) writePump(c *websocket.Conn, sink *Sink, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case e := <-sink.Events:
			frame, err := EncodeEvent(e)
			if err != nil {
				h.log.Error("Failed to encode event", "event", e.Name(), "error", err)
				continue
			}
			c.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			c.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			c.SetWriteDeadline(time.Now().Add(writeWait))
			c.WriteMessage(websocket.CloseMessage, nil)
			return
		}
	}
}
