// Package observability aggregates runtime counters for logs and the
// health worker. Counters are atomic; no lock is held on hot paths.
package observability

import "sync/atomic"

// Stats tracks room-coordination activity since process start.
type Stats struct {
	ConnectionsOpened uint64
	ConnectionsClosed uint64
	EventsBroadcast   uint64
	EventsDropped     uint64
	PersistFailures   uint64
	BotReplies        uint64
}

// Snapshot is a point-in-time copy safe to marshal or log.
type Snapshot struct {
	ConnectionsOpened uint64 `json:"connections_opened"`
	ConnectionsClosed uint64 `json:"connections_closed"`
	EventsBroadcast   uint64 `json:"events_broadcast"`
	EventsDropped     uint64 `json:"events_dropped"`
	PersistFailures   uint64 `json:"persist_failures"`
	BotReplies        uint64 `json:"bot_replies"`
}

func NewStats() *Stats { return &Stats{} }

func (s *Stats) IncrConnectionsOpened() { atomic.AddUint64(&s.ConnectionsOpened, 1) }
func (s *Stats) IncrConnectionsClosed() { atomic.AddUint64(&s.ConnectionsClosed, 1) }
func (s *Stats) IncrEventsBroadcast()   { atomic.AddUint64(&s.EventsBroadcast, 1) }
func (s *Stats) IncrEventsDropped()     { atomic.AddUint64(&s.EventsDropped, 1) }
func (s *Stats) IncrPersistFailures()   { atomic.AddUint64(&s.PersistFailures, 1) }
func (s *Stats) IncrBotReplies()        { atomic.AddUint64(&s.BotReplies, 1) }

func (s *Stats) GetLatest() Snapshot {
	return Snapshot{
		ConnectionsOpened: atomic.LoadUint64(&s.ConnectionsOpened),
		ConnectionsClosed: atomic.LoadUint64(&s.ConnectionsClosed),
		EventsBroadcast:   atomic.LoadUint64(&s.EventsBroadcast),
		EventsDropped:     atomic.LoadUint64(&s.EventsDropped),
		PersistFailures:   atomic.LoadUint64(&s.PersistFailures),
		BotReplies:        atomic.LoadUint64(&s.BotReplies),
	}
}
