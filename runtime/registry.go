package runtime

import (
	"sync"

	"github.com/samber/lo"

	"trimchat/contract"
	"trimchat/domain"
)

type session struct {
	participant domain.Participant
	joined      bool
	sink        contract.EventSink
}

// Registry is the presence registry: the single shared mutable resource
// of the room subsystem. It maps connection ids to participants and
// their outbound sinks, and answers room-scoped queries.
//
// All mutations are linearized behind one mutex. Room lookups are linear
// scans over a small working set, so no finer-grained locking is needed.
// A connection id belongs to at most one room at a time; switching rooms
// requires reconnecting.
type Registry struct {
	mu        sync.Mutex
	sessions  map[string]*session
	joinOrder []string // connection ids of joined participants, join order
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*session)}
}

// Connect attaches the outbound sink of a freshly opened connection.
// The connection stays unjoined until a join event arrives.
func (r *Registry) Connect(connID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[connID] = &session{sink: sink}
}

// Join promotes a connected session to a room participant. It never
// fails for duplicate display names; it reports false only when the
// connection is unknown or already joined, which callers discard
// silently.
func (r *Registry) Join(connID, username, room, avatarOverride string) (domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if !ok || s.joined {
		return domain.Participant{}, false
	}
	s.participant = domain.NewParticipant(connID, username, room, avatarOverride)
	s.joined = true
	r.joinOrder = append(r.joinOrder, connID)
	return s.participant, true
}

// Lookup resolves the sender identity of an inbound event. Absence means
// the event raced a join or a leave and must be dropped, not failed.
func (r *Registry) Lookup(connID string) (domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if !ok || !s.joined {
		return domain.Participant{}, false
	}
	return s.participant, true
}

// Leave removes a connection entirely and returns the participant it
// carried. Idempotent: a second call reports false.
func (r *Registry) Leave(connID string) (domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if !ok {
		return domain.Participant{}, false
	}
	delete(r.sessions, connID)
	if !s.joined {
		return domain.Participant{}, false
	}
	r.joinOrder = lo.Without(r.joinOrder, connID)
	return s.participant, true
}

// RoomMembers returns a snapshot of the room's participants in join
// order. It is never a live view.
func (r *Registry) RoomMembers(room string) []domain.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()

	var members []domain.Participant
	for _, connID := range r.joinOrder {
		if s, ok := r.sessions[connID]; ok && s.participant.Room == room {
			members = append(members, s.participant)
		}
	}
	return members
}

// RoomSinks returns the outbound sinks of every joined member of a room.
// When exceptConnID is non-empty that connection is skipped, which is
// how the router scopes broadcasts to room-minus-sender.
func (r *Registry) RoomSinks(room, exceptConnID string) []contract.EventSink {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sinks []contract.EventSink
	for _, connID := range r.joinOrder {
		if connID == exceptConnID {
			continue
		}
		if s, ok := r.sessions[connID]; ok && s.participant.Room == room {
			sinks = append(sinks, s.sink)
		}
	}
	return sinks
}

// Sink returns the outbound channel of one connection, joined or not.
func (r *Registry) Sink(connID string) (contract.EventSink, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if !ok {
		return nil, false
	}
	return s.sink, true
}
