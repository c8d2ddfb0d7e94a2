package runtime

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"trimchat/contract"
	"trimchat/domain"
	"trimchat/domain/event"
	"trimchat/observability"
	"trimchat/repositories"
)

// StoreRequest is the closed set of durable-state operations the router
// dispatches without awaiting completion.
type StoreRequest interface {
	isStoreRequest()
}

// InsertRequest persists a freshly broadcast envelope. The envelope's
// provisional id is the join key between the broadcast that already
// happened and the correction that follows.
type InsertRequest struct {
	Envelope domain.Envelope
	Room     string
}

// UpdateRequest and DeleteRequest are fire-and-forget; failures are
// logged only. The id may be durable (numeric) or still provisional.
type UpdateRequest struct {
	ID   string
	Text string
}

type DeleteRequest struct {
	ID string
}

func (InsertRequest) isStoreRequest() {}
func (UpdateRequest) isStoreRequest() {}
func (DeleteRequest) isStoreRequest() {}

// Broadcaster pushes an event to every joined member of a room.
type Broadcaster interface {
	BroadcastRoom(room string, e event.Event)
}

// maxTrackedProvisionals bounds the provisional-to-durable index; oldest
// entries are evicted first. Edits normally target durable ids, so the
// window only needs to cover messages still in flight.
const maxTrackedProvisionals = 4096

// Reconciler converges broadcast state with durable state. It runs as a
// supervised worker: inserts assign the monotonic durable id and
// broadcast a correction, updates and deletes resolve either identifier
// form. A write that fails is logged and dropped; the in-memory
// broadcast is authoritative and never rolled back.
type Reconciler struct {
	log         *slog.Logger
	store       contract.MessageStore
	broadcaster Broadcaster
	stats       *observability.Stats
	requests    chan StoreRequest

	mu         sync.Mutex
	durableIDs map[string]uint64 // provisional id -> durable id
	evictOrder []string
}

func NewReconciler(log *slog.Logger, store contract.MessageStore,
	stats *observability.Stats, bufferSize int) *Reconciler {
	return &Reconciler{
		log:        log,
		store:      store,
		stats:      stats,
		requests:   make(chan StoreRequest, bufferSize),
		durableIDs: make(map[string]uint64),
	}
}

// AttachBroadcaster wires the correction fan-out. The router needs the
// reconciler to enqueue and the reconciler needs the router to correct,
// so one side is attached after construction. Must be set before Run.
func (r *Reconciler) AttachBroadcaster(b Broadcaster) {
	r.broadcaster = b
}

// Enqueue hands a request to the worker without blocking the caller.
// A full buffer drops the request: broadcast already happened, and
// durable state is allowed to diverge until manually reconciled.
func (r *Reconciler) Enqueue(req StoreRequest) bool {
	select {
	case r.requests <- req:
		return true
	default:
		r.log.Warn("Store request buffer full, dropping request")
		r.stats.IncrPersistFailures()
		return false
	}
}

// Run consumes store requests until the context is canceled. In-flight
// requests already dequeued run to completion; disconnects never cancel
// them.
func (r *Reconciler) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			r.log.Debug("Stopping reconciler")
			return ctx.Err()
		case req, ok := <-r.requests:
			if !ok {
				return nil
			}
			switch q := req.(type) {
			case InsertRequest:
				r.insert(q)
			case UpdateRequest:
				r.update(q)
			case DeleteRequest:
				r.remove(q)
			}
		}
	}
}

func (r *Reconciler) insert(req InsertRequest) {
	durableID, err := r.store.InsertMessage(repositories.StoredMessage{
		Room:     req.Room,
		Username: req.Envelope.Username,
		Text:     req.Envelope.Text,
		Avatar:   req.Envelope.Avatar,
		Time:     req.Envelope.Time,
		At:       time.Now().UTC(),
	})
	if err != nil {
		r.log.Error("Message persistence failed",
			"provisional_id", req.Envelope.ID,
			"room", req.Room,
			"error", err)
		r.stats.IncrPersistFailures()
		return
	}

	r.track(req.Envelope.ID, durableID)

	// Best effort: members that joined after the broadcast simply
	// ignore a correction for a message they never rendered.
	r.broadcaster.BroadcastRoom(req.Room, event.MessageIDChanged{
		ProvisionalID: req.Envelope.ID,
		ID:            durableID,
	})
}

func (r *Reconciler) update(req UpdateRequest) {
	id, ok := r.resolve(req.ID)
	if !ok {
		// Rapid edit-after-send: the durable row doesn't exist yet.
		// Connected clients were already updated by the broadcast.
		r.log.Warn("No durable id for edited message", "id", req.ID)
		return
	}
	if err := r.store.UpdateMessage(id, req.Text); err != nil {
		r.log.Error("Message update failed", "id", id, "error", err)
		r.stats.IncrPersistFailures()
	}
}

func (r *Reconciler) remove(req DeleteRequest) {
	id, ok := r.resolve(req.ID)
	if !ok {
		r.log.Warn("No durable id for deleted message", "id", req.ID)
		return
	}
	if err := r.store.DeleteMessage(id); err != nil {
		r.log.Error("Message delete failed", "id", id, "error", err)
		r.stats.IncrPersistFailures()
	}
}

// resolve accepts either identifier form: the store-assigned numeric id,
// or a provisional id already reconciled by a completed insert.
func (r *Reconciler) resolve(id string) (uint64, bool) {
	if durable, err := strconv.ParseUint(id, 10, 64); err == nil {
		return durable, true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	durable, ok := r.durableIDs[id]
	return durable, ok
}

func (r *Reconciler) track(provisionalID string, durableID uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.evictOrder) == maxTrackedProvisionals {
		delete(r.durableIDs, r.evictOrder[0])
		r.evictOrder = r.evictOrder[1:]
	}
	r.durableIDs[provisionalID] = durableID
	r.evictOrder = append(r.evictOrder, provisionalID)
}
