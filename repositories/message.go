package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	apperrors "trimchat/errors"
)

// StoredMessage is the durable counterpart of a broadcast envelope.
// The ID is assigned by the store, monotonically increasing and never
// reused; it is the sole key for later edit and delete operations.
type StoredMessage struct {
	ID       uint64    `json:"id"`
	Room     string    `json:"room"`
	Username string    `json:"username"`
	Text     string    `json:"text"`
	Avatar   string    `json:"avatar"`
	Time     string    `json:"time"`
	At       time.Time `json:"at"`
}

type IMessageRepository interface {
	InsertMessage(rec StoredMessage) (uint64, error)
	UpdateMessage(id uint64, text string) error
	DeleteMessage(id uint64) error
	RoomMessages(room string) ([]StoredMessage, error)
}

type MessageRepository struct {
	db            *badger.DB
	seq           *badger.Sequence
	log           *slog.Logger
	limitMessages *int
}

// NewMessageRepository opens the identifier sequence alongside the store.
// Callers must Close the repository to release unused sequence leases.
func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) (*MessageRepository, error) {
	seq, err := db.GetSequence([]byte("seq:message"), 64)
	if err != nil {
		return nil, fmt.Errorf("message sequence: %w", err)
	}
	return &MessageRepository{db: db, seq: seq, log: log, limitMessages: limitMessages}, nil
}

func (m *MessageRepository) Close() error {
	return m.seq.Release()
}

// Message keys are "msg:{room}:{id_padded}" so that a room prefix scan
// yields messages in id order, which is also chronological order within
// one room. A secondary "msgidx:{id_padded}" entry resolves an id back to
// its room key, since edits and deletes arrive with the id alone.
func messageKey(room string, id uint64) []byte {
	return []byte(fmt.Sprintf("msg:%s:%020d", room, id))
}

func messageIndexKey(id uint64) []byte {
	return []byte(fmt.Sprintf("msgidx:%020d", id))
}

// InsertMessage persists a record and returns its durable identifier.
func (m *MessageRepository) InsertMessage(rec StoredMessage) (uint64, error) {
	next, err := m.seq.Next()
	if err != nil {
		return 0, err
	}
	// The sequence starts at zero; shift so ids start at 1 like the
	// historical store.
	rec.ID = next + 1

	bytes, err := json.Marshal(rec)
	if err != nil {
		return 0, err
	}
	err = m.db.Update(func(txn *badger.Txn) error {
		key := messageKey(rec.Room, rec.ID)
		if err := txn.Set(key, bytes); err != nil {
			return err
		}
		return txn.Set(messageIndexKey(rec.ID), key)
	})
	if err != nil {
		return 0, err
	}
	return rec.ID, nil
}

// UpdateMessage rewrites the body of an existing record in place.
func (m *MessageRepository) UpdateMessage(id uint64, text string) error {
	return m.db.Update(func(txn *badger.Txn) error {
		key, err := resolveKey(txn, id)
		if err != nil {
			return err
		}
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		var rec StoredMessage
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		}); err != nil {
			return err
		}
		rec.Text = text
		bytes, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return txn.Set(key, bytes)
	})
}

// DeleteMessage removes a record and its id index entry.
func (m *MessageRepository) DeleteMessage(id uint64) error {
	return m.db.Update(func(txn *badger.Txn) error {
		key, err := resolveKey(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete(messageIndexKey(id))
	})
}

// RoomMessages returns the most recent messages of a room in
// chronological order, capped by the configured limit.
func (m *MessageRepository) RoomMessages(room string) ([]StoredMessage, error) {
	var raw [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", room))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the newest possible id, then walk backwards.
		seekKey := append(append([]byte{}, prefix...), []byte("99999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(raw) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *m.limitMessages))
				break
			}
			err := it.Item().Value(func(val []byte) error {
				raw = append(raw, append([]byte{}, val...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Reverse scan yields newest first; clients expect oldest first.
	messages := make([]StoredMessage, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var rec StoredMessage
		if err := json.Unmarshal(raw[i], &rec); err != nil {
			return nil, err
		}
		messages = append(messages, rec)
	}
	return messages, nil
}

func resolveKey(txn *badger.Txn, id uint64) ([]byte, error) {
	item, err := txn.Get(messageIndexKey(id))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, apperrors.ErrMessageNotFound
		}
		return nil, err
	}
	var key []byte
	if err := item.Value(func(val []byte) error {
		key = append([]byte{}, val...)
		return nil
	}); err != nil {
		return nil, err
	}
	return key, nil
}
