package repositories

import (
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	apperrors "trimchat/errors"
)

func newMessageRepository(t *testing.T, limit *int) *MessageRepository {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { db.Close() })

	repository, err := NewMessageRepository(db, slog.Default(), limit)
	req.NoError(err)
	t.Cleanup(func() { repository.Close() })
	return repository
}

func TestRecordMultipleMessages(t *testing.T) {
	req := require.New(t)
	repository := newMessageRepository(t, nil)
	room := "general"
	at := time.Now().UTC()

	// Given three messages stored in order
	records := []StoredMessage{
		{Room: room, Username: "alice", Text: "first", Time: "3:04 PM", At: at},
		{Room: room, Username: "bob", Text: "second", Time: "3:05 PM", At: at.Add(time.Minute)},
		{Room: room, Username: "clara", Text: "third", Time: "3:06 PM", At: at.Add(2 * time.Minute)},
	}
	for i, rec := range records {
		id, err := repository.InsertMessage(rec)
		req.NoError(err)
		// Ids are monotonic and start at 1
		req.Equal(uint64(i+1), id)
	}

	// When fetching the room history
	fetched, err := repository.RoomMessages(room)

	// Then messages come back oldest first with their assigned ids
	req.NoError(err)
	req.Len(fetched, len(records))
	for i, rec := range fetched {
		req.Equal(uint64(i+1), rec.ID)
		req.Equal(records[i].Username, rec.Username)
		req.Equal(records[i].Text, rec.Text)
	}
}

func TestRecordMultipleMessagesAndLimit(t *testing.T) {
	req := require.New(t)
	limit := 2
	repository := newMessageRepository(t, &limit)
	room := "general"

	for _, text := range []string{"first", "second", "third"} {
		_, err := repository.InsertMessage(StoredMessage{Room: room, Username: "alice", Text: text})
		req.NoError(err)
	}

	fetched, err := repository.RoomMessages(room)
	req.NoError(err)
	req.Len(fetched, limit)

	// The limit keeps the most recent messages, oldest first
	req.Equal("second", fetched[0].Text)
	req.Equal("third", fetched[1].Text)
}

func TestRoomsAreIsolated(t *testing.T) {
	req := require.New(t)
	repository := newMessageRepository(t, nil)

	_, err := repository.InsertMessage(StoredMessage{Room: "go", Username: "alice", Text: "gopher"})
	req.NoError(err)
	_, err = repository.InsertMessage(StoredMessage{Room: "rust", Username: "bob", Text: "crab"})
	req.NoError(err)

	fetched, err := repository.RoomMessages("go")
	req.NoError(err)
	req.Len(fetched, 1)
	req.Equal("gopher", fetched[0].Text)
}

func TestUpdateMessage(t *testing.T) {
	req := require.New(t)
	repository := newMessageRepository(t, nil)

	id, err := repository.InsertMessage(StoredMessage{Room: "general", Username: "alice", Text: "tpyo"})
	req.NoError(err)

	// When rewriting the body by id alone
	req.NoError(repository.UpdateMessage(id, "typo"))

	fetched, err := repository.RoomMessages("general")
	req.NoError(err)
	req.Len(fetched, 1)
	req.Equal("typo", fetched[0].Text)
	// Everything but the text is untouched
	req.Equal("alice", fetched[0].Username)
}

func TestUpdateMissingMessage(t *testing.T) {
	req := require.New(t)
	repository := newMessageRepository(t, nil)

	err := repository.UpdateMessage(999, "anything")
	req.ErrorIs(err, apperrors.ErrMessageNotFound)
}

func TestDeleteMessage(t *testing.T) {
	req := require.New(t)
	repository := newMessageRepository(t, nil)

	id, err := repository.InsertMessage(StoredMessage{Room: "general", Username: "alice", Text: "gone soon"})
	req.NoError(err)

	req.NoError(repository.DeleteMessage(id))

	fetched, err := repository.RoomMessages("general")
	req.NoError(err)
	req.Empty(fetched)

	// And the id cannot be deleted twice
	req.ErrorIs(repository.DeleteMessage(id), apperrors.ErrMessageNotFound)
}

func TestRoomMessages_EmptyRoom(t *testing.T) {
	req := require.New(t)
	repository := newMessageRepository(t, nil)

	fetched, err := repository.RoomMessages("nobody-here")
	req.NoError(err)
	req.Empty(fetched)
}
