package runtime

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"trimchat/domain/event"
)

type Sink struct{}

func (s Sink) Consume(ctx context.Context, e event.Event) error {
	return nil
}

func TestRegistry_Join_One_Room_One_Participant(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID := uuid.NewString()
	sink := Sink{}

	// Given a connected but unjoined session
	registry.Connect(connID, sink)
	req.Empty(registry.RoomMembers("general"))

	// When the participant joins a room
	p, ok := registry.Join(connID, "alice", "general", "")

	// Then
	req.True(ok)
	req.Equal("alice", p.Username)
	req.Equal("general", p.Room)

	members := registry.RoomMembers("general")
	req.Len(members, 1)
	req.Equal(p, members[0])

	req.Len(registry.RoomSinks("general", ""), 1)
}

func TestRegistry_Join_Requires_Connect(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// When joining with an unknown connection id
	_, ok := registry.Join(uuid.NewString(), "alice", "general", "")

	// Then the join is refused
	req.False(ok)
}

func TestRegistry_Join_Twice_Is_Refused(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID := uuid.NewString()
	registry.Connect(connID, Sink{})

	_, ok := registry.Join(connID, "alice", "general", "")
	req.True(ok)

	// When the same connection joins again
	_, ok = registry.Join(connID, "alice", "other", "")

	// Then the second join is refused and the first room stands
	req.False(ok)
	req.Len(registry.RoomMembers("general"), 1)
	req.Empty(registry.RoomMembers("other"))
}

func TestRegistry_Duplicate_Display_Names_Coexist(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID1 := uuid.NewString()
	connID2 := uuid.NewString()
	registry.Connect(connID1, Sink{})
	registry.Connect(connID2, Sink{})

	// When two connections join with the same display name
	_, ok := registry.Join(connID1, "alice", "general", "")
	req.True(ok)
	_, ok = registry.Join(connID2, "alice", "general", "")
	req.True(ok)

	// Then both appear in the roster
	req.Len(registry.RoomMembers("general"), 2)
}

func TestRegistry_RoomMembers_Join_Order(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	names := []string{"clara", "alice", "bob"}
	for _, name := range names {
		connID := uuid.NewString()
		registry.Connect(connID, Sink{})
		_, ok := registry.Join(connID, name, "general", "")
		req.True(ok)
	}

	members := registry.RoomMembers("general")
	req.Len(members, len(names))
	for i, name := range names {
		req.Equal(name, members[i].Username)
	}
}

func TestRegistry_RoomSinks_Excludes_Sender(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID1 := uuid.NewString()
	connID2 := uuid.NewString()
	registry.Connect(connID1, Sink{})
	registry.Connect(connID2, Sink{})
	registry.Join(connID1, "alice", "general", "")
	registry.Join(connID2, "bob", "general", "")

	// When asking for the room minus one connection
	sinks := registry.RoomSinks("general", connID1)

	// Then only the other member remains
	req.Len(sinks, 1)
}

func TestRegistry_Leave_One_Room_One_Participant(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID := uuid.NewString()
	registry.Connect(connID, Sink{})
	registry.Join(connID, "alice", "general", "")

	// When the participant leaves
	p, ok := registry.Leave(connID)

	// Then the room is empty and the participant is returned
	req.True(ok)
	req.Equal("alice", p.Username)
	req.Empty(registry.RoomMembers("general"))
	req.Empty(registry.RoomSinks("general", ""))

	// And a second leave reports nothing
	_, ok = registry.Leave(connID)
	req.False(ok)
}

func TestRegistry_Leave_Unjoined_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID := uuid.NewString()
	registry.Connect(connID, Sink{})

	// When a connection that never joined leaves
	_, ok := registry.Leave(connID)

	// Then there is no participant to announce
	req.False(ok)
}

func TestRegistry_Rooms_Are_Isolated(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID1 := uuid.NewString()
	connID2 := uuid.NewString()
	registry.Connect(connID1, Sink{})
	registry.Connect(connID2, Sink{})
	registry.Join(connID1, "alice", "go", "")
	registry.Join(connID2, "bob", "rust", "")

	req.Len(registry.RoomMembers("go"), 1)
	req.Len(registry.RoomMembers("rust"), 1)
	req.Len(registry.RoomSinks("go", ""), 1)
}
