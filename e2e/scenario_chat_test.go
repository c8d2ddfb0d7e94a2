package e2e

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type testChatScenarioSuite struct {
	BaseWsSuite
}

func TestChatScenarioSuite(t *testing.T) {
	suite.Run(t, &testChatScenarioSuite{})
}

type messagePayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Text     string `json:"text"`
	Status   string `json:"status"`
}

type rosterPayload struct {
	Room  string `json:"room"`
	Users []struct {
		Username string `json:"username"`
	} `json:"users"`
}

func (s *testChatScenarioSuite) TestTwoMemberRoomFlow() {
	// A fresh room per run keeps reruns independent on a shared server.
	room := "e2e-" + uuid.NewString()[:8]

	alice := s.Connect("alice")
	defer alice.Close()
	bob := s.Connect("bob")
	defer bob.Close()

	var messageID string

	s.Run("Step 1: Alice joins and is welcomed alone", func() {
		alice.Send("joinRoom", map[string]string{"username": "alice", "room": room})

		f := alice.RecvEvent("message")
		var m messagePayload
		s.Require().NoError(json.Unmarshal(f.Data, &m))
		s.Require().Contains(m.Text, "Welcome")

		f = alice.RecvEvent("roomUsers")
		var r rosterPayload
		s.Require().NoError(json.Unmarshal(f.Data, &r))
		s.Require().Len(r.Users, 1)
	})

	s.Run("Step 2: Bob joins, both see the two-member roster", func() {
		bob.Send("joinRoom", map[string]string{"username": "bob", "room": room})

		f := bob.RecvEvent("roomUsers")
		var r rosterPayload
		s.Require().NoError(json.Unmarshal(f.Data, &r))
		s.Require().Len(r.Users, 2)

		// Alice sees the join announcement before the roster.
		f = alice.RecvEvent("message")
		var m messagePayload
		s.Require().NoError(json.Unmarshal(f.Data, &m))
		s.Require().Contains(m.Text, "bob has joined")
		alice.RecvEvent("roomUsers")
	})

	s.Run("Step 3: A chat message reaches both members, sender included", func() {
		alice.Send("chatMessage", "hello bob")

		for _, c := range []*WsClient{alice, bob} {
			f := c.RecvEvent("message")
			var m messagePayload
			s.Require().NoError(json.Unmarshal(f.Data, &m))
			s.Require().Equal("alice", m.Username)
			s.Require().Equal("hello bob", m.Text)
			messageID = m.ID
		}
	})

	s.Run("Step 4: The durable id correction follows persistence", func() {
		f := bob.RecvEvent("messageIdChanged")
		var c struct {
			ProvisionalID string `json:"provisionalId"`
			ID            uint64 `json:"id"`
		}
		s.Require().NoError(json.Unmarshal(f.Data, &c))
		s.Require().Equal(messageID, c.ProvisionalID)
		s.Require().NotZero(c.ID)
	})

	s.Run("Step 5: Typing is relayed to Bob only", func() {
		alice.Send("typing", nil)

		f := bob.RecvEvent("typing")
		var t struct {
			Username string `json:"username"`
		}
		s.Require().NoError(json.Unmarshal(f.Data, &t))
		s.Require().Equal("alice", t.Username)

		alice.Send("stopTyping", nil)
		bob.RecvEvent("stopTyping")
	})

	s.Run("Step 6: Read receipt fans out to the whole room", func() {
		bob.Send("readMessage", messageID)

		for _, c := range []*WsClient{alice, bob} {
			f := c.RecvEvent("messageStatusUpdated")
			var u struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			}
			s.Require().NoError(json.Unmarshal(f.Data, &u))
			s.Require().Equal("Seen", u.Status)
		}
	})

	s.Run("Step 7: Bob leaves, Alice sees the announcement and roster", func() {
		bob.Close()

		f := alice.RecvEvent("message")
		var m messagePayload
		s.Require().NoError(json.Unmarshal(f.Data, &m))
		s.Require().Contains(m.Text, "bob has left")

		f = alice.RecvEvent("roomUsers")
		var r rosterPayload
		s.Require().NoError(json.Unmarshal(f.Data, &r))
		s.Require().Len(r.Users, 1)
		s.Require().Equal("alice", r.Users[0].Username)
	})
}
