// Package domain contains core concepts of the chat system.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"fmt"
	"net/url"
)

// Participant is one live connection inside a room.
// It is exclusively owned by the presence registry: created on join,
// destroyed on disconnect, never shared beyond one handler invocation.
type Participant struct {
	ConnID   string // opaque, unique per live connection
	Username string // display name, collisions permitted
	Room     string
	Avatar   string // resolved once at join time
}

// NewParticipant builds a Participant, resolving its avatar.
// A non-empty override wins; otherwise a stable placeholder is derived
// from the display name, so the same name always yields the same image.
func NewParticipant(connID, username, room, avatarOverride string) Participant {
	avatar := avatarOverride
	if avatar == "" {
		avatar = InitialsAvatar(username)
	}
	return Participant{
		ConnID:   connID,
		Username: username,
		Room:     room,
		Avatar:   avatar,
	}
}

// InitialsAvatar returns the default placeholder avatar for a display name.
func InitialsAvatar(username string) string {
	return fmt.Sprintf("https://api.dicebear.com/9.x/initials/svg?seed=%s", url.QueryEscape(username))
}

// BotAvatar returns the fixed robot avatar for a bot identity.
func BotAvatar(botName string) string {
	return fmt.Sprintf("https://api.dicebear.com/9.x/bottts/svg?seed=%s", url.QueryEscape(botName))
}
