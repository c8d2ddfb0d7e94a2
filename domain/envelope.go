// Package domain contains core concepts of the chat system.
// This file defines the Envelope value object and its factory.
// Envelopes are immutable once built.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Delivery statuses carried by an Envelope. They are advisory only and
// never transactionally tied to an actual receipt.
const (
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusSeen      = "Seen"
)

// displayTimeLayout matches what the reference client renders, e.g. "3:04 PM".
// It is a display convenience, not sortable; true ordering is arrival order.
const displayTimeLayout = "3:04 PM"

// Envelope is the wire representation of one chat or system event.
// The ID is provisional until the store assigns a durable one; recipients
// are decided by the router at dispatch time and never stored here.
type Envelope struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Text     string `json:"text"`
	Avatar   string `json:"avatar"`
	Time     string `json:"time"`
	Status   string `json:"status"`
}

// NewEnvelope builds an Envelope with a fresh provisional identifier.
// UUIDs rule out the collision window of the historical time+random
// scheme even under rapid concurrent calls.
func NewEnvelope(author, text, avatar string) Envelope {
	return Envelope{
		ID:       uuid.NewString(),
		Username: author,
		Text:     text,
		Avatar:   avatar,
		Time:     time.Now().Format(displayTimeLayout),
		Status:   StatusSent,
	}
}
