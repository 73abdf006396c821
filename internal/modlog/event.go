// Package modlog fans stored moderation actions out to the log channels of
// every guild that should see them, and keeps the posted copies up to date.
package modlog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType is the kind of change a fan-out event announces
type EventType string

const (
	// EventCreate announces a freshly inserted action
	EventCreate EventType = "create"
	// EventRevoked announces that the revoked or hidden flag changed
	EventRevoked EventType = "revoked"
	// EventAttachments announces new images on an action
	EventAttachments EventType = "attachments"
)

// Event is the fan-out payload. Consumers reload the record by ActionID, so
// the payload never carries stale copies of it.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	ActionID  int64     `json:"actionId"`
	GuildID   string    `json:"guildId"`
	Timestamp int64     `json:"timestamp"`
}

// NewEvent creates an event with a fresh id
func NewEvent(t EventType, actionID int64, guildID string) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      t,
		ActionID:  actionID,
		GuildID:   guildID,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Validate checks that the event can be handled
func (e Event) Validate() error {
	switch e.Type {
	case EventCreate, EventRevoked, EventAttachments:
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.ActionID <= 0 {
		return fmt.Errorf("event %s has no action id", e.ID)
	}
	return nil
}

// topicName is the broker topic of an event type, relative to the prefix
func topicName(t EventType) string {
	return "modlog/" + string(t)
}
