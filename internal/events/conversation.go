// Package events defines domain-specific event types for the pub/sub system.
package events

import "time"

// ConversationEventType represents conversation lifecycle event types.
type ConversationEventType string

// Conversation event type constants.
const (
	ConversationEventCreated  ConversationEventType = "created"
	ConversationEventAppended ConversationEventType = "appended"
	ConversationEventAnalyzed ConversationEventType = "analyzed"
	ConversationEventFavorite ConversationEventType = "favorite"
	ConversationEventDeleted  ConversationEventType = "deleted"
	ConversationEventSwitched ConversationEventType = "switched"
)

// ConversationEvent reports a change to a persisted conversation record.
type ConversationEvent struct { //nolint:govet // fieldalignment: preserving logical field order
	ConversationID string
	Kind           string
	Title          string
	Type           ConversationEventType
	Timestamp      time.Time

	// Optional fields
	Entries    int  // history length after the change
	IsFavorite bool // For Favorite
}

// NewConversationCreatedEvent creates an event for a record written for the first time.
func NewConversationCreatedEvent(id, kind, title string) ConversationEvent {
	return ConversationEvent{
		ConversationID: id,
		Kind:           kind,
		Title:          title,
		Type:           ConversationEventCreated,
		Entries:        1,
		Timestamp:      time.Now(),
	}
}

// NewConversationAppendedEvent creates an event for an entry appended to a record.
func NewConversationAppendedEvent(id, kind string, entries int) ConversationEvent {
	return ConversationEvent{
		ConversationID: id,
		Kind:           kind,
		Type:           ConversationEventAppended,
		Entries:        entries,
		Timestamp:      time.Now(),
	}
}

// NewConversationAnalyzedEvent creates an event for a replaced analysis result.
func NewConversationAnalyzedEvent(id string) ConversationEvent {
	return ConversationEvent{
		ConversationID: id,
		Kind:           "imageEditing",
		Type:           ConversationEventAnalyzed,
		Timestamp:      time.Now(),
	}
}

// NewConversationFavoriteEvent creates an event for a toggled favorite flag.
func NewConversationFavoriteEvent(id string, favorite bool) ConversationEvent {
	return ConversationEvent{
		ConversationID: id,
		Type:           ConversationEventFavorite,
		IsFavorite:     favorite,
		Timestamp:      time.Now(),
	}
}

// NewConversationDeletedEvent creates an event for a removed record.
func NewConversationDeletedEvent(id string) ConversationEvent {
	return ConversationEvent{
		ConversationID: id,
		Type:           ConversationEventDeleted,
		Timestamp:      time.Now(),
	}
}

// NewConversationSwitchedEvent creates an event for a session that now
// points at a different record. An empty id means the session was reset.
func NewConversationSwitchedEvent(id, kind string) ConversationEvent {
	return ConversationEvent{
		ConversationID: id,
		Kind:           kind,
		Type:           ConversationEventSwitched,
		Timestamp:      time.Now(),
	}
}
