// Package pubsub carries conversation and gateway events from sessions to
// their observers: the CLI's debug log, or any UI built on top. Each event
// kind has its own typed broker, and a Hub holds the brokers of one process.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event.
type EventType string

// Standard event types.
const (
	EventCreated   EventType = "created"
	EventUpdated   EventType = "updated"
	EventDeleted   EventType = "deleted"
	EventStarted   EventType = "started"
	EventCompleted EventType = "completed"
	EventFailed    EventType = "failed"
)

// Event represents a typed event with metadata.
type Event[T any] struct { //nolint:govet // fieldalignment: preserving logical field order
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Publisher is the interface for publishing events.
type Publisher[T any] interface {
	Publish(EventType, T)
}

// Subscriber is the interface for subscribing to events.
type Subscriber[T any] interface {
	Subscribe(context.Context) <-chan Event[T]
	SubscribeFunc(context.Context, func(T) bool) <-chan Event[T]
}
