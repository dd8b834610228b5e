//nolint:goconst // Test files use literal strings for clarity.
package events

import (
	"errors"
	"testing"
	"time"
)

func TestConversationEventTypes(t *testing.T) {
	types := []ConversationEventType{
		ConversationEventCreated,
		ConversationEventAppended,
		ConversationEventAnalyzed,
		ConversationEventFavorite,
		ConversationEventDeleted,
		ConversationEventSwitched,
	}

	seen := make(map[ConversationEventType]bool)
	for _, typ := range types {
		if seen[typ] {
			t.Errorf("duplicate event type: %s", typ)
		}
		seen[typ] = true

		if string(typ) == "" {
			t.Error("event type should have non-empty string value")
		}
	}
}

func TestNewConversationCreatedEvent(t *testing.T) {
	before := time.Now()
	event := NewConversationCreatedEvent("conv-1", "chat", "Hello there")
	after := time.Now()

	if event.ConversationID != "conv-1" {
		t.Errorf("expected ConversationID 'conv-1', got %q", event.ConversationID)
	}
	if event.Kind != "chat" {
		t.Errorf("expected Kind 'chat', got %q", event.Kind)
	}
	if event.Title != "Hello there" {
		t.Errorf("expected Title 'Hello there', got %q", event.Title)
	}
	if event.Type != ConversationEventCreated {
		t.Errorf("expected Type created, got %q", event.Type)
	}
	if event.Entries != 1 {
		t.Errorf("expected Entries 1, got %d", event.Entries)
	}
	if event.Timestamp.Before(before) || event.Timestamp.After(after) {
		t.Error("timestamp should be within test bounds")
	}
}

func TestConversationEventConstructors(t *testing.T) {
	tests := []struct {
		name  string
		event ConversationEvent
		typ   ConversationEventType
	}{
		{"appended", NewConversationAppendedEvent("c", "imageGeneration", 3), ConversationEventAppended},
		{"analyzed", NewConversationAnalyzedEvent("c"), ConversationEventAnalyzed},
		{"favorite", NewConversationFavoriteEvent("c", true), ConversationEventFavorite},
		{"deleted", NewConversationDeletedEvent("c"), ConversationEventDeleted},
		{"switched", NewConversationSwitchedEvent("c", "chat"), ConversationEventSwitched},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.event.Type != tt.typ {
				t.Errorf("expected Type %q, got %q", tt.typ, tt.event.Type)
			}
			if tt.event.ConversationID != "c" {
				t.Errorf("expected ConversationID 'c', got %q", tt.event.ConversationID)
			}
			if tt.event.Timestamp.IsZero() {
				t.Error("timestamp should be set")
			}
		})
	}

	if e := NewConversationAppendedEvent("c", "chat", 4); e.Entries != 4 {
		t.Errorf("expected Entries 4, got %d", e.Entries)
	}
	if e := NewConversationFavoriteEvent("c", true); !e.IsFavorite {
		t.Error("expected IsFavorite true")
	}
	if e := NewConversationAnalyzedEvent("c"); e.Kind != "imageEditing" {
		t.Errorf("expected Kind 'imageEditing', got %q", e.Kind)
	}
}

func TestGatewayEvents(t *testing.T) {
	t.Run("started", func(t *testing.T) {
		event := NewGatewayStartedEvent(OperationChat, "gemini-2.5-flash")
		if event.Type != GatewayEventStarted {
			t.Errorf("expected Type started, got %q", event.Type)
		}
		if event.Operation != OperationChat || event.Model != "gemini-2.5-flash" {
			t.Errorf("unexpected event: %+v", event)
		}
	})

	t.Run("completed carries duration", func(t *testing.T) {
		event := NewGatewayCompletedEvent(OperationGenerate, "imagen", 2*time.Second)
		if event.Duration != 2*time.Second {
			t.Errorf("expected Duration 2s, got %v", event.Duration)
		}
		if event.Error != nil {
			t.Error("completed event should carry no error")
		}
	})

	t.Run("failed carries error", func(t *testing.T) {
		err := errors.New("quota exceeded")
		event := NewGatewayFailedEvent(OperationEdit, "flash-image", time.Second, err)
		if event.Type != GatewayEventFailed {
			t.Errorf("expected Type failed, got %q", event.Type)
		}
		if !errors.Is(event.Error, err) {
			t.Errorf("expected wrapped error, got %v", event.Error)
		}
	})
}
