package session

import (
	"context"
	"fmt"

	"github.com/guilhermegouw/atelier/internal/conversation"
	"github.com/guilhermegouw/atelier/internal/events"
	"github.com/guilhermegouw/atelier/internal/pubsub"
	"github.com/guilhermegouw/atelier/internal/store"
)

// Library gives access to every saved conversation regardless of mode.
type Library struct {
	store  store.LockingStore
	broker *pubsub.Broker[events.ConversationEvent]
}

// NewLibrary creates a Library over st. broker may be nil.
func NewLibrary(st store.LockingStore, broker *pubsub.Broker[events.ConversationEvent]) *Library {
	return &Library{store: st, broker: broker}
}

// List returns summaries of all conversations, newest first.
func (l *Library) List(ctx context.Context) ([]store.Summary, error) {
	return l.store.List(ctx)
}

// Favorites returns summaries of the conversations marked favorite.
func (l *Library) Favorites(ctx context.Context) ([]store.Summary, error) {
	all, err := l.store.List(ctx)
	if err != nil {
		return nil, err
	}
	var favs []store.Summary
	for _, s := range all {
		if s.IsFavorite {
			favs = append(favs, s)
		}
	}
	return favs, nil
}

// Get returns a conversation by id.
func (l *Library) Get(ctx context.Context, id string) (*conversation.Record, error) {
	rec, ok, err := l.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting conversation %q: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("getting conversation %q: %w", id, store.ErrNotFound)
	}
	return rec, nil
}

// SetFavorite marks or unmarks a conversation as favorite.
func (l *Library) SetFavorite(ctx context.Context, id string, favorite bool) error {
	if err := l.store.SetFavorite(ctx, id, favorite); err != nil {
		return fmt.Errorf("setting favorite on %q: %w", id, err)
	}
	if l.broker != nil {
		l.broker.Publish(pubsub.EventUpdated, events.NewConversationFavoriteEvent(id, favorite))
	}
	return nil
}

// Remove deletes a conversation. A session still pointing at it recreates
// the record on its next action.
func (l *Library) Remove(ctx context.Context, id string) error {
	if err := l.store.Remove(ctx, id); err != nil {
		return fmt.Errorf("removing conversation %q: %w", id, err)
	}
	if l.broker != nil {
		l.broker.Publish(pubsub.EventDeleted, events.NewConversationDeletedEvent(id))
	}
	return nil
}
