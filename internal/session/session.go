// Package session drives the three conversation modes. A session owns the
// id of the record it is working on and appends every accepted action to
// that record through the store.
//
// Every write re-reads the record under its lock right before putting it
// back, so concurrent actions on one record never lose each other's entries.
// Calls to the AI gateway never hold that lock.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/guilhermegouw/atelier/internal/conversation"
	"github.com/guilhermegouw/atelier/internal/debug"
	"github.com/guilhermegouw/atelier/internal/events"
	"github.com/guilhermegouw/atelier/internal/pubsub"
	"github.com/guilhermegouw/atelier/internal/store"
)

// Errors reported by sessions.
var (
	// ErrGenerationFailed means the backend produced no image. History is unchanged.
	ErrGenerationFailed = errors.New("image generation failed")
	// ErrEditFailed means the backend returned no edited image. History is unchanged.
	ErrEditFailed = errors.New("image edit failed")
	// ErrNoImage means an editing action was attempted before any upload.
	ErrNoImage = errors.New("no image uploaded")
	// ErrNotDurable means the store failed to read or write the record.
	ErrNotDurable = errors.New("conversation could not be saved")
	// ErrStaleSource means the edited image changed while an edit was in
	// flight, and retrying from the new one kept losing the race.
	ErrStaleSource = errors.New("image changed during edit")
	// ErrWrongKind means Open was given a record of another mode.
	ErrWrongKind = errors.New("conversation belongs to another mode")
)

// Option configures a session.
type Option func(*controller)

// WithBroker publishes conversation events to broker.
func WithBroker(broker *pubsub.Broker[events.ConversationEvent]) Option {
	return func(c *controller) {
		c.broker = broker
	}
}

// WithIDGenerator replaces the uuid generator used for new records and messages.
func WithIDGenerator(fn func() string) Option {
	return func(c *controller) {
		c.newID = fn
	}
}

// controller holds the state shared by every mode: the active record id and
// the read-modify-write cycle against the store.
type controller struct {
	store  store.LockingStore
	broker *pubsub.Broker[events.ConversationEvent]
	newID  func() string
	kind   conversation.Kind

	mu       sync.Mutex
	activeID string
	// bound is true once activeID names a record that has been written.
	bound bool
	// moved maps an id that held an unusable record to its replacement.
	moved map[string]string
}

func newController(st store.LockingStore, kind conversation.Kind, opts []Option) *controller {
	c := &controller{
		store: st,
		kind:  kind,
		newID: func() string { return uuid.New().String() },
		moved: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ActiveID returns the id of the record the session works on, or "" when
// nothing has been saved yet.
func (c *controller) ActiveID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.bound {
		return ""
	}
	return c.activeID
}

// reserve returns the active id, allocating one for a fresh session. The id
// is not visible through ActiveID until a record is written under it.
func (c *controller) reserve() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.activeID == "" {
		c.activeID = c.newID()
		c.bound = false
	}
	return c.activeID
}

// startNew points the session at a freshly allocated id.
func (c *controller) startNew() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeID = c.newID()
	c.bound = false
	return c.activeID
}

func (c *controller) bind(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeID = id
	c.bound = true
}

func (c *controller) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeID = ""
	c.bound = false
}

// replacement returns the id that takes over from id, allocating it on first
// use. The session follows the move only if it still points at id.
func (c *controller) replacement(id string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, ok := c.moved[id]
	if !ok {
		next = c.newID()
		c.moved[id] = next
	}
	if c.activeID == id {
		c.activeID = next
		c.bound = false
	}
	return next
}

// markWritten binds the session to id if it is still the active one.
func (c *controller) markWritten(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.activeID == id {
		c.bound = true
	}
}

// load returns the record stored under id if it belongs to this mode.
func (c *controller) load(ctx context.Context, id string) (*conversation.Record, bool, error) {
	rec, ok, err := c.store.Get(ctx, id)
	switch {
	case err != nil && conversation.IsCorrupt(err):
		debug.Error("session", err, "unreadable conversation "+id)
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("%w: %w", ErrNotDurable, err)
	case !ok || rec.Kind() != c.kind:
		return nil, false, nil
	}
	return rec, true, nil
}

// write appends to the record stored under id, or creates it with create
// when there is none. A record that cannot be appended to (corrupted, or of
// another mode) is left alone and the write moves to a new id. When mutate
// fails nothing is written and its error is returned as is. The id actually
// written and the record as stored are returned.
func (c *controller) write(
	ctx context.Context,
	id string,
	create func(id string) *conversation.Record,
	mutate func(rec *conversation.Record) error,
) (string, *conversation.Record, error) {
	for {
		unlock := c.store.Lock(id)

		rec, ok, err := c.store.Get(ctx, id)
		usable := err == nil && (!ok || rec.Kind() == c.kind)
		if err != nil && !conversation.IsCorrupt(err) {
			unlock()
			return id, nil, fmt.Errorf("%w: %w", ErrNotDurable, err)
		}
		if !usable {
			unlock()
			next := c.replacement(id)
			debug.L().Warn().
				Str("component", "session").
				Str("conversation", id).
				Str("replacement", next).
				AnErr("cause", err).
				Msg("conversation cannot be appended to, starting a new one")
			id = next
			continue
		}

		created := !ok
		if created {
			rec = create(id)
		} else if err := mutate(rec); err != nil {
			unlock()
			return id, nil, err
		}

		err = c.store.Put(ctx, rec)
		unlock()
		if err != nil {
			return id, nil, fmt.Errorf("%w: %w", ErrNotDurable, err)
		}

		c.markWritten(id)
		if created {
			debug.Event("session", "created", fmt.Sprintf("%s %s", c.kind, id))
			c.publish(pubsub.EventCreated, events.NewConversationCreatedEvent(id, string(c.kind), rec.Title))
		} else {
			c.publish(pubsub.EventUpdated, events.NewConversationAppendedEvent(id, string(c.kind), rec.Content.Entries()))
		}
		return id, rec, nil
	}
}

// open binds the session to an existing record of this mode.
func (c *controller) open(ctx context.Context, id string) (*conversation.Record, error) {
	rec, ok, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("opening conversation %q: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("opening conversation %q: %w", id, store.ErrNotFound)
	}
	if rec.Kind() != c.kind {
		return nil, fmt.Errorf("opening conversation %q: %w: is %s", id, ErrWrongKind, rec.Kind())
	}

	c.bind(id)
	c.publish(pubsub.EventUpdated, events.NewConversationSwitchedEvent(id, string(c.kind)))
	return rec, nil
}

// current returns the active record, if one has been written.
func (c *controller) current(ctx context.Context) (*conversation.Record, bool, error) {
	id := c.ActiveID()
	if id == "" {
		return nil, false, nil
	}
	return c.load(ctx, id)
}

func (c *controller) publish(t pubsub.EventType, e events.ConversationEvent) {
	if c.broker != nil {
		c.broker.Publish(t, e)
	}
}
