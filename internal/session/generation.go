package session

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/guilhermegouw/atelier/internal/conversation"
	"github.com/guilhermegouw/atelier/internal/events"
	"github.com/guilhermegouw/atelier/internal/gateway"
	"github.com/guilhermegouw/atelier/internal/pubsub"
	"github.com/guilhermegouw/atelier/internal/recall"
	"github.com/guilhermegouw/atelier/internal/store"
)

// GenerationResult is the outcome of one generation submission.
type GenerationResult struct {
	ConversationID string
	Event          conversation.GenerationEvent
	// Accepted is false when the draft was empty or its settings invalid.
	Accepted bool
}

// Generation is a batch image generation session.
type Generation struct {
	*controller
	gw *gateway.Safe

	mu       sync.Mutex
	defaults conversation.GenerationParams
	draft    recall.GenerationDraft
}

// NewGeneration creates a generation session whose drafts start from defaults.
func NewGeneration(st store.LockingStore, gw *gateway.Safe, defaults conversation.GenerationParams, opts ...Option) *Generation {
	return &Generation{
		controller: newController(st, conversation.KindImageGeneration, opts),
		gw:         gw,
		defaults:   defaults,
		draft:      recall.NewGenerationDraft(defaults),
	}
}

// Draft returns the pending prompt and settings.
func (s *Generation) Draft() recall.GenerationDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// SetDraft replaces the pending prompt and settings.
func (s *Generation) SetDraft(d recall.GenerationDraft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = d
}

// Recall loads an earlier event's prompt and settings into the draft.
// History and the active conversation are untouched.
func (s *Generation) Recall(ev conversation.GenerationEvent) recall.GenerationDraft {
	d := recall.FromGeneration(ev)
	s.SetDraft(d)
	return d
}

// History returns the events of the active conversation.
func (s *Generation) History(ctx context.Context) ([]conversation.GenerationEvent, error) {
	rec, ok, err := s.current(ctx)
	if err != nil || !ok {
		return nil, err
	}
	g, _ := rec.Generation()
	return slices.Clone(g.History), nil
}

// Submit generates images for d and appends the event to the active
// conversation, creating it on the first success. When the backend fails
// nothing is stored and the error wraps ErrGenerationFailed.
func (s *Generation) Submit(ctx context.Context, d recall.GenerationDraft) (GenerationResult, error) {
	if d.Empty() || d.Params.Validate() != nil {
		return GenerationResult{}, nil
	}

	id := s.reserve()

	images, err := s.gw.Generate(ctx, d.Prompt, d.Params)
	if err != nil {
		return GenerationResult{ConversationID: s.ActiveID(), Accepted: true}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	ev := conversation.GenerationEvent{
		Timestamp: conversation.Now(),
		Prompt:    d.Prompt,
		Images:    images,
		Params:    d.Params,
	}
	id, _, err = s.write(ctx, id,
		func(id string) *conversation.Record {
			return conversation.New(id, conversation.Title(d.Prompt), ev.Timestamp, conversation.NewGeneration(ev))
		},
		func(rec *conversation.Record) error {
			g, _ := rec.Generation()
			g.Append(ev)
			return nil
		},
	)
	if err != nil {
		return GenerationResult{ConversationID: id, Event: ev, Accepted: true}, err
	}

	// The settings stay for the next prompt.
	s.mu.Lock()
	if s.draft.Prompt == d.Prompt {
		s.draft.Prompt = ""
	}
	s.mu.Unlock()

	return GenerationResult{ConversationID: id, Event: ev, Accepted: true}, nil
}

// Open resumes an existing generation conversation. The draft takes the
// settings of its latest event with an empty prompt.
func (s *Generation) Open(ctx context.Context, id string) error {
	rec, err := s.open(ctx, id)
	if err != nil {
		return err
	}
	g, _ := rec.Generation()

	d, ok := recall.SettingsOf(g)
	if !ok {
		d = recall.NewGenerationDraft(s.defaults)
	}
	s.SetDraft(d)
	return nil
}

// Reset starts a new conversation with default settings.
func (s *Generation) Reset() {
	s.reset()
	s.SetDraft(recall.NewGenerationDraft(s.defaults))
	s.publish(pubsub.EventUpdated, events.NewConversationSwitchedEvent("", string(conversation.KindImageGeneration)))
}
