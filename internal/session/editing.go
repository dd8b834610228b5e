package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/guilhermegouw/atelier/internal/conversation"
	"github.com/guilhermegouw/atelier/internal/debug"
	"github.com/guilhermegouw/atelier/internal/events"
	"github.com/guilhermegouw/atelier/internal/gateway"
	"github.com/guilhermegouw/atelier/internal/pubsub"
	"github.com/guilhermegouw/atelier/internal/recall"
	"github.com/guilhermegouw/atelier/internal/store"
)

// EditResult is the outcome of one edit instruction.
type EditResult struct {
	ConversationID string
	Event          conversation.EditEvent
	// Accepted is false when the instruction was empty.
	Accepted bool
}

// Editing is an iterative image editing session. Each edit is applied to
// the output of the previous one.
type Editing struct {
	*controller
	gw *gateway.Safe

	mu    sync.Mutex
	draft recall.EditDraft
}

// NewEditing creates an editing session with no image.
func NewEditing(st store.LockingStore, gw *gateway.Safe, opts ...Option) *Editing {
	return &Editing{
		controller: newController(st, conversation.KindImageEditing, opts),
		gw:         gw,
	}
}

// Draft returns the pending instruction.
func (s *Editing) Draft() recall.EditDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// SetDraft replaces the pending instruction.
func (s *Editing) SetDraft(d recall.EditDraft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = d
}

// Recall loads an earlier instruction into the draft.
func (s *Editing) Recall(ev conversation.EditEvent) recall.EditDraft {
	d := recall.FromEdit(ev)
	s.SetDraft(d)
	return d
}

// Upload starts a new editing conversation around img. name is the file
// name used for the title. An invalid image is ignored and "" returned.
func (s *Editing) Upload(ctx context.Context, img conversation.Image, name string) (string, error) {
	if img.Validate() != nil {
		return "", nil
	}

	id := s.startNew()
	s.SetDraft(recall.EditDraft{})

	id, _, err := s.write(ctx, id,
		func(id string) *conversation.Record {
			return conversation.New(id, conversation.EditTitle(name), conversation.Now(), conversation.NewEditing(img))
		},
		// A freshly allocated id never holds a record.
		func(*conversation.Record) error { return nil },
	)
	return id, err
}

// Record returns the active conversation.
func (s *Editing) Record(ctx context.Context) (*conversation.Editing, bool, error) {
	rec, ok, err := s.current(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	ed, _ := rec.Editing()
	return ed, true, nil
}

// Image returns the image the next edit applies to.
func (s *Editing) Image(ctx context.Context) (conversation.Image, error) {
	ed, ok, err := s.Record(ctx)
	if err != nil {
		return conversation.Image{}, err
	}
	if !ok {
		return conversation.Image{}, ErrNoImage
	}
	return ed.Current(), nil
}

// History returns the edit chain of the active conversation.
func (s *Editing) History(ctx context.Context) ([]conversation.EditEvent, error) {
	ed, ok, err := s.Record(ctx)
	if err != nil || !ok {
		return nil, err
	}
	return slices.Clone(ed.History), nil
}

// Analyze describes the uploaded base image and stores the description,
// replacing any earlier one. A failed analysis stores the apology text.
func (s *Editing) Analyze(ctx context.Context) (string, error) {
	id := s.ActiveID()
	if id == "" {
		return "", ErrNoImage
	}
	ed, ok, err := s.Record(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNoImage
	}

	text := s.gw.Analyze(ctx, ed.Base, conversation.AnalysisInstruction)

	base := ed.Base
	id, _, err = s.write(ctx, id,
		func(id string) *conversation.Record {
			fresh := conversation.NewEditing(base)
			fresh.SetAnalysis(text)
			return conversation.New(id, conversation.EditTitle(""), conversation.Now(), fresh)
		},
		func(rec *conversation.Record) error {
			ed, _ := rec.Editing()
			ed.SetAnalysis(text)
			return nil
		},
	)
	if err != nil {
		return text, err
	}
	s.publish(pubsub.EventUpdated, events.NewConversationAnalyzedEvent(id))
	return text, nil
}

// maxEditAttempts bounds how often Edit starts over when another edit
// lands on the same record first.
const maxEditAttempts = 3

// Edit applies instruction to the current image and appends the result to
// the chain. When the backend fails nothing is stored and the error wraps
// ErrEditFailed. An edit is only appended if the chain still ends in the
// image it was applied to; otherwise it is redone on the new current image.
func (s *Editing) Edit(ctx context.Context, instruction string) (EditResult, error) {
	if (recall.EditDraft{Prompt: instruction}).Empty() {
		return EditResult{}, nil
	}

	id := s.ActiveID()
	if id == "" {
		return EditResult{}, ErrNoImage
	}

	for attempt := 1; ; attempt++ {
		rec, ok, err := s.load(ctx, id)
		if err != nil {
			return EditResult{}, err
		}
		if !ok {
			return EditResult{}, ErrNoImage
		}
		ed, _ := rec.Editing()
		source := ed.Current()

		out, err := s.gw.Edit(ctx, source, instruction)
		if err != nil {
			return EditResult{ConversationID: id, Accepted: true}, fmt.Errorf("%w: %w", ErrEditFailed, err)
		}

		ev := conversation.EditEvent{Timestamp: conversation.Now(), Prompt: instruction, Edited: *out}
		written, _, err := s.write(ctx, id,
			func(id string) *conversation.Record {
				fresh := conversation.NewEditing(source)
				fresh.Append(ev)
				return conversation.New(id, conversation.EditTitle(""), ev.Timestamp, fresh)
			},
			func(rec *conversation.Record) error {
				ed, _ := rec.Editing()
				if !sameImage(ed.Current(), source) {
					return ErrStaleSource
				}
				ed.Append(ev)
				return nil
			},
		)
		if errors.Is(err, ErrStaleSource) && attempt < maxEditAttempts {
			debug.Event("session", "edit_retry", fmt.Sprintf("%s attempt %d", id, attempt))
			continue
		}
		if err != nil {
			return EditResult{ConversationID: written, Event: ev, Accepted: true}, err
		}

		s.mu.Lock()
		if s.draft.Prompt == instruction {
			s.draft = recall.EditDraft{}
		}
		s.mu.Unlock()

		return EditResult{ConversationID: written, Event: ev, Accepted: true}, nil
	}
}

func sameImage(a, b conversation.Image) bool {
	return a.MIMEType == b.MIMEType && bytes.Equal(a.Data, b.Data)
}

// Open resumes an existing editing conversation.
func (s *Editing) Open(ctx context.Context, id string) error {
	if _, err := s.open(ctx, id); err != nil {
		return err
	}
	s.SetDraft(recall.EditDraft{})
	return nil
}

// Reset drops the current image. The next upload starts a new record.
func (s *Editing) Reset() {
	s.reset()
	s.SetDraft(recall.EditDraft{})
	s.publish(pubsub.EventUpdated, events.NewConversationSwitchedEvent("", string(conversation.KindImageEditing)))
}
