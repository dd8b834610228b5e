package session

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/guilhermegouw/atelier/internal/conversation"
	"github.com/guilhermegouw/atelier/internal/events"
	"github.com/guilhermegouw/atelier/internal/gateway"
	"github.com/guilhermegouw/atelier/internal/pubsub"
	"github.com/guilhermegouw/atelier/internal/recall"
	"github.com/guilhermegouw/atelier/internal/store"
)

// Turn is the outcome of one chat submission.
type Turn struct {
	ConversationID string
	User           conversation.Message
	Reply          conversation.Message
	// Accepted is false when the input was empty and nothing happened.
	Accepted bool
}

// Chat is a free-form chat session.
type Chat struct {
	*controller
	gw *gateway.Safe

	mu    sync.Mutex
	model string
	draft recall.ChatDraft
}

// NewChat creates a chat session starting with no conversation. model is
// the chat model new conversations are started with.
func NewChat(st store.LockingStore, gw *gateway.Safe, model string, opts ...Option) *Chat {
	if model == "" {
		model = conversation.DefaultChatModel
	}
	return &Chat{
		controller: newController(st, conversation.KindChat, opts),
		gw:         gw,
		model:      model,
	}
}

// Model returns the model replies come from.
func (s *Chat) Model() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// SetModel selects the model for a new conversation. Once the first message
// is saved the model is fixed and SetModel reports false.
func (s *Chat) SetModel(model string) bool {
	if s.ActiveID() != "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = model
	return true
}

// Draft returns the pending input.
func (s *Chat) Draft() recall.ChatDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// SetDraft replaces the pending input.
func (s *Chat) SetDraft(d recall.ChatDraft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = d
}

// Recall copies a user message back into the pending input.
func (s *Chat) Recall(m conversation.Message) bool {
	d, ok := recall.FromMessage(m)
	if ok {
		s.SetDraft(d)
	}
	return ok
}

// Messages returns the conversation so far. A chat with nothing saved
// shows only the greeting placeholder.
func (s *Chat) Messages(ctx context.Context) ([]conversation.Message, error) {
	rec, ok, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []conversation.Message{conversation.Placeholder()}, nil
	}
	chat, _ := rec.Chat()
	return slices.Clone(chat.Messages), nil
}

// Submit sends input and stores the exchange. The user message is saved
// before the model is asked; the reply is appended to the conversation the
// message went to, even if the session has moved on meanwhile. A failed
// backend call still produces a reply holding an apology.
func (s *Chat) Submit(ctx context.Context, input string) (Turn, error) {
	if strings.TrimSpace(input) == "" {
		return Turn{}, nil
	}

	id := s.reserve()
	model := s.Model()
	user := conversation.Message{ID: s.newID(), Author: conversation.AuthorUser, Content: input}

	id, rec, err := s.write(ctx, id,
		func(id string) *conversation.Record {
			return conversation.New(id, conversation.Title(input), conversation.Now(), conversation.NewChat(model, user))
		},
		func(rec *conversation.Record) error {
			chat, _ := rec.Chat()
			chat.Append(user)
			return nil
		},
	)
	if err != nil {
		return Turn{ConversationID: id, User: user, Accepted: true}, err
	}

	chat, _ := rec.Chat()
	if chat.Model != "" {
		model = chat.Model
	}
	history := slices.Clone(chat.Messages)

	s.mu.Lock()
	if s.draft.Input == input {
		s.draft = recall.ChatDraft{}
	}
	s.mu.Unlock()

	text := s.gw.Chat(ctx, model, history)
	reply := conversation.Message{ID: s.newID(), Author: conversation.AuthorModel, Content: text}

	id, _, err = s.write(ctx, id,
		func(id string) *conversation.Record {
			// The record was removed during the call: keep the exchange whole.
			chat := conversation.NewChat(model, user)
			chat.Append(reply)
			return conversation.New(id, conversation.Title(input), conversation.Now(), chat)
		},
		func(rec *conversation.Record) error {
			chat, _ := rec.Chat()
			chat.Append(reply)
			return nil
		},
	)
	return Turn{ConversationID: id, User: user, Reply: reply, Accepted: true}, err
}

// Open resumes an existing chat and fixes the model to the one it used.
func (s *Chat) Open(ctx context.Context, id string) error {
	rec, err := s.open(ctx, id)
	if err != nil {
		return err
	}
	chat, _ := rec.Chat()

	s.mu.Lock()
	defer s.mu.Unlock()
	if chat.Model != "" {
		s.model = chat.Model
	}
	s.draft = recall.ChatDraft{}
	return nil
}

// Reset starts a new chat. The next submission creates a new record.
func (s *Chat) Reset() {
	s.reset()
	s.SetDraft(recall.ChatDraft{})
	s.publish(pubsub.EventUpdated, events.NewConversationSwitchedEvent("", string(conversation.KindChat)))
}
