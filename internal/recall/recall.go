// Package recall turns history entries back into editable drafts.
//
// A draft is a transient copy of the inputs that produced an entry. Recalling
// never touches the record the entry came from; resubmitting a draft appends
// a new entry.
package recall

import (
	"strings"

	"github.com/guilhermegouw/atelier/internal/conversation"
)

// ChatDraft is the pending input of a chat session.
type ChatDraft struct {
	Input string
}

// Empty reports whether the draft has nothing worth submitting.
func (d ChatDraft) Empty() bool {
	return strings.TrimSpace(d.Input) == ""
}

// GenerationDraft is the pending prompt and settings of a generation session.
type GenerationDraft struct {
	Prompt string
	Params conversation.GenerationParams
}

// NewGenerationDraft returns an empty prompt with the given settings.
func NewGenerationDraft(params conversation.GenerationParams) GenerationDraft {
	return GenerationDraft{Params: params}
}

// Empty reports whether the draft has nothing worth submitting.
func (d GenerationDraft) Empty() bool {
	return strings.TrimSpace(d.Prompt) == ""
}

// EditDraft is the pending instruction of an editing session.
type EditDraft struct {
	Prompt string
}

// Empty reports whether the draft has nothing worth submitting.
func (d EditDraft) Empty() bool {
	return strings.TrimSpace(d.Prompt) == ""
}

// FromMessage copies a chat message into an input draft. Only user messages
// can be recalled.
func FromMessage(m conversation.Message) (ChatDraft, bool) {
	if m.Author != conversation.AuthorUser || m.IsPlaceholder() {
		return ChatDraft{}, false
	}
	return ChatDraft{Input: m.Content}, true
}

// FromGeneration copies the prompt and every setting of a generation event.
func FromGeneration(ev conversation.GenerationEvent) GenerationDraft {
	return GenerationDraft{Prompt: ev.Prompt, Params: ev.Params}
}

// SettingsOf returns the settings of the latest event with an empty prompt,
// the draft a reopened generation session starts from. ok is false for an
// empty history.
func SettingsOf(g *conversation.Generation) (GenerationDraft, bool) {
	if g == nil || len(g.History) == 0 {
		return GenerationDraft{}, false
	}
	return NewGenerationDraft(g.History[len(g.History)-1].Params), true
}

// FromEdit copies the instruction of an edit event.
func FromEdit(ev conversation.EditEvent) EditDraft {
	return EditDraft{Prompt: ev.Prompt}
}
