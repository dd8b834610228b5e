package recall

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guilhermegouw/atelier/internal/conversation"
)

func TestFromMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  conversation.Message
		want string
		ok   bool
	}{
		{"user message", conversation.Message{ID: "1", Author: conversation.AuthorUser, Content: "tell me a joke"}, "tell me a joke", true},
		{"model message", conversation.Message{ID: "2", Author: conversation.AuthorModel, Content: "no"}, "", false},
		{"placeholder", conversation.Placeholder(), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft, ok := FromMessage(tt.msg)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, draft.Input)
		})
	}
}

func TestFromGeneration(t *testing.T) {
	ev := conversation.GenerationEvent{
		Prompt: "a red fox in snow",
		Params: conversation.GenerationParams{
			Model:          "imagen-4.0-generate-001",
			AspectRatio:    conversation.AspectWidescreen,
			NumberOfImages: 3,
			OutputMIMEType: conversation.MIMETypeJPEG,
		},
		Images:    []conversation.Image{{MIMEType: conversation.MIMETypeJPEG, Data: []byte("x")}},
		Timestamp: time.Now(),
	}
	original := ev

	draft := FromGeneration(ev)
	assert.Equal(t, "a red fox in snow", draft.Prompt)
	assert.Equal(t, ev.Params, draft.Params)

	// Changing the draft leaves the entry alone.
	draft.Params.NumberOfImages = 1
	draft.Prompt = "changed"
	assert.Equal(t, original, ev)
}

func TestSettingsOf(t *testing.T) {
	_, ok := SettingsOf(nil)
	assert.False(t, ok)

	_, ok = SettingsOf(&conversation.Generation{})
	assert.False(t, ok)

	first := conversation.GenerationEvent{Prompt: "one", Params: conversation.DefaultGenerationParams()}
	last := conversation.GenerationEvent{Prompt: "two", Params: conversation.GenerationParams{
		Model: "imagen-4.0-fast-generate-001", AspectRatio: conversation.AspectSquare, NumberOfImages: 2, OutputMIMEType: conversation.MIMETypePNG,
	}}
	g := conversation.NewGeneration(first)
	g.Append(last)

	draft, ok := SettingsOf(g)
	require.True(t, ok)
	assert.True(t, draft.Empty())
	assert.Equal(t, last.Params, draft.Params)
}

func TestFromEdit(t *testing.T) {
	draft := FromEdit(conversation.EditEvent{Prompt: "make it night"})
	assert.Equal(t, "make it night", draft.Prompt)
	assert.False(t, draft.Empty())
}

func TestEmpty(t *testing.T) {
	assert.True(t, ChatDraft{Input: "  \n\t"}.Empty())
	assert.False(t, ChatDraft{Input: "hi"}.Empty())
	assert.True(t, GenerationDraft{}.Empty())
	assert.True(t, EditDraft{Prompt: " "}.Empty())
}
