package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/guilhermegouw/atelier/internal/conversation"
	"github.com/guilhermegouw/atelier/internal/recall"
)

func widescreen() conversation.GenerationParams {
	return conversation.GenerationParams{
		Model:          "imagen-4.0-generate-001",
		AspectRatio:    conversation.AspectWidescreen,
		NumberOfImages: 2,
		OutputMIMEType: conversation.MIMETypeJPEG,
	}
}

func TestGeneration_SubmitCreatesThenAppends(t *testing.T) {
	ctx := context.Background()
	st := memoryStore(t)
	gen := NewGeneration(st, safe(&fakeGateway{}), conversation.DefaultGenerationParams())

	assert.Equal(t, conversation.DefaultGenerationParams(), gen.Draft().Params)

	first, err := gen.Submit(ctx, recall.GenerationDraft{Prompt: "a lighthouse at dusk", Params: widescreen()})
	require.NoError(t, err)
	require.True(t, first.Accepted)
	assert.Len(t, first.Event.Images, 2)
	assert.Equal(t, first.ConversationID, gen.ActiveID())

	second, err := gen.Submit(ctx, recall.GenerationDraft{Prompt: "same, in fog", Params: conversation.DefaultGenerationParams()})
	require.NoError(t, err)
	assert.Equal(t, first.ConversationID, second.ConversationID)

	rec := record(t, st, first.ConversationID)
	assert.Equal(t, "a lighthouse at dusk", rec.Title)
	assert.Equal(t, conversation.KindImageGeneration, rec.Kind())

	history, err := gen.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "a lighthouse at dusk", history[0].Prompt)
	assert.Equal(t, widescreen(), history[0].Params)
	assert.Equal(t, "same, in fog", history[1].Prompt)
	assert.Len(t, history[1].Images, 1)
}

func TestGeneration_RecallReproducesParameters(t *testing.T) {
	ctx := context.Background()
	gen := NewGeneration(memoryStore(t), safe(&fakeGateway{}), conversation.DefaultGenerationParams())

	_, err := gen.Submit(ctx, recall.GenerationDraft{Prompt: "koi pond", Params: widescreen()})
	require.NoError(t, err)
	_, err = gen.Submit(ctx, recall.GenerationDraft{Prompt: "desert", Params: conversation.DefaultGenerationParams()})
	require.NoError(t, err)

	history, err := gen.History(ctx)
	require.NoError(t, err)

	draft := gen.Recall(history[0])
	assert.Equal(t, draft, gen.Draft())

	// Recalling changed nothing persisted.
	after, err := gen.History(ctx)
	require.NoError(t, err)
	assert.Equal(t, history, after)

	res, err := gen.Submit(ctx, gen.Draft())
	require.NoError(t, err)
	assert.Equal(t, history[0].Prompt, res.Event.Prompt)
	assert.Equal(t, history[0].Params, res.Event.Params)

	after, err = gen.History(ctx)
	require.NoError(t, err)
	require.Len(t, after, 3)
	assert.Equal(t, history[0].Params, after[2].Params)

	// The prompt is cleared, the settings stay.
	assert.Empty(t, gen.Draft().Prompt)
	assert.Equal(t, widescreen(), gen.Draft().Params)
}

func TestGeneration_FailureLeavesHistoryUnchanged(t *testing.T) {
	ctx := context.Background()
	st := memoryStore(t)
	gw := &fakeGateway{}
	gen := NewGeneration(st, safe(gw), conversation.DefaultGenerationParams())

	t.Run("fresh session stores nothing", func(t *testing.T) {
		gw.generateErr = errors.New("safety filter")
		res, err := gen.Submit(ctx, recall.GenerationDraft{Prompt: "x", Params: conversation.DefaultGenerationParams()})
		require.ErrorIs(t, err, ErrGenerationFailed)
		assert.NotEmpty(t, err.Error())
		assert.True(t, res.Accepted)
		assert.Empty(t, gen.ActiveID())

		summaries, err := st.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, summaries)
	})

	t.Run("existing history is untouched", func(t *testing.T) {
		gw.generateErr = nil
		ok, err := gen.Submit(ctx, recall.GenerationDraft{Prompt: "works", Params: conversation.DefaultGenerationParams()})
		require.NoError(t, err)
		before := record(t, st, ok.ConversationID)

		gw.generateErr = errors.New("quota")
		_, err = gen.Submit(ctx, recall.GenerationDraft{Prompt: "fails", Params: conversation.DefaultGenerationParams()})
		require.ErrorIs(t, err, ErrGenerationFailed)

		assert.Equal(t, before, record(t, st, ok.ConversationID))
	})
}

func TestGeneration_RejectsInvalidDrafts(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{}
	gen := NewGeneration(memoryStore(t), safe(gw), conversation.DefaultGenerationParams())

	tooMany := conversation.DefaultGenerationParams()
	tooMany.NumberOfImages = 5
	badRatio := conversation.DefaultGenerationParams()
	badRatio.AspectRatio = "2:1"

	for _, d := range []recall.GenerationDraft{
		{Prompt: "   ", Params: conversation.DefaultGenerationParams()},
		{Prompt: "ok", Params: tooMany},
		{Prompt: "ok", Params: badRatio},
	} {
		res, err := gen.Submit(ctx, d)
		require.NoError(t, err)
		assert.False(t, res.Accepted)
	}
	assert.Empty(t, gw.prompts)
}

func TestGeneration_InterleavedSubmitsShareOneRecord(t *testing.T) {
	const submits = 3

	ctx := context.Background()
	st := memoryStore(t)
	gen := NewGeneration(st, safe(&fakeGateway{hold: barrier(submits)}), conversation.DefaultGenerationParams())

	var g errgroup.Group
	for i := 0; i < submits; i++ {
		g.Go(func() error {
			_, err := gen.Submit(ctx, recall.GenerationDraft{Prompt: "p", Params: conversation.DefaultGenerationParams()})
			return err
		})
	}
	require.NoError(t, g.Wait())

	summaries, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, submits, summaries[0].Entries)
}

func TestGeneration_OpenRestoresLatestSettings(t *testing.T) {
	ctx := context.Background()
	st := memoryStore(t)
	gen := NewGeneration(st, safe(&fakeGateway{}), conversation.DefaultGenerationParams())

	_, err := gen.Submit(ctx, recall.GenerationDraft{Prompt: "one", Params: conversation.DefaultGenerationParams()})
	require.NoError(t, err)
	res, err := gen.Submit(ctx, recall.GenerationDraft{Prompt: "two", Params: widescreen()})
	require.NoError(t, err)

	gen.Reset()
	assert.Equal(t, conversation.DefaultGenerationParams(), gen.Draft().Params)
	assert.Empty(t, gen.ActiveID())

	other := NewGeneration(st, safe(&fakeGateway{}), conversation.DefaultGenerationParams())
	require.NoError(t, other.Open(ctx, res.ConversationID))
	assert.Equal(t, recall.GenerationDraft{Params: widescreen()}, other.Draft())
}
