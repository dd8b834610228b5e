package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guilhermegouw/atelier/internal/store"
)

func TestLibrary(t *testing.T) {
	ctx := context.Background()
	st := memoryStore(t)
	lib := NewLibrary(st, nil)
	chat := NewChat(st, safe(&fakeGateway{}), "")

	turn, err := chat.Submit(ctx, "keep this")
	require.NoError(t, err)
	id := turn.ConversationID

	t.Run("favorite", func(t *testing.T) {
		require.NoError(t, lib.SetFavorite(ctx, id, true))

		favs, err := lib.Favorites(ctx)
		require.NoError(t, err)
		require.Len(t, favs, 1)
		assert.Equal(t, id, favs[0].ID)

		// Appending keeps the flag.
		_, err = chat.Submit(ctx, "more")
		require.NoError(t, err)
		rec, err := lib.Get(ctx, id)
		require.NoError(t, err)
		assert.True(t, rec.IsFavorite)
		assert.Equal(t, 4, rec.Content.Entries())
	})

	t.Run("unknown id", func(t *testing.T) {
		assert.ErrorIs(t, lib.SetFavorite(ctx, "nope", true), store.ErrNotFound)
		_, err := lib.Get(ctx, "nope")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("remove then submit recreates under the same id", func(t *testing.T) {
		require.NoError(t, lib.Remove(ctx, id))
		assert.ErrorIs(t, lib.Remove(ctx, id), store.ErrNotFound)

		again, err := chat.Submit(ctx, "still here?")
		require.NoError(t, err)
		assert.Equal(t, id, again.ConversationID)

		rec, err := lib.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "still here?", rec.Title)
		assert.Equal(t, 2, rec.Content.Entries())
	})
}
