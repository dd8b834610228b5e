package store

import (
	"cmp"
	"slices"
	"time"

	"github.com/tidwall/gjson"

	"github.com/guilhermegouw/atelier/internal/conversation"
)

// summaryFromPayload reads a summary straight from an encoded record without
// decoding its messages or images.
func summaryFromPayload(payload []byte, updatedAt time.Time) Summary {
	fields := gjson.GetManyBytes(payload, "id", "title", "type", "createdAt", "isFavorite")
	kind := conversation.Kind(fields[2].String())

	entriesPath := "history.#"
	if kind == conversation.KindChat {
		entriesPath = "messages.#"
	}

	return Summary{
		ID:         fields[0].String(),
		Title:      fields[1].String(),
		Kind:       kind,
		CreatedAt:  time.UnixMilli(fields[3].Int()).UTC(),
		IsFavorite: fields[4].Bool(),
		Entries:    int(gjson.GetBytes(payload, entriesPath).Int()),
		UpdatedAt:  updatedAt,
	}
}

func summaryFromRecord(rec *conversation.Record, updatedAt time.Time) Summary {
	return Summary{
		ID:         rec.ID,
		Title:      rec.Title,
		Kind:       rec.Kind(),
		CreatedAt:  rec.CreatedAt,
		IsFavorite: rec.IsFavorite,
		Entries:    rec.Content.Entries(),
		UpdatedAt:  updatedAt,
	}
}

// sortSummaries orders summaries newest first, breaking ties by id.
func sortSummaries(s []Summary) {
	slices.SortFunc(s, func(a, b Summary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
