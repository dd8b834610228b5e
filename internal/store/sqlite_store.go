package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/sjson"

	"github.com/guilhermegouw/atelier/internal/conversation"
	"github.com/guilhermegouw/atelier/internal/db"
)

const (
	upsertConversation = `
INSERT INTO conversations (id, kind, title, is_favorite, created_at, updated_at, payload)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    kind        = excluded.kind,
    title       = excluded.title,
    is_favorite = excluded.is_favorite,
    created_at  = excluded.created_at,
    updated_at  = excluded.updated_at,
    payload     = excluded.payload`

	selectPayload = `SELECT payload FROM conversations WHERE id = ?`

	listConversations = `SELECT payload, updated_at FROM conversations ORDER BY created_at DESC, id ASC`

	deleteConversation = `DELETE FROM conversations WHERE id = ?`

	updateFavorite = `UPDATE conversations SET is_favorite = ?, updated_at = ?, payload = ? WHERE id = ?`
)

// SQLiteStore implements Store using SQLite. Each record is one row; the
// whole record is kept as JSON in the payload column next to the envelope
// columns used for listing.
type SQLiteStore struct {
	db *db.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a SQLite-backed conversation store.
func NewSQLiteStore(database *db.DB) *SQLiteStore {
	return &SQLiteStore{db: database}
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*conversation.Record, bool, error) {
	var payload string
	err := s.db.Conn().QueryRowContext(ctx, selectPayload, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("getting conversation: %w", err)
	}

	rec, err := conversation.Unmarshal([]byte(payload))
	if err != nil {
		return nil, false, fmt.Errorf("getting conversation %q: %w", id, err)
	}
	return rec, true, nil
}

// Put implements Store.
func (s *SQLiteStore) Put(ctx context.Context, rec *conversation.Record) error {
	if err := validateRecord(rec); err != nil {
		return fmt.Errorf("putting conversation: %w", err)
	}

	payload, err := conversation.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding conversation: %w", err)
	}

	_, err = s.db.Conn().ExecContext(ctx, upsertConversation,
		rec.ID,
		string(rec.Kind()),
		rec.Title,
		boolToInt(rec.IsFavorite),
		rec.CreatedAt.UnixMilli(),
		time.Now().UnixMilli(),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("putting conversation: %w", err)
	}

	return nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.Conn().QueryContext(ctx, listConversations)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var (
			payload   string
			updatedAt int64
		)
		if err := rows.Scan(&payload, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		summaries = append(summaries, summaryFromPayload([]byte(payload), time.UnixMilli(updatedAt).UTC()))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}

	return summaries, nil
}

// Remove implements Store.
func (s *SQLiteStore) Remove(ctx context.Context, id string) error {
	res, err := s.db.Conn().ExecContext(ctx, deleteConversation, id)
	if err != nil {
		return fmt.Errorf("removing conversation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetFavorite implements Store. The flag is patched into the stored payload
// in place, leaving the rest of the record untouched.
func (s *SQLiteStore) SetFavorite(ctx context.Context, id string, favorite bool) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var payload string
		if err := tx.QueryRowContext(ctx, selectPayload, id).Scan(&payload); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("reading conversation: %w", err)
		}

		patched, err := sjson.Set(payload, "isFavorite", favorite)
		if err != nil {
			return fmt.Errorf("patching favorite flag: %w", err)
		}

		if _, err := tx.ExecContext(ctx, updateFavorite, boolToInt(favorite), time.Now().UnixMilli(), patched, id); err != nil {
			return fmt.Errorf("setting favorite: %w", err)
		}
		return nil
	})
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
