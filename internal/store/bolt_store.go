package store

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tidwall/sjson"
	bolt "go.etcd.io/bbolt"

	"github.com/guilhermegouw/atelier/internal/conversation"
)

// BoltFileName is the bbolt file created inside the data directory.
const BoltFileName = "atelier.bolt"

var (
	bucketConversations = []byte("conversations")
	bucketUpdatedAt     = []byte("updated_at")
)

// BoltStore implements Store on a single bbolt file. Records are kept as
// JSON under their id; update times live in a separate bucket.
type BoltStore struct {
	db *bolt.DB
}

var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt file at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	database, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt store: %w", err)
	}

	err = database.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketConversations, bucketUpdatedAt} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("creating bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = database.Close()
		return nil, err
	}

	return &BoltStore{db: database}, nil
}

// Get implements Store.
func (s *BoltStore) Get(_ context.Context, id string) (*conversation.Record, bool, error) {
	var rec *conversation.Record
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketConversations).Get([]byte(id))
		if v == nil {
			return nil
		}
		var err error
		rec, err = conversation.Unmarshal(v)
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("getting conversation %q: %w", id, err)
	}
	return rec, rec != nil, nil
}

// Put implements Store.
func (s *BoltStore) Put(_ context.Context, rec *conversation.Record) error {
	if err := validateRecord(rec); err != nil {
		return fmt.Errorf("putting conversation: %w", err)
	}

	payload, err := conversation.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding conversation: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return writeEntry(tx, rec.ID, payload)
	})
	if err != nil {
		return fmt.Errorf("putting conversation: %w", err)
	}
	return nil
}

// List implements Store.
func (s *BoltStore) List(_ context.Context) ([]Summary, error) {
	var summaries []Summary
	err := s.db.View(func(tx *bolt.Tx) error {
		updated := tx.Bucket(bucketUpdatedAt)
		return tx.Bucket(bucketConversations).ForEach(func(k, v []byte) error {
			summaries = append(summaries, summaryFromPayload(v, decodeMillis(updated.Get(k))))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	sortSummaries(summaries)
	return summaries, nil
}

// Remove implements Store.
func (s *BoltStore) Remove(_ context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		key := []byte(id)
		conversations := tx.Bucket(bucketConversations)
		if conversations.Get(key) == nil {
			return ErrNotFound
		}
		if err := conversations.Delete(key); err != nil {
			return fmt.Errorf("removing conversation: %w", err)
		}
		return tx.Bucket(bucketUpdatedAt).Delete(key)
	})
}

// SetFavorite implements Store.
func (s *BoltStore) SetFavorite(_ context.Context, id string, favorite bool) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketConversations).Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}
		// v is only valid inside the transaction.
		payload := make([]byte, len(v))
		copy(payload, v)

		patched, err := sjson.SetBytes(payload, "isFavorite", favorite)
		if err != nil {
			return fmt.Errorf("patching favorite flag: %w", err)
		}
		return writeEntry(tx, id, patched)
	})
}

// Close implements Store.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func writeEntry(tx *bolt.Tx, id string, payload []byte) error {
	key := []byte(id)
	if err := tx.Bucket(bucketConversations).Put(key, payload); err != nil {
		return err
	}
	return tx.Bucket(bucketUpdatedAt).Put(key, encodeMillis(time.Now()))
}

func encodeMillis(t time.Time) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(t.UnixMilli())) //nolint:gosec // Timestamps are positive.
	return buf
}

func decodeMillis(b []byte) time.Time {
	if len(b) != 8 {
		return time.Time{}
	}
	return time.UnixMilli(int64(binary.BigEndian.Uint64(b))).UTC() //nolint:gosec // Written by encodeMillis.
}
