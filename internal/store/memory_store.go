package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/huandu/go-clone"
	"github.com/patrickmn/go-cache"

	"github.com/guilhermegouw/atelier/internal/conversation"
)

// memoryEntry is what the cache holds for one record.
type memoryEntry struct {
	rec       *conversation.Record
	updatedAt time.Time
}

// MemoryStore keeps records in process memory. Records are deep-copied on
// the way in and out, so callers never share a snapshot with the store.
type MemoryStore struct {
	cache *cache.Cache
	// mu serializes SetFavorite's read-modify-write against Put.
	mu sync.Mutex
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store. Records never expire.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (*conversation.Record, bool, error) {
	v, found := s.cache.Get(id)
	if !found {
		return nil, false, nil
	}
	entry := v.(memoryEntry) //nolint:errcheck,forcetypeassert // Only memoryEntry values are stored.
	return cloneRecord(entry.rec), true, nil
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, rec *conversation.Record) error {
	if err := validateRecord(rec); err != nil {
		return fmt.Errorf("putting conversation: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Set(rec.ID, memoryEntry{rec: cloneRecord(rec), updatedAt: time.Now()}, cache.NoExpiration)
	return nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context) ([]Summary, error) {
	items := s.cache.Items()
	summaries := make([]Summary, 0, len(items))
	for _, item := range items {
		entry := item.Object.(memoryEntry) //nolint:errcheck,forcetypeassert // Only memoryEntry values are stored.
		summaries = append(summaries, summaryFromRecord(entry.rec, entry.updatedAt))
	}
	sortSummaries(summaries)
	return summaries, nil
}

// Remove implements Store.
func (s *MemoryStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.cache.Get(id); !found {
		return ErrNotFound
	}
	s.cache.Delete(id)
	return nil
}

// SetFavorite implements Store.
func (s *MemoryStore) SetFavorite(_ context.Context, id string, favorite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, found := s.cache.Get(id)
	if !found {
		return ErrNotFound
	}
	entry := v.(memoryEntry) //nolint:errcheck,forcetypeassert // Only memoryEntry values are stored.
	rec := cloneRecord(entry.rec)
	rec.IsFavorite = favorite
	s.cache.Set(id, memoryEntry{rec: rec, updatedAt: time.Now()}, cache.NoExpiration)
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.cache.Flush()
	return nil
}

func cloneRecord(rec *conversation.Record) *conversation.Record {
	return clone.Clone(rec).(*conversation.Record) //nolint:errcheck,forcetypeassert // Clone preserves the type.
}
