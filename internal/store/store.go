// Package store persists conversation records keyed by id.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/guilhermegouw/atelier/internal/conversation"
)

// ErrNotFound is returned by Remove and SetFavorite for an unknown id.
var ErrNotFound = errors.New("conversation not found")

// Summary describes a stored record without its history.
type Summary struct {
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ID         string
	Title      string
	Kind       conversation.Kind
	Entries    int
	IsFavorite bool
}

// Store defines conversation persistence.
//
// Put is last-write-wins. Callers appending to a record must re-read it with
// Get right before writing it back, holding the record's lock (see Locker).
type Store interface {
	// Get returns the record stored under id. A missing id is reported
	// with ok == false and a nil error.
	Get(ctx context.Context, id string) (rec *conversation.Record, ok bool, err error)

	// Put inserts or fully replaces the record stored under rec.ID.
	Put(ctx context.Context, rec *conversation.Record) error

	// List returns summaries of all records, newest first.
	List(ctx context.Context) ([]Summary, error)

	// Remove deletes the record stored under id.
	Remove(ctx context.Context, id string) error

	// SetFavorite sets the favorite flag of the record stored under id.
	SetFavorite(ctx context.Context, id string, favorite bool) error

	// Close releases the underlying storage.
	Close() error
}

// LockingStore is a Store whose records can be locked individually.
type LockingStore interface {
	Store
	// Lock blocks until the record id is free and returns the release func.
	Lock(id string) (unlock func())
}

func validateRecord(rec *conversation.Record) error {
	if rec == nil || rec.ID == "" {
		return errors.New("record has no id")
	}
	if rec.Content == nil {
		return errors.New("record has no content")
	}
	return nil
}
