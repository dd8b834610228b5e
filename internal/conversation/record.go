// Package conversation defines the persisted conversation record and its
// three variants: chat, image generation and image editing.
package conversation

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Kind identifies which variant a record holds.
type Kind string

// Kind constants. The string values are the persisted type tags.
const (
	KindChat            Kind = "chat"
	KindImageGeneration Kind = "imageGeneration"
	KindImageEditing    Kind = "imageEditing"
)

// Kinds returns every known record kind.
func Kinds() []Kind {
	return []Kind{KindChat, KindImageGeneration, KindImageEditing}
}

// Record is one persisted conversation: the common envelope plus the
// variant-specific content. The record type is derived from Content and
// can therefore never disagree with it.
type Record struct {
	Content    Content
	CreatedAt  time.Time
	ID         string
	Title      string
	IsFavorite bool
}

// Content is the variant part of a record. It is sealed: only *Chat,
// *Generation and *Editing implement it.
type Content interface {
	Kind() Kind
	// Entries returns the length of the variant's history.
	Entries() int
	Accept(v Visitor)
	sealed()
}

// Visitor handles each record variant. Adding a variant adds a method here,
// which breaks every implementation until it handles the new case.
type Visitor interface {
	VisitChat(c *Chat)
	VisitGeneration(g *Generation)
	VisitEditing(e *Editing)
}

// Match dispatches on the content variant and returns the selected handler's result.
func Match[T any](c Content, onChat func(*Chat) T, onGeneration func(*Generation) T, onEditing func(*Editing) T) T {
	m := &matcher[T]{onChat: onChat, onGeneration: onGeneration, onEditing: onEditing}
	c.Accept(m)
	return m.out
}

type matcher[T any] struct {
	onChat       func(*Chat) T
	onGeneration func(*Generation) T
	onEditing    func(*Editing) T
	out          T
}

func (m *matcher[T]) VisitChat(c *Chat)             { m.out = m.onChat(c) }
func (m *matcher[T]) VisitGeneration(g *Generation) { m.out = m.onGeneration(g) }
func (m *matcher[T]) VisitEditing(e *Editing)       { m.out = m.onEditing(e) }

// New builds a record around the given content.
func New(id, title string, createdAt time.Time, content Content) *Record {
	return &Record{
		ID:        id,
		Title:     title,
		CreatedAt: createdAt,
		Content:   content,
	}
}

// Kind returns the record's type tag, or "" for a record without content.
func (r *Record) Kind() Kind {
	if r == nil || r.Content == nil {
		return ""
	}
	return r.Content.Kind()
}

// Chat returns the chat content when the record is a chat.
func (r *Record) Chat() (*Chat, bool) {
	c, ok := r.Content.(*Chat)
	return c, ok
}

// Generation returns the image generation content when the record is one.
func (r *Record) Generation() (*Generation, bool) {
	g, ok := r.Content.(*Generation)
	return g, ok
}

// Editing returns the image editing content when the record is one.
func (r *Record) Editing() (*Editing, bool) {
	e, ok := r.Content.(*Editing)
	return e, ok
}

// Now returns the current time at the precision records are persisted with.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
