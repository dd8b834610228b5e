package conversation

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Decoding errors. Both mean the stored bytes cannot be turned back into a record.
var (
	ErrUnknownKind = errors.New("unknown conversation type")
	ErrMalformed   = errors.New("malformed conversation record")
)

// IsCorrupt reports whether err comes from decoding an unreadable record.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrMalformed) || errors.Is(err, ErrUnknownKind)
}

// wireRecord is the persisted JSON layout of a record. Variant fields are
// flattened next to the envelope, keyed by the "type" tag.
type wireRecord struct {
	AnalysisResult *string         `json:"analysisResult,omitempty"`
	BaseImage      *Image          `json:"baseImage,omitempty"`
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Type           Kind            `json:"type"`
	ModelUsed      string          `json:"modelUsed,omitempty"`
	Messages       []Message       `json:"messages,omitempty"`
	History        json.RawMessage `json:"history,omitempty"`
	CreatedAt      int64           `json:"createdAt"`
	IsFavorite     bool            `json:"isFavorite"`
}

type wireGenerationEvent struct {
	Prompt     string           `json:"prompt"`
	Images     []Image          `json:"generatedImages"`
	Parameters GenerationParams `json:"parameters"`
	Timestamp  int64            `json:"timestamp"`
}

type wireEditEvent struct {
	Prompt      string `json:"prompt"`
	EditedImage Image  `json:"editedImage"`
	Timestamp   int64  `json:"timestamp"`
}

// Marshal encodes a record into its persisted form.
func Marshal(r *Record) ([]byte, error) {
	if r.Content == nil {
		return nil, fmt.Errorf("record %q has no content", r.ID)
	}
	w := &wireRecord{
		ID:         r.ID,
		Title:      r.Title,
		CreatedAt:  toMillis(r.CreatedAt),
		IsFavorite: r.IsFavorite,
		Type:       r.Kind(),
	}
	enc := &encoder{w: w}
	r.Content.Accept(enc)
	if enc.err != nil {
		return nil, enc.err
	}
	return json.Marshal(w)
}

type encoder struct {
	w   *wireRecord
	err error
}

func (e *encoder) VisitChat(c *Chat) {
	e.w.ModelUsed = c.Model
	for _, m := range c.Messages {
		if !m.IsPlaceholder() {
			e.w.Messages = append(e.w.Messages, m)
		}
	}
}

func (e *encoder) VisitGeneration(g *Generation) {
	events := make([]wireGenerationEvent, len(g.History))
	for i, ev := range g.History {
		events[i] = wireGenerationEvent{
			Prompt:     ev.Prompt,
			Images:     ev.Images,
			Parameters: ev.Params,
			Timestamp:  toMillis(ev.Timestamp),
		}
	}
	e.w.History, e.err = json.Marshal(events)
}

func (e *encoder) VisitEditing(ed *Editing) {
	base := ed.Base
	e.w.BaseImage = &base
	e.w.AnalysisResult = ed.Analysis
	events := make([]wireEditEvent, len(ed.History))
	for i, ev := range ed.History {
		events[i] = wireEditEvent{
			Prompt:      ev.Prompt,
			EditedImage: ev.Edited,
			Timestamp:   toMillis(ev.Timestamp),
		}
	}
	e.w.History, e.err = json.Marshal(events)
}

// Unmarshal decodes a persisted record.
func Unmarshal(data []byte) (*Record, error) {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	r := &Record{
		ID:         w.ID,
		Title:      w.Title,
		CreatedAt:  fromMillis(w.CreatedAt),
		IsFavorite: w.IsFavorite,
	}

	switch w.Type {
	case KindChat:
		c := &Chat{Model: w.ModelUsed}
		if len(w.Messages) > 0 {
			c.Messages = w.Messages
		}
		r.Content = c
	case KindImageGeneration:
		var events []wireGenerationEvent
		if err := decodeHistory(w.History, &events); err != nil {
			return nil, err
		}
		g := &Generation{}
		for _, ev := range events {
			g.History = append(g.History, GenerationEvent{
				Prompt:    ev.Prompt,
				Images:    ev.Images,
				Params:    ev.Parameters,
				Timestamp: fromMillis(ev.Timestamp),
			})
		}
		r.Content = g
	case KindImageEditing:
		var events []wireEditEvent
		if err := decodeHistory(w.History, &events); err != nil {
			return nil, err
		}
		ed := &Editing{Analysis: w.AnalysisResult}
		if w.BaseImage != nil {
			ed.Base = *w.BaseImage
		}
		for _, ev := range events {
			ed.History = append(ed.History, EditEvent{
				Prompt:    ev.Prompt,
				Edited:    ev.EditedImage,
				Timestamp: fromMillis(ev.Timestamp),
			})
		}
		r.Content = ed
	default:
		return nil, fmt.Errorf("record %q: %w: %q", w.ID, ErrUnknownKind, w.Type)
	}

	return r, nil
}

func decodeHistory(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: history: %w", ErrMalformed, err)
	}
	return nil
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
