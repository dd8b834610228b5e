package conversation

import (
	"encoding/base64"
	"fmt"
	"time"
)

// Editing defaults.
const (
	DefaultAnalysisModel = "gemini-2.5-flash"
	DefaultEditModel     = "gemini-2.5-flash-image"
	AnalysisInstruction  = "Describe this image in detail."
	defaultEditName      = "Image Session"
)

// Image is an image reference together with its encoded bytes.
type Image struct {
	URL      string `json:"url,omitempty"`
	MIMEType string `json:"mimeType" validate:"required,startswith=image/"`
	Data     []byte `json:"base64" validate:"required,min=1"`
}

// Validate reports whether the image carries bytes and an image MIME type.
func (i Image) Validate() error {
	if err := validate.Struct(i); err != nil {
		return fmt.Errorf("invalid image: %w", err)
	}
	return nil
}

// DataURL returns the image encoded as a data: URL.
func (i Image) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", i.MIMEType, base64.StdEncoding.EncodeToString(i.Data))
}

// EditEvent is one instruction in the edit chain and the image it produced.
type EditEvent struct {
	Timestamp time.Time
	Prompt    string
	Edited    Image
}

// Editing is the iterative image editing variant. The image currently shown
// and edited is never stored; Current derives it from the chain.
type Editing struct {
	Analysis *string
	Base     Image
	History  []EditEvent
}

// NewEditing returns editing content for a freshly uploaded base image.
func NewEditing(base Image) *Editing {
	return &Editing{Base: base}
}

// Current returns the output of the last edit, or the base image when no
// edit has been made yet.
func (e *Editing) Current() Image {
	if n := len(e.History); n > 0 {
		return e.History[n-1].Edited
	}
	return e.Base
}

// Append adds ev to the end of the edit chain.
func (e *Editing) Append(ev EditEvent) {
	e.History = append(e.History, ev)
}

// SetAnalysis replaces the analysis result.
func (e *Editing) SetAnalysis(text string) {
	e.Analysis = &text
}

// Kind implements Content.
func (e *Editing) Kind() Kind { return KindImageEditing }

// Entries implements Content.
func (e *Editing) Entries() int { return len(e.History) }

// Accept implements Content.
func (e *Editing) Accept(v Visitor) { v.VisitEditing(e) }

func (e *Editing) sealed() {}

// EditTitle returns the title of an editing record for an upload named name.
func EditTitle(name string) string {
	if name == "" {
		name = defaultEditName
	}
	return Title("Edit: " + name)
}
