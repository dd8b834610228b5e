package conversation

import (
	"fmt"
	"time"
)

// AspectRatio is the shape of a generated image.
type AspectRatio string

// Supported aspect ratios.
const (
	AspectSquare        AspectRatio = "1:1"
	AspectWidescreen    AspectRatio = "16:9"
	AspectPortraitTall  AspectRatio = "9:16"
	AspectLandscape     AspectRatio = "4:3"
	AspectPortrait      AspectRatio = "3:4"
	DefaultAspectRatio              = AspectPortrait
	DefaultImageModel               = "imagen-3.0-generate-002"
	DefaultNumberOfImages           = 1
	MaxNumberOfImages               = 4
)

// Output formats.
const (
	MIMETypePNG  = "image/png"
	MIMETypeJPEG = "image/jpeg"
)

// AspectRatios returns the supported aspect ratios in display order.
func AspectRatios() []AspectRatio {
	return []AspectRatio{AspectSquare, AspectWidescreen, AspectPortraitTall, AspectLandscape, AspectPortrait}
}

// ImageModels lists the selectable image generation models.
var ImageModels = []string{
	"imagen-3.0-generate-002",
	"imagen-4.0-generate-001",
	"imagen-4.0-ultra-generate-001",
	"imagen-4.0-fast-generate-001",
}

// GenerationParams are the settings submitted with a generation prompt.
type GenerationParams struct {
	Model          string      `json:"model" validate:"required"`
	AspectRatio    AspectRatio `json:"aspectRatio" validate:"required,oneof=1:1 16:9 9:16 4:3 3:4"`
	OutputMIMEType string      `json:"outputMimeType" validate:"required,oneof=image/png image/jpeg"`
	NumberOfImages int         `json:"numberOfImages" validate:"min=1,max=4"`
}

// DefaultGenerationParams returns the settings a new generation session starts with.
func DefaultGenerationParams() GenerationParams {
	return GenerationParams{
		Model:          DefaultImageModel,
		AspectRatio:    DefaultAspectRatio,
		NumberOfImages: DefaultNumberOfImages,
		OutputMIMEType: MIMETypePNG,
	}
}

// Validate reports whether the parameters can be sent to the gateway.
func (p GenerationParams) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid generation parameters: %w", err)
	}
	return nil
}

// GenerationEvent is one prompt and the images it produced.
type GenerationEvent struct {
	Timestamp time.Time
	Prompt    string
	Images    []Image
	Params    GenerationParams
}

// Generation is the batch image generation variant.
type Generation struct {
	History []GenerationEvent
}

// NewGeneration returns generation content holding a single event.
func NewGeneration(first GenerationEvent) *Generation {
	return &Generation{History: []GenerationEvent{first}}
}

// Append adds ev to the end of the history.
func (g *Generation) Append(ev GenerationEvent) {
	g.History = append(g.History, ev)
}

// Kind implements Content.
func (g *Generation) Kind() Kind { return KindImageGeneration }

// Entries implements Content.
func (g *Generation) Entries() int { return len(g.History) }

// Accept implements Content.
func (g *Generation) Accept(v Visitor) { v.VisitGeneration(g) }

func (g *Generation) sealed() {}
