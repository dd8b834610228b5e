// Package gateway defines the AI backend used by conversation sessions and
// a fail-closed wrapper around it.
package gateway

import (
	"context"

	"github.com/guilhermegouw/atelier/internal/conversation"
)

// Gateway is an AI backend. Implementations return errors; sessions talk to
// it through Safe, which never lets a backend failure escape.
type Gateway interface {
	// ChatComplete answers the last message of history using model.
	ChatComplete(ctx context.Context, model string, history []conversation.Message) (string, error)

	// GenerateImages renders prompt with params. An empty result is a failure.
	GenerateImages(ctx context.Context, prompt string, params conversation.GenerationParams) ([]conversation.Image, error)

	// AnalyzeImage describes img following instruction.
	AnalyzeImage(ctx context.Context, img conversation.Image, instruction string) (string, error)

	// EditImage applies instruction to img and returns the new image.
	EditImage(ctx context.Context, img conversation.Image, instruction string) (*conversation.Image, error)
}
