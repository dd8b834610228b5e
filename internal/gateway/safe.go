package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/guilhermegouw/atelier/internal/conversation"
	"github.com/guilhermegouw/atelier/internal/debug"
	"github.com/guilhermegouw/atelier/internal/events"
	"github.com/guilhermegouw/atelier/internal/pubsub"
)

// Fallback texts returned in place of a failed text response.
const (
	ChatApology     = "Sorry, I encountered an error. Please try again."
	AnalysisApology = "Sorry, I couldn't analyze the image."
)

// ErrNoResult is reported when the backend answered without an image.
var ErrNoResult = errors.New("backend returned no image")

// Safe wraps a Gateway so failures never propagate as errors: text calls
// fall back to an apology and image calls return nothing. Every call is
// logged and published on the gateway broker.
type Safe struct {
	gw     Gateway
	broker pubsub.Publisher[events.GatewayEvent]
	// models recorded on events; the backend decides what it actually uses.
	analysisModel string
	editModel     string
}

// SafeOption configures a Safe.
type SafeOption func(*Safe)

// WithBroker publishes call events to broker.
func WithBroker(broker pubsub.Publisher[events.GatewayEvent]) SafeOption {
	return func(s *Safe) {
		s.broker = broker
	}
}

// WithModels sets the analysis and edit model names reported on events.
func WithModels(analysis, edit string) SafeOption {
	return func(s *Safe) {
		s.analysisModel = analysis
		s.editModel = edit
	}
}

// NewSafe wraps gw.
func NewSafe(gw Gateway, opts ...SafeOption) *Safe {
	s := &Safe{
		gw:            gw,
		analysisModel: conversation.DefaultAnalysisModel,
		editModel:     conversation.DefaultEditModel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Chat returns the model's reply, or ChatApology when the call fails.
func (s *Safe) Chat(ctx context.Context, model string, history []conversation.Message) string {
	call := s.start(events.OperationChat, model)
	text, err := s.gw.ChatComplete(ctx, model, history)
	if err == nil && text == "" {
		err = errors.New("empty reply")
	}
	if call.finish(err) != nil {
		return ChatApology
	}
	return text
}

// Generate returns the generated images. err is non-nil exactly when no
// image was produced; it is informational and already logged.
func (s *Safe) Generate(ctx context.Context, prompt string, params conversation.GenerationParams) ([]conversation.Image, error) {
	call := s.start(events.OperationGenerate, params.Model)
	images, err := s.gw.GenerateImages(ctx, prompt, params)
	if err == nil && len(images) == 0 {
		err = ErrNoResult
	}
	if err = call.finish(err); err != nil {
		return nil, err
	}
	return images, nil
}

// Analyze returns a description of img, or AnalysisApology when the call fails.
func (s *Safe) Analyze(ctx context.Context, img conversation.Image, instruction string) string {
	call := s.start(events.OperationAnalyze, s.analysisModel)
	text, err := s.gw.AnalyzeImage(ctx, img, instruction)
	if err == nil && text == "" {
		err = errors.New("empty analysis")
	}
	if call.finish(err) != nil {
		return AnalysisApology
	}
	return text
}

// Edit returns the edited image. err is non-nil exactly when no image was
// produced.
func (s *Safe) Edit(ctx context.Context, img conversation.Image, instruction string) (*conversation.Image, error) {
	call := s.start(events.OperationEdit, s.editModel)
	out, err := s.gw.EditImage(ctx, img, instruction)
	if err == nil && (out == nil || len(out.Data) == 0) {
		err = ErrNoResult
	}
	if err = call.finish(err); err != nil {
		return nil, err
	}
	return out, nil
}

type call struct {
	s         *Safe
	operation string
	model     string
	started   time.Time
}

func (s *Safe) start(operation, model string) *call {
	debug.Event("gateway", operation, "model="+model)
	s.publish(pubsub.EventStarted, events.NewGatewayStartedEvent(operation, model))
	return &call{s: s, operation: operation, model: model, started: time.Now()}
}

// finish records the outcome and returns err wrapped with the operation name.
func (c *call) finish(err error) error {
	elapsed := time.Since(c.started)
	if err != nil {
		err = fmt.Errorf("%s with %s: %w", c.operation, c.model, err)
		debug.Error("gateway", err, c.operation+" failed")
		c.s.publish(pubsub.EventFailed, events.NewGatewayFailedEvent(c.operation, c.model, elapsed, err))
		return err
	}
	debug.L().Debug().Str("component", "gateway").Str("operation", c.operation).Dur("elapsed", elapsed).Msg("call completed")
	c.s.publish(pubsub.EventCompleted, events.NewGatewayCompletedEvent(c.operation, c.model, elapsed))
	return nil
}

func (s *Safe) publish(t pubsub.EventType, e events.GatewayEvent) {
	if s.broker != nil {
		s.broker.Publish(t, e)
	}
}
