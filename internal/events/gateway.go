package events

import "time"

// GatewayEventType represents AI gateway call event types.
type GatewayEventType string

// Gateway event type constants.
const (
	GatewayEventStarted   GatewayEventType = "started"
	GatewayEventCompleted GatewayEventType = "completed"
	GatewayEventFailed    GatewayEventType = "failed"
)

// Gateway operations.
const (
	OperationChat     = "chat"
	OperationGenerate = "generate"
	OperationAnalyze  = "analyze"
	OperationEdit     = "edit"
)

// GatewayEvent reports the progress of one call to the AI backend.
type GatewayEvent struct { //nolint:govet // fieldalignment: preserving logical field order
	Operation string
	Model     string
	Type      GatewayEventType
	Timestamp time.Time

	Duration time.Duration // For Completed and Failed
	Error    error         // For Failed
}

// NewGatewayStartedEvent creates a call started event.
func NewGatewayStartedEvent(operation, model string) GatewayEvent {
	return GatewayEvent{
		Operation: operation,
		Model:     model,
		Type:      GatewayEventStarted,
		Timestamp: time.Now(),
	}
}

// NewGatewayCompletedEvent creates a call completed event.
func NewGatewayCompletedEvent(operation, model string, d time.Duration) GatewayEvent {
	return GatewayEvent{
		Operation: operation,
		Model:     model,
		Type:      GatewayEventCompleted,
		Duration:  d,
		Timestamp: time.Now(),
	}
}

// NewGatewayFailedEvent creates a call failed event.
func NewGatewayFailedEvent(operation, model string, d time.Duration, err error) GatewayEvent {
	return GatewayEvent{
		Operation: operation,
		Model:     model,
		Type:      GatewayEventFailed,
		Duration:  d,
		Error:     err,
		Timestamp: time.Now(),
	}
}
