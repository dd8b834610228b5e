package pubsub

import (
	"github.com/guilhermegouw/atelier/internal/events"
)

// Hub holds the brokers shared by sessions and their observers.
type Hub struct { //nolint:govet // fieldalignment: preserving logical field order
	Conversation *Broker[events.ConversationEvent]
	Gateway      *Broker[events.GatewayEvent]

	registry *Registry
	done     chan struct{}
}

// HubOption configures a Hub.
type HubOption func(*hubConfig)

type hubConfig struct {
	blocking bool
}

// WithLosslessDelivery makes every broker of the hub wait for slow
// subscribers instead of dropping events. Use it when each observer must
// see every event, such as a log of the session.
func WithLosslessDelivery() HubOption {
	return func(c *hubConfig) {
		c.blocking = true
	}
}

// NewHub creates a new Hub with all domain brokers initialized.
func NewHub(opts ...HubOption) *Hub {
	var cfg hubConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var (
		conversationOpts []BrokerOption[events.ConversationEvent]
		gatewayOpts      []BrokerOption[events.GatewayEvent]
	)
	if cfg.blocking {
		conversationOpts = append(conversationOpts, WithBlockingDelivery[events.ConversationEvent]())
		gatewayOpts = append(gatewayOpts, WithBlockingDelivery[events.GatewayEvent]())
	}

	h := &Hub{
		Conversation: NewBroker[events.ConversationEvent]("conversation", conversationOpts...),
		Gateway:      NewBroker[events.GatewayEvent]("gateway", gatewayOpts...),
		registry:     NewRegistry(),
		done:         make(chan struct{}),
	}
	h.registry.Register(h.Conversation)
	h.registry.Register(h.Gateway)
	return h
}

// Shutdown shuts down all brokers. It is safe to call more than once.
func (h *Hub) Shutdown() {
	select {
	case <-h.done:
		return
	default:
		close(h.done)
	}
	h.Conversation.Shutdown()
	h.Gateway.Shutdown()
}

// IsShutdown returns true if the hub has been shut down.
func (h *Hub) IsShutdown() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Done returns a channel that's closed when the hub is shut down.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Registry returns the debug registry for introspection.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// DebugString returns a formatted debug string for all brokers.
func (h *Hub) DebugString() string {
	return h.registry.DebugString()
}
