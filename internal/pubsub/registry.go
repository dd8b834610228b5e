package pubsub

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// BrokerInfo provides debug information about a registered broker.
type BrokerInfo interface {
	Name() string
	SubscriberCount() int
	IsShutdown() bool
	Metrics() BrokerMetrics
}

// Registry tracks brokers by name for introspection.
type Registry struct {
	brokers map[string]BrokerInfo
	mu      sync.RWMutex
}

// NewRegistry creates a new broker registry.
func NewRegistry() *Registry {
	return &Registry{brokers: make(map[string]BrokerInfo)}
}

// Register adds a broker under its own name.
func (r *Registry) Register(broker BrokerInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.brokers[broker.Name()] = broker
}

// Get retrieves a broker by name.
func (r *Registry) Get(name string) (BrokerInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.brokers[name]
	return b, ok
}

// Names returns the registered broker names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.brokers))
	for name := range r.brokers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// AllMetrics returns metrics for all registered brokers, sorted by name.
func (r *Registry) AllMetrics() []BrokerMetrics {
	names := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()
	metrics := make([]BrokerMetrics, 0, len(names))
	for _, name := range names {
		if b, ok := r.brokers[name]; ok {
			metrics = append(metrics, b.Metrics())
		}
	}
	return metrics
}

// DebugString returns a formatted debug string for all brokers.
func (r *Registry) DebugString() string {
	metrics := r.AllMetrics()

	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Broker Registry (%d brokers) ===\n", len(metrics))
	for _, m := range metrics {
		fmt.Fprintf(&sb, "  %s: subs=%d (peak=%d), published=%d, dropped=%d\n",
			m.Name, m.SubscriberCount, m.SubscriberPeak, m.PublishCount, m.DropCount)
	}
	return sb.String()
}
