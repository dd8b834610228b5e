package pubsub

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultBufferSize is the default channel buffer for subscribers.
const DefaultBufferSize = 64

// BrokerOption configures a Broker.
type BrokerOption[T any] func(*Broker[T])

// WithBufferSize sets the subscriber channel buffer size.
func WithBufferSize[T any](size int) BrokerOption[T] {
	return func(b *Broker[T]) {
		b.bufferSize = size
	}
}

// WithBlockingDelivery makes Publish wait for slow subscribers instead of
// dropping their events.
func WithBlockingDelivery[T any]() BrokerOption[T] {
	return func(b *Broker[T]) {
		b.blocking = true
	}
}

type subscription[T any] struct {
	ch     chan Event[T]
	gone   <-chan struct{}
	filter func(T) bool
}

// Broker fans typed events out to subscribers. Subscriptions live until
// their context is cancelled or the broker shuts down.
type Broker[T any] struct { //nolint:govet // fieldalignment: preserving logical field order
	name       string
	subs       map[*subscription[T]]struct{}
	mu         sync.RWMutex
	done       chan struct{}
	closeOnce  sync.Once
	bufferSize int
	blocking   bool

	published atomic.Int64
	dropped   atomic.Int64
	peak      atomic.Int32
}

// NewBroker creates a new typed broker with optional configuration.
func NewBroker[T any](name string, opts ...BrokerOption[T]) *Broker[T] {
	b := &Broker[T]{
		name:       name,
		subs:       make(map[*subscription[T]]struct{}),
		done:       make(chan struct{}),
		bufferSize: DefaultBufferSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the broker's name for debugging.
func (b *Broker[T]) Name() string {
	return b.name
}

// Subscribe receives every event until ctx is done.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	return b.SubscribeFunc(ctx, nil)
}

// SubscribeFunc receives the events whose payload satisfies keep. A nil keep
// receives everything. The channel is closed when ctx is done or the broker
// shuts down.
func (b *Broker[T]) SubscribeFunc(ctx context.Context, keep func(T) bool) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.IsShutdown() {
		ch := make(chan Event[T])
		close(ch)
		return ch
	}

	sub := &subscription[T]{ch: make(chan Event[T], b.bufferSize), gone: ctx.Done(), filter: keep}
	b.subs[sub] = struct{}{}
	if n := int32(len(b.subs)); n > b.peak.Load() { //nolint:gosec // Subscriber counts are small.
		b.peak.Store(n)
	}

	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
		}
		b.remove(sub)
	}()

	return sub.ch
}

func (b *Broker[T]) remove(sub *subscription[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub]; !ok {
		return
	}
	delete(b.subs, sub)
	close(sub.ch)
}

// Publish sends an event to all matching subscribers. Unless the broker was
// built with WithBlockingDelivery, an event is dropped for a subscriber
// whose buffer is full.
func (b *Broker[T]) Publish(eventType EventType, payload T) {
	// The read lock is held during delivery so remove cannot close a
	// channel that is being sent on.
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.IsShutdown() || len(b.subs) == 0 {
		return
	}

	event := Event[T]{Type: eventType, Payload: payload, Timestamp: time.Now()}
	b.published.Add(1)

	for sub := range b.subs {
		if sub.filter != nil && !sub.filter(payload) {
			continue
		}
		if b.blocking {
			select {
			case sub.ch <- event:
			case <-sub.gone:
			case <-b.done:
				return
			}
			continue
		}
		select {
		case sub.ch <- event:
		default:
			b.dropped.Add(1)
		}
	}
}

// Shutdown closes every subscriber channel. Later publishes are ignored.
func (b *Broker[T]) Shutdown() {
	// done is closed before taking the lock so a blocked Publish lets go.
	b.closeOnce.Do(func() { close(b.done) })

	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		delete(b.subs, sub)
		close(sub.ch)
	}
}

// IsShutdown returns true if the broker has been shut down.
func (b *Broker[T]) IsShutdown() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

// SubscriberCount returns the current number of subscribers.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Metrics returns the broker's metrics for debugging.
func (b *Broker[T]) Metrics() BrokerMetrics {
	return BrokerMetrics{
		Name:            b.name,
		PublishCount:    b.published.Load(),
		DropCount:       b.dropped.Load(),
		SubscriberCount: b.SubscriberCount(),
		SubscriberPeak:  int(b.peak.Load()),
	}
}

// BrokerMetrics contains broker statistics for debugging.
type BrokerMetrics struct {
	Name            string
	PublishCount    int64
	DropCount       int64
	SubscriberCount int
	SubscriberPeak  int
}
