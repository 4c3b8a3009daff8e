// Package queue defines the contract for enqueuing and consuming
// interactions on their way to the stores.
//
// The implementation is an in-memory bounded queue; enqueue is
// non-blocking and reports backpressure to the caller.
package queue

import (
	"context"
	"sync"

	"github.com/huddleapp/huddle/internal/domain/model"
	"github.com/huddleapp/huddle/pkg/metrics"
)

// defaultCapacity bounds the in-memory queue.
const defaultCapacity = 100000

// Interaction is the payload type flowing through the queue.
type Interaction = model.Interaction

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an interaction to the queue.
	// Returns false if the queue is full and the interaction was dropped.
	Enqueue(ctx context.Context, in Interaction) bool

	// Dequeue returns a channel that receives interactions as they
	// become available. The channel closes when the queue closes.
	Dequeue(ctx context.Context) <-chan Interaction

	// Len returns the current number of queued interactions.
	Len(ctx context.Context) int

	// Close shuts down the queue. No new interactions can be enqueued
	// and the dequeue channel is closed.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	items    chan Interaction
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// Option applies a configuration option to the InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity sets the maximum capacity of the queue.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.items = make(chan Interaction, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds an interaction to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, in Interaction) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		return false
	}

	select {
	case q.items <- in:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.items))
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		return false
	default:
		// Queue full: report backpressure instead of blocking.
		metrics.RecordQueueEnqueueError()
		return false
	}
}

// Dequeue returns a channel that receives interactions as they become
// available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Interaction {
	out := make(chan Interaction)
	go func() {
		defer close(out)
		for in := range q.items {
			select {
			case out <- in:
				metrics.RecordQueueDequeue()
				metrics.UpdateQueueSize(len(q.items))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued interactions.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.items)
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.items)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
