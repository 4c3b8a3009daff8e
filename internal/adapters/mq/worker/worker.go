// Package worker drains the interaction queue into the stores.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/huddleapp/huddle/internal/domain/model"
	"github.com/huddleapp/huddle/pkg/logger"
	"github.com/huddleapp/huddle/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
)

// Interaction is what workers read off the queue.
type Interaction = model.Interaction

// Recorder appends interactions to the durable log.
type Recorder interface {
	Record(ctx context.Context, in model.Interaction) error
}

// ProfileUpdater applies the learning rule for one interaction.
type ProfileUpdater interface {
	ApplyInteraction(ctx context.Context, in model.Interaction) error
}

// Queue defines how workers receive interactions.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Interaction
}

// Worker processes interactions from the queue. Processing failures are
// logged and swallowed: a failed record never propagates to the
// submitting caller.
type Worker struct {
	queue    Queue
	recorder Recorder
	profiles ProfileUpdater
	name     string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a worker with configuration options.
func New(q Queue, recorder Recorder, profiles ProfileUpdater, opts ...Option) *Worker {
	w := &Worker{
		queue:    q,
		recorder: recorder,
		profiles: profiles,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run starts the worker loop until ctx is canceled or the queue closes.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	items := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case in, ok := <-items:
			if !ok {
				return
			}
			w.process(ctx, in)
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process appends the interaction and applies the profile update.
// A recording failure skips the profile update; a profile failure still
// counts the interaction as recorded.
func (w *Worker) process(ctx context.Context, in Interaction) {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := w.recorder.Record(ctx, in); err != nil {
		metrics.RecordWorkerError()
		w.logger.Error(ctx, "recording interaction failed",
			logger.String("interactionID", in.ID),
			logger.String("userID", in.UserID),
			logger.Error(err),
		)
		return
	}

	if err := w.profiles.ApplyInteraction(ctx, in); err != nil {
		metrics.RecordWorkerError()
		w.logger.Error(ctx, "profile update failed",
			logger.String("interactionID", in.ID),
			logger.String("userID", in.UserID),
			logger.Error(err),
		)
		return
	}

	metrics.RecordInteractionProcessed()
}

// Pool manages multiple workers draining the same queue.
type Pool struct {
	workers []*Worker
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers.
func NewPool(workerCount int, q Queue, recorder Recorder, profiles ProfileUpdater) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers: make([]*Worker, workerCount),
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		p.workers[i] = New(q, recorder, profiles, WithName("worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop gracefully stops all workers, waiting up to the shutdown timeout
// for each.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		ctx, cancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
		if err := w.Shutdown(ctx); err != nil {
			p.logger.Warn(ctx, "worker did not stop in time", logger.String("worker", w.name))
		}
		cancel()
	}
}
