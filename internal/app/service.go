// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/huddleapp/huddle/internal/adapters/eventsource"
	"github.com/huddleapp/huddle/internal/adapters/kv"
	interactionqueue "github.com/huddleapp/huddle/internal/adapters/mq/queue"
	workerpool "github.com/huddleapp/huddle/internal/adapters/mq/worker"
	"github.com/huddleapp/huddle/internal/adapters/reccache"
	"github.com/huddleapp/huddle/internal/adapters/repository"
	"github.com/huddleapp/huddle/internal/domain/dedupe"
	"github.com/huddleapp/huddle/internal/domain/insights"
	"github.com/huddleapp/huddle/internal/domain/model"
	"github.com/huddleapp/huddle/internal/domain/scoring"
	"github.com/huddleapp/huddle/pkg/logger"
	"github.com/huddleapp/huddle/pkg/metrics"
)

// defaultRecommendationLimit is used when a caller does not ask for a
// specific list size.
const defaultRecommendationLimit = 10

// Service wires the interaction pipeline, recommendation engine, and
// insight generator behind the methods the HTTP API depends on.
type Service struct {
	mu sync.RWMutex

	// Core components
	kvStore      kv.Store
	catalog      *eventsource.MemoryCatalog
	interactions *repository.InteractionStore
	profiles     *repository.ProfileStore
	recommender  *scoring.Recommender
	recCache     *reccache.Cache
	generator    *insights.Generator
	deduper      dedupe.Deduper
	queue        interactionqueue.Queue
	workerPool   *workerpool.Pool

	// Configuration
	workerCount            int
	queueSize              int
	dedupeSize             int
	maxRecommendationLimit int
	learningRate           float64
	cacheTTL               time.Duration
	maxInteractionsPerUser int
	badgerDir              string
	badgerInMemory         bool
	seedEvents             []model.Event
	social                 scoring.SocialScorer

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the interaction queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxRecommendationLimit caps the recommendation list size a caller
// may request.
func WithMaxRecommendationLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxRecommendationLimit = limit
		}
	}
}

// WithLearningRate sets the preference update step size.
func WithLearningRate(rate float64) Option {
	return func(s *Service) {
		if rate > 0 && rate <= 1 {
			s.learningRate = rate
		}
	}
}

// WithCacheTTL sets the recommendation cache freshness window.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithMaxInteractionsPerUser caps the retained per-user history.
func WithMaxInteractionsPerUser(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxInteractionsPerUser = n
		}
	}
}

// WithBadgerDir persists the store to the given directory instead of
// keeping it in memory.
func WithBadgerDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.badgerDir = dir
			s.badgerInMemory = false
		}
	}
}

// WithSocialScorer plugs a social-graph affinity source into the scorer.
func WithSocialScorer(sc scoring.SocialScorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.social = sc
		}
	}
}

// WithSeedEvents preloads the event catalog on start.
func WithSeedEvents(events []model.Event) Option {
	return func(s *Service) {
		s.seedEvents = events
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:            runtime.NumCPU() * 2,
		queueSize:              100_000,
		dedupeSize:             500_000,
		maxRecommendationLimit: 50,
		learningRate:           0.1,
		cacheTTL:               30 * time.Minute,
		maxInteractionsPerUser: 1000,
		badgerInMemory:         true,
		social:                 scoring.NeutralSocialScorer,
		stopCh:                 make(chan struct{}),
		logger:                 nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting recommendation service...")

	// Storage collaborator
	var badgerOpts []kv.Option
	if s.badgerInMemory {
		badgerOpts = append(badgerOpts, kv.WithInMemory())
	}
	store, err := kv.NewBadgerStore(s.badgerDir, badgerOpts...)
	if err != nil {
		return err
	}
	s.kvStore = store

	// Event source and stores
	s.catalog = eventsource.NewMemoryCatalog(
		eventsource.WithSeedEvents(s.seedEvents),
	)
	s.interactions = repository.NewInteractionStore(s.kvStore,
		repository.WithMaxPerUser(s.maxInteractionsPerUser),
	)
	s.profiles = repository.NewProfileStore(s.kvStore, s.catalog,
		repository.WithLearningRate(s.learningRate),
	)

	// Recommendation pipeline
	s.recCache = reccache.New(reccache.WithTTL(s.cacheTTL))
	scorer := scoring.NewScorer(scoring.WithSocialScorer(s.social))
	s.recommender = scoring.NewRecommender(scorer, s.profiles, s.catalog, s.interactions, s.recCache)

	// Insight generation
	s.generator = insights.NewGenerator(s.interactions, s.profiles)

	// Intake pipeline
	s.deduper = dedupe.New(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = interactionqueue.NewInMemoryQueue(
		interactionqueue.WithCapacity(s.queueSize),
	)
	s.workerPool = workerpool.NewPool(s.workerCount, s.queue, s.interactions, s.profiles)
	s.workerPool.Start(ctx)

	metrics.UpdateCatalogEvents(s.catalog.Len())

	s.started = true
	s.logger.Info(ctx, "recommendation service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("seedEvents", s.catalog.Len()),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping recommendation service...")

	// Stop worker pool
	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	// Close queue
	if s.queue != nil {
		_ = s.queue.Close()
	}

	// Close the storage collaborator last; workers are already drained.
	if s.kvStore != nil {
		_ = s.kvStore.Close()
	}

	// Signal cleanup loop to stop
	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "recommendation service stopped")
}

// SeenAndRecord atomically checks if an interaction id was seen and
// records it if not. Returns true if the id was already seen.
// This is the ONLY method for deduplication - thread-safe and atomic.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordInteractionDuplicate()
	}
	return seen
}

// Unrecord removes an interaction ID from the seen list, allowing it to
// be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Enqueue submits an interaction for asynchronous recording and profile
// learning. Returns false when the queue rejects it (backpressure).
func (s *Service) Enqueue(ctx context.Context, in model.Interaction) bool {
	ok := s.queue.Enqueue(ctx, in)
	if ok {
		metrics.UpdateQueueSize(s.queue.Len(ctx))
	} else {
		s.logger.Warn(ctx, "interaction rejected by queue",
			logger.String("interactionID", in.ID),
			logger.String("userID", in.UserID),
		)
	}
	return ok
}

// Recommendations returns the ranked recommendation list for a user.
// limit<=0 falls back to the default list size; oversized limits are
// capped at the configured maximum.
func (s *Service) Recommendations(ctx context.Context, userID string, limit int) []model.Recommendation {
	if limit <= 0 {
		limit = defaultRecommendationLimit
	}
	if limit > s.maxRecommendationLimit {
		limit = s.maxRecommendationLimit
	}
	return s.recommender.Recommend(ctx, userID, limit)
}

// Insights generates the analytics snapshot for a user.
func (s *Service) Insights(ctx context.Context, userID string) insights.UserInsights {
	return s.generator.Generate(ctx, userID)
}

// Profile returns the user's preference profile, creating the neutral
// default on first access.
func (s *Service) Profile(ctx context.Context, userID string) (*model.PreferenceProfile, error) {
	return s.profiles.ProfileFor(ctx, userID)
}

// ResetProfile deletes the user's learned profile and drops their
// cached recommendations.
func (s *Service) ResetProfile(ctx context.Context, userID string) error {
	if err := s.profiles.Reset(ctx, userID); err != nil {
		return err
	}
	s.recCache.Invalidate(userID)
	return nil
}

// ListEvents returns catalog events matching the filter.
func (s *Service) ListEvents(ctx context.Context, filter model.EventFilter) ([]model.Event, error) {
	return s.catalog.List(ctx, filter)
}

// CreateEvent inserts or replaces a catalog event.
func (s *Service) CreateEvent(ctx context.Context, e model.Event) {
	s.catalog.Add(ctx, e)
	metrics.UpdateCatalogEvents(s.catalog.Len())
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["catalogEvents"] = s.catalog.Len()
		stats["cachedUsers"] = s.recCache.Len()
		stats["dedupeEntries"] = s.deduper.Size()

		// Update metrics
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateCatalogEvents(s.catalog.Len())
		metrics.UpdateWorkerCount(s.workerCount)
		metrics.UpdateTrackedUsers(s.recCache.Len())
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
