package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/goccy/go-json"
	"github.com/jonboulle/clockwork"

	"github.com/huddleapp/huddle/internal/adapters/kv"
	"github.com/huddleapp/huddle/internal/domain/model"
	"github.com/huddleapp/huddle/pkg/metrics"
)

// defaultMaxPerUser caps the retained interaction history per user.
const defaultMaxPerUser = 1000

// InteractionStore appends interactions to a per-user log in the
// key-value collaborator.
type InteractionStore struct {
	store      kv.Store
	clock      clockwork.Clock
	maxPerUser int
	locks      *userLocks
}

// InteractionOption applies a configuration option to the InteractionStore.
type InteractionOption func(*InteractionStore)

// WithMaxPerUser bounds the retained history per user.
func WithMaxPerUser(n int) InteractionOption {
	return func(s *InteractionStore) {
		if n > 0 {
			s.maxPerUser = n
		}
	}
}

// WithInteractionClock sets the clock used to default missing timestamps.
func WithInteractionClock(c clockwork.Clock) InteractionOption {
	return func(s *InteractionStore) {
		if c != nil {
			s.clock = c
		}
	}
}

// NewInteractionStore creates a store on top of the key-value collaborator.
func NewInteractionStore(store kv.Store, opts ...InteractionOption) *InteractionStore {
	s := &InteractionStore{
		store:      store,
		clock:      clockwork.NewRealClock(),
		maxPerUser: defaultMaxPerUser,
		locks:      newUserLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record appends an interaction to the user's log. When the log exceeds
// the per-user cap, the oldest entries are dropped, keeping the most
// recent ones; other users' records are untouched.
func (s *InteractionStore) Record(ctx context.Context, in model.Interaction) error {
	if in.TS.IsZero() {
		in.TS = s.clock.Now()
	}

	lock := s.locks.forUser(in.UserID)
	lock.Lock()
	defer lock.Unlock()

	log, err := s.load(ctx, in.UserID)
	if err != nil {
		metrics.RecordStorageError()
		return fmt.Errorf("load interaction log: %w", err)
	}

	log = append(log, in)
	if len(log) > s.maxPerUser {
		// Keep the most recent maxPerUser entries by timestamp.
		sort.SliceStable(log, func(i, j int) bool {
			return log[i].TS.After(log[j].TS)
		})
		log = log[:s.maxPerUser]
		// Restore insertion-order reading: oldest first.
		sort.SliceStable(log, func(i, j int) bool {
			return log[i].TS.Before(log[j].TS)
		})
	}

	if err := s.save(ctx, in.UserID, log); err != nil {
		metrics.RecordStorageError()
		return fmt.Errorf("save interaction log: %w", err)
	}

	metrics.RecordInteractionStored()
	return nil
}

// ForUser returns a fresh snapshot of the user's interactions in stored
// order. A user with no history yields an empty slice.
func (s *InteractionStore) ForUser(ctx context.Context, userID string) ([]model.Interaction, error) {
	log, err := s.load(ctx, userID)
	if err != nil {
		metrics.RecordStorageError()
		return nil, fmt.Errorf("load interaction log: %w", err)
	}
	return log, nil
}

func (s *InteractionStore) load(ctx context.Context, userID string) ([]model.Interaction, error) {
	raw, err := s.store.Get(ctx, kv.Key(collectionInteractions, userID))
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return []model.Interaction{}, nil
		}
		return nil, err
	}

	var log []model.Interaction
	if err := json.Unmarshal(raw, &log); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return log, nil
}

func (s *InteractionStore) save(ctx context.Context, userID string, log []model.Interaction) error {
	raw, err := json.Marshal(log)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, kv.Key(collectionInteractions, userID), raw)
}
