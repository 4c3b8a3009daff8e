package repository

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/goccy/go-json"
	"github.com/jonboulle/clockwork"

	"github.com/huddleapp/huddle/internal/adapters/kv"
	"github.com/huddleapp/huddle/internal/domain/model"
	"github.com/huddleapp/huddle/pkg/logger"
	"github.com/huddleapp/huddle/pkg/metrics"
)

// defaultLearningRate tunes the single-step exponential preference update.
const defaultLearningRate = 0.1

// ProfileStore maintains the online-learned preference profile per user.
type ProfileStore struct {
	store        kv.Store
	events       EventGetter
	clock        clockwork.Clock
	learningRate float64
	locks        *userLocks
	logger       logger.Logger
}

// ProfileOption applies a configuration option to the ProfileStore.
type ProfileOption func(*ProfileStore)

// WithLearningRate sets the preference update step size.
func WithLearningRate(rate float64) ProfileOption {
	return func(s *ProfileStore) {
		if rate > 0 {
			s.learningRate = rate
		}
	}
}

// WithProfileClock sets the clock used for LastUpdated stamps.
func WithProfileClock(c clockwork.Clock) ProfileOption {
	return func(s *ProfileStore) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithProfileLogger sets a custom logger for the store.
func WithProfileLogger(l logger.Logger) ProfileOption {
	return func(s *ProfileStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewProfileStore creates a store on top of the key-value collaborator.
// events resolves the event an interaction refers to.
func NewProfileStore(store kv.Store, events EventGetter, opts ...ProfileOption) *ProfileStore {
	s := &ProfileStore{
		store:        store,
		events:       events,
		clock:        clockwork.NewRealClock(),
		learningRate: defaultLearningRate,
		locks:        newUserLocks(),
		logger:       logger.Get().Named("profiles"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProfileFor returns the user's profile, creating and persisting the
// neutral default on first use. An empty user id is a valid key.
func (s *ProfileStore) ProfileFor(ctx context.Context, userID string) (*model.PreferenceProfile, error) {
	lock := s.locks.forUser(userID)
	lock.Lock()
	defer lock.Unlock()

	return s.loadOrCreate(ctx, userID)
}

// ApplyInteraction nudges the user's preference scores according to the
// interaction's learning weight and the referenced event's attributes.
// This is the system's only learning rule: a single-step exponential
// update, cheap per interaction and with no history replay.
func (s *ProfileStore) ApplyInteraction(ctx context.Context, in model.Interaction) error {
	event, err := s.events.Get(ctx, in.EventID)
	if err != nil {
		// The getter substitutes a fallback for unknown ids, so a hard
		// failure here is a collaborator outage. Learn nothing.
		metrics.RecordProfileUpdateError()
		return fmt.Errorf("resolve event %q: %w", in.EventID, err)
	}

	lock := s.locks.forUser(in.UserID)
	lock.Lock()
	defer lock.Unlock()

	profile, err := s.loadOrCreate(ctx, in.UserID)
	if err != nil {
		metrics.RecordProfileUpdateError()
		return err
	}

	delta := in.Type.Weight() * s.learningRate
	if event.Sport != "" {
		profile.Sports[event.Sport] = nudge(profile.Sports, event.Sport, delta)
	}
	if event.Location != "" {
		profile.Locations[event.Location] = nudge(profile.Locations, event.Location, delta)
	}
	if event.EventType != "" {
		profile.EventTypes[event.EventType] = nudge(profile.EventTypes, event.EventType, delta)
	}

	// Time-of-day preference is bucketed by the event's start time, not
	// the interaction timestamp.
	slot := model.TimeSlot{
		Hour:      event.StartTime.Hour(),
		DayOfWeek: event.StartTime.Weekday(),
	}
	s.nudgeSlot(profile, slot, delta)

	profile.LastUpdated = s.clock.Now()

	if err := s.save(ctx, profile); err != nil {
		metrics.RecordProfileUpdateError()
		return fmt.Errorf("save profile: %w", err)
	}

	metrics.RecordProfileUpdate()
	s.logger.Debug(ctx, "profile updated",
		logger.String("userID", in.UserID),
		logger.String("type", string(in.Type)),
		logger.Float64("delta", delta),
	)
	return nil
}

// Reset deletes the user's profile. Used by explicit data resets only.
func (s *ProfileStore) Reset(ctx context.Context, userID string) error {
	lock := s.locks.forUser(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.store.Delete(ctx, kv.Key(collectionProfiles, userID)); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

// nudge applies the exponential update rule to one preference entry,
// defaulting unseen entries to the neutral prior.
func nudge(scores map[string]float64, key string, delta float64) float64 {
	old, ok := scores[key]
	if !ok {
		old = model.NeutralPreference
	}
	return clamp01(old + delta)
}

// nudgeSlot finds or creates the slot and applies the update rule to its
// activity level.
func (s *ProfileStore) nudgeSlot(profile *model.PreferenceProfile, slot model.TimeSlot, delta float64) {
	for i := range profile.TimeSlots {
		if profile.TimeSlots[i].TimeSlot == slot {
			profile.TimeSlots[i].ActivityLevel = clamp01(profile.TimeSlots[i].ActivityLevel + delta)
			return
		}
	}
	profile.TimeSlots = append(profile.TimeSlots, model.TimeslotPreference{
		TimeSlot:      slot,
		ActivityLevel: clamp01(model.NeutralPreference + delta),
	})
}

func (s *ProfileStore) loadOrCreate(ctx context.Context, userID string) (*model.PreferenceProfile, error) {
	raw, err := s.store.Get(ctx, kv.Key(collectionProfiles, userID))
	if err != nil {
		if !errors.Is(err, kv.ErrKeyNotFound) {
			return nil, fmt.Errorf("load profile: %w", err)
		}
		profile := model.NewPreferenceProfile(userID, s.clock.Now())
		if err := s.save(ctx, profile); err != nil {
			return nil, fmt.Errorf("persist default profile: %w", err)
		}
		return profile, nil
	}

	var profile model.PreferenceProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return &profile, nil
}

func (s *ProfileStore) save(ctx context.Context, profile *model.PreferenceProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, kv.Key(collectionProfiles, profile.UserID), raw)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
