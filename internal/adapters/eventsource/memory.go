package eventsource

import (
	"context"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/huddleapp/huddle/internal/domain/model"
)

// MemoryCatalog implements Source with an in-memory event catalog. It is
// safe for concurrent use.
type MemoryCatalog struct {
	mu     sync.RWMutex
	events []model.Event
	byID   map[string]int
	clock  clockwork.Clock
}

// CatalogOption applies a configuration option to the MemoryCatalog.
type CatalogOption func(*MemoryCatalog)

// WithCatalogClock sets the clock used to classify events as upcoming.
func WithCatalogClock(c clockwork.Clock) CatalogOption {
	return func(m *MemoryCatalog) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithSeedEvents preloads the catalog.
func WithSeedEvents(events []model.Event) CatalogOption {
	return func(m *MemoryCatalog) {
		for _, e := range events {
			m.put(e)
		}
	}
}

// NewMemoryCatalog creates an empty catalog.
func NewMemoryCatalog(opts ...CatalogOption) *MemoryCatalog {
	m := &MemoryCatalog{
		byID:  make(map[string]int),
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add inserts or replaces an event.
func (m *MemoryCatalog) Add(_ context.Context, e model.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(e)
}

// put assumes m.mu is held (or the catalog is still private to its
// constructor).
func (m *MemoryCatalog) put(e model.Event) {
	if i, ok := m.byID[e.ID]; ok {
		m.events[i] = e
		return
	}
	m.byID[e.ID] = len(m.events)
	m.events = append(m.events, e)
}

// List returns events matching filter in insertion order.
func (m *MemoryCatalog) List(_ context.Context, filter model.EventFilter) ([]model.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.clock.Now()
	out := make([]model.Event, 0, len(m.events))
	for _, e := range m.events {
		switch filter.Category {
		case "", model.CategoryAll:
		case model.CategoryUpcoming:
			if !e.StartTime.After(now) {
				continue
			}
		case model.CategoryPast:
			if e.StartTime.After(now) {
				continue
			}
		default:
			continue
		}
		if filter.Sport != "" && filter.Sport != e.Sport {
			continue
		}
		if filter.Location != "" && filter.Location != e.Location {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Get returns the event with the given id, or the fallback event when
// the id is unknown.
func (m *MemoryCatalog) Get(_ context.Context, id string) (model.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i, ok := m.byID[id]; ok {
		return m.events[i], nil
	}
	return Fallback(id), nil
}

// Len returns the number of cataloged events.
func (m *MemoryCatalog) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}
