// Package repository persists interaction logs and preference profiles
// on the key-value collaborator.
//
// Both stores perform read-modify-write cycles on whole per-user blobs.
// Writes for the same user are serialized through a keyed mutex so that
// concurrent updates cannot silently discard each other; different users
// never contend.
package repository

import (
	"context"
	"sync"

	"github.com/huddleapp/huddle/internal/domain/model"
)

// Key-value collections owned by this package.
const (
	collectionInteractions = "interactions"
	collectionProfiles     = "profiles"
)

// EventGetter resolves the event an interaction refers to. Implementations
// must return a usable fallback event for unknown ids instead of failing.
type EventGetter interface {
	Get(ctx context.Context, id string) (model.Event, error)
}

// userLocks serializes per-user read-modify-write cycles.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*sync.Mutex)}
}

// forUser returns the mutex for userID, creating it on first use. Lock
// entries are never released; the user population is bounded in practice.
func (l *userLocks) forUser(userID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	return m
}
