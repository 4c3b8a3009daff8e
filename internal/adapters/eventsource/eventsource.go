// Package eventsource defines the external event catalog collaborator.
//
// The recommendation core only reads events; creation and listing exist
// to serve the HTTP catalog surface. Lookups for unknown ids return a
// usable fallback event rather than failing, so a dangling interaction
// reference never aborts a profile update.
package eventsource

import (
	"context"

	"github.com/huddleapp/huddle/internal/domain/model"
)

// Source provides read access to candidate events.
type Source interface {
	// List returns events matching filter.
	List(ctx context.Context, filter model.EventFilter) ([]model.Event, error)

	// Get returns the event with the given id, or a fallback event when
	// the id is unknown.
	Get(ctx context.Context, id string) (model.Event, error)
}

// Fallback is the event substituted for unknown ids. It carries no
// sport/location/type signal, so learning against it is a no-op.
func Fallback(id string) model.Event {
	return model.Event{
		ID:    id,
		Title: "unknown event",
	}
}
