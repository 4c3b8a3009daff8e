// Package model contains domain models passed between layers.
package model

import "time"

// InteractionType classifies a tracked user action on an event.
type InteractionType string

// The closed set of interaction types.
const (
	InteractionView        InteractionType = "view"
	InteractionParticipate InteractionType = "participate"
	InteractionReact       InteractionType = "react"
	InteractionComment     InteractionType = "comment"
	InteractionShare       InteractionType = "share"
	InteractionBookmark    InteractionType = "bookmark"
	InteractionSkip        InteractionType = "skip"
	InteractionComplete    InteractionType = "complete"
)

// Learning weights per interaction type. Positive weights pull preference
// scores toward 1, negative weights toward 0.
const (
	weightView        = 0.3
	weightParticipate = 1.0
	weightReact       = 0.5
	weightComment     = 0.7
	weightShare       = 0.9
	weightBookmark    = 0.8
	weightSkip        = -0.2
	weightComplete    = 1.2
)

// Weight returns the signed learning weight for the interaction type.
// Unknown types carry no signal.
func (t InteractionType) Weight() float64 {
	switch t {
	case InteractionView:
		return weightView
	case InteractionParticipate:
		return weightParticipate
	case InteractionReact:
		return weightReact
	case InteractionComment:
		return weightComment
	case InteractionShare:
		return weightShare
	case InteractionBookmark:
		return weightBookmark
	case InteractionSkip:
		return weightSkip
	case InteractionComplete:
		return weightComplete
	default:
		return 0
	}
}

// Valid reports whether t belongs to the closed interaction type set.
func (t InteractionType) Valid() bool {
	switch t {
	case InteractionView, InteractionParticipate, InteractionReact,
		InteractionComment, InteractionShare, InteractionBookmark,
		InteractionSkip, InteractionComplete:
		return true
	default:
		return false
	}
}

// Interaction is an immutable record of a user acting on an event.
// Fields mirror the wire schema for POST /interactions.
type Interaction struct {
	ID       string            `json:"id"`                 // unique id for idempotency
	UserID   string            `json:"user_id"`            // acting user
	EventID  string            `json:"event_id"`           // referenced event
	Type     InteractionType   `json:"type"`               // closed-set action type
	TS       time.Time         `json:"ts"`                 // when the action happened
	Duration time.Duration     `json:"duration,omitempty"` // optional dwell time
	Metadata map[string]string `json:"metadata,omitempty"` // open string-keyed extras
}
