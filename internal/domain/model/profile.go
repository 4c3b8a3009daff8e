package model

import "time"

// NeutralPreference is the prior for scores with no observed signal.
const NeutralPreference = 0.5

// TimeSlot is the composite bucket key for time-of-day preferences.
type TimeSlot struct {
	Hour      int          `json:"hour"`
	DayOfWeek time.Weekday `json:"day_of_week"`
}

// TimeslotPreference carries the learned activity level for one slot.
type TimeslotPreference struct {
	TimeSlot
	ActivityLevel float64 `json:"activity_level"` // [0,1]
}

// SocialPreferences are fixed scalars describing how a user engages with
// others. There is no learning rule for them yet; they start neutral.
type SocialPreferences struct {
	MentorshipInterest float64 `json:"mentorship_interest"` // [0,1]
	TeamParticipation  float64 `json:"team_participation"`  // [0,1]
}

// PreferenceProfile is the per-user learned state driving recommendations.
// All scores stay clamped to [0,1].
type PreferenceProfile struct {
	UserID      string               `json:"user_id"`
	Sports      map[string]float64   `json:"sports"`
	Locations   map[string]float64   `json:"locations"`
	EventTypes  map[string]float64   `json:"event_types"`
	TimeSlots   []TimeslotPreference `json:"time_slots"`
	Social      SocialPreferences    `json:"social"`
	LastUpdated time.Time            `json:"last_updated"`
}

// NewPreferenceProfile returns the lazy default profile: empty maps and
// neutral social scalars.
func NewPreferenceProfile(userID string, now time.Time) *PreferenceProfile {
	return &PreferenceProfile{
		UserID:     userID,
		Sports:     make(map[string]float64),
		Locations:  make(map[string]float64),
		EventTypes: make(map[string]float64),
		Social: SocialPreferences{
			MentorshipInterest: NeutralPreference,
			TeamParticipation:  NeutralPreference,
		},
		LastUpdated: now,
	}
}

// SlotPreference returns the activity level for a slot, or the neutral
// prior when the slot has never been observed.
func (p *PreferenceProfile) SlotPreference(slot TimeSlot) float64 {
	for i := range p.TimeSlots {
		if p.TimeSlots[i].TimeSlot == slot {
			return p.TimeSlots[i].ActivityLevel
		}
	}
	return NeutralPreference
}
