package scoring_test

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/huddleapp/huddle/internal/domain/model"
	"github.com/huddleapp/huddle/internal/domain/scoring"
)

func neutralProfile(userID string) *model.PreferenceProfile {
	return model.NewPreferenceProfile(userID, time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC))
}

func TestScorer_Score(t *testing.T) {
	Convey("Given a scorer and a neutral profile", t, func() {
		ctx := context.Background()
		scorer := scoring.NewScorer()
		profile := neutralProfile("user-1")
		event := model.Event{
			ID:        "e1",
			Sport:     "basketball",
			Location:  "gym",
			EventType: "training",
			StartTime: time.Date(2026, 6, 2, 18, 0, 0, 0, time.UTC),
		}

		Convey("When scoring any event", func() {
			score := scorer.Score(ctx, "user-1", profile, event, true)

			Convey("Then the score stays within [0,1]", func() {
				So(score, ShouldBeGreaterThanOrEqualTo, 0)
				So(score, ShouldBeLessThanOrEqualTo, 1)
			})
		})

		Convey("When every preference is saturated at 1", func() {
			profile.Sports["basketball"] = 1
			profile.Locations["gym"] = 1
			profile.EventTypes["training"] = 1
			profile.TimeSlots = []model.TimeslotPreference{{
				TimeSlot:      model.TimeSlot{Hour: 18, DayOfWeek: event.StartTime.Weekday()},
				ActivityLevel: 1,
			}}
			event.IsTrending = true
			score := scorer.Score(ctx, "user-1", profile, event, true)

			Convey("Then the score is still clamped to at most 1", func() {
				So(score, ShouldBeLessThanOrEqualTo, 1)
			})
		})

		Convey("When comparing a preferred sport against an unknown one", func() {
			profile.Sports["basketball"] = 0.9
			soccer := event
			soccer.ID = "e2"
			soccer.Sport = "soccer"

			basketballScore := scorer.Score(ctx, "user-1", profile, event, true)
			soccerScore := scorer.Score(ctx, "user-1", profile, soccer, true)

			Convey("Then the preferred sport scores higher", func() {
				So(basketballScore, ShouldBeGreaterThan, soccerScore)
			})
		})

		Convey("When the event was already interacted with", func() {
			novelScore := scorer.Score(ctx, "user-1", profile, event, true)
			seenScore := scorer.Score(ctx, "user-1", profile, event, false)

			Convey("Then novelty is worth more than familiarity", func() {
				So(novelScore, ShouldBeGreaterThan, seenScore)
			})
		})

		Convey("When a custom social scorer is plugged in", func() {
			boosted := scoring.NewScorer(scoring.WithSocialScorer(
				func(context.Context, string, model.Event) float64 { return 1.0 },
			))
			base := scorer.Score(ctx, "user-1", profile, event, true)
			withSocial := boosted.Score(ctx, "user-1", profile, event, true)

			Convey("Then the social factor moves the score", func() {
				So(withSocial, ShouldBeGreaterThan, base)
			})
		})
	})
}

func TestScorer_Reasons(t *testing.T) {
	Convey("Given a scorer", t, func() {
		scorer := scoring.NewScorer()
		profile := neutralProfile("user-1")
		event := model.Event{
			ID:        "e1",
			Sport:     "basketball",
			Location:  "gym",
			StartTime: time.Date(2026, 6, 2, 18, 0, 0, 0, time.UTC),
		}

		Convey("When no factor crosses a threshold", func() {
			reasons := scorer.Reasons(profile, event)

			Convey("Then the reason list is empty", func() {
				So(reasons, ShouldBeEmpty)
			})
		})

		Convey("When the event is trending with no other signal", func() {
			event.IsTrending = true
			reasons := scorer.Reasons(profile, event)

			Convey("Then exactly the trending reason is emitted with weight 0.8", func() {
				So(reasons, ShouldHaveLength, 1)
				So(reasons[0].Type, ShouldEqual, model.ReasonTrending)
				So(reasons[0].Weight, ShouldEqual, 0.8)
			})
		})

		Convey("When sport and location preferences are strong", func() {
			profile.Sports["basketball"] = 0.85
			profile.Locations["gym"] = 0.75
			reasons := scorer.Reasons(profile, event)

			Convey("Then sport and location reasons carry their factor weights", func() {
				So(reasons, ShouldHaveLength, 2)
				So(reasons[0].Type, ShouldEqual, model.ReasonSport)
				So(reasons[0].Weight, ShouldEqual, 0.85)
				So(reasons[1].Type, ShouldEqual, model.ReasonLocation)
				So(reasons[1].Weight, ShouldEqual, 0.75)
			})
		})

		Convey("When a preference sits exactly on the threshold", func() {
			profile.Sports["basketball"] = 0.7
			reasons := scorer.Reasons(profile, event)

			Convey("Then no reason is emitted", func() {
				So(reasons, ShouldBeEmpty)
			})
		})
	})
}

func TestScorer_Confidence(t *testing.T) {
	Convey("Given a scorer", t, func() {
		scorer := scoring.NewScorer()
		profile := neutralProfile("user-1")

		Convey("When there are no reasons", func() {
			So(scorer.Confidence(nil, profile), ShouldEqual, 0.3)
		})

		Convey("When reasons exist but the profile has little coverage", func() {
			reasons := []model.Reason{{Type: model.ReasonTrending, Weight: 0.8}}
			c := scorer.Confidence(reasons, profile)

			Convey("Then confidence is dampened by data quality", func() {
				So(c, ShouldBeGreaterThanOrEqualTo, 0)
				So(c, ShouldBeLessThan, 0.8)
			})
		})

		Convey("When the profile has full coverage", func() {
			for _, s := range []string{"a", "b", "c", "d", "e"} {
				profile.Sports[s] = 0.5
			}
			for _, l := range []string{"x", "y", "z"} {
				profile.Locations[l] = 0.5
			}
			for h := 0; h < 10; h++ {
				profile.TimeSlots = append(profile.TimeSlots, model.TimeslotPreference{
					TimeSlot:      model.TimeSlot{Hour: h, DayOfWeek: time.Monday},
					ActivityLevel: 0.5,
				})
			}
			So(scorer.DataQuality(profile), ShouldEqual, 1)

			reasons := []model.Reason{
				{Type: model.ReasonSport, Weight: 0.9},
				{Type: model.ReasonTrending, Weight: 0.8},
			}

			Convey("Then confidence is the mean reason weight", func() {
				So(scorer.Confidence(reasons, profile), ShouldAlmostEqual, 0.85, 1e-9)
			})
		})
	})
}

func TestScorer_DataQuality(t *testing.T) {
	Convey("Given profiles with increasing coverage", t, func() {
		scorer := scoring.NewScorer()
		empty := neutralProfile("user-1")

		Convey("Then an empty profile has zero quality", func() {
			So(scorer.DataQuality(empty), ShouldEqual, 0)
		})

		Convey("And partial coverage is weighted per dimension", func() {
			p := neutralProfile("user-2")
			p.Sports["basketball"] = 0.9 // 1/5 of the sport target
			So(scorer.DataQuality(p), ShouldAlmostEqual, 0.4/5, 1e-9)
		})
	})
}
