package insights_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/huddleapp/huddle/internal/domain/insights"
	"github.com/huddleapp/huddle/internal/domain/model"
	"github.com/huddleapp/huddle/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

type fakeHistory struct {
	interactions []model.Interaction
	err          error
}

func (f *fakeHistory) ForUser(context.Context, string) ([]model.Interaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.interactions, nil
}

type fakeProfiles struct {
	profile *model.PreferenceProfile
	err     error
}

func (f *fakeProfiles) ProfileFor(_ context.Context, userID string) (*model.PreferenceProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.profile != nil {
		return f.profile, nil
	}
	return model.NewPreferenceProfile(userID, time.Now()), nil
}

func repeat(userID string, t model.InteractionType, n int, ts time.Time) []model.Interaction {
	out := make([]model.Interaction, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.Interaction{
			UserID:  userID,
			EventID: "e1",
			Type:    t,
			TS:      ts,
		})
	}
	return out
}

func TestGenerator_Generate(t *testing.T) {
	Convey("Given an insight generator with a fake clock", t, func() {
		ctx := context.Background()
		now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
		clock := clockwork.NewFakeClockAt(now)
		history := &fakeHistory{}
		profiles := &fakeProfiles{}
		gen := insights.NewGenerator(history, profiles, insights.WithClock(clock))

		Convey("When the user has no history at all", func() {
			got := gen.Generate(ctx, "user-1")

			Convey("Then the snapshot is empty but well-formed", func() {
				So(got.UserID, ShouldEqual, "user-1")
				So(got.PerformanceTrends, ShouldBeEmpty)
				So(got.StrengthAreas, ShouldBeEmpty)
				So(got.EngagementPatterns, ShouldBeEmpty)
				So(got.PeakActivityTimes, ShouldBeEmpty)
				So(got.InfluenceScore, ShouldEqual, 0)
				So(got.CollaborationStyle, ShouldEqual, insights.StyleParticipant)
				So(got.NextAchievements, ShouldBeEmpty)
				So(got.GeneratedAt, ShouldEqual, now)
			})
		})

		Convey("When the user shared, commented and reacted five times each", func() {
			var log []model.Interaction
			log = append(log, repeat("user-1", model.InteractionShare, 5, now.Add(-time.Hour))...)
			log = append(log, repeat("user-1", model.InteractionComment, 5, now.Add(-2*time.Hour))...)
			log = append(log, repeat("user-1", model.InteractionReact, 5, now.Add(-3*time.Hour))...)
			history.interactions = log

			got := gen.Generate(ctx, "user-1")

			Convey("Then the influence score is 3*5 + 2*5 + 1*5 = 30", func() {
				So(got.InfluenceScore, ShouldEqual, 30)
			})
		})

		Convey("When share counts dwarf everything else", func() {
			history.interactions = repeat("user-1", model.InteractionShare, 40, now.Add(-time.Hour))
			got := gen.Generate(ctx, "user-1")

			Convey("Then the influence score is capped at 100", func() {
				So(got.InfluenceScore, ShouldEqual, 100)
			})

			Convey("And the collaboration style is Connector", func() {
				So(got.CollaborationStyle, ShouldEqual, insights.StyleConnector)
			})

			Convey("And sharing shows up as a high-impact pattern", func() {
				So(got.EngagementPatterns, ShouldHaveLength, 1)
				So(got.EngagementPatterns[0].Type, ShouldEqual, model.InteractionShare)
				So(got.EngagementPatterns[0].Count, ShouldEqual, 40)
				So(got.EngagementPatterns[0].Impact, ShouldEqual, insights.ImpactHigh)
			})
		})

		Convey("When comments dominate participation", func() {
			var log []model.Interaction
			log = append(log, repeat("user-1", model.InteractionComment, 6, now.Add(-time.Hour))...)
			log = append(log, repeat("user-1", model.InteractionParticipate, 2, now.Add(-time.Hour))...)
			history.interactions = log

			got := gen.Generate(ctx, "user-1")
			So(got.CollaborationStyle, ShouldEqual, insights.StyleCommunicator)
		})

		Convey("When activity grew week over week", func() {
			var log []model.Interaction
			log = append(log, repeat("user-1", model.InteractionView, 10, now.Add(-24*time.Hour))...)
			log = append(log, repeat("user-1", model.InteractionView, 5, now.Add(-8*24*time.Hour))...)
			history.interactions = log

			got := gen.Generate(ctx, "user-1")

			Convey("Then the trend is improving with a +100% change", func() {
				So(got.PerformanceTrends, ShouldHaveLength, 1)
				So(got.PerformanceTrends[0].Direction, ShouldEqual, insights.TrendImproving)
				So(got.PerformanceTrends[0].ChangePercent, ShouldAlmostEqual, 100, 1e-9)
			})
		})

		Convey("When activity dropped week over week", func() {
			var log []model.Interaction
			log = append(log, repeat("user-1", model.InteractionView, 4, now.Add(-24*time.Hour))...)
			log = append(log, repeat("user-1", model.InteractionView, 10, now.Add(-8*24*time.Hour))...)
			history.interactions = log

			got := gen.Generate(ctx, "user-1")
			So(got.PerformanceTrends[0].Direction, ShouldEqual, insights.TrendDeclining)
		})

		Convey("When activity barely moved", func() {
			var log []model.Interaction
			log = append(log, repeat("user-1", model.InteractionView, 100, now.Add(-24*time.Hour))...)
			log = append(log, repeat("user-1", model.InteractionView, 98, now.Add(-8*24*time.Hour))...)
			history.interactions = log

			got := gen.Generate(ctx, "user-1")
			So(got.PerformanceTrends[0].Direction, ShouldEqual, insights.TrendStable)
		})

		Convey("When only one week has any activity", func() {
			history.interactions = repeat("user-1", model.InteractionView, 10, now.Add(-24*time.Hour))
			got := gen.Generate(ctx, "user-1")

			Convey("Then no trend is reported", func() {
				So(got.PerformanceTrends, ShouldBeEmpty)
			})
		})

		Convey("When the profile carries strong and weak signals", func() {
			p := model.NewPreferenceProfile("user-1", now)
			p.Sports["basketball"] = 0.9
			p.Sports["soccer"] = 0.75
			p.Sports["chess"] = 0.2
			p.EventTypes["tournament"] = 0.8
			p.EventTypes["social"] = 0.4
			p.Social.MentorshipInterest = 0.1
			p.Social.TeamParticipation = 0.5
			profiles.profile = p

			got := gen.Generate(ctx, "user-1")

			Convey("Then strengths are the sports above 0.7", func() {
				So(got.StrengthAreas, ShouldResemble, []string{"basketball", "soccer"})
			})

			Convey("And low mentorship interest is an improvement area", func() {
				So(got.ImprovementAreas, ShouldResemble, []string{"mentorship"})
			})

			Convey("And preferred event types are those above 0.6, descending", func() {
				So(got.PreferredEventTypes, ShouldHaveLength, 1)
				So(got.PreferredEventTypes[0].EventType, ShouldEqual, "tournament")
			})

			Convey("And goals target the top sports with a one-month deadline", func() {
				So(got.SuggestedGoals, ShouldHaveLength, 3)
				So(got.SuggestedGoals[0].Sport, ShouldEqual, "basketball")
				So(got.SuggestedGoals[0].Target, ShouldEqual, 5)
				So(got.SuggestedGoals[0].Deadline, ShouldEqual, now.Add(30*24*time.Hour))
			})
		})

		Convey("When the user is close to a participation milestone", func() {
			history.interactions = repeat("user-1", model.InteractionParticipate, 8, now.Add(-time.Hour))
			got := gen.Generate(ctx, "user-1")

			Convey("Then the 10-participation milestone is forecast", func() {
				So(got.NextAchievements, ShouldHaveLength, 1)
				So(got.NextAchievements[0].Name, ShouldEqual, "10 participations")
				So(got.NextAchievements[0].Probability, ShouldEqual, 0.8)
				So(got.NextAchievements[0].ETA, ShouldEqual, now.Add(7*24*time.Hour))
			})
		})

		Convey("When interactions cluster at certain times", func() {
			tuesday18 := time.Date(2026, 6, 9, 18, 0, 0, 0, time.UTC) // a Tuesday
			monday9 := time.Date(2026, 6, 8, 9, 0, 0, 0, time.UTC)    // a Monday
			var log []model.Interaction
			log = append(log, repeat("user-1", model.InteractionView, 7, tuesday18)...)
			log = append(log, repeat("user-1", model.InteractionView, 3, monday9)...)
			history.interactions = log

			got := gen.Generate(ctx, "user-1")

			Convey("Then peak times are ranked by raw count", func() {
				So(got.PeakActivityTimes, ShouldHaveLength, 2)
				So(got.PeakActivityTimes[0].DayOfWeek, ShouldEqual, time.Tuesday)
				So(got.PeakActivityTimes[0].Hour, ShouldEqual, 18)
				So(got.PeakActivityTimes[0].Count, ShouldEqual, 7)
			})
		})

		Convey("When both stores fail", func() {
			history.err = errors.New("log down")
			profiles.err = errors.New("profiles down")

			got := gen.Generate(ctx, "user-1")

			Convey("Then a usable empty snapshot still comes back", func() {
				So(got.UserID, ShouldEqual, "user-1")
				So(got.PerformanceTrends, ShouldBeEmpty)
				So(got.InfluenceScore, ShouldEqual, 0)
			})
		})
	})
}
