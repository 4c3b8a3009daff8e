package service_test

import (
	"context"
	"os"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/huddleapp/huddle/internal/app"
	"github.com/huddleapp/huddle/internal/domain/model"
	"github.com/huddleapp/huddle/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func seedEvents(now time.Time) []model.Event {
	return []model.Event{
		{ID: "e-basketball", Title: "Pickup Basketball", Sport: "basketball", Location: "downtown", EventType: "social", StartTime: now.Add(24 * time.Hour), IsTrending: true},
		{ID: "e-tennis", Title: "Tennis Ladder", Sport: "tennis", Location: "riverside", EventType: "tournament", StartTime: now.Add(48 * time.Hour)},
		{ID: "e-running", Title: "Morning Run Club", Sport: "running", Location: "park", EventType: "training", StartTime: now.Add(72 * time.Hour)},
		{ID: "e-past", Title: "Last Week's Game", Sport: "basketball", Location: "downtown", EventType: "social", StartTime: now.Add(-24 * time.Hour)},
	}
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a service with default configuration", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithSeedEvents(seedEvents(time.Now())),
		)

		Convey("When starting it", func() {
			err := svc.Start(ctx)
			defer svc.Stop()

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
			})

			Convey("And starting again is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})

			Convey("And stats should reflect the running service", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldBeTrue)
				So(stats["workerCount"], ShouldEqual, 2)
				So(stats["catalogEvents"], ShouldEqual, 4)
			})
		})

		Convey("When stopping without starting", func() {
			So(func() { svc.Stop() }, ShouldNotPanic)
		})
	})
}

func TestServiceDeduplication(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithWorkerCount(1))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When recording an interaction id", func() {
			So(svc.SeenAndRecord(ctx, "in-1"), ShouldBeFalse)

			Convey("Then a replay is detected", func() {
				So(svc.SeenAndRecord(ctx, "in-1"), ShouldBeTrue)
				So(svc.Size(), ShouldEqual, 1)
			})

			Convey("And unrecording allows a retry", func() {
				svc.Unrecord(ctx, "in-1")
				So(svc.SeenAndRecord(ctx, "in-1"), ShouldBeFalse)
			})
		})
	})
}

func TestServiceInteractionPipeline(t *testing.T) {
	Convey("Given a started service with seeded events", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithSeedEvents(seedEvents(time.Now())),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a participation is enqueued", func() {
			in := model.Interaction{
				ID:      "in-1",
				UserID:  "user-1",
				EventID: "e-basketball",
				Type:    model.InteractionParticipate,
				TS:      time.Now(),
			}
			So(svc.Enqueue(ctx, in), ShouldBeTrue)

			Convey("Then the profile eventually learns the sport", func() {
				ok := waitFor(func() bool {
					p, err := svc.Profile(ctx, "user-1")
					return err == nil && p.Sports["basketball"] > model.NeutralPreference
				})
				So(ok, ShouldBeTrue)

				p, err := svc.Profile(ctx, "user-1")
				So(err, ShouldBeNil)
				So(p.Sports["basketball"], ShouldBeGreaterThan, model.NeutralPreference)
				So(p.Locations["downtown"], ShouldBeGreaterThan, model.NeutralPreference)
			})
		})

		Convey("When resetting the profile", func() {
			in := model.Interaction{
				ID:      "in-2",
				UserID:  "user-2",
				EventID: "e-tennis",
				Type:    model.InteractionParticipate,
				TS:      time.Now(),
			}
			So(svc.Enqueue(ctx, in), ShouldBeTrue)
			So(waitFor(func() bool {
				p, err := svc.Profile(ctx, "user-2")
				return err == nil && p.Sports["tennis"] > model.NeutralPreference
			}), ShouldBeTrue)

			So(svc.ResetProfile(ctx, "user-2"), ShouldBeNil)

			Convey("Then the profile is back to the neutral default", func() {
				p, err := svc.Profile(ctx, "user-2")
				So(err, ShouldBeNil)
				So(p.Sports, ShouldBeEmpty)
			})
		})
	})
}

func TestServiceRecommendations(t *testing.T) {
	Convey("Given a started service with seeded events", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithWorkerCount(1),
			service.WithMaxRecommendationLimit(2),
			service.WithSeedEvents(seedEvents(time.Now())),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When requesting recommendations for a fresh user", func() {
			recs := svc.Recommendations(ctx, "fresh-user", 10)

			Convey("Then the limit is capped at the configured maximum", func() {
				So(len(recs), ShouldEqual, 2)
			})

			Convey("And only upcoming events are recommended", func() {
				for _, r := range recs {
					So(r.Event.ID, ShouldNotEqual, "e-past")
				}
			})

			Convey("And scores stay within bounds", func() {
				for _, r := range recs {
					So(r.Score, ShouldBeBetweenOrEqual, 0, 1)
					So(r.Confidence, ShouldBeBetweenOrEqual, 0, 1)
				}
			})
		})

		Convey("When requesting with a non-positive limit", func() {
			recs := svc.Recommendations(ctx, "fresh-user", 0)

			Convey("Then the default list size applies, capped by the maximum", func() {
				So(len(recs), ShouldEqual, 2)
			})
		})
	})
}

func TestServiceEventCatalog(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithWorkerCount(1))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When creating an event", func() {
			svc.CreateEvent(ctx, model.Event{
				ID:        "e-new",
				Title:     "Evening Yoga",
				Sport:     "yoga",
				Location:  "studio",
				EventType: "training",
				StartTime: time.Now().Add(6 * time.Hour),
			})

			Convey("Then it shows up in listings", func() {
				events, err := svc.ListEvents(ctx, model.EventFilter{Category: model.CategoryAll})
				So(err, ShouldBeNil)
				So(len(events), ShouldEqual, 1)
				So(events[0].ID, ShouldEqual, "e-new")
			})

			Convey("And filters narrow the listing", func() {
				events, err := svc.ListEvents(ctx, model.EventFilter{Category: model.CategoryAll, Sport: "tennis"})
				So(err, ShouldBeNil)
				So(events, ShouldBeEmpty)
			})
		})
	})
}

func TestServiceInsights(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithWorkerCount(1),
			service.WithSeedEvents(seedEvents(time.Now())),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When generating insights for an unknown user", func() {
			snapshot := svc.Insights(ctx, "nobody")

			Convey("Then a usable empty snapshot comes back", func() {
				So(snapshot.UserID, ShouldEqual, "nobody")
				So(snapshot.InfluenceScore, ShouldEqual, 0)
				So(snapshot.GeneratedAt.IsZero(), ShouldBeFalse)
			})
		})
	})
}
