package model_test

import (
	"testing"
	"time"

	"github.com/huddleapp/huddle/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInteractionType(t *testing.T) {
	Convey("Given the closed interaction type set", t, func() {
		Convey("When checking learning weights", func() {
			Convey("Then complete carries the strongest positive weight", func() {
				So(model.InteractionComplete.Weight(), ShouldEqual, 1.2)
			})

			Convey("And skip carries a negative weight", func() {
				So(model.InteractionSkip.Weight(), ShouldEqual, -0.2)
			})

			Convey("And an unknown type carries no signal", func() {
				So(model.InteractionType("poke").Weight(), ShouldEqual, 0)
			})
		})

		Convey("When validating types", func() {
			valid := []model.InteractionType{
				model.InteractionView,
				model.InteractionParticipate,
				model.InteractionReact,
				model.InteractionComment,
				model.InteractionShare,
				model.InteractionBookmark,
				model.InteractionSkip,
				model.InteractionComplete,
			}
			for _, it := range valid {
				So(it.Valid(), ShouldBeTrue)
			}
			So(model.InteractionType("").Valid(), ShouldBeFalse)
			So(model.InteractionType("poke").Valid(), ShouldBeFalse)
		})
	})
}

func TestPreferenceProfile(t *testing.T) {
	Convey("Given a fresh preference profile", t, func() {
		now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
		p := model.NewPreferenceProfile("user-1", now)

		Convey("Then all maps are empty and social scalars are neutral", func() {
			So(p.Sports, ShouldBeEmpty)
			So(p.Locations, ShouldBeEmpty)
			So(p.EventTypes, ShouldBeEmpty)
			So(p.TimeSlots, ShouldBeEmpty)
			So(p.Social.MentorshipInterest, ShouldEqual, model.NeutralPreference)
			So(p.Social.TeamParticipation, ShouldEqual, model.NeutralPreference)
			So(p.LastUpdated, ShouldEqual, now)
		})

		Convey("When reading an unobserved time slot", func() {
			got := p.SlotPreference(model.TimeSlot{Hour: 18, DayOfWeek: time.Tuesday})

			Convey("Then the neutral prior is returned", func() {
				So(got, ShouldEqual, model.NeutralPreference)
			})
		})

		Convey("When a slot has been observed", func() {
			p.TimeSlots = append(p.TimeSlots, model.TimeslotPreference{
				TimeSlot:      model.TimeSlot{Hour: 18, DayOfWeek: time.Tuesday},
				ActivityLevel: 0.9,
			})

			Convey("Then its activity level is returned", func() {
				So(p.SlotPreference(model.TimeSlot{Hour: 18, DayOfWeek: time.Tuesday}), ShouldEqual, 0.9)
			})

			Convey("And other slots still return the prior", func() {
				So(p.SlotPreference(model.TimeSlot{Hour: 9, DayOfWeek: time.Monday}), ShouldEqual, model.NeutralPreference)
			})
		})
	})
}
