package dedupe_test

import (
	"context"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/huddleapp/huddle/internal/domain/dedupe"
)

func TestDeduper(t *testing.T) {
	Convey("Given a bounded deduper", t, func() {
		ctx := context.Background()
		d := dedupe.New(dedupe.WithMaxSize(3))

		Convey("When recording a new id", func() {
			seen := d.SeenAndRecord(ctx, "in-1")

			Convey("Then it was not seen before", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And recording it again reports a duplicate", func() {
				So(d.SeenAndRecord(ctx, "in-1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When the bound is exceeded", func() {
			for i := 0; i < 4; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("in-%d", i))
			}

			Convey("Then the oldest id was forgotten", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "in-0"), ShouldBeFalse)
			})

			Convey("And recent ids are still remembered", func() {
				So(d.SeenAndRecord(ctx, "in-3"), ShouldBeTrue)
			})
		})

		Convey("When unrecording an id", func() {
			d.SeenAndRecord(ctx, "in-1")
			d.Unrecord(ctx, "in-1")

			Convey("Then it can be recorded again", func() {
				So(d.SeenAndRecord(ctx, "in-1"), ShouldBeFalse)
			})
		})

		Convey("When unrecording an unknown id", func() {
			d.Unrecord(ctx, "ghost")
			So(d.Size(), ShouldEqual, 0)
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		ctx := context.Background()
		d := dedupe.New(dedupe.WithMaxSize(0))

		Convey("When recording many ids", func() {
			for i := 0; i < 100; i++ {
				So(d.SeenAndRecord(ctx, fmt.Sprintf("in-%d", i)), ShouldBeFalse)
			}

			Convey("Then none are forgotten", func() {
				So(d.Size(), ShouldEqual, 100)
				So(d.SeenAndRecord(ctx, "in-0"), ShouldBeTrue)
			})
		})
	})
}
