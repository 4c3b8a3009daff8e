package queue_test

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/huddleapp/huddle/internal/adapters/mq/queue"
	"github.com/huddleapp/huddle/internal/domain/model"
)

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a bounded in-memory queue", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(2))

		in := model.Interaction{
			ID:      "in-1",
			UserID:  "user-1",
			EventID: "e1",
			Type:    model.InteractionView,
			TS:      time.Now(),
		}

		Convey("When enqueuing within capacity", func() {
			So(q.Enqueue(ctx, in), ShouldBeTrue)
			So(q.Len(ctx), ShouldEqual, 1)

			Convey("Then dequeue delivers the same interaction", func() {
				got := <-q.Dequeue(ctx)
				So(got.ID, ShouldEqual, "in-1")
				So(got.Type, ShouldEqual, model.InteractionView)
			})
		})

		Convey("When the queue is full", func() {
			So(q.Enqueue(ctx, in), ShouldBeTrue)
			in2 := in
			in2.ID = "in-2"
			So(q.Enqueue(ctx, in2), ShouldBeTrue)
			in3 := in
			in3.ID = "in-3"

			Convey("Then further enqueues report backpressure", func() {
				So(q.Enqueue(ctx, in3), ShouldBeFalse)
				So(q.Len(ctx), ShouldEqual, 2)
			})
		})

		Convey("When the queue is closed", func() {
			So(q.Enqueue(ctx, in), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)
			So(q.IsClosed(), ShouldBeTrue)

			Convey("Then enqueues fail", func() {
				So(q.Enqueue(ctx, in), ShouldBeFalse)
			})

			Convey("And buffered interactions drain before the channel closes", func() {
				ch := q.Dequeue(ctx)
				got, ok := <-ch
				So(ok, ShouldBeTrue)
				So(got.ID, ShouldEqual, "in-1")
				_, ok = <-ch
				So(ok, ShouldBeFalse)
			})

			Convey("And closing again is not an error", func() {
				So(q.Close(), ShouldBeNil)
			})
		})
	})
}
