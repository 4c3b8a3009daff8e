package worker_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/huddleapp/huddle/internal/adapters/mq/queue"
	"github.com/huddleapp/huddle/internal/adapters/mq/worker"
	"github.com/huddleapp/huddle/internal/domain/model"
	"github.com/huddleapp/huddle/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

type recordingStore struct {
	mu       sync.Mutex
	recorded []model.Interaction
	err      error
}

func (s *recordingStore) Record(_ context.Context, in model.Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.recorded = append(s.recorded, in)
	return nil
}

func (s *recordingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recorded)
}

type updatingStore struct {
	mu      sync.Mutex
	applied []model.Interaction
	err     error
}

func (s *updatingStore) ApplyInteraction(_ context.Context, in model.Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.applied = append(s.applied, in)
	return nil
}

func (s *updatingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.applied)
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

func TestWorker(t *testing.T) {
	Convey("Given a worker attached to a queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		recorder := &recordingStore{}
		profiles := &updatingStore{}

		w := worker.New(q, recorder, profiles, worker.WithName("test-worker"))
		go w.Run(ctx)

		in := model.Interaction{
			ID:      "in-1",
			UserID:  "user-1",
			EventID: "e1",
			Type:    model.InteractionParticipate,
			TS:      time.Now(),
		}

		Convey("When an interaction is enqueued", func() {
			So(q.Enqueue(ctx, in), ShouldBeTrue)

			Convey("Then it is recorded and the profile is updated", func() {
				So(waitFor(func() bool { return profiles.count() == 1 }), ShouldBeTrue)
				So(recorder.count(), ShouldEqual, 1)
			})
		})

		Convey("When recording fails", func() {
			recorder.err = errors.New("storage down")
			So(q.Enqueue(ctx, in), ShouldBeTrue)
			in2 := in
			in2.ID = "in-2"
			So(q.Enqueue(ctx, in2), ShouldBeTrue)

			Convey("Then the worker keeps running and skips profile updates", func() {
				So(waitFor(func() bool { return q.Len(ctx) == 0 }), ShouldBeTrue)
				So(profiles.count(), ShouldEqual, 0)
			})
		})

		Convey("When a profile update fails", func() {
			profiles.err = errors.New("profile down")
			So(q.Enqueue(ctx, in), ShouldBeTrue)

			Convey("Then the interaction is still recorded", func() {
				So(waitFor(func() bool { return recorder.count() == 1 }), ShouldBeTrue)
			})
		})

		Convey("When the worker is shut down", func() {
			shutdownCtx, stop := context.WithTimeout(context.Background(), time.Second)
			defer stop()

			Convey("Then shutdown completes within the deadline", func() {
				So(w.Shutdown(shutdownCtx), ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	Convey("Given a pool of workers", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		recorder := &recordingStore{}
		profiles := &updatingStore{}

		pool := worker.NewPool(4, q, recorder, profiles)
		pool.Start(ctx)

		Convey("When many interactions are enqueued", func() {
			for i := 0; i < 50; i++ {
				in := model.Interaction{
					ID:      fmt.Sprintf("in-%d", i),
					UserID:  "user-1",
					EventID: "e1",
					Type:    model.InteractionView,
					TS:      time.Now(),
				}
				So(q.Enqueue(ctx, in), ShouldBeTrue)
			}

			Convey("Then all of them are processed", func() {
				So(waitFor(func() bool { return profiles.count() == 50 }), ShouldBeTrue)
				pool.Stop()
			})
		})
	})
}
