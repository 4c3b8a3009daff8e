package config_test

import (
	"runtime"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/huddleapp/huddle/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 100_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 500_000)
			convey.So(cfg.MaxRecommendationLimit, convey.ShouldEqual, 50)
			convey.So(cfg.LearningRate, convey.ShouldEqual, 0.1)
			convey.So(cfg.CacheTTL, convey.ShouldEqual, 30*time.Minute)
			convey.So(cfg.MaxInteractionsPerUser, convey.ShouldEqual, 1000)
			convey.So(cfg.BadgerInMemory, convey.ShouldBeTrue)
		})
	})
}
