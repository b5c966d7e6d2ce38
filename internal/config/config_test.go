package config_test

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/mgrady/gridiron/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
			convey.So(cfg.DatabaseURL, convey.ShouldBeEmpty)
			convey.So(cfg.MigrationsURL, convey.ShouldEqual, "file://migrations")
			convey.So(cfg.HomeFieldBonus, convey.ShouldEqual, 2.5)
			convey.So(cfg.MarginDivisor, convey.ShouldEqual, 2.25)
			convey.So(cfg.BaseLoserScore, convey.ShouldEqual, 17)
			convey.So(cfg.MaxMargin, convey.ShouldEqual, 28)
			convey.So(cfg.ConfidenceSlope, convey.ShouldEqual, 1.5)
			convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100)
			convey.So(cfg.BusBufferSize, convey.ShouldEqual, 256)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 10_000)
		})

		convey.Convey("Then the marquee weights should sum to 1", func() {
			sum := cfg.CompetitivenessWeight + cfg.QualityWeight + cfg.StakesWeight + cfg.RivalryWeight
			convey.So(sum, convey.ShouldAlmostEqual, 1.0, 1e-9)
		})
	})
}
