package metrics_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mgrady/gridiron/pkg/metrics"
)

func TestManager(t *testing.T) {
	Convey("Given a metrics manager", t, func() {
		m := metrics.NewManager(
			metrics.WithNamespace("test"),
			metrics.WithSubsystem("core"),
			metrics.WithHistogramBuckets([]float64{1, 10, 100}),
		)

		Convey("it exposes a registry", func() {
			So(m.Registry(), ShouldNotBeNil)
		})
	})

	Convey("Package-level recorders never panic", t, func() {
		So(func() {
			metrics.RecordContestSeeded()
			metrics.RecordContestLocked("manual")
			metrics.RecordContestScored()
			metrics.RecordScoringDuplicate()
			metrics.RecordScoringError()
			metrics.RecordPickSubmitted(3)
			metrics.RecordPickRejectedLocked()
			metrics.RecordBroadcastEvent()
			metrics.RecordBroadcastDuplicate()
			metrics.RecordRepositoryUpdateLatency(1.5)
			metrics.RecordRepositoryQueryLatency(0.5)
			metrics.RecordHTTPRequest("rankings", "GET", "200")
			metrics.RecordHTTPRequestDuration("rankings", "GET", "200", 2.0)
		}, ShouldNotPanic)

		Convey("and the default registry is gatherable", func() {
			families, err := metrics.GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}
