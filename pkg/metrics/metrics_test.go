package metrics_test

import (
	"testing"

	"github.com/okian/autocal/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetrics(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("Then the package-level helpers do not panic", func() {
			So(func() {
				metrics.RecordRecordingProcessed()
				metrics.RecordRecordingFailed()
				metrics.RecordDuplicateInput()
				metrics.ObserveRecordingDuration(0.25)
				metrics.RecordFitAccepted()
				metrics.RecordFitRejected("sphere_underpopulated")
				metrics.ObserveFitIterations(12)
				metrics.ObserveWindowExpansions(1)
				metrics.UpdateStillSamples(420)
				metrics.UpdateCalibrationError(0.021, 0.003)
				metrics.UpdateQueueSize(3)
				metrics.UpdateQueueCapacity(64)
				metrics.UpdateQueueUtilization(3.0 / 64.0)
				metrics.UpdateWorkerCount(4)
			}, ShouldNotPanic)
		})

		Convey("Then the HTTP handler is available", func() {
			So(metrics.Handler(), ShouldNotBeNil)
		})
	})

	Convey("Given a manager on a private registry", t, func() {
		reg := prometheus.NewRegistry()

		Convey("Then construction with options succeeds", func() {
			So(func() {
				metrics.NewManager(
					metrics.WithPrometheusRegistry(reg),
					metrics.WithNamespace("autocal_test"),
					metrics.WithSubsystem("batch"),
					metrics.WithHistogramBuckets([]float64{0.1, 1, 10}),
				)
			}, ShouldNotPanic)
		})
	})
}
