package rollstats_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/okian/autocal/internal/domain/model"
	"github.com/okian/autocal/internal/domain/rollstats"
	. "github.com/smartystreets/goconvey/convey"
)

// secondTimes builds n timestamps spaced one second apart.
func secondTimes(n int) []time.Time {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = t0.Add(time.Duration(i) * time.Second)
	}
	return out
}

func TestSlidingRolling(t *testing.T) {
	Convey("Given a 1 Hz constant recording", t, func() {
		p := rollstats.NewSliding()
		n := 30
		accel := model.NewSamples(n)
		for i := 0; i < n; i++ {
			accel.X[i] = 0.5
			accel.Y[i] = -1.0
			accel.Z[i] = 0.0
		}
		times := secondTimes(n)

		Convey("When computing 10 s rolling stats", func() {
			st, err := p.Rolling(context.Background(), accel, times, 10)
			So(err, ShouldBeNil)

			Convey("Then the output is trimmed to full windows", func() {
				So(st.Mean.Len(), ShouldEqual, n-10+1)
				So(st.SD.Len(), ShouldEqual, st.Mean.Len())
				So(len(st.Time), ShouldEqual, st.Mean.Len())
				So(st.Time[0], ShouldEqual, times[0])
			})

			Convey("Then the mean is the constant and the SD is zero", func() {
				for i := 0; i < st.Mean.Len(); i++ {
					So(st.Mean.X[i], ShouldAlmostEqual, 0.5)
					So(st.Mean.Y[i], ShouldAlmostEqual, -1.0)
					So(st.Mean.Z[i], ShouldAlmostEqual, 0.0)
					So(st.SD.X[i], ShouldAlmostEqual, 0.0, 1e-9)
				}
			})
		})
	})

	Convey("Given a short alternating series", t, func() {
		p := rollstats.NewSliding()
		accel := model.Samples{
			X: []float64{1, 3, 1, 3},
			Y: []float64{0, 0, 0, 0},
			Z: []float64{2, 2, 2, 2},
		}
		times := secondTimes(4)

		Convey("When the window covers two samples", func() {
			st, err := p.Rolling(context.Background(), accel, times, 2)
			So(err, ShouldBeNil)

			Convey("Then means and sample SDs match the hand-computed values", func() {
				So(st.Mean.Len(), ShouldEqual, 3)
				So(st.Mean.X[0], ShouldAlmostEqual, 2)
				// sample SD of {1,3} is sqrt(2)
				So(st.SD.X[0], ShouldAlmostEqual, math.Sqrt2, 1e-12)
				So(st.SD.Z[1], ShouldAlmostEqual, 0, 1e-12)
			})
		})
	})

	Convey("Given invalid inputs", t, func() {
		p := rollstats.NewSliding()

		Convey("Then an empty table is rejected", func() {
			_, err := p.Rolling(context.Background(), model.Samples{}, nil, 10)
			So(err, ShouldEqual, rollstats.ErrEmptyInput)
		})

		Convey("Then mismatched row counts are rejected", func() {
			_, err := p.Rolling(context.Background(), model.NewSamples(3), secondTimes(2), 10)
			So(err, ShouldEqual, rollstats.ErrRowCountMismatch)
		})

		Convey("Then a non-positive window is rejected", func() {
			_, err := p.Rolling(context.Background(), model.NewSamples(3), secondTimes(3), 0)
			So(err, ShouldEqual, rollstats.ErrWindowSeconds)
		})
	})

	Convey("Given a single-sample recording", t, func() {
		p := rollstats.NewSliding()
		accel := model.Samples{X: []float64{0.7}, Y: []float64{0}, Z: []float64{0.7}}
		times := secondTimes(1)

		Convey("Then the window degrades to one sample with zero SD", func() {
			st, err := p.Rolling(context.Background(), accel, times, 10)
			So(err, ShouldBeNil)
			So(st.Mean.Len(), ShouldEqual, 1)
			So(st.Mean.X[0], ShouldAlmostEqual, 0.7)
			So(st.SD.X[0], ShouldEqual, 0)
		})
	})
}
