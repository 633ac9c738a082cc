package csvfile_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/autocal/internal/adapters/csvfile"
	"github.com/okian/autocal/internal/domain/calibration"
	"github.com/okian/autocal/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleRecording(n int, withAux bool) model.Recording {
	rec := model.Recording{
		Acceleration: model.NewSamples(n),
		Time:         make([]time.Time, n),
		SamplingRate: 2,
	}
	t0 := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		rec.Time[i] = t0.Add(time.Duration(i) * 500 * time.Millisecond)
		rec.Acceleration.X[i] = 0.1 * float64(i)
		rec.Acceleration.Y[i] = -0.05 * float64(i)
		rec.Acceleration.Z[i] = 1
	}
	if withAux {
		rec.Lux = make([]float64, n)
		rec.Battery = make([]float64, n)
		for i := 0; i < n; i++ {
			rec.Lux[i] = float64(100 + i)
			rec.Battery[i] = 3.7
		}
	}
	return rec
}

func TestRecordingRoundTrip(t *testing.T) {
	Convey("Given a recording with auxiliary columns", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "rec.csv")
		rec := sampleRecording(10, true)

		Convey("When written and read back", func() {
			So(csvfile.WriteRecording(path, rec), ShouldBeNil)
			got, err := csvfile.ReadRecording(path, rec.SamplingRate)
			So(err, ShouldBeNil)

			Convey("Then samples and timestamps survive", func() {
				So(got.Acceleration.Len(), ShouldEqual, 10)
				for i := 0; i < 10; i++ {
					So(got.Acceleration.X[i], ShouldAlmostEqual, rec.Acceleration.X[i], 1e-12)
					So(got.Acceleration.Z[i], ShouldEqual, 1)
					So(got.Time[i].Equal(rec.Time[i]), ShouldBeTrue)
				}
			})

			Convey("Then present auxiliary columns survive and absent ones stay nil", func() {
				So(got.Lux, ShouldResemble, rec.Lux)
				So(got.Battery, ShouldResemble, rec.Battery)
				So(got.CapSense, ShouldBeNil)
			})
		})

		Convey("When read back without a rate hint", func() {
			So(csvfile.WriteRecording(path, rec), ShouldBeNil)
			got, err := csvfile.ReadRecording(path, 0)
			So(err, ShouldBeNil)

			Convey("Then the rate is inferred from the timestamps", func() {
				So(got.SamplingRate, ShouldAlmostEqual, 2, 1e-9)
			})
		})
	})

	Convey("Given malformed files", t, func() {
		dir := t.TempDir()

		write := func(name, body string) string {
			path := filepath.Join(dir, name)
			So(os.WriteFile(path, []byte(body), 0o600), ShouldBeNil)
			return path
		}

		Convey("Then a missing file errors", func() {
			_, err := csvfile.ReadRecording(filepath.Join(dir, "nope.csv"), 1)
			So(err, ShouldNotBeNil)
		})

		Convey("Then a header without the axis columns is rejected", func() {
			path := write("badheader.csv", "time,ax,ay,az\n")
			_, err := csvfile.ReadRecording(path, 1)
			So(errors.Is(err, csvfile.ErrHeader), ShouldBeTrue)
		})

		Convey("Then a header-only file is rejected", func() {
			path := write("empty.csv", "time,accel_x,accel_y,accel_z\n")
			_, err := csvfile.ReadRecording(path, 1)
			So(errors.Is(err, csvfile.ErrEmptyFile), ShouldBeTrue)
		})

		Convey("Then a bad timestamp is rejected", func() {
			path := write("badtime.csv", "time,accel_x,accel_y,accel_z\nnot-a-time,0,0,1\n")
			_, err := csvfile.ReadRecording(path, 1)
			So(errors.Is(err, csvfile.ErrTimestamp), ShouldBeTrue)
		})

		Convey("Then a bad numeric cell is rejected", func() {
			path := write("badval.csv", "time,accel_x,accel_y,accel_z\n2024-03-01T08:00:00Z,0,oops,1\n")
			_, err := csvfile.ReadRecording(path, 1)
			So(errors.Is(err, csvfile.ErrValue), ShouldBeTrue)
		})
	})
}

func TestSummarySidecar(t *testing.T) {
	Convey("Given a calibration result", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "rec.calibration.json")

		res := calibration.Result{
			Calibrated: true,
			Scale:      [3]float64{1.02, 0.98, 1.01},
			Offset:     [3]float64{0.01, -0.02, 0.005},
			ErrStart:   0.02131,
			ErrEnd:     0.00042,
			Expansions: 1,
			Iterations: 37,
		}

		Convey("When written and read back", func() {
			So(csvfile.WriteSummary(path, csvfile.NewSummary(res)), ShouldBeNil)
			got, err := csvfile.ReadSummary(path)
			So(err, ShouldBeNil)

			Convey("Then the transform and outcome survive", func() {
				So(got.Calibrated, ShouldBeTrue)
				So(got.Scale, ShouldResemble, res.Scale)
				So(got.Offset, ShouldResemble, res.Offset)
				So(got.ErrEnd, ShouldEqual, res.ErrEnd)
				So(got.Expansions, ShouldEqual, 1)
				So(got.Diagnostic, ShouldBeEmpty)
			})
		})

		Convey("When the run carried a diagnostic", func() {
			res.Calibrated = false
			res.Diagnostic = &calibration.Diagnostic{
				Code:    calibration.DiagDataInsufficient,
				Message: "less than 72 hours of data",
			}
			So(csvfile.WriteSummary(path, csvfile.NewSummary(res)), ShouldBeNil)
			got, err := csvfile.ReadSummary(path)
			So(err, ShouldBeNil)

			Convey("Then the message is carried through", func() {
				So(got.Calibrated, ShouldBeFalse)
				So(got.Diagnostic, ShouldContainSubstring, "72 hours")
			})
		})
	})
}
