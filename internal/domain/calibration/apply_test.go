package calibration_test

import (
	"testing"

	"github.com/okian/autocal/internal/domain/calibration"
	"github.com/okian/autocal/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestApply(t *testing.T) {
	Convey("Given a small table and a non-trivial transform", t, func() {
		table := model.Samples{
			X: []float64{0, 1, -1, 0.5},
			Y: []float64{1, 0, 2, -0.5},
			Z: []float64{-1, 1, 0, 0.25},
		}
		scale := [3]float64{1.02, 0.98, 1.01}
		offset := [3]float64{0.01, -0.02, 0.005}

		Convey("When the transform is applied", func() {
			out := calibration.Apply(table, scale, offset)

			Convey("Then each axis maps through in*scale + offset", func() {
				for i := 0; i < table.Len(); i++ {
					So(out.X[i], ShouldAlmostEqual, table.X[i]*scale[0]+offset[0])
					So(out.Y[i], ShouldAlmostEqual, table.Y[i]*scale[1]+offset[1])
					So(out.Z[i], ShouldAlmostEqual, table.Z[i]*scale[2]+offset[2])
				}
			})

			Convey("Then the input table is untouched", func() {
				So(table.X[1], ShouldEqual, 1)
				So(table.Y[2], ShouldEqual, 2)
			})

			Convey("Then ApplyInverse round-trips back to the input", func() {
				back := calibration.ApplyInverse(out, scale, offset)
				for i := 0; i < table.Len(); i++ {
					So(back.X[i], ShouldAlmostEqual, table.X[i], 1e-12)
					So(back.Y[i], ShouldAlmostEqual, table.Y[i], 1e-12)
					So(back.Z[i], ShouldAlmostEqual, table.Z[i], 1e-12)
				}
			})

			Convey("Then applying twice compounds rather than repeats", func() {
				twice := calibration.Apply(out, scale, offset)
				So(twice.X[1], ShouldNotAlmostEqual, out.X[1], 1e-9)
			})
		})
	})

	Convey("Given the identity transform", t, func() {
		table := model.Samples{X: []float64{3}, Y: []float64{-2}, Z: []float64{7}}
		out := calibration.Apply(table, [3]float64{1, 1, 1}, [3]float64{})

		Convey("Then values pass through unchanged", func() {
			So(out.X[0], ShouldEqual, 3)
			So(out.Y[0], ShouldEqual, -2)
			So(out.Z[0], ShouldEqual, 7)
		})
	})
}
