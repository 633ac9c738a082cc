package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/autocal/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty store", t, func() {
		s := repository.NewMemStore()

		Convey("Then an unknown path returns ErrNotFound", func() {
			_, err := s.Get(ctx, "missing.csv")
			So(err, ShouldEqual, repository.ErrNotFound)
			So(s.Count(ctx), ShouldEqual, 0)
		})

		Convey("When an outcome is recorded", func() {
			o := repository.Outcome{Path: "a.csv", JobID: "j1", Calibrated: true, ErrEnd: 0.002}
			So(s.Record(ctx, o), ShouldBeNil)

			Convey("Then it can be read back", func() {
				got, err := s.Get(ctx, "a.csv")
				So(err, ShouldBeNil)
				So(got, ShouldResemble, o)
				So(s.Count(ctx), ShouldEqual, 1)
			})

			Convey("Then a retry for the same path overwrites", func() {
				o2 := o
				o2.JobID = "j2"
				o2.ErrEnd = 0.001
				So(s.Record(ctx, o2), ShouldBeNil)
				got, _ := s.Get(ctx, "a.csv")
				So(got.JobID, ShouldEqual, "j2")
				So(s.Count(ctx), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a mix of outcomes", t, func() {
		s := repository.NewMemStore()
		So(s.Record(ctx, repository.Outcome{Path: "good.csv", Calibrated: true, ErrEnd: 0.001}), ShouldBeNil)
		So(s.Record(ctx, repository.Outcome{Path: "worse.csv", Calibrated: true, ErrEnd: 0.008}), ShouldBeNil)
		So(s.Record(ctx, repository.Outcome{Path: "short.csv", Diagnostic: "too little data"}), ShouldBeNil)
		So(s.Record(ctx, repository.Outcome{Path: "broken.csv", Err: "bad header"}), ShouldBeNil)

		Convey("Then the summary is ordered worst-first", func() {
			out, err := s.Summary(ctx)
			So(err, ShouldBeNil)
			So(len(out), ShouldEqual, 4)
			So(out[0].Path, ShouldEqual, "broken.csv")
			So(out[1].Path, ShouldEqual, "short.csv")
			So(out[2].Path, ShouldEqual, "worse.csv")
			So(out[3].Path, ShouldEqual, "good.csv")
		})
	})

	Convey("Given concurrent writers", t, func() {
		s := repository.NewMemStore()
		var wg sync.WaitGroup
		for w := 0; w < 8; w++ {
			w := w
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					_ = s.Record(ctx, repository.Outcome{Path: fmt.Sprintf("rec-%d-%d.csv", w, i)})
				}
			}()
		}
		wg.Wait()

		Convey("Then every record lands", func() {
			So(s.Count(ctx), ShouldEqual, 400)
		})
	})
}
