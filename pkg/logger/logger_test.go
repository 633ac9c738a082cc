package logger_test

import (
	"context"
	"testing"

	"github.com/okian/autocal/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given an uninitialized logger package", t, func() {
		Convey("Then Get falls back to the nop logger without panicking", func() {
			l := logger.Get()
			So(l, ShouldNotBeNil)
			So(func() {
				l.Info(context.Background(), "dropped")
				l.Named("sub").Warn(context.Background(), "dropped too")
			}, ShouldNotPanic)
		})
	})

	Convey("Given an initialized logger", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("Then logging with fields does not panic", func() {
			l := logger.Named("test")
			So(func() {
				l.Info(context.Background(), "message",
					logger.String("k", "v"),
					logger.Int("n", 1),
					logger.Float64("f", 1.5),
				)
			}, ShouldNotPanic)
		})

		Convey("Then level strings parse as documented", func() {
			So(logger.SetLevelString("debug"), ShouldBeNil)
			So(logger.SetLevelString("WARN"), ShouldBeNil)
			So(logger.SetLevelString(""), ShouldBeNil)
			So(logger.SetLevelString("loud"), ShouldNotBeNil)
		})
	})
}
