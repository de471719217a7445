package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		So(Init(), ShouldBeNil)
		defer func() { So(Sync(), ShouldBeNil) }()

		Convey("Then Get and Named return usable loggers", func() {
			So(Get(), ShouldNotBeNil)
			named := Named("test")
			So(named, ShouldNotBeNil)
			named.Info(context.Background(), "test message", String("k", "v"))
		})
	})
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithOutput(&buf), WithJSON(true)), ShouldBeNil)
		log := Get().Named("engine")

		Convey("When logging with a request id in context", func() {
			ctx := WithRequestID(context.Background(), "req-1")
			log.Info(ctx, "assessed", Float64("score", 70), Bool("council", false))

			Convey("Then fields are structured", func() {
				var entry map[string]any
				So(json.Unmarshal(buf.Bytes(), &entry), ShouldBeNil)
				So(entry["msg"], ShouldEqual, "assessed")
				So(entry["logger"], ShouldEqual, "engine")
				So(entry["request_id"], ShouldEqual, "req-1")
				So(entry["score"], ShouldEqual, 70.0)
				So(entry["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level filters debug", func() {
			So(SetLevelString("warn"), ShouldBeNil)
			log.Debug(context.Background(), "hidden")
			So(buf.Len(), ShouldEqual, 0)
			So(SetLevelString("info"), ShouldBeNil)
		})

		Convey("When the level string is unknown", func() {
			So(SetLevelString("loud"), ShouldNotBeNil)
		})
	})
}

func TestNop(t *testing.T) {
	Convey("Nop discards entries", t, func() {
		l := Nop().Named("x")
		l.Info(context.Background(), "ignored")
		l.Error(context.Background(), "ignored", Error(nil))
		So(RequestID(context.Background()), ShouldEqual, "")
	})
}
