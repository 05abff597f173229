package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the default options", t, func() {
		So(Init(WithOutput(io.Discard)), ShouldBeNil)
		Reset(func() { _ = Sync() })

		Convey("Then Get and Named return usable loggers", func() {
			So(Get(), ShouldNotBeNil)
			So(Named("test"), ShouldNotBeNil)
			So(func() { Get().Info(context.Background(), "test message", String("k", "v")) }, ShouldNotPanic)
		})
	})
}

func TestLoggerFormats(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithFormat("JSON"), WithOutput(&buf)), ShouldBeNil)

		Get().Info(context.Background(), "shot analyzed", String("shape", "Fade"), Float64("carry", 201.5))

		Convey("Then each line is a JSON object with the fields", func() {
			var line map[string]any
			So(json.Unmarshal(buf.Bytes(), &line), ShouldBeNil)
			So(line["msg"], ShouldEqual, "shot analyzed")
			So(line["shape"], ShouldEqual, "Fade")
			So(line["carry"], ShouldEqual, 201.5)
			So(line["source"], ShouldContainSubstring, "logger_test.go")
		})
	})

	Convey("Given a text logger with a raised level", t, func() {
		var buf bytes.Buffer
		So(Init(WithFormat("text"), WithOutput(&buf)), ShouldBeNil)
		So(SetLevelString("warn"), ShouldBeNil)

		Get().Info(context.Background(), "hidden")
		Get().Warn(context.Background(), "shown", Bool("degraded", true))

		Convey("Then only the warning is written", func() {
			So(buf.String(), ShouldNotContainSubstring, "hidden")
			So(buf.String(), ShouldContainSubstring, "msg=shown")
			So(buf.String(), ShouldContainSubstring, "degraded=true")
		})
	})

	Convey("Given an unsupported format", t, func() {
		err := Init(WithFormat("xml"))

		Convey("Then Init fails with ErrUnknownFormat", func() {
			So(errors.Is(err, ErrUnknownFormat), ShouldBeTrue)
		})
	})

	Convey("Given an unknown level", t, func() {
		So(errors.Is(SetLevelString("verbose"), ErrUnknownLevel), ShouldBeTrue)
	})
}

func TestLoggerWithAndNamed(t *testing.T) {
	Convey("Given a JSON logger", t, func() {
		var buf bytes.Buffer
		So(Init(WithFormat("json"), WithOutput(&buf)), ShouldBeNil)

		Convey("When fields are bound with With", func() {
			l := Get().With(String("shot_id", "shot-7"))
			l.Info(context.Background(), "first")
			l.Warn(context.Background(), "second", Int("n", 2))

			Convey("Then every line carries them", func() {
				lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
				So(lines, ShouldHaveLength, 2)
				for _, raw := range lines {
					var line map[string]any
					So(json.Unmarshal([]byte(raw), &line), ShouldBeNil)
					So(line["shot_id"], ShouldEqual, "shot-7")
				}
			})
		})

		Convey("When a named logger writes", func() {
			Named("worker").Info(context.Background(), "done", String("shape", "Draw"))

			Convey("Then its fields sit under the group", func() {
				var line map[string]any
				So(json.Unmarshal(buf.Bytes(), &line), ShouldBeNil)
				group, ok := line["worker"].(map[string]any)
				So(ok, ShouldBeTrue)
				So(group["shape"], ShouldEqual, "Draw")
			})
		})

		Convey("When With gets no fields", func() {
			l := Get()
			So(l.With(), ShouldEqual, l)
		})
	})
}
