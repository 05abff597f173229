package shotload

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/fairway/internal/adapters/http/api"
	service "github.com/okian/fairway/internal/app"
	"github.com/okian/fairway/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

func TestGenerator(t *testing.T) {
	convey.Convey("Given two generators with the same seed", t, func() {
		a := NewGenerator(7, 100)
		b := NewGenerator(7, 100)

		convey.Convey("Then they produce the same shots", func() {
			for range 50 {
				convey.So(a.Next(), convey.ShouldResemble, b.Next())
			}
		})
	})

	convey.Convey("Given a generator", t, func() {
		g := NewGenerator(42, 1)
		shots := make([]Shot, 500)
		for i := range shots {
			shots[i] = g.Next()
		}

		convey.Convey("Then shot numbers are consecutive and timestamps increase", func() {
			for i, s := range shots {
				convey.So(*s.Msg.ShotNumber, convey.ShouldEqual, int64(i+1))
				if i > 0 {
					convey.So(*s.Msg.TimestampNS, convey.ShouldBeGreaterThan, *shots[i-1].Msg.TimestampNS)
				}
			}
		})

		convey.Convey("And every measurement is inside its club's window", func() {
			byName := map[string]profile{}
			for _, p := range profiles {
				byName[p.name] = p
			}
			for _, s := range shots {
				p := byName[s.Club]
				convey.So(*s.Msg.BallSpeed, convey.ShouldBeBetweenOrEqual, p.ballSpeed[0], p.ballSpeed[1])
				convey.So(*s.Msg.VerticalLaunchAngle, convey.ShouldBeBetweenOrEqual, p.launch[0], p.launch[1])
				convey.So(*s.Msg.TotalSpin, convey.ShouldBeBetweenOrEqual, p.spin[0], p.spin[1])
				convey.So(s.Msg.Handedness, convey.ShouldBeIn, "RH", "LH")
			}
		})

		convey.Convey("And every club profile shows up", func() {
			seen := map[string]bool{}
			for _, s := range shots {
				seen[s.Club] = true
			}
			convey.So(seen, convey.ShouldHaveLength, len(profiles))
		})
	})
}

func TestVerifyTopOrder(t *testing.T) {
	convey.Convey("Given top lists", t, func() {
		convey.Convey("When ordered with dense ties", func() {
			top := []Entry{{1, "a", 200}, {1, "b", 200}, {2, "c", 180}, {3, "d", 150}}
			convey.So(verifyTopOrder(top), convey.ShouldBeNil)
		})

		convey.Convey("When empty", func() {
			convey.So(verifyTopOrder(nil), convey.ShouldBeNil)
		})

		convey.Convey("When the first rank is not 1", func() {
			convey.So(errors.Is(verifyTopOrder([]Entry{{2, "a", 200}}), ErrInconsistent), convey.ShouldBeTrue)
		})

		convey.Convey("When a shorter carry comes first", func() {
			top := []Entry{{1, "a", 150}, {2, "b", 200}}
			convey.So(errors.Is(verifyTopOrder(top), ErrInconsistent), convey.ShouldBeTrue)
		})

		convey.Convey("When tied carries are ranked apart", func() {
			top := []Entry{{1, "a", 200}, {2, "b", 200}}
			convey.So(errors.Is(verifyTopOrder(top), ErrInconsistent), convey.ShouldBeTrue)
		})

		convey.Convey("When a rank is skipped", func() {
			top := []Entry{{1, "a", 200}, {3, "b", 150}}
			convey.So(errors.Is(verifyTopOrder(top), ErrInconsistent), convey.ShouldBeTrue)
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a running shot service", t, func() {
		svc := service.New(service.WithWorkerCount(4), service.WithQueueSize(1000), service.WithHistorySize(1000))
		convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
		convey.Reset(svc.Stop)

		mux := http.NewServeMux()
		api.NewServer(svc, svc, svc, svc).Register(mux)
		srv := httptest.NewServer(mux)
		convey.Reset(srv.Close)

		out := filepath.Join(t.TempDir(), "runs", "shots.json")
		cfg := &Config{
			BaseURL:     srv.URL,
			NumShots:    200,
			FirstShot:   1,
			Resend:      0.1,
			TopN:        20,
			Workers:     4,
			Timeout:     5 * time.Second,
			WaitTimeout: 10 * time.Second,
			Seed:        3,
			OutputFile:  out,
		}

		convey.Convey("When a load run completes", func() {
			stats, err := Run(context.Background(), cfg)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then every first delivery was accepted and every resend deduplicated", func() {
				convey.So(stats.ShotsGenerated, convey.ShouldEqual, 200)
				convey.So(stats.ShotsSubmitted, convey.ShouldEqual, 220)
				convey.So(stats.ShotsAccepted, convey.ShouldEqual, 200)
				convey.So(stats.ShotsDuplicate, convey.ShouldEqual, 20)
				convey.So(stats.ShotsFailed, convey.ShouldEqual, 0)
			})

			convey.Convey("And the history caught up", func() {
				convey.So(stats.HistoryCount, convey.ShouldEqual, 200)
				convey.So(stats.TopEntries, convey.ShouldEqual, 20)
			})

			convey.Convey("And the generated shots were written out", func() {
				data, err := os.ReadFile(out)
				convey.So(err, convey.ShouldBeNil)
				var saved []map[string]any
				convey.So(json.Unmarshal(data, &saved), convey.ShouldBeNil)
				convey.So(saved, convey.ShouldHaveLength, 200)
				convey.So(saved[0]["shot_number"], convey.ShouldEqual, 1.0)
			})
		})
	})

	convey.Convey("Given an unhealthy service", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		convey.Reset(srv.Close)

		convey.Convey("Then the run stops before submitting anything", func() {
			stats, err := Run(context.Background(), &Config{BaseURL: srv.URL, NumShots: 10, Workers: 1, Timeout: time.Second})
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(stats.ShotsSubmitted, convey.ShouldEqual, 0)
		})
	})
}
