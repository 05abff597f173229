package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/fairway/internal/adapters/http/api"
	"github.com/okian/fairway/internal/adapters/repository"
	service "github.com/okian/fairway/internal/app"
	"github.com/okian/fairway/internal/domain/analysis"
	. "github.com/smartystreets/goconvey/convey"
)

const sampleShot = `{
	"shot_number": 1,
	"timestamp_ns": 1764477382748215552,
	"ball_speed_meters_per_second": 60.5,
	"vertical_launch_angle_degrees": 12.3,
	"horizontal_launch_angle_degrees": 1.2,
	"total_spin_rpm": 2600,
	"spin_axis_degrees": 3.5,
	"handedness": "RH"
}`

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a running service behind the HTTP API", t, func() {
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(1000),
			service.WithDedupeSize(500),
			service.WithHistorySize(100),
		)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		Reset(svc.Stop)

		mux := http.NewServeMux()
		api.NewServer(svc, svc, svc, svc, api.WithMaxTopLimit(50)).Register(mux)
		srv := httptest.NewServer(mux)
		Reset(srv.Close)

		post := func(path, body string) *http.Response {
			resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
			So(err, ShouldBeNil)
			return resp
		}

		Convey("When the sample shot is analysed synchronously", func() {
			resp := post("/analyze", sampleShot)
			defer resp.Body.Close()

			Convey("Then the full analysis comes back", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var res analysis.Result
				So(json.NewDecoder(resp.Body).Decode(&res), ShouldBeNil)
				So(*res.Inferred.ShotShape, ShouldEqual, "PushFade")
				So(*res.Inferred.ClubCategory, ShouldEqual, "woods")
				So(res.Derived.Trajectory, ShouldNotBeNil)
				So(res.Metadata.TimestampUTC, ShouldEqual, "2025-11-30T04:36:22.748215+00:00")
				So(res.Benchmarks, ShouldContainKey, "pga_tour")
			})
		})

		Convey("When the sample shot is posted for async analysis", func() {
			resp := post("/shots", sampleShot)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusAccepted)

			So(waitFor(func() bool {
				_, err := svc.Get(ctx, "shot-1")
				return err == nil
			}), ShouldBeTrue)

			Convey("Then it can be read back by id and as latest", func() {
				r, err := http.Get(srv.URL + "/shots/shot-1")
				So(err, ShouldBeNil)
				defer r.Body.Close()
				So(r.StatusCode, ShouldEqual, http.StatusOK)
				var rec repository.Record
				So(json.NewDecoder(r.Body).Decode(&rec), ShouldBeNil)
				So(*rec.Result.Inferred.ShotShape, ShouldEqual, "PushFade")

				latest, err := svc.Latest(ctx)
				So(err, ShouldBeNil)
				So(latest.ID, ShouldEqual, "shot-1")
			})

			Convey("And a resend is reported as a duplicate", func() {
				again := post("/shots", sampleShot)
				again.Body.Close()
				So(again.StatusCode, ShouldEqual, http.StatusOK)
				So(svc.Size(), ShouldEqual, 1)
			})
		})

		Convey("When many shots of different speeds are posted", func() {
			for i := 0; i < 30; i++ {
				body := fmt.Sprintf(`{"shot_number": %d, "ball_speed_meters_per_second": %d, "vertical_launch_angle_degrees": 14,
					"horizontal_launch_angle_degrees": 0, "total_spin_rpm": 3000, "spin_axis_degrees": 0}`, 100+i, 35+i)
				resp := post("/shots", body)
				resp.Body.Close()
				So(resp.StatusCode, ShouldEqual, http.StatusAccepted)
			}
			So(waitFor(func() bool {
				top, _ := svc.TopN(ctx, 50)
				return len(top) == 30
			}), ShouldBeTrue)

			Convey("Then the fastest shot carries furthest", func() {
				r, err := http.Get(srv.URL + "/shots/top?limit=3")
				So(err, ShouldBeNil)
				defer r.Body.Close()
				var entries []repository.Entry
				So(json.NewDecoder(r.Body).Decode(&entries), ShouldBeNil)
				So(entries, ShouldHaveLength, 3)
				So(entries[0].ID, ShouldEqual, "shot-129")
				So(entries[0].Carry, ShouldBeGreaterThan, entries[2].Carry)
			})

			Convey("And /stats summarises the history", func() {
				r, err := http.Get(srv.URL + "/stats")
				So(err, ShouldBeNil)
				defer r.Body.Close()
				var stats struct {
					Started bool             `json:"started"`
					History repository.Stats `json:"history"`
				}
				So(json.NewDecoder(r.Body).Decode(&stats), ShouldBeNil)
				So(stats.Started, ShouldBeTrue)
				So(stats.History.Count, ShouldEqual, 30)
				So(stats.History.WithCarry, ShouldEqual, 30)
				So(stats.History.Shapes["Straight"], ShouldEqual, 30)
			})
		})

		Convey("When the service stops with shots queued", func() {
			for i := 0; i < 20; i++ {
				resp := post("/shots", fmt.Sprintf(`{"shot_number": %d, "ball_speed_meters_per_second": 50}`, 500+i))
				resp.Body.Close()
			}
			svc.Stop()

			Convey("Then every accepted shot was analysed", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
				for i := 0; i < 20; i++ {
					_, err := svc.Get(ctx, fmt.Sprintf("shot-%d", 500+i))
					So(err, ShouldBeNil)
				}
			})

			Convey("And new shots are refused", func() {
				resp := post("/shots", `{"shot_number": 999}`)
				resp.Body.Close()
				So(resp.StatusCode, ShouldEqual, http.StatusServiceUnavailable)
			})
		})
	})
}
