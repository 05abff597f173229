package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/fairway/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it starts empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording shots", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the shot is new", func() {
				seen := d.SeenAndRecord(ctx, "shot-1")

				Convey("Then it should return false and record the key", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the shot was already seen", func() {
				d.SeenAndRecord(ctx, "shot-1")
				seen := d.SeenAndRecord(ctx, "shot-1")

				Convey("Then it should return true", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And several shots are recorded", func() {
				keys := []string{"shot-1", "shot-2", "ts-1764477382748215552", "shot-4"}
				for _, k := range keys {
					So(d.SeenAndRecord(ctx, k), ShouldBeFalse)
				}

				Convey("Then every key is seen", func() {
					So(d.Size(), ShouldEqual, int64(len(keys)))
					for _, k := range keys {
						So(d.SeenAndRecord(ctx, k), ShouldBeTrue)
					}
				})
			})
		})

		Convey("When unrecording shots", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the shot exists", func() {
				d.SeenAndRecord(ctx, "shot-1")
				d.Unrecord(ctx, "shot-1")

				Convey("Then it can be recorded again", func() {
					So(d.Size(), ShouldEqual, 0)
					So(d.SeenAndRecord(ctx, "shot-1"), ShouldBeFalse)
				})
			})

			Convey("And the shot doesn't exist", func() {
				d.Unrecord(ctx, "nonexistent")

				Convey("Then the size is unchanged", func() {
					So(d.Size(), ShouldEqual, 0)
				})
			})
		})

		Convey("When the ring is full", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
			for _, k := range []string{"shot-1", "shot-2", "shot-3"} {
				So(d.SeenAndRecord(ctx, k), ShouldBeFalse)
			}
			So(d.SeenAndRecord(ctx, "shot-4"), ShouldBeFalse)

			Convey("Then the oldest key is forgotten", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "shot-4"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "shot-3"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "shot-2"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "shot-1"), ShouldBeFalse)
				So(d.Size(), ShouldEqual, 3)
			})

			Convey("Then re-recording the oldest evicts the next oldest", func() {
				So(d.SeenAndRecord(ctx, "shot-1"), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, "shot-2"), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, "shot-1"), ShouldBeTrue)
			})
		})

		Convey("When an unrecorded key leaves a hole", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
			d.SeenAndRecord(ctx, "shot-1")
			d.SeenAndRecord(ctx, "shot-2")
			d.SeenAndRecord(ctx, "shot-3")
			d.Unrecord(ctx, "shot-1")
			So(d.Size(), ShouldEqual, 2)

			d.SeenAndRecord(ctx, "shot-4")

			Convey("Then the hole is reused without evicting a live key", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "shot-2"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "shot-3"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "shot-4"), ShouldBeTrue)
			})
		})

		Convey("When using unbounded mode", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
			const n = 1000
			for i := 0; i < n; i++ {
				So(d.SeenAndRecord(ctx, fmt.Sprintf("shot-%d", i)), ShouldBeFalse)
			}

			Convey("Then nothing is forgotten", func() {
				So(d.Size(), ShouldEqual, int64(n))
				So(d.SeenAndRecord(ctx, "shot-0"), ShouldBeTrue)
				d.Unrecord(ctx, "shot-0")
				So(d.Size(), ShouldEqual, int64(n-1))
			})
		})
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given a deduper with concurrent access", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(1000))
		const goroutines = 10
		const perGoroutine = 100

		Convey("When goroutines record distinct shots", func() {
			var wg sync.WaitGroup
			for i := 0; i < goroutines; i++ {
				wg.Add(1)
				go func(g int) {
					defer wg.Done()
					for j := 0; j < perGoroutine; j++ {
						d.SeenAndRecord(context.Background(), fmt.Sprintf("shot-%d-%d", g, j))
					}
				}(i)
			}
			wg.Wait()

			Convey("Then every shot is recorded", func() {
				So(d.Size(), ShouldEqual, int64(goroutines*perGoroutine))
			})
		})

		Convey("When goroutines race on the same shot", func() {
			var wg sync.WaitGroup
			var mu sync.Mutex
			fresh := 0
			for i := 0; i < goroutines; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if !d.SeenAndRecord(context.Background(), "shot-42") {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			Convey("Then exactly one caller wins", func() {
				So(fresh, ShouldEqual, 1)
			})
		})
	})
}
