package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/fairway/internal/adapters/mq/queue"
	worker "github.com/okian/fairway/internal/adapters/mq/worker"
	"github.com/okian/fairway/internal/domain/analysis"
	model "github.com/okian/fairway/internal/domain/model"
	logging "github.com/okian/fairway/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	shots chan queue.Shot
	once  sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{shots: make(chan queue.Shot, 128)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan queue.Shot {
	return mq.shots
}

func (mq *mockQueue) Close() error {
	mq.once.Do(func() { close(mq.shots) })
	return nil
}

func (mq *mockQueue) add(id string, speed float64) {
	mq.shots <- queue.Shot{ID: id, Shot: model.ShotMessage{BallSpeed: model.Float(speed), Handedness: "LH"}}
}

// echoEngine reports the ball speed back as the measured value and remembers
// the handedness it was given.
type echoEngine struct{}

func (echoEngine) Analyze(_ context.Context, in analysis.Input) analysis.Result {
	return analysis.Result{
		Measured: analysis.Measured{BallSpeed: in.Measurement.BallSpeed},
		Inferred: analysis.Inferred{Handedness: in.Handedness},
	}
}

type mockStore struct {
	mu     sync.Mutex
	stored map[string]analysis.Result
	fail   map[string]error
}

func newMockStore() *mockStore {
	return &mockStore{stored: map[string]analysis.Result{}, fail: map[string]error{}}
}

func (ms *mockStore) Add(_ context.Context, id string, res analysis.Result) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if err, ok := ms.fail[id]; ok {
		return err
	}
	ms.stored[id] = res
	return nil
}

func (ms *mockStore) setError(id string, err error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.fail[id] = err
}

func (ms *mockStore) get(id string) (analysis.Result, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	r, ok := ms.stored[id]
	return r, ok
}

func (ms *mockStore) count() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.stored)
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a running InMemoryWorker", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		store := newMockStore()
		w := worker.NewInMemoryWorker(q, echoEngine{}, store, worker.WithName("test-worker"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a shot is queued", func() {
			q.add("shot-1", 61.5)

			convey.Convey("Then its analysis is stored under the shot id", func() {
				convey.So(eventually(func() bool { _, ok := store.get("shot-1"); return ok }), convey.ShouldBeTrue)
				res, _ := store.get("shot-1")
				convey.So(*res.Measured.BallSpeed, convey.ShouldEqual, 61.5)
				convey.So(res.Inferred.Handedness, convey.ShouldEqual, "LH")
			})
		})

		convey.Convey("When storing fails", func() {
			store.setError("shot-2", errors.New("store error"))
			q.add("shot-2", 50)
			q.add("shot-3", 52)

			convey.Convey("Then the worker moves on to the next shot", func() {
				convey.So(eventually(func() bool { _, ok := store.get("shot-3"); return ok }), convey.ShouldBeTrue)
				_, ok := store.get("shot-2")
				convey.So(ok, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()

			convey.Convey("Then it stops gracefully", func() {
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a worker whose queue closes", t, func() {
		q := newMockQueue()
		w := worker.NewInMemoryWorker(q, echoEngine{}, newMockStore())
		stopped := make(chan struct{})
		go func() {
			w.Run(context.Background())
			close(stopped)
		}()
		_ = q.Close()

		convey.Convey("Then Run returns", func() {
			select {
			case <-stopped:
				convey.So(true, convey.ShouldBeTrue)
			case <-time.After(time.Second):
				convey.So("worker still running", convey.ShouldBeEmpty)
			}
		})
	})

	convey.Convey("Given a worker whose context is cancelled", t, func() {
		w := worker.NewInMemoryWorker(newMockQueue(), echoEngine{}, newMockStore())
		ctx, cancel := context.WithCancel(context.Background())
		stopped := make(chan struct{})
		go func() {
			w.Run(ctx)
			close(stopped)
		}()
		cancel()

		convey.Convey("Then Run returns", func() {
			select {
			case <-stopped:
				convey.So(true, convey.ShouldBeTrue)
			case <-time.After(time.Second):
				convey.So("worker still running", convey.ShouldBeEmpty)
			}
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a worker pool", t, func() {
		_ = logging.Init()

		convey.Convey("When created with a non-positive count", func() {
			p := worker.NewPool(0, newMockQueue(), echoEngine{}, newMockStore())

			convey.Convey("Then it has at least one worker", func() {
				convey.So(p.Size(), convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When many shots are queued concurrently", func() {
			q := newMockQueue()
			store := newMockStore()
			p := worker.NewPool(4, q, echoEngine{}, store)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			p.Start(ctx)

			const producers = 5
			const perProducer = 20
			var wg sync.WaitGroup
			for i := 0; i < producers; i++ {
				wg.Add(1)
				go func(g int) {
					defer wg.Done()
					for j := 0; j < perProducer; j++ {
						q.add(fmt.Sprintf("shot-%d-%d", g, j), float64(40+j))
					}
				}(i)
			}
			wg.Wait()

			convey.Convey("Then every shot is stored exactly once", func() {
				convey.So(eventually(func() bool { return store.count() == producers*perProducer }), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When shut down with shots still queued", func() {
			q := newMockQueue()
			store := newMockStore()
			p := worker.NewPool(2, q, echoEngine{}, store)
			for i := 0; i < 10; i++ {
				q.add(fmt.Sprintf("shot-%d", i), 50)
			}
			p.Start(context.Background())

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer shutdownCancel()
			err := p.Shutdown(shutdownCtx)

			convey.Convey("Then the queue is drained before the workers stop", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(store.count(), convey.ShouldEqual, 10)
			})
		})
	})
}
