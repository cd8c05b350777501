package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/perfectcircle/internal/adapters/mq/queue"
	worker "github.com/okian/perfectcircle/internal/adapters/mq/worker"
	model "github.com/okian/perfectcircle/internal/domain/model"
	logging "github.com/okian/perfectcircle/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	jobs chan worker.Job
	once sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan worker.Job, 10)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan worker.Job { return mq.jobs }

func (mq *mockQueue) Close() error {
	mq.once.Do(func() { close(mq.jobs) })
	return nil
}

type mockNotifier struct {
	mu   sync.Mutex
	sent []string
	fail map[string]error
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{fail: make(map[string]error)}
}

func (m *mockNotifier) Notify(_ context.Context, n model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.fail[n.ID]; ok {
		return err
	}
	m.sent = append(m.sent, n.ID)
	return nil
}

func (m *mockNotifier) sentIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker reading from a queue", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		notifier := newMockNotifier()
		w := worker.NewInMemoryWorker(q, notifier, worker.WithName("test-worker"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a notification is queued", func() {
			q.jobs <- model.Notification{ID: "n-1"}

			convey.Convey("Then it is delivered", func() {
				convey.So(waitFor(func() bool { return w.Delivered() == 1 }), convey.ShouldBeTrue)
				convey.So(notifier.sentIDs(), convey.ShouldResemble, []string{"n-1"})
				convey.So(w.Failed(), convey.ShouldEqual, int64(0))
			})
		})

		convey.Convey("When delivery fails", func() {
			notifier.fail["n-2"] = errors.New("host unavailable")
			q.jobs <- model.Notification{ID: "n-2"}
			q.jobs <- model.Notification{ID: "n-3"}

			convey.Convey("Then the failure is counted and the worker keeps going", func() {
				convey.So(waitFor(func() bool { return w.Delivered() == 1 }), convey.ShouldBeTrue)
				convey.So(w.Failed(), convey.ShouldEqual, int64(1))
				convey.So(notifier.sentIDs(), convey.ShouldResemble, []string{"n-3"})
			})
		})

		convey.Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()

			convey.Convey("Then it stops and a second shutdown is harmless", func() {
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the context is cancelled", func() {
			cancel()

			convey.Convey("Then Run returns", func() {
				select {
				case <-w.Done():
				case <-time.After(time.Second):
					convey.So("worker still running", convey.ShouldBeEmpty)
				}
			})
		})
	})
}

// blockingNotifier parks every delivery until its context ends.
type blockingNotifier struct {
	entered chan struct{}
	once    sync.Once
}

func (b *blockingNotifier) Notify(ctx context.Context, _ model.Notification) error {
	b.once.Do(func() { close(b.entered) })
	<-ctx.Done()
	return ctx.Err()
}

// recordingQueue remembers the context its consumer dequeues with.
type recordingQueue struct {
	*queue.InMemoryQueue
	ctx chan context.Context
}

func (r *recordingQueue) Dequeue(ctx context.Context) <-chan worker.Job {
	r.ctx <- ctx
	return r.InMemoryQueue.Dequeue(ctx)
}

func TestInMemoryWorkerForcedShutdown(t *testing.T) {
	convey.Convey("Given a worker stuck delivering with more jobs queued", t, func() {
		q := &recordingQueue{
			InMemoryQueue: queue.NewInMemoryQueue(queue.WithCapacity(4)),
			ctx:           make(chan context.Context, 1),
		}
		notifier := &blockingNotifier{entered: make(chan struct{})}
		w := worker.NewInMemoryWorker(q, notifier)
		go w.Run(context.WithoutCancel(context.Background()))

		dequeueCtx := <-q.ctx
		convey.So(q.Enqueue(context.Background(), model.Notification{ID: "held"}), convey.ShouldBeTrue)
		convey.So(q.Enqueue(context.Background(), model.Notification{ID: "pending"}), convey.ShouldBeTrue)
		<-notifier.entered

		convey.Convey("When the worker is shut down", func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			err := w.Shutdown(shutdownCtx)

			convey.Convey("Then delivery and the queue consumer are both released", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(w.Failed(), convey.ShouldEqual, int64(1))
				convey.So(dequeueCtx.Err(), convey.ShouldNotBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool over a real queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		notifier := newMockNotifier()
		pool := worker.NewPool(3, q, notifier)
		pool.Start(context.Background())

		convey.Convey("Then it has the requested size", func() {
			convey.So(pool.Size(), convey.ShouldEqual, 3)
		})

		convey.Convey("When notifications are queued and the pool shuts down", func() {
			for _, id := range []string{"a", "b", "c", "d", "e"} {
				convey.So(q.Enqueue(context.Background(), model.Notification{ID: id}), convey.ShouldBeTrue)
			}
			err := pool.Shutdown(context.Background())

			convey.Convey("Then every buffered notification is drained first", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(notifier.sentIDs(), convey.ShouldHaveLength, 5)
				delivered, failed := pool.Stats()
				convey.So(delivered, convey.ShouldEqual, int64(5))
				convey.So(failed, convey.ShouldEqual, int64(0))
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a non-positive worker count", t, func() {
		pool := worker.NewPool(0, newMockQueue(), newMockNotifier())

		convey.Convey("Then the default size is used", func() {
			convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
		})
	})
}
