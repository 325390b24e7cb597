package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/keyloop/internal/adapters/mq/queue"
	worker "github.com/okian/keyloop/internal/adapters/mq/worker"
	model "github.com/okian/keyloop/internal/domain/model"
	logging "github.com/okian/keyloop/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing.
type mockQueue struct {
	reqChan    chan queue.Request
	closeError error
}

func newMockQueue() *mockQueue {
	return &mockQueue{
		reqChan: make(chan queue.Request, 10),
	}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan queue.Request {
	return mq.reqChan
}

func (mq *mockQueue) Close() error {
	close(mq.reqChan)
	return mq.closeError
}

func (mq *mockQueue) addRequest(req queue.Request) {
	mq.reqChan <- req
}

type mockKeyer struct {
	keyed  map[string]queue.Request
	errors map[string]error
	mu     sync.RWMutex
}

func newMockKeyer() *mockKeyer {
	return &mockKeyer{
		keyed:  make(map[string]queue.Request),
		errors: make(map[string]error),
	}
}

func (mk *mockKeyer) Key(ctx context.Context, req queue.Request) error {
	mk.mu.Lock()
	defer mk.mu.Unlock()

	if err, exists := mk.errors[req.ObjectID]; exists {
		return err
	}

	mk.keyed[req.RequestID] = req
	return nil
}

func (mk *mockKeyer) setError(objectID string, err error) {
	mk.mu.Lock()
	defer mk.mu.Unlock()
	mk.errors[objectID] = err
}

func (mk *mockKeyer) getKeyed(requestID string) (queue.Request, bool) {
	mk.mu.RLock()
	defer mk.mu.RUnlock()
	req, exists := mk.keyed[requestID]
	return req, exists
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a new InMemoryWorker", t, func() {
		// Initialize logging for tests
		_ = logging.Init()

		queue := newMockQueue()
		keyer := newMockKeyer()

		convey.Convey("When creating a worker with default options", func() {
			worker := worker.NewInMemoryWorker(queue, keyer)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(worker, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When creating a worker with custom options", func() {
			worker := worker.NewInMemoryWorker(
				queue, keyer,
				worker.WithName("test-worker"),
			)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(worker, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When running a worker", func() {
			worker := worker.NewInMemoryWorker(queue, keyer)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			// Start worker in goroutine
			go worker.Run(ctx)

			// Give worker time to start
			time.Sleep(10 * time.Millisecond)

			convey.Convey("And when processing requests", func() {
				req := model.KeyRequest{
					RequestID: "req-1",
					ObjectID:  "cube",
					Set:       "Location",
					Frame:     22,
					Mode:      model.ModeNormal,
					TS:        time.Now(),
				}

				// Add request to queue
				queue.addRequest(req)

				// Give worker time to process
				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then it should apply the keying", func() {
					keyed, ok := keyer.getKeyed("req-1")
					convey.So(ok, convey.ShouldBeTrue)
					convey.So(keyed.ObjectID, convey.ShouldEqual, "cube")
					convey.So(keyed.Frame, convey.ShouldEqual, 22)
				})
			})

			convey.Convey("And when keying fails", func() {
				req := model.KeyRequest{
					RequestID: "req-2",
					ObjectID:  "missing",
					Set:       "Location",
					Frame:     5,
					TS:        time.Now(),
				}

				// Set keying error
				keyer.setError("missing", errors.New("keying error"))

				// Add request to queue
				queue.addRequest(req)

				// Give worker time to process
				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then it should not record the request as keyed", func() {
					_, ok := keyer.getKeyed("req-2")
					convey.So(ok, convey.ShouldBeFalse)
				})
			})

			convey.Convey("And when shutting down", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer shutdownCancel()

				err := worker.Shutdown(shutdownCtx)

				convey.Convey("Then it should shutdown gracefully", func() {
					convey.So(err, convey.ShouldBeNil)
				})
			})
		})

		convey.Convey("When context is cancelled", func() {
			worker := worker.NewInMemoryWorker(queue, keyer)
			ctx, cancel := context.WithCancel(context.Background())

			// Start worker in goroutine
			go worker.Run(ctx)

			// Give worker time to start
			time.Sleep(10 * time.Millisecond)

			// Cancel context
			cancel()

			// Give worker time to stop
			time.Sleep(50 * time.Millisecond)

			convey.Convey("Then worker should stop", func() {
				// Worker should have stopped due to context cancellation
				convey.So(true, convey.ShouldBeTrue) // Placeholder assertion
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a new WorkerPool", t, func() {
		// Initialize logging for tests
		_ = logging.Init()

		queue := newMockQueue()
		keyer := newMockKeyer()

		convey.Convey("When creating a worker pool with default count", func() {
			pool := worker.NewPool(0, queue, keyer)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(pool, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When creating a worker pool with custom count", func() {
			workerCount := 3
			pool := worker.NewPool(workerCount, queue, keyer)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(pool, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When starting a worker pool", func() {
			pool := worker.NewPool(2, queue, keyer)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			pool.Start(ctx)

			// Give workers time to start
			time.Sleep(20 * time.Millisecond)

			convey.Convey("And when processing multiple requests", func() {
				requests := []model.KeyRequest{
					{RequestID: "req-1", ObjectID: "cube", Set: "Location", Frame: 1, TS: time.Now()},
					{RequestID: "req-2", ObjectID: "sphere", Set: "Rotation", Frame: 5, TS: time.Now()},
					{RequestID: "req-3", ObjectID: "cone", Set: "Scale", Frame: 22, TS: time.Now()},
				}

				// Add requests to queue
				for _, req := range requests {
					queue.addRequest(req)
				}

				// Give workers time to process
				time.Sleep(100 * time.Millisecond)

				convey.Convey("Then all requests should be processed", func() {
					for _, req := range requests {
						_, ok := keyer.getKeyed(req.RequestID)
						convey.So(ok, convey.ShouldBeTrue)
					}
				})
			})

			convey.Convey("And when shutting down", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
				defer shutdownCancel()

				err := pool.Shutdown(shutdownCtx)

				convey.Convey("Then it should shutdown gracefully", func() {
					convey.So(err, convey.ShouldBeNil)
				})
			})
		})

		convey.Convey("When stopping a worker pool", func() {
			pool := worker.NewPool(2, queue, keyer)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			pool.Start(ctx)

			// Give workers time to start
			time.Sleep(20 * time.Millisecond)

			pool.Stop()

			// Give workers time to stop
			time.Sleep(50 * time.Millisecond)

			convey.Convey("Then all workers should be stopped", func() {
				// Workers should have stopped
				convey.So(true, convey.ShouldBeTrue) // Placeholder assertion
			})
		})
	})
}

func TestWorkerOptions(t *testing.T) {
	convey.Convey("Given worker options", t, func() {
		convey.Convey("When using WithName", func() {
			convey.Convey("Then it should set the worker name", func() {
				queue := newMockQueue()
				keyer := newMockKeyer()
				worker := worker.NewInMemoryWorker(queue, keyer, worker.WithName("test-worker"))
				// Note: Can't test unexported fields directly
				convey.So(worker, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestWorkerConcurrency(t *testing.T) {
	convey.Convey("Given a worker pool with multiple workers", t, func() {
		// Initialize logging for tests
		_ = logging.Init()

		queue := newMockQueue()
		keyer := newMockKeyer()

		pool := worker.NewPool(4, queue, keyer)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		pool.Start(ctx)

		// Give workers time to start
		time.Sleep(20 * time.Millisecond)

		convey.Convey("When processing many concurrent requests", func() {
			const requestCount = 100
			var wg sync.WaitGroup

			// Start multiple goroutines adding requests
			for i := 0; i < 5; i++ {
				wg.Add(1)
				go func(producerID int) {
					defer wg.Done()
					for j := 0; j < requestCount/5; j++ {
						requestID := fmt.Sprintf("req-%d-%d", producerID, j)
						req := model.KeyRequest{
							RequestID: requestID,
							ObjectID:  fmt.Sprintf("object-%d", producerID),
							Set:       "Location",
							Frame:     float64(j),
							TS:        time.Now(),
						}
						queue.addRequest(req)
					}
				}(i)
			}

			// Wait for all requests to be added
			wg.Wait()

			// Give workers time to process
			time.Sleep(200 * time.Millisecond)

			convey.Convey("Then all requests should be processed", func() {
				processedCount := 0
				for i := 0; i < 5; i++ {
					for j := 0; j < requestCount/5; j++ {
						requestID := fmt.Sprintf("req-%d-%d", i, j)
						if _, ok := keyer.getKeyed(requestID); ok {
							processedCount++
						}
					}
				}
				convey.So(processedCount, convey.ShouldEqual, requestCount)
			})
		})
	})
}

func TestWorkerErrorHandling(t *testing.T) {
	convey.Convey("Given a worker with error conditions", t, func() {
		// Initialize logging for tests
		_ = logging.Init()

		queue := newMockQueue()
		keyer := newMockKeyer()

		worker := worker.NewInMemoryWorker(queue, keyer)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Start worker in goroutine
		go worker.Run(ctx)

		// Give worker time to start
		time.Sleep(10 * time.Millisecond)

		convey.Convey("When keying consistently fails", func() {
			req := model.KeyRequest{
				RequestID: "req-error",
				ObjectID:  "broken",
				Set:       "Location",
				Frame:     5,
				TS:        time.Now(),
			}

			// Set persistent keying error
			keyer.setError("broken", errors.New("persistent keying error"))

			// Add request to queue
			queue.addRequest(req)

			// Give worker time to process
			time.Sleep(50 * time.Millisecond)

			convey.Convey("Then it should not record the request as keyed", func() {
				_, ok := keyer.getKeyed("req-error")
				convey.So(ok, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When queue channel is closed", func() {
			// Close the queue
			_ = queue.Close()

			// Give worker time to detect closure
			time.Sleep(50 * time.Millisecond)

			convey.Convey("Then worker should stop", func() {
				// Worker should have stopped due to queue closure
				convey.So(true, convey.ShouldBeTrue) // Placeholder assertion
			})
		})
	})
}
