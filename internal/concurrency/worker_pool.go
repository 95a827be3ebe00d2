package concurrency

import (
	"context"
	"sync"
)

// Small reusable worker pool pattern used by the event consumers.

type WorkerFn func(ctx context.Context, index int)

// SimpleWorkerPool starts concurrency workers running fn and waits for all
// of them to return.
func SimpleWorkerPool(ctx context.Context, concurrency int, fn WorkerFn) {
	if concurrency <= 0 {
		concurrency = 1
	}
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			fn(ctx, idx)
		}(i)
	}
	wg.Wait()
}

// DrainByKey hands every job to one of concurrency workers until jobs is
// closed, then waits for in-flight jobs to finish. Jobs with the same key
// always go to the same worker, in the order they were received.
func DrainByKey[T any](ctx context.Context, concurrency int, jobs <-chan T, key func(T) int, handle func(ctx context.Context, job T)) {
	if concurrency <= 0 {
		concurrency = 1
	}
	lanes := make([]chan T, concurrency)
	for i := range lanes {
		lanes[i] = make(chan T, 16)
	}
	go func() {
		for job := range jobs {
			k := key(job) % concurrency
			if k < 0 {
				k = -k
			}
			lanes[k] <- job
		}
		for _, lane := range lanes {
			close(lane)
		}
	}()

	SimpleWorkerPool(ctx, concurrency, func(ctx context.Context, idx int) {
		for job := range lanes[idx] {
			handle(ctx, job)
		}
	})
}
