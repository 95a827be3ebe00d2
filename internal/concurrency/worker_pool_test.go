package concurrency

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleWorkerPool_RunsEveryWorker(t *testing.T) {
	var mu sync.Mutex
	seen := map[int]bool{}

	SimpleWorkerPool(context.Background(), 4, func(_ context.Context, idx int) {
		mu.Lock()
		defer mu.Unlock()
		seen[idx] = true
	})

	assert.Equal(t, map[int]bool{0: true, 1: true, 2: true, 3: true}, seen)
}

func TestSimpleWorkerPool_AtLeastOneWorker(t *testing.T) {
	var calls int32
	SimpleWorkerPool(context.Background(), 0, func(context.Context, int) {
		atomic.AddInt32(&calls, 1)
	})
	assert.Equal(t, int32(1), calls)
}

func TestDrainByKey_HandlesEveryJob(t *testing.T) {
	jobs := make(chan int, 100)
	for i := 1; i <= 100; i++ {
		jobs <- i
	}
	close(jobs)

	var sum int64
	DrainByKey(context.Background(), 8, jobs, func(n int) int { return n }, func(_ context.Context, n int) {
		atomic.AddInt64(&sum, int64(n))
	})

	assert.Equal(t, int64(5050), sum)
}

func TestDrainByKey_KeepsOrderWithinKey(t *testing.T) {
	type job struct{ key, seq int }
	jobs := make(chan job, 60)
	for seq := 0; seq < 20; seq++ {
		for key := 0; key < 3; key++ {
			jobs <- job{key: key, seq: seq}
		}
	}
	close(jobs)

	var mu sync.Mutex
	seen := map[int][]int{}
	DrainByKey(context.Background(), 4, jobs, func(j job) int { return j.key }, func(_ context.Context, j job) {
		mu.Lock()
		defer mu.Unlock()
		seen[j.key] = append(seen[j.key], j.seq)
	})

	for key := 0; key < 3; key++ {
		require.Len(t, seen[key], 20)
		for i, seq := range seen[key] {
			assert.Equal(t, i, seq, "key %d out of order", key)
		}
	}
}
