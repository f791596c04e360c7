package diskio

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// completionGate bounds the number of bytes posted to the async disk's
// worker pool that haven't completed yet, so a burst of writes to a slow
// consumer can't spawn unbounded goroutines. Adapted from the teacher's
// storage.limitedPool (storage/bufpool.go), which gated pooled byte
// buffers the same way; here the "buffer" being limited is in-flight
// write/read weight rather than a pooled allocation.
type completionGate struct {
	sem *semaphore.Weighted
}

func newCompletionGate(maxWeight int64) *completionGate {
	return &completionGate{sem: semaphore.NewWeighted(maxWeight)}
}

func (g *completionGate) acquire(ctx context.Context, weight int64) error {
	if weight <= 0 {
		weight = 1
	}
	return g.sem.Acquire(ctx, weight)
}

func (g *completionGate) release(weight int64) {
	if weight <= 0 {
		weight = 1
	}
	g.sem.Release(weight)
}
