package scheduler

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Registry supervises fire-and-forget enrichment tasks. A task outlives
// the request that spawned it; its result goes to the cache under the
// task's id, never back through the request's (possibly closed) stream.
type Registry struct {
	mu      sync.Mutex
	wg      sync.WaitGroup
	logger  *DebugLogger
	running map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *DebugLogger) *Registry {
	return &Registry{
		logger:  logger,
		running: make(map[string]struct{}),
	}
}

// Start launches fn under a fresh id and returns that id immediately.
// Panics and errors are logged under the id and never reach the caller.
func (r *Registry) Start(fn func(ctx context.Context, id string) error) string {
	id := uuid.New().String()

	r.mu.Lock()
	r.running[id] = struct{}{}
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Log("background task %s panicked: %v", id, rec)
			}
			r.mu.Lock()
			delete(r.running, id)
			r.mu.Unlock()
		}()

		// Detached from the request context: the task keeps running
		// after the request's stream has closed.
		if err := fn(context.Background(), id); err != nil {
			r.logger.Log("background task %s failed: %v", id, err)
		}
	}()

	return id
}

// Active returns the number of tasks still running.
func (r *Registry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.running)
}

// Wait blocks until every started task has finished. Intended for
// shutdown and tests.
func (r *Registry) Wait() {
	r.wg.Wait()
}
