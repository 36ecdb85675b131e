package loader

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/VoidMesh/worldstream/internal/chunk"
)

// Handle tracks one load request. It resolves exactly once, either to a chunk
// or to an error. Closing the done channel publishes the result to every
// goroutine that observes it.
type Handle struct {
	ID        uuid.UUID
	Key       chunk.Key
	WorldName string
	Requested time.Time
	Deadline  time.Time

	once  sync.Once
	done  chan struct{}
	chunk *chunk.Chunk
	err   error

	cancelMu    sync.Mutex
	cancelBuild context.CancelFunc
}

func newHandle(key chunk.Key, worldName string, now time.Time, budget time.Duration) *Handle {
	return &Handle{
		ID:        uuid.New(),
		Key:       key,
		WorldName: worldName,
		Requested: now,
		Deadline:  now.Add(budget),
		done:      make(chan struct{}),
	}
}

func resolvedHandle(key chunk.Key, worldName string, err error) *Handle {
	h := newHandle(key, worldName, time.Now(), 0)
	h.settle(nil, err)
	return h
}

// Done is closed once the handle has resolved.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Resolved reports whether the handle has settled.
func (h *Handle) Resolved() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Result returns the outcome without blocking. Before resolution it returns
// ErrLoadPending.
func (h *Handle) Result() (*chunk.Chunk, error) {
	if !h.Resolved() {
		return nil, ErrLoadPending
	}
	return h.chunk, h.err
}

// Wait blocks until the handle resolves or ctx ends.
func (h *Handle) Wait(ctx context.Context) (*chunk.Chunk, error) {
	select {
	case <-h.done:
		return h.chunk, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// settle records the outcome. Only the first call wins.
func (h *Handle) settle(c *chunk.Chunk, err error) bool {
	won := false
	h.once.Do(func() {
		h.chunk = c
		h.err = err
		close(h.done)
		won = true
	})
	return won
}

// bindCancel attaches the running build's cancel func. A handle that already
// resolved cancels the build straight away.
func (h *Handle) bindCancel(cancel context.CancelFunc) {
	h.cancelMu.Lock()
	h.cancelBuild = cancel
	h.cancelMu.Unlock()
	if h.Resolved() {
		cancel()
	}
}

func (h *Handle) abortBuild() {
	h.cancelMu.Lock()
	cancel := h.cancelBuild
	h.cancelMu.Unlock()
	if cancel != nil {
		cancel()
	}
}
