// Package loader builds chunks on a fixed pool of background workers.
//
// Admission is non-blocking: when every load slot is busy a request is
// refused immediately instead of queued, and the caller retries on a later
// tick. A slot stays taken until its build returns, even after the handle
// has resolved with ErrLoadTimeout. Requests for a key that is already in flight share one Handle.
// Results reach the foreground through Drain, never through callbacks.
package loader

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/VoidMesh/worldstream/internal/chunk"
	"github.com/VoidMesh/worldstream/internal/coords"
	"github.com/VoidMesh/worldstream/internal/logging"
)

// Config holds the loader's process-wide knobs.
type Config struct {
	MaxConcurrentLoads int
	PoolSize           int
	MaxLoadingTime     time.Duration
	ShutdownGrace      time.Duration
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentLoads: 2,
		PoolSize:           2,
		MaxLoadingTime:     2000 * time.Millisecond,
		ShutdownGrace:      5 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxConcurrentLoads <= 0 {
		c.MaxConcurrentLoads = d.MaxConcurrentLoads
	}
	if c.PoolSize <= 0 {
		c.PoolSize = d.PoolSize
	}
	if c.MaxLoadingTime <= 0 {
		c.MaxLoadingTime = d.MaxLoadingTime
	}
	if c.ShutdownGrace <= 0 {
		c.ShutdownGrace = d.ShutdownGrace
	}
	return c
}

// BuildFunc constructs a chunk. It runs on a worker goroutine and should
// honour ctx, although the loader enforces the deadline either way.
type BuildFunc func(ctx context.Context, key chunk.Key, worldName string) (*chunk.Chunk, error)

// ChunkBuilder builds chunks from a template source.
func ChunkBuilder(source chunk.TemplateSource, sys *coords.System) BuildFunc {
	return func(ctx context.Context, key chunk.Key, worldName string) (*chunk.Chunk, error) {
		return chunk.New(ctx, key, worldName, source, sys)
	}
}

// Completion is a terminal load outcome waiting for the foreground.
// Cancelled loads produce none.
type Completion struct {
	Handle    *Handle
	Key       chunk.Key
	WorldName string
	Chunk     *chunk.Chunk
	Err       error
}

// Stats is a snapshot of loader counters.
type Stats struct {
	Admitted  int64 `json:"admitted"`
	Loaded    int64 `json:"loaded"`
	Failed    int64 `json:"failed"`
	TimedOut  int64 `json:"timed_out"`
	Cancelled int64 `json:"cancelled"`
	Rejected  int64 `json:"rejected"`
	Running   int64 `json:"running"`
	Peak      int64 `json:"peak_running"`
	InFlight  int   `json:"in_flight"`
	Queued    int   `json:"queued_completions"`
}

// Loader is safe for concurrent use.
type Loader struct {
	cfg    Config
	build  BuildFunc
	states *chunk.StateManager
	logger logging.LoggerInterface

	sem     *semaphore.Weighted
	running atomic.Int64
	peak    atomic.Int64

	// mu guards inFlight and closed. Every settle happens under it so the
	// in-flight removal and the state transition are atomic with respect to
	// a new LoadAsync for the same key.
	mu       sync.Mutex
	inFlight map[chunk.Key]*Handle
	closed   bool

	jobs       chan *Handle
	wg         sync.WaitGroup
	builds     sync.WaitGroup
	baseCtx    context.Context
	baseCancel context.CancelFunc

	queueMu     sync.Mutex
	completions []Completion

	admitted  atomic.Int64
	loaded    atomic.Int64
	failed    atomic.Int64
	timedOut  atomic.Int64
	cancelled atomic.Int64
	rejected  atomic.Int64
}

// New starts the worker pool.
func New(cfg Config, build BuildFunc, states *chunk.StateManager, logger logging.LoggerInterface) *Loader {
	cfg = cfg.withDefaults()
	baseCtx, baseCancel := context.WithCancel(context.Background())

	l := &Loader{
		cfg:        cfg,
		build:      build,
		states:     states,
		logger:     logger.With("component", "chunk-loader"),
		sem:        semaphore.NewWeighted(int64(cfg.MaxConcurrentLoads)),
		inFlight:   make(map[chunk.Key]*Handle),
		jobs:       make(chan *Handle, cfg.MaxConcurrentLoads),
		baseCtx:    baseCtx,
		baseCancel: baseCancel,
	}

	for i := 0; i < cfg.PoolSize; i++ {
		l.wg.Add(1)
		go l.worker()
	}

	l.logger.Info("Chunk loader started",
		"pool_size", cfg.PoolSize,
		"max_concurrent_loads", cfg.MaxConcurrentLoads,
		"max_loading_time", cfg.MaxLoadingTime,
	)
	return l
}

// Config returns the effective configuration.
func (l *Loader) Config() Config {
	return l.cfg
}

// LoadAsync requests a chunk build and never blocks. A key already in flight
// returns its existing handle. When no slot is free the returned handle is
// already resolved with ErrAdmissionRejected and nothing else changes.
func (l *Loader) LoadAsync(chunkX, chunkY int, worldName string) *Handle {
	key := chunk.Key{X: chunkX, Y: chunkY}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return resolvedHandle(key, worldName, ErrLoaderClosed)
	}
	if h, ok := l.inFlight[key]; ok {
		if h.WorldName != worldName {
			l.logger.Debug("Joined in-flight load with a different world name",
				"chunk_x", chunkX, "chunk_y", chunkY,
				"world", worldName, "in_flight_world", h.WorldName)
		}
		return h
	}
	if !l.sem.TryAcquire(1) {
		l.rejected.Add(1)
		return resolvedHandle(key, worldName, ErrAdmissionRejected)
	}

	h := newHandle(key, worldName, time.Now(), l.cfg.MaxLoadingTime)
	l.inFlight[key] = h
	l.admitted.Add(1)
	running := l.running.Add(1)
	for {
		peak := l.peak.Load()
		if running <= peak || l.peak.CompareAndSwap(peak, running) {
			break
		}
	}

	if prev := l.states.Transition(key, chunk.Loading); !chunk.IsExpectedTransition(prev, chunk.Loading) {
		l.logger.Debug("Unexpected state transition", "chunk_x", chunkX, "chunk_y", chunkY, "from", prev, "to", chunk.Loading)
	}

	// Admitted jobs never exceed the buffer, so this send does not block.
	l.jobs <- h

	l.logger.Debug("Chunk load admitted", "chunk_x", chunkX, "chunk_y", chunkY, "world", worldName, "handle_id", h.ID, "running", running)
	return h
}

// Cancel aborts the in-flight load for key and rolls it back to UNLOADED.
// The build itself stops cooperatively.
func (l *Loader) Cancel(key chunk.Key) bool {
	l.mu.Lock()
	h, ok := l.inFlight[key]
	if ok {
		l.settleLocked(h, nil, ErrLoadCancelled, chunk.Unloaded)
	}
	l.mu.Unlock()

	if !ok {
		return false
	}
	h.abortBuild()
	l.cancelled.Add(1)
	l.logger.Debug("Chunk load cancelled", "chunk_x", key.X, "chunk_y", key.Y, "handle_id", h.ID)
	return true
}

// CancelAll cancels every in-flight load and returns how many there were.
func (l *Loader) CancelAll() int {
	l.mu.Lock()
	handles := make([]*Handle, 0, len(l.inFlight))
	for _, h := range l.inFlight {
		handles = append(handles, h)
	}
	for _, h := range handles {
		l.settleLocked(h, nil, ErrLoadCancelled, chunk.Unloaded)
	}
	l.mu.Unlock()

	for _, h := range handles {
		h.abortBuild()
	}
	l.cancelled.Add(int64(len(handles)))
	if len(handles) > 0 {
		l.logger.Debug("Cancelled all in-flight loads", "count", len(handles))
	}
	return len(handles)
}

// IsInFlight reports whether a load for key is pending.
func (l *Loader) IsInFlight(key chunk.Key) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.inFlight[key]
	return ok
}

// InFlightKeys returns the pending keys, ordered by chunk.Key.Less.
func (l *Loader) InFlightKeys() []chunk.Key {
	l.mu.Lock()
	keys := make([]chunk.Key, 0, len(l.inFlight))
	for k := range l.inFlight {
		keys = append(keys, k)
	}
	l.mu.Unlock()
	sortKeys(keys)
	return keys
}

// Running returns the number of admitted loads whose build has not returned.
func (l *Loader) Running() int {
	return int(l.running.Load())
}

// Drain hands every queued completion to the caller. The foreground calls it
// once per tick.
func (l *Loader) Drain() []Completion {
	l.queueMu.Lock()
	defer l.queueMu.Unlock()
	if len(l.completions) == 0 {
		return nil
	}
	out := l.completions
	l.completions = nil
	return out
}

func (l *Loader) Stats() Stats {
	l.mu.Lock()
	inFlight := len(l.inFlight)
	l.mu.Unlock()
	l.queueMu.Lock()
	queued := len(l.completions)
	l.queueMu.Unlock()

	return Stats{
		Admitted:  l.admitted.Load(),
		Loaded:    l.loaded.Load(),
		Failed:    l.failed.Load(),
		TimedOut:  l.timedOut.Load(),
		Cancelled: l.cancelled.Load(),
		Rejected:  l.rejected.Load(),
		Running:   l.running.Load(),
		Peak:      l.peak.Load(),
		InFlight:  inFlight,
		Queued:    queued,
	}
}

// Shutdown stops admissions and lets queued and running loads finish within
// the grace period. After that running builds are cancelled and
// ErrShutdownForced is returned. Calling it twice is a no-op.
func (l *Loader) Shutdown() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.jobs)
	l.mu.Unlock()

	l.logger.Info("Shutting down chunk loader", "grace", l.cfg.ShutdownGrace)

	workersDone := make(chan struct{})
	drained := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(workersDone)
		l.builds.Wait()
		close(drained)
	}()

	timer := time.NewTimer(l.cfg.ShutdownGrace)
	defer timer.Stop()

	select {
	case <-drained:
		l.baseCancel()
		l.logger.Info("Chunk loader drained")
		return nil
	case <-timer.C:
	}

	l.logger.Warn("Chunk loader grace period expired, cancelling running loads", "running", l.running.Load())
	l.baseCancel()
	<-workersDone
	return ErrShutdownForced
}

func (l *Loader) worker() {
	defer l.wg.Done()
	for h := range l.jobs {
		l.process(h)
	}
}

type buildResult struct {
	chunk *chunk.Chunk
	err   error
}

func (l *Loader) process(h *Handle) {
	// Cancelled while queued.
	if h.Resolved() {
		l.release()
		return
	}
	if l.baseCtx.Err() != nil {
		l.fail(h, ErrLoaderClosed)
		l.release()
		return
	}

	ctx, cancel := context.WithDeadline(l.baseCtx, h.Deadline)
	defer cancel()
	h.bindCancel(cancel)

	start := time.Now()
	results := make(chan buildResult, 1)
	l.builds.Add(1)
	go func() {
		defer l.builds.Done()
		defer l.release()
		defer func() {
			if r := recover(); r != nil {
				results <- buildResult{err: fmt.Errorf("%w: %v", ErrBuildPanicked, r)}
			}
		}()
		c, err := l.build(ctx, h.Key, h.WorldName)
		results <- buildResult{chunk: c, err: err}
	}()

	select {
	case res := <-results:
		l.complete(h, res, time.Since(start))
	case <-ctx.Done():
		l.fail(h, l.contextError(ctx))
		// The build keeps its slot until it returns; its chunk is never
		// published.
		go func() {
			if res := <-results; res.chunk != nil {
				res.chunk.Unload()
			}
		}()
	}
}

// release gives back the load slot taken at admission.
func (l *Loader) release() {
	l.running.Add(-1)
	l.sem.Release(1)
}

func (l *Loader) contextError(ctx context.Context) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return ErrLoadTimeout
	case l.baseCtx.Err() != nil:
		return ErrLoaderClosed
	default:
		return ErrLoadCancelled
	}
}

func (l *Loader) complete(h *Handle, res buildResult, elapsed time.Duration) {
	err := res.err
	switch {
	case err == nil && res.chunk == nil:
		err = fmt.Errorf("failed to load chunk %s: builder returned no chunk", h.Key)
	case errors.Is(err, context.DeadlineExceeded):
		err = ErrLoadTimeout
	case errors.Is(err, context.Canceled):
		err = l.contextError(l.baseCtx)
	case err != nil:
		err = fmt.Errorf("failed to load chunk %s: %w", h.Key, err)
	}

	if err != nil {
		if res.chunk != nil {
			res.chunk.Unload()
		}
		l.fail(h, err)
		return
	}

	l.mu.Lock()
	won := l.settleLocked(h, res.chunk, nil, chunk.Loaded)
	l.mu.Unlock()

	if !won {
		res.chunk.Unload()
		return
	}
	l.loaded.Add(1)
	l.enqueue(Completion{Handle: h, Key: h.Key, WorldName: h.WorldName, Chunk: res.chunk})
	l.logger.Info("Chunk loaded",
		"chunk_x", h.Key.X,
		"chunk_y", h.Key.Y,
		"world", h.WorldName,
		"duration", elapsed,
	)
}

func (l *Loader) fail(h *Handle, err error) {
	l.mu.Lock()
	won := l.settleLocked(h, nil, err, chunk.Unloaded)
	l.mu.Unlock()
	if !won {
		return
	}

	switch {
	case errors.Is(err, ErrLoadCancelled):
		l.cancelled.Add(1)
		return
	case errors.Is(err, ErrLoadTimeout):
		l.timedOut.Add(1)
		l.logger.Warn("Chunk load timed out",
			"chunk_x", h.Key.X, "chunk_y", h.Key.Y, "world", h.WorldName,
			"budget", l.cfg.MaxLoadingTime)
	default:
		l.failed.Add(1)
		l.logger.Error("Chunk load failed",
			"chunk_x", h.Key.X, "chunk_y", h.Key.Y, "world", h.WorldName, "error", err)
	}
	l.enqueue(Completion{Handle: h, Key: h.Key, WorldName: h.WorldName, Err: err})
}

// settleLocked resolves h and, if this call won, removes it from the
// in-flight table and records the terminal state. Caller holds l.mu.
func (l *Loader) settleLocked(h *Handle, c *chunk.Chunk, err error, state chunk.State) bool {
	if !h.settle(c, err) {
		return false
	}
	if l.inFlight[h.Key] == h {
		delete(l.inFlight, h.Key)
		l.states.Transition(h.Key, state)
	}
	return true
}

func (l *Loader) enqueue(c Completion) {
	l.queueMu.Lock()
	l.completions = append(l.completions, c)
	l.queueMu.Unlock()
}

func sortKeys(keys []chunk.Key) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
}
