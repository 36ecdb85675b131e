// Package engine runs the foreground loop that owns the streaming manager.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/VoidMesh/worldstream/internal/logging"
	"github.com/VoidMesh/worldstream/internal/streaming"
)

// ErrLoopStopped is returned by Do once Run has returned.
var ErrLoopStopped = errors.New("engine loop stopped")

const defaultTickInterval = 33 * time.Millisecond

type request struct {
	fn    func(m *streaming.Manager) error
	reply chan error
}

// Loop serialises every access to the manager onto one goroutine. Other
// goroutines reach the manager through Do.
type Loop struct {
	manager  *streaming.Manager
	interval time.Duration
	logger   logging.LoggerInterface

	requests chan request
	stopped  chan struct{}
	ticks    atomic.Int64
}

func NewLoop(manager *streaming.Manager, interval time.Duration, logger logging.LoggerInterface) *Loop {
	if interval <= 0 {
		interval = defaultTickInterval
	}
	return &Loop{
		manager:  manager,
		interval: interval,
		logger:   logger.With("component", "engine-loop"),
		requests: make(chan request),
		stopped:  make(chan struct{}),
	}
}

// Run ticks the manager until ctx is done, then closes the manager. It must be
// called once.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	defer close(l.stopped)

	l.logger.Info("Engine loop started", "interval", l.interval)
	for {
		select {
		case <-ctx.Done():
			l.manager.Close()
			l.logger.Info("Engine loop stopped", "ticks", l.ticks.Load())
			return ctx.Err()
		case req := <-l.requests:
			req.reply <- l.execute(req.fn)
		case <-ticker.C:
			l.manager.Tick()
			l.ticks.Add(1)
		}
	}
}

func (l *Loop) execute(fn func(m *streaming.Manager) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Engine command panicked", "panic", r)
			err = fmt.Errorf("engine command panicked: %v", r)
		}
	}()
	return fn(l.manager)
}

// Do runs fn on the loop goroutine between ticks and returns its error.
func (l *Loop) Do(ctx context.Context, fn func(m *streaming.Manager) error) error {
	req := request{fn: fn, reply: make(chan error, 1)}

	select {
	case l.requests <- req:
	case <-l.stopped:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ticks returns how many ticks have run.
func (l *Loop) Ticks() int64 {
	return l.ticks.Load()
}
