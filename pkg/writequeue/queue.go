// Package writequeue serializes SQLite write operations for the workspace,
// so concurrent callers never hit "database is locked".
package writequeue

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull returned when the write queue is full.
	ErrQueueFull = errors.New("write queue is full")
	// ErrQueueClosed returned when the queue has been shut down.
	ErrQueueClosed = errors.New("write queue is closed")
	// ErrWriteTimeout returned when a write does not complete in time.
	ErrWriteTimeout = errors.New("write operation timeout")
)

type Config struct {
	// Capacity queue capacity, default 256.
	Capacity int
	// WriteTimeout per-write timeout, default 30 seconds.
	WriteTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Capacity:     256,
		WriteTimeout: 30 * time.Second,
	}
}

type writeOp struct {
	ctx    context.Context
	fn     func() error
	result chan error
}

// Queue runs submitted write functions one at a time, FIFO.
type Queue struct {
	config Config
	logger *zap.Logger

	ch chan writeOp

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool

	workerWg sync.WaitGroup
}

// New creates a write queue and starts its worker.
// cfg nil uses defaults; logger nil uses a nop logger.
func New(cfg *Config, logger *zap.Logger) *Queue {
	if cfg == nil {
		defaultCfg := DefaultConfig()
		cfg = &defaultCfg
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = 256
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())

	q := &Queue{
		config: *cfg,
		logger: logger,
		ch:     make(chan writeOp, cfg.Capacity),
		ctx:    ctx,
		cancel: cancel,
	}

	q.workerWg.Add(1)
	go q.worker()

	q.logger.Debug("write queue started",
		zap.Int("capacity", cfg.Capacity),
		zap.Duration("writeTimeout", cfg.WriteTimeout))

	return q
}

// Submit enqueues fn and waits for it to run. Operations are executed in
// submission order.
func (q *Queue) Submit(ctx context.Context, fn func() error) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	q.mu.RUnlock()

	result := make(chan error, 1)
	op := writeOp{
		ctx:    ctx,
		fn:     fn,
		result: result,
	}

	select {
	case q.ch <- op:
	default:
		return ErrQueueFull
	}

	timeout := q.config.WriteTimeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining < timeout {
			timeout = remaining
		}
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(timeout):
		return ErrWriteTimeout
	case <-q.ctx.Done():
		return ErrQueueClosed
	}
}

func (q *Queue) worker() {
	defer q.workerWg.Done()

	for {
		select {
		case <-q.ctx.Done():
			q.drain()
			return
		case op := <-q.ch:
			q.executeOp(op)
		}
	}
}

func (q *Queue) executeOp(op writeOp) {
	select {
	case <-op.ctx.Done():
		op.result <- op.ctx.Err()
		return
	default:
	}

	op.result <- op.fn()
}

// drain finishes operations already queued at shutdown.
func (q *Queue) drain() {
	for {
		select {
		case op := <-q.ch:
			q.executeOp(op)
		default:
			return
		}
	}
}

// Pending returns the number of operations waiting in the queue.
func (q *Queue) Pending() int {
	return len(q.ch)
}

// IsClosed returns whether the queue has been shut down.
func (q *Queue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

// Shutdown stops accepting new writes, drains the queue and waits for the
// worker, bounded by ctx.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()

	q.logger.Debug("write queue shutting down", zap.Int("pending", len(q.ch)))

	q.cancel()

	done := make(chan struct{})
	go func() {
		q.workerWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		q.logger.Warn("write queue shutdown timeout")
		return ctx.Err()
	}
}
