// Package worker runs deferred zero-argument tasks on a fixed set of goroutines.
package worker

import (
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrClosed    = errors.New("worker: pool closed")
	ErrQueueFull = errors.New("worker: task queue full")
)

// Pool drains a bounded task queue with a fixed number of workers.
// AddTask never blocks the caller.
type Pool struct {
	tasks   chan func()
	g       errgroup.Group
	pending sync.WaitGroup
	mu      sync.RWMutex // guards closed against concurrent sends
	closed  bool
	log     *zap.Logger
}

func NewPool(workers, queueSize int, log *zap.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	p := &Pool{
		tasks: make(chan func(), queueSize),
		log:   log,
	}
	for i := 0; i < workers; i++ {
		p.g.Go(func() error {
			for fn := range p.tasks {
				p.safeCall(fn)
			}
			return nil
		})
	}
	return p
}

// AddTask queues fn for execution on a worker.
func (p *Pool) AddTask(fn func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	p.pending.Add(1)
	select {
	case p.tasks <- fn:
		return nil
	default:
		p.pending.Done()
		p.log.Warn("task queue full", zap.Int("capacity", cap(p.tasks)))
		return ErrQueueFull
	}
}

// Wait blocks until every task queued so far has finished.
func (p *Pool) Wait() {
	p.pending.Wait()
}

// Close stops accepting tasks, lets queued tasks finish and joins the workers.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()
	return p.g.Wait()
}

// safeCall executes a task with panic recovery so that one failing task
// does not take the worker down with it.
func (p *Pool) safeCall(fn func()) {
	defer p.pending.Done()
	defer func() {
		if rec := recover(); rec != nil {
			p.log.Error("task panic recovered", zap.Any("panic", rec))
		}
	}()
	fn()
}
