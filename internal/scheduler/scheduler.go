// Package scheduler runs periodic jobs and delayed tasks on one goroutine,
// so background work never runs concurrently with itself.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// ErrInvalidInterval is returned by Every for an interval that is not positive.
var ErrInvalidInterval = errors.New("interval must be positive")

// Scheduler serializes periodic and delayed work onto a single worker.
type Scheduler struct {
	tasks chan func()

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	started bool
}

// New creates a scheduler whose queue holds up to queueSize pending tasks.
func New(queueSize int) *Scheduler {
	if queueSize < 1 {
		queueSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		tasks:  make(chan func(), queueSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the worker. Calling Start twice has no effect.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	s.wg.Add(1)
	go s.work()
	log.Println("scheduler: started")
}

func (s *Scheduler) work() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case task := <-s.tasks:
			s.run(task)
		}
	}
}

func (s *Scheduler) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("scheduler: task panicked: %v", r)
		}
	}()
	task()
}

// submit queues task, giving up once the scheduler is shut down.
func (s *Scheduler) submit(task func()) {
	select {
	case s.tasks <- task:
	case <-s.ctx.Done():
	}
}

// Every runs job each interval until shutdown.
func (s *Scheduler) Every(name string, interval time.Duration, job func()) error {
	if interval <= 0 {
		return fmt.Errorf("schedule %s every %v: %w", name, interval, ErrInvalidInterval)
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		log.Printf("scheduler: %s runs every %v", name, interval)
		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.submit(job)
			}
		}
	}()
	return nil
}

// After runs task once after delay. The returned function cancels the task
// and reports whether it was still pending.
func (s *Scheduler) After(delay time.Duration, task func()) (cancel func() bool) {
	var mu sync.Mutex
	cancelled := false

	timer := time.AfterFunc(delay, func() {
		s.submit(func() {
			mu.Lock()
			skip := cancelled
			cancelled = true
			mu.Unlock()
			if !skip {
				task()
			}
		})
	})

	return func() bool {
		timer.Stop()
		mu.Lock()
		defer mu.Unlock()
		if cancelled {
			return false
		}
		cancelled = true
		return true
	}
}

// Shutdown stops the worker and every periodic job, waiting at most timeout.
func (s *Scheduler) Shutdown(timeout time.Duration) {
	log.Println("scheduler: shutting down")
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("scheduler: stopped")
	case <-time.After(timeout):
		log.Println("scheduler: shutdown timed out")
	}
}
