// services/periodic.go
package services

import (
	"context"
	"sync"
	"time"

	"nilakkal-parking/logger"
)

// PeriodicTask runs a function on a fixed interval until stopped.
type PeriodicTask struct {
	Name     string
	Interval time.Duration
	run      func(ctx context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPeriodicTask creates a stopped task.
func NewPeriodicTask(name string, interval time.Duration, run func(ctx context.Context)) *PeriodicTask {
	return &PeriodicTask{Name: name, Interval: interval, run: run}
}

// Start launches the ticker. Starting a running task is a no-op.
func (t *PeriodicTask) Start(parent context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}
	if t.Interval <= 0 {
		logger.Warn.Printf("[PeriodicTask] %s has no interval, not starting", t.Name)
		return
	}

	ctx, cancel := context.WithCancel(parent)
	t.cancel = cancel
	t.done = make(chan struct{})
	ticker := time.NewTicker(t.Interval)
	logger.Info.Printf("[PeriodicTask] Starting %s every %s", t.Name, t.Interval)

	go func(done chan struct{}) {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				t.run(ctx)
			case <-ctx.Done():
				logger.Info.Printf("[PeriodicTask] %s stopped", t.Name)
				return
			}
		}
	}(t.done)
}

// Stop cancels the task and waits for a running tick to finish.
func (t *PeriodicTask) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the task is started.
func (t *PeriodicTask) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}
