// Package besteffort runs work whose failure must be visible but must never
// hold up the caller: remote mark-read, socket sends and the like.
package besteffort

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/suPer8Hu/mall-console/internal/logger"
)

const defaultTimeout = 10 * time.Second

type Stats struct {
	Started   int64 `json:"started"`
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
}

type Runner struct {
	base    context.Context
	timeout time.Duration
	wg      sync.WaitGroup

	started   atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
}

// NewRunner ties every task to base; cancelling base cancels in-flight tasks.
func NewRunner(base context.Context, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Runner{base: base, timeout: timeout}
}

// Go starts fn in its own goroutine with a bounded context. Errors and panics
// are logged under name.
func (r *Runner) Go(name string, fn func(ctx context.Context) error) {
	r.started.Add(1)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				r.failed.Add(1)
				logger.Errorf("[besteffort] %s panicked: %v", name, p)
			}
		}()

		ctx, cancel := context.WithTimeout(r.base, r.timeout)
		defer cancel()

		start := time.Now()
		if err := fn(ctx); err != nil {
			r.failed.Add(1)
			logger.WithField("task", name).Warnf("[besteffort] failed cost=%s err=%v", time.Since(start), err)
			return
		}
		r.succeeded.Add(1)
	}()
}

// Wait blocks until every started task has returned.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) Stats() Stats {
	return Stats{
		Started:   r.started.Load(),
		Succeeded: r.succeeded.Load(),
		Failed:    r.failed.Load(),
	}
}
