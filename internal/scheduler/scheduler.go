// Package scheduler drives the long-lived polling loops. Each loop runs
// its task on a fixed interval until the context is canceled; a task
// panic is recovered so one bad cycle never kills the loop.
package scheduler

import (
	"context"
	"time"

	"sarraf/internal/logger"
)

type Loop struct {
	Name           string
	Interval       time.Duration
	RunImmediately bool
	Task           func(ctx context.Context)
}

func NewLoop(name string, interval time.Duration, task func(ctx context.Context)) *Loop {
	return &Loop{
		Name:           name,
		Interval:       interval,
		RunImmediately: true,
		Task:           task,
	}
}

// Run blocks until ctx is canceled. Tests drive a single iteration by
// calling RunOnce directly instead of waiting on real timers.
func (l *Loop) Run(ctx context.Context) error {
	if l == nil || l.Task == nil {
		return nil
	}
	if l.Interval <= 0 {
		logger.Warnw("loop disabled, invalid interval", "loop", l.Name, "interval", l.Interval)
		<-ctx.Done()
		return ctx.Err()
	}
	logger.Infow("loop started", "loop", l.Name, "interval", l.Interval)

	if l.RunImmediately {
		l.RunOnce(ctx)
	}
	ticker := time.NewTicker(l.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Infow("loop stopped", "loop", l.Name)
			return ctx.Err()
		case <-ticker.C:
			l.RunOnce(ctx)
		}
	}
}

// RunOnce executes one iteration, recovering any panic.
func (l *Loop) RunOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("cycle panic recovered", "loop", l.Name, "panic", r)
		}
	}()
	l.Task(ctx)
}
