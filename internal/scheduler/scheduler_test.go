package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunOnceRecoversPanic(t *testing.T) {
	loop := NewLoop("panicky", time.Second, func(ctx context.Context) {
		panic("boom")
	})
	assert.NotPanics(t, func() { loop.RunOnce(context.Background()) })
}

func TestRunStopsOnCancel(t *testing.T) {
	var runs atomic.Int32
	loop := NewLoop("counter", 5*time.Millisecond, func(ctx context.Context) {
		runs.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop after cancel")
	}
}
