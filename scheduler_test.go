package kftrack

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swdee/go-kftrack/tracker"
)

func TestSchedulerRun(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.TickRate = 500

	loop := NewLoop(cfg, StaticSource(tracker.Pt(100, 100)))

	ticks := make(chan Snapshot, 1024)
	loop.AddPublisher(PublisherFunc(func(s Snapshot) {
		select {
		case ticks <- s:
		default:
		}
	}))

	sched := NewScheduler(loop)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- sched.Run(ctx)
	}()

	// wait for a few ticks then switch model through the scheduler
	for i := 0; i < 5; i++ {
		select {
		case <-ticks:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for tick")
		}
	}

	require.NoError(t, sched.Send(ctx, SetModelOrder(tracker.ConstantAcceleration)))
	require.NoError(t, sched.Send(ctx, SetTickRate(250)))

	// the model change shows on a later snapshot
	deadline := time.After(2 * time.Second)

	for found := false; !found; {
		select {
		case s := <-ticks:
			found = s.Model == tracker.ConstantAcceleration
		case <-deadline:
			t.Fatal("model change never applied")
		}
	}

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}

	assert.Greater(t, loop.TickCount(), 5)
	assert.Equal(t, tracker.ConstantAcceleration, loop.Filter().Order())
	assert.Equal(t, 4*time.Millisecond, sched.interval)
}

func TestSchedulerSendCancelled(t *testing.T) {
	t.Parallel()

	sched := NewScheduler(NewLoop(testConfig(), StaticSource(tracker.Point{})))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// fill the queue, nothing is draining it
	for i := 0; i < commandQueueSize; i++ {
		require.NoError(t, sched.Send(context.Background(), ClearTracks{}))
	}

	assert.ErrorIs(t, sched.Send(ctx, ClearTracks{}), context.Canceled)
}
