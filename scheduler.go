package kftrack

import (
	"context"
	"time"
)

// commandQueueSize is the number of commands that can be sent before Send
// blocks waiting for the scheduler
const commandQueueSize = 64

// Scheduler ticks a Loop at the configured rate on a single goroutine.
// Commands sent to it are delivered in order and applied between ticks,
// never while a tick is running
type Scheduler struct {
	loop     *Loop
	commands chan Command
	// interval is the current ticker period
	interval time.Duration
}

// NewScheduler returns a Scheduler for loop
func NewScheduler(loop *Loop) *Scheduler {
	return &Scheduler{
		loop:     loop,
		commands: make(chan Command, commandQueueSize),
	}
}

// Send queues a command.  It blocks if the queue is full until the
// scheduler catches up or ctx is done
func (s *Scheduler) Send(ctx context.Context, cmd Command) error {
	select {
	case s.commands <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run ticks the loop until ctx is done.  Tick errors are logged and do not
// stop the scheduler
func (s *Scheduler) Run(ctx context.Context) error {

	s.interval = s.loop.Config().TickInterval()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	Logf("scheduler started, tick interval %v", s.interval)

	for {
		select {
		case <-ctx.Done():
			Logf("scheduler stopped after %d ticks", s.loop.TickCount())
			return ctx.Err()

		case cmd := <-s.commands:
			// queued on the loop so it takes effect at the start of the
			// next tick, ahead of predict
			s.loop.Submit(cmd)

		case <-ticker.C:
			s.tick(ticker)
		}
	}
}

// tick runs one loop iteration and follows any tick rate change
func (s *Scheduler) tick(ticker *time.Ticker) {

	// hand over any commands already waiting so they are drained by this
	// tick rather than the next
drain:
	for {
		select {
		case cmd := <-s.commands:
			s.loop.Submit(cmd)
		default:
			break drain
		}
	}

	if _, _, err := s.loop.Tick(); err != nil {
		Logf("tracking loop error: %v", err)
	}

	if interval := s.loop.Config().TickInterval(); interval != s.interval {
		Logf("tick interval changed from %v to %v", s.interval, interval)
		s.interval = interval
		ticker.Reset(interval)
	}
}
