package game

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
)

func TestSchedulerRunsZeroDelayStepsSynchronously(t *testing.T) {
	t.Parallel()

	s := newScheduler(quartz.NewMock(t))
	var fired []int
	s.Run([]seqStep{
		{0, func() { fired = append(fired, 1) }},
		{0, func() { fired = append(fired, 2) }},
	})
	if len(fired) != 2 || fired[0] != 1 || fired[1] != 2 {
		t.Errorf("fired = %v, want both steps in order before Run returns", fired)
	}
}

func TestSchedulerDelayedStepsFollowTheClock(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mClock := quartz.NewMock(t)
	s := newScheduler(mClock)

	var fired []int
	s.Run([]seqStep{
		{0, func() { fired = append(fired, 1) }},
		{time.Second, func() { fired = append(fired, 2) }},
		{time.Second, func() { fired = append(fired, 3) }},
	})

	if len(fired) != 1 {
		t.Fatalf("fired = %v before any advance, want only the immediate step", fired)
	}
	mClock.Advance(time.Second).MustWait(ctx)
	if len(fired) != 2 {
		t.Fatalf("fired = %v after one second, want two steps", fired)
	}
	mClock.Advance(time.Second).MustWait(ctx)
	if len(fired) != 3 || fired[2] != 3 {
		t.Errorf("fired = %v after two seconds, want all three in order", fired)
	}
}

func TestSchedulerRunSupersedesPendingSequence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mClock := quartz.NewMock(t)
	s := newScheduler(mClock)

	stale := false
	s.Run([]seqStep{{time.Second, func() { stale = true }}})

	fresh := false
	s.Run([]seqStep{{time.Second, func() { fresh = true }}})

	mClock.Advance(time.Second).MustWait(ctx)
	if stale {
		t.Error("superseded sequence still fired")
	}
	if !fresh {
		t.Error("replacing sequence did not fire")
	}
}

func TestSchedulerCancelStopsPendingStep(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mClock := quartz.NewMock(t)
	s := newScheduler(mClock)

	fired := false
	s.Run([]seqStep{{time.Second, func() { fired = true }}})
	s.Cancel()

	// a fresh sequence gives the clock something to advance to, past the
	// cancelled step's deadline
	landed := false
	s.Run([]seqStep{{2 * time.Second, func() { landed = true }}})
	mClock.Advance(2 * time.Second).MustWait(ctx)

	if fired {
		t.Error("cancelled step fired")
	}
	if !landed {
		t.Error("replacement step did not fire")
	}
}

func TestSchedulerRestartFromWithinCallback(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mClock := quartz.NewMock(t)
	s := newScheduler(mClock)

	restarted := false
	tail := false
	var orphan bool
	s.Run([]seqStep{
		{time.Second, func() {
			// a callback may start the next sequence, as a countdown expiry
			// starts the next hand's blind posting
			s.Run([]seqStep{
				{0, func() { restarted = true }},
				{time.Second, func() { tail = true }},
			})
		}},
		{time.Second, func() { orphan = true }},
	})

	mClock.Advance(time.Second).MustWait(ctx)
	if !restarted {
		t.Fatal("nested Run did not execute")
	}
	mClock.Advance(time.Second).MustWait(ctx)
	if orphan {
		t.Error("step after an in-callback restart still fired")
	}
	if !tail {
		t.Error("restarted sequence's delayed step did not fire")
	}
}
