// Package timing builds time driven signals out of the pipes combinators.
package timing

import (
	"context"
	"fmt"
	"time"

	"github.com/delaneyj/signalflow/pipes"
	"github.com/gorhill/cronexpr"
)

// Clock is the source of time for every helper in this package.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Every ticks with the clock's time once every d, starting from the time it
// was created. It stops updating once ctx is done.
func Every(ctx context.Context, sys *pipes.System, clock Clock, d time.Duration) *pipes.Signal[time.Time] {
	initial := clock.Now()
	return pipes.Dispatcher(sys, &initial, func() (time.Time, bool) {
		select {
		case <-ctx.Done():
			return time.Time{}, false
		case <-clock.After(d):
			return clock.Now(), true
		}
	})
}

// Cron ticks with every time matched by the cron expression expr, starting
// from the time it was created. It stops updating once ctx is done or the
// schedule has no time left.
func Cron(ctx context.Context, sys *pipes.System, clock Clock, expr string) (*pipes.Signal[time.Time], error) {
	schedule, err := cronexpr.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("cron %q: %w", expr, err)
	}

	initial := clock.Now()
	return pipes.Dispatcher(sys, &initial, func() (time.Time, bool) {
		now := clock.Now()
		next := schedule.Next(now)
		if next.IsZero() {
			return time.Time{}, false
		}
		select {
		case <-ctx.Done():
			return time.Time{}, false
		case <-clock.After(next.Sub(now)):
			return next, true
		}
	}), nil
}

// Delay passes on every value of sig after waiting d. Like any Lift, the wait
// for the current value happens on the caller's goroutine; later waits happen
// on the node's worker, so later values queue up behind it.
func Delay[T any](sig *pipes.Signal[T], clock Clock, d time.Duration) *pipes.Signal[T] {
	return pipes.Lift(sig, func(v T) T {
		<-clock.After(d)
		return v
	})
}

// Timestamp pairs every value of sig with the time it was seen.
func Timestamp[T any](sig *pipes.Signal[T], clock Clock) *pipes.Signal[pipes.Pair[time.Time, T]] {
	return pipes.Lift(sig, func(v T) pipes.Pair[time.Time, T] {
		return pipes.Pair[time.Time, T]{First: clock.Now(), Second: v}
	})
}

func TimeOf[T any](sig *pipes.Signal[T], clock Clock) *pipes.Signal[time.Time] {
	return pipes.Lift(sig, func(T) time.Time {
		return clock.Now()
	})
}
