package pipes_test

import (
	"testing"
	"time"

	"github.com/delaneyj/signalflow/pipes"
	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const timeout = 5 * time.Second

// newSystem logs through t, so every test using it must close its graph and
// Wait before returning.
func newSystem(t *testing.T, opts ...pipes.Option) *pipes.System {
	t.Helper()
	opts = append([]pipes.Option{pipes.WithLogr(testr.New(t))}, opts...)
	return pipes.NewSystem(opts...)
}

// source is a dispatcher fed by the returned channel. Closing the channel
// exhausts it.
func source[T any](sys *pipes.System, initial T) (*pipes.Signal[T], chan<- T) {
	in := make(chan T)
	sig := pipes.Dispatcher(sys, &initial, func() (T, bool) {
		v, ok := <-in
		return v, ok
	})
	return sig, in
}

func subscribe[T any](t *testing.T, sig *pipes.Signal[T]) *pipes.Subscription[T] {
	t.Helper()
	sub, err := sig.Subscribe()
	require.NoError(t, err)
	return sub
}

func next[T any](t *testing.T, sub *pipes.Subscription[T]) T {
	t.Helper()
	select {
	case v, ok := <-sub.C():
		require.True(t, ok, "subscription closed")
		return v
	case <-time.After(timeout):
		require.FailNow(t, "timed out waiting for a value")
	}
	panic("unreachable")
}

// waitFor reads until want arrives, skipping older values.
func waitFor[T comparable](t *testing.T, sub *pipes.Subscription[T], want T) {
	t.Helper()
	deadline := time.After(timeout)
	var seen []T
	for {
		select {
		case v, ok := <-sub.C():
			require.True(t, ok, "subscription closed, saw %v", seen)
			if v == want {
				return
			}
			seen = append(seen, v)
		case <-deadline:
			require.FailNowf(t, "timed out", "waiting for %v, saw %v", want, seen)
		}
	}
}

// drain reads until the subscription is closed.
func drain[T any](t *testing.T, sub *pipes.Subscription[T]) []T {
	t.Helper()
	deadline := time.After(timeout)
	var got []T
	for {
		select {
		case v, ok := <-sub.C():
			if !ok {
				return got
			}
			got = append(got, v)
		case <-deadline:
			require.FailNowf(t, "timed out", "subscription still open after %v", got)
		}
	}
}

func quiet[T any](t *testing.T, sub *pipes.Subscription[T]) {
	t.Helper()
	assert.Never(t, func() bool {
		select {
		case v, ok := <-sub.C():
			if ok {
				t.Logf("unexpected value %v", v)
			}
			return true
		default:
			return false
		}
	}, 100*time.Millisecond, 5*time.Millisecond)
}

// settle returns once every registration queued on sig before the call has
// been answered.
func settle[T any](t *testing.T, sig *pipes.Signal[T]) {
	t.Helper()
	sub := subscribe(t, sig)
	next(t, sub)
	sub.Cancel()
}
