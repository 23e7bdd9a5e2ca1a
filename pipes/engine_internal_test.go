package pipes

import (
	"testing"
	"time"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 5 * time.Second

func recv[T any](t *testing.T, sub *Subscription[T]) T {
	t.Helper()
	select {
	case v, ok := <-sub.C():
		require.True(t, ok, "subscription closed")
		return v
	case <-time.After(waitTimeout):
		require.FailNow(t, "timed out waiting for a value")
	}
	panic("unreachable")
}

func recvAll[T any](t *testing.T, sub *Subscription[T]) []T {
	t.Helper()
	deadline := time.After(waitTimeout)
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

func testSystem(t *testing.T, opts ...Option) *System {
	t.Helper()
	return NewSystem(append([]Option{WithLogr(testr.New(t))}, opts...)...)
}

func even(v int) bool { return v%2 == 0 }

func TestEngineSnapshotPrecedesLaterUpdates(t *testing.T) {
	sys := testSystem(t)
	update := make(chan int)
	sig := startEngine(sys, "test", 0, (<-chan int)(update), replace[int], acceptAll[int])

	sub, err := sig.Subscribe()
	require.NoError(t, err)
	assert.Equal(t, 0, recv(t, sub))

	update <- 1
	update <- 2
	assert.Equal(t, 1, recv(t, sub))
	assert.Equal(t, 2, recv(t, sub))

	close(update)
	sig.Close()
	assert.Empty(t, recvAll(t, sub))
	<-sig.Done()
	require.NoError(t, sys.Wait())
}

func TestEngineFilterLeavesValueUntouched(t *testing.T) {
	sys := testSystem(t)
	update := make(chan int)
	sig := startEngine(sys, "test", 0, (<-chan int)(update), replace[int], even)

	sub, err := sig.Subscribe()
	require.NoError(t, err)
	assert.Equal(t, 0, recv(t, sub))

	update <- 1
	update <- 3
	update <- 4

	late, err := sig.Subscribe()
	require.NoError(t, err)
	assert.Equal(t, 4, recv(t, sub))
	assert.Equal(t, 4, recv(t, late))

	close(update)
	sig.Close()
	assert.Empty(t, recvAll(t, sub))
	assert.Empty(t, recvAll(t, late))
	require.NoError(t, sys.Wait())
}

func TestEngineCancelReleasesBlockedDelivery(t *testing.T) {
	sys := testSystem(t, WithSubscriberBuffer(1))
	update := make(chan int)
	sig := startEngine(sys, "test", 0, (<-chan int)(update), replace[int], acceptAll[int])

	reader, err := sig.Subscribe()
	require.NoError(t, err)
	assert.Equal(t, 0, recv(t, reader))

	slow, err := sig.Subscribe()
	require.NoError(t, err)

	// registrations are answered in order, so once probe has its snapshot
	// slow holds a full buffer
	probe, err := sig.Subscribe()
	require.NoError(t, err)
	assert.Equal(t, 0, recv(t, probe))
	probe.Cancel()

	update <- 1
	assert.Equal(t, 1, recv(t, reader))

	slow.Cancel()
	update <- 2
	assert.Equal(t, 2, recv(t, reader))

	close(update)
	sig.Close()
	assert.Equal(t, []int{0}, recvAll(t, slow))
	assert.Empty(t, recvAll(t, reader))
	require.NoError(t, sys.Wait())
}

func TestEngineFailureClosesNode(t *testing.T) {
	var failedNode string
	sys := testSystem(t, WithOnError(func(node string, err error) {
		failedNode = node
	}))

	update := make(chan int)
	upstream := make(chan struct{})
	sig := startEngine(sys, "test", 0, (<-chan int)(update), func(v, _ int) int {
		if v == 2 {
			panic("boom")
		}
		return v
	}, acceptAll[int], cancelFunc(func() { close(upstream) }))

	sub, err := sig.Subscribe()
	require.NoError(t, err)
	assert.Equal(t, 0, recv(t, sub))
	update <- 1
	assert.Equal(t, 1, recv(t, sub))
	update <- 2

	assert.Empty(t, recvAll(t, sub))
	<-sig.Done()

	_, err = sig.Subscribe()
	require.ErrorIs(t, err, ErrClosed)

	select {
	case <-upstream:
	case <-time.After(waitTimeout):
		require.FailNow(t, "upstream subscription was not cancelled")
	}

	err = sys.Wait()
	require.ErrorIs(t, err, ErrWorkerFailed)
	assert.ErrorContains(t, err, "boom")
	assert.Equal(t, sig.Name(), failedNode)
	assert.Empty(t, sys.Live())
}

func TestPendingRegistrationsAreClosedOnExit(t *testing.T) {
	sys := testSystem(t)
	sig := newSignal[int](sys, "pending")

	sub, err := sig.Subscribe()
	require.NoError(t, err)
	sig.finish()

	assert.Empty(t, recvAll(t, sub))
	_, err = sig.Subscribe()
	require.ErrorIs(t, err, ErrClosed)
}

func TestBufferOptionsClampNegative(t *testing.T) {
	sys := NewSystem(WithRegistrationBuffer(-1), WithSubscriberBuffer(-3))
	assert.Equal(t, Config{}, sys.Config())

	sys = NewSystem(WithConfig(Config{RegistrationBuffer: 4, SubscriberBuffer: 2}))
	assert.Equal(t, 4, sys.Config().RegistrationBuffer)
	assert.Equal(t, 2, sys.Config().SubscriberBuffer)
	assert.Equal(t, DefaultConfig(), NewSystem().Config())
}
