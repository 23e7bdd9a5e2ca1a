// Package pipes is a reactive dataflow runtime. Every node of a signal graph
// is a goroutine that owns its channels, holds the latest value it computed
// and broadcasts each new value to the subscribers registered with it.
package pipes

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Signal is a shareable handle on a running node. It holds no value; values
// are obtained by subscribing.
type Signal[T any] struct {
	sys  *System
	name string

	reg      chan *Subscription[T]
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	// guards the send side of reg against Close
	mu     sync.RWMutex
	closed bool
}

func newSignal[T any](sys *System, name string) *Signal[T] {
	return &Signal[T]{
		sys:  sys,
		name: name,
		reg:  make(chan *Subscription[T], sys.cfg.RegistrationBuffer),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// closedSignal is the handle of a node that could not start. It accepts no
// registrations and is already done.
func closedSignal[T any](sys *System, kind string) *Signal[T] {
	n := sys.newNode(kind)
	n.log.V(1).Info("source closed before producing a value")
	s := newSignal[T](sys, n.name)
	s.finish()
	return s
}

// failedSignal is the handle of a node whose bootstrap failed. The failure is
// reported like a worker failure.
func failedSignal[T any](sys *System, kind string, cause error) *Signal[T] {
	n := sys.newNode(kind)
	sys.fail(&n, fmt.Errorf("%w: %s: %v", ErrWorkerFailed, n.name, cause))
	s := newSignal[T](sys, n.name)
	s.finish()
	return s
}

func (s *Signal[T]) Name() string {
	return s.name
}

func (s *Signal[T]) System() *System {
	return s.sys
}

// Done is closed once the node's worker has terminated.
func (s *Signal[T]) Done() <-chan struct{} {
	return s.done
}

func (s *Signal[T]) Subscribe() (*Subscription[T], error) {
	return s.SubscribeContext(context.Background())
}

// SubscribeContext registers a new subscriber. The node answers the
// registration with a snapshot of its current value followed by every later
// update, in order, on the subscription's channel. It only waits while the
// registration buffer is full.
func (s *Signal[T]) SubscribeContext(ctx context.Context) (*Subscription[T], error) {
	sub := newSubscription[T](s.sys)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		sub.Cancel()
		return nil, ErrClosed
	}
	select {
	case s.reg <- sub:
		return sub, nil
	case <-s.stop:
		sub.Cancel()
		return nil, ErrClosed
	case <-ctx.Done():
		sub.Cancel()
		return nil, ctx.Err()
	}
}

// Close closes the registration source. Existing subscribers keep receiving
// updates; the node terminates once its inputs are closed too.
func (s *Signal[T]) Close() {
	s.stopOnce.Do(func() { close(s.stop) })

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.reg)
	}
}

func (s *Signal[T]) Filter(initial T, pred func(T) bool) *Signal[T] {
	return Filter(s, initial, pred)
}

func (s *Signal[T]) registrations() <-chan *Subscription[T] {
	return s.reg
}

// finish is run by the worker on its way out. Registrations still buffered
// are closed unanswered.
func (s *Signal[T]) finish() {
	s.Close()
	for sub := range s.reg {
		sub.close()
	}
	close(s.done)
}

type canceler interface {
	Cancel()
}

type cancelFunc func()

func (fn cancelFunc) Cancel() { fn() }

// Subscription is one registered receiver of a signal.
type Subscription[T any] struct {
	id     string
	in     chan T
	out    chan T
	cancel chan struct{}
	once   sync.Once
}

func newSubscription[T any](sys *System) *Subscription[T] {
	sub := &Subscription[T]{
		id:     uuid.NewString(),
		cancel: make(chan struct{}),
	}
	if buffer := sys.cfg.SubscriberBuffer; buffer > 0 {
		ch := make(chan T, buffer)
		sub.in, sub.out = ch, ch
		return sub
	}
	sub.in, sub.out = make(chan T), make(chan T)
	sys.pump(func() { mailbox(sub.in, sub.out, sub.cancel) })
	return sub
}

func (sub *Subscription[T]) ID() string {
	return sub.id
}

// C delivers the registration snapshot and then every update. It is closed
// when the node terminates or drops the subscription.
func (sub *Subscription[T]) C() <-chan T {
	return sub.out
}

// Cancel marks the receiving end as gone. The node drops the subscription at
// its next delivery attempt.
func (sub *Subscription[T]) Cancel() {
	sub.once.Do(func() { close(sub.cancel) })
}

func (sub *Subscription[T]) cancelled() bool {
	select {
	case <-sub.cancel:
		return true
	default:
		return false
	}
}

func (sub *Subscription[T]) deliver(v T) bool {
	if sub.cancelled() {
		return false
	}
	select {
	case sub.in <- v:
		return true
	case <-sub.cancel:
		return false
	}
}

// close is called exactly once, by the node that owns the subscription.
func (sub *Subscription[T]) close() {
	close(sub.in)
}

// mailbox forwards in to out through an unbounded FIFO queue. Whatever is
// queued when in closes is still delivered unless the subscription is
// cancelled.
func mailbox[T any](in <-chan T, out chan<- T, cancel <-chan struct{}) {
	defer close(out)

	var queue []T
	for in != nil || len(queue) > 0 {
		var (
			send chan<- T
			head T
		)
		if len(queue) > 0 {
			send, head = out, queue[0]
		}
		select {
		case v, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			queue = append(queue, v)
		case send <- head:
			var zero T
			queue[0] = zero
			queue = queue[1:]
		case <-cancel:
			return
		}
	}
}
