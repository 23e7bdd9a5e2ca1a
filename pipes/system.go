package pipes

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/go-logr/logr"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

type OnErrorFunc func(node string, err error)

// Config holds the channel policy shared by every node of a System.
type Config struct {
	// RegistrationBuffer is the capacity of each signal's registration
	// channel. Subscribe only waits while it is full.
	RegistrationBuffer int
	// SubscriberBuffer selects the delivery policy. Zero gives every
	// subscription an unbounded mailbox so a node never waits on a slow
	// reader. A positive value gives a channel of that capacity and the
	// node waits on a full subscriber until it reads or cancels.
	SubscriberBuffer int
}

func DefaultConfig() Config {
	return Config{
		RegistrationBuffer: 16,
		SubscriberBuffer:   0,
	}
}

type Option func(*System)

func WithLogr(log logr.Logger) Option {
	return func(sys *System) {
		sys.log = log
	}
}

func WithOnError(fn OnErrorFunc) Option {
	return func(sys *System) {
		sys.onError = fn
	}
}

func WithConfig(cfg Config) Option {
	return func(sys *System) {
		sys.cfg = cfg
	}
}

func WithRegistrationBuffer(n int) Option {
	return func(sys *System) {
		sys.cfg.RegistrationBuffer = max(n, 0)
	}
}

func WithSubscriberBuffer(n int) Option {
	return func(sys *System) {
		sys.cfg.SubscriberBuffer = max(n, 0)
	}
}

func WithMetrics(m *Metrics) Option {
	return func(sys *System) {
		sys.metrics = m
	}
}

// System runs the workers of a signal graph. Every node started from it is
// tracked until it terminates, and worker failures are collected for Wait.
type System struct {
	cfg     Config
	log     logr.Logger
	onError OnErrorFunc
	metrics *Metrics

	eg    errgroup.Group
	live  mapset.Set[string]
	seq   atomic.Uint64
	pumps atomic.Int64

	mu   sync.Mutex
	errs error
}

func NewSystem(opts ...Option) *System {
	sys := &System{
		cfg:  DefaultConfig(),
		log:  logr.Discard(),
		live: mapset.NewSet[string](),
	}
	for _, opt := range opts {
		opt(sys)
	}
	return sys
}

func (sys *System) Config() Config {
	return sys.cfg
}

// Live returns the sorted names of the workers that are still running.
func (sys *System) Live() []string {
	names := sys.live.ToSlice()
	slices.Sort(names)
	return names
}

// Wait blocks until every worker started so far has terminated and returns
// the failures they reported. Workers only terminate once all of their
// sources are closed, so Wait is meant to be called after the graph's
// sources and handles have been closed. Subscription mailboxes are not
// waited for: they belong to their reader and end once it has read
// everything or cancelled. Mailboxes reports how many are still running.
func (sys *System) Wait() error {
	_ = sys.eg.Wait()

	sys.mu.Lock()
	defer sys.mu.Unlock()
	return sys.errs
}

// Err returns the failures reported so far without waiting.
func (sys *System) Err() error {
	sys.mu.Lock()
	defer sys.mu.Unlock()
	return sys.errs
}

// Mailboxes returns the number of subscription mailboxes still delivering.
// A subscription that is neither drained nor cancelled keeps its mailbox
// alive after its node terminated.
func (sys *System) Mailboxes() int {
	return int(sys.pumps.Load())
}

// pump runs a subscription mailbox. Mailboxes are counted but kept out of the
// worker group, since a reader that never drains would block Wait forever.
func (sys *System) pump(fn func()) {
	sys.pumps.Add(1)
	sys.metrics.mailboxStarted()
	go func() {
		defer func() {
			sys.pumps.Add(-1)
			sys.metrics.mailboxStopped()
		}()
		fn()
	}()
}

type node struct {
	sys  *System
	kind string
	name string
	log  logr.Logger
}

func (sys *System) newNode(kind string) node {
	name := fmt.Sprintf("%s-%d", kind, sys.seq.Add(1))
	return node{
		sys:  sys,
		kind: kind,
		name: name,
		log:  sys.log.WithName(kind).WithValues("node", name),
	}
}

// spawn runs work as the node's worker. cleanup always runs afterwards, in
// the worker goroutine, whether work returned or panicked.
func (sys *System) spawn(n *node, work func(), cleanup func()) {
	sys.live.Add(n.name)
	sys.metrics.workerStarted()
	n.log.V(1).Info("worker started")

	sys.eg.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %s: %v", ErrWorkerFailed, n.name, r)
				sys.fail(n, err)
			}
			cleanup()
			sys.live.Remove(n.name)
			sys.metrics.workerStopped()
			n.log.V(1).Info("worker terminated")
		}()
		work()
		return nil
	})
}

func (sys *System) fail(n *node, err error) {
	sys.mu.Lock()
	sys.errs = multierr.Append(sys.errs, err)
	sys.mu.Unlock()

	n.log.Error(err, "worker failed")
	sys.metrics.failure(n.kind)
	if sys.onError != nil {
		sys.onError(n.name, err)
	}
}
