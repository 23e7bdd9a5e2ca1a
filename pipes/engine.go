package pipes

// subscribers is the ordered fan-out list of a node. Subscriptions whose
// receiving end is gone are dropped instead of failing the node.
type subscribers[T any] struct {
	node *node
	list []*Subscription[T]
}

func (l *subscribers[T]) register(sub *Subscription[T], snapshot T) {
	if !sub.deliver(snapshot) {
		l.drop(sub)
		return
	}
	l.list = append(l.list, sub)
}

func (l *subscribers[T]) broadcast(v T) {
	l.node.sys.metrics.broadcast(l.node.kind)

	kept := l.list[:0]
	for _, sub := range l.list {
		if sub.deliver(v) {
			kept = append(kept, sub)
			continue
		}
		l.drop(sub)
	}
	clear(l.list[len(kept):])
	l.list = kept
}

func (l *subscribers[T]) drop(sub *Subscription[T]) {
	sub.close()
	l.node.sys.metrics.drop(l.node.kind)
	l.node.log.V(1).Info("subscriber dropped", "subscription", sub.id)
}

func (l *subscribers[T]) closeAll() {
	for _, sub := range l.list {
		sub.close()
	}
	l.list = nil
}

// engine is the worker of every single-input node: it multiplexes one update
// source and the registration source of its signal.
type engine[T, U any] struct {
	node
	out     *Signal[U]
	value   U
	update  <-chan T
	process func(T, U) U
	filter  func(T) bool
	subs    subscribers[U]
}

// startEngine starts a node holding initial. A nil update source makes a
// node that only ever answers registrations.
func startEngine[T, U any](
	sys *System,
	kind string,
	initial U,
	update <-chan T,
	process func(T, U) U,
	filter func(T) bool,
	upstream ...canceler,
) *Signal[U] {
	e := &engine[T, U]{
		node:    sys.newNode(kind),
		value:   initial,
		update:  update,
		process: process,
		filter:  filter,
	}
	e.out = newSignal[U](sys, e.name)
	e.subs.node = &e.node

	sys.spawn(&e.node, e.loop, func() {
		e.subs.closeAll()
		for _, up := range upstream {
			up.Cancel()
		}
		e.out.finish()
	})
	return e.out
}

func (e *engine[T, U]) loop() {
	update, reg := e.update, e.out.registrations()

	// a nil channel never becomes ready, so a closed source simply drops
	// out of the select
	for update != nil || reg != nil {
		select {
		case v, ok := <-update:
			if !ok {
				e.log.V(1).Info("update source closed")
				update = nil
				continue
			}
			e.apply(v)

		case sub, ok := <-reg:
			if !ok {
				e.log.V(1).Info("registration source closed")
				reg = nil
				continue
			}
			e.subs.register(sub, e.value)
		}
	}
}

func (e *engine[T, U]) apply(v T) {
	e.sys.metrics.update(e.kind)
	if !e.filter(v) {
		e.sys.metrics.filter(e.kind)
		return
	}
	e.value = e.process(v, e.value)
	e.subs.broadcast(e.value)
}

func acceptAll[T any](T) bool { return true }

func replace[T any](v, _ T) T { return v }

// follow subscribes to parent. A parent that no longer accepts registrations
// yields an already closed update source.
func follow[T any](parent *Signal[T]) (<-chan T, canceler) {
	sub, err := parent.Subscribe()
	if err != nil {
		parent.sys.log.V(1).Info("parent closed", "parent", parent.name, "error", err.Error())
		ch := make(chan T)
		close(ch)
		return ch, cancelFunc(func() {})
	}
	return sub.C(), sub
}

// as converts a slot value back to its type; a nil interface yields the zero
// value.
func as[T any](v any) T {
	t, _ := v.(T)
	return t
}
