package pipes

import (
	"fmt"
	"reflect"
)

// mergeEngine forwards whichever of two same-typed inputs delivers a value.
// Pending registrations are drained before every wait, so a burst of
// registrations is answered before the next update is forwarded.
type mergeEngine[T any] struct {
	node
	out   *Signal[T]
	value T
	subs  subscribers[T]
}

// Merge interleaves the updates of a and b into one signal. The node starts
// once either input has produced a value.
func Merge[T any](a, b *Signal[T]) (*Signal[T], error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("merge: %w", ErrNilSignal)
	}
	ua, upa := follow(a)
	ub, upb := follow(b)

	m := &mergeEngine[T]{node: a.sys.newNode("merge")}
	m.out = newSignal[T](a.sys, m.name)
	m.subs.node = &m.node

	a.sys.spawn(&m.node, func() { m.loop(ua, ub) }, func() {
		m.subs.closeAll()
		upa.Cancel()
		upb.Cancel()
		m.out.finish()
	})
	return m.out, nil
}

func (m *mergeEngine[T]) loop(ua, ub <-chan T) {
	if !m.first(&ua, &ub) {
		m.log.V(1).Info("inputs closed before the first value")
		return
	}

	reg := m.out.registrations()
	for ua != nil || ub != nil || reg != nil {
		reg = m.drain(reg)
		select {
		case v, ok := <-ua:
			if !ok {
				ua = nil
				continue
			}
			m.forward(v)
		case v, ok := <-ub:
			if !ok {
				ub = nil
				continue
			}
			m.forward(v)
		case sub, ok := <-reg:
			if !ok {
				reg = nil
				continue
			}
			m.subs.register(sub, m.value)
		}
	}
}

func (m *mergeEngine[T]) first(ua, ub *<-chan T) bool {
	for *ua != nil || *ub != nil {
		select {
		case v, ok := <-*ua:
			if !ok {
				*ua = nil
				continue
			}
			m.value = v
			return true
		case v, ok := <-*ub:
			if !ok {
				*ub = nil
				continue
			}
			m.value = v
			return true
		}
	}
	return false
}

func (m *mergeEngine[T]) drain(reg <-chan *Subscription[T]) <-chan *Subscription[T] {
	for reg != nil {
		select {
		case sub, ok := <-reg:
			if !ok {
				return nil
			}
			m.subs.register(sub, m.value)
		default:
			return reg
		}
	}
	return nil
}

func (m *mergeEngine[T]) forward(v T) {
	m.sys.metrics.update(m.kind)
	m.value = v
	m.subs.broadcast(v)
}

// Merges fans in any number of same-typed signals. Every parent's snapshot is
// read up front and the last one becomes the initial value, so snapshots are
// never forwarded as updates. The merged stream then feeds a plain identity
// node.
func Merges[T any](signals ...*Signal[T]) (*Signal[T], error) {
	if len(signals) == 0 {
		return nil, ErrNoSignals
	}
	for i, s := range signals {
		if s == nil {
			return nil, fmt.Errorf("merges: signal %d: %w", i, ErrNilSignal)
		}
	}
	sys := signals[0].sys

	var (
		initial T
		found   bool
	)
	cases := make([]reflect.SelectCase, 0, len(signals)+1)
	upstream := make([]canceler, 0, len(signals))
	for _, s := range signals {
		update, up := follow(s)
		upstream = append(upstream, up)
		v, ok := <-update
		if !ok {
			continue
		}
		initial, found = v, true
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(update)})
	}
	if !found {
		for _, up := range upstream {
			up.Cancel()
		}
		return nil, ErrNoInitialValue
	}

	merged := make(chan T)
	quit := make(chan struct{})
	cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(quit)})

	fan := sys.newNode("merges-fanin")
	sys.spawn(&fan, func() {
		defer close(merged)
		fanIn(cases, merged, quit)
	}, func() {
		for _, up := range upstream {
			up.Cancel()
		}
	})

	stop := cancelFunc(func() { close(quit) })
	return startEngine(sys, "merges", initial, (<-chan T)(merged), replace[T], acceptAll[T], stop), nil
}

// fanIn receives from whichever input is ready until every input is closed
// or quit is. The last case of cases is quit.
func fanIn[T any](cases []reflect.SelectCase, merged chan<- T, quit <-chan struct{}) {
	quitSlot := len(cases) - 1
	for open := quitSlot; open > 0; {
		chosen, v, ok := reflect.Select(cases)
		switch {
		case chosen == quitSlot:
			return
		case chosen >= 0 && chosen < quitSlot:
			if !ok {
				cases[chosen].Chan = reflect.Value{}
				open--
				continue
			}
			select {
			case merged <- as[T](v.Interface()):
			case <-quit:
				return
			}
		default:
			panic(fmt.Sprintf("merges incorrectly implemented: select index %d of %d", chosen, len(cases)))
		}
	}
}
