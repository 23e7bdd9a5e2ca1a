package pipes

import (
	"fmt"
	"reflect"
)

// slotEngine is the worker behind Merge2 and Merge3. It keeps the last value
// seen on every input and broadcasts the combined tuple whenever one slot
// changes. Slots are not sampled together, so a broadcast may pair a fresh
// value with stale ones.
type slotEngine[U any] struct {
	node
	out    *Signal[U]
	inputs []reflect.Value
	last   []any
	build  func(last []any) U
	subs   subscribers[U]
}

func startSlots[U any](sys *System, kind string, build func([]any) U, inputs []reflect.Value, upstream ...canceler) *Signal[U] {
	m := &slotEngine[U]{
		node:   sys.newNode(kind),
		inputs: inputs,
		last:   make([]any, len(inputs)),
		build:  build,
	}
	m.out = newSignal[U](sys, m.name)
	m.subs.node = &m.node

	sys.spawn(&m.node, m.loop, func() {
		m.subs.closeAll()
		for _, up := range upstream {
			up.Cancel()
		}
		m.out.finish()
	})
	return m.out
}

func (m *slotEngine[U]) loop() {
	// The tuple only exists once every input produced a value. Until then
	// nothing else is served, registrations included; an input that never
	// produces blocks the node forever.
	for i, in := range m.inputs {
		v, ok := in.Recv()
		if !ok {
			m.log.V(1).Info("input closed before its first value", "slot", i)
			return
		}
		m.last[i] = v.Interface()
	}

	cases := make([]reflect.SelectCase, len(m.inputs)+1)
	for i, in := range m.inputs {
		cases[i] = reflect.SelectCase{Dir: reflect.SelectRecv, Chan: in}
	}
	regSlot := len(m.inputs)
	cases[regSlot] = reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(m.out.registrations())}

	for open := len(cases); open > 0; {
		chosen, v, ok := reflect.Select(cases)
		switch {
		case chosen == regSlot:
			if !ok {
				m.log.V(1).Info("registration source closed")
				cases[chosen].Chan = reflect.Value{}
				open--
				continue
			}
			m.subs.register(v.Interface().(*Subscription[U]), m.build(m.last))

		case chosen >= 0 && chosen < regSlot:
			if !ok {
				m.log.V(1).Info("input closed", "slot", chosen)
				cases[chosen].Chan = reflect.Value{}
				open--
				continue
			}
			m.sys.metrics.update(m.kind)
			m.last[chosen] = v.Interface()
			m.subs.broadcast(m.build(m.last))

		default:
			panic(fmt.Sprintf("merge incorrectly implemented: select index %d of %d", chosen, len(cases)))
		}
	}
}

// Merge2 pairs the latest values of a and b.
func Merge2[A, B any](a *Signal[A], b *Signal[B]) *Signal[Pair[A, B]] {
	ua, upa := follow(a)
	ub, upb := follow(b)

	return startSlots(a.sys, "merge2", func(last []any) Pair[A, B] {
		return Pair[A, B]{
			First:  as[A](last[0]),
			Second: as[B](last[1]),
		}
	}, []reflect.Value{reflect.ValueOf(ua), reflect.ValueOf(ub)}, upa, upb)
}

// Merge3 combines the latest values of a, b and c.
func Merge3[A, B, C any](a *Signal[A], b *Signal[B], c *Signal[C]) *Signal[Triple[A, B, C]] {
	ua, upa := follow(a)
	ub, upb := follow(b)
	uc, upc := follow(c)

	return startSlots(a.sys, "merge3", func(last []any) Triple[A, B, C] {
		return Triple[A, B, C]{
			First:  as[A](last[0]),
			Second: as[B](last[1]),
			Third:  as[C](last[2]),
		}
	}, []reflect.Value{reflect.ValueOf(ua), reflect.ValueOf(ub), reflect.ValueOf(uc)}, upa, upb, upc)
}
