package pipes

import "fmt"

// Lift applies f to every value of parent. The parent's current value is read
// and f applied to it on the caller's goroutine before the node starts, so the
// node never shows a value f did not produce. If parent terminates without a
// value, or f panics on that first value, the returned signal is already
// closed; the panic is reported as a worker failure.
func Lift[T, U any](parent *Signal[T], f func(T) U) *Signal[U] {
	update, up := follow(parent)
	first, ok := <-update
	if !ok {
		up.Cancel()
		return closedSignal[U](parent.sys, "lift")
	}
	initial, err := bootstrap(f, first)
	if err != nil {
		up.Cancel()
		return failedSignal[U](parent.sys, "lift", err)
	}
	return startEngine(parent.sys, "lift", initial, update, func(v T, _ U) U {
		return f(v)
	}, acceptAll[T], up)
}

func bootstrap[T, U any](f func(T) U, v T) (u U, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return f(v), nil
}

// FilterLift starts from initial and recomputes with process every value of
// parent that passes filter.
func FilterLift[T, U any](parent *Signal[T], initial U, filter func(T) bool, process func(T, U) U) *Signal[U] {
	return filterLift(parent, "filterlift", initial, filter, process)
}

func filterLift[T, U any](parent *Signal[T], kind string, initial U, filter func(T) bool, process func(T, U) U) *Signal[U] {
	update, up := follow(parent)
	return startEngine(parent.sys, kind, initial, update, process, filter, up)
}

// Foldp accumulates every value of parent, past to present, starting from
// initial. The value parent holds when Foldp subscribes is folded first.
func Foldp[T, U any](parent *Signal[T], initial U, f func(T, U) U) *Signal[U] {
	return filterLift(parent, "foldp", initial, acceptAll[T], f)
}

// Filter keeps the values of parent for which pred holds. Rejected values
// neither change the held value nor reach subscribers.
func Filter[T any](parent *Signal[T], initial T, pred func(T) bool) *Signal[T] {
	return filterLift(parent, "filter", initial, pred, replace[T])
}

// Count counts the values parent delivers, its current value included.
func Count[T any](parent *Signal[T]) *Signal[int] {
	return filterLift(parent, "count", 0, acceptAll[T], func(_ T, n int) int {
		return n + 1
	})
}

// CountIf counts the values of parent for which pred holds.
func CountIf[T any](parent *Signal[T], initial T, pred func(T) bool) *Signal[int] {
	filtered := Filter(parent, initial, pred)
	defer filtered.Close()
	return Count(filtered)
}

// KeepWhen forwards the values of value while gate is true in the latest
// pair the two signals formed.
func KeepWhen[T any](value *Signal[T], gate *Signal[bool], initial T) *Signal[T] {
	merged := Merge2(value, gate)
	defer merged.Close()
	return filterLift(merged, "keepwhen", initial, func(p Pair[T, bool]) bool {
		return p.Second
	}, func(p Pair[T, bool], _ T) T {
		return p.First
	})
}

// Split separates a stream of tagged values into its left and right halves.
func Split[L, R any](parent *Signal[Either[L, R]], left L, right R) (*Signal[L], *Signal[R]) {
	l := filterLift(parent, "split-left", left, Either[L, R].IsLeft, func(v Either[L, R], _ L) L {
		return v.LeftValue()
	})
	r := filterLift(parent, "split-right", right, Either[L, R].IsRight, func(v Either[L, R], _ R) R {
		return v.RightValue()
	})
	return l, r
}

// Constant answers every registration with value and never updates.
func Constant[T any](sys *System, value T) *Signal[T] {
	return startEngine(sys, "constant", value, (<-chan T)(nil), replace[T], acceptAll[T])
}

// Dispatcher turns gen into a source. gen is called repeatedly on its own
// worker; a false ok means it is exhausted, which closes the node's update
// source. With a nil initial the first generated value is awaited and used
// as the initial value.
func Dispatcher[T any](sys *System, initial *T, gen func() (T, bool)) *Signal[T] {
	values := make(chan T)
	quit := make(chan struct{})

	producer := sys.newNode("dispatcher-gen")
	sys.spawn(&producer, func() {
		defer close(values)
		for {
			v, ok := gen()
			if !ok {
				producer.log.V(1).Info("generator exhausted")
				return
			}
			select {
			case values <- v:
			case <-quit:
				return
			}
		}
	}, func() {})

	var value T
	if initial != nil {
		value = *initial
	} else {
		v, ok := <-values
		if !ok {
			close(quit)
			return closedSignal[T](sys, "dispatcher")
		}
		value = v
	}

	stop := cancelFunc(func() { close(quit) })
	return startEngine(sys, "dispatcher", value, (<-chan T)(values), replace[T], acceptAll[T], stop)
}
