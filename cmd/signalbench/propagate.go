package main

import (
	"fmt"
	"io"
	"time"

	"github.com/delaneyj/signalflow/pipes"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
)

func addOne(v int) int {
	return v + 1
}

type propagateResult struct {
	scenario PropagateScenario
	calc     *tachymeter.Metrics
}

// runPropagate measures how long one source update takes to reach the leaf
// of every chain.
func runPropagate(sys *pipes.System, sc PropagateScenario) (propagateResult, error) {
	in := make(chan int)
	initial := 0
	src := pipes.Dispatcher(sys, &initial, func() (int, bool) {
		v, ok := <-in
		return v, ok
	})

	leaves := make([]*pipes.Signal[int], 0, sc.Width)
	subs := make([]*pipes.Subscription[int], 0, sc.Width)
	for i := 0; i < sc.Width; i++ {
		last := src
		for j := 0; j < sc.Depth; j++ {
			prev := last
			last = pipes.Lift(prev, addOne)
			if prev != src {
				prev.Close()
			}
		}
		sub, err := last.Subscribe()
		if err != nil {
			return propagateResult{}, err
		}
		leaves = append(leaves, last)
		subs = append(subs, sub)
	}

	// every leaf starts from the chain's initial value
	for _, sub := range subs {
		if err := expect(sub, sc.Depth); err != nil {
			return propagateResult{}, err
		}
	}

	tach := tachymeter.New(&tachymeter.Config{Size: sc.Iterations})
	for i := 1; i <= sc.Iterations; i++ {
		start := time.Now()
		in <- i
		for _, sub := range subs {
			if err := expect(sub, i+sc.Depth); err != nil {
				return propagateResult{}, err
			}
		}
		tach.AddTime(time.Since(start))
	}

	close(in)
	src.Close()
	for _, leaf := range leaves {
		leaf.Close()
	}
	for _, sub := range subs {
		for range sub.C() {
		}
	}
	return propagateResult{scenario: sc, calc: tach.Calc()}, nil
}

func expect(sub *pipes.Subscription[int], want int) error {
	v, ok := <-sub.C()
	switch {
	case !ok:
		return fmt.Errorf("subscription %s closed while waiting for %d", sub.ID(), want)
	case v != want:
		return fmt.Errorf("subscription %s: got %d, want %d", sub.ID(), v, want)
	}
	return nil
}

func renderPropagate(w io.Writer, results []propagateResult) {
	tbl := table.NewWriter()
	tbl.SetTitle("Signal propagation")
	tbl.SetOutputMirror(w)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})
	for _, r := range results {
		tbl.AppendRow(table.Row{
			fmt.Sprintf("propagate: %d * %d", r.scenario.Width, r.scenario.Depth),
			r.calc.Time.Avg,
			r.calc.Time.Min,
			r.calc.Time.P75,
			r.calc.Time.P99,
			r.calc.Time.Max,
		})
	}
	tbl.Render()
}
