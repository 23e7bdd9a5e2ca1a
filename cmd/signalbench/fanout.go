package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/delaneyj/signalflow/pipes"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/sync/errgroup"
)

type fanoutResult struct {
	scenario   FanoutScenario
	duration   time.Duration
	deliveries int64
	counted    int
	checksum   uint64
	consistent bool
}

// digest is what one subscriber observed.
type digest struct {
	values int64
	sum    uint64
}

// runFanout merges finite sources into one stream read by every subscriber.
// A node broadcasts in a single order, so all subscribers must observe the
// same sequence and therefore the same checksum. Initial values are negative
// and a subscriber's snapshot may be one of them, so only the positive values
// produced after start are digested.
func runFanout(sys *pipes.System, sc FanoutScenario) (fanoutResult, error) {
	start := make(chan struct{})
	sources := make([]*pipes.Signal[int], sc.Sources)
	for i := range sources {
		base, produced, initial := i*sc.Updates, 0, -1-i
		sources[i] = pipes.Dispatcher(sys, &initial, func() (int, bool) {
			<-start
			if produced == sc.Updates {
				return 0, false
			}
			produced++
			return base + produced, true
		})
	}

	merged, err := pipes.Merges(sources...)
	if err != nil {
		return fanoutResult{}, err
	}
	for _, s := range sources {
		s.Close()
	}
	count := pipes.Count(merged)

	subs := make([]*pipes.Subscription[int], sc.Subscribers)
	for i := range subs {
		if subs[i], err = merged.Subscribe(); err != nil {
			return fanoutResult{}, err
		}
	}
	countSub, err := count.Subscribe()
	if err != nil {
		return fanoutResult{}, err
	}
	merged.Close()
	count.Close()

	digests := make([]digest, len(subs))
	var eg errgroup.Group
	for i, sub := range subs {
		i, sub := i, sub
		eg.Go(func() error {
			d := xxhash.New()
			buf := make([]byte, 0, 8)
			for v := range sub.C() {
				if v < 0 {
					continue
				}
				buf = binary.LittleEndian.AppendUint64(buf[:0], uint64(v))
				if _, err := d.Write(buf); err != nil {
					return err
				}
				digests[i].values++
			}
			digests[i].sum = d.Sum64()
			return nil
		})
	}

	began := time.Now()
	close(start)
	counted := 0
	for n := range countSub.C() {
		counted = n
	}
	if err := eg.Wait(); err != nil {
		return fanoutResult{}, err
	}
	took := time.Since(began)

	res := fanoutResult{
		scenario:   sc,
		duration:   took,
		counted:    counted,
		checksum:   digests[0].sum,
		consistent: true,
	}
	want := int64(sc.Sources) * int64(sc.Updates)
	for _, d := range digests {
		res.deliveries += d.values
		if d != digests[0] || d.values != want {
			res.consistent = false
		}
	}
	return res, nil
}

func renderFanout(w io.Writer, results []fanoutResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{
		"scenario", "sources", "subscribers", "updates",
		"time", "deliveries", "deliveries/s", "count", "checksum", "consistent",
	})
	for _, r := range results {
		rate := float64(r.deliveries) / r.duration.Seconds()
		table.Append([]string{
			r.scenario.Name,
			fmt.Sprint(r.scenario.Sources),
			humanize.Comma(int64(r.scenario.Subscribers)),
			humanize.Comma(int64(r.scenario.Updates)),
			fmt.Sprint(r.duration),
			humanize.Comma(r.deliveries),
			humanize.Comma(int64(rate)),
			humanize.Comma(int64(r.counted)),
			fmt.Sprintf("%016x", r.checksum),
			fmt.Sprint(r.consistent),
		})
	}
	table.Render()
}
