// Tracks per-run performance metrics such as throughput, waiting time,
// line length and teller utilization.

package sim

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/zeebo/xxh3"
)

// RunResult holds the raw counters and samples of one run.
//
// Served customers are counted once they release their teller, so
// Served + Balked + Reneged + WaitingAtHorizon + InServiceAtHorizon == Arrivals.
type RunResult struct {
	Arrivals int // Customers that walked in before the horizon
	Served   int // Customers whose service finished before the horizon
	Balked   int // Customers turned away by the line length
	Reneged  int // Customers that ran out of patience

	WaitingAtHorizon   int // Customers still in line when the run stopped
	InServiceAtHorizon int // Customers still at a teller when the run stopped

	WaitTimes    []float64 // Arrival-to-grant wait of each customer that reached a teller, in grant order
	QueueSamples []int     // Line length at each monitor tick
	BusyTime     float64   // Teller time spent serving, clipped to the horizon

	Horizon  float64
	Capacity int
}

// Throughput returns served customers per time unit. Zero when the horizon is zero.
func (r RunResult) Throughput() float64 {
	if r.Horizon <= 0 {
		return 0
	}
	return float64(r.Served) / r.Horizon
}

// AverageWait returns the mean wait of customers that reached a teller, or 0 if nobody did.
func (r RunResult) AverageWait() float64 {
	return CalculateMean(r.WaitTimes)
}

// AverageQueueLength returns the mean of the line-length samples, or 0 without samples.
func (r RunResult) AverageQueueLength() float64 {
	return CalculateMean(r.QueueSamples)
}

// WaitPercentile returns the p-th percentile (0-100) of served customers' waits,
// or 0 if nobody was served.
func (r RunResult) WaitPercentile(p float64) float64 {
	return CalculatePercentile(r.WaitTimes, p)
}

// Utilization returns the fraction of teller time spent serving, in [0, 1].
// Services still running at the horizon contribute only their part up to the
// horizon, which keeps the ratio at or below one.
func (r RunResult) Utilization() float64 {
	if r.Horizon <= 0 || r.Capacity <= 0 {
		return 0
	}
	return r.BusyTime / (float64(r.Capacity) * r.Horizon)
}

// Fingerprint returns an xxh3 digest of every field of the result.
// Two runs with equal fingerprints produced identical results.
func (r RunResult) Fingerprint() uint64 {
	h := xxh3.New()
	var buf [8]byte
	putInt := func(v int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		_, _ = h.Write(buf[:])
	}
	putFloat := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = h.Write(buf[:])
	}

	for _, v := range []int{r.Arrivals, r.Served, r.Balked, r.Reneged, r.WaitingAtHorizon, r.InServiceAtHorizon, r.Capacity} {
		putInt(v)
	}
	putFloat(r.BusyTime)
	putFloat(r.Horizon)
	putInt(len(r.WaitTimes))
	for _, w := range r.WaitTimes {
		putFloat(w)
	}
	putInt(len(r.QueueSamples))
	for _, q := range r.QueueSamples {
		putInt(q)
	}
	return h.Sum64()
}

func (r RunResult) String() string {
	return fmt.Sprintf("RunResult: (Served: %d, Balked: %d, Reneged: %d, AvgWait: %.2f, P90Wait: %.2f, AvgQueue: %.2f, Utilization: %.2f, Throughput: %.2f)",
		r.Served, r.Balked, r.Reneged, r.AverageWait(), r.WaitPercentile(90), r.AverageQueueLength(), r.Utilization(), r.Throughput())
}
