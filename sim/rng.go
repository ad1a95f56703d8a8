package sim

import (
	"hash/fnv"
	"math/rand"
)

// SimulationKey is the master seed of an aggregation. Equal keys and equal
// configs give bit-identical RunResults.
type SimulationKey int64

// NewSimulationKey wraps a seed.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// Random stream names.
const (
	// SubsystemArrivals draws inter-arrival times. Its seed is the master seed itself.
	SubsystemArrivals = "arrivals"
	// SubsystemService draws teller service durations.
	SubsystemService = "service"
)

// PartitionedRNG hands out one *rand.Rand per named stream, each seeded from
// the SimulationKey. Arrival and service draws never interleave on a single
// stream, so switching the service distribution leaves the arrival sequence
// untouched.
//
// One PartitionedRNG serves every run of an aggregation and is never
// reseeded; run k continues the streams where run k-1 stopped.
//
// Thread-safety: NOT thread-safe. Each sweep point owns its own.
type PartitionedRNG struct {
	key     SimulationKey
	streams map[string]*rand.Rand
}

func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{key: key, streams: make(map[string]*rand.Rand, 2)}
}

// ForSubsystem returns the stream for name, creating it on first use.
// Repeated calls return the same instance.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	rng, ok := p.streams[name]
	if !ok {
		rng = rand.New(rand.NewSource(deriveSeed(p.key, name)))
		p.streams[name] = rng
	}
	return rng
}

// Key returns the master seed.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// deriveSeed maps (key, stream) to a source seed: the key for arrivals,
// key XOR FNV-1a(name) for everything else.
func deriveSeed(key SimulationKey, name string) int64 {
	if name == SubsystemArrivals {
		return int64(key)
	}
	h := fnv.New64a()
	h.Write([]byte(name))
	return int64(key) ^ int64(h.Sum64())
}
