package workload

import (
	"math/rand"
	"sort"

	"github.com/inference-sim/beltsim/sim"
)

// Generator is an infinite, lazy arrival stream.
// Gaps come from the arrival_timing subsystem and component ids from the
// independent arrival_mix subsystem, so changing the alphabet never shifts
// arrival times. The first arrival is at time 0.
//
// Deterministic given the same spec and seed. Not restartable.
type Generator struct {
	sampler  ArrivalSampler
	timing   *rand.Rand
	mix      *rand.Rand
	alphabet []sim.ComponentID
	next     int64
}

// NewGenerator creates a Generator for a validated, non-scripted spec.
func NewGenerator(spec ArrivalSpec, rng *sim.PartitionedRNG) *Generator {
	alphabet := make([]sim.ComponentID, len(spec.Alphabet))
	for i, id := range spec.Alphabet {
		alphabet[i] = sim.ComponentID(id)
	}
	return &Generator{
		sampler:  NewArrivalSampler(spec),
		timing:   rng.ForSubsystem(sim.SubsystemArrivalTiming),
		mix:      rng.ForSubsystem(sim.SubsystemArrivalMix),
		alphabet: alphabet,
	}
}

// Next returns the next arrival. It never reports exhaustion.
func (g *Generator) Next() (sim.Arrival, bool) {
	a := sim.Arrival{
		Time:      g.next,
		Component: g.alphabet[g.mix.Intn(len(g.alphabet))],
	}
	g.next += g.sampler.SampleGap(g.timing)
	return a, true
}

// Replay yields a fixed list of arrivals in time order, then reports exhaustion.
type Replay struct {
	arrivals []sim.Arrival
	pos      int
}

// NewReplay copies arrivals and sorts them by time. Arrivals sharing a time
// keep their input order.
func NewReplay(arrivals []sim.Arrival) *Replay {
	sorted := append([]sim.Arrival(nil), arrivals...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time < sorted[j].Time
	})
	return &Replay{arrivals: sorted}
}

// Next returns the next scripted arrival, or false once the script is exhausted.
func (r *Replay) Next() (sim.Arrival, bool) {
	if r.pos >= len(r.arrivals) {
		return sim.Arrival{}, false
	}
	a := r.arrivals[r.pos]
	r.pos++
	return a, true
}

// Remaining returns the number of arrivals not yet yielded.
func (r *Replay) Remaining() int {
	return len(r.arrivals) - r.pos
}
