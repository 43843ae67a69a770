package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inference-sim/beltsim/sim/trace"
)

const second = int64(1_000_000)

// scriptSource replays a fixed arrival list; it must already be time-ordered.
type scriptSource struct {
	arrivals []Arrival
	pos      int
}

func script(arrivals ...Arrival) *scriptSource {
	return &scriptSource{arrivals: arrivals}
}

func (s *scriptSource) Next() (Arrival, bool) {
	if s.pos >= len(s.arrivals) {
		return Arrival{}, false
	}
	a := s.arrivals[s.pos]
	s.pos++
	return a, true
}

// randomSource draws uniform gaps in [minGap, maxGap] and uniform ids, seeded like the CLI.
type randomSource struct {
	rng            *PartitionedRNG
	ids            []ComponentID
	minGap, maxGap int64
	next           int64
}

func (s *randomSource) Next() (Arrival, bool) {
	mix := s.rng.ForSubsystem(SubsystemArrivalMix)
	timing := s.rng.ForSubsystem(SubsystemArrivalTiming)
	a := Arrival{Time: s.next, Component: s.ids[mix.Intn(len(s.ids))]}
	s.next += s.minGap + timing.Int63n(s.maxGap-s.minGap+1)
	return a, true
}

func newRandomSource(seed int64, ids ...ComponentID) *randomSource {
	return &randomSource{
		rng:    NewPartitionedRNG(NewSimulationKey(seed)),
		ids:    ids,
		minGap: second / 2,
		maxGap: 3 * second / 2,
	}
}

// lineConfig is a 3-slot belt (entry 0, exit 2) with one worker on slot 0
// building A+B+C into P, ticking every second.
func lineConfig() Config {
	return Config{
		Recipe:  RecipeConfig{Product: "P", Components: []string{"A", "B", "C"}},
		Belt:    BeltConfig{Length: 3, TickPeriod: second, EntryIndex: 0, ExitIndex: 2},
		Workers: WorkerConfig{Slots: map[int]int{0: 1}, AssemblyDuration: second},
		Run:     RunConfig{Horizon: 10 * second, TraceLevel: string(trace.TraceLevelEvents)},
	}
}

func newTestSimulator(t *testing.T, cfg Config, src ArrivalSource, opts ...Option) *Simulator {
	t.Helper()
	opts = append([]Option{WithRunID("test-run")}, opts...)
	s, err := NewSimulator(cfg, src, opts...)
	require.NoError(t, err)
	return s
}

func runToEnd(t *testing.T, s *Simulator) {
	t.Helper()
	require.NoError(t, s.Run(context.Background()))
}

// recordingSink keeps every record it receives.
type recordingSink struct {
	records []trace.Record
	closed  bool
	err     error
}

func (r *recordingSink) Emit(rec trace.Record) error {
	r.records = append(r.records, rec)
	return r.err
}

func (r *recordingSink) Close() error {
	r.closed = true
	return nil
}
