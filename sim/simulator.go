// sim/simulator.go
package sim

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/inference-sim/beltsim/sim/trace"
)

// Arrival is one component entering the line at a simulated time (µs).
type Arrival struct {
	Time      int64
	Component ComponentID
}

// ArrivalSource yields arrivals in non-decreasing time order.
// ok is false once the source is exhausted; infinite sources never return false.
type ArrivalSource interface {
	Next() (a Arrival, ok bool)
}

// Option customizes a Simulator at construction time.
type Option func(*Simulator)

// WithSinks forwards every emitted record to the given sinks.
func WithSinks(sinks ...trace.Sink) Option {
	return func(s *Simulator) { s.sinks = append(s.sinks, sinks...) }
}

// WithPacer overrides the realtime pacer (or installs one in simulated mode).
func WithPacer(p Pacer) Option {
	return func(s *Simulator) { s.pacer = p }
}

// WithRunID sets the run identifier instead of a random UUID.
func WithRunID(id string) Option {
	return func(s *Simulator) { s.RunID = id }
}

// WithParallelism caps the number of slots whose workers act concurrently.
// Values < 1 mean no limit.
func WithParallelism(n int) Option {
	return func(s *Simulator) { s.parallelism = n }
}

// Simulator is the core object that holds simulation time, the belt, the
// workers and the event loop.
type Simulator struct {
	Clock      int64
	Horizon    int64
	MaxTicks   int64
	TickPeriod int64
	TickCount  int64
	RunID      string

	// EventQueue holds ticks, arrivals and assembly wake-ups.
	EventQueue *EventQueue
	Belt       *Belt
	Recipe     *Recipe
	// Workers in slot order, then in per-slot priority order.
	Workers []*Worker
	Metrics *Metrics
	// Trace is nil unless the trace level is "events".
	Trace *trace.EventLog

	arrivals    ArrivalSource
	sinks       []trace.Sink
	pacer       Pacer
	parallelism int
	ctx         context.Context
	nextSeq     uint64
	started     bool
	stopped     bool
	stopReason  string
}

// NewSimulator validates cfg and builds the belt and its workers.
// The error wraps ErrInvalidConfiguration when cfg is unusable.
func NewSimulator(cfg Config, arrivals ArrivalSource, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if arrivals == nil {
		return nil, fmt.Errorf("%w: no arrival source", ErrInvalidConfiguration)
	}
	recipe, err := cfg.Recipe.NewRecipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	belt, err := NewBelt(cfg.Belt.Length, cfg.Belt.EntryIndex, cfg.Belt.ExitIndex)
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		Horizon:     cfg.Run.Horizon,
		MaxTicks:    cfg.Run.MaxTicks,
		TickPeriod:  cfg.Belt.TickPeriod,
		EventQueue:  NewEventQueue(),
		Belt:        belt,
		Recipe:      recipe,
		Metrics:     NewMetrics(recipe),
		arrivals:    arrivals,
		parallelism: runtime.GOMAXPROCS(0),
		ctx:         context.Background(),
	}

	for _, slot := range belt.Slots() {
		for n := cfg.Workers.WorkersAt(slot.Index()); n > 0; n-- {
			w := NewWorker(fmt.Sprintf("W%d", len(s.Workers)+1), slot.Index(), recipe, cfg.Workers.AssemblyDuration)
			slot.workers = append(slot.workers, w)
			s.Workers = append(s.Workers, w)
		}
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.RunID == "" {
		s.RunID = uuid.NewString()
	}
	s.Metrics.RunID = s.RunID
	if trace.TraceLevel(cfg.Run.TraceLevel) == trace.TraceLevelEvents {
		s.Trace = trace.NewEventLog(s.RunID)
	}
	if cfg.Run.Realtime && s.pacer == nil {
		s.pacer = NewRealtimePacer(cfg.Belt.TickPeriod, cfg.Run.Speed)
	}

	if cfg.Workers.AssemblyDuration > cfg.Belt.TickPeriod {
		logrus.Warnf("Assembly (%d µs) is slower than a belt tick (%d µs); components will pass unpicked during assembly",
			cfg.Workers.AssemblyDuration, cfg.Belt.TickPeriod)
	}
	return s, nil
}

// WorkerByID returns the worker with the given id, or nil.
func (sim *Simulator) WorkerByID(id string) *Worker {
	for _, w := range sim.Workers {
		if w.ID() == id {
			return w
		}
	}
	return nil
}

// Stopped reports whether the run stopped issuing ticks, and why.
func (sim *Simulator) Stopped() (bool, string) {
	return sim.stopped, sim.stopReason
}

// Schedule pushes an event into the simulator's EventQueue.
func (sim *Simulator) Schedule(ev Event) {
	sim.EventQueue.Schedule(ev)
}

func (sim *Simulator) base(t int64) baseEvent {
	sim.nextSeq++
	return baseEvent{time: t, seq: sim.nextSeq}
}

// Run executes the simulation until no event is left: the horizon or the
// tick budget was reached, or ctx was cancelled. Assemblies in flight at
// that point still complete. The returned error is non-nil only for an
// invariant violation.
func (sim *Simulator) Run(ctx context.Context) error {
	logrus.Infof("[run %s] Starting simulation: belt=%d slots, workers=%d, recipe=%s -> %s, horizon=%dµs",
		sim.RunID, sim.Belt.Len(), len(sim.Workers), sim.Recipe.Components(), sim.Recipe.Symbol(), sim.Horizon)
	if err := sim.RunUntil(ctx, math.MaxInt64); err != nil {
		return err
	}
	sim.finish()
	logrus.Infof("[t=%09d] Simulation ended after %d ticks (%s)", sim.Clock, sim.TickCount, sim.stopReason)
	return nil
}

// RunUntil processes every event scheduled at or before until.
// It can be called repeatedly to step through a run.
func (sim *Simulator) RunUntil(ctx context.Context, until int64) error {
	sim.start()
	sim.ctx = ctx
	for {
		ev := sim.EventQueue.Peek()
		if ev == nil || ev.Timestamp() > until {
			return nil
		}
		sim.EventQueue.PopNext()

		if !sim.stopped {
			if err := ctx.Err(); err != nil {
				sim.stop(fmt.Sprintf("cancelled: %v", err))
			}
		}
		// Once stopped, only in-flight assemblies may still finish. Arrivals
		// already drawn from the source stay queued and count as pending.
		if sim.stopped && ev.Type() != EventTypeAssemblyDone {
			if a, ok := ev.(*ArrivalEvent); ok {
				sim.Belt.Enqueue(NewComponent(a.Component))
				sim.Metrics.Generated++
			}
			continue
		}

		if ev.Timestamp() < sim.Clock {
			return fmt.Errorf("clock went backwards: %d < %d", ev.Timestamp(), sim.Clock)
		}
		sim.Clock = ev.Timestamp()
		logrus.Tracef("[t=%09d] Executing %s", sim.Clock, ev.Type())
		if err := ev.Execute(sim); err != nil {
			return err
		}
	}
}

func (sim *Simulator) start() {
	if sim.started {
		return
	}
	sim.started = true
	sim.Schedule(&TickEvent{baseEvent: sim.base(0)})
	sim.scheduleNextArrival()
}

func (sim *Simulator) stop(reason string) {
	if sim.stopped {
		return
	}
	sim.stopped = true
	sim.stopReason = reason
	logrus.Debugf("[t=%09d] Stopping: %s", sim.Clock, reason)
}

func (sim *Simulator) finish() {
	sim.Metrics.Ticks = sim.TickCount
	sim.Metrics.SimEndedTime = sim.Clock
	sim.Metrics.PendingAtEnd = sim.Belt.Pending()
	for _, w := range sim.Workers {
		left, right := w.Hands()
		if left != nil || right != nil {
			sim.Metrics.HeldAtEnd[w.ID()] = fmt.Sprintf("%s | %s", left, right)
		}
	}
}

func (sim *Simulator) scheduleNextArrival() {
	if sim.stopped {
		return
	}
	a, ok := sim.arrivals.Next()
	if !ok || a.Time > sim.Horizon {
		return
	}
	sim.Schedule(&ArrivalEvent{baseEvent: sim.base(max(a.Time, sim.Clock)), Component: a.Component})
}

func (sim *Simulator) scheduleNextTick(now int64) {
	next := now + sim.TickPeriod
	switch {
	case sim.stopped:
	case sim.MaxTicks > 0 && sim.TickCount >= sim.MaxTicks:
		sim.stop(fmt.Sprintf("reached %d ticks", sim.MaxTicks))
	case next > sim.Horizon:
		sim.stop("reached horizon")
	default:
		sim.Schedule(&TickEvent{baseEvent: sim.base(next)})
	}
}

// processTick advances the belt, then runs the worker phase in the stationary window.
func (sim *Simulator) processTick(now int64) error {
	if sim.pacer != nil {
		if err := sim.pacer.Wait(sim.ctx); err != nil {
			sim.stop(fmt.Sprintf("pacing: %v", err))
			return nil
		}
	}
	sim.TickCount++

	res := sim.Belt.Advance()
	if res.Fallen != nil {
		kind := trace.KindExitDrop
		if res.Fallen.IsFinished() {
			kind = trace.KindDelivered
		}
		sim.emit(itemRecord(now, kind, sim.Belt.ExitIndex(), "", res.Fallen))
	}
	if res.Injected != nil {
		sim.emit(itemRecord(now, trace.KindArrival, sim.Belt.EntryIndex(), "", res.Injected))
	}
	for _, it := range res.Dropped {
		sim.emit(itemRecord(now, trace.KindEntryDrop, sim.Belt.EntryIndex(), "", it))
	}

	if err := sim.workerPhase(now); err != nil {
		return err
	}
	sim.scheduleNextTick(now)
	return nil
}

type workerOutcome struct {
	worker   *Worker
	decision Decision
}

// workerPhase lets every slot's workers act, one goroutine per slot.
// Slots are disjoint and hands are private, so the only shared state is the
// outcome table, indexed by slot and replayed in slot order afterwards.
func (sim *Simulator) workerPhase(now int64) error {
	outcomes := make([][]workerOutcome, sim.Belt.Len())
	err := sim.Belt.Stationary(func() error {
		var g errgroup.Group
		if sim.parallelism > 0 {
			g.SetLimit(sim.parallelism)
		}
		for i, slot := range sim.Belt.Slots() {
			if len(slot.Workers()) == 0 {
				continue
			}
			i, slot := i, slot
			g.Go(func() error {
				for _, w := range slot.Workers() {
					d, err := w.Act(now, slot)
					if err != nil {
						return err
					}
					if d.Kind != DecisionNone {
						outcomes[i] = append(outcomes[i], workerOutcome{worker: w, decision: d})
					}
				}
				return nil
			})
		}
		return g.Wait()
	})
	if err != nil {
		return fmt.Errorf("worker phase at %d: %w", now, err)
	}

	for i, slotOutcomes := range outcomes {
		for _, o := range slotOutcomes {
			sim.applyDecision(now, i, o.worker, o.decision)
		}
	}
	return nil
}

func (sim *Simulator) applyDecision(now int64, slot int, w *Worker, d Decision) {
	switch d.Kind {
	case DecisionPick:
		sim.emit(itemRecord(now, trace.KindPick, slot, w.ID(), d.Item))
		if left, _ := w.Hands(); left.IsFinished() {
			sim.Metrics.ProductsBuilt++
		}
	case DecisionAssemble:
		sim.emit(itemRecord(now, trace.KindPick, slot, w.ID(), d.Item))
		left, right := w.Hands()
		sim.emit(trace.Record{
			Time:     now,
			Kind:     trace.KindMergeStart,
			Slot:     slot,
			WorkerID: w.ID(),
			Item:     fmt.Sprintf("%s | %s", left, right),
			Held:     left.Held().Union(right.Held()).Strings(),
		})
		sim.Schedule(&AssemblyDoneEvent{baseEvent: sim.base(d.Deadline), Worker: w})
	case DecisionPlace:
		sim.emit(itemRecord(now, trace.KindPlace, slot, w.ID(), d.Item))
	}
}

func (sim *Simulator) completeAssembly(now int64, w *Worker) error {
	merged, err := w.CompleteAssembly()
	if err != nil {
		return fmt.Errorf("assembly at %d: %w", now, err)
	}
	if merged.IsFinished() {
		sim.Metrics.ProductsBuilt++
	}
	sim.emit(itemRecord(now, trace.KindMergeComplete, w.SlotIndex(), w.ID(), merged))
	return nil
}

// emit stamps rec with the tick count and fans it out to the trace log,
// the metrics and every sink. Sink failures are logged, never fatal.
func (sim *Simulator) emit(rec trace.Record) {
	rec.Tick = sim.TickCount
	sim.Trace.Record(rec)
	sim.Metrics.observe(rec)
	for _, s := range sim.sinks {
		if err := s.Emit(rec); err != nil {
			logrus.Warnf("event sink: %v", err)
		}
	}
}

func itemRecord(now int64, kind trace.Kind, slot int, workerID string, it *Item) trace.Record {
	return trace.Record{
		Time:     now,
		Kind:     kind,
		Slot:     slot,
		WorkerID: workerID,
		Item:     it.String(),
		Held:     it.Held().Strings(),
	}
}
