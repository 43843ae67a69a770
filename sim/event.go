package sim

// EventType orders events that share a timestamp.
type EventType int

const (
	// EventTypeAssemblyDone runs first so a worker finishing exactly on a tick acts on that tick.
	EventTypeAssemblyDone EventType = iota
	// EventTypeArrival runs before the tick so an arrival due on a tick is injected by it.
	EventTypeArrival
	// EventTypeTick advances the belt and runs the worker phase.
	EventTypeTick
)

func (t EventType) String() string {
	switch t {
	case EventTypeAssemblyDone:
		return "AssemblyDone"
	case EventTypeArrival:
		return "Arrival"
	default:
		return "Tick"
	}
}

// Event defines the interface for all simulation events.
// Each event has a Timestamp (simulated µs), a Type used to order
// simultaneous events, a per-simulator sequence number as final tie-breaker,
// and an Execute method that advances simulation state.
type Event interface {
	Timestamp() int64
	Type() EventType
	Seq() uint64
	Execute(*Simulator) error
}

type baseEvent struct {
	time int64
	seq  uint64
}

func (e *baseEvent) Timestamp() int64 { return e.time }
func (e *baseEvent) Seq() uint64      { return e.seq }

// TickEvent moves the belt one slot and lets every idle worker act.
type TickEvent struct {
	baseEvent
}

func (e *TickEvent) Type() EventType { return EventTypeTick }

// Execute runs one belt tick.
func (e *TickEvent) Execute(sim *Simulator) error {
	return sim.processTick(e.time)
}

// ArrivalEvent queues a component for injection on the next tick.
type ArrivalEvent struct {
	baseEvent
	Component ComponentID
}

func (e *ArrivalEvent) Type() EventType { return EventTypeArrival }

// Execute queues the arrival and schedules the next one.
func (e *ArrivalEvent) Execute(sim *Simulator) error {
	sim.Belt.Enqueue(NewComponent(e.Component))
	sim.Metrics.Generated++
	sim.scheduleNextArrival()
	return nil
}

// AssemblyDoneEvent is the wake-up of a worker whose assembly deadline has elapsed.
type AssemblyDoneEvent struct {
	baseEvent
	Worker *Worker
}

func (e *AssemblyDoneEvent) Type() EventType { return EventTypeAssemblyDone }

// Execute merges the worker's hands.
func (e *AssemblyDoneEvent) Execute(sim *Simulator) error {
	return sim.completeAssembly(e.time, e.Worker)
}
