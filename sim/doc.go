// Package sim provides the core discrete-event simulation engine for beltsim.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - worker.go: the pick/assemble/place state machine of one worker
//   - belt.go: tick movement, injection at the entry slot, and the stationary window
//   - simulator.go: the event loop, the concurrent worker phase, and event emission
//
// # Model
//
// A Recipe names the set of components a product needs. Items on the belt are
// raw components; workers hold partial builds in their left hand and put only
// finished products back on the belt. Merge is the single place where builds
// grow, and it refuses any combination the recipe does not allow.
//
// # Time and ordering
//
// One logical clock (µs) drives three event types. At equal timestamps
// assembly completions run before arrivals, and arrivals before the belt
// tick, so a worker whose assembly ends on a tick boundary acts on that tick
// and an arrival due on a tick is injected by it.
//
// During a tick the belt first shifts (Advance, exclusive), then every slot's
// workers act in their own goroutine inside Belt.Stationary. Outcomes are
// applied in slot order so the emitted event stream is deterministic.
//
// Sub-packages:
//   - sim/workload/: arrival processes and scripted replay
//   - sim/trace/: event records, in-memory log, and sinks
package sim
