// Package trace provides the event stream emitted by a belt simulation.
// It has no dependencies on sim/ and stores plain data types.
package trace

// Kind classifies a simulation event.
type Kind string

const (
	KindArrival       Kind = "arrival"        // component injected onto the entry slot
	KindEntryDrop     Kind = "entry_drop"     // arrival lost because the entry slot was occupied
	KindExitDrop      Kind = "exit_drop"      // unfinished item fell off the exit end
	KindDelivered     Kind = "delivered"      // finished product left the belt
	KindPick          Kind = "pick"           // worker took a component from its slot
	KindMergeStart    Kind = "merge_start"    // worker started assembling its two hands
	KindMergeComplete Kind = "merge_complete" // assembly finished; result is in the left hand
	KindPlace         Kind = "place"          // worker put a finished product on its slot
)

// Record is one event of the stream. Time is simulated time in microseconds;
// Tick is the number of belt ticks performed so far.
type Record struct {
	Time     int64    `json:"time_us"`
	Tick     int64    `json:"tick"`
	Kind     Kind     `json:"kind"`
	Slot     int      `json:"slot"`
	WorkerID string   `json:"worker_id,omitempty"`
	Item     string   `json:"item,omitempty"`
	Held     []string `json:"held,omitempty"`
}
