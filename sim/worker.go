package sim

import "fmt"

// WorkerState is the assembly state of a worker.
type WorkerState int

const (
	// WorkerIdle workers observe their slot on every tick.
	WorkerIdle WorkerState = iota
	// WorkerAssembling workers are merging their two hands and ignore the belt.
	WorkerAssembling
)

func (s WorkerState) String() string {
	if s == WorkerAssembling {
		return "assembling"
	}
	return "idle"
}

// DecisionKind describes what a worker did with its slot during one tick.
type DecisionKind int

const (
	DecisionNone     DecisionKind = iota // nothing useful on the slot, or still assembling
	DecisionPick                         // took a component into the left hand, starting a build
	DecisionAssemble                     // took the missing component into the right hand and started assembling
	DecisionPlace                        // put a finished product on the slot
)

// Decision is the outcome of Worker.Act.
type Decision struct {
	Kind     DecisionKind
	Item     *Item // item taken or placed
	Deadline int64 // assembly completion time, for DecisionAssemble
}

// Worker is an actor stationed at one slot with two hands.
// Intermediate builds always live in the left hand; the right hand only ever
// holds the component being assembled into it.
//
// Thread-safety: a worker is driven by one goroutine at a time (its slot's
// worker phase, or the event loop for assembly completion). Its hands are
// never touched by any other actor.
type Worker struct {
	id               string
	slot             int
	recipe           *Recipe
	assemblyDuration int64

	left     *Item
	right    *Item
	state    WorkerState
	deadline int64
}

// NewWorker creates an idle worker with empty hands.
func NewWorker(id string, slot int, recipe *Recipe, assemblyDuration int64) *Worker {
	return &Worker{
		id:               id,
		slot:             slot,
		recipe:           recipe,
		assemblyDuration: assemblyDuration,
	}
}

// ID returns the worker identifier, e.g. "W3".
func (w *Worker) ID() string { return w.id }

// SlotIndex returns the slot the worker is stationed at.
func (w *Worker) SlotIndex() int { return w.slot }

// State returns the current assembly state.
func (w *Worker) State() WorkerState { return w.state }

// Deadline returns the completion time of the assembly in flight.
// Only meaningful while assembling.
func (w *Worker) Deadline() int64 { return w.deadline }

// Hands returns the items held in the left and right hand.
func (w *Worker) Hands() (left, right *Item) { return w.left, w.right }

// Act evaluates the worker's slot for one stationary window.
//
// Priority order:
//  1. a finished product in the left hand is placed as soon as the slot is empty;
//  2. an empty left hand takes any component the recipe requires;
//  3. a build in the left hand takes only a component it is still missing,
//     into the right hand, and starts assembling;
//  4. otherwise the item passes by.
//
// Assembling workers never touch the slot.
func (w *Worker) Act(now int64, slot *Slot) (Decision, error) {
	if w.state == WorkerAssembling {
		return Decision{}, nil
	}
	if w.right != nil {
		return Decision{}, fmt.Errorf("worker %s is idle with (%s | %s) in hand", w.id, w.left, w.right)
	}

	switch {
	case w.left.IsFinished():
		if slot.Peek() != nil {
			return Decision{}, nil
		}
		if err := slot.Place(w.left); err != nil {
			// Lost the slot to another worker this tick; retry on a later one.
			return Decision{}, nil
		}
		placed := w.left
		w.left = nil
		return Decision{Kind: DecisionPlace, Item: placed}, nil

	case w.left == nil:
		picked := slot.TakeIf(func(it *Item) bool {
			return it.IsComponent() && w.recipe.Requires(it.ID())
		})
		if picked == nil {
			return Decision{}, nil
		}
		w.left = picked
		if w.recipe.IsComplete(picked.Held()) {
			w.left = newFinished(w.recipe, picked.Held())
		}
		return Decision{Kind: DecisionPick, Item: picked}, nil

	default:
		missing := w.recipe.Missing(w.left.Held())
		picked := slot.TakeIf(func(it *Item) bool {
			return it.IsComponent() && missing.Has(it.ID())
		})
		if picked == nil {
			return Decision{}, nil
		}
		w.right = picked
		w.state = WorkerAssembling
		w.deadline = now + w.assemblyDuration
		return Decision{Kind: DecisionAssemble, Item: picked, Deadline: w.deadline}, nil
	}
}

// CompleteAssembly merges the two hands into the left hand and returns the worker to idle.
// The error wraps ErrInvalidMerge if the hands could not be combined.
func (w *Worker) CompleteAssembly() (*Item, error) {
	if w.state != WorkerAssembling {
		return nil, fmt.Errorf("worker %s completed an assembly while %s", w.id, w.state)
	}
	merged, err := Merge(w.recipe, w.left, w.right)
	if err != nil {
		return nil, fmt.Errorf("worker %s: %w", w.id, err)
	}
	w.left = merged
	w.right = nil
	w.state = WorkerIdle
	return merged, nil
}
