package sim

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// BeltPhase is the belt's position in its tick cycle.
type BeltPhase int32

const (
	// PhaseStationary is the only phase in which workers and arrivals touch slots.
	PhaseStationary BeltPhase = iota
	// PhaseAdvancing is the transient phase during which slot contents shift.
	PhaseAdvancing
)

func (p BeltPhase) String() string {
	if p == PhaseAdvancing {
		return "advancing"
	}
	return "stationary"
}

// AdvanceResult reports what happened to items during one belt tick.
type AdvanceResult struct {
	Fallen   *Item   // item pushed off the exit end, nil if the exit slot was empty
	Injected *Item   // arrival placed on the entry slot, nil if none
	Dropped  []*Item // arrivals lost because the entry slot was occupied
}

// Belt is a fixed-length linear sequence of slots that shifts its contents
// one position from entry toward exit on every tick.
//
// Advance holds the belt exclusively; Stationary lets any number of worker
// phases read and mutate slots concurrently. No tick can start while a worker
// phase is in progress and no worker observes a slot mid-shift.
type Belt struct {
	mu      sync.RWMutex
	phase   atomic.Int32
	slots   []*Slot
	entry   int
	exit    int
	pending []*Item
}

// NewBelt creates an empty belt. entry and exit must be the two ends of the
// belt; the belt moves from entry toward exit.
func NewBelt(length, entry, exit int) (*Belt, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: belt length must be positive, got %d", ErrInvalidConfiguration, length)
	}
	if !beltEnds(length, entry, exit) {
		return nil, fmt.Errorf("%w: entry (%d) and exit (%d) must be the two ends of a belt of length %d",
			ErrInvalidConfiguration, entry, exit, length)
	}
	b := &Belt{
		slots: make([]*Slot, length),
		entry: entry,
		exit:  exit,
	}
	for i := range b.slots {
		b.slots[i] = newSlot(i)
	}
	return b, nil
}

// beltEnds reports whether entry and exit are the two ends of a belt of the given length.
func beltEnds(length, entry, exit int) bool {
	last := length - 1
	return (entry == 0 && exit == last) || (entry == last && exit == 0)
}

// Len returns the number of slots.
func (b *Belt) Len() int { return len(b.slots) }

// Slot returns the slot at index i.
func (b *Belt) Slot(i int) *Slot { return b.slots[i] }

// Slots returns all slots in index order.
func (b *Belt) Slots() []*Slot { return b.slots }

// EntryIndex returns the slot arrivals are injected into.
func (b *Belt) EntryIndex() int { return b.entry }

// ExitIndex returns the slot items fall off from.
func (b *Belt) ExitIndex() int { return b.exit }

// Phase returns the current tick phase.
func (b *Belt) Phase() BeltPhase { return BeltPhase(b.phase.Load()) }

// Enqueue registers an arrival that will be injected on the next tick.
func (b *Belt) Enqueue(item *Item) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, item)
}

// Pending returns the number of arrivals waiting for the next tick.
func (b *Belt) Pending() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.pending)
}

// Advance performs one tick: shift every item one slot toward the exit,
// then inject the oldest pending arrival into the entry slot. Every other
// pending arrival is dropped rather than queued.
func (b *Belt) Advance() AdvanceResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.phase.Store(int32(PhaseAdvancing))
	defer b.phase.Store(int32(PhaseStationary))

	var res AdvanceResult
	step := 1
	if b.exit < b.entry {
		step = -1
	}
	res.Fallen = b.slots[b.exit].item
	for i := b.exit; i != b.entry; i -= step {
		b.slots[i].item = b.slots[i-step].item
	}
	b.slots[b.entry].item = nil

	for _, item := range b.pending {
		if err := b.slots[b.entry].Place(item); err != nil {
			res.Dropped = append(res.Dropped, item)
			continue
		}
		res.Injected = item
	}
	b.pending = b.pending[:0]
	return res
}

// Stationary runs fn while the belt is held in its stationary phase.
// Several Stationary calls may overlap; Advance waits for all of them.
func (b *Belt) Stationary(fn func() error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return fn()
}

// Items returns a snapshot of slot contents in index order.
func (b *Belt) Items() []*Item {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*Item, len(b.slots))
	for i, s := range b.slots {
		out[i] = s.Peek()
	}
	return out
}
