package sim

import (
	"fmt"
	"sync"
)

// Slot is one position on the belt. It holds at most one item and carries the
// ordered list of workers stationed next to it.
//
// Thread-safety: Place, Take, TakeIf and Peek are safe for concurrent use.
// The belt shifts slot contents only while no worker phase is running.
type Slot struct {
	mu      sync.Mutex
	index   int
	item    *Item
	workers []*Worker
}

func newSlot(index int) *Slot {
	return &Slot{index: index}
}

// Index returns the slot position on the belt.
func (s *Slot) Index() int { return s.index }

// Workers returns the workers assigned to this slot, in priority order.
func (s *Slot) Workers() []*Worker { return s.workers }

// Place puts item on the slot. It fails with ErrSlotOccupied if the slot is not empty.
func (s *Slot) Place(item *Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.item != nil {
		return fmt.Errorf("%w: slot %d holds %s", ErrSlotOccupied, s.index, s.item)
	}
	s.item = item
	return nil
}

// Take removes and returns the current item, leaving the slot empty.
func (s *Slot) Take() *Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.item
	s.item = nil
	return it
}

// TakeIf removes and returns the current item only if pred accepts it.
// The check and the removal are atomic, so at most one caller wins an item.
func (s *Slot) TakeIf(pred func(*Item) bool) *Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.item == nil || !pred(s.item) {
		return nil
	}
	it := s.item
	s.item = nil
	return it
}

// Peek returns the current item without removing it.
func (s *Slot) Peek() *Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.item
}
