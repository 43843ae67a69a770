package sim

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBelt(t *testing.T, length, entry, exit int) *Belt {
	t.Helper()
	b, err := NewBelt(length, entry, exit)
	require.NoError(t, err)
	return b
}

func TestSlot_PlaceTakePeek(t *testing.T) {
	s := newSlot(0)
	a := NewComponent("A")

	// GIVEN an empty slot
	assert.Nil(t, s.Peek())
	assert.Nil(t, s.Take())

	// WHEN an item is placed
	require.NoError(t, s.Place(a))

	// THEN a second place fails without overwriting
	err := s.Place(NewComponent("B"))
	assert.True(t, errors.Is(err, ErrSlotOccupied))
	assert.Same(t, a, s.Peek())

	// AND take empties the slot
	assert.Same(t, a, s.Take())
	assert.Nil(t, s.Peek())
}

func TestSlot_TakeIf_RespectsPredicate(t *testing.T) {
	s := newSlot(0)
	require.NoError(t, s.Place(NewComponent("X")))

	assert.Nil(t, s.TakeIf(func(it *Item) bool { return it.ID() == "A" }))
	assert.NotNil(t, s.Peek(), "rejected item must stay on the slot")
	assert.NotNil(t, s.TakeIf(func(it *Item) bool { return it.ID() == "X" }))
	assert.Nil(t, s.Peek())
}

func TestSlot_ConcurrentTakeIf_SingleWinner(t *testing.T) {
	// GIVEN one item and many concurrent takers
	s := newSlot(0)
	require.NoError(t, s.Place(NewComponent("A")))
	var wins atomic.Int32
	var wg sync.WaitGroup

	// WHEN they race
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.TakeIf(func(*Item) bool { return true }) != nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	// THEN exactly one wins
	assert.Equal(t, int32(1), wins.Load())
}

func TestNewBelt_Validation(t *testing.T) {
	tests := []struct {
		name                string
		length, entry, exit int
		wantErr             bool
	}{
		{"forward", 5, 0, 4, false},
		{"reverse", 5, 4, 0, false},
		{"single slot", 1, 0, 0, false},
		{"zero length", 0, 0, 0, true},
		{"exit in the middle", 5, 0, 2, true},
		{"entry equals exit", 5, 0, 0, true},
		{"out of range", 5, 0, 5, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBelt(tc.length, tc.entry, tc.exit)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfiguration)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBelt_Advance_ShiftsTowardExit(t *testing.T) {
	// GIVEN a 3-slot belt with A at the entry and B at the exit
	b := mustBelt(t, 3, 0, 2)
	a, bb := NewComponent("A"), NewComponent("B")
	require.NoError(t, b.Slot(0).Place(a))
	require.NoError(t, b.Slot(2).Place(bb))

	// WHEN it advances
	res := b.Advance()

	// THEN B falls off and A moves one slot
	assert.Same(t, bb, res.Fallen)
	assert.Equal(t, []*Item{nil, a, nil}, b.Items())
	assert.Nil(t, res.Injected)
	assert.Empty(t, res.Dropped)
	assert.Equal(t, PhaseStationary, b.Phase())
}

func TestBelt_Advance_ReverseDirection(t *testing.T) {
	b := mustBelt(t, 3, 2, 0)
	a := NewComponent("A")
	require.NoError(t, b.Slot(2).Place(a))

	b.Advance()
	assert.Equal(t, []*Item{nil, a, nil}, b.Items())
	b.Advance()
	assert.Equal(t, []*Item{a, nil, nil}, b.Items())
	res := b.Advance()
	assert.Same(t, a, res.Fallen)
}

func TestBelt_Advance_InjectsFirstPendingDropsRest(t *testing.T) {
	// GIVEN three arrivals queued before one tick
	b := mustBelt(t, 3, 0, 2)
	first, second, third := NewComponent("A"), NewComponent("B"), NewComponent("C")
	b.Enqueue(first)
	b.Enqueue(second)
	b.Enqueue(third)
	require.Equal(t, 3, b.Pending())

	// WHEN the belt ticks
	res := b.Advance()

	// THEN the oldest is injected and the others are dropped at entry
	assert.Same(t, first, res.Injected)
	assert.Equal(t, []*Item{second, third}, res.Dropped)
	assert.Same(t, first, b.Slot(0).Peek())
	assert.Equal(t, 0, b.Pending())
}

func TestBelt_SingleSlot_FallsOffThenInjects(t *testing.T) {
	b := mustBelt(t, 1, 0, 0)
	a, c := NewComponent("A"), NewComponent("C")
	require.NoError(t, b.Slot(0).Place(a))
	b.Enqueue(c)

	res := b.Advance()

	assert.Same(t, a, res.Fallen)
	assert.Same(t, c, res.Injected)
}

func TestBelt_Advance_WaitsForStationaryWindow(t *testing.T) {
	// GIVEN a worker phase in progress
	b := mustBelt(t, 2, 0, 1)
	inside := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = b.Stationary(func() error {
			close(inside)
			<-release
			return nil
		})
	}()
	<-inside

	// WHEN a tick is requested
	advanced := make(chan struct{})
	go func() {
		b.Advance()
		close(advanced)
	}()

	// THEN it cannot start until the phase ends
	select {
	case <-advanced:
		t.Fatal("belt advanced during a stationary window")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	select {
	case <-advanced:
	case <-time.After(2 * time.Second):
		t.Fatal("belt never advanced after the stationary window closed")
	}
}

func TestBelt_Stationary_PropagatesError(t *testing.T) {
	b := mustBelt(t, 2, 0, 1)
	boom := errors.New("boom")
	assert.ErrorIs(t, b.Stationary(func() error { return boom }), boom)
}
