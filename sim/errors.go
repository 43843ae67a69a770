package sim

import "errors"

var (
	// ErrInvalidConfiguration is returned at startup when a Config cannot describe a runnable line.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidRecipe is returned by NewRecipe for an empty, duplicated or malformed component list.
	ErrInvalidRecipe = errors.New("invalid recipe")

	// ErrInvalidMerge is returned by Merge when the operands cannot be combined under the recipe.
	// Reaching it during a run means the worker pick precondition was broken.
	ErrInvalidMerge = errors.New("invalid merge")

	// ErrSlotOccupied is returned by Slot.Place when the slot already holds an item.
	// It is an expected outcome: callers drop the item or retry on a later tick.
	ErrSlotOccupied = errors.New("slot occupied")
)
