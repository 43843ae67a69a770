package sim

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/inference-sim/beltsim/sim/trace"
)

// RecipeConfig names the components of the product and its symbol.
type RecipeConfig struct {
	Product    string   `validate:"required"`
	Components []string `validate:"required,min=1,dive,required"`
}

// BeltConfig describes the belt geometry and speed.
type BeltConfig struct {
	Length int `validate:"gt=0"`
	// TickPeriod is the µs between two belt moves.
	TickPeriod int64 `validate:"gt=0"`
	EntryIndex int   `validate:"gte=0"`
	ExitIndex  int   `validate:"gte=0"`
}

// WorkerConfig assigns workers to slots.
// Every slot gets PerSlot workers unless Slots overrides its count.
type WorkerConfig struct {
	PerSlot int `validate:"gte=0"`
	// Slots maps a slot index to its worker count.
	Slots map[int]int
	// AssemblyDuration is the µs one merge takes.
	AssemblyDuration int64 `validate:"gte=0"`
}

// RunConfig bounds a run and selects how it is observed.
type RunConfig struct {
	Seed int64
	// Horizon is in simulated µs; no tick starts after it.
	Horizon int64 `validate:"gt=0"`
	// MaxTicks of 0 bounds the run by Horizon only.
	MaxTicks int64 `validate:"gte=0"`
	// Realtime paces ticks against the wall clock.
	Realtime bool
	// Speed is the realtime speed-up factor (0 = 1x).
	Speed      float64 `validate:"gte=0"`
	TraceLevel string
}

// Config is the fully resolved, immutable input of a simulation run.
type Config struct {
	Recipe  RecipeConfig
	Belt    BeltConfig
	Workers WorkerConfig
	Run     RunConfig
}

// NewRecipe builds the Recipe described by c.
func (c RecipeConfig) NewRecipe() (*Recipe, error) {
	ids := make([]ComponentID, len(c.Components))
	for i, s := range c.Components {
		ids[i] = ComponentID(s)
	}
	return NewRecipe(c.Product, ids)
}

// WorkersAt returns the number of workers assigned to slot i.
func (c WorkerConfig) WorkersAt(i int) int {
	if n, ok := c.Slots[i]; ok {
		return n
	}
	return c.PerSlot
}

// TotalWorkers returns the number of workers on a belt of the given length.
func (c WorkerConfig) TotalWorkers(length int) int {
	total := 0
	for i := 0; i < length; i++ {
		total += c.WorkersAt(i)
	}
	return total
}

var validate = validator.New()

// Validate checks field constraints and cross-field rules.
// Every failure wraps ErrInvalidConfiguration.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfiguration, formatValidationError(err))
	}
	if !trace.IsValidTraceLevel(c.Run.TraceLevel) {
		return fmt.Errorf("%w: unknown trace level %q; valid: none, events", ErrInvalidConfiguration, c.Run.TraceLevel)
	}
	if _, err := c.Recipe.NewRecipe(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	last := c.Belt.Length - 1
	if c.Belt.EntryIndex > last || c.Belt.ExitIndex > last {
		return fmt.Errorf("%w: entry (%d) and exit (%d) must be within [0, %d]",
			ErrInvalidConfiguration, c.Belt.EntryIndex, c.Belt.ExitIndex, last)
	}
	if !beltEnds(c.Belt.Length, c.Belt.EntryIndex, c.Belt.ExitIndex) {
		return fmt.Errorf("%w: entry (%d) and exit (%d) must be the two ends of a belt of length %d",
			ErrInvalidConfiguration, c.Belt.EntryIndex, c.Belt.ExitIndex, c.Belt.Length)
	}
	for slot, n := range c.Workers.Slots {
		if slot < 0 || slot > last {
			return fmt.Errorf("%w: workers assigned to slot %d outside [0, %d]", ErrInvalidConfiguration, slot, last)
		}
		if n < 0 {
			return fmt.Errorf("%w: slot %d has a negative worker count %d", ErrInvalidConfiguration, slot, n)
		}
	}
	if c.Workers.TotalWorkers(c.Belt.Length) == 0 {
		return fmt.Errorf("%w: no worker is assigned to any slot", ErrInvalidConfiguration)
	}
	return nil
}

// formatValidationError converts validator errors into readable messages
func formatValidationError(err error) string {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	messages := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		messages = append(messages, fmt.Sprintf("field '%s' failed validation: %s (value: '%v')",
			e.Namespace(), e.Tag(), e.Value()))
	}
	return strings.Join(messages, "; ")
}
