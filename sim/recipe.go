package sim

import (
	"fmt"
	"unicode"
)

// Recipe is the fixed bill of materials every worker assembles: a set of
// required components and the symbol of the finished product.
// A Recipe is immutable once built and safe to share between workers.
type Recipe struct {
	required ComponentSet
	symbol   string
}

// NewRecipe validates the component list and product symbol.
// Components must be non-empty, alphanumeric and unique; the symbol must be
// alphanumeric and must not itself be one of the components.
func NewRecipe(symbol string, components []ComponentID) (*Recipe, error) {
	if len(components) == 0 {
		return nil, fmt.Errorf("%w: at least one component is required", ErrInvalidRecipe)
	}
	if !isAlphanumeric(symbol) {
		return nil, fmt.Errorf("%w: finished product %q is invalid", ErrInvalidRecipe, symbol)
	}
	seen := make(map[ComponentID]bool, len(components))
	for _, c := range components {
		if c == "" {
			return nil, fmt.Errorf("%w: supplied an empty component", ErrInvalidRecipe)
		}
		if !isAlphanumeric(string(c)) {
			return nil, fmt.Errorf("%w: component %q is invalid", ErrInvalidRecipe, c)
		}
		if string(c) == symbol {
			return nil, fmt.Errorf("%w: component %q is the finished product symbol", ErrInvalidRecipe, c)
		}
		if seen[c] {
			return nil, fmt.Errorf("%w: component %q is duplicate", ErrInvalidRecipe, c)
		}
		seen[c] = true
	}
	return &Recipe{required: NewComponentSet(components...), symbol: symbol}, nil
}

// Symbol returns the finished product symbol.
func (r *Recipe) Symbol() string { return r.symbol }

// Components returns the required component set.
func (r *Recipe) Components() ComponentSet { return r.required }

// Requires reports whether id is part of the recipe.
func (r *Recipe) Requires(id ComponentID) bool { return r.required.Has(id) }

// Missing returns required − held.
func (r *Recipe) Missing(held ComponentSet) ComponentSet {
	return r.required.Difference(held)
}

// IsComplete reports whether held covers the recipe. Held sets are only ever
// built through Merge, so they never contain foreign ids.
func (r *Recipe) IsComplete(held ComponentSet) bool {
	return r.Missing(held).IsEmpty()
}

func isAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if !unicode.IsLetter(ch) && !unicode.IsDigit(ch) {
			return false
		}
	}
	return true
}
