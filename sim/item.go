package sim

import "fmt"

// ItemKind tags the variant held by an Item.
type ItemKind int

const (
	// ItemComponent is a raw component straight from the arrival stream.
	ItemComponent ItemKind = iota
	// ItemPartial is an intermediate build: a strict subset of the recipe.
	ItemPartial
	// ItemFinished is a complete product; it can no longer be assembled.
	ItemFinished
)

func (k ItemKind) String() string {
	switch k {
	case ItemComponent:
		return "component"
	case ItemPartial:
		return "partial"
	case ItemFinished:
		return "finished"
	default:
		return fmt.Sprintf("ItemKind(%d)", int(k))
	}
}

// Item is an immutable value travelling on the belt or held in a hand.
// Items are passed by pointer; nil means "no item".
type Item struct {
	kind   ItemKind
	id     ComponentID  // set for ItemComponent
	held   ComponentSet // incorporated components, for every kind
	symbol string       // set for ItemFinished
}

// NewComponent returns a raw component item.
func NewComponent(id ComponentID) *Item {
	return &Item{kind: ItemComponent, id: id, held: NewComponentSet(id)}
}

func newFinished(r *Recipe, held ComponentSet) *Item {
	return &Item{kind: ItemFinished, held: held, symbol: r.symbol}
}

// Kind returns the item variant.
func (it *Item) Kind() ItemKind { return it.kind }

// ID returns the component id of a raw component, or "" for builds.
func (it *Item) ID() ComponentID { return it.id }

// Symbol returns the product symbol of a finished item, or "".
func (it *Item) Symbol() string { return it.symbol }

// Held returns the set of components incorporated in the item.
func (it *Item) Held() ComponentSet { return it.held }

// IsComponent reports whether it is a non-nil raw component.
func (it *Item) IsComponent() bool { return it != nil && it.kind == ItemComponent }

// IsFinished reports whether it is a non-nil finished product.
func (it *Item) IsFinished() bool { return it != nil && it.kind == ItemFinished }

// String renders the snapshot used in trace records: "A", "A+B" or "P".
func (it *Item) String() string {
	if it == nil {
		return ""
	}
	switch it.kind {
	case ItemComponent:
		return string(it.id)
	case ItemFinished:
		return it.symbol
	default:
		return it.held.String()
	}
}

// Merge combines two unfinished items into a bigger build.
// The operands must be components or partials with disjoint held sets whose
// union stays inside the recipe. The result is Finished when the union equals
// the recipe, Partial otherwise.
func Merge(r *Recipe, a, b *Item) (*Item, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: missing operand (%v | %v)", ErrInvalidMerge, a, b)
	}
	if a.kind == ItemFinished || b.kind == ItemFinished {
		return nil, fmt.Errorf("%w: cannot assemble a finished product (%v | %v)", ErrInvalidMerge, a, b)
	}
	if a.held.Intersects(b.held) {
		return nil, fmt.Errorf("%w: repeated component in (%v | %v)", ErrInvalidMerge, a, b)
	}
	union := a.held.Union(b.held)
	if !union.SubsetOf(r.required) {
		return nil, fmt.Errorf("%w: (%v | %v) is not part of recipe %s", ErrInvalidMerge, a, b, r.symbol)
	}
	if r.IsComplete(union) {
		return newFinished(r, union), nil
	}
	return &Item{kind: ItemPartial, held: union}, nil
}
