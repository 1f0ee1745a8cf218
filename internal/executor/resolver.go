package executor

import "context"

// Resolver is the host integration surface for field resolution.
//
// General contract
//   - TypeName reports the concrete object type name for the value this
//     resolver represents. For abstract-typed fields the executor checks it
//     against the declared interface or union before recursing.
//   - ResolveField resolves one field on this object. args are already coerced
//     to JSON-shaped Go values per the schema. Return a ResolvedValue or an
//     error; errors are converted into located GraphQL errors and, for
//     Non-Null fields, propagate null up to the nearest nullable ancestor.
//   - Fields within one object, and items within one list, are resolved
//     strictly in declaration order. No two calls on the same execution ever
//     run concurrently; implementations only need to be concurrency-safe if
//     they are shared across executions.
//   - Implementations must not mutate args.
type Resolver interface {
	TypeName() string
	ResolveField(ctx context.Context, field string, args map[string]any) (ResolvedValue, error)
}

// Sequence produces list items one at a time, possibly asynchronously.
// The executor drains it in order: Next, then Item, until Next returns false.
type Sequence interface {
	Next(ctx context.Context) bool
	Item() (ResolvedValue, error)
}

type resolvedKind int

const (
	kindLeaf resolvedKind = iota
	kindObject
	kindList
	kindSkip
	kindThunk
)

// ResolvedValue is a resolver's return value: a leaf JSON value, an object
// capability, a sequence of list items, a skip marker, or a deferred thunk.
// Thunks are forced exactly once at the point of invocation, so the rest of
// the completion algorithm never sees one.
type ResolvedValue struct {
	kind   resolvedKind
	leaf   any
	object Resolver
	seq    Sequence
	thunk  func(ctx context.Context) (ResolvedValue, error)
}

// Leaf wraps a JSON-shaped Go value (string, bool, int64, float64, nil, or
// any shape for custom scalars).
func Leaf(v any) ResolvedValue { return ResolvedValue{kind: kindLeaf, leaf: v} }

// Null is the explicit null leaf.
func Null() ResolvedValue { return Leaf(nil) }

// Object wraps a resolver for a nested object value.
func Object(r Resolver) ResolvedValue { return ResolvedValue{kind: kindObject, object: r} }

// List wraps a sequence of list items.
func List(seq Sequence) ResolvedValue { return ResolvedValue{kind: kindList, seq: seq} }

// ListOf builds a list value from already-resolved items.
func ListOf(values ...ResolvedValue) ResolvedValue {
	items := make([]ListItem, len(values))
	for i, v := range values {
		items[i] = ListItem{Value: v}
	}
	return List(SequenceOf(items...))
}

// Skip marks a field as contributing nothing to the response.
func Skip() ResolvedValue { return ResolvedValue{kind: kindSkip} }

// Thunk defers resolution until the executor forces it.
func Thunk(fn func(ctx context.Context) (ResolvedValue, error)) ResolvedValue {
	return ResolvedValue{kind: kindThunk, thunk: fn}
}

// IsSkip reports whether the value is the skip marker.
func (v ResolvedValue) IsSkip() bool { return v.kind == kindSkip }

// ListItem is one element of an in-memory sequence. Err marks an item whose
// production failed; the other items are unaffected.
type ListItem struct {
	Value ResolvedValue
	Err   error
}

// Item wraps a successful list item.
func Item(v ResolvedValue) ListItem { return ListItem{Value: v} }

// ErrItem wraps a failed list item.
func ErrItem(err error) ListItem { return ListItem{Err: err} }

// SequenceOf returns a Sequence over the given items.
func SequenceOf(items ...ListItem) Sequence {
	return &sliceSequence{items: items}
}

type sliceSequence struct {
	items []ListItem
	pos   int
}

func (s *sliceSequence) Next(ctx context.Context) bool {
	if s.pos < len(s.items) {
		s.pos++
		return true
	}
	return false
}

func (s *sliceSequence) Item() (ResolvedValue, error) {
	it := s.items[s.pos-1]
	return it.Value, it.Err
}

// forceValue normalizes thunks so completion only ever sees the other kinds.
func forceValue(ctx context.Context, v ResolvedValue, err error) (ResolvedValue, error) {
	for err == nil && v.kind == kindThunk {
		v, err = v.thunk(ctx)
	}
	return v, err
}
