package executor

import (
	"context"
	"sync"
)

// MockField resolves a single field in tests.
type MockField func(ctx context.Context, args map[string]any) (ResolvedValue, error)

// NewMockValueField returns a MockField that always returns the provided value.
func NewMockValueField(val ResolvedValue) MockField {
	return func(ctx context.Context, args map[string]any) (ResolvedValue, error) {
		return val, nil
	}
}

// NewMockErrorField returns a MockField that always returns the provided error.
func NewMockErrorField(err error) MockField {
	return func(ctx context.Context, args map[string]any) (ResolvedValue, error) {
		return ResolvedValue{}, err
	}
}

// Call represents a single field-resolution record.
type Call struct {
	ObjectType string
	Field      string
	Args       map[string]any
}

// MockRegistry holds a resolver registry keyed "ObjectType.Field" and a
// single call log. Registry objects share the log, so declaration-order
// invocation across the whole execution is observable.
type MockRegistry struct {
	mu     sync.Mutex
	fields map[string]MockField
	calls  []Call
}

// NewMockRegistry creates a MockRegistry with the provided fields.
// The map keys are of the form "ObjectType.Field".
func NewMockRegistry(fields map[string]MockField) *MockRegistry {
	m := &MockRegistry{fields: make(map[string]MockField)}
	for k, v := range fields {
		m.fields[k] = v
	}
	return m
}

// SetField registers or updates a field resolver.
func (m *MockRegistry) SetField(objectType, field string, fn MockField) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fields[objectType+"."+field] = fn
}

// Root returns a Resolver for the given object type backed by this registry.
func (m *MockRegistry) Root(typeName string) Resolver {
	return &mockResolver{reg: m, typeName: typeName}
}

// Object is a shorthand for a resolved object backed by this registry.
func (m *MockRegistry) Object(typeName string) ResolvedValue {
	return Object(m.Root(typeName))
}

// Calls returns a copy of the recorded calls in order.
func (m *MockRegistry) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// Reset clears recorded calls (fields remain).
func (m *MockRegistry) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

type mockResolver struct {
	reg      *MockRegistry
	typeName string
}

func (r *mockResolver) TypeName() string { return r.typeName }

func (r *mockResolver) ResolveField(ctx context.Context, field string, args map[string]any) (ResolvedValue, error) {
	key := r.typeName + "." + field

	r.reg.mu.Lock()
	fn := r.reg.fields[key]
	r.reg.calls = append(r.reg.calls, Call{ObjectType: r.typeName, Field: field, Args: args})
	r.reg.mu.Unlock()

	if fn == nil {
		return Null(), nil
	}
	return fn(ctx, args)
}
