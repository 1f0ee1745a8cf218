package executor

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var ignoreLocations = cmpopts.IgnoreFields(GraphQLError{}, "Locations")

// Pattern: Result comparison
func TestCompleteValue_NonNull_Propagation(t *testing.T) {
	sdl := `
		type Query { obj: Obj }
		type Obj { a: String! b: String! }
	`

	t.Run("Resolver error", func(t *testing.T) {
		sch := mustBuildSchema(t, sdl)
		reg := NewMockRegistry(map[string]MockField{
			"Obj.a": NewMockErrorField(fmt.Errorf("boom")),
			"Obj.b": NewMockValueField(Leaf("B")),
		})
		reg.SetField("Query", "obj", NewMockValueField(reg.Object("Obj")))

		exec := NewExecutor(sch)
		doc := mustParseQuery(t, "{ obj { a b } }")

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, reg.Root("Query"))

		wantRes := &Response{
			Data:    map[string]any{"obj": nil},
			Errors:  []GraphQLError{{Message: "boom", Path: Path{"obj", "a"}}},
			HasData: true,
		}
		if diff := cmp.Diff(wantRes, gotRes, ignoreLocations); diff != "" {
			t.Fatalf("Response mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Resolver returns null", func(t *testing.T) {
		sch := mustBuildSchema(t, sdl)
		reg := NewMockRegistry(map[string]MockField{
			"Obj.a": NewMockValueField(Null()),
			"Obj.b": NewMockValueField(Leaf("B")),
		})
		reg.SetField("Query", "obj", NewMockValueField(reg.Object("Obj")))

		exec := NewExecutor(sch)
		doc := mustParseQuery(t, "{ obj { a b } }")

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, reg.Root("Query"))

		wantRes := &Response{
			Data:    map[string]any{"obj": nil},
			Errors:  []GraphQLError{{Message: "Cannot return null for non-nullable field obj.a", Path: Path{"obj", "a"}}},
			HasData: true,
		}
		if diff := cmp.Diff(wantRes, gotRes, ignoreLocations); diff != "" {
			t.Fatalf("Response mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Propagation reaches the root", func(t *testing.T) {
		sch := mustBuildSchema(t, "type Query { a: Int! }")
		reg := NewMockRegistry(map[string]MockField{
			"Query.a": NewMockErrorField(fmt.Errorf("boom")),
		})

		exec := NewExecutor(sch)
		doc := mustParseQuery(t, "{ a }")

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, reg.Root("Query"))

		wantRes := &Response{
			Data:    nil,
			Errors:  []GraphQLError{{Message: "boom", Path: Path{"a"}}},
			HasData: true,
		}
		if diff := cmp.Diff(wantRes, gotRes, ignoreLocations); diff != "" {
			t.Fatalf("Response mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Nullable ancestor absorbs", func(t *testing.T) {
		// The failure sits two non-null levels deep; data nullifies at the
		// nullable mid field, and exactly one error is recorded.
		sch := mustBuildSchema(t, `
			type Query { mid: Mid }
			type Mid { inner: Inner! }
			type Inner { leaf: String! }
		`)
		reg := NewMockRegistry(map[string]MockField{
			"Inner.leaf": NewMockErrorField(fmt.Errorf("deep failure")),
		})
		reg.SetField("Query", "mid", NewMockValueField(reg.Object("Mid")))
		reg.SetField("Mid", "inner", NewMockValueField(reg.Object("Inner")))

		exec := NewExecutor(sch)
		doc := mustParseQuery(t, "{ mid { inner { leaf } } }")

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, reg.Root("Query"))

		wantRes := &Response{
			Data:    map[string]any{"mid": nil},
			Errors:  []GraphQLError{{Message: "deep failure", Path: Path{"mid", "inner", "leaf"}}},
			HasData: true,
		}
		if diff := cmp.Diff(wantRes, gotRes, ignoreLocations); diff != "" {
			t.Fatalf("Response mismatch (-want +got):\n%s", diff)
		}
	})
}

// Pattern: Result comparison
func TestCompleteValue_List_Nullability(t *testing.T) {
	t.Run("Nullable items keep siblings on item error", func(t *testing.T) {
		sch := mustBuildSchema(t, "type Query { f: [Int] }")
		reg := NewMockRegistry(map[string]MockField{
			"Query.f": NewMockValueField(List(SequenceOf(
				Item(Leaf(int64(1))),
				ErrItem(fmt.Errorf("item failed")),
				Item(Leaf(int64(3))),
			))),
		})

		exec := NewExecutor(sch)
		doc := mustParseQuery(t, "{ f }")

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, reg.Root("Query"))

		wantRes := &Response{
			Data:    map[string]any{"f": []any{int64(1), nil, int64(3)}},
			Errors:  []GraphQLError{{Message: "item failed", Path: Path{"f", 1}}},
			HasData: true,
		}
		if diff := cmp.Diff(wantRes, gotRes, ignoreLocations); diff != "" {
			t.Fatalf("Response mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Non-null items nullify the whole list on item error", func(t *testing.T) {
		sch := mustBuildSchema(t, "type Query { f: [Int!] }")
		reg := NewMockRegistry(map[string]MockField{
			"Query.f": NewMockValueField(List(SequenceOf(
				Item(Leaf(int64(1))),
				ErrItem(fmt.Errorf("item failed")),
				Item(Leaf(int64(3))),
			))),
		})

		exec := NewExecutor(sch)
		doc := mustParseQuery(t, "{ f }")

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, reg.Root("Query"))

		wantRes := &Response{
			Data:    map[string]any{"f": nil},
			Errors:  []GraphQLError{{Message: "item failed", Path: Path{"f", 1}}},
			HasData: true,
		}
		if diff := cmp.Diff(wantRes, gotRes, ignoreLocations); diff != "" {
			t.Fatalf("Response mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Item non-null violation on null item", func(t *testing.T) {
		sch := mustBuildSchema(t, "type Query { list: [String!] }")
		reg := NewMockRegistry(map[string]MockField{
			"Query.list": NewMockValueField(ListOf(Leaf("A"), Null(), Leaf("B"))),
		})

		exec := NewExecutor(sch)
		doc := mustParseQuery(t, "{ list }")

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, reg.Root("Query"))

		wantRes := &Response{
			Data:    map[string]any{"list": nil},
			Errors:  []GraphQLError{{Message: "Cannot return null for non-nullable field list.[1]", Path: Path{"list", 1}}},
			HasData: true,
		}
		if diff := cmp.Diff(wantRes, gotRes, ignoreLocations); diff != "" {
			t.Fatalf("Response mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Null list is legal", func(t *testing.T) {
		sch := mustBuildSchema(t, "type Query { list: [String] }")
		reg := NewMockRegistry(map[string]MockField{
			"Query.list": NewMockValueField(Null()),
		})

		exec := NewExecutor(sch)
		doc := mustParseQuery(t, "{ list }")

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, reg.Root("Query"))

		wantRes := &Response{
			Data:    map[string]any{"list": nil},
			Errors:  []GraphQLError{},
			HasData: true,
		}
		if diff := cmp.Diff(wantRes, gotRes, ignoreLocations); diff != "" {
			t.Fatalf("Response mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Non-list value against list type", func(t *testing.T) {
		sch := mustBuildSchema(t, "type Query { list: [String] }")
		reg := NewMockRegistry(map[string]MockField{
			"Query.list": NewMockValueField(Leaf("oops")),
		})

		exec := NewExecutor(sch)
		doc := mustParseQuery(t, "{ list }")

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, reg.Root("Query"))

		wantRes := &Response{
			Data:    map[string]any{"list": nil},
			Errors:  []GraphQLError{{Message: "Field list of type [String] resolved to a non-list value", Path: Path{"list"}}},
			HasData: true,
		}
		if diff := cmp.Diff(wantRes, gotRes, ignoreLocations); diff != "" {
			t.Fatalf("Response mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Nested object items", func(t *testing.T) {
		sch := mustBuildSchema(t, `
			type Query { objs: [Obj] }
			type Obj { name: String }
		`)
		reg := NewMockRegistry(map[string]MockField{
			"Obj.name": NewMockValueField(Leaf("x")),
		})
		reg.SetField("Query", "objs", NewMockValueField(ListOf(reg.Object("Obj"), reg.Object("Obj"))))

		exec := NewExecutor(sch)
		doc := mustParseQuery(t, "{ objs { name } }")

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, reg.Root("Query"))

		wantRes := &Response{
			Data: map[string]any{"objs": []any{
				map[string]any{"name": "x"},
				map[string]any{"name": "x"},
			}},
			Errors:  []GraphQLError{},
			HasData: true,
		}
		if diff := cmp.Diff(wantRes, gotRes, ignoreLocations); diff != "" {
			t.Fatalf("Response mismatch (-want +got):\n%s", diff)
		}
	})
}

// Pattern: Result comparison
func TestCompleteValue_Leaf_Coercion(t *testing.T) {
	t.Run("Int overflow", func(t *testing.T) {
		sch := mustBuildSchema(t, `
			type Query { obj: Obj }
			type Obj { n: Int! }
		`)
		reg := NewMockRegistry(map[string]MockField{
			"Obj.n": NewMockValueField(Leaf(int64(1) << 40)),
		})
		reg.SetField("Query", "obj", NewMockValueField(reg.Object("Obj")))

		exec := NewExecutor(sch)
		doc := mustParseQuery(t, "{ obj { n } }")

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, reg.Root("Query"))

		wantRes := &Response{
			Data:    map[string]any{"obj": nil},
			Errors:  []GraphQLError{{Message: fmt.Sprintf("Int cannot represent value %d: 32-bit integer overflow", int64(1)<<40), Path: Path{"obj", "n"}}},
			HasData: true,
		}
		if diff := cmp.Diff(wantRes, gotRes, ignoreLocations); diff != "" {
			t.Fatalf("Response mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Scalar kinds", func(t *testing.T) {
		sch := mustBuildSchema(t, `
			type Query { s: String b: Boolean f: Float i: Int id: ID }
		`)
		reg := NewMockRegistry(map[string]MockField{
			"Query.s":  NewMockValueField(Leaf("str")),
			"Query.b":  NewMockValueField(Leaf(true)),
			"Query.f":  NewMockValueField(Leaf(int64(3))),
			"Query.i":  NewMockValueField(Leaf(float64(7))),
			"Query.id": NewMockValueField(Leaf(int64(42))),
		})

		exec := NewExecutor(sch)
		doc := mustParseQuery(t, "{ s b f i id }")

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, reg.Root("Query"))

		wantRes := &Response{
			Data: map[string]any{
				"s":  "str",
				"b":  true,
				"f":  float64(3),
				"i":  int64(7),
				"id": "42",
			},
			Errors:  []GraphQLError{},
			HasData: true,
		}
		if diff := cmp.Diff(wantRes, gotRes, ignoreLocations); diff != "" {
			t.Fatalf("Response mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Enum member check", func(t *testing.T) {
		sch := mustBuildSchema(t, `
			type Query { e: Color }
			enum Color { RED GREEN }
		`)
		reg := NewMockRegistry(map[string]MockField{
			"Query.e": NewMockValueField(Leaf("BLUE")),
		})

		exec := NewExecutor(sch)
		doc := mustParseQuery(t, "{ e }")

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, reg.Root("Query"))

		wantRes := &Response{
			Data:    map[string]any{"e": nil},
			Errors:  []GraphQLError{{Message: "Enum Color cannot represent value BLUE", Path: Path{"e"}}},
			HasData: true,
		}
		if diff := cmp.Diff(wantRes, gotRes, ignoreLocations); diff != "" {
			t.Fatalf("Response mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Custom scalar passes through", func(t *testing.T) {
		sch := mustBuildSchema(t, `
			type Query { j: JSON }
			scalar JSON
		`)
		reg := NewMockRegistry(map[string]MockField{
			"Query.j": NewMockValueField(Leaf(map[string]any{"k": []any{int64(1)}})),
		})

		exec := NewExecutor(sch)
		doc := mustParseQuery(t, "{ j }")

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, reg.Root("Query"))

		wantRes := &Response{
			Data:    map[string]any{"j": map[string]any{"k": []any{int64(1)}}},
			Errors:  []GraphQLError{},
			HasData: true,
		}
		if diff := cmp.Diff(wantRes, gotRes, ignoreLocations); diff != "" {
			t.Fatalf("Response mismatch (-want +got):\n%s", diff)
		}
	})
}

// Pattern: Result comparison
func TestCompleteValue_Abstract_Types(t *testing.T) {
	sdl := `
		type Query { node: Node thing: Thing }
		interface Node { id: ID! }
		union Thing = Obj | Other
		type Obj implements Node { id: ID! a: String }
		type Other { b: String }
	`

	t.Run("Interface member", func(t *testing.T) {
		sch := mustBuildSchema(t, sdl)
		reg := NewMockRegistry(map[string]MockField{
			"Obj.id": NewMockValueField(Leaf("1")),
			"Obj.a":  NewMockValueField(Leaf("A")),
		})
		reg.SetField("Query", "node", NewMockValueField(reg.Object("Obj")))

		exec := NewExecutor(sch)
		doc := mustParseQuery(t, "{ node { id ... on Obj { a } } }")

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, reg.Root("Query"))

		wantRes := &Response{
			Data:    map[string]any{"node": map[string]any{"id": "1", "a": "A"}},
			Errors:  []GraphQLError{},
			HasData: true,
		}
		if diff := cmp.Diff(wantRes, gotRes, ignoreLocations); diff != "" {
			t.Fatalf("Response mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Union non-member rejected", func(t *testing.T) {
		sch := mustBuildSchema(t, sdl)
		reg := NewMockRegistry(nil)
		reg.SetField("Query", "thing", NewMockValueField(reg.Object("Query")))

		exec := NewExecutor(sch)
		doc := mustParseQuery(t, "{ thing { ... on Obj { a } } }")

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, reg.Root("Query"))

		wantRes := &Response{
			Data:    map[string]any{"thing": nil},
			Errors:  []GraphQLError{{Message: "Object of type Query is not a member of union Thing", Path: Path{"thing"}}},
			HasData: true,
		}
		if diff := cmp.Diff(wantRes, gotRes, ignoreLocations); diff != "" {
			t.Fatalf("Response mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Object type mismatch rejected", func(t *testing.T) {
		sch := mustBuildSchema(t, sdl)
		reg := NewMockRegistry(nil)
		reg.SetField("Query", "node", NewMockValueField(reg.Object("Other")))

		exec := NewExecutor(sch)
		doc := mustParseQuery(t, "{ node { id } }")

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, reg.Root("Query"))

		wantRes := &Response{
			Data:    map[string]any{"node": nil},
			Errors:  []GraphQLError{{Message: "Object of type Other does not implement interface Node", Path: Path{"node"}}},
			HasData: true,
		}
		if diff := cmp.Diff(wantRes, gotRes, ignoreLocations); diff != "" {
			t.Fatalf("Response mismatch (-want +got):\n%s", diff)
		}
	})
}

// Pattern: Result comparison
func TestCompleteValue_SkipMarker(t *testing.T) {
	sch := mustBuildSchema(t, "type Query { a: String deferred: String }")
	reg := NewMockRegistry(map[string]MockField{
		"Query.a":        NewMockValueField(Leaf("A")),
		"Query.deferred": NewMockValueField(Skip()),
	})

	exec := NewExecutor(sch)
	doc := mustParseQuery(t, "{ a deferred }")

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, reg.Root("Query"))

	// The skipped field contributes nothing, not even a null entry.
	wantRes := &Response{
		Data:    map[string]any{"a": "A"},
		Errors:  []GraphQLError{},
		HasData: true,
	}
	if diff := cmp.Diff(wantRes, gotRes, ignoreLocations); diff != "" {
		t.Fatalf("Response mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Result comparison
func TestCompleteValue_Thunk_Normalization(t *testing.T) {
	sch := mustBuildSchema(t, "type Query { a: String list: [Int] }")
	reg := NewMockRegistry(map[string]MockField{
		"Query.a": NewMockValueField(Thunk(func(ctx context.Context) (ResolvedValue, error) {
			return Leaf("deferred"), nil
		})),
		"Query.list": NewMockValueField(List(SequenceOf(
			Item(Thunk(func(ctx context.Context) (ResolvedValue, error) {
				return Leaf(int64(5)), nil
			})),
		))),
	})

	exec := NewExecutor(sch)
	doc := mustParseQuery(t, "{ a list }")

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, reg.Root("Query"))

	wantRes := &Response{
		Data:    map[string]any{"a": "deferred", "list": []any{int64(5)}},
		Errors:  []GraphQLError{},
		HasData: true,
	}
	if diff := cmp.Diff(wantRes, gotRes, ignoreLocations); diff != "" {
		t.Fatalf("Response mismatch (-want +got):\n%s", diff)
	}
}
