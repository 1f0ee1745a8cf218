// Package jsondata serves GraphQL fields from a static JSON document. It is
// the data backend of the CLI: each field reads the same-named key of the
// current JSON object, nested objects become nested resolvers, and arrays
// become sequences. Keys that are absent resolve to null.
package jsondata

import (
	"context"
	"fmt"
	"math"

	"github.com/tidwall/gjson"

	"github.com/quarrylabs/quarry/internal/executor"
	"github.com/quarrylabs/quarry/internal/schema"
)

// NewRoot returns a resolver over document rooted at the object type named
// typeName. The schema drives the shape: declared object fields recurse,
// declared leaf fields pass the JSON value to output coercion as-is. A
// "__typename" key on a nested object overrides its declared type name,
// which is how abstract-typed fields pick their concrete type.
func NewRoot(s *schema.Schema, typeName string, document []byte) (executor.Resolver, error) {
	if !gjson.ValidBytes(document) {
		return nil, fmt.Errorf("data document is not valid JSON")
	}
	def := s.Types[typeName]
	if def == nil {
		return nil, fmt.Errorf("unknown type %q", typeName)
	}
	root := gjson.ParseBytes(document)
	if !root.IsObject() {
		return nil, fmt.Errorf("data document must be a JSON object, got %s", root.Type)
	}
	return newObjectResolver(s, def, root), nil
}

type objectResolver struct {
	schema   *schema.Schema
	def      *schema.Type
	typeName string
	data     gjson.Result
}

func newObjectResolver(s *schema.Schema, def *schema.Type, data gjson.Result) *objectResolver {
	name := def.Name
	if tn := data.Get("__typename"); tn.Type == gjson.String {
		name = tn.String()
	}
	return &objectResolver{schema: s, def: def, typeName: name, data: data}
}

func (r *objectResolver) TypeName() string { return r.typeName }

func (r *objectResolver) ResolveField(ctx context.Context, field string, args map[string]any) (executor.ResolvedValue, error) {
	// Arguments have no meaning against a static document and are ignored.
	def := r.fieldDef(field)
	if def == nil {
		return executor.Null(), nil
	}
	return r.convert(r.data.Get(field), def.Type), nil
}

// fieldDef resolves the field definition against the concrete type when the
// data dispatched to one via __typename, falling back to the declared type.
func (r *objectResolver) fieldDef(field string) *schema.Field {
	if concrete := r.schema.Types[r.typeName]; concrete != nil {
		if def := concrete.Field(field); def != nil {
			return def
		}
	}
	return r.def.Field(field)
}

func (r *objectResolver) convert(value gjson.Result, ty *schema.TypeRef) executor.ResolvedValue {
	if !value.Exists() || value.Type == gjson.Null {
		return executor.Null()
	}
	if value.IsArray() {
		items := value.Array()
		elemType := listElemType(ty)
		resolved := make([]executor.ResolvedValue, len(items))
		for i, item := range items {
			resolved[i] = r.convert(item, elemType)
		}
		return executor.ListOf(resolved...)
	}
	named := r.schema.Types[ty.GetNamedType()]
	if value.IsObject() && named != nil && isCompositeKind(named.Kind) {
		return executor.Object(newObjectResolver(r.schema, named, value))
	}
	return executor.Leaf(leafValue(value))
}

func listElemType(ty *schema.TypeRef) *schema.TypeRef {
	for ty != nil {
		if ty.Kind == schema.TypeRefKindList {
			return ty.OfType
		}
		if ty.Kind == schema.TypeRefKindNonNull {
			ty = ty.OfType
			continue
		}
		break
	}
	return ty
}

func isCompositeKind(kind schema.TypeKind) bool {
	switch kind {
	case schema.TypeKindObject, schema.TypeKindInterface, schema.TypeKindUnion:
		return true
	}
	return false
}

// leafValue maps a JSON scalar to its Go shape. Whole numbers come back as
// int64 so Int and ID fields see integers rather than floats.
func leafValue(value gjson.Result) any {
	switch value.Type {
	case gjson.String:
		return value.String()
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Number:
		n := value.Float()
		if n == math.Trunc(n) && n >= math.MinInt64 && n <= math.MaxInt64 {
			return value.Int()
		}
		return n
	default:
		// Custom scalars may hold arbitrary JSON shapes.
		return value.Value()
	}
}
