package introspection

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/quarrylabs/quarry/internal/executor"
	"github.com/quarrylabs/quarry/internal/schema"
)

// Root returns a resolver that answers only the __schema and __type meta
// fields; every other field resolves to the skip marker. It is meant for
// executing the introspection half of a split operation against a schema
// extended with Extend. The meta surface resolves over the extended schema,
// so __schema.types reports the __* types too.
func Root(s *schema.Schema) executor.Resolver {
	return &rootResolver{schema: Extend(s)}
}

// Wrap returns a resolver that answers the meta fields itself and delegates
// everything else to base. Use it to serve an unsplit operation from a single
// root.
func Wrap(s *schema.Schema, base executor.Resolver) executor.Resolver {
	return &rootResolver{schema: Extend(s), base: base}
}

type rootResolver struct {
	schema *schema.Schema
	base   executor.Resolver
}

func (r *rootResolver) TypeName() string {
	if r.base != nil {
		return r.base.TypeName()
	}
	return r.schema.QueryType
}

func (r *rootResolver) ResolveField(ctx context.Context, field string, args map[string]any) (executor.ResolvedValue, error) {
	switch field {
	case "__schema":
		return executor.Object(&schemaResolver{schema: r.schema}), nil
	case "__type":
		name, _ := args["name"].(string)
		if _, ok := r.schema.Types[name]; !ok {
			return executor.Null(), nil
		}
		return executor.Object(typeValue(r.schema, schema.NamedType(name))), nil
	}
	if r.base == nil {
		return executor.Skip(), nil
	}
	return r.base.ResolveField(ctx, field, args)
}

type schemaResolver struct {
	schema *schema.Schema
}

func (r *schemaResolver) TypeName() string { return "__Schema" }

func (r *schemaResolver) ResolveField(ctx context.Context, field string, args map[string]any) (executor.ResolvedValue, error) {
	s := r.schema
	switch field {
	case "description":
		return optString(s.Description), nil
	case "types":
		names := make([]string, 0, len(s.Types))
		for name := range s.Types {
			names = append(names, name)
		}
		sort.Strings(names)
		values := make([]executor.ResolvedValue, len(names))
		for i, name := range names {
			values[i] = executor.Object(typeValue(s, schema.NamedType(name)))
		}
		return executor.ListOf(values...), nil
	case "queryType":
		return namedTypeOrNull(s, s.QueryType), nil
	case "mutationType":
		return namedTypeOrNull(s, s.MutationType), nil
	case "subscriptionType":
		return namedTypeOrNull(s, s.SubscriptionType), nil
	case "directives":
		names := make([]string, 0, len(s.Directives))
		for name := range s.Directives {
			names = append(names, name)
		}
		sort.Strings(names)
		values := make([]executor.ResolvedValue, len(names))
		for i, name := range names {
			values[i] = executor.Object(&directiveResolver{schema: s, directive: s.Directives[name]})
		}
		return executor.ListOf(values...), nil
	}
	return executor.Null(), fmt.Errorf("unknown __Schema field %q", field)
}

func namedTypeOrNull(s *schema.Schema, name string) executor.ResolvedValue {
	if name == "" || s.Types[name] == nil {
		return executor.Null()
	}
	return executor.Object(typeValue(s, schema.NamedType(name)))
}

// typeResolver serves a __Type value. The ref may be a NON_NULL or LIST
// wrapper, in which case only kind and ofType resolve to non-null.
type typeResolver struct {
	schema *schema.Schema
	ref    *schema.TypeRef
	def    *schema.Type // nil for wrapper refs
}

func typeValue(s *schema.Schema, ref *schema.TypeRef) *typeResolver {
	r := &typeResolver{schema: s, ref: ref}
	if ref.Kind == schema.TypeRefKindNamed {
		r.def = s.Types[ref.Named]
	}
	return r
}

func (r *typeResolver) TypeName() string { return "__Type" }

func (r *typeResolver) ResolveField(ctx context.Context, field string, args map[string]any) (executor.ResolvedValue, error) {
	switch field {
	case "kind":
		switch r.ref.Kind {
		case schema.TypeRefKindNonNull:
			return executor.Leaf("NON_NULL"), nil
		case schema.TypeRefKindList:
			return executor.Leaf("LIST"), nil
		}
		if r.def == nil {
			return executor.Null(), fmt.Errorf("unknown type %q", r.ref.Named)
		}
		return executor.Leaf(string(r.def.Kind)), nil
	case "ofType":
		if r.ref.OfType == nil {
			return executor.Null(), nil
		}
		return executor.Object(typeValue(r.schema, r.ref.OfType)), nil
	}
	if r.def == nil {
		return executor.Null(), nil
	}
	def := r.def
	switch field {
	case "name":
		return executor.Leaf(def.Name), nil
	case "description":
		return optString(def.Description), nil
	case "fields":
		if def.Kind != schema.TypeKindObject && def.Kind != schema.TypeKindInterface {
			return executor.Null(), nil
		}
		values := make([]executor.ResolvedValue, 0, len(def.Fields))
		for _, f := range def.Fields {
			if f.IsDeprecated && !boolArg(args, "includeDeprecated") {
				continue
			}
			values = append(values, executor.Object(&fieldResolver{schema: r.schema, field: f}))
		}
		return executor.ListOf(values...), nil
	case "interfaces":
		if def.Kind != schema.TypeKindObject && def.Kind != schema.TypeKindInterface {
			return executor.Null(), nil
		}
		return typeNameList(r.schema, def.Interfaces), nil
	case "possibleTypes":
		if def.Kind != schema.TypeKindInterface && def.Kind != schema.TypeKindUnion {
			return executor.Null(), nil
		}
		return typeNameList(r.schema, def.PossibleTypes), nil
	case "enumValues":
		if def.Kind != schema.TypeKindEnum {
			return executor.Null(), nil
		}
		values := make([]executor.ResolvedValue, 0, len(def.EnumValues))
		for _, ev := range def.EnumValues {
			if ev.IsDeprecated && !boolArg(args, "includeDeprecated") {
				continue
			}
			values = append(values, executor.Object(&enumValueResolver{value: ev}))
		}
		return executor.ListOf(values...), nil
	case "inputFields":
		if def.Kind != schema.TypeKindInputObject {
			return executor.Null(), nil
		}
		return inputValueList(r.schema, def.InputFields, boolArg(args, "includeDeprecated")), nil
	case "specifiedByURL":
		if def.SpecifiedByURL == nil {
			return executor.Null(), nil
		}
		return executor.Leaf(*def.SpecifiedByURL), nil
	case "isOneOf":
		if def.Kind != schema.TypeKindInputObject {
			return executor.Null(), nil
		}
		return executor.Leaf(def.OneOf), nil
	}
	return executor.Null(), fmt.Errorf("unknown __Type field %q", field)
}

func typeNameList(s *schema.Schema, names []string) executor.ResolvedValue {
	values := make([]executor.ResolvedValue, len(names))
	for i, name := range names {
		values[i] = executor.Object(typeValue(s, schema.NamedType(name)))
	}
	return executor.ListOf(values...)
}

type fieldResolver struct {
	schema *schema.Schema
	field  *schema.Field
}

func (r *fieldResolver) TypeName() string { return "__Field" }

func (r *fieldResolver) ResolveField(ctx context.Context, field string, args map[string]any) (executor.ResolvedValue, error) {
	f := r.field
	switch field {
	case "name":
		return executor.Leaf(f.Name), nil
	case "description":
		return optString(f.Description), nil
	case "args":
		return inputValueList(r.schema, f.Arguments, boolArg(args, "includeDeprecated")), nil
	case "type":
		return executor.Object(typeValue(r.schema, f.Type)), nil
	case "isDeprecated":
		return executor.Leaf(f.IsDeprecated), nil
	case "deprecationReason":
		if !f.IsDeprecated {
			return executor.Null(), nil
		}
		return executor.Leaf(f.DeprecationReason), nil
	}
	return executor.Null(), fmt.Errorf("unknown __Field field %q", field)
}

type inputValueResolver struct {
	schema *schema.Schema
	value  *schema.InputValue
}

func (r *inputValueResolver) TypeName() string { return "__InputValue" }

func (r *inputValueResolver) ResolveField(ctx context.Context, field string, args map[string]any) (executor.ResolvedValue, error) {
	v := r.value
	switch field {
	case "name":
		return executor.Leaf(v.Name), nil
	case "description":
		return optString(v.Description), nil
	case "type":
		return executor.Object(typeValue(r.schema, v.Type)), nil
	case "defaultValue":
		if !v.HasDefault {
			return executor.Null(), nil
		}
		return executor.Leaf(renderValue(r.schema, v.DefaultValue, v.Type)), nil
	case "isDeprecated":
		return executor.Leaf(v.IsDeprecated), nil
	case "deprecationReason":
		if !v.IsDeprecated {
			return executor.Null(), nil
		}
		return executor.Leaf(v.DeprecationReason), nil
	}
	return executor.Null(), fmt.Errorf("unknown __InputValue field %q", field)
}

func inputValueList(s *schema.Schema, values []*schema.InputValue, includeDeprecated bool) executor.ResolvedValue {
	kept := make([]executor.ResolvedValue, 0, len(values))
	for _, v := range values {
		if v.IsDeprecated && !includeDeprecated {
			continue
		}
		kept = append(kept, executor.Object(&inputValueResolver{schema: s, value: v}))
	}
	return executor.ListOf(kept...)
}

type enumValueResolver struct {
	value *schema.EnumValue
}

func (r *enumValueResolver) TypeName() string { return "__EnumValue" }

func (r *enumValueResolver) ResolveField(ctx context.Context, field string, args map[string]any) (executor.ResolvedValue, error) {
	v := r.value
	switch field {
	case "name":
		return executor.Leaf(v.Name), nil
	case "description":
		return optString(v.Description), nil
	case "isDeprecated":
		return executor.Leaf(v.IsDeprecated), nil
	case "deprecationReason":
		if !v.IsDeprecated {
			return executor.Null(), nil
		}
		return executor.Leaf(v.DeprecationReason), nil
	}
	return executor.Null(), fmt.Errorf("unknown __EnumValue field %q", field)
}

type directiveResolver struct {
	schema    *schema.Schema
	directive *schema.Directive
}

func (r *directiveResolver) TypeName() string { return "__Directive" }

func (r *directiveResolver) ResolveField(ctx context.Context, field string, args map[string]any) (executor.ResolvedValue, error) {
	d := r.directive
	switch field {
	case "name":
		return executor.Leaf(d.Name), nil
	case "description":
		return optString(d.Description), nil
	case "isRepeatable":
		return executor.Leaf(d.IsRepeatable), nil
	case "locations":
		values := make([]executor.ResolvedValue, len(d.Locations))
		for i, loc := range d.Locations {
			values[i] = executor.Leaf(loc)
		}
		return executor.ListOf(values...), nil
	case "args":
		return inputValueList(r.schema, d.Arguments, boolArg(args, "includeDeprecated")), nil
	}
	return executor.Null(), fmt.Errorf("unknown __Directive field %q", field)
}

func optString(s string) executor.ResolvedValue {
	if s == "" {
		return executor.Null()
	}
	return executor.Leaf(s)
}

func boolArg(args map[string]any, name string) bool {
	v, _ := args[name].(bool)
	return v
}

// renderValue prints a JSON-shaped default value back in GraphQL literal
// notation, using the declared type to tell enum members apart from strings.
func renderValue(s *schema.Schema, value any, ty *schema.TypeRef) string {
	if value == nil {
		return "null"
	}
	if ty != nil && ty.Kind == schema.TypeRefKindNonNull {
		ty = ty.OfType
	}
	if items, ok := value.([]any); ok && ty != nil && ty.Kind == schema.TypeRefKindList {
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = renderValue(s, item, ty.OfType)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	var def *schema.Type
	if ty != nil {
		def = s.Types[ty.GetNamedType()]
	}
	if def != nil {
		switch def.Kind {
		case schema.TypeKindEnum:
			if name, ok := value.(string); ok {
				return name
			}
		case schema.TypeKindInputObject:
			if fields, ok := value.(map[string]any); ok {
				parts := make([]string, 0, len(fields))
				for _, f := range def.InputFields {
					if fv, present := fields[f.Name]; present {
						parts = append(parts, f.Name+": "+renderValue(s, fv, f.Type))
					}
				}
				return "{" + strings.Join(parts, ", ") + "}"
			}
		}
	}
	out, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(out)
}
