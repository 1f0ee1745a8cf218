package schema

import (
	"fmt"
	"strconv"

	"github.com/quarrylabs/quarry/internal/language"
)

// BuildFromAST converts a validated gqlparser type system into the runtime
// schema model. The input comes from the upstream schema-construction layer
// (language.LoadSchema); this function assumes it is well formed.
func BuildFromAST(src *language.Schema) (*Schema, error) {
	s := &Schema{
		Types:       make(map[string]*Type, len(src.Types)+len(builtinTypes)),
		Directives:  make(map[string]*Directive, len(src.Directives)+len(builtinDirectives)),
		Description: src.Description,
	}
	if src.Query != nil {
		s.QueryType = src.Query.Name
	}
	if src.Mutation != nil {
		s.MutationType = src.Mutation.Name
	}
	if src.Subscription != nil {
		s.SubscriptionType = src.Subscription.Name
	}

	for _, t := range builtinTypes {
		s.Types[t.Name] = t
	}
	for _, d := range builtinDirectives {
		s.Directives[d.Name] = d
	}

	for name, def := range src.Types {
		if isMetaName(name) {
			// The introspection package owns the meta-type surface.
			continue
		}
		t, err := buildType(src, def)
		if err != nil {
			return nil, err
		}
		s.Types[name] = t
	}
	for name, def := range src.Directives {
		if isMetaName(name) {
			continue
		}
		d, err := buildDirective(def)
		if err != nil {
			return nil, err
		}
		s.Directives[name] = d
	}
	return s, nil
}

// BuildFromSDL parses and validates SDL, then builds the runtime model.
func BuildFromSDL(name, sdl string) (*Schema, error) {
	src, err := language.LoadSchema(name, sdl)
	if err != nil {
		return nil, err
	}
	return BuildFromAST(src)
}

func isMetaName(name string) bool {
	return len(name) >= 2 && name[0] == '_' && name[1] == '_'
}

func buildType(src *language.Schema, def *language.Definition) (*Type, error) {
	t := &Type{
		Name:        def.Name,
		Description: def.Description,
		Interfaces:  def.Interfaces,
	}
	switch def.Kind {
	case language.Scalar:
		t.Kind = TypeKindScalar
		if url := directiveStringArg(def.Directives, "specifiedBy", "url"); url != "" {
			t.SpecifiedByURL = &url
		}
	case language.Object:
		t.Kind = TypeKindObject
		if err := buildFields(t, def); err != nil {
			return nil, err
		}
	case language.Interface:
		t.Kind = TypeKindInterface
		if err := buildFields(t, def); err != nil {
			return nil, err
		}
		for _, pt := range src.PossibleTypes[def.Name] {
			t.PossibleTypes = append(t.PossibleTypes, pt.Name)
		}
	case language.Union:
		t.Kind = TypeKindUnion
		t.PossibleTypes = def.Types
	case language.Enum:
		t.Kind = TypeKindEnum
		for _, ev := range def.EnumValues {
			value := &EnumValue{Name: ev.Name, Description: ev.Description}
			value.IsDeprecated, value.DeprecationReason = deprecation(ev.Directives)
			t.EnumValues = append(t.EnumValues, value)
		}
	case language.InputObject:
		t.Kind = TypeKindInputObject
		t.OneOf = def.Directives.ForName("oneOf") != nil
		for _, fd := range def.Fields {
			iv, err := buildInputValue(fd.Name, fd.Description, fd.Type, fd.DefaultValue, fd.Directives)
			if err != nil {
				return nil, err
			}
			t.InputFields = append(t.InputFields, iv)
		}
	default:
		return nil, fmt.Errorf("unsupported definition kind %s for type %s", def.Kind, def.Name)
	}
	return t, nil
}

func buildFields(t *Type, def *language.Definition) error {
	for _, fd := range def.Fields {
		if isMetaName(fd.Name) {
			continue
		}
		f := &Field{
			Name:        fd.Name,
			Description: fd.Description,
			Type:        TypeRefFromAST(fd.Type),
		}
		f.IsDeprecated, f.DeprecationReason = deprecation(fd.Directives)
		for _, ad := range fd.Arguments {
			iv, err := buildInputValue(ad.Name, ad.Description, ad.Type, ad.DefaultValue, ad.Directives)
			if err != nil {
				return err
			}
			f.Arguments = append(f.Arguments, iv)
		}
		t.Fields = append(t.Fields, f)
	}
	return nil
}

func buildInputValue(name, description string, ty *language.Type, def *language.Value, directives language.DirectiveList) (*InputValue, error) {
	iv := &InputValue{
		Name:        name,
		Description: description,
		Type:        TypeRefFromAST(ty),
	}
	iv.IsDeprecated, iv.DeprecationReason = deprecation(directives)
	if def != nil {
		v, err := LiteralToJSON(def)
		if err != nil {
			return nil, fmt.Errorf("default value of %s: %w", name, err)
		}
		iv.DefaultValue = v
		iv.HasDefault = true
	}
	return iv, nil
}

func buildDirective(def *language.DirectiveDefinition) (*Directive, error) {
	d := &Directive{
		Name:         def.Name,
		Description:  def.Description,
		IsRepeatable: def.IsRepeatable,
	}
	for _, loc := range def.Locations {
		d.Locations = append(d.Locations, string(loc))
	}
	for _, ad := range def.Arguments {
		iv, err := buildInputValue(ad.Name, ad.Description, ad.Type, ad.DefaultValue, ad.Directives)
		if err != nil {
			return nil, err
		}
		d.Arguments = append(d.Arguments, iv)
	}
	return d, nil
}

func deprecation(directives language.DirectiveList) (bool, string) {
	dep := directives.ForName("deprecated")
	if dep == nil {
		return false, ""
	}
	reason := "No longer supported"
	if arg := dep.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		reason = arg.Value.Raw
	}
	return true, reason
}

func directiveStringArg(directives language.DirectiveList, directive, arg string) string {
	d := directives.ForName(directive)
	if d == nil {
		return ""
	}
	a := d.Arguments.ForName(arg)
	if a == nil || a.Value == nil {
		return ""
	}
	return a.Value.Raw
}

// TypeRefFromAST converts a gqlparser type reference into the runtime model.
func TypeRefFromAST(t *language.Type) *TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		inner := &language.Type{NamedType: t.NamedType, Elem: t.Elem}
		return NonNullType(TypeRefFromAST(inner))
	}
	if t.NamedType != "" {
		return NamedType(t.NamedType)
	}
	return ListType(TypeRefFromAST(t.Elem))
}

// LiteralToJSON converts a constant AST value (no variables) to its JSON
// representation. Used for default values in schema definitions.
func LiteralToJSON(v *language.Value) (any, error) {
	switch v.Kind {
	case language.NullValue:
		return nil, nil
	case language.IntValue:
		i, err := strconv.ParseInt(v.Raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid Int literal %q", v.Raw)
		}
		return i, nil
	case language.FloatValue:
		f, err := strconv.ParseFloat(v.Raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid Float literal %q", v.Raw)
		}
		return f, nil
	case language.StringValue, language.BlockValue, language.EnumValue:
		return v.Raw, nil
	case language.BooleanValue:
		return v.Raw == "true", nil
	case language.ListValue:
		out := make([]any, 0, len(v.Children))
		for _, c := range v.Children {
			item, err := LiteralToJSON(c.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		return out, nil
	case language.ObjectValue:
		out := make(map[string]any, len(v.Children))
		for _, c := range v.Children {
			item, err := LiteralToJSON(c.Value)
			if err != nil {
				return nil, err
			}
			out[c.Name] = item
		}
		return out, nil
	case language.Variable:
		return nil, fmt.Errorf("variable $%s in constant value", v.Raw)
	default:
		return nil, fmt.Errorf("unsupported value kind %d", v.Kind)
	}
}
