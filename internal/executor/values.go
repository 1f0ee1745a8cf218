package executor

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/quarrylabs/quarry/internal/language"
	"github.com/quarrylabs/quarry/internal/schema"
)

// errValidationBug marks coercion failures that a validated document should
// make impossible.
var errValidationBug = errors.New("suspected validation bug")

// coerceVariableValues coerces raw request variables against the operation's
// variable definitions. Failures are request errors: they abort execution
// before any resolver runs. An absent nullable variable stays absent, which
// is distinct from an explicit null.
func coerceVariableValues(
	s *schema.Schema,
	operation *language.OperationDefinition,
	variableValues map[string]any,
) (map[string]any, *RequestError) {
	coerced := make(map[string]any)
	for _, varDef := range operation.VariableDefinitions {
		name := varDef.Variable
		ty := schema.TypeRefFromAST(varDef.Type)
		val, ok := variableValues[name]
		if !ok {
			if varDef.DefaultValue != nil {
				dv, err := schema.LiteralToJSON(varDef.DefaultValue)
				if err != nil {
					return nil, &RequestError{Message: fmt.Sprintf("default value of variable $%s: %v", name, err), Locations: positionLocations(varDef.Position)}
				}
				coerced[name] = dv
			} else if varDef.Type.NonNull {
				return nil, &RequestError{Message: fmt.Sprintf("variable $%s of required type %s was not provided", name, varDef.Type.String()), Locations: positionLocations(varDef.Position)}
			}
			continue
		}
		cv, err := coerceInputValue(s, val, ty)
		if err != nil {
			return nil, &RequestError{Message: fmt.Sprintf("variable $%s of type %s: %v", name, varDef.Type.String(), err), Locations: positionLocations(varDef.Position)}
		}
		coerced[name] = cv
	}
	return coerced, nil
}

// coerceArgumentValues coerces a field's argument literals against the field
// definition. Failures here are field-scoped, not request-scoped: they occur
// during resolution of one field and trigger null propagation from it.
func coerceArgumentValues(state *executionState, fieldDef *schema.Field, field *language.Field) (map[string]any, error) {
	coerced := make(map[string]any)
	for _, argDef := range fieldDef.Arguments {
		arg := field.Arguments.ForName(argDef.Name)
		var val any
		var hasValue bool
		if arg != nil {
			if arg.Value.Kind == language.Variable {
				val, hasValue = state.variableValues[arg.Value.Raw]
			} else {
				val, hasValue = literalValue(arg.Value, state.variableValues)
			}
		}
		if !hasValue {
			if argDef.HasDefault {
				coerced[argDef.Name] = argDef.DefaultValue
			} else if schema.IsNonNull(argDef.Type) {
				return nil, fmt.Errorf("argument %q of required type %s was not provided", argDef.Name, argDef.Type)
			}
			continue
		}
		cv, err := coerceInputValue(state.schema, val, argDef.Type)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", argDef.Name, err)
		}
		coerced[argDef.Name] = cv
	}
	return coerced, nil
}

// valueFromASTWithVars converts an AST value to a JSON-shaped Go value with
// variable substitution. Absent variables read as null.
func valueFromASTWithVars(value *language.Value, variableValues map[string]any) any {
	v, _ := literalValue(value, variableValues)
	return v
}

// literalValue converts an AST value to a JSON-shaped Go value. The second
// return reports presence: a reference to an unset variable is absent, and
// object keys whose value is absent are dropped rather than set to null.
func literalValue(value *language.Value, variableValues map[string]any) (any, bool) {
	if value == nil {
		return nil, false
	}
	switch value.Kind {
	case language.Variable:
		v, ok := variableValues[value.Raw]
		return v, ok
	case language.NullValue:
		return nil, true
	case language.IntValue:
		iv, _ := strconv.ParseInt(value.Raw, 10, 64)
		return iv, true
	case language.FloatValue:
		fv, _ := strconv.ParseFloat(value.Raw, 64)
		return fv, true
	case language.StringValue, language.BlockValue, language.EnumValue:
		return value.Raw, true
	case language.BooleanValue:
		return value.Raw == "true", true
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			// An absent variable in list position becomes null.
			out[i], _ = literalValue(c.Value, variableValues)
		}
		return out, true
	case language.ObjectValue:
		m := make(map[string]any, len(value.Children))
		for _, f := range value.Children {
			if v, ok := literalValue(f.Value, variableValues); ok {
				m[f.Name] = v
			}
		}
		return m, true
	default:
		return nil, false
	}
}

// coerceInputValue coerces a JSON value against a declared input type.
// Coercion is idempotent: re-coercing an accepted result yields it unchanged.
func coerceInputValue(s *schema.Schema, value any, ty *schema.TypeRef) (any, error) {
	if schema.IsNonNull(ty) {
		if value == nil {
			return nil, fmt.Errorf("cannot provide null for non-null type %s", ty)
		}
		return coerceInputValue(s, value, ty.Unwrap())
	}
	if value == nil {
		return nil, nil
	}
	if schema.IsList(ty) {
		inner := ty.Unwrap()
		if items, ok := value.([]any); ok {
			out := make([]any, len(items))
			for i, item := range items {
				cv, err := coerceInputValue(s, item, inner)
				if err != nil {
					return nil, fmt.Errorf("list item %d: %w", i, err)
				}
				out[i] = cv
			}
			return out, nil
		}
		// A non-array value is promoted to a one-element list.
		cv, err := coerceInputValue(s, value, inner)
		if err != nil {
			return nil, err
		}
		return []any{cv}, nil
	}

	named := ty.GetNamedType()
	typeObj := s.Types[named]
	if typeObj == nil {
		return nil, fmt.Errorf("undefined type %s: %w", named, errValidationBug)
	}

	switch typeObj.Kind {
	case schema.TypeKindScalar:
		return coerceInputScalar(value, named)
	case schema.TypeKindEnum:
		name, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("enum %s cannot represent non-string value %v", named, value)
		}
		if !typeObj.HasEnumValue(name) {
			return nil, fmt.Errorf("value %q does not exist in %s enum", name, named)
		}
		return name, nil
	case schema.TypeKindInputObject:
		return coerceInputObject(s, value, typeObj)
	default:
		return nil, fmt.Errorf("%s type %s is not an input type: %w", typeObj.Kind, named, errValidationBug)
	}
}

func coerceInputScalar(value any, named string) (any, error) {
	switch named {
	case "Int":
		return coerceInt(value)
	case "Float":
		return coerceFloat(value)
	case "String":
		if v, ok := value.(string); ok {
			return v, nil
		}
		return nil, fmt.Errorf("String cannot represent non-string value %v", value)
	case "Boolean":
		if v, ok := value.(bool); ok {
			return v, nil
		}
		return nil, fmt.Errorf("Boolean cannot represent non-boolean value %v", value)
	case "ID":
		return coerceID(value)
	default:
		// Custom scalars pass through unchanged.
		return value, nil
	}
}

func coerceInputObject(s *schema.Schema, value any, typeObj *schema.Type) (any, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("input object %s cannot represent non-object value %v", typeObj.Name, value)
	}
	for key := range m {
		if typeObj.InputField(key) == nil {
			return nil, fmt.Errorf("field %q is not defined by input object %s", key, typeObj.Name)
		}
	}
	out := make(map[string]any, len(typeObj.InputFields))
	for _, fd := range typeObj.InputFields {
		v, present := m[fd.Name]
		if !present {
			if fd.HasDefault {
				out[fd.Name] = fd.DefaultValue
			} else if schema.IsNonNull(fd.Type) {
				return nil, fmt.Errorf("field %q of required type %s was not provided", fd.Name, fd.Type)
			}
			// Absent nullable fields stay absent.
			continue
		}
		cv, err := coerceInputValue(s, v, fd.Type)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", fd.Name, err)
		}
		out[fd.Name] = cv
	}
	return out, nil
}

// coerceInt accepts 32-bit-representable integers only, normalized to int64.
func coerceInt(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return checkInt32(int64(v))
	case int32:
		return int64(v), nil
	case int64:
		return checkInt32(v)
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("Int cannot represent non-integer value %v", v)
		}
		return checkInt32(int64(v))
	}
	return nil, fmt.Errorf("Int cannot represent value %v (%T)", value, value)
}

func checkInt32(v int64) (any, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return nil, fmt.Errorf("Int cannot represent value %d: 32-bit integer overflow", v)
	}
	return v, nil
}

// coerceFloat accepts any JSON number.
func coerceFloat(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return nil, fmt.Errorf("Float cannot represent value %v (%T)", value, value)
}

// coerceID accepts a string or an integer, normalized to string.
func coerceID(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10), nil
		}
	}
	return nil, fmt.Errorf("ID cannot represent value %v (%T)", value, value)
}

func positionLocations(pos *language.Position) []Location {
	if pos == nil {
		return nil
	}
	return []Location{{Line: pos.Line, Column: pos.Column}}
}
