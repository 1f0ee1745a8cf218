package executor

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/quarrylabs/quarry/internal/language"
	"github.com/quarrylabs/quarry/internal/schema"
)

// errPropagateNull is the propagate-null signal: a non-null-typed subtree
// failed and the nearest nullable ancestor must become null. It is the only
// error completion ever returns; the failure itself is recorded exactly once
// at the point of detection, never by propagation.
var errPropagateNull = errors.New("propagate null")

// skipResult marks a completed value that contributes nothing to the
// response. It survives non-null unwrapping because it is not null.
var skipResult = &struct{}{}

// completeValue turns a resolved value into response JSON for the declared
// type, or returns the propagate-null signal. Absorption of the signal
// happens only at nullable boundaries: the field itself (tryNullify) and
// nullable list items.
func completeValue(state *executionState, fieldType *schema.TypeRef, fields []*language.Field, value ResolvedValue, path *pathNode) (any, error) {
	if schema.IsNonNull(fieldType) {
		completed, err := completeValue(state, fieldType.Unwrap(), fields, value, path)
		if err != nil {
			return nil, err
		}
		if completed == nil {
			state.addFieldError(fmt.Sprintf("Cannot return null for non-nullable field %s", pathToString(path.Path())), fields[0], path)
			return nil, errPropagateNull
		}
		return completed, nil
	}

	switch value.kind {
	case kindSkip:
		return skipResult, nil

	case kindList:
		if !schema.IsList(fieldType) {
			state.addFieldError(fmt.Sprintf("Field %s of type %s resolved to a list", fields[0].Name, fieldType), fields[0], path)
			return nil, errPropagateNull
		}
		return completeListValue(state, fieldType, fields, value.seq, path)

	case kindObject:
		return completeObjectValue(state, fieldType, fields, value.object, path)

	case kindLeaf:
		if value.leaf == nil {
			return nil, nil
		}
		return completeLeafValue(state, fieldType, fields, value.leaf, path)

	default:
		state.addValidationBug(fmt.Sprintf("unexpected resolved value kind %d for field %s", value.kind, fields[0].Name), path)
		return nil, errPropagateNull
	}
}

// completeListValue drains the sequence one item at a time, completing each
// against the inner type at an extended path. A failed item nullifies just
// that item when the inner type is nullable; otherwise the whole list
// propagates null.
func completeListValue(state *executionState, listType *schema.TypeRef, fields []*language.Field, seq Sequence, path *pathNode) (any, error) {
	inner := listType.Unwrap()
	out := []any{}
	for idx := 0; seq.Next(state.context); idx++ {
		itemPath := path.child(idx)
		itemValue, itemErr := seq.Item()
		item, err := forceValue(state.context, itemValue, itemErr)

		var completed any
		var cerr error
		if err != nil {
			state.addFieldError(err.Error(), fields[0], itemPath)
			cerr = errPropagateNull
		} else {
			completed, cerr = completeValue(state, inner, fields, item, itemPath)
		}
		if cerr != nil {
			if schema.IsNonNull(inner) {
				return nil, cerr
			}
			completed = nil
		}
		if completed == skipResult {
			continue
		}
		out = append(out, completed)
	}
	return out, nil
}

// completeObjectValue checks the resolver's concrete type against the
// declared type, then recursively collects and executes the merged
// sub-selection against the new object.
func completeObjectValue(state *executionState, fieldType *schema.TypeRef, fields []*language.Field, object Resolver, path *pathNode) (any, error) {
	if schema.IsList(fieldType) {
		state.addFieldError(fmt.Sprintf("Field %s of type %s resolved to a single object", fields[0].Name, fieldType), fields[0], path)
		return nil, errPropagateNull
	}
	named := fieldType.GetNamedType()
	declared := state.schema.Types[named]
	if declared == nil {
		state.addValidationBug(fmt.Sprintf("undefined type %s", named), path)
		return nil, errPropagateNull
	}

	concrete := object.TypeName()
	switch declared.Kind {
	case schema.TypeKindObject:
		if concrete != declared.Name {
			state.addFieldError(fmt.Sprintf("Field %s of type %s resolved to an object of type %s", fields[0].Name, named, concrete), fields[0], path)
			return nil, errPropagateNull
		}
	case schema.TypeKindInterface:
		obj := state.schema.Types[concrete]
		if obj == nil || obj.Kind != schema.TypeKindObject || !(obj.Implements(named) || declared.HasPossibleType(concrete)) {
			state.addFieldError(fmt.Sprintf("Object of type %s does not implement interface %s", concrete, named), fields[0], path)
			return nil, errPropagateNull
		}
	case schema.TypeKindUnion:
		if !declared.HasPossibleType(concrete) {
			state.addFieldError(fmt.Sprintf("Object of type %s is not a member of union %s", concrete, named), fields[0], path)
			return nil, errPropagateNull
		}
	default:
		state.addFieldError(fmt.Sprintf("Field %s of %s type %s resolved to an object", fields[0].Name, declared.Kind, named), fields[0], path)
		return nil, errPropagateNull
	}

	objectType := state.schema.Types[concrete]
	if objectType == nil || objectType.Kind != schema.TypeKindObject {
		state.addFieldError(fmt.Sprintf("Concrete type %s is not an object type", concrete), fields[0], path)
		return nil, errPropagateNull
	}

	sub := mergeSelectionSets(fields)
	return executeSelectionSet(state, objectType, sub, object, path)
}

// completeLeafValue dispatches a non-null leaf to output coercion.
func completeLeafValue(state *executionState, fieldType *schema.TypeRef, fields []*language.Field, leaf any, path *pathNode) (any, error) {
	if schema.IsList(fieldType) {
		state.addFieldError(fmt.Sprintf("Field %s of type %s resolved to a non-list value", fields[0].Name, fieldType), fields[0], path)
		return nil, errPropagateNull
	}
	named := fieldType.GetNamedType()
	typeObj := state.schema.Types[named]
	if typeObj == nil {
		state.addValidationBug(fmt.Sprintf("undefined type %s", named), path)
		return nil, errPropagateNull
	}

	switch typeObj.Kind {
	case schema.TypeKindScalar:
		v, err := coerceOutputScalar(leaf, named)
		if err != nil {
			state.addFieldError(err.Error(), fields[0], path)
			return nil, errPropagateNull
		}
		return v, nil
	case schema.TypeKindEnum:
		name, ok := leaf.(string)
		if !ok || !typeObj.HasEnumValue(name) {
			state.addFieldError(fmt.Sprintf("Enum %s cannot represent value %v", named, leaf), fields[0], path)
			return nil, errPropagateNull
		}
		return name, nil
	default:
		state.addFieldError(fmt.Sprintf("Field %s of composite type %s resolved to a leaf value", fields[0].Name, named), fields[0], path)
		return nil, errPropagateNull
	}
}

// coerceOutputScalar applies the result coercion rules for builtin scalars.
// Custom scalars accept any JSON shape.
func coerceOutputScalar(value any, named string) (any, error) {
	switch named {
	case "Int":
		return coerceOutputInt(value)
	case "Float":
		return coerceFloat(value)
	case "String":
		if v, ok := value.(string); ok {
			return v, nil
		}
		return nil, fmt.Errorf("String cannot represent value %v (%T)", value, value)
	case "Boolean":
		if v, ok := value.(bool); ok {
			return v, nil
		}
		return nil, fmt.Errorf("Boolean cannot represent value %v (%T)", value, value)
	case "ID":
		return coerceID(value)
	default:
		return value, nil
	}
}

func coerceOutputInt(value any) (any, error) {
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
		if v < math.MinInt32 || v > math.MaxInt32 {
			return nil, fmt.Errorf("Int cannot represent value %s: 32-bit integer overflow", strconv.FormatFloat(v, 'f', -1, 64))
		}
		return int64(v), nil
	}
	return nil, fmt.Errorf("Int cannot represent value %v (%T)", value, value)
}
