package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quarrylabs/quarry/internal/eventbus"
	"github.com/quarrylabs/quarry/internal/events"
	"github.com/quarrylabs/quarry/internal/language"
	"github.com/quarrylabs/quarry/internal/schema"
)

// executionState holds the state during query execution
type executionState struct {
	schema         *schema.Schema
	document       *language.QueryDocument
	variableValues map[string]any
	context        context.Context
	errors         []GraphQLError
}

type Executor struct {
	schema *schema.Schema
}

func NewExecutor(schema *schema.Schema) *Executor {
	return &Executor{schema: schema}
}

// ExecuteRequest executes one operation of a validated document against the
// given root resolver. It always returns a response; request-level failures
// produce a response with a single error and no data.
func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	root Resolver,
) *Response {
	operation := getOperation(document, operationName)
	if operation == nil {
		return requestErrorResponse(&RequestError{Message: fmt.Sprintf("operation %q not found", operationName)})
	}

	rootType := e.schema.RootType(string(operation.Operation))
	if rootType == nil {
		return requestErrorResponse(&RequestError{Message: fmt.Sprintf("root type not found for %s operation", operation.Operation)})
	}

	coercedVariableValues, reqErr := coerceVariableValues(e.schema, operation, variableValues)
	if reqErr != nil {
		return requestErrorResponse(reqErr)
	}

	start := time.Now()
	eventbus.Publish(ctx, events.OperationStart{
		OperationName: operation.Name,
		OperationType: string(operation.Operation),
	})

	state := &executionState{
		schema:         e.schema,
		document:       document,
		variableValues: coercedVariableValues,
		context:        ctx,
		errors:         []GraphQLError{},
	}

	// Root fields execute strictly in declaration order; mutations get their
	// required serial execution, and queries use the same single order.
	data, err := executeSelectionSet(state, rootType, operation.SelectionSet, root, nil)
	if err != nil {
		// Null propagated past the root: data becomes null but is present.
		data = nil
	}

	eventbus.Publish(ctx, events.OperationFinish{
		OperationName: operation.Name,
		OperationType: string(operation.Operation),
		ErrorCount:    len(state.errors),
		Duration:      time.Since(start),
	})

	return &Response{Data: data, Errors: state.errors, HasData: true}
}

// executeSelectionSet resolves one object level: collect fields, then resolve
// each group in order. Returns the propagate-null signal when a non-null
// field under it failed.
func executeSelectionSet(state *executionState, objectType *schema.Type, selectionSet language.SelectionSet, object Resolver, path *pathNode) (map[string]any, error) {
	groupedFields := collectFields(state, objectType, selectionSet)
	resultMap := make(map[string]any)

	for _, collectedField := range groupedFields.orderedFields() {
		responseName := collectedField.ResponseName
		fields := collectedField.Fields
		fieldPath := path.child(responseName)

		// The engine answers __typename itself from the concrete type name.
		if fields[0].Name == "__typename" {
			resultMap[responseName] = object.TypeName()
			continue
		}

		fieldDef := objectType.Field(fields[0].Name)
		if fieldDef == nil {
			state.addValidationBug(fmt.Sprintf("Cannot query field %q on type %q", fields[0].Name, objectType.Name), fieldPath)
			continue
		}

		completed, err := executeField(state, objectType, object, fieldDef, fields, fieldPath)
		if err != nil {
			return nil, err
		}
		if completed == skipResult {
			continue
		}
		resultMap[responseName] = completed
	}

	return resultMap, nil
}

// executeField coerces arguments, invokes the resolver once for the merged
// group, and completes the result. The propagate-null signal is absorbed here
// when the field type is nullable.
func executeField(state *executionState, objectType *schema.Type, object Resolver, fieldDef *schema.Field, fields []*language.Field, path *pathNode) (any, error) {
	field := fields[0]

	args, err := coerceArgumentValues(state, fieldDef, field)
	if err != nil {
		if errors.Is(err, errValidationBug) {
			state.addValidationBug(err.Error(), path)
		} else {
			state.addFieldError(err.Error(), field, path)
		}
		return tryNullify(fieldDef.Type)
	}

	start := time.Now()
	eventbus.Publish(state.context, events.FieldResolveStart{
		ObjectType: objectType.Name,
		Field:      field.Name,
		Path:       path.Path(),
	})

	resolvedValue, resolveErr := object.ResolveField(state.context, field.Name, args)
	resolved, rerr := forceValue(state.context, resolvedValue, resolveErr)

	eventbus.Publish(state.context, events.FieldResolveFinish{
		ObjectType: objectType.Name,
		Field:      field.Name,
		Path:       path.Path(),
		Err:        rerr,
		Duration:   time.Since(start),
	})

	if rerr != nil {
		state.addFieldError(rerr.Error(), field, path)
		return tryNullify(fieldDef.Type)
	}

	completed, err := completeValue(state, fieldDef.Type, fields, resolved, path)
	if err != nil {
		return tryNullify(fieldDef.Type)
	}
	return completed, nil
}

// tryNullify absorbs the propagate-null signal at a nullable position, or
// passes it on when the type is non-null.
func tryNullify(fieldType *schema.TypeRef) (any, error) {
	if schema.IsNonNull(fieldType) {
		return nil, errPropagateNull
	}
	return nil, nil
}

// getOperation retrieves the operation from the document
func getOperation(document *language.QueryDocument, operationName string) *language.OperationDefinition {
	if operationName == "" && len(document.Operations) == 1 {
		for _, op := range document.Operations {
			return op
		}
	}
	for _, op := range document.Operations {
		if op.Name == operationName {
			return op
		}
	}
	return nil
}

// mergeSelectionSets merges selection sets from multiple fields
func mergeSelectionSets(fields []*language.Field) language.SelectionSet {
	var merged language.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}

func (state *executionState) addFieldError(message string, field *language.Field, path *pathNode) {
	state.errors = append(state.errors, GraphQLError{
		Message:   message,
		Locations: positionLocations(field.Position),
		Path:      path.Path(),
	})
}

func (state *executionState) addValidationBug(message string, path *pathNode) {
	state.errors = append(state.errors, validationBugError(message, path.Path()))
}
