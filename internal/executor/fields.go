package executor

import (
	"github.com/quarrylabs/quarry/internal/language"
	"github.com/quarrylabs/quarry/internal/schema"
)

// collectedFieldMap preserves field order from the original query
type collectedFieldMap struct {
	fields []collectedField
	index  map[string]int
}

type collectedField struct {
	ResponseName string
	Fields       []*language.Field
}

func newCollectedFieldMap() *collectedFieldMap {
	return &collectedFieldMap{
		fields: make([]collectedField, 0),
		index:  make(map[string]int),
	}
}

func (cfm *collectedFieldMap) add(responseName string, field *language.Field) {
	if idx, exists := cfm.index[responseName]; exists {
		cfm.fields[idx].Fields = append(cfm.fields[idx].Fields, field)
	} else {
		cfm.index[responseName] = len(cfm.fields)
		cfm.fields = append(cfm.fields, collectedField{
			ResponseName: responseName,
			Fields:       []*language.Field{field},
		})
	}
}

func (cfm *collectedFieldMap) orderedFields() []collectedField {
	return cfm.fields
}

// collectFields flattens a selection set into response-key-ordered groups of
// field nodes to resolve together. All fields sharing a response key, even
// when contributed by different fragments, end up in one group.
func collectFields(state *executionState, objectType *schema.Type, selectionSet language.SelectionSet) *collectedFieldMap {
	groupedFields := newCollectedFieldMap()
	visitedFragments := make(map[string]bool)

	collectFieldsImpl(state, objectType, selectionSet, groupedFields, visitedFragments)

	return groupedFields
}

func collectFieldsImpl(state *executionState, objectType *schema.Type, selectionSet language.SelectionSet, groupedFields *collectedFieldMap, visitedFragments map[string]bool) {
	for _, selection := range selectionSet {
		switch sel := selection.(type) {
		case *language.Field:
			if !shouldIncludeNode(state, sel.Directives) {
				continue
			}

			responseName := sel.Alias
			if responseName == "" {
				responseName = sel.Name
			}

			groupedFields.add(responseName, sel)

		case *language.InlineFragment:
			if !shouldIncludeNode(state, sel.Directives) {
				continue
			}
			if !fragmentTypeApplies(state.schema, objectType, sel.TypeCondition) {
				continue
			}

			collectFieldsImpl(state, objectType, sel.SelectionSet, groupedFields, visitedFragments)

		case *language.FragmentSpread:
			if !shouldIncludeNode(state, sel.Directives) {
				continue
			}

			// A fragment already expanded in this collection contributes
			// nothing new; this also breaks spread cycles.
			if visitedFragments[sel.Name] {
				continue
			}
			visitedFragments[sel.Name] = true

			fragmentDef := state.document.Fragments.ForName(sel.Name)
			if fragmentDef == nil {
				continue
			}
			if !fragmentTypeApplies(state.schema, objectType, fragmentDef.TypeCondition) {
				continue
			}
			if !shouldIncludeNode(state, fragmentDef.Directives) {
				continue
			}

			collectFieldsImpl(state, objectType, fragmentDef.SelectionSet, groupedFields, visitedFragments)
		}
	}
}

// fragmentTypeApplies reports whether a fragment with the given type condition
// can apply to the concrete object type: the condition names the type itself,
// an interface it implements, or a union it belongs to.
func fragmentTypeApplies(s *schema.Schema, objectType *schema.Type, condition string) bool {
	if condition == "" || condition == objectType.Name {
		return true
	}
	cond := s.Types[condition]
	if cond == nil {
		return false
	}
	switch cond.Kind {
	case schema.TypeKindInterface:
		return objectType.Implements(condition) || cond.HasPossibleType(objectType.Name)
	case schema.TypeKindUnion:
		return cond.HasPossibleType(objectType.Name)
	}
	return false
}

// shouldIncludeNode checks if a node should be included based on directives
func shouldIncludeNode(state *executionState, directives language.DirectiveList) bool {
	if skip := directives.ForName("skip"); skip != nil {
		if skipIf, ok := directiveArgumentValue(state, skip, "if"); ok {
			if skipBool, ok := skipIf.(bool); ok && skipBool {
				return false
			}
		}
	}

	if include := directives.ForName("include"); include != nil {
		if includeIf, ok := directiveArgumentValue(state, include, "if"); ok {
			if includeBool, ok := includeIf.(bool); ok && !includeBool {
				return false
			}
		}
	}

	return true
}

func directiveArgumentValue(state *executionState, directive *language.Directive, argName string) (any, bool) {
	arg := directive.Arguments.ForName(argName)
	if arg == nil {
		return nil, false
	}
	return valueFromASTWithVars(arg.Value, state.variableValues), true
}
