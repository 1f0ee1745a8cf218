package introspection

import (
	"errors"
	"fmt"

	"github.com/quarrylabs/quarry/internal/language"
)

// SplitKind reports how an operation decomposed.
type SplitKind int

const (
	// SplitNone means the operation has no meta fields; run it whole
	// against the application root.
	SplitNone SplitKind = iota
	// SplitOnly means the operation is pure introspection.
	SplitOnly
	// SplitBoth means the operation carries both kinds and the two halves
	// must be executed separately and merged.
	SplitBoth
)

// SplitResult holds the decomposed documents. Introspection is set for
// SplitOnly and SplitBoth; Application for SplitNone and SplitBoth. Each half
// is a standalone document with exactly one operation, only the fragments it
// references, and only the variables it uses.
type SplitResult struct {
	Kind          SplitKind
	Introspection *language.QueryDocument
	Application   *language.QueryDocument
}

// ErrNestedMetaField is returned when __schema or __type selections are mixed
// with ordinary selections below the operation root. Such an object would need
// two resolver roots at once, which the split model does not support.
var ErrNestedMetaField = errors.New("cannot mix schema introspection with ordinary fields below the operation root")

// Split partitions a query operation into an introspection half (the __schema
// and __type selections plus the fragments and variables they need) and an
// application half. Mutations and subscriptions are never split.
func Split(document *language.QueryDocument, operation *language.OperationDefinition) (*SplitResult, error) {
	if operation.Operation != language.Query {
		return &SplitResult{Kind: SplitNone, Application: document}, nil
	}

	sp := &splitter{
		document: document,
		status:   map[string]fragmentStatus{},
		intro:    map[string]*language.FragmentDefinition{},
		app:      map[string]*language.FragmentDefinition{},
	}
	intro, app, err := sp.filterSelectionSet(operation.SelectionSet)
	if err != nil {
		return nil, err
	}

	switch {
	case len(intro) == 0:
		return &SplitResult{Kind: SplitNone, Application: document}, nil
	case len(app) == 0:
		return &SplitResult{
			Kind:          SplitOnly,
			Introspection: sp.makeDocument(operation, intro, sp.intro),
		}, nil
	default:
		return &SplitResult{
			Kind:          SplitBoth,
			Introspection: sp.makeDocument(operation, intro, sp.intro),
			Application:   sp.makeDocument(operation, app, sp.app),
		}, nil
	}
}

type fragmentStatus int

const (
	fragmentUnvisited fragmentStatus = iota
	fragmentOngoing
	fragmentDone
)

type splitter struct {
	document *language.QueryDocument
	status   map[string]fragmentStatus
	// filtered fragment variants per half; nil entry means the variant
	// filtered down to nothing and spreads of it are dropped.
	intro map[string]*language.FragmentDefinition
	app   map[string]*language.FragmentDefinition
}

// filterSelectionSet partitions one selection set. Meta fields go to the
// introspection half, plain fields to the application half, and an ordinary
// field whose sub-selections all turned out to be introspection moves to the
// introspection half as a whole. A field whose sub-selections land in both
// halves cannot be split and is rejected.
func (s *splitter) filterSelectionSet(set language.SelectionSet) (intro, app language.SelectionSet, err error) {
	for _, sel := range set {
		switch sel := sel.(type) {
		case *language.Field:
			switch {
			case sel.Name == "__schema" || sel.Name == "__type":
				intro = append(intro, sel)
			case len(sel.SelectionSet) == 0:
				app = append(app, sel)
			default:
				subIntro, subApp, err := s.filterSelectionSet(sel.SelectionSet)
				if err != nil {
					return nil, nil, err
				}
				switch {
				case len(subIntro) == 0:
					app = append(app, sel)
				case len(subApp) == 0:
					intro = append(intro, fieldWith(sel, subIntro))
				default:
					return nil, nil, ErrNestedMetaField
				}
			}
		case *language.FragmentSpread:
			if err := s.filterFragment(sel.Name); err != nil {
				return nil, nil, err
			}
			if s.intro[sel.Name] != nil {
				intro = append(intro, sel)
			}
			if s.app[sel.Name] != nil {
				app = append(app, sel)
			}
		case *language.InlineFragment:
			subIntro, subApp, err := s.filterSelectionSet(sel.SelectionSet)
			if err != nil {
				return nil, nil, err
			}
			if len(subIntro) > 0 {
				intro = append(intro, inlineWith(sel, subIntro))
			}
			if len(subApp) > 0 {
				app = append(app, inlineWith(sel, subApp))
			}
		}
	}
	return intro, app, nil
}

func (s *splitter) filterFragment(name string) error {
	switch s.status[name] {
	case fragmentDone:
		return nil
	case fragmentOngoing:
		return fmt.Errorf("fragment cycle through %q", name)
	}
	s.status[name] = fragmentOngoing

	def := s.document.Fragments.ForName(name)
	if def == nil {
		return fmt.Errorf("fragment %q not defined", name)
	}
	intro, app, err := s.filterSelectionSet(def.SelectionSet)
	if err != nil {
		return err
	}
	if len(intro) > 0 {
		s.intro[name] = fragmentWith(def, intro)
	}
	if len(app) > 0 {
		s.app[name] = fragmentWith(def, app)
	}
	s.status[name] = fragmentDone
	return nil
}

func fieldWith(f *language.Field, set language.SelectionSet) *language.Field {
	c := *f
	c.SelectionSet = set
	return &c
}

func inlineWith(f *language.InlineFragment, set language.SelectionSet) *language.InlineFragment {
	c := *f
	c.SelectionSet = set
	return &c
}

func fragmentWith(f *language.FragmentDefinition, set language.SelectionSet) *language.FragmentDefinition {
	c := *f
	c.SelectionSet = set
	return &c
}

// makeDocument assembles one half into a standalone document: the operation
// with the filtered root selections, the fragment variants it transitively
// references, and only the variable definitions still in use.
func (s *splitter) makeDocument(op *language.OperationDefinition, root language.SelectionSet, variants map[string]*language.FragmentDefinition) *language.QueryDocument {
	referenced := map[string]bool{}
	collectFragmentRefs(root, variants, referenced)

	var fragments language.FragmentDefinitionList
	for _, def := range s.document.Fragments {
		if referenced[def.Name] {
			fragments = append(fragments, variants[def.Name])
		}
	}

	used := map[string]bool{}
	collectVariableRefs(root, used)
	collectDirectiveVars(op.Directives, used)
	for _, frag := range fragments {
		collectVariableRefs(frag.SelectionSet, used)
		collectDirectiveVars(frag.Directives, used)
	}
	var variables language.VariableDefinitionList
	for _, def := range op.VariableDefinitions {
		if used[def.Variable] {
			variables = append(variables, def)
		}
	}

	opCopy := *op
	opCopy.SelectionSet = root
	opCopy.VariableDefinitions = variables

	return &language.QueryDocument{
		Operations: language.OperationDefinitionList{&opCopy},
		Fragments:  fragments,
	}
}

func collectFragmentRefs(set language.SelectionSet, variants map[string]*language.FragmentDefinition, out map[string]bool) {
	for _, sel := range set {
		switch sel := sel.(type) {
		case *language.Field:
			collectFragmentRefs(sel.SelectionSet, variants, out)
		case *language.InlineFragment:
			collectFragmentRefs(sel.SelectionSet, variants, out)
		case *language.FragmentSpread:
			if out[sel.Name] {
				continue
			}
			out[sel.Name] = true
			if def := variants[sel.Name]; def != nil {
				collectFragmentRefs(def.SelectionSet, variants, out)
			}
		}
	}
}

func collectVariableRefs(set language.SelectionSet, out map[string]bool) {
	for _, sel := range set {
		switch sel := sel.(type) {
		case *language.Field:
			for _, arg := range sel.Arguments {
				collectValueVars(arg.Value, out)
			}
			collectDirectiveVars(sel.Directives, out)
			collectVariableRefs(sel.SelectionSet, out)
		case *language.InlineFragment:
			collectDirectiveVars(sel.Directives, out)
			collectVariableRefs(sel.SelectionSet, out)
		case *language.FragmentSpread:
			collectDirectiveVars(sel.Directives, out)
		}
	}
}

func collectDirectiveVars(directives language.DirectiveList, out map[string]bool) {
	for _, d := range directives {
		for _, arg := range d.Arguments {
			collectValueVars(arg.Value, out)
		}
	}
}

func collectValueVars(v *language.Value, out map[string]bool) {
	if v == nil {
		return
	}
	if v.Kind == language.Variable {
		out[v.Raw] = true
	}
	for _, child := range v.Children {
		collectValueVars(child.Value, out)
	}
}
