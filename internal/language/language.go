package language

import (
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// ParseQuery parses an executable document without validating it.
func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ParseSchema parses an SDL document without building a type system from it.
func ParseSchema(name, source string) (*SchemaDocument, error) {
	doc, err := parser.ParseSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadSchema parses SDL and builds a validated type system from it.
func LoadSchema(name, source string) (*Schema, error) {
	sch, err := gqlparser.LoadSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, err
	}
	return sch, nil
}

// LoadQuery parses an executable document and validates it against the schema.
// The executor assumes its inputs went through this or an equivalent upstream
// validator.
func LoadQuery(sch *Schema, source string) (*QueryDocument, error) {
	doc, errs := gqlparser.LoadQuery(sch, source)
	if len(errs) > 0 {
		return nil, errs
	}
	return doc, nil
}
