package executor

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Path []PathElement

type PathElement = any

// Location is a source position in the query document.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// GraphQLError represents an error that occurred during execution
type GraphQLError struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       Path           `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e GraphQLError) Error() string {
	return e.Message
}

// suspectedValidationBug marks errors for conditions a validated document
// should make impossible, so they read as upstream validator bugs rather
// than user mistakes.
const suspectedValidationBug = "SUSPECTED_VALIDATION_BUG"

func validationBugError(message string, path Path) GraphQLError {
	return GraphQLError{
		Message:    message,
		Path:       path,
		Extensions: map[string]any{suspectedValidationBug: true},
	}
}

// RequestError is a whole-request failure detected before or outside
// per-field resolution. It aborts execution; the response carries no data.
type RequestError struct {
	Message   string
	Locations []Location
}

func (e *RequestError) Error() string { return e.Message }

// Response is the wire-visible result of executing a request.
//
// Data is nil in two distinct cases: a request error aborted execution before
// any field ran (HasData false, the data key is absent), or null propagated
// all the way to the root (HasData true, data is null).
type Response struct {
	Errors  []GraphQLError
	Data    map[string]any
	HasData bool
}

func requestErrorResponse(err *RequestError) *Response {
	return &Response{Errors: []GraphQLError{{Message: err.Message, Locations: err.Locations}}}
}

// MarshalJSON writes errors before data, omitting the data key entirely when
// execution was aborted by a request error.
func (r *Response) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if len(r.Errors) > 0 {
		buf.WriteString(`"errors":`)
		b, err := json.Marshal(r.Errors)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	if r.HasData {
		if len(r.Errors) > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(`"data":`)
		if r.Data == nil {
			buf.WriteString("null")
		} else {
			b, err := json.Marshal(r.Data)
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Merge folds another response into this one: errors are concatenated and
// data objects are shallow-merged. A half whose data is null (or absent)
// nullifies (or removes) the combined data.
func (r *Response) Merge(other *Response) {
	r.Errors = append(r.Errors, other.Errors...)
	switch {
	case !r.HasData || !other.HasData:
		r.Data = nil
		r.HasData = false
	case r.Data == nil || other.Data == nil:
		r.Data = nil
	default:
		for k, v := range other.Data {
			r.Data[k] = v
		}
	}
}

// pathNode is a shared-suffix chain of response path segments. Children
// borrow their parent's chain and never mutate it; the full path is
// materialized only when recording an error.
type pathNode struct {
	elem PathElement
	prev *pathNode
}

func (p *pathNode) Path() Path {
	if p == nil {
		return nil
	}
	return append(p.prev.Path(), p.elem)
}

func (p *pathNode) child(elem PathElement) *pathNode {
	return &pathNode{elem: elem, prev: p}
}

func pathToString(path Path) string {
	result := ""
	for i, elem := range path {
		if i > 0 {
			result += "."
		}
		switch v := elem.(type) {
		case string:
			result += v
		case int:
			result += fmt.Sprintf("[%d]", v)
		}
	}
	return result
}
