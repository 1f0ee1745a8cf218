package events

import "time"

// OperationStart is emitted before executing a GraphQL operation.
type OperationStart struct {
	OperationName string
	OperationType string
}

// OperationFinish is emitted after executing a GraphQL operation.
type OperationFinish struct {
	OperationName string
	OperationType string
	ErrorCount    int
	Duration      time.Duration
}

// FieldResolveStart is emitted before invoking a resolver for one field group.
type FieldResolveStart struct {
	ObjectType string
	Field      string
	Path       []any
}

// FieldResolveFinish is emitted after a resolver call returns.
type FieldResolveFinish struct {
	ObjectType string
	Field      string
	Path       []any
	Err        error
	Duration   time.Duration
}
