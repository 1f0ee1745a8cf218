// Package executor implements a single-threaded GraphQL executor over a
// resolver-capability abstraction, with spec-conformant field collection,
// input coercion, value completion, and null propagation.
//
// # Overview
//
// The executor walks one operation of a validated document depth-first:
//   - Collect fields: flatten the selection set through inline fragments and
//     fragment spreads into response-key-ordered groups, so that all fields
//     sharing a response key resolve together with one resolver call.
//   - Coerce arguments: convert argument literals and variable references into
//     JSON-shaped Go values per the declared types, applying defaults and
//     Non-Null checks.
//   - Resolve: call Resolver.ResolveField once per group, strictly in
//     declaration order. Deferred values (thunks) are forced at the point of
//     invocation, so completion sees one shape for synchronous and deferred
//     resolvers alike.
//   - Complete: recursively turn the ResolvedValue into response JSON against
//     the declared type: leaves go through output coercion, sequences are
//     drained item by item with index-aware paths, and objects recurse into
//     collection and execution of the merged sub-selection.
//
// # Null Propagation
//
// Completion returns either a JSON value or an explicit propagate-null
// signal, never a panic. The signal means the nearest nullable ancestor
// position must become null, discarding everything beneath it; if nothing up
// to the root is nullable the response's data becomes null. The underlying
// failure is recorded exactly once, with source locations and a response
// path, at the point of detection.
//
// # Error Taxonomy
//
// Request errors (unknown operation, missing non-null variable) abort before
// any resolver runs and produce a response without data. Field errors are
// scoped to one field and only reshape data through propagation. Conditions a
// validated document should rule out are reported with a
// SUSPECTED_VALIDATION_BUG extension so they read as upstream validator bugs.
package executor
