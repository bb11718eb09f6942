// Package errors provides the classified error primitives used across the publisher.
//
// A ClassifiedError carries a category (what failed), a severity (how much
// of the request it takes down) and a retry hint for callers. The publish
// pipeline maps its error taxonomy onto severities:
//
//   - SeverityFatal: the whole request aborts (store unreachable, page or
//     layout missing in single-document mode).
//   - SeverityError: one item of a batch failed, the batch continues.
//   - SeverityWarning: a best-effort side effect failed after the artifact
//     was already live (index enqueue, dequeue).
//
// Example usage:
//
//	err := errors.NotFoundError("layout not found").
//		WithContext("layout", ref).
//		WithContext("document_id", doc.ID).
//		Build()
package errors
