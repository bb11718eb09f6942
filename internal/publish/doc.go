// Package publish is the publish orchestrator: single-page publish, bulk
// publish, and unpublish against a target environment.
//
// Every document runs through the same stage machine:
//
//	load → resolve_layout → compose_fragments → render → upload → [index] → [dequeue]
//
// A failure before upload aborts that document only. Index and dequeue run
// after the artifact is live, so their failures are logged as warnings and
// never undo the upload. Nothing is retried automatically.
package publish
