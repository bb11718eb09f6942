// Package metrics provides publishing metrics behind a small Recorder
// interface.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics never need nil checks at call sites:
//
//	pub := publish.New(repo, blobs, q, targets, publish.WithRecorder(metrics.NoopRecorder{}))
//
// The daemon swaps in a PrometheusRecorder when monitoring.metrics.enabled
// is set and serves the registry through HTTPHandler.
package metrics
