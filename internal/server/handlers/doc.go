// Package handlers implements the HTTP API on top of the publish
// orchestrator and the feed generator.
package handlers
