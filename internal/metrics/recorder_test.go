package metrics

import (
	"testing"
	"time"
)

// NoopRecorder must satisfy the interface and accept every call.
func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("render", time.Millisecond)
	r.IncStageResult("render", ResultSuccess)
	r.ObserveRunDuration("bulk-all", time.Second)
	r.IncDocumentOutcome(OutcomePublished)
	r.IncSideEffectFailure("index")
	r.IncFeedOutcome("atom", true)
	r.SetPublishConcurrency(4)
}
