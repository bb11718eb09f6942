package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultWarning ResultLabel = "warning"
	ResultFatal   ResultLabel = "fatal"
)

// OutcomeLabel is the final state of one published document.
type OutcomeLabel string

const (
	OutcomePublished   OutcomeLabel = "published"
	OutcomeWarning     OutcomeLabel = "published_with_warnings"
	OutcomeFailed      OutcomeLabel = "failed"
	OutcomeUnpublished OutcomeLabel = "unpublished"
)

// Recorder defines the observability hooks of a publish run.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	ObserveRunDuration(mode string, d time.Duration)
	IncDocumentOutcome(outcome OutcomeLabel)
	IncSideEffectFailure(effect string)
	IncFeedOutcome(kind string, success bool)
	SetPublishConcurrency(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) ObserveRunDuration(string, time.Duration)   {}
func (NoopRecorder) IncDocumentOutcome(OutcomeLabel)            {}
func (NoopRecorder) IncSideEffectFailure(string)                {}
func (NoopRecorder) IncFeedOutcome(string, bool)                {}
func (NoopRecorder) SetPublishConcurrency(int)                  {}
