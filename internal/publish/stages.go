package publish

import (
	"fmt"
)

// StageName identifies a per-document stage.
type StageName string

const (
	StageLoad             StageName = "load"
	StageResolveLayout    StageName = "resolve_layout"
	StageComposeFragments StageName = "compose_fragments"
	StageRender           StageName = "render"
	StageUpload           StageName = "upload"
	StageIndex            StageName = "index"
	StageDequeue          StageName = "dequeue"
)

// StageErrorKind classifies a stage failure.
type StageErrorKind string

const (
	StageErrorFatal   StageErrorKind = "fatal"   // Document must abort.
	StageErrorWarning StageErrorKind = "warning" // Artifact is live; record and continue.
)

// StageError is a structured error carrying category and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}

func newWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}
