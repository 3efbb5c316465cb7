package reports

import (
	"errors"
	"fmt"
)

// Stage identifies the pipeline step that failed. Every ingestion failure is
// classified by exactly one stage; none are retried by the pipeline itself.
type Stage string

const (
	StageValidation  Stage = "validation"
	StageFingerprint Stage = "fingerprint"
	StageNotarize    Stage = "notarize"
	StageExtract     Stage = "extract"
	StagePersist     Stage = "persist"
)

// IngestError wraps a stage failure. The whole ingestion attempt aborts on
// the first one: no partial record, no silent downgrade to a degraded record.
type IngestError struct {
	Stage Stage
	Err   error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("ingest %s: %v", e.Stage, e.Err)
}

func (e *IngestError) Unwrap() error { return e.Err }

// FailedStage extracts the stage from an ingestion error, or "" when err is
// not an IngestError.
func FailedStage(err error) Stage {
	var ie *IngestError
	if errors.As(err, &ie) {
		return ie.Stage
	}
	return ""
}

func failed(stage Stage, err error) error {
	return &IngestError{Stage: stage, Err: err}
}
