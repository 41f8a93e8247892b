package ingest

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every stage failure wraps exactly one of these so callers
// can classify with errors.Is without parsing messages.
var (
	ErrAcquisition     = errors.New("acquisition failed")
	ErrNormalization   = errors.New("normalization failed")
	ErrTranscription   = errors.New("transcription failed")
	ErrConfiguration   = errors.New("invalid configuration")
	ErrUnsupportedType = errors.New("unsupported type")
)

// PipelineError carries job and stage context around the underlying cause.
type PipelineError struct {
	JobID string
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("job %s: stage %s: %v", e.JobID, e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// stageErr wraps a cause with its taxonomy kind and pipeline position.
func stageErr(jobID, stage string, kind, cause error) error {
	return &PipelineError{
		JobID: jobID,
		Stage: stage,
		Err:   fmt.Errorf("%w: %w", kind, cause),
	}
}
