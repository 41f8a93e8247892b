package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestStageErrClassification(t *testing.T) {
	err := stageErr("ab12cd34", "transcribe", ErrTranscription, errors.New("stt backend down"))

	if !errors.Is(err, ErrTranscription) {
		t.Errorf("error does not classify as ErrTranscription: %v", err)
	}
	if errors.Is(err, ErrAcquisition) {
		t.Errorf("error wrongly classifies as ErrAcquisition: %v", err)
	}

	var perr *PipelineError
	if !errors.As(err, &perr) {
		t.Fatalf("error %T does not carry pipeline context", err)
	}
	if perr.JobID != "ab12cd34" || perr.Stage != "transcribe" {
		t.Errorf("pipeline context = %s/%s", perr.JobID, perr.Stage)
	}
	if !strings.Contains(err.Error(), "stt backend down") {
		t.Errorf("cause missing from message: %v", err)
	}
}

func TestStageErrKeepsCauseChain(t *testing.T) {
	cause := fmt.Errorf("upload interrupted: %w", context.Canceled)
	err := stageErr("ab12cd34", "acquire", ErrAcquisition, cause)

	if !errors.Is(err, ErrAcquisition) {
		t.Errorf("error does not classify as ErrAcquisition: %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("cancellation no longer detectable through the wrap: %v", err)
	}
}
