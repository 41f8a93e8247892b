package status

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type State string

const (
	StateCompleted State = "COMPLETED"
	StateFailed    State = "FAILED"
)

// Record is the structured outcome of one ingestion request, keyed by the
// caller's request id.
type Record struct {
	RequestID   int            `json:"request_id"`
	APIName     string         `json:"api_name"`
	Status      State          `json:"status"`
	ErrorDetail string         `json:"error_detail,omitempty"`
	Data        map[string]any `json:"data_json,omitempty"`
}

// Reporter posts status records back to the calling system. Delivery is best
// effort: a lost status never fails an already-finished job.
type Reporter struct {
	client *http.Client
}

func NewReporter() *Reporter {
	return &Reporter{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (r *Reporter) Report(ctx context.Context, endpoint string, record Record) error {
	if endpoint == "" {
		return nil
	}

	body, err := json.Marshal(record)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("status endpoint returned %d", resp.StatusCode)
	}
	return nil
}
