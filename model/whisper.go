package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"mediarag/types"
)

// WhisperClient submits one audio chunk per request to a Whisper-compatible
// transcription endpoint and returns timed segments. The service rejects
// oversized inputs, which is why callers chunk the audio first.
type WhisperClient struct {
	apiURL string
	apiKey string
	model  string
	client *http.Client
}

func NewWhisperClient(apiURL, apiKey, model string) *WhisperClient {
	return &WhisperClient{
		apiURL: apiURL,
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: 60 * time.Minute},
	}
}

type whisperSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type whisperResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
}

// Transcribe uploads the chunk and parses the verbose_json response.
// Timestamps in the result are chunk-local.
func (w *WhisperClient) Transcribe(ctx context.Context, audioPath string) ([]types.Segment, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("model", w.model); err != nil {
		return nil, err
	}
	if err := writer.WriteField("response_format", "verbose_json"); err != nil {
		return nil, err
	}

	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.apiURL, &body)
	if err != nil {
		return nil, err
	}
	if w.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+w.apiKey)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	start := time.Now()
	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("whisper status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode transcription: %w", err)
	}
	fmt.Printf("[WHISPER] transcribed %s in %.2fs (%d segments)\n", filepath.Base(audioPath), time.Since(start).Seconds(), len(parsed.Segments))

	segments := make([]types.Segment, 0, len(parsed.Segments))
	for _, s := range parsed.Segments {
		segments = append(segments, types.Segment{Start: s.Start, End: s.End, Text: s.Text})
	}
	return segments, nil
}
