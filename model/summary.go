package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"

	"mediarag/types"
)

type GenerateRequest struct {
	Model  string `json:"model"`
	System string `json:"system"`
	Prompt string `json:"prompt"`
}

type GenerateResponse struct {
	Response string `json:"response"`
}

// Summarizer builds a document summary out of the leading passages through
// an Ollama-style generate endpoint.
type Summarizer struct {
	apiURL string
	model  string
	client *http.Client
}

func NewSummarizer(apiURL, model string) *Summarizer {
	return &Summarizer{
		apiURL: apiURL,
		model:  model,
		client: &http.Client{Timeout: 10 * time.Minute},
	}
}

func (s *Summarizer) Summarize(ctx context.Context, passages []types.Passage, limit int) (string, error) {
	if limit > len(passages) {
		limit = len(passages)
	}

	var sb strings.Builder
	for _, p := range passages[:limit] {
		sb.WriteString(p.Content)
		sb.WriteString("\n")
	}

	prompt := fmt.Sprintf(`Write a concise summary of the following content. Return only the summary itself.
Content:
%s
Summary:`, sb.String())

	reqBody, err := json.Marshal(GenerateRequest{
		Model:  s.model,
		System: "You are an assistant that summarizes documents. Answer clearly and to the point, without adding any additional information.",
		Prompt: prompt,
	})
	if err != nil {
		return "", err
	}

	count, _ := CountTokens(reqBody)
	fmt.Println("[SUMMARY] prompt size in tokens:", count)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var genResp GenerateResponse
	if err := json.Unmarshal(body, &genResp); err == nil && genResp.Response != "" {
		return genResp.Response, nil
	}

	// Streaming response: collect the chunks into one string.
	var output strings.Builder
	decoder := json.NewDecoder(bytes.NewReader(body))
	for decoder.More() {
		var chunk GenerateResponse
		if err := decoder.Decode(&chunk); err != nil {
			break
		}
		output.WriteString(chunk.Response)
	}
	return output.String(), nil
}

func CountTokens(data []byte) (int, error) {
	enc, err := tiktoken.EncodingForModel("gpt-3.5-turbo")
	if err != nil {
		return 0, err
	}
	tokens := enc.Encode(string(data), nil, nil)
	return len(tokens), nil
}
