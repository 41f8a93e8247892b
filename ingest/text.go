package ingest

import (
	"fmt"
	"os"

	"mediarag/types"
)

// LoadText reads a plain-text file as a single document.
func LoadText(path string) ([]types.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}
	return []types.Document{{
		Content: string(data),
		Metadata: map[string]any{
			"source": path,
		},
	}}, nil
}
