package ingest

import (
	"fmt"
	"math"

	"mediarag/types"
)

// FormatTimestamp renders seconds as HH:MM:SS.mmm with zero-padded fields.
func FormatTimestamp(seconds float64) string {
	hours := int(seconds / 3600)
	minutes := int(math.Mod(seconds, 3600) / 60)
	secs := math.Mod(seconds, 60)
	return fmt.Sprintf("%02d:%02d:%06.3f", hours, minutes, secs)
}

// ParseTimestamp inverts FormatTimestamp to within a millisecond.
func ParseTimestamp(ts string) (float64, error) {
	var hours, minutes int
	var secs float64
	if _, err := fmt.Sscanf(ts, "%d:%d:%f", &hours, &minutes, &secs); err != nil {
		return 0, fmt.Errorf("unparsable timestamp %q: %w", ts, err)
	}
	return float64(hours)*3600 + float64(minutes)*60 + secs, nil
}

// FormatTranscript maps each reconciled segment to one document whose
// metadata carries the human-readable start and end offsets.
func FormatTranscript(segments []types.Segment) []types.Document {
	documents := make([]types.Document, 0, len(segments))
	for _, segment := range segments {
		documents = append(documents, types.Document{
			Content: segment.Text,
			Metadata: map[string]any{
				"start_time": FormatTimestamp(segment.Start),
				"end_time":   FormatTimestamp(segment.End),
			},
		})
	}
	return documents
}
