package types

import (
	"time"

	"github.com/google/uuid"
)

type ProcessType string

const (
	ProcessText  ProcessType = "text"
	ProcessPDF   ProcessType = "pdf"
	ProcessAudio ProcessType = "audio"
	ProcessVideo ProcessType = "video"
)

// SupportedProcessTypes is the closed set accepted by the ingest entry point.
var SupportedProcessTypes = map[ProcessType]bool{
	ProcessText:  true,
	ProcessPDF:   true,
	ProcessAudio: true,
	ProcessVideo: true,
}

// SupportedFileTypes is the closed set of recognized container/codec extensions.
var SupportedFileTypes = map[string]bool{
	"pdf": true, "txt": true,
	"mp3": true, "flac": true, "mpga": true, "m4a": true,
	"ogg": true, "wav": true, "webm": true,
	"mp4": true, "mkv": true, "avi": true, "mov": true, "mpeg": true,
}

// VideoFileTypes marks extensions that take the audio-extraction path.
// webm and mpeg are treated as audio containers and go through the
// metadata-stripping compress path instead.
var VideoFileTypes = map[string]bool{
	"mp4": true, "mkv": true, "avi": true, "mov": true,
}

// Segment is one timed utterance returned by the transcription capability.
// After reconciliation Start/End are global offsets in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Document is one unit of extracted content with free-form metadata.
type Document struct {
	Content  string
	Metadata map[string]any
}

// Passage is the retrieval-grain unit sent to indexing.
type Passage struct {
	ID        uuid.UUID
	DocID     uuid.UUID
	Index     int
	Content   string
	Metadata  map[string]any
	Embedding []float32
}

// StoredDocument is the documents table row owning a set of passages.
type StoredDocument struct {
	ID         uuid.UUID
	Title      string
	Source     string
	SourcePath string
	Namespace  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Version    int
}

type TranscriptEntry struct {
	Text      string `json:"text"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Transcript is the optional transcript payload returned for media jobs.
type Transcript struct {
	Transcript []TranscriptEntry `json:"transcript"`
}

// IngestResult is what the pipeline returns to its caller.
type IngestResult struct {
	DocID      uuid.UUID
	Passages   []Passage
	Summary    string
	Transcript *Transcript
}

// Config is built once at process start and passed into each component.
// No component reads environment state after construction.
type Config struct {
	ScratchRoot     string
	ChunkSeconds    float64
	ChunkWorkers    int
	PassageSize     int
	PassageOverlap  int
	SummaryPassages int

	WhisperURL   string
	WhisperKey   string
	WhisperModel string

	LLMURL   string
	LLMModel string

	EmbeddingURL   string
	EmbeddingModel string

	ConverterURL string
}

// LoaderConfig drives the directory-watching loader daemon.
type LoaderConfig struct {
	MonitoringTime time.Duration
	SourceDir      string
	ArchiveDir     string
	BadDir         string
	Namespace      string
}
