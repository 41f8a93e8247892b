package ingest

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"mediarag/types"
)

// Summarizer produces a short summary of the leading passages. Summary
// generation is best effort: the pipeline logs its failure and moves on.
type Summarizer interface {
	Summarize(ctx context.Context, passages []types.Passage, limit int) (string, error)
}

// Pipeline is the ingestion core: acquisition, normalization, chunked
// transcription, formatting, passage splitting and metadata merging, all
// inside one scoped scratch workspace per job.
type Pipeline struct {
	cfg        types.Config
	acquirer   *Acquirer
	transcoder *Transcoder
	stt        Transcriber
	summarizer Summarizer
	pdf        *PDFLoader
}

func NewPipeline(cfg types.Config, stt Transcriber, summarizer Summarizer) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		acquirer:   NewAcquirer(),
		transcoder: NewTranscoder(),
		stt:        stt,
		summarizer: summarizer,
		pdf:        NewPDFLoader(NewPDFConverter(cfg.ConverterURL)),
	}
}

// Ingest runs the pipeline for one request and returns the passages, the
// summary and, for media jobs, the transcript. Whatever happens, the job's
// scratch directory is gone when it returns.
func (p *Pipeline) Ingest(ctx context.Context, req types.IngestRequest) (*types.IngestResult, error) {
	fileType := strings.ToLower(req.FileType)
	processType := types.ProcessType(req.ProcessType)

	// Closed enums are checked before any I/O happens.
	if !types.SupportedProcessTypes[processType] {
		return nil, stageErr("", "validate", ErrUnsupportedType, fmt.Errorf("process type %q", req.ProcessType))
	}
	if !types.SupportedFileTypes[fileType] {
		return nil, stageErr("", "validate", ErrUnsupportedType, fmt.Errorf("file type %q", req.FileType))
	}

	jobID := uuid.New().String()[:8]
	fmt.Printf("[INGEST] job %s started: file=%s process_type=%s\n", jobID, req.FileName, processType)

	ws, err := NewWorkspace(p.cfg.ScratchRoot, jobID)
	if err != nil {
		return nil, stageErr(jobID, "workspace", ErrAcquisition, err)
	}
	defer ws.Cleanup()

	localPath, err := p.acquirer.Acquire(ctx, req.PreSignedURL, ws.Path("input_"+jobID+"."+fileType))
	if err != nil {
		return nil, stageErr(jobID, "acquire", ErrAcquisition, err)
	}

	var documents []types.Document
	var transcript *types.Transcript

	switch processType {
	case types.ProcessText:
		documents, err = LoadText(localPath)
		if err != nil {
			return nil, stageErr(jobID, "load", ErrAcquisition, err)
		}
	case types.ProcessPDF:
		documents, err = p.pdf.Load(ctx, localPath, ws)
		if err != nil {
			return nil, stageErr(jobID, "load", ErrAcquisition, err)
		}
	case types.ProcessAudio, types.ProcessVideo:
		documents, transcript, err = p.loadMedia(ctx, jobID, ws, localPath, fileType)
		if err != nil {
			return nil, err
		}
	}

	splitter, err := NewSplitter(p.cfg.PassageSize, p.cfg.PassageOverlap)
	if err != nil {
		return nil, &PipelineError{JobID: jobID, Stage: "split", Err: err}
	}
	passages := splitter.SplitDocuments(documents)

	docID := uuid.New()
	for i := range passages {
		passages[i].ID = uuid.New()
		passages[i].DocID = docID
	}

	MergeMetadata(passages, req.Metadata, Provenance{
		OriginalFileName: req.OriginalFileName,
		FileName:         req.FileName,
		FileType:         fileType,
		ProcessType:      string(processType),
		Tags:             req.Params.Tags,
		Synonyms:         req.Params.Synonyms,
	})

	summary := req.Params.Summary
	if summary == "" && p.summarizer != nil && len(passages) > 0 {
		summary, err = p.summarizer.Summarize(ctx, passages, p.cfg.SummaryPassages)
		if err != nil {
			fmt.Printf("[INGEST] job %s: summary generation failed: %v\n", jobID, err)
			summary = ""
		}
	}

	fmt.Printf("[INGEST] job %s completed: %d passages\n", jobID, len(passages))
	return &types.IngestResult{
		DocID:      docID,
		Passages:   passages,
		Summary:    summary,
		Transcript: transcript,
	}, nil
}

// loadMedia normalizes the input to mono low-bitrate opus, transcribes it in
// bounded chunks and formats the reconciled transcript.
func (p *Pipeline) loadMedia(ctx context.Context, jobID string, ws *Workspace, localPath, fileType string) ([]types.Document, *types.Transcript, error) {
	mode := transcodeModeFor(fileType)

	normalized := ws.Path("normalized_" + jobID + ".ogg")
	if err := p.transcoder.Transcode(ctx, localPath, normalized, mode); err != nil {
		return nil, nil, stageErr(jobID, "normalize", ErrNormalization, err)
	}

	// The raw input is not needed once the normalized artifact exists.
	if strings.HasPrefix(localPath, ws.Dir) {
		os.Remove(localPath)
	}

	chunked := NewChunkedTranscriber(p.transcoder, p.stt, p.cfg.ChunkSeconds, p.cfg.ChunkWorkers)
	segments, err := chunked.Transcribe(ctx, normalized, ws)
	if err != nil {
		return nil, nil, stageErr(jobID, "transcribe", ErrTranscription, err)
	}
	os.Remove(normalized)

	documents := FormatTranscript(segments)

	entries := make([]types.TranscriptEntry, 0, len(documents))
	for _, doc := range documents {
		entries = append(entries, types.TranscriptEntry{
			Text:      doc.Content,
			StartTime: doc.Metadata["start_time"].(string),
			EndTime:   doc.Metadata["end_time"].(string),
		})
	}
	return documents, &types.Transcript{Transcript: entries}, nil
}
