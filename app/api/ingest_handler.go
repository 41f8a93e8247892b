package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"mediarag/ingest"
	"mediarag/model"
	"mediarag/status"
	"mediarag/store"
	"mediarag/types"
)

type IngestHandler struct {
	pipeline *ingest.Pipeline
	indexer  *store.Indexer
	reporter *status.Reporter
}

func NewIngestHandler(cfg types.Config, st store.DBStorer) *IngestHandler {
	whisper := model.NewWhisperClient(cfg.WhisperURL, cfg.WhisperKey, cfg.WhisperModel)
	summarizer := model.NewSummarizer(cfg.LLMURL, cfg.LLMModel)
	embedder := model.NewOllamaEmbedder(cfg.EmbeddingURL, cfg.EmbeddingModel)

	return &IngestHandler{
		pipeline: ingest.NewPipeline(cfg, whisper, summarizer),
		indexer:  store.NewIndexer(st, embedder),
		reporter: status.NewReporter(),
	}
}

// HandleIngest validates the request, rejects unknown types before any I/O
// and runs the pipeline as a background task. The outcome is delivered to
// the caller's status endpoint.
func (h *IngestHandler) HandleIngest(c *fiber.Ctx) error {
	var req types.IngestRequest
	if c.BodyParser(&req) != nil {
		return ErrBadRequest()
	}

	if errors := types.Validate(&req); len(errors) > 0 {
		return types.NewValidationError(errors)
	}

	if !types.SupportedProcessTypes[types.ProcessType(req.ProcessType)] ||
		!types.SupportedFileTypes[strings.ToLower(req.FileType)] {
		return ErrUnsupported(req.FileType, req.ProcessType)
	}

	go h.process(context.Background(), req)

	return c.JSON(fiber.Map{"status": "accepted", "request_id": req.RequestID})
}

func (h *IngestHandler) process(ctx context.Context, req types.IngestRequest) {
	result, err := h.pipeline.Ingest(ctx, req)
	if err != nil {
		fmt.Printf("[INGEST] request %d failed: %v\n", req.RequestID, err)
		h.report(ctx, req, status.Record{
			RequestID:   req.RequestID,
			APIName:     "injest-doc",
			Status:      status.StateFailed,
			ErrorDetail: fmt.Sprintf("failed when process_type is %s: %v", req.ProcessType, err),
		})
		return
	}

	now := time.Now()
	doc := types.StoredDocument{
		ID:         result.DocID,
		Title:      req.OriginalFileName,
		Source:     req.ProcessType,
		SourcePath: req.PreSignedURL,
		Namespace:  req.Namespace,
		CreatedAt:  now,
		UpdatedAt:  now,
		Version:    1,
	}
	if err := h.indexer.Push(ctx, doc, result.Passages); err != nil {
		fmt.Printf("[INGEST] request %d: push to store failed: %v\n", req.RequestID, err)
		h.report(ctx, req, status.Record{
			RequestID:   req.RequestID,
			APIName:     "injest-doc",
			Status:      status.StateFailed,
			ErrorDetail: fmt.Sprintf("failed to index passages: %v", err),
		})
		return
	}

	data := map[string]any{"summary": result.Summary}
	if result.Transcript != nil {
		data["transcript"] = result.Transcript.Transcript
	}
	h.report(ctx, req, status.Record{
		RequestID: req.RequestID,
		APIName:   "injest-doc",
		Status:    status.StateCompleted,
		Data:      data,
	})
}

func (h *IngestHandler) report(ctx context.Context, req types.IngestRequest, record status.Record) {
	if err := h.reporter.Report(ctx, req.StatusPath, record); err != nil {
		fmt.Printf("[STATUS] request %d: report failed: %v\n", req.RequestID, err)
	}
}
