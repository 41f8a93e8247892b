package service

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"mediarag/ingest"
	"mediarag/loader/internal"
	"mediarag/model"
	"mediarag/store"
	"mediarag/types"
)

// Service is the directory-watching ingestion daemon: files dropped into the
// source directory are run through the same pipeline as API requests and
// archived by outcome.
type Service struct {
	logger   *slog.Logger
	cfg      types.LoaderConfig
	watcher  *internal.Watcher
	pipeline *ingest.Pipeline
	indexer  *store.Indexer
}

func New(cfg types.Config, loaderCfg types.LoaderConfig, storer store.DBStorer) *Service {
	whisper := model.NewWhisperClient(cfg.WhisperURL, cfg.WhisperKey, cfg.WhisperModel)
	summarizer := model.NewSummarizer(cfg.LLMURL, cfg.LLMModel)
	embedder := model.NewOllamaEmbedder(cfg.EmbeddingURL, cfg.EmbeddingModel)

	return &Service{
		logger:   slog.Default(),
		cfg:      loaderCfg,
		watcher:  internal.NewWatcher(loaderCfg),
		pipeline: ingest.NewPipeline(cfg, whisper, summarizer),
		indexer:  store.NewIndexer(storer, embedder),
	}
}

func (s *Service) Stop() {
	s.logger.Info("Loader Service stopped")
}

func (s *Service) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fileChan := make(chan string, 10)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(fileChan)
		s.watcher.WatchFile(ctx, fileChan)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.ProcessFiles(ctx, fileChan)
	}()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)

	<-sigch
	log.Println("Received shutdown signal, shutting down gracefully...")

	cancel()

	signal.Stop(sigch)
	close(sigch)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("All goroutines stopped successfully")
	case <-shutdownCtx.Done():
		log.Println("Timeout waiting for goroutines to stop, forcing shutdown...")
	}

	s.Stop()
	log.Println("Service stopped successfully")
}

// ProcessFiles ingests every settled file from the watcher, one at a time.
func (s *Service) ProcessFiles(ctx context.Context, fileChan <-chan string) {
	defer fmt.Println("File processor stopped and cleaned up")

	for {
		select {
		case <-ctx.Done():
			fmt.Println("Stopping file processor (context cancelled)...")
			return
		case filePath, ok := <-fileChan:
			if !ok {
				fmt.Println("File channel closed, stopping processor...")
				return
			}

			if err := s.ingestFile(ctx, filePath); err != nil {
				fmt.Printf("Error processing file %s: %v\n", filePath, err)
				s.watcher.MoveToArchive(filePath, 1)
			} else {
				s.watcher.MoveToArchive(filePath, 0)
			}
			s.watcher.Release(filePath)
		}
	}
}

func (s *Service) ingestFile(ctx context.Context, filePath string) error {
	fileName := filepath.Base(filePath)
	fileType := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")

	processType, err := processTypeFor(fileType)
	if err != nil {
		return err
	}

	req := types.IngestRequest{
		PreSignedURL:     filePath,
		FileName:         fileName,
		OriginalFileName: fileName,
		FileType:         fileType,
		ProcessType:      string(processType),
		Namespace:        s.cfg.Namespace,
	}

	result, err := s.pipeline.Ingest(ctx, req)
	if err != nil {
		return err
	}

	now := time.Now()
	doc := types.StoredDocument{
		ID:         result.DocID,
		Title:      fileName,
		Source:     string(processType),
		SourcePath: filePath,
		Namespace:  s.cfg.Namespace,
		CreatedAt:  now,
		UpdatedAt:  now,
		Version:    1,
	}
	return s.indexer.Push(ctx, doc, result.Passages)
}

// processTypeFor infers the process type from a file extension.
func processTypeFor(fileType string) (types.ProcessType, error) {
	switch {
	case fileType == "txt":
		return types.ProcessText, nil
	case fileType == "pdf":
		return types.ProcessPDF, nil
	case types.VideoFileTypes[fileType]:
		return types.ProcessVideo, nil
	case types.SupportedFileTypes[fileType]:
		return types.ProcessAudio, nil
	default:
		return "", fmt.Errorf("%w: file type %q", ingest.ErrUnsupportedType, fileType)
	}
}
