package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"mediarag/types"
)

// Watcher monitors the source directory and emits files that have not been
// modified for the configured settle time. Processed files are moved to the
// archive or bad directory depending on outcome.
type Watcher struct {
	cfg types.LoaderConfig

	FileMutex       sync.Mutex
	FileFirstSeen   map[string]time.Time
	FilesProcessing map[string]bool
}

func NewWatcher(cfg types.LoaderConfig) *Watcher {
	if err := createDirectories(cfg.SourceDir, cfg.ArchiveDir, cfg.BadDir); err != nil {
		fmt.Printf("failed to create watch directories: %v\n", err)
	}
	return &Watcher{
		cfg:             cfg,
		FileFirstSeen:   make(map[string]time.Time),
		FilesProcessing: make(map[string]bool),
	}
}

func (w *Watcher) WatchFile(ctx context.Context, fileChan chan<- string) {
	fmt.Printf("Start monitoring folder: %s\n", w.cfg.SourceDir)

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	defer fmt.Println("File watcher stopped and cleaned up")

	for {
		if ctx.Err() != nil {
			fmt.Println("Stopping file watcher (pre-check)...")
			return
		}

		select {
		case <-ctx.Done():
			fmt.Println("Stopping file watcher (context cancelled)...")
			return
		case <-ticker.C:
			files, err := os.ReadDir(w.cfg.SourceDir)
			if err != nil {
				fmt.Printf("error while reading source directory: %s\n", err)
				continue
			}

			currentFiles := make(map[string]bool)

			for _, file := range files {
				if file.IsDir() {
					continue
				}

				filePath := filepath.Join(w.cfg.SourceDir, file.Name())
				currentFiles[filePath] = true

				w.FileMutex.Lock()
				if w.FilesProcessing[filePath] {
					w.FileMutex.Unlock()
					continue
				}

				if _, exists := w.FileFirstSeen[filePath]; !exists {
					w.FileFirstSeen[filePath] = time.Now()
					fmt.Printf("New file detected: %s\n", filePath)
					w.FileMutex.Unlock()
					continue
				}

				firstSeen := w.FileFirstSeen[filePath]
				w.FileMutex.Unlock()

				if time.Since(firstSeen) > w.cfg.MonitoringTime {
					fmt.Printf("The file %s has not been modified for more than %v seconds. Start processing...\n", filePath, w.cfg.MonitoringTime.Seconds())

					w.FileMutex.Lock()
					w.FilesProcessing[filePath] = true
					w.FileMutex.Unlock()

					select {
					case fileChan <- filePath:
					case <-ctx.Done():
						return
					}
				}
			}

			// Stop tracking files that disappeared from the directory.
			w.FileMutex.Lock()
			for filePath := range w.FileFirstSeen {
				if !currentFiles[filePath] {
					delete(w.FileFirstSeen, filePath)
					delete(w.FilesProcessing, filePath)
					fmt.Printf("The file has been removed from tracking: %s\n", filePath)
				}
			}
			w.FileMutex.Unlock()
		}
	}
}

// Release clears the processing marks for a finished file.
func (w *Watcher) Release(filePath string) {
	w.FileMutex.Lock()
	delete(w.FilesProcessing, filePath)
	delete(w.FileFirstSeen, filePath)
	w.FileMutex.Unlock()
}

// MoveToArchive moves a processed file into a dated archive (fileState 0) or
// bad (fileState 1) directory, resolving name conflicts with a counter.
func (w *Watcher) MoveToArchive(filePath string, fileState int) {
	var state string
	switch fileState {
	case 1:
		state = w.cfg.BadDir
	default:
		state = w.cfg.ArchiveDir
	}

	currentDate := time.Now().Format("2006-01-02")
	destDir := filepath.Join(state, currentDate)

	if _, err := os.Stat(destDir); os.IsNotExist(err) {
		if err := os.MkdirAll(destDir, 0755); err != nil {
			fmt.Printf("error creating directory: %s\n", err)
			return
		}
	}

	destPath := filepath.Join(destDir, filepath.Base(filePath))

	counter := 1
	for {
		if _, err := os.Stat(destPath); os.IsNotExist(err) {
			break
		}
		ext := filepath.Ext(destPath)
		baseName := strings.TrimSuffix(filepath.Base(destPath), ext)
		destPath = filepath.Join(destDir, fmt.Sprintf("%s_%d%s", baseName, counter, ext))
		counter++
	}

	in, err := os.Open(filePath)
	if err != nil {
		fmt.Printf("error open file: %s\n", err)
		return
	}
	defer in.Close()

	out, err := os.Create(destPath)
	if err != nil {
		fmt.Printf("error create file: %s\n", err)
		return
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		fmt.Printf("error moving file to archive: %s\n", err)
		return
	}

	fmt.Printf("File moved to archive: %s\n", destPath)
	in.Close()
	os.Remove(filePath)
}

func createDirectories(sourceDir, archiveDir, badDir string) error {
	dirs := []string{sourceDir, archiveDir, badDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
