package internal

import (
	"os"
	"path/filepath"
	"testing"

	"mediarag/types"
)

func TestNewWatcherCreatesDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := types.LoaderConfig{
		SourceDir:  filepath.Join(root, "source"),
		ArchiveDir: filepath.Join(root, "archive"),
		BadDir:     filepath.Join(root, "bad"),
	}

	NewWatcher(cfg)

	for _, dir := range []string{cfg.SourceDir, cfg.ArchiveDir, cfg.BadDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("directory %s not created: %v", dir, err)
		}
	}
}

func TestCreateDirectoriesReportsFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	// A path below a regular file cannot be created.
	bad := filepath.Join(blocker, "source")
	if err := createDirectories(bad, bad, bad); err == nil {
		t.Error("createDirectories under a regular file succeeded")
	}
}
