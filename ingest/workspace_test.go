package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWorkspaceCreateAndCleanup(t *testing.T) {
	root := t.TempDir()

	ws, err := NewWorkspace(root, "job1")
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	if ws.Dir != filepath.Join(root, "job_job1") {
		t.Errorf("dir = %q", ws.Dir)
	}

	// Creating the same workspace again is fine.
	if _, err := NewWorkspace(root, "job1"); err != nil {
		t.Fatalf("second NewWorkspace: %v", err)
	}

	artifact := ws.Path("chunk_0.ogg")
	if err := os.WriteFile(artifact, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	ws.Cleanup()
	if _, err := os.Stat(ws.Dir); !os.IsNotExist(err) {
		t.Errorf("scratch dir still present after cleanup: %v", err)
	}
}

func TestWorkspaceCleanupNil(t *testing.T) {
	var ws *Workspace
	ws.Cleanup() // must not panic
}
