package ingest

import (
	"fmt"
	"os"
	"path/filepath"
)

// Workspace owns one job's scratch directory. Every temporary artifact of a
// job lives under Dir and is removed by Cleanup on every exit path.
type Workspace struct {
	JobID string
	Dir   string
}

// NewWorkspace creates the per-job scratch directory, idempotently.
func NewWorkspace(root, jobID string) (*Workspace, error) {
	dir := filepath.Join(root, "job_"+jobID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create scratch dir %s: %w", dir, err)
	}
	return &Workspace{JobID: jobID, Dir: dir}, nil
}

// Path returns the location for a named artifact inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

// Cleanup removes the whole scratch directory. Best effort: failures are
// logged and discarded so they never mask the error that ended the job.
func (w *Workspace) Cleanup() {
	if w == nil || w.Dir == "" {
		return
	}
	if err := os.RemoveAll(w.Dir); err != nil {
		fmt.Printf("[CLEANUP] failed to remove %s: %v\n", w.Dir, err)
		return
	}
	fmt.Printf("[CLEANUP] removed scratch dir: %s\n", w.Dir)
}
