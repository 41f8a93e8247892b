package ingest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"mediarag/types"
)

// fakeRunner simulates ffmpeg/ffprobe execution.
type fakeRunner struct {
	run func(ctx context.Context, name string, args ...string) (commandResult, error)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	if f.run == nil {
		return commandResult{}, nil
	}
	return f.run(ctx, name, args...)
}

// mediaRunner answers ffprobe with a fixed duration and materializes slice
// outputs as real files.
func mediaRunner(t *testing.T, duration float64) *fakeRunner {
	t.Helper()
	return &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (commandResult, error) {
			switch name {
			case "ffprobe":
				return commandResult{Stdout: fmt.Sprintf("%f\n", duration)}, nil
			case "ffmpeg":
				out := args[len(args)-1]
				if err := os.WriteFile(out, []byte("audio"), 0644); err != nil {
					t.Fatalf("write fake output: %v", err)
				}
				return commandResult{}, nil
			default:
				t.Fatalf("unexpected command: %s", name)
				return commandResult{}, nil
			}
		},
	}
}

// fakeSTT returns canned segments per call and records which files it saw.
type fakeSTT struct {
	mu       sync.Mutex
	segments func(path string) ([]types.Segment, error)
	seen     []string
	delay    func(path string) time.Duration
}

func (f *fakeSTT) Transcribe(ctx context.Context, audioPath string) ([]types.Segment, error) {
	if f.delay != nil {
		time.Sleep(f.delay(audioPath))
	}
	f.mu.Lock()
	f.seen = append(f.seen, audioPath)
	f.mu.Unlock()
	if f.segments == nil {
		return nil, nil
	}
	return f.segments(audioPath)
}

func TestPlanChunksCoverage(t *testing.T) {
	cases := []struct {
		name      string
		total     float64
		chunk     float64
		wantCount int
	}{
		{"even split", 3600, 1800, 2},
		{"short tail", 2700, 1800, 2},
		{"single short", 60, 1800, 1},
		{"exact one", 1800, 1800, 1},
		{"many", 7201, 1800, 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := PlanChunks(tc.total, tc.chunk)
			if err != nil {
				t.Fatalf("PlanChunks: %v", err)
			}
			if len(plan) != tc.wantCount {
				t.Fatalf("chunk count = %d, want %d", len(plan), tc.wantCount)
			}

			cursor := 0.0
			for i, c := range plan {
				if c.Index != i {
					t.Errorf("chunk %d has index %d", i, c.Index)
				}
				if c.Start != cursor {
					t.Errorf("chunk %d starts at %v, want %v", i, c.Start, cursor)
				}
				if i < len(plan)-1 && c.Length != tc.chunk {
					t.Errorf("non-final chunk %d has length %v, want %v", i, c.Length, tc.chunk)
				}
				cursor += c.Length
			}
			if math.Abs(cursor-tc.total) > 1e-9 {
				t.Errorf("chunks cover %v, want %v", cursor, tc.total)
			}
		})
	}
}

func TestPlanChunksZeroDuration(t *testing.T) {
	plan, err := PlanChunks(0, 1800)
	if err != nil {
		t.Fatalf("PlanChunks: %v", err)
	}
	if len(plan) != 0 {
		t.Fatalf("expected empty plan, got %d chunks", len(plan))
	}
}

func TestPlanChunksInvalidChunkDuration(t *testing.T) {
	_, err := PlanChunks(3600, 0)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("error = %v, want ErrConfiguration", err)
	}
}

func TestChunkedTranscribeOffsets(t *testing.T) {
	ws := newTestWorkspace(t)
	transcoder := &Transcoder{runner: mediaRunner(t, 2700)}

	stt := &fakeSTT{
		segments: func(path string) ([]types.Segment, error) {
			return []types.Segment{
				{Start: 1, End: 2, Text: "hello from " + path},
				{Start: 3, End: 4, Text: "more"},
			}, nil
		},
	}

	ct := NewChunkedTranscriber(transcoder, stt, 1800, 1)
	segments, err := ct.Transcribe(context.Background(), "input.ogg", ws)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}

	if len(segments) != 4 {
		t.Fatalf("segment count = %d, want 4", len(segments))
	}
	if segments[0].Start != 1 || segments[1].End != 4 {
		t.Errorf("first chunk offsets changed: %+v", segments[:2])
	}
	if segments[2].Start != 1801 || segments[2].End != 1802 {
		t.Errorf("second chunk segment = %+v, want start 1801 end 1802", segments[2])
	}

	for i := 1; i < len(segments); i++ {
		if segments[i].Start < segments[i-1].Start {
			t.Errorf("segments not ordered at %d: %v then %v", i, segments[i-1].Start, segments[i].Start)
		}
	}

	// Chunk files must be gone after use.
	for _, path := range stt.seen {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("chunk file still exists: %s", path)
		}
	}
}

func TestChunkedTranscribeConcurrentReassembly(t *testing.T) {
	ws := newTestWorkspace(t)
	transcoder := &Transcoder{runner: mediaRunner(t, 5400)}

	// The first chunk resolves last; ordinal order must still win.
	stt := &fakeSTT{
		delay: func(path string) time.Duration {
			if strings.Contains(path, "chunk_"+ws.JobID+"_0") {
				return 50 * time.Millisecond
			}
			return 0
		},
		segments: func(path string) ([]types.Segment, error) {
			return []types.Segment{{Start: 0, End: 1, Text: path}}, nil
		},
	}

	ct := NewChunkedTranscriber(transcoder, stt, 1800, 3)
	segments, err := ct.Transcribe(context.Background(), "input.ogg", ws)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}

	if len(segments) != 3 {
		t.Fatalf("segment count = %d, want 3", len(segments))
	}
	for i, want := range []float64{0, 1800, 3600} {
		if segments[i].Start != want {
			t.Errorf("segment %d start = %v, want %v", i, segments[i].Start, want)
		}
	}
}

func TestChunkedTranscribeFailureFailsWhole(t *testing.T) {
	ws := newTestWorkspace(t)
	transcoder := &Transcoder{runner: mediaRunner(t, 3600)}

	stt := &fakeSTT{
		segments: func(path string) ([]types.Segment, error) {
			if strings.Contains(path, "_1.ogg") {
				return nil, errors.New("service rejected chunk")
			}
			return []types.Segment{{Start: 0, End: 1, Text: "ok"}}, nil
		},
	}

	ct := NewChunkedTranscriber(transcoder, stt, 1800, 1)
	if _, err := ct.Transcribe(context.Background(), "input.ogg", ws); err == nil {
		t.Fatal("expected error, got nil")
	}

	for _, path := range stt.seen {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("chunk file still exists after failure: %s", path)
		}
	}
}

func TestChunkedTranscribeEmptyAudio(t *testing.T) {
	ws := newTestWorkspace(t)
	transcoder := &Transcoder{runner: mediaRunner(t, 0)}

	ct := NewChunkedTranscriber(transcoder, &fakeSTT{}, 1800, 1)
	if _, err := ct.Transcribe(context.Background(), "input.ogg", ws); err == nil {
		t.Fatal("expected error for zero-duration audio, got nil")
	}
}

func newTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	ws, err := NewWorkspace(t.TempDir(), "testjob")
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	return ws
}
