package ingest

import (
	"context"
	"fmt"
	"math"
	"os"

	"golang.org/x/sync/errgroup"

	"mediarag/types"
)

// Transcriber is the external speech-to-text capability. It returns zero or
// more segments with chunk-local timestamps.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]types.Segment, error)
}

// Chunk is one contiguous bounded-duration slice of normalized audio.
type Chunk struct {
	Index  int
	Start  float64
	Length float64
	Path   string
}

// PlanChunks computes the ordinal chunk layout covering [0, total). Every
// chunk except possibly the last has exactly chunkSeconds length; the chunk
// count is ceil(total/chunkSeconds). A non-positive total yields an empty
// plan, which the transcriber treats as a failure.
func PlanChunks(total, chunkSeconds float64) ([]Chunk, error) {
	if chunkSeconds <= 0 {
		return nil, fmt.Errorf("%w: chunk duration must be positive, got %v", ErrConfiguration, chunkSeconds)
	}
	if total <= 0 {
		return nil, nil
	}

	n := int(math.Ceil(total / chunkSeconds))
	chunks := make([]Chunk, n)
	for i := 0; i < n; i++ {
		start := float64(i) * chunkSeconds
		length := chunkSeconds
		if start+length > total {
			length = total - start
		}
		chunks[i] = Chunk{Index: i, Start: start, Length: length}
	}
	return chunks, nil
}

// ChunkedTranscriber splits normalized audio into bounded chunks, submits
// each to the transcription capability, and reconciles the results into one
// globally ordered, time-offset transcript.
type ChunkedTranscriber struct {
	transcoder   *Transcoder
	stt          Transcriber
	chunkSeconds float64
	workers      int
}

func NewChunkedTranscriber(transcoder *Transcoder, stt Transcriber, chunkSeconds float64, workers int) *ChunkedTranscriber {
	if workers < 1 {
		workers = 1
	}
	return &ChunkedTranscriber{
		transcoder:   transcoder,
		stt:          stt,
		chunkSeconds: chunkSeconds,
		workers:      workers,
	}
}

// Transcribe returns the full transcript of the audio at path, ordered by
// global start time. Any chunk failure fails the whole call: a partial
// transcript would silently misrepresent coverage.
func (c *ChunkedTranscriber) Transcribe(ctx context.Context, audioPath string, ws *Workspace) ([]types.Segment, error) {
	total, err := c.transcoder.Duration(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	plan, err := PlanChunks(total, c.chunkSeconds)
	if err != nil {
		return nil, err
	}
	if len(plan) == 0 {
		return nil, fmt.Errorf("audio duration %.3fs yields zero chunks", total)
	}
	fmt.Printf("[CHUNK] planned %d chunks for %.1fs of audio\n", len(plan), total)

	if err := c.cutChunks(ctx, audioPath, ws, plan); err != nil {
		return nil, err
	}

	results, err := c.transcribeChunks(ctx, plan)
	if err != nil {
		return nil, err
	}

	return c.reconcile(plan, results)
}

// cutChunks materializes each planned chunk as its own file under the
// workspace. A single full-span source still gets cut so the chunk files
// stay the only artifacts the transcription step touches.
func (c *ChunkedTranscriber) cutChunks(ctx context.Context, audioPath string, ws *Workspace, plan []Chunk) error {
	for i := range plan {
		plan[i].Path = ws.Path(fmt.Sprintf("chunk_%s_%d.ogg", ws.JobID, i))
		if err := c.transcoder.Slice(ctx, audioPath, plan[i].Path, plan[i].Start, plan[i].Length); err != nil {
			return fmt.Errorf("cut chunk %d: %w", i, err)
		}
	}
	return nil
}

// transcribeChunks runs the transcription calls with bounded concurrency.
// Results land in their ordinal slot, never in completion order. Each chunk
// file is deleted as soon as its own call resolves, success or not.
func (c *ChunkedTranscriber) transcribeChunks(ctx context.Context, plan []Chunk) ([][]types.Segment, error) {
	results := make([][]types.Segment, len(plan))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for _, chunk := range plan {
		chunk := chunk
		g.Go(func() error {
			segments, err := c.stt.Transcribe(gctx, chunk.Path)
			if rmErr := os.Remove(chunk.Path); rmErr != nil {
				fmt.Printf("[CHUNK] failed to remove %s: %v\n", chunk.Path, rmErr)
			}
			if err != nil {
				return fmt.Errorf("chunk %d: %w", chunk.Index, err)
			}
			results[chunk.Index] = segments
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// reconcile shifts chunk-local timestamps by each chunk's ordinal base
// offset and concatenates in ordinal order. Monotonicity holds by
// construction, so no re-sorting happens here.
func (c *ChunkedTranscriber) reconcile(plan []Chunk, results [][]types.Segment) ([]types.Segment, error) {
	var all []types.Segment
	for _, chunk := range plan {
		base := float64(chunk.Index) * c.chunkSeconds
		// The offset arithmetic is only correct while every non-final chunk
		// spans exactly chunkSeconds. Refuse to guess if that ever breaks.
		if chunk.Start != base {
			return nil, fmt.Errorf("chunk %d starts at %.3fs, expected %.3fs", chunk.Index, chunk.Start, base)
		}
		for _, s := range results[chunk.Index] {
			all = append(all, types.Segment{
				Start: s.Start + base,
				End:   s.End + base,
				Text:  s.Text,
			})
		}
	}
	return all, nil
}
