package ingest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"mediarag/types"
)

// TranscodeMode selects the transcode profile.
type TranscodeMode string

const (
	ModeExtractAudio  TranscodeMode = "extract_audio"
	ModeCompressAudio TranscodeMode = "compress_audio"
)

// transcodeModeFor picks the profile for a declared file type. Only true
// video containers take the extraction path; everything else is audio and
// gets re-encoded with its metadata stripped.
func transcodeModeFor(fileType string) TranscodeMode {
	if types.VideoFileTypes[fileType] {
		return ModeExtractAudio
	}
	return ModeCompressAudio
}

// commandResult is an internal process execution response.
type commandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (commandResult, error)
}

// execRunner executes commands via os/exec.
type execRunner struct{}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := commandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: 0,
	}
	if err != nil {
		result.ExitCode = -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		}
	}
	return result, err
}

// Transcoder wraps the external ffmpeg/ffprobe tools behind explicit results.
type Transcoder struct {
	runner commandRunner
}

func NewTranscoder() *Transcoder {
	return &Transcoder{runner: &execRunner{}}
}

// Transcode produces a mono, low-bitrate speech-profile audio file from the
// input. ModeExtractAudio demuxes the audio track of a video, discarding
// video entirely; ModeCompressAudio re-encodes raw audio to the same target,
// stripping metadata. Both converge on the one normalized format.
func (t *Transcoder) Transcode(ctx context.Context, input, output string, mode TranscodeMode) error {
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("input file does not exist: %s", input)
	}

	args := []string{"-y", "-i", input, "-vn"}
	if mode == ModeCompressAudio {
		args = append(args, "-map_metadata", "-1")
	}
	args = append(args,
		"-ac", "1",
		"-c:a", "libopus",
		"-b:a", "12k",
		"-application", "voip",
		output,
	)

	start := time.Now()
	res, err := t.runner.Run(ctx, "ffmpeg", args...)
	if err != nil {
		return fmt.Errorf("ffmpeg %s exited with code %d: %s", mode, res.ExitCode, tail(res.Stderr))
	}
	fmt.Printf("[TRANSCODE] %s completed in %.2fs: %s\n", mode, time.Since(start).Seconds(), output)
	return nil
}

// Duration probes the audio duration in seconds.
func (t *Transcoder) Duration(ctx context.Context, path string) (float64, error) {
	res, err := t.runner.Run(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe exited with code %d: %s", res.ExitCode, tail(res.Stderr))
	}

	raw := strings.TrimSpace(res.Stdout)
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("unparsable duration %q: %w", raw, err)
	}
	return seconds, nil
}

// Slice cuts [start, start+length) out of the input without re-encoding.
func (t *Transcoder) Slice(ctx context.Context, input, output string, start, length float64) error {
	res, err := t.runner.Run(ctx, "ffmpeg",
		"-y",
		"-ss", formatSeconds(start),
		"-i", input,
		"-t", formatSeconds(length),
		"-c", "copy",
		output,
	)
	if err != nil {
		return fmt.Errorf("ffmpeg slice exited with code %d: %s", res.ExitCode, tail(res.Stderr))
	}
	return nil
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}

// tail keeps error output short enough for a log line.
func tail(s string) string {
	s = strings.TrimSpace(s)
	const max = 300
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max:]
}
