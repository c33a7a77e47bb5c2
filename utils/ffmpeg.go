package utils

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// RenderError reports a non-zero ffmpeg exit together with the tool's
// diagnostic output. Nothing retries a failed render.
type RenderError struct {
	Stderr string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("ffmpeg error: %v, stderr: %s", e.Err, e.Stderr)
}

func (e *RenderError) Unwrap() error { return e.Err }

// ProbeError reports an unreadable or malformed media asset.
type ProbeError struct {
	Path string
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("failed to probe %s: %v", e.Path, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// CheckFFmpeg verifies that ffmpeg is installed and on PATH
func CheckFFmpeg() error {
	if err := exec.Command("ffmpeg", "-version").Run(); err != nil {
		return fmt.Errorf("ffmpeg is not installed or not on PATH: %w", err)
	}
	return nil
}

// RunFFmpeg executes an FFmpeg command, capturing stderr for diagnostics
func RunFFmpeg(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &RenderError{Stderr: stderr.String(), Err: err}
	}
	return nil
}

// ProbeDuration returns the duration of a media file in seconds
func ProbeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		return 0, &ProbeError{Path: path, Err: err}
	}

	durationStr := strings.TrimSpace(string(output))
	duration, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return 0, &ProbeError{Path: path, Err: fmt.Errorf("unparseable duration %q: %w", durationStr, err)}
	}
	if duration <= 0 {
		return 0, &ProbeError{Path: path, Err: fmt.Errorf("non-positive duration %f", duration)}
	}

	return duration, nil
}

// ScaleImage rescales an uploaded still to the target resolution so every
// slide shares the same frame size before the concat mux
func ScaleImage(ctx context.Context, inputPath, outputPath, resolution string) error {
	scale := strings.Replace(resolution, "x", ":", 1)
	args := []string{
		"-y",
		"-i", inputPath,
		"-vf", fmt.Sprintf("scale=%s", scale),
		outputPath,
	}
	return RunFFmpeg(ctx, args)
}
