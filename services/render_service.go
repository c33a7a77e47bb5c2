package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"slidecast/utils"

	"go.uber.org/zap"
)

// RenderService stitches scaled slide images and the narration audio into
// the final MP4 by driving ffmpeg's concat demuxer.
type RenderService struct {
	timeline         *TimelineService
	resolution       string
	preset           string
	keyframeInterval int
	logger           *zap.SugaredLogger
}

// NewRenderService creates a render service
func NewRenderService(timeline *TimelineService, resolution, preset string, keyframeInterval int, logger *zap.SugaredLogger) *RenderService {
	return &RenderService{
		timeline:         timeline,
		resolution:       resolution,
		preset:           preset,
		keyframeInterval: keyframeInterval,
		logger:           logger,
	}
}

// Render produces final_video.mp4 inside the session directory. The caller
// has already normalized durations, so the video track is at least as long
// as the narration and -shortest stops the mux at the audio's end.
func (rs *RenderService) Render(ctx context.Context, sessionDir string, images []string, durations []float64, audioPath string) (string, error) {
	if len(images) != len(durations) {
		return "", fmt.Errorf("%w: %d images, %d durations", ErrSlideCountMismatch, len(images), len(durations))
	}

	// Scale every upload to a common frame size; the manifest references
	// the scaled copies, not the originals.
	resized := make([]string, len(images))
	for i, image := range images {
		out := filepath.Join(sessionDir, fmt.Sprintf("resized_%d.jpg", i))
		if err := utils.ScaleImage(ctx, image, out, rs.resolution); err != nil {
			return "", fmt.Errorf("failed to scale image %d: %w", i, err)
		}
		resized[i] = out
	}

	manifest, err := rs.timeline.BuildManifest(resized, durations)
	if err != nil {
		return "", err
	}

	listPath := filepath.Join(sessionDir, "image_list.txt")
	if err := os.WriteFile(listPath, []byte(manifest), 0644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}

	videoPath := filepath.Join(sessionDir, "final_video.mp4")
	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-i", audioPath,
		"-c:v", "libx264",
		"-preset", rs.preset,
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-shortest",
	}
	if rs.keyframeInterval > 0 {
		args = append(args, "-g", strconv.Itoa(rs.keyframeInterval))
	}
	args = append(args, videoPath)

	rs.logger.Debugw("running slideshow mux", "slides", len(resized), "audio", audioPath)
	if err := utils.RunFFmpeg(ctx, args); err != nil {
		return "", err
	}
	return videoPath, nil
}
