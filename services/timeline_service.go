package services

import (
	"fmt"
	"strings"
)

// TimelineService turns slide texts and a narration length into the timed
// slide sequence handed to the encoder. Slides are weighted by character
// count: a section that is a third of the script gets a third of the
// narration time, subject to a per-slide floor so no slide flashes by.
type TimelineService struct {
	MinSlideSeconds float64
}

// NewTimelineService creates a timeline service
func NewTimelineService(minSlideSeconds float64) *TimelineService {
	return &TimelineService{
		MinSlideSeconds: minSlideSeconds,
	}
}

// Allocate proposes one on-screen duration per text block, proportional to
// the block's share of total characters. Empty input yields an empty
// proposal; an all-empty script falls back to an even split.
func (ts *TimelineService) Allocate(sections []string, totalDuration float64) []float64 {
	if len(sections) == 0 {
		return []float64{}
	}

	totalChars := 0
	for _, section := range sections {
		totalChars += len(section)
	}

	durations := make([]float64, len(sections))

	if totalChars == 0 {
		even := totalDuration / float64(len(sections))
		for i := range durations {
			durations[i] = even
		}
		return durations
	}

	for i, section := range sections {
		share := totalDuration * float64(len(section)) / float64(totalChars)
		if share < ts.MinSlideSeconds {
			share = ts.MinSlideSeconds
		}
		durations[i] = share
	}
	return durations
}

// Normalize reconciles user-adjusted durations against the narration
// length. Any shortfall goes entirely onto the last slide, which acts as a
// hold slide, so the video is never shorter than the audio. Calling it
// again on its own output is a no-op.
func (ts *TimelineService) Normalize(durations []float64, narrationDuration float64) ([]float64, error) {
	if len(durations) == 0 {
		return nil, ErrNoSlides
	}

	out := make([]float64, len(durations))
	copy(out, durations)

	total := 0.0
	for _, d := range out {
		total += d
	}

	if shortfall := narrationDuration - total; shortfall > 0 {
		out[len(out)-1] += shortfall
	}
	return out, nil
}

// BuildManifest renders the concat-demuxer input: a "file"/"duration" pair
// per slide, then the last image listed once more without a duration. The
// demuxer ignores the duration of the final timed entry unless a terminal
// frame reference follows it, so dropping that trailing line truncates the
// last slide.
func (ts *TimelineService) BuildManifest(images []string, durations []float64) (string, error) {
	if len(images) != len(durations) {
		return "", fmt.Errorf("%w: %d images, %d durations", ErrSlideCountMismatch, len(images), len(durations))
	}
	if len(images) == 0 {
		return "", ErrNoSlides
	}

	var b strings.Builder
	for i, image := range images {
		fmt.Fprintf(&b, "file '%s'\n", image)
		fmt.Fprintf(&b, "duration %.3f\n", durations[i])
	}
	fmt.Fprintf(&b, "file '%s'\n", images[len(images)-1])
	return b.String(), nil
}
