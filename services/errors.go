package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSlides means a timeline operation was asked to work on an empty
	// slide list; there is no final slide to absorb a narration shortfall.
	ErrNoSlides = errors.New("timeline has no slides")

	// ErrSlideCountMismatch means the image list and the duration list
	// disagree on how many slides there are.
	ErrSlideCountMismatch = errors.New("image and duration counts differ")
)

// GenerationError reports a failed text-generation call for one section.
type GenerationError struct {
	Section int
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("script generation failed for section %d: %v", e.Section, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// SynthesisError reports a failed speech-synthesis call.
type SynthesisError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *SynthesisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("speech synthesis failed: %v", e.Err)
	}
	return fmt.Sprintf("speech synthesis returned status %d: %s", e.StatusCode, e.Body)
}

func (e *SynthesisError) Unwrap() error { return e.Err }
