package models

import "time"

// ScriptSection is one narrated segment of the webinar: the body text the
// author wrote plus free-form notes for the script generator to incorporate.
// Sections are identified by their position in the session's ordered list.
type ScriptSection struct {
	Body  string `json:"body"`
	Notes string `json:"notes"`
}

// Session carries all state for one interactive webinar build. Every
// pipeline step reads from and writes back to this object; nothing lives
// in package-level variables.
type Session struct {
	ID         string          `json:"id"`
	Intro      string          `json:"intro"`
	Conclusion string          `json:"conclusion"`
	Sections   []ScriptSection `json:"sections"`

	// Established by the script step
	Script string `json:"script,omitempty"`

	// Established by the audio step
	AudioPath     string  `json:"-"`
	AudioDuration float64 `json:"audio_duration,omitempty"`

	// Established by the image upload step, ordered intro -> sections -> conclusion
	ImagePaths []string `json:"-"`

	// Established by the render step
	VideoPath string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SlideCount returns how many slides the finished video will have:
// one for the intro, one per section, one for the conclusion.
func (s *Session) SlideCount() int {
	return len(s.Sections) + 2
}

// SlideTexts returns the text blocks that drive duration allocation,
// in slide order.
func (s *Session) SlideTexts() []string {
	texts := make([]string, 0, s.SlideCount())
	texts = append(texts, s.Intro)
	for _, sec := range s.Sections {
		texts = append(texts, sec.Body)
	}
	texts = append(texts, s.Conclusion)
	return texts
}

// CreateSessionRequest creates a new session
type CreateSessionRequest struct {
	Intro      string `json:"intro"`
	Conclusion string `json:"conclusion"`
}

// UpdateSessionRequest edits the intro/conclusion text blocks
type UpdateSessionRequest struct {
	Intro      *string `json:"intro"`
	Conclusion *string `json:"conclusion"`
}

// SectionRequest adds or edits one section
type SectionRequest struct {
	Body  string `json:"body"`
	Notes string `json:"notes"`
}

// UpdateScriptRequest replaces the script with the user's edited version
type UpdateScriptRequest struct {
	Script string `json:"script" binding:"required"`
}

// ScriptResponse returns the generated or accepted script
type ScriptResponse struct {
	Script string `json:"script"`
}

// AudioResponse reports the synthesized narration
type AudioResponse struct {
	Duration float64 `json:"duration"`
	AudioURL string  `json:"audio_url"`
}

// DurationsResponse returns proposed per-slide durations in slide order
type DurationsResponse struct {
	Durations []float64 `json:"durations"`
	Total     float64   `json:"total"`
}

// RenderRequest carries the user-adjusted per-slide durations
type RenderRequest struct {
	Durations []float64 `json:"durations" binding:"required"`
}

// RenderResponse reports the finished video
type RenderResponse struct {
	VideoURL string  `json:"video_url"`
	Duration float64 `json:"duration"`
}
