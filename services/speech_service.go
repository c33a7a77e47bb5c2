package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"slidecast/utils"

	"go.uber.org/zap"
)

const elevenLabsAPIURL = "https://api.elevenlabs.io/v1"

// keyCooldown is how long a key sits out after a quota or auth failure.
const keyCooldown = 60 * time.Second

// SpeechService converts the finalized script to narration audio via the
// ElevenLabs text-to-speech API. The whole script goes out in one call.
type SpeechService struct {
	pool       *utils.APIKeyPool
	httpClient *http.Client
	modelID    string
	stability  float64
	similarity float64
	logger     *zap.SugaredLogger
}

// NewSpeechService creates a speech service
func NewSpeechService(pool *utils.APIKeyPool, modelID string, stability, similarity float64, logger *zap.SugaredLogger) *SpeechService {
	return &SpeechService{
		pool: pool,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
		modelID:    modelID,
		stability:  stability,
		similarity: similarity,
		logger:     logger,
	}
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Synthesize converts text to an MP3 byte stream. Keys that hit quota or
// auth errors are sidelined and the next key is tried; any other non-200
// response fails the step immediately.
func (ss *SpeechService) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	url := fmt.Sprintf("%s/text-to-speech/%s", elevenLabsAPIURL, voiceID)
	payload, err := json.Marshal(ttsRequest{
		Text:    text,
		ModelID: ss.modelID,
		VoiceSettings: voiceSettings{
			Stability:       ss.stability,
			SimilarityBoost: ss.similarity,
		},
	})
	if err != nil {
		return nil, &SynthesisError{Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	for attempt := 0; attempt < ss.pool.Size(); attempt++ {
		apiKey, err := ss.pool.Next()
		if err != nil {
			return nil, &SynthesisError{Err: err}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, &SynthesisError{Err: err}
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("xi-api-key", apiKey)
		req.Header.Set("Accept", "audio/mpeg")

		resp, err := ss.httpClient.Do(req)
		if err != nil {
			return nil, &SynthesisError{Err: fmt.Errorf("request failed: %w", err)}
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusUnauthorized {
			resp.Body.Close()
			ss.logger.Warnw("sidelining TTS key", "status", resp.StatusCode, "attempt", attempt+1)
			ss.pool.MarkFailed(apiKey, keyCooldown)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, &SynthesisError{StatusCode: resp.StatusCode, Body: string(body)}
		}

		audio, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, &SynthesisError{Err: fmt.Errorf("failed to read audio response: %w", err)}
		}
		return audio, nil
	}

	return nil, &SynthesisError{Err: fmt.Errorf("all %d TTS keys exhausted", ss.pool.Size())}
}
