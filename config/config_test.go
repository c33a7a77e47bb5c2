package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ELEVENLABS_API_KEYS", "k1, k2 ,")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "openai", cfg.ScriptProvider)
	assert.Equal(t, "gpt-4", cfg.OpenAIModel)
	assert.Equal(t, []string{"k1", "k2"}, cfg.ElevenLabsAPIKeys)
	assert.Equal(t, "1280x720", cfg.VideoResolution)
	assert.Equal(t, "fast", cfg.VideoPreset)
	assert.InDelta(t, 5.0, cfg.MinSlideSeconds, 1e-9)
	assert.InDelta(t, 0.5, cfg.VoiceStability, 1e-9)
	assert.InDelta(t, 0.75, cfg.VoiceSimilarity, 1e-9)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			ScriptProvider:    "openai",
			OpenAIAPIKey:      "sk-test",
			ElevenLabsAPIKeys: []string{"k"},
			MinSlideSeconds:   5.0,
			VoiceStability:    0.5,
			VoiceSimilarity:   0.75,
			VideoResolution:   "1280x720",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing openai key", func(c *Config) { c.OpenAIAPIKey = "" }, true},
		{"gemini without keys", func(c *Config) { c.ScriptProvider = "gemini" }, true},
		{"gemini with keys", func(c *Config) {
			c.ScriptProvider = "gemini"
			c.GeminiAPIKeys = []string{"g"}
		}, false},
		{"unknown provider", func(c *Config) { c.ScriptProvider = "llama" }, true},
		{"no tts keys", func(c *Config) { c.ElevenLabsAPIKeys = nil }, true},
		{"zero floor", func(c *Config) { c.MinSlideSeconds = 0 }, true},
		{"stability out of range", func(c *Config) { c.VoiceStability = 1.5 }, true},
		{"bad resolution", func(c *Config) { c.VideoResolution = "720p" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
