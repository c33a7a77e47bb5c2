package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port     string
	TempDir  string
	LogLevel string

	// Script generation
	ScriptProvider string // "openai" or "gemini"
	OpenAIAPIKey   string
	OpenAIModel    string
	GeminiAPIKeys  []string

	// Speech synthesis
	ElevenLabsAPIKeys []string
	ElevenLabsVoiceID string
	ElevenLabsModelID string
	VoiceStability    float64
	VoiceSimilarity   float64

	// Rendering
	VideoResolution  string
	VideoPreset      string
	KeyframeInterval int // 0 disables the fixed GOP
	MinSlideSeconds  float64

	// Input limits
	MaxSectionChars int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		TempDir:  getEnv("TEMP_DIR", "./temp"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		ScriptProvider: getEnv("SCRIPT_PROVIDER", "openai"),
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4"),
		GeminiAPIKeys:  parseAPIKeys(getEnv("GEMINI_API_KEYS", "")),

		ElevenLabsAPIKeys: parseAPIKeys(getEnv("ELEVENLABS_API_KEYS", "")),
		ElevenLabsVoiceID: getEnv("ELEVENLABS_VOICE_ID", "Fahco4VZzobUeiPqni1S"),
		ElevenLabsModelID: getEnv("ELEVENLABS_MODEL_ID", "eleven_multilingual_v2"),
		VoiceStability:    getEnvAsFloat("VOICE_STABILITY", 0.5),
		VoiceSimilarity:   getEnvAsFloat("VOICE_SIMILARITY", 0.75),

		VideoResolution:  getEnv("VIDEO_RESOLUTION", "1280x720"),
		VideoPreset:      getEnv("VIDEO_PRESET", "fast"),
		KeyframeInterval: getEnvAsInt("KEYFRAME_INTERVAL", 0),
		MinSlideSeconds:  getEnvAsFloat("MIN_SLIDE_SECONDS", 5.0),

		MaxSectionChars: getEnvAsInt("MAX_SECTION_CHARS", 20000),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	switch c.ScriptProvider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return errors.New("OPENAI_API_KEY is required when SCRIPT_PROVIDER=openai")
		}
	case "gemini":
		if len(c.GeminiAPIKeys) == 0 {
			return errors.New("GEMINI_API_KEYS is required when SCRIPT_PROVIDER=gemini")
		}
	default:
		return fmt.Errorf("unknown SCRIPT_PROVIDER %q", c.ScriptProvider)
	}
	if len(c.ElevenLabsAPIKeys) == 0 {
		return errors.New("ELEVENLABS_API_KEYS is required")
	}
	if c.MinSlideSeconds <= 0 {
		return errors.New("MIN_SLIDE_SECONDS must be positive")
	}
	if c.VoiceStability < 0 || c.VoiceStability > 1 {
		return errors.New("VOICE_STABILITY must be between 0 and 1")
	}
	if c.VoiceSimilarity < 0 || c.VoiceSimilarity > 1 {
		return errors.New("VOICE_SIMILARITY must be between 0 and 1")
	}
	if !strings.Contains(c.VideoResolution, "x") {
		return fmt.Errorf("VIDEO_RESOLUTION %q must look like 1280x720", c.VideoResolution)
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func parseAPIKeys(keysStr string) []string {
	if keysStr == "" {
		return []string{}
	}
	keys := strings.Split(keysStr, ",")
	result := make([]string, 0, len(keys))
	for _, key := range keys {
		trimmed := strings.TrimSpace(key)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %s, Provider: %s, TTS Keys: %d, Resolution: %s}",
		c.Port, c.ScriptProvider, len(c.ElevenLabsAPIKeys), c.VideoResolution)
}
