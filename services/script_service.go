package services

import (
	"context"
	"fmt"
	"strings"

	"slidecast/models"

	"github.com/google/generative-ai-go/genai"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"
)

const sectionPrompt = `You are assisting in creating a polished and engaging webinar script. The script should read as a single, continuous narrative with a professional and conversational tone.

Expand on the following section:
%s

Notes to incorporate:
%s

Guidelines:
- Provide clear, detailed explanations and examples.
- Ensure the section flows logically and connects to other parts of the script.
- Avoid repeating the input text verbatim.`

// ScriptGenerator is the interface any text-generation provider must
// implement. OpenAI and Gemini both implement it so the script service can
// use whichever is configured without knowing the underlying provider.
type ScriptGenerator interface {
	// ExpandSection turns one section body plus author notes into polished prose.
	ExpandSection(ctx context.Context, body, notes string) (string, error)
}

// OpenAIGenerator expands sections via OpenAI chat completions
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator creates an OpenAI-backed script generator
func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	return &OpenAIGenerator{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (g *OpenAIGenerator) ExpandSection(ctx context.Context, body, notes string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a scriptwriting assistant."},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(sectionPrompt, body, notes)},
		},
		MaxTokens:   1000,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// GeminiGenerator expands sections via Google Gemini
type GeminiGenerator struct {
	model *genai.GenerativeModel
}

// NewGeminiGenerator creates a Gemini-backed script generator
func NewGeminiGenerator(ctx context.Context, apiKey string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("could not create genai client: %w", err)
	}
	return &GeminiGenerator{
		model: client.GenerativeModel("gemini-2.5-flash"),
	}, nil
}

func (g *GeminiGenerator) ExpandSection(ctx context.Context, body, notes string) (string, error) {
	res, err := g.model.GenerateContent(ctx, genai.Text(fmt.Sprintf(sectionPrompt, body, notes)))
	if err != nil {
		return "", fmt.Errorf("gemini content generation failed: %w", err)
	}
	if len(res.Candidates) == 0 || len(res.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no content")
	}
	if textPart, ok := res.Candidates[0].Content.Parts[0].(genai.Text); ok {
		return string(textPart), nil
	}
	return "", fmt.Errorf("gemini response did not contain text")
}

// ScriptService assembles the full webinar script: introduction, one
// expanded block per section, conclusion, in order.
type ScriptService struct {
	generator ScriptGenerator
}

// NewScriptService creates a script service over the configured generator
func NewScriptService(generator ScriptGenerator) *ScriptService {
	return &ScriptService{generator: generator}
}

// ComposeScript expands every section and concatenates the results with the
// intro and conclusion. Sections with no body and no notes pass through
// empty rather than burning a generation call. A failed call aborts the
// whole step; nothing written so far is kept.
func (ss *ScriptService) ComposeScript(ctx context.Context, session *models.Session) (string, error) {
	parts := make([]string, 0, len(session.Sections)+2)
	if session.Intro != "" {
		parts = append(parts, session.Intro)
	}

	for i, section := range session.Sections {
		if strings.TrimSpace(section.Body) == "" && strings.TrimSpace(section.Notes) == "" {
			continue
		}
		content, err := ss.generator.ExpandSection(ctx, section.Body, section.Notes)
		if err != nil {
			return "", &GenerationError{Section: i, Err: err}
		}
		parts = append(parts, strings.TrimSpace(content))
	}

	if session.Conclusion != "" {
		parts = append(parts, session.Conclusion)
	}
	return strings.Join(parts, "\n\n"), nil
}
