package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	cfg "github.com/feichai0017/resume-screener/config"
	"github.com/feichai0017/resume-screener/internal/models"
	"github.com/feichai0017/resume-screener/pkg/logger"
)

const systemPrompt = `You are an expert resume parser. Extract the following from the resume text and answer with a single JSON object, no prose:
{
  "name": "full name",
  "email": "email address",
  "phone": "phone number",
  "skills": ["skill", ...],
  "experience": [{"company": "", "role": "", "duration": ""}, ...],
  "education": [{"degree": "", "institution": "", "year": ""}, ...]
}
Use empty strings or empty lists for anything the resume does not state.`

// LLMEnricher implements Enricher against an OpenAI-compatible chat API.
type LLMEnricher struct {
	client llms.Model
	logger logger.Logger
}

var _ Enricher = (*LLMEnricher)(nil)

func NewLLMEnricher(c cfg.LLMConfig, log logger.Logger) (*LLMEnricher, error) {
	token := c.APIKey
	if token == "" {
		// Local OpenAI-compatible services don't require authentication.
		token = "none"
	}

	opts := []openai.Option{
		openai.WithToken(token),
		openai.WithModel(c.Model),
	}
	if c.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(c.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}

	return &LLMEnricher{client: client, logger: log}, nil
}

// NewLLMEnricherWithModel wires an existing model handle. Used by tests
// and by callers that manage the client themselves.
func NewLLMEnricherWithModel(client llms.Model, log logger.Logger) *LLMEnricher {
	return &LLMEnricher{client: client, logger: log}
}

// ExtractMetadata implements Enricher.ExtractMetadata
func (e *LLMEnricher) ExtractMetadata(ctx context.Context, text string) (*models.ResumeMetadata, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(text)},
		},
	}

	response, err := e.client.GenerateContent(ctx, content,
		llms.WithTemperature(0.0),
		llms.WithJSONMode(),
	)
	if err != nil {
		return nil, fmt.Errorf("reasoning service call failed: %w", err)
	}

	if len(response.Choices) < 1 {
		e.logger.Warn("Reasoning service returned no choices")
		return &models.ResumeMetadata{}, nil
	}

	payload := stripCodeFences(response.Choices[0].Content)

	var metadata models.ResumeMetadata
	if err := json.Unmarshal([]byte(payload), &metadata); err != nil {
		// Unmappable output is masked into an empty result; the caller
		// cannot tell it apart from a resume with nothing to extract.
		e.logger.Error("Failed to parse reasoning service response",
			logger.Int("responseLength", len(payload)),
			logger.Error(err),
		)
		return &models.ResumeMetadata{}, nil
	}

	return &metadata, nil
}

// stripCodeFences removes the markdown fencing some models wrap JSON in.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
