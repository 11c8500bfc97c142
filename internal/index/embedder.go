package index

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	cfg "github.com/feichai0017/resume-screener/config"
	"github.com/feichai0017/resume-screener/pkg/logger"
)

// OpenAIEmbedder implements Embedder against any OpenAI-compatible
// embeddings API (the reasoning provider's compatibility endpoint
// included).
type OpenAIEmbedder struct {
	embedder embeddings.Embedder
	logger   logger.Logger
}

var _ Embedder = (*OpenAIEmbedder)(nil)

func NewOpenAIEmbedder(c cfg.EmbeddingConfig, log logger.Logger) (*OpenAIEmbedder, error) {
	token := c.APIKey
	if token == "" {
		// Local OpenAI-compatible services don't require authentication.
		token = "none"
	}

	opts := []openai.Option{
		openai.WithToken(token),
		openai.WithEmbeddingModel(c.Model),
	}
	if c.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(c.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return &OpenAIEmbedder{
		embedder: embedder,
		logger:   log,
	}, nil
}

// EmbedText implements Embedder.EmbedText
func (e *OpenAIEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		e.logger.Error("Failed to generate embedding",
			logger.Int("textLength", len(text)),
			logger.Error(err),
		)
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embedder returned no vectors")
	}
	return vecs[0], nil
}
