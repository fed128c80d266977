package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/eazyai/screener/internal/logger"
)

const (
	defaultModel          = "gemini-2.5-pro"
	defaultFastModel      = "gemini-2.5-flash"
	defaultEmbeddingModel = "text-embedding-004"
)

// Generator wraps the Google GenAI client. It serves both the deep judge
// model and the cheaper fast model used for short auxiliary prompts, plus
// the embedding endpoint.
type Generator struct {
	client         *genai.Client
	modelName      string
	fastModelName  string
	embeddingModel string
	logger         *zap.Logger
}

// Config selects the Gemini models. Empty fields fall back to defaults.
type Config struct {
	APIKey         string
	Model          string
	FastModel      string
	EmbeddingModel string
}

// NewGenerator creates a Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, cfg Config, log *zap.Logger) (*Generator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	fastModel := strings.TrimSpace(cfg.FastModel)
	if fastModel == "" {
		fastModel = defaultFastModel
	}

	embeddingModel := strings.TrimSpace(cfg.EmbeddingModel)
	if embeddingModel == "" {
		embeddingModel = defaultEmbeddingModel
	}

	return &Generator{
		client:         client,
		modelName:      model,
		fastModelName:  fastModel,
		embeddingModel: embeddingModel,
		logger:         logger.WithCommonFields(log, "gemini", model),
	}, nil
}

// GenerateContent sends the prompt to the deep model and returns the first
// textual response.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, g.modelName, prompt)
}

// GenerateFast sends the prompt to the fast model.
func (g *Generator) GenerateFast(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, g.fastModelName, prompt)
}

// Embed returns the embedding vector for the provided text.
func (g *Generator) Embed(ctx context.Context, text string) ([]float64, error) {
	if g == nil || g.client == nil {
		return nil, errors.New("gemini generator is not initialized")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("text to embed must not be empty")
	}

	resp, err := g.client.Models.EmbedContent(ctx, g.embeddingModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, errors.New("gemini api returned empty embedding")
	}

	values := resp.Embeddings[0].Values
	vector := make([]float64, len(values))
	for i, v := range values {
		vector[i] = float64(v)
	}

	return vector, nil
}

func (g *Generator) generate(ctx context.Context, model, prompt string) (string, error) {
	if g == nil || g.client == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	output := collectText(resp)
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}

// collectText joins the non-empty text parts of every candidate.
func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}
