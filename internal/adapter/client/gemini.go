package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"customs-gateway/internal/domain/entity"

	"google.golang.org/genai"
)

// contentGenerator is the slice of genai.Models the completion client needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GenerationOptions are the sampling parameters sent with every completion.
type GenerationOptions struct {
	Temperature     float32
	TopP            float32
	MaxOutputTokens int32
}

// DefaultGenerationOptions is deterministic-leaning: no sampling temperature,
// full nucleus, bounded output.
func DefaultGenerationOptions() GenerationOptions {
	return GenerationOptions{Temperature: 0, TopP: 1.0, MaxOutputTokens: 1024}
}

type GeminiClient struct {
	models contentGenerator
	model  string
	opts   GenerationOptions
}

// NewGenAIClient opens a genai client against the Gemini API when apiKey is
// set, or Vertex AI otherwise.
func NewGenAIClient(ctx context.Context, apiKey, projectID, location string) (*genai.Client, error) {
	cfg := &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	}
	if apiKey != "" {
		cfg = &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	}
	return genai.NewClient(ctx, cfg)
}

func NewGeminiClientFromClient(c *genai.Client, model string, opts GenerationOptions) *GeminiClient {
	return newGeminiClient(c.Models, model, opts)
}

func newGeminiClient(models contentGenerator, model string, opts GenerationOptions) *GeminiClient {
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = DefaultGenerationOptions().MaxOutputTokens
	}
	return &GeminiClient{models: models, model: model, opts: opts}
}

// Model returns the model id this client targets.
func (g *GeminiClient) Model() string {
	return g.model
}

// Complete sends the conversation and returns the first candidate's text.
// System messages become the system instruction; assistant turns map to the
// model role.
func (g *GeminiClient) Complete(ctx context.Context, conv entity.Conversation) (string, error) {
	var contents []*genai.Content
	for _, msg := range conv {
		switch msg.Role {
		case entity.RoleSystem:
			continue
		case entity.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	if len(contents) == 0 {
		return "", errors.New("gemini: conversation has no user message")
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.opts.Temperature),
		TopP:            genai.Ptr(g.opts.TopP),
		MaxOutputTokens: g.opts.MaxOutputTokens,
		CandidateCount:  1,
	}
	if system := conv.System(); system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	result, err := g.models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w: %w", g.model, entity.ErrTransientService, err)
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini %s: %w: empty response", g.model, entity.ErrTransientService)
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && !part.Thought {
			text.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(text.String()), nil
}
