package client

import (
	"context"
	"fmt"

	"customs-gateway/internal/domain/entity"

	"google.golang.org/genai"
)

type contentEmbedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

type Embedder struct {
	models contentEmbedder
	model  string // e.g., "text-embedding-004"
}

func NewEmbedderFromClient(c *genai.Client, model string) *Embedder {
	return &Embedder{
		models: c.Models,
		model:  model,
	}
}

func (e *Embedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	res, err := e.models.EmbedContent(ctx, e.model, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("embed %s: %w: %w", e.model, entity.ErrTransientService, err)
	}
	if res == nil || len(res.Embeddings) == 0 {
		return nil, fmt.Errorf("embed %s: %w: no embeddings returned", e.model, entity.ErrTransientService)
	}
	return res.Embeddings[0].Values, nil
}
