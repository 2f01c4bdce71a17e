package repository

import (
	"context"

	"customs-gateway/internal/domain/entity"
)

// Completer returns the text of the first candidate the model produces for
// a conversation.
type Completer interface {
	Complete(ctx context.Context, conv entity.Conversation) (string, error)
}

// Retriever returns context passages for a request, or entity.UnknownContext.
type Retriever interface {
	Retrieve(ctx context.Context, query string) (string, error)
}

// Strategy produces the final answer for a routed query.
type Strategy interface {
	Respond(ctx context.Context, query string) (string, error)
}

type Embedder interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type VectorStore interface {
	Search(ctx context.Context, vector []float32, limit uint64, threshold float32) ([]entity.Passage, error)
	Save(ctx context.Context, docs []entity.Document, vectors [][]float32) error
	Status(ctx context.Context) (entity.IndexStatus, error)
}

// AuditSink appends audit records. Appends must be atomic per record.
type AuditSink interface {
	Append(ctx context.Context, rec entity.AuditRecord) error
	List(ctx context.Context, filter entity.AuditFilter) ([]entity.AuditRecord, error)
}

type IPResolver interface {
	PublicIP(ctx context.Context) (string, error)
}

type Geolocator interface {
	Locate(ctx context.Context, ip string) (entity.Coordinates, error)
}

type QueryLimiter interface {
	CheckLimit(ctx context.Context, actor string) (bool, error)
	Increment(ctx context.Context, actor string) error
}
