package store

import (
	"context"
	"fmt"
	"time"

	"customs-gateway/internal/domain/entity"
	"customs-gateway/pkg/logging"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// qdrantAPI is the subset of *qdrant.Client used by the store.
type qdrantAPI interface {
	GetCollectionInfo(ctx context.Context, collectionName string) (*qdrant.CollectionInfo, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	DeleteCollection(ctx context.Context, collectionName string) error
	CreateFieldIndex(ctx context.Context, request *qdrant.CreateFieldIndexCollection) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
}

// QdrantStore keeps the regulation passages used for rule lookups.
type QdrantStore struct {
	client         qdrantAPI
	collectionName string
	logger         *logging.Logger
}

func NewQdrantStore(client *qdrant.Client, collectionName string, logger *logging.Logger) *QdrantStore {
	return newQdrantStore(client, collectionName, logger)
}

func newQdrantStore(client qdrantAPI, collectionName string, logger *logging.Logger) *QdrantStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &QdrantStore{
		client:         client,
		collectionName: collectionName,
		logger:         logger,
	}
}

func isNotFound(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.NotFound
}

// InitCollection creates the collection and its source index if missing.
func (s *QdrantStore) InitCollection(ctx context.Context, dim uint64) error {
	_, err := s.client.GetCollectionInfo(ctx, s.collectionName)
	if err != nil {
		if !isNotFound(err) {
			return err
		}
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.collectionName,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     dim,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
	}

	// Keyword index on "source" so passages can be traced back to documents.
	_, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: s.collectionName,
		FieldName:      "source",
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		// Log but don't fail if index already exists
		s.logger.Warn("qdrant source index not created", "collection", s.collectionName, "error", err)
	}
	return nil
}

// Recreate drops the collection and creates it empty.
func (s *QdrantStore) Recreate(ctx context.Context, dim uint64) error {
	if err := s.client.DeleteCollection(ctx, s.collectionName); err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	return s.InitCollection(ctx, dim)
}

// Status reports whether the collection exists and holds any points.
func (s *QdrantStore) Status(ctx context.Context) (entity.IndexStatus, error) {
	info, err := s.client.GetCollectionInfo(ctx, s.collectionName)
	if err != nil {
		if isNotFound(err) {
			return entity.IndexMissing, nil
		}
		return "", fmt.Errorf("%w: qdrant: %w", entity.ErrTransientService, err)
	}
	if info.GetPointsCount() == 0 {
		return entity.IndexEmpty, nil
	}
	return entity.IndexReady, nil
}

// Search returns up to limit passages scoring at least threshold. A missing
// collection yields no passages rather than an error.
func (s *QdrantStore) Search(ctx context.Context, vector []float32, limit uint64, threshold float32) ([]entity.Passage, error) {
	res, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(limit),
		WithPayload:    qdrant.NewWithPayload(true),
		ScoreThreshold: &threshold,
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: qdrant query: %w", entity.ErrTransientService, err)
	}

	passages := make([]entity.Passage, 0, len(res))
	for _, hit := range res {
		content := hit.Payload["content"].GetStringValue()
		if content == "" {
			continue
		}
		passages = append(passages, entity.Passage{
			Content: content,
			Source:  hit.Payload["source"].GetStringValue(),
			Score:   hit.Score,
		})
	}
	return passages, nil
}

// Save upserts documents with their embeddings.
func (s *QdrantStore) Save(ctx context.Context, docs []entity.Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("qdrant save: %d documents but %d vectors", len(docs), len(vectors))
	}
	if len(docs) == 0 {
		return nil
	}

	now := time.Now().Unix()
	points := make([]*qdrant.PointStruct, 0, len(docs))
	for i, doc := range docs {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(uuid.NewString()),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":    doc.Content,
				"source":     doc.Source,
				"chunk":      int64(doc.Chunk),
				"created_at": now,
			}),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collectionName,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	return err
}
