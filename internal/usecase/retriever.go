package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"customs-gateway/internal/domain/entity"
	"customs-gateway/internal/domain/repository"
	"customs-gateway/pkg/logging"
)

type RetrievalOptions struct {
	TopK           int
	ScoreThreshold float32
	// Broaden enables the multi-query fallback when the primary search finds
	// nothing relevant.
	Broaden          bool
	BroadenPhrasings int
	Timeout          time.Duration
}

// RAGRetriever looks up regulation passages in the vector store.
//
// Retrieval is two-stage. The primary stage embeds the request and searches
// with the relevance threshold. When it comes back empty (insufficient
// context) and broadening is enabled, the completer proposes alternative
// phrasings and each is searched; results are merged without duplicates.
type RAGRetriever struct {
	embedder  repository.Embedder
	store     repository.VectorStore
	completer repository.Completer
	opts      RetrievalOptions
	logger    *logging.Logger
}

func NewRAGRetriever(emb repository.Embedder, vs repository.VectorStore, c repository.Completer, opts RetrievalOptions, logger *logging.Logger) *RAGRetriever {
	if opts.TopK <= 0 {
		opts.TopK = 4
	}
	if opts.BroadenPhrasings <= 0 {
		opts.BroadenPhrasings = 3
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RAGRetriever{embedder: emb, store: vs, completer: c, opts: opts, logger: logger}
}

// Status reports whether the index can serve lookups.
func (r *RAGRetriever) Status(ctx context.Context) (entity.IndexStatus, error) {
	return r.store.Status(ctx)
}

// Retrieve returns the formatted passages for query, or entity.UnknownContext
// when nothing relevant is indexed.
func (r *RAGRetriever) Retrieve(ctx context.Context, query string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	passages, err := r.search(ctx, query)
	if err != nil {
		return "", err
	}
	if len(passages) == 0 && r.opts.Broaden && r.completer != nil {
		passages = r.broadenedSearch(ctx, query)
	}
	if len(passages) == 0 {
		return entity.UnknownContext, nil
	}
	return formatPassages(passages), nil
}

func (r *RAGRetriever) search(ctx context.Context, query string) ([]entity.Passage, error) {
	vector, err := r.embedder.CreateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retrieval: %w", asTransient(err))
	}
	passages, err := r.store.Search(ctx, vector, uint64(r.opts.TopK), r.opts.ScoreThreshold)
	if err != nil {
		return nil, fmt.Errorf("retrieval: %w", asTransient(err))
	}
	return passages, nil
}

// broadenedSearch is best-effort: failures leave the context unknown.
func (r *RAGRetriever) broadenedSearch(ctx context.Context, query string) []entity.Passage {
	raw, err := r.completer.Complete(ctx, entity.NewConversation(fmt.Sprintf(broadenPrompt, r.opts.BroadenPhrasings), query))
	if err != nil {
		r.logger.Warn("broadened retrieval skipped", "error", err)
		return nil
	}

	seen := make(map[string]bool)
	var merged []entity.Passage
	for _, phrasing := range splitPhrasings(raw, r.opts.BroadenPhrasings) {
		passages, err := r.search(ctx, phrasing)
		if err != nil {
			r.logger.Warn("broadened retrieval query failed", "error", err)
			continue
		}
		for _, p := range passages {
			if seen[p.Content] {
				continue
			}
			seen[p.Content] = true
			merged = append(merged, p)
		}
	}
	if len(merged) > r.opts.TopK {
		merged = merged[:r.opts.TopK]
	}
	r.logger.Debug("broadened retrieval finished", "passages", len(merged))
	return merged
}

func splitPhrasings(raw string, limit int) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*0123456789.) "))
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == limit {
			break
		}
	}
	return out
}

func formatPassages(passages []entity.Passage) string {
	parts := make([]string, 0, len(passages))
	for _, p := range passages {
		if p.Source != "" {
			parts = append(parts, fmt.Sprintf("[%s]\n%s", p.Source, p.Content))
			continue
		}
		parts = append(parts, p.Content)
	}
	return strings.Join(parts, "\n\n---\n\n")
}
