package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"customs-gateway/internal/domain/entity"
	"customs-gateway/internal/domain/repository"
	"customs-gateway/pkg/logging"
)

type IngestOptions struct {
	// ChunkSize caps a chunk in bytes. Paragraphs are never split, so a
	// single paragraph longer than ChunkSize becomes its own chunk.
	ChunkSize int
	BatchSize int
}

// IngestReport summarises one ingestion run.
type IngestReport struct {
	Files  int
	Chunks int
}

// Ingestor loads regulation documents into the vector store.
type Ingestor struct {
	embedder repository.Embedder
	store    repository.VectorStore
	opts     IngestOptions
	logger   *logging.Logger
}

func NewIngestor(emb repository.Embedder, vs repository.VectorStore, opts IngestOptions, logger *logging.Logger) *Ingestor {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 1500
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 32
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Ingestor{embedder: emb, store: vs, opts: opts, logger: logger}
}

// IngestDir indexes every file in dir whose name matches mask.
func (i *Ingestor) IngestDir(ctx context.Context, dir, mask string) (IngestReport, error) {
	paths, err := filepath.Glob(filepath.Join(dir, mask))
	if err != nil {
		return IngestReport{}, fmt.Errorf("ingest: bad file mask %q: %w", mask, err)
	}
	sort.Strings(paths)

	var report IngestReport
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		n, err := i.IngestFile(ctx, path)
		if err != nil {
			return report, err
		}
		report.Files++
		report.Chunks += n
	}
	if report.Files == 0 {
		i.logger.Warn("no documents matched", "dir", dir, "mask", mask)
	}
	return report, nil
}

// IngestFile chunks, embeds and saves one document. It returns the number of
// chunks stored.
func (i *Ingestor) IngestFile(ctx context.Context, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("ingest: read %s: %w", path, err)
	}
	source := filepath.Base(path)
	chunks := ChunkParagraphs(string(raw), i.opts.ChunkSize)

	for start := 0; start < len(chunks); start += i.opts.BatchSize {
		end := min(start+i.opts.BatchSize, len(chunks))
		docs := make([]entity.Document, 0, end-start)
		vectors := make([][]float32, 0, end-start)
		for n := start; n < end; n++ {
			vector, err := i.embedder.CreateEmbedding(ctx, chunks[n])
			if err != nil {
				return 0, fmt.Errorf("ingest: embed %s chunk %d: %w", source, n, err)
			}
			docs = append(docs, entity.Document{Content: chunks[n], Source: source, Chunk: n})
			vectors = append(vectors, vector)
		}
		if err := i.store.Save(ctx, docs, vectors); err != nil {
			return 0, fmt.Errorf("ingest: save %s: %w", source, err)
		}
	}

	i.logger.Info("document ingested", "source", source, "chunks", len(chunks))
	return len(chunks), nil
}

// ChunkParagraphs groups blank-line separated paragraphs into chunks of at
// most size bytes.
func ChunkParagraphs(text string, size int) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var (
		chunks  []string
		current strings.Builder
	)
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+2+len(para) > size {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()
	return chunks
}
