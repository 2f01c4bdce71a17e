package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"customs-gateway/internal/adapter/client"
	"customs-gateway/internal/adapter/store"
	"customs-gateway/internal/config"
	"customs-gateway/internal/usecase"
	"customs-gateway/pkg/logging"

	"github.com/qdrant/go-client/qdrant"
)

func main() {
	rebuild := flag.Bool("rebuild", false, "drop and recreate the collection before ingesting")
	dir := flag.String("dir", "", "document directory (defaults to RAG_DATA_DIR)")
	mask := flag.String("mask", "", "file mask (defaults to RAG_FILE_MASK)")
	flag.Parse()

	cfg, _ := config.Load()
	logger := logging.New(cfg.LogLevel)
	if *dir == "" {
		*dir = cfg.RAGDataDir
	}
	if *mask == "" {
		*mask = cfg.RAGFileMask
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *dir, *mask, *rebuild); err != nil {
		logger.Error("ingestion failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logging.Logger, dir, mask string, rebuild bool) error {
	genaiClient, err := client.NewGenAIClient(ctx, cfg.GeminiAPIKey, cfg.GoogleCloudProject, cfg.GoogleCloudLocation)
	if err != nil {
		return err
	}
	qClient, err := qdrant.NewClient(&qdrant.Config{
		Host: cfg.QdrantHost,
		Port: cfg.QdrantPort,
	})
	if err != nil {
		return err
	}
	defer qClient.Close()

	vectorStore := store.NewQdrantStore(qClient, cfg.QdrantCollection, logger)
	dim := uint64(cfg.EmbeddingDim)
	if rebuild {
		logger.Info("rebuilding collection", "collection", cfg.QdrantCollection)
		err = vectorStore.Recreate(ctx, dim)
	} else {
		err = vectorStore.InitCollection(ctx, dim)
	}
	if err != nil {
		return err
	}

	ingestor := usecase.NewIngestor(client.NewEmbedderFromClient(genaiClient, cfg.EmbeddingModel), vectorStore, usecase.IngestOptions{}, logger)
	report, err := ingestor.IngestDir(ctx, dir, mask)
	if err != nil {
		return err
	}
	logger.Info("ingestion complete", "dir", dir, "files", report.Files, "chunks", report.Chunks)
	return nil
}
