package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"customs-gateway/internal/domain/entity"
	"customs-gateway/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkParagraphs(t *testing.T) {
	text := "Para one.\r\n\r\nPara two is here.\n\n\n\nPara three.\n\n" + strings.Repeat("x", 40)

	got := ChunkParagraphs(text, 30)

	assert.Equal(t, []string{
		"Para one.\n\nPara two is here.",
		"Para three.",
		strings.Repeat("x", 40),
	}, got)
	assert.Empty(t, ChunkParagraphs(" \n\n \n", 30))
}

func writeDoc(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestIngestor_IngestDir(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "b_rules.txt", "Strategic goods need a permit.\n\nRice is controlled.")
	writeDoc(t, dir, "a_rules.txt", "Declare via TradeNet.")
	writeDoc(t, dir, "notes.md", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755))

	emb := &fakeEmbedder{}
	vs := &fakeVectorStore{}
	ing := NewIngestor(emb, vs, IngestOptions{ChunkSize: 40, BatchSize: 1}, logging.Discard())

	report, err := ing.IngestDir(context.Background(), dir, "*.txt")

	require.NoError(t, err)
	assert.Equal(t, IngestReport{Files: 2, Chunks: 3}, report)
	require.Len(t, vs.saved, 3)
	assert.Len(t, vs.vectors, 3)
	assert.Equal(t, entity.Document{Content: "Declare via TradeNet.", Source: "a_rules.txt", Chunk: 0}, vs.saved[0])
	assert.Equal(t, "b_rules.txt", vs.saved[2].Source)
	assert.Equal(t, 1, vs.saved[2].Chunk)

	status, err := vs.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entity.IndexReady, status)
}

func TestIngestor_Failures(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "rules.txt", "Declare via TradeNet.")
	boom := errors.New("boom")

	_, err := NewIngestor(&fakeEmbedder{err: boom}, &fakeVectorStore{}, IngestOptions{}, logging.Discard()).
		IngestDir(context.Background(), dir, "*.txt")
	require.ErrorIs(t, err, boom)

	_, err = NewIngestor(&fakeEmbedder{}, &fakeVectorStore{saveErr: boom}, IngestOptions{}, logging.Discard()).
		IngestDir(context.Background(), dir, "*.txt")
	require.ErrorIs(t, err, boom)

	_, err = NewIngestor(&fakeEmbedder{}, &fakeVectorStore{}, IngestOptions{}, logging.Discard()).
		IngestDir(context.Background(), dir, "[")
	require.Error(t, err)
}

func TestIngestor_EmptyDir(t *testing.T) {
	report, err := NewIngestor(&fakeEmbedder{}, &fakeVectorStore{}, IngestOptions{}, logging.Discard()).
		IngestDir(context.Background(), t.TempDir(), "*.txt")

	require.NoError(t, err)
	assert.Zero(t, report)
}
